package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows progress for an operation of unknown length. Outside a
// terminal it prints the message once and never animates.
type Spinner struct {
	w       io.Writer
	message string
	animate bool

	mu     sync.Mutex
	active bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{w: w, message: message, animate: EnableColors()}
}

// Start begins the animation. Calling Start on a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true

	if !s.animate {
		fmt.Fprintf(s.w, "%s...\n", s.message)
		return
	}

	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.spin()
}

func (s *Spinner) spin() {
	defer s.wg.Done()
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			fmt.Fprintf(s.w, "\r%s %s", styleNote.Render(spinnerFrames[i%len(spinnerFrames)]), s.message)
		}
	}
}

// Stop ends the animation and clears its line. Safe to call more than once.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	animating := s.animate
	s.mu.Unlock()

	if !animating {
		return
	}
	close(s.done)
	s.wg.Wait()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}
