package config

// Scope is a stack of overrides on top of a base configuration.
//
// Overrides are pushed for the duration of a block and always popped
// afterwards, including when the block fails or panics, so one migration's
// settings never leak into the next. A Scope is owned by a single runner and
// is not safe for concurrent use.
type Scope struct {
	base  Config
	stack []Override
}

// NewScope creates a scope over base.
func NewScope(base Config) *Scope {
	return &Scope{base: base}
}

// Base returns the configuration below every pushed override.
func (s *Scope) Base() Config {
	return s.base
}

// Depth returns the number of active overrides.
func (s *Scope) Depth() int {
	return len(s.stack)
}

// Current returns the base with every active override applied, innermost last.
func (s *Scope) Current() Config {
	c := s.base
	for i := range s.stack {
		c = c.Apply(&s.stack[i])
	}
	return c
}

// Resolve returns the effective configuration for one operation: the
// operation-local override first, then the scope, then the base.
func (s *Scope) Resolve(local *Override) Config {
	return Resolve(s.Current(), local)
}

// Push activates o and returns the function that removes it. The returned
// function restores the stack to its depth before Push, so it is safe to call
// after nested pushes that were not popped.
func (s *Scope) Push(o Override) (pop func()) {
	depth := len(s.stack)
	s.stack = append(s.stack, o)
	return func() {
		if len(s.stack) > depth {
			s.stack = s.stack[:depth]
		}
	}
}

// With runs fn with o active and restores the previous state afterwards.
// A nil o runs fn without pushing anything.
func (s *Scope) With(o *Override, fn func() error) error {
	if o == nil {
		return fn()
	}
	pop := s.Push(*o)
	defer pop()
	return fn()
}
