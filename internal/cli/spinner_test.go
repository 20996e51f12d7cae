package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinner_PlainPrintsOnce(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "applying migrations")

	s.Start()
	s.Start()
	s.Stop()
	s.Stop()

	assert.Equal(t, "applying migrations...\n", buf.String())
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	NewSpinner(&buf, "x").Stop()
	assert.Empty(t, buf.String())
}
