package ui

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows progress during long waits. On non-terminals it is a no-op.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner creates a spinner writing to w with the given message. When
// enabled is false the returned spinner does nothing.
func NewSpinner(w io.Writer, message string, enabled bool) *Spinner {
	if !enabled {
		return &Spinner{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	return &Spinner{s: s}
}

// Start begins animating.
func (sp *Spinner) Start() {
	if sp.s != nil {
		sp.s.Start()
	}
}

// Update replaces the message shown next to the spinner.
func (sp *Spinner) Update(message string) {
	if sp.s != nil {
		sp.s.Lock()
		sp.s.Suffix = " " + message
		sp.s.Unlock()
	}
}

// Stop halts the animation and clears the line.
func (sp *Spinner) Stop() {
	if sp.s != nil {
		sp.s.Stop()
	}
}
