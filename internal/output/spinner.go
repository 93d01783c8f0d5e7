package output

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Indicator shows "Searching..." while a lookup runs.
type Indicator struct {
	s       *spinner.Spinner
	enabled bool
}

// NewIndicator writes to w. Disabled indicators do nothing, which keeps
// non-terminal output free of control sequences.
func NewIndicator(w io.Writer, enabled bool) *Indicator {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " Searching..."
	return &Indicator{s: s, enabled: enabled}
}

func (i *Indicator) Start() {
	if i.enabled {
		i.s.Start()
	}
}

func (i *Indicator) Stop() {
	if i.enabled {
		i.s.Stop()
	}
}
