package output

import (
	"io"
	"log"

	"github.com/fatih/color"

	"github.com/tdh8316/acclookup/internal/lookup"
)

const (
	MsgEmptyUsername = "Please enter a username."
	MsgNoResults     = "No results found."
)

type Printer struct {
	noColor   bool
	foundOnly bool

	logger *log.Logger
	lines  []string
}

func NewPrinter(stdout io.Writer, noColor, foundOnly bool) *Printer {
	return &Printer{
		noColor:   noColor,
		foundOnly: foundOnly,
		logger:    log.New(stdout, "", 0),
	}
}

// Lines returns every line shown so far, without color, for export.
func (p *Printer) Lines() []string {
	out := make([]string, len(p.lines))
	copy(out, p.lines)
	return out
}

func (p *Printer) Header(username string) {
	if p.noColor {
		p.logger.Printf("\nChecking %s on:", username)
	} else {
		p.logger.Printf("\nChecking %s on:", color.HiGreenString(username))
	}
}

// Notice prints a plain informational line that is also exported.
func (p *Printer) Notice(msg string) {
	p.lines = append(p.lines, msg)
	if p.noColor {
		p.logger.Printf("[%s] %s", "!", msg)
	} else {
		p.logger.Printf("[%s] %s", color.HiRedString("!"), color.HiYellowString(msg))
	}
}

// Warn is Notice without the export.
func (p *Printer) Warn(msg string) {
	if p.noColor {
		p.logger.Printf("[%s] %s", "!", msg)
	} else {
		p.logger.Printf("[%s] %s", color.HiRedString("!"), color.HiYellowString(msg))
	}
}

// Info prints a status line that is not part of the results.
func (p *Printer) Info(msg string) {
	if p.noColor {
		p.logger.Printf("[%s] %s", "i", msg)
	} else {
		p.logger.Printf("[%s] %s", color.HiBlueString("i"), msg)
	}
}

func (p *Printer) Results(results lookup.ResultSet) {
	if len(results) == 0 {
		p.Notice(MsgNoResults)
		return
	}
	for _, r := range results {
		p.Result(r)
	}
}

func (p *Printer) Result(result lookup.Result) {
	if p.foundOnly && result.Outcome != lookup.Exists {
		return
	}
	p.lines = append(p.lines, result.Message)

	if p.noColor {
		p.logger.Printf("[%s] %s", marker(result.Outcome), result.Message)
		return
	}

	switch result.Outcome {
	case lookup.Exists:
		p.logger.Printf("[%s] %s", color.HiGreenString("+"), color.HiWhiteString(result.Message))
	case lookup.NotFound:
		p.logger.Printf("[%s] %s", color.HiRedString("-"), color.HiYellowString(result.Message))
	default:
		p.logger.Printf("[%s] %s", color.HiRedString("!"), color.HiRedString(result.Message))
	}
}

func marker(o lookup.Outcome) string {
	switch o {
	case lookup.Exists:
		return "+"
	case lookup.NotFound:
		return "-"
	default:
		return "!"
	}
}
