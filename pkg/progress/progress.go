// Package progress provides a single-line terminal progress display.
package progress

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Printer renders an in-place status line of the form
// "Preprocessing texts...  42.00% completed." using carriage returns.
// It is safe to use with a nil or non-terminal writer; rendering is skipped
// when the writer is nil.
type Printer struct {
	w         io.Writer
	desc      string
	total     int
	current   int
	lastWidth int
}

// NewPrinter creates a progress printer for total steps.
// A nil writer disables output, which keeps callers free of conditionals.
func NewPrinter(w io.Writer, desc string, total int) *Printer {
	return &Printer{
		w:     w,
		desc:  desc,
		total: total,
	}
}

// Add advances the progress by n steps and re-renders the line.
func (p *Printer) Add(n int) {
	p.current += n
	if p.current > p.total {
		p.current = p.total
	}

	p.render()
}

// Current returns the number of completed steps.
func (p *Printer) Current() int {
	return p.current
}

// Finish completes the line and moves to the next one.
func (p *Printer) Finish() {
	p.current = p.total
	p.render()

	if p.w != nil {
		fmt.Fprintln(p.w)
	}
}

func (p *Printer) render() {
	if p.w == nil {
		return
	}

	pct := 100.0
	if p.total > 0 {
		pct = float64(p.current) / float64(p.total) * 100
	}

	line := fmt.Sprintf("%s  %.2f%% completed.", p.desc, pct)

	// Pad with spaces so a shorter line fully overwrites the previous one.
	width := runewidth.StringWidth(line)
	if width < p.lastWidth {
		line += strings.Repeat(" ", p.lastWidth-width)
	} else {
		p.lastWidth = width
	}

	fmt.Fprintf(p.w, "\r%s", line)
}
