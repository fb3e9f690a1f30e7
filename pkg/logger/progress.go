package logger

import (
	"fmt"
	"io"
	"strings"
)

// ProgressBar represents a simple progress bar
type ProgressBar struct {
	total   int
	current int
	width   int
	message string
	writer  io.Writer
}

// NewProgressBar creates a new progress bar writing to the default logger's output
func NewProgressBar(total int, message string) *ProgressBar {
	w, _ := defaultOutput()
	return &ProgressBar{
		total:   total,
		width:   40,
		message: message,
		writer:  w,
	}
}

// Update updates the progress bar
func (p *ProgressBar) Update(current int) {
	p.current = current
	p.draw()
}

// Increment increments the progress bar by 1
func (p *ProgressBar) Increment() {
	p.current++
	p.draw()
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.current = p.total
	p.draw()
	_, _ = fmt.Fprintln(p.writer)
}

func (p *ProgressBar) percent() float64 {
	if p.total <= 0 {
		return 1
	}
	percent := float64(p.current) / float64(p.total)
	if percent > 1 {
		percent = 1
	}
	return percent
}

func (p *ProgressBar) draw() {
	percent := p.percent()
	filled := int(percent * float64(p.width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	_, o := defaultOutput()
	_, _ = fmt.Fprintf(p.writer, "\r%s: [%s] %3.0f%%", p.message, o.paint(colorInfo, bar), percent*100)
}
