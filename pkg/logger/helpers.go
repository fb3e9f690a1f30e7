package logger

import (
	"fmt"
	"io"
	"strings"
)

// Icons and symbols for different log types
const (
	IconSuccess = "✅"
	IconNetwork = "🌐"
	IconDrone   = "🛸"
	IconDot     = "•"
)

// Success logs a success message with a green checkmark
func Success(args ...interface{}) {
	defaultLogger.Info(IconSuccess + " " + fmt.Sprint(args...))
}

// Successf logs a formatted success message
func Successf(format string, args ...interface{}) {
	Success(fmt.Sprintf(format, args...))
}

// Network logs a network-related message
func Network(args ...interface{}) {
	defaultLogger.Info(IconNetwork + " " + fmt.Sprint(args...))
}

// Networkf logs a formatted network message
func Networkf(format string, args ...interface{}) {
	Network(fmt.Sprintf(format, args...))
}

// defaultOutput returns the writer and colour setting of the default logger
func defaultOutput() (io.Writer, *output) {
	l := defaultLogger.(*logger)
	return l.out.writer, l.out
}

// LogSection creates a visual section separator
func LogSection(title string) {
	w, o := defaultOutput()
	line := strings.Repeat("=", 50)
	_, _ = fmt.Fprintln(w, o.paint(colorPrefix, line))
	_, _ = fmt.Fprintln(w, o.paint(colorTitle, title))
	_, _ = fmt.Fprintln(w, o.paint(colorPrefix, line))
}

// LogList logs a list of items with bullets
func LogList(title string, items []string) {
	Info(title)
	w, _ := defaultOutput()
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "  %s %s\n", IconDot, item)
	}
}

// LogKeyValue logs a key-value pair with nice formatting
func LogKeyValue(key string, value interface{}) {
	w, o := defaultOutput()
	_, _ = fmt.Fprintf(w, "%s %v\n", o.paint(colorPrefix, key+":"), value)
}

// Table represents a simple table for logging
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a new table
func NewTable(headers ...string) *Table {
	return &Table{
		headers: headers,
		rows:    [][]string{},
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(values ...string) {
	t.rows = append(t.rows, values)
}

// Print writes the table to the default logger's output
func (t *Table) Print() {
	w, _ := defaultOutput()
	t.Fprint(w)
}

// Fprint writes the table to w
func (t *Table) Fprint(w io.Writer) {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	writeRow := func(cells []string) {
		var sb strings.Builder
		for i, cell := range cells {
			if i < len(widths) {
				fmt.Fprintf(&sb, "%-*s  ", widths[i], cell)
			}
		}
		_, _ = fmt.Fprintln(w, strings.TrimRight(sb.String(), " "))
	}

	writeRow(t.headers)
	seps := make([]string, len(widths))
	for i, width := range widths {
		seps[i] = strings.Repeat("-", width)
	}
	writeRow(seps)
	for _, row := range t.rows {
		writeRow(row)
	}
}
