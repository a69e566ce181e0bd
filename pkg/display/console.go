// Package display implementation for terminal-based output.
package display

import (
	"fmt"
	"hds/pkg/common"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const (
	ansiUp        = "\x1b[1A"
	ansiClearLine = "\x1b[2K"
)

var (
	taskStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// consoleDisplay handles terminal output. Active tasks occupy the last lines
// of the output and are redrawn in place.
// Mutable
type consoleDisplay struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
	tasks   []*consoleTask
	drawn   int
}

// NewConsole creates a Display that writes to standard error.
func NewConsole() Display {
	return &consoleDisplay{
		out: os.Stderr,
	}
}

// NewWriterDisplay creates a Display that writes to the provided io.Writer.
func NewWriterDisplay(w io.Writer) Display {
	return &consoleDisplay{
		out: w,
	}
}

func (d *consoleDisplay) SetVerbose(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.verbose = v
}

func (d *consoleDisplay) StartTask(name string) Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := &consoleTask{d: d, name: name}
	d.clearLocked()
	d.tasks = append(d.tasks, t)
	d.drawLocked()
	return t
}

func (d *consoleDisplay) Log(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearLocked()
	fmt.Fprintln(d.out, msg)
	d.drawLocked()
}

// Print writes a message directly to the output writer.
func (d *consoleDisplay) Print(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearLocked()
	fmt.Fprint(d.out, msg)
	d.drawLocked()
}

func (d *consoleDisplay) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drawn = 0
	d.tasks = nil
}

// RenderOutput displays structured data from an Output struct to the console.
func (d *consoleDisplay) RenderOutput(out *common.Output) {
	if out == nil {
		return
	}

	if out.Message != "" {
		d.Print(fmt.Sprintln(titleStyle.Render(out.Message)))
	}

	if len(out.KV) > 0 {
		for _, kv := range out.KV {
			d.Print(fmt.Sprintf("%-12s %s\n", kv.Key+":", kv.Value))
		}
	}

	if out.Table != nil {
		d.Print(FormatTable(out.Table))
	}
}

// FormatTable lays a table out in padded columns with a separator under the header.
func FormatTable(t *common.Table) string {
	if len(t.Header) == 0 {
		return ""
	}

	widths := make([]int, len(t.Header))
	for i, h := range t.Header {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		var line strings.Builder
		for i, cell := range cells {
			if i < len(widths) {
				fmt.Fprintf(&line, "%-*s  ", widths[i], cell)
			}
		}
		sb.WriteString(strings.TrimRight(line.String(), " "))
		sb.WriteString("\n")
	}

	writeRow(t.Header)
	totalWidth := 0
	for _, w := range widths {
		totalWidth += w + 2
	}
	sb.WriteString(strings.Repeat("-", totalWidth-2) + "\n")
	for _, row := range t.Rows {
		writeRow(row)
	}
	return sb.String()
}

// clearLocked erases the task lines drawn last time.
func (d *consoleDisplay) clearLocked() {
	for i := 0; i < d.drawn; i++ {
		fmt.Fprint(d.out, ansiUp+ansiClearLine)
	}
	d.drawn = 0
}

func (d *consoleDisplay) drawLocked() {
	for _, t := range d.tasks {
		fmt.Fprintln(d.out, t.line())
	}
	d.drawn = len(d.tasks)
}

func (d *consoleDisplay) remove(t *consoleTask) {
	for i, other := range d.tasks {
		if other == t {
			d.tasks = append(d.tasks[:i], d.tasks[i+1:]...)
			return
		}
	}
}

// consoleTask is a single task line.
// Mutable
type consoleTask struct {
	d       *consoleDisplay
	name    string
	stage   string
	target  string
	percent int
	message string
}

func (t *consoleTask) line() string {
	var sb strings.Builder
	sb.WriteString(taskStyle.Render("[" + t.name + "]"))
	if t.stage != "" {
		sb.WriteString(" " + t.stage)
	}
	if t.target != "" {
		sb.WriteString(" " + t.target)
	}
	if t.percent > 0 {
		fmt.Fprintf(&sb, " %d%%", t.percent)
	}
	if t.message != "" {
		sb.WriteString(" " + t.message)
	}
	return sb.String()
}

func (t *consoleTask) Log(msg string) {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	if !t.d.verbose {
		return
	}
	t.d.clearLocked()
	fmt.Fprintf(t.d.out, "[%s] %s\n", t.name, msg)
	t.d.drawLocked()
}

func (t *consoleTask) SetStage(name string, target string) {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	t.stage = name
	t.target = target
	t.d.clearLocked()
	t.d.drawLocked()
}

func (t *consoleTask) Progress(percent int, message string) {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	t.percent = percent
	t.message = message
	t.d.clearLocked()
	t.d.drawLocked()
}

func (t *consoleTask) Done() {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	t.d.clearLocked()
	t.d.remove(t)
	fmt.Fprintln(t.d.out, doneStyle.Render("["+t.name+"] Done"))
	t.d.drawLocked()
}
