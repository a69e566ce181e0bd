package display

import (
	"fmt"
	"hds/pkg/common"
	"io"
	"sync"

	"github.com/cheggaaa/pb/v3"
)

const barTemplate = `{{string . "prefix"}} {{bar . "[" "=" ">" " " "]"}} {{percent .}} {{string . "msg"}}`

// barDisplay renders each task as a pb progress bar.
// Mutable
type barDisplay struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// NewWriterBarDisplay creates a bar Display writing to w.
func NewWriterBarDisplay(w io.Writer) Display {
	return &barDisplay{out: w}
}

func (d *barDisplay) StartTask(name string) Task {
	bar := pb.ProgressBarTemplate(barTemplate).New(100)
	bar.SetWriter(d.out)
	bar.Set("prefix", "["+name+"]")
	bar.Start()
	return &barTask{d: d, name: name, bar: bar}
}

func (d *barDisplay) Log(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintln(d.out, msg)
}

func (d *barDisplay) Print(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprint(d.out, msg)
}

func (d *barDisplay) RenderOutput(out *common.Output) {
	if out == nil {
		return
	}
	if out.Message != "" {
		d.Print(out.Message + "\n")
	}
	for _, kv := range out.KV {
		d.Print(fmt.Sprintf("%-12s %s\n", kv.Key+":", kv.Value))
	}
	if out.Table != nil {
		d.Print(FormatTable(out.Table))
	}
}

func (d *barDisplay) SetVerbose(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.verbose = v
}

func (d *barDisplay) Close() {}

// Mutable
type barTask struct {
	d    *barDisplay
	name string
	bar  *pb.ProgressBar
}

func (t *barTask) Log(msg string) {
	t.d.mu.Lock()
	verbose := t.d.verbose
	t.d.mu.Unlock()
	if verbose {
		t.d.Log("[" + t.name + "] " + msg)
	}
}

func (t *barTask) SetStage(name string, target string) {
	t.bar.Set("prefix", fmt.Sprintf("[%s] %s", t.name, name))
	t.bar.Set("msg", target)
}

func (t *barTask) Progress(percent int, message string) {
	t.bar.SetCurrent(int64(percent))
	t.bar.Set("msg", message)
}

func (t *barTask) Done() {
	t.bar.Finish()
}
