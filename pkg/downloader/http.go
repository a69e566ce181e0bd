package downloader

import (
	"context"
	"errors"
	"fmt"
	"hds/pkg/config"
	"hds/pkg/display"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultChunkSize is the number of bytes read from the body per iteration.
const DefaultChunkSize = 1024

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status fetching %s: %s", e.URL, e.Status)
}

// HTTPConfig tunes the HTTP handler. Zero values fall back to defaults.
type HTTPConfig struct {
	UserAgent string
	ChunkSize int
	Client    *http.Client
}

func (c HTTPConfig) withDefaults() HTTPConfig {
	if c.UserAgent == "" {
		c.UserAgent = config.DefaultUserAgent
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.Client == nil {
		c.Client = &http.Client{
			Timeout: 0, // Handled by context
		}
	}
	return c
}

// Immutable
type httpHandler struct {
	cfg HTTPConfig
}

func NewHTTPHandler(cfg HTTPConfig) SchemeHandler {
	return &httpHandler{cfg: cfg.withDefaults()}
}

func (h *httpHandler) Schemes() []string {
	return []string{"http", "https"}
}

func (h *httpHandler) Download(ctx context.Context, uri string, w io.Writer, task display.Task) (Transfer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return Transfer{}, err
	}
	req.Header.Set("User-Agent", h.cfg.UserAgent)

	resp, err := h.cfg.Client.Do(req)
	if err != nil {
		return Transfer{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Transfer{}, &StatusError{URL: uri, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	return copyChunks(w, resp.Body, total, h.cfg.ChunkSize, task)
}

// copyChunks reads src in chunkSize pieces and writes each one to dst before
// reading the next. A body that ends before its announced length is not an
// error here; the caller compares Written against Total.
func copyChunks(dst io.Writer, src io.Reader, total int64, chunkSize int, task display.Task) (Transfer, error) {
	if task == nil {
		task = display.NopTask
	}
	pw := &progressWriter{
		task:     task,
		total:    total,
		start:    time.Now(),
		interval: 200 * time.Millisecond,
	}

	buf := make([]byte, chunkSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return Transfer{Written: pw.written, Total: total}, err
			}
			pw.add(n)
		}
		if rerr == io.EOF || errors.Is(rerr, io.ErrUnexpectedEOF) {
			break
		}
		if rerr != nil {
			return Transfer{Written: pw.written, Total: total}, rerr
		}
	}
	pw.flush()

	return Transfer{Written: pw.written, Total: total}, nil
}

// Mutable
type progressWriter struct {
	task     display.Task
	total    int64
	written  int64
	start    time.Time
	lastEmit time.Time
	interval time.Duration
}

func (pw *progressWriter) add(n int) {
	pw.written += int64(n)
	if time.Since(pw.lastEmit) < pw.interval {
		return
	}
	pw.flush()
}

func (pw *progressWriter) flush() {
	pw.lastEmit = time.Now()

	if pw.total > 0 {
		percent := int((float64(pw.written) / float64(pw.total)) * 100)
		if percent > 100 {
			percent = 100
		}
		elapsed := time.Since(pw.start).Seconds()
		speed := 0.0
		if elapsed > 0 {
			speed = float64(pw.written) / elapsed
		}
		msg := fmt.Sprintf("%s / %s (%s/s)",
			humanize.IBytes(uint64(pw.written)),
			humanize.IBytes(uint64(pw.total)),
			humanize.IBytes(uint64(speed)))
		pw.task.Progress(percent, msg)
	} else {
		pw.task.Progress(0, fmt.Sprintf("%s downloaded", humanize.IBytes(uint64(pw.written))))
	}
}
