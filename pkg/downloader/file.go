package downloader

import (
	"context"
	"hds/pkg/display"
	"io"
	"net/url"
	"os"
)

// fileHandler serves file:// URIs, which is handy for local dataset mirrors.
// Immutable
type fileHandler struct {
	chunkSize int
}

func NewFileHandler(chunkSize int) SchemeHandler {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &fileHandler{chunkSize: chunkSize}
}

func (h *fileHandler) Schemes() []string {
	return []string{"file"}
}

func (h *fileHandler) Download(ctx context.Context, uri string, w io.Writer, task display.Task) (Transfer, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Transfer{}, err
	}

	f, err := os.Open(u.Path)
	if err != nil {
		return Transfer{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Transfer{}, err
	}

	return copyChunks(w, &ctxReader{ctx: ctx, r: f}, info.Size(), h.chunkSize, task)
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
