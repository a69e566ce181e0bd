// Package downloader retrieves remote resources and materializes them on disk.
// It supports multiple schemes (HTTP, HTTPS, file) and reports progress via the display package.
package downloader

import (
	"context"
	"hds/pkg/display"
	"io"
)

// Transfer summarises one completed stream.
type Transfer struct {
	// Written is the number of bytes copied to the destination.
	Written int64
	// Total is the size announced by the source, or 0 when unknown.
	Total int64
}

// Downloader manages the retrieval of resources from various URIs.
type Downloader interface {
	// Download retrieves the resource at the specified URI and writes it to w.
	// It uses the provided display Task to report progress.
	Download(ctx context.Context, uri string, w io.Writer, task display.Task) (Transfer, error)
}

// SchemeHandler defines the interface for handling specific URI schemes (e.g., "http://").
type SchemeHandler interface {
	// Download executes the download for a URI supported by this handler.
	Download(ctx context.Context, uri string, w io.Writer, task display.Task) (Transfer, error)
	// Schemes returns the list of URI schemes (e.g., ["http", "https"]) this handler can process.
	Schemes() []string
}
