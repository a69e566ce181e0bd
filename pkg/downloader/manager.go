package downloader

import (
	"context"
	"fmt"
	"hds/pkg/display"
	"io"
	"net/url"
	"strings"
)

// Mutable
type manager struct {
	handlers map[string]SchemeHandler
}

// Manager dispatches downloads to the handler registered for the URI scheme.
type Manager = *manager

// NewDefaultDownloader returns a Downloader for http, https and file URIs.
func NewDefaultDownloader(cfg HTTPConfig) Downloader {
	m := NewManager()
	m.Register(NewHTTPHandler(cfg))
	m.Register(NewFileHandler(cfg.ChunkSize))
	return m
}

// NewManager returns an empty scheme dispatcher.
func NewManager() Manager {
	return &manager{
		handlers: make(map[string]SchemeHandler),
	}
}

func (m *manager) Register(h SchemeHandler) {
	for _, scheme := range h.Schemes() {
		m.handlers[scheme] = h
	}
}

func (m *manager) Download(ctx context.Context, uri string, w io.Writer, task display.Task) (Transfer, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Transfer{}, fmt.Errorf("invalid uri: %w", err)
	}

	scheme := strings.ToLower(u.Scheme)
	handler, ok := m.handlers[scheme]
	if !ok {
		return Transfer{}, fmt.Errorf("unsupported scheme: %s", scheme)
	}

	return handler.Download(ctx, uri, w, task)
}
