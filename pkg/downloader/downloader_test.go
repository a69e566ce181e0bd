package downloader

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type mockTask struct {
	lastPercent int
	lastMsg     string
	stages      []string
}

func (m *mockTask) Log(msg string)                      {}
func (m *mockTask) SetStage(name string, target string) { m.stages = append(m.stages, name) }
func (m *mockTask) Progress(percent int, message string) {
	m.lastPercent = percent
	m.lastMsg = message
}
func (m *mockTask) Done() {}

func TestHTTPDownload(t *testing.T) {
	content := []byte("some large content to test download")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(content)))
		w.WriteHeader(http.StatusOK)
		w.Write(content)
	}))
	defer ts.Close()

	d := NewDefaultDownloader(HTTPConfig{})
	buf := &bytes.Buffer{}
	task := &mockTask{}

	tr, err := d.Download(context.Background(), ts.URL, buf, task)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	if !bytes.Equal(buf.Bytes(), content) {
		t.Errorf("Content mismatch")
	}
	if tr.Written != int64(len(content)) || tr.Total != int64(len(content)) {
		t.Errorf("unexpected transfer %+v", tr)
	}
	if task.lastPercent != 100 {
		t.Errorf("Expected 100%% progress, got %d", task.lastPercent)
	}
}

func TestHTTPDownloadChunked(t *testing.T) {
	content := bytes.Repeat([]byte("0123456789"), 500)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Flushing forces chunked encoding, so no Content-Length is sent.
		w.Write(content[:100])
		w.(http.Flusher).Flush()
		w.Write(content[100:])
	}))
	defer ts.Close()

	d := NewDefaultDownloader(HTTPConfig{ChunkSize: 64})
	buf := &bytes.Buffer{}
	task := &mockTask{}

	tr, err := d.Download(context.Background(), ts.URL, buf, task)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if tr.Total != 0 {
		t.Errorf("Expected unknown total, got %d", tr.Total)
	}
	if !bytes.Equal(buf.Bytes(), content) {
		t.Errorf("Content mismatch")
	}
	if !strings.Contains(task.lastMsg, "downloaded") {
		t.Errorf("Expected byte count message, got %q", task.lastMsg)
	}
}

func TestHTTPUserAgent(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		if got == "" || strings.HasPrefix(got, "Go-http-client") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	d := NewDefaultDownloader(HTTPConfig{})
	if _, err := d.Download(context.Background(), ts.URL, &bytes.Buffer{}, nil); err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if got != "Mozilla/5.0" {
		t.Errorf("Expected Mozilla/5.0 user agent, got %q", got)
	}
}

func TestHTTPBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	d := NewDefaultDownloader(HTTPConfig{})
	_, err := d.Download(context.Background(), ts.URL, &bytes.Buffer{}, nil)

	statusErr, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("Expected *StatusError, got %T: %v", err, err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", statusErr.StatusCode)
	}
}

func TestHTTPRedirect(t *testing.T) {
	content := []byte("redirected content")

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write(content)
	}))
	defer ts.Close()

	rs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, ts.URL, http.StatusMovedPermanently)
	}))
	defer rs.Close()

	d := NewDefaultDownloader(HTTPConfig{})
	buf := &bytes.Buffer{}

	if _, err := d.Download(context.Background(), rs.URL, buf, &mockTask{}); err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), content) {
		t.Errorf("Content mismatch, got %q", buf.String())
	}
}

func TestFileDownload(t *testing.T) {
	src := filepath.Join(t.TempDir(), "local.csv")
	content := []byte("unique_id,ds,y\n")
	if err := os.WriteFile(src, content, 0644); err != nil {
		t.Fatal(err)
	}

	d := NewDefaultDownloader(HTTPConfig{})
	buf := &bytes.Buffer{}
	tr, err := d.Download(context.Background(), "file://"+filepath.ToSlash(src), buf, nil)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), content) || tr.Total != int64(len(content)) {
		t.Errorf("unexpected result %q %+v", buf.String(), tr)
	}
}

func TestUnsupportedScheme(t *testing.T) {
	d := NewDefaultDownloader(HTTPConfig{})
	_, err := d.Download(context.Background(), "ftp://example.com", &bytes.Buffer{}, &mockTask{})
	if err == nil || !strings.Contains(err.Error(), "unsupported scheme") {
		t.Errorf("Expected unsupported scheme error, got: %v", err)
	}
}
