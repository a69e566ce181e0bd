package downloader

import (
	"context"
	"errors"
	"fmt"
	"hds/pkg/archive"
	"hds/pkg/cache"
	"hds/pkg/display"
	"hds/pkg/manifest"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// ErrNoFilename is returned when a URL has no final path segment to name the file after.
var ErrNoFilename = errors.New("cannot derive file name from url")

// Result describes a file materialized by FetchFile.
type Result struct {
	// Path is the location of the downloaded file.
	Path string
	// Name is the base name of Path.
	Name string
	// Size is the number of bytes on disk after the download.
	Size int64
	// Expected is the announced size, or 0 when the server sent none.
	Expected int64
	// Complete is false when Expected was known and differs from the bytes received.
	Complete bool
	// Extracted lists archive entries, relative to the directory, when decompressing.
	Extracted []string
}

type fetchOptions struct {
	downloader Downloader
	http       HTTPConfig
	task       display.Task
	manifest   *manifest.Store
}

// Option configures FetchFile.
type Option func(*fetchOptions)

// WithUserAgent overrides the User-Agent header. Empty values are ignored.
func WithUserAgent(ua string) Option {
	return func(o *fetchOptions) {
		if ua != "" {
			o.http.UserAgent = ua
		}
	}
}

// WithChunkSize overrides the read size of the stream loop.
func WithChunkSize(n int) Option {
	return func(o *fetchOptions) {
		o.http.ChunkSize = n
	}
}

// WithTask reports progress and stages to task.
func WithTask(task display.Task) Option {
	return func(o *fetchOptions) {
		o.task = task
	}
}

// WithManifest records each completed fetch in m.
func WithManifest(m *manifest.Store) Option {
	return func(o *fetchOptions) {
		o.manifest = m
	}
}

// WithDownloader replaces the scheme dispatcher, e.g. to add schemes.
func WithDownloader(d Downloader) Option {
	return func(o *fetchOptions) {
		o.downloader = d
	}
}

// TargetName derives the local file name from the last path segment of
// sourceURL. Any extension containing ".zip" is cut back to exactly ".zip",
// dropping noise such as "data.zip%3Fdl=1" down to "data.zip".
// The name comes from the parsed URL path, so query strings and fragments
// never reach the file name: "data.csv?x=1" is saved as "data.csv".
func TargetName(sourceURL string) (string, error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", sourceURL, err)
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("%w: %s", ErrNoFilename, sourceURL)
	}

	ext := path.Ext(name)
	if strings.Contains(ext, ".zip") {
		name = strings.TrimSuffix(name, ext) + ".zip"
	}
	return name, nil
}

// FetchFile downloads sourceURL into directory, creating it if needed, and
// optionally decompresses the result next to it.
//
// A download whose byte count differs from the announced Content-Length is
// logged at error level and kept; Result.Complete reports it. Network,
// filesystem and extraction failures are returned.
func FetchFile(ctx context.Context, directory, sourceURL string, decompress bool, opts ...Option) (*Result, error) {
	o := &fetchOptions{task: display.NopTask}
	for _, opt := range opts {
		opt(o)
	}
	if o.task == nil {
		o.task = display.NopTask
	}
	if o.downloader == nil {
		o.downloader = NewDefaultDownloader(o.http)
	}

	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", directory, err)
	}

	name, err := TargetName(sourceURL)
	if err != nil {
		return nil, err
	}
	target := filepath.Join(directory, name)

	unlock, err := cache.Lock(ctx, target)
	if err != nil {
		return nil, err
	}
	defer unlock()

	o.task.SetStage("Download", name)
	slog.Debug("Downloading file", "url", sourceURL, "path", target)

	tr, err := download(ctx, o, sourceURL, target)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Path:     target,
		Name:     name,
		Expected: tr.Total,
		Complete: true,
	}
	if tr.Total != 0 && tr.Written != tr.Total {
		res.Complete = false
		slog.Error("Something went wrong downloading data: size mismatch",
			"file", name, "expected", tr.Total, "received", tr.Written)
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	res.Size = info.Size()
	slog.Info("Successfully downloaded", "file", name, "size", humanize.IBytes(uint64(res.Size)), "bytes", res.Size)

	if decompress {
		o.task.SetStage("Extract", name)
		if strings.Contains(filepath.Ext(target), ".zip") {
			slog.Info("Decompressing zip file", "path", target)
			res.Extracted, err = archive.ExtractZip(target, directory)
		} else {
			slog.Info("Decompressing archive", "path", target)
			res.Extracted, err = archive.Extract(target, directory)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decompress %s: %w", target, err)
		}
		slog.Info("Successfully decompressed", "path", target, "entries", len(res.Extracted))
	}

	if o.manifest != nil {
		if err := record(o.manifest, sourceURL, res); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// download streams sourceURL into target+".part" and renames it into place
// once the transfer ends without error. A failed transfer leaves target
// untouched and removes the partial file.
func download(ctx context.Context, o *fetchOptions, sourceURL, target string) (Transfer, error) {
	part := target + ".part"
	f, err := os.Create(part)
	if err != nil {
		return Transfer{}, err
	}

	tr, err := o.downloader.Download(ctx, sourceURL, f, o.task)
	cerr := f.Close()
	if err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(part)
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return tr, err
		}
		return tr, fmt.Errorf("failed to download %s: %w", sourceURL, err)
	}

	if err := os.Rename(part, target); err != nil {
		os.Remove(part)
		return tr, err
	}
	return tr, nil
}

func record(m *manifest.Store, sourceURL string, res *Result) error {
	_, err := m.Record(manifest.Entry{
		URL:       sourceURL,
		Path:      res.Path,
		Size:      res.Size,
		Expected:  res.Expected,
		Complete:  res.Complete,
		Extracted: res.Extracted,
	})
	if err != nil {
		return err
	}
	return m.Save()
}
