// Package archive unpacks downloaded dataset archives into a directory.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ErrUnsupportedFormat is returned for files whose extension names no known archive format.
var ErrUnsupportedFormat = errors.New("unsupported archive format")

// SupportedExtensions returns a list of all file extensions that the archive module can extract.
// Compound tar extensions come before their single-file counterparts.
func SupportedExtensions() []string {
	return []string{".zip", ".tar", ".tar.gz", ".tgz", ".tar.zst", ".tar.bz2", ".tbz2", ".gz", ".zst", ".bz2"}
}

// IsArchive returns true if the filename has a supported archive extension.
func IsArchive(filename string) bool {
	return format(filename) != ""
}

func format(filename string) string {
	name := strings.ToLower(filename)
	for _, ext := range SupportedExtensions() {
		if strings.HasSuffix(name, ext) {
			return ext
		}
	}
	return ""
}

// Extract extracts the contents of the archive at src into the directory dest
// and returns the paths of the extracted entries relative to dest.
// Single-file .gz, .zst and .bz2 sources are decompressed to a file named
// after src without its compression suffix.
func Extract(src string, dest string) ([]string, error) {
	ext := format(src)
	if ext == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(src))
	}
	if ext == ".zip" {
		return ExtractZip(src, dest)
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	switch ext {
	case ".tar.gz", ".tgz", ".gz":
		gzr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzr.Close()
		r = gzr
	case ".tar.zst", ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer zr.Close()
		r = zr
	case ".tar.bz2", ".tbz2", ".bz2":
		r = bzip2.NewReader(f)
	}

	switch ext {
	case ".gz", ".zst", ".bz2":
		name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		return extractSingle(r, name, dest)
	}
	return extractTar(r, dest)
}

// ExtractZip extracts every entry of the zip archive at src into dest.
func ExtractZip(src, dest string) ([]string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip archive: %w", err)
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		err := extractFile(f.Name, f.FileInfo(), dest, func() (io.ReadCloser, error) {
			return f.Open()
		})
		if err != nil {
			return names, err
		}
		names = append(names, f.Name)
	}
	return names, nil
}

func extractTar(r io.Reader, dest string) ([]string, error) {
	tr := tar.NewReader(r)
	var names []string
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return names, fmt.Errorf("failed to read tar header: %w", err)
		}

		switch header.Typeflag {
		case tar.TypeReg, tar.TypeDir:
		default:
			// Links and devices have no place in a dataset archive.
			continue
		}

		err = extractFile(header.Name, header.FileInfo(), dest, func() (io.ReadCloser, error) {
			return io.NopCloser(tr), nil
		})
		if err != nil {
			return names, err
		}
		names = append(names, header.Name)
	}
	return names, nil
}

func extractSingle(r io.Reader, name string, dest string) ([]string, error) {
	info := singleFileInfo{name: name}
	err := extractFile(name, info, dest, func() (io.ReadCloser, error) {
		return io.NopCloser(r), nil
	})
	if err != nil {
		return nil, err
	}
	return []string{name}, nil
}

// extractFile is a helper to extract a single file/dir.
// opener is a function that returns a reader for the file content.
func extractFile(name string, info os.FileInfo, dest string, opener func() (io.ReadCloser, error)) error {
	// Zip Slip protection
	target := filepath.Join(dest, name)
	if info.IsDir() && target == filepath.Clean(dest) {
		return nil
	}
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return fmt.Errorf("illegal file path in archive: %s", name)
	}

	if info.IsDir() {
		if err := os.MkdirAll(target, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", target, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", target, err)
	}

	mode := info.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", target, err)
	}
	defer f.Close()

	rc, err := opener()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", name, err)
	}
	// For tar, rc is NopCloser(tr); the tar stream itself stays open.
	defer rc.Close()

	if _, err := io.Copy(f, rc); err != nil {
		return fmt.Errorf("failed to write file %s: %w", target, err)
	}
	return nil
}

// singleFileInfo describes the output of a single-file decompression.
type singleFileInfo struct {
	name string
}

func (i singleFileInfo) Name() string       { return i.name }
func (i singleFileInfo) Size() int64        { return 0 }
func (i singleFileInfo) Mode() os.FileMode  { return 0644 }
func (i singleFileInfo) ModTime() time.Time { return time.Time{} }
func (i singleFileInfo) IsDir() bool        { return false }
func (i singleFileInfo) Sys() any           { return nil }
