package disk

import (
	"fmt"
	"hds/pkg/common"
	"hds/pkg/manifest"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"
)

func (m *manager) Info() (*common.ExecutionResult, error) {
	stats, total, err := m.GetInfo()
	if err != nil {
		return nil, err
	}
	table := &common.Table{
		Header: []string{"Type", "Size", "Items", "Path"},
	}
	for _, s := range stats {
		table.AddRow(s.Label, humanize.IBytes(uint64(s.Size)), fmt.Sprintf("%d", s.Items), s.Path)
	}

	return &common.ExecutionResult{
		Output: &common.Output{
			Table:   table,
			Message: fmt.Sprintf("Total: %s", humanize.IBytes(uint64(total))),
		},
	}, nil
}

// GetInfo measures every dataset directory and the manifest.
func (m *manager) GetInfo() ([]Usage, int64, error) {
	root := m.cfg.GetDatasetDir()
	entries, err := os.ReadDir(root)
	if err != nil && !os.IsNotExist(err) {
		return nil, 0, fmt.Errorf("reading %s: %w", root, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var total int64
	var stats []Usage
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(root, e.Name())
		size, count := DirSize(path)
		total += size
		stats = append(stats, Usage{Label: e.Name(), Size: size, Items: count, Path: path})
	}

	ledger := m.cfg.GetManifestPath()
	if fi, err := os.Stat(ledger); err == nil {
		recorded, err := manifest.Open(ledger).Entries()
		if err != nil {
			slog.Warn("Cannot read manifest", "path", ledger, "error", err)
		}
		total += fi.Size()
		stats = append(stats, Usage{Label: "Manifest", Size: fi.Size(), Items: len(recorded), Path: ledger})
	}
	return stats, total, nil
}

func (m *manager) CleanDir() (*common.ExecutionResult, error) {
	cleaned, err := m.Clean()
	for _, dir := range cleaned {
		slog.Info("Cleaning", "path", dir)
	}
	if err != nil {
		return nil, err
	}
	return &common.ExecutionResult{
		Output: &common.Output{
			Message: fmt.Sprintf("Clean complete, %d dataset(s) removed", len(cleaned)),
		},
	}, nil
}

// Clean removes everything under the dataset directory and the manifest
// that describes it.
func (m *manager) Clean() ([]string, error) {
	root := m.cfg.GetDatasetDir()
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cleaned []string
	for _, e := range entries {
		path := filepath.Join(root, e.Name())
		if err := os.RemoveAll(path); err != nil {
			return cleaned, fmt.Errorf("removing %s: %w", path, err)
		}
		cleaned = append(cleaned, path)
	}
	if err := os.Remove(m.cfg.GetManifestPath()); err != nil && !os.IsNotExist(err) {
		return cleaned, err
	}
	return cleaned, nil
}

// DirSize calculates the total size and file count of a directory.
func DirSize(path string) (int64, int) {
	var size int64
	var count int
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
			count++
		}
		return nil
	})
	return size, count
}
