// Package m4 provides the M4 forecasting competition dataset.
package m4

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"hds/pkg/dataset"
	"hds/pkg/downloader"
	"hds/pkg/manifest"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SourceURL is the base location of the M4 competition files.
const SourceURL = "https://raw.githubusercontent.com/Mcompetitions/M4-methods/master/Dataset/"

// InfoFile holds per-series metadata for all groups.
const InfoFile = "M4-info.csv"

// Dataset loads and downloads M4.
type Dataset struct {
	// SourceURL is the base URL the Train/ and Test/ files live under.
	SourceURL string
}

var (
	_ dataset.Dataset = (*Dataset)(nil)
	_ dataset.Grouped = (*Dataset)(nil)
)

// New returns the dataset pointing at the public M4 repository.
func New() *Dataset {
	return &Dataset{SourceURL: SourceURL}
}

func (d *Dataset) Name() string { return "m4" }

func (d *Dataset) Groups() dataset.Info[dataset.Group] { return Info }

// Dir is where the raw files live under a data directory.
func (d *Dataset) Dir(directory string) string {
	return filepath.Join(directory, d.Name(), "datasets")
}

// remoteFiles lists the paths, relative to SourceURL, needed for groups.
func remoteFiles(groups []string) []string {
	files := make([]string, 0, 2*len(groups)+1)
	for _, g := range groups {
		files = append(files, "Train/"+g+"-train.csv", "Test/"+g+"-test.csv")
	}
	return append(files, InfoFile)
}

// selectGroups resolves the optional group filter to a list of names.
func selectGroups(name string) ([]string, error) {
	if name == "" {
		return Info.Groups(), nil
	}
	if _, err := Info.GetGroup(name); err != nil {
		return nil, err
	}
	return []string{name}, nil
}

// DownloadData fetches the train and test files of the selected group (all
// groups by default) and the info file. Files already present are skipped
// unless they are empty or the ledger records their fetch as incomplete.
func (d *Dataset) DownloadData(ctx context.Context, directory string, opts ...dataset.LoadOption) error {
	o := dataset.Apply(opts...)
	groups, err := selectGroups(o.Group)
	if err != nil {
		return err
	}

	dir := d.Dir(directory)
	base := strings.TrimSuffix(d.SourceURL, "/") + "/"
	for _, rel := range remoteFiles(groups) {
		local := filepath.Join(dir, filepath.Base(rel))
		if present(local, base+rel, o.Manifest) {
			slog.Debug("File already present", "path", local)
			continue
		}
		if _, err := downloader.FetchFile(ctx, dir, base+rel, false, o.FetchOptions()...); err != nil {
			return fmt.Errorf("m4: %w", err)
		}
	}
	return nil
}

// present reports whether local holds a usable copy of sourceURL: a non-empty
// file that the ledger, when given, does not know as an incomplete fetch.
func present(local, sourceURL string, m *manifest.Store) bool {
	info, err := os.Stat(local)
	if err != nil || info.Size() == 0 {
		return false
	}
	if m == nil {
		return true
	}
	entry, ok, err := m.Lookup(sourceURL)
	if err != nil {
		slog.Warn("Cannot read manifest", "path", m.Path(), "error", err)
		return true
	}
	if ok && !entry.Complete {
		slog.Info("Refetching incomplete download", "path", local)
		return false
	}
	return true
}

// Load reads the selected group (all groups by default), downloading missing
// files first. Test observations follow the training ones of each series,
// with ds continuing across the split.
func (d *Dataset) Load(ctx context.Context, directory string, opts ...dataset.LoadOption) (*dataset.Frame, error) {
	o := dataset.Apply(opts...)
	groups, err := selectGroups(o.Group)
	if err != nil {
		return nil, err
	}

	if err := d.DownloadData(ctx, directory, opts...); err != nil {
		return nil, err
	}

	dir := d.Dir(directory)
	frame := &dataset.Frame{}
	for _, g := range groups {
		part, err := loadGroup(dir, g)
		if err != nil {
			return nil, err
		}
		frame.Concat(part)
	}
	return frame, nil
}

func loadGroup(dir, group string) (*dataset.Frame, error) {
	train, err := readWide(filepath.Join(dir, group+"-train.csv"))
	if err != nil {
		return nil, err
	}
	test, err := readWide(filepath.Join(dir, group+"-test.csv"))
	if err != nil {
		return nil, err
	}

	lengths := make(map[string]int, len(train))
	frame := &dataset.Frame{}
	for _, s := range train {
		frame.Append(s.id, group, 1, s.values)
		lengths[s.id] = len(s.values)
	}
	for _, s := range test {
		frame.Append(s.id, group, lengths[s.id]+1, s.values)
	}
	return frame.Sorted(), nil
}

type series struct {
	id     string
	values []float64
}

// readWide parses a row-per-series file: a header row, then rows holding the
// series id followed by its values, padded with empty cells.
func readWide(path string) ([]series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty file", path)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var out []series
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if len(record) == 0 || record[0] == "" {
			continue
		}

		s := series{id: record[0]}
		for _, cell := range record[1:] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				break
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: series %s: %w", path, s.id, err)
			}
			s.values = append(s.values, v)
		}
		out = append(out, s)
	}
	return out, nil
}
