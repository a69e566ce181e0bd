// Package tourism provides the Tourism forecasting competition dataset
// (Athanasopoulos, Hyndman, Song and Wu).
package tourism

import (
	"context"
	"encoding/csv"
	"fmt"
	"hds/pkg/cache"
	"hds/pkg/dataset"
	"hds/pkg/downloader"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SourceURL is the archive holding all tourism files.
const SourceURL = "https://robjhyndman.com/data/27-3-Athanasopoulos1.zip"

type Dataset struct {
	SourceURL string
}

var (
	_ dataset.Dataset = (*Dataset)(nil)
	_ dataset.Grouped = (*Dataset)(nil)
)

func New() *Dataset {
	return &Dataset{SourceURL: SourceURL}
}

func (d *Dataset) Name() string { return "tourism" }

func (d *Dataset) Groups() dataset.Info[dataset.Group] { return Info }

func (d *Dataset) Dir(directory string) string {
	return filepath.Join(directory, d.Name(), "datasets")
}

// DownloadData fetches and unpacks the archive once. The archive carries
// every group so the group filter is only validated.
func (d *Dataset) DownloadData(ctx context.Context, directory string, opts ...dataset.LoadOption) error {
	o := dataset.Apply(opts...)
	if o.Group != "" {
		if _, err := Info.GetGroup(o.Group); err != nil {
			return err
		}
	}

	dir := d.Dir(directory)
	marker := filepath.Join(dir, "yearly_in.csv")
	return cache.Ensure(ctx, marker, func() error {
		res, err := downloader.FetchFile(ctx, dir, d.SourceURL, true, o.FetchOptions()...)
		if err != nil {
			return fmt.Errorf("tourism: %w", err)
		}
		slog.Debug("Tourism archive unpacked", "files", len(res.Extracted))
		if _, err := os.Stat(marker); err != nil {
			return fmt.Errorf("tourism: archive did not contain %s: %w", filepath.Base(marker), err)
		}
		return nil
	})
}

// Load reads the selected group (all by default). Out-of-sample values
// follow the in-sample ones with ds continuing.
func (d *Dataset) Load(ctx context.Context, directory string, opts ...dataset.LoadOption) (*dataset.Frame, error) {
	o := dataset.Apply(opts...)
	groups := Info.Groups()
	if o.Group != "" {
		if _, err := Info.GetGroup(o.Group); err != nil {
			return nil, err
		}
		groups = []string{o.Group}
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
	prefix := strings.ToLower(group)
	in, err := readColumns(filepath.Join(dir, prefix+"_in.csv"))
	if err != nil {
		return nil, err
	}
	oos, err := readColumns(filepath.Join(dir, prefix+"_oos.csv"))
	if err != nil {
		return nil, err
	}

	lengths := make(map[string]int, len(in))
	frame := &dataset.Frame{}
	for _, s := range in {
		frame.Append(s.id, group, 1, s.values)
		lengths[s.id] = len(s.values)
	}
	for _, s := range oos {
		frame.Append(s.id, group, lengths[s.id]+1, s.values)
	}
	return frame.Sorted(), nil
}

type series struct {
	id     string
	values []float64
}

// readColumns parses a column-per-series file. Under each header the first
// non-empty cell is the series length n, and the series is made of the last
// n non-empty cells of the column.
func readColumns(path string) ([]series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	out := make([]series, 0, len(header))
	for col, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var cells []string
		for _, row := range rows[1:] {
			if col < len(row) {
				if cell := strings.TrimSpace(row[col]); cell != "" {
					cells = append(cells, cell)
				}
			}
		}
		if len(cells) == 0 {
			continue
		}

		n, err := strconv.ParseFloat(cells[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: series %s: bad length: %w", path, name, err)
		}
		length := int(n)
		if length < 0 || length > len(cells)-1 {
			return nil, fmt.Errorf("%s: series %s: length %d exceeds %d values", path, name, length, len(cells)-1)
		}

		s := series{id: name, values: make([]float64, 0, length)}
		for _, cell := range cells[len(cells)-length:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: series %s: %w", path, name, err)
			}
			s.values = append(s.values, v)
		}
		out = append(out, s)
	}
	return out, nil
}
