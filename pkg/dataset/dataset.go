// Package dataset defines the contract implemented by hierarchical
// forecasting datasets and the helpers they share: a registry of dataset
// groups and a long-format frame of observations.
package dataset

import (
	"context"
	"hds/pkg/display"
	"hds/pkg/downloader"
	"hds/pkg/manifest"
)

// Loader reads a dataset that is present under a directory.
type Loader interface {
	// Load returns the observations stored under directory. Implementations
	// typically call DownloadData first when the raw files are missing.
	Load(ctx context.Context, directory string, opts ...LoadOption) (*Frame, error)
}

// Downloader materializes the raw source files of a dataset.
type Downloader interface {
	// DownloadData ensures the raw data exists under directory.
	DownloadData(ctx context.Context, directory string, opts ...LoadOption) error
}

// Dataset is the capability every concrete dataset provides.
type Dataset interface {
	// Name identifies the dataset, e.g. "m4". It is also its subdirectory.
	Name() string
	Loader
	Downloader
}

// Grouped is implemented by datasets split into named groups.
type Grouped interface {
	Groups() Info[Group]
}

// Group describes one partition of a dataset, such as a sampling frequency.
type Group interface {
	// Seasonality is the length of the seasonal cycle in observations.
	Seasonality() int
	// Horizon is the number of steps to forecast.
	Horizon() int
	// Freq is the pandas-style frequency alias ("Y", "Q", "M", ...).
	Freq() string
	// NumSeries is the number of series in the group.
	NumSeries() int
}

// Options collects the settings passed to Load and DownloadData.
type Options struct {
	Group    string
	Task     display.Task
	Manifest *manifest.Store
	Fetch    []downloader.Option
}

// LoadOption configures Load and DownloadData.
type LoadOption func(*Options)

// WithGroup selects a single group by name.
func WithGroup(name string) LoadOption {
	return func(o *Options) {
		o.Group = name
	}
}

// WithTask reports download progress to task.
func WithTask(task display.Task) LoadOption {
	return func(o *Options) {
		o.Task = task
	}
}

// WithManifest records fetched files in m.
func WithManifest(m *manifest.Store) LoadOption {
	return func(o *Options) {
		o.Manifest = m
	}
}

// WithFetchOptions passes extra options through to downloader.FetchFile.
func WithFetchOptions(opts ...downloader.Option) LoadOption {
	return func(o *Options) {
		o.Fetch = append(o.Fetch, opts...)
	}
}

// Apply builds Options from opts.
func Apply(opts ...LoadOption) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// FetchOptions returns the downloader options implied by o.
func (o Options) FetchOptions() []downloader.Option {
	var out []downloader.Option
	if o.Task != nil {
		out = append(out, downloader.WithTask(o.Task))
	}
	if o.Manifest != nil {
		out = append(out, downloader.WithManifest(o.Manifest))
	}
	return append(out, o.Fetch...)
}
