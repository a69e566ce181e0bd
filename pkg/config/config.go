// Package config manages application-wide settings and directory structures.
// It follows XDG specifications for storing datasets, cache, configuration and state.
package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// ReadOnly defines the read-only interface for Config.
// Immutable
type ReadOnly interface {
	GetCacheDir() string
	GetConfigDir() string
	GetStateDir() string
	GetDataDir() string
	GetDatasetDir() string
	GetManifestPath() string
	GetSettingsPath() string
	GetSettings() Settings
	Freeze()
	Checkout() Writable
}

// Writable defines the writable interface for Config.
// Mutable
type Writable interface {
	ReadOnly
	SetDataDir(string)
	SetStateDir(string)
	SetConfigDir(string)
	SetSettings(Settings)
}

// Config holds the base directories and user settings for hds.
// Mutable
type Config struct {
	cacheDir  string
	configDir string
	stateDir  string
	dataDir   string

	datasetDir   string
	manifestPath string
	settingsPath string

	settings Settings

	frozen bool
	edited bool
}

var _ ReadOnly = (*Config)(nil)
var _ Writable = (*Config)(nil)

func (c *Config) GetCacheDir() string     { return c.cacheDir }
func (c *Config) GetConfigDir() string    { return c.configDir }
func (c *Config) GetStateDir() string     { return c.stateDir }
func (c *Config) GetDataDir() string      { return c.dataDir }
func (c *Config) GetDatasetDir() string   { return c.datasetDir }
func (c *Config) GetManifestPath() string { return c.manifestPath }
func (c *Config) GetSettingsPath() string { return c.settingsPath }
func (c *Config) GetSettings() Settings   { return c.settings }

func (c *Config) SetDataDir(s string) {
	c.mustBeEditable()
	c.dataDir = s
	c.updateDerived()
}

func (c *Config) SetStateDir(s string) {
	c.mustBeEditable()
	c.stateDir = s
	c.updateDerived()
}

func (c *Config) SetConfigDir(s string) {
	c.mustBeEditable()
	c.configDir = s
	c.updateDerived()
}

func (c *Config) SetSettings(s Settings) {
	c.mustBeEditable()
	c.settings = s
	if s.DataDir != "" {
		c.dataDir = s.DataDir
	}
	c.updateDerived()
}

func (c *Config) mustBeEditable() {
	if c.frozen {
		panic("cannot modify frozen config")
	}
}

func (c *Config) Freeze() {
	c.frozen = true
}

func (c *Config) Checkout() Writable {
	if c.frozen {
		panic("cannot checkout from frozen config")
	}
	if c.edited {
		panic("config already checked out")
	}
	c.edited = true
	return c
}

func (c *Config) updateDerived() {
	c.datasetDir = filepath.Join(c.dataDir, "datasets")
	c.manifestPath = filepath.Join(c.stateDir, "manifest.json")
	c.settingsPath = filepath.Join(c.configDir, "config.yaml")
}

// Init initializes the configuration using XDG base directories and
// default settings. It does not read the settings file; see LoadSettings.
func Init() (ReadOnly, error) {
	return New(
		filepath.Join(xdg.CacheHome, "hds"),
		filepath.Join(xdg.ConfigHome, "hds"),
		filepath.Join(xdg.StateHome, "hds"),
		filepath.Join(xdg.DataHome, "hds"),
	), nil
}

// New builds a Config rooted at explicit directories. Tests use it with
// t.TempDir() paths.
func New(cacheDir, configDir, stateDir, dataDir string) *Config {
	c := &Config{
		cacheDir:  cacheDir,
		configDir: configDir,
		stateDir:  stateDir,
		dataDir:   dataDir,
		settings:  DefaultSettings(),
	}
	c.updateDerived()
	return c
}
