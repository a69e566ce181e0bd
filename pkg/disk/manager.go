// Package disk reports and reclaims the local storage used by hds.
package disk

import (
	"hds/pkg/config"
)

type manager struct {
	cfg config.ReadOnly
}

// Manager is a pointer to the internal manager implementation.
type Manager = *manager

func NewManager(cfg config.ReadOnly) Manager {
	return &manager{cfg: cfg}
}

// Usage is the disk footprint of one dataset or state file.
type Usage struct {
	Label string
	Size  int64
	Items int
	Path  string
}
