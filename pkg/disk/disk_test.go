package disk

import (
	"hds/pkg/config"
	"hds/pkg/manifest"
	"os"
	"path/filepath"
	"testing"
)

func setup(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.New(
		filepath.Join(base, "cache"),
		filepath.Join(base, "config"),
		filepath.Join(base, "state"),
		filepath.Join(base, "data"),
	)

	m4 := filepath.Join(cfg.GetDatasetDir(), "m4", "datasets")
	if err := os.MkdirAll(m4, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(m4, "Yearly-train.csv"), make([]byte, 2048), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(cfg.GetStateDir(), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.GetManifestPath(), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestGetInfo(t *testing.T) {
	cfg := setup(t)
	stats, total, err := NewManager(cfg).GetInfo()
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected m4 and manifest rows, got %+v", stats)
	}
	if stats[0].Label != "m4" || stats[0].Size != 2048 || stats[0].Items != 1 {
		t.Errorf("unexpected m4 usage: %+v", stats[0])
	}
	if total != 2050 {
		t.Errorf("expected total 2050, got %d", total)
	}
}

func TestInfo_Table(t *testing.T) {
	cfg := setup(t)
	res, err := NewManager(cfg).Info()
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Output.Table.Rows[0][1]; got != "2.0 KiB" {
		t.Errorf("expected humanized size 2.0 KiB, got %q", got)
	}
	if res.Output.Message != "Total: 2.0 KiB" {
		t.Errorf("unexpected message %q", res.Output.Message)
	}
}

func TestInfo_Empty(t *testing.T) {
	base := t.TempDir()
	cfg := config.New(base, base, filepath.Join(base, "state"), filepath.Join(base, "nodata"))
	stats, total, err := NewManager(cfg).GetInfo()
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 0 || total != 0 {
		t.Errorf("expected no usage, got %+v / %d", stats, total)
	}
}

func TestClean(t *testing.T) {
	cfg := setup(t)
	cleaned, err := NewManager(cfg).Clean()
	if err != nil {
		t.Fatal(err)
	}
	if len(cleaned) != 1 {
		t.Errorf("expected one dataset removed, got %v", cleaned)
	}
	if _, err := os.Stat(filepath.Join(cfg.GetDatasetDir(), "m4")); !os.IsNotExist(err) {
		t.Error("expected m4 directory to be gone")
	}
	if _, err := os.Stat(cfg.GetManifestPath()); !os.IsNotExist(err) {
		t.Error("expected manifest to be gone")
	}
}

func TestGetInfo_ManifestEntries(t *testing.T) {
	cfg := setup(t)
	store := manifest.Open(cfg.GetManifestPath())
	for _, u := range []string{"http://h/a.csv", "http://h/b.csv"} {
		if _, err := store.Record(manifest.Entry{URL: u, Path: "/data/" + u, Complete: true}); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Save(); err != nil {
		t.Fatal(err)
	}

	stats, _, err := NewManager(cfg).GetInfo()
	if err != nil {
		t.Fatal(err)
	}
	last := stats[len(stats)-1]
	if last.Label != "Manifest" || last.Items != 2 {
		t.Errorf("expected manifest row with 2 entries, got %+v", last)
	}
}
