package cli

import (
	"bytes"
	"context"
	"errors"
	"hds/pkg/config"
	"hds/pkg/dataset"
	"hds/pkg/manifest"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type env struct {
	base string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return &env{base: t.TempDir()}
}

// cfg builds a fresh config; each run checks out and freezes its own.
func (e *env) cfg() *config.Config {
	return config.New(
		filepath.Join(e.base, "cache"),
		filepath.Join(e.base, "config"),
		filepath.Join(e.base, "state"),
		filepath.Join(e.base, "data"),
	)
}

func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := &app{initConfig: func() (config.ReadOnly, error) { return e.cfg(), nil }}
	var out, errOut bytes.Buffer
	_, err := a.execute(context.Background(), args, &out, &errOut)
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	out, err := newEnv(t).run(t, "list")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"m4", "tourism", "Dataset"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestGroupsCommand(t *testing.T) {
	out, err := newEnv(t).run(t, "groups", "m4")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Hourly") || !strings.Contains(out, "48,000") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestUnknownDataset(t *testing.T) {
	_, err := newEnv(t).run(t, "groups", "m5")
	if !errors.Is(err, dataset.ErrUnknownDataset) {
		t.Errorf("expected ErrUnknownDataset, got %v", err)
	}
}

func TestInvalidProgress(t *testing.T) {
	if _, err := newEnv(t).run(t, "list", "--progress", "fancy"); err == nil {
		t.Error("expected error for unknown progress mode")
	}
}

func TestLoadCommand(t *testing.T) {
	e := newEnv(t)
	dir := filepath.Join(e.base, "data", "datasets", "m4", "datasets")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"Yearly-train.csv": "V1,V2,V3\nY1,1,2\nY2,3,\n",
		"Yearly-test.csv":  "V1,V2\nY1,5\nY2,6\n",
		"M4-info.csv":      "M4id\nY1\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	out, err := e.run(t, "load", "m4", "--group", "Yearly", "--head", "2", "--progress", "none")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "5 observations in 2 series") {
		t.Errorf("unexpected summary:\n%s", out)
	}
	if !strings.Contains(out, "unique_id") {
		t.Errorf("expected table header:\n%s", out)
	}
}

func TestFetchCommand(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != config.DefaultUserAgent {
			t.Errorf("unexpected User-Agent %q", got)
		}
		w.Write([]byte("hello"))
	}))
	defer ts.Close()

	e := newEnv(t)
	dest := filepath.Join(e.base, "out")
	out, err := e.run(t, "fetch", ts.URL+"/greeting.txt", "--dir", dest, "--progress", "none")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "greeting.txt") {
		t.Errorf("unexpected output:\n%s", out)
	}

	content, err := os.ReadFile(filepath.Join(dest, "greeting.txt"))
	if err != nil || string(content) != "hello" {
		t.Errorf("unexpected file content %q: %v", content, err)
	}
	info, err := os.Stat(e.cfg().GetManifestPath())
	if err != nil {
		t.Fatalf("expected manifest to be written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected manifest mode 0600, got %o", perm)
	}

	entry, ok, err := manifest.Open(e.cfg().GetManifestPath()).Lookup(ts.URL + "/greeting.txt")
	if err != nil || !ok {
		t.Fatalf("expected ledger entry, ok=%v err=%v", ok, err)
	}
	if entry.FetchedAt.Location() != time.UTC {
		t.Errorf("expected UTC fetch time, got %v", entry.FetchedAt)
	}
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	if _, err := newEnv(t).run(t, "config", "init", "--config", path); err != nil {
		t.Fatal(err)
	}
	if _, err := newEnv(t).run(t, "config", "init", "--config", path); err == nil {
		t.Error("expected second init to refuse overwriting")
	}

	out, err := newEnv(t).run(t, "config", "show", "--config", path, "--data-dir", "/srv/hds")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"user_agent: Mozilla/5.0", "data_dir: /srv/hds", "progress: line"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}

	out, err = newEnv(t).run(t, "config", "path", "--config", path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("config path = %q, want %q", out, path)
	}
}

func TestDiskCommands(t *testing.T) {
	e := newEnv(t)
	dir := filepath.Join(e.cfg().GetDatasetDir(), "tourism")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "yearly_in.csv"), []byte("Y1\n1\n2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := e.run(t, "disk", "info")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "tourism") {
		t.Errorf("expected tourism usage:\n%s", out)
	}

	if _, err := e.run(t, "disk", "clean"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("expected tourism directory to be removed")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := newEnv(t).run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "hds ") {
		t.Errorf("unexpected version output %q", out)
	}
}
