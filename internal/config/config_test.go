package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zalando/go-keyring"
)

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	t.Setenv(tokenEnv, "")
	return home
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	setupHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend != BackendMemory {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendMemory)
	}
	if cfg.Debounce() != time.Second || cfg.SavedHold() != 850*time.Millisecond {
		t.Errorf("timings = %v / %v", cfg.Debounce(), cfg.SavedHold())
	}
	if !cfg.UI.VimMode {
		t.Error("vim mode should default on")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	home := setupHome(t)
	path := filepath.Join(home, "config.yaml")
	data := []byte(`
backend: sqlite
autosave:
  debounce: 250ms
ui:
  notify: false
log:
  level: debug
`)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Backend != BackendSQLite || cfg.Debounce() != 250*time.Millisecond {
		t.Errorf("got backend %q debounce %v", cfg.Backend, cfg.Debounce())
	}
	if cfg.SavedHold() != 850*time.Millisecond {
		t.Errorf("unset saved_hold should keep the default, got %v", cfg.SavedHold())
	}
	if cfg.UI.Notify || cfg.Log.Level != "debug" {
		t.Errorf("ui/log = %+v %+v", cfg.UI, cfg.Log)
	}

	storePath, err := cfg.StorePath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, "data", "shopfloor", "shopfloor.db"); storePath != want {
		t.Errorf("StorePath() = %q, want %q", storePath, want)
	}
}

func TestLoadFileRejectsBadValues(t *testing.T) {
	home := setupHome(t)
	tests := map[string]string{
		"backend":  "backend: postgres\n",
		"duration": "autosave:\n  debounce: soon\n",
		"negative": "autosave:\n  saved_hold: -1s\n",
		"yaml":     "backend: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(home, name+".yaml")
			if err := os.WriteFile(path, []byte(body), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	setupHome(t)
	cfg := DefaultConfig()
	cfg.Backend = BackendRemote
	cfg.API.BaseURL = "https://shop.example.com/api"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Backend != BackendRemote || got.API.BaseURL != cfg.API.BaseURL {
		t.Errorf("got %+v", got)
	}
}

func TestSaveFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shop.yaml")
	cfg := DefaultConfig()
	cfg.Backend = BackendSQLite
	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("mode = %v, want 0600", perm)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Backend != BackendSQLite {
		t.Errorf("Backend = %q, want %q", got.Backend, BackendSQLite)
	}
}

func TestStorePathExpandsHome(t *testing.T) {
	home := setupHome(t)
	cfg := DefaultConfig()
	cfg.Store.Path = "~/shop/data.json"

	got, err := cfg.StorePath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, "shop", "data.json"); got != want {
		t.Errorf("StorePath() = %q, want %q", got, want)
	}
}

func TestTokenLookupOrder(t *testing.T) {
	setupHome(t)
	keyring.MockInit()

	if token, src, err := LookupToken(); err != nil || token != "" || src != SourceNone {
		t.Fatalf("empty lookup = %q %q %v", token, src, err)
	}

	if err := SaveToken("  from-keyring \n"); err != nil {
		t.Fatal(err)
	}
	token, src, err := LookupToken()
	if err != nil || token != "from-keyring" || src != SourceKeyring {
		t.Errorf("keyring lookup = %q %q %v", token, src, err)
	}

	t.Setenv(tokenEnv, "from-env")
	if token, src, _ := LookupToken(); token != "from-env" || src != SourceEnv {
		t.Errorf("env lookup = %q %q", token, src)
	}
	t.Setenv(tokenEnv, "")

	if err := ClearToken(); err != nil {
		t.Fatal(err)
	}
	if HasToken() {
		t.Error("token still present after ClearToken")
	}
	if err := SaveToken(" "); err == nil {
		t.Error("blank token accepted")
	}
}

func TestTokenFromCredentialsFile(t *testing.T) {
	setupHome(t)
	keyring.MockInit()

	dir, err := DataDir()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, credFileName), []byte("from-file\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if token, src, _ := LookupToken(); token != "from-file" || src != SourceFile {
		t.Errorf("file lookup = %q %q", token, src)
	}
}
