package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nikbrunner/bmtree/internal/config"
	"github.com/nikbrunner/bmtree/internal/favicon"
	"gotest.tools/v3/assert"
)

func TestLoadConfig_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg, err := config.LoadConfig(path)
	assert.NilError(t, err)
	assert.DeepEqual(t, *cfg, config.DefaultConfig())

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
}

func TestLoadConfig_AppliesDefaultsToMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(path, []byte(`{"fetchIcons": true, "iconConcurrency": 2, "logLevel": "debug"}`), 0644)
	assert.NilError(t, err)

	cfg, err := config.LoadConfig(path)
	assert.NilError(t, err)

	assert.Check(t, cfg.FetchIcons)
	assert.Equal(t, cfg.IconConcurrency, 2)
	assert.Equal(t, cfg.LogLevel, "debug")
	assert.Equal(t, cfg.DefaultRootTitle, "Bookmarks")
	assert.Equal(t, cfg.IconTimeout(), 10*time.Second)
	assert.DeepEqual(t, cfg.IconSources, favicon.DefaultSources)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	assert.NilError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := config.LoadConfig(path)
	assert.ErrorContains(t, err, "parse")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	want := config.DefaultConfig()
	want.DefaultRootTitle = "Mine"
	want.IconSources = []string{"https://{host}/icon.png"}

	assert.NilError(t, config.SaveConfig(path, &want))
	got, err := config.LoadConfig(path)
	assert.NilError(t, err)
	assert.DeepEqual(t, *got, want)
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cfg := config.Config{LogLevel: tt.in}
			got, err := cfg.SlogLevel()
			if tt.wantErr {
				assert.Check(t, err != nil)
				return
			}
			assert.NilError(t, err)
			assert.Equal(t, got, tt.want)
		})
	}
}
