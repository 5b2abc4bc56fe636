package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oceanlab.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.Wavelet.Mother != "morlet" || cfg.BM95.GridSpacing != 0.25 || cfg.ENSO.CorrFactor != [2]float64{1, -1} {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestYAMLProviderOverlaysDefaults(t *testing.T) {
	t.Setenv(EnvStorePath, "")
	t.Setenv(EnvOutputDir, "")

	path := writeConfig(t, `
wavelet:
  mother: paul
  dj: 0.125
  lag1: 0.72
bm95:
  modes: 3
enso:
  base-start: "1981-01-01"
  corr-factor: [1, 1]
argo:
  region: [[-90, -20], [-70, -20], [-70, 0]]
`)
	cfg, err := NewYAMLProvider(path).LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Wavelet.Mother != "paul" || cfg.Wavelet.Dj != 0.125 {
		t.Errorf("wavelet section not applied: %+v", cfg.Wavelet)
	}
	if cfg.Wavelet.Lag1 == nil || *cfg.Wavelet.Lag1 != 0.72 {
		t.Errorf("expected lag1 override 0.72")
	}
	if !cfg.Wavelet.Pad || cfg.Wavelet.Level != 0.95 {
		t.Errorf("unset wavelet fields lost their defaults: %+v", cfg.Wavelet)
	}
	if cfg.BM95.Modes != 3 || cfg.BM95.FillLimit != 2 {
		t.Errorf("unexpected bm95 section %+v", cfg.BM95)
	}
	if cfg.ENSO.CorrFactor != [2]float64{1, 1} || cfg.ENSO.BaseEnd != "2019-12-30" {
		t.Errorf("unexpected enso section %+v", cfg.ENSO)
	}
	if len(cfg.Argo.Region) != 3 || cfg.Argo.Region[1] != [2]float64{-70, -20} {
		t.Errorf("unexpected argo region %v", cfg.Argo.Region)
	}
}

func TestYAMLProviderEnvOverrides(t *testing.T) {
	t.Setenv(EnvStorePath, "/tmp/runs.db")
	t.Setenv(EnvOutputDir, "/tmp/out")

	cfg, err := NewYAMLProvider("").LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Store.Path != "/tmp/runs.db" || cfg.Output.Dir != "/tmp/out" {
		t.Errorf("environment not applied: store=%q output=%q", cfg.Store.Path, cfg.Output.Dir)
	}
}

func TestYAMLProviderErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		invalid bool
	}{
		{name: "unknown key", content: "wavelet:\n  mothr: dog\n"},
		{name: "malformed", content: "wavelet: [\n"},
		{name: "level too high", content: "wavelet:\n  level: 0.99999\n", invalid: true},
		{name: "bad format", content: "output:\n  format: netcdf\n", invalid: true},
		{name: "bad base period", content: "enso:\n  base-start: \"2020-01-01\"\n", invalid: true},
		{name: "cutoff above nyquist", content: "filter:\n  cutoff: 0.75\n", invalid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewYAMLProvider(writeConfig(t, tt.content)).LoadConfig()
			if err == nil {
				t.Fatalf("expected an error")
			}
			if got := errors.Is(err, ErrInvalidConfig); got != tt.invalid {
				t.Errorf("errors.Is(err, ErrInvalidConfig) = %v, expected %v (%v)", got, tt.invalid, err)
			}
		})
	}

	if _, err := NewYAMLProvider(filepath.Join(t.TempDir(), "missing.yaml")).LoadConfig(); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestSaveLoad(t *testing.T) {
	t.Setenv(EnvStorePath, "")
	t.Setenv(EnvOutputDir, "")

	cfg := DefaultConfig()
	cfg.Filter.Cutoff = 1.0 / 18
	cfg.Output.Format = "msgpack"

	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := NewYAMLProvider(path).LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Filter.Cutoff != cfg.Filter.Cutoff || loaded.Output.Format != "msgpack" {
		t.Errorf("saved settings not restored: %+v", loaded)
	}
}
