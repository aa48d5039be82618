package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fstop/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected missing config to be reported as absent")
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if cfg.Analysis.SniffBytes != 65536 {
		t.Fatalf("unexpected sniff_bytes default: %d", cfg.Analysis.SniffBytes)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected logging format default: %q", cfg.Logging.Format)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	path := writeConfig(t, `
[paths]
api_bind = "127.0.0.1:0"
api_token = " secret "

[analysis]
poll_interval = 10

[llm]
api_key = "key"
model = "some/model"
`)
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Analysis.PollInterval != 10 {
		t.Fatalf("unexpected poll interval: %d", cfg.Analysis.PollInterval)
	}
	if cfg.Paths.APIToken != "secret" {
		t.Fatalf("expected token to be trimmed, got %q", cfg.Paths.APIToken)
	}
	if cfg.LLM.Model != "some/model" {
		t.Fatalf("unexpected model: %q", cfg.LLM.Model)
	}
}

func TestLoadClampsSniffBytes(t *testing.T) {
	path := writeConfig(t, `
[analysis]
sniff_bytes = 1048576
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Analysis.SniffBytes != 65536 {
		t.Fatalf("expected sniff_bytes clamped to 65536, got %d", cfg.Analysis.SniffBytes)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name     string
		contents string
		want     string
	}{
		{
			name:     "negative poll interval",
			contents: "[analysis]\npoll_interval = -1\n",
			want:     "poll_interval",
		},
		{
			name:     "zero sniff bytes",
			contents: "[analysis]\nsniff_bytes = 0\n",
			want:     "sniff_bytes",
		},
		{
			name:     "llm key without model",
			contents: "[llm]\napi_key = \"key\"\nmodel = \"\"\n",
			want:     "llm.model",
		},
		{
			name:     "bad log format",
			contents: "[logging]\nformat = \"xml\"\n",
			want:     "logging.format",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.contents)
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error when config already exists")
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample failed: %v", err)
	}
	if !exists || cfg == nil {
		t.Fatal("expected sample config to load")
	}
}
