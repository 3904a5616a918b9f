package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/forPelevin/jumpcut/internal/config"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OPENROUTER_API_KEY", "")
	work := t.TempDir()
	t.Chdir(work)
	return work
}

func TestLoadDefaultsExpandPaths(t *testing.T) {
	work := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected no config file in an isolated HOME")
	}
	if !strings.HasSuffix(resolved, filepath.Join(".config", "jumpcut", "config.toml")) {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.OutDir != filepath.Join(work, "out") {
		t.Fatalf("unexpected out dir: %q", cfg.Paths.OutDir)
	}
	if cfg.Paths.HistoryDB != filepath.Join(work, ".cache", "history.db") {
		t.Fatalf("unexpected history db: %q", cfg.Paths.HistoryDB)
	}
	if cfg.Tools.FFmpeg != "ffmpeg" {
		t.Fatalf("bare tool names must stay as-is for PATH lookup, got %q", cfg.Tools.FFmpeg)
	}
	if cfg.Tools.WhisperBin != filepath.Join(work, ".cache", "bin", "whisper.cpp") {
		t.Fatalf("unexpected whisper bin: %q", cfg.Tools.WhisperBin)
	}
	if cfg.Render.Workers < 1 || cfg.Render.Workers > 4 {
		t.Fatalf("unexpected default workers: %d", cfg.Render.Workers)
	}
	if cfg.TangentsEnabled() {
		t.Fatal("tangent removal must be off by default")
	}
	plan := cfg.PlanConfig()
	if plan.MinSilence != 1.5 || plan.RepetitionWindow != 3 || !plan.RemoveSilence {
		t.Fatalf("unexpected plan config: %+v", plan)
	}
}

func TestLoadProjectFileOverridesDefaults(t *testing.T) {
	work := isolate(t)
	t.Setenv("OPENROUTER_API_KEY", "sk-test")
	body := `
[detect]
min_silence = 2.0
remove_tangents = true
use_llm = true
filler_words = ["um", "sozusagen"]

[render]
workers = 2
copy_codec = true

[logging]
format = "JSON"
`
	if err := os.WriteFile(filepath.Join(work, "jumpcut.toml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != filepath.Join(work, "jumpcut.toml") {
		t.Fatalf("expected project config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Detect.MinSilence != 2.0 || cfg.Render.Workers != 2 || !cfg.Render.CopyCodec {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Detect.SilencePadding != 0.1 {
		t.Fatalf("omitted keys must keep defaults, got padding %v", cfg.Detect.SilencePadding)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized log format, got %q", cfg.Logging.Format)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Fatalf("expected api key from env, got %q", cfg.LLM.APIKey)
	}
	if !cfg.TangentsEnabled() {
		t.Fatal("expected tangents to be enabled")
	}
	if got := cfg.PlanConfig().FillerWords; len(got) != 2 || got[1] != "sozusagen" {
		t.Fatalf("unexpected filler words: %v", got)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	work := isolate(t)
	path := filepath.Join(work, "custom.toml")
	if err := os.WriteFile(path, []byte("[detect]\nmin_silense = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	work := isolate(t)
	if _, _, _, err := config.Load(filepath.Join(work, "nope.toml")); err == nil {
		t.Fatal("expected missing explicit config to fail")
	}
}

func TestSampleConfigLoads(t *testing.T) {
	work := isolate(t)
	path := filepath.Join(work, "sample", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	def := config.Default()
	if cfg.Detect.MinSilence != def.Detect.MinSilence || cfg.Render.Workers != def.Render.Workers {
		t.Fatalf("sample diverges from defaults: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		is     error
	}{
		{name: "tangents without llm", mutate: func(c *config.Config) { c.Detect.RemoveTangents = true }, is: config.ErrTangentsRequireLLM},
		{name: "tangents without key", mutate: func(c *config.Config) { c.Detect.RemoveTangents, c.Detect.UseLLM = true, true }},
		{name: "min silence", mutate: func(c *config.Config) { c.Detect.MinSilence = 0 }},
		{name: "padding", mutate: func(c *config.Config) { c.Detect.SilencePadding = 1 }},
		{name: "window", mutate: func(c *config.Config) { c.Detect.RepetitionWindow = 1 }},
		{name: "confidence", mutate: func(c *config.Config) { c.Detect.SilenceConfidence = -0.1 }},
		{name: "workers", mutate: func(c *config.Config) { c.Render.Workers = 0 }},
		{name: "crf", mutate: func(c *config.Config) { c.Render.VideoCRF = 60 }},
		{name: "log format", mutate: func(c *config.Config) { c.Logging.Format = "xml" }},
		{name: "log level", mutate: func(c *config.Config) { c.Logging.Level = "loud" }},
	}
	base := config.Default()
	if err := base.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Fatalf("expected %v, got %v", tt.is, err)
			}
		})
	}
}

func TestUseLLMAloneIsAllowed(t *testing.T) {
	cfg := config.Default()
	cfg.Detect.UseLLM = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("use_llm without remove_tangents should be valid: %v", err)
	}
	if cfg.TangentsEnabled() {
		t.Fatal("tangents must stay off without remove_tangents")
	}
}

func TestExpandPathHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/videos")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "videos") {
		t.Fatalf("unexpected expansion: %q", got)
	}
	if got, _ := config.ExpandPath(""); got != "" {
		t.Fatalf("empty path must stay empty, got %q", got)
	}
}
