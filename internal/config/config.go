package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/forPelevin/jumpcut/internal/domain/editplan"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains working directories and the history database location.
type Paths struct {
	OutDir    string `toml:"out_dir"`
	CacheDir  string `toml:"cache_dir"`
	HistoryDB string `toml:"history_db"`
}

// Tools names the external binaries and the whisper model.
type Tools struct {
	FFmpeg          string `toml:"ffmpeg"`
	FFprobe         string `toml:"ffprobe"`
	WhisperBin      string `toml:"whisper_bin"`
	WhisperModel    string `toml:"whisper_model"`
	WhisperLanguage string `toml:"whisper_language"`
}

// Detect contains detector toggles and thresholds, in seconds.
type Detect struct {
	RemoveFillers        bool     `toml:"remove_fillers"`
	RemoveRepetitions    bool     `toml:"remove_repetitions"`
	RemoveSilence        bool     `toml:"remove_silence"`
	RemoveTangents       bool     `toml:"remove_tangents"`
	UseLLM               bool     `toml:"use_llm"`
	MinSilence           float64  `toml:"min_silence"`
	SilencePadding       float64  `toml:"silence_padding"`
	MergeTolerance       float64  `toml:"merge_tolerance"`
	RepetitionWindow     int      `toml:"repetition_window"`
	RepetitionMinLength  int      `toml:"repetition_min_length"`
	FillerConfidence     float64  `toml:"filler_confidence"`
	RepetitionConfidence float64  `toml:"repetition_confidence"`
	SilenceConfidence    float64  `toml:"silence_confidence"`
	FillerWords          []string `toml:"filler_words"`
}

// Render contains encoder and worker pool settings.
type Render struct {
	CopyCodec          bool   `toml:"copy_codec"`
	Workers            int    `toml:"workers"`
	StepTimeoutSeconds int    `toml:"step_timeout_seconds"`
	VideoCRF           int    `toml:"video_crf"`
	VideoPreset        string `toml:"video_preset"`
	AudioBitrate       string `toml:"audio_bitrate"`
	Captions           bool   `toml:"captions"`
}

// LLM contains the OpenRouter connection used for tangent detection.
type LLM struct {
	APIKey         string   `toml:"api_key"`
	Model          string   `toml:"model"`
	BaseURL        string   `toml:"base_url"`
	AllowedHosts   []string `toml:"allowed_hosts"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for jumpcut.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Tools   Tools   `toml:"tools"`
	Detect  Detect  `toml:"detect"`
	Render  Render  `toml:"render"`
	LLM     LLM     `toml:"llm"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the user configuration file.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/jumpcut/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded. The second return value is the
// resolved path and the third reports whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s does not exist", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs("jumpcut.toml")
	if err != nil {
		return "", false, err
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	for _, candidate := range []string{projectPath, defaultPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// PlanConfig converts the [detect] section into detector settings.
func (c *Config) PlanConfig() editplan.Config {
	d := c.Detect
	return editplan.Config{
		RemoveFillers:        d.RemoveFillers,
		RemoveRepetitions:    d.RemoveRepetitions,
		RemoveSilence:        d.RemoveSilence,
		MinSilence:           d.MinSilence,
		SilencePadding:       d.SilencePadding,
		MergeTolerance:       d.MergeTolerance,
		RepetitionWindow:     d.RepetitionWindow,
		RepetitionMinLen:     d.RepetitionMinLength,
		FillerConfidence:     d.FillerConfidence,
		RepetitionConfidence: d.RepetitionConfidence,
		SilenceConfidence:    d.SilenceConfidence,
		FillerWords:          append([]string(nil), d.FillerWords...),
	}
}

// TangentsEnabled reports whether the LLM tangent hook should run.
func (c *Config) TangentsEnabled() bool {
	return c.Detect.RemoveTangents && c.Detect.UseLLM
}

func (c *Config) StepTimeout() time.Duration {
	return time.Duration(c.Render.StepTimeoutSeconds) * time.Second
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
