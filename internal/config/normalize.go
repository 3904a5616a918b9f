package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTools(); err != nil {
		return err
	}
	c.normalizeRender()
	c.normalizeLLM()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutDir) == "" {
		c.Paths.OutDir = defaultOutDir
	}
	if c.Paths.OutDir, err = expandPath(c.Paths.OutDir); err != nil {
		return fmt.Errorf("paths.out_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

// normalizeTools expands tool paths that name a file; bare names are left
// for PATH lookup.
func (c *Config) normalizeTools() error {
	fields := []struct {
		name  string
		value *string
		def   string
	}{
		{"tools.ffmpeg", &c.Tools.FFmpeg, "ffmpeg"},
		{"tools.ffprobe", &c.Tools.FFprobe, "ffprobe"},
		{"tools.whisper_bin", &c.Tools.WhisperBin, defaultWhisperBin},
		{"tools.whisper_model", &c.Tools.WhisperModel, defaultWhisperModel},
	}
	for _, f := range fields {
		v := strings.TrimSpace(*f.value)
		if v == "" {
			v = f.def
		}
		if strings.ContainsAny(v, `/\`) || strings.HasPrefix(v, "~") {
			expanded, err := expandPath(v)
			if err != nil {
				return fmt.Errorf("%s: %w", f.name, err)
			}
			v = expanded
		}
		*f.value = v
	}
	c.Tools.WhisperLanguage = strings.TrimSpace(c.Tools.WhisperLanguage)
	if c.Tools.WhisperLanguage == "" {
		c.Tools.WhisperLanguage = "auto"
	}
	return nil
}

func (c *Config) normalizeRender() {
	if c.Render.StepTimeoutSeconds == 0 {
		c.Render.StepTimeoutSeconds = defaultStepTimeout
	}
	c.Render.VideoPreset = strings.TrimSpace(c.Render.VideoPreset)
	if c.Render.VideoPreset == "" {
		c.Render.VideoPreset = defaultVideoPreset
	}
	c.Render.AudioBitrate = strings.TrimSpace(c.Render.AudioBitrate)
	if c.Render.AudioBitrate == "" {
		c.Render.AudioBitrate = defaultAudioBitrate
	}
}

func (c *Config) normalizeLLM() {
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.BaseURL), "/")
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
