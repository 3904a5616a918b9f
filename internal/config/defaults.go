package config

import (
	"runtime"

	"github.com/forPelevin/jumpcut/internal/domain/editplan"
)

const (
	defaultOutDir          = "out"
	defaultCacheDir        = ".cache"
	defaultHistoryDB       = ".cache/history.db"
	defaultWhisperBin      = ".cache/bin/whisper.cpp"
	defaultWhisperModel    = ".cache/models/ggml-base.bin"
	defaultLLMModel        = "anthropic/claude-3.5-sonnet"
	defaultLLMBaseURL      = "https://openrouter.ai"
	defaultLLMTimeout      = 90
	defaultStepTimeout     = 1800
	defaultVideoCRF        = 18
	defaultVideoPreset     = "veryfast"
	defaultAudioBitrate    = "192k"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	maxDefaultRenderWorker = 4
)

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	plan := editplan.DefaultConfig()
	return Config{
		Paths: Paths{
			OutDir:    defaultOutDir,
			CacheDir:  defaultCacheDir,
			HistoryDB: defaultHistoryDB,
		},
		Tools: Tools{
			FFmpeg:          "ffmpeg",
			FFprobe:         "ffprobe",
			WhisperBin:      defaultWhisperBin,
			WhisperModel:    defaultWhisperModel,
			WhisperLanguage: "auto",
		},
		Detect: Detect{
			RemoveFillers:        plan.RemoveFillers,
			RemoveRepetitions:    plan.RemoveRepetitions,
			RemoveSilence:        plan.RemoveSilence,
			MinSilence:           plan.MinSilence,
			SilencePadding:       plan.SilencePadding,
			MergeTolerance:       plan.MergeTolerance,
			RepetitionWindow:     plan.RepetitionWindow,
			RepetitionMinLength:  plan.RepetitionMinLen,
			FillerConfidence:     plan.FillerConfidence,
			RepetitionConfidence: plan.RepetitionConfidence,
			SilenceConfidence:    plan.SilenceConfidence,
			FillerWords:          plan.FillerWords,
		},
		Render: Render{
			Workers:            min(runtime.NumCPU(), maxDefaultRenderWorker),
			StepTimeoutSeconds: defaultStepTimeout,
			VideoCRF:           defaultVideoCRF,
			VideoPreset:        defaultVideoPreset,
			AudioBitrate:       defaultAudioBitrate,
		},
		LLM: LLM{
			Model:          defaultLLMModel,
			BaseURL:        defaultLLMBaseURL,
			AllowedHosts:   []string{"openrouter.ai", "api.openrouter.ai"},
			TimeoutSeconds: defaultLLMTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
