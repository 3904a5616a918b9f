package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/forPelevin/jumpcut/internal/config"
	"github.com/forPelevin/jumpcut/internal/domain/captions"
	"github.com/forPelevin/jumpcut/internal/domain/editplan"
	"github.com/forPelevin/jumpcut/internal/logging"
	"github.com/forPelevin/jumpcut/internal/ports"
	"github.com/forPelevin/jumpcut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/jumpcut/internal/ports/adapters/openrouter"
	"github.com/forPelevin/jumpcut/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/jumpcut/internal/render"
	"github.com/forPelevin/jumpcut/internal/store"
	"github.com/forPelevin/jumpcut/internal/types"
	"github.com/forPelevin/jumpcut/internal/usecase"
)

var (
	ErrNoWords      = errors.New("no words were transcribed from the input")
	ErrZeroDuration = errors.New("input has zero duration")
)

type Config struct {
	App    *config.Config
	Input  string
	Output string
	// PlanOnly stops after plan.json is written.
	PlanOnly bool
	Logger   *slog.Logger

	// Deps overrides the adapters built from App. Tests use it to run the
	// pipeline without ffmpeg or whisper.cpp installed.
	Deps *usecase.Deps
}

func (c Config) Validate() error {
	if c.App == nil {
		return errors.New("config is nil")
	}
	if c.Input == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.Input); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if err := c.App.Validate(); err != nil {
		return err
	}
	if c.App.TangentsEnabled() {
		return openrouter.ValidateBaseURL(c.App.LLM.BaseURL, c.App.LLM.AllowedHosts)
	}
	return nil
}

type Result struct {
	RunID          string
	RunDir         string
	PlanPath       string
	TranscriptPath string
	ManifestPath   string
	Output         string
	CaptionsPath   string
	Plan           editplan.Plan
}

// Run plans one input and, unless PlanOnly is set, renders it. plan.json and
// transcript.json are always written before degenerate inputs are rejected.
func Run(ctx context.Context, cfg Config) (res Result, err error) {
	log := logging.OrNop(cfg.Logger)
	app := cfg.App

	absIn, err := filepath.Abs(cfg.Input)
	if err != nil {
		return Result{}, err
	}

	history := openHistory(app.Paths.HistoryDB, log)
	defer history.Close()
	res.RunID = history.record(ctx, absIn)
	defer func() {
		history.finish(ctx, res, err)
	}()

	key, err := inputKey(absIn)
	if err != nil {
		return res, err
	}
	cacheDir := filepath.Join(app.Paths.CacheDir, "runs", key)
	log.Info("preparing workspace", "cache", cacheDir)

	res.RunDir = buildRunOutDir(app.Paths.OutDir, absIn, time.Now().UTC())
	if err := os.MkdirAll(res.RunDir, 0o755); err != nil {
		return res, err
	}
	log.Info("output run dir", "dir", res.RunDir)

	deps := buildDeps(cfg, log)
	uc := usecase.New(deps)

	planned, err := uc.Plan(ctx, usecase.Input{
		InputPath: absIn,
		CacheDir:  cacheDir,
		Plan:      app.PlanConfig(),
	})
	if err != nil {
		return res, err
	}
	res.Plan = planned.Plan

	res.TranscriptPath = filepath.Join(res.RunDir, "transcript.json")
	if err := writeJSON(res.TranscriptPath, planned.Transcript); err != nil {
		return res, err
	}
	res.PlanPath = filepath.Join(res.RunDir, "plan.json")
	if err := editplan.Save(res.PlanPath, planned.Plan); err != nil {
		return res, err
	}
	log.Info("plan written", "path", res.PlanPath)

	if planned.Media.Duration <= 0 {
		return res, ErrZeroDuration
	}
	if len(planned.Words) == 0 {
		return res, ErrNoWords
	}
	if cfg.PlanOnly {
		return res, writeManifest(&res, absIn)
	}

	res.Output = cfg.Output
	if res.Output == "" {
		ext := filepath.Ext(absIn)
		if ext == "" {
			ext = ".mp4"
		}
		res.Output = filepath.Join(res.RunDir, "edited"+ext)
	}
	if err := uc.Render(ctx, absIn, res.Output, planned.Plan, app.Render.CopyCodec); err != nil {
		res.Output = ""
		return res, err
	}

	if app.Render.Captions {
		res.CaptionsPath = strings.TrimSuffix(res.Output, filepath.Ext(res.Output)) + ".srt"
		srt := captions.RenderSRT(captions.Retime(planned.Words, planned.Plan))
		if err := os.WriteFile(res.CaptionsPath, []byte(srt), 0o644); err != nil {
			return res, fmt.Errorf("write captions: %w", err)
		}
		log.Info("captions written", "path", res.CaptionsPath)
	}
	return res, writeManifest(&res, absIn)
}

type RenderConfig struct {
	App      *config.Config
	Input    string
	PlanPath string
	Output   string
	Logger   *slog.Logger
	Video    ports.VideoTool
}

// RenderPlan re-renders a saved or externally authored plan.
func RenderPlan(ctx context.Context, cfg RenderConfig) (res Result, err error) {
	log := logging.OrNop(cfg.Logger)
	app := cfg.App
	if cfg.Output == "" {
		return Result{}, errors.New("output path is required")
	}

	absIn, err := filepath.Abs(cfg.Input)
	if err != nil {
		return Result{}, err
	}
	if _, err := os.Stat(absIn); err != nil {
		return Result{}, fmt.Errorf("stat input: %w", err)
	}

	history := openHistory(app.Paths.HistoryDB, log)
	defer history.Close()
	res.RunID = history.record(ctx, absIn)
	defer func() {
		history.finish(ctx, res, err)
	}()

	plan, err := editplan.Load(cfg.PlanPath)
	if err != nil {
		return res, err
	}
	res.Plan, res.PlanPath = plan, cfg.PlanPath

	video := cfg.Video
	if video == nil {
		video = newFFmpeg(app)
	}
	r := render.New(video, render.Options{Workers: app.Render.Workers, Logger: log})
	if err := r.Render(ctx, absIn, cfg.Output, plan, app.Render.CopyCodec); err != nil {
		return res, err
	}
	res.Output = cfg.Output
	return res, nil
}

func buildDeps(cfg Config, log *slog.Logger) usecase.Deps {
	if cfg.Deps != nil {
		d := *cfg.Deps
		if d.Log == nil {
			d.Log = log
		}
		return d
	}
	app := cfg.App
	v := newFFmpeg(app)
	d := usecase.Deps{
		Video:    v,
		Prober:   v,
		ASR:      whispercpp.New(app.Tools.WhisperBin, app.Tools.WhisperModel, app.Tools.WhisperLanguage),
		Renderer: render.New(v, render.Options{Workers: app.Render.Workers, Logger: log}),
		Log:      log,
	}
	if app.TangentsEnabled() {
		d.Tangents = openrouter.New(app.LLM.APIKey, app.LLM.Model, app.LLM.BaseURL, app.LLMTimeout())
	}
	return d
}

func newFFmpeg(app *config.Config) *ffmpeg.Adapter {
	return ffmpeg.New(app.Tools.FFmpeg, app.Tools.FFprobe, ffmpeg.Options{
		VideoPreset:  app.Render.VideoPreset,
		VideoCRF:     app.Render.VideoCRF,
		AudioBitrate: app.Render.AudioBitrate,
		StepTimeout:  app.StepTimeout(),
	})
}

func writeManifest(res *Result, input string) error {
	m := types.Manifest{
		RunID:     res.RunID,
		Input:     input,
		Output:    res.Output,
		Plan:      res.PlanPath,
		Captions:  res.CaptionsPath,
		Original:  res.Plan.OriginalDuration,
		Edited:    res.Plan.EditedDuration,
		Removed:   res.Plan.RemovedDuration,
		KeepCount: len(res.Plan.KeepSegments()),
	}
	res.ManifestPath = filepath.Join(res.RunDir, "manifest.json")
	return writeJSON(res.ManifestPath, m)
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, b, 0o644)
}

// inputKey identifies an input for transcript caching. Size and mtime are
// part of the key so a replaced file is transcribed again.
func inputKey(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat input: %w", err)
	}
	return hash(fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())), nil
}

func buildRunOutDir(outRoot, input string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", input, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// history wraps the run store so a broken database never fails an edit.
type history struct {
	s   *store.Store
	log *slog.Logger
}

func openHistory(path string, log *slog.Logger) *history {
	h := &history{log: log}
	if path == "" {
		return h
	}
	s, err := store.Open(path)
	if err != nil {
		log.Warn("run history disabled", "path", path, "error", err)
		return h
	}
	h.s = s
	return h
}

func (h *history) record(ctx context.Context, input string) string {
	if h.s == nil {
		return ""
	}
	id, err := h.s.Record(ctx, input)
	if err != nil {
		h.log.Warn("record run failed", "error", err)
		return ""
	}
	return id
}

func (h *history) finish(ctx context.Context, res Result, runErr error) {
	if h.s == nil || res.RunID == "" {
		return
	}
	err := h.s.Finish(context.WithoutCancel(ctx), res.RunID, store.Outcome{
		Output:           res.Output,
		PlanPath:         res.PlanPath,
		OriginalDuration: res.Plan.OriginalDuration,
		EditedDuration:   res.Plan.EditedDuration,
		RemovedDuration:  res.Plan.RemovedDuration,
		Err:              runErr,
	})
	if err != nil {
		h.log.Warn("finish run failed", "error", err)
	}
}

func (h *history) Close() {
	if h.s != nil {
		_ = h.s.Close()
	}
}

// ensure adapters implement ports
var (
	_ ports.VideoTool       = (*ffmpeg.Adapter)(nil)
	_ ports.Prober          = (*ffmpeg.Adapter)(nil)
	_ ports.ASR             = (*whispercpp.Adapter)(nil)
	_ ports.TangentDetector = (*openrouter.Adapter)(nil)
	_ usecase.Renderer      = (*render.Renderer)(nil)
)
