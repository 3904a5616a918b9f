package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/forPelevin/jumpcut/internal/domain/editplan"
	"github.com/forPelevin/jumpcut/internal/logging"
	"github.com/forPelevin/jumpcut/internal/ports"
	"github.com/forPelevin/jumpcut/internal/types"
)

// Renderer writes the kept parts of a plan to an output file.
type Renderer interface {
	Render(ctx context.Context, inputPath, outputPath string, plan editplan.Plan, copyCodec bool) error
}

type Deps struct {
	Video    ports.VideoTool
	Prober   ports.Prober
	ASR      ports.ASR
	Renderer Renderer
	// Tangents is optional; nil disables the tangent hook.
	Tangents ports.TangentDetector
	Log      *slog.Logger
}

type Usecase struct {
	d   Deps
	log *slog.Logger
}

func New(d Deps) Usecase {
	return Usecase{d: d, log: logging.OrNop(d.Log).With("component", "usecase")}
}

type Input struct {
	InputPath string
	// CacheDir holds audio.wav and transcript.json for this input. A cached
	// transcript skips audio extraction and recognition.
	CacheDir string
	Plan     editplan.Config
}

type Result struct {
	Media      types.MediaInfo
	Transcript types.Transcript
	Words      []types.Word
	Plan       editplan.Plan
	// Cached reports whether the transcript came from CacheDir.
	Cached bool
}

const transcriptCacheFile = "transcript.json"

// Plan probes and transcribes the input and builds its edit plan. Degenerate
// inputs (no words, zero duration) still produce a plan; rejecting them is
// the caller's decision.
func (u Usecase) Plan(ctx context.Context, in Input) (Result, error) {
	media, err := u.d.Prober.Probe(ctx, in.InputPath)
	if err != nil {
		return Result{}, err
	}
	u.log.Info("probed input", "duration", media.Duration, "has_audio", media.HasAudio, "has_video", media.HasVideo)

	res := Result{Media: media}
	if media.HasAudio && media.Duration > 0 {
		tr, cached, err := u.transcript(ctx, in)
		if err != nil {
			return Result{}, err
		}
		res.Transcript, res.Cached = tr, cached
		res.Words = tr.Words()
	} else {
		u.log.Warn("input has no audio to transcribe", "input", in.InputPath)
	}
	u.log.Info("transcript ready", "words", len(res.Words), "cached", res.Cached)

	candidates := editplan.Detect(res.Words, media.Duration, in.Plan)
	if u.d.Tangents != nil && len(res.Words) > 0 {
		tangents, err := u.d.Tangents.DetectTangents(ctx, res.Words, media.Duration)
		if err != nil {
			return Result{}, fmt.Errorf("detect tangents: %w", err)
		}
		u.log.Info("tangent detection finished", "tangents", len(tangents))
		candidates = append(candidates, tangents...)
	}

	res.Plan = editplan.New(candidates, media.Duration, in.Plan.MergeTolerance)
	u.log.Info("plan built",
		"segments", len(res.Plan.Segments),
		"removed", res.Plan.RemovedDuration,
		"edited", res.Plan.EditedDuration,
	)
	return res, nil
}

// Render hands a finished plan to the renderer.
func (u Usecase) Render(ctx context.Context, inputPath, outputPath string, plan editplan.Plan, copyCodec bool) error {
	if u.d.Renderer == nil {
		return errors.New("renderer is not configured")
	}
	return u.d.Renderer.Render(ctx, inputPath, outputPath, plan, copyCodec)
}

func (u Usecase) transcript(ctx context.Context, in Input) (types.Transcript, bool, error) {
	cachePath := filepath.Join(in.CacheDir, transcriptCacheFile)
	if b, err := os.ReadFile(cachePath); err == nil {
		var tr types.Transcript
		if err := json.Unmarshal(b, &tr); err == nil {
			return tr, true, nil
		}
		u.log.Warn("ignoring unreadable transcript cache", "path", cachePath)
	}

	if err := os.MkdirAll(in.CacheDir, 0o755); err != nil {
		return types.Transcript{}, false, err
	}
	wav := filepath.Join(in.CacheDir, "audio.wav")
	u.log.Info("extracting audio", "wav", wav)
	if err := u.d.Video.ExtractAudioMono16k(ctx, in.InputPath, wav); err != nil {
		return types.Transcript{}, false, err
	}
	u.log.Info("transcribing")
	tr, err := u.d.ASR.Transcribe(ctx, wav, in.CacheDir)
	if err != nil {
		return types.Transcript{}, false, err
	}

	b, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return types.Transcript{}, false, fmt.Errorf("marshal transcript: %w", err)
	}
	if err := os.WriteFile(cachePath, b, 0o644); err != nil {
		return types.Transcript{}, false, err
	}
	return tr, false, nil
}
