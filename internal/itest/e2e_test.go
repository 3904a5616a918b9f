//go:build integration

package itest

import (
	"context"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/forPelevin/jumpcut/internal/config"
	"github.com/forPelevin/jumpcut/internal/domain/editplan"
	"github.com/forPelevin/jumpcut/internal/pipeline"
	"github.com/forPelevin/jumpcut/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/jumpcut/internal/render"
)

func timeline(duration float64, keeps ...[2]float64) editplan.Plan {
	var segs []editplan.Segment
	cursor := 0.0
	for _, k := range keeps {
		if k[0] > cursor {
			segs = append(segs, editplan.Segment{Start: cursor, End: k[0], Action: editplan.Remove, Category: editplan.Silence, Reason: "test", Confidence: 1})
		}
		segs = append(segs, editplan.Segment{Start: k[0], End: k[1], Action: editplan.Keep, Category: editplan.Content, Reason: "content", Confidence: 1})
		cursor = k[1]
	}
	if cursor < duration {
		segs = append(segs, editplan.Segment{Start: cursor, End: duration, Action: editplan.Remove, Category: editplan.Silence, Reason: "test", Confidence: 1})
	}
	return editplan.FromSegments(segs, duration)
}

func newRenderer(workers int) *render.Renderer {
	return render.New(ffmpeg.New("ffmpeg", "ffprobe", ffmpeg.DefaultOptions()), render.Options{Workers: workers})
}

func TestRender_SingleSegmentRoundTrip(t *testing.T) {
	requireTools(t, "ffmpeg", "ffprobe")
	tmp := t.TempDir()
	in := filepath.Join(tmp, "input.mp4")
	makeColorFixture(t, in)

	plan := timeline(6, [2]float64{1, 3})
	if err := plan.Validate(); err != nil {
		t.Fatalf("fixture plan invalid: %v", err)
	}
	for _, copyCodec := range []bool{false, true} {
		out := filepath.Join(tmp, "single.mp4")
		if copyCodec {
			out = filepath.Join(tmp, "single-copy.mp4")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		err := newRenderer(2).Render(ctx, in, out, plan, copyCodec)
		cancel()
		if err != nil {
			t.Fatalf("render (copy=%v): %v", copyCodec, err)
		}
		got := probeDurationSeconds(t, out)
		// Stream copy snaps to keyframes (one per second in the fixture).
		tolerance := 0.15
		if copyCodec {
			tolerance = 1.05
		}
		if math.Abs(got-plan.EditedDuration) > tolerance {
			t.Fatalf("copy=%v: duration %.3f, want %.3f ± %.2f", copyCodec, got, plan.EditedDuration, tolerance)
		}
	}
}

func TestRender_ConcatPreservesOrder(t *testing.T) {
	requireTools(t, "ffmpeg", "ffprobe")
	tmp := t.TempDir()
	in := filepath.Join(tmp, "input.mp4")
	makeColorFixture(t, in)

	plan := timeline(6, [2]float64{0, 1}, [2]float64{4, 5})
	out := filepath.Join(tmp, "joined.mp4")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := newRenderer(4).Render(ctx, in, out, plan, false); err != nil {
		t.Fatalf("render: %v", err)
	}

	if got := probeDurationSeconds(t, out); math.Abs(got-2) > 0.2 {
		t.Fatalf("duration %.3f, want ~2", got)
	}
	first, err := frameRGB(out, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	second, err := frameRGB(out, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	if !(first[0] > 200 && first[2] < 60) {
		t.Fatalf("expected red first segment, got rgb%v", first)
	}
	if !(second[2] > 200 && second[0] < 60) {
		t.Fatalf("expected blue second segment, got rgb%v", second)
	}
}

func TestRender_ExtractionFailureLeavesNoOutput(t *testing.T) {
	requireTools(t, "ffmpeg")
	tmp := t.TempDir()
	in := filepath.Join(tmp, "not-media.mp4")
	if err := os.WriteFile(in, []byte("definitely not a video"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(tmp, "out", "edited.mp4")
	err := newRenderer(2).Render(context.Background(), in, out, timeline(6, [2]float64{0, 1}, [2]float64{4, 5}), false)
	if err == nil {
		t.Fatal("expected ffmpeg failure")
	}
	entries, _ := os.ReadDir(filepath.Dir(out))
	if len(entries) != 0 {
		t.Fatalf("expected no files next to output after failure, found %d", len(entries))
	}
}

func TestE2E_EditPipeline(t *testing.T) {
	requireTools(t, "ffmpeg", "ffprobe", "espeak-ng")
	repoRoot := mustRepoRoot(t)
	whisperBin := filepath.Join(repoRoot, ".cache", "bin", "whisper.cpp")
	whisperModel := filepath.Join(repoRoot, ".cache", "models", "ggml-base.bin")
	for _, p := range []string{whisperBin, whisperModel} {
		if _, err := os.Stat(p); err != nil {
			t.Skipf("whisper.cpp assets not installed: %v", err)
		}
	}

	tmp := t.TempDir()
	wav := filepath.Join(tmp, "speech.wav")
	text := "Here is the key idea. Um, step one: do this. [[slnc 3000]] Step two: measure results."
	if b, err := exec.Command("espeak-ng", "-m", "-w", wav, text).CombinedOutput(); err != nil {
		t.Fatalf("espeak-ng failed: %v\n%s", err, string(b))
	}
	in := filepath.Join(tmp, "input.mp4")
	ff := exec.Command("ffmpeg",
		"-y", "-v", "error",
		"-f", "lavfi", "-i", "color=c=black:s=320x240:d=20",
		"-i", wav,
		"-shortest",
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		"-c:a", "aac",
		in,
	)
	if b, err := ff.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}

	cfg := config.Default()
	cfg.Paths.OutDir = filepath.Join(tmp, "out")
	cfg.Paths.CacheDir = filepath.Join(tmp, "cache")
	cfg.Paths.HistoryDB = filepath.Join(tmp, "history.db")
	cfg.Tools.WhisperBin = whisperBin
	cfg.Tools.WhisperModel = whisperModel
	cfg.Render.Captions = true

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()
	pc := pipeline.Config{App: &cfg, Input: in}
	if err := pc.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	res, err := pipeline.Run(ctx, pc)
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if res.Plan.RemovedDuration <= 0 {
		t.Fatalf("expected something to be removed, got %+v", res.Plan.RemovalSummary)
	}
	got := probeDurationSeconds(t, res.Output)
	if math.Abs(got-res.Plan.EditedDuration) > 0.5 {
		t.Fatalf("edited duration %.3f, plan says %.3f", got, res.Plan.EditedDuration)
	}
	for _, p := range []string{res.PlanPath, res.TranscriptPath, res.ManifestPath, res.CaptionsPath} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing artifact %s: %v", p, err)
		}
	}
}
