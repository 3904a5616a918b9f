package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/jumpcut/internal/domain/editplan"
	"github.com/forPelevin/jumpcut/internal/logging"
	"github.com/forPelevin/jumpcut/internal/ports"
)

var (
	ErrNoSegmentsToKeep = errors.New("render: plan has no segments to keep")
	ErrOutputIsInput    = errors.New("render: output path is the input file")
)

const maxDefaultWorkers = 4

type Options struct {
	// Workers bounds concurrent segment extractions. Zero means
	// min(NumCPU, 4).
	Workers int
	// TempRoot is the parent of per-render scratch directories. Empty means
	// os.TempDir().
	TempRoot string
	Logger   *slog.Logger
}

type Renderer struct {
	video    ports.VideoTool
	workers  int
	tempRoot string
	log      *slog.Logger
}

func New(video ports.VideoTool, opts Options) *Renderer {
	workers := opts.Workers
	if workers <= 0 {
		workers = min(runtime.NumCPU(), maxDefaultWorkers)
	}
	return &Renderer{video: video, workers: workers, tempRoot: opts.TempRoot, log: logging.OrNop(opts.Logger).With("component", "render")}
}

// Render writes the kept parts of inputPath, in timeline order, to outputPath.
// The encoder always writes to a staging file next to outputPath which is
// renamed into place only on success; once encoding has started, a failure
// leaves nothing at outputPath. The upfront rejections (ErrOutputIsInput,
// ErrNoSegmentsToKeep) return before any file is touched.
func (r *Renderer) Render(ctx context.Context, inputPath, outputPath string, plan editplan.Plan, copyCodec bool) (err error) {
	same, err := sameFile(inputPath, outputPath)
	if err != nil {
		return err
	}
	if same {
		return ErrOutputIsInput
	}
	keeps := plan.KeepSegments()
	if len(keeps) == 0 {
		return ErrNoSegmentsToKeep
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	staging := stagingPath(outputPath)
	defer func() {
		if err != nil {
			_ = os.Remove(staging)
			_ = os.Remove(outputPath)
		}
	}()

	if len(keeps) == 1 {
		r.log.Info("rendering", "strategy", "single", "copy_codec", copyCodec, "start", keeps[0].Start, "end", keeps[0].End)
		if err := r.video.Trim(ctx, ports.TrimSpec{
			Input:     inputPath,
			Output:    staging,
			Start:     keeps[0].Start,
			End:       keeps[0].End,
			CopyCodec: copyCodec,
		}); err != nil {
			return err
		}
	} else {
		r.log.Info("rendering", "strategy", "concat", "copy_codec", copyCodec, "segments", len(keeps), "workers", r.workers)
		if err := r.renderConcat(ctx, inputPath, outputPath, staging, keeps, copyCodec); err != nil {
			return err
		}
	}

	if err := os.Rename(staging, outputPath); err != nil {
		return fmt.Errorf("finalize output: %w", err)
	}
	r.log.Info("render complete", "output", outputPath, "edited_duration", plan.EditedDuration)
	return nil
}

func (r *Renderer) renderConcat(ctx context.Context, inputPath, outputPath, staging string, keeps []editplan.Segment, copyCodec bool) error {
	tmpDir, err := os.MkdirTemp(r.tempRoot, "jumpcut-"+uuid.NewString()[:8]+"-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	ext := segmentExt(inputPath, outputPath, copyCodec)
	parts := make([]string, len(keeps))
	for i := range keeps {
		parts[i] = filepath.Join(tmpDir, fmt.Sprintf("seg-%05d%s", i, ext))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, seg := range keeps {
		g.Go(func() error {
			r.log.Debug("extracting segment", "index", i, "start", seg.Start, "end", seg.End)
			if err := r.video.Trim(gctx, ports.TrimSpec{
				Input:     inputPath,
				Output:    parts[i],
				Start:     seg.Start,
				End:       seg.End,
				CopyCodec: copyCodec,
			}); err != nil {
				return fmt.Errorf("segment %d [%.3f, %.3f): %w", i, seg.Start, seg.End, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("extract segments: %w", err)
	}

	manifest := filepath.Join(tmpDir, "concat.txt")
	if err := os.WriteFile(manifest, []byte(ConcatManifest(parts)), 0o644); err != nil {
		return fmt.Errorf("write concat manifest: %w", err)
	}
	return r.video.Concat(ctx, manifest, staging)
}

// ConcatManifest renders an ffconcat script listing files in order.
func ConcatManifest(files []string) string {
	var b strings.Builder
	b.WriteString("ffconcat version 1.0\n")
	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(f, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String()
}

// sameFile reports whether the two paths name one file, either literally or
// through links. A missing output is never the input.
func sameFile(inputPath, outputPath string) (bool, error) {
	absIn, err := filepath.Abs(inputPath)
	if err != nil {
		return false, fmt.Errorf("resolve input: %w", err)
	}
	absOut, err := filepath.Abs(outputPath)
	if err != nil {
		return false, fmt.Errorf("resolve output: %w", err)
	}
	if absIn == absOut {
		return true, nil
	}
	outInfo, err := os.Stat(absOut)
	if err != nil {
		return false, nil
	}
	inInfo, err := os.Stat(absIn)
	if err != nil {
		return false, nil
	}
	return os.SameFile(inInfo, outInfo), nil
}

func stagingPath(outputPath string) string {
	dir, base := filepath.Split(outputPath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.partial%s", name, uuid.NewString()[:8], ext))
}

// segmentExt picks the container for intermediate parts: stream copies keep
// the source container, re-encodes use the output one.
func segmentExt(inputPath, outputPath string, copyCodec bool) string {
	ext := filepath.Ext(outputPath)
	if copyCodec {
		ext = filepath.Ext(inputPath)
	}
	if ext == "" {
		ext = ".mp4"
	}
	return ext
}
