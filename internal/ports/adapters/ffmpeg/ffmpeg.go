package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/jumpcut/internal/ports"
)

// Options tune the re-encode path and subprocess limits. Zero values fall back
// to defaults.
type Options struct {
	VideoCodec   string
	VideoPreset  string
	VideoCRF     int
	AudioCodec   string
	AudioBitrate string
	// StepTimeout bounds every single ffmpeg/ffprobe invocation.
	StepTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		VideoCodec:   "libx264",
		VideoPreset:  "veryfast",
		VideoCRF:     18,
		AudioCodec:   "aac",
		AudioBitrate: "192k",
		StepTimeout:  30 * time.Minute,
	}
}

type Adapter struct {
	ffmpeg  string
	ffprobe string
	opts    Options
}

func New(ffmpegPath, ffprobePath string, opts Options) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	def := DefaultOptions()
	if opts.VideoCodec == "" {
		opts.VideoCodec = def.VideoCodec
	}
	if opts.VideoPreset == "" {
		opts.VideoPreset = def.VideoPreset
	}
	if opts.VideoCRF <= 0 {
		opts.VideoCRF = def.VideoCRF
	}
	if opts.AudioCodec == "" {
		opts.AudioCodec = def.AudioCodec
	}
	if opts.AudioBitrate == "" {
		opts.AudioBitrate = def.AudioBitrate
	}
	if opts.StepTimeout <= 0 {
		opts.StepTimeout = def.StepTimeout
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath, opts: opts}
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inMedia, outWav string) error {
	return a.run(ctx, "extract audio", a.ffmpeg,
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", inMedia,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
}

// Trim extracts [Start, End) of the input. With CopyCodec the seek happens
// before the input is opened and streams are copied, so cut points snap to
// keyframes; otherwise the seek is decoded and the range re-encoded.
func (a *Adapter) Trim(ctx context.Context, spec ports.TrimSpec) error {
	if spec.End <= spec.Start {
		return fmt.Errorf("ffmpeg trim: empty range [%s, %s)", fmtSeconds(spec.Start), fmtSeconds(spec.End))
	}
	return a.run(ctx, "trim", a.ffmpeg, TrimArgs(spec, a.opts)...)
}

// TrimArgs builds the ffmpeg argument list for one extraction.
func TrimArgs(spec ports.TrimSpec, opts Options) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	length := fmtSeconds(spec.End - spec.Start)
	if spec.CopyCodec {
		return append(args,
			"-ss", fmtSeconds(spec.Start),
			"-i", spec.Input,
			"-t", length,
			"-map", "0:v?",
			"-map", "0:a?",
			"-c", "copy",
			"-avoid_negative_ts", "make_zero",
			spec.Output,
		)
	}
	return append(args,
		"-i", spec.Input,
		"-ss", fmtSeconds(spec.Start),
		"-t", length,
		"-map", "0:v?",
		"-map", "0:a?",
		"-c:v", opts.VideoCodec,
		"-preset", opts.VideoPreset,
		"-crf", strconv.Itoa(opts.VideoCRF),
		"-c:a", opts.AudioCodec,
		"-b:a", opts.AudioBitrate,
		spec.Output,
	)
}

// Concat joins the files listed in an ffconcat manifest without re-encoding.
func (a *Adapter) Concat(ctx context.Context, manifest, outMedia string) error {
	return a.run(ctx, "concat", a.ffmpeg,
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "concat",
		"-safe", "0",
		"-i", manifest,
		"-c", "copy",
		outMedia,
	)
}

func (a *Adapter) run(ctx context.Context, op, bin string, args ...string) error {
	stepCtx, cancel := context.WithTimeout(ctx, a.opts.StepTimeout)
	defer cancel()

	cmd := exec.CommandContext(stepCtx, bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(stepCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%s %s: timed out after %s\n%s", binName(bin), op, a.opts.StepTimeout, strings.TrimSpace(string(b)))
		}
		return fmt.Errorf("%s %s: %w\n%s", binName(bin), op, err, strings.TrimSpace(string(b)))
	}
	return nil
}

func binName(bin string) string {
	if i := strings.LastIndexAny(bin, `/\`); i >= 0 {
		return bin[i+1:]
	}
	return bin
}

func fmtSeconds(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
