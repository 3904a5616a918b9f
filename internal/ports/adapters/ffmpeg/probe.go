package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/forPelevin/jumpcut/internal/types"
)

type probeResult struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe reports the container duration and which stream kinds exist.
func (a *Adapter) Probe(ctx context.Context, inMedia string) (types.MediaInfo, error) {
	if strings.TrimSpace(inMedia) == "" {
		return types.MediaInfo{}, errors.New("ffprobe: empty path")
	}
	stepCtx, cancel := context.WithTimeout(ctx, a.opts.StepTimeout)
	defer cancel()

	cmd := exec.CommandContext(stepCtx, a.ffprobe,
		"-v", "error",
		"-hide_banner",
		"-show_format",
		"-show_streams",
		"-of", "json",
		"--", inMedia,
	)
	b, err := cmd.Output()
	if err != nil {
		var stderr string
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr = strings.TrimSpace(string(exitErr.Stderr))
		}
		return types.MediaInfo{}, fmt.Errorf("ffprobe inspect: %w\n%s", err, stderr)
	}
	return parseProbe(b)
}

func parseProbe(b []byte) (types.MediaInfo, error) {
	var res probeResult
	if err := json.Unmarshal(b, &res); err != nil {
		return types.MediaInfo{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	info := types.MediaInfo{Duration: parseFloat(res.Format.Duration)}
	for _, s := range res.Streams {
		switch strings.ToLower(s.CodecType) {
		case "audio":
			info.HasAudio = true
		case "video":
			info.HasVideo = true
		}
		// Some containers only carry per-stream durations.
		if info.Duration <= 0 {
			info.Duration = math.Max(info.Duration, parseFloat(s.Duration))
		}
	}
	return info, nil
}

func parseFloat(value string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
