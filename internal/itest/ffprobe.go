//go:build integration

package itest

import (
	"context"
	"fmt"
	"os/exec"
	"testing"

	"github.com/forPelevin/jumpcut/internal/ports/adapters/ffmpeg"
)

func probeDurationSeconds(t *testing.T, path string) float64 {
	t.Helper()
	info, err := ffmpeg.New("", "", ffmpeg.DefaultOptions()).Probe(context.Background(), path)
	if err != nil {
		t.Fatalf("probe %s: %v", path, err)
	}
	return info.Duration
}

// frameRGB decodes the frame at sec and returns its top-left pixel.
func frameRGB(path string, sec float64) ([3]byte, error) {
	cmd := exec.Command("ffmpeg",
		"-v", "error",
		"-ss", fmt.Sprintf("%.3f", sec),
		"-i", path,
		"-frames:v", "1",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	)
	b, err := cmd.Output()
	if err != nil {
		return [3]byte{}, fmt.Errorf("ffmpeg frame: %w", err)
	}
	if len(b) < 3 {
		return [3]byte{}, fmt.Errorf("ffmpeg frame: got %d bytes", len(b))
	}
	return [3]byte{b[0], b[1], b[2]}, nil
}

func requireTools(t *testing.T, names ...string) {
	t.Helper()
	for _, n := range names {
		if _, err := exec.LookPath(n); err != nil {
			t.Fatalf("%s is required for itest: %v", n, err)
		}
	}
}

// makeColorFixture writes a 6s clip that is red for 3s then blue for 3s, with
// a sine tone on the audio track.
func makeColorFixture(t *testing.T, out string) {
	t.Helper()
	cmd := exec.Command("ffmpeg",
		"-y", "-v", "error",
		"-f", "lavfi", "-i", "color=c=red:s=160x120:r=25:d=3",
		"-f", "lavfi", "-i", "color=c=blue:s=160x120:r=25:d=3",
		"-f", "lavfi", "-i", "sine=frequency=440:duration=6",
		"-filter_complex", "[0:v][1:v]concat=n=2:v=1:a=0[v]",
		"-map", "[v]", "-map", "2:a",
		"-c:v", "libx264", "-g", "25", "-pix_fmt", "yuv420p",
		"-c:a", "aac",
		out,
	)
	if b, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}
}
