package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/jumpcut/internal/ports"
)

func TestTrimArgs_CopySeeksBeforeInput(t *testing.T) {
	args := TrimArgs(ports.TrimSpec{Input: "in.mp4", Output: "out.mp4", Start: 1.5, End: 4, CopyCodec: true}, DefaultOptions())
	joined := strings.Join(args, " ")
	if strings.Index(joined, "-ss 1.500") > strings.Index(joined, "-i in.mp4") {
		t.Fatalf("expected -ss before -i for stream copy: %s", joined)
	}
	if !strings.Contains(joined, "-t 2.500") || !strings.Contains(joined, "-c copy") {
		t.Fatalf("unexpected copy args: %s", joined)
	}
	if strings.Contains(joined, "libx264") {
		t.Fatalf("stream copy must not re-encode: %s", joined)
	}
}

func TestTrimArgs_ReencodeSeeksAfterInput(t *testing.T) {
	args := TrimArgs(ports.TrimSpec{Input: "in.mp4", Output: "out.mp4", Start: 1.5, End: 4}, DefaultOptions())
	joined := strings.Join(args, " ")
	if strings.Index(joined, "-ss 1.500") < strings.Index(joined, "-i in.mp4") {
		t.Fatalf("expected -ss after -i for frame-accurate trim: %s", joined)
	}
	for _, want := range []string{"-c:v libx264", "-crf 18", "-c:a aac", "-b:a 192k"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in %s", want, joined)
		}
	}
	if args[len(args)-1] != "out.mp4" {
		t.Fatalf("output must be last: %v", args)
	}
}

func TestParseProbe(t *testing.T) {
	info, err := parseProbe([]byte(`{"streams":[{"codec_type":"video"},{"codec_type":"audio"}],"format":{"duration":"12.480000"}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if info.Duration != 12.48 || !info.HasAudio || !info.HasVideo {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestParseProbe_StreamDurationFallback(t *testing.T) {
	info, err := parseProbe([]byte(`{"streams":[{"codec_type":"audio","duration":"3.5"}],"format":{"duration":"N/A"}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if info.Duration != 3.5 || info.HasVideo {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestParseProbe_Invalid(t *testing.T) {
	if _, err := parseProbe([]byte("nope")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestBinName(t *testing.T) {
	if got := binName("/usr/local/bin/ffmpeg"); got != "ffmpeg" {
		t.Fatalf("binName = %q", got)
	}
}

func writeStub(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestRun_StepTimeoutKillsProcess(t *testing.T) {
	stub := writeStub(t, "echo stuck >&2\nexec sleep 30\n")
	a := New(stub, "", Options{StepTimeout: 200 * time.Millisecond})

	start := time.Now()
	err := a.Trim(context.Background(), ports.TrimSpec{Input: "in.mp4", Output: filepath.Join(t.TempDir(), "out.mp4"), Start: 0, End: 1})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("hung subprocess was not killed, returned after %s", elapsed)
	}
	msg := err.Error()
	for _, want := range []string{"ffmpeg trim: timed out after 200ms", "stuck"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in error, got %q", want, msg)
		}
	}
}

func TestRun_FailureCarriesStderr(t *testing.T) {
	stub := writeStub(t, "echo 'in.mp4: Invalid data found when processing input' >&2\nexit 1\n")
	a := New(stub, "", Options{})

	err := a.Concat(context.Background(), "concat.txt", filepath.Join(t.TempDir(), "out.mp4"))
	if err == nil {
		t.Fatal("expected encoder failure")
	}
	msg := err.Error()
	for _, want := range []string{"ffmpeg concat: exit status 1", "Invalid data found when processing input"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in error, got %q", want, msg)
		}
	}
	if strings.Contains(msg, "timed out") {
		t.Fatalf("non-zero exit reported as timeout: %q", msg)
	}
}

func TestRun_CallerCancelIsNotReportedAsTimeout(t *testing.T) {
	stub := writeStub(t, "exec sleep 30\n")
	a := New(stub, "", Options{StepTimeout: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := a.ExtractAudioMono16k(ctx, "in.mp4", filepath.Join(t.TempDir(), "out.wav"))
	if err == nil {
		t.Fatal("expected error after cancel")
	}
	if strings.Contains(err.Error(), "timed out") {
		t.Fatalf("caller deadline must not be reported as a step timeout: %v", err)
	}
}
