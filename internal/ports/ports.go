package ports

import (
	"context"

	"github.com/forPelevin/jumpcut/internal/domain/editplan"
	"github.com/forPelevin/jumpcut/internal/types"
)

// TrimSpec describes one extraction from the source timeline.
type TrimSpec struct {
	Input     string
	Output    string
	Start     float64
	End       float64
	CopyCodec bool
}

type VideoTool interface {
	ExtractAudioMono16k(ctx context.Context, inMedia, outWav string) error
	Trim(ctx context.Context, spec TrimSpec) error
	Concat(ctx context.Context, manifest, outMedia string) error
}

type Prober interface {
	Probe(ctx context.Context, inMedia string) (types.MediaInfo, error)
}

type ASR interface {
	Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error)
}

// TangentDetector proposes Remove/Tangent candidates for off-topic passages.
type TangentDetector interface {
	DetectTangents(ctx context.Context, words []types.Word, duration float64) ([]editplan.Segment, error)
}
