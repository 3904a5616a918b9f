package types

import (
	"sort"
	"strings"
)

type Transcript struct {
	Language   string      `json:"language,omitempty"`
	Utterances []Utterance `json:"utterances"`
}

// Utterance is one recognizer segment. Words may be empty when the engine did
// not emit token timings.
type Utterance struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

type Word struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Words flattens the transcript into a start-ordered word stream, dropping
// blank tokens.
func (t Transcript) Words() []Word {
	var out []Word
	for _, u := range t.Utterances {
		for _, w := range u.Words {
			if strings.TrimSpace(w.Text) == "" {
				continue
			}
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// MediaInfo is the only probe fact the planner and renderer consume.
type MediaInfo struct {
	Duration float64 `json:"duration"`
	HasAudio bool    `json:"has_audio"`
	HasVideo bool    `json:"has_video"`
}

// Passage is a contiguous run of words handed to the tangent collaborator.
type Passage struct {
	Idx   int     `json:"idx"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type Manifest struct {
	RunID     string  `json:"run_id"`
	Input     string  `json:"input"`
	Output    string  `json:"output,omitempty"`
	Plan      string  `json:"plan"`
	Captions  string  `json:"captions,omitempty"`
	Original  float64 `json:"original_duration"`
	Edited    float64 `json:"edited_duration"`
	Removed   float64 `json:"removed_duration"`
	KeepCount int     `json:"keep_segments"`
}
