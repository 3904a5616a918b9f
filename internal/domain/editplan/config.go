package editplan

import (
	"errors"
	"fmt"
)

// DefaultFillerWords is matched against normalized single tokens.
var DefaultFillerWords = []string{
	"um", "uh", "uhm", "umm", "hmm", "er", "erm", "ah",
	"like", "actually", "basically", "literally",
}

// Config holds detector toggles and thresholds. All durations are seconds.
type Config struct {
	RemoveFillers     bool
	RemoveRepetitions bool
	RemoveSilence     bool

	// MinSilence is the gap length a pause must exceed to be cut.
	MinSilence float64
	// SilencePadding is left at both edges of a silence cut so speech onsets
	// are not clipped.
	SilencePadding float64
	// MergeTolerance joins removals closer than this and bounds the smallest
	// keep span the timeline builder emits.
	MergeTolerance float64

	// RepetitionWindow counts the word itself: a window of 3 compares word i
	// with i+1 and i+2.
	RepetitionWindow int
	// RepetitionMinLen is the minimum normalized rune length of a token
	// eligible for repetition matching.
	RepetitionMinLen int

	FillerConfidence     float64
	RepetitionConfidence float64
	SilenceConfidence    float64

	FillerWords []string
}

func DefaultConfig() Config {
	return Config{
		RemoveFillers:        true,
		RemoveRepetitions:    true,
		RemoveSilence:        true,
		MinSilence:           1.5,
		SilencePadding:       0.1,
		MergeTolerance:       0.1,
		RepetitionWindow:     3,
		RepetitionMinLen:     3,
		FillerConfidence:     0.9,
		RepetitionConfidence: 0.85,
		SilenceConfidence:    0.95,
		FillerWords:          append([]string(nil), DefaultFillerWords...),
	}
}

func (c Config) Validate() error {
	if c.MinSilence <= 0 {
		return errors.New("min silence must be > 0")
	}
	if c.SilencePadding < 0 {
		return errors.New("silence padding must be >= 0")
	}
	if 2*c.SilencePadding >= c.MinSilence {
		return fmt.Errorf("silence padding %.3fs leaves nothing to cut for min silence %.3fs", c.SilencePadding, c.MinSilence)
	}
	if c.MergeTolerance < 0 {
		return errors.New("merge tolerance must be >= 0")
	}
	if c.RepetitionWindow < 2 {
		return errors.New("repetition window must be >= 2")
	}
	if c.RepetitionMinLen < 1 {
		return errors.New("repetition min length must be >= 1")
	}
	for name, v := range map[string]float64{
		"filler":     c.FillerConfidence,
		"repetition": c.RepetitionConfidence,
		"silence":    c.SilenceConfidence,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s confidence must be within [0,1], got %v", name, v)
		}
	}
	return nil
}

func (c Config) fillerSet() map[string]struct{} {
	words := c.FillerWords
	if len(words) == 0 {
		words = DefaultFillerWords
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if n := normalizeToken(w); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}
