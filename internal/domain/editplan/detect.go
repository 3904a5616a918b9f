package editplan

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/forPelevin/jumpcut/internal/types"
)

// Detect runs the enabled detectors in a fixed order (filler, repetition,
// silence) and concatenates their candidates. Order only affects reason text
// after merging, never the resulting spans.
func Detect(words []types.Word, duration float64, cfg Config) []Segment {
	var out []Segment
	if cfg.RemoveFillers {
		out = append(out, DetectFillers(words, cfg)...)
	}
	if cfg.RemoveRepetitions {
		out = append(out, DetectRepetitions(words, cfg)...)
	}
	if cfg.RemoveSilence {
		out = append(out, DetectSilences(words, duration, cfg)...)
	}
	return out
}

// DetectFillers removes each word whose normalized form is in the filler set.
func DetectFillers(words []types.Word, cfg Config) []Segment {
	set := cfg.fillerSet()
	fold := cases.Fold()
	var out []Segment
	for _, w := range words {
		if w.End <= w.Start {
			continue
		}
		n := normalizeWith(fold, w.Text)
		if _, ok := set[n]; !ok {
			continue
		}
		out = append(out, Segment{
			Start:      w.Start,
			End:        w.End,
			Action:     Remove,
			Reason:     fmt.Sprintf("filler word %q", n),
			Category:   Filler,
			Text:       w.Text,
			Confidence: cfg.FillerConfidence,
		})
	}
	return out
}

// DetectRepetitions drops the earlier of two equal tokens that occur within
// the lookahead window. Only single tokens are matched; repeated phrases and
// repeats further apart than the window are not detected.
func DetectRepetitions(words []types.Word, cfg Config) []Segment {
	window := cfg.RepetitionWindow
	if window < 2 {
		window = 2
	}
	fold := cases.Fold()
	norm := make([]string, len(words))
	for i, w := range words {
		norm[i] = normalizeWith(fold, w.Text)
	}

	var out []Segment
	for i, w := range words {
		if w.End <= w.Start || len([]rune(norm[i])) < cfg.RepetitionMinLen {
			continue
		}
		for j := i + 1; j < len(words) && j < i+window; j++ {
			if norm[j] != norm[i] {
				continue
			}
			out = append(out, Segment{
				Start:      w.Start,
				End:        w.End,
				Action:     Remove,
				Reason:     fmt.Sprintf("repeated word %q", norm[i]),
				Category:   Repetition,
				Text:       w.Text,
				Confidence: cfg.RepetitionConfidence,
			})
			break
		}
	}
	return out
}

// DetectSilences cuts leading, inter-word and trailing pauses longer than
// MinSilence, leaving SilencePadding of air at each edge that touches speech.
func DetectSilences(words []types.Word, duration float64, cfg Config) []Segment {
	if duration <= 0 {
		return nil
	}
	silence := func(start, end float64, reason string) (Segment, bool) {
		if end > duration {
			end = duration
		}
		if start < 0 {
			start = 0
		}
		if end <= start {
			return Segment{}, false
		}
		return Segment{
			Start:      start,
			End:        end,
			Action:     Remove,
			Reason:     reason,
			Category:   Silence,
			Confidence: cfg.SilenceConfidence,
		}, true
	}

	if len(words) == 0 {
		if duration > cfg.MinSilence {
			s, _ := silence(0, duration, "no speech")
			return []Segment{s}
		}
		return nil
	}

	pad := cfg.SilencePadding
	var out []Segment
	if first := words[0].Start; first > cfg.MinSilence {
		if s, ok := silence(0, first-pad, fmt.Sprintf("leading silence %.2fs", first)); ok {
			out = append(out, s)
		}
	}

	// End of speech so far; tracking the maximum keeps cuts out of words that
	// overlap their successors.
	spoken := words[0].End
	for _, next := range words[1:] {
		gap := next.Start - spoken
		if gap > cfg.MinSilence {
			if s, ok := silence(spoken+pad, next.Start-pad, fmt.Sprintf("silence %.2fs", gap)); ok {
				out = append(out, s)
			}
		}
		if next.End > spoken {
			spoken = next.End
		}
	}

	if tail := duration - spoken; tail > cfg.MinSilence {
		if s, ok := silence(spoken+pad, duration, fmt.Sprintf("trailing silence %.2fs", tail)); ok {
			out = append(out, s)
		}
	}
	return out
}

func normalizeToken(s string) string {
	return normalizeWith(cases.Fold(), s)
}

func normalizeWith(fold cases.Caser, s string) string {
	s = fold.String(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
