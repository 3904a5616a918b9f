package passages

import (
	"strings"

	"github.com/forPelevin/jumpcut/internal/types"
)

const (
	DefaultMaxSpan  = 30.0
	DefaultMaxPause = 1.2
)

// Build groups the word stream into consecutive passages for topic review.
// A passage closes when the next word would stretch it past maxSpan seconds,
// when the pause before the next word exceeds maxPause, or after a sentence
// end once the passage is at least half of maxSpan long.
func Build(words []types.Word, maxSpan, maxPause float64) []types.Passage {
	if maxSpan <= 0 {
		maxSpan = DefaultMaxSpan
	}
	if maxPause <= 0 {
		maxPause = DefaultMaxPause
	}

	var (
		out   []types.Passage
		parts []string
		cur   types.Passage
	)
	flush := func() {
		if len(parts) == 0 {
			return
		}
		cur.Idx = len(out)
		cur.Text = strings.Join(parts, " ")
		out = append(out, cur)
		parts = parts[:0]
	}

	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" || w.End < w.Start {
			continue
		}
		if len(parts) > 0 {
			pause := w.Start - cur.End
			long := w.End-cur.Start > maxSpan
			// Sentence ends make cleaner borders once the passage has some body.
			settled := cur.End-cur.Start >= maxSpan/2 && endsSentence(parts[len(parts)-1])
			if pause > maxPause || long || settled {
				flush()
			}
		}
		if len(parts) == 0 {
			cur = types.Passage{Start: w.Start, End: w.End}
		}
		parts = append(parts, text)
		if w.End > cur.End {
			cur.End = w.End
		}
	}
	flush()
	return out
}

func endsSentence(s string) bool {
	s = strings.TrimRight(strings.TrimSpace(s), `"')]`)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!")
}
