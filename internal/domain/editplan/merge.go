package editplan

import (
	"math"
	"sort"
	"strings"
)

// Merge sorts candidate removals by start and collapses every pair closer
// than tolerance into one span. The resulting spans are the union of the
// input intervals; reason, category and confidence of a merged span depend on
// input order when three or more candidates overlap.
func Merge(segs []Segment, tolerance float64) []Segment {
	if len(segs) == 0 {
		return nil
	}
	sorted := make([]Segment, len(segs))
	copy(sorted, segs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := make([]Segment, 0, len(sorted))
	last := sorted[0]
	for _, seg := range sorted[1:] {
		if seg.Start <= last.End+tolerance {
			last = combine(last, seg)
			continue
		}
		out = append(out, last)
		last = seg
	}
	return append(out, last)
}

func combine(a, b Segment) Segment {
	merged := a
	merged.End = math.Max(a.End, b.End)
	merged.Reason = joinNonEmpty("; ", a.Reason, b.Reason)
	merged.Text = joinNonEmpty(" ", a.Text, b.Text)
	if a.Category != b.Category {
		merged.Category = Mixed
	}
	merged.Confidence = math.Min(a.Confidence, b.Confidence)
	return merged
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
