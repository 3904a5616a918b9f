package editplan

// BuildTimeline fills the gaps between merged removals with Keep/Content
// segments so the result covers [0, duration) without gaps or overlaps.
//
// Removals are clamped to the clip. A removal starting within tolerance of
// the cursor is pulled back onto it, and a remainder shorter than tolerance
// at the end is folded into the last segment; neither case produces a keep
// span shorter than tolerance.
func BuildTimeline(removals []Segment, duration, tolerance float64) []Segment {
	if duration <= 0 {
		return nil
	}
	out := make([]Segment, 0, 2*len(removals)+1)
	cursor := 0.0
	for _, r := range removals {
		if r.End > duration {
			r.End = duration
		}
		if r.Start < cursor {
			r.Start = cursor
		}
		if r.End <= r.Start {
			continue
		}
		if r.Start > cursor+tolerance {
			out = append(out, keepSegment(cursor, r.Start))
		} else {
			r.Start = cursor
		}
		out = append(out, r)
		cursor = r.End
	}

	switch {
	case cursor < duration-tolerance || len(out) == 0:
		out = append(out, keepSegment(cursor, duration))
	case cursor < duration:
		out[len(out)-1].End = duration
	}
	return out
}
