package editplan

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/forPelevin/jumpcut/internal/types"
)

// Plan is the full, gapless edit decision list for one source. It is built
// once and treated as read-only afterwards.
type Plan struct {
	Segments         []Segment            `json:"segments"`
	OriginalDuration float64              `json:"original_duration"`
	EditedDuration   float64              `json:"edited_duration"`
	RemovedDuration  float64              `json:"removed_duration"`
	RemovalSummary   map[Category]float64 `json:"removal_summary"`
}

// Build detects removal candidates in words and assembles the plan.
func Build(words []types.Word, duration float64, cfg Config) Plan {
	return New(Detect(words, duration, cfg), duration, cfg.MergeTolerance)
}

// New merges arbitrary removal candidates (detectors, tangent hook, ...) and
// builds the timeline over [0, duration).
func New(candidates []Segment, duration, tolerance float64) Plan {
	removals := make([]Segment, 0, len(candidates))
	for _, c := range candidates {
		if c.Action == Remove && c.End > c.Start {
			removals = append(removals, c)
		}
	}
	return FromSegments(BuildTimeline(Merge(removals, tolerance), duration, tolerance), duration)
}

// FromSegments wraps an already complete timeline and computes its
// statistics.
func FromSegments(segs []Segment, duration float64) Plan {
	p := Plan{
		Segments:         segs,
		OriginalDuration: math.Max(duration, 0),
		RemovalSummary:   map[Category]float64{},
	}
	for _, s := range segs {
		if s.Action != Remove {
			continue
		}
		d := s.Duration()
		p.RemovedDuration += d
		p.RemovalSummary[s.Category] += d
	}
	p.EditedDuration = p.OriginalDuration - p.RemovedDuration
	return p
}

// KeepSegments returns the Keep segments in timeline order.
func (p Plan) KeepSegments() []Segment {
	var out []Segment
	for _, s := range p.Segments {
		if s.Action == Keep {
			out = append(out, s)
		}
	}
	return out
}

// RemoveSegments returns the Remove segments in timeline order.
func (p Plan) RemoveSegments() []Segment {
	var out []Segment
	for _, s := range p.Segments {
		if s.Action == Remove {
			out = append(out, s)
		}
	}
	return out
}

const invariantEpsilon = 1e-6

var ErrEmptyPlan = errors.New("editplan: plan has no segments")

// Validate checks coverage and bookkeeping invariants.
func (p Plan) Validate() error {
	if len(p.Segments) == 0 {
		return ErrEmptyPlan
	}
	if d := p.Segments[0].Start; math.Abs(d) > invariantEpsilon {
		return fmt.Errorf("editplan: first segment starts at %.6f, want 0", d)
	}
	var removed float64
	summary := map[Category]float64{}
	for i, s := range p.Segments {
		if s.End <= s.Start {
			return fmt.Errorf("editplan: segment %d has non-positive duration [%.6f, %.6f)", i, s.Start, s.End)
		}
		if s.Confidence < 0 || s.Confidence > 1 {
			return fmt.Errorf("editplan: segment %d confidence %v outside [0,1]", i, s.Confidence)
		}
		if i > 0 {
			prev := p.Segments[i-1]
			if gap := s.Start - prev.End; math.Abs(gap) > invariantEpsilon {
				return fmt.Errorf("editplan: segments %d and %d are not contiguous (%.6f -> %.6f)", i-1, i, prev.End, s.Start)
			}
		}
		if s.Action == Remove {
			removed += s.Duration()
			summary[s.Category] += s.Duration()
		}
	}
	last := p.Segments[len(p.Segments)-1]
	if math.Abs(last.End-p.OriginalDuration) > invariantEpsilon {
		return fmt.Errorf("editplan: last segment ends at %.6f, want %.6f", last.End, p.OriginalDuration)
	}
	if math.Abs(removed-p.RemovedDuration) > invariantEpsilon {
		return fmt.Errorf("editplan: removed duration %.6f, segments sum to %.6f", p.RemovedDuration, removed)
	}
	if math.Abs(p.OriginalDuration-p.RemovedDuration-p.EditedDuration) > invariantEpsilon {
		return fmt.Errorf("editplan: edited %.6f + removed %.6f != original %.6f", p.EditedDuration, p.RemovedDuration, p.OriginalDuration)
	}
	var total float64
	for c, v := range p.RemovalSummary {
		if math.Abs(summary[c]-v) > invariantEpsilon {
			return fmt.Errorf("editplan: removal summary for %s is %.6f, segments sum to %.6f", c, v, summary[c])
		}
		total += v
	}
	if math.Abs(total-p.RemovedDuration) > invariantEpsilon {
		return fmt.Errorf("editplan: removal summary sums to %.6f, want %.6f", total, p.RemovedDuration)
	}
	return nil
}

// SummaryRow is one category line of the removal summary.
type SummaryRow struct {
	Category Category
	Seconds  float64
	Count    int
}

// Summary lists removal time per category, largest first.
func (p Plan) Summary() []SummaryRow {
	counts := map[Category]int{}
	for _, s := range p.Segments {
		if s.Action == Remove {
			counts[s.Category]++
		}
	}
	rows := make([]SummaryRow, 0, len(p.RemovalSummary))
	for c, v := range p.RemovalSummary {
		rows = append(rows, SummaryRow{Category: c, Seconds: v, Count: counts[c]})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Seconds == rows[j].Seconds {
			return rows[i].Category < rows[j].Category
		}
		return rows[i].Seconds > rows[j].Seconds
	})
	return rows
}
