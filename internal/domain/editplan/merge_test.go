package editplan

import (
	"reflect"
	"testing"
)

func rm(start, end float64, c Category, reason string, conf float64) Segment {
	return Segment{Start: start, End: end, Action: Remove, Category: c, Reason: reason, Confidence: conf}
}

func TestMerge_OverlapsAndNearAdjacent(t *testing.T) {
	in := []Segment{
		rm(5, 6, Silence, "silence", 0.95),
		rm(1, 2, Filler, "filler", 0.9),
		rm(1.5, 3, Filler, "filler2", 0.8),
		rm(3.05, 3.5, Repetition, "rep", 0.85),
	}
	got := Merge(in, 0.1)
	if len(got) != 2 {
		t.Fatalf("expected 2 merged spans, got %+v", got)
	}
	first := got[0]
	if first.Start != 1 || first.End != 3.5 {
		t.Fatalf("unexpected merged span [%v, %v)", first.Start, first.End)
	}
	if first.Category != Mixed {
		t.Fatalf("expected mixed category, got %s", first.Category)
	}
	if first.Reason != "filler; filler2; rep" {
		t.Fatalf("unexpected reason %q", first.Reason)
	}
	if first.Confidence != 0.8 {
		t.Fatalf("expected min confidence 0.8, got %v", first.Confidence)
	}
	if got[1].Start != 5 || got[1].Category != Silence {
		t.Fatalf("unexpected second span: %+v", got[1])
	}
}

func TestMerge_SameCategoryStays(t *testing.T) {
	got := Merge([]Segment{rm(0, 1, Silence, "a", 1), rm(0.5, 2, Silence, "b", 1)}, 0)
	if len(got) != 1 || got[0].Category != Silence || got[0].End != 2 {
		t.Fatalf("unexpected merge: %+v", got)
	}
}

func TestMerge_ContainedSpanKeepsOuterEnd(t *testing.T) {
	got := Merge([]Segment{rm(0, 10, Silence, "outer", 1), rm(2, 3, Filler, "inner", 0.9)}, 0.1)
	if len(got) != 1 || got[0].End != 10 {
		t.Fatalf("expected containing span to survive, got %+v", got)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	merged := []Segment{
		rm(0, 1, Filler, "a", 0.9),
		rm(2, 3, Silence, "b", 0.95),
		rm(4, 4.5, Repetition, "c", 0.85),
	}
	once := Merge(merged, 0.1)
	if !reflect.DeepEqual(once, merged) {
		t.Fatalf("merge changed an already merged list:\n got %+v\nwant %+v", once, merged)
	}
	twice := Merge(once, 0.1)
	if !reflect.DeepEqual(twice, once) {
		t.Fatalf("merge is not idempotent")
	}
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	in := []Segment{rm(2, 3, Filler, "b", 1), rm(0, 1, Filler, "a", 1)}
	_ = Merge(in, 0.1)
	if in[0].Start != 2 {
		t.Fatalf("input was reordered: %+v", in)
	}
}

func TestMerge_Empty(t *testing.T) {
	if got := Merge(nil, 0.1); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestBuildTimeline(t *testing.T) {
	tests := []struct {
		name     string
		removals []Segment
		duration float64
		want     [][3]float64 // start, end, action
	}{
		{
			name:     "no removals",
			duration: 5,
			want:     [][3]float64{{0, 5, 0}},
		},
		{
			name:     "removal at start",
			removals: []Segment{rm(0, 1, Silence, "s", 1)},
			duration: 5,
			want:     [][3]float64{{0, 1, 1}, {1, 5, 0}},
		},
		{
			name:     "removal near start snaps to zero",
			removals: []Segment{rm(0.05, 1, Silence, "s", 1)},
			duration: 5,
			want:     [][3]float64{{0, 1, 1}, {1, 5, 0}},
		},
		{
			name:     "removal to end",
			removals: []Segment{rm(2, 5, Silence, "s", 1)},
			duration: 5,
			want:     [][3]float64{{0, 2, 0}, {2, 5, 1}},
		},
		{
			name:     "tiny tail absorbed",
			removals: []Segment{rm(2, 4.95, Silence, "s", 1)},
			duration: 5,
			want:     [][3]float64{{0, 2, 0}, {2, 5, 1}},
		},
		{
			name:     "removal past duration clamped",
			removals: []Segment{rm(3, 9, Silence, "s", 1)},
			duration: 5,
			want:     [][3]float64{{0, 3, 0}, {3, 5, 1}},
		},
		{
			name:     "two removals",
			removals: []Segment{rm(1, 2, Filler, "f", 1), rm(3, 4, Filler, "f", 1)},
			duration: 5,
			want:     [][3]float64{{0, 1, 0}, {1, 2, 1}, {2, 3, 0}, {3, 4, 1}, {4, 5, 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildTimeline(tt.removals, tt.duration, 0.1)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d segments, got %+v", len(tt.want), got)
			}
			for i, w := range tt.want {
				s := got[i]
				if !approx(s.Start, w[0]) || !approx(s.End, w[1]) || s.Action != Action(w[2]) {
					t.Fatalf("segment %d = %+v, want %v", i, s, w)
				}
			}
			p := FromSegments(got, tt.duration)
			if err := p.Validate(); err != nil {
				t.Fatalf("timeline violates invariants: %v", err)
			}
		})
	}
}
