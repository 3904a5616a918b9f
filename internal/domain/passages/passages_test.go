package passages

import (
	"testing"

	"github.com/forPelevin/jumpcut/internal/types"
)

func TestBuild_RespectsMaxSpan(t *testing.T) {
	var words []types.Word
	for i := 0; i < 100; i++ {
		words = append(words, types.Word{Text: "w", Start: float64(i), End: float64(i) + 0.9})
	}
	ps := Build(words, 10, 5)
	if len(ps) == 0 {
		t.Fatalf("expected passages")
	}
	for _, p := range ps {
		if p.End-p.Start > 10 {
			t.Fatalf("passage exceeds max span: %+v", p)
		}
	}
	for i, p := range ps {
		if p.Idx != i {
			t.Fatalf("expected sequential idx, got %d at %d", p.Idx, i)
		}
	}
}

func TestBuild_BreaksOnPause(t *testing.T) {
	words := []types.Word{
		{Text: "first", Start: 0, End: 0.5},
		{Text: "part", Start: 0.5, End: 1},
		{Text: "second", Start: 4, End: 4.5},
	}
	ps := Build(words, 30, 1.2)
	if len(ps) != 2 {
		t.Fatalf("expected 2 passages, got %+v", ps)
	}
	if ps[0].Text != "first part" || ps[1].Text != "second" {
		t.Fatalf("unexpected texts: %q, %q", ps[0].Text, ps[1].Text)
	}
	if ps[0].End != 1 || ps[1].Start != 4 {
		t.Fatalf("unexpected bounds: %+v", ps)
	}
}

func TestBuild_PrefersSentenceEnds(t *testing.T) {
	words := []types.Word{
		{Text: "one", Start: 0, End: 3},
		{Text: "done.", Start: 3, End: 6},
		{Text: "next", Start: 6, End: 7},
	}
	ps := Build(words, 10, 2)
	if len(ps) != 2 || ps[0].Text != "one done." {
		t.Fatalf("expected break after sentence end, got %+v", ps)
	}
}

func TestBuild_Empty(t *testing.T) {
	if got := Build(nil, 0, 0); len(got) != 0 {
		t.Fatalf("expected no passages, got %+v", got)
	}
}
