package editplan

import (
	"fmt"
	"strings"
)

type Action uint8

const (
	Keep Action = iota
	Remove
)

func (a Action) String() string {
	switch a {
	case Keep:
		return "keep"
	case Remove:
		return "remove"
	default:
		return fmt.Sprintf("action(%d)", uint8(a))
	}
}

func (a Action) MarshalText() ([]byte, error) {
	switch a {
	case Keep, Remove:
		return []byte(a.String()), nil
	}
	return nil, fmt.Errorf("editplan: unknown action %d", uint8(a))
}

func (a *Action) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "keep":
		*a = Keep
	case "remove":
		*a = Remove
	default:
		return fmt.Errorf("editplan: unknown action %q", string(b))
	}
	return nil
}

// Category tags why a span is kept or removed. Mixed marks a merged span whose
// detectors disagreed.
type Category uint8

const (
	Content Category = iota
	Filler
	Repetition
	Silence
	Tangent
	Mixed
)

var categoryNames = [...]string{
	Content:    "content",
	Filler:     "filler",
	Repetition: "repetition",
	Silence:    "silence",
	Tangent:    "tangent",
	Mixed:      "mixed",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

func (c Category) MarshalText() ([]byte, error) {
	if int(c) >= len(categoryNames) {
		return nil, fmt.Errorf("editplan: unknown category %d", uint8(c))
	}
	return []byte(categoryNames[c]), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	for i, name := range categoryNames {
		if name == s {
			*c = Category(i)
			return nil
		}
	}
	return fmt.Errorf("editplan: unknown category %q", string(b))
}

// Segment is an immutable span of the source timeline. Transformations build
// new values.
type Segment struct {
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Action     Action   `json:"action"`
	Reason     string   `json:"reason"`
	Category   Category `json:"category"`
	Text       string   `json:"text,omitempty"`
	Confidence float64  `json:"confidence"`
}

func (s Segment) Duration() float64 {
	if s.End <= s.Start {
		return 0
	}
	return s.End - s.Start
}

func keepSegment(start, end float64) Segment {
	return Segment{
		Start:      start,
		End:        end,
		Action:     Keep,
		Reason:     "content",
		Category:   Content,
		Confidence: 1,
	}
}
