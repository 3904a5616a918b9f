package editplan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes the plan as indented JSON.
func Save(path string, p Plan) error {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0o644)
}

// Load reads a plan written by Save or an externally authored timeline with
// the same segment shape. Statistics are recomputed from the segments, and
// original_duration defaults to the end of the last segment when absent.
func Load(path string) (Plan, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, err
	}
	return Parse(b)
}

func Parse(b []byte) (Plan, error) {
	var raw struct {
		Segments         []Segment `json:"segments"`
		OriginalDuration float64   `json:"original_duration"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return Plan{}, fmt.Errorf("parse plan: %w", err)
	}
	for i := range raw.Segments {
		if raw.Segments[i].Confidence == 0 && raw.Segments[i].Action == Keep {
			raw.Segments[i].Confidence = 1
		}
	}
	duration := raw.OriginalDuration
	if duration == 0 && len(raw.Segments) > 0 {
		duration = raw.Segments[len(raw.Segments)-1].End
	}
	p := FromSegments(raw.Segments, duration)
	if err := p.Validate(); err != nil {
		return Plan{}, fmt.Errorf("invalid plan: %w", err)
	}
	return p, nil
}
