package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/forPelevin/jumpcut/internal/domain/editplan"
	"github.com/forPelevin/jumpcut/internal/domain/passages"
	"github.com/forPelevin/jumpcut/internal/types"
)

type Adapter struct {
	key     string
	model   string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

const (
	defaultModel      = "anthropic/claude-3.5-sonnet"
	defaultTimeout    = 90 * time.Second
	defaultConfidence = 0.7
	maxPromptPassages = 200
)

func New(apiKey, model, baseURL string, timeout time.Duration) *Adapter {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL = normalizeBaseURL(baseURL)
	return &Adapter{key: apiKey, model: model, baseURL: baseURL, timeout: timeout, client: &http.Client{Timeout: 5 * time.Minute}}
}

type tangentVerdict struct {
	Idx        int     `json:"idx"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// DetectTangents asks the model which passages drift away from the main topic
// and returns them as Remove/Tangent candidates. An unusable model reply
// yields no candidates; transport and HTTP failures are errors.
func (a *Adapter) DetectTangents(ctx context.Context, words []types.Word, duration float64) ([]editplan.Segment, error) {
	ps := passages.Build(words, passages.DefaultMaxSpan, passages.DefaultMaxPause)
	if len(ps) < 2 {
		// A single passage is the topic by definition.
		return nil, nil
	}
	if len(ps) > maxPromptPassages {
		ps = ps[:maxPromptPassages]
	}

	content, err := a.complete(ctx, ps)
	if err != nil {
		return nil, err
	}
	verdicts, err := decodeVerdicts(content)
	if err != nil {
		return nil, nil
	}
	return verdictsToSegments(verdicts, ps, duration), nil
}

func (a *Adapter) complete(ctx context.Context, ps []types.Passage) (string, error) {
	pb, err := json.Marshal(map[string]any{"passages": ps})
	if err != nil {
		return "", fmt.Errorf("marshal prompt: %w", err)
	}

	payload := map[string]any{
		"model":  a.model,
		"stream": false,
		"messages": []map[string]any{
			{"role": "user", "content": buildPrompt(pb)},
		},
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name": "jumpcut_tangents",
				"schema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"tangents": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"idx":        map[string]any{"type": "integer"},
									"reason":     map[string]any{"type": "string"},
									"confidence": map[string]any{"type": "number"},
								},
								"required": []string{"idx", "reason", "confidence"},
							},
						},
					},
					"required": []string{"tangents"},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	url := a.baseURL + "/api/v1/chat/completions"

	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+a.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("openrouter timeout after %s (model=%s)", a.timeout, a.model)
		}
		return "", fmt.Errorf("openrouter request: %s", redactSecrets(err.Error(), a.key))
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return "", fmt.Errorf("openrouter status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return "", fmt.Errorf("openrouter status %d: %s", resp.StatusCode, truncate(redactSecrets(string(rb), a.key), 400))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content any `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("openrouter decode: %w", err)
	}
	if len(raw.Choices) == 0 {
		return "", nil
	}
	content, err := messageContentToString(raw.Choices[0].Message.Content)
	if err != nil {
		return "", nil
	}
	return content, nil
}

func buildPrompt(passagesJSON []byte) string {
	return "You review a spoken recording split into numbered passages. " +
		"Identify passages that are off-topic tangents relative to the main subject of the recording: " +
		"digressions, unrelated anecdotes, housekeeping chatter. " +
		"Do not flag passages that introduce, summarize or support the main subject. " +
		"Return strictly valid JSON (no markdown, no code fences) matching the provided schema, " +
		"with confidence between 0 and 1. Return an empty list when nothing is off-topic." +
		"\n\nPassages JSON:\n" + string(passagesJSON)
}

func decodeVerdicts(content string) ([]tangentVerdict, error) {
	clean, err := extractJSONObject(content)
	if err != nil {
		return nil, err
	}
	var out struct {
		Tangents []tangentVerdict `json:"tangents"`
	}
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, err
	}
	return out.Tangents, nil
}

// verdictsToSegments maps passage indices back onto the timeline. Unknown or
// repeated indices are dropped.
func verdictsToSegments(vs []tangentVerdict, ps []types.Passage, duration float64) []editplan.Segment {
	seen := make(map[int]struct{}, len(vs))
	var out []editplan.Segment
	for _, v := range vs {
		if v.Idx < 0 || v.Idx >= len(ps) {
			continue
		}
		if _, dup := seen[v.Idx]; dup {
			continue
		}
		seen[v.Idx] = struct{}{}

		p := ps[v.Idx]
		start, end := p.Start, p.End
		if duration > 0 && end > duration {
			end = duration
		}
		if start < 0 {
			start = 0
		}
		if end <= start {
			continue
		}
		conf := v.Confidence
		if conf <= 0 || conf > 1 {
			conf = defaultConfidence
		}
		reason := strings.TrimSpace(v.Reason)
		if reason == "" {
			reason = "off-topic passage"
		}
		out = append(out, editplan.Segment{
			Start:      start,
			End:        end,
			Action:     editplan.Remove,
			Reason:     "tangent: " + reason,
			Category:   editplan.Tangent,
			Text:       p.Text,
			Confidence: conf,
		})
	}
	return out
}
