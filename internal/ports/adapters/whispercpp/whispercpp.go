package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/forPelevin/jumpcut/internal/types"
)

type Adapter struct {
	bin      string
	model    string
	language string
}

func New(binPath, modelPath, language string) *Adapter {
	if language == "" {
		language = "auto"
	}
	return &Adapter{bin: binPath, model: modelPath, language: language}
}

// Transcribe runs whisper.cpp with full JSON output and rebuilds word timings
// from its token stream.
func (a *Adapter) Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error) {
	outPrefix := filepath.Join(cacheDir, "whisper")
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-l", a.language,
		"-ojf",
		"-of", outPrefix,
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcript{}, err
	}
	return parseFullJSON(jb)
}

type fullJSON struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets offsets `json:"offsets"`
		Text    string  `json:"text"`
		Tokens  []struct {
			Text    string  `json:"text"`
			Offsets offsets `json:"offsets"`
			P       float64 `json:"p"`
		} `json:"tokens"`
	} `json:"transcription"`
}

// offsets are milliseconds from the start of the audio.
type offsets struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

func parseFullJSON(b []byte) (types.Transcript, error) {
	var raw fullJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return types.Transcript{}, fmt.Errorf("parse whisper.cpp json: %w", err)
	}

	tr := types.Transcript{Language: raw.Result.Language}
	for _, seg := range raw.Transcription {
		u := types.Utterance{
			Start: ms(seg.Offsets.From),
			End:   ms(seg.Offsets.To),
			Text:  strings.TrimSpace(seg.Text),
		}
		var cur *types.Word
		var probs []float64
		closeWord := func() {
			if cur == nil {
				return
			}
			cur.Text = strings.TrimSpace(cur.Text)
			if cur.Text != "" {
				cur.Confidence = mean(probs)
				u.Words = append(u.Words, *cur)
			}
			cur, probs = nil, nil
		}
		for _, tok := range seg.Tokens {
			// Control tokens such as [_BEG_] or [_TT_150] carry no speech.
			if strings.HasPrefix(strings.TrimSpace(tok.Text), "[_") {
				continue
			}
			if tok.Text == "" {
				continue
			}
			if cur == nil || strings.HasPrefix(tok.Text, " ") {
				closeWord()
				cur = &types.Word{Start: ms(tok.Offsets.From)}
			}
			cur.Text += tok.Text
			cur.End = ms(tok.Offsets.To)
			probs = append(probs, tok.P)
		}
		closeWord()
		tr.Utterances = append(tr.Utterances, u)
	}
	return tr, nil
}

func ms(v int64) float64 { return float64(v) / 1000 }

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	v := sum / float64(len(xs))
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
