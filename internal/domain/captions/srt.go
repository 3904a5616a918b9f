package captions

import (
	"fmt"
	"strings"
	"time"

	"github.com/forPelevin/jumpcut/internal/domain/editplan"
	"github.com/forPelevin/jumpcut/internal/types"
)

type word struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

type line struct {
	Start time.Duration
	End   time.Duration
	Words []word
}

const (
	charBudget = 42
	spanBudget = 3500 * time.Millisecond
	pauseBreak = 800 * time.Millisecond
)

// Retime maps words onto the edited timeline. Only words that lie entirely
// inside a kept segment survive.
func Retime(words []types.Word, plan editplan.Plan) []types.Word {
	keeps := plan.KeepSegments()
	var out []types.Word
	k := 0
	edited := 0.0 // position of keeps[k] on the edited timeline
	for _, w := range words {
		for k < len(keeps) && keeps[k].End < w.End {
			edited += keeps[k].Duration()
			k++
		}
		if k == len(keeps) {
			break
		}
		if w.Start < keeps[k].Start {
			continue
		}
		offset := edited - keeps[k].Start
		w.Start += offset
		w.End += offset
		out = append(out, w)
	}
	return out
}

// RenderSRT packs retimed words into short lines and formats them as SubRip.
func RenderSRT(words []types.Word) string {
	var ws []word
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		ws = append(ws, word{Start: dur(w.Start), End: dur(w.End), Text: text})
	}
	if len(ws) == 0 {
		return ""
	}

	var b strings.Builder
	for i, ln := range packWords(ws) {
		parts := make([]string, 0, len(ln.Words))
		for _, w := range ln.Words {
			parts = append(parts, w.Text)
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, srtTime(ln.Start), srtTime(ln.End), strings.Join(parts, " "))
	}
	return b.String()
}

func packWords(words []word) []line {
	var out []line
	cur := line{Start: words[0].Start}
	curLen := 0
	for _, w := range words {
		wl := len([]rune(w.Text))
		if len(cur.Words) > 0 {
			last := cur.Words[len(cur.Words)-1]
			if curLen+1+wl > charBudget || w.End-cur.Start > spanBudget || w.Start-last.End > pauseBreak {
				cur.End = last.End
				out = append(out, cur)
				cur = line{Start: w.Start}
				curLen = 0
			}
		}
		if curLen > 0 {
			curLen++
		}
		curLen += wl
		cur.Words = append(cur.Words, w)
	}
	cur.End = cur.Words[len(cur.Words)-1].End
	return append(out, cur)
}

func srtTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hs, ms, s, int(d/time.Millisecond))
}

func dur(sec float64) time.Duration { return time.Duration(sec*1000+0.5) * time.Millisecond }
