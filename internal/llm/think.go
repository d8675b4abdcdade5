package llm

import "strings"

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

type Segment struct {
	Reasoning bool
	Text      string
}

// ThinkSplitter separates <think>...</think> sections from visible text in a
// stream of deltas. Tags may be split across deltas.
type ThinkSplitter struct {
	inThink bool
	pending string
}

func (t *ThinkSplitter) Feed(delta string) []Segment {
	var out []Segment
	buf := t.pending + delta
	t.pending = ""

	for buf != "" {
		tag := thinkOpen
		if t.inThink {
			tag = thinkClose
		}
		if i := strings.Index(buf, tag); i >= 0 {
			out = t.emit(out, buf[:i])
			buf = buf[i+len(tag):]
			t.inThink = !t.inThink
			continue
		}
		keep := partialSuffix(buf, tag)
		out = t.emit(out, buf[:len(buf)-keep])
		t.pending = buf[len(buf)-keep:]
		break
	}
	return out
}

// Flush releases text held back as a possible tag prefix.
func (t *ThinkSplitter) Flush() []Segment {
	rest := t.pending
	t.pending = ""
	return t.emit(nil, rest)
}

func (t *ThinkSplitter) emit(out []Segment, s string) []Segment {
	if s == "" {
		return out
	}
	if n := len(out); n > 0 && out[n-1].Reasoning == t.inThink {
		out[n-1].Text += s
		return out
	}
	return append(out, Segment{Reasoning: t.inThink, Text: s})
}

// partialSuffix returns the length of the longest suffix of s that is a
// proper prefix of tag.
func partialSuffix(s, tag string) int {
	limit := len(tag) - 1
	if len(s) < limit {
		limit = len(s)
	}
	for n := limit; n > 0; n-- {
		if strings.HasSuffix(s, tag[:n]) {
			return n
		}
	}
	return 0
}
