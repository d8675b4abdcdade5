package llm

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`\S+\s+`)

// WordChunker regroups streamed text into whole words with their trailing
// whitespace.
type WordChunker struct {
	buf strings.Builder
}

func (w *WordChunker) Push(delta string) []string {
	w.buf.WriteString(delta)
	s := w.buf.String()

	var words []string
	for {
		loc := wordPattern.FindStringIndex(s)
		if loc == nil {
			break
		}
		words = append(words, s[:loc[1]])
		s = s[loc[1]:]
	}
	w.buf.Reset()
	w.buf.WriteString(s)
	return words
}

// Flush returns whatever is buffered, which may be a partial word.
func (w *WordChunker) Flush() string {
	s := w.buf.String()
	w.buf.Reset()
	return s
}
