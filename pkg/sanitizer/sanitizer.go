package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	notesPipeline = Pipeline{stripControl, CollapseWhitespace}
	idPipeline    = Pipeline{strings.TrimSpace, stripControl}
)

// SanitizeNotes collapses whitespace and drops control characters from a
// driver's booking note.
func SanitizeNotes(notes string) string {
	return notesPipeline.Apply(notes)
}

// SanitizeID trims an identifier taken from a path or body. It does not check
// the format.
func SanitizeID(id string) string {
	return idPipeline.Apply(id)
}

// SanitizeTimestamp trims surrounding whitespace from a timestamp string.
func SanitizeTimestamp(ts string) string {
	return strings.TrimSpace(ts)
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
