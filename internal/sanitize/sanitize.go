// Package sanitize cleans text before it is written into generated
// documents and file names.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultBaseName names archives when the supplied base name has no usable
// characters.
const DefaultBaseName = "IQSMS_Forms_Export"

var (
	strictOnce   sync.Once
	strictPolicy *bluemonday.Policy

	// [w:rPr], [xml:space] and similar leftovers of copied rich text
	namespaceRemnant = regexp.MustCompile(`\[[A-Za-z][\w.-]*:[^\]]*\]`)
)

func policy() *bluemonday.Policy {
	strictOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// foldAccents decomposes and drops combining marks, so "é" becomes "e".
// A transformer is stateful, so each call builds its own chain.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// escapeUnclosed escapes every "<" that no ">" follows. The HTML tokenizer
// reads "<" plus a letter as a tag start and would swallow the rest of the
// label.
func escapeUnclosed(s string) string {
	last := strings.LastIndexByte(s, '>')
	return s[:last+1] + strings.ReplaceAll(s[last+1:], "<", "&lt;")
}

// Text returns s reduced to trimmed printable ASCII (0x20-0x7E). Markup and
// namespace remnants are stripped, entities decoded, NBSP and whitespace
// controls become spaces, accents are folded and everything else outside
// the range is dropped. A "<" with no closing ">" is kept as text. It never
// fails; the worst case is "".
func Text(s string) (out string) {
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()

	if s == "" {
		return ""
	}
	s = namespaceRemnant.ReplaceAllString(s, "")
	s = policy().Sanitize(escapeUnclosed(s))
	s = html.UnescapeString(s)
	s = foldAccents(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteByte(' ')
		case r >= 0x20 && r <= 0x7e:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// FilenamePart keeps ASCII letters, digits and spaces, trims, and turns
// each remaining space into "_".
func FilenamePart(s string) string {
	s = foldAccents(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
}

// ArchiveName is the zip name for a base name such as a customer code
func ArchiveName(base string) string {
	part := FilenamePart(base)
	if part == "" {
		part = DefaultBaseName
	}
	return part + "_Generated_Forms.zip"
}
