// Package highlight finds the sentence of a quoted passage that carries a
// chapter/verse reference, so a citation card can emphasise it.
//
// Classical texts cite scripture as "Rom. viii. 13" or "Rom. 8:13", so the
// reference is matched in Arabic or Roman notation and the sentence is
// widened around it by scanning outward for boundaries that abbreviation
// periods such as "Rom." cannot produce.
package highlight

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bitflora/patristics-explorer/internal/corpus"
)

// Span splits a passage into three consecutive parts. Prefix+Highlighted+Suffix
// always reproduces the passage.
type Span struct {
	Prefix      string
	Highlighted string
	Suffix      string
}

// Found reports whether a sentence was highlighted.
func (s Span) Found() bool { return s.Highlighted != "" }

// Highlight locates the first reference to chapter and the leading verse of
// locator in text and returns the enclosing sentence as the highlighted part.
// Whole-chapter locators, locators without a leading verse number, empty text
// and texts without a matching reference yield no highlight.
func Highlight(text string, chapter int, locator *string) Span {
	none := Span{Prefix: text}
	if text == "" || locator == nil || *locator == corpus.WholeChapter {
		return none
	}
	verse := leadingDigits(*locator)
	if verse == "" {
		return none
	}
	m := referencePattern(chapter, verse).FindStringIndex(text)
	if m == nil {
		return none
	}
	start := sentenceStart(text, m[0])
	end := sentenceEnd(text, m[1])
	return Span{
		Prefix:      text[:start],
		Highlighted: text[start:end],
		Suffix:      text[end:],
	}
}

func leadingDigits(s string) string {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return s[:n]
}

type patternKey struct {
	chapter int
	verse   string
}

// patterns caches compiled reference patterns by chapter and verse.
var patterns = corpus.NewCache[patternKey, *regexp.Regexp]()

// referencePattern matches the chapter in Arabic or Roman numerals, a run of
// '.', ':' or whitespace, then the verse as a whole token.
func referencePattern(chapter int, verse string) *regexp.Regexp {
	key := patternKey{chapter: chapter, verse: verse}
	if re, ok := patterns.Get(key); ok {
		return re
	}
	alts := []string{strconv.Itoa(chapter)}
	if r := ToRoman(chapter); r != "" {
		alts = append(alts, r)
	}
	re := regexp.MustCompile(fmt.Sprintf(`(?i)\b(?:%s)[.:\s]+%s\b`, strings.Join(alts, "|"), verse))
	return patterns.Set(key, re)
}

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

// ToRoman renders n as lowercase Roman numerals using subtractive pairs.
// Non-positive n yields "".
func ToRoman(n int) string {
	var b strings.Builder
	for _, r := range romanTable {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String()
}

// ── Sentence scanning ─────────────────────────────────────────────────────────

func isTerminal(r rune) bool { return r == '.' || r == '!' || r == '?' }

func isOpening(r rune) bool {
	switch r {
	case '"', '\'', '“', '‘', '«', '(', '[', '{':
		return true
	}
	return false
}

func isClosing(r rune) bool {
	switch r {
	case '"', '\'', '”', '’', '»', ')', ']', '}':
		return true
	}
	return false
}

// newSentenceAt reports whether text[i:] is whitespace followed by an
// uppercase letter or opening quote/bracket that sits before limit, and
// returns the offset of that letter.
func newSentenceAt(text string, i, limit int) (int, bool) {
	j := i
	for j < len(text) {
		r, size := utf8.DecodeRuneInString(text[j:])
		if !unicode.IsSpace(r) {
			break
		}
		j += size
	}
	if j == i || j >= limit {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(text[j:])
	if unicode.IsUpper(r) || unicode.IsTitle(r) || isOpening(r) {
		return j, true
	}
	return 0, false
}

// sentenceStart scans backward from the reference at m. A sentence starts
// after a blank line or after terminal punctuation followed by whitespace
// and a capital or opening mark. A capital at m itself does not count, so
// "Rom. VIII. 13" keeps the abbreviation inside the sentence.
func sentenceStart(text string, m int) int {
	start := 0
	for i := m; i > 0; {
		r, size := utf8.DecodeLastRuneInString(text[:i])
		i -= size
		if r == '\n' && i > 0 && text[i-1] == '\n' {
			start = i + 1
			break
		}
		if isTerminal(r) {
			if j, ok := newSentenceAt(text, i+size, m); ok {
				start = j
				break
			}
		}
	}
	for start < m && text[start] == ' ' {
		start++
	}
	return start
}

// sentenceEnd scans forward from the end of the reference at e. Terminal
// punctuation, after any closing quotes or brackets, ends the sentence when
// followed by end of text, trailing whitespace only, or whitespace and a
// new sentence. A blank line ends the sentence and is included in it.
func sentenceEnd(text string, e int) int {
	for i := e; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == '\n' && i+1 < len(text) && text[i+1] == '\n' {
			return i + 2
		}
		if isTerminal(r) {
			j := i + size
			for j < len(text) {
				c, n := utf8.DecodeRuneInString(text[j:])
				if !isClosing(c) {
					break
				}
				j += n
			}
			if strings.TrimSpace(text[j:]) == "" {
				return j
			}
			if _, ok := newSentenceAt(text, j, len(text)); ok {
				return j
			}
		}
		i += size
	}
	return len(text)
}
