package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func loc(s string) *string { return &s }

func assertSpan(t *testing.T, text string, got Span, prefix, highlighted, suffix string) {
	t.Helper()
	assert.Equal(t, text, got.Prefix+got.Highlighted+got.Suffix, "parts must reassemble the passage")
	assert.Equal(t, prefix, got.Prefix, "prefix")
	assert.Equal(t, highlighted, got.Highlighted, "highlighted")
	assert.Equal(t, suffix, got.Suffix, "suffix")
}

func TestHighlightRomanReference(t *testing.T) {
	text := "It is said. As Paul writes in Rom. viii. 13, we must mortify the flesh. Then more."
	got := Highlight(text, 8, loc("13"))
	assertSpan(t, text, got,
		"It is said. ",
		"As Paul writes in Rom. viii. 13, we must mortify the flesh.",
		" Then more.")
	assert.True(t, got.Found())
}

func TestHighlightDoesNotSplitAtAbbreviation(t *testing.T) {
	text := "... Rom. viii. 13 says ..."
	got := Highlight(text, 8, loc("13"))
	assert.Contains(t, got.Highlighted, "Rom. viii. 13 says")
	assert.Equal(t, text, got.Prefix+got.Highlighted+got.Suffix)

	text = "and therefore the Apostle, Rom. viii. 13, bids us live."
	got = Highlight(text, 8, loc("13"))
	assertSpan(t, text, got, "", text, "")
}

func TestHighlightUppercaseRomanAtReference(t *testing.T) {
	text := "Compare Rom. VIII. 13 with the rest"
	got := Highlight(text, 8, loc("13-17"))
	assertSpan(t, text, got, "", text, "")
}

func TestHighlightArabicReference(t *testing.T) {
	text := "See Rom. 8:13. Another thing entirely."
	got := Highlight(text, 8, loc("13"))
	assertSpan(t, text, got, "", "See Rom. 8:13.", " Another thing entirely.")
}

func TestHighlightParagraphBreaks(t *testing.T) {
	text := "First para.\n\nSecond para cites viii. 13 here\n\nThird."
	got := Highlight(text, 8, loc("13"))
	assertSpan(t, text, got, "First para.\n\n", "Second para cites viii. 13 here\n\n", "Third.")

	text = "Intro\n\n   Indented text cites 8 13 plainly"
	got = Highlight(text, 8, loc("13"))
	assertSpan(t, text, got, "Intro\n\n   ", "Indented text cites 8 13 plainly", "")
}

func TestHighlightClosingQuotes(t *testing.T) {
	text := `He said, "Walk as in viii. 13." Then he left.`
	got := Highlight(text, 8, loc("13"))
	assertSpan(t, text, got, "", `He said, "Walk as in viii. 13."`, " Then he left.")

	text = "Thus (cf. xii. 2.) Nothing else."
	got = Highlight(text, 12, loc("2"))
	assertSpan(t, text, got, "", "Thus (cf. xii. 2.)", " Nothing else.")
}

func TestHighlightSentenceAfterQuestion(t *testing.T) {
	text := "Who can doubt it? “Be ye transformed,” says xii. 2, and so on! Next."
	got := Highlight(text, 12, loc("2"))
	assertSpan(t, text, got, "Who can doubt it? ", "“Be ye transformed,” says xii. 2, and so on!", " Next.")
}

func TestHighlightTrailingWhitespace(t *testing.T) {
	text := "Cites 8:13.   "
	got := Highlight(text, 8, loc("13"))
	assertSpan(t, text, got, "", "Cites 8:13.", "   ")
}

func TestHighlightWholeToken(t *testing.T) {
	for _, text := range []string{
		"Romans xviii. 13 is not chapter eight.",
		"Romans 18:13 is not chapter eight.",
		"Romans viii. 130 is another verse.",
		"Romans 8:13th does not count.",
	} {
		got := Highlight(text, 8, loc("13"))
		assert.False(t, got.Found(), text)
		assert.Equal(t, text, got.Prefix)
	}
}

func TestHighlightFirstMatchWins(t *testing.T) {
	text := "One is viii. 13 here. Two is 8:13 there."
	got := Highlight(text, 8, loc("13"))
	assertSpan(t, text, got, "", "One is viii. 13 here.", " Two is 8:13 there.")
}

func TestHighlightNoHighlight(t *testing.T) {
	text := "Nothing about Rom. viii. 13 here."
	tests := []struct {
		name    string
		text    string
		chapter int
		locator *string
	}{
		{"nil locator", text, 8, nil},
		{"whole chapter", text, 8, loc("whole")},
		{"non-digit locator", text, 8, loc("abc")},
		{"empty locator", text, 8, loc("")},
		{"no match", text, 8, loc("14")},
		{"wrong chapter", text, 9, loc("13")},
		{"empty text", "", 8, loc("13")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Highlight(tt.text, tt.chapter, tt.locator)
			assert.Equal(t, Span{Prefix: tt.text}, got)
		})
	}
}

func TestHighlightNeverBreaksConcatenation(t *testing.T) {
	inputs := []string{
		"\xff\xfe viii. 13 \xff.",
		"viii. 13",
		"....viii.13....",
		"8:13\n\n",
		"\n\n8:13",
		"A. B. C. viii 13. D.",
		"Ἐν ἀρχῇ. Ὁ λόγος viii. 13 ἦν.",
		"((((viii. 13))))",
	}
	for _, text := range inputs {
		got := Highlight(text, 8, loc("13"))
		assert.Equal(t, text, got.Prefix+got.Highlighted+got.Suffix, "%q", text)
		assert.True(t, got.Found(), "%q", text)
	}
}

func TestToRoman(t *testing.T) {
	tests := map[int]string{
		0: "", -3: "", 1: "i", 4: "iv", 8: "viii", 9: "ix", 14: "xiv",
		19: "xix", 29: "xxix", 39: "xxxix", 40: "xl", 49: "xlix", 90: "xc", 150: "cl",
	}
	for n, want := range tests {
		assert.Equal(t, want, ToRoman(n), "ToRoman(%d)", n)
	}
}

func TestReferencePatternCompiledOnce(t *testing.T) {
	first := referencePattern(8, "13")
	assert.Same(t, first, referencePattern(8, "13"))
	assert.NotSame(t, first, referencePattern(8, "14"))
	assert.NotSame(t, first, referencePattern(9, "13"))

	verse := "13"
	assert.Equal(t, "As Rom. viii. 13 says.", Highlight("As Rom. viii. 13 says.", 8, &verse).Highlighted)
	assert.Same(t, first, referencePattern(8, "13"), "Highlight reuses the cached pattern")
}
