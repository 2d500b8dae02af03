package greek

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// greekClass covers Greek and Coptic, Greek Extended and the combining
// diacritical marks block.
const greekClass = `[\x{0370}-\x{03FF}\x{1F00}-\x{1FFF}\x{0300}-\x{036F}]`

var (
	// wordPattern keeps elided and crasis forms together through an
	// internal apostrophe-like joiner.
	wordPattern = regexp.MustCompile(greekClass + `+(?:['ʼ᾽᾿\-]` + greekClass + `+)*`)

	// strictPattern must start on a Greek letter and runs through Greek
	// letters and nonspacing marks only.
	strictPattern = regexp.MustCompile(`\p{Greek}[\p{Greek}\p{Mn}]*`)
)

// Span is a Greek word located in a source text. Start and End are byte
// offsets, so text[Start:End] == Text.
type Span struct {
	Text  string
	Start int
	End   int
}

// Clean returns the span text without trailing sentence punctuation
func (s Span) Clean() string {
	return CleanWord(s.Text)
}

// Extract returns every Greek word in text in source order using the loose
// pattern. Combining marks that belong to a preceding non-Greek letter are
// never taken into a span.
func Extract(text string) []Span {
	var spans []Span
	for _, loc := range wordPattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if start > 0 {
			for start < end {
				r, size := utf8.DecodeRuneInString(text[start:])
				if !isCombining(r) {
					break
				}
				start += size
			}
		}
		if start == end {
			continue
		}
		spans = append(spans, Span{Text: text[start:end], Start: start, End: end})
	}
	return spans
}

// ExtractStrict returns Greek words that are not glued to any other letter
// on either side. It is the variant used for flat TeX and Markdown sources.
func ExtractStrict(text string) []Span {
	var spans []Span
	for _, loc := range strictPattern.FindAllStringIndex(text, -1) {
		if !IsBounded(text, loc[0], loc[1]) {
			continue
		}
		spans = append(spans, Span{Text: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]})
	}
	return spans
}

// IsBounded reports whether text[start:end] has no letter (or mark attached
// to a letter) immediately before or after it.
func IsBounded(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if unicode.IsLetter(r) || unicode.Is(unicode.Mn, r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if unicode.IsLetter(r) || unicode.Is(unicode.Mn, r) {
			return false
		}
	}
	return true
}

// Words returns the distinct Greek words of text, longest first and then
// in case-folded alphabetical order.
func Words(text string) []string {
	seen := make(map[string]bool)
	var words []string
	for _, s := range Extract(text) {
		if !seen[s.Text] {
			seen[s.Text] = true
			words = append(words, s.Text)
		}
	}

	fold := cases.Fold()
	sort.SliceStable(words, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(words[i]), utf8.RuneCountInString(words[j])
		if li != lj {
			return li > lj
		}
		return fold.String(words[i]) < fold.String(words[j])
	})
	return words
}

// ContainsGreek reports whether text holds at least one Greek-script code point
func ContainsGreek(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Greek, r) {
			return true
		}
	}
	return false
}

// Normalize returns text in Unicode composed form (NFC)
func Normalize(text string) string {
	return norm.NFC.String(text)
}

// CleanWord strips trailing sentence punctuation, including the Greek
// question mark and the ano teleia.
func CleanWord(word string) string {
	return strings.TrimRightFunc(word, isSentencePunct)
}

// HasLetter reports whether word contains any alphabetic character
func HasLetter(word string) bool {
	return strings.IndexFunc(word, unicode.IsLetter) >= 0
}

// HasDiaeresis reports whether word carries a diaeresis-marked vowel
func HasDiaeresis(word string) bool {
	return strings.ContainsAny(word, "ϊϋΐΰΪΫ\u1FD2\u1FD3\u1FD7\u1FE2\u1FE3\u1FE7\u0308")
}

func isSentencePunct(r rune) bool {
	switch r {
	case '!', '?', '.', ',', ';', ':', '\u037E', '\u0387':
		return true
	}
	return false
}

func isCombining(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
}
