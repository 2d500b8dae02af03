package annotate

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Source resolves a word, possibly with trailing punctuation, to its
// transcription. *pronounce.Resolver implements it.
type Source interface {
	Resolve(ctx context.Context, word string) string
}

// Mode selects the HTML annotation layout
type Mode int

const (
	// Ruby places the transcription below the word
	Ruby Mode = iota
	// Interlinear nests the transcription in a translation span
	Interlinear
)

// ParseMode converts "ruby" or "interlinear" into a Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ruby":
		return Ruby, nil
	case "interlinear", "il":
		return Interlinear, nil
	}
	return Ruby, fmt.Errorf("unknown annotation mode %q", s)
}

func (m Mode) String() string {
	if m == Interlinear {
		return "interlinear"
	}
	return "ruby"
}

const rubyOpen = `<ruby style="ruby-position:under;-webkit-ruby-position:after">`

// RenderWord returns the markup for one annotated word. Interlinear glosses
// inside headings stay empty and are excluded from the table of contents.
func RenderWord(word, transcription string, mode Mode, inHeading bool) string {
	switch {
	case mode == Interlinear && inHeading:
		return `<span class="il_word">` + word + `<span class="il_translation not_in_toc"></span></span>`
	case mode == Interlinear:
		return `<span class="il_word">` + word + `<span class="il_translation">` + html.EscapeString(transcription) + `</span></span>`
	default:
		return rubyOpen + word + `<rt>` + html.EscapeString(transcription) + `</rt></ruby>`
	}
}

var (
	rubyTagRe     = regexp.MustCompile(`</?ruby(?:\s[^>]*)?>`)
	rbTagRe       = regexp.MustCompile(`</?rb(?:\s[^>]*)?>`)
	rtElementRe   = regexp.MustCompile(`(?s)<rt(?:\s[^>]*)?>.*?</rt>`)
	rpElementRe   = regexp.MustCompile(`(?s)<rp(?:\s[^>]*)?>.*?</rp>`)
	interlinearRe = regexp.MustCompile(`<span class="il_word">([^<]*)<span class="il_translation[^"]*">[^<]*</span></span>`)
)

// Strip removes annotation markup added by an earlier run and keeps the
// annotated words.
func Strip(markup string) string {
	markup = rtElementRe.ReplaceAllString(markup, "")
	markup = rpElementRe.ReplaceAllString(markup, "")
	markup = rubyTagRe.ReplaceAllString(markup, "")
	markup = rbTagRe.ReplaceAllString(markup, "")
	return interlinearRe.ReplaceAllString(markup, "$1")
}
