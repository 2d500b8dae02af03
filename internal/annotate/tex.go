package annotate

import (
	"context"
	"strings"

	"codeberg.org/snonux/greekpron/internal/greek"
	"codeberg.org/snonux/greekpron/internal/logging"
)

// TeXAnnotator wraps Greek words in \greekpron[transcription]{word} calls
type TeXAnnotator struct {
	source Source
}

// NewTeXAnnotator creates an annotator resolving words through source
func NewTeXAnnotator(source Source) *TeXAnnotator {
	return &TeXAnnotator{source: source}
}

// Annotate replaces every complete Greek word in text. Everything else is
// copied verbatim.
func (a *TeXAnnotator) Annotate(ctx context.Context, text string) string {
	spans := greek.ExtractStrict(text)

	// back to front so earlier offsets stay valid
	for i := len(spans) - 1; i >= 0; i-- {
		span := spans[i]
		if !greek.IsBounded(text, span.Start, span.End) {
			continue
		}
		if greek.HasDiaeresis(span.Text) {
			logging.Info("word with diaeresis", "word", span.Text)
		}

		transcription := a.source.Resolve(ctx, span.Text)
		text = text[:span.Start] + Macro(span.Text, transcription) + text[span.End:]
	}
	return text
}

// Macro renders one \greekpron call. A transcription containing a closing
// bracket is braced so it stays a single optional argument.
func Macro(word, transcription string) string {
	if strings.Contains(transcription, "]") {
		transcription = "{" + transcription + "}"
	}
	return `\greekpron[` + transcription + `]{` + word + `}`
}
