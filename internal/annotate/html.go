package annotate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"codeberg.org/snonux/greekpron/internal/greek"
)

// DefaultVerbatim lists the elements whose text is never annotated
var DefaultVerbatim = []string{"script", "style", "title", "textarea"}

// Options configures an HTMLAnnotator
type Options struct {
	Mode Mode
	// Verbatim names the elements whose text passes through unchanged.
	// Nil selects DefaultVerbatim.
	Verbatim []string
}

// HTMLAnnotator injects ruby or interlinear markup into HTML documents
type HTMLAnnotator struct {
	source   Source
	mode     Mode
	verbatim map[string]bool
}

// NewHTMLAnnotator creates an annotator resolving words through source
func NewHTMLAnnotator(source Source, opts Options) *HTMLAnnotator {
	names := opts.Verbatim
	if names == nil {
		names = DefaultVerbatim
	}

	verbatim := make(map[string]bool, len(names))
	for _, n := range names {
		verbatim[strings.ToLower(n)] = true
	}

	return &HTMLAnnotator{source: source, mode: opts.Mode, verbatim: verbatim}
}

// Mode returns the annotation layout
func (a *HTMLAnnotator) Mode() Mode {
	return a.mode
}

// IsVerbatim reports whether text directly inside element passes through
// unannotated
func (a *HTMLAnnotator) IsVerbatim(element string) bool {
	return a.verbatim[element]
}

// voidElements never have an end tag and are not tracked on the stack
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

var headings = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Annotate strips earlier annotations from markup and annotates every Greek
// word in text content. Tags, attributes, comments and entities are copied
// from the input bytes unchanged.
func (a *HTMLAnnotator) Annotate(ctx context.Context, markup string) (string, error) {
	markup = greek.Normalize(Strip(markup))

	var (
		out   strings.Builder
		stack []string
	)
	out.Grow(len(markup) + len(markup)/2)

	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return out.String(), nil
			}
			return "", fmt.Errorf("failed to tokenize markup: %w", z.Err())

		case html.TextToken:
			raw := z.Raw()
			if len(stack) > 0 && a.IsVerbatim(stack[len(stack)-1]) || !greek.ContainsGreek(string(raw)) {
				out.Write(raw)
				continue
			}
			if err := ctx.Err(); err != nil {
				return "", err
			}
			a.annotateText(ctx, &out, string(raw), inHeading(stack))

		case html.StartTagToken:
			out.Write(z.Raw())
			name, _ := z.TagName()
			if tag := string(name); !voidElements[tag] {
				stack = append(stack, tag)
			}

		case html.EndTagToken:
			out.Write(z.Raw())
			name, _ := z.TagName()
			stack = pop(stack, string(name))

		default:
			// self-closing tags, comments and doctype
			out.Write(z.Raw())
		}
	}
}

// annotateText replaces each Greek word in text and copies the gaps
func (a *HTMLAnnotator) annotateText(ctx context.Context, out *strings.Builder, text string, heading bool) {
	last := 0
	for _, span := range greek.Extract(text) {
		out.WriteString(text[last:span.Start])

		transcription := a.source.Resolve(ctx, span.Text)
		out.WriteString(RenderWord(span.Text, transcription, a.mode, heading))
		last = span.End
	}
	out.WriteString(text[last:])
}

// pop closes the innermost open element named tag. Stray end tags leave the
// stack unchanged.
func pop(stack []string, tag string) []string {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == tag {
			return stack[:i]
		}
	}
	return stack
}

func inHeading(stack []string) bool {
	for _, tag := range stack {
		if headings[tag] {
			return true
		}
	}
	return false
}
