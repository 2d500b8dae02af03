package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// DefaultPandocTemplate is used by the pandoc renderer when it exists and no
// template was given
const DefaultPandocTemplate = "templates/default_pron.html"

// ErrUnknownRenderer is returned by New for unsupported renderer names
var ErrUnknownRenderer = errors.New("unknown renderer")

// Renderer converts one Markdown document into standalone HTML
type Renderer interface {
	// Render returns the page for markdownPath. A missing title file is
	// not an error.
	Render(ctx context.Context, markdownPath, titlePath string) (string, error)

	// Name returns the renderer name
	Name() string
}

// New creates the renderer named name. template is a path to a page
// template; empty selects the renderer's default.
func New(name, template string) (Renderer, error) {
	switch strings.ToLower(name) {
	case "", "pandoc":
		if template == "" {
			if _, err := os.Stat(DefaultPandocTemplate); err == nil {
				template = DefaultPandocTemplate
			}
		}
		return NewPandocRenderer("pandoc", template), nil
	case "goldmark":
		return NewGoldmarkRenderer(template)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownRenderer, name)
	}
}
