package render

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/default.html
var defaultTemplate string

// Page is the data passed to the page template
type Page struct {
	Meta
	Body template.HTML
}

// GoldmarkRenderer renders Markdown in process
type GoldmarkRenderer struct {
	md   goldmark.Markdown
	tmpl *template.Template
}

// NewGoldmarkRenderer creates a goldmark renderer. templatePath names an
// html/template file; empty selects the embedded default page.
func NewGoldmarkRenderer(templatePath string) (*GoldmarkRenderer, error) {
	text := defaultTemplate
	if templatePath != "" {
		data, err := os.ReadFile(templatePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read template: %w", err)
		}
		text = string(data)
	}

	tmpl, err := template.New("page").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		// sources may carry raw HTML such as existing ruby markup
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	return &GoldmarkRenderer{md: md, tmpl: tmpl}, nil
}

// Render converts markdownPath and wraps it in the page template
func (r *GoldmarkRenderer) Render(ctx context.Context, markdownPath, titlePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	source, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", markdownPath, err)
	}

	meta, err := ReadTitle(titlePath)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	if err := r.md.Convert(source, &body); err != nil {
		return "", fmt.Errorf("failed to convert %s: %w", markdownPath, err)
	}

	var page bytes.Buffer
	if err := r.tmpl.Execute(&page, Page{Meta: meta, Body: template.HTML(body.String())}); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return page.String(), nil
}

// Name returns the renderer name
func (r *GoldmarkRenderer) Name() string {
	return "goldmark"
}
