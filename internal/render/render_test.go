package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/greekpron/internal/testutil"
)

func TestNew(t *testing.T) {
	r, err := New("", "")
	require.NoError(t, err)
	assert.Equal(t, "pandoc", r.Name())

	r, err = New("GoldMark", "")
	require.NoError(t, err)
	assert.Equal(t, "goldmark", r.Name())

	_, err = New("asciidoc", "")
	assert.True(t, errors.Is(err, ErrUnknownRenderer))

	_, err = New("goldmark", filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

func TestPandocArgs(t *testing.T) {
	dir := t.TempDir()
	title := filepath.Join(dir, "title.txt")
	testutil.CreateTestFile(t, title, []byte("% Title\n"))

	r := NewPandocRenderer("pandoc", "templates/default_pron.html")
	assert.Equal(t,
		[]string{"-s", "--from=markdown", "--to=html5", "--template=templates/default_pron.html", title, "src/a.md"},
		r.Args("src/a.md", title))

	// absent title files are left out
	r = NewPandocRenderer("pandoc", "")
	assert.Equal(t,
		[]string{"-s", "--from=markdown", "--to=html5", "src/a.md"},
		r.Args("src/a.md", filepath.Join(dir, "missing.txt")))
}

func fakePandoc(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not available on windows")
	}
	path := filepath.Join(t.TempDir(), "pandoc")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func TestPandocRender(t *testing.T) {
	bin := fakePandoc(t, `for last; do :; done
printf '<html><body>'
cat "$last"
printf '</body></html>'
`)
	md := filepath.Join(t.TempDir(), "a.md")
	testutil.CreateTestFile(t, md, []byte("λόγος"))

	got, err := NewPandocRenderer(bin, "").Render(context.Background(), md, "")
	require.NoError(t, err)
	assert.Equal(t, "<html><body>λόγος</body></html>", got)
}

func TestPandocRenderFailure(t *testing.T) {
	bin := fakePandoc(t, "echo 'unknown option' >&2\nexit 2\n")

	_, err := NewPandocRenderer(bin, "").Render(context.Background(), "a.md", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown option")
}

func TestGoldmarkRender(t *testing.T) {
	dir := t.TempDir()
	md := filepath.Join(dir, "intro.md")
	title := filepath.Join(dir, "title.txt")
	testutil.CreateTestFile(t, md, []byte("# Περὶ ψυχῆς\n\nὉ *λόγος* & more\n\n<ruby>x<rt>y</rt></ruby>\n"))
	testutil.CreateTestFile(t, title, []byte("---\ntitle: Ἑλληνικά\nauthor:\n  - A. Reader\nlang: el\n---\n"))

	r, err := NewGoldmarkRenderer("")
	require.NoError(t, err)

	got, err := r.Render(context.Background(), md, title)
	require.NoError(t, err)
	assert.Contains(t, got, `<html lang="el">`)
	assert.Contains(t, got, "<title>Ἑλληνικά</title>")
	assert.Contains(t, got, `<p class="author">A. Reader</p>`)
	assert.Contains(t, got, "Περὶ ψυχῆς</h1>")
	assert.Contains(t, got, "<em>λόγος</em> &amp; more")
	assert.Contains(t, got, "<ruby>x<rt>y</rt></ruby>")
}

func TestGoldmarkRenderCustomTemplate(t *testing.T) {
	dir := t.TempDir()
	md := filepath.Join(dir, "a.md")
	tmpl := filepath.Join(dir, "page.html")
	testutil.CreateTestFile(t, md, []byte("text\n"))
	testutil.CreateTestFile(t, tmpl, []byte("[{{.Title}}]{{.Body}}"))

	r, err := NewGoldmarkRenderer(tmpl)
	require.NoError(t, err)

	got, err := r.Render(context.Background(), md, filepath.Join(dir, "missing.txt"))
	require.NoError(t, err)
	assert.Equal(t, "[]<p>text</p>\n", got)
}

func TestGoldmarkRenderMissingSource(t *testing.T) {
	r, err := NewGoldmarkRenderer("")
	require.NoError(t, err)

	_, err = r.Render(context.Background(), filepath.Join(t.TempDir(), "none.md"), "")
	assert.Error(t, err)
}

func TestReadTitle(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    Meta
		wantErr bool
	}{
		{
			name:    "pandoc title block",
			content: "% Ancient Greek\n% A. Reader; B. Writer\n% 2024\n",
			want:    Meta{Title: "Ancient Greek", Authors: Authors{"A. Reader", "B. Writer"}, Date: "2024"},
		},
		{
			name:    "yaml with fences",
			content: "---\ntitle: Koine\nauthor: A. Reader\n...\n",
			want:    Meta{Title: "Koine", Authors: Authors{"A. Reader"}},
		},
		{
			name:    "bare yaml",
			content: "title: Byzantine\nsubtitle: Chant\n",
			want:    Meta{Title: "Byzantine", Subtitle: "Chant"},
		},
		{
			name:    "invalid author",
			content: "author: {name: x}\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".txt")
			testutil.CreateTestFile(t, path, []byte(tt.content))

			got, err := ReadTitle(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := ReadTitle(filepath.Join(dir, "absent.txt"))
	require.NoError(t, err)
	assert.Equal(t, Meta{}, got)
}
