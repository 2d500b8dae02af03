package annotate

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"codeberg.org/snonux/greekpron/internal/logging"
	"codeberg.org/snonux/greekpron/internal/testutil"
)

func TestTeXAnnotate(t *testing.T) {
	src := &testutil.MockSource{Transcriptions: map[string]string{"λόγος": "ló.ɡos"}}

	got := NewTeXAnnotator(src).Annotate(context.Background(), "# Ὁ λόγος\n\nSee ἐστί.\n")
	assert.Equal(t,
		"# \\greekpron[ipa(Ὁ)]{Ὁ} \\greekpron[ló.ɡos]{λόγος}\n\nSee \\greekpron[ipa(ἐστί)]{ἐστί}.\n",
		got)
	// resolved back to front
	assert.Equal(t, []string{"ἐστί", "λόγος", "Ὁ"}, src.Words)
}

func TestTeXAnnotateSkipsGluedWords(t *testing.T) {
	src := &testutil.MockSource{}
	text := "abcλόγος and λόγοςxyz"

	assert.Equal(t, text, NewTeXAnnotator(src).Annotate(context.Background(), text))
	assert.Empty(t, src.Words)
}

func TestTeXAnnotateLeavesPlainText(t *testing.T) {
	src := &testutil.MockSource{}
	text := "\\section{Intro}\nPlain *text* with [links](x.md).\n"

	assert.Equal(t, text, NewTeXAnnotator(src).Annotate(context.Background(), text))
	assert.Empty(t, src.Words)
}

func TestTeXAnnotateDiaeresis(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(slog.LevelInfo, logging.FormatText, &buf)
	defer logging.Init(slog.LevelInfo, logging.FormatText, os.Stderr)

	src := &testutil.MockSource{}

	got := NewTeXAnnotator(src).Annotate(context.Background(), "προΐστημι λόγος")
	assert.Equal(t, "\\greekpron[ipa(προΐστημι)]{προΐστημι} \\greekpron[ipa(λόγος)]{λόγος}", got)

	// reported once at the default level, plain words are not
	assert.Equal(t, 1, strings.Count(buf.String(), "word with diaeresis"))
	assert.Contains(t, buf.String(), "προΐστημι")
}

func TestMacro(t *testing.T) {
	assert.Equal(t, `\greekpron[ló.ɡos]{λόγος}`, Macro("λόγος", "ló.ɡos"))
	assert.Equal(t, `\greekpron[{[Timeout]}]{λόγος}`, Macro("λόγος", "[Timeout]"))
	assert.Equal(t, `\greekpron[]{λόγος}`, Macro("λόγος", ""))
}
