package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"codeberg.org/snonux/greekpron/internal/cache"
	"codeberg.org/snonux/greekpron/internal/cli"
	"codeberg.org/snonux/greekpron/internal/pronounce"
	"codeberg.org/snonux/greekpron/internal/scheme"
	"codeberg.org/snonux/greekpron/internal/testutil"
)

// fakeRenderer wraps the Markdown source in a fixed page
type fakeRenderer struct {
	wrap   string // element wrapping the document text
	fail   string // base name that fails to render
	titles []string
}

func (r *fakeRenderer) Render(ctx context.Context, markdownPath, titlePath string) (string, error) {
	r.titles = append(r.titles, titlePath)
	if filepath.Base(markdownPath) == r.fail {
		return "", fmt.Errorf("render failed for %s", markdownPath)
	}
	data, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	return "<html><head><title>" + text + "</title></head><body><" + r.wrap + ">" + text +
		"</" + r.wrap + "></body></html>", nil
}

func (r *fakeRenderer) Name() string {
	return "fake"
}

func newTestProcessor(t *testing.T, root string) (*Processor, *testutil.MockEngine, *bytes.Buffer) {
	t.Helper()

	flags := cli.NewFlags()
	flags.SrcDir = filepath.Join(root, "src")
	flags.DocsDir = filepath.Join(root, "docs")
	flags.TeXInputDir = filepath.Join(root, "src")
	flags.TeXOutputDir = filepath.Join(root, "processed_src")
	flags.CacheFile = filepath.Join(root, "pron_cache.json")

	mock := &testutil.MockEngine{Transcriptions: map[string]string{"λόγος": "ló.ɡos"}}
	c := cache.New()
	p := New(flags, c, pronounce.NewResolver(c, mock, scheme.Classical, 0))

	var progress bytes.Buffer
	p.SetProgress(&progress)
	return p, mock, &progress
}

func TestBuildHTMLRuby(t *testing.T) {
	root := testutil.CreateTestDirectory(t)
	testutil.CreateTestFile(t, filepath.Join(root, "src", "intro.md"), []byte("λόγος."))
	testutil.CreateTestFile(t, filepath.Join(root, "src", "title.txt"), []byte("% Title"))

	p, _, progress := newTestProcessor(t, root)
	renderer := &fakeRenderer{wrap: "p"}
	p.SetRenderer(renderer)

	summary, err := p.BuildHTML(context.Background())
	if err != nil {
		t.Fatalf("BuildHTML failed: %v", err)
	}
	if summary.Built != 1 || summary.Failed != 0 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	out := filepath.Join(root, "docs", "intro.html")
	testutil.AssertFileContains(t, out, `<p><ruby style="ruby-position:under;-webkit-ruby-position:after">λόγος<rt>ló.ɡos</rt></ruby>.</p>`)
	// the page title is left alone
	testutil.AssertFileContains(t, out, "<title>λόγος.</title>")

	if len(renderer.titles) != 1 || renderer.titles[0] != filepath.Join(root, "src", "title.txt") {
		t.Errorf("Expected the title file to be passed to the renderer, got %v", renderer.titles)
	}
	if !strings.Contains(progress.String(), "Building "+out+" from "+filepath.Join(root, "src", "intro.md")) {
		t.Errorf("Missing progress line:\n%s", progress.String())
	}

	// a rebuild from the warm cache produces the same page
	first := testutil.ReadTestFile(t, out)
	if _, err := p.BuildHTML(context.Background()); err != nil {
		t.Fatalf("second BuildHTML failed: %v", err)
	}
	if second := testutil.ReadTestFile(t, out); second != first {
		t.Errorf("Rebuild changed the page:\n%s\nvs\n%s", first, second)
	}
}

func TestBuildHTMLInterlinear(t *testing.T) {
	root := testutil.CreateTestDirectory(t)
	testutil.CreateTestFile(t, filepath.Join(root, "src", "a.md"), []byte("λόγος"))

	p, _, _ := newTestProcessor(t, root)
	p.flags.Interlinear = true
	p.SetRenderer(&fakeRenderer{wrap: "h2"})

	if _, err := p.BuildHTML(context.Background()); err != nil {
		t.Fatalf("BuildHTML failed: %v", err)
	}

	testutil.AssertFileContains(t, filepath.Join(root, "docs", "a.html"),
		`<h2><span class="il_word">λόγος<span class="il_translation not_in_toc"></span></span></h2>`)
}

func TestBuildHTMLIsolatesFailures(t *testing.T) {
	root := testutil.CreateTestDirectory(t)
	for _, name := range []string{"a.md", "bad.md", "c.markdown", "notes.txt"} {
		testutil.CreateTestFile(t, filepath.Join(root, "src", name), []byte("λόγος"))
	}

	p, _, progress := newTestProcessor(t, root)
	p.SetRenderer(&fakeRenderer{wrap: "p", fail: "bad.md"})

	summary, err := p.BuildHTML(context.Background())
	if err == nil {
		t.Fatal("Expected an error for the failed document")
	}
	if summary != (Summary{Documents: 3, Built: 2, Failed: 1}) {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	testutil.AssertFileExists(t, filepath.Join(root, "docs", "a.html"))
	testutil.AssertFileExists(t, filepath.Join(root, "docs", "c.html"))
	testutil.AssertFileNotExists(t, filepath.Join(root, "docs", "bad.html"))
	testutil.AssertFileNotExists(t, filepath.Join(root, "docs", "notes.html"))
	if !strings.Contains(progress.String(), "Errors: 1") {
		t.Errorf("Expected the summary to report the error:\n%s", progress.String())
	}
}

func TestBuildHTMLMissingSourceDir(t *testing.T) {
	root := t.TempDir()
	p, _, _ := newTestProcessor(t, root)
	p.SetRenderer(&fakeRenderer{wrap: "p"})

	if _, err := p.BuildHTML(context.Background()); err == nil {
		t.Error("Expected error for missing source directory")
	}
}

func TestBuildHTMLPrefetch(t *testing.T) {
	root := testutil.CreateTestDirectory(t)
	testutil.CreateTestFile(t, filepath.Join(root, "src", "a.md"), []byte("ὁ λόγος καὶ ὁ λόγος"))

	p, mock, _ := newTestProcessor(t, root)
	p.flags.Jobs = 4
	p.SetRenderer(&fakeRenderer{wrap: "p"})

	if _, err := p.BuildHTML(context.Background()); err != nil {
		t.Fatalf("BuildHTML failed: %v", err)
	}
	if got := len(mock.Calls()); got != 3 {
		t.Errorf("Expected one engine call per distinct word, got %d: %v", got, mock.Calls())
	}
}

func TestBuildTeX(t *testing.T) {
	root := testutil.CreateTestDirectory(t)
	testutil.CreateTestFile(t, filepath.Join(root, "src", "a.md"), []byte("# Ὁ λόγος\n\nText abcλόγος.\n"))
	testutil.CreateTestFile(t, filepath.Join(root, "src", "title.txt"), []byte("% Title\n"))

	p, _, _ := newTestProcessor(t, root)

	summary, err := p.BuildTeX(context.Background())
	if err != nil {
		t.Fatalf("BuildTeX failed: %v", err)
	}
	if summary.Built != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	testutil.AssertFileContent(t, filepath.Join(root, "processed_src", "a.md"),
		[]byte("# \\greekpron[ipa(Ὁ)]{Ὁ} \\greekpron[ló.ɡos]{λόγος}\n\nText abcλόγος.\n"))
	testutil.AssertFileContent(t, filepath.Join(root, "processed_src", "title.txt"), []byte("% Title\n"))
}

func TestAnnotateStream(t *testing.T) {
	p, _, _ := newTestProcessor(t, t.TempDir())
	p.flags.Interlinear = true

	var out bytes.Buffer
	if err := p.AnnotateStream(context.Background(), strings.NewReader("<p>λόγος</p>\n"), &out); err != nil {
		t.Fatalf("AnnotateStream failed: %v", err)
	}

	want := `<p><span class="il_word">λόγος<span class="il_translation">ló.ɡos</span></span></p>` + "\n"
	if out.String() != want {
		t.Errorf("Expected %q, got %q", want, out.String())
	}
}

// failingWriter fails every write with err
type failingWriter struct {
	err error
}

func (w failingWriter) Write(p []byte) (int, error) {
	return 0, w.err
}

func TestAnnotateStreamBrokenPipe(t *testing.T) {
	p, _, _ := newTestProcessor(t, t.TempDir())

	err := p.AnnotateStream(context.Background(), strings.NewReader("<p>λόγος</p>"),
		failingWriter{err: &os.PathError{Op: "write", Path: "/dev/stdout", Err: syscall.EPIPE}})
	if err != nil {
		t.Errorf("Expected broken pipe to be silent, got %v", err)
	}

	err = p.AnnotateStream(context.Background(), strings.NewReader("<p>λόγος</p>"),
		failingWriter{err: errors.New("disk full")})
	if err == nil {
		t.Error("Expected other write errors to be reported")
	}
}

func TestResolveWords(t *testing.T) {
	for _, jobs := range []int{1, 3} {
		t.Run(fmt.Sprintf("jobs=%d", jobs), func(t *testing.T) {
			p, mock, _ := newTestProcessor(t, t.TempDir())
			p.flags.Jobs = jobs

			var out bytes.Buffer
			if err := p.ResolveWords(context.Background(), []string{"λόγος", "ἔργον;", "..."}, &out); err != nil {
				t.Fatalf("ResolveWords failed: %v", err)
			}

			want := "λόγος\tló.ɡos\nἔργον;\tipa(ἔργον)\n...\t\n"
			if out.String() != want {
				t.Errorf("Expected %q, got %q", want, out.String())
			}
			if len(mock.Calls()) != 2 {
				t.Errorf("Expected 2 engine calls, got %v", mock.Calls())
			}
		})
	}
}

func TestCacheStats(t *testing.T) {
	p, _, _ := newTestProcessor(t, t.TempDir())
	if err := p.cache.Store("λόγος", scheme.Classical, pronounce.Timeout); err != nil {
		t.Fatal(err)
	}
	if err := p.cache.Store("ἔργον", scheme.Classical, "ér.ɡon"); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	p.CacheStats(&out)
	if !strings.Contains(out.String(), "Entries:    2") || !strings.Contains(out.String(), "Timeouts:   1") {
		t.Errorf("Unexpected stats:\n%s", out.String())
	}
}

func TestNewProcessor(t *testing.T) {
	flags := cli.NewFlags()
	flags.CacheFile = filepath.Join(t.TempDir(), "pron_cache.json")
	flags.LuaBinary = "definitely-not-a-lua-binary"

	p, err := NewProcessor(context.Background(), flags)
	if err != nil {
		t.Fatalf("NewProcessor failed: %v", err)
	}
	defer p.Close()

	if p.flags != flags {
		t.Error("Processor flags not set correctly")
	}
	if p.resolver == nil || p.resolver.Scheme() != scheme.Classical {
		t.Error("Resolver not initialized")
	}

	// an unavailable engine yields error sentinels, not a failure
	var out bytes.Buffer
	if err := p.ResolveWords(context.Background(), []string{"λόγος"}, &out); err != nil {
		t.Fatalf("ResolveWords failed: %v", err)
	}
	if out.String() != "λόγος\t[Error]\n" {
		t.Errorf("Expected error sentinel, got %q", out.String())
	}
}

func TestNewProcessorInvalidSettings(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *cli.Flags)
	}{
		{"unknown scheme", func(f *cli.Flags) { f.Scheme = "modern" }},
		{"unknown cache backend", func(f *cli.Flags) { f.CacheBackend = "redis" }},
		{"unknown engine", func(f *cli.Flags) { f.Engine = "festival" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := cli.NewFlags()
			flags.CacheFile = filepath.Join(t.TempDir(), "pron_cache.json")
			tt.setup(flags)

			if _, err := NewProcessor(context.Background(), flags); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestIsBrokenPipe(t *testing.T) {
	if !IsBrokenPipe(fmt.Errorf("write: %w", syscall.EPIPE)) {
		t.Error("Expected wrapped EPIPE to be a broken pipe")
	}
	if !IsBrokenPipe(io.ErrClosedPipe) {
		t.Error("Expected io.ErrClosedPipe to be a broken pipe")
	}
	if IsBrokenPipe(errors.New("other")) {
		t.Error("Did not expect a generic error to be a broken pipe")
	}
}
