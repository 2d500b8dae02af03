package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"codeberg.org/snonux/greekpron/internal"
	"codeberg.org/snonux/greekpron/internal/annotate"
	"codeberg.org/snonux/greekpron/internal/cache"
	"codeberg.org/snonux/greekpron/internal/cli"
	"codeberg.org/snonux/greekpron/internal/engine"
	"codeberg.org/snonux/greekpron/internal/greek"
	"codeberg.org/snonux/greekpron/internal/logging"
	"codeberg.org/snonux/greekpron/internal/pronounce"
	"codeberg.org/snonux/greekpron/internal/render"
	"codeberg.org/snonux/greekpron/internal/scheme"
)

// breakerCooldown is how long a tripped engine stays suspended
const breakerCooldown = 30 * time.Second

// Summary counts the documents of one build
type Summary struct {
	Documents int
	Built     int
	Failed    int
}

// Err reports failed documents as an error
func (s Summary) Err() error {
	if s.Failed > 0 {
		return fmt.Errorf("%d of %d documents failed", s.Failed, s.Documents)
	}
	return nil
}

// Processor handles the main build logic
type Processor struct {
	flags    *cli.Flags
	cache    *cache.Cache
	resolver *pronounce.Resolver
	renderer render.Renderer
	progress io.Writer
}

// NewProcessor creates a processor from flags: it opens the cache and sets
// up the transcription engine
func NewProcessor(ctx context.Context, flags *cli.Flags) (*Processor, error) {
	s, err := scheme.Parse(flags.Scheme)
	if err != nil {
		return nil, err
	}

	store, err := cache.NewStore(flags.CacheBackend, flags.CacheFile)
	if err != nil {
		return nil, err
	}
	c := cache.Open(store)

	eng, err := engine.New(ctx, &engine.Config{
		Name:             flags.Engine,
		LuaBinary:        flags.LuaBinary,
		LuaScript:        flags.LuaScript,
		OpenAIKey:        cli.GetOpenAIKey(),
		OpenAIModel:      flags.OpenAIModel,
		GeminiKey:        cli.GetGeminiKey(),
		GeminiModel:      flags.GeminiModel,
		BreakerThreshold: uint32(flags.BreakerThreshold),
		BreakerCooldown:  breakerCooldown,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create transcription engine: %w", err)
	}
	if err := eng.IsAvailable(); err != nil {
		logging.Warn("transcription engine unavailable, uncached words will be marked as errors",
			"engine", eng.Name(),
			"error", err)
	}

	logging.Debug("processor ready",
		"scheme", s.String(),
		"engine", eng.Name(),
		"cache", c.Path(),
		"entries", c.Len())

	return New(flags, c, pronounce.NewResolver(c, eng, s, flags.Timeout)), nil
}

// New creates a processor around an existing cache and resolver
func New(flags *cli.Flags, c *cache.Cache, resolver *pronounce.Resolver) *Processor {
	return &Processor{
		flags:    flags,
		cache:    c,
		resolver: resolver,
		progress: os.Stderr,
	}
}

// SetRenderer replaces the renderer chosen by the flags
func (p *Processor) SetRenderer(r render.Renderer) {
	p.renderer = r
}

// SetProgress redirects progress lines, which go to stderr by default
func (p *Processor) SetProgress(w io.Writer) {
	p.progress = w
}

// Close releases the cache store
func (p *Processor) Close() error {
	return p.cache.Close()
}

func (p *Processor) htmlAnnotator() *annotate.HTMLAnnotator {
	mode := annotate.Ruby
	if p.flags.Interlinear {
		mode = annotate.Interlinear
	}
	return annotate.NewHTMLAnnotator(p.resolver, annotate.Options{Mode: mode})
}

// BuildHTML renders every Markdown file of the source directory into the
// docs directory and annotates it
func (p *Processor) BuildHTML(ctx context.Context) (Summary, error) {
	if p.renderer == nil {
		r, err := render.New(p.flags.Renderer, p.flags.Template)
		if err != nil {
			return Summary{}, err
		}
		p.renderer = r
	}

	titlePath := p.titlePath(p.flags.SrcDir)
	sources, err := markdownSources(p.flags.SrcDir)
	if err != nil {
		return Summary{}, err
	}

	// Create output directory (including parent directories)
	if err := os.MkdirAll(p.flags.DocsDir, 0755); err != nil {
		return Summary{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	annotator := p.htmlAnnotator()
	var summary Summary
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		out := filepath.Join(p.flags.DocsDir, internal.ReplaceExt(src, ".html"))
		fmt.Fprintf(p.progress, "Building %s from %s\n", out, src)
		summary.Documents++

		if err := p.buildHTMLDocument(ctx, annotator, src, titlePath, out); err != nil {
			logging.Error("failed to build document", "source", src, "error", err)
			summary.Failed++
			continue
		}
		summary.Built++
	}

	p.printSummary(summary)
	return summary, summary.Err()
}

func (p *Processor) buildHTMLDocument(ctx context.Context, annotator *annotate.HTMLAnnotator, src, titlePath, out string) error {
	if err := p.prefetchFile(ctx, src); err != nil {
		return err
	}

	page, err := p.renderer.Render(ctx, src, titlePath)
	if err != nil {
		return err
	}

	annotated, err := annotator.Annotate(ctx, page)
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, []byte(annotated), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	return nil
}

// BuildTeX writes every Markdown file of the TeX input directory with its
// Greek words wrapped in \greekpron macros. The title file is copied along.
func (p *Processor) BuildTeX(ctx context.Context) (Summary, error) {
	sources, err := markdownSources(p.flags.TeXInputDir)
	if err != nil {
		return Summary{}, err
	}

	if err := os.MkdirAll(p.flags.TeXOutputDir, 0755); err != nil {
		return Summary{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	annotator := annotate.NewTeXAnnotator(p.resolver)
	var summary Summary
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		out := filepath.Join(p.flags.TeXOutputDir, filepath.Base(src))
		fmt.Fprintf(p.progress, "Processing %s -> %s\n", src, out)
		summary.Documents++

		if err := p.buildTeXDocument(ctx, annotator, src, out); err != nil {
			logging.Error("failed to process document", "source", src, "error", err)
			summary.Failed++
			continue
		}
		summary.Built++
	}

	if title := p.titlePath(p.flags.TeXInputDir); title != "" {
		if _, err := os.Stat(title); err == nil {
			dst := filepath.Join(p.flags.TeXOutputDir, filepath.Base(title))
			if err := copyFile(title, dst); err != nil {
				return summary, err
			}
			fmt.Fprintf(p.progress, "Copied %s -> %s\n", title, dst)
		}
	}

	p.printSummary(summary)
	return summary, summary.Err()
}

func (p *Processor) buildTeXDocument(ctx context.Context, annotator *annotate.TeXAnnotator, src, out string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}

	if err := p.prefetch(ctx, greek.Words(string(data))); err != nil {
		return err
	}

	if err := os.WriteFile(out, []byte(annotator.Annotate(ctx, string(data))), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	return nil
}

// AnnotateStream reads one HTML page from r and writes the annotated page to
// w. A reader that goes away early is not an error.
func (p *Processor) AnnotateStream(ctx context.Context, r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	annotated, err := p.htmlAnnotator().Annotate(ctx, string(data))
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, annotated); err != nil {
		if IsBrokenPipe(err) {
			logging.Debug("downstream closed the pipe")
			return nil
		}
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// ResolveWords writes "word<TAB>transcription" lines for words
func (p *Processor) ResolveWords(ctx context.Context, words []string, w io.Writer) error {
	if err := p.prefetch(ctx, words); err != nil {
		return err
	}

	for _, word := range words {
		t := p.resolver.Resolve(ctx, word)
		if _, err := fmt.Fprintf(w, "%s\t%s\n", word, t); err != nil {
			if IsBrokenPipe(err) {
				return nil
			}
			return err
		}
	}
	return nil
}

// CacheStats prints the size of the cache
func (p *Processor) CacheStats(w io.Writer) {
	WriteCacheStats(w, p.cache)
}

// WriteCacheStats prints the size of c
func WriteCacheStats(w io.Writer, c *cache.Cache) {
	stats := c.Stats()
	fmt.Fprintf(w, "Cache file: %s\n", c.Path())
	fmt.Fprintf(w, "Entries:    %d\n", stats.Entries)
	fmt.Fprintf(w, "Timeouts:   %d\n", c.CountValue(pronounce.Timeout))
}

// IsBrokenPipe reports whether err comes from writing to a closed pipe
func IsBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe)
}

func (p *Processor) prefetchFile(ctx context.Context, src string) error {
	if p.flags.Jobs <= 1 {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	return p.prefetch(ctx, greek.Words(string(data)))
}

// prefetch resolves words concurrently when more than one job is allowed
func (p *Processor) prefetch(ctx context.Context, words []string) error {
	if p.flags.Jobs <= 1 || len(words) == 0 {
		return nil
	}
	return p.resolver.Prefetch(ctx, words, p.flags.Jobs)
}

func (p *Processor) titlePath(dir string) string {
	switch {
	case p.flags.TitleFile == "":
		return ""
	case filepath.IsAbs(p.flags.TitleFile):
		return p.flags.TitleFile
	default:
		return filepath.Join(dir, p.flags.TitleFile)
	}
}

func (p *Processor) printSummary(s Summary) {
	fmt.Fprintf(p.progress, "\n=== Build Summary ===\n")
	fmt.Fprintf(p.progress, "Documents: %d\n", s.Documents)
	fmt.Fprintf(p.progress, "Built: %d\n", s.Built)
	if s.Failed > 0 {
		fmt.Fprintf(p.progress, "Errors: %d\n", s.Failed)
	}
	fmt.Fprintf(p.progress, "=====================\n")
}

// markdownSources lists the Markdown files of dir in name order
func markdownSources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}

	var sources []string
	for _, e := range entries {
		if e.IsDir() || !internal.IsMarkdown(e.Name()) {
			continue
		}
		sources = append(sources, filepath.Join(dir, e.Name()))
	}
	sort.Strings(sources)
	return sources, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}
