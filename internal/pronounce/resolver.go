package pronounce

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"codeberg.org/snonux/greekpron/internal/cache"
	"codeberg.org/snonux/greekpron/internal/engine"
	"codeberg.org/snonux/greekpron/internal/greek"
	"codeberg.org/snonux/greekpron/internal/logging"
	"codeberg.org/snonux/greekpron/internal/scheme"
)

const (
	// Timeout is returned and cached when the engine exceeds its time budget
	Timeout = "[Timeout]"
	// Error is returned, but never cached, when the engine fails
	Error = "[Error]"

	// DefaultTimeout is the per-word engine time budget
	DefaultTimeout = 5 * time.Second
)

// Resolver maps words to transcriptions for one scheme
type Resolver struct {
	cache   *cache.Cache
	engine  engine.Transcriber
	scheme  scheme.Scheme
	timeout time.Duration
	group   singleflight.Group
}

// NewResolver creates a resolver. A non-positive timeout selects
// DefaultTimeout.
func NewResolver(c *cache.Cache, e engine.Transcriber, s scheme.Scheme, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		cache:   c,
		engine:  e,
		scheme:  s,
		timeout: timeout,
	}
}

// Scheme returns the scheme this resolver transcribes for
func (r *Resolver) Scheme() scheme.Scheme {
	return r.scheme
}

// Resolve returns the transcription for word, which may carry trailing
// punctuation. It returns "" for words without letters and one of the
// Timeout or Error sentinels when the engine does not deliver.
func (r *Resolver) Resolve(ctx context.Context, word string) string {
	cleaned := greek.Normalize(greek.CleanWord(word))
	if !greek.HasLetter(cleaned) {
		return ""
	}

	if t, ok := r.cache.Lookup(cleaned, r.scheme); ok {
		return t
	}

	// concurrent misses for the same word share one engine call
	v, _, _ := r.group.Do(cleaned, func() (interface{}, error) {
		if t, ok := r.cache.Peek(cleaned, r.scheme); ok {
			return t, nil
		}
		return r.transcribe(ctx, cleaned), nil
	})
	return v.(string)
}

func (r *Resolver) transcribe(ctx context.Context, word string) string {
	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	t, err := r.engine.Transcribe(tctx, word, r.scheme)
	switch {
	case err == nil:
		r.store(word, t)
		return t
	case ctx.Err() != nil:
		// the caller gave up, not the engine
		return Error
	case errors.Is(err, engine.ErrTimeout) || errors.Is(err, context.DeadlineExceeded):
		logging.Warn("transcription timed out",
			"word", word, "scheme", r.scheme.String(), "engine", r.engine.Name(), "timeout", r.timeout)
		r.store(word, Timeout)
		return Timeout
	default:
		logging.Warn("transcription failed",
			"word", word, "scheme", r.scheme.String(), "engine", r.engine.Name(), "error", err)
		return Error
	}
}

func (r *Resolver) store(word, t string) {
	if err := r.cache.Store(word, r.scheme, t); err != nil {
		logging.Error("failed to persist pronunciation cache", "word", word, "error", err)
	}
}

// Prefetch resolves words ahead of annotation using up to workers
// concurrent engine calls. Results land in the cache.
func (r *Resolver) Prefetch(ctx context.Context, words []string, workers int) error {
	if workers <= 1 {
		for _, w := range words {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.Resolve(ctx, w)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, w := range words {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.Resolve(gctx, w)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
