package engine

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/greekpron/internal/logging"
	"codeberg.org/snonux/greekpron/internal/scheme"
)

// Breaker stops calling an engine that keeps failing. Timeouts do not count
// as failures since they are an answer that gets cached.
type Breaker struct {
	next Transcriber
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker wraps next. A zero threshold returns next unchanged.
func NewBreaker(next Transcriber, threshold uint32, cooldown time.Duration) Transcriber {
	if threshold == 0 {
		return next
	}

	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrTimeout) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn("transcription engine circuit changed state",
				"engine", name, "from", from.String(), "to", to.String())
		},
	}

	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

// Transcribe forwards to the wrapped engine unless the circuit is open
func (b *Breaker) Transcribe(ctx context.Context, word string, s scheme.Scheme) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Transcribe(ctx, word, s)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", &Error{Engine: b.Name(), Word: word, Kind: ErrFailed, Cause: err}
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// Name returns the wrapped engine name
func (b *Breaker) Name() string {
	return b.next.Name()
}

// IsAvailable checks the wrapped engine
func (b *Breaker) IsAvailable() error {
	return b.next.IsAvailable()
}

// State reports the circuit state
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
