package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"codeberg.org/snonux/greekpron/internal/scheme"
)

// Delimiter separates engine chatter from the transcription; the text after
// its last occurrence is the result.
const Delimiter = "========="

var (
	// ErrTimeout means the engine did not answer within its time budget
	ErrTimeout = errors.New("transcription engine timed out")
	// ErrFailed means the engine reported an error
	ErrFailed = errors.New("transcription engine failed")
	// ErrUnknownEngine is returned by New for unsupported engine names
	ErrUnknownEngine = errors.New("unknown transcription engine")
)

// Transcriber defines the interface for transcription engines
type Transcriber interface {
	// Transcribe returns the transcription of word under scheme s
	Transcribe(ctx context.Context, word string, s scheme.Scheme) (string, error)

	// Name returns the engine name
	Name() string

	// IsAvailable checks if the engine is properly configured and available
	IsAvailable() error
}

// Error describes a failed transcription. It matches ErrTimeout or ErrFailed
// with errors.Is.
type Error struct {
	Engine string
	Word   string
	Detail string // engine diagnostics such as stderr
	Kind   error  // ErrTimeout or ErrFailed
	Cause  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v for %q", e.Engine, e.Kind, e.Word)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// ExtractTranscription returns the trimmed text after the last Delimiter.
// Output without a delimiter is returned trimmed as a whole.
func ExtractTranscription(output string) string {
	if i := strings.LastIndex(output, Delimiter); i >= 0 {
		output = output[i+len(Delimiter):]
	}
	return strings.TrimSpace(output)
}

// Config holds configuration for all engines
type Config struct {
	Name string // "lua", "openai" or "gemini"

	// Lua engine settings
	LuaBinary string
	LuaScript string

	// OpenAI engine settings
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	// Gemini engine settings
	GeminiKey     string
	GeminiModel   string
	GeminiBaseURL string

	// Circuit breaker: trip after this many consecutive failures, 0 disables
	BreakerThreshold uint32
	BreakerCooldown  time.Duration
}

// DefaultConfig returns the default engine configuration
func DefaultConfig() *Config {
	return &Config{
		Name:             "lua",
		LuaBinary:        "lua",
		LuaScript:        "scripts/lua/grc-pron_wasm_local.lua",
		OpenAIModel:      "gpt-4o-mini",
		GeminiModel:      "gemini-2.0-flash",
		BreakerThreshold: 10,
		BreakerCooldown:  30 * time.Second,
	}
}

// New creates the engine named in config, wrapped in a circuit breaker
func New(ctx context.Context, config *Config) (Transcriber, error) {
	if config == nil {
		config = DefaultConfig()
	}

	var (
		t   Transcriber
		err error
	)
	switch strings.ToLower(config.Name) {
	case "", "lua":
		t = NewLuaEngine(config)
	case "openai":
		t, err = NewOpenAIEngine(config)
	case "gemini":
		t, err = NewGeminiEngine(ctx, config)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, config.Name)
	}
	if err != nil {
		return nil, err
	}

	return NewBreaker(t, config.BreakerThreshold, config.BreakerCooldown), nil
}

// classify turns a raw engine error into an *Error, treating an expired
// context as a timeout.
func classify(ctx context.Context, engine, word, detail string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Engine: engine, Word: word, Kind: ErrTimeout}
	}
	return &Error{Engine: engine, Word: word, Detail: detail, Kind: ErrFailed, Cause: err}
}
