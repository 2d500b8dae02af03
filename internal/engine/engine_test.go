package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"codeberg.org/snonux/greekpron/internal/scheme"
)

// mockEngine implements Transcriber for testing
type mockEngine struct {
	name  string
	out   string
	err   error
	calls int
}

func (m *mockEngine) Transcribe(ctx context.Context, word string, s scheme.Scheme) (string, error) {
	m.calls++
	return m.out, m.err
}

func (m *mockEngine) Name() string {
	return m.name
}

func (m *mockEngine) IsAvailable() error {
	return nil
}

func TestExtractTranscription(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"single segment", "  lóɡos \n", "lóɡos"},
		{"delimited", "warming up\n=========\nlóɡos\n", "lóɡos"},
		{"last segment wins", "a\n=========\nb\n=========\n c \n", "c"},
		{"empty after delimiter", "noise\n=========\n", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTranscription(tt.output); got != tt.want {
				t.Errorf("ExtractTranscription(%q) = %q, want %q", tt.output, got, tt.want)
			}
		})
	}
}

func TestErrorMatchesKind(t *testing.T) {
	cause := errors.New("exit status 1")
	err := error(&Error{Engine: "lua", Word: "λόγος", Detail: "boom", Kind: ErrFailed, Cause: cause})

	if !errors.Is(err, ErrFailed) {
		t.Error("Expected error to match ErrFailed")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected error to match its cause")
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("Did not expect error to match ErrTimeout")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("Expected detail in message, got %q", err.Error())
	}

	timeout := error(&Error{Engine: "lua", Word: "λόγος", Kind: ErrTimeout})
	if !errors.Is(timeout, ErrTimeout) {
		t.Error("Expected error to match ErrTimeout")
	}
}

func TestClassify(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	err := classify(ctx, "lua", "λόγος", "", errors.New("signal: killed"))
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Expected ErrTimeout for expired context, got %v", err)
	}

	err = classify(context.Background(), "lua", "λόγος", "", errors.New("exit status 2"))
	if !errors.Is(err, ErrFailed) {
		t.Errorf("Expected ErrFailed, got %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Name != "lua" {
		t.Errorf("Expected engine 'lua', got '%s'", config.Name)
	}
	if config.LuaScript != "scripts/lua/grc-pron_wasm_local.lua" {
		t.Errorf("Unexpected Lua script %q", config.LuaScript)
	}
	if config.BreakerThreshold == 0 {
		t.Error("Expected the circuit breaker to be enabled by default")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		wantErr  error
		wantName string
	}{
		{
			name:     "nil config uses lua",
			config:   nil,
			wantName: "lua",
		},
		{
			name:     "lua",
			config:   &Config{Name: "lua", LuaScript: "x.lua"},
			wantName: "lua",
		},
		{
			name:     "openai with key",
			config:   &Config{Name: "openai", OpenAIKey: "sk-test"},
			wantName: "openai",
		},
		{
			name:   "openai without key",
			config: &Config{Name: "openai"},
		},
		{
			name:   "gemini without key",
			config: &Config{Name: "gemini"},
		},
		{
			name:    "unknown engine",
			config:  &Config{Name: "festival"},
			wantErr: ErrUnknownEngine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(context.Background(), tt.config)
			if tt.wantName == "" {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got.Name() != tt.wantName {
				t.Errorf("Expected engine %q, got %q", tt.wantName, got.Name())
			}
		})
	}
}
