package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codeberg.org/snonux/greekpron/internal/engine"
	"codeberg.org/snonux/greekpron/internal/scheme"
)

// MockEngine mocks a transcription engine. It is safe for concurrent use.
type MockEngine struct {
	Transcriptions map[string]string
	Errors         map[string]error
	Delay          time.Duration // simulated engine latency

	mu    sync.Mutex
	calls []string
}

// Transcribe records the call and answers from the configured maps. Words
// without an entry get "ipa(<word>)".
func (m *MockEngine) Transcribe(ctx context.Context, word string, s scheme.Scheme) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, fmt.Sprintf("%s|%s", word, s.Key()))
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return "", &engine.Error{Engine: m.Name(), Word: word, Kind: engine.ErrTimeout}
		}
	}

	if err, ok := m.Errors[word]; ok {
		return "", err
	}
	if t, ok := m.Transcriptions[word]; ok {
		return t, nil
	}
	return "ipa(" + word + ")", nil
}

// Name returns the engine name
func (m *MockEngine) Name() string {
	return "mock"
}

// IsAvailable always succeeds
func (m *MockEngine) IsAvailable() error {
	return nil
}

// Calls returns the recorded calls as "word|scheme key"
func (m *MockEngine) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how often word was sent to the engine
func (m *MockEngine) CallCount(word string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.calls {
		if len(c) > len(word) && c[:len(word)] == word && c[len(word)] == '|' {
			n++
		}
	}
	return n
}

// MockSource mocks a word resolver for the annotators
type MockSource struct {
	Transcriptions map[string]string

	mu    sync.Mutex
	Words []string
}

// Resolve returns the mapped transcription or "ipa(<word>)"
func (m *MockSource) Resolve(ctx context.Context, word string) string {
	m.mu.Lock()
	m.Words = append(m.Words, word)
	m.mu.Unlock()

	if t, ok := m.Transcriptions[word]; ok {
		return t
	}
	return "ipa(" + word + ")"
}

// FailedError builds an engine failure for word
func FailedError(word string) error {
	return &engine.Error{Engine: "mock", Word: word, Kind: engine.ErrFailed, Detail: "mock failure"}
}
