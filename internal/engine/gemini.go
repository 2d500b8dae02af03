package engine

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"codeberg.org/snonux/greekpron/internal/scheme"
)

// GeminiEngine asks a Google Gemini model for transcriptions
type GeminiEngine struct {
	model  string
	client *genai.Client
}

// NewGeminiEngine creates a new Gemini transcription engine
func NewGeminiEngine(ctx context.Context, config *Config) (*GeminiEngine, error) {
	if config.GeminiKey == "" {
		return nil, fmt.Errorf("Gemini API key not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      config.GeminiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: config.GeminiBaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.GeminiModel
	if model == "" {
		model = "gemini-2.0-flash"
	}

	return &GeminiEngine{model: model, client: client}, nil
}

// Transcribe requests a transcription for word
func (e *GeminiEngine) Transcribe(ctx context.Context, word string, s scheme.Scheme) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.1),
		MaxOutputTokens:   100,
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(userPrompt(word, s)), config)
	if err != nil {
		return "", classify(ctx, e.Name(), word, "", err)
	}

	transcription := ExtractTranscription(resp.Text())
	if transcription == "" {
		return "", classify(ctx, e.Name(), word, "", errors.New("empty transcription"))
	}
	return transcription, nil
}

// Name returns the engine name
func (e *GeminiEngine) Name() string {
	return "gemini"
}

// IsAvailable reports whether the client was created
func (e *GeminiEngine) IsAvailable() error {
	if e.client == nil {
		return fmt.Errorf("Gemini client not initialised")
	}
	return nil
}
