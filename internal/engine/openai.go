package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/greekpron/internal/scheme"
)

// OpenAIEngine asks an OpenAI chat model for transcriptions
type OpenAIEngine struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewOpenAIEngine creates a new OpenAI transcription engine
func NewOpenAIEngine(config *Config) (*OpenAIEngine, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not configured")
	}

	clientConfig := openai.DefaultConfig(config.OpenAIKey)
	if config.OpenAIBaseURL != "" {
		clientConfig.BaseURL = config.OpenAIBaseURL
	}

	model := config.OpenAIModel
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIEngine{
		apiKey: config.OpenAIKey,
		model:  model,
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

// Transcribe requests a transcription for word
func (e *OpenAIEngine) Transcribe(ctx context.Context, word string, s scheme.Scheme) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt(word, s),
			},
		},
		Temperature: 0.1,
		MaxTokens:   100,
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(ctx, e.Name(), word, "", err)
	}

	if len(resp.Choices) == 0 {
		return "", classify(ctx, e.Name(), word, "", errors.New("no response from OpenAI"))
	}

	transcription := ExtractTranscription(resp.Choices[0].Message.Content)
	if transcription == "" {
		return "", classify(ctx, e.Name(), word, "", errors.New("empty transcription"))
	}
	return transcription, nil
}

// Name returns the engine name
func (e *OpenAIEngine) Name() string {
	return "openai"
}

// IsAvailable checks if the engine is configured
func (e *OpenAIEngine) IsAvailable() error {
	if e.apiKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}
	return nil
}
