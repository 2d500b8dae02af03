// Package models lists the OpenAI chat models that the openai transcription
// engine can use with the configured API key.
package models
