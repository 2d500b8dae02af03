// Package engine wraps the external transcription engines that turn a Greek
// word into a phonetic transcription for a pronunciation scheme. The default
// engine runs a Lua script as a subprocess; OpenAI and Gemini chat models can
// stand in for it. Every engine reports failures as ErrTimeout or ErrFailed.
package engine
