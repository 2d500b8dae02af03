package engine

import (
	"fmt"

	"codeberg.org/snonux/greekpron/internal/scheme"
)

const systemPrompt = "You are an expert in historical Greek phonology. " +
	"You transcribe Greek words into the International Phonetic Alphabet (IPA) " +
	"for a given historical period. Answer with the transcription only."

// userPrompt asks for one word. The model is told to put the result after the
// delimiter so ExtractTranscription handles every engine the same way.
func userPrompt(word string, s scheme.Scheme) string {
	return fmt.Sprintf(`Transcribe the Greek word '%s' into IPA using the %s pronunciation (%s).
Mark the accent the way that period realised it.
Reply with a line containing only %s followed by a line with the bare transcription, without slashes or brackets.`,
		word, s.Description(), s.Key(), Delimiter)
}
