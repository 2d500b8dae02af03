// Package pronounce resolves Greek words to transcriptions. A Resolver
// consults the transcription cache first and falls back to an engine call
// under a per-word timeout, turning engine failures into sentinel strings so
// document processing never stops on a single word.
package pronounce
