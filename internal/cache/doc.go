// Package cache provides the persistent word→transcription cache. Entries
// are keyed by (word, scheme key), loaded fully into memory at startup and
// written through to a JSON or SQLite store after every new entry.
package cache
