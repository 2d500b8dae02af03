package internal

import (
	"path/filepath"
	"strings"
)

// Version is the greekpron release version
const Version = "0.4.0"

// ReplaceExt swaps the extension of a file name, keeping only the base name
// Example: ReplaceExt("src/chapter1.md", ".html") returns "chapter1.html"
func ReplaceExt(path, ext string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

// IsMarkdown reports whether a file name carries a Markdown extension
func IsMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
