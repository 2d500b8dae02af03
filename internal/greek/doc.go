// Package greek locates Greek-script words in text. It provides the loose
// word pattern used for HTML text nodes, the stricter boundary-checked
// variant used for TeX sources, Unicode normalization and the punctuation
// cleaning applied before a word is transcribed.
package greek
