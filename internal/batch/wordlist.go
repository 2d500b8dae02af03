// Package batch reads word lists for the words command.
package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadWordFile reads words from a file, one per line. Blank lines and lines
// starting with # are skipped; later duplicates are dropped.
func ReadWordFile(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	defer f.Close()

	words, err := ParseWords(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return words, nil
}

// ParseWords reads a word list from r
func ParseWords(r io.Reader) ([]string, error) {
	var words []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\uFEFF"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		words = append(words, line)
	}
	return words, scanner.Err()
}
