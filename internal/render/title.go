package render

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Meta is the document metadata read from a title file
type Meta struct {
	Title    string  `yaml:"title"`
	Subtitle string  `yaml:"subtitle"`
	Authors  Authors `yaml:"author"`
	Date     string  `yaml:"date"`
	Lang     string  `yaml:"lang"`
}

// Authors accepts a single author or a list
type Authors []string

// UnmarshalYAML implements yaml.Unmarshaler
func (a *Authors) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*a = Authors{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*a = list
		return nil
	}
	return fmt.Errorf("author must be a string or a list, line %d", node.Line)
}

// ReadTitle parses a title file. Both a pandoc title block (lines starting
// with %) and YAML metadata, with or without --- fences, are understood. A
// missing file yields empty metadata.
func ReadTitle(path string) (Meta, error) {
	var meta Meta
	if path == "" {
		return meta, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return meta, nil
	}
	if err != nil {
		return meta, fmt.Errorf("failed to read title file: %w", err)
	}

	data = bytes.TrimSpace(data)
	if bytes.HasPrefix(data, []byte("%")) {
		return parseTitleBlock(string(data)), nil
	}

	data = bytes.TrimPrefix(data, []byte("---"))
	if i := bytes.Index(data, []byte("\n---")); i >= 0 {
		data = data[:i]
	} else if i := bytes.Index(data, []byte("\n...")); i >= 0 {
		data = data[:i]
	}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("failed to parse title file %s: %w", path, err)
	}
	return meta, nil
}

// parseTitleBlock reads "% title", "% author; author" and "% date" lines
func parseTitleBlock(text string) Meta {
	var meta Meta
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !strings.HasPrefix(line, "%") {
			break
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, "%"))
		switch i {
		case 0:
			meta.Title = value
		case 1:
			for _, a := range strings.Split(value, ";") {
				if a = strings.TrimSpace(a); a != "" {
					meta.Authors = append(meta.Authors, a)
				}
			}
		case 2:
			meta.Date = value
		}
	}
	return meta
}
