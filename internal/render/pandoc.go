package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// PandocRenderer runs pandoc as a subprocess
type PandocRenderer struct {
	binary   string
	template string
}

// NewPandocRenderer creates a pandoc renderer. An empty template uses
// pandoc's built-in standalone template.
func NewPandocRenderer(binary, template string) *PandocRenderer {
	return &PandocRenderer{binary: binary, template: template}
}

// Args returns the pandoc command line for one document
func (r *PandocRenderer) Args(markdownPath, titlePath string) []string {
	args := []string{"-s", "--from=markdown", "--to=html5"}
	if r.template != "" {
		args = append(args, "--template="+r.template)
	}
	if titlePath != "" {
		if _, err := os.Stat(titlePath); err == nil {
			args = append(args, titlePath)
		}
	}
	return append(args, markdownPath)
}

// Render converts markdownPath and returns pandoc's standard output
func (r *PandocRenderer) Render(ctx context.Context, markdownPath, titlePath string) (string, error) {
	cmd := exec.CommandContext(ctx, r.binary, r.Args(markdownPath, titlePath)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("pandoc failed for %s: %w: %s", markdownPath, err, msg)
		}
		return "", fmt.Errorf("pandoc failed for %s: %w", markdownPath, err)
	}
	return stdout.String(), nil
}

// Name returns the renderer name
func (r *PandocRenderer) Name() string {
	return "pandoc"
}
