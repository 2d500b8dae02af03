package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"codeberg.org/snonux/greekpron/internal/scheme"
)

// luaWaitDelay bounds how long a timed out run may overrun its deadline
const luaWaitDelay = 100 * time.Millisecond

// LuaEngine runs the Lua pronunciation module as a subprocess. The word is
// written to stdin and the scheme key is passed as the only argument.
type LuaEngine struct {
	binary string
	script string
}

// NewLuaEngine creates a Lua subprocess engine
func NewLuaEngine(config *Config) *LuaEngine {
	binary := config.LuaBinary
	if binary == "" {
		binary = "lua"
	}
	return &LuaEngine{binary: binary, script: config.LuaScript}
}

// Transcribe runs the script once for word
func (e *LuaEngine) Transcribe(ctx context.Context, word string, s scheme.Scheme) (string, error) {
	cmd := exec.CommandContext(ctx, e.binary, e.script, s.Key())
	cmd.Stdin = strings.NewReader(word)
	// children that outlive the killed interpreter must not hold Wait open
	cmd.WaitDelay = luaWaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", classify(ctx, e.Name(), word, strings.TrimSpace(stderr.String()), err)
	}
	return ExtractTranscription(stdout.String()), nil
}

// Name returns the engine name
func (e *LuaEngine) Name() string {
	return "lua"
}

// IsAvailable checks that the interpreter and the script exist
func (e *LuaEngine) IsAvailable() error {
	if _, err := exec.LookPath(e.binary); err != nil {
		return fmt.Errorf("%s is not installed or not in PATH: %w", e.binary, err)
	}
	if _, err := os.Stat(e.script); err != nil {
		return fmt.Errorf("pronunciation script not found: %w", err)
	}
	return nil
}
