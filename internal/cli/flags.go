package cli

import "time"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile   string
	Scheme    string
	Jobs      int
	LogLevel  string
	LogFormat string

	// Engine flags
	Engine           string
	LuaBinary        string
	LuaScript        string
	Timeout          time.Duration
	BreakerThreshold uint
	OpenAIModel      string
	GeminiModel      string

	// Cache flags
	CacheFile    string
	CacheBackend string

	// HTML flags
	Interlinear bool
	SrcDir      string
	DocsDir     string
	Renderer    string
	Template    string
	TitleFile   string
	Stdin       bool

	// TeX flags
	TeXInputDir  string
	TeXOutputDir string

	// Words flags
	BatchFile string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Scheme:           "cla",
		Jobs:             1,
		LogLevel:         "info",
		LogFormat:        "text",
		Engine:           "lua",
		LuaBinary:        "lua",
		LuaScript:        "scripts/lua/grc-pron_wasm_local.lua",
		Timeout:          5 * time.Second,
		BreakerThreshold: 10,
		OpenAIModel:      "gpt-4o-mini",
		GeminiModel:      "gemini-2.0-flash",
		CacheFile:        "scripts/pron_cache.json",
		SrcDir:           "src",
		DocsDir:          "docs",
		Renderer:         "pandoc",
		TitleFile:        "title.txt",
		TeXInputDir:      "src",
		TeXOutputDir:     "processed_src",
	}
}
