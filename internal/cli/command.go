package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/snonux/greekpron/internal"
	"codeberg.org/snonux/greekpron/internal/scheme"
)

// RunFunc is the body of a subcommand
type RunFunc func(cmd *cobra.Command, args []string) error

// Handlers carries the run functions of the subcommands
type Handlers struct {
	HTML         RunFunc
	TeX          RunFunc
	Words        RunFunc
	CacheStats   RunFunc
	CacheArchive RunFunc
	Models       RunFunc
}

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags, handlers Handlers) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "greekpron",
		Short: "Greek pronunciation annotator",
		Long: `greekpron annotates Greek words in Markdown-derived HTML and TeX sources
with phonetic transcriptions for one of five historical pronunciations.

Transcriptions come from an external engine and are kept in a persistent
cache keyed by word and scheme.

Examples:
  greekpron html                         # Build docs/*.html from src/*.md with ruby
  greekpron html --interlinear           # Same, with interlinear glosses
  pandoc a.md | greekpron html --stdin   # Annotate one page from a pipe
  greekpron tex -i src -o processed_src  # Wrap words in \greekpron macros
  greekpron --scheme koi1 words λόγος    # Print one transcription`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newHTMLCommand(flags, handlers.HTML),
		newTeXCommand(flags, handlers.TeX),
		newWordsCommand(flags, handlers.Words),
		newCacheCommand(handlers),
		newModelsCommand(handlers.Models),
	)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	pf := cmd.PersistentFlags()

	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.greekpron.yaml)")
	pf.StringVarP(&flags.Scheme, "scheme", "s", flags.Scheme,
		"Pronunciation scheme: "+strings.Join(scheme.Selectors(), ", "))
	pf.IntVarP(&flags.Jobs, "jobs", "j", flags.Jobs, "Concurrent engine calls while prefetching a document")
	pf.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	pf.StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: text or json")

	// Engine flags
	pf.StringVar(&flags.Engine, "engine", flags.Engine, "Transcription engine: lua, openai, gemini")
	pf.StringVar(&flags.LuaBinary, "lua", flags.LuaBinary, "Lua interpreter")
	pf.StringVar(&flags.LuaScript, "lua-script", flags.LuaScript, "Lua pronunciation module")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Time budget per word")
	pf.UintVar(&flags.BreakerThreshold, "breaker-threshold", flags.BreakerThreshold,
		"Consecutive engine failures before calls are suspended (0 disables)")
	pf.StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI model for the openai engine")
	pf.StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini model for the gemini engine")

	// Cache flags
	pf.StringVar(&flags.CacheFile, "cache-file", flags.CacheFile, "Pronunciation cache file")
	pf.StringVar(&flags.CacheBackend, "cache-backend", flags.CacheBackend,
		"Cache backend: json or sqlite (default: by file extension)")

	bindFlagsToViper(pf, map[string]string{
		"scheme":                   "scheme",
		"jobs":                     "jobs",
		"log.level":                "log-level",
		"log.format":               "log-format",
		"engine.name":              "engine",
		"engine.lua_binary":        "lua",
		"engine.script":            "lua-script",
		"engine.timeout":           "timeout",
		"engine.breaker_threshold": "breaker-threshold",
		"engine.openai_model":      "openai-model",
		"engine.gemini_model":      "gemini-model",
		"cache.path":               "cache-file",
		"cache.backend":            "cache-backend",
	})
}

func newHTMLCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "html",
		Short: "Render Markdown sources to annotated HTML",
		Long: `Render every Markdown file in the source directory to HTML and annotate
its Greek words. With --stdin, or when standard input is a pipe, a single
HTML page is read from standard input and written to standard output.`,
		Args: cobra.NoArgs,
		RunE: run,
	}

	f := cmd.Flags()
	f.BoolVar(&flags.Interlinear, "interlinear", false, "Interlinear glosses instead of ruby annotations")
	f.StringVar(&flags.SrcDir, "src", flags.SrcDir, "Markdown source directory")
	f.StringVar(&flags.DocsDir, "docs", flags.DocsDir, "HTML output directory")
	f.StringVar(&flags.Renderer, "renderer", flags.Renderer, "Markdown renderer: pandoc or goldmark")
	f.StringVar(&flags.Template, "template", flags.Template, "Page template for the renderer")
	f.StringVar(&flags.TitleFile, "title", flags.TitleFile, "Title file, relative to the source directory")
	f.BoolVar(&flags.Stdin, "stdin", false, "Annotate one HTML page from standard input")

	bindFlagsToViper(f, map[string]string{
		"html.interlinear": "interlinear",
		"html.src_dir":     "src",
		"html.docs_dir":    "docs",
		"html.renderer":    "renderer",
		"html.template":    "template",
		"html.title_file":  "title",
	})
	return cmd
}

func newTeXCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tex",
		Short: "Wrap Greek words of Markdown sources in \\greekpron macros",
		Args:  cobra.NoArgs,
		RunE:  run,
	}

	f := cmd.Flags()
	f.StringVarP(&flags.TeXInputDir, "input", "i", flags.TeXInputDir, "Markdown source directory")
	f.StringVarP(&flags.TeXOutputDir, "output", "o", flags.TeXOutputDir, "Output directory")

	bindFlagsToViper(f, map[string]string{
		"tex.input_dir":  "input",
		"tex.output_dir": "output",
	})
	return cmd
}

func newWordsCommand(flags *Flags, run RunFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words [word...]",
		Short: "Print transcriptions for words",
		Args:  cobra.ArbitraryArgs,
		RunE:  run,
	}
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Read words from file (one per line)")
	return cmd
}

func newCacheCommand(handlers Handlers) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or archive the pronunciation cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "stats",
			Short: "Show cache statistics",
			Args:  cobra.NoArgs,
			RunE:  handlers.CacheStats,
		},
		&cobra.Command{
			Use:   "archive",
			Short: "Move the cache file aside so the next run starts empty",
			Args:  cobra.NoArgs,
			RunE:  handlers.CacheArchive,
		},
	)
	return cmd
}

func newModelsCommand(run RunFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List OpenAI models usable by the openai engine",
		Args:  cobra.NoArgs,
		RunE:  run,
	}
}

func bindFlagsToViper(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding flag %s: %v\n", name, err)
		}
	}
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".greekpron" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".greekpron")
	}

	// Environment variables
	viper.SetEnvPrefix("GREEKPRON")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// ApplyConfig copies the merged flag, environment and config file values
// back into flags. Explicitly set flags win.
func ApplyConfig(flags *Flags) {
	flags.Scheme = viper.GetString("scheme")
	flags.Jobs = viper.GetInt("jobs")
	flags.LogLevel = viper.GetString("log.level")
	flags.LogFormat = viper.GetString("log.format")

	flags.Engine = viper.GetString("engine.name")
	flags.LuaBinary = viper.GetString("engine.lua_binary")
	flags.LuaScript = viper.GetString("engine.script")
	flags.Timeout = viper.GetDuration("engine.timeout")
	flags.BreakerThreshold = viper.GetUint("engine.breaker_threshold")
	flags.OpenAIModel = viper.GetString("engine.openai_model")
	flags.GeminiModel = viper.GetString("engine.gemini_model")

	flags.CacheFile = viper.GetString("cache.path")
	flags.CacheBackend = viper.GetString("cache.backend")

	flags.Interlinear = viper.GetBool("html.interlinear")
	flags.SrcDir = viper.GetString("html.src_dir")
	flags.DocsDir = viper.GetString("html.docs_dir")
	flags.Renderer = viper.GetString("html.renderer")
	flags.Template = viper.GetString("html.template")
	flags.TitleFile = viper.GetString("html.title_file")

	flags.TeXInputDir = viper.GetString("tex.input_dir")
	flags.TeXOutputDir = viper.GetString("tex.output_dir")
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("engine.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	for _, env := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}
	return viper.GetString("engine.gemini_key")
}
