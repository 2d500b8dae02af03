package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"codeberg.org/snonux/greekpron/internal/archive"
	"codeberg.org/snonux/greekpron/internal/batch"
	"codeberg.org/snonux/greekpron/internal/cache"
	"codeberg.org/snonux/greekpron/internal/cli"
	"codeberg.org/snonux/greekpron/internal/logging"
	"codeberg.org/snonux/greekpron/internal/models"
	"codeberg.org/snonux/greekpron/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags, cli.Handlers{
		HTML:         func(cmd *cobra.Command, args []string) error { return runHTML(cmd, flags) },
		TeX:          func(cmd *cobra.Command, args []string) error { return runTeX(cmd, flags) },
		Words:        func(cmd *cobra.Command, args []string) error { return runWords(cmd, args, flags) },
		CacheStats:   func(cmd *cobra.Command, args []string) error { return runCacheStats(cmd, flags) },
		CacheArchive: func(cmd *cobra.Command, args []string) error { return runCacheArchive(flags) },
		Models:       func(cmd *cobra.Command, args []string) error { return runModels(cmd) },
	})

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
		cli.ApplyConfig(flags)
		initLogging(flags)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func initLogging(flags *cli.Flags) {
	level, err := logging.ParseLevel(flags.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using info\n", err)
	}
	format, err := logging.ParseFormat(flags.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using text\n", err)
	}
	logging.Init(level, format, os.Stderr)
}

func runHTML(cmd *cobra.Command, flags *cli.Flags) error {
	ctx := cmd.Context()

	proc, err := processor.NewProcessor(ctx, flags)
	if err != nil {
		return err
	}
	defer proc.Close()

	// Pipe mode: one page from stdin to stdout
	if flags.Stdin || !term.IsTerminal(int(os.Stdin.Fd())) && !cmd.Flags().Changed("src") {
		// report EPIPE as a write error instead of dying on SIGPIPE
		signal.Ignore(syscall.SIGPIPE)
		return proc.AnnotateStream(ctx, os.Stdin, os.Stdout)
	}

	_, err = proc.BuildHTML(ctx)
	return err
}

func runTeX(cmd *cobra.Command, flags *cli.Flags) error {
	proc, err := processor.NewProcessor(cmd.Context(), flags)
	if err != nil {
		return err
	}
	defer proc.Close()

	_, err = proc.BuildTeX(cmd.Context())
	return err
}

func runWords(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	words := args
	if flags.BatchFile != "" {
		fromFile, err := batch.ReadWordFile(flags.BatchFile)
		if err != nil {
			return err
		}
		words = append(words, fromFile...)
	}
	if len(words) == 0 {
		return fmt.Errorf("no words given, pass them as arguments or with --batch")
	}

	proc, err := processor.NewProcessor(cmd.Context(), flags)
	if err != nil {
		return err
	}
	defer proc.Close()

	signal.Ignore(syscall.SIGPIPE)
	return proc.ResolveWords(cmd.Context(), words, cmd.OutOrStdout())
}

func runCacheStats(cmd *cobra.Command, flags *cli.Flags) error {
	store, err := cache.NewStore(flags.CacheBackend, flags.CacheFile)
	if err != nil {
		return err
	}
	c := cache.Open(store)
	defer c.Close()

	processor.WriteCacheStats(cmd.OutOrStdout(), c)
	return nil
}

func runCacheArchive(flags *cli.Flags) error {
	archivePath, err := archive.ArchiveCache(flags.CacheFile)
	if err != nil {
		return fmt.Errorf("failed to archive cache: %w", err)
	}
	fmt.Printf("Cache archived to: %s\n", archivePath)
	return nil
}

func runModels(cmd *cobra.Command) error {
	lister := models.NewLister(cli.GetOpenAIKey(), "")
	return lister.ListChatModels(cmd.Context(), cmd.OutOrStdout())
}
