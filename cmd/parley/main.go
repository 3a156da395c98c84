// Command parley is a terminal chat client with persistent conversation
// history.
//
// Usage:
//
//	ANTHROPIC_API_KEY=sk-... parley [flags]
//	GEMINI_API_KEY=gk-...   parley [flags]
//
// Flags:
//
//	-provider string  Provider: anthropic, gemini (auto-detected from env vars if omitted)
//	-model string     Model ID (default: provider default)
//	-api-key string   API key (overrides provider's env var)
//	-data-dir string  History directory (default: ~/.parley)
//	-export string    Export conversation history to a JSON file and exit
//	-import string    Import conversation history from a JSON file and exit
//	-clear            Delete all conversation history and exit
//	-analyze string   Analyze a GitHub repository URL and print the result
//	-debug-log string Append debug logs to a file
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/parleychat/parley"
	bt "github.com/parleychat/parley/bubbletea"
	"github.com/parleychat/parley/fs"
	"github.com/parleychat/parley/github"
	parleyjson "github.com/parleychat/parley/json"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "parley: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse flags.
	var (
		providerFlag = flag.String("provider", "", "Provider: anthropic, gemini (auto-detected from env vars if omitted)")
		model        = flag.String("model", "", "Model ID (provider-specific)")
		apiKey       = flag.String("api-key", "", "API key (overrides provider's env var)")
		dataDir      = flag.String("data-dir", "", "History directory (default: ~/.parley)")
		exportPath   = flag.String("export", "", "Export conversation history to a JSON file and exit (a directory gets a dated filename)")
		importPath   = flag.String("import", "", "Import conversation history from a JSON file and exit")
		clearHistory = flag.Bool("clear", false, "Delete all conversation history and exit")
		analyzeURL   = flag.String("analyze", "", "Analyze a GitHub repository URL and print the result")
		debugLog     = flag.String("debug-log", "", "Append debug logs to a file")
	)
	flag.Parse()

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, closeLog, err := newLogger(*debugLog)
	if err != nil {
		return err
	}
	defer closeLog()

	// Open the history store.
	dir := *dataDir
	if dir == "" {
		dir = defaultDataDir()
	}
	store := parleyjson.New(fs.New(dir))
	logger.Debug().Str("dir", dir).Msg("history store opened")

	// Export/import/clear are one-shot operations that don't need a provider.
	if *exportPath != "" {
		return exportHistory(store, *exportPath)
	}
	if *importPath != "" {
		return importHistory(store, *importPath)
	}
	if *clearHistory {
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "History cleared")
		return nil
	}

	// Resolve provider. Env vars are read here and passed as values.
	provider, err := resolveProvider(ctx, *providerFlag, *apiKey,
		os.Getenv("ANTHROPIC_API_KEY"), os.Getenv("GEMINI_API_KEY"))
	if err != nil {
		return err
	}

	session := parley.NewSession(provider, store)

	if *analyzeURL != "" {
		return analyzeRepo(ctx, provider, *model, *analyzeURL, os.Getenv("GITHUB_TOKEN"))
	}

	// Restore the most recent conversation on boot.
	session.Resume()

	// Build the send closure for the TUI.
	modelID := *model
	sendFn := func(ctx context.Context, text string, onEvent func(parley.Event)) error {
		opts := []parley.SendOption{parley.WithEventHandler(onEvent)}
		if modelID != "" {
			opts = append(opts, parley.WithModel(modelID))
		}
		err := session.Send(ctx, text, opts...)
		if err != nil {
			logger.Debug().Err(err).Msg("send failed")
		}
		return err
	}

	// Create and run TUI.
	theme := parley.DefaultTheme()
	config := bt.Config{ModelName: modelID}
	tuiModel := bt.New(sendFn, session, theme, config)

	if err := bt.Run(ctx, tuiModel); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}

// exportHistory writes the store's full history blob to path. "-" writes
// to stdout; a directory gets a dated default filename inside it.
func exportHistory(store *parleyjson.Store, path string) error {
	blob := store.ExportAll()
	if path == "-" {
		_, err := fmt.Println(blob)
		return err
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		name := "parley-history-" + time.Now().Format("2006-01-02") + ".json"
		path = filepath.Join(path, name)
	}
	if err := os.WriteFile(path, []byte(blob), 0o600); err != nil {
		return fmt.Errorf("export history: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Exported history to %s\n", path)
	return nil
}

// importHistory replaces the store's history with the blob read from path.
func importHistory(store *parleyjson.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("import history: %w", err)
	}
	if err := store.ImportAll(string(data)); err != nil {
		return fmt.Errorf("import history: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Imported history from %s\n", path)
	return nil
}

// analyzeRepo fetches a repository summary from GitHub and asks the
// provider for a review, printed to stdout.
func analyzeRepo(ctx context.Context, provider parley.Provider, model, repoURL, token string) error {
	info, err := github.ParseRepoURL(repoURL)
	if err != nil {
		return err
	}
	gh := github.New(token)
	analysis, err := gh.Analyze(ctx, info)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", info, err)
	}
	reply, err := provider.Complete(ctx, parley.Request{
		Model: model,
		Messages: []parley.ContextMessage{
			{Role: parley.RoleUser, Content: analysis.Prompt()},
		},
	})
	if err != nil {
		return fmt.Errorf("analyze %s: %w", info, err)
	}
	fmt.Println(reply)
	return nil
}

// newLogger returns a file-backed debug logger, or a disabled one when
// path is empty.
func newLogger(path string) (zerolog.Logger, func(), error) {
	if path == "" {
		return zerolog.Nop(), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("open debug log: %w", err)
	}
	logger := zerolog.New(f).With().Timestamp().Logger()
	return logger, func() { f.Close() }, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".parley")
}
