package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"docchat/cmd/docchat/chat"
	"docchat/cmd/docchat/ui"
	"docchat/internal/backend"
	"docchat/internal/chatstore"
	"docchat/internal/config"
	"docchat/internal/dispatch"
	"docchat/internal/embedding"
	"docchat/internal/logging"
	"docchat/internal/watch"
)

var (
	// Global flags
	verbose    bool
	cfgPath    string
	backendURL string
	watchDir   string
	darkMode   bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "docchat - terminal client for document Q&A",
	Long: `docchat is a terminal client for a retrieval-augmented Q&A backend.

Upload documents, wait for the embedding index to build, then ask questions
about their content in an interactive chat.

Run without arguments to start the interactive interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip zap init for interactive mode (it has its own file logger)
		if cmd.Use == "docchat" && cmd.CalledAs() == "docchat" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".docchat/config.yaml", "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend base URL (overrides config)")
	rootCmd.Flags().StringVar(&watchDir, "watch", "", "Drop folder to watch for documents (overrides config)")
	rootCmd.Flags().BoolVar(&darkMode, "dark", false, "Force the dark theme")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(queryCmd)
}

// loadConfig layers command-line flags over the file and environment config.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, err
	}
	if backendURL != "" {
		cfg.BackendURL = backendURL
	}
	if watchDir != "" {
		cfg.WatchDir = watchDir
	}
	if verbose {
		cfg.Logging.DebugMode = true
	}
	if darkMode {
		cfg.DarkMode = true
	}
	return cfg, nil
}

func runInteractive() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := logging.Initialize(cwd, cfg.Logging.DebugMode); err != nil {
		return err
	}
	defer logging.Close()

	theme := ui.DetectTheme()
	if cfg.DarkMode {
		theme = ui.DarkTheme()
	}

	client := backend.NewClient(backend.Config{
		BaseURL:       cfg.BackendURL,
		QueryTimeout:  cfg.QueryTimeout.Std(),
		UploadTimeout: cfg.UploadTimeout.Std(),
	}, nil)
	store := chatstore.New()
	tracker := embedding.NewTracker(embedding.Config{
		Step:     cfg.Embedding.Step,
		Interval: cfg.Embedding.Interval.Std(),
	})

	var watcher *watch.Watcher
	if cfg.WatchDir != "" {
		watcher, err = watch.New(cfg.WatchDir, cfg.WatchDebounce.Std())
		if err != nil {
			return fmt.Errorf("watch %s: %w", cfg.WatchDir, err)
		}
	}

	logging.Get(logging.CategoryBoot).Info("backend: %s, watch: %q", cfg.BackendURL, cfg.WatchDir)

	m := chat.New(chat.Config{
		Backend:    client,
		Store:      store,
		Dispatcher: dispatch.New(client, store, nil),
		Tracker:    tracker,
		Watcher:    watcher,
		Styles:     ui.NewStyles(theme),
		PickerDir:  cwd,
	})

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
