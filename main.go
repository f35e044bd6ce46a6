package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/linkqr/linkqr/internal/compose"
	"github.com/linkqr/linkqr/internal/config"
	"github.com/linkqr/linkqr/internal/favicon"
	"github.com/linkqr/linkqr/internal/generate"
	"github.com/linkqr/linkqr/internal/handlers"
	"github.com/linkqr/linkqr/internal/history"
)

var version = "v0.1.0"

func main() {
	// A .env next to the binary can supply LINKQR_* overrides.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "linkqr",
		Short: "Turn URLs into QR codes with the site's logo in the middle",
	}

	var configPath string
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file")

	// --- serve command -------------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the linkqr web UI and API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	})

	// --- generate command ----------------------------------------------------
	var (
		size     int
		logo     bool
		logoFile string
		outPath  string
		copyOut  bool
	)
	generateCmd := &cobra.Command{
		Use:   "generate [url]",
		Short: "Generate a QR code PNG for a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(configPath, args[0], size, logo, logoFile, outPath, copyOut)
		},
	}
	generateCmd.Flags().IntVar(&size, "size", 256, "Output size in pixels (128, 256, 512 or 1024)")
	generateCmd.Flags().BoolVar(&logo, "logo", false, "Overlay the site's favicon")
	generateCmd.Flags().StringVar(&logoFile, "logo-file", "", "Image file to overlay instead of the favicon")
	generateCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (defaults to qr-code-<timestamp>.png)")
	generateCmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the image data URL to the clipboard")
	root.AddCommand(generateCmd)

	// --- history command -----------------------------------------------------
	var clearHistory bool
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear the recent URL history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(configPath, clearHistory)
		},
	}
	historyCmd.Flags().BoolVar(&clearHistory, "clear", false, "Clear the history")
	root.AddCommand(historyCmd)

	// --- version command -----------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("linkqr %s\n", version)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads config, configures logging and opens the shared components.
func setup(configPath string) (*config.Config, *generate.Generator, *history.Store, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("ensure data dir: %w", err)
	}

	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)

	kv, err := history.OpenSQLiteKV(cfg.DBPath())
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("open history db: %w", err)
	}
	hist := history.NewStore(kv, log)

	resolver := favicon.New(cfg.FaviconTimeout.Duration, log)
	compositor := compose.New(cfg.LogoTimeout.Duration, log)
	gen := generate.New(resolver, compositor, hist, log)

	cleanup := func() { kv.Close() }
	return cfg, gen, hist, cleanup, nil
}

// runServe is the web service entrypoint that wires all components together.
func runServe(configPath string) error {
	cfg, gen, hist, cleanup, err := setup(configPath)
	if err != nil {
		return err
	}
	defer cleanup()
	log := slog.Default()

	gin.SetMode(gin.ReleaseMode)
	h := handlers.New(gen, gen.Favicons, hist, log, cfg.UploadDir())
	r := handlers.NewRouter(h)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info("linkqr listening", "addr", addr, "version", version)
	if err := r.Run(addr); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// runGenerate renders a single QR code from the command line.
func runGenerate(configPath, url string, size int, logo bool, logoFile, outPath string, copyOut bool) error {
	_, gen, _, cleanup, err := setup(configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := gen.Generate(ctx, generate.Request{
		URL:      url,
		Size:     size,
		Logo:     logo || logoFile != "",
		LogoFile: logoFile,
	})
	if err != nil {
		return err
	}
	if result.Notice.Level == generate.LevelWarning || result.Notice.Level == generate.LevelInfo {
		fmt.Fprintln(os.Stderr, result.Notice.Message)
	}

	if outPath == "" {
		outPath = result.Filename
	}
	if err := os.WriteFile(outPath, result.PNG, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	fmt.Printf("wrote %s\n", filepath.Clean(outPath))

	// Clipboard failures are isolated: the file is already written.
	if copyOut {
		if err := clipboard.WriteAll(result.DataURL); err != nil {
			fmt.Fprintf(os.Stderr, "could not copy to clipboard: %v\n", err)
		} else {
			fmt.Println("copied data URL to clipboard")
		}
	}
	return nil
}

// runHistory lists or clears the recent URL history.
func runHistory(configPath string, clear bool) error {
	_, _, hist, cleanup, err := setup(configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	if clear {
		if err := hist.Clear(); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Println("history cleared")
		return nil
	}

	entries := hist.List()
	if len(entries) == 0 {
		fmt.Println("no recent URLs")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%-50s %s\n", e.URL, humanize.Time(e.Time()))
	}
	return nil
}
