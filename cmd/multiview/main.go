package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/multiview/internal/adapter"
	"github.com/mmcdole/multiview/internal/adapter/source/youtube"
	"github.com/mmcdole/multiview/internal/app"
	"github.com/mmcdole/multiview/internal/tui"
	"github.com/mmcdole/multiview/internal/tui/styles"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

func main() {
	var showVersion bool
	var configFile string
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&configFile, "config", "", "config file (default: user config dir)")
	flag.Parse()

	if showVersion {
		fmt.Printf("multiview %s\n", Version)
		return
	}

	if err := run(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("multiview needs a terminal; use multiviewd for the web grid")
	}

	cfg, err := adapter.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// The TUI owns the terminal, so logs always go to a file
	if cfg.Logging.File == "" {
		cfg.Logging.File = adapter.DefaultConfig().Logging.File
	}
	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting multiview", "version", Version)

	if !cfg.HasAPIKey() {
		if err := runSetupFlow(cfg, configFile, logger); err != nil {
			return err
		}
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer a.Close()

	launcher := adapter.NewLauncher(cfg.Player.Command, cfg.Player.Args, logger)
	model := tui.NewModel(a.Streams, launcher, a.Credentials, cfg.UI.GridSize, logger)

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow asks for an API key until one validates or the user skips
func runSetupFlow(cfg *adapter.Config, configFile string, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to multiview!")
	fmt.Println()
	fmt.Println("Playlist refresh and live search need a YouTube Data API v3 key.")
	fmt.Println("Press enter without a key to continue without them.")
	fmt.Println()

	for {
		fmt.Print("YouTube API key: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		apiKey := strings.TrimSpace(string(raw))
		if apiKey == "" {
			fmt.Println("Skipping setup. Press K inside multiview to set a key later.")
			fmt.Println()
			return nil
		}

		valid, msg := validateKeyWithSpinner(cfg, apiKey, logger)
		if !valid {
			fmt.Printf("✗ %s\n", msg)
			fmt.Println("Please check the key and try again.")
			fmt.Println()
			continue
		}
		fmt.Printf("✓ %s\n", msg)

		cfg.YouTube.APIKey = apiKey
		break
	}

	if err := adapter.SaveConfig(cfg, configFile); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	return nil
}

// validateKeyWithSpinner checks apiKey against the Data API with a visual spinner
func validateKeyWithSpinner(cfg *adapter.Config, apiKey string, logger *slog.Logger) (bool, string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client := youtube.NewClient(youtube.Options{
		BaseURL: cfg.YouTube.BaseURL,
		Timeout: cfg.YouTube.Timeout,
	}, adapter.NewCredentials(apiKey), logger)

	type result struct {
		valid bool
		msg   string
	}
	resultCh := make(chan result, 1)

	go func() {
		valid, msg := client.ValidateKey(ctx)
		resultCh <- result{valid, msg}
	}()

	frame := 0
	fmt.Printf("\r%s Validating key...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case res := <-resultCh:
			fmt.Print(clearSpinnerLine)
			return res.valid, res.msg

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Validating key...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return false, "validation timed out"
		}
	}
}
