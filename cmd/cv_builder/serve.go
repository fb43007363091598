package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/server"
)

var (
	serveConfigPath string
	servePort       int
	serveLang       string
	serveCooldown   time.Duration
	serveVerbose    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for editing, uploading and translating CV documents.`,
	RunE:  runServe,
}

func init() {
	registerServeFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func registerServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	cmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	cmd.Flags().StringVar(&serveLang, "lang", "en", "Default document language")
	cmd.Flags().DurationVar(&serveCooldown, "cooldown", 0, "Post-translation cooldown (default 2s)")
	cmd.Flags().BoolVar(&serveVerbose, "verbose", false, "Log every request")
}

// resolveServeConfig layers the serve configuration: config file first, then
// explicitly-set flags, then environment variables for the secrets, then the
// built-in defaults.
func resolveServeConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config

	if serveConfigPath != "" {
		loaded, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return cfg, err
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
	}

	// Flags override file values only when the user actually set them.
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("lang") {
		cfg.DefaultLanguage = serveLang
	}
	if cmd.Flags().Changed("cooldown") {
		cfg.CooldownMillis = int(serveCooldown.Milliseconds())
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = serveVerbose
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	return cfg.MergeWithDefaults(config.Config{Port: 8080, DefaultLanguage: "en"}), nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveServeConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	// Snapshot persistence is optional; the server degrades gracefully when no
	// database URL is configured or the database is unreachable.
	srv, err := server.New(server.Config{
		Port:            cfg.Port,
		APIKey:          cfg.APIKey,
		DatabaseURL:     cfg.DatabaseURL,
		DefaultLanguage: cfg.DefaultLanguage,
		Cooldown:        time.Duration(cfg.CooldownMillis) * time.Millisecond,
		Verbose:         cfg.Verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
