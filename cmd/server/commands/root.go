package commands

import (
	"fmt"
	"log"
	"os"

	"github.com/UkralStul/blog-service/internal/config"
	"github.com/UkralStul/blog-service/internal/storage"
	"github.com/UkralStul/blog-service/internal/storage/gormdb"
	"github.com/UkralStul/blog-service/internal/storage/inmemory"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	addr          string
	dbURI         string
	secureCookies bool
)

// rootCmd serves the blog when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "blog",
	Short: "Multi-user blog with comments",
	Long: `A small blog: the administrator (user 1) writes posts, registered
users comment on them.

Configuration comes from the environment (or a .env file):
  SECRET_KEY   key signing the identity cookie
  DB_URI       database location (default sqlite:///posts.db, "memory" for no database)
  PORT         listening port (default 5001)
  COOKIE_SECURE  "true" when served over HTTPS, marks cookies Secure
  GO_ENV       "development" reads templates from disk and live-reloads them`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// RunE is assigned here rather than in the literal to avoid an
	// initialization cycle (runServe -> loadConfig -> rootCmd).
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runServe()
	}
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "", "Listen address, overrides SERVER_ADDR and PORT")
	rootCmd.PersistentFlags().StringVar(&dbURI, "db", "", "Database URI, overrides DB_URI")
	rootCmd.PersistentFlags().BoolVar(&secureCookies, "secure-cookies", false, "Mark cookies HTTPS-only, overrides COOKIE_SECURE")
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() *config.Config {
	cfg := config.Load()
	if addr != "" {
		cfg.Addr = addr
	}
	if dbURI != "" {
		cfg.DBURI = dbURI
	}
	if rootCmd.PersistentFlags().Changed("secure-cookies") {
		cfg.CookieSecure = secureCookies
	}
	return cfg
}

// openStore returns the store named by cfg.DBURI and a func releasing it.
func openStore(cfg *config.Config) (storage.Storage, func(), error) {
	if cfg.DBURI == config.MemoryDB {
		log.Print("Using in-memory storage, data is lost on exit")
		return inmemory.New(), func() {}, nil
	}

	store, err := gormdb.New(cfg.DBURI, cfg.IsDev)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Printf("closing database: %v", err)
		}
	}, nil
}
