package commands

import (
	"fmt"
	"log"

	"github.com/UkralStul/blog-service/internal/config"
	"github.com/spf13/cobra"
)

// migrateCmd creates or updates the schema and exits
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	Long: `Create or update the users, blog_posts and comments tables without
starting the server.

Examples:
  blog migrate                                   # uses DB_URI
  blog migrate --db postgres://localhost/blog    # explicit database`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate() error {
	cfg := loadConfig()
	if cfg.DBURI == config.MemoryDB {
		return fmt.Errorf("nothing to migrate for in-memory storage")
	}

	// opening the store runs the migrations
	_, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	closeStore()
	log.Printf("Schema is up to date")
	return nil
}
