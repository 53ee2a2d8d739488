// Package commands is the portfolio command line: serve, migrate and
// createadmin.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"portfolio/common"
	"portfolio/config"
	"portfolio/database"
	"portfolio/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Personal portfolio site with an admin console",
	Long: `Serves the public portfolio pages and the /admin console.

Configuration is read from .env, config.yaml and the environment, in that
order. Running without a subcommand is the same as "portfolio serve".`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "Directory containing config.yaml")
}

// bootstrap loads the configuration, builds the logger and opens the content
// database with its schema migrated.
func bootstrap() (config.Config, logger.Logger, *gorm.DB, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.NewZapLogger(cfg.App.Env)

	db, err := common.ConnectDb(cfg, log)
	if err != nil {
		return cfg, log, nil, err
	}
	if err := database.RunMigrations(db, log); err != nil {
		return cfg, log, nil, fmt.Errorf("run migrations: %w", err)
	}
	return cfg, log, db, nil
}
