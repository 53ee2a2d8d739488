package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"portfolio/common"
	"portfolio/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}

	analyticsDB := common.ConnectAnalyticsDb(cfg, log)

	router, err := server.New(cfg, db, analyticsDB, log)
	if err != nil {
		return err
	}

	log.Info("starting server", zap.String("port", cfg.App.Port), zap.String("env", cfg.App.Env))
	return router.Run(":" + cfg.App.Port)
}
