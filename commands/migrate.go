package commands

import (
	"github.com/spf13/cobra"

	"portfolio/analytics"
	"portfolio/common"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, _, err := bootstrap()
		if err != nil {
			return err
		}
		// The analytics store migrates itself when it connects.
		if analyticsDB := common.ConnectAnalyticsDb(cfg, log); analyticsDB != nil {
			analytics.NewAnalyticsModule(analyticsDB, log)
		}
		log.Info("migrations complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
