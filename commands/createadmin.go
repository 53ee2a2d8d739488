package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"portfolio/admin"
)

var (
	adminUsername string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "createadmin",
	Short: "Create an admin console user",
	Long: `Create an admin console user. If the user already exists its password
is reset.

Example:
  portfolio createadmin --username admin --password 's3cret-pass'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}

		user, err := admin.CreateAdminUser(db, adminUsername, adminPassword)
		if err != nil {
			return err
		}
		log.Info("admin user saved", zap.String("username", user.Username))
		fmt.Fprintf(cmd.OutOrStdout(), "Admin user %q saved.\n", user.Username)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().StringVarP(&adminUsername, "username", "u", "", "Admin username")
	createAdminCmd.Flags().StringVarP(&adminPassword, "password", "p", "", "Admin password (at least 8 characters)")
	createAdminCmd.MarkFlagRequired("username")
	createAdminCmd.MarkFlagRequired("password")
}
