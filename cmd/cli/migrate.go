package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/axellelanca/shortlinkctl/cmd"
	"github.com/axellelanca/shortlinkctl/internal/repository"
)

// MigrateCmd represents the 'migrate' command
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the stub server's tables",
	Long: `Opens the SQLite database named by database.name and runs the GORM
automatic migrations for the 'links' and 'clicks' tables. run-stub-server
migrates on startup too; this command only prepares the file ahead of time.`,
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		db, err := repository.OpenDatabase(cmd.Cfg.Database.Name)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get underlying SQL database: %w", err)
		}
		defer sqlDB.Close()

		cmd.Logger.Info("database migrated", zap.String("database", cmd.Cfg.Database.Name))
		fmt.Fprintln(c.OutOrStdout(), "Database migrations executed successfully.")
		return nil
	},
}

func init() {
	cmd.RootCmd.AddCommand(MigrateCmd)
}
