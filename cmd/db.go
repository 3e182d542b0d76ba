package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lupinelegend/f1-radio-archive/internal/config"
	"github.com/lupinelegend/f1-radio-archive/internal/migrations"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database schema operations",
}

var dbMigrateCmd = &cobra.Command{
	Use:       "migrate [up|down|version]",
	Short:     "Apply or roll back the catalog schema",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"up", "down", "version"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		dbCfg, err := cfg.ParseDatabaseConfig()
		if err != nil {
			return err
		}
		url := dbCfg.URL()

		switch args[0] {
		case "up":
			if err := migrations.Up(url); err != nil {
				return err
			}
			cmd.Println("Migrations applied")
		case "down":
			if err := migrations.Down(url); err != nil {
				return err
			}
			cmd.Println("Migrations rolled back")
		case "version":
			version, dirty, err := migrations.Version(url)
			if err != nil {
				return err
			}
			cmd.Printf("Schema version: %d (dirty: %t)\n", version, dirty)
		default:
			return fmt.Errorf("unknown migrate direction %q (expected up, down or version)", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbMigrateCmd)
}
