package cmd

import (
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"estate-metrics/config"
)

var migrationCmd = &cobra.Command{
	Use:   "migration [up|down]",
	Short: "Run database schema migrations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.DBName, cfg.DB.SSLMode)

		m, err := migrate.New("file://migrations", dsn)
		if err != nil {
			return fmt.Errorf("init migrations: %w", err)
		}
		defer m.Close()

		switch args[0] {
		case "up":
			err = m.Up()
		case "down":
			err = m.Steps(-1)
		default:
			return fmt.Errorf("unknown migration direction: %s", args[0])
		}
		if err != nil && err != migrate.ErrNoChange {
			return err
		}

		fmt.Println("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrationCmd)
}
