package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xavierjeanne/softdesk/internal/config"
	"github.com/xavierjeanne/softdesk/internal/models"
	"github.com/xavierjeanne/softdesk/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "softdesk",
	Short:         "SoftDesk issue-tracking API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := models.InitDB(&cfg.Database, cfg.Log.Level); err != nil {
			return err
		}
		if err := models.AutoMigrate(); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info().Str("driver", cfg.Database.Driver).Msg("database migrated")
		return nil
	},
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write the default configuration to a YAML file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "config written")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	rootCmd.AddCommand(serveCmd, migrateCmd, initConfigCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.Log.Level)
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
