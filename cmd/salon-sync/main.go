package main

import (
	"fmt"
	"os"

	"github.com/ruminaider/salon-sync/internal/config"
	"github.com/ruminaider/salon-sync/internal/logging"
	"github.com/ruminaider/salon-sync/internal/paths"
	"github.com/ruminaider/salon-sync/internal/remote"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.1.0"

var (
	configPath   string
	apiURLFlag   string
	salonFlag    string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:          "salon-sync",
	Short:        "Edit customer health profiles on a salon backend",
	Long:         "salon-sync edits customer health profiles stored on a salon backend and can serve that backend itself.",
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("salon-sync %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.salon-sync/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "backend base URL")
	rootCmd.PersistentFlags().StringVar(&salonFlag, "salon", "", "salon id")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(newsletterCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig resolves the config file, .env, environment and flags, in
// increasing order of precedence.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = paths.ConfigFile()
	}
	cfg, err := config.Load(path, paths.EnvFile())
	if err != nil {
		return config.Config{}, err
	}
	if apiURLFlag != "" {
		cfg.Client.APIURL = apiURLFlag
	}
	if salonFlag != "" {
		cfg.Client.SalonID = salonFlag
	}
	if logLevelFlag != "" {
		cfg.Client.LogLevel = logLevelFlag
		cfg.Server.LogLevel = logLevelFlag
	}
	return cfg, nil
}

// clientSetup loads config and builds the logger and backend client used by
// the remote commands.
func clientSetup() (config.Config, *zap.Logger, *remote.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	logger, err := logging.New(cfg.Client.LogLevel)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	client := remote.New(cfg.Client.APIURL,
		remote.WithToken(cfg.Client.Token),
		remote.WithLogger(logger),
	)
	return cfg, logger, client, nil
}

func requireSalon(cfg config.Config) (string, error) {
	if cfg.Client.SalonID == "" {
		return "", fmt.Errorf("salon id is required: pass --salon, set SALON_ID, or run 'salon-sync config init --salon <id>'")
	}
	return cfg.Client.SalonID, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
