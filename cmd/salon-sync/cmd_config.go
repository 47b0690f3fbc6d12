package main

import (
	"fmt"

	"github.com/ruminaider/salon-sync/internal/commands"
	"github.com/ruminaider/salon-sync/internal/config"
	"github.com/ruminaider/salon-sync/internal/paths"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage salon-sync configuration",
}

var (
	configInitToken string
	configInitForce bool
)

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file to ~/.salon-sync/config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := commands.InitConfig(commands.InitOptions{
			SyncDir: paths.SyncDir(),
			APIURL:  apiURLFlag,
			SalonID: salonFlag,
			Token:   configInitToken,
			Force:   configInitForce,
		})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %s\n", res.Path)
		if res.Config.Client.SalonID == "" {
			fmt.Println("  No salon id set. Pass --salon or set SALON_ID before editing profiles.")
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := config.Marshal(cfg.Redacted())
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configInitToken, "token", "", "API bearer token")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
