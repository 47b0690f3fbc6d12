package main

import (
	"fmt"

	"github.com/ruminaider/salon-sync/internal/commands"
	"github.com/spf13/cobra"
)

var newsletterCmd = &cobra.Command{
	Use:   "newsletter",
	Short: "Manage newsletter subscriptions",
}

var newsletterSubscribeCmd = &cobra.Command{
	Use:   "subscribe <email>",
	Short: "Subscribe an email address to the salon newsletter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, client, err := clientSetup()
		if err != nil {
			return err
		}
		msg, err := commands.Subscribe(cmd.Context(), client, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ %s\n", msg)
		return nil
	},
}

func init() {
	newsletterCmd.AddCommand(newsletterSubscribeCmd)
}
