package main

import (
	"fmt"
	"os"

	"github.com/ruminaider/salon-sync/internal/commands"
	"github.com/ruminaider/salon-sync/internal/repository"
	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the backend's database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, client, err := clientSetup()
		if err != nil {
			return err
		}
		res, err := commands.Tables(cmd.Context(), client,
			repository.TableCustomerProfiles,
			repository.TableNewsletterSubscribers,
		)
		if err != nil {
			return err
		}

		fmt.Println(headerStyle.Render("Tables in database:"))
		if len(res.Tables) == 0 {
			fmt.Println("  (none)")
		}
		for _, t := range res.Tables {
			fmt.Printf("  - %s\n", t)
		}
		for _, t := range res.Missing {
			fmt.Fprintf(os.Stderr, "⚠️  expected table %s is missing\n", t)
		}
		return nil
	},
}
