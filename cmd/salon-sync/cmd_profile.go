package main

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/ruminaider/salon-sync/internal/commands"
	"github.com/ruminaider/salon-sync/internal/editor"
	"github.com/ruminaider/salon-sync/internal/profile"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and edit customer health profiles",
}

var profileShowCmd = &cobra.Command{
	Use:   "show <customer-id>",
	Short: "Show a customer's health profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, client, err := clientSetup()
		if err != nil {
			return err
		}
		salonID, err := requireSalon(cfg)
		if err != nil {
			return err
		}

		res, err := commands.ShowProfile(cmd.Context(), client, args[0], salonID)
		if err != nil {
			return err
		}
		if !res.Exists {
			fmt.Println(mutedStyle.Render("No profile on record yet."))
		}
		fmt.Println(renderProfile("Health Profile: "+res.SubjectID, res.Profile))
		return nil
	},
}

var profileSetPhoto string

var profileSetCmd = &cobra.Command{
	Use:   "set <customer-id> <field=value|field+=item|field-=item>...",
	Short: "Apply scripted edits to a customer's health profile",
	Long: `Apply edits and save the profile in one step.

Scalar fields: date_of_birth (YYYY-MM-DD), skin_type, notes. An empty value unsets the field.
List fields: skin_issues, allergies, medical_conditions. Use += to add an entry and -= to remove one.`,
	Example: `  salon-sync profile set cust-42 skin_type=sensitive allergies+=latex
  salon-sync profile set cust-42 skin_issues-=acne --photo ./cheek.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, client, err := clientSetup()
		if err != nil {
			return err
		}
		salonID, err := requireSalon(cfg)
		if err != nil {
			return err
		}

		ops := make([]commands.EditOp, 0, len(args)-1)
		for _, arg := range args[1:] {
			op, err := commands.ParseEditOp(arg)
			if err != nil {
				return err
			}
			ops = append(ops, op)
		}

		opts := commands.SetProfileOptions{
			SubjectID: args[0],
			ScopeID:   salonID,
			Ops:       ops,
			Notifier:  toastNotifier{w: os.Stderr},
			Logger:    logger,
		}
		if profileSetPhoto != "" {
			f, err := os.Open(profileSetPhoto)
			if err != nil {
				return fmt.Errorf("opening photo: %w", err)
			}
			defer f.Close()
			file := photoFile(profileSetPhoto, f)
			opts.Photo = &file
		}

		res, err := commands.SetProfile(cmd.Context(), client, opts)
		if errors.Is(err, commands.ErrNoChanges) {
			fmt.Println("Nothing to change.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Println(renderChanges(res.Changes))
		return nil
	},
}

var profileEditName string

var profileEditCmd = &cobra.Command{
	Use:   "edit <customer-id>",
	Short: "Edit a customer's health profile interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, client, err := clientSetup()
		if err != nil {
			return err
		}
		salonID, err := requireSalon(cfg)
		if err != nil {
			return err
		}

		s := &editSession{}
		ctl, err := editor.New(client, editor.Options{
			SubjectID:   args[0],
			ScopeID:     salonID,
			DisplayName: profileEditName,
			OnClose:     s.close,
			Notifier:    toastNotifier{w: os.Stderr},
			Logger:      logger,
		})
		if err != nil {
			return err
		}
		s.ctl = ctl
		return s.run(cmd.Context())
	},
}

// photoFile wraps an opened image for upload, deriving the content type
// from its extension.
func photoFile(path string, f *os.File) profile.File {
	return profile.File{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Body:        f,
	}
}

func init() {
	profileSetCmd.Flags().StringVar(&profileSetPhoto, "photo", "", "image to upload as the concern photo")
	profileEditCmd.Flags().StringVar(&profileEditName, "name", "", "customer display name shown in the editor")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileEditCmd)
}
