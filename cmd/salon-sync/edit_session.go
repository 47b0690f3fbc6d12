package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/ruminaider/salon-sync/internal/editor"
	"github.com/ruminaider/salon-sync/internal/profile"
)

const (
	actionDateOfBirth = "dob"
	actionSkinType    = "skin"
	actionNotes       = "notes"
	actionAdd         = "add:"
	actionRemove      = "remove:"
	actionPhoto       = "photo"
	actionSave        = "save"
	actionCancel      = "cancel"
)

// editSession runs the interactive editor until a save succeeds or the
// user cancels.
type editSession struct {
	ctl    *editor.Controller
	closed atomic.Bool
}

// close is the controller's OnClose callback.
func (s *editSession) close() { s.closed.Store(true) }

func (s *editSession) run(ctx context.Context) error {
	// A failed load is logged by the controller and leaves the blank profile.
	if err := spinner.New().
		Title("Loading profile...").
		Action(func() { _ = s.ctl.Load(ctx) }).
		Run(); err != nil {
		return err
	}

	for !s.closed.Load() {
		fmt.Println()
		fmt.Println(renderProfile(s.title(), s.ctl.Model().Profile()))
		fmt.Println()

		action, err := s.chooseAction()
		if errors.Is(err, huh.ErrUserAborted) {
			action = actionCancel
		} else if err != nil {
			return err
		}

		done, err := s.perform(ctx, action)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	return nil
}

func (s *editSession) title() string {
	name := s.ctl.DisplayName()
	if name == "" {
		name = s.ctl.SubjectID()
	}
	title := "Health Profile: " + name
	if s.ctl.Model().Dirty() {
		title += " (unsaved)"
	}
	return title
}

func (s *editSession) chooseAction() (string, error) {
	p := s.ctl.Model().Profile()
	options := []huh.Option[string]{
		huh.NewOption("Set date of birth", actionDateOfBirth),
		huh.NewOption("Set skin type", actionSkinType),
		huh.NewOption("Edit notes", actionNotes),
	}
	for _, f := range profile.ListFields {
		options = append(options, huh.NewOption("Add to "+f.Label(), actionAdd+string(f)))
		if len(p.List(f)) > 0 {
			options = append(options, huh.NewOption("Remove from "+f.Label(), actionRemove+string(f)))
		}
	}
	photoLabel := "Upload concern photo"
	if p.ConcernPhoto != nil {
		photoLabel = "Replace concern photo"
	}
	options = append(options,
		huh.NewOption(photoLabel, actionPhoto),
		huh.NewOption("Save profile", actionSave),
		huh.NewOption("Cancel", actionCancel),
	)

	var action string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What would you like to do?").
				Options(options...).
				Value(&action),
		),
	).Run()
	return action, err
}

// perform runs one action and reports whether the session should end.
func (s *editSession) perform(ctx context.Context, action string) (bool, error) {
	m := s.ctl.Model()
	p := m.Profile()

	switch {
	case action == actionDateOfBirth:
		value := p.DateOfBirthString()
		err := runInput("Date of birth", "YYYY-MM-DD, leave empty to clear", &value, func(v string) error {
			if v == "" {
				return nil
			}
			_, err := time.Parse(profile.DateLayout, v)
			if err != nil {
				return errors.New("use the format YYYY-MM-DD")
			}
			return nil
		})
		if err != nil {
			return false, ignoreAbort(err)
		}
		return false, m.SetScalar(profile.DateOfBirth, strings.TrimSpace(value))

	case action == actionSkinType:
		value := string(p.SkinType)
		options := []huh.Option[string]{huh.NewOption("Not set", "")}
		for _, st := range profile.SkinTypes {
			options = append(options, huh.NewOption(strings.ToUpper(string(st[:1]))+string(st[1:]), string(st)))
		}
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Skin type").
					Options(options...).
					Value(&value),
			),
		).Run()
		if err != nil {
			return false, ignoreAbort(err)
		}
		return false, m.SetScalar(profile.SkinTypeField, value)

	case action == actionNotes:
		value := p.Notes
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewText().
					Title("Notes").
					Value(&value),
			),
		).Run()
		if err != nil {
			return false, ignoreAbort(err)
		}
		return false, m.SetScalar(profile.Notes, value)

	case strings.HasPrefix(action, actionAdd):
		field := profile.ListField(strings.TrimPrefix(action, actionAdd))
		var value string
		if err := runInput("Add to "+field.Label(), "", &value, nil); err != nil {
			return false, ignoreAbort(err)
		}
		m.AddListItem(field, value)
		return false, nil

	case strings.HasPrefix(action, actionRemove):
		field := profile.ListField(strings.TrimPrefix(action, actionRemove))
		items := p.List(field)
		options := make([]huh.Option[string], 0, len(items))
		for i, item := range items {
			options = append(options, huh.NewOption(item, strconv.Itoa(i)))
		}
		var choice string
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Remove from " + field.Label()).
					Options(options...).
					Value(&choice),
			),
		).Run()
		if err != nil {
			return false, ignoreAbort(err)
		}
		if i, err := strconv.Atoi(choice); err == nil {
			m.RemoveListItem(field, i)
		}
		return false, nil

	case action == actionPhoto:
		var path string
		if err := runInput("Path to image", "JPEG, PNG, GIF or WebP", &path, nil); err != nil {
			return false, ignoreAbort(err)
		}
		path = strings.TrimSpace(path)
		if path == "" {
			return false, nil
		}
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open %s: %v\n", path, err)
			return false, nil
		}
		defer f.Close()
		// Upload failures are reported through the notifier.
		_ = s.withSpinner("Uploading photo...", func() error {
			return s.ctl.Upload(ctx, photoFile(path, f))
		})
		return false, nil

	case action == actionSave:
		// Success closes the session through OnClose; failures are toasted
		// and the session stays open.
		_ = s.withSpinner("Saving profile...", func() error {
			return s.ctl.Save(ctx)
		})
		return s.closed.Load(), nil

	case action == actionCancel:
		if !m.Dirty() {
			return true, nil
		}
		discard := false
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Discard unsaved changes?").
					Value(&discard),
			),
		).Run()
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return false, err
		}
		return discard, nil
	}
	return false, fmt.Errorf("unknown action %q", action)
}

func (s *editSession) withSpinner(title string, fn func() error) error {
	var err error
	if runErr := spinner.New().Title(title).Action(func() { err = fn() }).Run(); runErr != nil {
		return runErr
	}
	return err
}

func runInput(title, description string, value *string, validate func(string) error) error {
	input := huh.NewInput().
		Title(title).
		Description(description).
		Value(value)
	if validate != nil {
		input = input.Validate(validate)
	}
	return huh.NewForm(huh.NewGroup(input)).Run()
}

// ignoreAbort treats Esc/Ctrl-C inside a sub-form as "go back".
func ignoreAbort(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	return err
}
