package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ruminaider/salon-sync/internal/editor"
	"github.com/ruminaider/salon-sync/internal/profile"
	"go.uber.org/zap"
)

// ErrNoChanges is returned by SetProfile when the edits leave the profile
// as it was loaded.
var ErrNoChanges = errors.New("no changes to save")

// ProfileShowResult is a read-only view of a stored profile.
type ProfileShowResult struct {
	SubjectID string
	ScopeID   string
	// Exists is false when the backend has no profile yet.
	Exists  bool
	Profile profile.Profile
}

// ShowProfile fetches and normalizes a customer's profile.
func ShowProfile(ctx context.Context, store editor.Store, subjectID, scopeID string) (*ProfileShowResult, error) {
	if subjectID == "" || scopeID == "" {
		return nil, fmt.Errorf("customer id and salon id are required")
	}
	raw, err := store.GetProfile(ctx, subjectID, scopeID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return &ProfileShowResult{
		SubjectID: subjectID,
		ScopeID:   scopeID,
		Exists:    raw != nil,
		Profile:   profile.Normalize(raw),
	}, nil
}

// EditKind is the kind of change an EditOp makes.
type EditKind int

const (
	EditSet EditKind = iota
	EditAdd
	EditRemove
)

// EditOp is one scripted edit, parsed from "field=value", "field+=value" or
// "field-=value".
type EditOp struct {
	Kind  EditKind
	Field string
	Value string
}

// ParseEditOp parses a single edit argument.
func ParseEditOp(arg string) (EditOp, error) {
	eq := strings.Index(arg, "=")
	if eq <= 0 {
		return EditOp{}, fmt.Errorf("invalid edit %q: expected field=value, field+=value or field-=value", arg)
	}
	op := EditOp{Kind: EditSet, Field: arg[:eq], Value: arg[eq+1:]}
	switch {
	case strings.HasSuffix(op.Field, "+"):
		op.Kind = EditAdd
		op.Field = strings.TrimSuffix(op.Field, "+")
	case strings.HasSuffix(op.Field, "-"):
		op.Kind = EditRemove
		op.Field = strings.TrimSuffix(op.Field, "-")
	}
	op.Field = strings.TrimSpace(op.Field)
	if op.Field == "" {
		return EditOp{}, fmt.Errorf("invalid edit %q: missing field name", arg)
	}
	return op, nil
}

// Apply performs op against m.
func (op EditOp) Apply(m *profile.Model) error {
	if op.Kind == EditSet {
		field, err := profile.ParseScalarField(op.Field)
		if err != nil {
			return err
		}
		return m.SetScalar(field, strings.TrimSpace(op.Value))
	}

	field, err := profile.ParseListField(op.Field)
	if err != nil {
		return err
	}
	if op.Kind == EditAdd {
		if !m.AddListItem(field, op.Value) {
			return fmt.Errorf("cannot add a blank entry to %s", field)
		}
		return nil
	}

	value := strings.TrimSpace(op.Value)
	for i, item := range m.Profile().List(field) {
		if item == value {
			m.RemoveListItem(field, i)
			return nil
		}
	}
	return fmt.Errorf("%s has no entry %q", field, value)
}

// SetProfileOptions configures a scripted profile edit.
type SetProfileOptions struct {
	SubjectID string
	ScopeID   string
	Ops       []EditOp
	// Photo, when set, is uploaded and attached as the concern photo.
	Photo    *profile.File
	Notifier editor.Notifier
	Logger   *zap.Logger
}

// SetProfileResult reports what a scripted edit changed.
type SetProfileResult struct {
	Before  profile.Profile
	After   profile.Profile
	Changes profile.Changes
}

// SetProfile loads the profile, applies opts.Ops (and the photo upload),
// and saves the result through an editor.Controller. It returns
// ErrNoChanges without saving when nothing changed.
func SetProfile(ctx context.Context, store editor.Store, opts SetProfileOptions) (*SetProfileResult, error) {
	ctl, err := editor.New(store, editor.Options{
		SubjectID: opts.SubjectID,
		ScopeID:   opts.ScopeID,
		Notifier:  opts.Notifier,
		Logger:    opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	if err := ctl.Load(ctx); err != nil {
		return nil, err
	}

	m := ctl.Model()
	before := m.Profile()
	for _, op := range opts.Ops {
		if err := op.Apply(m); err != nil {
			return nil, err
		}
	}
	if opts.Photo != nil {
		if err := ctl.Upload(ctx, *opts.Photo); err != nil {
			return nil, err
		}
	}

	after := m.Profile()
	changes := profile.Diff(before, after)
	if changes.Empty() {
		return &SetProfileResult{Before: before, After: after, Changes: changes}, ErrNoChanges
	}
	if err := ctl.Save(ctx); err != nil {
		return nil, err
	}
	return &SetProfileResult{Before: before, After: after, Changes: changes}, nil
}
