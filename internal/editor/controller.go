package editor

import (
	"context"
	"errors"
	"sync"

	"github.com/ruminaider/salon-sync/internal/profile"
	"go.uber.org/zap"
)

// ErrSuperseded is returned by a Load whose response was discarded because a
// newer Load started before it finished.
var ErrSuperseded = errors.New("load superseded by a newer request")

// Store is the remote collaborator that owns persisted profiles.
type Store interface {
	// GetProfile returns the stored profile, or nil when none exists.
	GetProfile(ctx context.Context, subjectID, scopeID string) (*profile.ServerProfile, error)
	SaveProfile(ctx context.Context, payload profile.SavePayload) error
	UploadAsset(ctx context.Context, file profile.File) (profile.Photo, error)
}

// Phase is the lifecycle state of one operation category.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseSaving
	PhaseUploading
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseSaving:
		return "saving"
	case PhaseUploading:
		return "uploading"
	}
	return "unknown"
}

// Status reports the phase of each operation category.
type Status struct {
	Load   Phase
	Save   Phase
	Upload Phase
}

// Busy reports whether any operation is in flight.
func (s Status) Busy() bool {
	return s.Load == PhaseLoading || s.Save == PhaseSaving || s.Upload == PhaseUploading
}

// Options configures a Controller.
type Options struct {
	SubjectID   string
	ScopeID     string
	DisplayName string
	// OnClose is invoked after a successful save.
	OnClose  func()
	Notifier Notifier
	Logger   *zap.Logger
}

// Controller drives the load, upload and save lifecycle of one subject's
// profile against a Store. Save and upload may overlap; the model is shared
// and the later write wins. Overlapping loads cancel the earlier request.
type Controller struct {
	store    Store
	model    *profile.Model
	notifier Notifier
	logger   *zap.Logger

	subjectID   string
	scopeID     string
	displayName string
	onClose     func()

	mu         sync.Mutex
	status     Status
	loadGen    uint64
	cancelLoad context.CancelFunc
}

// New creates a controller for the given subject and scope.
func New(store Store, opts Options) (*Controller, error) {
	if store == nil {
		return nil, errors.New("editor: store is required")
	}
	if opts.SubjectID == "" {
		return nil, errors.New("editor: subject id is required")
	}
	if opts.ScopeID == "" {
		return nil, errors.New("editor: scope id is required")
	}
	c := &Controller{
		store:       store,
		model:       profile.NewModel(),
		notifier:    opts.Notifier,
		logger:      opts.Logger,
		subjectID:   opts.SubjectID,
		scopeID:     opts.ScopeID,
		displayName: opts.DisplayName,
		onClose:     opts.OnClose,
		status:      Status{Load: PhaseIdle, Save: PhaseReady, Upload: PhaseReady},
	}
	if c.notifier == nil {
		c.notifier = discardNotifier{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.logger = c.logger.With(zap.String("subject_id", c.subjectID), zap.String("scope_id", c.scopeID))
	return c, nil
}

// Model returns the editable profile.
func (c *Controller) Model() *profile.Model { return c.model }

// SubjectID returns the id of the customer being edited.
func (c *Controller) SubjectID() string { return c.subjectID }

// ScopeID returns the salon the profile is namespaced under.
func (c *Controller) ScopeID() string { return c.scopeID }

// DisplayName returns the customer's display name.
func (c *Controller) DisplayName() string { return c.displayName }

// Status returns the current phase of every operation category.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Load fetches the profile and replaces the model with its normalized form.
// Failures are logged and returned but never notified; the model is left
// unchanged. A Load started while another is in flight cancels the older one.
func (c *Controller) Load(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.cancelLoad != nil {
		c.cancelLoad()
	}
	c.loadGen++
	gen := c.loadGen
	c.cancelLoad = cancel
	c.status.Load = PhaseLoading
	c.mu.Unlock()

	c.logger.Debug("loading profile")
	raw, err := c.store.GetProfile(ctx, c.subjectID, c.scopeID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.loadGen {
		c.logger.Debug("discarding superseded load")
		return ErrSuperseded
	}
	c.status.Load = PhaseReady
	c.cancelLoad = nil

	if err != nil {
		c.logger.Error("error loading profile", zap.Error(err))
		return &Error{Op: OpLoad, Err: err}
	}

	version := c.model.Replace(profile.Normalize(raw))
	c.model.MarkClean(version)
	c.logger.Debug("profile loaded", zap.Bool("exists", raw != nil))
	return nil
}

// Upload sends file to the store and attaches the result as the concern
// photo.
func (c *Controller) Upload(ctx context.Context, file profile.File) error {
	if !c.begin(&c.status.Upload, PhaseUploading) {
		return ErrBusy
	}
	defer c.end(&c.status.Upload)

	photo, err := c.store.UploadAsset(ctx, file)
	if err == nil {
		err = c.model.SetConcernPhoto(photo.URL, photo.AssetID)
	}
	if err != nil {
		c.logger.Warn("upload failed", zap.String("file", file.Name), zap.Error(err))
		c.notifier.Notify(Notification{
			Title:       TitleUploadFailed,
			Description: userMessage(err, FallbackUploadFailed),
			Variant:     VariantDestructive,
		})
		return &Error{Op: OpUpload, Err: err}
	}

	c.logger.Info("concern photo uploaded", zap.String("asset_id", photo.AssetID))
	c.notifier.Notify(Notification{Title: TitlePhotoUploaded, Description: MessagePhotoUploaded})
	return nil
}

// Save persists the whole profile. On success OnClose is invoked.
func (c *Controller) Save(ctx context.Context) error {
	if !c.begin(&c.status.Save, PhaseSaving) {
		return ErrBusy
	}
	defer c.end(&c.status.Save)

	snap, version := c.model.Snapshot()
	payload := profile.NewSavePayload(c.subjectID, c.scopeID, snap)

	if err := c.store.SaveProfile(ctx, payload); err != nil {
		c.logger.Warn("save failed", zap.Error(err))
		c.notifier.Notify(Notification{
			Title:       TitleSaveFailed,
			Description: userMessage(err, FallbackSaveFailed),
			Variant:     VariantDestructive,
		})
		return &Error{Op: OpSave, Err: err}
	}

	c.model.MarkClean(version)
	c.logger.Info("profile saved", zap.Uint64("version", version))
	c.notifier.Notify(Notification{Title: TitleProfileSaved, Description: MessageProfileSaved})
	if c.onClose != nil {
		c.onClose()
	}
	return nil
}

func (c *Controller) begin(phase *Phase, active Phase) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if *phase == active {
		return false
	}
	*phase = active
	return true
}

func (c *Controller) end(phase *Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*phase = PhaseReady
}
