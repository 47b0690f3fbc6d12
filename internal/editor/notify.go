package editor

// Variant selects how a notification is presented.
type Variant int

const (
	VariantDefault Variant = iota
	VariantDestructive
)

// Notification is a transient, user-facing outcome signal.
type Notification struct {
	Title       string
	Description string
	Variant     Variant
}

// Notifier receives notifications emitted by a Controller.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notification) {}

// Notification texts.
const (
	TitleProfileSaved  = "Profile Saved"
	TitleSaveFailed    = "Save Failed"
	TitlePhotoUploaded = "Photo Uploaded"
	TitleUploadFailed  = "Upload Failed"

	MessageProfileSaved  = "Customer health profile updated successfully."
	MessagePhotoUploaded = "Concern photo added to profile."
	FallbackSaveFailed   = "Failed to save profile."
	FallbackUploadFailed = "Failed to upload photo."
)
