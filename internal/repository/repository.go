package repository

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadySubscribed = errors.New("already subscribed")
)

// Table names managed by EnsureSchema.
const (
	TableCustomerProfiles      = "customer_profiles"
	TableNewsletterSubscribers = "newsletter_subscribers"
)

// ProfileRecord is a stored customer health profile. List columns hold
// comma-joined values.
type ProfileRecord struct {
	UserID               string
	SalonID              string
	DateOfBirth          *time.Time
	SkinType             string
	SkinIssues           string
	AllergyRecords       string
	MedicalConditions    string
	Notes                string
	ConcernPhotoURL      string
	ConcernPhotoPublicID string
	UpdatedAt            time.Time
}

// Subscriber is a newsletter subscription.
type Subscriber struct {
	ID        int64
	Email     string
	CreatedAt time.Time
}
