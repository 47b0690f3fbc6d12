package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ListKind records how a list field was encoded on the wire.
type ListKind int

const (
	ListAbsent ListKind = iota
	ListJoined
	ListItems
)

// FlexList is a list field as the backend sends it: either a comma-joined
// string or an array of strings. The Kind tag is set during decoding so
// callers never inspect the raw JSON shape.
type FlexList struct {
	Kind   ListKind
	Joined string
	Items  []string
}

// JoinedList builds a FlexList carrying a comma-joined string.
func JoinedList(s string) FlexList {
	return FlexList{Kind: ListJoined, Joined: s}
}

// ItemList builds a FlexList carrying discrete items.
func ItemList(items ...string) FlexList {
	return FlexList{Kind: ListItems, Items: items}
}

// UnmarshalJSON accepts a string, an array of strings, or null.
func (l *FlexList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = FlexList{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding list string: %w", err)
		}
		*l = JoinedList(s)
		return nil
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decoding list items: %w", err)
		}
		*l = ItemList(items...)
		return nil
	}
	return fmt.Errorf("decoding list: unexpected JSON value %s", data)
}

// MarshalJSON writes the list in the form it was decoded in.
func (l FlexList) MarshalJSON() ([]byte, error) {
	switch l.Kind {
	case ListJoined:
		return json.Marshal(l.Joined)
	case ListItems:
		if l.Items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(l.Items)
	}
	return []byte("null"), nil
}

// IsZero reports whether the list was absent.
func (l FlexList) IsZero() bool {
	return l.Kind == ListAbsent
}

// ServerProfile is the profile shape the backend returns.
type ServerProfile struct {
	UserID               string   `json:"user_id,omitempty"`
	SalonID              string   `json:"salon_id,omitempty"`
	DateOfBirth          string   `json:"date_of_birth,omitempty"`
	SkinType             string   `json:"skin_type,omitempty"`
	SkinIssues           FlexList `json:"skin_issues,omitzero"`
	AllergyRecords       FlexList `json:"allergy_records,omitzero"`
	Allergies            FlexList `json:"allergies,omitzero"`
	MedicalConditions    FlexList `json:"medical_conditions,omitzero"`
	Notes                string   `json:"notes,omitempty"`
	ConcernPhotoURL      string   `json:"concern_photo_url,omitempty"`
	ConcernPhotoPublicID string   `json:"concern_photo_public_id,omitempty"`
	UpdatedAt            string   `json:"updated_at,omitempty"`
}

// SavePayload is the full-replace body sent when saving a profile.
type SavePayload struct {
	UserID               string   `json:"user_id"`
	SalonID              string   `json:"salon_id"`
	DateOfBirth          string   `json:"date_of_birth"`
	SkinType             string   `json:"skin_type"`
	SkinIssues           []string `json:"skin_issues"`
	Allergies            []string `json:"allergies"`
	MedicalConditions    []string `json:"medical_conditions"`
	Notes                string   `json:"notes"`
	ConcernPhotoURL      string   `json:"concern_photo_url"`
	ConcernPhotoPublicID string   `json:"concern_photo_public_id"`
}

// NewSavePayload builds the payload for persisting p under the given ids.
func NewSavePayload(subjectID, scopeID string, p Profile) SavePayload {
	p = p.Clone()
	payload := SavePayload{
		UserID:            subjectID,
		SalonID:           scopeID,
		DateOfBirth:       p.DateOfBirthString(),
		SkinType:          string(p.SkinType),
		SkinIssues:        p.SkinIssues,
		Allergies:         p.Allergies,
		MedicalConditions: p.MedicalConditions,
		Notes:             p.Notes,
	}
	if p.ConcernPhoto != nil {
		payload.ConcernPhotoURL = p.ConcernPhoto.URL
		payload.ConcernPhotoPublicID = p.ConcernPhoto.AssetID
	}
	return payload
}

// Profile converts a payload back into canonical form.
func (p SavePayload) Profile() Profile {
	return Normalize(&ServerProfile{
		DateOfBirth:          p.DateOfBirth,
		SkinType:             p.SkinType,
		SkinIssues:           ItemList(p.SkinIssues...),
		Allergies:            ItemList(p.Allergies...),
		MedicalConditions:    ItemList(p.MedicalConditions...),
		Notes:                p.Notes,
		ConcernPhotoURL:      p.ConcernPhotoURL,
		ConcernPhotoPublicID: p.ConcernPhotoPublicID,
	})
}

// JoinList encodes items as the comma-joined form used by legacy storage.
// Entries are trimmed and blank ones dropped, so SplitList(JoinList(items))
// returns exactly what was stored.
func JoinList(items []string) string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return strings.Join(out, ",")
}
