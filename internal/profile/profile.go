package profile

import (
	"io"
	"time"
)

// DateLayout is the wire and display format for DateOfBirth.
const DateLayout = "2006-01-02"

// SkinType is the customer's skin classification. The zero value means unset.
type SkinType string

const (
	SkinTypeNormal      SkinType = "normal"
	SkinTypeDry         SkinType = "dry"
	SkinTypeOily        SkinType = "oily"
	SkinTypeCombination SkinType = "combination"
	SkinTypeSensitive   SkinType = "sensitive"
)

// SkinTypes lists the valid skin types in display order.
var SkinTypes = []SkinType{
	SkinTypeNormal,
	SkinTypeDry,
	SkinTypeOily,
	SkinTypeCombination,
	SkinTypeSensitive,
}

// Valid reports whether s is unset or one of SkinTypes.
func (s SkinType) Valid() bool {
	if s == "" {
		return true
	}
	for _, t := range SkinTypes {
		if s == t {
			return true
		}
	}
	return false
}

// Photo is an uploaded concern photo. URL and AssetID are always set together.
type Photo struct {
	URL     string `json:"url" yaml:"url"`
	AssetID string `json:"public_id" yaml:"public_id"`
}

// Profile is the canonical in-memory health profile of a customer.
type Profile struct {
	DateOfBirth       *time.Time
	SkinType          SkinType
	SkinIssues        []string
	Allergies         []string
	MedicalConditions []string
	Notes             string
	ConcernPhoto      *Photo
}

// Empty returns a profile with every scalar unset and every list empty.
func Empty() Profile {
	return Profile{
		SkinIssues:        []string{},
		Allergies:         []string{},
		MedicalConditions: []string{},
	}
}

// Clone returns a deep copy of p.
func (p Profile) Clone() Profile {
	out := p
	if p.DateOfBirth != nil {
		d := *p.DateOfBirth
		out.DateOfBirth = &d
	}
	if p.ConcernPhoto != nil {
		ph := *p.ConcernPhoto
		out.ConcernPhoto = &ph
	}
	out.SkinIssues = cloneList(p.SkinIssues)
	out.Allergies = cloneList(p.Allergies)
	out.MedicalConditions = cloneList(p.MedicalConditions)
	return out
}

// DateOfBirthString formats DateOfBirth, or returns "" when unset.
func (p Profile) DateOfBirthString() string {
	if p.DateOfBirth == nil {
		return ""
	}
	return p.DateOfBirth.Format(DateLayout)
}

// List returns the entries of the given list field.
func (p Profile) List(field ListField) []string {
	switch field {
	case SkinIssues:
		return p.SkinIssues
	case Allergies:
		return p.Allergies
	case MedicalConditions:
		return p.MedicalConditions
	}
	return nil
}

func (p *Profile) listRef(field ListField) *[]string {
	switch field {
	case SkinIssues:
		return &p.SkinIssues
	case Allergies:
		return &p.Allergies
	case MedicalConditions:
		return &p.MedicalConditions
	}
	return nil
}

// File is an asset to upload, typically an image of a skin concern.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

func cloneList(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
