package profile

import (
	"strings"
	"time"
)

// Normalize converts a server profile into canonical form. A nil raw profile
// yields Empty(). Normalization never fails: malformed dates and unknown skin
// types become unset, and list entries that are blank are dropped.
func Normalize(raw *ServerProfile) Profile {
	p := Empty()
	if raw == nil {
		return p
	}

	p.DateOfBirth = parseDate(raw.DateOfBirth)
	if st := SkinType(strings.TrimSpace(raw.SkinType)); st.Valid() {
		p.SkinType = st
	}
	p.SkinIssues = normalizeList(raw.SkinIssues)
	allergies := raw.Allergies
	if allergies.IsZero() {
		allergies = raw.AllergyRecords
	}
	p.Allergies = normalizeList(allergies)
	p.MedicalConditions = normalizeList(raw.MedicalConditions)
	p.Notes = raw.Notes

	if raw.ConcernPhotoURL != "" && raw.ConcernPhotoPublicID != "" {
		p.ConcernPhoto = &Photo{URL: raw.ConcernPhotoURL, AssetID: raw.ConcernPhotoPublicID}
	}
	return p
}

// SplitList splits a comma-joined string, trimming parts and dropping empty
// ones while preserving order.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func normalizeList(l FlexList) []string {
	switch l.Kind {
	case ListJoined:
		return SplitList(l.Joined)
	case ListItems:
		// Array entries pass through untrimmed; the server trims them when
		// it stores the joined form.
		out := make([]string, 0, len(l.Items))
		for _, item := range l.Items {
			if strings.TrimSpace(item) == "" {
				continue
			}
			out = append(out, item)
		}
		return out
	}
	return []string{}
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	// Some backends send full timestamps for date columns.
	for _, layout := range []string{DateLayout, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}
