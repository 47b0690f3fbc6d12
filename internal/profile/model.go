package profile

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	// ErrIncompletePhoto is returned when a concern photo is missing its URL
	// or asset id.
	ErrIncompletePhoto = errors.New("concern photo requires both url and asset id")
	// ErrInvalidValue is returned when a scalar value does not fit its field.
	ErrInvalidValue = errors.New("invalid value")
)

// Model holds an editable Profile. Every method is safe for concurrent use.
// Each effective mutation bumps Version; Dirty compares it to the version
// recorded by the last MarkClean.
type Model struct {
	mu      sync.RWMutex
	p       Profile
	version uint64
	clean   uint64
}

// NewModel returns a model holding an empty profile.
func NewModel() *Model {
	return &Model{p: Empty()}
}

// Snapshot returns a deep copy of the current profile and its version.
func (m *Model) Snapshot() (Profile, uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.p.Clone(), m.version
}

// Profile returns a deep copy of the current profile.
func (m *Model) Profile() Profile {
	p, _ := m.Snapshot()
	return p
}

// Version returns the mutation counter.
func (m *Model) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// Dirty reports whether the model changed since the last MarkClean.
func (m *Model) Dirty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version != m.clean
}

// MarkClean records version as the persisted baseline. A stale version (one
// older than the current baseline) is ignored.
func (m *Model) MarkClean(version uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if version > m.clean {
		m.clean = version
	}
}

// Replace swaps in p wholesale.
func (m *Model) Replace(p Profile) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p = p.Clone()
	for _, f := range ListFields {
		if *m.p.listRef(f) == nil {
			*m.p.listRef(f) = []string{}
		}
	}
	m.version++
	return m.version
}

// SetScalar replaces a scalar field. Dates must use DateLayout and skin types
// must be one of SkinTypes; an empty value unsets either.
func (m *Model) SetScalar(field ScalarField, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch field {
	case DateOfBirth:
		if value == "" {
			m.p.DateOfBirth = nil
			break
		}
		t, err := time.Parse(DateLayout, value)
		if err != nil {
			return fmt.Errorf("%w: date_of_birth %q: expected YYYY-MM-DD", ErrInvalidValue, value)
		}
		m.p.DateOfBirth = &t
	case SkinTypeField:
		st := SkinType(value)
		if !st.Valid() {
			return fmt.Errorf("%w: skin_type %q", ErrInvalidValue, value)
		}
		m.p.SkinType = st
	case Notes:
		m.p.Notes = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	m.version++
	return nil
}

// AddListItem appends the trimmed value to field. Blank values are ignored
// and false is returned. Duplicates are kept.
func (m *Model) AddListItem(field ListField, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.p.listRef(field)
	if list == nil {
		return false
	}
	*list = append(*list, value)
	m.version++
	return true
}

// RemoveListItem removes the entry at index. Out-of-range indices are
// ignored and false is returned.
func (m *Model) RemoveListItem(field ListField, index int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.p.listRef(field)
	if list == nil || index < 0 || index >= len(*list) {
		return false
	}
	next := make([]string, 0, len(*list)-1)
	next = append(next, (*list)[:index]...)
	next = append(next, (*list)[index+1:]...)
	*list = next
	m.version++
	return true
}

// SetConcernPhoto sets the photo URL and asset id together.
func (m *Model) SetConcernPhoto(url, assetID string) error {
	if url == "" || assetID == "" {
		return ErrIncompletePhoto
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p.ConcernPhoto = &Photo{URL: url, AssetID: assetID}
	m.version++
	return nil
}
