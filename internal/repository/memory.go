package repository

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-memory repository with the same behavior as Postgres.
// It is safe for concurrent use.
type Memory struct {
	mu sync.RWMutex // protects all fields below

	profiles    map[profileKey]ProfileRecord
	subscribers map[string]Subscriber
	nextID      int64
	now         func() time.Time
}

type profileKey struct {
	userID  string
	salonID string
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		profiles:    make(map[profileKey]ProfileRecord),
		subscribers: make(map[string]Subscriber),
		now:         time.Now,
	}
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) EnsureSchema(context.Context) error { return nil }

func (m *Memory) GetProfile(_ context.Context, userID, salonID string) (*ProfileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.profiles[profileKey{userID, salonID}]
	if !ok {
		return nil, ErrNotFound
	}
	if r.DateOfBirth != nil {
		d := *r.DateOfBirth
		r.DateOfBirth = &d
	}
	return &r, nil
}

func (m *Memory) UpsertProfile(_ context.Context, r *ProfileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r.UpdatedAt = m.now().UTC()
	stored := *r
	if r.DateOfBirth != nil {
		d := *r.DateOfBirth
		stored.DateOfBirth = &d
	}
	m.profiles[profileKey{r.UserID, r.SalonID}] = stored
	return nil
}

func (m *Memory) Subscribe(_ context.Context, email string) (*Subscriber, error) {
	email = normalizeEmail(email)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subscribers[email]; ok {
		return nil, ErrAlreadySubscribed
	}
	m.nextID++
	s := Subscriber{ID: m.nextID, Email: email, CreatedAt: m.now().UTC()}
	m.subscribers[email] = s
	return &s, nil
}

func (m *Memory) ListTables(context.Context) ([]string, error) {
	tables := []string{TableCustomerProfiles, TableNewsletterSubscribers}
	sort.Strings(tables)
	return tables, nil
}

// Subscribers returns all subscriptions ordered by id.
func (m *Memory) Subscribers() []Subscriber {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Subscriber, 0, len(m.subscribers))
	for _, s := range m.subscribers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
