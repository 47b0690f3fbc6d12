package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ruminaider/salon-sync/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryProfiles(t *testing.T) {
	ctx := context.Background()
	m := repository.NewMemory()

	_, err := m.GetProfile(ctx, "u1", "s1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	dob := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	rec := &repository.ProfileRecord{
		UserID:      "u1",
		SalonID:     "s1",
		DateOfBirth: &dob,
		SkinType:    "dry",
		SkinIssues:  "acne,redness",
	}
	require.NoError(t, m.UpsertProfile(ctx, rec))
	assert.False(t, rec.UpdatedAt.IsZero())

	got, err := m.GetProfile(ctx, "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, "acne,redness", got.SkinIssues)
	assert.Equal(t, dob, *got.DateOfBirth)

	// Scoped by salon.
	_, err = m.GetProfile(ctx, "u1", "s2")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// Returned records are copies.
	*got.DateOfBirth = time.Time{}
	again, err := m.GetProfile(ctx, "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, dob, *again.DateOfBirth)

	// Upsert replaces wholesale.
	require.NoError(t, m.UpsertProfile(ctx, &repository.ProfileRecord{UserID: "u1", SalonID: "s1"}))
	again, err = m.GetProfile(ctx, "u1", "s1")
	require.NoError(t, err)
	assert.Nil(t, again.DateOfBirth)
	assert.Empty(t, again.SkinIssues)
}

func TestMemorySubscribe(t *testing.T) {
	ctx := context.Background()
	m := repository.NewMemory()

	s, err := m.Subscribe(ctx, " Ada@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", s.Email)
	assert.Equal(t, int64(1), s.ID)

	_, err = m.Subscribe(ctx, "ada@example.com")
	assert.ErrorIs(t, err, repository.ErrAlreadySubscribed)

	assert.Len(t, m.Subscribers(), 1)
}

func TestMemorySubscribeConcurrent(t *testing.T) {
	ctx := context.Background()
	m := repository.NewMemory()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		dupes   int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Subscribe(ctx, "same@example.com")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, repository.ErrAlreadySubscribed):
				dupes++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 19, dupes)
}

func TestMemoryListTables(t *testing.T) {
	tables, err := repository.NewMemory().ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"customer_profiles", "newsletter_subscribers"}, tables)
}
