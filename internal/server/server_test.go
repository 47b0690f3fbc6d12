package server_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ruminaider/salon-sync/internal/assets"
	"github.com/ruminaider/salon-sync/internal/editor"
	"github.com/ruminaider/salon-sync/internal/profile"
	"github.com/ruminaider/salon-sync/internal/ratelimit"
	"github.com/ruminaider/salon-sync/internal/remote"
	"github.com/ruminaider/salon-sync/internal/repository"
	"github.com/ruminaider/salon-sync/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// brokenRepo fails every call.
type brokenRepo struct{ *repository.Memory }

var errDown = errors.New("connection refused")

func (brokenRepo) Ping(context.Context) error { return errDown }
func (brokenRepo) Subscribe(context.Context, string) (*repository.Subscriber, error) {
	return nil, errDown
}
func (brokenRepo) ListTables(context.Context) ([]string, error) { return nil, errDown }

type denyAll struct{}

func (denyAll) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{Limit: 5, Reset: time.Minute}, nil
}

// oncePerKey allows the first request from each key.
type oncePerKey struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (l *oncePerKey) Allow(_ context.Context, key string) (ratelimit.Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen == nil {
		l.seen = map[string]bool{}
	}
	allowed := !l.seen[key]
	l.seen[key] = true
	return ratelimit.Decision{Allowed: allowed, Limit: 1, Reset: time.Minute}, nil
}

func setupServer(t *testing.T, repo server.Repository, limiter ratelimit.Limiter) (*httptest.Server, *remote.Client) {
	t.Helper()
	store, err := assets.NewDiskStore(t.TempDir(), "", nil)
	require.NoError(t, err)
	srv := httptest.NewServer(server.New(repo, store, limiter, nil, server.Config{MaxUploadBytes: 4096}).Routes())
	t.Cleanup(srv.Close)
	return srv, remote.New(srv.URL)
}

func TestHealth(t *testing.T) {
	srv, _ := setupServer(t, repository.NewMemory(), nil)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	srv, _ = setupServer(t, brokenRepo{repository.NewMemory()}, nil)
	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, client := setupServer(t, repository.NewMemory(), nil)

	sp, err := client.GetProfile(ctx, "cust-1", "salon-1")
	require.NoError(t, err)
	assert.Nil(t, sp)

	want := profile.SavePayload{
		UserID:               "cust-1",
		SalonID:              "salon-1",
		DateOfBirth:          "1990-05-17",
		SkinType:             "combination",
		SkinIssues:           []string{"acne", "redness"},
		Allergies:            []string{"latex"},
		MedicalConditions:    []string{},
		Notes:                "prefers fragrance-free",
		ConcernPhotoURL:      "/uploads/a.png",
		ConcernPhotoPublicID: "a",
	}
	require.NoError(t, client.SaveProfile(ctx, want))

	sp, err = client.GetProfile(ctx, "cust-1", "salon-1")
	require.NoError(t, err)
	require.NotNil(t, sp)
	assert.Equal(t, profile.ListJoined, sp.SkinIssues.Kind)
	assert.Equal(t, "acne,redness", sp.SkinIssues.Joined)
	assert.Equal(t, "latex", sp.AllergyRecords.Joined)
	assert.True(t, sp.Allergies.IsZero())
	assert.NotEmpty(t, sp.UpdatedAt)

	assert.Equal(t, want.Profile(), profile.Normalize(sp))

	// Another salon sees nothing.
	sp, err = client.GetProfile(ctx, "cust-1", "salon-2")
	require.NoError(t, err)
	assert.Nil(t, sp)

	t.Run("padded entries are stored trimmed", func(t *testing.T) {
		padded := profile.SavePayload{
			UserID:            "cust-2",
			SalonID:           "salon-1",
			SkinIssues:        []string{" acne ", "redness"},
			Allergies:         []string{"latex  "},
			MedicalConditions: []string{},
		}
		require.NoError(t, client.SaveProfile(ctx, padded))

		sp, err := client.GetProfile(ctx, "cust-2", "salon-1")
		require.NoError(t, err)
		reloaded := profile.Normalize(sp)
		assert.Equal(t, []string{"acne", "redness"}, reloaded.SkinIssues)
		assert.Equal(t, []string{"latex"}, reloaded.Allergies)

		// Saving what was loaded changes nothing.
		require.NoError(t, client.SaveProfile(ctx, profile.NewSavePayload("cust-2", "salon-1", reloaded)))
		sp, err = client.GetProfile(ctx, "cust-2", "salon-1")
		require.NoError(t, err)
		assert.True(t, profile.Diff(reloaded, profile.Normalize(sp)).Empty())
	})
}

func TestSaveProfileValidation(t *testing.T) {
	ctx := context.Background()
	_, client := setupServer(t, repository.NewMemory(), nil)
	base := profile.SavePayload{UserID: "c", SalonID: "s"}

	tests := []struct {
		name    string
		mutate  func(p *profile.SavePayload)
		status  int
		message string
	}{
		{"missing ids", func(p *profile.SavePayload) { p.SalonID = "" }, http.StatusBadRequest, "user_id and salon_id are required"},
		{"skin type", func(p *profile.SavePayload) { p.SkinType = "scaly" }, http.StatusUnprocessableEntity, "invalid skin_type"},
		{"date", func(p *profile.SavePayload) { p.DateOfBirth = "17/05/1990" }, http.StatusUnprocessableEntity, "invalid date_of_birth, expected YYYY-MM-DD"},
		{"half photo", func(p *profile.SavePayload) { p.ConcernPhotoURL = "/uploads/a.png" }, http.StatusUnprocessableEntity, "concern photo requires both url and public_id"},
		{"comma", func(p *profile.SavePayload) { p.Allergies = []string{"nuts, dairy"} }, http.StatusUnprocessableEntity, "list entries cannot contain commas"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			err := client.SaveProfile(ctx, p)
			var apiErr *remote.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.UserMessage())
			assert.True(t, apiErr.IsValidation())
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		srv, _ := setupServer(t, repository.NewMemory(), nil)
		resp, err := http.Post(srv.URL+"/api/customer-records/profile", "application/json", strings.NewReader("{"))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	srv, client := setupServer(t, repository.NewMemory(), nil)

	t.Run("image", func(t *testing.T) {
		photo, err := client.UploadAsset(ctx, profile.File{
			Name:        "cheek.png",
			ContentType: "image/png",
			Body:        bytes.NewReader(pngHeader),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, photo.AssetID)
		assert.Equal(t, "/uploads/"+photo.AssetID+".png", photo.URL)

		resp, err := http.Get(srv.URL + photo.URL)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, pngHeader, body)
	})

	t.Run("not an image", func(t *testing.T) {
		_, err := client.UploadAsset(ctx, profile.File{Name: "notes.txt", Body: strings.NewReader("hello")})
		var apiErr *remote.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, assets.ErrUnsupportedType.Error(), apiErr.UserMessage())
	})

	t.Run("too large", func(t *testing.T) {
		big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 8192)...)
		_, err := client.UploadAsset(ctx, profile.File{Name: "big.png", Body: bytes.NewReader(big)})
		var apiErr *remote.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusRequestEntityTooLarge, apiErr.StatusCode)
		assert.Equal(t, "file too large", apiErr.UserMessage())
	})

	t.Run("missing field", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("other", "x"))
		require.NoError(t, mw.Close())
		resp, err := http.Post(srv.URL+"/api/uploads", mw.FormDataContentType(), &buf)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestNewsletter(t *testing.T) {
	ctx := context.Background()
	srv, client := setupServer(t, repository.NewMemory(), nil)

	res, err := client.Subscribe(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Successfully subscribed to newsletter!", res.Message)

	res, err = client.Subscribe(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "You are already subscribed!", res.Message)

	resp, err := http.Post(srv.URL+"/api/newsletter", "application/json", strings.NewReader(`{"email":"grace@example.com"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	for _, bad := range []string{"", "not-an-email", "Ada <ada@example.com>", "ada@localhost"} {
		_, err := client.Subscribe(ctx, bad)
		var apiErr *remote.APIError
		require.ErrorAs(t, err, &apiErr, bad)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode, bad)
		assert.Equal(t, "Valid email is required", apiErr.UserMessage(), bad)
	}

	t.Run("database error", func(t *testing.T) {
		_, client := setupServer(t, brokenRepo{repository.NewMemory()}, nil)
		_, err := client.Subscribe(ctx, "ada@example.com")
		var apiErr *remote.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.True(t, apiErr.IsServer())
		assert.Equal(t, "Database error: connection refused", apiErr.UserMessage())
	})

	t.Run("rate limited", func(t *testing.T) {
		_, client := setupServer(t, repository.NewMemory(), denyAll{})
		_, err := client.Subscribe(ctx, "ada@example.com")
		var apiErr *remote.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)

		// Other routes are not limited.
		_, err = client.ListTables(ctx)
		assert.NoError(t, err)
	})
}

func TestNewsletterRateLimitKey(t *testing.T) {
	post := func(t *testing.T, h http.Handler, forwarded string) int {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/newsletter", strings.NewReader(`{"email":"ada@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "198.51.100.7:40000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	newHandler := func(t *testing.T, trustProxy bool) http.Handler {
		store, err := assets.NewDiskStore(t.TempDir(), "", nil)
		require.NoError(t, err)
		return server.New(repository.NewMemory(), store, &oncePerKey{}, nil, server.Config{TrustProxy: trustProxy}).Routes()
	}

	t.Run("forwarded header ignored by default", func(t *testing.T) {
		h := newHandler(t, false)
		var codes []int
		for _, ip := range []string{"10.0.0.0", "10.0.0.1", "10.0.0.2"} {
			codes = append(codes, post(t, h, ip))
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
	})

	t.Run("trusted proxy", func(t *testing.T) {
		h := newHandler(t, true)
		assert.Equal(t, http.StatusOK, post(t, h, "10.0.0.0"))
		assert.Equal(t, http.StatusOK, post(t, h, "10.0.0.1"))
		assert.Equal(t, http.StatusTooManyRequests, post(t, h, "10.0.0.1"))
	})
}

func TestTables(t *testing.T) {
	_, client := setupServer(t, repository.NewMemory(), nil)
	tables, err := client.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"customer_profiles", "newsletter_subscribers"}, tables)

	_, client = setupServer(t, brokenRepo{repository.NewMemory()}, nil)
	_, err = client.ListTables(context.Background())
	var apiErr *remote.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServer())
}

func TestNotFound(t *testing.T) {
	srv, _ := setupServer(t, repository.NewMemory(), nil)
	resp, err := http.Get(srv.URL + "/api/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"status":"error","message":"Endpoint not found"}`, string(body))
}

func TestEditorAgainstServer(t *testing.T) {
	ctx := context.Background()
	_, client := setupServer(t, repository.NewMemory(), nil)

	closed := false
	ctl, err := editor.New(client, editor.Options{
		SubjectID: "cust-9",
		ScopeID:   "salon-1",
		OnClose:   func() { closed = true },
	})
	require.NoError(t, err)
	require.NoError(t, ctl.Load(ctx))

	m := ctl.Model()
	require.NoError(t, m.SetScalar(profile.SkinTypeField, "oily"))
	m.AddListItem(profile.SkinIssues, "acne")
	m.AddListItem(profile.Allergies, "latex")
	require.NoError(t, ctl.Upload(ctx, profile.File{Name: "cheek.png", Body: bytes.NewReader(pngHeader)}))
	require.NoError(t, ctl.Save(ctx))
	assert.True(t, closed)
	assert.False(t, m.Dirty())

	reloaded, err := editor.New(client, editor.Options{SubjectID: "cust-9", ScopeID: "salon-1"})
	require.NoError(t, err)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, m.Profile(), reloaded.Model().Profile())
}
