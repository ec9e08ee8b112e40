package hosted

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvass/internal/domain"
	"canvass/internal/platform/hosted"
)

func TestProviderSignIn(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("password grant", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/token", r.URL.Path)
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "field@example.org", body["email"])
			assert.Equal(t, "pw", body["password"])
			_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":3600,
				"user":{"id":"u-1","email":"field@example.org"}}`))
		}))
		defer srv.Close()

		p := New(hosted.New(srv.URL, "anon"))
		p.now = func() time.Time { return fixed }

		session, err := p.SignIn(context.Background(), "field@example.org", "pw")
		require.NoError(t, err)
		assert.Equal(t, &domain.Session{
			UserID:       "u-1",
			Email:        "field@example.org",
			AccessToken:  "at",
			RefreshToken: "rt",
			ExpiresAt:    fixed.Add(time.Hour),
			CreatedAt:    fixed,
		}, session)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
		}))
		defer srv.Close()

		_, err := New(hosted.New(srv.URL, "anon")).SignIn(context.Background(), "a@b.c", "x")
		var apiErr *hosted.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "Invalid login credentials", apiErr.Message)
	})
}

func TestProviderSignOut(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := New(hosted.New(srv.URL, "anon"))
	require.NoError(t, p.SignOut(context.Background(), &domain.Session{AccessToken: "at"}))
	assert.Equal(t, "Bearer at", auth)
	assert.NoError(t, p.SignOut(context.Background(), nil))
}
