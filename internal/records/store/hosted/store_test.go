package hosted

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvass/internal/domain"
	"canvass/internal/platform/hosted"
)

func TestStoreInsert(t *testing.T) {
	collectedAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	t.Run("posts record and returns representation", func(t *testing.T) {
		var posted []map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/rest/v1/voter_profiles", r.URL.Path)
			assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
			raw, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(raw, &posted))

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`[{"id":41,"id_number":"9205155800086","collected_by":"field@example.org",
				"collected_at":"2026-03-01T09:30:00Z","created_at":"2026-03-01T09:30:01Z","change_station":"no"}]`))
		}))
		defer srv.Close()

		s := New(hosted.New(srv.URL, "anon"))
		stored, err := s.Insert(context.Background(), domain.VoterRecord{
			IDNumber:      "9205155800086",
			ChangeStation: "no",
			CollectedBy:   "field@example.org",
			CollectedAt:   collectedAt,
		})
		require.NoError(t, err)

		require.Len(t, posted, 1)
		assert.Equal(t, "9205155800086", posted[0]["id_number"])
		assert.NotContains(t, posted[0], "id")
		assert.NotContains(t, posted[0], "created_at")

		assert.Equal(t, domain.RecordID("41"), stored.ID)
		assert.Equal(t, collectedAt.Add(time.Second), stored.CreatedAt)
	})

	t.Run("rejection carries server message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"JWT expired"}`))
		}))
		defer srv.Close()

		_, err := New(hosted.New(srv.URL, "anon")).Insert(context.Background(), domain.VoterRecord{})
		var apiErr *hosted.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Contains(t, err.Error(), "JWT expired")
	})
}

func TestStoreProbe(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`[{"count":3}]`))
	}))
	defer srv.Close()

	require.NoError(t, New(hosted.New(srv.URL, "anon")).Probe(context.Background()))
	assert.Equal(t, "select=count&limit=1", query)
}
