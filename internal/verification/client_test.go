package verification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "canvass/pkg/domain"
)

const testID = id.IdentityNumber("9205155800086")

func TestClientVerify(t *testing.T) {
	t.Run("returns the endpoint result on success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "9205155800086", body["id_number"])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"success","identity_number":"9205155800086","ward":"Ward 12","voting_district":"VD 1234","ward_number":"12","municipality":"Johannesburg","province":"Gauteng","processing_time":"0.01 seconds"}`))
		}))
		defer srv.Close()

		res, err := NewClient(srv.URL).Verify(context.Background(), testID)
		require.NoError(t, err)
		assert.Equal(t, "Ward 12", res.Ward)
		assert.Equal(t, "VD 1234", res.VotingDistrict)
		assert.False(t, res.Simulated)
	})

	tests := []struct {
		name     string
		status   int
		body     string
		category ErrorCategory
	}{
		{"non-2xx", http.StatusBadGateway, `{"error":"upstream"}`, ErrorHTTPStatus},
		{"non-success status", http.StatusOK, `{"status":"error","error":"IEC timeout"}`, ErrorRejected},
		{"garbage body", http.StatusOK, `<html>`, ErrorBadData},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).Verify(context.Background(), testID)
			require.Error(t, err)
			assert.Equal(t, tc.category, CategoryOf(err))
		})
	}

	t.Run("unreachable endpoint is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewClient(url).Verify(context.Background(), testID)
		require.Error(t, err)
		assert.Equal(t, ErrorTransport, CategoryOf(err))

		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Contains(t, te.Error(), "request failed")
	})
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, ErrorCategory(""), CategoryOf(assert.AnError))
	assert.Equal(t, ErrorRejected, CategoryOf(newTransportError(ErrorRejected, "x", nil)))
}
