package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"canvass/internal/domain"
	"canvass/internal/platform/logger"
	"canvass/internal/verification/lookup"
	id "canvass/pkg/domain"
	"canvass/pkg/testutil"
)

type failingService struct{}

func (failingService) Verify(context.Context, id.IdentityNumber) (domain.VerificationResult, error) {
	return domain.VerificationResult{}, errors.New("registry unreachable")
}

type HandlerSuite struct {
	suite.Suite
	router chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.router = chi.NewRouter()
	New(lookup.NewService(lookup.CannedSource{}), logger.Discard()).Register(s.router)
}

func (s *HandlerSuite) TestVerifySuccess() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/verify-voter", map[string]string{"id_number": "9205155800086"})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	res := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
	body := *res
	s.Equal("success", body["status"])
	s.Equal("9205155800086", body["identity_number"])
	s.Equal("Ward 12", body["ward"])
	s.Equal("VD 1234", body["voting_district"])
	s.Equal("12", body["ward_number"])
	s.Equal("Johannesburg", body["municipality"])
	s.Equal("Gauteng", body["province"])
	s.Contains(body["processing_time"], "seconds")
	s.Contains(body["note"], "simulated data")
}

func (s *HandlerSuite) TestMissingIDNumber() {
	for _, body := range []string{`{}`, `{"id_number":""}`, ``} {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, "/verify-voter", body))

		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		s.Equal(map[string]string{"error": "ID number is required"}, testutil.UnmarshalErrorResponse(s.T(), rr))
	}
}

func (s *HandlerSuite) TestInvalidIDNumber() {
	for _, idNumber := range []string{"123", "92051558000AB", "92051558000861"} {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/verify-voter", map[string]string{"id_number": idNumber})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		s.Equal(map[string]string{"status": "error", "error": "Invalid ID number format"}, testutil.UnmarshalErrorResponse(s.T(), rr))
	}
}

func (s *HandlerSuite) TestMethodNotAllowed() {
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), method, "/verify-voter"))

		testutil.AssertStatus(s.T(), rr, http.StatusMethodNotAllowed)
		testutil.AssertErrorCode(s.T(), rr, "Method not allowed")
	}
}

func (s *HandlerSuite) TestPreflight() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodOptions, "/verify-voter"))

	testutil.AssertStatusOK(s.T(), rr)
	s.Zero(rr.Body.Len())
}

func (s *HandlerSuite) TestHealth() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/health"))

	testutil.AssertStatusOK(s.T(), rr)
	s.Equal(map[string]string{"status": "healthy", "service": "Voter Verification API"}, testutil.UnmarshalStringMap(s.T(), rr))
}

func TestLookupFailure(t *testing.T) {
	r := chi.NewRouter()
	New(failingService{}, logger.Discard()).Register(r)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/verify-voter", map[string]string{"id_number": "9205155800086"})
	rr := testutil.DoRequest(r, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	body := testutil.UnmarshalErrorResponse(t, rr)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "registry unreachable", body["error"])
}
