package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"canvass/internal/domain"
	id "canvass/pkg/domain"
	"canvass/pkg/platform/httputil"
	"canvass/pkg/requestcontext"
)

const maxBodyBytes = 1 << 16

// Service resolves an identity number to a verification result.
type Service interface {
	Verify(ctx context.Context, n id.IdentityNumber) (domain.VerificationResult, error)
}

// Handler serves the verification endpoint and its health check.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts /verify-voter and /health. /verify-voter accepts every
// method so it can answer preflight and 405 itself; verifyMW wraps only that route.
func (h *Handler) Register(r chi.Router, verifyMW ...func(http.Handler) http.Handler) {
	r.With(verifyMW...).HandleFunc("/verify-voter", h.handleVerify)
	r.Get("/health", h.handleHealth)
}

type verifyRequest struct {
	IDNumber string `json:"id_number"`
}

type errorBody struct {
	Status string `json:"status,omitempty"`
	Error  string `json:"error"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
		return
	}

	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	var req verifyRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && err != io.EOF {
		h.logger.WarnContext(ctx, "invalid verify request body",
			"request_id", requestID,
			"error", err.Error(),
		)
	}
	if req.IDNumber == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, errorBody{Error: "ID number is required"})
		return
	}

	n, err := id.ParseIdentityNumber(req.IDNumber)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, errorBody{Status: domain.VerificationError, Error: "Invalid ID number format"})
		return
	}

	result, err := h.service.Verify(ctx, n)
	if err != nil {
		h.logger.ErrorContext(ctx, "voter lookup failed",
			"request_id", requestID,
			"id_number", n.Redacted(),
			"error", err.Error(),
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, errorBody{Status: domain.VerificationError, Error: err.Error()})
		return
	}

	result.ProcessingTime = fmt.Sprintf("%.2f seconds", time.Since(start).Seconds())
	h.logger.InfoContext(ctx, "voter lookup served",
		"request_id", requestID,
		"id_number", n.Redacted(),
		"processing_time", result.ProcessingTime,
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

type healthBody struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, healthBody{Status: "healthy", Service: "Voter Verification API"})
}
