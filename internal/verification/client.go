// Package verification calls the identity-verification endpoint and provides
// the simulated fallback used when that call fails.
package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"canvass/internal/domain"
	id "canvass/pkg/domain"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// Client posts identity numbers to the verification endpoint. It sets no
// timeout: lookups can legitimately take 20-30 seconds.
type Client struct {
	url  string
	http *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.http = c
	}
}

func NewClient(url string, opts ...ClientOption) *Client {
	c := &Client{url: url, http: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type verifyRequest struct {
	IDNumber string `json:"id_number"`
}

// Verify performs one lookup. Any failure, including a 2xx answer whose
// status is not "success", is returned as a *TransportError.
func (c *Client) Verify(ctx context.Context, n id.IdentityNumber) (domain.VerificationResult, error) {
	body, err := json.Marshal(verifyRequest{IDNumber: n.String()})
	if err != nil {
		return domain.VerificationResult{}, newTransportError(ErrorBadData, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return domain.VerificationResult{}, newTransportError(ErrorTransport, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.VerificationResult{}, newTransportError(ErrorTransport, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		te := newTransportError(ErrorHTTPStatus, fmt.Sprintf("HTTP error! status: %d", resp.StatusCode), nil)
		te.StatusCode = resp.StatusCode
		return domain.VerificationResult{}, te
	}

	var result domain.VerificationResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result); err != nil {
		return domain.VerificationResult{}, newTransportError(ErrorBadData, "decode response", err)
	}
	if !result.Succeeded() {
		msg := result.Error
		if msg == "" {
			msg = "Unknown error"
		}
		return domain.VerificationResult{}, newTransportError(ErrorRejected, msg, nil)
	}
	if result.IdentityNumber == "" {
		result.IdentityNumber = n.String()
	}
	return result, nil
}
