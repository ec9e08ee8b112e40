// Package session keeps the signed-in operator across restarts. Every store
// holds at most one session. Load returns sentinel.ErrNotFound when nothing
// is stored and an error wrapping sentinel.ErrCorrupt when the stored bytes
// cannot be decoded.
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"canvass/internal/domain"
	"canvass/pkg/platform/sentinel"
)

func decode(payload []byte) (*domain.Session, error) {
	var s domain.Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", errors.Join(sentinel.ErrCorrupt, err))
	}
	if s.Email == "" || s.AccessToken == "" {
		return nil, fmt.Errorf("decode session: %w: missing email or token", sentinel.ErrCorrupt)
	}
	return &s, nil
}

func encode(s *domain.Session) ([]byte, error) {
	if s == nil {
		return nil, errors.New("session is required")
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return payload, nil
}
