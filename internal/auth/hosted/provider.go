// Package hosted signs operators in against a GoTrue-compatible auth service.
package hosted

import (
	"context"
	"net/http"
	"time"

	"canvass/internal/domain"
	"canvass/internal/platform/hosted"
)

type Provider struct {
	client *hosted.Client
	now    func() time.Time
}

func New(client *hosted.Client) *Provider {
	return &Provider{client: client, now: time.Now}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// SignIn exchanges email and password for a session. Rejections come back
// as *hosted.APIError carrying the service's message.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	var resp tokenResponse
	err := p.client.Do(ctx, hosted.Request{
		Method: http.MethodPost,
		Path:   "/auth/v1/token?grant_type=password",
		Body:   map[string]string{"email": email, "password": password},
	}, &resp)
	if err != nil {
		return nil, err
	}

	now := p.now().UTC()
	session := &domain.Session{
		UserID:       resp.User.ID,
		Email:        resp.User.Email,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		CreatedAt:    now,
	}
	if session.Email == "" {
		session.Email = email
	}
	switch {
	case resp.ExpiresAt > 0:
		session.ExpiresAt = time.Unix(resp.ExpiresAt, 0).UTC()
	case resp.ExpiresIn > 0:
		session.ExpiresAt = now.Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return session, nil
}

// SignOut invalidates the session's token on the service.
func (p *Provider) SignOut(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return nil
	}
	return p.client.Do(ctx, hosted.Request{
		Method: http.MethodPost,
		Path:   "/auth/v1/logout",
		Bearer: session.AccessToken,
	}, nil)
}
