// Package directory authenticates operators against a Postgres table of
// bcrypt password hashes and issues signed access tokens.
package directory

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"canvass/internal/auth/token"
	"canvass/internal/domain"
	dErrors "canvass/pkg/domain-errors"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

var errInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "Invalid login credentials")

type Directory struct {
	db     *sql.DB
	tokens *token.Issuer
	ttl    time.Duration
	now    func() time.Time
}

func New(db *sql.DB, tokens *token.Issuer, ttl time.Duration) *Directory {
	return &Directory{db: db, tokens: tokens, ttl: ttl, now: time.Now}
}

func (d *Directory) EnsureSchema(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure operator schema: %w", err)
	}
	return nil
}

// AddOperator registers an operator. Emails are stored lower-cased.
func (d *Directory) AddOperator(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "password is too long")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}

	id := uuid.NewString()
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO operators (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		id, email, string(hash), d.now().UTC())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return "", dErrors.New(dErrors.CodeConflict, "operator already exists")
		}
		return "", fmt.Errorf("insert operator: %w", err)
	}
	return id, nil
}

// SignIn checks the password and records the issued token so it can be revoked.
// Unknown email and wrong password give the same error.
func (d *Directory) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	email = normalizeEmail(email)

	var id, hash string
	err := d.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM operators WHERE email = $1`, email,
	).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("find operator: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	raw, claims, err := d.tokens.Issue(id, email, d.ttl)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO operator_sessions (jti, operator_id, issued_at, expires_at) VALUES ($1, $2, $3, $4)`,
		claims.ID, id, claims.IssuedAt.Time, claims.ExpiresAt.Time)
	if err != nil {
		return nil, fmt.Errorf("record operator session: %w", err)
	}

	return &domain.Session{
		UserID:      id,
		Email:       email,
		AccessToken: raw,
		ExpiresAt:   claims.ExpiresAt.Time,
		CreatedAt:   claims.IssuedAt.Time,
	}, nil
}

// SignOut revokes the session's token.
func (d *Directory) SignOut(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return nil
	}
	claims, err := d.tokens.Parse(session.AccessToken)
	if err != nil {
		return err
	}
	_, err = d.db.ExecContext(ctx,
		`UPDATE operator_sessions SET revoked_at = $1 WHERE jti = $2 AND revoked_at IS NULL`,
		d.now().UTC(), claims.ID)
	if err != nil {
		return fmt.Errorf("revoke operator session: %w", err)
	}
	return nil
}

// Active reports whether the token is valid and not revoked.
func (d *Directory) Active(ctx context.Context, accessToken string) (bool, error) {
	claims, err := d.tokens.Parse(accessToken)
	if err != nil {
		return false, nil
	}
	var revoked bool
	err = d.db.QueryRowContext(ctx,
		`SELECT revoked_at IS NOT NULL FROM operator_sessions WHERE jti = $1`, claims.ID,
	).Scan(&revoked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check operator session: %w", err)
	}
	return !revoked, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
