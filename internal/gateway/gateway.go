// Package gateway owns the operator session and every call the collector makes
// to the outside: authentication, identity verification, record persistence
// and the connectivity probe.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"canvass/internal/audit"
	"canvass/internal/domain"
	gwmetrics "canvass/internal/gateway/metrics"
	"canvass/internal/platform/hosted"
	"canvass/internal/verification"
	id "canvass/pkg/domain"
	dErrors "canvass/pkg/domain-errors"
	"canvass/pkg/platform/sentinel"
	"canvass/pkg/requestcontext"
)

// AuthProvider establishes and invalidates operator sessions.
type AuthProvider interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context, session *domain.Session) error
}

// RecordStore persists submitted records.
type RecordStore interface {
	Insert(ctx context.Context, record domain.VoterRecord) (domain.VoterRecord, error)
	Probe(ctx context.Context) error
}

// SessionStore keeps the session across restarts.
type SessionStore interface {
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Clear(ctx context.Context) error
}

// Verifier looks up an identity number.
type Verifier interface {
	Verify(ctx context.Context, n id.IdentityNumber) (domain.VerificationResult, error)
}

// AuditPublisher receives audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const (
	MessageConnected       = "Connected to the record store successfully"
	messageConnectFailed   = "Record store connection failed: "
	messageMissingSession  = "You must be signed in to submit a record"
	messageMissingCreds    = "Email and password are required"
	messageMalformedEmail  = "Email address is not valid"
	messageSessionRestored = "Stored session could not be restored"
)

type Gateway struct {
	auth     AuthProvider
	records  RecordStore
	sessions SessionStore
	verifier Verifier

	auditor AuditPublisher
	metrics *gwmetrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time

	session *domain.Session
}

type Option func(*Gateway)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

func WithMetrics(m *gwmetrics.Metrics) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(g *Gateway) {
		g.auditor = p
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(g *Gateway) {
		g.tracer = t
	}
}

func New(auth AuthProvider, records RecordStore, sessions SessionStore, verifier Verifier, opts ...Option) (*Gateway, error) {
	switch {
	case auth == nil:
		return nil, errors.New("auth provider is required")
	case records == nil:
		return nil, errors.New("record store is required")
	case sessions == nil:
		return nil, errors.New("session store is required")
	case verifier == nil:
		return nil, errors.New("verifier is required")
	}
	g := &Gateway{
		auth:     auth,
		records:  records,
		sessions: sessions,
		verifier: verifier,
		logger:   slog.Default(),
		tracer:   otel.Tracer("canvass/gateway"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Session returns the signed-in operator, or nil.
func (g *Gateway) Session() *domain.Session {
	return g.session
}

func (g *Gateway) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, messageMissingCreds)
	}
	if !govalidator.IsEmail(email) {
		return nil, dErrors.New(dErrors.CodeValidation, messageMalformedEmail)
	}

	session, err := g.auth.SignIn(ctx, email, password)
	if err != nil {
		msg := providerMessage(err)
		g.metrics.IncSignIn(gwmetrics.OutcomeFailure)
		g.emit(ctx, audit.Event{Action: audit.ActionSignInFailed, Operator: email, Reason: msg})
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, msg)
	}

	g.session = session
	if err := g.sessions.Save(ctx, session); err != nil {
		g.logger.WarnContext(ctx, "failed to store session locally", "error", err)
	}
	g.metrics.IncSignIn(gwmetrics.OutcomeSuccess)
	g.emit(ctx, audit.Event{Action: audit.ActionSignedIn, Operator: session.Email})
	return session, nil
}

// SignOut ends the session locally whatever the auth service answers.
func (g *Gateway) SignOut(ctx context.Context) {
	session := g.session
	g.session = nil

	if session != nil {
		if err := g.auth.SignOut(ctx, session); err != nil {
			g.logger.WarnContext(ctx, "remote sign-out failed", "error", err)
		}
	}
	if err := g.sessions.Clear(ctx); err != nil {
		g.logger.WarnContext(ctx, "failed to clear stored session", "error", err)
	}
	if session != nil {
		g.emit(ctx, audit.Event{Action: audit.ActionSignedOut, Operator: session.Email})
	}
}

// RestoreSession loads the stored session without contacting the auth
// service. Nothing stored returns (nil, nil). An undecodable or locally
// expired entry is cleared and reported with CodeSessionCorrupt; the
// collector carries on signed out.
func (g *Gateway) RestoreSession(ctx context.Context) (*domain.Session, error) {
	session, err := g.sessions.Load(ctx)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, nil
	case errors.Is(err, sentinel.ErrCorrupt):
		g.discard(ctx, err.Error())
		return nil, dErrors.Wrap(err, dErrors.CodeSessionCorrupt, messageSessionRestored)
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeSessionCorrupt, messageSessionRestored)
	}

	if session.Expired(g.now()) {
		g.discard(ctx, "session expired")
		return nil, dErrors.New(dErrors.CodeSessionCorrupt, "Stored session has expired")
	}

	g.session = session
	g.emit(ctx, audit.Event{Action: audit.ActionSessionRestored, Operator: session.Email})
	return session, nil
}

func (g *Gateway) discard(ctx context.Context, reason string) {
	g.logger.WarnContext(ctx, "discarding stored session", "reason", reason)
	if err := g.sessions.Clear(ctx); err != nil {
		g.logger.WarnContext(ctx, "failed to clear stored session", "error", err)
	}
	g.emit(ctx, audit.Event{Action: audit.ActionSessionDiscarded, Reason: reason})
}

// VerifyIdentity validates raw and performs one lookup. Any lookup failure
// degrades to the simulated result; only a malformed identity number is an error.
func (g *Gateway) VerifyIdentity(ctx context.Context, raw string) (domain.VerificationResult, error) {
	n, err := id.ParseIdentityNumber(raw)
	if err != nil {
		return domain.VerificationResult{}, err
	}

	ctx, span := g.tracer.Start(ctx, "gateway.VerifyIdentity")
	defer span.End()

	operator := g.operator()
	result, err := g.verifier.Verify(ctx, n)
	if err != nil {
		g.logger.WarnContext(ctx, "verification unavailable, using simulated data",
			"error", err,
			"category", string(verification.CategoryOf(err)),
			"identity_number", n.Redacted(),
		)
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("verification.simulated", true))
		g.metrics.IncVerification(gwmetrics.OutcomeSimulated)
		g.emit(ctx, audit.Event{
			Action:   audit.ActionVerificationSimulated,
			Operator: operator,
			Subject:  n.Redacted(),
			Reason:   err.Error(),
		})
		return verification.Simulate(n, g.now()), nil
	}

	span.SetAttributes(attribute.Bool("verification.simulated", false))
	g.metrics.IncVerification(gwmetrics.OutcomeSuccess)
	g.emit(ctx, audit.Event{Action: audit.ActionVerified, Operator: operator, Subject: n.Redacted()})
	return result, nil
}

// Persist inserts record once. There is no retry.
func (g *Gateway) Persist(ctx context.Context, record domain.VoterRecord) (domain.VoterRecord, error) {
	if g.session == nil {
		return domain.VoterRecord{}, dErrors.New(dErrors.CodeUnauthorized, messageMissingSession)
	}
	ctx = requestcontext.WithOperator(ctx, g.session.Email)
	ctx = requestcontext.WithAccessToken(ctx, g.session.AccessToken)

	ctx, span := g.tracer.Start(ctx, "gateway.Persist")
	defer span.End()

	subject := id.IdentityNumber(record.IDNumber).Redacted()
	stored, err := g.records.Insert(ctx, record)
	if err != nil {
		msg := providerMessage(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		g.logger.ErrorContext(ctx, "failed to persist record", "error", err, "identity_number", subject)
		g.metrics.IncRecord(gwmetrics.OutcomeFailure)
		g.emit(ctx, audit.Event{
			Action:   audit.ActionRecordRejected,
			Operator: g.session.Email,
			Subject:  subject,
			Reason:   msg,
		})
		return domain.VoterRecord{}, dErrors.Wrap(err, dErrors.CodePersistFailed, msg)
	}

	span.SetAttributes(attribute.String("record.id", string(stored.ID)))
	g.metrics.IncRecord(gwmetrics.OutcomeSuccess)
	g.emit(ctx, audit.Event{Action: audit.ActionRecordSubmitted, Operator: g.session.Email, Subject: string(stored.ID)})
	return stored, nil
}

// Connectivity is the transient result of a store probe.
type Connectivity struct {
	OK      bool
	Message string
}

// CheckConnectivity probes the record store read-only. It never gates other operations.
func (g *Gateway) CheckConnectivity(ctx context.Context) Connectivity {
	if g.session != nil {
		ctx = requestcontext.WithAccessToken(ctx, g.session.AccessToken)
	}
	if err := g.records.Probe(ctx); err != nil {
		g.logger.WarnContext(ctx, "record store probe failed", "error", err)
		return Connectivity{Message: messageConnectFailed + providerMessage(err)}
	}
	return Connectivity{OK: true, Message: MessageConnected}
}

func (g *Gateway) operator() string {
	if g.session == nil {
		return ""
	}
	return g.session.Email
}

func (g *Gateway) emit(ctx context.Context, event audit.Event) {
	if g.auditor == nil {
		return
	}
	event = audit.Stamp(event, g.now())
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if err := g.auditor.Emit(ctx, event); err != nil {
		g.logger.WarnContext(ctx, "failed to emit audit event", "action", string(event.Action), "error", err)
	}
}

// providerMessage is the text shown to the operator for a backend failure.
func providerMessage(err error) string {
	var apiErr *hosted.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
