// Package collector is the application context of the operator console. App
// owns the wizard and the gateway for the lifetime of the process; the
// console only forwards operator input to it.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"canvass/internal/domain"
	"canvass/internal/gateway"
	"canvass/internal/wizard"
	dErrors "canvass/pkg/domain-errors"
)

const (
	msgVerifying       = "Verifying identity... This may take 20-30 seconds"
	msgVerified        = "Voter verification successful!"
	msgSimulated       = "Verification service unavailable. Using simulated data."
	msgUnconfirmed     = "Verification returned unconfirmed data. Check the details with the voter."
	msgInvalidID       = "Please enter a valid 13-digit ID number"
	msgConsentRequired = "Consent is required before submitting"
	msgSaved           = "Data successfully saved to database"
	msgSaveFailed      = "Error saving to database: "
	msgLoggingIn       = "Logging in..."
	msgLoginFailed     = "Login error: "
	msgLoggedOut       = "Logged out successfully"
	msgReset           = "Form reset for new entry"
	msgDownload        = "Profile download started"
)

type App struct {
	wizard   *wizard.Wizard
	gateway  *gateway.Gateway
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*App)

func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

func New(w *wizard.Wizard, g *gateway.Gateway, n Notifier, opts ...Option) *App {
	a := &App{
		wizard:   w,
		gateway:  g,
		notifier: n,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Wizard exposes the wizard for rendering.
func (a *App) Wizard() *wizard.Wizard {
	return a.wizard
}

func (a *App) Session() *domain.Session {
	return a.gateway.Session()
}

// Start restores a stored session and, when one is found, probes the record
// store. A restore failure is shown as a warning and the app continues signed
// out; the wizard always starts at step 1.
func (a *App) Start(ctx context.Context) *domain.Session {
	session, err := a.gateway.RestoreSession(ctx)
	if err != nil {
		a.notifier.Notify(LevelWarning, dErrors.MessageOf(err))
		return nil
	}
	if session != nil {
		a.CheckConnectivity(ctx)
	}
	return session
}

// SignIn authenticates and then probes the record store.
func (a *App) SignIn(ctx context.Context, email, password string) error {
	if !(domain.Credentials{Email: email, Password: password}).Complete() {
		err := dErrors.New(dErrors.CodeValidation, "Please enter both email and password")
		a.notifier.Notify(LevelWarning, dErrors.MessageOf(err))
		return err
	}
	a.notifier.Notify(LevelWarning, msgLoggingIn)

	session, err := a.gateway.SignIn(ctx, email, password)
	if err != nil {
		a.notifier.Notify(LevelError, msgLoginFailed+dErrors.MessageOf(err))
		return err
	}
	a.notifier.Notify(LevelSuccess, fmt.Sprintf("Welcome back, %s!", session.Email))
	a.CheckConnectivity(ctx)
	return nil
}

func (a *App) CheckConnectivity(ctx context.Context) gateway.Connectivity {
	c := a.gateway.CheckConnectivity(ctx)
	if c.OK {
		a.notifier.Notify(LevelSuccess, c.Message)
	} else {
		a.notifier.Notify(LevelError, c.Message)
	}
	return c
}

// SignOut ends the session and starts a blank entry.
func (a *App) SignOut(ctx context.Context) {
	a.gateway.SignOut(ctx)
	a.wizard.Reset()
	a.notifier.Notify(LevelSuccess, msgLoggedOut)
}

func (a *App) GoToStep(n int) bool {
	return a.wizard.GoToStep(n)
}

func (a *App) Next() bool {
	return a.wizard.Next()
}

func (a *App) Back() bool {
	return a.wizard.Back()
}

func (a *App) SetField(name, value string) error {
	if err := a.wizard.SetField(name, value); err != nil {
		a.notifier.Notify(LevelWarning, dErrors.MessageOf(err))
		return err
	}
	return nil
}

// Verify looks up the identity number currently entered and merges the
// result, real or simulated, into the verification step.
func (a *App) Verify(ctx context.Context) (domain.VerificationResult, error) {
	raw, _ := a.wizard.Field(wizard.FieldIDNumber)
	if err := wizard.ValidateIdentityNumber(raw); err != nil {
		a.notifier.Notify(LevelWarning, msgInvalidID)
		return domain.VerificationResult{}, err
	}

	a.notifier.Notify(LevelWarning, msgVerifying)
	result, err := a.gateway.VerifyIdentity(ctx, raw)
	if err != nil {
		a.notifier.Notify(LevelError, dErrors.MessageOf(err))
		return domain.VerificationResult{}, err
	}
	a.wizard.ApplyVerification(result)
	if result.Note != "" {
		a.notifier.Notify(LevelWarning, result.Note)
	}
	switch {
	case result.Simulated:
		a.notifier.Notify(LevelWarning, msgSimulated)
	case result.Provisional():
		a.notifier.Notify(LevelWarning, msgUnconfirmed)
	default:
		a.notifier.Notify(LevelSuccess, msgVerified)
	}
	return result, nil
}

// ShowSummary moves to the summary step.
func (a *App) ShowSummary() wizard.Summary {
	a.wizard.GoToStep(wizard.StepSummary)
	return a.wizard.Summary()
}

// Submit shows the confirmation step, then assembles and persists the record
// once. A failed save is reported and not retried.
func (a *App) Submit(ctx context.Context) (domain.VoterRecord, error) {
	if !a.wizard.CanSubmit() {
		a.notifier.Notify(LevelWarning, msgConsentRequired)
		return domain.VoterRecord{}, dErrors.New(dErrors.CodeValidation, msgConsentRequired)
	}

	a.wizard.GoToStep(wizard.StepConfirmation)
	record, err := a.wizard.AssembleRecord(a.gateway.Session(), a.now())
	if err != nil {
		a.notifier.Notify(LevelError, msgSaveFailed+dErrors.MessageOf(err))
		return domain.VoterRecord{}, err
	}

	stored, err := a.gateway.Persist(ctx, record)
	if err != nil {
		a.notifier.Notify(LevelError, msgSaveFailed+dErrors.MessageOf(err))
		return domain.VoterRecord{}, err
	}
	a.notifier.Notify(LevelSuccess, msgSaved)
	return stored, nil
}

// DownloadProfile only acknowledges the request; no document is produced.
func (a *App) DownloadProfile() {
	a.notifier.Notify(LevelSuccess, msgDownload)
}

func (a *App) NewEntry() {
	a.wizard.Reset()
	a.notifier.Notify(LevelSuccess, msgReset)
}
