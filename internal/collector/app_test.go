package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvass/internal/audit"
	"canvass/internal/domain"
	"canvass/internal/gateway"
	"canvass/internal/platform/logger"
	recordstore "canvass/internal/records/store"
	"canvass/internal/session"
	"canvass/internal/verification"
	"canvass/internal/verification/handler"
	"canvass/internal/verification/lookup"
	"canvass/internal/wizard"
	dErrors "canvass/pkg/domain-errors"
	"canvass/pkg/testutil"
)

// stubAuth accepts one password for any email.
type stubAuth struct {
	password   string
	signedOut  int
	signOutErr error
}

func (a *stubAuth) SignIn(_ context.Context, email, password string) (*domain.Session, error) {
	if password != a.password {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid login credentials")
	}
	return &domain.Session{UserID: "u-1", Email: email, AccessToken: "at"}, nil
}

func (a *stubAuth) SignOut(context.Context, *domain.Session) error {
	a.signedOut++
	return a.signOutErr
}

type fixture struct {
	app      *App
	notes    *Recorder
	records  *recordstore.InMemoryStore
	sessions *session.MemoryStore
	auth     *stubAuth
	auditor  *audit.MemoryPublisher
	now      time.Time
}

func newFixture(t *testing.T, verifierURL string) *fixture {
	t.Helper()
	f := &fixture{
		notes:    &Recorder{},
		records:  recordstore.NewInMemory(),
		sessions: session.NewMemoryStore(),
		auth:     &stubAuth{password: "pw"},
		auditor:  audit.NewMemoryPublisher(),
		now:      time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	gw, err := gateway.New(f.auth, f.records, f.sessions, verification.NewClient(verifierURL),
		gateway.WithLogger(logger.Discard()),
		gateway.WithAuditPublisher(f.auditor),
		gateway.WithClock(clock),
	)
	require.NoError(t, err)
	f.app = New(wizard.New(wizard.WithClock(clock)), gw, f.notes, WithLogger(logger.Discard()), WithClock(clock))
	return f
}

// deadURL points at a server that is already closed.
func deadURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	return srv.URL + "/verify-voter"
}

func TestCollectFlowWithUnavailableVerifier(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, deadURL())

	testutil.Given(t, "a signed-in operator", func(t *testing.T) {
		require.Nil(t, f.app.Start(ctx))
		require.NoError(t, f.app.SignIn(ctx, "field@example.org", "pw"))
		assert.Equal(t, LevelSuccess, f.notes.Last().Level)
		assert.Equal(t, gateway.MessageConnected, f.notes.Last().Message)

		testutil.When(t, "the identity lookup cannot reach the endpoint", func(t *testing.T) {
			require.True(t, f.app.GoToStep(wizard.StepIdentity))
			require.NoError(t, f.app.SetField(wizard.FieldIDNumber, "9205155800086"))
			result, err := f.app.Verify(ctx)
			require.NoError(t, err)

			testutil.Then(t, "simulated data fills the verification step", func(t *testing.T) {
				assert.True(t, result.Simulated)
				assert.Equal(t, Notification{Level: LevelWarning, Message: msgSimulated}, f.notes.Last())
				fields := f.app.Wizard().Fields()
				assert.Equal(t, "Ward 9", fields.Ward)
				assert.Equal(t, "District 1", fields.VotingDistrict)
				assert.Equal(t, "Station 9", fields.VotingStation)
				assert.Equal(t, "Simulated Voter Name", fields.FullName)
				assert.Equal(t, "Age: 32", fields.Age)
			})

			testutil.And(t, "the degraded lookup is audited", func(t *testing.T) {
				assert.Contains(t, f.auditor.Actions(), audit.ActionVerificationSimulated)
			})
		})

		testutil.When(t, "the remaining steps are filled and the record submitted", func(t *testing.T) {
			for name, value := range map[string]string{
				wizard.FieldGender:             "female",
				wizard.FieldMaritalStatus:      "single",
				wizard.FieldHouseholdSize:      "4",
				wizard.FieldHousingType:        "formal",
				wizard.FieldPriority:           "water_sanitation",
				wizard.FieldWantsNotifications: "yes",
				wizard.FieldConsent:            "yes",
			} {
				require.NoError(t, f.app.SetField(name, value), name)
			}
			summary := f.app.ShowSummary()
			assert.Equal(t, wizard.StepSummary, f.app.Wizard().CurrentStep())
			assert.Equal(t, "water_sanitation", summary.Priority)

			assemblyStart := f.now
			stored, err := f.app.Submit(ctx)
			require.NoError(t, err)

			testutil.Then(t, "the stored record names the operator and assembly time", func(t *testing.T) {
				assert.Equal(t, wizard.StepConfirmation, f.app.Wizard().CurrentStep())
				assert.Equal(t, "field@example.org", stored.CollectedBy)
				assert.False(t, stored.CollectedAt.Before(assemblyStart))
				assert.True(t, stored.VerificationSimulated)
				assert.Equal(t, "no", stored.ChangeStation)
				assert.NotEmpty(t, stored.ID)

				records := f.records.Records()
				require.Len(t, records, 1)
				assert.Equal(t, stored, records[0])
				assert.Equal(t, msgSaved, f.notes.Last().Message)
			})
		})

		testutil.When(t, "a new entry is started", func(t *testing.T) {
			f.app.NewEntry()

			testutil.Then(t, "the wizard is blank and the stored record is unchanged", func(t *testing.T) {
				assert.Equal(t, wizard.StepWelcome, f.app.Wizard().CurrentStep())
				assert.Nil(t, f.app.Wizard().Verification())
				assert.Equal(t, "9205155800086", f.records.Records()[0].IDNumber)
			})
		})
	})

	assert.Contains(t, f.auditor.Actions(), audit.ActionVerificationSimulated)
	assert.Contains(t, f.auditor.Actions(), audit.ActionRecordSubmitted)
}

func TestVerifyWithRealEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","id_number":"9205155800086","ward":"Ward 12",
			"voting_district":"VD 1234","voting_station":"12","age":32}`))
	}))
	defer srv.Close()

	f := newFixture(t, srv.URL)
	require.NoError(t, f.app.SetField(wizard.FieldIDNumber, "9205155800086"))

	result, err := f.app.Verify(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Simulated)
	assert.Equal(t, msgVerified, f.notes.Last().Message)
	assert.Equal(t, "Verified Voter", f.app.Wizard().Fields().FullName)
}

func TestVerifyAgainstCannedEndpoint(t *testing.T) {
	r := chi.NewRouter()
	handler.New(lookup.NewService(lookup.CannedSource{}), logger.Discard()).Register(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx := context.Background()
	f := newFixture(t, srv.URL+"/verify-voter")

	testutil.Given(t, "a verifier answering with canned data", func(t *testing.T) {
		require.NoError(t, f.app.SignIn(ctx, "field@example.org", "pw"))
		require.NoError(t, f.app.SetField(wizard.FieldIDNumber, "9205155800086"))

		testutil.When(t, "the identity is verified", func(t *testing.T) {
			result, err := f.app.Verify(ctx)
			require.NoError(t, err)

			testutil.Then(t, "the endpoint note is shown and success is not announced", func(t *testing.T) {
				assert.False(t, result.Simulated)
				assert.True(t, result.Provisional())
				assert.Contains(t, f.notes.All(), Notification{Level: LevelWarning, Message: lookup.CannedNote})
				assert.NotContains(t, f.notes.All(), Notification{Level: LevelSuccess, Message: msgVerified})
				assert.Equal(t, Notification{Level: LevelWarning, Message: msgUnconfirmed}, f.notes.Last())
				assert.Equal(t, "Ward 12", f.app.Wizard().Fields().Ward)
				assert.Equal(t, lookup.CannedNote, f.app.Wizard().Verification().Note)
			})
		})

		testutil.When(t, "the record is submitted", func(t *testing.T) {
			require.NoError(t, f.app.SetField(wizard.FieldConsent, "yes"))
			stored, err := f.app.Submit(ctx)
			require.NoError(t, err)

			testutil.Then(t, "it is not stored as a confirmed match", func(t *testing.T) {
				assert.True(t, stored.VerificationSimulated)
			})
		})
	})
}

func TestGuards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, deadURL())

	t.Run("invalid id number blocks verification", func(t *testing.T) {
		require.NoError(t, f.app.SetField(wizard.FieldIDNumber, "12345"))
		_, err := f.app.Verify(ctx)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, Notification{Level: LevelWarning, Message: msgInvalidID}, f.notes.Last())
	})

	t.Run("submit without consent", func(t *testing.T) {
		_, err := f.app.Submit(ctx)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Empty(t, f.records.Records())
	})

	t.Run("submit without session", func(t *testing.T) {
		require.NoError(t, f.app.SetField(wizard.FieldConsent, "yes"))
		_, err := f.app.Submit(ctx)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Equal(t, LevelError, f.notes.Last().Level)
		assert.Empty(t, f.records.Records())
	})

	t.Run("empty credentials", func(t *testing.T) {
		err := f.app.SignIn(ctx, "", "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, LevelWarning, f.notes.Last().Level)
	})

	t.Run("wrong password", func(t *testing.T) {
		err := f.app.SignIn(ctx, "field@example.org", "nope")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Equal(t, msgLoginFailed+"Invalid login credentials", f.notes.Last().Message)
		assert.Nil(t, f.app.Session())
	})
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, deadURL())

	require.NoError(t, f.app.SignIn(ctx, "field@example.org", "pw"))
	require.NoError(t, f.app.SetField(wizard.FieldPriority, "housing"))
	f.app.GoToStep(wizard.StepPriority)

	t.Run("restart restores the session but not the step", func(t *testing.T) {
		gw, err := gateway.New(&stubAuth{}, recordstore.NewInMemory(), f.sessions, verification.NewClient(deadURL()),
			gateway.WithLogger(logger.Discard()))
		require.NoError(t, err)
		notes := &Recorder{}
		app := New(wizard.New(), gw, notes)

		session := app.Start(ctx)
		require.NotNil(t, session)
		assert.Equal(t, "field@example.org", session.Email)
		assert.Equal(t, wizard.StepWelcome, app.Wizard().CurrentStep())
		assert.Equal(t, Notification{Level: LevelSuccess, Message: gateway.MessageConnected}, notes.Last())
	})

	t.Run("corrupt stored session is discarded with a warning", func(t *testing.T) {
		g := newFixture(t, deadURL())
		g.sessions.Corrupt([]byte("{"))
		assert.Nil(t, g.app.Start(ctx))
		assert.Equal(t, LevelWarning, g.notes.Last().Level)
		_, err := g.sessions.Load(ctx)
		assert.Error(t, err)
	})

	t.Run("sign out resets the wizard even if remote fails", func(t *testing.T) {
		f.auth.signOutErr = assert.AnError
		f.app.SignOut(ctx)
		assert.Nil(t, f.app.Session())
		assert.Equal(t, wizard.StepWelcome, f.app.Wizard().CurrentStep())
		p, _ := f.app.Wizard().Field(wizard.FieldPriority)
		assert.Empty(t, p)
		assert.Equal(t, msgLoggedOut, f.notes.Last().Message)
	})
}

func TestDownloadProfile(t *testing.T) {
	f := newFixture(t, deadURL())
	f.app.DownloadProfile()
	assert.Equal(t, Notification{Level: LevelSuccess, Message: msgDownload}, f.notes.Last())
}
