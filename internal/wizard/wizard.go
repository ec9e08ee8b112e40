// Package wizard owns the collection flow: the current step, field values,
// age derivation, the summary and record assembly. It does no I/O and is not
// safe for concurrent use.
package wizard

import (
	"fmt"
	"strconv"
	"time"

	"canvass/internal/domain"
	id "canvass/pkg/domain"
	dErrors "canvass/pkg/domain-errors"
)

const (
	defaultFullName = "Verified Voter"
	notSpecified    = "Not specified"
	agePrefix       = "Age: "
)

// Wizard is the in-memory state of one collection. The step is never
// persisted: a restart always begins at StepWelcome.
type Wizard struct {
	step         int
	fields       Fields
	verification *domain.VerificationResult
	now          func() time.Time
}

type Option func(*Wizard)

// WithClock replaces time.Now for age derivation.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) {
		w.now = now
	}
}

func New(opts ...Option) *Wizard {
	w := &Wizard{step: StepWelcome, fields: defaultFields(), now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// CurrentStep returns the step being shown.
func (w *Wizard) CurrentStep() int {
	return w.step
}

// GoToStep moves to step n when 1 <= n <= TotalSteps+2 and reports whether it moved.
// Out-of-range targets leave the wizard untouched.
func (w *Wizard) GoToStep(n int) bool {
	if !inRange(n) {
		return false
	}
	w.step = n
	return true
}

// Next advances one step, stopping at the summary. Confirmation is only
// reached by submitting.
func (w *Wizard) Next() bool {
	if w.step >= StepSummary {
		return false
	}
	return w.GoToStep(w.step + 1)
}

// Back goes one step back.
func (w *Wizard) Back() bool {
	return w.GoToStep(w.step - 1)
}

// Progress is CurrentStep/TotalSteps as a percentage, capped at 100.
func (w *Wizard) Progress() float64 {
	p := float64(w.step) / float64(TotalSteps) * 100
	return min(p, 100)
}

// ValidateIdentityNumber accepts exactly 13 digits; anything else is a
// validation error and must block verification.
func ValidateIdentityNumber(s string) error {
	_, err := id.ParseIdentityNumber(s)
	return err
}

// ComputeAge derives an age from the first two digits of an identity number:
// yy > 25 is the 1900s, otherwise the 2000s. The result is now's year minus the
// birth year with no month/day adjustment.
func ComputeAge(identityNumber string, now time.Time) (int, error) {
	n, err := id.ParseIdentityNumber(identityNumber)
	if err != nil {
		return 0, err
	}
	return n.AgeIn(now.Year()), nil
}

// Age computes the age for the identity number using the wizard's clock.
func (w *Wizard) Age(identityNumber string) (int, error) {
	return ComputeAge(identityNumber, w.now())
}

// ApplyVerification fills the verification step from a lookup result and
// shows it. A missing name becomes "Verified Voter"; a missing age is derived
// from the identity number.
func (w *Wizard) ApplyVerification(result domain.VerificationResult) {
	f := &w.fields
	f.FullName = result.FullName
	if f.FullName == "" {
		f.FullName = defaultFullName
	}

	var age int
	if result.Age != nil {
		age = *result.Age
	} else if a, err := w.Age(f.IDNumber); err == nil {
		age = a
	}
	f.Age = agePrefix + strconv.Itoa(age)
	f.Ward = result.Ward
	f.VotingDistrict = result.VotingDistrict
	f.VotingStation = result.VotingStation

	r := result
	w.verification = &r
}

// Verification returns the result on display, or nil when none is shown.
func (w *Wizard) Verification() *domain.VerificationResult {
	return w.verification
}

// CanSubmit is true only once consent has been given.
func (w *Wizard) CanSubmit() bool {
	return w.fields.Consent
}

// Summary is the read-only recap shown before submission.
type Summary struct {
	IDNumber      string
	FullName      string
	VotingStation string
	Priority      string
}

func (s Summary) String() string {
	return fmt.Sprintf("ID number: %s\nName: %s\nVoting station: %s\nPriority: %s",
		s.IDNumber, s.FullName, s.VotingStation, s.Priority)
}

// Summary reports the fields shown on the summary step.
func (w *Wizard) Summary() Summary {
	priority := w.fields.Priority
	if priority == "" {
		priority = notSpecified
	}
	return Summary{
		IDNumber:      w.fields.IDNumber,
		FullName:      w.fields.FullName,
		VotingStation: w.fields.VotingStation,
		Priority:      priority,
	}
}

// AssembleRecord copies the current values into a new record. The session
// supplies collected_by; at is the assembly time.
func (w *Wizard) AssembleRecord(session *domain.Session, at time.Time) (domain.VoterRecord, error) {
	if session == nil {
		return domain.VoterRecord{}, dErrors.New(dErrors.CodeUnauthorized, "sign in before submitting")
	}
	f := w.Fields()
	return domain.VoterRecord{
		IDNumber:              f.IDNumber,
		FullName:              f.FullName,
		Age:                   f.Age,
		Ward:                  f.Ward,
		VotingDistrict:        f.VotingDistrict,
		VotingStation:         f.VotingStation,
		ChangeStation:         f.ChangeStation,
		Gender:                f.Gender,
		MaritalStatus:         f.MaritalStatus,
		HouseholdSize:         f.HouseholdSize,
		HousingType:           f.HousingType,
		Priority:              f.Priority,
		WantsNotifications:    f.WantsNotifications,
		VerificationSimulated: w.verification != nil && w.verification.Provisional(),
		CollectedBy:           session.Email,
		CollectedAt:           at,
	}, nil
}

// Reset starts a new entry: back to StepWelcome, every field cleared,
// change_station back to "no" and the verification display hidden.
func (w *Wizard) Reset() {
	w.step = StepWelcome
	w.fields = defaultFields()
	w.verification = nil
}
