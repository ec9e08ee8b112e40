package wizard

import (
	"strconv"
	"strings"

	"canvass/internal/domain"
	dErrors "canvass/pkg/domain-errors"
)

// Fields holds every value the operator can enter or that verification fills in.
type Fields struct {
	IDNumber           string
	FullName           string
	Age                string
	Ward               string
	VotingDistrict     string
	VotingStation      string
	ChangeStation      string
	Gender             string
	MaritalStatus      string
	HouseholdSize      *int
	HousingType        string
	Priority           string
	WantsNotifications bool
	Consent            bool
}

func defaultFields() Fields {
	return Fields{ChangeStation: domain.DefaultChangeStation}
}

var choiceFields = map[string][]string{
	FieldChangeStation: domain.ChangeStationChoices,
	FieldGender:        domain.GenderChoices,
	FieldMaritalStatus: domain.MaritalStatusChoices,
	FieldHousingType:   domain.HousingTypeChoices,
	FieldPriority:      domain.PriorityChoices,
}

// Choices returns the accepted values for a choice field, or nil for free-form fields.
func Choices(field string) []string {
	return choiceFields[field]
}

// SetField assigns one field. Choice fields accept "" to clear the selection,
// except change_station which always holds yes or no.
func (w *Wizard) SetField(name, value string) error {
	value = strings.TrimSpace(value)
	f := &w.fields

	if choices, ok := choiceFields[name]; ok && value != "" && !domain.IsChoice(choices, value) {
		return dErrors.New(dErrors.CodeValidation,
			name+" must be one of: "+strings.Join(choices, ", "))
	}

	switch name {
	case FieldIDNumber:
		f.IDNumber = value
	case FieldFullName:
		f.FullName = value
	case FieldAge:
		f.Age = value
	case FieldWard:
		f.Ward = value
	case FieldVotingDistrict:
		f.VotingDistrict = value
	case FieldVotingStation:
		f.VotingStation = value
	case FieldChangeStation:
		if value == "" {
			return dErrors.New(dErrors.CodeValidation, "change_station must be yes or no")
		}
		f.ChangeStation = value
	case FieldGender:
		f.Gender = value
	case FieldMaritalStatus:
		f.MaritalStatus = value
	case FieldHousingType:
		f.HousingType = value
	case FieldPriority:
		f.Priority = value
	case FieldHouseholdSize:
		if value == "" {
			f.HouseholdSize = nil
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return dErrors.New(dErrors.CodeValidation, "household_size must be a non-negative whole number")
		}
		f.HouseholdSize = &n
	case FieldWantsNotifications:
		b, err := parseYesNo(value)
		if err != nil {
			return err
		}
		f.WantsNotifications = b
	case FieldConsent:
		b, err := parseYesNo(value)
		if err != nil {
			return err
		}
		f.Consent = b
	default:
		return dErrors.New(dErrors.CodeValidation, "unknown field "+name)
	}
	return nil
}

// Field returns the display value of one field. ok is false for unknown names.
func (w *Wizard) Field(name string) (string, bool) {
	f := w.fields
	switch name {
	case FieldIDNumber:
		return f.IDNumber, true
	case FieldFullName:
		return f.FullName, true
	case FieldAge:
		return f.Age, true
	case FieldWard:
		return f.Ward, true
	case FieldVotingDistrict:
		return f.VotingDistrict, true
	case FieldVotingStation:
		return f.VotingStation, true
	case FieldChangeStation:
		return f.ChangeStation, true
	case FieldGender:
		return f.Gender, true
	case FieldMaritalStatus:
		return f.MaritalStatus, true
	case FieldHouseholdSize:
		if f.HouseholdSize == nil {
			return "", true
		}
		return strconv.Itoa(*f.HouseholdSize), true
	case FieldHousingType:
		return f.HousingType, true
	case FieldPriority:
		return f.Priority, true
	case FieldWantsNotifications:
		return yesNo(f.WantsNotifications), true
	case FieldConsent:
		return yesNo(f.Consent), true
	}
	return "", false
}

// Fields returns a copy of the current values.
func (w *Wizard) Fields() Fields {
	f := w.fields
	if f.HouseholdSize != nil {
		n := *f.HouseholdSize
		f.HouseholdSize = &n
	}
	return f
}

func parseYesNo(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "yes", "y", "true", "1", "on":
		return true, nil
	case "no", "n", "false", "0", "off", "":
		return false, nil
	}
	return false, dErrors.New(dErrors.CodeValidation, "expected yes or no, got "+strconv.Quote(v))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
