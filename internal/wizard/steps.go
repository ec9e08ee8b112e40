package wizard

// TotalSteps counts the data-entry steps. Summary and Confirmation follow them.
const TotalSteps = 9

const (
	StepWelcome = iota + 1
	StepIdentity
	StepVerification
	StepStation
	StepPersonal
	StepHousehold
	StepPriority
	StepNotifications
	StepConsent
	StepSummary
	StepConfirmation
)

// Field names, matching the record's JSON names where one exists.
const (
	FieldIDNumber           = "id_number"
	FieldFullName           = "full_name"
	FieldAge                = "age"
	FieldWard               = "ward"
	FieldVotingDistrict     = "voting_district"
	FieldVotingStation      = "voting_station"
	FieldChangeStation      = "change_station"
	FieldGender             = "gender"
	FieldMaritalStatus      = "marital_status"
	FieldHouseholdSize      = "household_size"
	FieldHousingType        = "housing_type"
	FieldPriority           = "priority"
	FieldWantsNotifications = "wants_notifications"
	FieldConsent            = "consent"
)

// Step describes one screen of the wizard.
type Step struct {
	Number int
	Name   string
	Fields []string
}

var steps = []Step{
	{StepWelcome, "Welcome", nil},
	{StepIdentity, "Identity", []string{FieldIDNumber}},
	{StepVerification, "Verification", []string{FieldFullName, FieldAge, FieldWard, FieldVotingDistrict, FieldVotingStation}},
	{StepStation, "Voting station", []string{FieldChangeStation}},
	{StepPersonal, "Personal details", []string{FieldGender, FieldMaritalStatus}},
	{StepHousehold, "Household", []string{FieldHouseholdSize, FieldHousingType}},
	{StepPriority, "Priority", []string{FieldPriority}},
	{StepNotifications, "Notifications", []string{FieldWantsNotifications}},
	{StepConsent, "Consent", []string{FieldConsent}},
	{StepSummary, "Summary", nil},
	{StepConfirmation, "Confirmation", nil},
}

// StepInfo returns the description of step n. ok is false outside 1..TotalSteps+2.
func StepInfo(n int) (Step, bool) {
	if !inRange(n) {
		return Step{}, false
	}
	return steps[n-1], true
}

func inRange(n int) bool {
	return n >= 1 && n <= TotalSteps+2
}
