package domain

import (
	"bytes"
	"encoding/json"
	"slices"
	"time"
)

// Choice values for the wizard's select and radio fields.
var (
	ChangeStationChoices = []string{"yes", "no"}
	GenderChoices        = []string{"male", "female", "other", "prefer_not_to_say"}
	MaritalStatusChoices = []string{"single", "married", "divorced", "widowed", "separated"}
	HousingTypeChoices   = []string{"formal", "informal", "rdp", "backyard", "rental", "other"}
	PriorityChoices      = []string{
		"employment", "housing", "water_sanitation", "electricity",
		"safety", "education", "healthcare", "infrastructure",
	}
)

// DefaultChangeStation is restored on every new entry.
const DefaultChangeStation = "no"

// IsChoice reports whether v is one of choices.
func IsChoice(choices []string, v string) bool {
	return slices.Contains(choices, v)
}

// VoterRecord is one submitted collection. It is a value: once handed to the
// record store it is never mutated, and a new entry builds a fresh one.
//
// ID and CreatedAt are assigned by the store.
type VoterRecord struct {
	ID                    RecordID  `json:"id,omitempty"`
	IDNumber              string    `json:"id_number"`
	FullName              string    `json:"full_name"`
	Age                   string    `json:"age"`
	Ward                  string    `json:"ward"`
	VotingDistrict        string    `json:"voting_district"`
	VotingStation         string    `json:"voting_station"`
	ChangeStation         string    `json:"change_station"`
	Gender                string    `json:"gender"`
	MaritalStatus         string    `json:"marital_status"`
	HouseholdSize         *int      `json:"household_size"`
	HousingType           string    `json:"housing_type"`
	Priority              string    `json:"priority"`
	WantsNotifications    bool      `json:"wants_notifications"`
	VerificationSimulated bool      `json:"verification_simulated"`
	CollectedBy           string    `json:"collected_by"`
	CollectedAt           time.Time `json:"collected_at"`
	CreatedAt             time.Time `json:"created_at,omitzero"`
}

// RecordID is the store-assigned identifier. Hosted stores answer with either
// a number or a string; both decode to the same text.
type RecordID string

func (id *RecordID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = RecordID(n.String())
	return nil
}
