package verification

import (
	"strconv"
	"time"

	"canvass/internal/domain"
	id "canvass/pkg/domain"
)

// SimulatedNote marks every fallback result.
const SimulatedNote = "Simulated data - Backend service unavailable"

// Simulate builds the deterministic fallback result for n. Ward, district and
// station are derived from digits 7, 9 and 10-11; the same input always
// produces the same output for a given year.
func Simulate(n id.IdentityNumber, now time.Time) domain.VerificationResult {
	ward := n.Digit(7) + 1
	age := n.AgeIn(now.Year())
	return domain.VerificationResult{
		Status:         domain.VerificationSuccess,
		IdentityNumber: n.String(),
		FullName:       "Simulated Voter Name",
		Age:            &age,
		Ward:           "Ward " + strconv.Itoa(ward),
		VotingDistrict: "District " + strconv.Itoa(n.Digit(9)+1),
		VotingStation:  "Station " + strconv.Itoa(n.Digits(10, 12)+1),
		WardNumber:     strconv.Itoa(ward),
		Municipality:   "Simulated Municipality",
		Province:       "Simulated Province",
		ProcessingTime: "0.5 seconds",
		Note:           SimulatedNote,
		Simulated:      true,
	}
}
