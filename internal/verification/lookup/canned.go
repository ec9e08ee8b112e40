package lookup

import (
	"context"

	"canvass/internal/domain"
	id "canvass/pkg/domain"
)

// CannedNote marks results produced by CannedSource.
const CannedNote = "This is simulated data. The registry scraper is not deployed; results are canned."

// CannedSource answers every lookup with the same fixed location. It stands in
// for the electoral-registry scraper, which is not part of this service.
type CannedSource struct{}

func (CannedSource) Lookup(_ context.Context, n id.IdentityNumber) (domain.VerificationResult, error) {
	return domain.VerificationResult{
		Status:         domain.VerificationSuccess,
		IdentityNumber: n.String(),
		Ward:           "Ward 12",
		VotingDistrict: "VD 1234",
		WardNumber:     "12",
		Municipality:   "Johannesburg",
		Province:       "Gauteng",
		Note:           CannedNote,
	}, nil
}
