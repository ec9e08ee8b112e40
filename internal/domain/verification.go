package domain

// Verification statuses reported by the endpoint.
const (
	VerificationSuccess = "success"
	VerificationError   = "error"
)

// VerificationResult is the outcome of an identity lookup, real or simulated.
// It is merged into the wizard and then discarded; only Provisional travels
// with the record.
type VerificationResult struct {
	Status         string `json:"status"`
	IdentityNumber string `json:"identity_number"`
	FullName       string `json:"full_name,omitempty"`
	Age            *int   `json:"age,omitempty"`
	Ward           string `json:"ward"`
	VotingDistrict string `json:"voting_district"`
	VotingStation  string `json:"voting_station,omitempty"`
	WardNumber     string `json:"ward_number"`
	Municipality   string `json:"municipality"`
	Province       string `json:"province"`
	ProcessingTime string `json:"processing_time"`
	Note           string `json:"note,omitempty"`
	Error          string `json:"error,omitempty"`
	Simulated      bool   `json:"-"`
}

// Succeeded reports whether the lookup returned usable data.
func (r VerificationResult) Succeeded() bool {
	return r.Status == VerificationSuccess
}

// Provisional reports whether the data is not a confirmed registry match:
// either simulated locally or annotated by the endpoint with a note. The
// endpoint only attaches a note to canned data.
func (r VerificationResult) Provisional() bool {
	return r.Simulated || r.Note != ""
}
