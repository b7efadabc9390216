package models

// InvariantViolation is one row found breaking a ledger invariant.
type InvariantViolation struct {
	Check     string `json:"check"`
	SubjectID int64  `json:"subject_id"`
	Detail    string `json:"detail"`
}
