// backend/src/models/correction.go
package models

import "time"

// Evolution classifies how a control's outcome moved between two sessions.
type Evolution string

const (
	EvolutionFixed     Evolution = "FIXED"     // anomaly before, OK after
	EvolutionImproved  Evolution = "IMPROVED"  // anomaly on both sides, lower severity after
	EvolutionDegraded  Evolution = "DEGRADED"  // OK before, anomaly after
	EvolutionUnchanged Evolution = "UNCHANGED"
)

// CorrectionItem records one control whose outcome changed between the
// "before" and "after" sessions. UNCHANGED controls are not retained.
type CorrectionItem struct {
	Ref            string        `json:"ref"`
	Name           string        `json:"name"`
	StatusBefore   ControlStatus `json:"status_before"`
	SeverityBefore Severity      `json:"severity_before"`
	StatusAfter    ControlStatus `json:"status_after"`
	SeverityAfter  Severity      `json:"severity_after"`
	Evolution      Evolution     `json:"evolution"`
}

// AccountDelta is one balance line whose net balance moved between two
// snapshots by more than the materiality tolerance.
type AccountDelta struct {
	Account       string  `json:"account"`
	Label         string  `json:"label"`
	BalanceBefore float64 `json:"balance_before"`
	BalanceAfter  float64 `json:"balance_after"`
	Delta         float64 `json:"delta"`
}

// CorrectionSummary is the headline severity delta between two sessions.
type CorrectionSummary struct {
	BlockingBefore int `json:"blocking_before"`
	BlockingAfter  int `json:"blocking_after"`
	MajorBefore    int `json:"major_before"`
	MajorAfter     int `json:"major_after"`
	ScoreBefore    int `json:"score_before"`
	ScoreAfter     int `json:"score_after"`
}

// CorrectionReport is the comparison of two sessions over the same subject.
// It is derived data, recomputed on demand; it is never hashed or archived
// as ground truth.
type CorrectionReport struct {
	ID              string            `json:"id"`
	SessionBeforeID string            `json:"session_before_id"`
	SessionAfterID  string            `json:"session_after_id"`
	GeneratedAt     time.Time         `json:"generated_at"`
	Corrections     []CorrectionItem  `json:"corrections"`
	ChangedAccounts []AccountDelta    `json:"changed_accounts"`
	Summary         CorrectionSummary `json:"summary"`
}
