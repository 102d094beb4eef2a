// backend/src/models/audit.go
package models

import "time"

// Severity classifies the importance of an anomaly. The ordering
// BLOCKING > MAJOR > MINOR > INFO > OK is load-bearing: the scoring module
// derives penalty weights from it and the diff engine derives rank
// comparisons, both through the methods below so the two cannot drift.
type Severity string

const (
	SeverityBlocking Severity = "BLOCKING"
	SeverityMajor    Severity = "MAJOR"
	SeverityMinor    Severity = "MINOR"
	SeverityInfo     Severity = "INFO"
	SeverityOK       Severity = "OK"
)

// Rank returns the ordinal of the severity (BLOCKING=4 .. OK=0).
func (s Severity) Rank() int {
	switch s {
	case SeverityBlocking:
		return 4
	case SeverityMajor:
		return 3
	case SeverityMinor:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Weight returns the penalty points one result of this severity contributes
// to the session score (BLOCKING=10, MAJOR=5, MINOR=2, INFO=1, OK=0).
// These weights are stable across versions: archived sessions are compared
// over time and rescoring history would make score deltas meaningless.
func (s Severity) Weight() int {
	switch s {
	case SeverityBlocking:
		return 10
	case SeverityMajor:
		return 5
	case SeverityMinor:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// ControlStatus is the outcome of one control execution.
type ControlStatus string

const (
	StatusOK             ControlStatus = "OK"
	StatusAnomaly        ControlStatus = "ANOMALY"
	StatusNotApplicable  ControlStatus = "NOT_APPLICABLE"
	StatusExecutionError ControlStatus = "EXECUTION_ERROR"
)

// Phase groups control levels by workflow stage.
type Phase string

const (
	// PhaseIntake covers the balance-level controls run right after import
	// (levels 0-5 and 8).
	PhaseIntake Phase = "INTAKE"
	// PhaseComparison marks a session produced by a re-import run.
	PhaseComparison Phase = "COMPARISON"
	// PhaseStatement covers the financial-statement and fiscal controls
	// (levels 6-7), run once a balance sheet can be derived.
	PhaseStatement Phase = "STATEMENT"
)

// SessionStatus is the lifecycle state of an audit session.
type SessionStatus string

const (
	SessionRunning SessionStatus = "RUNNING"
	SessionDone    SessionStatus = "DONE"
	SessionError   SessionStatus = "ERROR"
)

// LevelNames maps each control level to its display name.
var LevelNames = map[int]string{
	0: "Structural checks",
	1: "Fundamental checks",
	2: "Chart-of-accounts conformity",
	3: "Balance sense and amounts",
	4: "Inter-account coherence",
	5: "Year-over-year comparison",
	6: "Financial statements",
	7: "Fiscal checks",
	8: "Multi-year archives",
}

// ControlDefinition is the static metadata of one registered control.
// Definitions are created once at process start; only Active is mutable.
type ControlDefinition struct {
	Ref             string   `json:"ref"` // Globally unique, e.g. "F-001"
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Level           int      `json:"level"`
	Phase           Phase    `json:"phase"`
	DefaultSeverity Severity `json:"default_severity"`
	Active          bool     `json:"active"`
}

// JournalEntryLine is one leg of a suggested corrective entry.
type JournalEntryLine struct {
	Side    string  `json:"side"` // "D" or "C"
	Account string  `json:"account"`
	Label   string  `json:"label"`
	Amount  float64 `json:"amount"`
}

// JournalEntry is a corrective accounting entry suggested by a control.
type JournalEntry struct {
	Journal string             `json:"journal"`
	Date    string             `json:"date"`
	Lines   []JournalEntryLine `json:"lines"`
	Comment string             `json:"comment,omitempty"`
}

// ResultDetails carries the structured evidence attached to a verdict.
type ResultDetails struct {
	Accounts    []string           `json:"accounts,omitempty"`
	Amounts     map[string]float64 `json:"amounts,omitempty"`
	Ecart       float64            `json:"ecart,omitempty"` // Signed or absolute gap, depending on the control
	Description string             `json:"description,omitempty"`
}

// ControlResult is the immutable verdict of one control execution.
type ControlResult struct {
	Ref                 string         `json:"ref"`
	Name                string         `json:"name"`
	Level               int            `json:"level"`
	Status              ControlStatus  `json:"status"`
	Severity            Severity       `json:"severity"`
	Message             string         `json:"message"`
	Details             *ResultDetails `json:"details,omitempty"`
	Suggestion          string         `json:"suggestion,omitempty"`
	CorrectiveEntries   []JournalEntry `json:"corrective_entries,omitempty"`
	RegulatoryReference string         `json:"regulatory_reference,omitempty"`
	Timestamp           time.Time      `json:"timestamp"`
}

// LevelStats is the per-level slice of a session summary.
type LevelStats struct {
	Total     int `json:"total"`
	OK        int `json:"ok"`
	Anomalies int `json:"anomalies"`
}

// Summary aggregates the results of a session. It is always recomputed from
// the result list, never edited independently.
type Summary struct {
	TotalControls int                `json:"total_controls"`
	BySeverity    map[Severity]int   `json:"by_severity"`
	ByLevel       map[int]LevelStats `json:"by_level"`
	Score         int                `json:"score"` // 0-100
	BlockingCount int                `json:"blocking_count"`
}

// Progress tracks how far a running session has advanced, for UI display.
type Progress struct {
	CurrentLevel   int    `json:"current_level"`
	CurrentControl int    `json:"current_control"`
	CurrentRef     string `json:"current_ref,omitempty"`
	TotalControls  int    `json:"total_controls"`
	Percent        int    `json:"percent"`
}

// AuditSession is one complete evaluation run.
type AuditSession struct {
	ID         string          `json:"id"`
	SubjectID  string          `json:"subject_id"` // Balance identifier (snapshot id)
	Period     string          `json:"period"`     // Fiscal year, e.g. "2025"
	Phase      Phase           `json:"phase"`
	Status     SessionStatus   `json:"status"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Progress   Progress        `json:"progress"`
	Results    []ControlResult `json:"results"`
	Summary    Summary         `json:"summary"`
}
