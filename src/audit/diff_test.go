// backend/src/audit/diff_test.go
package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fiscasync/backend/src/models"
)

func sessionWith(id string, results ...models.ControlResult) *models.AuditSession {
	return &models.AuditSession{
		ID:      id,
		Results: results,
		Summary: ComputeSummary(results),
	}
}

func verdict(ref string, status models.ControlStatus, sev models.Severity) models.ControlResult {
	return models.ControlResult{Ref: ref, Name: "test " + ref, Status: status, Severity: sev}
}

func TestDiff_ClassifiesEvolutions(t *testing.T) {
	before := sessionWith("AUD-before",
		verdict("T-001", models.StatusAnomaly, models.SeverityBlocking), // fixed
		verdict("T-002", models.StatusAnomaly, models.SeverityMajor),    // improved
		verdict("T-003", models.StatusOK, models.SeverityOK),            // degraded
		verdict("T-004", models.StatusOK, models.SeverityOK),            // unchanged
	)
	after := sessionWith("AUD-after",
		verdict("T-001", models.StatusOK, models.SeverityOK),
		verdict("T-002", models.StatusAnomaly, models.SeverityMinor),
		verdict("T-003", models.StatusAnomaly, models.SeverityMajor),
		verdict("T-004", models.StatusOK, models.SeverityOK),
	)

	report := Diff(before, after)
	require.Len(t, report.Corrections, 3)

	byRef := make(map[string]models.CorrectionItem)
	for _, c := range report.Corrections {
		byRef[c.Ref] = c
	}
	assert.Equal(t, models.EvolutionFixed, byRef["T-001"].Evolution)
	assert.Equal(t, models.EvolutionImproved, byRef["T-002"].Evolution)
	assert.Equal(t, models.EvolutionDegraded, byRef["T-003"].Evolution)
	assert.NotContains(t, byRef, "T-004")
}

func TestDiff_SameSeverityAnomalyIsUnchanged(t *testing.T) {
	before := sessionWith("AUD-before", verdict("T-001", models.StatusAnomaly, models.SeverityMajor))
	after := sessionWith("AUD-after", verdict("T-001", models.StatusAnomaly, models.SeverityMajor))

	report := Diff(before, after)
	assert.Empty(t, report.Corrections)
}

func TestDiff_ComparesOnlyTheIntersection(t *testing.T) {
	before := sessionWith("AUD-before",
		verdict("T-001", models.StatusAnomaly, models.SeverityMajor),
		verdict("T-002", models.StatusAnomaly, models.SeverityMajor), // absent after
	)
	after := sessionWith("AUD-after",
		verdict("T-001", models.StatusOK, models.SeverityOK),
		verdict("T-003", models.StatusAnomaly, models.SeverityMajor), // absent before
	)

	report := Diff(before, after)
	require.Len(t, report.Corrections, 1)
	assert.Equal(t, "T-001", report.Corrections[0].Ref)
}

func TestDiff_SummaryDeltas(t *testing.T) {
	before := sessionWith("AUD-before",
		verdict("T-001", models.StatusAnomaly, models.SeverityBlocking),
		verdict("T-002", models.StatusOK, models.SeverityOK),
	)
	after := sessionWith("AUD-after",
		verdict("T-001", models.StatusOK, models.SeverityOK),
		verdict("T-002", models.StatusOK, models.SeverityOK),
	)

	report := Diff(before, after)
	assert.Equal(t, 1, report.Summary.BlockingBefore)
	assert.Equal(t, 0, report.Summary.BlockingAfter)
	assert.Greater(t, report.Summary.ScoreAfter, report.Summary.ScoreBefore)
	assert.Equal(t, "AUD-before", report.SessionBeforeID)
	assert.Equal(t, "AUD-after", report.SessionAfterID)
}

func TestDiffBalances_DetectsMaterialMoves(t *testing.T) {
	oldLines := []models.BalanceLine{
		{Account: "411000", Label: "Clients", DebitBalance: 1000},
		{Account: "401000", Label: "Fournisseurs", CreditBalance: 500},
	}
	newLines := []models.BalanceLine{
		{Account: "411000", Label: "Clients", DebitBalance: 1500},
		{Account: "401000", Label: "Fournisseurs", CreditBalance: 500},
	}

	deltas := DiffBalances(oldLines, newLines)
	require.Len(t, deltas, 1)
	assert.Equal(t, "411000", deltas[0].Account)
	assert.InDelta(t, 1000.0, deltas[0].BalanceBefore, 0.001)
	assert.InDelta(t, 1500.0, deltas[0].BalanceAfter, 0.001)
	assert.InDelta(t, 500.0, deltas[0].Delta, 0.001)
}

func TestDiffBalances_ToleranceSwallowsRoundingNoise(t *testing.T) {
	oldLines := []models.BalanceLine{{Account: "411000", DebitBalance: 1000.00}}
	newLines := []models.BalanceLine{{Account: "411000", DebitBalance: 1000.005}}

	assert.Empty(t, DiffBalances(oldLines, newLines))
}

func TestDiffBalances_NewAccountStartsFromZero(t *testing.T) {
	newLines := []models.BalanceLine{{Account: "602000", Label: "Achats", DebitBalance: 300}}

	deltas := DiffBalances(nil, newLines)
	require.Len(t, deltas, 1)
	assert.InDelta(t, 0.0, deltas[0].BalanceBefore, 0.001)
	assert.InDelta(t, 300.0, deltas[0].Delta, 0.001)
}
