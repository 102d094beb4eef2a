// backend/src/audit/controls/controls_test.go
package controls

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fiscasync/backend/src/audit"
	"github.com/username/fiscasync/backend/src/models"
)

func balancedLines() []models.BalanceLine {
	return []models.BalanceLine{
		{Account: "101000", Label: "Capital social", CreditMovement: 5000, CreditBalance: 5000},
		{Account: "411000", Label: "Clients", DebitMovement: 3000, DebitBalance: 3000},
		{Account: "521000", Label: "Banque", DebitMovement: 4000, DebitBalance: 4000},
		{Account: "601000", Label: "Achats", DebitMovement: 1000, DebitBalance: 1000},
		{Account: "701000", Label: "Ventes", CreditMovement: 3000, CreditBalance: 3000},
	}
}

func TestF001_ImbalanceIsBlocking(t *testing.T) {
	lines := balancedLines()
	lines = append(lines, models.BalanceLine{
		Account: "602000", Label: "Achats stockes", DebitMovement: 500, DebitBalance: 500,
	})

	results, err := f001(&audit.Context{Current: lines})
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "F-001", r.Ref)
	assert.Equal(t, models.StatusAnomaly, r.Status)
	assert.Equal(t, models.SeverityBlocking, r.Severity)
	require.NotNil(t, r.Details)
	assert.InDelta(t, 500.0, r.Details.Ecart, 0.001)

	// Debits exceed credits, so the suspense entry credits 471000.
	require.Len(t, r.CorrectiveEntries, 1)
	entry := r.CorrectiveEntries[0]
	assert.Equal(t, "OD", entry.Journal)
	require.Len(t, entry.Lines, 1)
	assert.Equal(t, "C", entry.Lines[0].Side)
	assert.Equal(t, "471000", entry.Lines[0].Account)
	assert.InDelta(t, 500.0, entry.Lines[0].Amount, 0.001)
	assert.NotEmpty(t, r.RegulatoryReference)
}

func TestF001_BalancedIsOK(t *testing.T) {
	results, err := f001(&audit.Context{Current: balancedLines()})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatusOK, results[0].Status)
	assert.Equal(t, models.SeverityOK, results[0].Severity)
}

func TestF001_RoundingResidueIsTolerated(t *testing.T) {
	lines := balancedLines()
	lines[0].CreditMovement += 0.005

	results, err := f001(&audit.Context{Current: lines})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOK, results[0].Status)
}

func TestF002_WithoutPriorIsNotApplicable(t *testing.T) {
	results, err := f002(&audit.Context{Current: balancedLines()})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatusNotApplicable, results[0].Status)
	assert.Equal(t, models.SeverityOK, results[0].Severity)
}

func TestNN001_WithoutPriorIsNotApplicable(t *testing.T) {
	results, err := nn001(&audit.Context{Current: balancedLines()})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatusNotApplicable, results[0].Status)
}

func TestNN001_RetainedEarningsMismatch(t *testing.T) {
	current := append(balancedLines(), models.BalanceLine{
		Account: "121000", Label: "Report a nouveau", CreditMovement: 100, CreditBalance: 100,
	})
	prior := append(balancedLines(), models.BalanceLine{
		Account: "131000", Label: "Resultat net", CreditMovement: 900, CreditBalance: 900,
	})

	results, err := nn001(&audit.Context{Current: current, Prior: prior})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatusAnomaly, results[0].Status)
	assert.Equal(t, models.SeverityMajor, results[0].Severity)
	assert.InDelta(t, 800.0, results[0].Details.Ecart, 0.001)
}

func TestCOMP001_WithoutPriorIsNotApplicable(t *testing.T) {
	results, err := comp001(&audit.Context{Current: balancedLines()})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatusNotApplicable, results[0].Status)
	assert.Equal(t, models.SeverityOK, results[0].Severity)
}

func TestCOMP001_BrokenContinuityIsBlocking(t *testing.T) {
	prior := balancedLines()
	current := balancedLines()
	current[1].DebitBalance = 3500 // 411000 opens 500 above the prior closing

	results, err := comp001(&audit.Context{Current: current, Prior: prior})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatusAnomaly, results[0].Status)
	assert.Equal(t, models.SeverityBlocking, results[0].Severity)
	assert.InDelta(t, 500.0, results[0].Details.Ecart, 0.001)
}

func TestCOMP002_MissingPriorAccount(t *testing.T) {
	prior := append(balancedLines(), models.BalanceLine{
		Account: "244000", Label: "Materiel", DebitMovement: 2000, DebitBalance: 2000,
	})

	results, err := comp002(&audit.Context{Current: balancedLines(), Prior: prior})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatusAnomaly, results[0].Status)
	assert.Equal(t, models.SeverityMajor, results[0].Severity)
	require.Len(t, results[0].Details.Accounts, 1)
	assert.Contains(t, results[0].Details.Accounts[0], "244000")
}

func TestCOMP003_UnallocatedResult(t *testing.T) {
	prior := append(balancedLines(), models.BalanceLine{
		Account: "131000", Label: "Resultat net", CreditMovement: 900, CreditBalance: 900,
	})
	current := append(balancedLines(), models.BalanceLine{
		Account: "131000", Label: "Resultat net", CreditMovement: 900, CreditBalance: 900,
	})

	results, err := comp003(&audit.Context{Current: current, Prior: prior})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatusAnomaly, results[0].Status)
	assert.Equal(t, models.SeverityMajor, results[0].Severity)
	assert.InDelta(t, 900.0, results[0].Details.Amounts["prior_result"], 0.001)
}

func TestCOMP003_AllocatedResultIsOK(t *testing.T) {
	prior := append(balancedLines(), models.BalanceLine{
		Account: "131000", Label: "Resultat net", CreditMovement: 900, CreditBalance: 900,
	})
	current := append(balancedLines(), models.BalanceLine{
		Account: "121000", Label: "Report a nouveau", CreditMovement: 900, CreditBalance: 900,
	})

	results, err := comp003(&audit.Context{Current: current, Prior: prior})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOK, results[0].Status)
}

func TestCOMP004_SkippedResetIsBlocking(t *testing.T) {
	var stale []models.BalanceLine
	for _, acc := range []string{"602000", "603000", "604000", "605000"} {
		stale = append(stale, models.BalanceLine{
			Account: acc, Label: "Achats", DebitMovement: 200, DebitBalance: 200,
		})
	}
	prior := append(balancedLines(), stale...)
	current := append(balancedLines(), stale...)

	results, err := comp004(&audit.Context{Current: current, Prior: prior})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatusAnomaly, results[0].Status)
	assert.Equal(t, models.SeverityBlocking, results[0].Severity)
}

func TestCOMP005_OpeningImbalance(t *testing.T) {
	// Classes 1-5 of the fixture: 5000 credit vs 7000 debit, the period result
	// never having been booked to 13x.
	results, err := comp005(&audit.Context{Current: balancedLines(), Prior: balancedLines()})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatusAnomaly, results[0].Status)
	assert.Equal(t, models.SeverityBlocking, results[0].Severity)
	assert.InDelta(t, 2000.0, results[0].Details.Ecart, 0.001)
}

func TestCOMP007_NewAccountIsInfo(t *testing.T) {
	current := append(balancedLines(), models.BalanceLine{
		Account: "244000", Label: "Materiel", DebitMovement: 5000, DebitBalance: 5000,
	})

	results, err := comp007(&audit.Context{Current: current, Prior: balancedLines()})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatusAnomaly, results[0].Status)
	assert.Equal(t, models.SeverityInfo, results[0].Severity)
	assert.Contains(t, results[0].Details.Accounts[0], "244000")
}

func TestCOMP008_LargeVariationIsMajor(t *testing.T) {
	prior := balancedLines()
	current := balancedLines()
	current[1].DebitBalance = 9000  // 411000
	current[2].DebitBalance = 12000 // 521000

	results, err := comp008(&audit.Context{Current: current, Prior: prior})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatusAnomaly, results[0].Status)
	assert.Equal(t, models.SeverityMajor, results[0].Severity)
}

func TestF005_MissingClasses(t *testing.T) {
	lines := []models.BalanceLine{
		{Account: "411000", DebitBalance: 100},
		{Account: "701000", CreditBalance: 100},
	}
	results, err := f005(&audit.Context{Current: lines})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, models.StatusAnomaly, results[0].Status)
	assert.Equal(t, models.SeverityMajor, results[0].Severity)
	assert.Contains(t, results[0].Details.Accounts, "1")
	assert.Contains(t, results[0].Details.Accounts, "5")
}

func TestByPrefix(t *testing.T) {
	lines := balancedLines()
	assert.Len(t, byPrefix(lines, "4"), 1)
	assert.Len(t, byPrefix(lines, "6", "7"), 2)
	assert.Empty(t, byPrefix(lines, "33"))
}

func TestClassOf(t *testing.T) {
	assert.Equal(t, 4, classOf("411000"))
	assert.Equal(t, 4, classOf("  411000"))
	assert.Equal(t, -1, classOf(""))
	assert.Equal(t, -1, classOf("X123"))
}

func TestCatalog_RefsAreUniqueAndComplete(t *testing.T) {
	reg := NewRegistry()
	defs := reg.Definitions()
	require.NotEmpty(t, defs)

	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		assert.False(t, seen[d.Ref], "duplicate ref %s", d.Ref)
		seen[d.Ref] = true
		assert.NotEmpty(t, d.Name, "control %s has no name", d.Ref)
		assert.True(t, d.Active, "control %s should start active", d.Ref)
		assert.Contains(t, []models.Phase{models.PhaseIntake, models.PhaseStatement}, d.Phase)
	}
}

func TestCatalog_RegisterAllIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	count := len(reg.Definitions())
	RegisterAll(reg)
	assert.Len(t, reg.Definitions(), count)
}

func TestIntakeRun_BlockingFailureDoesNotAbortTheRun(t *testing.T) {
	lines := balancedLines()
	lines = append(lines, models.BalanceLine{
		Account: "602000", Label: "Achats stockes", DebitMovement: 500, DebitBalance: 500,
	})

	reg := NewRegistry()
	results := audit.RunPhase(context.Background(), reg, audit.IntakeLevels,
		&audit.Context{Current: lines, Period: "2025", Kind: models.PhaseIntake}, nil)

	byRef := make(map[string]models.ControlResult, len(results))
	for _, r := range results {
		byRef[r.Ref] = r
	}

	require.Contains(t, byRef, "F-001")
	assert.Equal(t, models.StatusAnomaly, byRef["F-001"].Status)
	assert.Equal(t, models.SeverityBlocking, byRef["F-001"].Severity)

	// The rest of the catalog still ran after the blocking verdict.
	assert.Greater(t, len(results), 20)
	assert.Contains(t, byRef, "F-011")
	assert.Contains(t, byRef, "NN-001")
	assert.Equal(t, models.StatusNotApplicable, byRef["NN-001"].Status)
	assert.Contains(t, byRef, "COMP-001")
	assert.Equal(t, models.StatusNotApplicable, byRef["COMP-001"].Status)
	assert.Contains(t, byRef, "AR-001")
	assert.Equal(t, models.StatusNotApplicable, byRef["AR-001"].Status)
}

func TestIntakeRun_NoExecutionErrorsOnWellFormedBalance(t *testing.T) {
	reg := NewRegistry()
	results := audit.RunPhase(context.Background(), reg, audit.IntakeLevels,
		&audit.Context{Current: balancedLines(), Period: "2025", Kind: models.PhaseIntake}, nil)

	for _, r := range results {
		assert.NotEqual(t, models.StatusExecutionError, r.Status, "control %s errored: %s", r.Ref, r.Message)
	}
}
