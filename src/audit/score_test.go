// backend/src/audit/score_test.go
package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/username/fiscasync/backend/src/models"
)

func result(level int, status models.ControlStatus, sev models.Severity) models.ControlResult {
	return models.ControlResult{Ref: "X-000", Level: level, Status: status, Severity: sev}
}

func TestComputeSummary_AllOK(t *testing.T) {
	results := []models.ControlResult{
		result(0, models.StatusOK, models.SeverityOK),
		result(1, models.StatusOK, models.SeverityOK),
		result(2, models.StatusOK, models.SeverityOK),
	}
	s := ComputeSummary(results)
	assert.Equal(t, 100, s.Score)
	assert.Equal(t, 3, s.TotalControls)
	assert.Equal(t, 0, s.BlockingCount)
}

func TestComputeSummary_AllBlocking(t *testing.T) {
	results := []models.ControlResult{
		result(1, models.StatusAnomaly, models.SeverityBlocking),
		result(1, models.StatusAnomaly, models.SeverityBlocking),
	}
	s := ComputeSummary(results)
	assert.Equal(t, 0, s.Score)
	assert.Equal(t, 2, s.BlockingCount)
}

func TestComputeSummary_Empty(t *testing.T) {
	s := ComputeSummary(nil)
	assert.Equal(t, 0, s.Score)
	assert.Equal(t, 0, s.TotalControls)
}

func TestComputeSummary_WeightedScore(t *testing.T) {
	// 4 results, one MAJOR: penalty 5 of a max 40 -> round(87.5) = 88.
	results := []models.ControlResult{
		result(1, models.StatusOK, models.SeverityOK),
		result(1, models.StatusOK, models.SeverityOK),
		result(1, models.StatusOK, models.SeverityOK),
		result(2, models.StatusAnomaly, models.SeverityMajor),
	}
	s := ComputeSummary(results)
	assert.Equal(t, 88, s.Score)
	assert.Equal(t, 1, s.BySeverity[models.SeverityMajor])
	assert.Equal(t, 3, s.BySeverity[models.SeverityOK])
}

func TestComputeSummary_ScoreStaysInBounds(t *testing.T) {
	var results []models.ControlResult
	for i := 0; i < 50; i++ {
		results = append(results, result(4, models.StatusAnomaly, models.SeverityBlocking))
	}
	s := ComputeSummary(results)
	assert.GreaterOrEqual(t, s.Score, 0)
	assert.LessOrEqual(t, s.Score, 100)
}

func TestComputeSummary_PerLevelHistogram(t *testing.T) {
	results := []models.ControlResult{
		result(0, models.StatusOK, models.SeverityOK),
		result(0, models.StatusAnomaly, models.SeverityMinor),
		result(0, models.StatusNotApplicable, models.SeverityOK),
		result(3, models.StatusAnomaly, models.SeverityInfo),
	}
	s := ComputeSummary(results)
	assert.Equal(t, models.LevelStats{Total: 3, OK: 1, Anomalies: 1}, s.ByLevel[0])
	assert.Equal(t, models.LevelStats{Total: 1, OK: 0, Anomalies: 1}, s.ByLevel[3])
}

func TestComputeSummary_IsPure(t *testing.T) {
	results := []models.ControlResult{
		result(1, models.StatusAnomaly, models.SeverityMajor),
		result(1, models.StatusOK, models.SeverityOK),
	}
	first := ComputeSummary(results)
	second := ComputeSummary(results)
	assert.Equal(t, first, second)
	assert.Equal(t, models.StatusAnomaly, results[0].Status)
}
