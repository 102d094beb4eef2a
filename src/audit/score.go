// backend/src/audit/score.go
package audit

import (
	"math"

	"github.com/username/fiscasync/backend/src/models"
)

// ComputeSummary aggregates a result list into histograms and a 0-100 health
// score. Penalty points accrue per result from its severity weight; the score
// is 100 minus the penalty share of the worst case (all results blocking).
// An empty result list scores 0: nothing was checked, nothing is attested.
func ComputeSummary(results []models.ControlResult) models.Summary {
	bySeverity := map[models.Severity]int{
		models.SeverityBlocking: 0,
		models.SeverityMajor:    0,
		models.SeverityMinor:    0,
		models.SeverityInfo:     0,
		models.SeverityOK:       0,
	}
	byLevel := make(map[int]models.LevelStats)

	penalty := 0
	for _, r := range results {
		bySeverity[r.Severity]++
		penalty += r.Severity.Weight()

		stats := byLevel[r.Level]
		stats.Total++
		switch r.Status {
		case models.StatusOK:
			stats.OK++
		case models.StatusAnomaly:
			stats.Anomalies++
		}
		byLevel[r.Level] = stats
	}

	score := 0
	if len(results) > 0 {
		maxPenalty := len(results) * models.SeverityBlocking.Weight()
		raw := int(math.Round(100 - float64(penalty)/float64(maxPenalty)*100))
		score = min(100, max(0, raw))
	}

	return models.Summary{
		TotalControls: len(results),
		BySeverity:    bySeverity,
		ByLevel:       byLevel,
		Score:         score,
		BlockingCount: bySeverity[models.SeverityBlocking],
	}
}
