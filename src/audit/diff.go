// backend/src/audit/diff.go
package audit

import (
	"math"
	"time"

	"github.com/username/fiscasync/backend/src/models"
)

// MaterialityTolerance is the absolute balance movement below which an
// account is considered unchanged between two snapshots.
const MaterialityTolerance = 0.01

// Diff compares two completed sessions over the same subject and classifies
// each control's evolution. Controls present on only one side are skipped:
// the comparison is defined over the intersection of refs, indexed by ref
// (result positions are not comparable across runs). UNCHANGED entries are
// omitted from the output.
func Diff(before, after *models.AuditSession) *models.CorrectionReport {
	afterByRef := make(map[string]models.ControlResult, len(after.Results))
	for _, r := range after.Results {
		afterByRef[r.Ref] = r
	}

	var corrections []models.CorrectionItem
	for _, b := range before.Results {
		a, ok := afterByRef[b.Ref]
		if !ok {
			continue
		}
		evolution := classify(b, a)
		if evolution == models.EvolutionUnchanged {
			continue
		}
		corrections = append(corrections, models.CorrectionItem{
			Ref:            b.Ref,
			Name:           b.Name,
			StatusBefore:   b.Status,
			SeverityBefore: b.Severity,
			StatusAfter:    a.Status,
			SeverityAfter:  a.Severity,
			Evolution:      evolution,
		})
	}

	return &models.CorrectionReport{
		SessionBeforeID: before.ID,
		SessionAfterID:  after.ID,
		GeneratedAt:     time.Now().UTC(),
		Corrections:     corrections,
		Summary: models.CorrectionSummary{
			BlockingBefore: before.Summary.BySeverity[models.SeverityBlocking],
			BlockingAfter:  after.Summary.BySeverity[models.SeverityBlocking],
			MajorBefore:    before.Summary.BySeverity[models.SeverityMajor],
			MajorAfter:     after.Summary.BySeverity[models.SeverityMajor],
			ScoreBefore:    before.Summary.Score,
			ScoreAfter:     after.Summary.Score,
		},
	}
}

func classify(before, after models.ControlResult) models.Evolution {
	switch {
	case before.Status == models.StatusAnomaly && after.Status == models.StatusOK:
		return models.EvolutionFixed
	case before.Status == models.StatusAnomaly && after.Status == models.StatusAnomaly &&
		after.Severity.Rank() < before.Severity.Rank():
		return models.EvolutionImproved
	case before.Status == models.StatusOK && after.Status == models.StatusAnomaly:
		return models.EvolutionDegraded
	default:
		return models.EvolutionUnchanged
	}
}

// DiffBalances lists the accounts whose net balance moved by more than the
// materiality tolerance between two balances. Accounts absent from the old
// balance count as starting from zero.
func DiffBalances(oldLines, newLines []models.BalanceLine) []models.AccountDelta {
	oldByAccount := make(map[string]models.BalanceLine, len(oldLines))
	for _, l := range oldLines {
		oldByAccount[l.Account] = l
	}

	var deltas []models.AccountDelta
	for _, nl := range newLines {
		oldNet := 0.0
		if ol, ok := oldByAccount[nl.Account]; ok {
			oldNet = ol.Net()
		}
		newNet := nl.Net()
		if math.Abs(newNet-oldNet) > MaterialityTolerance {
			deltas = append(deltas, models.AccountDelta{
				Account:       nl.Account,
				Label:         nl.Label,
				BalanceBefore: oldNet,
				BalanceAfter:  newNet,
				Delta:         newNet - oldNet,
			})
		}
	}
	return deltas
}
