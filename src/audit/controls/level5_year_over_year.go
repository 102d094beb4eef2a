// backend/src/audit/controls/level5_year_over_year.go
//
// Level 5 - comparative checks between the current and prior periods. Every
// control here reports NOT_APPLICABLE when no prior balance was supplied.
package controls

import (
	"fmt"
	"math"
	"strings"

	"github.com/username/fiscasync/backend/src/audit"
	"github.com/username/fiscasync/backend/src/models"
)

const levelYearOverYear = 5

// NN-001: retained earnings must equal the prior-period result.
func nn001(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "NN-001", "Retained earnings equal prior result"
	if !ctx.HasPrior() {
		return one(notApplicable(levelYearOverYear, ref, name, "prior balance absent"))
	}
	retainedLines := byPrefix(ctx.Current, "12")
	retained := sumCredits(retainedLines) - sumDebits(retainedLines)
	priorLines := byPrefix(ctx.Prior, "13")
	priorResult := sumCredits(priorLines) - sumDebits(priorLines)
	ecart := math.Abs(retained - priorResult)
	if ecart > 1 {
		r := anomaly(levelYearOverYear, ref, name, models.SeverityMajor,
			fmt.Sprintf("retained earnings (%s) differ from the prior result (%s)", amount(retained), amount(priorResult)),
			&models.ResultDetails{
				Ecart:   ecart,
				Amounts: map[string]float64{"retained_earnings": retained, "prior_result": priorResult},
			})
		r.Suggestion = "retained earnings must equal the result of the previous period"
		return one(r)
	}
	return one(ok(levelYearOverYear, ref, name, "retained earnings correct"))
}

// NN-002: opening balances must carry over from the prior closing. Checked
// through the total balance-sheet mass; a doubling is a carry-over error.
func nn002(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "NN-002", "Opening equals prior closing"
	if !ctx.HasPrior() {
		return one(notApplicable(levelYearOverYear, ref, name, "prior balance absent"))
	}
	tbNow := absNetSum(balanceSheetLines(ctx.Current))
	tbPrior := absNetSum(balanceSheetLines(ctx.Prior))
	variation := math.Abs(tbNow-tbPrior) / math.Max(tbPrior, 1) * 100
	if variation > 100 {
		return one(anomaly(levelYearOverYear, ref, name, models.SeverityBlocking,
			fmt.Sprintf("total balance-sheet mass moved %.0f%% between periods; possible carry-over error", variation),
			&models.ResultDetails{Amounts: map[string]float64{
				"sheet_total_current": tbNow, "sheet_total_prior": tbPrior, "variation_pct": variation,
			}}))
	}
	return one(ok(levelYearOverYear, ref, name, "opening balances coherent"))
}

// NN-003: account structure should stay stable between periods.
func nn003(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "NN-003", "Method consistency"
	if !ctx.HasPrior() {
		return one(notApplicable(levelYearOverYear, ref, name, "prior balance absent"))
	}
	prefix3 := func(a string) string {
		a = strings.TrimSpace(a)
		if len(a) > 3 {
			return a[:3]
		}
		return a
	}
	now := make(map[string]bool)
	for _, l := range ctx.Current {
		now[prefix3(l.Account)] = true
	}
	prior := make(map[string]bool)
	for _, l := range ctx.Prior {
		prior[prefix3(l.Account)] = true
	}
	var added, removed []string
	for p := range now {
		if !prior[p] {
			added = append(added, "+"+p)
		}
	}
	for p := range prior {
		if !now[p] {
			removed = append(removed, "-"+p)
		}
	}
	if len(added) > 10 || len(removed) > 10 {
		r := anomaly(levelYearOverYear, ref, name, models.SeverityMinor,
			fmt.Sprintf("significant structure changes: %d new prefixes, %d removed", len(added), len(removed)),
			&models.ResultDetails{Accounts: append(truncate(added, 5), truncate(removed, 5)...)})
		r.Suggestion = "check the consistency-of-methods principle is respected"
		return one(r)
	}
	return one(ok(levelYearOverYear, ref, name, "account structure stable between periods"))
}

// NN-004: capital changes are legitimate only with a capital operation.
func nn004(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "NN-004", "Capital unchanged"
	if !ctx.HasPrior() {
		return one(notApplicable(levelYearOverYear, ref, name, "prior balance absent"))
	}
	capNowLines := byPrefix(ctx.Current, "101")
	capNow := sumCredits(capNowLines) - sumDebits(capNowLines)
	capPriorLines := byPrefix(ctx.Prior, "101")
	capPrior := sumCredits(capPriorLines) - sumDebits(capPriorLines)
	if math.Abs(capNow-capPrior) > 1 {
		r := anomaly(levelYearOverYear, ref, name, models.SeverityInfo,
			fmt.Sprintf("capital changed: %s -> %s", amount(capPrior), amount(capNow)),
			&models.ResultDetails{Amounts: map[string]float64{"capital_current": capNow, "capital_prior": capPrior}})
		r.Suggestion = "check a capital operation justifies this variation"
		return one(r)
	}
	return one(ok(levelYearOverYear, ref, name, fmt.Sprintf("capital stable: %s", amount(capNow))))
}

// NN-005: positions moving more than 50% between periods.
func nn005(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "NN-005", "Abnormal variations"
	if !ctx.HasPrior() {
		return one(notApplicable(levelYearOverYear, ref, name, "prior balance absent"))
	}
	var variations []string
	for _, p := range []string{"2", "3", "40", "41", "5", "6", "7"} {
		now := absNetSum(byPrefix(ctx.Current, p))
		prior := absNetSum(byPrefix(ctx.Prior, p))
		if prior > 1000 {
			pct := (now - prior) / prior * 100
			if math.Abs(pct) > 50 {
				sign := ""
				if pct > 0 {
					sign = "+"
				}
				variations = append(variations,
					fmt.Sprintf("%sx: %s%.0f%% (%s -> %s)", p, sign, pct, amount(prior), amount(now)))
			}
		}
	}
	if len(variations) > 0 {
		r := anomaly(levelYearOverYear, ref, name, models.SeverityMinor,
			fmt.Sprintf("%d position(s) with a variation above 50%%", len(variations)),
			&models.ResultDetails{Accounts: variations})
		r.Suggestion = "justify the significant variations between periods"
		return one(r)
	}
	return one(ok(levelYearOverYear, ref, name, "no abnormal variation detected"))
}

// NN-006: total assets moving more than 30%.
func nn006(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "NN-006", "Total assets variation"
	if !ctx.HasPrior() {
		return one(notApplicable(levelYearOverYear, ref, name, "prior balance absent"))
	}
	tbNow := totalAssets(ctx.Current)
	tbPrior := totalAssets(ctx.Prior)
	if tbPrior > 0 {
		pct := (tbNow - tbPrior) / tbPrior * 100
		if math.Abs(pct) > 30 {
			sign := ""
			if pct > 0 {
				sign = "+"
			}
			return one(anomaly(levelYearOverYear, ref, name, models.SeverityInfo,
				fmt.Sprintf("total assets moved %s%.1f%%", sign, pct),
				&models.ResultDetails{Amounts: map[string]float64{
					"assets_current": tbNow, "assets_prior": tbPrior, "variation_pct": pct,
				}}))
		}
	}
	return one(ok(levelYearOverYear, ref, name, "total assets variation within limits"))
}

// NN-007: significant P&L accounts of the prior period absent or idle now.
func nn007(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "NN-007", "Vanished P&L accounts"
	if !ctx.HasPrior() {
		return one(notApplicable(levelYearOverYear, ref, name, "prior balance absent"))
	}
	current := make(map[string]models.BalanceLine, len(ctx.Current))
	for _, l := range ctx.Current {
		current[l.Account] = l
	}
	var vanished []string
	for _, l := range ctx.Prior {
		cl := classOf(l.Account)
		if (cl != 6 && cl != 7) || math.Abs(l.Net()) <= 1000 {
			continue
		}
		nl, found := current[l.Account]
		if !found || (nl.DebitMovement == 0 && nl.CreditMovement == 0) {
			vanished = append(vanished,
				fmt.Sprintf("%s (%s): %s in the prior period", l.Account, l.Label, amount(math.Abs(l.Net()))))
		}
	}
	if len(vanished) > 0 {
		return one(anomaly(levelYearOverYear, ref, name, models.SeverityMinor,
			fmt.Sprintf("%d significant P&L account(s) of the prior period absent or idle now", len(vanished)),
			&models.ResultDetails{Accounts: truncate(vanished, 10)}))
	}
	return one(ok(levelYearOverYear, ref, name, "P&L account continuity preserved"))
}

// NN-008: a decrease of gross fixed assets needs a booked disposal.
func nn008(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "NN-008", "Fixed-asset movement coherence"
	if !ctx.HasPrior() {
		return one(notApplicable(levelYearOverYear, ref, name, "prior balance absent"))
	}
	grossAssets := func(lines []models.BalanceLine) float64 {
		var s float64
		for _, l := range byPrefix(lines, "2") {
			a := l.Account
			if len(a) >= 2 && (a[:2] == "28" || a[:2] == "29") {
				continue
			}
			if n := l.Net(); n > 0 {
				s += n
			}
		}
		return s
	}
	now := grossAssets(ctx.Current)
	prior := grossAssets(ctx.Prior)
	variation := now - prior
	if variation < -1000 {
		disposals := absNetSum(byPrefix(ctx.Current, "81")) + absNetSum(byPrefix(ctx.Current, "654"))
		if disposals == 0 {
			r := anomaly(levelYearOverYear, ref, name, models.SeverityMinor,
				fmt.Sprintf("fixed assets decreased (%s) without a booked disposal", amount(variation)),
				&models.ResultDetails{Amounts: map[string]float64{
					"assets_current": now, "assets_prior": prior, "variation": variation,
				}})
			r.Suggestion = "check the fixed-asset movements"
			return one(r)
		}
	}
	return one(ok(levelYearOverYear, ref, name, "fixed assets coherent between periods"))
}

func registerLevel5(reg *audit.Registry) {
	register(reg, levelYearOverYear, models.PhaseIntake, []controlDef{
		{"NN-001", "Retained earnings equal prior result", "Checks the retained-earnings carry-over", models.SeverityMajor, nn001},
		{"NN-002", "Opening equals prior closing", "Checks the balance continuity", models.SeverityBlocking, nn002},
		{"NN-003", "Method consistency", "Checks the account structure stays stable", models.SeverityMinor, nn003},
		{"NN-004", "Capital unchanged", "Flags capital variations", models.SeverityInfo, nn004},
		{"NN-005", "Abnormal variations", "Detects positions moving more than 50%", models.SeverityMinor, nn005},
		{"NN-006", "Total assets variation", "Detects the sheet moving more than 30%", models.SeverityInfo, nn006},
		{"NN-007", "Vanished P&L accounts", "Detects prior P&L accounts now absent", models.SeverityMinor, nn007},
		{"NN-008", "Fixed-asset movement coherence", "Checks fixed-asset decreases have disposals", models.SeverityMinor, nn008},
	})
}
