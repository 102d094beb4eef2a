// backend/src/audit/controls/level5_comparison.go
//
// Level 5 continuity checks between the prior closing and the current opening:
// carry-forward of balance-sheet accounts, result allocation, P&L reset and
// equity continuity. Like the rest of level 5, every control reports
// NOT_APPLICABLE when no prior balance was supplied.
package controls

import (
	"fmt"
	"math"
	"strings"

	"github.com/username/fiscasync/backend/src/audit"
	"github.com/username/fiscasync/backend/src/models"
)

// COMP-001: prior closing balances must reappear as current opening balances
// for every balance-sheet account. Per-account gaps above one currency unit
// accumulate; a total above 100 blocks.
func comp001(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "COMP-001", "Closing equals opening balances"
	if !ctx.HasPrior() {
		return one(notApplicable(levelYearOverYear, ref, name, "prior balance absent"))
	}
	priorNet := make(map[string]float64)
	for _, l := range balanceSheetLines(ctx.Prior) {
		priorNet[strings.TrimSpace(l.Account)] = l.Net()
	}
	var totalEcart float64
	var gaps []string
	for _, l := range balanceSheetLines(ctx.Current) {
		prior := priorNet[strings.TrimSpace(l.Account)]
		ecart := math.Abs(l.Net() - prior)
		if ecart > 1 {
			totalEcart += ecart
			if len(gaps) < 10 {
				gaps = append(gaps, fmt.Sprintf("%s: prior=%s vs current=%s", l.Account, amount(prior), amount(l.Net())))
			}
		}
	}
	if totalEcart > 100 {
		r := anomaly(levelYearOverYear, ref, name, models.SeverityBlocking,
			fmt.Sprintf("total gap of %s on balance-sheet accounts between the prior closing and the current opening", amount(totalEcart)),
			&models.ResultDetails{
				Accounts: gaps,
				Ecart:    totalEcart,
				Amounts:  map[string]float64{"total_gap": totalEcart, "accounts_with_gap": float64(len(gaps))},
			})
		r.Suggestion = "reconcile the two balances account by account and check the carry-forward entries"
		r.RegulatoryReference = "Art. 40 Acte Uniforme OHADA - Continuite des exercices"
		return one(r)
	}
	return one(ok(levelYearOverYear, ref, name, "balance-sheet accounts continuous between periods"))
}

// COMP-002: significant prior balance-sheet accounts must not vanish from the
// current balance.
func comp002(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "COMP-002", "Prior accounts missing"
	if !ctx.HasPrior() {
		return one(notApplicable(levelYearOverYear, ref, name, "prior balance absent"))
	}
	current := make(map[string]bool, len(ctx.Current))
	for _, l := range ctx.Current {
		current[strings.TrimSpace(l.Account)] = true
	}
	var missing []string
	for _, l := range balanceSheetLines(ctx.Prior) {
		if math.Abs(l.Net()) > 100 && !current[strings.TrimSpace(l.Account)] {
			missing = append(missing, fmt.Sprintf("%s (%s): %s", l.Account, l.Label, amount(l.Net())))
		}
	}
	if len(missing) > 0 {
		r := anomaly(levelYearOverYear, ref, name, models.SeverityMajor,
			fmt.Sprintf("%d significant prior balance-sheet account(s) absent from the current balance", len(missing)),
			&models.ResultDetails{
				Accounts: truncate(missing, 15),
				Amounts:  map[string]float64{"missing_accounts": float64(len(missing))},
			})
		r.Suggestion = "every prior balance-sheet account must be carried forward; add the missing opening entries"
		return one(r)
	}
	return one(ok(levelYearOverYear, ref, name, "all prior accounts present in the current balance"))
}

// COMP-003: the prior result (13x) must have been allocated to retained
// earnings (12x), reserves (11x) or dividends payable (46x), leaving 13x
// cleared at the opening.
func comp003(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "COMP-003", "Prior result allocation"
	if !ctx.HasPrior() {
		return one(notApplicable(levelYearOverYear, ref, name, "prior balance absent"))
	}
	priorLines := byPrefix(ctx.Prior, "13")
	priorResult := sumCredits(priorLines) - sumDebits(priorLines)
	if math.Abs(priorResult) < 1 {
		return one(ok(levelYearOverYear, ref, name, "no prior result to allocate"))
	}
	ranLines := byPrefix(ctx.Current, "12")
	reserveLines := byPrefix(ctx.Current, "11")
	dividendLines := byPrefix(ctx.Current, "46")
	resultLines := byPrefix(ctx.Current, "13")
	result13 := sumCredits(resultLines) - sumDebits(resultLines)
	if math.Abs(result13) > 1 {
		r := anomaly(levelYearOverYear, ref, name, models.SeverityMajor,
			fmt.Sprintf("prior result (%s) not allocated: 13x accounts still carry %s", amount(priorResult), amount(result13)),
			&models.ResultDetails{
				Amounts: map[string]float64{
					"prior_result": priorResult,
					"retained":     sumCredits(ranLines) - sumDebits(ranLines),
					"reserves":     sumCredits(reserveLines) - sumDebits(reserveLines),
					"dividends":    sumCredits(dividendLines) - sumDebits(dividendLines),
					"result_13x":   result13,
				},
			})
		r.Suggestion = "post the allocation entry: 13x to 12x (retained earnings), 11x (reserves) or 46x (dividends)"
		r.RegulatoryReference = "Art. 36 Acte Uniforme OHADA - Affectation du resultat"
		return one(r)
	}
	return one(ok(levelYearOverYear, ref, name, "prior result properly allocated"))
}

// COMP-004: P&L accounts (classes 6 and 7) must be reset at the opening. An
// account keeping the exact same balance as the prior period signals a missed
// reset; more than 3 such accounts blocks.
func comp004(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "COMP-004", "P&L accounts reset"
	if !ctx.HasPrior() {
		return one(notApplicable(levelYearOverYear, ref, name, "prior balance absent"))
	}
	priorNet := make(map[string]float64)
	for _, l := range ctx.Prior {
		if cl := classOf(l.Account); (cl == 6 || cl == 7) && math.Abs(l.Net()) > 100 {
			priorNet[strings.TrimSpace(l.Account)] = l.Net()
		}
	}
	var notReset []string
	for _, l := range ctx.Current {
		if cl := classOf(l.Account); cl != 6 && cl != 7 {
			continue
		}
		prior, seen := priorNet[strings.TrimSpace(l.Account)]
		if seen && math.Abs(l.Net()-prior) < 1 && math.Abs(l.Net()) > 100 {
			notReset = append(notReset, fmt.Sprintf("%s: identical balance %s", l.Account, amount(l.Net())))
		}
	}
	if len(notReset) > 3 {
		r := anomaly(levelYearOverYear, ref, name, models.SeverityBlocking,
			fmt.Sprintf("%d P&L account(s) keep the exact prior-period balance; the reset was likely skipped", len(notReset)),
			&models.ResultDetails{
				Accounts: truncate(notReset, 10),
				Amounts:  map[string]float64{"accounts_not_reset": float64(len(notReset))},
			})
		r.Suggestion = "reset the P&L accounts at the opening and re-import the corrected balance"
		r.RegulatoryReference = "Art. 22 Acte Uniforme OHADA - Principe d'independance des exercices"
		return one(r)
	}
	return one(ok(levelYearOverYear, ref, name, "P&L accounts properly reset"))
}

// COMP-005: the opening balance-sheet columns must be in equilibrium; a gap
// means broken carry-forward entries.
func comp005(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "COMP-005", "Opening equilibrium"
	if !ctx.HasPrior() {
		return one(notApplicable(levelYearOverYear, ref, name, "prior balance absent"))
	}
	var totalDebit, totalCredit float64
	for _, l := range balanceSheetLines(ctx.Current) {
		totalDebit += l.DebitBalance
		totalCredit += l.CreditBalance
	}
	ecart := math.Abs(totalDebit - totalCredit)
	if ecart > 1 {
		r := anomaly(levelYearOverYear, ref, name, models.SeverityBlocking,
			fmt.Sprintf("balance-sheet columns out of equilibrium: debit=%s credit=%s gap=%s",
				amount(totalDebit), amount(totalCredit), amount(ecart)),
			&models.ResultDetails{
				Ecart:   ecart,
				Amounts: map[string]float64{"total_debit": totalDebit, "total_credit": totalCredit},
			})
		r.Suggestion = "fix the carry-forward entries until total assets equal total liabilities"
		return one(r)
	}
	return one(ok(levelYearOverYear, ref, name, "balance-sheet columns in equilibrium"))
}

// COMP-006: equity must carry over: class 1 (excluding 13x) of the current
// period should equal the prior equity plus the prior result, barring capital
// operations. Flagged above a 20% relative gap and 10000 absolute.
func comp006(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "COMP-006", "Equity continuity"
	if !ctx.HasPrior() {
		return one(notApplicable(levelYearOverYear, ref, name, "prior balance absent"))
	}
	equityNow := equityExcludingResult(ctx.Current)
	equityPrior := equityExcludingResult(ctx.Prior)
	priorLines := byPrefix(ctx.Prior, "13")
	priorResult := sumCredits(priorLines) - sumDebits(priorLines)

	expected := equityPrior + priorResult
	ecart := math.Abs(equityNow - expected)
	pct := 0.0
	if math.Abs(expected) > 0 {
		pct = ecart / math.Abs(expected) * 100
	}
	if pct > 20 && ecart > 10000 {
		r := anomaly(levelYearOverYear, ref, name, models.SeverityMajor,
			fmt.Sprintf("equity (%s) differs from prior equity plus prior result (%s)", amount(equityNow), amount(expected)),
			&models.ResultDetails{
				Ecart: ecart,
				Amounts: map[string]float64{
					"equity_current": equityNow, "equity_prior": equityPrior,
					"prior_result": priorResult, "equity_expected": expected,
					"variation_pct": math.Round(pct),
				},
			})
		r.Suggestion = "reconstruct the equity variation: capital, reserves, retained earnings, result"
		r.RegulatoryReference = "Art. 74 Acte Uniforme OHADA - Variation des capitaux propres"
		return one(r)
	}
	return one(ok(levelYearOverYear, ref, name, "equity continuity verified"))
}

func equityExcludingResult(lines []models.BalanceLine) float64 {
	var s float64
	for _, l := range byPrefix(lines, "1") {
		if strings.HasPrefix(strings.TrimSpace(l.Account), "13") {
			continue
		}
		s += l.CreditMovement - l.DebitMovement
	}
	return s
}

// COMP-007: significant balance-sheet accounts appearing for the first time.
// Informational: new activity is normal, a reclassification is worth a look.
func comp007(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "COMP-007", "New accounts"
	if !ctx.HasPrior() {
		return one(notApplicable(levelYearOverYear, ref, name, "prior balance absent"))
	}
	prior := make(map[string]bool, len(ctx.Prior))
	for _, l := range ctx.Prior {
		prior[strings.TrimSpace(l.Account)] = true
	}
	var fresh []string
	for _, l := range balanceSheetLines(ctx.Current) {
		if math.Abs(l.Net()) > 100 && !prior[strings.TrimSpace(l.Account)] {
			fresh = append(fresh, fmt.Sprintf("%s (%s): %s", l.Account, l.Label, amount(l.Net())))
		}
	}
	if len(fresh) > 0 {
		r := anomaly(levelYearOverYear, ref, name, models.SeverityInfo,
			fmt.Sprintf("%d balance-sheet account(s) present this period but absent the prior one", len(fresh)),
			&models.ResultDetails{
				Accounts: truncate(fresh, 15),
				Amounts:  map[string]float64{"new_accounts": float64(len(fresh))},
			})
		r.Suggestion = "check these accounts map to real operations and are properly classified"
		return one(r)
	}
	return one(ok(levelYearOverYear, ref, name, "no significant new balance-sheet account"))
}

// COMP-008: total assets (positive nets of classes 2-5) moving more than 50%
// between periods needs a justification.
func comp008(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "COMP-008", "Balance-sheet total continuity"
	if !ctx.HasPrior() {
		return one(notApplicable(levelYearOverYear, ref, name, "prior balance absent"))
	}
	totalNow := positiveAssetTotal(ctx.Current)
	totalPrior := positiveAssetTotal(ctx.Prior)
	if totalPrior > 0 {
		variation := (totalNow - totalPrior) / totalPrior * 100
		if math.Abs(variation) > 50 {
			r := anomaly(levelYearOverYear, ref, name, models.SeverityMajor,
				fmt.Sprintf("balance-sheet total moved %+.0f%% between periods", variation),
				&models.ResultDetails{
					Amounts: map[string]float64{
						"assets_current": totalNow, "assets_prior": totalPrior,
						"variation_pct": math.Round(variation),
					},
				})
			r.Suggestion = "identify the headings behind the variation and document them in the notes"
			return one(r)
		}
	}
	return one(ok(levelYearOverYear, ref, name, "balance-sheet total stable between periods"))
}

func positiveAssetTotal(lines []models.BalanceLine) float64 {
	var s float64
	for _, l := range lines {
		if cl := classOf(l.Account); cl >= 2 && cl <= 5 {
			if n := l.Net(); n > 0 {
				s += n
			}
		}
	}
	return s
}

func registerComparison(reg *audit.Registry) {
	register(reg, levelYearOverYear, models.PhaseIntake, []controlDef{
		{"COMP-001", "Closing equals opening balances", "Checks balance-sheet continuity account by account", models.SeverityBlocking, comp001},
		{"COMP-002", "Prior accounts missing", "Detects prior balance-sheet accounts absent this period", models.SeverityMajor, comp002},
		{"COMP-003", "Prior result allocation", "Checks the prior result was allocated", models.SeverityMajor, comp003},
		{"COMP-004", "P&L accounts reset", "Checks classes 6 and 7 were reset at the opening", models.SeverityBlocking, comp004},
		{"COMP-005", "Opening equilibrium", "Checks the opening balance-sheet columns balance", models.SeverityBlocking, comp005},
		{"COMP-006", "Equity continuity", "Checks equity equals prior equity plus prior result", models.SeverityMajor, comp006},
		{"COMP-007", "New accounts", "Flags balance-sheet accounts new this period", models.SeverityInfo, comp007},
		{"COMP-008", "Balance-sheet total continuity", "Checks the balance-sheet total variation", models.SeverityMajor, comp008},
	})
}
