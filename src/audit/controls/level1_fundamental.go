// backend/src/audit/controls/level1_fundamental.go
//
// Level 1 - fundamental equilibrium and coherence checks.
package controls

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/username/fiscasync/backend/src/audit"
	"github.com/username/fiscasync/backend/src/models"
)

const levelFundamental = 1

// F-001: total debits equal total credits. The corrective entry parks the gap
// on the 471000 suspense account until the source imbalance is found.
func f001(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "F-001", "General equilibrium"
	totalD := sumDebits(ctx.Current)
	totalC := sumCredits(ctx.Current)
	ecart := math.Abs(totalD - totalC)
	if ecart > tolerance {
		side := "C"
		if totalD < totalC {
			side = "D"
		}
		r := anomaly(levelFundamental, ref, name, models.SeverityBlocking,
			fmt.Sprintf("imbalance of %s between debits and credits", amount(ecart)),
			&models.ResultDetails{
				Ecart:   ecart,
				Amounts: map[string]float64{"total_debit": totalD, "total_credit": totalC},
			})
		r.Suggestion = "total debits must equal total credits"
		r.CorrectiveEntries = []models.JournalEntry{{
			Journal: "OD",
			Date:    time.Now().UTC().Format("2006-01-02"),
			Lines: []models.JournalEntryLine{
				{Side: side, Account: "471000", Label: "Suspense account", Amount: ecart},
			},
			Comment: "Provisional balancing entry",
		}}
		r.RegulatoryReference = "Art. 19 Acte Uniforme OHADA relatif au droit comptable"
		return one(r)
	}
	return one(ok(levelFundamental, ref, name,
		fmt.Sprintf("balance in equilibrium (D=%s, C=%s)", amount(totalD), amount(totalC))))
}

// F-002: same check on the prior balance.
func f002(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "F-002", "Prior-period equilibrium"
	if !ctx.HasPrior() {
		return one(notApplicable(levelFundamental, ref, name, "prior balance absent"))
	}
	totalD := sumDebits(ctx.Prior)
	totalC := sumCredits(ctx.Prior)
	ecart := math.Abs(totalD - totalC)
	if ecart > tolerance {
		return one(anomaly(levelFundamental, ref, name, models.SeverityBlocking,
			fmt.Sprintf("prior-period imbalance of %s", amount(ecart)),
			&models.ResultDetails{
				Ecart:   ecart,
				Amounts: map[string]float64{"prior_total_debit": totalD, "prior_total_credit": totalC},
			}))
	}
	return one(ok(levelFundamental, ref, name, "prior balance in equilibrium"))
}

// F-003: the P&L result (revenue minus expenses) must match the 13x result
// accounts. A gap above one currency unit means the result posting is wrong.
func f003(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "F-003", "Result coherence"
	revenue := byPrefix(ctx.Current, "7")
	expenses := byPrefix(ctx.Current, "6")
	totalRevenue := sumCredits(revenue) - sumDebits(revenue)
	totalExpenses := sumDebits(expenses) - sumCredits(expenses)
	computed := totalRevenue - totalExpenses

	result13 := byPrefix(ctx.Current, "13")
	booked := sumCredits(result13) - sumDebits(result13)

	ecart := math.Abs(computed - booked)
	if ecart > 1 && len(result13) > 0 {
		r := anomaly(levelFundamental, ref, name, models.SeverityBlocking,
			fmt.Sprintf("gap of %s between computed result and 13x accounts", amount(ecart)),
			&models.ResultDetails{
				Ecart: ecart,
				Amounts: map[string]float64{
					"computed_result": computed, "booked_result": booked,
					"revenue": totalRevenue, "expenses": totalExpenses,
				},
			})
		r.Suggestion = "the result (revenue minus expenses) must match the 13x balance"
		r.RegulatoryReference = "Art. 34 Acte Uniforme OHADA"
		return one(r)
	}
	if len(result13) == 0 {
		return one(anomaly(levelFundamental, ref, name, models.SeverityMinor,
			fmt.Sprintf("computed result %s but no 13x account in the balance", amount(computed)),
			&models.ResultDetails{Amounts: map[string]float64{"computed_result": computed}}))
	}
	return one(ok(levelFundamental, ref, name, fmt.Sprintf("result coherent: %s", amount(computed))))
}

// F-004: balance-sheet equilibrium. Debit balances of classes 1-5 form the
// assets side, credit balances the liabilities side.
func f004(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "F-004", "Balance-sheet equilibrium"
	var totalAssets, totalLiabilities float64
	for _, l := range balanceSheetLines(ctx.Current) {
		if s := l.Net(); s > 0 {
			totalAssets += s
		} else {
			totalLiabilities += -s
		}
	}
	ecart := math.Abs(totalAssets - totalLiabilities)
	if ecart > 1 {
		r := anomaly(levelFundamental, ref, name, models.SeverityBlocking,
			fmt.Sprintf("balance-sheet imbalance: assets=%s, liabilities=%s (gap: %s)",
				amount(totalAssets), amount(totalLiabilities), amount(ecart)),
			&models.ResultDetails{
				Ecart:   ecart,
				Amounts: map[string]float64{"total_assets": totalAssets, "total_liabilities": totalLiabilities},
			})
		r.Suggestion = "total assets must equal total liabilities and equity"
		r.RegulatoryReference = "Art. 29 Acte Uniforme OHADA"
		return one(r)
	}
	return one(ok(levelFundamental, ref, name, fmt.Sprintf("balance sheet in equilibrium: %s", amount(totalAssets))))
}

// F-005: a complete trial balance carries classes 1, 2, 4, 5, 6 and 7.
func f005(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "F-005", "Essential classes present"
	present := make(map[string]bool)
	for _, l := range ctx.Current {
		a := strings.TrimSpace(l.Account)
		if a != "" {
			present[a[:1]] = true
		}
	}
	var missing []string
	for _, c := range []string{"1", "2", "4", "5", "6", "7"} {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		r := anomaly(levelFundamental, ref, name, models.SeverityMajor,
			fmt.Sprintf("missing classes: %s", strings.Join(missing, ", ")),
			&models.ResultDetails{Accounts: missing})
		r.Suggestion = "a complete balance carries classes 1, 2, 4, 5, 6 and 7"
		return one(r)
	}
	var classes []string
	for c := range present {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	return one(ok(levelFundamental, ref, name,
		fmt.Sprintf("all essential classes present (%s)", strings.Join(classes, ", "))))
}

// F-006: share capital (101x) must exist for any company.
func f006(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "F-006", "Capital account present"
	capital := byPrefix(ctx.Current, "101")
	if len(capital) == 0 {
		r := anomaly(levelFundamental, ref, name, models.SeverityMajor,
			"no share-capital account (101x) found", nil)
		r.Suggestion = "share capital is mandatory for any company"
		return one(r)
	}
	m := sumCredits(capital) - sumDebits(capital)
	return one(ok(levelFundamental, ref, name, fmt.Sprintf("share capital: %s", amount(m))))
}

// F-007: result account (13x) presence.
func f007(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "F-007", "Result account present"
	result13 := byPrefix(ctx.Current, "13")
	if len(result13) == 0 {
		r := anomaly(levelFundamental, ref, name, models.SeverityMinor,
			"no result account (13x) found", nil)
		r.Suggestion = "the period result must appear in the balance"
		return one(r)
	}
	m := sumCredits(result13) - sumDebits(result13)
	return one(ok(levelFundamental, ref, name, fmt.Sprintf("result: %s", amount(m))))
}

// F-008: retained earnings (12x) must carry the prior-period result.
func f008(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "F-008", "Retained earnings coherence"
	if !ctx.HasPrior() {
		return one(notApplicable(levelFundamental, ref, name, "prior balance absent"))
	}
	retained := byPrefix(ctx.Current, "12")
	priorResult := byPrefix(ctx.Prior, "13")

	if len(retained) == 0 && len(priorResult) > 0 {
		r := anomaly(levelFundamental, ref, name, models.SeverityMajor,
			"no retained earnings (12x) although the prior balance carries a result", nil)
		r.Suggestion = "the prior-period result must be carried forward to a 12x account"
		return one(r)
	}
	if len(retained) == 0 {
		return one(notApplicable(levelFundamental, ref, name, "no retained earnings and no prior result"))
	}

	retainedAmount := sumCredits(retained) - sumDebits(retained)
	priorAmount := sumCredits(priorResult) - sumDebits(priorResult)
	ecart := math.Abs(retainedAmount - priorAmount)
	if ecart > 1 {
		r := anomaly(levelFundamental, ref, name, models.SeverityMajor,
			fmt.Sprintf("retained earnings (%s) do not match the prior result (%s)",
				amount(retainedAmount), amount(priorAmount)),
			&models.ResultDetails{
				Ecart:   ecart,
				Amounts: map[string]float64{"retained_earnings": retainedAmount, "prior_result": priorAmount},
			})
		r.Suggestion = "retained earnings must correspond to the prior-period result"
		return one(r)
	}
	return one(ok(levelFundamental, ref, name, fmt.Sprintf("retained earnings coherent: %s", amount(retainedAmount))))
}

// F-009: a full balance usually carries at least 50 accounts.
func f009(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "F-009", "Sufficient account count"
	count := len(ctx.Current)
	if count < 50 {
		r := anomaly(levelFundamental, ref, name, models.SeverityMinor,
			fmt.Sprintf("only %d accounts (a complete balance usually carries 50+)", count),
			&models.ResultDetails{Amounts: map[string]float64{"account_count": float64(count)}})
		r.Suggestion = "a short balance may indicate a partial import"
		return one(r)
	}
	return one(ok(levelFundamental, ref, name, fmt.Sprintf("%d accounts in the balance", count)))
}

// F-010: accounts with no movement and no balance.
func f010(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "F-010", "Zero-balance accounts"
	var zero []string
	for _, l := range ctx.Current {
		if l.DebitMovement == 0 && l.CreditMovement == 0 && l.DebitBalance == 0 && l.CreditBalance == 0 {
			zero = append(zero, l.Account)
		}
	}
	if len(zero) > 0 {
		pct := float64(len(zero)) / float64(len(ctx.Current)) * 100
		r := anomaly(levelFundamental, ref, name, models.SeverityInfo,
			fmt.Sprintf("%d zero-balance account(s) (%.1f%%)", len(zero), pct),
			&models.ResultDetails{Accounts: truncate(zero, 10)})
		r.Suggestion = "zero-balance accounts can be cleaned up"
		return one(r)
	}
	return one(ok(levelFundamental, ref, name, "no zero-balance account"))
}

// F-011: collective accounts 401 and 411 must be broken down into
// sub-accounts.
func f011(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "F-011", "Collective accounts"
	var undetailed []string
	for _, prefix := range []string{"401", "411"} {
		exact, detailed := 0, 0
		for _, l := range ctx.Current {
			a := strings.TrimSpace(l.Account)
			if a == prefix {
				exact++
			} else if strings.HasPrefix(a, prefix) {
				detailed++
			}
		}
		if exact > 0 && detailed == 0 {
			undetailed = append(undetailed, prefix)
		}
	}
	if len(undetailed) > 0 {
		r := anomaly(levelFundamental, ref, name, models.SeverityMinor,
			fmt.Sprintf("undetailed collective account(s): %s", strings.Join(undetailed, ", ")),
			&models.ResultDetails{Accounts: undetailed})
		r.Suggestion = "collective accounts (401, 411) must be broken down into sub-accounts"
		return one(r)
	}
	return one(ok(levelFundamental, ref, name, "collective accounts properly detailed"))
}

func registerLevel1(reg *audit.Registry) {
	register(reg, levelFundamental, models.PhaseIntake, []controlDef{
		{"F-001", "General equilibrium", "Checks total debits equal total credits", models.SeverityBlocking, f001},
		{"F-002", "Prior-period equilibrium", "Checks the prior balance equilibrium", models.SeverityBlocking, f002},
		{"F-003", "Result coherence", "Checks revenue minus expenses against the 13x accounts", models.SeverityBlocking, f003},
		{"F-004", "Balance-sheet equilibrium", "Checks assets equal liabilities and equity", models.SeverityBlocking, f004},
		{"F-005", "Essential classes present", "Checks the presence of classes 1-7", models.SeverityMajor, f005},
		{"F-006", "Capital account present", "Checks the presence of share capital", models.SeverityMajor, f006},
		{"F-007", "Result account present", "Checks the presence of the result account", models.SeverityMinor, f007},
		{"F-008", "Retained earnings coherence", "Checks retained earnings against the prior result", models.SeverityMajor, f008},
		{"F-009", "Sufficient account count", "Checks the balance carries at least 50 accounts", models.SeverityMinor, f009},
		{"F-010", "Zero-balance accounts", "Flags accounts with no movement and no balance", models.SeverityInfo, f010},
		{"F-011", "Collective accounts", "Checks collective accounts are broken down", models.SeverityMinor, f011},
	})
}
