// backend/src/audit/controls/level3_balance_sense.go
//
// Level 3 - balance sense (SS-xxx) and aberrant amounts (MA-xxx).
package controls

import (
	"fmt"
	"math"
	"time"

	"github.com/username/fiscasync/backend/src/audit"
	"github.com/username/fiscasync/backend/src/models"
)

const levelBalanceSense = 3

// Sense inversions below one currency unit are rounding noise, not anomalies.
const senseThreshold = 1.0

// totalAssets sums the debit-side balances of the balance-sheet classes.
func totalAssets(lines []models.BalanceLine) float64 {
	var s float64
	for _, l := range balanceSheetLines(lines) {
		if n := l.Net(); n > 0 {
			s += n
		}
	}
	return s
}

func checkClassSense(ctx *audit.Context, ref, name, prefix, expected, description string) models.ControlResult {
	var inverted []string
	for _, l := range byPrefix(ctx.Current, prefix) {
		s := l.Net()
		if (expected == "debit" && s < -senseThreshold) || (expected == "credit" && s > senseThreshold) {
			inverted = append(inverted, fmt.Sprintf("%s (%s): %s", l.Account, l.Label, amount(s)))
		}
	}
	if len(inverted) > 0 {
		r := anomaly(levelBalanceSense, ref, name, models.SeverityMinor,
			fmt.Sprintf("%d account(s) under %sx with an inverted sense (%s)", len(inverted), prefix, description),
			&models.ResultDetails{Accounts: truncate(inverted, 10)})
		r.Suggestion = fmt.Sprintf("accounts under %sx normally carry a %s balance", prefix, expected)
		return r
	}
	return ok(levelBalanceSense, ref, name, fmt.Sprintf("all accounts under %sx carry a normal sense", prefix))
}

func ss001(ctx *audit.Context) ([]models.ControlResult, error) {
	return one(checkClassSense(ctx, "SS-001", "Fixed-asset sense", "2", "debit", "credit-side fixed assets"))
}

func ss002(ctx *audit.Context) ([]models.ControlResult, error) {
	return one(checkClassSense(ctx, "SS-002", "Inventory sense", "3", "debit", "credit-side inventories"))
}

func ss003(ctx *audit.Context) ([]models.ControlResult, error) {
	return one(checkClassSense(ctx, "SS-003", "Expense sense", "6", "debit", "credit-side expenses"))
}

func ss004(ctx *audit.Context) ([]models.ControlResult, error) {
	return one(checkClassSense(ctx, "SS-004", "Revenue sense", "7", "credit", "debit-side revenue"))
}

// SS-005: credit-side customers are reclassified to the liabilities side.
func ss005(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "SS-005", "Credit-side customers"
	var credit []string
	var reclass float64
	for _, l := range byPrefix(ctx.Current, "411") {
		if s := l.Net(); s < -senseThreshold {
			credit = append(credit, fmt.Sprintf("%s: %s", l.Account, amount(s)))
			reclass += -s
		}
	}
	if len(credit) > 0 {
		r := anomaly(levelBalanceSense, ref, name, models.SeverityMinor,
			fmt.Sprintf("%d credit-side customer(s) for %s", len(credit), amount(reclass)),
			&models.ResultDetails{Accounts: credit, Amounts: map[string]float64{"reclass_amount": reclass}})
		r.Suggestion = "reclassify to liabilities (advances received) or check unapplied credit notes"
		r.CorrectiveEntries = []models.JournalEntry{{
			Journal: "OD",
			Date:    time.Now().UTC().Format("2006-01-02"),
			Lines: []models.JournalEntryLine{
				{Side: "D", Account: "411000", Label: "Customers - reclassification", Amount: reclass},
				{Side: "C", Account: "419000", Label: "Credit-side customers (liabilities)", Amount: reclass},
			},
			Comment: "Reclassification of credit-side customers to liabilities",
		}}
		return one(r)
	}
	return one(ok(levelBalanceSense, ref, name, "all customer accounts are debit-side"))
}

// SS-006: debit-side suppliers are reclassified to the assets side.
func ss006(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "SS-006", "Debit-side suppliers"
	var debit []string
	var reclass float64
	for _, l := range byPrefix(ctx.Current, "401") {
		if s := l.Net(); s > senseThreshold {
			debit = append(debit, fmt.Sprintf("%s: %s", l.Account, amount(s)))
			reclass += s
		}
	}
	if len(debit) > 0 {
		r := anomaly(levelBalanceSense, ref, name, models.SeverityMinor,
			fmt.Sprintf("%d debit-side supplier(s) for %s", len(debit), amount(reclass)),
			&models.ResultDetails{Accounts: debit, Amounts: map[string]float64{"reclass_amount": reclass}})
		r.Suggestion = "reclassify to assets (advances paid) or check credit notes"
		r.CorrectiveEntries = []models.JournalEntry{{
			Journal: "OD",
			Date:    time.Now().UTC().Format("2006-01-02"),
			Lines: []models.JournalEntryLine{
				{Side: "D", Account: "409000", Label: "Debit-side suppliers (assets)", Amount: reclass},
				{Side: "C", Account: "401000", Label: "Suppliers - reclassification", Amount: reclass},
			},
			Comment: "Reclassification of debit-side suppliers to assets",
		}}
		return one(r)
	}
	return one(ok(levelBalanceSense, ref, name, "all supplier accounts are credit-side"))
}

// SS-007: credit-side banks are overdrafts to reclassify.
func ss007(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "SS-007", "Credit-side banks"
	var credit []string
	var reclass float64
	for _, l := range byPrefix(ctx.Current, "52") {
		if s := l.Net(); s < -senseThreshold {
			credit = append(credit, fmt.Sprintf("%s: %s", l.Account, amount(s)))
			reclass += -s
		}
	}
	if len(credit) > 0 {
		r := anomaly(levelBalanceSense, ref, name, models.SeverityMinor,
			fmt.Sprintf("%d credit-side bank(s) for %s (overdraft)", len(credit), amount(reclass)),
			&models.ResultDetails{Accounts: credit, Amounts: map[string]float64{"reclass_amount": reclass}})
		r.Suggestion = "reclassify as liability-side cash (bank facilities)"
		return one(r)
	}
	return one(ok(levelBalanceSense, ref, name, "all bank accounts are debit-side"))
}

func ss008(ctx *audit.Context) ([]models.ControlResult, error) {
	return one(checkClassSense(ctx, "SS-008", "Depreciation sense", "28", "credit", "debit-side depreciation"))
}

// SS-009: provisions (29x, 39x, 49x) normally carry credit balances.
func ss009(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "SS-009", "Provision sense"
	var inverted []string
	for _, l := range byPrefix(ctx.Current, "29", "39", "49") {
		if s := l.Net(); s > senseThreshold {
			inverted = append(inverted, fmt.Sprintf("%s: %s", l.Account, amount(s)))
		}
	}
	if len(inverted) > 0 {
		return one(anomaly(levelBalanceSense, ref, name, models.SeverityMinor,
			fmt.Sprintf("%d provision(s) with an inverted sense", len(inverted)),
			&models.ResultDetails{Accounts: truncate(inverted, 10)}))
	}
	return one(ok(levelBalanceSense, ref, name, "all provisions carry a normal sense"))
}

// SS-010: negative share capital.
func ss010(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "SS-010", "Negative capital"
	capital := byPrefix(ctx.Current, "101")
	m := sumCredits(capital) - sumDebits(capital)
	if m < 0 {
		r := anomaly(levelBalanceSense, ref, name, models.SeverityMajor,
			fmt.Sprintf("negative share capital: %s", amount(m)),
			&models.ResultDetails{Amounts: map[string]float64{"share_capital": m}})
		r.Suggestion = "a negative capital is abnormal and must be corrected"
		return one(r)
	}
	return one(ok(levelBalanceSense, ref, name, fmt.Sprintf("share capital positive: %s", amount(m))))
}

// MA-001: one account above 50% of total assets.
func ma001(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "MA-001", "Amount concentration"
	tb := totalAssets(ctx.Current)
	if tb == 0 {
		return one(ok(levelBalanceSense, ref, name, "empty balance sheet"))
	}
	var concentrated []string
	for _, l := range balanceSheetLines(ctx.Current) {
		if a := math.Abs(l.Net()); a > tb*0.5 {
			concentrated = append(concentrated, fmt.Sprintf("%s: %s (%.1f%%)", l.Account, amount(a), a/tb*100))
		}
	}
	if len(concentrated) > 0 {
		r := anomaly(levelBalanceSense, ref, name, models.SeverityMinor,
			fmt.Sprintf("%d account(s) above 50%% of total assets", len(concentrated)),
			&models.ResultDetails{Accounts: concentrated})
		r.Suggestion = "strong concentration; check the breakdown of the positions"
		return one(r)
	}
	return one(ok(levelBalanceSense, ref, name, "no excessive concentration"))
}

// MA-002: amounts ending in .01 or .99 often betray rounding errors.
func ma002(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "MA-002", "Suspicious cents"
	var suspect []string
	for _, l := range ctx.Current {
		for _, m := range []float64{l.DebitMovement, l.CreditMovement} {
			if m > 0 {
				cents := int(math.Round(math.Mod(m, 1) * 100))
				if cents == 1 || cents == 99 {
					suspect = append(suspect, fmt.Sprintf("%s: %s", l.Account, amount(m)))
				}
			}
		}
	}
	if len(suspect) > 3 {
		r := anomaly(levelBalanceSense, ref, name, models.SeverityInfo,
			fmt.Sprintf("%d amount(s) with suspicious cents (.01 or .99)", len(suspect)),
			&models.ResultDetails{Accounts: truncate(suspect, 10)})
		r.Suggestion = "amounts ending in .01 or .99 may indicate rounding errors"
		return one(r)
	}
	return one(ok(levelBalanceSense, ref, name, "no suspicious cents"))
}

// MA-003: debit and credit columns must be positive.
func ma003(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "MA-003", "Negative amounts"
	var negative []string
	for _, l := range ctx.Current {
		if l.DebitMovement < 0 || l.CreditMovement < 0 {
			negative = append(negative, fmt.Sprintf("%s: D=%s, C=%s", l.Account, amount(l.DebitMovement), amount(l.CreditMovement)))
		}
	}
	if len(negative) > 0 {
		r := anomaly(levelBalanceSense, ref, name, models.SeverityMinor,
			fmt.Sprintf("%d line(s) with negative debit/credit amounts", len(negative)),
			&models.ResultDetails{Accounts: truncate(negative, 10)})
		r.Suggestion = "debit and credit amounts must be positive; use the opposite column instead"
		return one(r)
	}
	return one(ok(levelBalanceSense, ref, name, "no negative amount"))
}

// MA-004: loss above half the share capital.
func ma004(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "MA-004", "Loss versus capital"
	capitalLines := byPrefix(ctx.Current, "101")
	capital := sumCredits(capitalLines) - sumDebits(capitalLines)
	resultLines := byPrefix(ctx.Current, "13")
	result := sumCredits(resultLines) - sumDebits(resultLines)
	if capital > 0 && result < 0 && math.Abs(result) > capital*0.5 {
		r := anomaly(levelBalanceSense, ref, name, models.SeverityInfo,
			fmt.Sprintf("loss (%s) exceeds 50%% of the share capital (%s)", amount(result), amount(capital)),
			&models.ResultDetails{Amounts: map[string]float64{
				"result": result, "capital": capital, "ratio_pct": math.Abs(result) / capital * 100,
			}})
		r.Suggestion = "a large loss may signal a going-concern issue"
		return one(r)
	}
	return one(ok(levelBalanceSense, ref, name, "loss within acceptable limits"))
}

// MA-005: negative equity triggers the two-year regularization obligation.
func ma005(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "MA-005", "Negative equity"
	equityLines := byPrefix(ctx.Current, "10", "11", "12", "13", "14")
	equity := sumCredits(equityLines) - sumDebits(equityLines)
	if equity < 0 {
		r := anomaly(levelBalanceSense, ref, name, models.SeverityMajor,
			fmt.Sprintf("negative equity: %s", amount(equity)),
			&models.ResultDetails{Amounts: map[string]float64{"equity": equity}})
		r.Suggestion = "alert situation; legal obligation to regularize within two years"
		r.RegulatoryReference = "Art. 664 AUSCGIE"
		return one(r)
	}
	return one(ok(levelBalanceSense, ref, name, fmt.Sprintf("positive equity: %s", amount(equity))))
}

// MA-006: net cash deeply negative relative to total assets.
func ma006(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "MA-006", "Net cash position"
	var cashAssets, cashLiabilities float64
	for _, l := range byPrefix(ctx.Current, "5") {
		if s := l.Net(); s > 0 {
			cashAssets += s
		} else {
			cashLiabilities += -s
		}
	}
	netCash := cashAssets - cashLiabilities
	tb := totalAssets(ctx.Current)
	if tb > 0 && netCash < 0 && math.Abs(netCash) > tb*0.3 {
		r := anomaly(levelBalanceSense, ref, name, models.SeverityInfo,
			fmt.Sprintf("net cash deeply negative: %s (%.1f%% of total assets)", amount(netCash), math.Abs(netCash)/tb*100),
			&models.ResultDetails{Amounts: map[string]float64{
				"net_cash": netCash, "cash_assets": cashAssets, "cash_liabilities": cashLiabilities,
			}})
		r.Suggestion = "significant cash-flow strain risk"
		return one(r)
	}
	return one(ok(levelBalanceSense, ref, name, fmt.Sprintf("net cash: %s", amount(netCash))))
}

func registerLevel3(reg *audit.Registry) {
	register(reg, levelBalanceSense, models.PhaseIntake, []controlDef{
		{"SS-001", "Fixed-asset sense", "Checks fixed assets carry debit balances", models.SeverityMinor, ss001},
		{"SS-002", "Inventory sense", "Checks inventories carry debit balances", models.SeverityMinor, ss002},
		{"SS-003", "Expense sense", "Checks expenses carry debit balances", models.SeverityMinor, ss003},
		{"SS-004", "Revenue sense", "Checks revenue carries credit balances", models.SeverityMinor, ss004},
		{"SS-005", "Credit-side customers", "Detects customers with credit balances", models.SeverityMinor, ss005},
		{"SS-006", "Debit-side suppliers", "Detects suppliers with debit balances", models.SeverityMinor, ss006},
		{"SS-007", "Credit-side banks", "Detects banks with credit balances", models.SeverityMinor, ss007},
		{"SS-008", "Depreciation sense", "Checks depreciation carries credit balances", models.SeverityMinor, ss008},
		{"SS-009", "Provision sense", "Checks provisions carry credit balances", models.SeverityMinor, ss009},
		{"SS-010", "Negative capital", "Detects a negative share capital", models.SeverityMajor, ss010},
		{"MA-001", "Amount concentration", "Detects accounts above 50% of total assets", models.SeverityMinor, ma001},
		{"MA-002", "Suspicious cents", "Detects amounts ending in .01 or .99", models.SeverityInfo, ma002},
		{"MA-003", "Negative amounts", "Detects negative debit/credit amounts", models.SeverityMinor, ma003},
		{"MA-004", "Loss versus capital", "Checks the loss stays under 50% of capital", models.SeverityInfo, ma004},
		{"MA-005", "Negative equity", "Detects negative equity", models.SeverityMajor, ma005},
		{"MA-006", "Net cash position", "Checks the net cash position", models.SeverityInfo, ma006},
	})
}
