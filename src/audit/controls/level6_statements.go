// backend/src/audit/controls/level6_statements.go
//
// Level 6 - coherence of the financial statements derived from the balance:
// balance sheet, income statement cascade, self-financing capacity, cash-flow
// figures and the annex notes.
package controls

import (
	"fmt"
	"math"
	"time"

	"github.com/username/fiscasync/backend/src/audit"
	"github.com/username/fiscasync/backend/src/models"
)

const levelStatements = 6

// derivedSheet splits the balance-sheet classes into the assets and
// liabilities sides of the statement presentation.
func derivedSheet(lines []models.BalanceLine) (assets, liabilities float64) {
	for _, l := range balanceSheetLines(lines) {
		if n := l.Net(); n > 0 {
			assets += n
		} else {
			liabilities += -n
		}
	}
	return assets, liabilities
}

func computedResult(lines []models.BalanceLine) float64 {
	revenue := byPrefix(lines, "7")
	expenses := byPrefix(lines, "6")
	return (sumCredits(revenue) - sumDebits(revenue)) - (sumDebits(expenses) - sumCredits(expenses))
}

func bookedResult(lines []models.BalanceLine) float64 {
	r := byPrefix(lines, "13")
	return sumCredits(r) - sumDebits(r)
}

// EF-001: the derived balance sheet must balance.
func ef001(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "EF-001", "Derived sheet equilibrium"
	assets, liabilities := derivedSheet(ctx.Current)
	ecart := math.Abs(assets - liabilities)
	if ecart > 1 {
		r := anomaly(levelStatements, ref, name, models.SeverityBlocking,
			fmt.Sprintf("derived sheet imbalance: assets=%s, liabilities=%s (gap: %s)",
				amount(assets), amount(liabilities), amount(ecart)),
			&models.ResultDetails{
				Ecart:       ecart,
				Amounts:     map[string]float64{"assets": assets, "liabilities": liabilities},
				Description: "the statement derived from the balance does not balance; causes include unmapped accounts or a source imbalance",
			})
		r.Suggestion = "check every balance-sheet account is correctly placed and the source balance is in equilibrium"
		r.RegulatoryReference = "Art. 29 Acte Uniforme OHADA - Equilibre du bilan"
		return one(r)
	}
	return one(ok(levelStatements, ref, name, fmt.Sprintf("derived sheet in equilibrium: %s", amount(assets))))
}

// EF-002: net fixed assets cannot be negative in the statement presentation.
func ef002(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "EF-002", "Asset subtotals"
	grossAssets := absNetSum(byPrefix(ctx.Current, "20", "21", "22", "23", "24", "25", "26", "27"))
	depreciation := absNetSum(byPrefix(ctx.Current, "28", "29"))
	netFixed := grossAssets - depreciation
	currentAssets := absNetSum(byPrefix(ctx.Current, "3", "40", "41", "42", "43", "44", "45", "46", "47")) -
		absNetSum(byPrefix(ctx.Current, "39", "49"))
	if netFixed < 0 {
		r := anomaly(levelStatements, ref, name, models.SeverityBlocking,
			fmt.Sprintf("negative net fixed assets: %s", amount(netFixed)),
			&models.ResultDetails{Amounts: map[string]float64{
				"net_fixed_assets": netFixed, "gross_assets": grossAssets,
				"depreciation": depreciation, "current_assets": currentAssets,
			}})
		r.Suggestion = "clear the depreciation of disposed assets; accumulated depreciation cannot exceed gross values"
		r.RegulatoryReference = "Art. 45 Acte Uniforme OHADA"
		return one(r)
	}
	return one(ok(levelStatements, ref, name,
		fmt.Sprintf("asset subtotals coherent (fixed: %s, current: %s)", amount(netFixed), amount(currentAssets))))
}

// EF-003: equity subtotal on the liabilities side.
func ef003(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "EF-003", "Liability subtotals"
	equity := creditNet(byPrefix(ctx.Current, "10", "11", "12", "13", "14"))
	financialDebt := absNetSum(byPrefix(ctx.Current, "16", "17", "18"))
	currentDebt := absNetSum(byPrefix(ctx.Current, "40", "41", "42", "43", "44", "45", "46", "47", "48", "49"))
	if equity < 0 {
		r := anomaly(levelStatements, ref, name, models.SeverityMajor,
			fmt.Sprintf("negative equity in the statement presentation: %s", amount(equity)),
			&models.ResultDetails{Amounts: map[string]float64{
				"equity": equity, "financial_debt": financialDebt, "current_debt": currentDebt,
			}})
		r.Suggestion = "regularize the equity through a capital increase, shareholder-account incorporation, or debt waiver"
		r.RegulatoryReference = "Art. 664 AUSCGIE"
		return one(r)
	}
	return one(ok(levelStatements, ref, name,
		fmt.Sprintf("liability subtotals (equity: %s, debt: %s)", amount(equity), amount(financialDebt+currentDebt))))
}

// EF-004: the derived sheet total must stay within 5% of the raw balance.
func ef004(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "EF-004", "Sheet versus balance"
	derived, _ := derivedSheet(ctx.Current)
	raw := totalAssets(ctx.Current)
	ecart := math.Abs(derived - raw)
	if ecart > raw*0.05 && ecart > 10000 {
		r := anomaly(levelStatements, ref, name, models.SeverityBlocking,
			fmt.Sprintf("significant gap between the derived sheet and the raw balance: %s", amount(ecart)),
			&models.ResultDetails{
				Ecart:   ecart,
				Amounts: map[string]float64{"derived_sheet": derived, "raw_balance": raw},
			})
		r.Suggestion = "identify the unmapped accounts and check the depreciation placement"
		r.RegulatoryReference = "Art. 29 Acte Uniforme OHADA"
		return one(r)
	}
	return one(ok(levelStatements, ref, name, "derived sheet and balance coherent"))
}

// EF-005: the income-statement result must equal the sheet result (13x),
// strictly. A gap means the closing entries are wrong.
func ef005(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "EF-005", "Income result equals sheet result"
	computed := computedResult(ctx.Current)
	booked := bookedResult(ctx.Current)
	ecart := math.Abs(computed - booked)
	if ecart > 1 && len(byPrefix(ctx.Current, "13")) > 0 {
		lines := []models.JournalEntryLine{
			{Side: "D", Account: "120000", Label: "Retained earnings - adjustment", Amount: ecart},
			{Side: "C", Account: "130000", Label: "Result - correction", Amount: ecart},
		}
		if computed < booked {
			lines = []models.JournalEntryLine{
				{Side: "D", Account: "130000", Label: "Result - correction", Amount: ecart},
				{Side: "C", Account: "120000", Label: "Retained earnings - adjustment", Amount: ecart},
			}
		}
		r := anomaly(levelStatements, ref, name, models.SeverityBlocking,
			fmt.Sprintf("income result (%s) differs from the sheet result (%s)", amount(computed), amount(booked)),
			&models.ResultDetails{
				Ecart:   ecart,
				Amounts: map[string]float64{"income_result": computed, "sheet_result": booked},
			})
		r.Suggestion = "check the result-determination entries; the 13x balance must equal revenue minus expenses exactly"
		r.CorrectiveEntries = []models.JournalEntry{{
			Journal: "OD",
			Date:    time.Now().UTC().Format("2006-01-02"),
			Lines:   lines,
			Comment: "Correction of the income-versus-sheet result gap",
		}}
		r.RegulatoryReference = "Art. 34 Acte Uniforme OHADA"
		return one(r)
	}
	return one(ok(levelStatements, ref, name, fmt.Sprintf("result coherent: %s", amount(computed))))
}

// EF-006: gross margin on goods.
func ef006(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "EF-006", "Gross margin"
	sales := absNetSum(byPrefix(ctx.Current, "701"))
	purchases := absNetSum(byPrefix(ctx.Current, "601"))
	stockVariation := debitNet(byPrefix(ctx.Current, "6031"))
	margin := sales - purchases - stockVariation
	if sales > 0 && margin < 0 {
		r := anomaly(levelStatements, ref, name, models.SeverityMinor,
			fmt.Sprintf("negative gross margin: %s", amount(margin)),
			&models.ResultDetails{Amounts: map[string]float64{
				"sales": sales, "purchases": purchases, "stock_variation": stockVariation, "gross_margin": margin,
			}})
		r.Suggestion = "check the coherence between sales (701x), purchases (601x) and stock variation (6031x)"
		r.RegulatoryReference = "Art. 30-32 Acte Uniforme OHADA - SIG"
		return one(r)
	}
	return one(ok(levelStatements, ref, name, fmt.Sprintf("gross margin: %s", amount(margin))))
}

// EF-007: value added. Negative value added means the company consumes more
// than it produces.
func ef007(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "EF-007", "Value added"
	production := absNetSum(byPrefix(ctx.Current, "70", "71", "72", "73"))
	consumption := absNetSum(byPrefix(ctx.Current, "60", "61", "62", "63"))
	va := production - consumption
	if production > 0 && va < 0 {
		r := anomaly(levelStatements, ref, name, models.SeverityMajor,
			fmt.Sprintf("negative value added: %s", amount(va)),
			&models.ResultDetails{Amounts: map[string]float64{
				"production": production, "consumption": consumption, "value_added": va,
			}})
		r.Suggestion = "analyze the cost structure and the pricing policy"
		r.RegulatoryReference = "Art. 30-32 Acte Uniforme OHADA - SIG"
		return one(r)
	}
	return one(ok(levelStatements, ref, name, fmt.Sprintf("value added: %s", amount(va))))
}

// EF-008: result cascade: ordinary result plus extraordinary result minus tax
// must land on the 13x balance.
func ef008(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "EF-008", "Result cascade"
	ordinary := computedResult(ctx.Current)
	class8 := byPrefix(ctx.Current, "8")
	extraordinary := sumCredits(class8) - sumDebits(class8)
	tax := absNetSum(byPrefix(ctx.Current, "89"))
	netResult := ordinary + extraordinary - tax
	booked := bookedResult(ctx.Current)
	ecart := math.Abs(netResult - booked)
	if ecart > 1 && len(byPrefix(ctx.Current, "13")) > 0 {
		r := anomaly(levelStatements, ref, name, models.SeverityBlocking,
			fmt.Sprintf("cascade: ordinary (%s) + extraordinary (%s) - tax (%s) = %s, but 13x carries %s",
				amount(ordinary), amount(extraordinary), amount(tax), amount(netResult), amount(booked)),
			&models.ResultDetails{
				Ecart: ecart,
				Amounts: map[string]float64{
					"ordinary_result": ordinary, "extraordinary_result": extraordinary,
					"tax": tax, "computed_net": netResult, "booked_result": booked,
				},
			})
		r.Suggestion = "rebuild the result cascade step by step; check the tax entries and the extraordinary operations"
		r.RegulatoryReference = "Art. 32 Acte Uniforme OHADA - Determination du resultat"
		return one(r)
	}
	return one(ok(levelStatements, ref, name, "result cascade coherent"))
}

// EF-009: the self-financing capacity computed additively (from the result)
// must match the subtractive computation (from the operating surplus).
func ef009(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "EF-009", "Self-financing capacity"
	result := bookedResult(ctx.Current)
	charges := absNetSum(byPrefix(ctx.Current, "681", "682", "691", "697", "687"))
	reversals := absNetSum(byPrefix(ctx.Current, "791", "797", "787", "798"))
	disposalsNBV := absNetSum(byPrefix(ctx.Current, "81"))
	disposalsProceeds := absNetSum(byPrefix(ctx.Current, "82"))
	additive := result + charges - reversals + disposalsNBV - disposalsProceeds

	production := absNetSum(byPrefix(ctx.Current, "70", "71", "72", "73"))
	consumption := absNetSum(byPrefix(ctx.Current, "60", "61", "62"))
	payroll := absNetSum(byPrefix(ctx.Current, "66"))
	taxes := absNetSum(byPrefix(ctx.Current, "64"))
	surplus := production - consumption - payroll - taxes
	otherIncome := absNetSum(byPrefix(ctx.Current, "75", "77", "78"))
	otherCharges := absNetSum(byPrefix(ctx.Current, "65", "67", "68"))
	extraNet := absNetSum(byPrefix(ctx.Current, "84", "86", "88")) - absNetSum(byPrefix(ctx.Current, "83", "85", "87"))
	incomeTax := absNetSum(byPrefix(ctx.Current, "89"))
	subtractive := surplus + otherIncome - otherCharges - extraNet - incomeTax

	ecart := math.Abs(additive - subtractive)
	threshold := math.Max(math.Abs(additive)*0.05, 10000)
	if ecart > threshold && len(byPrefix(ctx.Current, "13")) > 0 {
		r := anomaly(levelStatements, ref, name, models.SeverityMinor,
			fmt.Sprintf("additive capacity (%s) differs from subtractive (%s)", amount(additive), amount(subtractive)),
			&models.ResultDetails{
				Ecart: ecart,
				Amounts: map[string]float64{
					"additive": additive, "subtractive": subtractive,
					"result": result, "charges": charges, "reversals": reversals, "surplus": surplus,
				},
			})
		r.Suggestion = "check the split between computed and disbursed charges and income; both methods must agree"
		r.RegulatoryReference = "Art. 32 Acte Uniforme OHADA - TFT"
		return one(r)
	}
	return one(ok(levelStatements, ref, name,
		fmt.Sprintf("self-financing capacity coherent: %s (additive) / %s (subtractive)", amount(additive), amount(subtractive))))
}

// EF-010: closing net cash position.
func ef010(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "EF-010", "Closing net cash"
	var cashAssets, cashLiabilities float64
	for _, l := range byPrefix(ctx.Current, "5") {
		if s := l.Net(); s > 0 {
			cashAssets += s
		} else {
			cashLiabilities += -s
		}
	}
	net := cashAssets - cashLiabilities
	if net < 0 {
		r := anomaly(levelStatements, ref, name, models.SeverityInfo,
			fmt.Sprintf("negative net cash at closing: %s", amount(net)),
			&models.ResultDetails{Amounts: map[string]float64{
				"net_cash": net, "cash_assets": cashAssets, "cash_liabilities": cashLiabilities,
			}})
		r.Suggestion = "analyze the causes: excessive working-capital need, insufficient equity funding, or unfunded investments"
		r.RegulatoryReference = "Art. 32 Acte Uniforme OHADA - TFT"
		return one(r)
	}
	return one(ok(levelStatements, ref, name, fmt.Sprintf("net cash: %s", amount(net))))
}

// EF-011: estimated self-financing against the result; reversals can inflate
// the result without generating cash.
func ef011(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "EF-011", "Operating cash flow"
	result := bookedResult(ctx.Current)
	charges := absNetSum(byPrefix(ctx.Current, "681", "682", "691", "697"))
	reversals := absNetSum(byPrefix(ctx.Current, "791", "797"))
	estimated := result + charges - reversals
	if estimated < 0 && result > 0 {
		r := anomaly(levelStatements, ref, name, models.SeverityInfo,
			fmt.Sprintf("negative estimated capacity (%s) despite a positive result (%s)", amount(estimated), amount(result)),
			&models.ResultDetails{Amounts: map[string]float64{
				"estimated_capacity": estimated, "result": result, "charges": charges, "reversals": reversals,
			}})
		r.Suggestion = "analyze the impact of provision reversals on the result"
		r.RegulatoryReference = "Art. 32 Acte Uniforme OHADA - TFT"
		return one(r)
	}
	return one(ok(levelStatements, ref, name, fmt.Sprintf("estimated capacity: %s", amount(estimated))))
}

// EF-012: cash variation between periods.
func ef012(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "EF-012", "Cash variation"
	if !ctx.HasPrior() {
		return one(notApplicable(levelStatements, ref, name, "prior balance absent"))
	}
	cashNow := debitNet(byPrefix(ctx.Current, "5"))
	cashPrior := debitNet(byPrefix(ctx.Prior, "5"))
	variation := cashNow - cashPrior
	pct := 0.0
	if cashPrior != 0 {
		pct = variation / math.Abs(cashPrior) * 100
	}
	if math.Abs(pct) > 50 && math.Abs(variation) > 10000 {
		r := anomaly(levelStatements, ref, name, models.SeverityInfo,
			fmt.Sprintf("significant cash variation: %s (%.0f%%)", amount(variation), pct),
			&models.ResultDetails{Amounts: map[string]float64{
				"cash_current": cashNow, "cash_prior": cashPrior, "variation": variation, "variation_pct": math.Round(pct),
			}})
		r.Suggestion = "trace the variation through the operating, investing and financing flows"
		return one(r)
	}
	return one(ok(levelStatements, ref, name, fmt.Sprintf("cash variation: %s", amount(variation))))
}

// EF-013: equity movement should be explained by the result, give or take
// dividends and capital operations.
func ef013(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "EF-013", "Equity variation"
	if !ctx.HasPrior() {
		return one(notApplicable(levelStatements, ref, name, "prior balance absent"))
	}
	equityNow := absNetSum(byPrefix(ctx.Current, "10", "11", "12", "13", "14"))
	equityPrior := absNetSum(byPrefix(ctx.Prior, "10", "11", "12", "13", "14"))
	variation := equityNow - equityPrior
	result := bookedResult(ctx.Current)
	ecart := math.Abs(variation - result)
	if ecart > math.Abs(result)*0.2 && ecart > 10000 {
		r := anomaly(levelStatements, ref, name, models.SeverityMinor,
			fmt.Sprintf("equity variation (%s) significantly differs from the result (%s)", amount(variation), amount(result)),
			&models.ResultDetails{Amounts: map[string]float64{
				"equity_variation": variation, "result": result,
				"equity_current": equityNow, "equity_prior": equityPrior,
			}})
		r.Suggestion = "identify the equity operations outside the result: dividends, capital changes, reserve movements"
		return one(r)
	}
	return one(ok(levelStatements, ref, name, "equity variation coherent"))
}

// EF-014: gross fixed assets note; net values cannot be negative.
func ef014(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "EF-014", "Fixed-assets note"
	var gross float64
	for _, l := range byPrefix(ctx.Current, "2") {
		a := l.Account
		if len(a) >= 2 && (a[:2] == "28" || a[:2] == "29") {
			continue
		}
		if n := l.Net(); n > 0 {
			gross += n
		}
	}
	dep := absNetSum(byPrefix(ctx.Current, "28"))
	net := gross - dep
	if gross > 0 && dep > gross {
		r := anomaly(levelStatements, ref, name, models.SeverityBlocking,
			fmt.Sprintf("negative net fixed assets: gross (%s) - depreciation (%s) = %s",
				amount(gross), amount(dep), amount(net)),
			&models.ResultDetails{Amounts: map[string]float64{
				"gross": gross, "depreciation": dep, "net": net,
			}})
		r.Suggestion = "clear the depreciation of disposed assets and check the fixed-assets table"
		r.RegulatoryReference = "Art. 45 Acte Uniforme OHADA"
		return one(r)
	}
	return one(ok(levelStatements, ref, name, fmt.Sprintf("fixed assets: gross %s, net %s", amount(gross), amount(net))))
}

// EF-015: depreciation note needs the period's movements.
func ef015(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "EF-015", "Depreciation note"
	dep := absNetSum(byPrefix(ctx.Current, "28"))
	charges := absNetSum(byPrefix(ctx.Current, "681", "682"))
	if dep > 0 && charges == 0 {
		r := anomaly(levelStatements, ref, name, models.SeverityMinor,
			fmt.Sprintf("accumulated depreciation (%s) without a charge in the period", amount(dep)),
			&models.ResultDetails{Amounts: map[string]float64{"accumulated": dep, "period_charges": 0}})
		r.Suggestion = "book the period's depreciation charges to complete the depreciation table"
		return one(r)
	}
	return one(ok(levelStatements, ref, name,
		fmt.Sprintf("accumulated depreciation: %s, period charges: %s", amount(dep), amount(charges))))
}

// EF-016: receivables note; impairments cannot exceed the receivables.
func ef016(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "EF-016", "Receivables note"
	customers := absNetSum(byPrefix(ctx.Current, "41"))
	fiscal := absNetSum(byPrefix(ctx.Current, "44"))
	other := absNetSum(byPrefix(ctx.Current, "42", "43", "45", "46", "47"))
	total := customers + fiscal + other
	impairments := absNetSum(byPrefix(ctx.Current, "49"))
	if impairments > total && total > 0 {
		r := anomaly(levelStatements, ref, name, models.SeverityMajor,
			fmt.Sprintf("receivable impairments (%s) exceed total receivables (%s)", amount(impairments), amount(total)),
			&models.ResultDetails{Amounts: map[string]float64{
				"total_receivables": total, "customers": customers,
				"fiscal": fiscal, "other": other, "impairments": impairments,
			}})
		r.Suggestion = "clear the impairments of written-off or recovered receivables"
		return one(r)
	}
	return one(ok(levelStatements, ref, name,
		fmt.Sprintf("total receivables: %s (customers: %s)", amount(total), amount(customers))))
}

// EF-017: debts note; an active company without any debt is unusual.
func ef017(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "EF-017", "Debts note"
	financial := absNetSum(byPrefix(ctx.Current, "16"))
	suppliers := absNetSum(byPrefix(ctx.Current, "40"))
	fiscal := absNetSum(byPrefix(ctx.Current, "44"))
	social := absNetSum(byPrefix(ctx.Current, "42", "43"))
	total := financial + suppliers + fiscal + social
	if total == 0 {
		revenue := absNetSum(byPrefix(ctx.Current, "70"))
		if revenue > 0 {
			r := anomaly(levelStatements, ref, name, models.SeverityInfo,
				fmt.Sprintf("no debt on the sheet despite revenue of %s", amount(revenue)),
				&models.ResultDetails{Amounts: map[string]float64{"total_debts": 0, "revenue": revenue}})
			r.Suggestion = "check the completeness of the closing entries: invoices not received, accrued charges, fiscal and social debts"
			return one(r)
		}
	}
	return one(ok(levelStatements, ref, name,
		fmt.Sprintf("total debts: %s (financial: %s, suppliers: %s)", amount(total), amount(financial), amount(suppliers))))
}

// EF-018: provisions note, informational breakdown.
func ef018(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "EF-018", "Provisions note"
	risks := absNetSum(byPrefix(ctx.Current, "19"))
	assetImp := absNetSum(byPrefix(ctx.Current, "29"))
	stockImp := absNetSum(byPrefix(ctx.Current, "39"))
	thirdImp := absNetSum(byPrefix(ctx.Current, "49"))
	total := risks + assetImp + stockImp + thirdImp
	if total > 0 {
		return one(ok(levelStatements, ref, name,
			fmt.Sprintf("provisions and impairments: %s (risks: %s, assets: %s, stocks: %s, third parties: %s)",
				amount(total), amount(risks), amount(assetImp), amount(stockImp), amount(thirdImp))))
	}
	return one(ok(levelStatements, ref, name, "no provision or impairment on the sheet"))
}

// EF-019: payroll charges require headcount disclosure in the annex.
func ef019(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "EF-019", "Headcount disclosure"
	payroll := absNetSum(byPrefix(ctx.Current, "66"))
	if payroll > 0 {
		r := anomaly(levelStatements, ref, name, models.SeverityMinor,
			fmt.Sprintf("payroll charges (%s); check the headcount is disclosed in the annex", amount(payroll)),
			&models.ResultDetails{Amounts: map[string]float64{"payroll_charges": payroll}})
		r.Suggestion = "fill in the headcount and payroll mass in the annex, broken down by category"
		r.RegulatoryReference = "Art. 56 Acte Uniforme OHADA - Contenu de l'annexe"
		return one(r)
	}
	return one(ok(levelStatements, ref, name, "no payroll charges"))
}

func registerLevel6(reg *audit.Registry) {
	register(reg, levelStatements, models.PhaseStatement, []controlDef{
		{"EF-001", "Derived sheet equilibrium", "Checks the derived balance sheet balances", models.SeverityBlocking, ef001},
		{"EF-002", "Asset subtotals", "Checks the asset-side subtotals", models.SeverityBlocking, ef002},
		{"EF-003", "Liability subtotals", "Checks the liability-side subtotals", models.SeverityBlocking, ef003},
		{"EF-004", "Sheet versus balance", "Checks the derived sheet against the raw balance", models.SeverityBlocking, ef004},
		{"EF-005", "Income result equals sheet result", "Checks the two result figures agree", models.SeverityBlocking, ef005},
		{"EF-006", "Gross margin", "Checks the gross margin on goods", models.SeverityMinor, ef006},
		{"EF-007", "Value added", "Checks the value added", models.SeverityMajor, ef007},
		{"EF-008", "Result cascade", "Checks ordinary + extraordinary - tax = net result", models.SeverityBlocking, ef008},
		{"EF-009", "Self-financing capacity", "Checks additive against subtractive computation", models.SeverityMinor, ef009},
		{"EF-010", "Closing net cash", "Checks the closing net cash position", models.SeverityBlocking, ef010},
		{"EF-011", "Operating cash flow", "Checks the estimated operating cash flow", models.SeverityMajor, ef011},
		{"EF-012", "Cash variation", "Checks the cash variation between periods", models.SeverityMajor, ef012},
		{"EF-013", "Equity variation", "Checks the equity variation against the result", models.SeverityMinor, ef013},
		{"EF-014", "Fixed-assets note", "Checks the fixed-assets annex note", models.SeverityBlocking, ef014},
		{"EF-015", "Depreciation note", "Checks the depreciation annex note", models.SeverityMajor, ef015},
		{"EF-016", "Receivables note", "Checks the receivables annex note", models.SeverityMajor, ef016},
		{"EF-017", "Debts note", "Checks the debts annex note", models.SeverityBlocking, ef017},
		{"EF-018", "Provisions note", "Reports the provisions breakdown", models.SeverityMajor, ef018},
		{"EF-019", "Headcount disclosure", "Checks headcount is disclosed when payroll exists", models.SeverityMinor, ef019},
	})
}
