// backend/src/audit/controls/level4_inter_account.go
//
// Level 4 - coherence between linked accounts (depreciation vs gross value,
// VAT vs revenue, accruals, conversion gaps).
package controls

import (
	"fmt"
	"math"
	"time"

	"github.com/username/fiscasync/backend/src/audit"
	"github.com/username/fiscasync/backend/src/models"
)

const levelInterAccount = 4

// counterpart reports an anomaly when a source aggregate exists without its
// expected counterpart aggregate. Most level 4 checks follow this shape.
func counterpart(ref, name string, sev models.Severity, source float64, counterpartTotal float64,
	msg, suggestion, regRef string, amounts map[string]float64) models.ControlResult {
	if source > 0 && counterpartTotal == 0 {
		r := anomaly(levelInterAccount, ref, name, sev, msg, &models.ResultDetails{Amounts: amounts})
		r.Suggestion = suggestion
		r.RegulatoryReference = regRef
		return r
	}
	return ok(levelInterAccount, ref, name, name+" coherent")
}

// IC-001: accumulated depreciation (28x) cannot exceed the gross value (2x)
// of its category. More depreciation than cost is impossible.
func ic001(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "IC-001", "Depreciation within gross value"
	var bad []string
	var totalGross, totalDep float64
	for i := 0; i <= 9; i++ {
		grossPrefix := fmt.Sprintf("2%d", i)
		var gross float64
		for _, l := range byPrefix(ctx.Current, grossPrefix) {
			a := l.Account
			if len(a) >= 2 && (a[:2] == "28" || a[:2] == "29") {
				continue
			}
			gross += math.Abs(l.Net())
		}
		dep := absNetSum(byPrefix(ctx.Current, fmt.Sprintf("28%d", i)))
		totalGross += gross
		totalDep += dep
		if gross > 0 && dep > gross+1 {
			bad = append(bad, fmt.Sprintf("category 2%d: depreciation (%s) > gross (%s)", i, amount(dep), amount(gross)))
		}
	}
	if len(bad) > 0 {
		r := anomaly(levelInterAccount, ref, name, models.SeverityBlocking,
			"accumulated depreciation exceeds the gross value",
			&models.ResultDetails{
				Accounts: bad,
				Amounts:  map[string]float64{"total_gross": totalGross, "total_depreciation": totalDep},
				Description: "an asset cannot be depreciated beyond its acquisition cost; usual causes are depreciation left open after a disposal or a wrong schedule",
			})
		r.Suggestion = "clear the depreciation of disposed assets and check the depreciation schedules"
		r.RegulatoryReference = "Art. 45 Acte Uniforme OHADA - Amortissements"
		return one(r)
	}
	return one(ok(levelInterAccount, ref, name, "depreciation coherent with gross values"))
}

// IC-002: depreciable asset categories without a 28x counterpart.
func ic002(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "IC-002", "Assets without depreciation"
	var missing []string
	for _, prefix := range []string{"21", "23", "24", "245"} {
		hasAssets := false
		for _, l := range byPrefix(ctx.Current, prefix) {
			a := l.Account
			if len(a) >= 2 && (a[:2] == "28" || a[:2] == "29") {
				continue
			}
			if l.Net() > 0 {
				hasAssets = true
				break
			}
		}
		if !hasAssets {
			continue
		}
		depPrefix := "28" + prefix[1:]
		if len(byPrefix(ctx.Current, depPrefix)) == 0 {
			missing = append(missing, fmt.Sprintf("%sx (no %sx depreciation)", prefix, depPrefix))
		}
	}
	if len(missing) > 0 {
		r := anomaly(levelInterAccount, ref, name, models.SeverityMinor,
			"depreciable assets without a matching depreciation account",
			&models.ResultDetails{Accounts: missing})
		r.Suggestion = "book the missing depreciation charges and check each category's schedule"
		r.RegulatoryReference = "Art. 44-46 Acte Uniforme OHADA - Amortissements obligatoires"
		return one(r)
	}
	return one(ok(levelInterAccount, ref, name, "all depreciable assets carry depreciation"))
}

// IC-003: 28x accounts with no gross asset left, usually depreciation not
// cleared after a disposal.
func ic003(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "IC-003", "Orphan depreciation"
	var orphans []string
	for _, a := range byPrefix(ctx.Current, "28") {
		if math.Abs(a.Net()) == 0 || len(a.Account) < 3 {
			continue
		}
		grossPrefix := "2" + a.Account[2:]
		if len(grossPrefix) > 3 {
			grossPrefix = grossPrefix[:3]
		}
		found := false
		for _, l := range byPrefix(ctx.Current, grossPrefix) {
			if len(l.Account) >= 2 && l.Account[:2] != "28" && l.Account[:2] != "29" {
				found = true
				break
			}
		}
		if !found {
			orphans = append(orphans, fmt.Sprintf("%s: %s", a.Account, amount(math.Abs(a.Net()))))
		}
	}
	if len(orphans) > 0 {
		r := anomaly(levelInterAccount, ref, name, models.SeverityMajor,
			fmt.Sprintf("%d depreciation account(s) without a matching asset", len(orphans)),
			&models.ResultDetails{Accounts: truncate(orphans, 10)})
		r.Suggestion = "clear the orphan depreciation with a regularization entry or book the asset disposal"
		r.RegulatoryReference = "Art. 45 Acte Uniforme OHADA"
		return one(r)
	}
	return one(ok(levelInterAccount, ref, name, "all depreciation is backed by an asset"))
}

// IC-004: depreciation on the balance sheet with no charge in the P&L.
func ic004(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "IC-004", "Depreciation charge booked"
	charges := absNetSum(byPrefix(ctx.Current, "681")) + absNetSum(byPrefix(ctx.Current, "682"))
	sheet := absNetSum(byPrefix(ctx.Current, "28"))
	if charges == 0 && sheet > 0 {
		r := anomaly(levelInterAccount, ref, name, models.SeverityMinor,
			"depreciation on the balance sheet without a charge in the result (681/682)",
			&models.ResultDetails{Amounts: map[string]float64{"charges": 0, "sheet_depreciation": sheet}})
		r.Suggestion = "book the period's depreciation charges (debit 681x, credit 28x)"
		r.RegulatoryReference = "Art. 44 Acte Uniforme OHADA - Dotations aux amortissements"
		return one(r)
	}
	return one(ok(levelInterAccount, ref, name, fmt.Sprintf("depreciation charges: %s", amount(charges))))
}

// IC-005: impairments (29x/39x/49x) cannot exceed the gross value of the
// asset category.
func ic005(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "IC-005", "Impairment within gross value"
	checks := []struct{ impairment, gross, label string }{
		{"29", "2", "fixed assets"},
		{"39", "3", "inventories"},
		{"49", "4", "receivables"},
	}
	var bad []string
	for _, c := range checks {
		var gross float64
		for _, l := range byPrefix(ctx.Current, c.gross) {
			a := l.Account
			if len(a) >= 2 && (a[:2] == "28" || a[:2] == "29" || a[:2] == "39" || a[:2] == "49") {
				continue
			}
			gross += math.Abs(l.Net())
		}
		impairment := absNetSum(byPrefix(ctx.Current, c.impairment))
		if gross > 0 && impairment > gross+1 {
			bad = append(bad, fmt.Sprintf("%s: impairment (%s) > gross (%s)", c.label, amount(impairment), amount(gross)))
		}
	}
	if len(bad) > 0 {
		r := anomaly(levelInterAccount, ref, name, models.SeverityBlocking,
			"impairments exceed the gross value",
			&models.ResultDetails{Accounts: bad})
		r.Suggestion = "clear impairments of disposed assets and check the applied rates"
		r.RegulatoryReference = "Art. 46 Acte Uniforme OHADA - Depreciations"
		return one(r)
	}
	return one(ok(levelInterAccount, ref, name, "impairments coherent"))
}

// IC-006: provisions on the balance sheet with no charge (691/697).
func ic006(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "IC-006", "Provision charge booked"
	charges := absNetSum(byPrefix(ctx.Current, "691")) + absNetSum(byPrefix(ctx.Current, "697"))
	prov := absNetSum(byPrefix(ctx.Current, "19"))
	if charges == 0 && prov > 0 {
		r := anomaly(levelInterAccount, ref, name, models.SeverityMinor,
			fmt.Sprintf("provisions on the balance sheet (%s) without a charge (691/697)", amount(prov)),
			&models.ResultDetails{Amounts: map[string]float64{"provisions": prov, "charges": 0}})
		r.Suggestion = "check whether new provisions (691/697) or reversals (791/797) should be booked; justify each position"
		r.RegulatoryReference = "Art. 48 Acte Uniforme OHADA - Provisions pour risques et charges"
		return one(r)
	}
	return one(ok(levelInterAccount, ref, name, "provision charges coherent"))
}

// IC-007: provisions above 10% of total assets deserve individual
// justification in the notes.
func ic007(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "IC-007", "High provisions"
	prov := absNetSum(byPrefix(ctx.Current, "19"))
	tb := absNetSum(balanceSheetLines(ctx.Current)) / 2
	if tb > 0 && prov > tb*0.10 {
		ratio := prov / tb * 100
		r := anomaly(levelInterAccount, ref, name, models.SeverityInfo,
			fmt.Sprintf("provisions (%s) above 10%% of total assets (%s)", amount(prov), amount(tb)),
			&models.ResultDetails{Amounts: map[string]float64{"provisions": prov, "total_assets": tb, "ratio_pct": math.Round(ratio)}})
		r.Suggestion = "document each provision in the notes and check none has become groundless"
		return one(r)
	}
	return one(ok(levelInterAccount, ref, name, "provisions within limits"))
}

// IC-008: the inventory movement on the balance sheet must mirror the 603
// inventory-variation account.
func ic008(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "IC-008", "Inventory variation coherence"
	if !ctx.HasPrior() {
		return one(notApplicable(levelInterAccount, ref, name, "prior balance absent"))
	}
	stockNow := absNetSum(byPrefix(ctx.Current, "3"))
	stockPrior := absNetSum(byPrefix(ctx.Prior, "3"))
	sheetVariation := stockNow - stockPrior
	var603 := debitNet(byPrefix(ctx.Current, "603"))
	// 603 moves in the opposite direction of the balance-sheet variation.
	ecart := math.Abs(sheetVariation + var603)
	threshold := math.Max(math.Abs(sheetVariation)*0.1, 10000)
	if ecart > threshold {
		r := anomaly(levelInterAccount, ref, name, models.SeverityMajor,
			fmt.Sprintf("inventory variation on the sheet (%s) incoherent with account 603 (%s)",
				amount(sheetVariation), amount(var603)),
			&models.ResultDetails{
				Ecart: ecart,
				Amounts: map[string]float64{
					"sheet_variation": sheetVariation, "variation_603": var603,
					"stock_current": stockNow, "stock_prior": stockPrior,
				},
			})
		r.Suggestion = "check the inventory-variation entries (603 against 31x/32x/33x) and recompute from the physical count"
		r.RegulatoryReference = "Art. 43 Acte Uniforme OHADA - Evaluation des stocks"
		return one(r)
	}
	return one(ok(levelInterAccount, ref, name, "inventory variation coherent"))
}

// IC-009: payroll charges without social-security liabilities.
func ic009(ctx *audit.Context) ([]models.ControlResult, error) {
	payroll := absNetSum(byPrefix(ctx.Current, "66"))
	social := absNetSum(byPrefix(ctx.Current, "42"))
	return one(counterpart("IC-009", "Payroll versus social liabilities", models.SeverityInfo,
		payroll, social,
		fmt.Sprintf("payroll charges (%s) without social liabilities (42x)", amount(payroll)),
		"check that year-end social liabilities (wages and contributions due) are booked under 42x",
		"", map[string]float64{"payroll_charges": payroll}))
}

// IC-010: revenue without customer receivables.
func ic010(ctx *audit.Context) ([]models.ControlResult, error) {
	revenue := absNetSum(byPrefix(ctx.Current, "70"))
	receivables := absNetSum(byPrefix(ctx.Current, "411"))
	return one(counterpart("IC-010", "Revenue versus receivables", models.SeverityInfo,
		revenue, receivables,
		fmt.Sprintf("revenue of %s without customer receivables (411x)", amount(revenue)),
		"check whether the activity is cash-only; otherwise book the outstanding receivables",
		"", map[string]float64{"revenue": revenue}))
}

// IC-011: purchases without supplier payables.
func ic011(ctx *audit.Context) ([]models.ControlResult, error) {
	purchases := absNetSum(byPrefix(ctx.Current, "601", "602"))
	suppliers := absNetSum(byPrefix(ctx.Current, "401"))
	return one(counterpart("IC-011", "Purchases versus payables", models.SeverityInfo,
		purchases, suppliers,
		fmt.Sprintf("purchases of %s without supplier payables (401x)", amount(purchases)),
		"check the completeness of supplier payables; book invoices not yet received if applicable",
		"", map[string]float64{"purchases": purchases}))
}

// IC-012: interest charges without borrowings.
func ic012(ctx *audit.Context) ([]models.ControlResult, error) {
	interest := absNetSum(byPrefix(ctx.Current, "67"))
	loans := absNetSum(byPrefix(ctx.Current, "16"))
	return one(counterpart("IC-012", "Interest versus borrowings", models.SeverityInfo,
		interest, loans,
		fmt.Sprintf("financial charges (%s) without borrowings (16x)", amount(interest)),
		"check the source of the charges: overdraft fees, shareholder accounts, or loans repaid in the period",
		"", map[string]float64{"financial_charges": interest}))
}

// IC-013: assets on the sheet without depreciation charges, or charges above
// half the gross assets.
func ic013(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "IC-013", "Charges versus assets"
	charges := absNetSum(byPrefix(ctx.Current, "681")) + absNetSum(byPrefix(ctx.Current, "682"))
	var assets float64
	for _, l := range byPrefix(ctx.Current, "2") {
		a := l.Account
		if len(a) >= 2 && (a[:2] == "28" || a[:2] == "29") {
			continue
		}
		if n := l.Net(); n > 0 {
			assets += n
		}
	}
	if assets > 0 && charges == 0 {
		r := anomaly(levelInterAccount, ref, name, models.SeverityMinor,
			fmt.Sprintf("fixed assets (%s) without depreciation charges (681/682)", amount(assets)),
			&models.ResultDetails{Amounts: map[string]float64{"assets": assets, "charges": 0}})
		r.Suggestion = "book the period's depreciation charges and check each asset's schedule"
		r.RegulatoryReference = "Art. 44-46 Acte Uniforme OHADA - Amortissements obligatoires"
		return one(r)
	}
	if assets > 0 && charges > assets*0.5 {
		r := anomaly(levelInterAccount, ref, name, models.SeverityInfo,
			fmt.Sprintf("depreciation charges (%s) above 50%% of gross assets (%s)", amount(charges), amount(assets)),
			&models.ResultDetails{Amounts: map[string]float64{
				"assets": assets, "charges": charges, "ratio_pct": math.Round(charges / assets * 100),
			}})
		r.Suggestion = "check the applied depreciation periods and rates"
		r.RegulatoryReference = "Art. 45 Acte Uniforme OHADA - Duree d'amortissement"
		return one(r)
	}
	return one(ok(levelInterAccount, ref, name, "charges and assets coherent"))
}

// IC-014: a profit without a tax charge (89x).
func ic014(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "IC-014", "Tax versus result"
	resultLines := byPrefix(ctx.Current, "13")
	result := sumCredits(resultLines) - sumDebits(resultLines)
	tax := absNetSum(byPrefix(ctx.Current, "89"))
	if result > 0 && tax == 0 {
		r := anomaly(levelInterAccount, ref, name, models.SeverityMinor,
			fmt.Sprintf("profit of %s without a tax charge (89x)", amount(result)),
			&models.ResultDetails{Amounts: map[string]float64{"result": result}})
		r.Suggestion = "compute and book the corporate income tax or the lump-sum minimum; check loss carryforwards"
		r.RegulatoryReference = "CGI - Impot sur les societes"
		return one(r)
	}
	return one(ok(levelInterAccount, ref, name, "result and tax coherent"))
}

// IC-015: output VAT against revenue, including an 10-25% plausibility band
// around the 18% standard rate.
func ic015(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "IC-015", "Output VAT versus revenue"
	revenue := absNetSum(byPrefix(ctx.Current, "70"))
	vat := absNetSum(byPrefix(ctx.Current, "443"))
	if revenue > 0 && vat == 0 {
		r := anomaly(levelInterAccount, ref, name, models.SeverityMinor,
			fmt.Sprintf("revenue of %s without output VAT (443x)", amount(revenue)),
			&models.ResultDetails{Amounts: map[string]float64{"revenue": revenue, "output_vat": 0}})
		r.Suggestion = "check the applicable VAT regime; if liable, book the output VAT on sales"
		r.RegulatoryReference = "CGI - Regime de TVA"
		return one(r)
	}
	if revenue > 0 && vat > 0 {
		ratio := vat / revenue * 100
		if ratio > 25 || ratio < 10 {
			r := anomaly(levelInterAccount, ref, name, models.SeverityInfo,
				fmt.Sprintf("atypical VAT/revenue ratio: %.1f%%", ratio),
				&models.ResultDetails{Amounts: map[string]float64{
					"revenue": revenue, "output_vat": vat, "ratio_pct": math.Round(ratio),
				}})
			r.Suggestion = "check the applied VAT rate and identify exempt or reduced-rate operations"
			r.RegulatoryReference = "CGI - Taux de TVA"
			return one(r)
		}
	}
	return one(ok(levelInterAccount, ref, name, "output VAT coherent with revenue"))
}

// IC-016: input VAT against purchases and services.
func ic016(ctx *audit.Context) ([]models.ControlResult, error) {
	purchases := absNetSum(byPrefix(ctx.Current, "60", "61", "62"))
	vat := absNetSum(byPrefix(ctx.Current, "445"))
	return one(counterpart("IC-016", "Input VAT versus purchases", models.SeverityInfo,
		purchases, vat,
		fmt.Sprintf("purchases and services (%s) without input VAT (445x)", amount(purchases)),
		"check whether the company is VAT-liable; if so, book the input VAT on eligible purchases",
		"", map[string]float64{"purchases": purchases, "input_vat": 0}))
}

// IC-017: notes receivable without customer receivables.
func ic017(ctx *audit.Context) ([]models.ControlResult, error) {
	notes := absNetSum(byPrefix(ctx.Current, "412"))
	customers := absNetSum(byPrefix(ctx.Current, "411"))
	return one(counterpart("IC-017", "Notes receivable versus customers", models.SeverityInfo,
		notes, customers,
		fmt.Sprintf("notes receivable (%s) without customer receivables (411x)", amount(notes)),
		"check the origin of the notes and their coherence with the customer position",
		"", map[string]float64{"notes_receivable": notes}))
}

// IC-018: notes payable without supplier payables.
func ic018(ctx *audit.Context) ([]models.ControlResult, error) {
	notes := absNetSum(byPrefix(ctx.Current, "402"))
	suppliers := absNetSum(byPrefix(ctx.Current, "401"))
	return one(counterpart("IC-018", "Notes payable versus suppliers", models.SeverityInfo,
		notes, suppliers,
		fmt.Sprintf("notes payable (%s) without supplier payables (401x)", amount(notes)),
		"check the origin of the notes and their coherence with the supplier position",
		"", map[string]float64{"notes_payable": notes}))
}

// IC-019: investment grants on the sheet without a release to the result.
func ic019(ctx *audit.Context) ([]models.ControlResult, error) {
	grants := absNetSum(byPrefix(ctx.Current, "14"))
	releases := absNetSum(byPrefix(ctx.Current, "71"))
	return one(counterpart("IC-019", "Grants versus releases", models.SeverityInfo,
		grants, releases,
		fmt.Sprintf("investment grants on the sheet (%s) without releases to the result (71x)", amount(grants)),
		"release grants to the result (debit 14x, credit 71x) at the pace of the subsidized assets' depreciation",
		"Art. 47 Acte Uniforme OHADA - Subventions d'investissement",
		map[string]float64{"sheet_grants": grants}))
}

// IC-020: shareholder current accounts without interest charges.
func ic020(ctx *audit.Context) ([]models.ControlResult, error) {
	shareholder := absNetSum(byPrefix(ctx.Current, "455"))
	interest := absNetSum(byPrefix(ctx.Current, "672"))
	return one(counterpart("IC-020", "Shareholder current accounts", models.SeverityInfo,
		shareholder, interest,
		fmt.Sprintf("shareholder current accounts (%s) without interest paid (672x)", amount(shareholder)),
		"if the accounts are remunerated, book the interest at the agreed rate (fiscal cap: legal rate plus two points)",
		"", map[string]float64{"shareholder_accounts": shareholder}))
}

// IC-021: prepaid expenses above 20% of total charges.
func ic021(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "IC-021", "Prepaid expenses"
	prepaid := absNetSum(byPrefix(ctx.Current, "476"))
	charges := absNetSum(byPrefix(ctx.Current, "6"))
	if prepaid > 0 && charges > 0 && prepaid > charges*0.20 {
		ratio := prepaid / charges * 100
		r := anomaly(levelInterAccount, ref, name, models.SeverityMinor,
			fmt.Sprintf("prepaid expenses (%s) above 20%% of total charges (ratio %.1f%%)", amount(prepaid), ratio),
			&models.ResultDetails{Amounts: map[string]float64{"prepaid": prepaid, "total_charges": charges, "ratio_pct": ratio}})
		r.Suggestion = "back each prepaid expense with a document and check the accrual date"
		r.RegulatoryReference = "Art. 49 Acte Uniforme OHADA - Rattachement des charges"
		return one(r)
	}
	return one(ok(levelInterAccount, ref, name, "prepaid expenses coherent"))
}

// IC-022: deferred revenue above 20% of total revenue.
func ic022(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "IC-022", "Deferred revenue"
	deferred := absNetSum(byPrefix(ctx.Current, "477"))
	revenue := absNetSum(byPrefix(ctx.Current, "7"))
	if deferred > 0 && revenue > 0 && deferred > revenue*0.20 {
		ratio := deferred / revenue * 100
		r := anomaly(levelInterAccount, ref, name, models.SeverityMinor,
			fmt.Sprintf("deferred revenue (%s) above 20%% of total revenue (ratio %.1f%%)", amount(deferred), ratio),
			&models.ResultDetails{Amounts: map[string]float64{"deferred": deferred, "total_revenue": revenue, "ratio_pct": ratio}})
		r.Suggestion = "back each deferred-revenue position with a document and check the realization date"
		return one(r)
	}
	return one(ok(levelInterAccount, ref, name, "deferred revenue coherent"))
}

// IC-023: an active company books accrued charges at year end.
func ic023(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "IC-023", "Accrued charges"
	accrued := absNetSum(byPrefix(ctx.Current, "408")) +
		absNetSum(byPrefix(ctx.Current, "428")) +
		absNetSum(byPrefix(ctx.Current, "448"))
	revenue := absNetSum(byPrefix(ctx.Current, "70"))
	if revenue > 1000000 && accrued == 0 {
		r := anomaly(levelInterAccount, ref, name, models.SeverityMinor,
			fmt.Sprintf("no accrued charge despite revenue of %s", amount(revenue)),
			&models.ResultDetails{Amounts: map[string]float64{"revenue": revenue, "accrued_charges": 0}})
		r.Suggestion = "book the closing entries: invoices not received (408), social charges due (428), tax charges due (448)"
		r.RegulatoryReference = "Art. 48 Acte Uniforme OHADA - Rattachement des charges"
		return one(r)
	}
	return one(ok(levelInterAccount, ref, name, fmt.Sprintf("accrued charges: %s", amount(accrued))))
}

// IC-024: charge transfers above 15% of total charges.
func ic024(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "IC-024", "Charge transfers"
	transfers := absNetSum(byPrefix(ctx.Current, "78"))
	charges := absNetSum(byPrefix(ctx.Current, "6"))
	if transfers > 0 && charges > 0 && transfers > charges*0.15 {
		ratio := transfers / charges * 100
		r := anomaly(levelInterAccount, ref, name, models.SeverityMinor,
			fmt.Sprintf("charge transfers (%s) above 15%% of total charges (ratio %.1f%%)", amount(transfers), ratio),
			&models.ResultDetails{Amounts: map[string]float64{"transfers": transfers, "total_charges": charges, "ratio_pct": ratio}})
		r.Suggestion = "justify each transfer: self-constructed assets, capitalized distribution costs"
		return one(r)
	}
	return one(ok(levelInterAccount, ref, name, "charge transfers coherent"))
}

// IC-025: unrealized exchange losses (478) must be provisioned (194).
func ic025(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "IC-025", "Conversion gaps"
	lossGap := absNetSum(byPrefix(ctx.Current, "478"))
	gainGap := absNetSum(byPrefix(ctx.Current, "479"))
	provision := absNetSum(byPrefix(ctx.Current, "194"))
	if lossGap > 0 && provision == 0 {
		r := anomaly(levelInterAccount, ref, name, models.SeverityMinor,
			fmt.Sprintf("asset-side conversion gap (%s) without a provision (194x)", amount(lossGap)),
			&models.ResultDetails{Amounts: map[string]float64{
				"asset_gap": lossGap, "liability_gap": gainGap, "provision": 0,
			}})
		r.Suggestion = "build an exchange-loss provision of at least the asset-side conversion gap"
		r.CorrectiveEntries = []models.JournalEntry{{
			Journal: "OD",
			Date:    time.Now().UTC().Format("2006-01-02"),
			Lines: []models.JournalEntryLine{
				{Side: "D", Account: "691600", Label: "Exchange-loss provision charge", Amount: lossGap},
				{Side: "C", Account: "194000", Label: "Exchange-loss provision", Amount: lossGap},
			},
			Comment: "Provision for unrealized exchange losses",
		}}
		r.RegulatoryReference = "Art. 54 Acte Uniforme OHADA - Ecarts de conversion"
		return one(r)
	}
	return one(ok(levelInterAccount, ref, name,
		fmt.Sprintf("conversion gaps: assets %s, liabilities %s", amount(lossGap), amount(gainGap))))
}

func registerLevel4(reg *audit.Registry) {
	register(reg, levelInterAccount, models.PhaseIntake, []controlDef{
		{"IC-001", "Depreciation within gross value", "Checks 28x stays under 2x per category", models.SeverityBlocking, ic001},
		{"IC-002", "Assets without depreciation", "Detects depreciable assets without 28x", models.SeverityMinor, ic002},
		{"IC-003", "Orphan depreciation", "Detects 28x without a matching asset", models.SeverityMajor, ic003},
		{"IC-004", "Depreciation charge booked", "Checks sheet depreciation has a P&L charge", models.SeverityMinor, ic004},
		{"IC-005", "Impairment within gross value", "Checks 29x/39x/49x stay under gross values", models.SeverityBlocking, ic005},
		{"IC-006", "Provision charge booked", "Checks sheet provisions have a P&L charge", models.SeverityMinor, ic006},
		{"IC-007", "High provisions", "Flags provisions above 10% of the sheet", models.SeverityInfo, ic007},
		{"IC-008", "Inventory variation coherence", "Checks the sheet variation against account 603", models.SeverityMajor, ic008},
		{"IC-009", "Payroll versus social liabilities", "Checks 66x against 42x", models.SeverityInfo, ic009},
		{"IC-010", "Revenue versus receivables", "Detects revenue without receivables", models.SeverityInfo, ic010},
		{"IC-011", "Purchases versus payables", "Detects purchases without payables", models.SeverityInfo, ic011},
		{"IC-012", "Interest versus borrowings", "Detects financial charges without borrowings", models.SeverityInfo, ic012},
		{"IC-013", "Charges versus assets", "Checks depreciation charges against assets", models.SeverityMinor, ic013},
		{"IC-014", "Tax versus result", "Detects a profit without a tax charge", models.SeverityMinor, ic014},
		{"IC-015", "Output VAT versus revenue", "Checks VAT coherence with revenue", models.SeverityMinor, ic015},
		{"IC-016", "Input VAT versus purchases", "Checks input VAT against purchases", models.SeverityInfo, ic016},
		{"IC-017", "Notes receivable versus customers", "Checks 412x against 411x", models.SeverityInfo, ic017},
		{"IC-018", "Notes payable versus suppliers", "Checks 402x against 401x", models.SeverityInfo, ic018},
		{"IC-019", "Grants versus releases", "Checks sheet grants against 71x releases", models.SeverityInfo, ic019},
		{"IC-020", "Shareholder current accounts", "Checks 455x against interest paid", models.SeverityInfo, ic020},
		{"IC-021", "Prepaid expenses", "Checks prepaid expenses against total charges", models.SeverityMinor, ic021},
		{"IC-022", "Deferred revenue", "Checks deferred revenue against total revenue", models.SeverityMinor, ic022},
		{"IC-023", "Accrued charges", "Checks accrued charges exist for an active company", models.SeverityMinor, ic023},
		{"IC-024", "Charge transfers", "Checks charge transfers against total charges", models.SeverityMinor, ic024},
		{"IC-025", "Conversion gaps", "Checks asset-side gaps are provisioned", models.SeverityMinor, ic025},
	})
}
