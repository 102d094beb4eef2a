// backend/src/audit/controls/level7_fiscal.go
//
// Level 7 - fiscal coherence: corporate tax, minimum tax, VAT to remit, and
// the non-deductible charges that must be added back to the taxable result.
package controls

import (
	"fmt"
	"math"
	"time"

	"github.com/username/fiscasync/backend/src/audit"
	"github.com/username/fiscasync/backend/src/models"
	"github.com/username/fiscasync/backend/src/referential"
)

const levelFiscal = 7

var taxRates = referential.DefaultTaxRates()

// addBackEntry builds the extra-accounting add-back memo entry used by the
// taxable-result determination table.
func addBackEntry(label, comment string, amt float64) []models.JournalEntry {
	return []models.JournalEntry{{
		Journal: "FISCAL",
		Date:    time.Now().UTC().Format("2006-01-02"),
		Lines:   []models.JournalEntryLine{{Side: "D", Account: "REINTEG", Label: label, Amount: amt}},
		Comment: comment,
	}}
}

// FI-001: a loss is carried forward but still owes the minimum tax.
func fi001(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "FI-001", "Taxable result"
	result := bookedResult(ctx.Current)
	if result < 0 {
		r := anomaly(levelFiscal, ref, name, models.SeverityInfo,
			fmt.Sprintf("loss for the period: %s", amount(result)),
			&models.ResultDetails{
				Amounts:     map[string]float64{"net_result": result},
				Description: "a loss is carried forward over the next five periods; the company still owes the minimum flat tax",
			})
		r.Suggestion = "build the loss-carry-forward file, pay the minimum flat tax, and document the loss in the fiscal return"
		r.RegulatoryReference = "Art. 7 CGI - Report deficitaire sur 5 exercices"
		return one(r)
	}
	return one(ok(levelFiscal, ref, name, fmt.Sprintf("result: %s", amount(result))))
}

// FI-002: passenger-vehicle depreciation base is capped.
func fi002(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "FI-002", "Passenger-vehicle depreciation cap"
	vehicles := absNetSum(byPrefix(ctx.Current, "245"))
	if vehicles > taxRates.VehicleCap {
		excess := vehicles - taxRates.VehicleCap
		addBack := math.Round(excess * 0.2)
		r := anomaly(levelFiscal, ref, name, models.SeverityMinor,
			fmt.Sprintf("passenger vehicles: %s (fiscal cap: %s)", amount(vehicles), amount(taxRates.VehicleCap)),
			&models.ResultDetails{
				Amounts:     map[string]float64{"vehicle_value": vehicles, "cap": taxRates.VehicleCap, "excess": excess},
				Description: "depreciation on the fraction above the cap is not deductible and must be added back to the taxable result",
			})
		r.Suggestion = fmt.Sprintf("add back the depreciation computed on the excess of %s in the taxable-result table", amount(excess))
		r.CorrectiveEntries = addBackEntry("Add-back: vehicle depreciation above cap",
			"Estimated fiscal add-back (20% rate on the excess base)", addBack)
		r.RegulatoryReference = "Art. 8-1 CGI CEMAC - Plafond amortissement vehicules tourisme"
		return one(r)
	}
	return one(ok(levelFiscal, ref, name, "passenger vehicles within the cap"))
}

// FI-003: entertainment and gifts above 1% of revenue.
func fi003(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "FI-003", "Entertainment charges"
	entertainment := absNetSum(byPrefix(ctx.Current, "627"))
	revenue := absNetSum(byPrefix(ctx.Current, "70"))
	if revenue > 0 && entertainment > revenue*0.01 {
		ratio := entertainment / revenue * 100
		excess := entertainment - revenue*0.01
		r := anomaly(levelFiscal, ref, name, models.SeverityMinor,
			fmt.Sprintf("entertainment and gifts (%s) above 1%% of revenue (%s)", amount(entertainment), amount(revenue)),
			&models.ResultDetails{Amounts: map[string]float64{
				"entertainment": entertainment, "revenue": revenue,
				"ratio_pct": math.Round(ratio*10) / 10, "excess": excess,
			}})
		r.Suggestion = fmt.Sprintf("add back the excess of %s in the taxable-result determination table", amount(excess))
		r.CorrectiveEntries = addBackEntry("Add-back: excess entertainment charges",
			"Entertainment charges above 1% of revenue", excess)
		r.RegulatoryReference = "CGI - Charges somptuaires"
		return one(r)
	}
	return one(ok(levelFiscal, ref, name, "entertainment charges within limits"))
}

// FI-004: fines and penalties are never deductible.
func fi004(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "FI-004", "Fines and penalties"
	fines := absNetSum(byPrefix(ctx.Current, "6471", "6478"))
	if fines > 0 {
		r := anomaly(levelFiscal, ref, name, models.SeverityMinor,
			fmt.Sprintf("fines and penalties: %s (not deductible)", amount(fines)),
			&models.ResultDetails{Amounts: map[string]float64{"fines": fines}})
		r.Suggestion = fmt.Sprintf("add back the full amount (%s) to the taxable result and document each penalty", amount(fines))
		r.CorrectiveEntries = addBackEntry("Add-back: fines and penalties",
			"Fines and penalties are fully non-deductible", fines)
		r.RegulatoryReference = "Art. 8-d CGI - Charges non deductibles"
		return one(r)
	}
	return one(ok(levelFiscal, ref, name, "no fine or penalty booked"))
}

// FI-005: gifts (6234x) above 1 per mille of revenue.
func fi005(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "FI-005", "Gifts cap"
	gifts := absNetSum(byPrefix(ctx.Current, "6234"))
	revenue := absNetSum(byPrefix(ctx.Current, "70"))
	cap := revenue * taxRates.GiftCapRatio
	if gifts > cap && cap > 0 {
		excess := gifts - cap
		r := anomaly(levelFiscal, ref, name, models.SeverityMinor,
			fmt.Sprintf("gifts (%s) above the cap of 1 per mille of revenue (%s)", amount(gifts), amount(cap)),
			&models.ResultDetails{Amounts: map[string]float64{
				"gifts": gifts, "cap": cap, "revenue": revenue, "excess": excess,
			}})
		r.Suggestion = fmt.Sprintf("add back the excess of %s in the taxable-result table", amount(excess))
		r.RegulatoryReference = "Art. 8-e CGI - Plafond dons et liberalites"
		return one(r)
	}
	return one(ok(levelFiscal, ref, name, "gifts within the cap"))
}

// FI-006: provision charges need an individual deductibility review.
func fi006(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "FI-006", "Provision deductibility"
	provisions := absNetSum(byPrefix(ctx.Current, "691", "697"))
	if provisions > 0 {
		r := anomaly(levelFiscal, ref, name, models.SeverityMinor,
			fmt.Sprintf("provision charges: %s; deductibility must be checked", amount(provisions)),
			&models.ResultDetails{
				Amounts:     map[string]float64{"provision_charges": provisions},
				Description: "self-insurance provisions, reserve-like provisions and provisions without a precise object are not deductible",
			})
		r.Suggestion = "review each provision individually, add back the non-deductible ones, and keep the supporting evidence"
		r.RegulatoryReference = "CGI - Deductibilite des provisions"
		return one(r)
	}
	return one(ok(levelFiscal, ref, name, "no provision charge"))
}

// FI-007: corporate tax booked versus estimated at the standard rate.
func fi007(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "FI-007", "Corporate tax coherence"
	result := bookedResult(ctx.Current)
	booked := absNetSum(byPrefix(ctx.Current, "89"))
	if result > 0 {
		estimated := result * taxRates.CorporateTaxRate
		if booked > 0 {
			ecart := math.Abs(estimated - booked)
			if ecart > estimated*0.3 {
				r := anomaly(levelFiscal, ref, name, models.SeverityMajor,
					fmt.Sprintf("booked tax (%s) significantly differs from the estimate (%s at %.0f%%)",
						amount(booked), amount(estimated), taxRates.CorporateTaxRate*100),
					&models.ResultDetails{
						Ecart: ecart,
						Amounts: map[string]float64{
							"tax_booked": booked, "tax_estimated": estimated,
							"result": result, "rate_pct": taxRates.CorporateTaxRate * 100,
						},
					})
				r.Suggestion = "check the tax computation: add-backs, deductions, tax credits, loss carry-forwards and the applied rate"
				return one(r)
			}
		} else {
			r := anomaly(levelFiscal, ref, name, models.SeverityMajor,
				fmt.Sprintf("profit of %s without any booked tax (89x)", amount(result)),
				&models.ResultDetails{Amounts: map[string]float64{
					"result": result, "tax_estimated": estimated,
				}})
			r.Suggestion = fmt.Sprintf("book the corporate tax; estimate: %s at %.0f%%", amount(estimated), taxRates.CorporateTaxRate*100)
			return one(r)
		}
	}
	return one(ok(levelFiscal, ref, name, "corporate tax coherent with the result"))
}

// FI-008: the minimum flat tax is a floor on the corporate tax.
func fi008(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "FI-008", "Minimum flat tax"
	revenue := absNetSum(byPrefix(ctx.Current, "70"))
	booked := absNetSum(byPrefix(ctx.Current, "89"))
	if revenue > 0 {
		minimum := math.Max(revenue*taxRates.MinimumTaxRate, taxRates.MinimumTaxFloor)
		minimum = math.Min(minimum, taxRates.MinimumTaxCeiling)
		if booked > 0 && booked < minimum {
			r := anomaly(levelFiscal, ref, name, models.SeverityMinor,
				fmt.Sprintf("booked tax (%s) below the minimum flat tax (%s)", amount(booked), amount(minimum)),
				&models.ResultDetails{Amounts: map[string]float64{
					"tax_booked": booked, "minimum_tax": minimum,
					"revenue": revenue, "supplement": minimum - booked,
				}})
			r.Suggestion = fmt.Sprintf("adjust the tax to the minimum flat tax with a supplement of %s", amount(minimum-booked))
			r.RegulatoryReference = "CGI - Minimum forfaitaire d'imposition"
			return one(r)
		}
	}
	return one(ok(levelFiscal, ref, name, "minimum flat tax respected"))
}

// FI-009: VAT collected minus deductible must land on the VAT-due account.
func fi009(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "FI-009", "VAT to remit"
	collected := absNetSum(byPrefix(ctx.Current, "443"))
	deductible := absNetSum(byPrefix(ctx.Current, "445"))
	due := absNetSum(byPrefix(ctx.Current, "444"))
	if collected > 0 && deductible > 0 {
		theoretical := collected - deductible
		if theoretical > 0 && due == 0 {
			r := anomaly(levelFiscal, ref, name, models.SeverityMinor,
				fmt.Sprintf("theoretical VAT due (%s) not booked on 444x", amount(theoretical)),
				&models.ResultDetails{Amounts: map[string]float64{
					"vat_collected": collected, "vat_deductible": deductible, "vat_theoretical": theoretical,
				}})
			r.Suggestion = "book the VAT due on 444x and reconcile with the monthly VAT returns"
			r.CorrectiveEntries = []models.JournalEntry{{
				Journal: "OD",
				Date:    time.Now().UTC().Format("2006-01-02"),
				Lines: []models.JournalEntryLine{
					{Side: "D", Account: "443000", Label: "VAT collected - clearing", Amount: theoretical},
					{Side: "C", Account: "444000", Label: "State - VAT due", Amount: theoretical},
				},
				Comment: "VAT centralization: transfer of the collected-VAT balance to VAT due",
			}}
			r.RegulatoryReference = "CGI - Declarations et paiement de la TVA"
			return one(r)
		}
	}
	return one(ok(levelFiscal, ref, name, "VAT to remit coherent"))
}

// FI-010: payroll must carry social contributions.
func fi010(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "FI-010", "Payroll versus contributions"
	payroll := absNetSum(byPrefix(ctx.Current, "66"))
	contributions := absNetSum(byPrefix(ctx.Current, "664", "6413"))
	if payroll > 0 && contributions == 0 {
		r := anomaly(levelFiscal, ref, name, models.SeverityInfo,
			fmt.Sprintf("payroll charges (%s) without social contributions (664x/6413x)", amount(payroll)),
			&models.ResultDetails{Amounts: map[string]float64{"payroll_charges": payroll}})
		r.Suggestion = "check the social filings and book the employer contributions on 664x"
		return one(r)
	}
	if payroll > 0 && contributions > 0 {
		ratio := contributions / payroll * 100
		if ratio < 10 {
			r := anomaly(levelFiscal, ref, name, models.SeverityInfo,
				fmt.Sprintf("low contributions-to-payroll ratio: %.1f%%", ratio),
				&models.ResultDetails{
					Amounts: map[string]float64{
						"payroll_charges": payroll, "contributions": contributions,
						"ratio_pct": math.Round(ratio*10) / 10,
					},
					Description: "employer contributions usually represent 15-25% of the gross payroll mass",
				})
			r.Suggestion = "check the completeness of the social contributions: family benefits, work accidents, pensions"
			return one(r)
		}
	}
	return one(ok(levelFiscal, ref, name, "payroll and contributions coherent"))
}

// FI-011: donations (658x) above 5 per mille of revenue.
func fi011(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "FI-011", "Donations cap"
	donations := absNetSum(byPrefix(ctx.Current, "658"))
	revenue := absNetSum(byPrefix(ctx.Current, "70"))
	cap := revenue * taxRates.DonationCapRatio
	if donations > cap && cap > 0 {
		excess := donations - cap
		r := anomaly(levelFiscal, ref, name, models.SeverityMinor,
			fmt.Sprintf("donations (%s) above the cap of 5 per mille of revenue (%s), excess: %s",
				amount(donations), amount(cap), amount(excess)),
			&models.ResultDetails{Amounts: map[string]float64{
				"donations": donations, "cap": cap, "revenue": revenue, "excess": excess,
			}})
		r.Suggestion = fmt.Sprintf("add back the excess of %s to the taxable result", amount(excess))
		r.RegulatoryReference = "CGI Art. 18-5 - Plafond dons"
		return one(r)
	}
	return one(ok(levelFiscal, ref, name, "donations within the cap"))
}

// FI-012: luxury charges (6257x) are fully non-deductible.
func fi012(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "FI-012", "Luxury charges"
	luxury := absNetSum(byPrefix(ctx.Current, "6257"))
	if luxury > 0 {
		r := anomaly(levelFiscal, ref, name, models.SeverityMinor,
			fmt.Sprintf("luxury charges: %s (fully non-deductible)", amount(luxury)),
			&models.ResultDetails{
				Amounts:     map[string]float64{"luxury_charges": luxury},
				Description: "luxury expenses (personal residence, hunting, fishing, yacht) are never deductible",
			})
		r.Suggestion = fmt.Sprintf("add back the full amount (%s) and document the nature of the expenses", amount(luxury))
		r.RegulatoryReference = "CGI Art. 18-6 - Charges somptuaires non deductibles"
		return one(r)
	}
	return one(ok(levelFiscal, ref, name, "no luxury charge detected"))
}

// FI-013: interest on associate current accounts above the legal rate.
func fi013(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "FI-013", "Associate-account interest"
	interest := absNetSum(byPrefix(ctx.Current, "672"))
	accounts := absNetSum(byPrefix(ctx.Current, "455"))
	if interest > 0 && accounts > 0 {
		maxInterest := accounts * taxRates.ShareholderLoanRate
		if interest > maxInterest {
			excess := interest - maxInterest
			r := anomaly(levelFiscal, ref, name, models.SeverityMinor,
				fmt.Sprintf("associate-account interest (%s) above the cap of %.1f%% (%s)",
					amount(interest), taxRates.ShareholderLoanRate*100, amount(maxInterest)),
				&models.ResultDetails{Amounts: map[string]float64{
					"interest": interest, "associate_accounts": accounts,
					"interest_cap": maxInterest, "excess": excess,
				}})
			r.Suggestion = fmt.Sprintf("add back the excess interest of %s to the taxable result", amount(excess))
			r.CorrectiveEntries = addBackEntry("Add-back: associate-account interest above the legal rate",
				"Interest on associate current accounts above the capped rate", excess)
			r.RegulatoryReference = "CGI Art. 18 - Deductibilite interets comptes courants"
			return one(r)
		}
	}
	return one(ok(levelFiscal, ref, name, "associate-account interest within limits"))
}

// FI-014: rents paid while owning buildings deserves a justification.
func fi014(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "FI-014", "Rents versus owned buildings"
	rents := absNetSum(byPrefix(ctx.Current, "622"))
	buildings := absNetSum(byPrefix(ctx.Current, "231"))
	if rents > 0 && buildings > 0 {
		r := anomaly(levelFiscal, ref, name, models.SeverityInfo,
			fmt.Sprintf("rents (%s) and owned buildings (%s) at the same time", amount(rents), amount(buildings)),
			&models.ResultDetails{
				Amounts:     map[string]float64{"rents": rents, "owned_buildings": buildings},
				Description: "rents between related parties are subject to verification; check whether the rents cover additional premises or reflect a classification error",
			})
		r.Suggestion = "document the economic justification of the rents despite owned buildings"
		return one(r)
	}
	return one(ok(levelFiscal, ref, name, "rents and occupation coherent"))
}

// FI-015: effective tax rate far from the standard rate.
func fi015(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "FI-015", "Effective tax rate"
	result := bookedResult(ctx.Current)
	booked := absNetSum(byPrefix(ctx.Current, "89"))
	if result > 0 && booked > 0 {
		effective := booked / result * 100
		standard := taxRates.CorporateTaxRate * 100
		if effective > standard*1.5 {
			r := anomaly(levelFiscal, ref, name, models.SeverityInfo,
				fmt.Sprintf("high effective tax rate: %.1f%% (standard rate: %.0f%%)", effective, standard),
				&models.ResultDetails{Amounts: map[string]float64{
					"result": result, "tax_booked": booked,
					"effective_rate_pct": math.Round(effective*10) / 10, "standard_rate_pct": standard,
				}})
			r.Suggestion = "analyze the taxable-result determination: identify the add-backs and check whether the minimum tax applies"
			return one(r)
		}
		if effective < standard*0.3 && booked > 100000 {
			r := anomaly(levelFiscal, ref, name, models.SeverityInfo,
				fmt.Sprintf("low effective tax rate: %.1f%% (standard rate: %.0f%%)", effective, standard),
				&models.ResultDetails{Amounts: map[string]float64{
					"result": result, "tax_booked": booked,
					"effective_rate_pct": math.Round(effective*10) / 10, "standard_rate_pct": standard,
				}})
			r.Suggestion = "document the reasons for the low rate: exemptions, free zone, loss carry-forwards, tax credits"
			return one(r)
		}
	}
	return one(ok(levelFiscal, ref, name, "effective tax rate in the normal range"))
}

func registerLevel7(reg *audit.Registry) {
	register(reg, levelFiscal, models.PhaseStatement, []controlDef{
		{"FI-001", "Taxable result", "Checks the taxable result and loss carry-forward", models.SeverityInfo, fi001},
		{"FI-002", "Passenger-vehicle depreciation cap", "Checks the vehicle depreciation base cap", models.SeverityMinor, fi002},
		{"FI-003", "Entertainment charges", "Detects excess entertainment charges", models.SeverityMinor, fi003},
		{"FI-004", "Fines and penalties", "Flags non-deductible fines", models.SeverityMinor, fi004},
		{"FI-005", "Gifts cap", "Checks the gift deductibility cap", models.SeverityMinor, fi005},
		{"FI-006", "Provision deductibility", "Flags provisions needing a deductibility review", models.SeverityMinor, fi006},
		{"FI-007", "Corporate tax coherence", "Checks booked tax against the estimate", models.SeverityMajor, fi007},
		{"FI-008", "Minimum flat tax", "Checks the tax floor on revenue", models.SeverityMinor, fi008},
		{"FI-009", "VAT to remit", "Checks collected minus deductible lands on VAT due", models.SeverityMinor, fi009},
		{"FI-010", "Payroll versus contributions", "Checks payroll carries social contributions", models.SeverityInfo, fi010},
		{"FI-011", "Donations cap", "Checks the 5 per mille donation cap", models.SeverityMinor, fi011},
		{"FI-012", "Luxury charges", "Flags fully non-deductible luxury expenses", models.SeverityMinor, fi012},
		{"FI-013", "Associate-account interest", "Checks the interest-rate cap on associate accounts", models.SeverityMinor, fi013},
		{"FI-014", "Rents versus owned buildings", "Flags rents paid while owning buildings", models.SeverityInfo, fi014},
		{"FI-015", "Effective tax rate", "Analyzes the effective corporate tax rate", models.SeverityInfo, fi015},
	})
}
