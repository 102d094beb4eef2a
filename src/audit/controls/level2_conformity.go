// backend/src/audit/controls/level2_conformity.go
//
// Level 2 - conformity to the SYSCOHADA Revise 2017 chart of accounts.
// All controls at this level need the reference chart and report
// NOT_APPLICABLE when it is not loaded.
package controls

import (
	"fmt"
	"math"
	"strings"

	"github.com/username/fiscasync/backend/src/audit"
	"github.com/username/fiscasync/backend/src/models"
	"github.com/username/fiscasync/backend/src/referential"
)

const levelConformity = 2

// C-001: every account must resolve to a reference entry. Unresolved numbers
// get a closest-match remapping suggestion when one exists.
func c001(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "C-001", "Valid chart accounts"
	if ctx.Plan == nil {
		return one(notApplicable(levelConformity, ref, name, "reference chart not loaded"))
	}
	var unknown []string
	suggestions := 0
	for _, l := range ctx.Current {
		num := strings.TrimSpace(l.Account)
		if ctx.Plan.Known(num) {
			continue
		}
		if s := ctx.Plan.Closest(num); s != nil {
			unknown = append(unknown, fmt.Sprintf("%s -> %s - %s", num, s.Number, s.Label))
			suggestions++
		} else {
			unknown = append(unknown, num)
		}
	}
	if len(unknown) > 0 {
		pct := float64(len(unknown)) / float64(len(ctx.Current)) * 100
		r := anomaly(levelConformity, ref, name, models.SeverityMajor,
			fmt.Sprintf("%d account(s) not conforming to the reference chart (%.1f%%)", len(unknown), pct),
			&models.ResultDetails{
				Accounts: truncate(unknown, 15),
				Amounts: map[string]float64{
					"unknown_accounts": float64(len(unknown)),
					"total_accounts":   float64(len(ctx.Current)),
					"suggestions":      float64(suggestions),
				},
				Description: fmt.Sprintf("%d account numbers are absent from the SYSCOHADA Revise 2017 chart; %d remapping suggestion(s) were derived automatically", len(unknown), suggestions),
			})
		r.Suggestion = "reclassify these accounts per the SYSCOHADA Revise 2017 chart, using the proposed mappings where available"
		r.RegulatoryReference = "Art. 14 Acte Uniforme OHADA - Plan de comptes SYSCOHADA"
		return one(r)
	}
	return one(ok(levelConformity, ref, name, "all accounts conform to the reference chart"))
}

// C-002: the class digit must be 1-9.
func c002(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "C-002", "Valid classes"
	var invalid []string
	for _, l := range ctx.Current {
		if cl := classOf(l.Account); cl < 1 || cl > 9 {
			invalid = append(invalid, l.Account)
		}
	}
	if len(invalid) > 0 {
		r := anomaly(levelConformity, ref, name, models.SeverityBlocking,
			fmt.Sprintf("%d account(s) with an invalid class digit", len(invalid)),
			&models.ResultDetails{
				Accounts:    truncate(invalid, 10),
				Description: "account numbers must start with a class digit between 1 and 9",
			})
		r.Suggestion = "fix the account numbers so they start with a valid class digit (1 to 9)"
		r.RegulatoryReference = "Art. 14 Acte Uniforme OHADA - Nomenclature des comptes"
		return one(r)
	}
	return one(ok(levelConformity, ref, name, "all class digits are valid"))
}

// C-003: account numbers outside the usual 4-8 digit range.
func c003(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "C-003", "Standard account length"
	var short, long []string
	for _, l := range ctx.Current {
		n := len(strings.TrimSpace(l.Account))
		if n < 4 {
			short = append(short, "short: "+l.Account)
		} else if n > 8 {
			long = append(long, "long: "+l.Account)
		}
	}
	if len(short) > 0 || len(long) > 0 {
		accounts := append(truncate(short, 5), truncate(long, 5)...)
		return one(anomaly(levelConformity, ref, name, models.SeverityInfo,
			fmt.Sprintf("%d short account(s) (<4 digits), %d long account(s) (>8 digits)", len(short), len(long)),
			&models.ResultDetails{
				Accounts: accounts,
				Amounts: map[string]float64{
					"short_accounts": float64(len(short)),
					"long_accounts":  float64(len(long)),
				},
				Description: "SYSCOHADA recommends 4 to 8 digit account numbers; short numbers are grouping accounts that should not carry balances directly",
			}))
	}
	return one(ok(levelConformity, ref, name, "account number lengths are standard"))
}

// C-004: accounts of the pre-2017 SYSCOA chart, removed or replaced by the
// revision.
func c004(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "C-004", "Obsolete SYSCOA accounts"
	obsolete := map[string]string{
		"195": "tax provisions (replaced by 441x)",
		"196": "pension provisions (replaced by 198x)",
		"471": "suspense account (replaced by specific 47x accounts)",
		"694": "TAFIRE, removed by the 2017 revision",
	}
	var found []string
	for _, l := range ctx.Current {
		num := strings.TrimSpace(l.Account)
		for prefix, desc := range obsolete {
			if strings.HasPrefix(num, prefix) {
				found = append(found, fmt.Sprintf("%s: %s", num, desc))
			}
		}
	}
	if len(found) > 0 {
		r := anomaly(levelConformity, ref, name, models.SeverityMajor,
			fmt.Sprintf("%d obsolete account(s) from the pre-revision SYSCOA chart", len(found)),
			&models.ResultDetails{
				Accounts:    truncate(found, 15),
				Description: "accounts removed or replaced by the SYSCOHADA 2017 revision are still in use",
			})
		r.Suggestion = "migrate to the SYSCOHADA Revise 2017 accounts using the official correspondence table"
		r.RegulatoryReference = "SYSCOHADA Revise 2017 - Guide de migration"
		return one(r)
	}
	return one(ok(levelConformity, ref, name, "no obsolete account detected"))
}

// C-005: TAFIRE accounts (694x, 884x, 894x), replaced by the cash-flow
// statement in the 2017 revision.
func c005(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "C-005", "Removed TAFIRE accounts"
	tafire := byPrefix(ctx.Current, "694", "884", "894")
	if len(tafire) > 0 {
		var accounts []string
		for _, l := range tafire {
			accounts = append(accounts, fmt.Sprintf("%s: %s", l.Account, l.Label))
		}
		r := anomaly(levelConformity, ref, name, models.SeverityMajor,
			fmt.Sprintf("%d TAFIRE account(s) detected (removed by the revision)", len(tafire)),
			&models.ResultDetails{
				Accounts:    truncate(accounts, 10),
				Description: "the TAFIRE statement was replaced by the cash-flow statement in 2017; its accounts (694x, 884x, 894x) must no longer be used",
			})
		r.Suggestion = "remove these accounts and derive the cash-flow statement instead"
		r.RegulatoryReference = "SYSCOHADA Revise 2017 - Suppression du TAFIRE"
		return one(r)
	}
	return one(ok(levelConformity, ref, name, "no obsolete TAFIRE account"))
}

// C-006: balance-sheet accounts (classes 1-5) must resolve in the reference
// chart so statement generation can place them.
func c006(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "C-006", "Statement mapping"
	if ctx.Plan == nil {
		return one(notApplicable(levelConformity, ref, name, "reference chart not loaded"))
	}
	var unmapped []string
	for _, l := range balanceSheetLines(ctx.Current) {
		if !ctx.Plan.Known(l.Account) {
			unmapped = append(unmapped, l.Account)
		}
	}
	if len(unmapped) > 5 {
		r := anomaly(levelConformity, ref, name, models.SeverityMajor,
			fmt.Sprintf("%d balance-sheet account(s) cannot be mapped to statement lines", len(unmapped)),
			&models.ResultDetails{
				Accounts:    truncate(unmapped, 15),
				Description: "unmapped balance-sheet accounts are dropped from the generated statements and unbalance them against the trial balance",
			})
		r.Suggestion = "add the missing accounts to the mapping reference"
		r.RegulatoryReference = "Art. 29 Acte Uniforme OHADA - Presentation du bilan"
		return one(r)
	}
	if len(unmapped) > 0 {
		return one(anomaly(levelConformity, ref, name, models.SeverityMinor,
			fmt.Sprintf("%d balance-sheet account(s) unmapped", len(unmapped)),
			&models.ResultDetails{Accounts: unmapped}))
	}
	return one(ok(levelConformity, ref, name, "all balance-sheet accounts are mappable"))
}

// C-007: two-digit grouping accounts carrying balances directly.
func c007(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "C-007", "Two-digit accounts"
	var grouping []string
	for _, l := range ctx.Current {
		if len(strings.TrimSpace(l.Account)) == 2 {
			grouping = append(grouping, fmt.Sprintf("%s: %s", l.Account, l.Label))
		}
	}
	if len(grouping) > 0 {
		r := anomaly(levelConformity, ref, name, models.SeverityMinor,
			fmt.Sprintf("%d two-digit account(s) carrying balances", len(grouping)),
			&models.ResultDetails{
				Accounts:    truncate(grouping, 10),
				Description: "two-digit numbers are class groupings and should not carry balances directly",
			})
		r.Suggestion = "break these down into detailed sub-accounts of at least 4 digits"
		r.RegulatoryReference = "Plan SYSCOHADA Revise 2017 - Hierarchie des comptes"
		return one(r)
	}
	return one(ok(levelConformity, ref, name, "no bare two-digit account"))
}

// C-008: class 8 carries the extraordinary (HAO) operations; their presence is
// informational but each must be documented in the notes.
func c008(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "C-008", "Class 8 special accounts"
	class8 := byPrefix(ctx.Current, "8")
	if len(class8) > 0 {
		var total float64
		var accounts []string
		for _, l := range class8 {
			total += math.Abs(l.DebitMovement - l.CreditMovement)
			accounts = append(accounts, fmt.Sprintf("%s: %s", l.Account, l.Label))
		}
		r := anomaly(levelConformity, ref, name, models.SeverityInfo,
			fmt.Sprintf("%d extraordinary account(s) (class 8) totalling %s", len(class8), amount(total)),
			&models.ResultDetails{
				Accounts: truncate(accounts, 10),
				Amounts:  map[string]float64{"total_extraordinary": total, "account_count": float64(len(class8))},
			})
		r.Suggestion = "document each extraordinary operation in the notes and check none is a misclassified ordinary operation"
		r.RegulatoryReference = "Art. 48 Acte Uniforme OHADA - Operations HAO"
		return one(r)
	}
	return one(ok(levelConformity, ref, name, "no class 8 account"))
}

// C-009: accounts whose reference entry forbids direct use.
func c009(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "C-009", "Forbidden account usage"
	if ctx.Plan == nil {
		return one(notApplicable(levelConformity, ref, name, "reference chart not loaded"))
	}
	var forbidden []string
	for _, l := range ctx.Current {
		if acc, bad := ctx.Plan.Forbidden(l.Account); bad {
			forbidden = append(forbidden, fmt.Sprintf("%s (%s - forbidden usage)", l.Account, acc.Label))
		}
	}
	if len(forbidden) > 0 {
		r := anomaly(levelConformity, ref, name, models.SeverityMajor,
			fmt.Sprintf("%d account(s) used despite a forbidden usage in the reference chart", len(forbidden)),
			&models.ResultDetails{
				Accounts:    truncate(forbidden, 15),
				Description: "accounts marked forbidden were removed or replaced by the 2017 revision and must not receive movements",
			})
		r.Suggestion = "replace these accounts with their allowed counterparts per the SYSCOHADA correspondence table"
		r.RegulatoryReference = "Plan SYSCOHADA Revise 2017 - Regles d'utilisation des comptes"
		return one(r)
	}
	return one(ok(levelConformity, ref, name, "no forbidden account usage detected"))
}

// C-010: balances whose sign contradicts the reference normal sign. A handful
// of inversions is often legitimate (credit-side customer, overdrawn bank).
func c010(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "C-010", "Account sign coherence"
	if ctx.Plan == nil {
		return one(notApplicable(levelConformity, ref, name, "reference chart not loaded"))
	}
	var inverted []string
	var totalInverted float64
	for _, l := range ctx.Current {
		net := l.Net()
		if math.Abs(net) < tolerance {
			continue
		}
		acc, found := ctx.Plan.Lookup(l.Account)
		if !found {
			continue
		}
		wrong := (acc.Sign == referential.SignDebit && net < 0) ||
			(acc.Sign == referential.SignCredit && net > 0)
		if wrong {
			actual := "credit"
			if net > 0 {
				actual = "debit"
			}
			inverted = append(inverted, fmt.Sprintf("%s (%s): %s balance against the expected sign", l.Account, acc.Label, actual))
			totalInverted += math.Abs(net)
		}
	}
	if len(inverted) > 5 {
		r := anomaly(levelConformity, ref, name, models.SeverityMinor,
			fmt.Sprintf("%d account(s) with a balance against the expected sign", len(inverted)),
			&models.ResultDetails{
				Accounts: truncate(inverted, 15),
				Amounts:  map[string]float64{"inverted_accounts": float64(len(inverted)), "total_inverted": totalInverted},
			})
		r.Suggestion = "check each inverted balance; fix booking errors and reclassify where needed"
		r.RegulatoryReference = "Plan SYSCOHADA Revise 2017 - Sens des comptes"
		return one(r)
	}
	if len(inverted) > 0 {
		return one(anomaly(levelConformity, ref, name, models.SeverityInfo,
			fmt.Sprintf("%d account(s) with an inverted balance (may be legitimate)", len(inverted)),
			&models.ResultDetails{Accounts: truncate(inverted, 10)}))
	}
	return one(ok(levelConformity, ref, name, "account signs match the reference chart"))
}

func registerLevel2(reg *audit.Registry) {
	register(reg, levelConformity, models.PhaseIntake, []controlDef{
		{"C-001", "Valid chart accounts", "Checks accounts against the SYSCOHADA reference chart", models.SeverityMajor, c001},
		{"C-002", "Valid classes", "Checks class digits are between 1 and 9", models.SeverityBlocking, c002},
		{"C-003", "Standard account length", "Checks account number lengths", models.SeverityInfo, c003},
		{"C-004", "Obsolete SYSCOA accounts", "Detects accounts from the pre-revision chart", models.SeverityMajor, c004},
		{"C-005", "Removed TAFIRE accounts", "Detects obsolete TAFIRE accounts", models.SeverityMajor, c005},
		{"C-006", "Statement mapping", "Checks balance-sheet accounts map to statement lines", models.SeverityMajor, c006},
		{"C-007", "Two-digit accounts", "Flags grouping accounts carrying balances", models.SeverityMinor, c007},
		{"C-008", "Class 8 special accounts", "Reports extraordinary operations", models.SeverityInfo, c008},
		{"C-009", "Forbidden account usage", "Detects accounts with forbidden usage", models.SeverityMajor, c009},
		{"C-010", "Account sign coherence", "Checks balance signs against the reference chart", models.SeverityMinor, c010},
	})
}
