// backend/src/audit/controls/level0_structural.go
//
// Level 0 - structural checks on the imported balance file.
package controls

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/username/fiscasync/backend/src/audit"
	"github.com/username/fiscasync/backend/src/models"
)

const levelStructural = 0

var accountFormat = regexp.MustCompile(`^\d{2,12}$`)
var totalsRow = regexp.MustCompile(`(?i)^(TOTAL|SOUS[- ]?TOTAL|S/?TOTAL|CLASSE\s*\d|SECTION\s*\d)`)

// S-001: the balance holds at least one line.
func s001(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "S-001", "Balance readable"
	if len(ctx.Current) == 0 {
		return one(anomaly(levelStructural, ref, name, models.SeverityBlocking,
			"the balance contains no lines", nil))
	}
	return one(ok(levelStructural, ref, name, fmt.Sprintf("balance readable: %d lines", len(ctx.Current))))
}

// S-002: account numbers follow the 2-12 digit format. Below 80% valid the
// import itself is suspect and the anomaly is blocking.
func s002(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "S-002", "Valid account numbers"
	var invalid []string
	for _, l := range ctx.Current {
		code := strings.TrimSpace(l.Account)
		if !accountFormat.MatchString(code) {
			if code == "" {
				code = "(empty)"
			}
			invalid = append(invalid, code)
		}
	}
	if len(ctx.Current) > 0 {
		pctValid := float64(len(ctx.Current)-len(invalid)) / float64(len(ctx.Current)) * 100
		if pctValid < 80 {
			return one(anomaly(levelStructural, ref, name, models.SeverityBlocking,
				fmt.Sprintf("only %.1f%% of account numbers are valid (threshold: 80%%)", pctValid),
				&models.ResultDetails{Accounts: truncate(invalid, 20)}))
		}
	}
	if len(invalid) > 0 {
		return one(anomaly(levelStructural, ref, name, models.SeverityMinor,
			fmt.Sprintf("%d account(s) with non-standard format", len(invalid)),
			&models.ResultDetails{Accounts: truncate(invalid, 10)}))
	}
	return one(ok(levelStructural, ref, name, fmt.Sprintf("all %d account numbers are valid", len(ctx.Current))))
}

// S-003: minimum balance size.
func s003(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "S-003", "Minimum line count"
	if len(ctx.Current) < 10 {
		return one(anomaly(levelStructural, ref, name, models.SeverityBlocking,
			fmt.Sprintf("only %d accounts (minimum expected: 10)", len(ctx.Current)), nil))
	}
	return one(ok(levelStructural, ref, name, fmt.Sprintf("%d accounts in the balance", len(ctx.Current))))
}

// S-004: duplicate account numbers.
func s004(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "S-004", "No duplicate accounts"
	seen := make(map[string]int)
	var dups []string
	for _, l := range ctx.Current {
		code := strings.TrimSpace(l.Account)
		seen[code]++
		if seen[code] == 2 {
			dups = append(dups, code)
		}
	}
	if len(dups) > 0 {
		return one(anomaly(levelStructural, ref, name, models.SeverityBlocking,
			fmt.Sprintf("%d duplicated account(s) detected", len(dups)),
			&models.ResultDetails{Accounts: truncate(dups, 10)}))
	}
	return one(ok(levelStructural, ref, name, "no duplicated account detected"))
}

// S-005: totals or section rows left in the import would double-count.
func s005(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "S-005", "Totals rows excluded"
	var rows []string
	for _, l := range ctx.Current {
		if totalsRow.MatchString(strings.ToUpper(strings.TrimSpace(l.Label))) {
			rows = append(rows, fmt.Sprintf("%s: %s", l.Account, l.Label))
		}
	}
	if len(rows) > 0 {
		return one(anomaly(levelStructural, ref, name, models.SeverityMinor,
			fmt.Sprintf("%d totals row(s) detected", len(rows)),
			&models.ResultDetails{Accounts: truncate(rows, 5)}))
	}
	return one(ok(levelStructural, ref, name, "no totals row detected"))
}

// S-006: suspicious encoding in labels (mojibake from a non-UTF-8 source).
func s006(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "S-006", "Label encoding"
	var bad []string
	for _, l := range ctx.Current {
		if strings.ContainsRune(l.Label, '�') || strings.Contains(l.Label, "Ã©") || strings.Contains(l.Label, "Ã¨") {
			bad = append(bad, l.Account)
		}
	}
	if len(bad) > 0 {
		return one(anomaly(levelStructural, ref, name, models.SeverityMinor,
			fmt.Sprintf("%d label(s) with suspicious encoding", len(bad)),
			&models.ResultDetails{Accounts: truncate(bad, 5)}))
	}
	return one(ok(levelStructural, ref, name, "label encoding looks sane"))
}

// S-007: prior-period balance presence. Absence only limits the comparative
// levels, hence minor.
func s007(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "S-007", "Prior balance supplied"
	if !ctx.HasPrior() {
		return one(anomaly(levelStructural, ref, name, models.SeverityMinor,
			"prior-period balance not supplied; comparative controls will be limited", nil))
	}
	return one(ok(levelStructural, ref, name, fmt.Sprintf("prior balance supplied: %d lines", len(ctx.Prior))))
}

// S-008: the two balances should describe the same entity; a low share of
// common accounts suggests mismatched files.
func s008(ctx *audit.Context) ([]models.ControlResult, error) {
	ref, name := "S-008", "Current/prior coherence"
	if !ctx.HasPrior() {
		return one(notApplicable(levelStructural, ref, name, "prior balance absent"))
	}
	current := make(map[string]bool, len(ctx.Current))
	for _, l := range ctx.Current {
		current[strings.TrimSpace(l.Account)] = true
	}
	prior := make(map[string]bool, len(ctx.Prior))
	common := 0
	for _, l := range ctx.Prior {
		code := strings.TrimSpace(l.Account)
		prior[code] = true
		if current[code] {
			common++
		}
	}
	total := len(current) + len(prior)
	commonPct := 0.0
	if total > 0 {
		commonPct = float64(common*2) / float64(total) * 100
	}
	if commonPct < 50 {
		return one(anomaly(levelStructural, ref, name, models.SeverityMajor,
			fmt.Sprintf("only %.0f%% of accounts are common to both periods", commonPct),
			&models.ResultDetails{Amounts: map[string]float64{"common_pct": commonPct}}))
	}
	return one(ok(levelStructural, ref, name, fmt.Sprintf("%.0f%% of accounts are common to both periods", commonPct)))
}

func registerLevel0(reg *audit.Registry) {
	register(reg, levelStructural, models.PhaseIntake, []controlDef{
		{"S-001", "Balance readable", "Checks the balance is present and non-empty", models.SeverityBlocking, s001},
		{"S-002", "Valid account numbers", "Checks account number format (2-12 digits)", models.SeverityBlocking, s002},
		{"S-003", "Minimum line count", "Checks the balance has at least 10 accounts", models.SeverityBlocking, s003},
		{"S-004", "No duplicate accounts", "Checks for duplicated account numbers", models.SeverityBlocking, s004},
		{"S-005", "Totals rows excluded", "Detects totals/section rows left in the import", models.SeverityMinor, s005},
		{"S-006", "Label encoding", "Detects mojibake in account labels", models.SeverityMinor, s006},
		{"S-007", "Prior balance supplied", "Checks the prior-period balance is present", models.SeverityMinor, s007},
		{"S-008", "Current/prior coherence", "Checks account overlap between the two periods", models.SeverityMajor, s008},
	})
}
