// backend/src/audit/controls/helpers.go
package controls

import (
	"fmt"
	"strings"
	"time"

	"github.com/username/fiscasync/backend/src/models"
)

// Amount tolerance shared by the equilibrium controls: accounting packages
// routinely leave sub-cent rounding residue.
const tolerance = 0.01

func byPrefix(lines []models.BalanceLine, prefixes ...string) []models.BalanceLine {
	var out []models.BalanceLine
	for _, l := range lines {
		for _, p := range prefixes {
			if strings.HasPrefix(strings.TrimSpace(l.Account), p) {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

func sumDebits(lines []models.BalanceLine) float64 {
	var s float64
	for _, l := range lines {
		s += l.DebitMovement
	}
	return s
}

func sumCredits(lines []models.BalanceLine) float64 {
	var s float64
	for _, l := range lines {
		s += l.CreditMovement
	}
	return s
}

// creditNet sums credit-minus-debit balances, the natural reading for
// liability, equity and revenue accounts.
func creditNet(lines []models.BalanceLine) float64 {
	var s float64
	for _, l := range lines {
		s += l.CreditBalance - l.DebitBalance
	}
	return s
}

// debitNet sums debit-minus-credit balances, the natural reading for asset
// and expense accounts.
func debitNet(lines []models.BalanceLine) float64 {
	var s float64
	for _, l := range lines {
		s += l.DebitBalance - l.CreditBalance
	}
	return s
}

func absNetSum(lines []models.BalanceLine) float64 {
	var s float64
	for _, l := range lines {
		n := l.Net()
		if n < 0 {
			n = -n
		}
		s += n
	}
	return s
}

func classOf(account string) int {
	a := strings.TrimSpace(account)
	if a == "" {
		return -1
	}
	c := a[0]
	if c < '0' || c > '9' {
		return -1
	}
	return int(c - '0')
}

func balanceSheetLines(lines []models.BalanceLine) []models.BalanceLine {
	var out []models.BalanceLine
	for _, l := range lines {
		if cl := classOf(l.Account); cl >= 1 && cl <= 5 {
			out = append(out, l)
		}
	}
	return out
}

func amount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func truncate(list []string, n int) []string {
	if len(list) <= n {
		return list
	}
	return list[:n]
}

// Result constructors. Every control in the catalog reports through these so
// the result shape stays uniform.

func ok(level int, ref, name, msg string) models.ControlResult {
	return models.ControlResult{
		Ref: ref, Name: name, Level: level,
		Status: models.StatusOK, Severity: models.SeverityOK,
		Message: msg, Timestamp: time.Now().UTC(),
	}
}

func anomaly(level int, ref, name string, sev models.Severity, msg string, details *models.ResultDetails) models.ControlResult {
	return models.ControlResult{
		Ref: ref, Name: name, Level: level,
		Status: models.StatusAnomaly, Severity: sev,
		Message: msg, Details: details, Timestamp: time.Now().UTC(),
	}
}

func notApplicable(level int, ref, name, msg string) models.ControlResult {
	return models.ControlResult{
		Ref: ref, Name: name, Level: level,
		Status: models.StatusNotApplicable, Severity: models.SeverityOK,
		Message: msg, Timestamp: time.Now().UTC(),
	}
}

func one(r models.ControlResult) ([]models.ControlResult, error) {
	return []models.ControlResult{r}, nil
}
