// backend/src/referential/plan.go
package referential

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Normal sign of an account per the chart of accounts.
const (
	SignDebit  = "DEBIT"
	SignCredit = "CREDIT"
)

// Usage permission of an account number.
const (
	UsageAllowed   = "ALLOWED"
	UsageForbidden = "FORBIDDEN" // removed or replaced by the 2017 revision
)

// Account is one entry of the SYSCOHADA reference chart. Entries are keyed by
// prefix: a balance account matches the longest reference prefix it starts with.
type Account struct {
	Number string `yaml:"number" json:"number"`
	Label  string `yaml:"label" json:"label"`
	Class  int    `yaml:"class" json:"class"`
	Sign   string `yaml:"sign" json:"sign"`
	Usage  string `yaml:"usage" json:"usage"`
}

// Suggestion is a closest-match proposal for an unrecognized account number.
type Suggestion struct {
	Number string
	Label  string
	Score  int // shared-prefix length, higher is closer
}

// Plan is the chart-of-accounts knowledge base. It is loaded once at startup
// and read-only afterwards.
type Plan struct {
	accounts []Account
	byNumber map[string]*Account
}

type planFile struct {
	Accounts []Account `yaml:"accounts"`
}

// Load reads the reference chart from a YAML file.
func Load(path string) (*Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	var pf planFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("parsing plan file %s: %w", path, err)
	}
	if len(pf.Accounts) == 0 {
		return nil, fmt.Errorf("plan file %s contains no accounts", path)
	}
	return NewPlan(pf.Accounts), nil
}

// NewPlan builds a Plan from an in-memory account list.
func NewPlan(accounts []Account) *Plan {
	p := &Plan{
		accounts: make([]Account, len(accounts)),
		byNumber: make(map[string]*Account, len(accounts)),
	}
	copy(p.accounts, accounts)
	for i := range p.accounts {
		p.byNumber[p.accounts[i].Number] = &p.accounts[i]
	}
	return p
}

// Size returns the number of reference entries.
func (p *Plan) Size() int { return len(p.accounts) }

// Lookup resolves an account number to its reference entry by decreasing
// prefix length (4 down to 2 digits). The boolean is false when no prefix of
// the number exists in the chart.
func (p *Plan) Lookup(number string) (Account, bool) {
	num := strings.TrimSpace(number)
	maxLen := len(num)
	if maxLen > 4 {
		maxLen = 4
	}
	for l := maxLen; l >= 2; l-- {
		if acc, ok := p.byNumber[num[:l]]; ok {
			return *acc, true
		}
	}
	return Account{}, false
}

// Known reports whether the number matches any reference prefix.
func (p *Plan) Known(number string) bool {
	_, ok := p.Lookup(number)
	return ok
}

// Closest returns the reference account sharing the longest prefix with the
// given number, for remapping suggestions. Returns nil when not even the class
// digit matches anything.
func (p *Plan) Closest(number string) *Suggestion {
	num := strings.TrimSpace(number)
	if num == "" {
		return nil
	}
	var best *Suggestion
	for i := range p.accounts {
		acc := &p.accounts[i]
		score := sharedPrefixLen(num, acc.Number)
		if score == 0 || acc.Usage == UsageForbidden {
			continue
		}
		// Prefer longer shared prefixes, then shorter (more generic) numbers.
		if best == nil || score > best.Score ||
			(score == best.Score && len(acc.Number) < len(best.Number)) {
			best = &Suggestion{Number: acc.Number, Label: acc.Label, Score: score}
		}
	}
	return best
}

// Forbidden returns the reference entry when the number resolves to an
// account whose usage is forbidden.
func (p *Plan) Forbidden(number string) (Account, bool) {
	acc, ok := p.Lookup(number)
	if ok && acc.Usage == UsageForbidden {
		return acc, true
	}
	return Account{}, false
}

// Accounts returns the reference entries sorted by number, for introspection.
func (p *Plan) Accounts() []Account {
	out := make([]Account, len(p.accounts))
	copy(out, p.accounts)
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func sharedPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
