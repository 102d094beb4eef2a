// backend/src/referential/plan_test.go
package referential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlan() *Plan {
	return NewPlan([]Account{
		{Number: "10", Label: "Capital", Class: 1, Sign: SignCredit, Usage: UsageAllowed},
		{Number: "101", Label: "Capital social", Class: 1, Sign: SignCredit, Usage: UsageAllowed},
		{Number: "401", Label: "Fournisseurs", Class: 4, Sign: SignCredit, Usage: UsageAllowed},
		{Number: "4011", Label: "Fournisseurs ordinaires", Class: 4, Sign: SignCredit, Usage: UsageAllowed},
		{Number: "411", Label: "Clients", Class: 4, Sign: SignDebit, Usage: UsageAllowed},
		{Number: "476", Label: "Charges constatees d'avance", Class: 4, Sign: SignDebit, Usage: UsageForbidden},
		{Number: "70", Label: "Ventes", Class: 7, Sign: SignCredit, Usage: UsageAllowed},
	})
}

func TestLookup_LongestPrefixWins(t *testing.T) {
	p := testPlan()

	acc, ok := p.Lookup("401100")
	require.True(t, ok)
	assert.Equal(t, "4011", acc.Number)

	acc, ok = p.Lookup("401900")
	require.True(t, ok)
	assert.Equal(t, "401", acc.Number)

	acc, ok = p.Lookup("109000")
	require.True(t, ok)
	assert.Equal(t, "10", acc.Number)
}

func TestLookup_UnknownNumber(t *testing.T) {
	p := testPlan()

	_, ok := p.Lookup("999999")
	assert.False(t, ok)
	assert.False(t, p.Known("999999"))
	assert.True(t, p.Known("411000"))
}

func TestLookup_TrimsWhitespace(t *testing.T) {
	p := testPlan()
	acc, ok := p.Lookup("  411000 ")
	require.True(t, ok)
	assert.Equal(t, "411", acc.Number)
}

func TestClosest_LongestSharedPrefix(t *testing.T) {
	p := testPlan()

	s := p.Closest("412000")
	require.NotNil(t, s)
	assert.Equal(t, "411", s.Number)
	assert.Equal(t, 2, s.Score)
}

func TestClosest_SkipsForbiddenEntries(t *testing.T) {
	p := testPlan()

	// 476 shares the longest prefix but is forbidden; the fallback is the
	// closest allowed entry.
	s := p.Closest("476000")
	require.NotNil(t, s)
	assert.NotEqual(t, "476", s.Number)
}

func TestClosest_PrefersShorterNumberOnTies(t *testing.T) {
	p := testPlan()

	// "10" and "101" both share the 2-char prefix of "108000"; the more
	// generic entry wins.
	s := p.Closest("108000")
	require.NotNil(t, s)
	assert.Equal(t, "10", s.Number)
}

func TestClosest_NoMatch(t *testing.T) {
	p := testPlan()
	assert.Nil(t, p.Closest("9"))
	assert.Nil(t, p.Closest(""))
}

func TestForbidden(t *testing.T) {
	p := testPlan()

	acc, forbidden := p.Forbidden("476100")
	assert.True(t, forbidden)
	assert.Equal(t, "476", acc.Number)

	_, forbidden = p.Forbidden("411000")
	assert.False(t, forbidden)

	_, forbidden = p.Forbidden("999999")
	assert.False(t, forbidden)
}

func TestAccounts_SortedByNumber(t *testing.T) {
	p := testPlan()
	accounts := p.Accounts()
	require.Len(t, accounts, p.Size())
	for i := 1; i < len(accounts); i++ {
		assert.LessOrEqual(t, accounts[i-1].Number, accounts[i].Number)
	}
}

func TestDefaultTaxRates(t *testing.T) {
	rates := DefaultTaxRates()
	assert.InDelta(t, 0.25, rates.CorporateTaxRate, 0.0001)
	assert.InDelta(t, 0.18, rates.VATStandardRate, 0.0001)
	assert.Greater(t, rates.MinimumTaxCeiling, rates.MinimumTaxFloor)
}
