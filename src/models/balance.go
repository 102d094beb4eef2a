// backend/src/models/balance.go
package models

// BalanceLine represents one ledger account of a trial balance for a period.
// Lines are supplied by the caller (the import pipeline lives outside this
// service) and are only read here.
type BalanceLine struct {
	Account        string  `json:"account"`         // Account code, e.g. "411000"
	Label          string  `json:"label"`           // Account label as imported
	DebitMovement  float64 `json:"debit_movement"`  // Cumulated debit movements of the period
	CreditMovement float64 `json:"credit_movement"`
	DebitBalance   float64 `json:"debit_balance"`
	CreditBalance  float64 `json:"credit_balance"`
}

// Net returns the signed balance of the line (debit minus credit).
func (l BalanceLine) Net() float64 {
	return l.DebitBalance - l.CreditBalance
}

// BalanceTotals sums the movement columns of a balance.
func BalanceTotals(lines []BalanceLine) (totalDebit, totalCredit float64) {
	for _, l := range lines {
		totalDebit += l.DebitMovement
		totalCredit += l.CreditMovement
	}
	return totalDebit, totalCredit
}
