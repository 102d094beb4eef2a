package referential

// TaxRates carries the rates used by the fiscal coherence checks. Values
// follow the Ivorian Code General des Impots, Loi de Finances 2025.
type TaxRates struct {
	CorporateTaxRate    float64 // taux normal IS (CGI Art. 33)
	MinimumTaxRate      float64 // IMF, fraction of revenue (CGI Art. 35)
	MinimumTaxFloor     float64 // IMF floor, FCFA
	MinimumTaxCeiling   float64 // IMF cap, FCFA
	VATStandardRate     float64 // TVA taux normal (CGI Art. 356)
	GiftCapRatio        float64 // cadeaux, 1 per mille of revenue
	DonationCapRatio    float64 // dons, 5 per mille of revenue
	ShareholderLoanRate float64 // max deductible rate on associate current accounts
	VehicleCap          float64 // passenger vehicle depreciation base cap, FCFA
}

// DefaultTaxRates returns the current statutory rates.
func DefaultTaxRates() TaxRates {
	return TaxRates{
		CorporateTaxRate:    0.25,
		MinimumTaxRate:      0.005,
		MinimumTaxFloor:     3_000_000,
		MinimumTaxCeiling:   35_000_000,
		VATStandardRate:     0.18,
		GiftCapRatio:        0.001,
		DonationCapRatio:    0.005,
		ShareholderLoanRate: 0.02,
		VehicleCap:          25_000_000,
	}
}
