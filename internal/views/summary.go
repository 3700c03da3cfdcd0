package views

// ListSummary is the header line of the billing screen: the grand total
// split into settled and outstanding shares.
type ListSummary struct {
	Total    float64
	Paid     float64
	Open     float64
	Currency string
	Payers   int
}

// Summarize folds per-payer totals into a list-level summary. Payers
// flagged as paid contribute to Paid, the rest to Open.
func Summarize(totals []PayerTotal) ListSummary {
	sum := ListSummary{Currency: DefaultCurrency, Payers: len(totals)}
	for _, pt := range totals {
		sum.Total += pt.Total
		if pt.IsPaid {
			sum.Paid += pt.Total
		} else {
			sum.Open += pt.Total
		}
		if pt.Currency != "" {
			sum.Currency = pt.Currency
		}
	}
	return sum
}
