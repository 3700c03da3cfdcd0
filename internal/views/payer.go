// Package views aggregates denormalized item rows into the projections
// the billing and list screens are built from: per-payer totals,
// per-category item groups and list-level summaries. All functions are
// pure; they take row snapshots and return fresh values, so callers can
// recompute on every reload without locking.
package views

import (
	"sort"
	"strings"

	"github.com/mkrause/hauslist/internal/models"
)

// UnknownPayer is the display name used when a batch carries no orderer
// name. Empty and whitespace-only names collapse into it so they bill
// as a single bucket.
const UnknownPayer = "—"

// DefaultCurrency is used when no row carries a currency code.
const DefaultCurrency = "EUR"

// NormalizePayer trims a raw orderer name and substitutes UnknownPayer
// for empty input. The returned name keeps its original casing; merging
// across casings happens via payerKey.
func NormalizePayer(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return UnknownPayer
	}
	return name
}

// payerKey folds a normalized payer name for merging: "Max" and "max"
// bill as one payer.
func payerKey(name string) string {
	return strings.ToLower(NormalizePayer(name))
}

// PayerTotal is the billing row for one payer on one list.
type PayerTotal struct {
	// Payer is the display name, taken from the first spelling seen.
	Payer string

	// Total is the summed price (unit price times quantity) of the
	// payer's billable items.
	Total float64

	// Currency is the currency code shared by the payer's items.
	Currency string

	// ItemCount is the number of billable item lines.
	ItemCount int

	// IsPaid mirrors the payer's billing flag, false when no flag
	// exists yet.
	IsPaid bool
}

// PayerTotals aggregates item rows into per-payer billing totals.
// Rows whose category is listed in excludedCategories (matched
// case-insensitively) are household-shared and excluded from all
// per-payer sums. Names differing only in case or surrounding
// whitespace merge into one payer; flags marks payers already settled.
// The result is sorted by descending total, ties by name, so the
// biggest share bills first.
func PayerTotals(items []models.ItemRow, flags []models.BillingFlag, excludedCategories []string) []PayerTotal {
	excluded := make(map[string]bool, len(excludedCategories))
	for _, c := range excludedCategories {
		excluded[strings.ToLower(strings.TrimSpace(c))] = true
	}

	paid := make(map[string]bool, len(flags))
	for _, f := range flags {
		paid[payerKey(f.PayerName)] = f.IsPaid
	}

	totals := make(map[string]*PayerTotal)
	for _, it := range items {
		if excluded[strings.ToLower(strings.TrimSpace(it.Category))] {
			continue
		}

		key := payerKey(it.OrderedBy)
		pt, ok := totals[key]
		if !ok {
			pt = &PayerTotal{
				Payer:    NormalizePayer(it.OrderedBy),
				Currency: DefaultCurrency,
				IsPaid:   paid[key],
			}
			totals[key] = pt
		}

		pt.Total += it.Price * float64(it.Quantity)
		pt.ItemCount++
		if it.Currency != "" {
			pt.Currency = it.Currency
		}
	}

	out := make([]PayerTotal, 0, len(totals))
	for _, pt := range totals {
		out = append(out, *pt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Payer < out[j].Payer
	})
	return out
}
