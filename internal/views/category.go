package views

import (
	"sort"
	"strings"

	"github.com/mkrause/hauslist/internal/models"
)

// FallbackCategory groups items whose product has no category.
const FallbackCategory = "Sonstiges"

// CategoryGroup is one category section of the list screen.
type CategoryGroup struct {
	Category string
	Items    []models.ItemRow
}

// GroupByCategory buckets item rows by product category, substituting
// FallbackCategory for rows without one. Groups come back sorted
// alphabetically; within a group the rows keep their input order (the
// caller loads them sorted by added_at).
func GroupByCategory(items []models.ItemRow) []CategoryGroup {
	buckets := make(map[string][]models.ItemRow)
	for _, it := range items {
		cat := strings.TrimSpace(it.Category)
		if cat == "" {
			cat = FallbackCategory
		}
		buckets[cat] = append(buckets[cat], it)
	}

	out := make([]CategoryGroup, 0, len(buckets))
	for cat, rows := range buckets {
		out = append(out, CategoryGroup{Category: cat, Items: rows})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
