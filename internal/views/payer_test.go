package views

import (
	"math"
	"testing"

	"github.com/mkrause/hauslist/internal/models"
)

func item(payer, category string, qty int, price float64) models.ItemRow {
	return models.ItemRow{
		OrderedBy: payer,
		Category:  category,
		Quantity:  qty,
		Price:     price,
		Currency:  "EUR",
	}
}

func TestPayerTotals(t *testing.T) {
	tests := []struct {
		name         string
		items        []models.ItemRow
		flags        []models.BillingFlag
		excluded     []string
		validateFunc func(t *testing.T, totals []PayerTotal)
	}{
		{
			name: "single payer sums quantity times price",
			items: []models.ItemRow{
				item("Anna", "Getränke", 2, 1.50),
				item("Anna", "Obst", 1, 3.00),
			},
			validateFunc: func(t *testing.T, totals []PayerTotal) {
				if len(totals) != 1 {
					t.Fatalf("len(totals) = %d, want 1", len(totals))
				}
				if math.Abs(totals[0].Total-6.00) > 0.001 {
					t.Errorf("total = %v, want 6.00", totals[0].Total)
				}
				if totals[0].Currency != "EUR" {
					t.Errorf("currency = %q, want EUR", totals[0].Currency)
				}
				if totals[0].ItemCount != 2 {
					t.Errorf("item count = %d, want 2", totals[0].ItemCount)
				}
			},
		},
		{
			name: "names differing in case and whitespace merge",
			items: []models.ItemRow{
				item("Max", "Obst", 1, 3.00),
				item("max ", "Getränke", 1, 1.50),
			},
			validateFunc: func(t *testing.T, totals []PayerTotal) {
				if len(totals) != 1 {
					t.Fatalf("len(totals) = %d, want 1", len(totals))
				}
				if totals[0].Payer != "Max" {
					t.Errorf("payer = %q, want first spelling %q", totals[0].Payer, "Max")
				}
				if math.Abs(totals[0].Total-4.50) > 0.001 {
					t.Errorf("total = %v, want 4.50", totals[0].Total)
				}
			},
		},
		{
			name: "empty and blank orderer names bill as the unknown payer",
			items: []models.ItemRow{
				item("", "Obst", 1, 1.00),
				item("   ", "Obst", 1, 2.00),
			},
			validateFunc: func(t *testing.T, totals []PayerTotal) {
				if len(totals) != 1 {
					t.Fatalf("len(totals) = %d, want 1", len(totals))
				}
				if totals[0].Payer != UnknownPayer {
					t.Errorf("payer = %q, want %q", totals[0].Payer, UnknownPayer)
				}
				if math.Abs(totals[0].Total-3.00) > 0.001 {
					t.Errorf("total = %v, want 3.00", totals[0].Total)
				}
			},
		},
		{
			name: "excluded categories do not bill",
			items: []models.ItemRow{
				item("Anna", "Obst", 1, 3.00),
				item("Anna", "Extra", 4, 10.00),
				item("Anna", "extra", 1, 5.00),
			},
			excluded: []string{"extra"},
			validateFunc: func(t *testing.T, totals []PayerTotal) {
				if math.Abs(totals[0].Total-3.00) > 0.001 {
					t.Errorf("total = %v, want 3.00 (shared categories excluded)", totals[0].Total)
				}
				if totals[0].ItemCount != 1 {
					t.Errorf("item count = %d, want 1", totals[0].ItemCount)
				}
			},
		},
		{
			name: "paid flags attach case-insensitively",
			items: []models.ItemRow{
				item("Anna", "Obst", 1, 3.00),
				item("Ben", "Obst", 1, 2.00),
			},
			flags: []models.BillingFlag{
				{PayerName: "anna", IsPaid: true},
			},
			validateFunc: func(t *testing.T, totals []PayerTotal) {
				byName := make(map[string]PayerTotal)
				for _, pt := range totals {
					byName[pt.Payer] = pt
				}
				if !byName["Anna"].IsPaid {
					t.Error("Anna should be flagged paid")
				}
				if byName["Ben"].IsPaid {
					t.Error("Ben should not be flagged paid")
				}
			},
		},
		{
			name: "sorted by descending total",
			items: []models.ItemRow{
				item("Anna", "Obst", 1, 1.00),
				item("Ben", "Obst", 1, 5.00),
				item("Cleo", "Obst", 1, 3.00),
			},
			validateFunc: func(t *testing.T, totals []PayerTotal) {
				want := []string{"Ben", "Cleo", "Anna"}
				for i, name := range want {
					if totals[i].Payer != name {
						t.Errorf("totals[%d].Payer = %q, want %q", i, totals[i].Payer, name)
					}
				}
			},
		},
		{
			name: "no items yields no totals",
			validateFunc: func(t *testing.T, totals []PayerTotal) {
				if len(totals) != 0 {
					t.Errorf("len(totals) = %d, want 0", len(totals))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := PayerTotals(tt.items, tt.flags, tt.excluded)
			tt.validateFunc(t, totals)
		})
	}
}

func TestNormalizePayer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Anna", "Anna"},
		{"  Anna  ", "Anna"},
		{"", UnknownPayer},
		{"   ", UnknownPayer},
	}
	for _, tt := range tests {
		if got := NormalizePayer(tt.in); got != tt.want {
			t.Errorf("NormalizePayer(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
