package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mkrause/hauslist/internal/models"
	"github.com/mkrause/hauslist/internal/storage"
	"github.com/mkrause/hauslist/internal/views"
)

var errNothingToConvert = errors.New("payer has no outstanding total on this list")

// BillingService settles archived lists: it aggregates per-payer
// totals, tracks who has paid via per-(list, payer) flags, and converts
// outstanding shares into standalone debt ledger entries.
type BillingService struct {
	client   storage.Client
	logger   *slog.Logger
	excluded []string
}

// NewBillingService creates a billing service. excludedCategories names
// product categories that are household-shared and never billed to an
// individual payer.
func NewBillingService(client storage.Client, logger *slog.Logger, excludedCategories []string) *BillingService {
	return &BillingService{client: client, logger: logger, excluded: excludedCategories}
}

// PayerTotals aggregates one list's items into per-payer billing rows,
// merged case-insensitively and annotated with the paid flags.
func (s *BillingService) PayerTotals(ctx context.Context, listID string) ([]views.PayerTotal, error) {
	items, err := s.itemRows(ctx, listID)
	if err != nil {
		return nil, err
	}
	flags, err := s.Flags(ctx, listID)
	if err != nil {
		return nil, err
	}
	return views.PayerTotals(items, flags, s.excluded), nil
}

// Summary folds a list's payer totals into the billing header line.
func (s *BillingService) Summary(ctx context.Context, listID string) (views.ListSummary, error) {
	totals, err := s.PayerTotals(ctx, listID)
	if err != nil {
		return views.ListSummary{}, err
	}
	return views.Summarize(totals), nil
}

// Flags returns the billing flags of one list.
func (s *BillingService) Flags(ctx context.Context, listID string) ([]models.BillingFlag, error) {
	rows, err := s.client.Select(ctx, ResourceBillingFlags, nil,
		[]storage.Filter{storage.Eq("list_id", listID)}, nil)
	if err != nil {
		return nil, storeError(err)
	}
	out := make([]models.BillingFlag, 0, len(rows))
	for _, r := range rows {
		out = append(out, decodeBillingFlag(r))
	}
	return out, nil
}

// SetPaid records whether a payer has settled their share. The write is
// an upsert keyed on (list, payer): concurrent toggles for the same
// payer converge on one flag row instead of stacking duplicates.
func (s *BillingService) SetPaid(ctx context.Context, listID, payerName string, paid bool) (*models.BillingFlag, error) {
	payerName = views.NormalizePayer(payerName)

	row, err := s.client.Upsert(ctx, ResourceBillingFlags, storage.Row{
		"list_id":    listID,
		"payer_name": payerName,
		"is_paid":    paid,
	}, []string{"list_id", "payer_name"})
	if err != nil {
		s.logger.Error("failed to set paid flag", "list_id", listID, "payer", payerName, "error", err)
		return nil, storeError(err)
	}

	flag := decodeBillingFlag(row)
	s.logger.Info("paid flag set", "list_id", listID, "payer", payerName, "is_paid", paid)
	return &flag, nil
}

// ConvertToDebt turns a payer's outstanding total on a list into a debt
// ledger entry and marks the payer paid on the list. The debt keeps its
// (list, payer) origin so it stays traceable after the list is deleted.
func (s *BillingService) ConvertToDebt(ctx context.Context, listID, payerName string) (*models.Debt, error) {
	payerName = views.NormalizePayer(payerName)

	totals, err := s.PayerTotals(ctx, listID)
	if err != nil {
		return nil, err
	}

	var amount float64
	found := false
	for _, pt := range totals {
		if strings.EqualFold(pt.Payer, payerName) && !pt.IsPaid {
			amount = pt.Total
			found = true
			break
		}
	}
	if !found || amount <= 0 {
		return nil, invalidArgument(errNothingToConvert)
	}

	rows, err := s.client.Insert(ctx, ResourceDebts, []storage.Row{{
		"name":       payerName,
		"amount":     amount,
		"list_id":    listID,
		"payer_name": payerName,
	}})
	if err != nil {
		s.logger.Error("failed to create debt", "list_id", listID, "payer", payerName, "error", err)
		return nil, storeError(err)
	}

	if _, err := s.SetPaid(ctx, listID, payerName, true); err != nil {
		return nil, err
	}

	debt := decodeDebt(rows[0])
	s.logger.Info("debt created", "debt_id", debt.ID, "payer", payerName, "amount", amount)
	return &debt, nil
}

// Debts returns all open debt ledger entries, newest first.
func (s *BillingService) Debts(ctx context.Context) ([]models.Debt, error) {
	rows, err := s.client.Select(ctx, ResourceDebts, nil, nil, storage.Desc("created_at"))
	if err != nil {
		return nil, storeError(err)
	}
	out := make([]models.Debt, 0, len(rows))
	for _, r := range rows {
		out = append(out, decodeDebt(r))
	}
	return out, nil
}

// SettleDebt removes a debt ledger entry once it has been paid back.
func (s *BillingService) SettleDebt(ctx context.Context, debtID string) error {
	if err := s.client.Delete(ctx, ResourceDebts, []storage.Filter{storage.Eq("id", debtID)}); err != nil {
		s.logger.Error("failed to settle debt", "debt_id", debtID, "error", err)
		return storeError(err)
	}
	s.logger.Info("debt settled", "debt_id", debtID)
	return nil
}

func (s *BillingService) itemRows(ctx context.Context, listID string) ([]models.ItemRow, error) {
	rows, err := s.client.Select(ctx, ResourceItemView, nil,
		[]storage.Filter{storage.Eq("list_id", listID)}, storage.Asc("added_at"))
	if err != nil {
		return nil, storeError(err)
	}
	out := make([]models.ItemRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, decodeItemRow(r))
	}
	return out, nil
}
