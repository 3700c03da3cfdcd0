package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mkrause/hauslist/internal/auth"
	"github.com/mkrause/hauslist/internal/models"
	"github.com/mkrause/hauslist/internal/storage"
)

const (
	minQuantity = 1
	maxQuantity = 9999
)

var (
	errEmptyOrderer   = errors.New("orderer name must not be empty")
	errEmptyBatch     = errors.New("batch must contain at least one product")
	errUnknownProduct = errors.New("unknown product in batch")
)

// Selection is one line of a batch: a product and how many of it.
type Selection struct {
	ProductID string
	Quantity  int
	Note      string
}

// OrderService implements the batch-add flow: one action creates a
// fresh order (the purchasing event carrying the orderer name used as
// the billing key) plus one list item per selected product. Two batches
// by the same orderer stay two orders; they are never merged.
type OrderService struct {
	client storage.Client
	logger *slog.Logger
}

// NewOrderService creates an order service over the given store client.
func NewOrderService(client storage.Client, logger *slog.Logger) *OrderService {
	return &OrderService{client: client, logger: logger}
}

// AddBatch validates and persists one batch. The list must be active;
// quantities outside 1..9999 are clamped, not rejected, matching the
// entry form's spinner. Returns the created order and its items.
func (s *OrderService) AddBatch(ctx context.Context, actor auth.Actor, listID, orderedBy string, selections []Selection) (*models.Order, []models.ListItem, error) {
	orderedBy = strings.TrimSpace(orderedBy)
	if orderedBy == "" {
		return nil, nil, invalidArgument(errEmptyOrderer)
	}
	if len(selections) == 0 {
		return nil, nil, invalidArgument(errEmptyBatch)
	}

	if _, err := requireActiveList(ctx, s.client, listID); err != nil {
		return nil, nil, err
	}

	if err := s.checkProducts(ctx, selections); err != nil {
		return nil, nil, err
	}

	orderRow := storage.Row{
		"list_id":         listID,
		"ordered_by_name": orderedBy,
		"status":          string(models.OrderOpen),
	}
	if actor.ID != "" {
		orderRow["created_by_profile_id"] = actor.ID
	}

	orderRows, err := s.client.Insert(ctx, ResourceOrders, []storage.Row{orderRow})
	if err != nil {
		s.logger.Error("failed to create order", "list_id", listID, "error", err)
		return nil, nil, storeError(err)
	}
	order := decodeOrder(orderRows[0])

	itemRows := make([]storage.Row, 0, len(selections))
	for _, sel := range selections {
		itemRows = append(itemRows, storage.Row{
			"list_id":    listID,
			"product_id": sel.ProductID,
			"order_id":   order.ID,
			"quantity":   clampQuantity(sel.Quantity),
			"note":       strings.TrimSpace(sel.Note),
			"is_bought":  false,
		})
	}

	inserted, err := s.client.Insert(ctx, ResourceListItems, itemRows)
	if err != nil {
		s.logger.Error("failed to insert batch items", "order_id", order.ID, "error", err)
		return nil, nil, storeError(err)
	}

	items := make([]models.ListItem, 0, len(inserted))
	for _, r := range inserted {
		items = append(items, decodeListItem(r))
	}

	s.logger.Info("batch added",
		"list_id", listID,
		"order_id", order.ID,
		"ordered_by", orderedBy,
		"items", len(items),
	)
	return &order, items, nil
}

// SetBought toggles the bought flag of one list item.
func (s *OrderService) SetBought(ctx context.Context, itemID string, bought bool) (*models.ListItem, error) {
	rows, err := s.client.Update(ctx, ResourceListItems,
		storage.Row{"is_bought": bought},
		[]storage.Filter{storage.Eq("id", itemID)})
	if err != nil {
		s.logger.Error("failed to toggle bought", "item_id", itemID, "error", err)
		return nil, storeError(err)
	}
	if len(rows) == 0 {
		return nil, storeError(storage.ErrNotFound)
	}
	item := decodeListItem(rows[0])
	return &item, nil
}

// UpdateItem edits a list item's quantity and note.
func (s *OrderService) UpdateItem(ctx context.Context, itemID string, quantity int, note string) (*models.ListItem, error) {
	rows, err := s.client.Update(ctx, ResourceListItems,
		storage.Row{"quantity": clampQuantity(quantity), "note": strings.TrimSpace(note)},
		[]storage.Filter{storage.Eq("id", itemID)})
	if err != nil {
		s.logger.Error("failed to update item", "item_id", itemID, "error", err)
		return nil, storeError(err)
	}
	if len(rows) == 0 {
		return nil, storeError(storage.ErrNotFound)
	}
	item := decodeListItem(rows[0])
	return &item, nil
}

// RemoveItem deletes one list item.
func (s *OrderService) RemoveItem(ctx context.Context, itemID string) error {
	if err := s.client.Delete(ctx, ResourceListItems, []storage.Filter{storage.Eq("id", itemID)}); err != nil {
		s.logger.Error("failed to remove item", "item_id", itemID, "error", err)
		return storeError(err)
	}
	return nil
}

// ItemRows loads the denormalized item rows of one list from the
// composite view, oldest first.
func (s *OrderService) ItemRows(ctx context.Context, listID string) ([]models.ItemRow, error) {
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

// Orders returns the orders of one list, newest first.
func (s *OrderService) Orders(ctx context.Context, listID string) ([]models.Order, error) {
	rows, err := s.client.Select(ctx, ResourceOrders, nil,
		[]storage.Filter{storage.Eq("list_id", listID)}, storage.Desc("created_at"))
	if err != nil {
		return nil, storeError(err)
	}
	out := make([]models.Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, decodeOrder(r))
	}
	return out, nil
}

// checkProducts verifies every selected product exists and is active.
func (s *OrderService) checkProducts(ctx context.Context, selections []Selection) error {
	ids := make([]any, 0, len(selections))
	for _, sel := range selections {
		if sel.ProductID == "" {
			return invalidArgument(errUnknownProduct)
		}
		ids = append(ids, sel.ProductID)
	}

	rows, err := s.client.Select(ctx, ResourceProducts, []string{"id", "is_active"},
		[]storage.Filter{storage.In("id", ids...)}, nil)
	if err != nil {
		return storeError(err)
	}

	active := make(map[string]bool, len(rows))
	for _, r := range rows {
		active[r.String("id")] = r.Bool("is_active")
	}
	for _, sel := range selections {
		ok, known := active[sel.ProductID]
		if !known {
			return invalidArgument(fmt.Errorf("%w: %s", errUnknownProduct, sel.ProductID))
		}
		if !ok {
			return invalidArgument(fmt.Errorf("product %s is no longer offered", sel.ProductID))
		}
	}
	return nil
}

func clampQuantity(q int) int {
	if q < minQuantity {
		return minQuantity
	}
	if q > maxQuantity {
		return maxQuantity
	}
	return q
}
