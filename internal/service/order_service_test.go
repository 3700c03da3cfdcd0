package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/mkrause/hauslist/internal/auth"
	"github.com/mkrause/hauslist/internal/models"
	"github.com/mkrause/hauslist/internal/storage"
	"github.com/mkrause/hauslist/internal/storage/sqlite"
)

func newTestClient(t *testing.T) storage.Client {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "hauslist-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

var (
	adminActor  = auth.Actor{ID: "", Name: "Admin", Role: models.RoleAdmin}
	memberActor = auth.Actor{ID: "", Name: "Member", Role: models.RoleUser}
)

// fixture creates an active list and two products, returning their IDs.
func fixture(t *testing.T, client storage.Client) (listID, colaID, milkID string) {
	t.Helper()
	ctx := context.Background()

	lists, err := client.Insert(ctx, ResourceLists, []storage.Row{{"name": "Einkauf"}})
	if err != nil {
		t.Fatalf("failed to seed list: %v", err)
	}
	products, err := client.Insert(ctx, ResourceProducts, []storage.Row{
		{"name": "Cola", "price": 1.5},
		{"name": "Milch", "price": 1.2},
	})
	if err != nil {
		t.Fatalf("failed to seed products: %v", err)
	}
	return lists[0].String("id"), products[0].String("id"), products[1].String("id")
}

func connectCode(err error) connect.Code {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return cerr.Code()
	}
	return 0
}

func TestAddBatch(t *testing.T) {
	client := newTestClient(t)
	svc := NewOrderService(client, testLogger())
	ctx := context.Background()
	listID, colaID, milkID := fixture(t, client)

	tests := []struct {
		name       string
		listID     string
		orderedBy  string
		selections []Selection
		wantCode   connect.Code
		validate   func(t *testing.T, order *models.Order, items []models.ListItem)
	}{
		{
			name:      "valid batch creates order and items",
			listID:    listID,
			orderedBy: "Anna",
			selections: []Selection{
				{ProductID: colaID, Quantity: 2},
				{ProductID: milkID, Quantity: 1, Note: "fettarm"},
			},
			validate: func(t *testing.T, order *models.Order, items []models.ListItem) {
				if order.OrderedByName != "Anna" {
					t.Errorf("ordered_by = %q, want Anna", order.OrderedByName)
				}
				if order.Status != models.OrderOpen {
					t.Errorf("status = %q, want open", order.Status)
				}
				if len(items) != 2 {
					t.Fatalf("len(items) = %d, want 2", len(items))
				}
				for _, it := range items {
					if it.OrderID != order.ID {
						t.Errorf("item %s not linked to order", it.ID)
					}
				}
				if items[1].Note != "fettarm" {
					t.Errorf("note = %q, want fettarm", items[1].Note)
				}
			},
		},
		{
			name:       "orderer name is trimmed",
			listID:     listID,
			orderedBy:  "  Ben  ",
			selections: []Selection{{ProductID: colaID, Quantity: 1}},
			validate: func(t *testing.T, order *models.Order, items []models.ListItem) {
				if order.OrderedByName != "Ben" {
					t.Errorf("ordered_by = %q, want trimmed Ben", order.OrderedByName)
				}
			},
		},
		{
			name:       "quantities clamp to 1..9999",
			listID:     listID,
			orderedBy:  "Anna",
			selections: []Selection{{ProductID: colaID, Quantity: 0}, {ProductID: milkID, Quantity: 100000}},
			validate: func(t *testing.T, order *models.Order, items []models.ListItem) {
				if items[0].Quantity != 1 {
					t.Errorf("quantity = %d, want clamped 1", items[0].Quantity)
				}
				if items[1].Quantity != 9999 {
					t.Errorf("quantity = %d, want clamped 9999", items[1].Quantity)
				}
			},
		},
		{
			name:       "blank orderer rejected",
			listID:     listID,
			orderedBy:  "   ",
			selections: []Selection{{ProductID: colaID, Quantity: 1}},
			wantCode:   connect.CodeInvalidArgument,
		},
		{
			name:      "empty selection rejected",
			listID:    listID,
			orderedBy: "Anna",
			wantCode:  connect.CodeInvalidArgument,
		},
		{
			name:       "unknown product rejected",
			listID:     listID,
			orderedBy:  "Anna",
			selections: []Selection{{ProductID: "no-such-product", Quantity: 1}},
			wantCode:   connect.CodeInvalidArgument,
		},
		{
			name:       "unknown list rejected",
			listID:     "no-such-list",
			orderedBy:  "Anna",
			selections: []Selection{{ProductID: colaID, Quantity: 1}},
			wantCode:   connect.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, items, err := svc.AddBatch(ctx, memberActor, tt.listID, tt.orderedBy, tt.selections)
			if tt.wantCode != 0 {
				if connectCode(err) != tt.wantCode {
					t.Fatalf("err = %v, want code %v", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("AddBatch failed: %v", err)
			}
			tt.validate(t, order, items)
		})
	}
}

func TestAddBatchArchivedListRejected(t *testing.T) {
	client := newTestClient(t)
	svc := NewOrderService(client, testLogger())
	ctx := context.Background()
	listID, colaID, _ := fixture(t, client)

	if _, err := client.Update(ctx, ResourceLists,
		storage.Row{"is_active": false},
		[]storage.Filter{storage.Eq("id", listID)}); err != nil {
		t.Fatalf("failed to archive list: %v", err)
	}

	_, _, err := svc.AddBatch(ctx, memberActor, listID, "Anna", []Selection{{ProductID: colaID, Quantity: 1}})
	if connectCode(err) != connect.CodeFailedPrecondition {
		t.Errorf("err = %v, want CodeFailedPrecondition", err)
	}
}

func TestAddBatchInactiveProductRejected(t *testing.T) {
	client := newTestClient(t)
	svc := NewOrderService(client, testLogger())
	ctx := context.Background()
	listID, colaID, _ := fixture(t, client)

	if _, err := client.Update(ctx, ResourceProducts,
		storage.Row{"is_active": false},
		[]storage.Filter{storage.Eq("id", colaID)}); err != nil {
		t.Fatalf("failed to deactivate product: %v", err)
	}

	_, _, err := svc.AddBatch(ctx, memberActor, listID, "Anna", []Selection{{ProductID: colaID, Quantity: 1}})
	if connectCode(err) != connect.CodeInvalidArgument {
		t.Errorf("err = %v, want CodeInvalidArgument", err)
	}
}

func TestTwoBatchesStayTwoOrders(t *testing.T) {
	client := newTestClient(t)
	svc := NewOrderService(client, testLogger())
	ctx := context.Background()
	listID, colaID, _ := fixture(t, client)

	first, _, err := svc.AddBatch(ctx, memberActor, listID, "Anna", []Selection{{ProductID: colaID, Quantity: 1}})
	if err != nil {
		t.Fatalf("first batch failed: %v", err)
	}
	second, _, err := svc.AddBatch(ctx, memberActor, listID, "Anna", []Selection{{ProductID: colaID, Quantity: 1}})
	if err != nil {
		t.Fatalf("second batch failed: %v", err)
	}

	if first.ID == second.ID {
		t.Error("same orderer twice must yield two distinct orders")
	}
	orders, err := svc.Orders(ctx, listID)
	if err != nil {
		t.Fatalf("Orders failed: %v", err)
	}
	if len(orders) != 2 {
		t.Errorf("len(orders) = %d, want 2", len(orders))
	}
}

func TestItemLifecycle(t *testing.T) {
	client := newTestClient(t)
	svc := NewOrderService(client, testLogger())
	ctx := context.Background()
	listID, colaID, _ := fixture(t, client)

	_, items, err := svc.AddBatch(ctx, memberActor, listID, "Anna", []Selection{{ProductID: colaID, Quantity: 3}})
	if err != nil {
		t.Fatalf("AddBatch failed: %v", err)
	}
	itemID := items[0].ID

	t.Run("toggle bought", func(t *testing.T) {
		item, err := svc.SetBought(ctx, itemID, true)
		if err != nil {
			t.Fatalf("SetBought failed: %v", err)
		}
		if !item.IsBought {
			t.Error("item should be bought")
		}
	})

	t.Run("edit quantity and note", func(t *testing.T) {
		item, err := svc.UpdateItem(ctx, itemID, 5, " kalt stellen ")
		if err != nil {
			t.Fatalf("UpdateItem failed: %v", err)
		}
		if item.Quantity != 5 || item.Note != "kalt stellen" {
			t.Errorf("got quantity=%d note=%q", item.Quantity, item.Note)
		}
	})

	t.Run("view row carries product and orderer", func(t *testing.T) {
		rows, err := svc.ItemRows(ctx, listID)
		if err != nil {
			t.Fatalf("ItemRows failed: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("len(rows) = %d, want 1", len(rows))
		}
		if rows[0].ProductName != "Cola" || rows[0].OrderedBy != "Anna" {
			t.Errorf("row = %+v, want Cola ordered by Anna", rows[0])
		}
	})

	t.Run("remove item", func(t *testing.T) {
		if err := svc.RemoveItem(ctx, itemID); err != nil {
			t.Fatalf("RemoveItem failed: %v", err)
		}
		rows, err := svc.ItemRows(ctx, listID)
		if err != nil {
			t.Fatalf("ItemRows failed: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("len(rows) = %d, want 0", len(rows))
		}
	})
}
