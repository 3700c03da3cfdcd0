package service

import (
	"github.com/mkrause/hauslist/internal/models"
	"github.com/mkrause/hauslist/internal/realtime"
	"github.com/mkrause/hauslist/internal/storage"
)

// Resource names served by the store.
const (
	ResourceProfiles     = "profiles"
	ResourceCategories   = "categories"
	ResourceProducts     = "products"
	ResourceLists        = "shopping_lists"
	ResourceOrders       = "orders"
	ResourceListItems    = "list_items"
	ResourceBillingFlags = "billing_flags"
	ResourceDebts        = "debts"
	ResourceItemView     = "v_list_items_with_order"
)

// Descriptors shared by the services and the live bindings. Decoding
// goes through the coercing Row getters so values served as text (CSV
// imports, loosely typed backends) come out typed.

var ListDescriptor = realtime.Descriptor[models.ShoppingList]{
	Resource: ResourceLists,
	Decode:   decodeList,
	Key:      func(l models.ShoppingList) string { return l.ID },
}

var ProductDescriptor = realtime.Descriptor[models.Product]{
	Resource: ResourceProducts,
	Decode:   decodeProduct,
	Key:      func(p models.Product) string { return p.ID },
}

var CategoryDescriptor = realtime.Descriptor[models.Category]{
	Resource: ResourceCategories,
	Decode:   decodeCategory,
	Key:      func(c models.Category) string { return c.ID },
}

var ItemRowDescriptor = realtime.Descriptor[models.ItemRow]{
	Resource: ResourceItemView,
	Decode:   decodeItemRow,
	Key:      func(r models.ItemRow) string { return r.ListItemID },
}

var BillingFlagDescriptor = realtime.Descriptor[models.BillingFlag]{
	Resource: ResourceBillingFlags,
	Decode:   decodeBillingFlag,
	Key:      func(f models.BillingFlag) string { return f.ID },
}

var DebtDescriptor = realtime.Descriptor[models.Debt]{
	Resource: ResourceDebts,
	Decode:   decodeDebt,
	Key:      func(d models.Debt) string { return d.ID },
}

// ItemViewWatches names the base-table feeds that keep a view-backed
// item binding fresh: the view itself cannot be subscribed to, so the
// binding watches the tables it joins.
func ItemViewWatches(listID string) []realtime.WatchSpec {
	return []realtime.WatchSpec{
		{Resource: ResourceListItems, Filters: []storage.Filter{storage.Eq("list_id", listID)}},
		{Resource: ResourceOrders, Filters: []storage.Filter{storage.Eq("list_id", listID)}},
	}
}

func decodeList(r storage.Row) models.ShoppingList {
	return models.ShoppingList{
		ID:        r.String("id"),
		Name:      r.String("name"),
		Notes:     r.String("notes"),
		IsActive:  r.Bool("is_active"),
		ManagedBy: r.String("managed_by_profile_id"),
		CreatedAt: r.Int64("created_at"),
	}
}

func decodeProduct(r storage.Row) models.Product {
	return models.Product{
		ID:         r.String("id"),
		Name:       r.String("name"),
		Unit:       r.String("unit"),
		Price:      r.Float("price"),
		Currency:   r.String("currency_code"),
		CategoryID: r.String("category_id"),
		IsActive:   r.Bool("is_active"),
		CreatedAt:  r.Int64("created_at"),
	}
}

func decodeCategory(r storage.Row) models.Category {
	return models.Category{
		ID:   r.String("id"),
		Name: r.String("name"),
	}
}

func decodeOrder(r storage.Row) models.Order {
	return models.Order{
		ID:            r.String("id"),
		ListID:        r.String("list_id"),
		CreatedBy:     r.String("created_by_profile_id"),
		OrderedByName: r.String("ordered_by_name"),
		Status:        models.OrderStatus(r.String("status")),
		TotalAmount:   r.Float("total_amount"),
		Currency:      r.String("currency_code"),
		PurchasedAt:   r.Int64("purchased_at"),
		CreatedAt:     r.Int64("created_at"),
	}
}

func decodeListItem(r storage.Row) models.ListItem {
	return models.ListItem{
		ID:        r.String("id"),
		ListID:    r.String("list_id"),
		ProductID: r.String("product_id"),
		OrderID:   r.String("order_id"),
		Quantity:  r.Int("quantity"),
		Note:      r.String("note"),
		AddedAt:   r.Int64("added_at"),
		IsBought:  r.Bool("is_bought"),
	}
}

func decodeItemRow(r storage.Row) models.ItemRow {
	return models.ItemRow{
		ListItemID:  r.String("list_item_id"),
		ListID:      r.String("list_id"),
		ProductID:   r.String("product_id"),
		Quantity:    r.Int("quantity"),
		Note:        r.String("note"),
		AddedAt:     r.Int64("added_at"),
		IsBought:    r.Bool("is_bought"),
		ProductName: r.String("product_name"),
		Unit:        r.String("unit"),
		Category:    r.String("category_name"),
		Price:       r.Float("price"),
		Currency:    r.String("currency_code"),
		OrderedBy:   r.String("ordered_by_name"),
	}
}

func decodeBillingFlag(r storage.Row) models.BillingFlag {
	return models.BillingFlag{
		ID:        r.String("id"),
		ListID:    r.String("list_id"),
		PayerName: r.String("payer_name"),
		IsPaid:    r.Bool("is_paid"),
		UpdatedAt: r.Int64("updated_at"),
	}
}

func decodeDebt(r storage.Row) models.Debt {
	return models.Debt{
		ID:        r.String("id"),
		Name:      r.String("name"),
		Amount:    r.Float("amount"),
		ListID:    r.String("list_id"),
		PayerName: r.String("payer_name"),
		CreatedAt: r.Int64("created_at"),
	}
}

func decodeProfile(r storage.Row) models.Profile {
	return models.Profile{
		ID:           r.String("id"),
		DisplayName:  r.String("display_name"),
		Email:        r.String("email"),
		PasswordHash: r.String("password_hash"),
		Role:         models.Role(r.String("role")),
		CreatedAt:    r.Int64("created_at"),
	}
}
