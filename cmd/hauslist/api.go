package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mkrause/hauslist/internal/auth"
	"github.com/mkrause/hauslist/internal/service"
)

// api bundles the JSON endpoints of the daemon. Mutations performed
// here reach every connected sync session through the store's change
// feed; the handlers never push state themselves.
type api struct {
	accounts *service.AccountService
	lists    *service.ListService
	catalog  *service.CatalogService
	orders   *service.OrderService
	billing  *service.BillingService
	logger   *slog.Logger
}

func (a *api) routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/register", a.handleRegister)
	mux.HandleFunc("POST /api/login", a.handleLogin)

	mux.HandleFunc("GET /api/profile", a.handleProfile)

	mux.HandleFunc("GET /api/lists", a.handleLists)
	mux.HandleFunc("POST /api/lists", a.handleCreateList)
	mux.HandleFunc("PATCH /api/lists/{id}", a.handleRenameList)
	mux.HandleFunc("POST /api/lists/{id}/active", a.handleSetListActive)
	mux.HandleFunc("DELETE /api/lists/{id}", a.handleDeleteList)

	mux.HandleFunc("GET /api/lists/{id}/items", a.handleListItems)
	mux.HandleFunc("GET /api/lists/{id}/orders", a.handleOrders)
	mux.HandleFunc("POST /api/lists/{id}/batch", a.handleAddBatch)
	mux.HandleFunc("PATCH /api/items/{id}", a.handleUpdateItem)
	mux.HandleFunc("POST /api/items/{id}/bought", a.handleSetBought)
	mux.HandleFunc("DELETE /api/items/{id}", a.handleRemoveItem)

	mux.HandleFunc("GET /api/products", a.handleProducts)
	mux.HandleFunc("POST /api/products", a.handleCreateProduct)
	mux.HandleFunc("PATCH /api/products/{id}", a.handleUpdateProduct)
	mux.HandleFunc("POST /api/products/{id}/active", a.handleSetProductActive)
	mux.HandleFunc("DELETE /api/products/{id}", a.handleDeleteProduct)
	mux.HandleFunc("GET /api/categories", a.handleCategories)
	mux.HandleFunc("POST /api/categories", a.handleCreateCategory)

	mux.HandleFunc("GET /api/lists/{id}/billing", a.handleBilling)
	mux.HandleFunc("GET /api/lists/{id}/billing/flags", a.handleBillingFlags)
	mux.HandleFunc("POST /api/lists/{id}/billing/paid", a.handleSetPaid)
	mux.HandleFunc("POST /api/lists/{id}/billing/debt", a.handleConvertToDebt)
	mux.HandleFunc("GET /api/debts", a.handleDebts)
	mux.HandleFunc("DELETE /api/debts/{id}", a.handleSettleDebt)
}

// actor resolves the Bearer token of a request. Unauthenticated
// requests act as an anonymous member: reads and everyday item
// operations work, admin-gated operations fail downstream.
func (a *api) actor(r *http.Request) (auth.Actor, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.Actor{}, nil
	}
	token := strings.TrimPrefix(header, "Bearer ")
	return a.accounts.Authenticate(token)
}

func (a *api) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		Password    string `json:"password"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	profile, token, err := a.accounts.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, map[string]any{"profile": profile, "token": token})
}

func (a *api) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	profile, token, err := a.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"profile": profile, "token": token})
}

func (a *api) handleProfile(w http.ResponseWriter, r *http.Request) {
	actor, err := a.actor(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if actor.ID == "" {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	profile, err := a.accounts.Profile(r.Context(), actor.ID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, profile)
}

func (a *api) handleLists(w http.ResponseWriter, r *http.Request) {
	lists, err := a.lists.Lists(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, lists)
}

func (a *api) handleCreateList(w http.ResponseWriter, r *http.Request) {
	actor, err := a.actor(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	var req struct {
		Name  string `json:"name"`
		Notes string `json:"notes"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	list, err := a.lists.CreateList(r.Context(), actor, req.Name, req.Notes)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, list)
}

func (a *api) handleRenameList(w http.ResponseWriter, r *http.Request) {
	actor, err := a.actor(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	var req struct {
		Name  string `json:"name"`
		Notes string `json:"notes"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	list, err := a.lists.RenameList(r.Context(), actor, r.PathValue("id"), req.Name, req.Notes)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, list)
}

func (a *api) handleSetListActive(w http.ResponseWriter, r *http.Request) {
	actor, err := a.actor(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	list, err := a.lists.SetActive(r.Context(), actor, r.PathValue("id"), req.Active)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, list)
}

func (a *api) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	actor, err := a.actor(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.lists.DeleteList(r.Context(), actor, r.PathValue("id")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleListItems(w http.ResponseWriter, r *http.Request) {
	rows, err := a.orders.ItemRows(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, rows)
}

func (a *api) handleAddBatch(w http.ResponseWriter, r *http.Request) {
	actor, err := a.actor(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	var req struct {
		OrderedBy  string              `json:"ordered_by"`
		Selections []service.Selection `json:"selections"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	order, items, err := a.orders.AddBatch(r.Context(), actor, r.PathValue("id"), req.OrderedBy, req.Selections)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, map[string]any{"order": order, "items": items})
}

func (a *api) handleOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := a.orders.Orders(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, orders)
}

func (a *api) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int    `json:"quantity"`
		Note     string `json:"note"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	item, err := a.orders.UpdateItem(r.Context(), r.PathValue("id"), req.Quantity, req.Note)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, item)
}

func (a *api) handleSetBought(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Bought bool `json:"bought"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	item, err := a.orders.SetBought(r.Context(), r.PathValue("id"), req.Bought)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, item)
}

func (a *api) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := a.orders.RemoveItem(r.Context(), r.PathValue("id")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleProducts(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") == ""
	products, err := a.catalog.Products(r.Context(), activeOnly)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, products)
}

func (a *api) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := a.actor(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	var req service.ProductInput
	if !a.decode(w, r, &req) {
		return
	}
	product, err := a.catalog.CreateProduct(r.Context(), actor, req)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, product)
}

func (a *api) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := a.actor(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	var req service.ProductInput
	if !a.decode(w, r, &req) {
		return
	}
	product, err := a.catalog.UpdateProduct(r.Context(), actor, r.PathValue("id"), req)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, product)
}

func (a *api) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := a.actor(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.catalog.DeleteProduct(r.Context(), actor, r.PathValue("id")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleSetProductActive(w http.ResponseWriter, r *http.Request) {
	actor, err := a.actor(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	product, err := a.catalog.SetProductActive(r.Context(), actor, r.PathValue("id"), req.Active)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, product)
}

func (a *api) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.catalog.Categories(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, categories)
}

func (a *api) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	actor, err := a.actor(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	category, err := a.catalog.CreateCategory(r.Context(), actor, req.Name)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, category)
}

func (a *api) handleBilling(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("id")
	totals, err := a.billing.PayerTotals(r.Context(), listID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	summary, err := a.billing.Summary(r.Context(), listID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"totals": totals, "summary": summary})
}

func (a *api) handleBillingFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := a.billing.Flags(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, flags)
}

func (a *api) handleSetPaid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Payer string `json:"payer"`
		Paid  bool   `json:"paid"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	flag, err := a.billing.SetPaid(r.Context(), r.PathValue("id"), req.Payer, req.Paid)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, flag)
}

func (a *api) handleConvertToDebt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Payer string `json:"payer"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	debt, err := a.billing.ConvertToDebt(r.Context(), r.PathValue("id"), req.Payer)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, debt)
}

func (a *api) handleDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := a.billing.Debts(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, debts)
}

func (a *api) handleSettleDebt(w http.ResponseWriter, r *http.Request) {
	if err := a.billing.SettleDebt(r.Context(), r.PathValue("id")); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (a *api) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps the service error taxonomy onto HTTP statuses.
func (a *api) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		switch cerr.Code() {
		case connect.CodeInvalidArgument:
			status = http.StatusBadRequest
		case connect.CodeNotFound:
			status = http.StatusNotFound
		case connect.CodeAlreadyExists:
			status = http.StatusConflict
		case connect.CodePermissionDenied:
			status = http.StatusForbidden
		case connect.CodeUnauthenticated:
			status = http.StatusUnauthorized
		case connect.CodeFailedPrecondition:
			status = http.StatusConflict
		case connect.CodeUnavailable:
			status = http.StatusServiceUnavailable
		}
	}
	http.Error(w, err.Error(), status)
}
