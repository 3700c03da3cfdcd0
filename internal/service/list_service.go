package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/mkrause/hauslist/internal/auth"
	"github.com/mkrause/hauslist/internal/models"
	"github.com/mkrause/hauslist/internal/storage"
)

var errEmptyListName = errors.New("list name must not be empty")

// ListService manages the shopping list lifecycle. Creating, renaming,
// archiving and deleting lists are admin-gated; reading is open to
// every member.
type ListService struct {
	client storage.Client
	logger *slog.Logger
}

// NewListService creates a list service over the given store client.
func NewListService(client storage.Client, logger *slog.Logger) *ListService {
	return &ListService{client: client, logger: logger}
}

// CreateList creates a new active shopping list managed by the actor.
func (s *ListService) CreateList(ctx context.Context, actor auth.Actor, name, notes string) (*models.ShoppingList, error) {
	if !auth.IsAuthorized(actor, auth.ActionManageLists) {
		return nil, permissionDenied()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidArgument(errEmptyListName)
	}

	row := storage.Row{
		"name":      name,
		"notes":     strings.TrimSpace(notes),
		"is_active": true,
	}
	if actor.ID != "" {
		row["managed_by_profile_id"] = actor.ID
	}

	rows, err := s.client.Insert(ctx, ResourceLists, []storage.Row{row})
	if err != nil {
		s.logger.Error("failed to create list", "name", name, "error", err)
		return nil, storeError(err)
	}

	list := decodeList(rows[0])
	s.logger.Info("list created", "list_id", list.ID, "name", list.Name)
	return &list, nil
}

// RenameList changes a list's name and notes.
func (s *ListService) RenameList(ctx context.Context, actor auth.Actor, listID, name, notes string) (*models.ShoppingList, error) {
	if !auth.IsAuthorized(actor, auth.ActionManageLists) {
		return nil, permissionDenied()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidArgument(errEmptyListName)
	}

	rows, err := s.client.Update(ctx, ResourceLists,
		storage.Row{"name": name, "notes": strings.TrimSpace(notes)},
		[]storage.Filter{storage.Eq("id", listID)})
	if err != nil {
		s.logger.Error("failed to rename list", "list_id", listID, "error", err)
		return nil, storeError(err)
	}
	if len(rows) == 0 {
		return nil, storeError(storage.ErrNotFound)
	}

	list := decodeList(rows[0])
	return &list, nil
}

// SetActive archives (active=false) or reactivates a list. Archiving
// freezes the list for item entry and makes it eligible for billing.
func (s *ListService) SetActive(ctx context.Context, actor auth.Actor, listID string, active bool) (*models.ShoppingList, error) {
	if !auth.IsAuthorized(actor, auth.ActionManageLists) {
		return nil, permissionDenied()
	}

	rows, err := s.client.Update(ctx, ResourceLists,
		storage.Row{"is_active": active},
		[]storage.Filter{storage.Eq("id", listID)})
	if err != nil {
		s.logger.Error("failed to update list state", "list_id", listID, "error", err)
		return nil, storeError(err)
	}
	if len(rows) == 0 {
		return nil, storeError(storage.ErrNotFound)
	}

	list := decodeList(rows[0])
	s.logger.Info("list state changed", "list_id", listID, "is_active", active)
	return &list, nil
}

// DeleteList removes a list and, via the store's cascading deletes, its
// items, orders and billing flags.
func (s *ListService) DeleteList(ctx context.Context, actor auth.Actor, listID string) error {
	if !auth.IsAuthorized(actor, auth.ActionManageLists) {
		return permissionDenied()
	}

	if err := s.client.Delete(ctx, ResourceLists, []storage.Filter{storage.Eq("id", listID)}); err != nil {
		s.logger.Error("failed to delete list", "list_id", listID, "error", err)
		return storeError(err)
	}
	s.logger.Info("list deleted", "list_id", listID)
	return nil
}

// GetList fetches a single list by ID.
func (s *ListService) GetList(ctx context.Context, listID string) (*models.ShoppingList, error) {
	rows, err := s.client.Select(ctx, ResourceLists, nil,
		[]storage.Filter{storage.Eq("id", listID)}, nil)
	if err != nil {
		return nil, storeError(err)
	}
	if len(rows) == 0 {
		return nil, storeError(storage.ErrNotFound)
	}
	list := decodeList(rows[0])
	return &list, nil
}

// Lists returns all lists, newest first.
func (s *ListService) Lists(ctx context.Context) ([]models.ShoppingList, error) {
	rows, err := s.client.Select(ctx, ResourceLists, nil, nil, storage.Desc("created_at"))
	if err != nil {
		return nil, storeError(err)
	}
	out := make([]models.ShoppingList, 0, len(rows))
	for _, r := range rows {
		out = append(out, decodeList(r))
	}
	return out, nil
}

// requireActiveList loads a list and fails with a precondition error
// when it is archived.
func requireActiveList(ctx context.Context, client storage.Client, listID string) (*models.ShoppingList, error) {
	rows, err := client.Select(ctx, ResourceLists, nil,
		[]storage.Filter{storage.Eq("id", listID)}, nil)
	if err != nil {
		return nil, storeError(err)
	}
	if len(rows) == 0 {
		return nil, storeError(storage.ErrNotFound)
	}
	list := decodeList(rows[0])
	if !list.IsActive {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errListInactive)
	}
	return &list, nil
}
