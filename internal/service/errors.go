package service

import (
	"errors"

	"connectrpc.com/connect"
	"github.com/mkrause/hauslist/internal/storage"
)

var (
	errNotAuthorized = errors.New("action requires admin role")
	errListInactive  = errors.New("list is archived")
)

// storeError maps a storage failure onto the service error taxonomy:
// missing rows are the caller's problem, everything else means the
// store is unreachable or misbehaving.
func storeError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	return connect.NewError(connect.CodeUnavailable, err)
}

func invalidArgument(err error) error {
	return connect.NewError(connect.CodeInvalidArgument, err)
}

func permissionDenied() error {
	return connect.NewError(connect.CodePermissionDenied, errNotAuthorized)
}
