package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
)

func TestListLifecycle(t *testing.T) {
	client := newTestClient(t)
	svc := NewListService(client, testLogger())
	ctx := context.Background()

	list, err := svc.CreateList(ctx, adminActor, "  Wocheneinkauf ", "Samstag")
	if err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}
	if list.Name != "Wocheneinkauf" {
		t.Errorf("name = %q, want trimmed", list.Name)
	}
	if !list.IsActive {
		t.Error("new list should be active")
	}

	t.Run("rename", func(t *testing.T) {
		renamed, err := svc.RenameList(ctx, adminActor, list.ID, "Grillparty", "")
		if err != nil {
			t.Fatalf("RenameList failed: %v", err)
		}
		if renamed.Name != "Grillparty" {
			t.Errorf("name = %q, want Grillparty", renamed.Name)
		}
	})

	t.Run("archive and reactivate", func(t *testing.T) {
		archived, err := svc.SetActive(ctx, adminActor, list.ID, false)
		if err != nil {
			t.Fatalf("SetActive failed: %v", err)
		}
		if archived.IsActive {
			t.Error("list should be archived")
		}

		restored, err := svc.SetActive(ctx, adminActor, list.ID, true)
		if err != nil {
			t.Fatalf("SetActive failed: %v", err)
		}
		if !restored.IsActive {
			t.Error("list should be active again")
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := svc.DeleteList(ctx, adminActor, list.ID); err != nil {
			t.Fatalf("DeleteList failed: %v", err)
		}
		if _, err := svc.GetList(ctx, list.ID); connectCode(err) != connect.CodeNotFound {
			t.Errorf("err = %v, want CodeNotFound", err)
		}
	})
}

func TestListManagementIsAdminGated(t *testing.T) {
	client := newTestClient(t)
	svc := NewListService(client, testLogger())
	ctx := context.Background()

	if _, err := svc.CreateList(ctx, memberActor, "Einkauf", ""); connectCode(err) != connect.CodePermissionDenied {
		t.Errorf("CreateList err = %v, want CodePermissionDenied", err)
	}

	list, err := svc.CreateList(ctx, adminActor, "Einkauf", "")
	if err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}

	if _, err := svc.RenameList(ctx, memberActor, list.ID, "Neu", ""); connectCode(err) != connect.CodePermissionDenied {
		t.Errorf("RenameList err = %v, want CodePermissionDenied", err)
	}
	if _, err := svc.SetActive(ctx, memberActor, list.ID, false); connectCode(err) != connect.CodePermissionDenied {
		t.Errorf("SetActive err = %v, want CodePermissionDenied", err)
	}
	if err := svc.DeleteList(ctx, memberActor, list.ID); connectCode(err) != connect.CodePermissionDenied {
		t.Errorf("DeleteList err = %v, want CodePermissionDenied", err)
	}

	// Reading stays open to members.
	if _, err := svc.GetList(ctx, list.ID); err != nil {
		t.Errorf("GetList failed: %v", err)
	}
	if _, err := svc.Lists(ctx); err != nil {
		t.Errorf("Lists failed: %v", err)
	}
}

func TestCreateListValidation(t *testing.T) {
	client := newTestClient(t)
	svc := NewListService(client, testLogger())

	if _, err := svc.CreateList(context.Background(), adminActor, "   ", ""); connectCode(err) != connect.CodeInvalidArgument {
		t.Errorf("err = %v, want CodeInvalidArgument", err)
	}
}
