package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/AITS-2025/issue-tracking-service/internal/models"
)

func newTestNotificationService(t *testing.T) (NotificationService, *fakeRepo) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newFakeRepo()

	return NewNotificationService(repo, nil, logger), repo
}

func TestNotificationService_OwnerScoping(t *testing.T) {
	svc, repo := newTestNotificationService(t)
	ctx := context.Background()

	alice := repo.addUser(testStudent(10, 1))
	bob := repo.addUser(testStudent(11, 1))

	for i := 0; i < 3; i++ {
		if err := repo.Notification().Create(ctx, nil, &models.Notification{UserID: alice.ID, IssueID: 1, Message: "update"}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	list, err := svc.List(ctx, alice, false, 1, 20)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if list.Total != 3 || list.Unread != 3 {
		t.Errorf("total=%d unread=%d, want 3/3", list.Total, list.Unread)
	}

	list, err = svc.List(ctx, bob, false, 1, 20)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if list.Total != 0 {
		t.Errorf("bob should see no notifications, got %d", list.Total)
	}
}

func TestNotificationService_MarkRead(t *testing.T) {
	svc, repo := newTestNotificationService(t)
	ctx := context.Background()

	alice := repo.addUser(testStudent(10, 1))
	bob := repo.addUser(testStudent(11, 1))

	notification := &models.Notification{UserID: alice.ID, IssueID: 1, Message: "assigned"}
	if err := repo.Notification().Create(ctx, nil, notification); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Someone else's notification looks like it doesn't exist
	if err := svc.MarkRead(ctx, notification.ID, bob); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound for foreign notification, got %v", err)
	}

	if err := svc.MarkRead(ctx, notification.ID, alice); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	count, err := svc.UnreadCount(ctx, alice)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 0 {
		t.Errorf("unread = %d, want 0", count)
	}
}
