package events

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
)

func TestNewEvent(t *testing.T) {
	event := NewEvent(EventIssueAssigned, IssueEventData{IssueID: 5, ActorID: 30})

	if event.ID == "" {
		t.Error("event ID should not be empty")
	}
	if event.Type != EventIssueAssigned {
		t.Errorf("Type = %s, want %s", event.Type, EventIssueAssigned)
	}
	if event.Source != EventSource {
		t.Errorf("Source = %s, want %s", event.Source, EventSource)
	}
	if event.Version != EventVersion {
		t.Errorf("Version = %s, want %s", event.Version, EventVersion)
	}
	if event.Timestamp.IsZero() {
		t.Error("event timestamp should not be zero")
	}

	// IDs must be unique per event
	other := NewEvent(EventIssueAssigned, nil)
	if other.ID == event.ID {
		t.Error("two events should not share an ID")
	}
}

func TestMockEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := NewMockEventPublisher(logger)
	ctx := context.Background()

	if err := publisher.Publish(ctx, NewEvent(EventIssueCreated, nil)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := publisher.Publish(ctx, NewEvent(EventIssueResolved, nil)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 2 {
		t.Fatalf("expected 2 events, got %d", len(published))
	}
	if published[0].Type != EventIssueCreated || published[1].Type != EventIssueResolved {
		t.Errorf("events out of order: %v", published)
	}

	publisher.ClearEvents()
	if len(publisher.GetPublishedEvents()) != 0 {
		t.Error("ClearEvents should drop recorded events")
	}
}

func TestMockEventPublisher_Concurrent(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := NewMockEventPublisher(logger)
	ctx := context.Background()

	const workers = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = publisher.Publish(ctx, NewEvent(EventIssueStatusChanged, nil))
		}()
	}
	wg.Wait()

	if got := len(publisher.GetPublishedEvents()); got != workers {
		t.Errorf("recorded %d events, want %d", got, workers)
	}
}

func TestGoChannelPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := NewGoChannelEventPublisher("issue-events", logger)
	defer publisher.Close()

	event := NewEvent(EventIssueCreated, IssueEventData{IssueID: 1})
	if err := publisher.Publish(context.Background(), event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
}
