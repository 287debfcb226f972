package queue

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryRoundTrip(t *testing.T) {
	q := NewInMemory(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := q.Consume(ctx)
	if err != nil {
		t.Fatal(err)
	}

	want := Event{Kind: "check_in", StudentID: "stu1", CourseID: "MATH101", RecordID: "rec-1", At: time.Now().UTC()}
	if err := q.Publish(ctx, want); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-events:
		if got.Kind != want.Kind || got.StudentID != want.StudentID || got.RecordID != want.RecordID {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestInMemoryPublishCancelled(t *testing.T) {
	q := NewInMemory(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Publish(ctx, Event{Kind: "check_in"}); err == nil {
		t.Fatal("expected context error on full queue")
	}
}
