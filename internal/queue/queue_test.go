package queue

import (
	"context"
	"testing"
	"time"
)

func TestPushPop(t *testing.T) {
	q := New(10, 3)
	ctx := context.Background()

	if err := q.Push(ctx, "/photos/a.jpg"); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if err := q.Push(ctx, "/photos/b.jpg"); err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}

	item, err := q.Pop(ctx)
	if err != nil {
		t.Fatalf("Pop() error = %v", err)
	}
	if item.Path != "/photos/a.jpg" {
		t.Errorf("Pop() = %q, want FIFO order", item.Path)
	}
	if item.Attempt != 1 {
		t.Errorf("Attempt = %d, want 1", item.Attempt)
	}
}

func TestPushDeduplicates(t *testing.T) {
	q := New(10, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := q.Push(ctx, "/photos/same.jpg"); err != nil {
			t.Fatalf("Push() error = %v", err)
		}
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d after duplicate pushes, want 1", q.Len())
	}

	// after Pop the path may be queued again
	if _, err := q.Pop(ctx); err != nil {
		t.Fatal(err)
	}
	if err := q.Push(ctx, "/photos/same.jpg"); err != nil {
		t.Fatal(err)
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d after re-push, want 1", q.Len())
	}
}

func TestRetryLimit(t *testing.T) {
	q := New(10, 2)
	ctx := context.Background()

	if err := q.Push(ctx, "/photos/flaky.jpg"); err != nil {
		t.Fatal(err)
	}

	item, _ := q.Pop(ctx)
	ok, err := q.Retry(ctx, item)
	if err != nil || !ok {
		t.Fatalf("Retry(attempt 1) = %v, %v; want requeued", ok, err)
	}

	item, _ = q.Pop(ctx)
	if item.Attempt != 2 {
		t.Errorf("Attempt after retry = %d, want 2", item.Attempt)
	}

	ok, err = q.Retry(ctx, item)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("Retry(attempt 2 of 2) should drop the item")
	}

	st := q.Stats()
	if st.Retried != 1 || st.Dropped != 1 {
		t.Errorf("Stats() = %+v, want 1 retried and 1 dropped", st)
	}
}

func TestPopCancelled(t *testing.T) {
	q := New(10, 3)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := q.Pop(ctx); err == nil {
		t.Error("Pop() on an empty queue should fail once the context expires")
	}
}

func TestRetryAfterClose(t *testing.T) {
	q := New(10, 3)
	ctx := context.Background()

	if err := q.Push(ctx, "/photos/flaky.jpg"); err != nil {
		t.Fatal(err)
	}
	q.Close()

	// остаток буфера дорабатывается после закрытия приёма
	item, err := q.Pop(ctx)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := q.Retry(ctx, item)
	if err != nil {
		t.Fatalf("Retry() after Close error = %v", err)
	}
	if ok {
		t.Error("Retry() after Close should drop the item")
	}
	if st := q.Stats(); st.Dropped != 1 {
		t.Errorf("Stats().Dropped = %d, want 1", st.Dropped)
	}
}

func TestPushAfterClose(t *testing.T) {
	q := New(10, 3)
	q.Close()

	if err := q.Push(context.Background(), "/photos/late.jpg"); err != nil {
		t.Errorf("Push() after Close error = %v, want silent drop", err)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d after closed push, want 0", q.Len())
	}
}

func TestCloseIdempotent(t *testing.T) {
	q := New(10, 3)
	q.Close()
	q.Close()
}

func TestPopAfterClose(t *testing.T) {
	q := New(10, 3)
	ctx := context.Background()

	if err := q.Push(ctx, "/photos/last.jpg"); err != nil {
		t.Fatal(err)
	}
	q.Close()

	if item, err := q.Pop(ctx); err != nil || item.Path != "/photos/last.jpg" {
		t.Errorf("Pop() after Close = %v, %v; buffered items must drain", item, err)
	}
	if _, err := q.Pop(ctx); err == nil {
		t.Error("Pop() on a drained closed queue should fail")
	}
}
