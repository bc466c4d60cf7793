package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestForEachRow_RunsAllRows(t *testing.T) {
	var count int64
	err := ForEachRow(context.Background(), 50, 4, func(row int) error {
		atomic.AddInt64(&count, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachRow failed: %v", err)
	}
	if count != 50 {
		t.Errorf("got %d calls, want 50", count)
	}
}

func TestForEachRow_PropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	err := ForEachRow(context.Background(), 20, 4, func(row int) error {
		if row == 5 {
			return wantErr
		}
		return nil
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want %v", err, wantErr)
	}
}

func TestForEachRow_ZeroRows(t *testing.T) {
	if err := ForEachRow(context.Background(), 0, 4, func(row int) error {
		t.Fatal("fn should not be called")
		return nil
	}); err != nil {
		t.Fatalf("got %v, want nil", err)
	}
}

func TestPool_AcquireRelease(t *testing.T) {
	p := NewPool(1)
	if err := p.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	p.Release()
	if err := p.Acquire(context.Background()); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
}

func TestPool_AcquireAfterClose(t *testing.T) {
	p := NewPool(1)
	p.Close()
	if err := p.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("got %v, want ErrPoolClosed", err)
	}
}
