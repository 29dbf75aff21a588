package queue

import (
	"context"
	"testing"
	"time"

	"pantry-service/internal/infrastructure/config"
)

func testManager(maxConcurrent int) *Manager {
	cfg := &config.Config{}
	cfg.Queue.MaxConcurrent = maxConcurrent
	return NewManager(cfg)
}

func TestAcquireRelease(t *testing.T) {
	m := testManager(2)
	ctx := context.Background()

	if err := m.Acquire(ctx); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := m.Acquire(ctx); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	status := m.GetQueueStatus()
	if status.InFlight != 2 || status.MaxConcurrent != 2 {
		t.Errorf("status = %+v", status)
	}

	m.Release()
	m.Release()

	status = m.GetQueueStatus()
	if status.InFlight != 0 || status.ProcessedCount != 2 {
		t.Errorf("status after release = %+v", status)
	}
}

func TestAcquireBlocksUntilRelease(t *testing.T) {
	m := testManager(1)
	ctx := context.Background()

	if err := m.Acquire(ctx); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	acquired := make(chan error, 1)
	go func() { acquired <- m.Acquire(ctx) }()

	select {
	case <-acquired:
		t.Fatal("second Acquire should block while the slot is held")
	case <-time.After(50 * time.Millisecond):
	}

	m.Release()
	select {
	case err := <-acquired:
		if err != nil {
			t.Fatalf("Acquire after release: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire did not wake up after release")
	}
}

func TestAcquireRespectsContext(t *testing.T) {
	m := testManager(1)
	if err := m.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := m.Acquire(ctx); err != context.DeadlineExceeded {
		t.Errorf("Acquire with expired context = %v, want DeadlineExceeded", err)
	}
}

func TestAcquireFailsAfterClose(t *testing.T) {
	m := testManager(1)
	if err := m.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	m.Close()
	if err := m.Acquire(context.Background()); err == nil {
		t.Error("Acquire after Close should fail")
	}
}

func TestZeroConcurrencyDefaultsToOne(t *testing.T) {
	m := testManager(0)
	if got := m.GetQueueStatus().MaxConcurrent; got != 1 {
		t.Errorf("MaxConcurrent = %d, want 1", got)
	}
}
