package sched

import (
	"context"
	"testing"
	"time"
)

func TestPostOrdering(t *testing.T) {
	loop := New(nil)

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		loop.Post(func() { got = append(got, i) })
	}
	loop.Settle()

	if len(got) != 5 {
		t.Fatalf("ran %d closures, want 5", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order = %v", got)
		}
	}
}

func TestSignalCoalesces(t *testing.T) {
	wakes := 0
	loop := New(func() { wakes++ })

	loop.Signal()
	loop.Signal()
	loop.Signal()
	loop.Settle()

	if wakes != 1 {
		t.Errorf("wakes = %d, want 1 for coalesced signals", wakes)
	}

	loop.Signal()
	loop.Settle()
	if wakes != 2 {
		t.Errorf("wakes = %d, want 2", wakes)
	}
}

func TestPostRunsBeforeWake(t *testing.T) {
	var order []string
	loop := New(nil)
	loop.wake = func() { order = append(order, "wake") }

	loop.Signal()
	loop.Post(func() { order = append(order, "post") })
	loop.Settle()

	if len(order) != 2 || order[0] != "post" || order[1] != "wake" {
		t.Errorf("order = %v", order)
	}
}

func TestPostFromLoop(t *testing.T) {
	loop := New(nil)

	ran := false
	loop.Post(func() {
		loop.Post(func() { ran = true })
	})
	loop.Settle()

	if !ran {
		t.Error("closure posted from the loop never ran")
	}
}

func TestWakeCanSignalAgain(t *testing.T) {
	loop := New(nil)

	wakes := 0
	loop.wake = func() {
		wakes++
		if wakes == 1 {
			loop.Signal()
		}
	}
	loop.Signal()
	loop.Settle()

	if wakes != 2 {
		t.Errorf("wakes = %d, want 2 (wake re-signaled)", wakes)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	loop := New(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	executed := make(chan struct{})
	loop.Post(func() { close(executed) })

	select {
	case <-executed:
	case <-time.After(2 * time.Second):
		t.Fatal("posted work never ran")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on cancel")
	}
}
