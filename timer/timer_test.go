package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerManager_Schedule(t *testing.T) {
	manager := NewTimerManager()
	defer manager.Stop()

	fired := make(chan struct{})
	manager.Schedule("task1", 50*time.Millisecond, func() {
		close(fired)
	})

	if !manager.Pending("task1") {
		t.Error("Task should be pending before it fires")
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("Task did not fire in time")
	}

	// The key is released once the task fires.
	deadline := time.Now().Add(time.Second)
	for manager.Pending("task1") && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if manager.Pending("task1") {
		t.Error("Fired task should no longer be pending")
	}
}

func TestTimerManager_ScheduleReplacesSameKey(t *testing.T) {
	manager := NewTimerManager()
	defer manager.Stop()

	var firstFired, secondFired int32
	manager.Schedule("task1", 50*time.Millisecond, func() {
		atomic.StoreInt32(&firstFired, 1)
	})
	manager.Schedule("task1", 100*time.Millisecond, func() {
		atomic.StoreInt32(&secondFired, 1)
	})

	time.Sleep(500 * time.Millisecond)

	if atomic.LoadInt32(&firstFired) == 1 {
		t.Error("Replaced task must not fire")
	}
	if atomic.LoadInt32(&secondFired) != 1 {
		t.Error("Replacement task should fire")
	}
}

func TestTimerManager_Cancel(t *testing.T) {
	manager := NewTimerManager()
	defer manager.Stop()

	var fired int32
	manager.Schedule("task1", 100*time.Millisecond, func() {
		atomic.StoreInt32(&fired, 1)
	})
	manager.Cancel("task1")

	if manager.Pending("task1") {
		t.Error("Cancelled task must not be pending")
	}

	time.Sleep(400 * time.Millisecond)
	if atomic.LoadInt32(&fired) == 1 {
		t.Error("Cancelled task must not fire")
	}
}

func TestTimerManager_CancelUnknownKey(t *testing.T) {
	manager := NewTimerManager()
	defer manager.Stop()

	// Cancelling a key that was never scheduled is a no-op.
	manager.Cancel("unknown")
}

func TestTimerManager_IndependentKeys(t *testing.T) {
	manager := NewTimerManager()
	defer manager.Stop()

	var fired1, fired2 int32
	manager.Schedule("task1", 50*time.Millisecond, func() {
		atomic.StoreInt32(&fired1, 1)
	})
	manager.Schedule("task2", 50*time.Millisecond, func() {
		atomic.StoreInt32(&fired2, 1)
	})
	manager.Cancel("task1")

	time.Sleep(500 * time.Millisecond)

	if atomic.LoadInt32(&fired1) == 1 {
		t.Error("Cancelled task1 must not fire")
	}
	if atomic.LoadInt32(&fired2) != 1 {
		t.Error("task2 should fire independently of task1")
	}
}
