package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerManager_OneShot(t *testing.T) {
	m := NewTimerManager()
	var fired int32

	m.AddTimer(50*time.Millisecond, 0, func() {
		atomic.AddInt32(&fired, 1)
	})

	time.Sleep(300 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("Expected one-shot timer to fire once, fired %d times", got)
	}
}

func TestTimerManager_RemoveTimer(t *testing.T) {
	m := NewTimerManager()
	var fired int32

	id := m.AddTimer(150*time.Millisecond, 0, func() {
		atomic.AddInt32(&fired, 1)
	})
	m.RemoveTimer(id)

	time.Sleep(400 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Fatalf("Removed timer must not fire, fired %d times", got)
	}
}

func TestTimerManager_CancelTag(t *testing.T) {
	m := NewTimerManager()
	var tagged, untagged int32

	for i := 0; i < 5; i++ {
		m.AddTaggedTimer(150*time.Millisecond, "room", func() {
			atomic.AddInt32(&tagged, 1)
		})
	}
	m.AddTaggedTimer(150*time.Millisecond, "other", func() {
		atomic.AddInt32(&untagged, 1)
	})

	m.CancelTag("room")

	time.Sleep(400 * time.Millisecond)
	if got := atomic.LoadInt32(&tagged); got != 0 {
		t.Errorf("Cancelled tag fired %d tasks, want 0", got)
	}
	if got := atomic.LoadInt32(&untagged); got != 1 {
		t.Errorf("Other tag should be unaffected, fired %d times", got)
	}
}
