package notify

import (
	"testing"
	"time"
)

func TestCenterSupersedesPrevious(t *testing.T) {
	var posted []Notification
	c := NewCenter(time.Hour, func(n Notification) { posted = append(posted, n) })

	c.Notify(Error, "first")
	c.Notify(Success, "second")

	n, ok := c.Current()
	if !ok || n.Message != "second" || n.Kind != Success {
		t.Fatalf("expected second notification to be current, got %+v ok=%v", n, ok)
	}
	if len(posted) != 2 {
		t.Fatalf("expected onPost for each notification, got %d", len(posted))
	}
}

func TestCenterAutoDismiss(t *testing.T) {
	c := NewCenter(20*time.Millisecond, nil)
	c.Notify(Info, "hello")
	if _, ok := c.Current(); !ok {
		t.Fatalf("expected notification right after posting")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := c.Current(); !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("notification was not dismissed")
}

func TestCenterOldTimerDoesNotClearNewer(t *testing.T) {
	c := NewCenter(30*time.Millisecond, nil)
	c.Notify(Info, "old")
	time.Sleep(20 * time.Millisecond)
	c.Notify(Info, "new")
	time.Sleep(15 * time.Millisecond)
	if n, ok := c.Current(); !ok || n.Message != "new" {
		t.Fatalf("expected newer notification to survive, got %+v ok=%v", n, ok)
	}
	c.Dismiss()
	if _, ok := c.Current(); ok {
		t.Fatalf("expected no notification after Dismiss")
	}
}

func TestDefaultTTL(t *testing.T) {
	if NewCenter(0, nil).TTL() != DefaultTTL {
		t.Fatalf("expected default ttl")
	}
}
