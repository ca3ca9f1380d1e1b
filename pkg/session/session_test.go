package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestMemoryGetUnknownCreatesEmpty(t *testing.T) {
	s := NewMemoryStore(5)
	defer s.Close()

	sess, err := s.Get(context.Background(), "fresh")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if sess.SessionID != "fresh" {
		t.Errorf("SessionID = %q, want fresh", sess.SessionID)
	}
	if len(sess.RecentEvents) != 0 || len(sess.SeverityTrend) != 0 {
		t.Errorf("new session not empty: %v %v", sess.RecentEvents, sess.SeverityTrend)
	}
	if s.Len() != 0 {
		t.Errorf("Get() should not persist anything, Len = %d", s.Len())
	}
}

func TestMemoryAppendAndTrim(t *testing.T) {
	const cap = 5
	s := NewMemoryStore(cap)
	defer s.Close()
	ctx := context.Background()

	// Append cap+5 events; only the newest cap survive.
	for i := 0; i < cap+5; i++ {
		if err := s.Append(ctx, "s1", fmt.Sprintf("ev-%d", i), i%6); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}

	sess, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(sess.RecentEvents) != cap {
		t.Errorf("RecentEvents len = %d, want %d", len(sess.RecentEvents), cap)
	}
	if len(sess.SeverityTrend) != cap {
		t.Errorf("SeverityTrend len = %d, want %d", len(sess.SeverityTrend), cap)
	}
	if sess.RecentEvents[0] != "ev-5" {
		t.Errorf("oldest surviving event = %q, want ev-5", sess.RecentEvents[0])
	}
	if sess.RecentEvents[cap-1] != "ev-9" {
		t.Errorf("newest event = %q, want ev-9", sess.RecentEvents[cap-1])
	}
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore(5)
	defer s.Close()
	ctx := context.Background()

	_ = s.Append(ctx, "s1", "ev-1", 3)
	sess, _ := s.Get(ctx, "s1")
	sess.RecentEvents[0] = "mutated"
	sess.SeverityTrend[0] = 99

	again, _ := s.Get(ctx, "s1")
	if again.RecentEvents[0] != "ev-1" || again.SeverityTrend[0] != 3 {
		t.Error("Get() exposed internal state to mutation")
	}
}

func TestMemoryConcurrentSessions(t *testing.T) {
	s := NewMemoryStore(10)
	defer s.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", n%4)
			for j := 0; j < 25; j++ {
				_ = s.Append(ctx, id, fmt.Sprintf("ev-%d-%d", n, j), j%6)
				_, _ = s.Get(ctx, id)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		sess, err := s.Get(ctx, fmt.Sprintf("session-%d", i))
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if len(sess.RecentEvents) != 10 {
			t.Errorf("session-%d RecentEvents len = %d, want 10", i, len(sess.RecentEvents))
		}
		if len(sess.RecentEvents) != len(sess.SeverityTrend) {
			t.Errorf("session-%d window lengths diverged: %d vs %d",
				i, len(sess.RecentEvents), len(sess.SeverityTrend))
		}
	}
}

func TestMemoryExpiry(t *testing.T) {
	s := NewMemoryStore(5, WithMaxAge(10*time.Millisecond), WithCleanupInterval(5*time.Millisecond))
	defer s.Close()
	ctx := context.Background()

	_ = s.Append(ctx, "s1", "ev-1", 2)
	time.Sleep(30 * time.Millisecond)

	sess, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(sess.RecentEvents) != 0 {
		t.Errorf("expired session still has %d events", len(sess.RecentEvents))
	}
}

func TestEscalating(t *testing.T) {
	tests := []struct {
		trend []int
		want  bool
	}{
		{[]int{1, 2, 3}, true},
		{[]int{3, 3, 4}, true},
		{[]int{3, 2, 1}, false},
		{[]int{1, 5}, false},
		{nil, false},
		{[]int{2, 4, 3}, false},
	}
	for _, tt := range tests {
		c := &Context{SeverityTrend: tt.trend}
		if got := c.Escalating(); got != tt.want {
			t.Errorf("Escalating(%v) = %v, want %v", tt.trend, got, tt.want)
		}
	}
}
