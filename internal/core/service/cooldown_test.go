package service

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestCooldownLedger_CheckAndRecord(t *testing.T) {
	l := NewCooldownLedger(5 * time.Second)

	tests := []struct {
		name          string
		identity      string
		at            time.Duration
		wantOK        bool
		wantRemaining time.Duration
	}{
		{"first write", "10.0.0.1", 0, true, 0},
		{"repeat inside cooldown", "10.0.0.1", 2 * time.Second, false, 3 * time.Second},
		{"other identity unaffected", "10.0.0.2", 2 * time.Second, true, 0},
		{"rejected attempt keeps clock", "10.0.0.1", 4500 * time.Millisecond, false, 500 * time.Millisecond},
		{"exactly at boundary", "10.0.0.1", 5 * time.Second, true, 0},
		{"cooldown restarts", "10.0.0.1", 9 * time.Second, false, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, remaining := l.CheckAndRecord(tt.identity, epoch.Add(tt.at))
			if ok != tt.wantOK {
				t.Errorf("CheckAndRecord() ok = %v, want %v", ok, tt.wantOK)
			}
			if remaining != tt.wantRemaining {
				t.Errorf("CheckAndRecord() remaining = %v, want %v", remaining, tt.wantRemaining)
			}
		})
	}
}

func TestCooldownLedger_CheckDoesNotRecord(t *testing.T) {
	l := NewCooldownLedger(time.Second)

	for i := 0; i < 3; i++ {
		if ok, _ := l.Check("a", epoch); !ok {
			t.Fatalf("Check() #%d ok = false, want true", i)
		}
	}
	if l.Len() != 0 {
		t.Errorf("Len() = %d, want 0", l.Len())
	}

	l.Record("a", epoch)
	if ok, _ := l.Check("a", epoch); ok {
		t.Error("Check() after Record ok = true, want false")
	}
}

func TestCooldownLedger_ZeroCooldown(t *testing.T) {
	l := NewCooldownLedger(0)
	for i := 0; i < 5; i++ {
		if ok, _ := l.CheckAndRecord("a", epoch); !ok {
			t.Fatalf("CheckAndRecord() #%d ok = false, want true", i)
		}
	}
}

func TestCooldownLedger_Prune(t *testing.T) {
	l := NewCooldownLedger(5 * time.Second)
	l.Record("old", epoch)
	l.Record("recent", epoch.Add(3*time.Second))

	removed := l.Prune(epoch.Add(6 * time.Second))
	if removed != 1 {
		t.Errorf("Prune() = %d, want 1", removed)
	}
	if l.Len() != 1 {
		t.Errorf("Len() = %d, want 1", l.Len())
	}

	if ok, _ := l.Check("recent", epoch.Add(6*time.Second)); ok {
		t.Error("Prune() removed an identity still in cooldown")
	}
	if ok, _ := l.Check("old", epoch.Add(6*time.Second)); !ok {
		t.Error("pruned identity should be admitted")
	}
}

func TestCooldownLedger_ConcurrentSameIdentity(t *testing.T) {
	l := NewCooldownLedger(time.Minute)

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.CheckAndRecord("same", epoch); ok {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := admitted.Load(); got != 1 {
		t.Errorf("admitted = %d, want 1", got)
	}
}
