package ui

import (
	"sync"
	"testing"
)

func TestProgressRecord(t *testing.T) {
	p := NewProgress(ProgressConfig{Total: 6})

	p.Record("pass")
	p.Record("pass")
	p.Record("snapshot-mismatch")
	p.Record("annotation-mismatch")
	p.Record("timeout")
	p.Record("skipped")

	passed, mismatched, errored, skipped := p.Stats()
	if passed != 2 {
		t.Errorf("passed = %d, want 2", passed)
	}
	if mismatched != 2 {
		t.Errorf("mismatched = %d, want 2", mismatched)
	}
	if errored != 1 {
		t.Errorf("errored = %d, want 1", errored)
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
}

func TestProgressConcurrentRecord(t *testing.T) {
	p := NewProgress(ProgressConfig{Total: 100})
	p.Start()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Record("pass")
		}()
	}
	wg.Wait()
	p.Stop()

	passed, _, _, _ := p.Stats()
	if passed != 100 {
		t.Errorf("passed = %d, want 100", passed)
	}
}

func TestProgressDoubleStop(t *testing.T) {
	p := NewProgress(ProgressConfig{Total: 1})
	p.Start()
	p.Stop()
	p.Stop() // must not panic
}

func TestVerdictStyleGroups(t *testing.T) {
	// Mismatch-family verdicts share the drift style so console output
	// stays scannable.
	for _, v := range []string{"snapshot-mismatch", "annotation-mismatch", "unexpected-success", "unexpected-failure"} {
		if VerdictStyle(v).GetForeground() != MismatchStyle.GetForeground() {
			t.Errorf("VerdictStyle(%q) not in the mismatch group", v)
		}
	}
	if VerdictStyle("pass").GetForeground() != PassStyle.GetForeground() {
		t.Error("VerdictStyle(pass) should use PassStyle")
	}
}
