package monitoring

import (
	"fmt"
	"sync"
	"testing"
)

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var captured []string
	SetLogger(func(format string, v ...interface{}) {
		captured = append(captured, fmt.Sprintf(format, v...))
	})

	Logf("processed %d cells", 42)
	if len(captured) != 1 || captured[0] != "processed 42 cells" {
		t.Errorf("captured = %v", captured)
	}

	// nil installs a no-op logger rather than panicking.
	SetLogger(nil)
	Logf("should be dropped")
	if len(captured) != 1 {
		t.Errorf("no-op logger still captured output: %v", captured)
	}
}

func TestCounter(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.Add(1)
			}
		}()
	}
	wg.Wait()
	if got := c.Value(); got != 8000 {
		t.Errorf("Value() = %d, want 8000", got)
	}
	if got := c.Reset(); got != 8000 {
		t.Errorf("Reset() = %d, want 8000", got)
	}
	if got := c.Value(); got != 0 {
		t.Errorf("Value() after reset = %d, want 0", got)
	}
}
