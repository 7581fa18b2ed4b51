package points

import (
	"sync"
	"testing"
)

func TestCounter(t *testing.T) {
	tests := []struct {
		name string
		run  func(c *Counter)
		want int64
	}{
		{"transaction", func(c *Counter) { c.TransactionAdded() }, 10},
		{"goal", func(c *Counter) { c.GoalAdded() }, 25},
		{"three completions in one pass", func(c *Counter) { c.GoalsCompleted(3) }, 300},
		{"zero completions", func(c *Counter) { c.GoalsCompleted(0) }, 0},
		{"negative completions ignored", func(c *Counter) { c.GoalsCompleted(-2) }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCounter(0)
			tt.run(c)
			if got := c.Total(); got != tt.want {
				t.Errorf("Total() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewCounter_ClampsNegativeStart(t *testing.T) {
	if got := NewCounter(-50).Total(); got != 0 {
		t.Errorf("Total() = %d, want 0", got)
	}
	if got := NewCounter(125).Total(); got != 125 {
		t.Errorf("Total() = %d, want 125", got)
	}
}

func TestCounter_Concurrent(t *testing.T) {
	c := NewCounter(0)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.TransactionAdded()
		}()
	}
	wg.Wait()
	if got := c.Total(); got != 1000 {
		t.Errorf("Total() = %d, want 1000", got)
	}
}
