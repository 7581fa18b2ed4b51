// Package points keeps the gamification counter.
package points

import "sync/atomic"

// Award sizes.
const (
	ForTransaction    = 10
	ForNewGoal        = 25
	ForCompletingGoal = 100
)

// Counter is a monotonic, non-negative points total.
type Counter struct {
	total atomic.Int64
}

// NewCounter starts a counter at start; negative values are clamped to zero.
func NewCounter(start int64) *Counter {
	c := &Counter{}
	if start > 0 {
		c.total.Store(start)
	}
	return c
}

// TransactionAdded awards points for one successfully added transaction.
func (c *Counter) TransactionAdded() int64 {
	return c.total.Add(ForTransaction)
}

// GoalAdded awards points for one successfully added goal.
func (c *Counter) GoalAdded() int64 {
	return c.total.Add(ForNewGoal)
}

// GoalsCompleted awards points for n goals completing in the same pass.
func (c *Counter) GoalsCompleted(n int) int64 {
	if n <= 0 {
		return c.total.Load()
	}
	return c.total.Add(int64(n) * ForCompletingGoal)
}

// Total returns the current total.
func (c *Counter) Total() int64 {
	return c.total.Load()
}
