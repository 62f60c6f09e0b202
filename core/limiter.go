package core

// StepLimiter tracks step_count against step_limit for one agent loop run.
// A step is one executed tool call. It is owned by a single loop and is not
// safe for concurrent use.
type StepLimiter struct {
	max   int
	count int
}

// NewStepLimiter creates a limiter allowing max tool steps. Negative values
// are treated as zero.
func NewStepLimiter(max int) *StepLimiter {
	if max < 0 {
		max = 0
	}
	return &StepLimiter{max: max}
}

// Increment records one executed tool step.
func (l *StepLimiter) Increment() { l.count++ }

// Allowed reports whether another tool step may execute.
func (l *StepLimiter) Allowed() bool { return l.count < l.max }

// Count returns the number of executed steps.
func (l *StepLimiter) Count() int { return l.count }

// Max returns the configured limit.
func (l *StepLimiter) Max() int { return l.max }

// Remaining returns how many steps are left before hitting the limit.
func (l *StepLimiter) Remaining() int { return l.max - l.count }
