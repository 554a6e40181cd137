package service

import (
	"time"
)

// Clock supplies the current time in the unit's time zone. Injected so expiry
// behaviour is testable with a fixed time.
type Clock interface {
	Now() time.Time
}

type realClock struct {
	loc *time.Location
}

// NewClock returns a Clock reading the wall clock in the given location.
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &realClock{loc: loc}
}

func (c *realClock) Now() time.Time {
	return time.Now().In(c.loc)
}
