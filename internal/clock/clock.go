// Package clock provides the business-local time source. The shop runs on
// a fixed UTC+5 offset; everything that needs "now" takes a Clock so tests
// can pin it.
package clock

import (
	"fmt"
	"time"
)

// Clock returns the current business-local time.
type Clock interface {
	Now() time.Time
}

// Func adapts a plain function to the Clock interface.
type Func func() time.Time

// Now implements Clock.
func (f Func) Now() time.Time { return f() }

type businessClock struct {
	loc *time.Location
}

// NewBusiness returns a Clock reporting wall time in a fixed UTC offset.
func NewBusiness(offsetHours int) Clock {
	name := fmt.Sprintf("UTC+%d", offsetHours)
	if offsetHours < 0 {
		name = fmt.Sprintf("UTC%d", offsetHours)
	}
	return businessClock{loc: time.FixedZone(name, offsetHours*3600)}
}

func (c businessClock) Now() time.Time {
	return time.Now().In(c.loc)
}
