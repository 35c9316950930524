// Package calendar resolves clinic-local day and month boundaries.
package calendar

import (
	"time"

	"github.com/gastroclinic/clinic/internal/platform/schema"
)

// Calendar answers "today" and "this month" in the clinic's time zone.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// New creates a Calendar for loc. A nil loc means time.Local.
func New(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{loc: loc, now: time.Now}
}

// WithClock returns a copy of c that reads the current time from now.
func (c *Calendar) WithClock(now func() time.Time) *Calendar {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Calendar) Location() *time.Location { return c.loc }

// Now returns the current instant in the clinic's zone.
func (c *Calendar) Now() time.Time { return c.now().In(c.loc) }

// Today returns [start of today, start of tomorrow).
func (c *Calendar) Today() (time.Time, time.Time) {
	return DayBounds(c.Now(), c.loc)
}

// MonthStart returns midnight of the first day of the current month.
func (c *Calendar) MonthStart() time.Time {
	now := c.Now()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, c.loc)
}

// DayBounds returns the local calendar day containing t as a half-open
// interval. Days around DST changes are 23 or 25 hours long.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// ParseBound parses a range bound from a query string. A bare date is taken
// in the clinic's zone; as an upper bound it covers the whole day, so the
// result is the following midnight.
func (c *Calendar) ParseBound(s string, upper bool) (time.Time, error) {
	if t, err := time.ParseInLocation(schema.DateLayout, s, c.loc); err == nil {
		if upper {
			return t.AddDate(0, 0, 1), nil
		}
		return t, nil
	}
	return schema.ParseTimestampIn(s, c.loc)
}
