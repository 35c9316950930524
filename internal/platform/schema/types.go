package schema

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// timestampLayouts are tried in order. Layouts without a zone are parsed in
// the clinic zone so that "2024-05-01T10:00" means 10:00 at the clinic.
var timestampLayouts = []struct {
	layout string
	local  bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02T15:04:05.999999999", true},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02 15:04:05", true},
	{DateLayout, true},
}

var clinicZone atomic.Pointer[time.Location]

// SetLocation sets the zone used for timestamps that carry no offset. A nil
// loc restores time.Local.
func SetLocation(loc *time.Location) {
	clinicZone.Store(loc)
}

// Location returns the zone set by SetLocation, time.Local by default.
func Location() *time.Location {
	if loc := clinicZone.Load(); loc != nil {
		return loc
	}
	return time.Local
}

// ParseTimestamp parses the ISO-8601 variants accepted at the API boundary.
// Values without an offset are read in Location().
func ParseTimestamp(s string) (time.Time, error) {
	return ParseTimestampIn(s, Location())
}

// ParseTimestampIn is ParseTimestamp with an explicit zone for values
// without an offset.
func ParseTimestampIn(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = Location()
	}
	for _, l := range timestampLayouts {
		var (
			t   time.Time
			err error
		)
		if l.local {
			t, err = time.ParseInLocation(l.layout, s, loc)
		} else {
			t, err = time.Parse(l.layout, s)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", errInvalidDate, s)
}

// Timestamp is an instant decoded from an ISO-8601 string or epoch milliseconds.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) *Timestamp { return &Timestamp{Time: t} }

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errInvalidDate
		}
		parsed, err := ParseTimestamp(s)
		if err != nil {
			return err
		}
		t.Time = parsed
		return nil
	}
	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return errInvalidDate
	}
	t.Time = time.UnixMilli(ms)
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time)
}

// Value lets the timestamp be bound directly as a query argument.
func (t Timestamp) Value() (driver.Value, error) {
	return t.Time, nil
}

// Date is a calendar date without a time of day, e.g. a date of birth.
type Date struct {
	time.Time
}

// ParseDate parses YYYY-MM-DD or any accepted timestamp, keeping the date part.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}, nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Value() (driver.Value, error) {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Scan reads a DATE column.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
	default:
		return fmt.Errorf("cannot scan %T into schema.Date", src)
	}
	return nil
}

// Decimal is a money amount with two decimal places. It accepts JSON numbers
// and numeric strings ("150.00").
type Decimal float64

func (m *Decimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errInvalidNumber
		}
		data = []byte(s)
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return errInvalidNumber
	}
	*m = Decimal(Round2(f))
	return nil
}

func (m Decimal) Value() (driver.Value, error) {
	return float64(m), nil
}

// Round2 rounds half away from zero to two decimal places.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
