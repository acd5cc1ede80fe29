package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"congestion-toll-backend/internal/parse"
)

// ClockTime is a time of day expressed as the offset from midnight.
type ClockTime time.Duration

// NewClockTime builds a ClockTime from its components.
func NewClockTime(hour, minute, second int) ClockTime {
	return ClockTime(time.Duration(hour)*time.Hour +
		time.Duration(minute)*time.Minute +
		time.Duration(second)*time.Second)
}

// ClockOf returns the wall-clock time of t in t's own location.
func ClockOf(t time.Time) ClockTime {
	h, m, s := t.Clock()
	return NewClockTime(h, m, s) + ClockTime(t.Nanosecond())
}

// ParseClockTime parses "HH:MM[:SS[.fff]]".
func ParseClockTime(raw string) (ClockTime, error) {
	d, err := parse.ParseClock(raw)
	if err != nil {
		return 0, err
	}
	return ClockTime(d), nil
}

func (c ClockTime) Before(o ClockTime) bool { return c < o }
func (c ClockTime) After(o ClockTime) bool  { return c > o }

func (c ClockTime) String() string {
	return parse.FormatClock(time.Duration(c))
}

// MarshalJSON encodes the clock as "HH:MM:SS".
func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes "HH:MM[:SS[.fff]]".
func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("clock time must be a string: %w", err)
	}
	parsed, err := ParseClockTime(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Scan implements sql.Scanner.
func (c *ClockTime) Scan(value any) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into ClockTime", value)
	}
	parsed, err := ParseClockTime(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value implements driver.Valuer.
func (c ClockTime) Value() (driver.Value, error) {
	return c.String(), nil
}

// GormDataType stores clock times as text columns.
func (ClockTime) GormDataType() string {
	return "string"
}
