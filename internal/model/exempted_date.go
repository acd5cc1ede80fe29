package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"congestion-toll-backend/internal/parse"
)

// ErrInvalidDateRule is returned when an exempted date has an unknown kind or
// lacks the payload its kind requires.
var ErrInvalidDateRule = errors.New("invalid exempted date")

// DateRuleKind tags the variants of DateRule.
type DateRuleKind string

const (
	KindDayOfWeek   DateRuleKind = "DAY_OF_WEEK"
	KindHolidayDate DateRuleKind = "HOLIDAY_DATE"
	KindMonth       DateRuleKind = "MONTH"
)

// DateRule is one of DayOfWeek, HolidayDate or Month.
type DateRule interface {
	Kind() DateRuleKind
	isDateRule()
}

// DayOfWeek exempts every occurrence of a weekday.
type DayOfWeek struct {
	Day time.Weekday
}

// HolidayDate exempts one calendar date.
type HolidayDate struct {
	Year  int
	Month time.Month
	Day   int
}

// Month exempts a whole month of every year.
type Month struct {
	Month time.Month
}

func (DayOfWeek) Kind() DateRuleKind   { return KindDayOfWeek }
func (HolidayDate) Kind() DateRuleKind { return KindHolidayDate }
func (Month) Kind() DateRuleKind       { return KindMonth }

func (DayOfWeek) isDateRule()   {}
func (HolidayDate) isDateRule() {}
func (Month) isDateRule()       {}

// HolidayOf returns the calendar date of t in t's location.
func HolidayOf(t time.Time) HolidayDate {
	y, m, d := t.Date()
	return HolidayDate{Year: y, Month: m, Day: d}
}

func (h HolidayDate) String() string {
	return parse.FormatDate(h.Year, h.Month, h.Day)
}

// ExemptedDate is a stored date exemption.
type ExemptedDate struct {
	ID   int64
	Rule DateRule
}

type exemptedDateJSON struct {
	ID          int64        `json:"id"`
	Type        DateRuleKind `json:"type"`
	DayOfWeek   *string      `json:"dayOfWeek"`
	HolidayDate *string      `json:"holidayDate"`
	Month       *string      `json:"month"`
}

// MarshalJSON renders the rule with its tag and only the matching payload set.
func (e ExemptedDate) MarshalJSON() ([]byte, error) {
	if e.Rule == nil {
		return nil, fmt.Errorf("%w: missing rule", ErrInvalidDateRule)
	}
	kind, value := encodeRule(e.Rule)
	out := exemptedDateJSON{ID: e.ID, Type: kind}
	switch kind {
	case KindDayOfWeek:
		out.DayOfWeek = &value
	case KindHolidayDate:
		out.HolidayDate = &value
	case KindMonth:
		out.Month = &value
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the tagged form and rejects records whose tag-selected
// payload is absent or malformed. Payload fields for other tags are ignored.
func (e *ExemptedDate) UnmarshalJSON(data []byte) error {
	var in exemptedDateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	var payload *string
	switch in.Type {
	case KindDayOfWeek:
		payload = in.DayOfWeek
	case KindHolidayDate:
		payload = in.HolidayDate
	case KindMonth:
		payload = in.Month
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidDateRule, in.Type)
	}
	if payload == nil {
		return fmt.Errorf("%w: type %s without payload", ErrInvalidDateRule, in.Type)
	}

	rule, err := decodeRule(in.Type, *payload)
	if err != nil {
		return err
	}
	e.ID = in.ID
	e.Rule = rule
	return nil
}

// ExemptedDateRecord is the flat row form of an ExemptedDate used by SQL backends.
type ExemptedDateRecord struct {
	ID    int64        `gorm:"primaryKey"`
	Kind  DateRuleKind `gorm:"size:16;not null;index"`
	Value string       `gorm:"size:32;not null"`
}

// TableName keeps the table name independent of the Go type name.
func (ExemptedDateRecord) TableName() string {
	return "exempted_dates"
}

// ToRecord flattens the exemption for storage.
func (e ExemptedDate) ToRecord() ExemptedDateRecord {
	kind, value := encodeRule(e.Rule)
	return ExemptedDateRecord{ID: e.ID, Kind: kind, Value: value}
}

// ExemptedDateFromRecord rebuilds an exemption from its row form.
func ExemptedDateFromRecord(r ExemptedDateRecord) (ExemptedDate, error) {
	rule, err := decodeRule(r.Kind, r.Value)
	if err != nil {
		return ExemptedDate{}, err
	}
	return ExemptedDate{ID: r.ID, Rule: rule}, nil
}

// ParseDateRule builds a rule from its tag and textual payload, e.g.
// (DAY_OF_WEEK, "SATURDAY"), (HOLIDAY_DATE, "2023-12-25"), (MONTH, "JULY").
func ParseDateRule(kind DateRuleKind, value string) (DateRule, error) {
	return decodeRule(kind, value)
}

func encodeRule(rule DateRule) (DateRuleKind, string) {
	switch r := rule.(type) {
	case DayOfWeek:
		return KindDayOfWeek, parse.FormatWeekday(r.Day)
	case HolidayDate:
		return KindHolidayDate, r.String()
	case Month:
		return KindMonth, parse.FormatMonth(r.Month)
	}
	return "", ""
}

func decodeRule(kind DateRuleKind, value string) (DateRule, error) {
	switch kind {
	case KindDayOfWeek:
		d, err := parse.ParseWeekday(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDateRule, err)
		}
		return DayOfWeek{Day: d}, nil
	case KindHolidayDate:
		y, m, d, err := parse.ParseDate(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDateRule, err)
		}
		return HolidayDate{Year: y, Month: m, Day: d}, nil
	case KindMonth:
		m, err := parse.ParseMonth(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDateRule, err)
		}
		return Month{Month: m}, nil
	}
	return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidDateRule, kind)
}
