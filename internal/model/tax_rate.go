package model

// TaxRate maps a time-of-day interval to a fee. An interval applies to clock
// times strictly between StartTime and EndTime.
type TaxRate struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	StartTime ClockTime `gorm:"size:18;not null" json:"startTime"`
	EndTime   ClockTime `gorm:"size:18;not null" json:"endTime"`
	Amount    float64   `gorm:"not null" json:"amount"`
}

// Contains reports whether clock falls strictly inside the interval.
// There is no midnight wraparound: an interval whose end precedes its start
// matches nothing.
func (r TaxRate) Contains(clock ClockTime) bool {
	return clock.After(r.StartTime) && clock.Before(r.EndTime)
}
