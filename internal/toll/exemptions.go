package toll

import (
	"time"

	"congestion-toll-backend/internal/model"
)

// IsVehicleExempt reports whether vehicleType exactly matches an exempted label.
func IsVehicleExempt(vehicles []model.ExemptedVehicle, vehicleType string) bool {
	for _, v := range vehicles {
		if v.Label == vehicleType {
			return true
		}
	}
	return false
}

// IsDateExempt reports whether any rule matches the calendar date of t, taken
// in t's own location.
func IsDateExempt(dates []model.ExemptedDate, t time.Time) bool {
	for _, d := range dates {
		if dateMatches(d.Rule, t) {
			return true
		}
	}
	return false
}

func dateMatches(rule model.DateRule, t time.Time) bool {
	switch r := rule.(type) {
	case model.Month:
		return r.Month == t.Month()
	case model.DayOfWeek:
		return r.Day == t.Weekday()
	case model.HolidayDate:
		return r == model.HolidayOf(t)
	}
	return false
}
