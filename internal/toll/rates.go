package toll

import "congestion-toll-backend/internal/model"

// BaseFee returns the amount of the first interval, in table order, that
// strictly contains clock. Clock times on an interval bound, and times no
// interval covers, cost nothing.
func BaseFee(rates []model.TaxRate, clock model.ClockTime) float64 {
	for _, r := range rates {
		if r.Contains(clock) {
			return r.Amount
		}
	}
	return 0
}
