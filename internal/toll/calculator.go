package toll

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"congestion-toll-backend/internal/model"
)

// RateSource provides the rate table in evaluation order.
type RateSource interface {
	ListRates(ctx context.Context) ([]model.TaxRate, error)
}

// ExemptionSource provides both exemption lists.
type ExemptionSource interface {
	ListExemptedVehicles(ctx context.Context) ([]model.ExemptedVehicle, error)
	ListExemptedDates(ctx context.Context) ([]model.ExemptedDate, error)
}

// History is the read and append side of the passage history.
type History interface {
	FindPassages(ctx context.Context, plate string, from, to time.Time) ([]model.TollPass, error)
	AppendPassage(ctx context.Context, p model.TollPass) (model.TollPass, error)
}

// Policy holds the aggregation parameters.
type Policy struct {
	// DailyCap is the most a single aggregated charge may reach.
	DailyCap float64
	// Window is the distance within which passages are billed once.
	Window time.Duration
}

// DefaultPolicy charges once per 60 minutes, capped at 60.
func DefaultPolicy() Policy {
	return Policy{DailyCap: 60, Window: 60 * time.Minute}
}

// Calculator computes the fee of a passage and records it in the history.
// It keeps no state between calls.
type Calculator struct {
	rates      RateSource
	exemptions ExemptionSource
	history    History
	policy     Policy
}

// NewCalculator wires a calculator to its collaborators.
func NewCalculator(rates RateSource, exemptions ExemptionSource, history History, policy Policy) *Calculator {
	return &Calculator{
		rates:      rates,
		exemptions: exemptions,
		history:    history,
		policy:     policy,
	}
}

// Calculate returns the fee for p. Exempt passages cost 0 and are not
// recorded; every other passage appends exactly one TollPass.
//
// The history read and the append are not serialised: two concurrent
// passages of the same plate may both price against the history as it was
// before either was recorded.
func (c *Calculator) Calculate(ctx context.Context, p model.Passage) (float64, error) {
	exempt, err := c.isExempt(ctx, p)
	if err != nil {
		return 0, err
	}
	if exempt {
		return 0, nil
	}

	rates, err := c.rates.ListRates(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load rate table: %w", err)
	}
	base := BaseFee(rates, model.ClockOf(p.Timestamp))

	from, to := dayBounds(p.Timestamp)
	sameDay, err := c.history.FindPassages(ctx, p.PlateNumber, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to load passage history: %w", err)
	}

	amount := base
	found := false
	for _, prev := range sameDay {
		if !c.withinWindow(prev.PassedAt, p.Timestamp) {
			continue
		}
		if !found || prev.Amount > amount {
			amount = prev.Amount
			found = true
		}
	}
	amount = math.Min(amount, c.policy.DailyCap)

	stored, err := c.history.AppendPassage(ctx, model.TollPass{
		PlateNumber: p.PlateNumber,
		PassedAt:    p.Timestamp,
		Amount:      amount,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to record passage: %w", err)
	}
	log.Printf("Charged %s %.2f at %s (pass %d, base %.2f)", p.PlateNumber, amount, p.Timestamp.Format(time.DateTime), stored.ID, base)

	return amount, nil
}

func (c *Calculator) isExempt(ctx context.Context, p model.Passage) (bool, error) {
	vehicles, err := c.exemptions.ListExemptedVehicles(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load exempted vehicles: %w", err)
	}
	if IsVehicleExempt(vehicles, p.VehicleType) {
		return true, nil
	}

	dates, err := c.exemptions.ListExemptedDates(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load exempted dates: %w", err)
	}
	return IsDateExempt(dates, p.Timestamp), nil
}

// withinWindow compares whole minutes: 60m59s still counts as 60 minutes.
func (c *Calculator) withinWindow(a, b time.Time) bool {
	d := b.Sub(a)
	if d < 0 {
		d = -d
	}
	return d.Truncate(time.Minute) <= c.policy.Window
}

// dayBounds returns 00:00:00 and 23:59:59 of t's calendar day. Passages from
// the previous day are never aggregated, however close.
func dayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	loc := t.Location()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), time.Date(y, m, d, 23, 59, 59, 0, loc)
}
