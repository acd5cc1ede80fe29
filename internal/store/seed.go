package store

import (
	"context"
	"fmt"
	"log"

	"congestion-toll-backend/config"
	"congestion-toll-backend/internal/model"
)

// Seed loads the seed configuration into s. Each record type is only seeded
// when the store holds none of it, so persistent backends keep edits made
// through the API across restarts.
func Seed(ctx context.Context, s Store, seed *config.SeedConfig) error {
	if seed == nil {
		return nil
	}

	rates, err := s.ListRates(ctx)
	if err != nil {
		return err
	}
	if len(rates) == 0 {
		for _, r := range seed.Rates {
			start, err := model.ParseClockTime(r.Start)
			if err != nil {
				return fmt.Errorf("seed rate start: %w", err)
			}
			end, err := model.ParseClockTime(r.End)
			if err != nil {
				return fmt.Errorf("seed rate end: %w", err)
			}
			if _, err := s.CreateRate(ctx, model.TaxRate{StartTime: start, EndTime: end, Amount: r.Amount}); err != nil {
				return err
			}
		}
		log.Printf("Seeded %d tax rates", len(seed.Rates))
	}

	vehicles, err := s.ListExemptedVehicles(ctx)
	if err != nil {
		return err
	}
	if len(vehicles) == 0 {
		for _, label := range seed.ExemptVehicleTypes {
			if _, err := s.CreateExemptedVehicle(ctx, model.ExemptedVehicle{Label: label}); err != nil {
				return err
			}
		}
		log.Printf("Seeded %d exempted vehicle types", len(seed.ExemptVehicleTypes))
	}

	dates, err := s.ListExemptedDates(ctx)
	if err != nil {
		return err
	}
	if len(dates) == 0 {
		var rules []model.DateRule
		for _, kv := range []struct {
			kind   model.DateRuleKind
			values []string
		}{
			{model.KindDayOfWeek, seed.ExemptDaysOfWeek},
			{model.KindHolidayDate, seed.ExemptHolidays},
			{model.KindMonth, seed.ExemptMonths},
		} {
			for _, v := range kv.values {
				rule, err := model.ParseDateRule(kv.kind, v)
				if err != nil {
					return fmt.Errorf("seed exempted date: %w", err)
				}
				rules = append(rules, rule)
			}
		}
		for _, rule := range rules {
			if _, err := s.CreateExemptedDate(ctx, model.ExemptedDate{Rule: rule}); err != nil {
				return err
			}
		}
		log.Printf("Seeded %d exempted dates", len(rules))
	}

	return nil
}
