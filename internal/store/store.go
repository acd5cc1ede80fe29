package store

import (
	"context"
	"time"

	"congestion-toll-backend/internal/model"
)

// RateStore holds the time-of-day rate table.
type RateStore interface {
	// ListRates returns every interval in insertion order.
	ListRates(ctx context.Context) ([]model.TaxRate, error)
	CreateRate(ctx context.Context, rate model.TaxRate) (model.TaxRate, error)
	DeleteRate(ctx context.Context, id int64) error
}

// VehicleExemptionStore holds the exempted vehicle types.
type VehicleExemptionStore interface {
	ListExemptedVehicles(ctx context.Context) ([]model.ExemptedVehicle, error)
	// CreateExemptedVehicle stores v unless its label already exists, in which
	// case v is returned unchanged and no id is assigned.
	CreateExemptedVehicle(ctx context.Context, v model.ExemptedVehicle) (model.ExemptedVehicle, error)
	DeleteExemptedVehicle(ctx context.Context, id int64) error
}

// DateExemptionStore holds the exempted calendar rules.
type DateExemptionStore interface {
	ListExemptedDates(ctx context.Context) ([]model.ExemptedDate, error)
	CreateExemptedDate(ctx context.Context, d model.ExemptedDate) (model.ExemptedDate, error)
	DeleteExemptedDate(ctx context.Context, id int64) error
}

// PassageStore is the append-only history of charged passages.
type PassageStore interface {
	// FindPassages returns the passages of plate with from <= PassedAt <= to.
	FindPassages(ctx context.Context, plate string, from, to time.Time) ([]model.TollPass, error)
	AppendPassage(ctx context.Context, p model.TollPass) (model.TollPass, error)
	ListPassages(ctx context.Context, plate string) ([]model.TollPass, error)
	DeletePassage(ctx context.Context, id int64) error
}

// Store defines the interface for all persistence operations. Deleting an
// unknown id is a no-op on every backend.
type Store interface {
	RateStore
	VehicleExemptionStore
	DateExemptionStore
	PassageStore
}
