package store

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"congestion-toll-backend/internal/model"
)

// dateKinds fixes the order in which the date buckets are listed.
var dateKinds = []model.DateRuleKind{model.KindDayOfWeek, model.KindHolidayDate, model.KindMonth}

// memoryStore keeps every record in process memory. State is lost on restart.
type memoryStore struct {
	mu       sync.RWMutex
	rates    []model.TaxRate
	vehicles []model.ExemptedVehicle
	dates    map[model.DateRuleKind][]model.ExemptedDate
	passages []model.TollPass

	rateSeq    atomic.Int64
	vehicleSeq atomic.Int64
	dateSeq    atomic.Int64
	passageSeq atomic.Int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{
		dates: make(map[model.DateRuleKind][]model.ExemptedDate, len(dateKinds)),
	}
}

func (s *memoryStore) ListRates(ctx context.Context) ([]model.TaxRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rates), nil
}

func (s *memoryStore) CreateRate(ctx context.Context, rate model.TaxRate) (model.TaxRate, error) {
	rate.ID = s.rateSeq.Add(1)
	s.mu.Lock()
	s.rates = append(s.rates, rate)
	s.mu.Unlock()
	return rate, nil
}

func (s *memoryStore) DeleteRate(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates = slices.DeleteFunc(s.rates, func(r model.TaxRate) bool { return r.ID == id })
	return nil
}

func (s *memoryStore) ListExemptedVehicles(ctx context.Context) ([]model.ExemptedVehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.vehicles), nil
}

func (s *memoryStore) CreateExemptedVehicle(ctx context.Context, v model.ExemptedVehicle) (model.ExemptedVehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.vehicles {
		if existing.Label == v.Label {
			return v, nil
		}
	}
	v.ID = s.vehicleSeq.Add(1)
	s.vehicles = append(s.vehicles, v)
	return v, nil
}

func (s *memoryStore) DeleteExemptedVehicle(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles = slices.DeleteFunc(s.vehicles, func(v model.ExemptedVehicle) bool { return v.ID == id })
	return nil
}

func (s *memoryStore) ListExemptedDates(ctx context.Context) ([]model.ExemptedDate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ExemptedDate
	for _, kind := range dateKinds {
		out = append(out, s.dates[kind]...)
	}
	return out, nil
}

func (s *memoryStore) CreateExemptedDate(ctx context.Context, d model.ExemptedDate) (model.ExemptedDate, error) {
	if d.Rule == nil {
		return model.ExemptedDate{}, model.ErrInvalidDateRule
	}
	d.ID = s.dateSeq.Add(1)
	kind := d.Rule.Kind()
	s.mu.Lock()
	s.dates[kind] = append(s.dates[kind], d)
	s.mu.Unlock()
	return d, nil
}

func (s *memoryStore) DeleteExemptedDate(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, kind := range dateKinds {
		bucket := s.dates[kind]
		if i := slices.IndexFunc(bucket, func(d model.ExemptedDate) bool { return d.ID == id }); i >= 0 {
			s.dates[kind] = slices.Delete(bucket, i, i+1)
			return nil
		}
	}
	return nil
}

func (s *memoryStore) FindPassages(ctx context.Context, plate string, from, to time.Time) ([]model.TollPass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.TollPass
	for _, p := range s.passages {
		if p.PlateNumber != plate {
			continue
		}
		if p.PassedAt.Before(from) || p.PassedAt.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *memoryStore) AppendPassage(ctx context.Context, p model.TollPass) (model.TollPass, error) {
	p.ID = s.passageSeq.Add(1)
	s.mu.Lock()
	s.passages = append(s.passages, p)
	s.mu.Unlock()
	return p, nil
}

func (s *memoryStore) ListPassages(ctx context.Context, plate string) ([]model.TollPass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if plate == "" {
		return slices.Clone(s.passages), nil
	}
	var out []model.TollPass
	for _, p := range s.passages {
		if p.PlateNumber == plate {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memoryStore) DeletePassage(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passages = slices.DeleteFunc(s.passages, func(p model.TollPass) bool { return p.ID == id })
	return nil
}
