package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"congestion-toll-backend/internal/model"
)

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store. Tables must already be
// migrated, see db.Init.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) ListRates(ctx context.Context) ([]model.TaxRate, error) {
	var rates []model.TaxRate
	if err := s.db.WithContext(ctx).Order("id").Find(&rates).Error; err != nil {
		return nil, fmt.Errorf("failed to list tax rates: %w", err)
	}
	return rates, nil
}

func (s *gormStore) CreateRate(ctx context.Context, rate model.TaxRate) (model.TaxRate, error) {
	rate.ID = 0
	if err := s.db.WithContext(ctx).Create(&rate).Error; err != nil {
		return model.TaxRate{}, fmt.Errorf("failed to create tax rate: %w", err)
	}
	return rate, nil
}

func (s *gormStore) DeleteRate(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Delete(&model.TaxRate{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete tax rate %d: %w", id, err)
	}
	return nil
}

func (s *gormStore) ListExemptedVehicles(ctx context.Context) ([]model.ExemptedVehicle, error) {
	var vehicles []model.ExemptedVehicle
	if err := s.db.WithContext(ctx).Order("id").Find(&vehicles).Error; err != nil {
		return nil, fmt.Errorf("failed to list exempted vehicles: %w", err)
	}
	return vehicles, nil
}

func (s *gormStore) CreateExemptedVehicle(ctx context.Context, v model.ExemptedVehicle) (model.ExemptedVehicle, error) {
	created := v
	created.ID = 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.ExemptedVehicle{}).Where("label = ?", v.Label).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			created = v
			return nil
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return model.ExemptedVehicle{}, fmt.Errorf("failed to create exempted vehicle %q: %w", v.Label, err)
	}
	return created, nil
}

func (s *gormStore) DeleteExemptedVehicle(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Delete(&model.ExemptedVehicle{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete exempted vehicle %d: %w", id, err)
	}
	return nil
}

func (s *gormStore) ListExemptedDates(ctx context.Context) ([]model.ExemptedDate, error) {
	var records []model.ExemptedDateRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list exempted dates: %w", err)
	}
	dates := make([]model.ExemptedDate, 0, len(records))
	for _, r := range records {
		d, err := model.ExemptedDateFromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("corrupt exempted date %d: %w", r.ID, err)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func (s *gormStore) CreateExemptedDate(ctx context.Context, d model.ExemptedDate) (model.ExemptedDate, error) {
	if d.Rule == nil {
		return model.ExemptedDate{}, model.ErrInvalidDateRule
	}
	record := d.ToRecord()
	record.ID = 0
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return model.ExemptedDate{}, fmt.Errorf("failed to create exempted date: %w", err)
	}
	d.ID = record.ID
	return d, nil
}

func (s *gormStore) DeleteExemptedDate(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Delete(&model.ExemptedDateRecord{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete exempted date %d: %w", id, err)
	}
	return nil
}

func (s *gormStore) FindPassages(ctx context.Context, plate string, from, to time.Time) ([]model.TollPass, error) {
	var passes []model.TollPass
	err := s.db.WithContext(ctx).
		Where("plate_number = ? AND passed_at >= ? AND passed_at <= ?", plate, from.UTC(), to.UTC()).
		Order("id").
		Find(&passes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query passages for %s: %w", plate, err)
	}
	return passes, nil
}

func (s *gormStore) AppendPassage(ctx context.Context, p model.TollPass) (model.TollPass, error) {
	p.ID = 0
	// sqlite compares timestamps as text, so every row shares one offset
	p.PassedAt = p.PassedAt.UTC()
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.TollPass{}, fmt.Errorf("failed to append passage for %s: %w", p.PlateNumber, err)
	}
	return p, nil
}

func (s *gormStore) ListPassages(ctx context.Context, plate string) ([]model.TollPass, error) {
	q := s.db.WithContext(ctx).Order("id")
	if plate != "" {
		q = q.Where("plate_number = ?", plate)
	}
	var passes []model.TollPass
	if err := q.Find(&passes).Error; err != nil {
		return nil, fmt.Errorf("failed to list passages: %w", err)
	}
	return passes, nil
}

func (s *gormStore) DeletePassage(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Delete(&model.TollPass{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete passage %d: %w", id, err)
	}
	return nil
}
