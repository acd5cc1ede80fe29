package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"

	"congestion-toll-backend/internal/model"
)

var (
	ratesBucket    = []byte("tax_rates")
	vehiclesBucket = []byte("exempted_vehicles")
	datesBucket    = []byte("exempted_dates")
	passesBucket   = []byte("toll_passes")
)

// boltStore keeps each record type in its own bucket, keyed by the big-endian
// id so that cursor order equals insertion order.
type boltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (or creates) the database file at path and ensures the
// buckets exist. The caller owns the returned closer.
func OpenBoltStore(path string) (Store, func() error, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{ratesBucket, vehiclesBucket, datesBucket, passesBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create bolt buckets: %w", err)
	}

	return &boltStore{db: db}, db.Close, nil
}

func itob(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

// listBucket decodes every value of bucket into a fresh T.
func listBucket[T any](db *bolt.DB, bucket []byte, keep func(T) bool) ([]T, error) {
	var out []T
	err := db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).ForEach(func(_, v []byte) error {
			var item T
			if err := json.Unmarshal(v, &item); err != nil {
				return err
			}
			if keep == nil || keep(item) {
				out = append(out, item)
			}
			return nil
		})
	})
	return out, err
}

// insert assigns the next bucket sequence through setID and stores the value.
func insert[T any](db *bolt.DB, bucket []byte, item *T, setID func(*T, int64)) error {
	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		id := int64(seq)
		setID(item, id)
		data, err := json.Marshal(item)
		if err != nil {
			return err
		}
		return b.Put(itob(id), data)
	})
}

func deleteKey(db *bolt.DB, bucket []byte, id int64) error {
	return db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete(itob(id))
	})
}

func (s *boltStore) ListRates(ctx context.Context) ([]model.TaxRate, error) {
	rates, err := listBucket[model.TaxRate](s.db, ratesBucket, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list tax rates: %w", err)
	}
	return rates, nil
}

func (s *boltStore) CreateRate(ctx context.Context, rate model.TaxRate) (model.TaxRate, error) {
	if err := insert(s.db, ratesBucket, &rate, func(r *model.TaxRate, id int64) { r.ID = id }); err != nil {
		return model.TaxRate{}, fmt.Errorf("failed to create tax rate: %w", err)
	}
	return rate, nil
}

func (s *boltStore) DeleteRate(ctx context.Context, id int64) error {
	return deleteKey(s.db, ratesBucket, id)
}

func (s *boltStore) ListExemptedVehicles(ctx context.Context) ([]model.ExemptedVehicle, error) {
	vehicles, err := listBucket[model.ExemptedVehicle](s.db, vehiclesBucket, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list exempted vehicles: %w", err)
	}
	return vehicles, nil
}

func (s *boltStore) CreateExemptedVehicle(ctx context.Context, v model.ExemptedVehicle) (model.ExemptedVehicle, error) {
	created := v
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(vehiclesBucket)
		c := b.Cursor()
		for k, raw := c.First(); k != nil; k, raw = c.Next() {
			var existing model.ExemptedVehicle
			if err := json.Unmarshal(raw, &existing); err != nil {
				return err
			}
			if existing.Label == v.Label {
				return nil
			}
		}

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		created.ID = int64(seq)
		data, err := json.Marshal(created)
		if err != nil {
			return err
		}
		return b.Put(itob(created.ID), data)
	})
	if err != nil {
		return model.ExemptedVehicle{}, fmt.Errorf("failed to create exempted vehicle %q: %w", v.Label, err)
	}
	return created, nil
}

func (s *boltStore) DeleteExemptedVehicle(ctx context.Context, id int64) error {
	return deleteKey(s.db, vehiclesBucket, id)
}

func (s *boltStore) ListExemptedDates(ctx context.Context) ([]model.ExemptedDate, error) {
	records, err := listBucket[model.ExemptedDateRecord](s.db, datesBucket, nil)
	if err != nil {
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

func (s *boltStore) CreateExemptedDate(ctx context.Context, d model.ExemptedDate) (model.ExemptedDate, error) {
	if d.Rule == nil {
		return model.ExemptedDate{}, model.ErrInvalidDateRule
	}
	record := d.ToRecord()
	if err := insert(s.db, datesBucket, &record, func(r *model.ExemptedDateRecord, id int64) { r.ID = id }); err != nil {
		return model.ExemptedDate{}, fmt.Errorf("failed to create exempted date: %w", err)
	}
	d.ID = record.ID
	return d, nil
}

func (s *boltStore) DeleteExemptedDate(ctx context.Context, id int64) error {
	return deleteKey(s.db, datesBucket, id)
}

func (s *boltStore) FindPassages(ctx context.Context, plate string, from, to time.Time) ([]model.TollPass, error) {
	passes, err := listBucket(s.db, passesBucket, func(p model.TollPass) bool {
		return p.PlateNumber == plate && !p.PassedAt.Before(from) && !p.PassedAt.After(to)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query passages for %s: %w", plate, err)
	}
	return passes, nil
}

func (s *boltStore) AppendPassage(ctx context.Context, p model.TollPass) (model.TollPass, error) {
	if err := insert(s.db, passesBucket, &p, func(t *model.TollPass, id int64) { t.ID = id }); err != nil {
		return model.TollPass{}, fmt.Errorf("failed to append passage for %s: %w", p.PlateNumber, err)
	}
	return p, nil
}

func (s *boltStore) ListPassages(ctx context.Context, plate string) ([]model.TollPass, error) {
	var keep func(model.TollPass) bool
	if plate != "" {
		keep = func(p model.TollPass) bool { return p.PlateNumber == plate }
	}
	passes, err := listBucket(s.db, passesBucket, keep)
	if err != nil {
		return nil, fmt.Errorf("failed to list passages: %w", err)
	}
	return passes, nil
}

func (s *boltStore) DeletePassage(ctx context.Context, id int64) error {
	return deleteKey(s.db, passesBucket, id)
}
