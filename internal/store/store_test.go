package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"congestion-toll-backend/config"
	"congestion-toll-backend/internal/db"
	"congestion-toll-backend/internal/model"
)

// backends returns a fresh instance of every store implementation.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	sqliteDB, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", regexp.MustCompile(`\W`).ReplaceAllString(t.Name(), "_"))), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(sqliteDB))
	t.Cleanup(func() {
		sqlDB, _ := sqliteDB.DB()
		sqlDB.Close()
	})

	boltStore, closeBolt, err := OpenBoltStore(filepath.Join(t.TempDir(), "toll.db"))
	require.NoError(t, err)
	t.Cleanup(func() { closeBolt() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"gorm":   NewGormStore(sqliteDB),
		"bolt":   boltStore,
	}
}

func TestStore_Rates(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			first, err := s.CreateRate(ctx, model.TaxRate{StartTime: model.NewClockTime(6, 0, 0), EndTime: model.NewClockTime(6, 29, 0), Amount: 8})
			require.NoError(t, err)
			second, err := s.CreateRate(ctx, model.TaxRate{StartTime: model.NewClockTime(18, 30, 0), EndTime: model.NewClockTime(5, 59, 0), Amount: 0})
			require.NoError(t, err)
			third, err := s.CreateRate(ctx, model.TaxRate{StartTime: model.NewClockTime(6, 30, 0), EndTime: model.NewClockTime(6, 59, 0), Amount: 13})
			require.NoError(t, err)
			assert.Less(t, first.ID, second.ID)
			assert.Less(t, second.ID, third.ID)

			rates, err := s.ListRates(ctx)
			require.NoError(t, err)
			assert.Equal(t, []model.TaxRate{first, second, third}, rates, "insertion order is kept")

			require.NoError(t, s.DeleteRate(ctx, second.ID))
			require.NoError(t, s.DeleteRate(ctx, 9999), "unknown id is a no-op")

			rates, err = s.ListRates(ctx)
			require.NoError(t, err)
			assert.Equal(t, []model.TaxRate{first, third}, rates)
		})
	}
}

func TestStore_ExemptedVehicles(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			tractor, err := s.CreateExemptedVehicle(ctx, model.ExemptedVehicle{Label: "Tractor"})
			require.NoError(t, err)
			assert.NotZero(t, tractor.ID)

			dup, err := s.CreateExemptedVehicle(ctx, model.ExemptedVehicle{Label: "Tractor"})
			require.NoError(t, err)
			assert.Equal(t, model.ExemptedVehicle{Label: "Tractor"}, dup, "duplicate is returned unchanged")

			other, err := s.CreateExemptedVehicle(ctx, model.ExemptedVehicle{Label: "tractor"})
			require.NoError(t, err)
			assert.NotZero(t, other.ID, "labels are case-sensitive")

			vehicles, err := s.ListExemptedVehicles(ctx)
			require.NoError(t, err)
			assert.Equal(t, []model.ExemptedVehicle{tractor, other}, vehicles)

			require.NoError(t, s.DeleteExemptedVehicle(ctx, tractor.ID))
			require.NoError(t, s.DeleteExemptedVehicle(ctx, tractor.ID))
			vehicles, err = s.ListExemptedVehicles(ctx)
			require.NoError(t, err)
			assert.Equal(t, []model.ExemptedVehicle{other}, vehicles)
		})
	}
}

func TestStore_ExemptedDates(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			month, err := s.CreateExemptedDate(ctx, model.ExemptedDate{Rule: model.Month{Month: time.July}})
			require.NoError(t, err)
			saturday, err := s.CreateExemptedDate(ctx, model.ExemptedDate{Rule: model.DayOfWeek{Day: time.Saturday}})
			require.NoError(t, err)
			holiday, err := s.CreateExemptedDate(ctx, model.ExemptedDate{ID: 77, Rule: model.HolidayDate{Year: 2023, Month: time.December, Day: 25}})
			require.NoError(t, err)
			assert.NotEqual(t, int64(77), holiday.ID, "ids are always assigned by the store")

			dates, err := s.ListExemptedDates(ctx)
			require.NoError(t, err)
			assert.ElementsMatch(t, []model.ExemptedDate{month, saturday, holiday}, dates)

			require.NoError(t, s.DeleteExemptedDate(ctx, saturday.ID))
			require.NoError(t, s.DeleteExemptedDate(ctx, 12345))
			dates, err = s.ListExemptedDates(ctx)
			require.NoError(t, err)
			assert.ElementsMatch(t, []model.ExemptedDate{month, holiday}, dates)

			_, err = s.CreateExemptedDate(ctx, model.ExemptedDate{})
			assert.ErrorIs(t, err, model.ErrInvalidDateRule)
		})
	}
}

func TestStore_Passages(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 11, 13, 0, 0, 0, 0, time.UTC)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var stored []model.TollPass
			endOfDay := day.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
			// previous day, start bound, inside, end bound
			for i, ts := range []time.Time{day.Add(-time.Second), day, day.Add(7 * time.Hour), endOfDay} {
				p, err := s.AppendPassage(ctx, model.TollPass{PlateNumber: "ABC123", PassedAt: ts, Amount: float64(i)})
				require.NoError(t, err)
				stored = append(stored, p)
			}
			_, err := s.AppendPassage(ctx, model.TollPass{PlateNumber: "OTHER", PassedAt: day.Add(7 * time.Hour), Amount: 18})
			require.NoError(t, err)

			for i := 1; i < len(stored); i++ {
				assert.Less(t, stored[i-1].ID, stored[i].ID)
			}

			found, err := s.FindPassages(ctx, "ABC123", day, endOfDay)
			require.NoError(t, err)
			var amounts []float64
			for _, p := range found {
				assert.Equal(t, "ABC123", p.PlateNumber)
				amounts = append(amounts, p.Amount)
			}
			assert.ElementsMatch(t, []float64{1, 2, 3}, amounts, "both bounds are inclusive")

			all, err := s.ListPassages(ctx, "ABC123")
			require.NoError(t, err)
			assert.Len(t, all, 4)

			require.NoError(t, s.DeletePassage(ctx, stored[0].ID))
			require.NoError(t, s.DeletePassage(ctx, 4242))
			everything, err := s.ListPassages(ctx, "")
			require.NoError(t, err)
			assert.Len(t, everything, 4)
		})
	}
}

func TestMemoryStore_ConcurrentAppendsGetUniqueIDs(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := s.AppendPassage(ctx, model.TollPass{PlateNumber: "ABC123", PassedAt: time.Now(), Amount: 8})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	passes, err := s.ListPassages(ctx, "ABC123")
	require.NoError(t, err)
	require.Len(t, passes, n)
	ids := make(map[int64]struct{}, n)
	for _, p := range passes {
		ids[p.ID] = struct{}{}
	}
	assert.Len(t, ids, n)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, Seed(ctx, s, config.DefaultSeed()))

	rates, err := s.ListRates(ctx)
	require.NoError(t, err)
	require.Len(t, rates, 10)
	assert.Equal(t, model.NewClockTime(18, 30, 0), rates[9].StartTime)
	assert.Equal(t, model.NewClockTime(5, 59, 0), rates[9].EndTime)

	vehicles, err := s.ListExemptedVehicles(ctx)
	require.NoError(t, err)
	assert.Len(t, vehicles, 6)

	dates, err := s.ListExemptedDates(ctx)
	require.NoError(t, err)
	var rules []model.DateRule
	for _, d := range dates {
		rules = append(rules, d.Rule)
	}
	assert.ElementsMatch(t, []model.DateRule{
		model.DayOfWeek{Day: time.Saturday},
		model.DayOfWeek{Day: time.Sunday},
		model.Month{Month: time.July},
	}, rules)

	// a second run leaves populated stores alone
	require.NoError(t, Seed(ctx, s, config.DefaultSeed()))
	rates, err = s.ListRates(ctx)
	require.NoError(t, err)
	assert.Len(t, rates, 10)
}

func TestSeed_InvalidValues(t *testing.T) {
	ctx := context.Background()

	err := Seed(ctx, NewMemoryStore(), &config.SeedConfig{Rates: []config.RateSeedConfig{{Start: "25:00", End: "26:00"}}})
	assert.ErrorContains(t, err, "seed rate start")

	err = Seed(ctx, NewMemoryStore(), &config.SeedConfig{ExemptMonths: []string{"Smarch"}})
	assert.ErrorIs(t, err, model.ErrInvalidDateRule)
}

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqlDB,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestGormStore_SQL(t *testing.T) {
	testCases := []struct {
		name             string
		mockExpectations func(mock sqlmock.Sqlmock)
		run              func(s Store) error
		expectedErr      bool
	}{
		{
			name: "Create rate inserts clock times as text",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "tax_rates"`)).
					WithArgs("06:00:00", "06:29:00", 8.0).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
				mock.ExpectCommit()
			},
			run: func(s Store) error {
				rate, err := s.CreateRate(context.Background(), model.TaxRate{StartTime: model.NewClockTime(6, 0, 0), EndTime: model.NewClockTime(6, 29, 0), Amount: 8})
				if err == nil && rate.ID != 1 {
					return fmt.Errorf("unexpected id %d", rate.ID)
				}
				return err
			},
		},
		{
			name: "List rates in id order",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "tax_rates" ORDER BY id`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "start_time", "end_time", "amount"}).
						AddRow(1, "06:00:00", "06:29:00", 8.0).
						AddRow(2, "06:30:00", "06:59:00", 13.0))
			},
			run: func(s Store) error {
				rates, err := s.ListRates(context.Background())
				if err == nil && (len(rates) != 2 || rates[1].StartTime != model.NewClockTime(6, 30, 0)) {
					return fmt.Errorf("unexpected rates %v", rates)
				}
				return err
			},
		},
		{
			name: "Delete exempted date by id",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "exempted_dates" WHERE "exempted_dates"."id" = $1`)).
					WithArgs(int64(3)).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectCommit()
			},
			run: func(s Store) error {
				return s.DeleteExemptedDate(context.Background(), 3)
			},
		},
		{
			name: "Find passages filters by plate and range",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT \* FROM "toll_passes" WHERE plate_number = \$1 AND passed_at >= \$2 AND passed_at <= \$3`).
					WithArgs("ABC123", Any{}, Any{}).
					WillReturnRows(sqlmock.NewRows([]string{"id", "plate_number", "passed_at", "amount"}).
						AddRow(5, "ABC123", time.Date(2024, 11, 13, 6, 20, 0, 0, time.UTC), 8.0))
			},
			run: func(s Store) error {
				day := time.Date(2024, 11, 13, 0, 0, 0, 0, time.UTC)
				passes, err := s.FindPassages(context.Background(), "ABC123", day, day.Add(24*time.Hour-time.Second))
				if err == nil && (len(passes) != 1 || passes[0].Amount != 8) {
					return fmt.Errorf("unexpected passes %v", passes)
				}
				return err
			},
		},
		{
			name: "Query failure is wrapped",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "exempted_vehicles"`)).
					WillReturnError(errors.New("connection refused"))
			},
			run: func(s Store) error {
				_, err := s.ListExemptedVehicles(context.Background())
				return err
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			s := NewGormStore(gormDB)

			tc.mockExpectations(mock)

			err := tc.run(s)
			if tc.expectedErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}
