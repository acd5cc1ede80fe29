package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"congestion-toll-backend/config"
	"congestion-toll-backend/internal/model"
)

func TestInit_SQLiteMigratesTables(t *testing.T) {
	gormDB, err := Init(&config.DatabaseConfig{Driver: config.DriverSQLite, DSN: "file:db_init_test?mode=memory&cache=shared"})
	require.NoError(t, err)
	sqlDB, _ := gormDB.DB()
	defer sqlDB.Close()

	for _, table := range []any{&model.TaxRate{}, &model.ExemptedVehicle{}, &model.ExemptedDateRecord{}, &model.TollPass{}} {
		assert.True(t, gormDB.Migrator().HasTable(table), "%T should be migrated", table)
	}
	assert.True(t, gormDB.Migrator().HasTable("exempted_dates"))
}

func TestInit_RejectsNonSQLDriver(t *testing.T) {
	_, err := Init(&config.DatabaseConfig{Driver: config.DriverBolt})
	assert.ErrorContains(t, err, "not an SQL driver")
}
