package models

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

// Geometry columns must migrate on the sqlite driver too: the PostGIS
// column type only applies under the postgres dialector.
func TestGeometryColumnsMigrateOnSQLite(t *testing.T) {
	db := openDB(t)
	require.NoError(t, db.AutoMigrate(&Area{}, &Admin{}, &Well{}, &WellProject{}, &BreakageReport{}))

	area := Area{
		Name:     "Round Trip",
		Boundary: Polygon{{{-98, 30}, {-97, 30}, {-97, 31}, {-98, 31}, {-98, 30}}},
	}
	require.NoError(t, db.Create(&area).Error)

	sa := Polygon{{{-97.6, 30.4}, {-97.4, 30.4}, {-97.4, 30.6}, {-97.6, 30.4}}}
	well := Well{
		Location:    NewPoint(30.5, -97.5),
		ServiceArea: &sa,
		Status:      StatusCompleted,
		Capacity:    100,
		AreaID:      area.ID,
	}
	require.NoError(t, db.Create(&well).Error)

	var stored Well
	require.NoError(t, db.First(&stored, "id = ?", well.ID).Error)
	assert.InDelta(t, 30.5, stored.Location.Lat(), 1e-9)
	assert.InDelta(t, -97.5, stored.Location.Lon(), 1e-9)
	require.NotNil(t, stored.ServiceArea)
	assert.Len(t, (*stored.ServiceArea)[0], 4)

	var storedArea Area
	require.NoError(t, db.First(&storedArea, "id = ?", area.ID).Error)
	assert.Len(t, storedArea.Boundary[0], 5)
}

// A demoted account must stay demoted: a column default would make gorm
// drop the false value on insert.
func TestAdminIsAdminFalsePersists(t *testing.T) {
	db := openDB(t)
	require.NoError(t, db.AutoMigrate(&Area{}, &Admin{}))

	demoted := Admin{Email: "demoted@example.com", IsAdmin: false}
	require.NoError(t, demoted.SetPassword("secret123"))
	require.NoError(t, db.Create(&demoted).Error)

	var stored Admin
	require.NoError(t, db.First(&stored, "email = ?", "demoted@example.com").Error)
	assert.False(t, stored.IsAdmin)

	promoted := Admin{Email: "promoted@example.com", IsAdmin: true}
	require.NoError(t, promoted.SetPassword("secret123"))
	require.NoError(t, db.Create(&promoted).Error)
	require.NoError(t, db.First(&stored, "email = ?", "promoted@example.com").Error)
	assert.True(t, stored.IsAdmin)
}
