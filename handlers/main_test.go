package handlers

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/projectoasis/hydroflow/config"
	"github.com/projectoasis/hydroflow/middleware"
	"github.com/projectoasis/hydroflow/models"
)

// setupTestDB opens a throwaway database and points the package-level
// handle at it. Raw SQL in migrations is postgres-only, so tests
// migrate the models directly.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Area{}, &models.Admin{}, &models.Well{},
		&models.WellProject{}, &models.BreakageReport{},
	))
	config.DB = db
	return db
}

func createTestArea(t *testing.T, db *gorm.DB, name string) *models.Area {
	t.Helper()
	area := &models.Area{
		Name:     name,
		Boundary: models.Polygon{{{-98, 30}, {-97, 30}, {-97, 31}, {-98, 31}, {-98, 30}}},
	}
	require.NoError(t, db.Create(area).Error)
	return area
}

func createTestWell(t *testing.T, db *gorm.DB, area *models.Area, status models.WellStatus, capacity, load int) *models.Well {
	t.Helper()
	well := &models.Well{
		Location:    models.NewPoint(30.5, -97.5),
		Status:      status,
		Capacity:    capacity,
		CurrentLoad: load,
		AreaID:      area.ID,
	}
	require.NoError(t, db.Create(well).Error)
	return well
}

func createTestAdmin(t *testing.T, db *gorm.DB, email string, area *models.Area) *models.Admin {
	t.Helper()
	admin := &models.Admin{Email: email, IsAdmin: true}
	if area != nil {
		admin.AreaID = &area.ID
	}
	require.NoError(t, admin.SetPassword("secret123"))
	require.NoError(t, db.Create(admin).Error)
	return admin
}

// authedRequest runs the handler behind the JWT middleware with a token
// for the given admin, matching how the router wires admin endpoints.
func authedRequest(t *testing.T, admin *models.Admin, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	token, err := middleware.GenerateToken(admin)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	middleware.JWTMiddleware(handler).ServeHTTP(w, req)
	return w
}
