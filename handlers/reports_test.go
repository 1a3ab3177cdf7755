package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectoasis/hydroflow/models"
)

func TestCreateReport(t *testing.T) {
	db := setupTestDB(t)
	area := createTestArea(t, db, "Report Area")
	well := createTestWell(t, db, area, models.StatusCompleted, 1000, 100)

	w := postJSON(t, CreateReport, "/api/reports", map[string]interface{}{
		"wellId":      well.ID,
		"issueType":   "no-water",
		"description": "Pump runs but nothing comes out",
		"contact":     map[string]string{"name": "Dana", "phone": "555-0101"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var report models.BreakageReport
	require.NoError(t, db.First(&report, "well_id = ?", well.ID).Error)
	assert.Equal(t, models.IssueNoWater, report.IssueType)
	assert.Equal(t, "Pump runs but nothing comes out", report.Summary)
	assert.Equal(t, models.ReportReported, report.Status)
	assert.False(t, report.Resolved)
	assert.Contains(t, string(report.ReporterContact), "Dana")

	// well flipped to broken by the issue type
	var stored models.Well
	require.NoError(t, db.First(&stored, "id = ?", well.ID).Error)
	assert.Equal(t, models.StatusBroken, stored.Status)
}

func TestCreateReportMaintenanceIssue(t *testing.T) {
	db := setupTestDB(t)
	area := createTestArea(t, db, "Report Area")
	well := createTestWell(t, db, area, models.StatusCompleted, 1000, 100)

	w := postJSON(t, CreateReport, "/api/reports", map[string]interface{}{
		"wellId":      well.ID,
		"issueType":   "low-pressure",
		"description": "Trickle only during mornings",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var stored models.Well
	require.NoError(t, db.First(&stored, "id = ?", well.ID).Error)
	assert.Equal(t, models.StatusUnderMaintenance, stored.Status)
}

func TestCreateReportUnknownWell(t *testing.T) {
	db := setupTestDB(t)

	w := postJSON(t, CreateReport, "/api/reports", map[string]interface{}{
		"wellId":      uuid.NewString(),
		"issueType":   "leak",
		"description": "Water pooling at the base",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// no orphan row may exist after the rejection
	var count int64
	require.NoError(t, db.Model(&models.BreakageReport{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateReportValidation(t *testing.T) {
	db := setupTestDB(t)
	area := createTestArea(t, db, "Report Area")
	well := createTestWell(t, db, area, models.StatusCompleted, 1000, 100)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing description", map[string]interface{}{"wellId": well.ID, "issueType": "leak"}},
		{"blank description", map[string]interface{}{"wellId": well.ID, "issueType": "leak", "description": "   "}},
		{"unknown issue type", map[string]interface{}{"wellId": well.ID, "issueType": "earthquake", "description": "x"}},
		{"bad well id", map[string]interface{}{"wellId": "nope", "issueType": "leak", "description": "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, CreateReport, "/api/reports", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.BreakageReport{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateReportWithPhotos(t *testing.T) {
	db := setupTestDB(t)
	area := createTestArea(t, db, "Report Area")
	well := createTestWell(t, db, area, models.StatusCompleted, 1000, 100)

	imageURL := "/uploads/20250101-120000-pump.jpg"
	w := postJSON(t, CreateReport, "/api/reports", map[string]interface{}{
		"wellId":      well.ID,
		"issueType":   "mechanical",
		"description": "Handle cracked",
		"imageUrl":    imageURL,
		"photos":      []string{"/uploads/a.jpg", "/uploads/b.jpg"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var report models.BreakageReport
	require.NoError(t, db.First(&report, "well_id = ?", well.ID).Error)
	require.NotNil(t, report.ImageURL)
	assert.Equal(t, imageURL, *report.ImageURL)
	assert.Len(t, []string(report.Photos), 2)
}
