package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/projectoasis/hydroflow/config"
	"github.com/projectoasis/hydroflow/middleware"
	"github.com/projectoasis/hydroflow/models"
	"github.com/projectoasis/hydroflow/utils"
)

type dashboardWell struct {
	models.Well
	IssueCount  int64 `json:"issueCount"`
	ReportCount int64 `json:"reportCount"`
}

type dashboardStats struct {
	Total       int64 `json:"total"`
	Operational int64 `json:"operational"`
	Broken      int64 `json:"broken"`
	Maintenance int64 `json:"maintenance"`
	Building    int64 `json:"building"`
	Draft       int64 `json:"draft"`
}

// Dashboard returns the admin's wells with open-issue counts, the
// reports against them, and fleet stats. Admins with an assigned area
// see only that area; unassigned admins see everything. Scope comes
// from the admin's current row, not the token, so a reassignment takes
// effect before the token expires.
func Dashboard(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetAdmin(r)

	query := config.DB.Model(&models.Well{}).Preload("Project")
	if admin != nil && admin.AreaID != nil {
		query = query.Where("area_id = ?", admin.AreaID)
	}
	var wells []models.Well
	if err := query.Order("created_at").Find(&wells).Error; err != nil {
		writeDBError(w, err)
		return
	}

	wellIDs := make([]uuid.UUID, len(wells))
	for i := range wells {
		wellIDs[i] = wells[i].ID
	}

	var reports []models.BreakageReport
	if len(wellIDs) > 0 {
		if err := config.DB.Where("well_id IN ?", wellIDs).
			Order("created_at DESC").Find(&reports).Error; err != nil {
			writeDBError(w, err)
			return
		}
	}

	openByWell := make(map[uuid.UUID]int64)
	totalByWell := make(map[uuid.UUID]int64)
	for i := range reports {
		totalByWell[reports[i].WellID]++
		if reports[i].Status != models.ReportFixed {
			openByWell[reports[i].WellID]++
		}
	}

	entries := make([]dashboardWell, 0, len(wells))
	stats := dashboardStats{Total: int64(len(wells))}
	for i := range wells {
		well := wells[i]
		entries = append(entries, dashboardWell{
			Well:        well,
			IssueCount:  openByWell[well.ID],
			ReportCount: totalByWell[well.ID],
		})
		switch well.Status {
		case models.StatusCompleted:
			stats.Operational++
		case models.StatusBroken:
			stats.Broken++
		case models.StatusUnderMaintenance:
			stats.Maintenance++
		case models.StatusBuilding:
			stats.Building++
		case models.StatusDraft:
			stats.Draft++
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"wells":   entries,
		"reports": reports,
		"stats":   stats,
	})
}

type projectReq struct {
	ProjectName           string   `json:"projectName"`
	EstimatedBuildCost    float64  `json:"estimatedBuildCost"`
	PredictedLifetimeCost *float64 `json:"predictedLifetimeCost"`
	Notes                 string   `json:"notes"`
}

type wellReq struct {
	Latitude    *float64         `json:"latitude"`
	Longitude   *float64         `json:"longitude"`
	Status      *string          `json:"status"`
	Capacity    *int             `json:"capacity"`
	CurrentLoad *int             `json:"currentLoad"`
	Weight      *int             `json:"weight"`
	AreaID      *uuid.UUID       `json:"areaId"`
	ServiceArea *json.RawMessage `json:"serviceArea"`
	ServiceWKT  *string          `json:"serviceAreaWkt"`
	Project     *projectReq      `json:"project"`
}

// parseServiceArea accepts either a GeoJSON polygon body or a WKT
// literal and returns a validated, closed polygon.
func parseServiceArea(raw *json.RawMessage, wktStr *string) (*models.Polygon, error) {
	var poly orb.Polygon
	switch {
	case raw != nil:
		geom, err := geojson.UnmarshalGeometry(*raw)
		if err != nil {
			return nil, err
		}
		p, ok := geom.Geometry().(orb.Polygon)
		if !ok {
			return nil, errNotPolygon
		}
		poly = p
	case wktStr != nil:
		p, err := utils.ParsePolygonWKT(*wktStr)
		if err != nil {
			return nil, err
		}
		poly = p
	default:
		return nil, nil
	}
	if err := utils.ValidatePolygon(poly); err != nil {
		return nil, err
	}
	closed := models.Polygon(utils.CloseRing(poly))
	return &closed, nil
}

var errNotPolygon = errors.New("expected a Polygon geometry")

// CreateWell registers a new well. The area comes from the admin's
// claims; unassigned admins must name one in the body.
func CreateWell(w http.ResponseWriter, r *http.Request) {
	var req wellReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		writeError(w, http.StatusBadRequest, "latitude and longitude are required")
		return
	}
	if err := utils.ValidateCoordinate(*req.Latitude, *req.Longitude); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Capacity == nil || req.CurrentLoad == nil {
		writeError(w, http.StatusBadRequest, "capacity and currentLoad are required")
		return
	}
	if *req.Capacity < 0 {
		writeError(w, http.StatusBadRequest, "capacity must be non-negative")
		return
	}
	if *req.CurrentLoad < 0 {
		writeError(w, http.StatusBadRequest, "current load must be non-negative")
		return
	}

	well := models.Well{
		Location:    models.NewPoint(*req.Latitude, *req.Longitude),
		Status:      models.StatusDraft,
		Capacity:    *req.Capacity,
		CurrentLoad: *req.CurrentLoad,
	}
	if req.Status != nil {
		status := models.WellStatus(*req.Status)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		well.Status = status
	}
	if req.Weight != nil {
		well.Weight = *req.Weight
	}

	sa, err := parseServiceArea(req.ServiceArea, req.ServiceWKT)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid service area: "+err.Error())
		return
	}
	well.ServiceArea = sa

	admin := middleware.GetAdmin(r)
	switch {
	case admin != nil && admin.AreaID != nil:
		well.AreaID = *admin.AreaID
	case req.AreaID != nil:
		well.AreaID = *req.AreaID
	default:
		writeError(w, http.StatusBadRequest, "areaId is required")
		return
	}
	var areaCount int64
	if err := config.DB.Model(&models.Area{}).Where("id = ?", well.AreaID).Count(&areaCount).Error; err != nil {
		writeDBError(w, err)
		return
	}
	if areaCount == 0 {
		writeError(w, http.StatusBadRequest, "area not found")
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&well).Error; err != nil {
			return err
		}
		if req.Project != nil {
			project := models.WellProject{
				WellID:                well.ID,
				ProjectName:           req.Project.ProjectName,
				EstimatedBuildCost:    req.Project.EstimatedBuildCost,
				PredictedLifetimeCost: req.Project.PredictedLifetimeCost,
				Notes:                 req.Project.Notes,
			}
			if err := tx.Create(&project).Error; err != nil {
				return err
			}
			well.Project = &project
		}
		return nil
	})
	if err != nil {
		writeDBError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"well_id": well.ID,
		"area_id": well.AreaID,
		"status":  well.Status,
	}).Info("well created")
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "well": well})
}

// UpdateWell applies a partial update. Only fields present in the body
// change.
func UpdateWell(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid well id")
		return
	}
	var req wellReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var well models.Well
	if err := config.DB.First(&well, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "well not found")
		return
	}

	if req.Latitude != nil || req.Longitude != nil {
		if req.Latitude == nil || req.Longitude == nil {
			writeError(w, http.StatusBadRequest, "latitude and longitude must be updated together")
			return
		}
		if err := utils.ValidateCoordinate(*req.Latitude, *req.Longitude); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		well.Location = models.NewPoint(*req.Latitude, *req.Longitude)
	}
	if req.Status != nil {
		status := models.WellStatus(*req.Status)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		well.Status = status
	}
	if req.Capacity != nil {
		if *req.Capacity < 0 {
			writeError(w, http.StatusBadRequest, "capacity must be non-negative")
			return
		}
		well.Capacity = *req.Capacity
	}
	if req.CurrentLoad != nil {
		if *req.CurrentLoad < 0 {
			writeError(w, http.StatusBadRequest, "current load must be non-negative")
			return
		}
		well.CurrentLoad = *req.CurrentLoad
	}
	if req.Weight != nil {
		well.Weight = *req.Weight
	}
	if req.ServiceArea != nil || req.ServiceWKT != nil {
		sa, err := parseServiceArea(req.ServiceArea, req.ServiceWKT)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid service area: "+err.Error())
			return
		}
		well.ServiceArea = sa
	}

	if err := config.DB.Save(&well).Error; err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "well": well})
}

// DeleteWell removes a well along with its project and reports.
func DeleteWell(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid well id")
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var well models.Well
		if err := tx.First(&well, "id = ?", id).Error; err != nil {
			return err
		}
		// explicit child cleanup so drivers without FK cascades behave
		// the same as Postgres
		if err := tx.Where("well_id = ?", id).Delete(&models.BreakageReport{}).Error; err != nil {
			return err
		}
		if err := tx.Where("well_id = ?", id).Delete(&models.WellProject{}).Error; err != nil {
			return err
		}
		return tx.Delete(&well).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "well not found")
			return
		}
		writeDBError(w, err)
		return
	}

	logrus.WithField("well_id", id).Info("well deleted")
	w.WriteHeader(http.StatusNoContent)
}

// ResolveReport marks a report fixed. Resolving an already-resolved
// report is a no-op that still returns 200.
func ResolveReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	var report models.BreakageReport
	if err := config.DB.First(&report, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}

	if !report.Resolved {
		now := time.Now()
		report.Status = models.ReportFixed
		report.Resolved = true
		report.ResolvedAt = &now
		if err := config.DB.Save(&report).Error; err != nil {
			writeDBError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "report": report})
}

type updateReportReq struct {
	Status      *string `json:"status"`
	FixPriority *int    `json:"fixPriority"`
}

// UpdateReport changes a report's workflow status or fix priority.
// Setting the status to fixed also stamps the resolution fields.
func UpdateReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}
	var req updateReportReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var report models.BreakageReport
	if err := config.DB.First(&report, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}

	if req.Status != nil {
		status := models.ReportStatus(*req.Status)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		report.Status = status
		if status == models.ReportFixed && !report.Resolved {
			now := time.Now()
			report.Resolved = true
			report.ResolvedAt = &now
		}
	}
	if req.FixPriority != nil {
		report.FixPriority = *req.FixPriority
	}

	if err := config.DB.Save(&report).Error; err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "report": report})
}
