package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/projectoasis/hydroflow/config"
	"github.com/projectoasis/hydroflow/models"
	"github.com/projectoasis/hydroflow/utils"
)

type wellMapEntry struct {
	ID              uuid.UUID         `json:"id"`
	Latitude        float64           `json:"latitude"`
	Longitude       float64           `json:"longitude"`
	Status          models.WellStatus `json:"status"`
	Capacity        int               `json:"capacity"`
	CurrentLoad     int               `json:"currentLoad"`
	UsagePercentage int               `json:"usagePercentage"`
	Color           string            `json:"color"`
	ServiceArea     *geojson.Geometry `json:"serviceArea,omitempty"`
}

type areaMapEntry struct {
	ID       uuid.UUID         `json:"id"`
	Name     string            `json:"name"`
	Boundary *geojson.Geometry `json:"boundary"`
}

// WellMap is the public map payload: every well with its render hints
// plus every area boundary.
func WellMap(w http.ResponseWriter, r *http.Request) {
	var wells []models.Well
	if err := config.DB.Find(&wells).Error; err != nil {
		writeDBError(w, err)
		return
	}
	var areas []models.Area
	if err := config.DB.Find(&areas).Error; err != nil {
		writeDBError(w, err)
		return
	}

	wellEntries := make([]wellMapEntry, 0, len(wells))
	for i := range wells {
		well := &wells[i]
		entry := wellMapEntry{
			ID:              well.ID,
			Latitude:        well.Location.Lat(),
			Longitude:       well.Location.Lon(),
			Status:          well.Status,
			Capacity:        well.Capacity,
			CurrentLoad:     well.CurrentLoad,
			UsagePercentage: well.UsagePercentage(),
			Color:           well.StatusColor(),
		}
		if well.ServiceArea != nil {
			entry.ServiceArea = geojson.NewGeometry(orb.Polygon(*well.ServiceArea))
		}
		wellEntries = append(wellEntries, entry)
	}

	areaEntries := make([]areaMapEntry, 0, len(areas))
	for i := range areas {
		areaEntries = append(areaEntries, areaMapEntry{
			ID:       areas[i].ID,
			Name:     areas[i].Name,
			Boundary: geojson.NewGeometry(orb.Polygon(areas[i].Boundary)),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"wells": wellEntries,
		"areas": areaEntries,
	})
}

// AvailableWells lists the wells a visitor can report on or check in
// at: anything built, even if currently broken or under maintenance.
func AvailableWells(w http.ResponseWriter, r *http.Request) {
	var wells []models.Well
	err := config.DB.
		Where("status IN ?", []models.WellStatus{
			models.StatusCompleted, models.StatusBroken, models.StatusUnderMaintenance,
		}).
		Order("created_at").
		Find(&wells).Error
	if err != nil {
		writeDBError(w, err)
		return
	}

	entries := make([]wellMapEntry, 0, len(wells))
	for i := range wells {
		well := &wells[i]
		entries = append(entries, wellMapEntry{
			ID:              well.ID,
			Latitude:        well.Location.Lat(),
			Longitude:       well.Location.Lon(),
			Status:          well.Status,
			Capacity:        well.Capacity,
			CurrentLoad:     well.CurrentLoad,
			UsagePercentage: well.UsagePercentage(),
			Color:           well.StatusColor(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"wells": entries})
}

// RecordAttendance increments a well's load with a single UPDATE so
// concurrent check-ins never lose counts.
func RecordAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid well id")
		return
	}

	res := config.DB.Model(&models.Well{}).
		Where("id = ?", id).
		UpdateColumn("current_load", gorm.Expr("current_load + 1"))
	if res.Error != nil {
		writeDBError(w, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "well not found")
		return
	}

	var well models.Well
	if err := config.DB.First(&well, "id = ?", id).Error; err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"currentLoad":     well.CurrentLoad,
		"capacity":        well.Capacity,
		"usagePercentage": well.UsagePercentage(),
		"isNearCapacity":  well.NearCapacity(),
	})
}

type updateWeightReq struct {
	Score float64 `json:"score"`
}

// UpdateWellWeight applies a demand score in [-1, 1] to a well. The
// score scales capacity; the extreme low end marks the well broken.
// Either way the area's service partition is stale afterwards, so it is
// recomputed.
func UpdateWellWeight(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid well id")
		return
	}
	var req updateWeightReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Score < -1 || req.Score > 1 {
		writeError(w, http.StatusBadRequest, "score must be between -1 and 1")
		return
	}

	var well models.Well
	if err := config.DB.First(&well, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "well not found")
		return
	}

	newCapacity := int(float64(well.Capacity) * (1 + req.Score))
	if newCapacity < 0 {
		newCapacity = 0
	}
	well.Capacity = newCapacity
	if req.Score == -1 {
		well.Status = models.StatusBroken
	}
	if err := config.DB.Save(&well).Error; err != nil {
		writeDBError(w, err)
		return
	}

	if err := RecalculateServiceAreas(config.DB, well.AreaID); err != nil {
		logrus.WithError(err).WithField("area_id", well.AreaID).Warn("service area recalculation failed")
	}

	if err := config.DB.First(&well, "id = ?", id).Error; err != nil {
		writeDBError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "well": well})
}

// serviceAreaResolution is the grid density the partition samples at.
const serviceAreaResolution = 40

// RecalculateServiceAreas repartitions an area's boundary among its
// wells by capacity and persists the per-well polygons. Broken wells
// keep a zero weight so their territory is absorbed by neighbors.
func RecalculateServiceAreas(db *gorm.DB, areaID uuid.UUID) error {
	var area models.Area
	if err := db.First(&area, "id = ?", areaID).Error; err != nil {
		return err
	}
	var wells []models.Well
	if err := db.Where("area_id = ?", areaID).Find(&wells).Error; err != nil {
		return err
	}
	if len(wells) == 0 {
		return nil
	}

	sites := make([]utils.ServiceSite, 0, len(wells))
	for i := range wells {
		weight := float64(wells[i].Capacity)
		switch wells[i].Status {
		case models.StatusBroken, models.StatusDraft:
			weight = 0
		}
		sites = append(sites, utils.ServiceSite{
			ID:       wells[i].ID,
			Location: orb.Point(wells[i].Location),
			Weight:   weight,
		})
	}

	partition := utils.PartitionServiceAreas(orb.Polygon(area.Boundary), sites, serviceAreaResolution)
	for i := range wells {
		poly, ok := partition[wells[i].ID]
		var sa *models.Polygon
		if ok && len(poly) > 0 {
			mp := models.Polygon(poly)
			sa = &mp
		}
		if err := db.Model(&models.Well{}).
			Where("id = ?", wells[i].ID).
			Update("service_area", sa).Error; err != nil {
			return err
		}
	}
	return nil
}
