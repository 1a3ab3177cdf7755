package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"github.com/projectoasis/hydroflow/config"
	"github.com/projectoasis/hydroflow/models"
)

// ListAreas returns every area with its boundary as GeoJSON.
func ListAreas(w http.ResponseWriter, r *http.Request) {
	var areas []models.Area
	if err := config.DB.Order("name").Find(&areas).Error; err != nil {
		writeDBError(w, err)
		return
	}

	entries := make([]areaMapEntry, 0, len(areas))
	for i := range areas {
		entries = append(entries, areaMapEntry{
			ID:       areas[i].ID,
			Name:     areas[i].Name,
			Boundary: geojson.NewGeometry(orb.Polygon(areas[i].Boundary)),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"areas": entries})
}

type createAreaReq struct {
	Name        string           `json:"name"`
	Boundary    *json.RawMessage `json:"boundary"`
	BoundaryWKT *string          `json:"boundaryWkt"`
}

// CreateArea registers a managed area with its boundary polygon.
func CreateArea(w http.ResponseWriter, r *http.Request) {
	var req createAreaReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	boundary, err := parseServiceArea(req.Boundary, req.BoundaryWKT)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid boundary: "+err.Error())
		return
	}
	if boundary == nil {
		writeError(w, http.StatusBadRequest, "boundary is required")
		return
	}

	area := models.Area{
		Name:     strings.TrimSpace(req.Name),
		Boundary: *boundary,
	}
	if err := config.DB.Create(&area).Error; err != nil {
		writeDBError(w, err)
		return
	}

	logrus.WithField("area", area.Name).Info("area created")
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "area": area})
}
