package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/projectoasis/hydroflow/config"
	"github.com/projectoasis/hydroflow/models"
)

type createReportReq struct {
	WellID      string   `json:"wellId"`
	IssueType   string   `json:"issueType"`
	Description string   `json:"description"`
	ImageURL    *string  `json:"imageUrl"`
	Photos      []string `json:"photos"`
	Contact     *struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"contact"`
}

// CreateReport files a breakage report against a well and flips the
// well into the status the issue type implies. Report and status change
// commit together or not at all.
func CreateReport(w http.ResponseWriter, r *http.Request) {
	var req createReportReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	issue := models.IssueType(req.IssueType)
	if !issue.Valid() {
		writeError(w, http.StatusBadRequest, "unknown issue type")
		return
	}
	wellID, err := uuid.Parse(req.WellID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid well id")
		return
	}

	report := models.BreakageReport{
		WellID:    wellID,
		IssueType: issue,
		Summary:   strings.TrimSpace(req.Description),
		ImageURL:  req.ImageURL,
		Status:    models.ReportReported,
	}
	if len(req.Photos) > 0 {
		report.Photos = pq.StringArray(req.Photos)
	}
	if req.Contact != nil && (req.Contact.Name != "" || req.Contact.Phone != "") {
		contact, err := json.Marshal(req.Contact)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid contact")
			return
		}
		report.ReporterContact = contact
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var well models.Well
		if err := tx.First(&well, "id = ?", wellID).Error; err != nil {
			return err
		}
		if err := tx.Create(&report).Error; err != nil {
			return err
		}
		return tx.Model(&well).Update("status", issue.WellStatus()).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "well not found")
			return
		}
		writeDBError(w, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"well_id":    wellID,
		"issue_type": issue,
	}).Info("breakage report filed")
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"report":  report,
	})
}
