package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/paulmach/orb"
	"github.com/xuri/excelize/v2"

	"github.com/projectoasis/hydroflow/config"
	"github.com/projectoasis/hydroflow/middleware"
	"github.com/projectoasis/hydroflow/models"
	"github.com/projectoasis/hydroflow/utils"
)

// ExportDashboard streams the admin's wells and reports as an XLSX
// workbook with one sheet per entity. Scoping follows the dashboard:
// area admins export their area only.
func ExportDashboard(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetAdmin(r)

	query := config.DB.Model(&models.Well{})
	if admin != nil && admin.AreaID != nil {
		query = query.Where("area_id = ?", admin.AreaID)
	}
	var wells []models.Well
	if err := query.Order("created_at").Find(&wells).Error; err != nil {
		writeDBError(w, err)
		return
	}

	wellIDs := make([]interface{}, len(wells))
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

	f, err := buildDashboardWorkbook(wells, reports)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate export")
		return
	}
	buffer, err := f.WriteToBuffer()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to write export")
		return
	}

	filename := fmt.Sprintf("hydroflow_export_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

func buildDashboardWorkbook(wells []models.Well, reports []models.BreakageReport) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
	})

	wellsSheet := "Wells"
	index, err := f.NewSheet(wellsSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	wellHeaders := []string{"ID", "Latitude", "Longitude", "Status", "Capacity", "Current Load", "Usage %", "Location WKT", "Created"}
	for col, h := range wellHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(wellsSheet, cell, h)
		f.SetCellStyle(wellsSheet, cell, cell, headerStyle)
	}
	for row := range wells {
		well := &wells[row]
		values := []interface{}{
			well.ID.String(),
			well.Location.Lat(),
			well.Location.Lon(),
			string(well.Status),
			well.Capacity,
			well.CurrentLoad,
			well.UsagePercentage(),
			utils.MarshalWKT(orb.Point(well.Location)),
			well.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(wellsSheet, cell, v)
		}
	}

	reportsSheet := "Reports"
	if _, err := f.NewSheet(reportsSheet); err != nil {
		return nil, err
	}
	reportHeaders := []string{"ID", "Well ID", "Issue Type", "Summary", "Status", "Fix Priority", "Resolved", "Resolved At", "Created"}
	for col, h := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(reportsSheet, cell, h)
		f.SetCellStyle(reportsSheet, cell, cell, headerStyle)
	}
	for row := range reports {
		report := &reports[row]
		resolvedAt := ""
		if report.ResolvedAt != nil {
			resolvedAt = report.ResolvedAt.Format("2006-01-02 15:04:05")
		}
		values := []interface{}{
			report.ID.String(),
			report.WellID.String(),
			string(report.IssueType),
			report.Summary,
			string(report.Status),
			report.FixPriority,
			report.Resolved,
			resolvedAt,
			report.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(reportsSheet, cell, v)
		}
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}
