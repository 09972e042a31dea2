package controllers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/regport/api-go/models"
	"github.com/regport/api-go/utils"
	"github.com/xuri/excelize/v2"
)

const exportLimit = 10000

var exportHeader = []string{
	"Report ID", "Entity ID", "Report Type", "Period", "Status",
	"Is Correction", "Corrected Report ID", "Submitted By", "Submitted At",
	"Validated At", "Validation Notes", "File Name", "Archived",
}

// ExportRows flattens reports into spreadsheet rows, header included.
func ExportRows(reports []models.Report) [][]string {
	rows := make([][]string, 0, len(reports)+1)
	rows = append(rows, exportHeader)
	for _, r := range reports {
		correctedID := ""
		if r.CorrectedReportID != nil {
			correctedID = *r.CorrectedReportID
		}
		validatedAt := ""
		if r.ValidatedAt != nil {
			validatedAt = r.ValidatedAt.UTC().Format(time.RFC3339)
		}
		notes := ""
		if r.ValidationNotes != nil {
			notes = *r.ValidationNotes
		}
		rows = append(rows, []string{
			r.ID,
			strconv.FormatUint(uint64(r.EntityID), 10),
			string(r.ReportType),
			r.Period,
			string(r.Status),
			strconv.FormatBool(r.IsCorrection),
			correctedID,
			r.SubmittedByName,
			r.SubmittedAt.UTC().Format(time.RFC3339),
			validatedAt,
			notes,
			r.File.Name,
			strconv.FormatBool(r.IsArchived),
		})
	}
	return rows
}

// ExportReports streams the caller's visible reports as a flat XLSX or CSV
// sheet for offline reporting. Same filters as the listing.
func (rc *ReportController) ExportReports(c *gin.Context) {
	format := c.DefaultQuery("format", "xlsx")
	if format != "xlsx" && format != "csv" {
		utils.RespondError(c, models.ErrValidation("format must be xlsx or csv"))
		return
	}

	scope, err := utils.VisibilityScope(utils.GetCaller(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	q := rc.DB.Model(&models.Report{}).Scopes(scope)
	q, err = applyReportFilters(q, c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var reports []models.Report
	if err := q.Order("submitted_at DESC, id DESC").Limit(exportLimit).Find(&reports).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	rows := ExportRows(reports)
	filename := "reports-" + time.Now().UTC().Format("20060102-150405")

	if format == "csv" {
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.WriteAll(rows); err != nil {
			utils.RespondError(c, err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename="+filename+".csv")
		c.Data(http.StatusOK, "text/csv", buf.Bytes())
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				utils.RespondError(c, err)
				return
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				utils.RespondError(c, err)
				return
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename+".xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
