package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/regport/api-go/models"
	"github.com/regport/api-go/utils"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// zeroTime stands in for NULL validated_at so cursor comparisons stay total.
const zeroTime = "0001-01-01T00:00:00Z"

type sortSpec struct {
	expr      string
	temporal  bool
	cursorVal func(r *models.Report) string
}

var reportSorts = map[string]sortSpec{
	"submittedAt": {
		expr:     "submitted_at",
		temporal: true,
		cursorVal: func(r *models.Report) string {
			return r.SubmittedAt.UTC().Format(time.RFC3339Nano)
		},
	},
	"validatedAt": {
		expr:     "COALESCE(validated_at, '0001-01-01T00:00:00Z')",
		temporal: true,
		cursorVal: func(r *models.Report) string {
			if r.ValidatedAt == nil {
				return zeroTime
			}
			return r.ValidatedAt.UTC().Format(time.RFC3339Nano)
		},
	},
	"period": {
		expr:      "period",
		cursorVal: func(r *models.Report) string { return r.Period },
	},
	"status": {
		expr:      "status",
		cursorVal: func(r *models.Report) string { return string(r.Status) },
	},
}

type ListReportsResponse struct {
	Data       []models.Report `json:"data"`
	NextCursor string          `json:"nextCursor,omitempty"`
}

// ListReports is the visibility-filtered, cursor-paginated listing. Filters:
// entityId, status, reportType, period, archived. Sort: submittedAt (default),
// validatedAt, period, status.
func (rc *ReportController) ListReports(c *gin.Context) {
	caller := utils.GetCaller(c)
	scope, err := utils.VisibilityScope(caller)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	sortKey := c.DefaultQuery("sortBy", "submittedAt")
	spec, ok := reportSorts[sortKey]
	if !ok {
		utils.RespondError(c, models.ErrValidation("unsupported sort field "+sortKey))
		return
	}
	descending := c.DefaultQuery("order", "desc") == "desc"

	limit := defaultPageSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.RespondError(c, models.ErrValidation("limit must be a positive integer"))
			return
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		limit = n
	}

	q := rc.DB.Model(&models.Report{}).Scopes(scope)
	q, err = applyReportFilters(q, c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if token := c.Query("cursor"); token != "" {
		value, lastID, err := utils.DecodeCursor(token)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		var bound interface{} = value
		if spec.temporal {
			t, err := time.Parse(time.RFC3339Nano, value)
			if err != nil {
				utils.RespondError(c, models.ErrValidation("malformed cursor"))
				return
			}
			bound = t
		}
		if descending {
			q = q.Where("("+spec.expr+" < ?) OR ("+spec.expr+" = ? AND id < ?)", bound, bound, lastID)
		} else {
			q = q.Where("("+spec.expr+" > ?) OR ("+spec.expr+" = ? AND id > ?)", bound, bound, lastID)
		}
	}

	dir := "ASC"
	if descending {
		dir = "DESC"
	}
	var reports []models.Report
	if err := q.
		Order(spec.expr + " " + dir + ", id " + dir).
		Limit(limit + 1).
		Find(&reports).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	resp := ListReportsResponse{Data: reports}
	if len(reports) > limit {
		resp.Data = reports[:limit]
		last := &resp.Data[limit-1]
		resp.NextCursor = utils.EncodeCursor(spec.cursorVal(last), last.ID)
	}
	if resp.Data == nil {
		resp.Data = []models.Report{}
	}

	c.JSON(http.StatusOK, resp)
}

func applyReportFilters(q *gorm.DB, c *gin.Context) (*gorm.DB, error) {
	if raw := c.Query("entityId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, models.ErrValidation("entityId must be an integer")
		}
		q = q.Where("entity_id = ?", uint(id))
	}
	if raw := c.Query("status"); raw != "" {
		status := models.ReportStatus(raw)
		if !status.Valid() {
			return nil, models.ErrValidation("unknown status " + raw)
		}
		q = q.Where("status = ?", status)
	}
	if raw := c.Query("reportType"); raw != "" {
		rt := models.ReportType(raw)
		if !rt.Valid() {
			return nil, models.ErrValidation("unknown report type " + raw)
		}
		q = q.Where("report_type = ?", rt)
	}
	if period := c.Query("period"); period != "" {
		q = q.Where("period = ?", period)
	}
	if raw := c.Query("archived"); raw != "" {
		archived, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, models.ErrValidation("archived must be a boolean")
		}
		q = q.Where("is_archived = ?", archived)
	}
	return q, nil
}

type ReportStatsResponse struct {
	Total      int64 `json:"total"`
	Draft      int64 `json:"draft"`
	Submitted  int64 `json:"submitted"`
	InProgress int64 `json:"inProgress"`
	Success    int64 `json:"success"`
	Errors     int64 `json:"errors"`
	Archived   int64 `json:"archived"`
}

// GetStats aggregates counts over whatever slice of reports the caller may
// see. Every error-class terminal status lands in the errors bucket.
func (rc *ReportController) GetStats(c *gin.Context) {
	scope, err := utils.VisibilityScope(utils.GetCaller(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	type statusCount struct {
		Status models.ReportStatus
		Count  int64
	}
	var counts []statusCount
	if err := rc.DB.Model(&models.Report{}).Scopes(scope).
		Select("status, COUNT(*) AS count").
		Group("status").
		Find(&counts).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	var stats ReportStatsResponse
	for _, sc := range counts {
		stats.Total += sc.Count
		switch sc.Status {
		case models.StatusDraft:
			stats.Draft += sc.Count
		case models.StatusSubmitted:
			stats.Submitted += sc.Count
		case models.StatusInProgress:
			stats.InProgress += sc.Count
		case models.StatusSuccess:
			stats.Success += sc.Count
		case models.StatusRuleError, models.StatusSystemErr, models.StatusTimeout, models.StatusRejected:
			stats.Errors += sc.Count
		}
	}

	if err := rc.DB.Model(&models.Report{}).Scopes(scope).
		Where("is_archived = ?", true).
		Count(&stats.Archived).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
