package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gastos/internal/services"
)

// ReportHandler serves the per-user summary.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetSummary returns totals, the expense breakdown and the monthly series
// @Summary     Summary report
// @Description Income, expense and balance with an expense breakdown by category and a monthly series. Bounds are inclusive.
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       start query string false "From date (YYYY-MM-DD)"
// @Param       end   query string false "To date (YYYY-MM-DD)"
// @Success     200 {object} services.Summary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	start, err := parseDateQuery(c, "start")
	if err != nil {
		respondWithError(c, err)
		return
	}
	end, err := parseDateQuery(c, "end")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.reportService.Summary(userID, start, end)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
