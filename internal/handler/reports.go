package handler

import (
	"net/http"

	"github.com/HD3-run/Rcommitra/internal/apierror"
	"github.com/HD3-run/Rcommitra/internal/dto"
	"github.com/HD3-run/Rcommitra/internal/middleware"
	"github.com/HD3-run/Rcommitra/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// Dashboard godoc
// @Summary      Dashboard counters
// @Description  Today's sales, pending orders, low-stock count, monthly revenue, and channel breakdown.
// @Tags         reports
// @Produce      json
// @Success      200  {object} dto.DashboardResponse
// @Router       /reports/dashboard [get]
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	ident := middleware.GetIdentity(c)
	resp, err := h.svc.Dashboard(c.Request.Context(), ident.MerchantID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Sales godoc
// @Summary      Sales report
// @Description  Orders and revenue grouped by day, week, month, or year.
// @Tags         reports
// @Produce      json
// @Param        type      query string false "daily|weekly|monthly|yearly"
// @Param        startDate query string false "YYYY-MM-DD"
// @Param        endDate   query string false "YYYY-MM-DD"
// @Success      200  {array} dto.PeriodSales
// @Failure      400  {object} apierror.Response
// @Router       /reports/sales [get]
func (h *ReportsHandler) Sales(c *gin.Context) {
	var f dto.ReportFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, apierror.Response{Message: "Invalid query: " + err.Error()})
		return
	}
	ident := middleware.GetIdentity(c)
	rows, err := h.svc.Sales(c.Request.Context(), ident.MerchantID, f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ExportSales godoc
// @Summary      Export sales report as CSV
// @Tags         reports
// @Produce      text/csv
// @Param        type      query string false "daily|weekly|monthly|yearly"
// @Param        startDate query string false "YYYY-MM-DD"
// @Param        endDate   query string false "YYYY-MM-DD"
// @Success      200  {string} string "CSV body"
// @Router       /reports/export/sales [get]
func (h *ReportsHandler) ExportSales(c *gin.Context) {
	var f dto.ReportFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, apierror.Response{Message: "Invalid query: " + err.Error()})
		return
	}
	ident := middleware.GetIdentity(c)

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="sales-report.csv"`)
	if err := h.svc.ExportSales(c.Request.Context(), ident.MerchantID, f, c.Writer); err != nil {
		fail(c, err)
		return
	}
}
