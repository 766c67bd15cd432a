// internal/handlers/report.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/zuzi-store/internal/auth"
	"github.com/javajoker/zuzi-store/internal/i18n"
	"github.com/javajoker/zuzi-store/internal/services"
	"github.com/javajoker/zuzi-store/internal/utils"
)

type ReportHandler struct {
	reportService *services.ReportService
}

type ReportRequest struct {
	StartDate string `json:"start_date" form:"start_date"`
	EndDate   string `json:"end_date" form:"end_date"`
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

func (h *ReportHandler) bindWindow(c *gin.Context) (services.Window, bool) {
	var req ReportRequest
	var err error
	if c.Request.Method == "POST" {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBindQuery(&req)
	}
	if err != nil {
		utils.BadRequestResponse(c, utils.T(c, i18n.KeyValidationInvalid, "input"), err.Error())
		return services.Window{}, false
	}

	window, err := h.reportService.ParseWindow(req.StartDate, req.EndDate)
	if err != nil {
		utils.BadRequestResponse(c, utils.T(c, i18n.KeyReportInvalidWindow), err.Error())
		return services.Window{}, false
	}
	return window, true
}

// GET /report and POST /report
func (h *ReportHandler) Report(c *gin.Context) {
	if _, ok := authorize(c, auth.CapViewReports); !ok {
		return
	}

	window, ok := h.bindWindow(c)
	if !ok {
		return
	}

	report, err := h.reportService.BuildReport(c.Request.Context(), window)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, report)
}

// GET /export_detailed_report
func (h *ReportHandler) ExportDetailed(c *gin.Context) {
	if _, ok := authorize(c, auth.CapExport); !ok {
		return
	}

	window, ok := h.bindWindow(c)
	if !ok {
		return
	}

	body, err := h.reportService.ExportDetailedCSV(c.Request.Context(), window)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CSVAttachment(c, h.reportService.DetailedReportFilename(window), body)
}
