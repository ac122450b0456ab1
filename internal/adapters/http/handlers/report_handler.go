package handlers

import (
	"time"

	"kas-kelas/internal/core/services"
	"kas-kelas/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler handles report and export endpoints
type ReportHandler struct {
	reportService ReportUseCase
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService ReportUseCase) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Summary returns totals and inflow groups for a date range
// @Summary Cash summary
// @Description Defaults to the current month when from is omitted
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date, exclusive (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /reports/summary [get]
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	from, err := queryDate(c, "from")
	if err != nil {
		return response.BadRequest(c, "Invalid from date")
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return response.BadRequest(c, "Invalid to date")
	}

	summary, err := h.reportService.Summary(c.Context(), principal(c), from, to)
	if err != nil {
		return handleError(c, err, "Failed to build summary")
	}

	return response.Success(c, "Summary retrieved successfully", summary)
}

// ExportRekap downloads the cash recap workbook
// @Summary Export cash recap
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Failure 401 {object} response.Response
// @Router /export/rekap [get]
func (h *ReportHandler) ExportRekap(c *fiber.Ctx) error {
	file, err := h.reportService.Export(c.Context(), principal(c))
	if err != nil {
		return handleError(c, err, "Failed to export recap")
	}

	return response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// queryDate parses an optional date query parameter
func queryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := services.ParseDueDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
