package handler

import (
	"strconv"
	"time"

	"go-resale-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetStockStats returns the overview block for the dashboard
// GET /api/v1/reports/stock
func (h *ReportHandler) GetStockStats(c *fiber.Ctx) error {
	stats, err := h.reportService.GetStockStats()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}

// GetSalesMovement returns daily units/revenue buckets for charts
// GET /api/v1/reports/sales-movement?days=30
func (h *ReportHandler) GetSalesMovement(c *fiber.Ctx) error {
	days, _ := strconv.Atoi(c.Query("days", "30"))
	movement, err := h.reportService.GetSalesMovement(days)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(movement)
}

// GetRevenueSummary returns totals for a trailing window
// GET /api/v1/reports/revenue?days=30
func (h *ReportHandler) GetRevenueSummary(c *fiber.Ctx) error {
	days, _ := strconv.Atoi(c.Query("days", "30"))
	summary, err := h.reportService.GetRevenueSummary(days)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(summary)
}

// GetSellerSummaries aggregates per-seller sales performance
// GET /api/v1/reports/sellers?date_from=&date_to=
func (h *ReportHandler) GetSellerSummaries(c *fiber.Ctx) error {
	var from, to *time.Time
	if v := c.Query("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid date_from, use YYYY-MM-DD"})
		}
		from = &t
	}
	if v := c.Query("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid date_to, use YYYY-MM-DD"})
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		to = &t
	}

	summaries, err := h.reportService.GetSellerSummaries(from, to)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(summaries)
}
