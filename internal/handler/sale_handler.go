package handler

import (
	"strconv"
	"time"

	"go-resale-ledger/internal/repository"
	"go-resale-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SaleHandler struct {
	saleService     service.SaleService
	exchangeService service.ExchangeService
}

func NewSaleHandler(saleService service.SaleService, exchangeService service.ExchangeService) *SaleHandler {
	return &SaleHandler{
		saleService:     saleService,
		exchangeService: exchangeService,
	}
}

type CreateSaleRequest struct {
	SellerID uuid.UUID `json:"seller_id"`
	service.CreateSaleInput
}

type ExchangeRequest struct {
	NewAllocationID uuid.UUID        `json:"new_allocation_id"`
	NewPrice        *decimal.Decimal `json:"new_price,omitempty"`
}

// CreateSale commits a multi-line sale against seller stock
// POST /api/v1/sales
func (h *SaleHandler) CreateSale(c *fiber.Ctx) error {
	var req CreateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	actor := actorFrom(c)
	sellerID := req.SellerID
	if sellerID == uuid.Nil {
		sellerID = actor.ID
	}

	sale, err := h.saleService.CreateSale(actor, sellerID, req.CreateSaleInput, idemKey(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Sale recorded", "data": sale})
}

// GetSales lists sales with filters and pagination
// GET /api/v1/sales?seller_id=&customer=&date_from=&date_to=&order_by=&page=&page_size=
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	filter := repository.SaleFilter{
		Customer: c.Query("customer"),
		OrderBy:  c.Query("order_by", "newest"),
		Page:     page,
		PageSize: pageSize,
	}

	actor := actorFrom(c)
	if v := c.Query("seller_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid seller_id"})
		}
		filter.SellerID = &id
	}
	// Non-admins only ever see their own sales.
	if !actor.IsAdmin {
		filter.SellerID = &actor.ID
	}

	if v := c.Query("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid date_from, use YYYY-MM-DD"})
		}
		filter.DateFrom = &t
	}
	if v := c.Query("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid date_to, use YYYY-MM-DD"})
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		filter.DateTo = &t
	}

	sales, total, err := h.saleService.ListSales(filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": sales, "total": total, "page": page, "page_size": pageSize})
}

// GetSale returns one sale with its lines
// GET /api/v1/sales/:id
func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	sale, err := h.saleService.GetSale(id)
	if err != nil {
		return fail(c, err)
	}

	actor := actorFrom(c)
	if !actor.IsAdmin && sale.SellerID != actor.ID {
		return c.Status(403).JSON(fiber.Map{"error": "Forbidden"})
	}
	return c.JSON(sale)
}

// CorrectLine fixes recorded quantity or price on a sale line
// PATCH /api/v1/sales/:id/lines/:lineId
func (h *SaleHandler) CorrectLine(c *fiber.Ctx) error {
	saleID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	lineID, err := parseUUIDParam(c, "lineId")
	if err != nil {
		return fail(c, err)
	}

	var correction service.LineCorrection
	if err := c.BodyParser(&correction); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	sale, err := h.saleService.CorrectLine(actorFrom(c), saleID, lineID, correction)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Sale line corrected", "data": sale})
}

// ExchangeLine swaps the product behind a committed line
// POST /api/v1/sales/:id/lines/:lineId/exchange
func (h *SaleHandler) ExchangeLine(c *fiber.Ctx) error {
	saleID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	lineID, err := parseUUIDParam(c, "lineId")
	if err != nil {
		return fail(c, err)
	}

	var req ExchangeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.NewAllocationID == uuid.Nil {
		return c.Status(400).JSON(fiber.Map{"error": "new_allocation_id is required"})
	}

	sale, err := h.exchangeService.ExchangeLine(actorFrom(c), saleID, lineID, req.NewAllocationID, req.NewPrice, idemKey(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product exchanged", "data": sale})
}

// DeleteLine removes one line and returns its stock
// DELETE /api/v1/sales/:id/lines/:lineId
func (h *SaleHandler) DeleteLine(c *fiber.Ctx) error {
	saleID, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	lineID, err := parseUUIDParam(c, "lineId")
	if err != nil {
		return fail(c, err)
	}

	sale, err := h.saleService.DeleteLine(actorFrom(c), saleID, lineID, idemKey(c))
	if err != nil {
		return fail(c, err)
	}
	if sale == nil {
		return c.JSON(fiber.Map{"message": "Sale deleted (last line removed)"})
	}
	return c.JSON(fiber.Map{"message": "Sale line deleted", "data": sale})
}

// DeleteSale voids a sale and returns every line's stock
// DELETE /api/v1/sales/:id
func (h *SaleHandler) DeleteSale(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.saleService.DeleteSale(actorFrom(c), id, idemKey(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Sale deleted"})
}
