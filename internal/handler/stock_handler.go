package handler

import (
	"time"

	"go-resale-ledger/internal/model"
	"go-resale-ledger/internal/repository"
	"go-resale-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type StockHandler struct {
	stockService service.StockService
}

func NewStockHandler(stockService service.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

type DistributeRequest struct {
	LotID    uuid.UUID `json:"lot_id"`
	SellerID uuid.UUID `json:"seller_id"`
	Quantity int       `json:"quantity"`
}

type RedistributeRequest struct {
	LotID        uuid.UUID `json:"lot_id"`
	FromSellerID uuid.UUID `json:"from_seller_id"`
	ToSellerID   uuid.UUID `json:"to_seller_id"`
	Quantity     int       `json:"quantity"`
}

type AdjustRequest struct {
	AllocationID uuid.UUID `json:"allocation_id"`
	Delta        int       `json:"delta"`
}

// Distribute moves units from the pool to a seller
// POST /api/v1/stock/distribute
func (h *StockHandler) Distribute(c *fiber.Ctx) error {
	var req DistributeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := h.stockService.Distribute(actorFrom(c), req.LotID, req.SellerID, req.Quantity, idemKey(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock distributed", "data": result})
}

// Redistribute moves units directly between two sellers
// POST /api/v1/stock/redistribute
func (h *StockHandler) Redistribute(c *fiber.Ctx) error {
	var req RedistributeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := h.stockService.Redistribute(actorFrom(c), req.LotID, req.FromSellerID, req.ToSellerID, req.Quantity, idemKey(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock redistributed", "data": result})
}

// Adjust applies a signed audited correction to one allocation
// POST /api/v1/stock/adjust
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var req AdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	alloc, err := h.stockService.AdjustQuantity(actorFrom(c), req.AllocationID, req.Delta, idemKey(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock adjusted", "data": alloc})
}

// GetPool lists the undistributed pool, optionally for one lot
// GET /api/v1/stock/pool?lot_id=
func (h *StockHandler) GetPool(c *fiber.Ctx) error {
	var lotID *uuid.UUID
	if v := c.Query("lot_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid lot_id"})
		}
		lotID = &id
	}

	allocations, err := h.stockService.GetPool(lotID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(allocations)
}

// GetSellerStock lists one seller's allocations
// GET /api/v1/stock/sellers/:id?hide_empty=true
func (h *StockHandler) GetSellerStock(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	actor := actorFrom(c)
	if !actor.IsAdmin && actor.ID != id {
		return c.Status(403).JSON(fiber.Map{"error": "Forbidden: sellers can only view their own stock"})
	}

	hideEmpty := c.Query("hide_empty", "true") != "false"
	allocations, err := h.stockService.GetAllocationsByHolder(&id, hideEmpty)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(allocations)
}

// GetOverview groups every seller's stock for the admin view
// GET /api/v1/stock/overview
func (h *StockHandler) GetOverview(c *fiber.Ctx) error {
	overview, err := h.stockService.SellerStockOverview()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(overview)
}

// GetTransfers lists distribution and redistribution history
// GET /api/v1/stock/transfers?lot_id=&holder_id=&kind=&date_from=&date_to=
func (h *StockHandler) GetTransfers(c *fiber.Ctx) error {
	var filter repository.TransferFilter

	if v := c.Query("lot_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid lot_id"})
		}
		filter.LotID = &id
	}
	if v := c.Query("holder_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid holder_id"})
		}
		filter.HolderID = &id
	}
	if v := c.Query("kind"); v != "" {
		filter.Kind = model.TransferKind(v)
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

	transfers, err := h.stockService.ListTransfers(filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(transfers)
}
