package handler

import (
	"strconv"

	"go-resale-ledger/internal/model"
	"go-resale-ledger/internal/repository"
	"go-resale-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LotHandler struct {
	lotService service.LotService
}

func NewLotHandler(lotService service.LotService) *LotHandler {
	return &LotHandler{lotService: lotService}
}

// CreateLot registers a purchase and its pool stock
// POST /api/v1/lots
func (h *LotHandler) CreateLot(c *fiber.Ctx) error {
	var lot model.PurchaseLot
	if err := c.BodyParser(&lot); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	created, err := h.lotService.CreateLot(actorFrom(c), &lot)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Lot created", "data": created})
}

// GetLots lists lots with search and pagination
// GET /api/v1/lots?search=&category_id=&page=&page_size=
func (h *LotHandler) GetLots(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	filter := repository.LotFilter{
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	}
	if v := c.Query("category_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.CategoryID = &id
		}
	}

	lots, total, err := h.lotService.ListLots(filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": lots, "total": total, "page": page, "page_size": pageSize})
}

// GetLot returns one lot with its allocations
// GET /api/v1/lots/:id
func (h *LotHandler) GetLot(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	lot, err := h.lotService.GetLot(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(lot)
}

// UpdateLot edits descriptive lot fields
// PATCH /api/v1/lots/:id
func (h *LotHandler) UpdateLot(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var updates map[string]interface{}
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	lot, err := h.lotService.UpdateLot(actorFrom(c), id, updates)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Lot updated", "data": lot})
}

// UpdateTierPrices sets the per-category price tiers of a lot
// PUT /api/v1/lots/:id/tier-prices
func (h *LotHandler) UpdateTierPrices(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var update service.TierPriceUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	lot, err := h.lotService.UpdateTierPrices(actorFrom(c), id, update)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Tier prices updated", "data": lot})
}

// DeleteLot soft-deletes a lot that has no seller stock left
// DELETE /api/v1/lots/:id
func (h *LotHandler) DeleteLot(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.lotService.DeleteLot(actorFrom(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Lot deleted"})
}
