package handler

import (
	"go-resale-ledger/internal/model"
	"go-resale-ledger/internal/service"
	"go-resale-ledger/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PricingHandler struct {
	pricingService service.PricingService
	lotService     service.LotService
}

func NewPricingHandler(pricingService service.PricingService, lotService service.LotService) *PricingHandler {
	return &PricingHandler{pricingService: pricingService, lotService: lotService}
}

// GetPricings lists the product price table
// GET /api/v1/pricings?search=
func (h *PricingHandler) GetPricings(c *fiber.Ctx) error {
	var (
		pricings []model.ProductPricing
		err      error
	)
	if term := c.Query("search"); term != "" {
		pricings, err = h.pricingService.SearchPricings(term)
	} else {
		pricings, err = h.pricingService.ListPricings()
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(pricings)
}

// ResolvePrice quotes the price a sale line would be charged right now
// GET /api/v1/pricings/resolve?lot_id=&client_category=&payment_method=
func (h *PricingHandler) ResolvePrice(c *fiber.Ctx) error {
	lotID, err := uuid.Parse(c.Query("lot_id"))
	if err != nil {
		return fail(c, apperr.New(apperr.KindValidation, "invalid lot_id"))
	}

	lot, err := h.lotService.GetLot(lotID)
	if err != nil {
		return fail(c, err)
	}

	category := model.ClientCategory(c.Query("client_category"))
	method := model.PaymentMethod(c.Query("payment_method"))

	price, err := h.pricingService.ResolvePrice(lot, category, method, nil)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"lot_id":          lot.ID,
		"product_name":    lot.Name,
		"client_category": category,
		"payment_method":  method,
		"unit_price":      price,
	})
}

// UpsertPricing creates or replaces a product's payment-method prices
// PUT /api/v1/pricings
func (h *PricingHandler) UpsertPricing(c *fiber.Ctx) error {
	var pricing model.ProductPricing
	if err := c.BodyParser(&pricing); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if pricing.ProductName == "" {
		return c.Status(400).JSON(fiber.Map{"error": "product_name is required"})
	}

	saved, err := h.pricingService.UpsertPricing(&pricing, actorFrom(c).ID.String())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Pricing saved", "data": saved})
}
