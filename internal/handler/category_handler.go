package handler

import (
	"go-resale-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	categoryService service.LotCategoryService
}

func NewCategoryHandler(categoryService service.LotCategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// GetCategories lists lot categories
// GET /api/v1/lot-categories
func (h *CategoryHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.categoryService.ListCategories()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(categories)
}

// CreateCategory adds a lot category
// POST /api/v1/lot-categories
func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req service.LotCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	category, err := h.categoryService.CreateCategory(actorFrom(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Category created", "data": category})
}

// UpdateCategory edits a lot category
// PUT /api/v1/lot-categories/:id
func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req service.LotCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	category, err := h.categoryService.UpdateCategory(actorFrom(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category updated", "data": category})
}

// DeleteCategory removes a lot category with no lots assigned
// DELETE /api/v1/lot-categories/:id
func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.categoryService.DeleteCategory(actorFrom(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}
