package handler

import (
	"time"

	"go-resale-ledger/internal/repository"
	"go-resale-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ExpenseHandler struct {
	expenseService service.ExpenseService
}

func NewExpenseHandler(expenseService service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// GetCategories lists expense categories
// GET /api/v1/expense-categories
func (h *ExpenseHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.expenseService.ListCategories()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(categories)
}

// CreateCategory adds an expense category
// POST /api/v1/expense-categories
func (h *ExpenseHandler) CreateCategory(c *fiber.Ctx) error {
	var req service.ExpenseCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	category, err := h.expenseService.CreateCategory(actorFrom(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Category created", "data": category})
}

// UpdateCategory renames an expense category
// PUT /api/v1/expense-categories/:id
func (h *ExpenseHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req service.ExpenseCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	category, err := h.expenseService.UpdateCategory(actorFrom(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category updated", "data": category})
}

// DeleteCategory removes an expense category with its expenses
// DELETE /api/v1/expense-categories/:id
func (h *ExpenseHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.expenseService.DeleteCategory(actorFrom(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}

// GetExpenses lists expenses, optionally by category and date range
// GET /api/v1/expenses?category_id=&date_from=&date_to=
func (h *ExpenseHandler) GetExpenses(c *fiber.Ctx) error {
	var filter repository.ExpenseFilter

	if v := c.Query("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err == nil {
			filter.CategoryID = &id
		}
	}
	if v := c.Query("date_from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.DateFrom = &t
		}
	}
	if v := c.Query("date_to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.DateTo = &t
		}
	}

	expenses, err := h.expenseService.ListExpenses(filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(expenses)
}

// CreateExpense records an operating cost
// POST /api/v1/expenses
func (h *ExpenseHandler) CreateExpense(c *fiber.Ctx) error {
	var req service.CreateExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	expense, err := h.expenseService.CreateExpense(actorFrom(c), &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Expense recorded", "data": expense})
}

// UpdateExpense corrects an expense entry
// PATCH /api/v1/expenses/:id
func (h *ExpenseHandler) UpdateExpense(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req service.UpdateExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	expense, err := h.expenseService.UpdateExpense(actorFrom(c), id, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Expense updated", "data": expense})
}

// DeleteExpense removes an expense entry
// DELETE /api/v1/expenses/:id
func (h *ExpenseHandler) DeleteExpense(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.expenseService.DeleteExpense(actorFrom(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Expense deleted"})
}
