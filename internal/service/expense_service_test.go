package service

import (
	"testing"
	"time"

	"go-resale-ledger/internal/repository"
	"go-resale-ledger/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) seedExpenseCategory(t *testing.T, actor Actor, name string) uuid.UUID {
	t.Helper()
	category, err := e.expenses.CreateCategory(actor, &ExpenseCategoryRequest{Name: name})
	require.NoError(t, err)
	return category.ID
}

func TestCreateExpense(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedAdmin(t)
	catID := env.seedExpenseCategory(t, admin, "Freight")

	expense, err := env.expenses.CreateExpense(admin, &CreateExpenseRequest{
		Name:       "Container shipping",
		Amount:     d(1200.50),
		CategoryID: catID,
		Date:       "2026-08-15",
	})
	require.NoError(t, err)

	assert.True(t, expense.Amount.Equal(d(1200.50)))
	assert.Equal(t, "Freight", expense.Category.Name)
	assert.Equal(t, 2026, expense.ExpenseDate.Year())
	assert.Equal(t, time.August, expense.ExpenseDate.Month())
	assert.Equal(t, 15, expense.ExpenseDate.Day())
}

func TestCreateExpenseValidation(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedAdmin(t)
	catID := env.seedExpenseCategory(t, admin, "Freight")

	cases := []*CreateExpenseRequest{
		{Amount: d(10), CategoryID: catID, Date: "2026-08-15"},           // missing name
		{Name: "x", Amount: d(0), CategoryID: catID, Date: "2026-08-15"}, // zero amount
		{Name: "x", Amount: d(10), Date: "2026-08-15"},                   // no category
	}
	for _, req := range cases {
		_, err := env.expenses.CreateExpense(admin, req)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	}

	_, err := env.expenses.CreateExpense(admin, &CreateExpenseRequest{
		Name: "x", Amount: d(10), CategoryID: catID, Date: "15/08/2026",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = env.expenses.CreateExpense(admin, &CreateExpenseRequest{
		Name: "x", Amount: d(10), CategoryID: uuid.New(), Date: "2026-08-15",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestUpdateExpense(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedAdmin(t)
	freight := env.seedExpenseCategory(t, admin, "Freight")
	customs := env.seedExpenseCategory(t, admin, "Customs")

	expense, err := env.expenses.CreateExpense(admin, &CreateExpenseRequest{
		Name: "Container shipping", Amount: d(1000), CategoryID: freight, Date: "2026-08-15",
	})
	require.NoError(t, err)

	name := "Container shipping (corrected)"
	amount := d(1100)
	updated, err := env.expenses.UpdateExpense(admin, expense.ID, &UpdateExpenseRequest{
		Name:       &name,
		Amount:     &amount,
		CategoryID: &customs,
	})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.True(t, updated.Amount.Equal(d(1100)))
	assert.Equal(t, "Customs", updated.Category.Name)

	negative := d(-5)
	_, err = env.expenses.UpdateExpense(admin, expense.ID, &UpdateExpenseRequest{Amount: &negative})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestListExpensesFilters(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedAdmin(t)
	freight := env.seedExpenseCategory(t, admin, "Freight")
	rent := env.seedExpenseCategory(t, admin, "Rent")

	for _, e := range []struct {
		name string
		cat  uuid.UUID
		date string
	}{
		{"Container", freight, "2026-08-01"},
		{"Air cargo", freight, "2026-08-20"},
		{"August rent", rent, "2026-08-05"},
	} {
		_, err := env.expenses.CreateExpense(admin, &CreateExpenseRequest{
			Name: e.name, Amount: d(100), CategoryID: e.cat, Date: e.date,
		})
		require.NoError(t, err)
	}

	byCat, err := env.expenses.ListExpenses(repository.ExpenseFilter{CategoryID: &freight})
	require.NoError(t, err)
	assert.Len(t, byCat, 2)

	from := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	recent, err := env.expenses.ListExpenses(repository.ExpenseFilter{DateFrom: &from})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Air cargo", recent[0].Name)
}

func TestDeleteExpenseCategoryRemovesItsExpenses(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedAdmin(t)
	freight := env.seedExpenseCategory(t, admin, "Freight")
	rent := env.seedExpenseCategory(t, admin, "Rent")

	_, err := env.expenses.CreateExpense(admin, &CreateExpenseRequest{
		Name: "Container", Amount: d(100), CategoryID: freight, Date: "2026-08-01",
	})
	require.NoError(t, err)
	kept, err := env.expenses.CreateExpense(admin, &CreateExpenseRequest{
		Name: "August rent", Amount: d(900), CategoryID: rent, Date: "2026-08-05",
	})
	require.NoError(t, err)

	require.NoError(t, env.expenses.DeleteCategory(admin, freight))

	remaining, err := env.expenses.ListExpenses(repository.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)

	categories, err := env.expenses.ListCategories()
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Rent", categories[0].Name)
}

func TestDeleteExpense(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedAdmin(t)
	catID := env.seedExpenseCategory(t, admin, "Freight")

	expense, err := env.expenses.CreateExpense(admin, &CreateExpenseRequest{
		Name: "Container", Amount: d(100), CategoryID: catID, Date: "2026-08-01",
	})
	require.NoError(t, err)

	require.NoError(t, env.expenses.DeleteExpense(admin, expense.ID))

	err = env.expenses.DeleteExpense(admin, expense.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
