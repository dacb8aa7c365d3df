package service

import (
	"testing"

	"go-resale-ledger/internal/repository"
	"go-resale-ledger/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLotCategoryCRUD(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedAdmin(t)

	icon := "phone"
	category, err := env.categories.CreateCategory(admin, &LotCategoryRequest{
		Name: "Phones",
		Icon: &icon,
	})
	require.NoError(t, err)
	assert.True(t, category.Active)

	_, err = env.categories.CreateCategory(admin, &LotCategoryRequest{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	inactive := false
	updated, err := env.categories.UpdateCategory(admin, category.ID, &LotCategoryRequest{
		Name:   "Smartphones",
		Active: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Smartphones", updated.Name)
	assert.False(t, updated.Active)

	categories, err := env.categories.ListCategories()
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestDeleteLotCategoryBlockedByLots(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedAdmin(t)

	category, err := env.categories.CreateCategory(admin, &LotCategoryRequest{Name: "Phones"})
	require.NoError(t, err)

	lot := env.seedLot(t, admin, "Phone X", 5)
	_, err = env.lots.UpdateLot(admin, lot.ID, map[string]interface{}{"category_id": category.ID})
	require.NoError(t, err)

	err = env.categories.DeleteCategory(admin, category.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidOperation))

	// Unassigning the lot unblocks deletion.
	_, err = env.lots.UpdateLot(admin, lot.ID, map[string]interface{}{"category_id": nil})
	require.NoError(t, err)
	require.NoError(t, env.categories.DeleteCategory(admin, category.ID))

	categories, err := env.categories.ListCategories()
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestListLotsFilterByCategory(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedAdmin(t)

	category, err := env.categories.CreateCategory(admin, &LotCategoryRequest{Name: "Phones"})
	require.NoError(t, err)

	tagged := env.seedLot(t, admin, "Phone X", 5)
	env.seedLot(t, admin, "Tablet Z", 5)
	_, err = env.lots.UpdateLot(admin, tagged.ID, map[string]interface{}{"category_id": category.ID})
	require.NoError(t, err)

	lots, total, err := env.lots.ListLots(repository.LotFilter{CategoryID: &category.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, lots, 1)
	assert.Equal(t, tagged.ID, lots[0].ID)
	require.NotNil(t, lots[0].Category)
	assert.Equal(t, "Phones", lots[0].Category.Name)
}
