package service

import (
	"testing"

	"go-resale-ledger/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangeLineSwapsProductAndStock(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedAdmin(t)
	seller := env.seedSeller(t, "Alice")
	lotA := env.seedLot(t, admin, "Phone X", 10)
	lotB := env.seedLot(t, admin, "Phone Y", 10)

	_, err := env.stock.Distribute(admin, lotA.ID, seller.ID, 5, "")
	require.NoError(t, err)
	_, err = env.stock.Distribute(admin, lotB.ID, seller.ID, 5, "")
	require.NoError(t, err)

	allocA := env.sellerAlloc(t, lotA.ID, seller.ID)
	allocB := env.sellerAlloc(t, lotB.ID, seller.ID)

	actor := Actor{ID: seller.ID, Name: seller.FullName}
	sale, err := env.sales.CreateSale(actor, seller.ID, saleInput(
		SaleLineInput{AllocationID: allocA.ID, Quantity: 2, PriceOverride: dp(100)},
	), "")
	require.NoError(t, err)
	assert.Equal(t, 3, env.sellerAlloc(t, lotA.ID, seller.ID).Quantity)

	updated, err := env.exchange.ExchangeLine(admin, sale.ID, sale.LineItems[0].ID, allocB.ID, nil, "")
	require.NoError(t, err)

	// Old units came back, same count left the replacement allocation.
	assert.Equal(t, 5, env.sellerAlloc(t, lotA.ID, seller.ID).Quantity)
	assert.Equal(t, 3, env.sellerAlloc(t, lotB.ID, seller.ID).Quantity)

	require.Len(t, updated.LineItems, 1)
	line := updated.LineItems[0]
	assert.Equal(t, allocB.ID, line.AllocationID)
	assert.Equal(t, "Phone Y", line.ProductName)
	assert.Equal(t, 2, line.Quantity)
	// Price untouched when no replacement price is given.
	assert.True(t, line.UnitPrice.Equal(d(100)), "got %s", line.UnitPrice)
	assert.True(t, updated.Total.Equal(d(200)), "got %s", updated.Total)
}

func TestExchangeLineWithNewPrice(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedAdmin(t)
	seller := env.seedSeller(t, "Alice")
	lotA := env.seedLot(t, admin, "Phone X", 10)
	lotB := env.seedLot(t, admin, "Phone Y", 10)

	_, err := env.stock.Distribute(admin, lotA.ID, seller.ID, 5, "")
	require.NoError(t, err)
	_, err = env.stock.Distribute(admin, lotB.ID, seller.ID, 5, "")
	require.NoError(t, err)

	allocA := env.sellerAlloc(t, lotA.ID, seller.ID)
	allocB := env.sellerAlloc(t, lotB.ID, seller.ID)

	actor := Actor{ID: seller.ID, Name: seller.FullName}
	sale, err := env.sales.CreateSale(actor, seller.ID, saleInput(
		SaleLineInput{AllocationID: allocA.ID, Quantity: 1, PriceOverride: dp(100)},
	), "")
	require.NoError(t, err)

	updated, err := env.exchange.ExchangeLine(admin, sale.ID, sale.LineItems[0].ID, allocB.ID, dp(250), "")
	require.NoError(t, err)
	assert.True(t, updated.LineItems[0].UnitPrice.Equal(d(250)))
	assert.True(t, updated.Total.Equal(d(250)), "got %s", updated.Total)
}

func TestExchangeLineReversible(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedAdmin(t)
	seller := env.seedSeller(t, "Alice")
	lotA := env.seedLot(t, admin, "Phone X", 10)
	lotB := env.seedLot(t, admin, "Phone Y", 10)

	_, err := env.stock.Distribute(admin, lotA.ID, seller.ID, 5, "")
	require.NoError(t, err)
	_, err = env.stock.Distribute(admin, lotB.ID, seller.ID, 5, "")
	require.NoError(t, err)

	allocA := env.sellerAlloc(t, lotA.ID, seller.ID)
	allocB := env.sellerAlloc(t, lotB.ID, seller.ID)

	actor := Actor{ID: seller.ID, Name: seller.FullName}
	sale, err := env.sales.CreateSale(actor, seller.ID, saleInput(
		SaleLineInput{AllocationID: allocA.ID, Quantity: 2, PriceOverride: dp(100)},
	), "")
	require.NoError(t, err)

	qtyA := env.sellerAlloc(t, lotA.ID, seller.ID).Quantity
	qtyB := env.sellerAlloc(t, lotB.ID, seller.ID).Quantity

	swapped, err := env.exchange.ExchangeLine(admin, sale.ID, sale.LineItems[0].ID, allocB.ID, nil, "")
	require.NoError(t, err)
	reverted, err := env.exchange.ExchangeLine(admin, sale.ID, swapped.LineItems[0].ID, allocA.ID, nil, "")
	require.NoError(t, err)

	// Exchanging back restores the exact pre-exchange quantities.
	assert.Equal(t, qtyA, env.sellerAlloc(t, lotA.ID, seller.ID).Quantity)
	assert.Equal(t, qtyB, env.sellerAlloc(t, lotB.ID, seller.ID).Quantity)

	line := reverted.LineItems[0]
	assert.Equal(t, allocA.ID, line.AllocationID)
	assert.Equal(t, "Phone X", line.ProductName)
	assert.True(t, line.UnitPrice.Equal(d(100)))
	assert.True(t, reverted.Total.Equal(d(200)), "got %s", reverted.Total)
}

func TestExchangeLineSameAllocationRejected(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedAdmin(t)
	seller := env.seedSeller(t, "Alice")
	lot := env.seedLot(t, admin, "Phone X", 10)

	_, err := env.stock.Distribute(admin, lot.ID, seller.ID, 5, "")
	require.NoError(t, err)
	alloc := env.sellerAlloc(t, lot.ID, seller.ID)

	actor := Actor{ID: seller.ID, Name: seller.FullName}
	sale, err := env.sales.CreateSale(actor, seller.ID, saleInput(
		SaleLineInput{AllocationID: alloc.ID, Quantity: 1, PriceOverride: dp(100)},
	), "")
	require.NoError(t, err)

	_, err = env.exchange.ExchangeLine(admin, sale.ID, sale.LineItems[0].ID, alloc.ID, nil, "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidOperation))
}

func TestExchangeLineInsufficientReplacementRollsBack(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedAdmin(t)
	seller := env.seedSeller(t, "Alice")
	lotA := env.seedLot(t, admin, "Phone X", 10)
	lotB := env.seedLot(t, admin, "Phone Y", 10)

	_, err := env.stock.Distribute(admin, lotA.ID, seller.ID, 5, "")
	require.NoError(t, err)
	_, err = env.stock.Distribute(admin, lotB.ID, seller.ID, 1, "")
	require.NoError(t, err)

	allocA := env.sellerAlloc(t, lotA.ID, seller.ID)
	allocB := env.sellerAlloc(t, lotB.ID, seller.ID)

	actor := Actor{ID: seller.ID, Name: seller.FullName}
	sale, err := env.sales.CreateSale(actor, seller.ID, saleInput(
		SaleLineInput{AllocationID: allocA.ID, Quantity: 3, PriceOverride: dp(100)},
	), "")
	require.NoError(t, err)

	_, err = env.exchange.ExchangeLine(admin, sale.ID, sale.LineItems[0].ID, allocB.ID, nil, "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInsufficientStock))

	// The interim return of the old units rolled back with the failed draw.
	assert.Equal(t, 2, env.sellerAlloc(t, lotA.ID, seller.ID).Quantity)
	assert.Equal(t, 1, env.sellerAlloc(t, lotB.ID, seller.ID).Quantity)

	reloaded, err := env.sales.GetSale(sale.ID)
	require.NoError(t, err)
	assert.Equal(t, allocA.ID, reloaded.LineItems[0].AllocationID)
	assert.Equal(t, "Phone X", reloaded.LineItems[0].ProductName)
}
