package service

import (
	"testing"
	"time"

	"go-resale-ledger/internal/model"
	"go-resale-ledger/pkg/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseLot(name string) *model.PurchaseLot {
	return &model.PurchaseLot{
		Name:         name,
		CostForeign:  decimal.NewFromInt(100),
		ExchangeRate: decimal.NewFromFloat(1.2),
		UnitPrice:    decimal.NewFromInt(120),
		PurchasedQty: 10,
		PurchaseDate: time.Now(),
	}
}

func TestResolvePriceOverrideWinsOverTiers(t *testing.T) {
	env := newTestEnv(t)

	lot := baseLot("Phone X")
	lot.WholesalePrice = dp(100)
	lot.RetailPrice = dp(150)

	price, err := env.pricing.ResolvePrice(lot, model.ClientWholesale, model.PayNotInformed, dp(80))
	require.NoError(t, err)
	assert.True(t, price.Equal(d(80)), "got %s", price)
}

func TestResolvePriceTierByCategory(t *testing.T) {
	env := newTestEnv(t)

	lot := baseLot("Phone X")
	lot.WholesalePrice = dp(100)
	lot.RetailPrice = dp(150)

	price, err := env.pricing.ResolvePrice(lot, model.ClientRetail, model.PayNotInformed, nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(d(150)), "got %s", price)

	price, err = env.pricing.ResolvePrice(lot, model.ClientWholesale, model.PayNotInformed, nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(d(100)), "got %s", price)
}

func TestResolvePricePaymentMethodBeatsTier(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.pricing.UpsertPricing(&model.ProductPricing{
		ProductName: "Phone X",
		CashPix:     d(140),
		Credit12x:   d(180),
	}, "tester")
	require.NoError(t, err)

	lot := baseLot("Phone X")
	lot.RetailPrice = dp(150)

	price, err := env.pricing.ResolvePrice(lot, model.ClientRetail, model.PayCashPix, nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(d(140)), "got %s", price)

	// Method without a configured price falls through to the tier.
	price, err = env.pricing.ResolvePrice(lot, model.ClientRetail, model.PayDebit, nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(d(150)), "got %s", price)
}

func TestResolvePriceFallsBackToUnitPrice(t *testing.T) {
	env := newTestEnv(t)

	lot := baseLot("Phone X")
	price, err := env.pricing.ResolvePrice(lot, model.ClientRetail, model.PayNotInformed, nil)
	require.NoError(t, err)
	assert.True(t, price.Equal(d(120)), "got %s", price)
}

func TestResolvePriceUnavailable(t *testing.T) {
	env := newTestEnv(t)

	lot := baseLot("Phone X")
	lot.UnitPrice = decimal.Zero

	_, err := env.pricing.ResolvePrice(lot, model.ClientRetail, model.PayNotInformed, nil)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindPricingUnavailable))
}

func TestResolvePriceZeroOverrideIgnored(t *testing.T) {
	env := newTestEnv(t)

	lot := baseLot("Phone X")
	price, err := env.pricing.ResolvePrice(lot, model.ClientRetail, model.PayNotInformed, dp(0))
	require.NoError(t, err)
	assert.True(t, price.Equal(d(120)), "got %s", price)
}

func TestUpsertPricingRejectsNegative(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.pricing.UpsertPricing(&model.ProductPricing{
		ProductName: "Phone X",
		CashPix:     d(-1),
	}, "tester")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestUpsertPricingReplacesExisting(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.pricing.UpsertPricing(&model.ProductPricing{
		ProductName: "Phone X",
		CashPix:     d(140),
	}, "tester")
	require.NoError(t, err)

	_, err = env.pricing.UpsertPricing(&model.ProductPricing{
		ProductName: "Phone X",
		CashPix:     d(135),
		Debit:       d(145),
	}, "tester")
	require.NoError(t, err)

	pricings, err := env.pricing.ListPricings()
	require.NoError(t, err)
	require.Len(t, pricings, 1)
	assert.True(t, pricings[0].CashPix.Equal(d(135)))
	assert.True(t, pricings[0].Debit.Equal(d(145)))
}
