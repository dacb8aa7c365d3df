package service

import (
	"fmt"

	"go-resale-ledger/internal/model"
	"go-resale-ledger/internal/repository"
	"go-resale-ledger/pkg/apperr"
	"go-resale-ledger/pkg/validator"

	"github.com/shopspring/decimal"
)

// PricingService resolves the unit price charged at sale time and manages the
// centralized per-product-name pricing table.
//
// Resolution precedence:
//  1. explicit per-line override (> 0) supplied by the seller
//  2. payment-method price from the product-name table, when set
//  3. per-lot tier price for the client category, when set
//  4. the lot's base price (cost x exchange rate)
//
// A price is never zero or negative; running out of candidates is a
// PricingUnavailable error, not a silent default.
type PricingService interface {
	ResolvePrice(lot *model.PurchaseLot, category model.ClientCategory, method model.PaymentMethod, override *decimal.Decimal) (decimal.Decimal, error)
	ListPricings() ([]model.ProductPricing, error)
	SearchPricings(term string) ([]model.ProductPricing, error)
	UpsertPricing(pricing *model.ProductPricing, actorID string) (*model.ProductPricing, error)
}

type pricingService struct {
	pricingRepo repository.PricingRepository
}

func NewPricingService(pricingRepo repository.PricingRepository) PricingService {
	return &pricingService{pricingRepo: pricingRepo}
}

func (s *pricingService) ResolvePrice(lot *model.PurchaseLot, category model.ClientCategory, method model.PaymentMethod, override *decimal.Decimal) (decimal.Decimal, error) {
	// 1. Explicit override always wins; sellers may reprice any line.
	if override != nil && override.GreaterThan(decimal.Zero) {
		return *override, nil
	}

	// 2. Centralized product-name pricing, keyed by payment method.
	pricing, err := s.pricingRepo.FindByProductName(lot.Name)
	if err != nil {
		return decimal.Zero, apperr.Wrap(err, "failed to load product pricing")
	}
	if pricing != nil {
		if price := pricing.PriceFor(method); price != nil {
			return *price, nil
		}
	}

	// 3. Per-lot tier for the client category.
	if tier := lot.TierPrice(category); tier != nil {
		return *tier, nil
	}

	// 4. Lot base price.
	if lot.UnitPrice.GreaterThan(decimal.Zero) {
		return lot.UnitPrice, nil
	}

	return decimal.Zero, apperr.Newf(apperr.KindPricingUnavailable,
		"no usable price for %q (category %s, payment %s)", lot.Name, category, method)
}

func (s *pricingService) ListPricings() ([]model.ProductPricing, error) {
	return s.pricingRepo.FindAll()
}

func (s *pricingService) SearchPricings(term string) ([]model.ProductPricing, error) {
	if term == "" {
		return nil, apperr.New(apperr.KindValidation, "search term is required")
	}
	return s.pricingRepo.Search(term)
}

func (s *pricingService) UpsertPricing(pricing *model.ProductPricing, actorID string) (*model.ProductPricing, error) {
	if errs := validator.ValidateStruct(pricing); len(errs) > 0 {
		first := errs[0]
		return nil, apperr.Newf(apperr.KindValidation,
			"validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	pricing.CreatedBy = actorID
	pricing.UpdatedBy = actorID
	if err := s.pricingRepo.Upsert(pricing); err != nil {
		return nil, apperr.Wrap(err, fmt.Sprintf("failed to save pricing for %q", pricing.ProductName))
	}
	return pricing, nil
}
