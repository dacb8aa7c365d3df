package repository

import (
	"errors"

	"go-resale-ledger/internal/model"

	"gorm.io/gorm"
)

type PricingRepository interface {
	FindByProductName(name string) (*model.ProductPricing, error)
	FindAll() ([]model.ProductPricing, error)
	Search(term string) ([]model.ProductPricing, error)
	Upsert(pricing *model.ProductPricing) error
}

type pricingRepo struct {
	db *gorm.DB
}

func NewPricingRepo(db *gorm.DB) PricingRepository {
	return &pricingRepo{db}
}

// FindByProductName returns (nil, nil) when no pricing row exists for the
// name; the resolver treats absence as "fall back to per-lot tiers".
func (r *pricingRepo) FindByProductName(name string) (*model.ProductPricing, error) {
	var pricing model.ProductPricing
	err := r.db.First(&pricing, "product_name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pricing, nil
}

func (r *pricingRepo) FindAll() ([]model.ProductPricing, error) {
	var pricings []model.ProductPricing
	err := r.db.Order("product_name ASC").Find(&pricings).Error
	return pricings, err
}

func (r *pricingRepo) Search(term string) ([]model.ProductPricing, error) {
	var pricings []model.ProductPricing
	err := r.db.Where("product_name LIKE ?", "%"+term+"%").
		Order("product_name ASC").
		Find(&pricings).Error
	return pricings, err
}

func (r *pricingRepo) Upsert(pricing *model.ProductPricing) error {
	var existing model.ProductPricing
	err := r.db.First(&existing, "product_name = ?", pricing.ProductName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(pricing).Error
	}
	if err != nil {
		return err
	}

	existing.CashPix = pricing.CashPix
	existing.Debit = pricing.Debit
	existing.CreditLump = pricing.CreditLump
	existing.Credit5x = pricing.Credit5x
	existing.Credit10x = pricing.Credit10x
	existing.Credit12x = pricing.Credit12x
	existing.UpdatedBy = pricing.UpdatedBy
	if err := r.db.Save(&existing).Error; err != nil {
		return err
	}
	*pricing = existing
	return nil
}
