package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseLot is one purchasing event: a product bought at a given cost basis
// and quantity. The purchased quantity never changes after creation; what
// moves is the quantity held by each allocation spawned from the lot.
//
// UnitPrice is the derived local base price (CostForeign x ExchangeRate) and
// acts as the fallback when no tier or payment-method price applies.
type PurchaseLot struct {
	BaseModel
	Name         string          `gorm:"type:varchar(255);not null;index" json:"name" validate:"required"`
	Description  *string         `json:"description,omitempty"`
	Color        *string         `gorm:"type:varchar(50)" json:"color,omitempty"`
	IMEI         *string         `gorm:"type:varchar(255);uniqueIndex" json:"imei,omitempty"`
	Barcode      *string         `gorm:"type:varchar(255);index" json:"barcode,omitempty"`
	Supplier     *string         `gorm:"type:varchar(255)" json:"supplier,omitempty"`
	CategoryID   *uuid.UUID      `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Category     *LotCategory    `gorm:"foreignKey:CategoryID" json:"category,omitempty" validate:"-"`
	CostForeign  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost_foreign" validate:"gte=0"`
	ExchangeRate decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"exchange_rate" validate:"gt=0"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	PurchasedQty int             `gorm:"not null" json:"purchased_qty" validate:"required,gt=0"`
	PurchaseDate time.Time       `gorm:"not null" json:"purchase_date"`

	// Tier prices. Unset (nil) or zero tiers fall back to UnitPrice.
	WholesalePrice     *decimal.Decimal `gorm:"type:decimal(12,2)" json:"wholesale_price,omitempty"`
	RetailPrice        *decimal.Decimal `gorm:"type:decimal(12,2)" json:"retail_price,omitempty"`
	SpecialResalePrice *decimal.Decimal `gorm:"type:decimal(12,2)" json:"special_resale_price,omitempty"`
	InstallmentPrice   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"installment_price,omitempty"`

	Allocations []Allocation `gorm:"foreignKey:LotID" json:"allocations,omitempty"`
}

// TierPrice returns the stored tier price for a client category, or nil when
// that tier is unset or zero.
func (l *PurchaseLot) TierPrice(category ClientCategory) *decimal.Decimal {
	var tier *decimal.Decimal
	switch category {
	case ClientWholesale:
		tier = l.WholesalePrice
	case ClientRetail:
		tier = l.RetailPrice
	case ClientSpecialResale:
		tier = l.SpecialResalePrice
	}
	if tier == nil || tier.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	return tier
}

// ClientCategory selects the per-lot price tier at sale time.
type ClientCategory string

const (
	ClientWholesale     ClientCategory = "wholesale"
	ClientRetail        ClientCategory = "retail"
	ClientSpecialResale ClientCategory = "special_resale"
)
