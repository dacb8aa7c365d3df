package model

import "github.com/shopspring/decimal"

// ProductPricing is the centralized per-product-name price table. When a row
// exists for a product name, its payment-method price takes precedence over
// the per-lot client-category tiers.
type ProductPricing struct {
	BaseModel
	ProductName string `gorm:"type:varchar(255);uniqueIndex;not null" json:"product_name" validate:"required"`

	CashPix    decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"cash_pix" validate:"gte=0"`
	Debit      decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"debit" validate:"gte=0"`
	CreditLump decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"credit_lump" validate:"gte=0"`
	Credit5x   decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"credit_5x" validate:"gte=0"`
	Credit10x  decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"credit_10x" validate:"gte=0"`
	Credit12x  decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"credit_12x" validate:"gte=0"`
}

// PriceFor returns the stored price for a payment method, or nil when the
// method is unknown or its price is unset (zero).
func (p *ProductPricing) PriceFor(method PaymentMethod) *decimal.Decimal {
	var price decimal.Decimal
	switch method {
	case PayCashPix:
		price = p.CashPix
	case PayDebit:
		price = p.Debit
	case PayCreditLump:
		price = p.CreditLump
	case PayCredit5x:
		price = p.Credit5x
	case PayCredit10x:
		price = p.Credit10x
	case PayCredit12x:
		price = p.Credit12x
	default:
		return nil
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	return &price
}
