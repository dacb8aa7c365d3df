package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod selects among the payment-specific prices of the centralized
// product pricing table when one exists for the product name.
type PaymentMethod string

const (
	PayCashPix     PaymentMethod = "cash_pix"
	PayDebit       PaymentMethod = "debit"
	PayCreditLump  PaymentMethod = "credit_lump"
	PayCredit5x    PaymentMethod = "credit_5x"
	PayCredit10x   PaymentMethod = "credit_10x"
	PayCredit12x   PaymentMethod = "credit_12x"
	PayNotInformed PaymentMethod = ""
)

// Sale is one committed transaction: customer data, the responsible seller,
// and one or more line items. It is persisted atomically with the allocation
// decrements of every line.
type Sale struct {
	BaseModel
	CustomerName   string         `gorm:"type:varchar(255);not null" json:"customer_name" validate:"required"`
	Phone          string         `gorm:"type:varchar(50);not null" json:"phone" validate:"required"`
	Address        string         `gorm:"type:varchar(255);not null" json:"address" validate:"required"`
	Notes          *string        `json:"notes,omitempty"`
	PhotoRef       *string        `gorm:"type:varchar(512)" json:"photo_ref,omitempty"`
	ClientCategory ClientCategory `gorm:"type:varchar(30)" json:"client_category"`
	PaymentMethod  PaymentMethod  `gorm:"type:varchar(30)" json:"payment_method"`

	// Optional recorded split of the payment. Informational only; does not
	// participate in stock or total computation.
	AmountPix  *decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount_pix,omitempty"`
	AmountCard *decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount_card,omitempty"`
	AmountCash *decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount_cash,omitempty"`

	SellerID uuid.UUID       `gorm:"type:uuid;not null;index" json:"seller_id"`
	Seller   User            `gorm:"foreignKey:SellerID" json:"seller,omitempty" validate:"-"`
	Total    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`

	LineItems []SaleLineItem `gorm:"foreignKey:SaleID" json:"line_items,omitempty"`
}

// RecomputeTotal derives the sale total from its line items.
func (s *Sale) RecomputeTotal() {
	total := decimal.Zero
	for _, li := range s.LineItems {
		total = total.Add(li.Subtotal())
	}
	s.Total = total
}

// SaleLineItem consumes quantity from one allocation at a fixed unit price.
// The quantity is set at creation; the allocation reference and price may be
// rewritten later by an exchange, the quantity/price by an administrative
// correction (which does not touch stock).
type SaleLineItem struct {
	BaseModel
	SaleID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	AllocationID uuid.UUID       `gorm:"type:uuid;not null;index" json:"allocation_id" validate:"uuid_required"`
	Allocation   Allocation      `gorm:"foreignKey:AllocationID" json:"allocation,omitempty" validate:"-"`
	ProductName  string          `gorm:"type:varchar(255);not null" json:"product_name"` // snapshot at sale/exchange time
	Quantity     int             `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
}

func (li *SaleLineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}
