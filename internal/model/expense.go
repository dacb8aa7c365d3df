package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseCategory groups operating expenses for the admin reports. Deleting a
// category removes its expenses with it.
type ExpenseCategory struct {
	BaseModel
	Name        string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
}

// Expense is one operating cost entry (freight, customs, rent). Expenses
// never touch stock; they only feed the financial reports.
type Expense struct {
	BaseModel
	Name        string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount" validate:"gt=0"`
	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id" validate:"uuid_required"`
	Category    ExpenseCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty" validate:"-"`
	Description *string         `json:"description,omitempty"`

	// Date-only; stored at midnight UTC so range filters behave the same
	// across database backends.
	ExpenseDate time.Time `gorm:"not null;index" json:"expense_date"`
}
