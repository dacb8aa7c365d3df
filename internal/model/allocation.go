package model

import "github.com/google/uuid"

// Allocation is the quantity of one lot currently held by one holder. The
// administrative pool is the row with HolderID == nil; it is created together
// with its lot and is never created by a transfer. A quantity of zero keeps
// the row visible but inactive for selection.
//
// Invariant: per lot, the sum of all allocation quantities plus the units
// sold (and not exchanged back) equals the lot's purchased quantity.
// Allocations are mutated only through the adjust primitive.
type Allocation struct {
	BaseModel
	LotID    uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_lot_holder" json:"lot_id" validate:"uuid_required"`
	Lot      PurchaseLot `gorm:"foreignKey:LotID" json:"lot,omitempty" validate:"-"`
	HolderID *uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_lot_holder" json:"holder_id"` // nil = admin pool
	Holder   *User       `gorm:"foreignKey:HolderID" json:"holder,omitempty" validate:"-"`
	Quantity int         `gorm:"not null;default:0" json:"quantity"`
	Active   bool        `gorm:"default:true" json:"active"`
}

// IsPool reports whether this allocation is the administrative pool row.
func (a *Allocation) IsPool() bool {
	return a.HolderID == nil
}

// HeldBy reports whether the allocation belongs to the given holder, where a
// nil holder means the admin pool.
func (a *Allocation) HeldBy(holderID *uuid.UUID) bool {
	if a.HolderID == nil || holderID == nil {
		return a.HolderID == nil && holderID == nil
	}
	return *a.HolderID == *holderID
}
