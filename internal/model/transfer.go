package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransferKind string

const (
	TransferDistribution   TransferKind = "distribution"   // pool -> seller
	TransferRedistribution TransferKind = "redistribution" // seller -> seller
	TransferAdjustment     TransferKind = "adjustment"     // audited admin correction
	TransferSaleReturn     TransferKind = "sale_return"    // stock returned on sale/line deletion
)

// StockTransfer is the append-only audit row written for every quantity
// movement between holders. Never updated or deleted; allocation history is
// reconstructed from these rows.
type StockTransfer struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	LotID        uuid.UUID    `gorm:"type:uuid;not null;index" json:"lot_id"`
	Lot          PurchaseLot  `gorm:"foreignKey:LotID" json:"lot,omitempty"`
	FromHolderID *uuid.UUID   `gorm:"type:uuid" json:"from_holder_id"` // nil = admin pool
	FromHolder   *User        `gorm:"foreignKey:FromHolderID" json:"from_holder,omitempty"`
	ToHolderID   *uuid.UUID   `gorm:"type:uuid" json:"to_holder_id"` // nil = admin pool
	ToHolder     *User        `gorm:"foreignKey:ToHolderID" json:"to_holder,omitempty"`
	Quantity     int          `gorm:"not null" json:"quantity"`
	Kind         TransferKind `gorm:"type:varchar(20);not null;index" json:"kind"`
	ActorID      uuid.UUID    `gorm:"type:uuid;not null" json:"actor_id"`
	Actor        User         `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	CreatedAt    time.Time    `gorm:"not null;index" json:"created_at"`
}

func (t *StockTransfer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
