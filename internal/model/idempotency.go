package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdempotencyKey dedupes retried mutating requests. The key is inserted in
// the same transaction as the mutation it guards, so a retry that lost the
// race fails on the unique index before touching stock.
type IdempotencyKey struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Key       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"key"`
	Operation string    `gorm:"type:varchar(50);not null" json:"operation"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null" json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (k *IdempotencyKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}
