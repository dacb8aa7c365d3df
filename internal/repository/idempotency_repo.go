package repository

import (
	"go-resale-ledger/internal/model"
	"go-resale-ledger/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IdempotencyRepository interface {
	// Claim records the key inside tx, failing with Conflict when the key was
	// already used. Claiming inside the mutation's transaction means a
	// replayed request aborts before any stock moves.
	Claim(tx *gorm.DB, key, operation string, actorID uuid.UUID) error
}

type idempotencyRepo struct {
	db *gorm.DB
}

func NewIdempotencyRepo(db *gorm.DB) IdempotencyRepository {
	return &idempotencyRepo{db}
}

func (r *idempotencyRepo) Claim(tx *gorm.DB, key, operation string, actorID uuid.UUID) error {
	var count int64
	if err := tx.Model(&model.IdempotencyKey{}).Where("key = ?", key).Count(&count).Error; err != nil {
		return apperr.Wrap(err, "failed to check idempotency key")
	}
	if count > 0 {
		return apperr.New(apperr.KindConflict, "request already processed (duplicate idempotency key)")
	}

	record := model.IdempotencyKey{Key: key, Operation: operation, ActorID: actorID}
	if err := tx.Create(&record).Error; err != nil {
		// Unique index: a concurrent retry claimed the key first.
		return apperr.New(apperr.KindConflict, "request already processed (duplicate idempotency key)")
	}
	return nil
}
