package repository

import (
	"time"

	"go-resale-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransferFilter struct {
	LotID    *uuid.UUID
	HolderID *uuid.UUID
	Kind     model.TransferKind
	DateFrom *time.Time
	DateTo   *time.Time
}

// TransferRepository records and reads the append-only movement audit rows.
// There is deliberately no update or delete.
type TransferRepository interface {
	Create(tx *gorm.DB, transfer *model.StockTransfer) error
	FindAll(filter TransferFilter) ([]model.StockTransfer, error)
}

type transferRepo struct {
	db *gorm.DB
}

func NewTransferRepo(db *gorm.DB) TransferRepository {
	return &transferRepo{db}
}

func (r *transferRepo) Create(tx *gorm.DB, transfer *model.StockTransfer) error {
	return tx.Create(transfer).Error
}

func (r *transferRepo) FindAll(filter TransferFilter) ([]model.StockTransfer, error) {
	q := r.db.Model(&model.StockTransfer{})

	if filter.LotID != nil {
		q = q.Where("lot_id = ?", *filter.LotID)
	}
	if filter.HolderID != nil {
		q = q.Where("from_holder_id = ? OR to_holder_id = ?", *filter.HolderID, *filter.HolderID)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.DateFrom != nil {
		q = q.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		q = q.Where("created_at <= ?", *filter.DateTo)
	}

	var transfers []model.StockTransfer
	err := q.Preload("Lot").Preload("FromHolder").Preload("ToHolder").Preload("Actor").
		Order("created_at DESC").
		Find(&transfers).Error
	return transfers, err
}
