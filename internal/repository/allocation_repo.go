package repository

import (
	"errors"

	"go-resale-ledger/internal/model"
	"go-resale-ledger/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AllocationRepository owns every read and write of allocation rows.
// AdjustByID is the single mutation primitive: higher-level operations
// (distribute, redistribute, sale, exchange, correction) are expressed as one
// or more adjusts inside one transaction and never edit quantity directly.
type AllocationRepository interface {
	FindByID(id uuid.UUID) (*model.Allocation, error)
	FindByLotAndHolder(lotID uuid.UUID, holderID *uuid.UUID) (*model.Allocation, error)
	FindByHolder(holderID *uuid.UUID, hideEmpty bool) ([]model.Allocation, error)
	FindByLot(lotID uuid.UUID) ([]model.Allocation, error)
	Create(tx *gorm.DB, alloc *model.Allocation) error
	AdjustByID(tx *gorm.DB, id uuid.UUID, delta int, updatedBy string) (*model.Allocation, error)
	AdjustHolder(tx *gorm.DB, lotID uuid.UUID, holderID *uuid.UUID, delta int, updatedBy string) (*model.Allocation, error)
	Deactivate(tx *gorm.DB, id uuid.UUID, updatedBy string) error
}

type allocationRepo struct {
	db *gorm.DB
}

func NewAllocationRepo(db *gorm.DB) AllocationRepository {
	return &allocationRepo{db}
}

func (r *allocationRepo) FindByID(id uuid.UUID) (*model.Allocation, error) {
	var alloc model.Allocation
	err := r.db.Preload("Lot").Preload("Holder").First(&alloc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "allocation not found")
	}
	return &alloc, err
}

func (r *allocationRepo) FindByLotAndHolder(lotID uuid.UUID, holderID *uuid.UUID) (*model.Allocation, error) {
	var alloc model.Allocation
	q := r.db.Where("lot_id = ?", lotID)
	if holderID == nil {
		q = q.Where("holder_id IS NULL")
	} else {
		q = q.Where("holder_id = ?", *holderID)
	}
	err := q.First(&alloc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "allocation not found")
	}
	return &alloc, err
}

func (r *allocationRepo) FindByHolder(holderID *uuid.UUID, hideEmpty bool) ([]model.Allocation, error) {
	var allocs []model.Allocation
	q := r.db.Where("active = ?", true)
	if holderID == nil {
		q = q.Where("holder_id IS NULL")
	} else {
		q = q.Where("holder_id = ?", *holderID)
	}
	if hideEmpty {
		q = q.Where("quantity > ?", 0)
	}
	err := q.Preload("Lot").Preload("Holder").Order("created_at ASC").Find(&allocs).Error
	return allocs, err
}

func (r *allocationRepo) FindByLot(lotID uuid.UUID) ([]model.Allocation, error) {
	var allocs []model.Allocation
	err := r.db.Where("lot_id = ?", lotID).Preload("Holder").Order("created_at ASC").Find(&allocs).Error
	return allocs, err
}

func (r *allocationRepo) Create(tx *gorm.DB, alloc *model.Allocation) error {
	return tx.Create(alloc).Error
}

// AdjustByID applies delta atomically via a guarded UPDATE. The predicate
// `quantity + delta >= 0` runs inside the database, so two racing decrements
// can never both succeed when only one fits; the loser observes zero affected
// rows and gets InsufficientStock without any SELECT FOR UPDATE.
func (r *allocationRepo) AdjustByID(tx *gorm.DB, id uuid.UUID, delta int, updatedBy string) (*model.Allocation, error) {
	updates := map[string]interface{}{
		"quantity":   gorm.Expr("quantity + ?", delta),
		"updated_by": updatedBy,
	}
	if delta > 0 {
		// Incoming stock makes a deactivated row selectable again.
		updates["active"] = true
	}

	res := tx.Model(&model.Allocation{}).
		Where("id = ? AND quantity + ? >= 0", id, delta).
		Updates(updates)
	if res.Error != nil {
		return nil, apperr.Wrap(res.Error, "failed to adjust allocation")
	}

	if res.RowsAffected == 0 {
		var exists int64
		tx.Model(&model.Allocation{}).Where("id = ?", id).Count(&exists)
		if exists == 0 {
			return nil, apperr.New(apperr.KindNotFound, "allocation not found")
		}
		return nil, apperr.New(apperr.KindInsufficientStock, "insufficient stock in allocation")
	}

	var alloc model.Allocation
	if err := tx.First(&alloc, "id = ?", id).Error; err != nil {
		return nil, apperr.Wrap(err, "failed to reload allocation")
	}
	return &alloc, nil
}

// AdjustHolder resolves the (lot, holder) allocation and adjusts it, creating
// the row first when a seller receives stock for a lot they never held. The
// admin pool row is created with its lot and is never created here.
func (r *allocationRepo) AdjustHolder(tx *gorm.DB, lotID uuid.UUID, holderID *uuid.UUID, delta int, updatedBy string) (*model.Allocation, error) {
	var alloc model.Allocation
	q := tx.Where("lot_id = ?", lotID)
	if holderID == nil {
		q = q.Where("holder_id IS NULL")
	} else {
		q = q.Where("holder_id = ?", *holderID)
	}

	err := q.First(&alloc).Error
	switch {
	case err == nil:
		return r.AdjustByID(tx, alloc.ID, delta, updatedBy)
	case errors.Is(err, gorm.ErrRecordNotFound):
		if holderID == nil {
			return nil, apperr.New(apperr.KindNotFound, "lot has no pool allocation")
		}
		if delta <= 0 {
			// Absent row behaves as an empty one: created at zero, any
			// decrement overdraws it.
			return nil, apperr.New(apperr.KindInsufficientStock, "insufficient stock in allocation")
		}
		alloc = model.Allocation{
			LotID:    lotID,
			HolderID: holderID,
			Quantity: delta,
			Active:   true,
		}
		alloc.CreatedBy = updatedBy
		alloc.UpdatedBy = updatedBy
		if err := tx.Create(&alloc).Error; err != nil {
			// Unique (lot, holder) index: a concurrent creation won the race.
			return nil, apperr.New(apperr.KindConflict, "allocation was created concurrently, retry")
		}
		return &alloc, nil
	default:
		return nil, apperr.Wrap(err, "failed to load allocation")
	}
}

func (r *allocationRepo) Deactivate(tx *gorm.DB, id uuid.UUID, updatedBy string) error {
	res := tx.Model(&model.Allocation{}).Where("id = ?", id).
		Updates(map[string]interface{}{"active": false, "updated_by": updatedBy})
	if res.Error != nil {
		return apperr.Wrap(res.Error, "failed to deactivate allocation")
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "allocation not found")
	}
	return nil
}
