package service

import (
	"fmt"
	"time"

	"go-resale-ledger/internal/model"
	"go-resale-ledger/internal/repository"
	"go-resale-ledger/internal/ws"
	"go-resale-ledger/pkg/apperr"
	"go-resale-ledger/pkg/logger"
	"go-resale-ledger/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TierPriceUpdate carries administrative tier-price corrections. Nil fields
// are left untouched.
type TierPriceUpdate struct {
	WholesalePrice     *decimal.Decimal `json:"wholesale_price"`
	RetailPrice        *decimal.Decimal `json:"retail_price"`
	SpecialResalePrice *decimal.Decimal `json:"special_resale_price"`
	InstallmentPrice   *decimal.Decimal `json:"installment_price"`
}

// LotService manages purchase lots. Creating a lot also creates its admin
// pool allocation holding the full purchased quantity; from then on the
// purchased quantity is immutable and only allocations move.
type LotService interface {
	CreateLot(actor Actor, lot *model.PurchaseLot) (*model.PurchaseLot, error)
	GetLot(id uuid.UUID) (*model.PurchaseLot, error)
	ListLots(filter repository.LotFilter) ([]model.PurchaseLot, int64, error)
	UpdateLot(actor Actor, id uuid.UUID, updates map[string]interface{}) (*model.PurchaseLot, error)
	UpdateTierPrices(actor Actor, id uuid.UUID, update TierPriceUpdate) (*model.PurchaseLot, error)
	DeleteLot(actor Actor, id uuid.UUID) error
}

type lotService struct {
	lotRepo   repository.LotRepository
	allocRepo repository.AllocationRepository
	saleRepo  repository.SaleRepository
	db        *gorm.DB
	wsHub     *ws.Hub
}

func NewLotService(
	lotRepo repository.LotRepository,
	allocRepo repository.AllocationRepository,
	saleRepo repository.SaleRepository,
	db *gorm.DB,
	hub *ws.Hub,
) LotService {
	return &lotService{
		lotRepo:   lotRepo,
		allocRepo: allocRepo,
		saleRepo:  saleRepo,
		db:        db,
		wsHub:     hub,
	}
}

func (s *lotService) CreateLot(actor Actor, lot *model.PurchaseLot) (*model.PurchaseLot, error) {
	if errs := validator.ValidateStruct(lot); len(errs) > 0 {
		first := errs[0]
		return nil, apperr.Newf(apperr.KindValidation,
			"validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	// Duplicate IMEI check (business validation, on top of the unique index).
	if lot.IMEI != nil && *lot.IMEI != "" {
		if existing, _ := s.lotRepo.FindByIMEI(*lot.IMEI); existing != nil && existing.ID != uuid.Nil {
			return nil, apperr.Newf(apperr.KindValidation, "IMEI %s already registered", *lot.IMEI)
		}
	}

	lot.UnitPrice = lot.CostForeign.Mul(lot.ExchangeRate).Round(2)
	if lot.PurchaseDate.IsZero() {
		lot.PurchaseDate = time.Now()
	}
	lot.CreatedBy = actor.audit()
	lot.UpdatedBy = actor.audit()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.lotRepo.Create(tx, lot); err != nil {
			return apperr.Wrap(err, "failed to create lot")
		}

		// The whole purchased quantity starts in the admin pool.
		pool := model.Allocation{
			LotID:    lot.ID,
			HolderID: nil,
			Quantity: lot.PurchasedQty,
			Active:   true,
		}
		pool.CreatedBy = actor.audit()
		pool.UpdatedBy = actor.audit()
		if err := s.allocRepo.Create(tx, &pool); err != nil {
			return apperr.Wrap(err, "failed to create pool allocation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithOp("lot_create").
		WithField("lot_id", lot.ID).
		WithField("qty", lot.PurchasedQty).
		Info("lot registered")

	s.wsHub.PublishStockEvent(ws.StockEvent{
		Action:  "lot_created",
		Payload: lot,
		Actor:   actor.wsActor(),
		Message: fmt.Sprintf("%s registered lot '%s' (%d units)", actor.Name, lot.Name, lot.PurchasedQty),
	})
	return lot, nil
}

func (s *lotService) GetLot(id uuid.UUID) (*model.PurchaseLot, error) {
	return s.lotRepo.FindByID(id)
}

func (s *lotService) ListLots(filter repository.LotFilter) ([]model.PurchaseLot, int64, error) {
	return s.lotRepo.FindAll(filter)
}

// UpdateLot corrects descriptive fields only. Quantity, cost basis and tier
// prices each have their own audited paths.
func (s *lotService) UpdateLot(actor Actor, id uuid.UUID, updates map[string]interface{}) (*model.PurchaseLot, error) {
	allowed := map[string]bool{
		"name": true, "description": true, "color": true,
		"barcode": true, "supplier": true, "purchase_date": true,
		"category_id": true,
	}
	filtered := map[string]interface{}{"updated_by": actor.audit()}
	for k, v := range updates {
		if allowed[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 1 {
		return nil, apperr.New(apperr.KindValidation, "no updatable fields provided")
	}

	if err := s.lotRepo.UpdateFields(id, filtered); err != nil {
		return nil, err
	}
	return s.lotRepo.FindByID(id)
}

func (s *lotService) UpdateTierPrices(actor Actor, id uuid.UUID, update TierPriceUpdate) (*model.PurchaseLot, error) {
	updates := map[string]interface{}{"updated_by": actor.audit()}
	set := func(col string, v *decimal.Decimal) error {
		if v == nil {
			return nil
		}
		if v.IsNegative() {
			return apperr.New(apperr.KindValidation, "tier prices must not be negative")
		}
		updates[col] = *v
		return nil
	}
	for col, v := range map[string]*decimal.Decimal{
		"wholesale_price":      update.WholesalePrice,
		"retail_price":         update.RetailPrice,
		"special_resale_price": update.SpecialResalePrice,
		"installment_price":    update.InstallmentPrice,
	} {
		if err := set(col, v); err != nil {
			return nil, err
		}
	}
	if len(updates) == 1 {
		return nil, apperr.New(apperr.KindValidation, "no tier prices provided")
	}

	if err := s.lotRepo.UpdateFields(id, updates); err != nil {
		return nil, err
	}
	return s.lotRepo.FindByID(id)
}

// DeleteLot soft-deletes a lot and deactivates its allocations. A lot with
// units still allocated to sellers cannot be deleted; sale history keeps
// referencing the soft-deleted rows.
func (s *lotService) DeleteLot(actor Actor, id uuid.UUID) error {
	lot, err := s.lotRepo.FindByID(id)
	if err != nil {
		return err
	}

	allocs, err := s.allocRepo.FindByLot(lot.ID)
	if err != nil {
		return apperr.Wrap(err, "failed to load allocations")
	}
	for _, a := range allocs {
		if !a.IsPool() && a.Quantity > 0 {
			return apperr.New(apperr.KindInvalidOperation,
				"lot still has units allocated to sellers; redistribute or adjust them first")
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, a := range allocs {
			if err := s.allocRepo.Deactivate(tx, a.ID, actor.audit()); err != nil {
				return err
			}
		}
		if err := s.lotRepo.SoftDelete(tx, lot.ID, actor.audit()); err != nil {
			return apperr.Wrap(err, "failed to delete lot")
		}
		return nil
	})
}
