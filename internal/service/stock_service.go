package service

import (
	"fmt"

	"go-resale-ledger/internal/model"
	"go-resale-ledger/internal/repository"
	"go-resale-ledger/internal/ws"
	"go-resale-ledger/pkg/apperr"
	"go-resale-ledger/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor is the authenticated caller identity the HTTP boundary attaches to
// every request.
type Actor struct {
	ID      uuid.UUID
	Name    string
	Email   string
	IsAdmin bool
}

func (a Actor) audit() string { return a.ID.String() }

func (a Actor) wsActor() ws.EventActor {
	return ws.EventActor{ID: a.ID.String(), Name: a.Name, Email: a.Email}
}

// SellerStock is one seller's stock view in the admin overview.
type SellerStock struct {
	Seller      model.UserResponse `json:"seller"`
	Allocations []model.Allocation `json:"allocations"`
	TotalUnits  int                `json:"total_units"`
}

// TransferResult reports the post-mutation state of both endpoints so
// callers can reconcile their local views from the response alone.
type TransferResult struct {
	From *model.Allocation `json:"from"`
	To   *model.Allocation `json:"to"`
}

// StockService moves quantity between holders. Distribution (pool to seller)
// and redistribution (seller to seller) share one transfer core with the
// admin pool modeled as the nil holder; both run as a single transaction of
// two adjusts plus an audit row.
type StockService interface {
	Distribute(actor Actor, lotID, toSeller uuid.UUID, quantity int, idemKey string) (*TransferResult, error)
	Redistribute(actor Actor, lotID, fromSeller, toSeller uuid.UUID, quantity int, idemKey string) (*TransferResult, error)
	AdjustQuantity(actor Actor, allocationID uuid.UUID, delta int, idemKey string) (*model.Allocation, error)
	GetAllocationsByHolder(holderID *uuid.UUID, hideEmpty bool) ([]model.Allocation, error)
	GetPool(lotID *uuid.UUID) ([]model.Allocation, error)
	SellerStockOverview() ([]SellerStock, error)
	ListTransfers(filter repository.TransferFilter) ([]model.StockTransfer, error)
}

type stockService struct {
	allocRepo    repository.AllocationRepository
	transferRepo repository.TransferRepository
	userRepo     repository.UserRepository
	idemRepo     repository.IdempotencyRepository
	db           *gorm.DB
	wsHub        *ws.Hub
}

func NewStockService(
	allocRepo repository.AllocationRepository,
	transferRepo repository.TransferRepository,
	userRepo repository.UserRepository,
	idemRepo repository.IdempotencyRepository,
	db *gorm.DB,
	hub *ws.Hub,
) StockService {
	return &stockService{
		allocRepo:    allocRepo,
		transferRepo: transferRepo,
		userRepo:     userRepo,
		idemRepo:     idemRepo,
		db:           db,
		wsHub:        hub,
	}
}

func (s *stockService) Distribute(actor Actor, lotID, toSeller uuid.UUID, quantity int, idemKey string) (*TransferResult, error) {
	result, err := s.transferStock(actor, lotID, nil, &toSeller, quantity, model.TransferDistribution, idemKey)
	if err != nil {
		return nil, err
	}

	s.wsHub.PublishStockEvent(ws.StockEvent{
		Action:  "stock_distributed",
		Payload: result,
		Actor:   actor.wsActor(),
		Message: fmt.Sprintf("%s distributed %d units", actor.Name, quantity),
	})
	return result, nil
}

func (s *stockService) Redistribute(actor Actor, lotID, fromSeller, toSeller uuid.UUID, quantity int, idemKey string) (*TransferResult, error) {
	if fromSeller == toSeller {
		return nil, apperr.New(apperr.KindInvalidOperation, "cannot redistribute stock to the same seller")
	}

	result, err := s.transferStock(actor, lotID, &fromSeller, &toSeller, quantity, model.TransferRedistribution, idemKey)
	if err != nil {
		return nil, err
	}

	s.wsHub.PublishStockEvent(ws.StockEvent{
		Action:  "stock_redistributed",
		Payload: result,
		Actor:   actor.wsActor(),
		Message: fmt.Sprintf("%s moved %d units between sellers", actor.Name, quantity),
	})
	return result, nil
}

// transferStock is the shared core of distribution and redistribution: two
// adjusts and one audit row, all-or-nothing.
func (s *stockService) transferStock(actor Actor, lotID uuid.UUID, from, to *uuid.UUID, quantity int, kind model.TransferKind, idemKey string) (*TransferResult, error) {
	if quantity <= 0 {
		return nil, apperr.New(apperr.KindValidation, "quantity must be a positive integer")
	}
	if to == nil && from == nil {
		return nil, apperr.New(apperr.KindInvalidOperation, "transfer requires at least one seller endpoint")
	}

	// Destination seller must exist and be active before any stock moves.
	if to != nil {
		dest, err := s.userRepo.FindByID(*to)
		if err != nil {
			return nil, apperr.New(apperr.KindNotFound, "destination seller not found")
		}
		if !dest.IsActive {
			return nil, apperr.New(apperr.KindInvalidOperation, "destination seller is deactivated")
		}
	}

	var result TransferResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if idemKey != "" {
			if err := s.idemRepo.Claim(tx, idemKey, string(kind), actor.ID); err != nil {
				return err
			}
		}

		fromAlloc, err := s.allocRepo.AdjustHolder(tx, lotID, from, -quantity, actor.audit())
		if err != nil {
			return err
		}

		toAlloc, err := s.allocRepo.AdjustHolder(tx, lotID, to, quantity, actor.audit())
		if err != nil {
			return err
		}

		transfer := model.StockTransfer{
			LotID:        lotID,
			FromHolderID: from,
			ToHolderID:   to,
			Quantity:     quantity,
			Kind:         kind,
			ActorID:      actor.ID,
		}
		if err := s.transferRepo.Create(tx, &transfer); err != nil {
			return apperr.Wrap(err, "failed to record transfer")
		}

		result = TransferResult{From: fromAlloc, To: toAlloc}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithOp(string(kind)).
		WithField("lot_id", lotID).
		WithField("quantity", quantity).
		Info("stock transferred")
	return &result, nil
}

// AdjustQuantity is the audited administrative correction: a signed delta on
// one allocation, recorded as its own transfer row. It is never a side effect
// of another operation.
func (s *stockService) AdjustQuantity(actor Actor, allocationID uuid.UUID, delta int, idemKey string) (*model.Allocation, error) {
	if delta == 0 {
		return nil, apperr.New(apperr.KindValidation, "delta must be non-zero")
	}

	var adjusted *model.Allocation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if idemKey != "" {
			if err := s.idemRepo.Claim(tx, idemKey, string(model.TransferAdjustment), actor.ID); err != nil {
				return err
			}
		}

		alloc, err := s.allocRepo.AdjustByID(tx, allocationID, delta, actor.audit())
		if err != nil {
			return err
		}

		transfer := model.StockTransfer{
			LotID:        alloc.LotID,
			FromHolderID: alloc.HolderID,
			ToHolderID:   alloc.HolderID,
			Quantity:     delta,
			Kind:         model.TransferAdjustment,
			ActorID:      actor.ID,
		}
		if err := s.transferRepo.Create(tx, &transfer); err != nil {
			return apperr.Wrap(err, "failed to record adjustment")
		}

		adjusted = alloc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.PublishStockEvent(ws.StockEvent{
		Action:  "stock_adjusted",
		Payload: adjusted,
		Actor:   actor.wsActor(),
		Message: fmt.Sprintf("%s corrected stock by %+d units", actor.Name, delta),
	})
	return adjusted, nil
}

func (s *stockService) GetAllocationsByHolder(holderID *uuid.UUID, hideEmpty bool) ([]model.Allocation, error) {
	return s.allocRepo.FindByHolder(holderID, hideEmpty)
}

// GetPool lists admin-pool allocations, optionally for a single lot.
func (s *stockService) GetPool(lotID *uuid.UUID) ([]model.Allocation, error) {
	allocs, err := s.allocRepo.FindByHolder(nil, false)
	if err != nil {
		return nil, err
	}
	if lotID == nil {
		return allocs, nil
	}
	filtered := allocs[:0]
	for _, a := range allocs {
		if a.LotID == *lotID {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

func (s *stockService) SellerStockOverview() ([]SellerStock, error) {
	sellers, err := s.userRepo.FindSellers()
	if err != nil {
		return nil, err
	}

	overview := make([]SellerStock, 0, len(sellers))
	for _, seller := range sellers {
		sellerID := seller.ID
		allocs, err := s.allocRepo.FindByHolder(&sellerID, false)
		if err != nil {
			return nil, err
		}

		total := 0
		for _, a := range allocs {
			total += a.Quantity
		}
		overview = append(overview, SellerStock{
			Seller:      seller.ToResponse(),
			Allocations: allocs,
			TotalUnits:  total,
		})
	}
	return overview, nil
}

func (s *stockService) ListTransfers(filter repository.TransferFilter) ([]model.StockTransfer, error) {
	return s.transferRepo.FindAll(filter)
}
