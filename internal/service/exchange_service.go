package service

import (
	"fmt"

	"go-resale-ledger/internal/model"
	"go-resale-ledger/internal/repository"
	"go-resale-ledger/internal/ws"
	"go-resale-ledger/pkg/apperr"
	"go-resale-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExchangeService swaps the product behind a committed sale line. The
// customer keeps the same quantity; the returned units go back to the old
// allocation and the same count is drawn from the replacement allocation,
// atomically.
type ExchangeService interface {
	ExchangeLine(actor Actor, saleID, lineID, newAllocationID uuid.UUID, newPrice *decimal.Decimal, idemKey string) (*model.Sale, error)
}

type exchangeService struct {
	saleRepo  repository.SaleRepository
	allocRepo repository.AllocationRepository
	idemRepo  repository.IdempotencyRepository
	db        *gorm.DB
	wsHub     *ws.Hub
}

func NewExchangeService(
	saleRepo repository.SaleRepository,
	allocRepo repository.AllocationRepository,
	idemRepo repository.IdempotencyRepository,
	db *gorm.DB,
	hub *ws.Hub,
) ExchangeService {
	return &exchangeService{
		saleRepo:  saleRepo,
		allocRepo: allocRepo,
		idemRepo:  idemRepo,
		db:        db,
		wsHub:     hub,
	}
}

func (s *exchangeService) ExchangeLine(actor Actor, saleID, lineID, newAllocationID uuid.UUID, newPrice *decimal.Decimal, idemKey string) (*model.Sale, error) {
	if newPrice != nil && newPrice.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.New(apperr.KindValidation, "replacement price must be positive")
	}

	line, err := s.saleRepo.FindLine(saleID, lineID)
	if err != nil {
		return nil, err
	}
	if line.AllocationID == newAllocationID {
		return nil, apperr.New(apperr.KindInvalidOperation, "replacement allocation must differ from the original")
	}

	newAlloc, err := s.allocRepo.FindByID(newAllocationID)
	if err != nil {
		return nil, err
	}
	if !newAlloc.Active {
		return nil, apperr.Newf(apperr.KindInvalidOperation, "allocation for %q is inactive", newAlloc.Lot.Name)
	}

	oldAllocationID := line.AllocationID
	oldProduct := line.ProductName

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if idemKey != "" {
			if err := s.idemRepo.Claim(tx, idemKey, "exchange_line", actor.ID); err != nil {
				return err
			}
		}
		// Return first, then draw. If the replacement allocation cannot
		// cover the quantity the return rolls back with it.
		if _, err := s.allocRepo.AdjustByID(tx, oldAllocationID, line.Quantity, actor.audit()); err != nil {
			return err
		}
		if _, err := s.allocRepo.AdjustByID(tx, newAllocationID, -line.Quantity, actor.audit()); err != nil {
			return err
		}

		line.AllocationID = newAlloc.ID
		line.ProductName = newAlloc.Lot.Name
		if newPrice != nil {
			line.UnitPrice = *newPrice
		}
		line.UpdatedBy = actor.audit()
		if err := s.saleRepo.UpdateLine(tx, line); err != nil {
			return apperr.Wrap(err, "failed to rewrite sale line")
		}

		var lines []model.SaleLineItem
		if err := tx.Where("sale_id = ?", saleID).Find(&lines).Error; err != nil {
			return apperr.Wrap(err, "failed to reload sale lines")
		}
		total := decimal.Zero
		for _, li := range lines {
			total = total.Add(li.Subtotal())
		}
		return s.saleRepo.UpdateTotal(tx, saleID, total, actor.audit())
	})
	if err != nil {
		return nil, err
	}

	logger.WithOp("exchange_line").
		WithField("sale_id", saleID).
		WithField("line_id", lineID).
		WithField("from_product", oldProduct).
		WithField("to_product", newAlloc.Lot.Name).
		Info("sale line exchanged")

	s.wsHub.PublishStockEvent(ws.StockEvent{
		Action: "line_exchanged",
		Payload: map[string]interface{}{
			"sale_id":      saleID,
			"line_id":      lineID,
			"from_product": oldProduct,
			"to_product":   newAlloc.Lot.Name,
		},
		Actor:   actor.wsActor(),
		Message: fmt.Sprintf("%s exchanged %s for %s", actor.Name, oldProduct, newAlloc.Lot.Name),
	})

	return s.saleRepo.FindByID(saleID)
}
