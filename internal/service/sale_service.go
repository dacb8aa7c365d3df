package service

import (
	"fmt"
	"time"

	"go-resale-ledger/internal/model"
	"go-resale-ledger/internal/repository"
	"go-resale-ledger/internal/ws"
	"go-resale-ledger/pkg/apperr"
	"go-resale-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleLineInput is one requested line: an allocation of the selling seller,
// a quantity, and an optional explicit price override.
type SaleLineInput struct {
	AllocationID  uuid.UUID        `json:"allocation_id"`
	Quantity      int              `json:"quantity"`
	PriceOverride *decimal.Decimal `json:"price_override,omitempty"`
}

type CreateSaleInput struct {
	CustomerName   string               `json:"customer_name"`
	Phone          string               `json:"phone"`
	Address        string               `json:"address"`
	Notes          *string              `json:"notes,omitempty"`
	PhotoRef       *string              `json:"photo_ref,omitempty"`
	ClientCategory model.ClientCategory `json:"client_category"`
	PaymentMethod  model.PaymentMethod  `json:"payment_method"`
	AmountPix      *decimal.Decimal     `json:"amount_pix,omitempty"`
	AmountCard     *decimal.Decimal     `json:"amount_card,omitempty"`
	AmountCash     *decimal.Decimal     `json:"amount_cash,omitempty"`
	Lines          []SaleLineInput      `json:"lines"`
}

// LineCorrection is the administrative edit of recorded sale data. It never
// touches the allocation store; stock moves only through sale, exchange,
// transfer, and the audited adjustment.
type LineCorrection struct {
	Quantity  *int             `json:"quantity,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// SaleService commits sales against seller allocations. A sale is never
// partially persisted: every line's decrement and the sale rows commit in one
// transaction or not at all.
type SaleService interface {
	CreateSale(actor Actor, sellerID uuid.UUID, in CreateSaleInput, idemKey string) (*model.Sale, error)
	GetSale(id uuid.UUID) (*model.Sale, error)
	ListSales(filter repository.SaleFilter) ([]model.Sale, int64, error)
	CorrectLine(actor Actor, saleID, lineID uuid.UUID, correction LineCorrection) (*model.Sale, error)
	DeleteLine(actor Actor, saleID, lineID uuid.UUID, idemKey string) (*model.Sale, error)
	DeleteSale(actor Actor, saleID uuid.UUID, idemKey string) error
	SellerSummaries(from, to *time.Time) ([]repository.SellerSummary, error)
}

type saleService struct {
	saleRepo     repository.SaleRepository
	allocRepo    repository.AllocationRepository
	transferRepo repository.TransferRepository
	idemRepo     repository.IdempotencyRepository
	pricing      PricingService
	db           *gorm.DB
	wsHub        *ws.Hub
}

func NewSaleService(
	saleRepo repository.SaleRepository,
	allocRepo repository.AllocationRepository,
	transferRepo repository.TransferRepository,
	idemRepo repository.IdempotencyRepository,
	pricing PricingService,
	db *gorm.DB,
	hub *ws.Hub,
) SaleService {
	return &saleService{
		saleRepo:     saleRepo,
		allocRepo:    allocRepo,
		transferRepo: transferRepo,
		idemRepo:     idemRepo,
		pricing:      pricing,
		db:           db,
		wsHub:        hub,
	}
}

func (s *saleService) CreateSale(actor Actor, sellerID uuid.UUID, in CreateSaleInput, idemKey string) (*model.Sale, error) {
	// 1. Structural validation before touching anything.
	if in.CustomerName == "" || in.Phone == "" || in.Address == "" {
		return nil, apperr.New(apperr.KindValidation, "customer name, phone and address are required")
	}
	if len(in.Lines) == 0 {
		return nil, apperr.New(apperr.KindValidation, "a sale needs at least one line")
	}
	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return nil, apperr.New(apperr.KindValidation, "line quantity must be a positive integer")
		}
	}
	if !actor.IsAdmin && actor.ID != sellerID {
		return nil, apperr.New(apperr.KindInvalidOperation, "sellers can only record their own sales")
	}

	// 2. Resolve every line to an active allocation held by the seller and
	// price it. All lines must resolve before any stock moves.
	lineItems := make([]model.SaleLineItem, 0, len(in.Lines))
	for _, line := range in.Lines {
		alloc, err := s.allocRepo.FindByID(line.AllocationID)
		if err != nil {
			return nil, err
		}
		if !alloc.Active {
			return nil, apperr.Newf(apperr.KindInvalidOperation, "allocation for %q is inactive", alloc.Lot.Name)
		}
		holder := sellerID
		if !alloc.HeldBy(&holder) {
			return nil, apperr.New(apperr.KindInvalidOperation, "sellers can only sell from their own allocation")
		}

		unitPrice, err := s.pricing.ResolvePrice(&alloc.Lot, in.ClientCategory, in.PaymentMethod, line.PriceOverride)
		if err != nil {
			return nil, err
		}

		item := model.SaleLineItem{
			AllocationID: alloc.ID,
			ProductName:  alloc.Lot.Name,
			Quantity:     line.Quantity,
			UnitPrice:    unitPrice,
		}
		item.CreatedBy = actor.audit()
		item.UpdatedBy = actor.audit()
		lineItems = append(lineItems, item)
	}

	sale := model.Sale{
		CustomerName:   in.CustomerName,
		Phone:          in.Phone,
		Address:        in.Address,
		Notes:          in.Notes,
		PhotoRef:       in.PhotoRef,
		ClientCategory: in.ClientCategory,
		PaymentMethod:  in.PaymentMethod,
		AmountPix:      in.AmountPix,
		AmountCard:     in.AmountCard,
		AmountCash:     in.AmountCash,
		SellerID:       sellerID,
		LineItems:      lineItems,
	}
	sale.RecomputeTotal()
	sale.CreatedBy = actor.audit()
	sale.UpdatedBy = actor.audit()

	// 3. All decrements plus the sale rows in one transaction. Any line that
	// overdraws rolls back every other line's decrement too.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if idemKey != "" {
			if err := s.idemRepo.Claim(tx, idemKey, "create_sale", actor.ID); err != nil {
				return err
			}
		}
		for _, item := range sale.LineItems {
			if _, err := s.allocRepo.AdjustByID(tx, item.AllocationID, -item.Quantity, actor.audit()); err != nil {
				return err
			}
		}
		if err := s.saleRepo.Create(tx, &sale); err != nil {
			return apperr.Wrap(err, "failed to persist sale")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.WithOp("sale_create").
		WithField("sale_id", sale.ID).
		WithField("seller_id", sellerID).
		WithField("total", sale.Total.String()).
		Info("sale committed")

	s.wsHub.PublishStockEvent(ws.StockEvent{
		Action:  "sale_created",
		Payload: &sale,
		Actor:   actor.wsActor(),
		Message: fmt.Sprintf("%s recorded a sale for %s", actor.Name, in.CustomerName),
	})

	return s.saleRepo.FindByID(sale.ID)
}

func (s *saleService) GetSale(id uuid.UUID) (*model.Sale, error) {
	return s.saleRepo.FindByID(id)
}

func (s *saleService) ListSales(filter repository.SaleFilter) ([]model.Sale, int64, error) {
	return s.saleRepo.FindAll(filter)
}

// CorrectLine fixes recorded quantity/price on a committed line. This is a
// historical-data correction: the allocation store is deliberately untouched.
func (s *saleService) CorrectLine(actor Actor, saleID, lineID uuid.UUID, correction LineCorrection) (*model.Sale, error) {
	if correction.Quantity == nil && correction.UnitPrice == nil {
		return nil, apperr.New(apperr.KindValidation, "nothing to correct")
	}
	if correction.Quantity != nil && *correction.Quantity <= 0 {
		return nil, apperr.New(apperr.KindValidation, "corrected quantity must be a positive integer")
	}
	if correction.UnitPrice != nil && correction.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return nil, apperr.New(apperr.KindValidation, "corrected price must be positive")
	}

	line, err := s.saleRepo.FindLine(saleID, lineID)
	if err != nil {
		return nil, err
	}

	if correction.Quantity != nil {
		line.Quantity = *correction.Quantity
	}
	if correction.UnitPrice != nil {
		line.UnitPrice = *correction.UnitPrice
	}
	line.UpdatedBy = actor.audit()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.saleRepo.UpdateLine(tx, line); err != nil {
			return apperr.Wrap(err, "failed to update sale line")
		}
		return s.recomputeSaleTotal(tx, saleID, actor)
	})
	if err != nil {
		return nil, err
	}
	return s.saleRepo.FindByID(saleID)
}

// DeleteLine removes one line, returning its quantity to the source
// allocation. Deleting the last line deletes the sale and returns (nil, nil).
func (s *saleService) DeleteLine(actor Actor, saleID, lineID uuid.UUID, idemKey string) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(saleID)
	if err != nil {
		return nil, err
	}
	var target *model.SaleLineItem
	for i := range sale.LineItems {
		if sale.LineItems[i].ID == lineID {
			target = &sale.LineItems[i]
			break
		}
	}
	if target == nil {
		return nil, apperr.New(apperr.KindNotFound, "sale line not found")
	}
	lastLine := len(sale.LineItems) == 1

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if idemKey != "" {
			if err := s.idemRepo.Claim(tx, idemKey, "delete_sale_line", actor.ID); err != nil {
				return err
			}
		}
		if err := s.returnLineStock(tx, actor, target); err != nil {
			return err
		}
		if err := s.saleRepo.DeleteLine(tx, target.ID, actor.audit()); err != nil {
			return apperr.Wrap(err, "failed to delete sale line")
		}
		if lastLine {
			return s.saleRepo.Delete(tx, saleID, actor.audit())
		}
		return s.recomputeSaleTotal(tx, saleID, actor)
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.PublishStockEvent(ws.StockEvent{
		Action:  "sale_line_deleted",
		Payload: map[string]interface{}{"sale_id": saleID, "line_id": lineID},
		Actor:   actor.wsActor(),
	})

	if lastLine {
		return nil, nil
	}
	return s.saleRepo.FindByID(saleID)
}

// DeleteSale voids a sale, returning every line's quantity to its source
// allocation in the same transaction.
func (s *saleService) DeleteSale(actor Actor, saleID uuid.UUID, idemKey string) error {
	sale, err := s.saleRepo.FindByID(saleID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if idemKey != "" {
			if err := s.idemRepo.Claim(tx, idemKey, "delete_sale", actor.ID); err != nil {
				return err
			}
		}
		for i := range sale.LineItems {
			if err := s.returnLineStock(tx, actor, &sale.LineItems[i]); err != nil {
				return err
			}
		}
		return s.saleRepo.Delete(tx, saleID, actor.audit())
	})
	if err != nil {
		return err
	}

	s.wsHub.PublishStockEvent(ws.StockEvent{
		Action:  "sale_deleted",
		Payload: map[string]interface{}{"sale_id": saleID},
		Actor:   actor.wsActor(),
		Message: fmt.Sprintf("%s voided a sale", actor.Name),
	})
	return nil
}

func (s *saleService) SellerSummaries(from, to *time.Time) ([]repository.SellerSummary, error) {
	return s.saleRepo.SellerSummaries(from, to)
}

// returnLineStock credits a sold line's quantity back to its allocation and
// writes the sale_return audit row.
func (s *saleService) returnLineStock(tx *gorm.DB, actor Actor, line *model.SaleLineItem) error {
	alloc, err := s.allocRepo.AdjustByID(tx, line.AllocationID, line.Quantity, actor.audit())
	if err != nil {
		return err
	}
	transfer := model.StockTransfer{
		LotID:      alloc.LotID,
		ToHolderID: alloc.HolderID,
		Quantity:   line.Quantity,
		Kind:       model.TransferSaleReturn,
		ActorID:    actor.ID,
	}
	if err := s.transferRepo.Create(tx, &transfer); err != nil {
		return apperr.Wrap(err, "failed to record sale return")
	}
	return nil
}

func (s *saleService) recomputeSaleTotal(tx *gorm.DB, saleID uuid.UUID, actor Actor) error {
	var lines []model.SaleLineItem
	if err := tx.Where("sale_id = ?", saleID).Find(&lines).Error; err != nil {
		return apperr.Wrap(err, "failed to reload sale lines")
	}
	total := decimal.Zero
	for _, li := range lines {
		total = total.Add(li.Subtotal())
	}
	return s.saleRepo.UpdateTotal(tx, saleID, total, actor.audit())
}
