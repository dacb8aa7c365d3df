package service

import (
	"fmt"
	"testing"
	"time"

	"go-resale-ledger/internal/model"
	"go-resale-ledger/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database migrated with every model.
// The pool is pinned to one connection so all sessions share the database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.LotCategory{},
		&model.PurchaseLot{},
		&model.Allocation{},
		&model.Sale{},
		&model.SaleLineItem{},
		&model.StockTransfer{},
		&model.ProductPricing{},
		&model.IdempotencyKey{},
		&model.ExpenseCategory{},
		&model.Expense{},
	))
	return db
}

type testEnv struct {
	db           *gorm.DB
	lotRepo      repository.LotRepository
	allocRepo    repository.AllocationRepository
	saleRepo     repository.SaleRepository
	transferRepo repository.TransferRepository
	pricingRepo  repository.PricingRepository
	userRepo     repository.UserRepository
	idemRepo     repository.IdempotencyRepository
	categoryRepo repository.LotCategoryRepository
	expenseRepo  repository.ExpenseRepository

	pricing    PricingService
	lots       LotService
	stock      StockService
	sales      SaleService
	exchange   ExchangeService
	categories LotCategoryService
	expenses   ExpenseService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	env := &testEnv{
		db:           db,
		lotRepo:      repository.NewLotRepo(db),
		allocRepo:    repository.NewAllocationRepo(db),
		saleRepo:     repository.NewSaleRepo(db),
		transferRepo: repository.NewTransferRepo(db),
		pricingRepo:  repository.NewPricingRepo(db),
		userRepo:     repository.NewUserRepo(db),
		idemRepo:     repository.NewIdempotencyRepo(db),
		categoryRepo: repository.NewLotCategoryRepo(db),
		expenseRepo:  repository.NewExpenseRepo(db),
	}
	env.pricing = NewPricingService(env.pricingRepo)
	env.lots = NewLotService(env.lotRepo, env.allocRepo, env.saleRepo, db, nil)
	env.stock = NewStockService(env.allocRepo, env.transferRepo, env.userRepo, env.idemRepo, db, nil)
	env.sales = NewSaleService(env.saleRepo, env.allocRepo, env.transferRepo, env.idemRepo, env.pricing, db, nil)
	env.exchange = NewExchangeService(env.saleRepo, env.allocRepo, env.idemRepo, db, nil)
	env.categories = NewLotCategoryService(env.categoryRepo)
	env.expenses = NewExpenseService(env.expenseRepo, db)
	return env
}

func (e *testEnv) seedAdmin(t *testing.T) (Actor, *model.User) {
	t.Helper()
	admin := &model.User{
		Email:    "owner@example.com",
		FullName: "Owner",
		IsAdmin:  true,
		IsActive: true,
	}
	require.NoError(t, admin.SetPassword("secret123"))
	require.NoError(t, e.userRepo.Create(admin))
	return Actor{ID: admin.ID, Name: admin.FullName, Email: admin.Email, IsAdmin: true}, admin
}

var sellerSeq int

func (e *testEnv) seedSeller(t *testing.T, name string) *model.User {
	t.Helper()
	sellerSeq++
	seller := &model.User{
		Email:    fmt.Sprintf("seller%d@example.com", sellerSeq),
		FullName: name,
		IsActive: true,
	}
	require.NoError(t, seller.SetPassword("secret123"))
	require.NoError(t, e.userRepo.Create(seller))
	return seller
}

func (e *testEnv) seedLot(t *testing.T, actor Actor, name string, qty int) *model.PurchaseLot {
	t.Helper()
	lot := &model.PurchaseLot{
		Name:         name,
		CostForeign:  decimal.NewFromInt(100),
		ExchangeRate: decimal.NewFromFloat(1.2),
		PurchasedQty: qty,
		PurchaseDate: time.Now(),
	}
	created, err := e.lots.CreateLot(actor, lot)
	require.NoError(t, err)
	return created
}

// sellerAlloc loads the seller's allocation row for a lot.
func (e *testEnv) sellerAlloc(t *testing.T, lotID uuid.UUID, sellerID uuid.UUID) *model.Allocation {
	t.Helper()
	alloc, err := e.allocRepo.FindByLotAndHolder(lotID, &sellerID)
	require.NoError(t, err)
	return alloc
}

func (e *testEnv) poolAlloc(t *testing.T, lotID uuid.UUID) *model.Allocation {
	t.Helper()
	alloc, err := e.allocRepo.FindByLotAndHolder(lotID, nil)
	require.NoError(t, err)
	return alloc
}

// totalUnits sums every allocation quantity of one lot.
func (e *testEnv) totalUnits(t *testing.T, lotID uuid.UUID) int {
	t.Helper()
	allocs, err := e.allocRepo.FindByLot(lotID)
	require.NoError(t, err)
	sum := 0
	for _, a := range allocs {
		sum += a.Quantity
	}
	return sum
}

// soldUnits sums the line quantities of all live sales against one lot.
func (e *testEnv) soldUnits(t *testing.T, lotID uuid.UUID) int {
	t.Helper()
	sold, err := e.saleRepo.SoldQuantityByLot(lotID)
	require.NoError(t, err)
	return int(sold)
}

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func dp(v float64) *decimal.Decimal {
	dec := decimal.NewFromFloat(v)
	return &dec
}
