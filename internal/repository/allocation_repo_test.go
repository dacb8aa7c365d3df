package repository

import (
	"testing"

	"go-resale-ledger/internal/model"
	"go-resale-ledger/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

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
		&model.PurchaseLot{},
		&model.Allocation{},
		&model.Sale{},
		&model.SaleLineItem{},
		&model.StockTransfer{},
		&model.ProductPricing{},
		&model.IdempotencyKey{},
	))
	return db
}

func seedLotWithPool(t *testing.T, db *gorm.DB, qty int) (*model.PurchaseLot, *model.Allocation) {
	t.Helper()
	lot := &model.PurchaseLot{
		Name:         "Phone X",
		CostForeign:  decimal.NewFromInt(100),
		ExchangeRate: decimal.NewFromInt(1),
		UnitPrice:    decimal.NewFromInt(100),
		PurchasedQty: qty,
	}
	require.NoError(t, db.Create(lot).Error)

	pool := &model.Allocation{LotID: lot.ID, Quantity: qty, Active: true}
	require.NoError(t, db.Create(pool).Error)
	return lot, pool
}

func TestAdjustByIDGuardsAgainstOverdraw(t *testing.T) {
	db := newTestDB(t)
	repo := NewAllocationRepo(db)
	_, pool := seedLotWithPool(t, db, 5)

	alloc, err := repo.AdjustByID(db, pool.ID, -3, "tester")
	require.NoError(t, err)
	assert.Equal(t, 2, alloc.Quantity)

	_, err = repo.AdjustByID(db, pool.ID, -3, "tester")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInsufficientStock))

	// The failed adjust changed nothing.
	reloaded, err := repo.FindByID(pool.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Quantity)

	// Down to exactly zero is allowed.
	alloc, err = repo.AdjustByID(db, pool.ID, -2, "tester")
	require.NoError(t, err)
	assert.Equal(t, 0, alloc.Quantity)
}

func TestAdjustByIDUnknownAllocation(t *testing.T) {
	db := newTestDB(t)
	repo := NewAllocationRepo(db)

	_, err := repo.AdjustByID(db, uuid.New(), 1, "tester")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestAdjustByIDReactivatesOnIncoming(t *testing.T) {
	db := newTestDB(t)
	repo := NewAllocationRepo(db)
	_, pool := seedLotWithPool(t, db, 3)

	require.NoError(t, repo.Deactivate(db, pool.ID, "tester"))

	alloc, err := repo.AdjustByID(db, pool.ID, 2, "tester")
	require.NoError(t, err)
	assert.True(t, alloc.Active)
	assert.Equal(t, 5, alloc.Quantity)
}

func TestAdjustHolderCreatesSellerRowOnFirstReceive(t *testing.T) {
	db := newTestDB(t)
	repo := NewAllocationRepo(db)
	lot, _ := seedLotWithPool(t, db, 10)

	seller := &model.User{Email: "alice@example.com", FullName: "Alice", IsActive: true, Password: "x"}
	require.NoError(t, db.Create(seller).Error)

	alloc, err := repo.AdjustHolder(db, lot.ID, &seller.ID, 4, "tester")
	require.NoError(t, err)
	assert.Equal(t, 4, alloc.Quantity)
	require.NotNil(t, alloc.HolderID)
	assert.Equal(t, seller.ID, *alloc.HolderID)

	// Second receive adjusts the same row.
	alloc, err = repo.AdjustHolder(db, lot.ID, &seller.ID, 2, "tester")
	require.NoError(t, err)
	assert.Equal(t, 6, alloc.Quantity)

	var count int64
	db.Model(&model.Allocation{}).Where("lot_id = ? AND holder_id = ?", lot.ID, seller.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAdjustHolderAbsentRowBehavesAsEmpty(t *testing.T) {
	db := newTestDB(t)
	repo := NewAllocationRepo(db)
	lot, _ := seedLotWithPool(t, db, 10)

	seller := &model.User{Email: "bob@example.com", FullName: "Bob", IsActive: true, Password: "x"}
	require.NoError(t, db.Create(seller).Error)

	_, err := repo.AdjustHolder(db, lot.ID, &seller.ID, -1, "tester")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInsufficientStock))
}

func TestAdjustHolderMissingPool(t *testing.T) {
	db := newTestDB(t)
	repo := NewAllocationRepo(db)

	lot := &model.PurchaseLot{
		Name:         "Orphan",
		CostForeign:  decimal.NewFromInt(1),
		ExchangeRate: decimal.NewFromInt(1),
		UnitPrice:    decimal.NewFromInt(1),
		PurchasedQty: 1,
	}
	require.NoError(t, db.Create(lot).Error)

	_, err := repo.AdjustHolder(db, lot.ID, nil, 1, "tester")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestFindByHolderHidesEmptyAndInactive(t *testing.T) {
	db := newTestDB(t)
	repo := NewAllocationRepo(db)
	lotA, _ := seedLotWithPool(t, db, 10)

	seller := &model.User{Email: "carol@example.com", FullName: "Carol", IsActive: true, Password: "x"}
	require.NoError(t, db.Create(seller).Error)

	full, err := repo.AdjustHolder(db, lotA.ID, &seller.ID, 3, "tester")
	require.NoError(t, err)
	_, err = repo.AdjustByID(db, full.ID, -3, "tester")
	require.NoError(t, err)

	allocs, err := repo.FindByHolder(&seller.ID, true)
	require.NoError(t, err)
	assert.Empty(t, allocs)

	allocs, err = repo.FindByHolder(&seller.ID, false)
	require.NoError(t, err)
	assert.Len(t, allocs, 1)
}

func TestIdempotencyClaimOncePerKey(t *testing.T) {
	db := newTestDB(t)
	repo := NewIdempotencyRepo(db)
	actor := uuid.New()

	require.NoError(t, repo.Claim(db, "key-1", "distribute", actor))

	err := repo.Claim(db, "key-1", "distribute", actor)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	// A different key is independent.
	require.NoError(t, repo.Claim(db, "key-2", "distribute", actor))
}
