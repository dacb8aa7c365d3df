package service

import (
	"testing"

	"go-resale-ledger/internal/model"

	"github.com/google/uuid"
	"pgregory.net/rapid"
)

// Property: across any sequence of distributions, redistributions, sales,
// voided sales, line exchanges and audited corrections, no allocation ever
// goes negative and, per lot, allocated plus sold units always equal the
// purchased quantity adjusted by the successful corrections.
func TestProperty_StockOperationsConserveQuantity(t *testing.T) {
	outer := t
	rapid.Check(t, func(t *rapid.T) {
		env := newTestEnv(outer)
		admin, _ := env.seedAdmin(outer)

		sellers := []*model.User{
			env.seedSeller(outer, "Alice"),
			env.seedSeller(outer, "Bob"),
			env.seedSeller(outer, "Carol"),
		}

		purchasedA := rapid.IntRange(5, 40).Draw(t, "purchasedA")
		purchasedB := rapid.IntRange(5, 40).Draw(t, "purchasedB")
		lotA := env.seedLot(outer, admin, "Phone X", purchasedA)
		lotB := env.seedLot(outer, admin, "Phone Y", purchasedB)

		// Expected totals drift only via successful corrections. Exchanges
		// move units between the lots in lockstep with the sold counts, so
		// both stay conserved.
		expectedA := purchasedA
		expectedB := purchasedB
		var saleIDs []uuid.UUID

		steps := rapid.IntRange(1, 25).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			op := rapid.IntRange(0, 6).Draw(t, "op")
			qty := rapid.IntRange(1, 10).Draw(t, "qty")
			seller := sellers[rapid.IntRange(0, len(sellers)-1).Draw(t, "seller")]

			switch op {
			case 0: // distribute
				_, _ = env.stock.Distribute(admin, lotA.ID, seller.ID, qty, "")

			case 1: // redistribute
				other := sellers[rapid.IntRange(0, len(sellers)-1).Draw(t, "other")]
				_, _ = env.stock.Redistribute(admin, lotA.ID, seller.ID, other.ID, qty, "")

			case 2: // sale
				alloc, err := env.allocRepo.FindByLotAndHolder(lotA.ID, &seller.ID)
				if err != nil {
					continue
				}
				actor := Actor{ID: seller.ID, Name: seller.FullName}
				sale, err := env.sales.CreateSale(actor, seller.ID, saleInput(
					SaleLineInput{AllocationID: alloc.ID, Quantity: qty, PriceOverride: dp(100)},
				), "")
				if err == nil {
					saleIDs = append(saleIDs, sale.ID)
				}

			case 3: // void a committed sale
				if len(saleIDs) == 0 {
					continue
				}
				idx := rapid.IntRange(0, len(saleIDs)-1).Draw(t, "sale")
				if err := env.sales.DeleteSale(admin, saleIDs[idx], ""); err == nil {
					saleIDs = append(saleIDs[:idx], saleIDs[idx+1:]...)
				}

			case 4: // audited correction on the pool
				delta := rapid.IntRange(-5, 5).Draw(t, "delta")
				if delta == 0 {
					continue
				}
				pool := env.poolAlloc(outer, lotA.ID)
				if _, err := env.stock.AdjustQuantity(admin, pool.ID, delta, ""); err == nil {
					expectedA += delta
				}

			case 5: // give sellers replacement stock
				_, _ = env.stock.Distribute(admin, lotB.ID, seller.ID, qty, "")

			case 6: // exchange a sold line to the other lot
				if len(saleIDs) == 0 {
					continue
				}
				idx := rapid.IntRange(0, len(saleIDs)-1).Draw(t, "exchange")
				sale, err := env.sales.GetSale(saleIDs[idx])
				if err != nil || len(sale.LineItems) == 0 {
					continue
				}
				line := sale.LineItems[0]
				current, err := env.allocRepo.FindByID(line.AllocationID)
				if err != nil {
					continue
				}
				targetLot := lotB.ID
				if current.LotID == lotB.ID {
					targetLot = lotA.ID
				}
				target, err := env.allocRepo.FindByLotAndHolder(targetLot, &sale.SellerID)
				if err != nil {
					continue
				}
				_, _ = env.exchange.ExchangeLine(admin, sale.ID, line.ID, target.ID, nil, "")
			}

			// Invariants hold after every step, successful or not.
			for _, lotID := range []uuid.UUID{lotA.ID, lotB.ID} {
				allocs, err := env.allocRepo.FindByLot(lotID)
				if err != nil {
					t.Fatalf("failed to load allocations: %v", err)
				}
				for _, a := range allocs {
					if a.Quantity < 0 {
						t.Fatalf("allocation %s went negative: %d", a.ID, a.Quantity)
					}
				}
			}
			if got := env.totalUnits(outer, lotA.ID) + env.soldUnits(outer, lotA.ID); got != expectedA {
				t.Fatalf("lot A allocated+sold = %d, expected %d after step %d", got, expectedA, i)
			}
			if got := env.totalUnits(outer, lotB.ID) + env.soldUnits(outer, lotB.ID); got != expectedB {
				t.Fatalf("lot B allocated+sold = %d, expected %d after step %d", got, expectedB, i)
			}
		}
	})
}
