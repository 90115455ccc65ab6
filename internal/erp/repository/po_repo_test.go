package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bitfantasy/boatyard/internal/erp/entity"
	"github.com/bitfantasy/boatyard/internal/testutil"
)

// TestGenerateCodesBatchReservation: 批量预留的编码互不重复、连续递增，
// 落库后下一次预留接着已持久化的最大编码继续。
func TestGenerateCodesBatchReservation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPORepository(db)
	ctx := context.Background()

	sup := testutil.SeedTestSupplier(t, db, "SUP-0001", "Marine Metals")

	codes, err := repo.GenerateCodes(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	year := time.Now().Format("2006")
	for i, code := range codes {
		want := fmt.Sprintf("PO-%s-%04d", year, i+1)
		if code != want {
			t.Fatalf("expected code %s, got %s", want, code)
		}
	}

	seen := make(map[string]bool, len(codes))
	pos := make([]entity.PurchaseOrder, 0, len(codes))
	for _, code := range codes {
		if seen[code] {
			t.Fatalf("duplicate code reserved in one batch: %s", code)
		}
		seen[code] = true
		pos = append(pos, entity.PurchaseOrder{
			PONumber:       code,
			SupplierID:     sup.ID,
			OrderDate:      time.Now(),
			RequiredByDate: time.Now().AddDate(0, 0, 14),
			Status:         entity.POStatusDraft,
			Currency:       "USD",
		})
	}
	if err := repo.CreateBatch(ctx, pos); err != nil {
		t.Fatalf("batch insert with reserved codes failed: %v", err)
	}

	next, err := repo.GenerateCodes(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next[0] != fmt.Sprintf("PO-%s-0004", year) || next[1] != fmt.Sprintf("PO-%s-0005", year) {
		t.Fatalf("codes must continue past persisted orders, got %v", next)
	}

	if _, err := repo.GenerateCodes(ctx, 0); err == nil {
		t.Fatal("non-positive count must be rejected")
	}
}
