package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/bitfantasy/boatyard/internal/erp/entity"
	"github.com/bitfantasy/boatyard/internal/erp/repository"
	"github.com/bitfantasy/boatyard/internal/erp/service"
	"github.com/bitfantasy/boatyard/internal/middleware"
	"github.com/bitfantasy/boatyard/internal/testutil"
	"go.uber.org/zap"
)

func setupPOTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	poRepo := repository.NewPORepository(db)
	partRepo := repository.NewPartRepository(db)

	svc := service.NewPOService(poRepo, partRepo, nil, zap.NewNop())
	exportSvc := service.NewExportService(poRepo, nil, "")
	handler := NewPOHandler(svc, exportSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1/erp")
	api.GET("/purchase-orders", handler.ListPOs)
	api.POST("/purchase-orders", handler.CreatePO)
	api.GET("/purchase-orders/:id", handler.GetPO)
	api.PUT("/purchase-orders/:id", handler.UpdatePO)
	api.DELETE("/purchase-orders/:id", handler.DeletePO)
	api.POST("/purchase-orders/:id/transition", middleware.RequireRole("erp_admin"), handler.TransitionPO)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func createTestPO(t *testing.T, env *testutil.TestEnv, token, supplierID, partID string, qty int) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{
		"supplier_id":      supplierID,
		"order_date":       time.Now().Format(time.RFC3339),
		"required_by_date": time.Now().AddDate(0, 1, 0).Format(time.RFC3339),
		"lines": []map[string]interface{}{
			{"part_id": partID, "quantity": qty, "unit_price": 50.0},
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/erp/purchase-orders", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return testutil.ParseResponse(w)["data"].(map[string]interface{})
}

// TestPOCreateComputesTotals tests manual PO creation with line totals
func TestPOCreateComputesTotals(t *testing.T) {
	env := setupPOTest(t)
	token := testutil.DefaultTestToken()

	sup := testutil.SeedTestSupplier(t, env.DB, "SUP-PO1", "采购供应商")
	part := testutil.SeedTestPart(t, env.DB, "PO-P1", "螺旋桨", 0)

	data := createTestPO(t, env, token, sup.ID, part.ID, 4)
	if data["status"] != "DRAFT" {
		t.Fatalf("expected DRAFT, got %v", data["status"])
	}
	if data["po_number"] == "" {
		t.Fatal("expected a generated po_number")
	}
	if data["total_amount"].(float64) != 200 {
		t.Fatalf("expected total 200, got %v", data["total_amount"])
	}
	if data["currency"] != "USD" {
		t.Fatalf("expected default currency USD, got %v", data["currency"])
	}

	// Zero-quantity line is rejected
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/erp/purchase-orders",
		map[string]interface{}{
			"supplier_id":      sup.ID,
			"order_date":       time.Now().Format(time.RFC3339),
			"required_by_date": time.Now().AddDate(0, 1, 0).Format(time.RFC3339),
			"lines": []map[string]interface{}{
				{"part_id": part.ID, "quantity": -2},
			},
		}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative quantity, got %d: %s", w.Code, w.Body.String())
	}
}

// TestPOTransitionStateMachine tests the DRAFT through RECEIVED flow and stock receipt
// TestPOTransitionRequiresAdminRole tests the role guard on state transitions
func TestPOTransitionRequiresAdminRole(t *testing.T) {
	env := setupPOTest(t)
	admin := testutil.DefaultTestToken()
	viewer := testutil.GenerateTestToken("viewer-001", "Test Viewer", "viewer@test.com",
		[]string{"erp_viewer"}, []string{})

	sup := testutil.SeedTestSupplier(t, env.DB, "SUP-PO4", "权限供应商")
	part := testutil.SeedTestPart(t, env.DB, "PO-P4", "舵轮", 5)

	data := createTestPO(t, env, admin, sup.ID, part.ID, 2)
	poID := data["id"].(string)
	path := "/api/v1/erp/purchase-orders/" + poID + "/transition"
	body := map[string]interface{}{"status": "PENDING"}

	w := testutil.DoRequest(env.Router, http.MethodPost, path, body, viewer)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, http.MethodPost, path, body, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPOTransitionStateMachine(t *testing.T) {
	env := setupPOTest(t)
	token := testutil.DefaultTestToken()

	sup := testutil.SeedTestSupplier(t, env.DB, "SUP-PO2", "状态机供应商")
	part := testutil.SeedTestPart(t, env.DB, "PO-P2", "锚链", 10)

	data := createTestPO(t, env, token, sup.ID, part.ID, 6)
	poID := data["id"].(string)

	transition := func(target string) int {
		w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/erp/purchase-orders/"+poID+"/transition",
			map[string]interface{}{"status": target}, token)
		return w.Code
	}

	// Skipping states is rejected
	if code := transition("APPROVED"); code != http.StatusConflict {
		t.Fatalf("expected 409 for DRAFT to APPROVED, got %d", code)
	}

	for _, target := range []string{"PENDING", "APPROVED", "ORDERED", "RECEIVED"} {
		if code := transition(target); code != http.StatusOK {
			t.Fatalf("expected 200 for transition to %s, got %d", target, code)
		}
	}

	// Receipt books stock in
	var reloaded entity.Part
	env.DB.Where("id = ?", part.ID).First(&reloaded)
	if reloaded.CurrentStock != 16 {
		t.Fatalf("expected stock 16 after receipt, got %d", reloaded.CurrentStock)
	}
	var txCount int64
	env.DB.Model(&entity.InventoryTransaction{}).
		Where("part_id = ? AND transaction_type = ?", part.ID, entity.TxTypePurchaseIn).Count(&txCount)
	if txCount != 1 {
		t.Fatalf("expected 1 purchase-in transaction, got %d", txCount)
	}

	// Terminal state rejects further transitions
	if code := transition("CANCELLED"); code != http.StatusConflict {
		t.Fatalf("expected 409 from RECEIVED, got %d", code)
	}

	// APPROVED stamped the approver
	var po entity.PurchaseOrder
	env.DB.Where("id = ?", poID).First(&po)
	if po.ApprovedBy != "test-user-001" {
		t.Fatalf("expected approved_by test-user-001, got %q", po.ApprovedBy)
	}
}

// TestPODeleteOnlyDraft tests that non-draft orders refuse deletion
func TestPODeleteOnlyDraft(t *testing.T) {
	env := setupPOTest(t)
	token := testutil.DefaultTestToken()

	sup := testutil.SeedTestSupplier(t, env.DB, "SUP-PO3", "删除测试")
	part := testutil.SeedTestPart(t, env.DB, "PO-P3", "救生筏", 0)

	data := createTestPO(t, env, token, sup.ID, part.ID, 1)
	poID := data["id"].(string)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/erp/purchase-orders/"+poID+"/transition",
		map[string]interface{}{"status": "PENDING"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w2 := testutil.DoRequest(env.Router, http.MethodDelete, "/api/v1/erp/purchase-orders/"+poID, nil, token)
	if w2.Code != http.StatusConflict {
		t.Fatalf("expected 409 deleting a PENDING order, got %d: %s", w2.Code, w2.Body.String())
	}

	// Back in DRAFT it can go, via cancel instead
	w3 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/erp/purchase-orders/"+poID+"/transition",
		map[string]interface{}{"status": "CANCELLED"}, token)
	if w3.Code != http.StatusOK {
		t.Fatalf("expected 200 cancelling, got %d: %s", w3.Code, w3.Body.String())
	}
}
