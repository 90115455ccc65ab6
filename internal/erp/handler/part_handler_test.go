package handler

import (
	"net/http"
	"testing"

	"github.com/bitfantasy/boatyard/internal/erp/entity"
	"github.com/bitfantasy/boatyard/internal/erp/repository"
	"github.com/bitfantasy/boatyard/internal/erp/service"
	"github.com/bitfantasy/boatyard/internal/testutil"
)

func setupPartTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	partRepo := repository.NewPartRepository(db)
	invRepo := repository.NewInventoryRepository(db)

	svc := service.NewPartService(partRepo, invRepo)
	handler := NewPartHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1/erp")
	api.GET("/parts", handler.ListParts)
	api.POST("/parts", handler.CreatePart)
	api.GET("/parts/reorder-alerts", handler.ReorderAlerts)
	api.GET("/parts/:id", handler.GetPart)
	api.PUT("/parts/:id", handler.UpdatePart)
	api.DELETE("/parts/:id", handler.DeletePart)
	api.POST("/parts/:id/adjust-stock", handler.AdjustStock)
	api.GET("/parts/:id/transactions", handler.ListTransactions)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

// TestPartCreateAndGet tests creating a part and reading it back
func TestPartCreateAndGet(t *testing.T) {
	env := setupPartTest(t)
	token := testutil.DefaultTestToken()

	body := map[string]interface{}{
		"part_number":   "HULL-001",
		"name":          "玻璃钢船体",
		"category":      "HULL",
		"current_stock": 10,
		"unit_cost":     1500.50,
		"reorder_point": 5,
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/erp/parts", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	partID := data["id"].(string)
	if data["part_number"] != "HULL-001" {
		t.Fatalf("expected part_number HULL-001, got %v", data["part_number"])
	}
	if data["current_stock"].(float64) != 10 {
		t.Fatalf("expected current_stock 10, got %v", data["current_stock"])
	}

	// 初始库存应生成一笔调整流水
	var txCount int64
	env.DB.Model(&entity.InventoryTransaction{}).Where("part_id = ?", partID).Count(&txCount)
	if txCount != 1 {
		t.Fatalf("expected 1 inventory transaction, got %d", txCount)
	}

	// Duplicate part number is rejected
	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/erp/parts", body, token)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate part number, got %d", w2.Code)
	}

	w3 := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/erp/parts/"+partID, nil, token)
	if w3.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w3.Code, w3.Body.String())
	}
}

// TestPartAdjustStock tests stock adjustment and the transaction trail
func TestPartAdjustStock(t *testing.T) {
	env := setupPartTest(t)
	token := testutil.DefaultTestToken()

	part := testutil.SeedTestPart(t, env.DB, "ENG-001", "舷外机", 20)

	// Positive adjustment
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/erp/parts/"+part.ID+"/adjust-stock",
		map[string]interface{}{"quantity": 5, "notes": "盘盈"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["current_stock"].(float64) != 25 {
		t.Fatalf("expected stock 25, got %v", data["current_stock"])
	}

	// Adjustment below zero is rejected
	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/erp/parts/"+part.ID+"/adjust-stock",
		map[string]interface{}{"quantity": -100}, token)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative stock, got %d: %s", w2.Code, w2.Body.String())
	}

	// Transaction trail records stock_after
	w3 := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/erp/parts/"+part.ID+"/transactions", nil, token)
	if w3.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w3.Code, w3.Body.String())
	}
	resp3 := testutil.ParseResponse(w3)
	items := resp3["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(items))
	}
	tx := items[0].(map[string]interface{})
	if tx["stock_after"].(float64) != 25 {
		t.Fatalf("expected stock_after 25, got %v", tx["stock_after"])
	}
}

// TestPartReorderAlerts tests the below-reorder-point listing
func TestPartReorderAlerts(t *testing.T) {
	env := setupPartTest(t)
	token := testutil.DefaultTestToken()

	low := testutil.SeedTestPart(t, env.DB, "RIG-001", "帆索", 2)
	env.DB.Model(&entity.Part{}).Where("id = ?", low.ID).Update("reorder_point", 10)
	testutil.SeedTestPart(t, env.DB, "RIG-002", "桅杆", 50)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/erp/parts/reorder-alerts", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 reorder alert, got %d", len(items))
	}
	alert := items[0].(map[string]interface{})
	if alert["part_number"] != "RIG-001" {
		t.Fatalf("expected RIG-001, got %v", alert["part_number"])
	}
}

// TestPartUpdateAndDelete tests field updates and soft delete
func TestPartUpdateAndDelete(t *testing.T) {
	env := setupPartTest(t)
	token := testutil.DefaultTestToken()

	part := testutil.SeedTestPart(t, env.DB, "INT-001", "座椅", 8)

	w := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/erp/parts/"+part.ID,
		map[string]interface{}{"name": "豪华座椅", "unit_cost": 320.0}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["name"] != "豪华座椅" {
		t.Fatalf("expected updated name, got %v", data["name"])
	}

	w2 := testutil.DoRequest(env.Router, http.MethodDelete, "/api/v1/erp/parts/"+part.ID, nil, token)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w2.Code, w2.Body.String())
	}

	// Soft-deleted part no longer resolves
	w3 := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/erp/parts/"+part.ID, nil, token)
	if w3.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w3.Code)
	}
}
