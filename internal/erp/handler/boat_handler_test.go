package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/bitfantasy/boatyard/internal/erp/entity"
	"github.com/bitfantasy/boatyard/internal/erp/repository"
	"github.com/bitfantasy/boatyard/internal/erp/service"
	"github.com/bitfantasy/boatyard/internal/testutil"
)

func setupBoatTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	boatRepo := repository.NewBoatRepository(db)
	partRepo := repository.NewPartRepository(db)

	svc := service.NewBoatService(boatRepo, partRepo)
	handler := NewBoatHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1/erp")
	api.GET("/boat-types", handler.ListBoatTypes)
	api.POST("/boat-types", handler.CreateBoatType)
	api.GET("/boat-types/:id", handler.GetBoatType)
	api.PUT("/boat-types/:id", handler.UpdateBoatType)
	api.DELETE("/boat-types/:id", handler.DeleteBoatType)
	api.GET("/boats", handler.ListBoats)
	api.POST("/boats", handler.CreateBoat)
	api.GET("/boats/:id", handler.GetBoat)
	api.PUT("/boats/:id", handler.UpdateBoat)
	api.DELETE("/boats/:id", handler.DeleteBoat)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

// TestBoatTypeCreateValidatesBOM tests that the manufacturing BOM is checked on create
func TestBoatTypeCreateValidatesBOM(t *testing.T) {
	env := setupBoatTest(t)
	token := testutil.DefaultTestToken()

	hull := testutil.SeedTestPart(t, env.DB, "HULL-100", "船体", 0)

	// Valid BOM referencing an existing part
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/erp/boat-types",
		map[string]interface{}{
			"name":                            "巡航帆船 32",
			"model":                           "C32",
			"default_manufacturing_time_days": 45,
			"mbom": map[string]interface{}{
				"parts": []map[string]interface{}{
					{"part_id": hull.ID, "part_name": "船体", "quantity_required": 1},
				},
			},
		}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["is_active"] != true {
		t.Fatalf("expected is_active true, got %v", data["is_active"])
	}

	// Zero quantity is rejected
	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/erp/boat-types",
		map[string]interface{}{
			"name":                            "坏BOM",
			"model":                           "BAD",
			"default_manufacturing_time_days": 30,
			"mbom": map[string]interface{}{
				"parts": []map[string]interface{}{
					{"part_id": hull.ID, "quantity_required": 0},
				},
			},
		}, token)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero quantity, got %d", w2.Code)
	}

	// Unknown part reference is rejected
	w3 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/erp/boat-types",
		map[string]interface{}{
			"name":                            "幽灵零件",
			"model":                           "GHOST",
			"default_manufacturing_time_days": 30,
			"mbom": map[string]interface{}{
				"parts": []map[string]interface{}{
					{"part_id": "00000000-0000-0000-0000-000000000000", "quantity_required": 2},
				},
			},
		}, token)
	if w3.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown part, got %d", w3.Code)
	}
}

// TestBoatTypeDeleteRefusedWhenInUse tests that a type with scheduled boats cannot be removed
func TestBoatTypeDeleteRefusedWhenInUse(t *testing.T) {
	env := setupBoatTest(t)
	token := testutil.DefaultTestToken()

	bt := testutil.SeedTestBoatType(t, env.DB, "渔船 24", 30, entity.MBOM{})

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/erp/boats",
		map[string]interface{}{
			"boat_type_id": bt.ID,
			"name":         "渔船一号",
			"due_date":     time.Now().AddDate(0, 3, 0).Format(time.RFC3339),
		}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	boat := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if boat["status"] != "SCHEDULED" {
		t.Fatalf("expected status SCHEDULED, got %v", boat["status"])
	}

	w2 := testutil.DoRequest(env.Router, http.MethodDelete, "/api/v1/erp/boat-types/"+bt.ID, nil, token)
	if w2.Code != http.StatusConflict {
		t.Fatalf("expected 409 when type has boats, got %d: %s", w2.Code, w2.Body.String())
	}
}

// TestBoatCreateAndStatusUpdate tests boat scheduling and the status enum
func TestBoatCreateAndStatusUpdate(t *testing.T) {
	env := setupBoatTest(t)
	token := testutil.DefaultTestToken()

	bt := testutil.SeedTestBoatType(t, env.DB, "帆船 40", 60, entity.MBOM{})

	// Inactive type cannot be scheduled
	env.DB.Model(&entity.BoatType{}).Where("id = ?", bt.ID).Update("is_active", false)
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/erp/boats",
		map[string]interface{}{
			"boat_type_id": bt.ID,
			"name":         "不可排产",
			"due_date":     time.Now().AddDate(0, 2, 0).Format(time.RFC3339),
		}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inactive type, got %d: %s", w.Code, w.Body.String())
	}
	env.DB.Model(&entity.BoatType{}).Where("id = ?", bt.ID).Update("is_active", true)

	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/erp/boats",
		map[string]interface{}{
			"boat_type_id": bt.ID,
			"name":         "远航者",
			"due_date":     time.Now().AddDate(0, 4, 0).Format(time.RFC3339),
		}, token)
	if w2.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w2.Code, w2.Body.String())
	}
	boatID := testutil.ParseResponse(w2)["data"].(map[string]interface{})["id"].(string)

	// Valid status transition
	w3 := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/erp/boats/"+boatID,
		map[string]interface{}{"status": "IN_PROGRESS"}, token)
	if w3.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w3.Code, w3.Body.String())
	}

	// Unknown status is rejected
	w4 := testutil.DoRequest(env.Router, http.MethodPut, "/api/v1/erp/boats/"+boatID,
		map[string]interface{}{"status": "SUNK"}, token)
	if w4.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d: %s", w4.Code, w4.Body.String())
	}
}
