package planner

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// TestCalculateEndToEnd walks the full pipeline with the reference scenario:
// part P with stock 10, boat A needs 8 on day 5, boat B needs 8 on day 12,
// supplier lead time 5 days. Expected: day-5 nets 0, day-12 nets 6, order
// placed on day 4.
func TestCalculateEndToEnd(t *testing.T) {
	mbom := []MBOMLine{{PartID: "P", PartName: "winch", QuantityRequired: 8}}
	boats := []ProductionBoat{
		testBoat("A", 15, 10, BoatScheduled, mbom), // need day 5
		testBoat("B", 22, 10, BoatScheduled, mbom), // need day 12
	}
	parts := map[string]PartInfo{
		"P": {PartNumber: "PN-P", Name: "winch", CurrentStock: 10, UnitCost: decimal.NewFromInt(3)},
	}
	links := []SupplierLink{{
		SupplierID:      "s1",
		SupplierName:    "Harbor Supply",
		PartID:          "P",
		LeadTimeDays:    5,
		MinimumOrderQty: 1,
		BatchSize:       1,
		PricePerUnit:    decimal.NewFromInt(3),
	}}

	analysis, err := Calculate(boats, parts, links, 0, DateWindow{}, false, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if analysis.TotalBoats != 2 || analysis.TotalParts != 1 || analysis.TotalSuppliers != 1 {
		t.Fatalf("unexpected totals: %+v", analysis)
	}
	if !analysis.PlanningHorizonStart.Equal(day(15)) || !analysis.PlanningHorizonEnd.Equal(day(22)) {
		t.Errorf("planning horizon should span boat due dates, got %s..%s",
			FormatDate(analysis.PlanningHorizonStart), FormatDate(analysis.PlanningHorizonEnd))
	}

	part := analysis.Parts[0]
	if part.NetQuantityNeeded != 6 {
		t.Errorf("expected net 6, got %d", part.NetQuantityNeeded)
	}

	orders := analysis.Suppliers[0].Parts[0].Orders
	if len(orders) != 1 {
		t.Fatalf("expected 1 planned order, got %d", len(orders))
	}
	if !orders[0].OrderDate.Equal(day(4)) { // day 12 - 5 - 3
		t.Errorf("expected order date %s, got %s", FormatDate(day(4)), FormatDate(orders[0].OrderDate))
	}
	if orders[0].Quantity != 6 {
		t.Errorf("expected order quantity 6, got %d", orders[0].Quantity)
	}
	if !analysis.TotalCost.Equal(decimal.NewFromInt(18)) {
		t.Errorf("expected total cost 18, got %s", analysis.TotalCost)
	}
}

func TestCalculateNoDemand(t *testing.T) {
	_, err := Calculate(nil, nil, nil, 0, DateWindow{}, false, time.Now())
	if !errors.Is(err, ErrNoDemand) {
		t.Fatalf("expected ErrNoDemand, got %v", err)
	}
}

func TestCalculateUnmatchedPartSurvives(t *testing.T) {
	mbom := []MBOMLine{
		{PartID: "matched", PartName: "cleat", QuantityRequired: 2},
		{PartID: "orphan", PartName: "custom keel", QuantityRequired: 1},
	}
	boats := []ProductionBoat{testBoat("A", 20, 5, BoatScheduled, mbom)}
	parts := map[string]PartInfo{
		"matched": {PartNumber: "PN-1", Name: "cleat", CurrentStock: 0, UnitCost: decimal.NewFromInt(1)},
		"orphan":  {PartNumber: "PN-2", Name: "custom keel", CurrentStock: 0, UnitCost: decimal.NewFromInt(500)},
	}
	links := []SupplierLink{{
		SupplierID: "s1", SupplierName: "S", PartID: "matched",
		LeadTimeDays: 1, MinimumOrderQty: 1, BatchSize: 1,
		PricePerUnit: decimal.NewFromInt(1),
	}}

	analysis, err := Calculate(boats, parts, links, 0, DateWindow{}, false, time.Now())
	if err != nil {
		t.Fatalf("unmatched supplier must not fail the calculation: %v", err)
	}
	if len(analysis.UnmatchedParts) != 1 || analysis.UnmatchedParts[0].PartID != "orphan" {
		t.Fatalf("expected orphan flagged, got %+v", analysis.UnmatchedParts)
	}
	if len(analysis.Suppliers) != 1 {
		t.Fatalf("matched part must still be grouped, got %d suppliers", len(analysis.Suppliers))
	}
}

// TestScheduleAndValidateRoundTrip: batches built from a requirement must
// validate clean when deliveries precede consumption.
func TestScheduleAndValidateRoundTrip(t *testing.T) {
	req := supplierReq(map[string]int{"p1": 12}, 40, 5)
	req.Parts[0].BoatsNeeding = []BoatNeed{{BoatID: "b1", Quantity: 12, NeedByDate: day(40)}}
	req.Parts[0].CurrentStock = 0

	batches, err := BuildSchedule(req, StrategySingle, 1)
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	report := ValidateTimeline(batches, MaxLeadTime(req),
		ConsumptionFromRequirement(req), InitialStockFromRequirement(req))
	if report.HasShortage() {
		t.Fatalf("single batch at base order date must arrive in time, got %+v", report.Shortages)
	}

	// 把批次推迟到交付落在需求之后，必须检出缺料
	late := []POBatch{{SupplierID: "s1", OrderDate: day(38), Lines: batches[0].Lines}}
	report = ValidateTimeline(late, MaxLeadTime(req),
		ConsumptionFromRequirement(req), InitialStockFromRequirement(req))
	if !report.HasShortage() {
		t.Fatal("late delivery must produce a shortage")
	}
}
