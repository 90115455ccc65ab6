package planner

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func supplierReq(partNets map[string]int, needDay, leadDays int) SupplierRequirement {
	req := SupplierRequirement{
		SupplierID:   "s1",
		SupplierName: "Supplier s1",
	}
	for partID, net := range partNets {
		plan := SupplierPartPlan{
			PartRequirement: requirementWithEvent(partID, net, needDay),
			LeadTimeDays:    leadDays,
			UnitPrice:       decimal.NewFromInt(2),
		}
		req.Parts = append(req.Parts, plan)
		req.TotalParts++
	}
	return req
}

func TestBuildScheduleSingle(t *testing.T) {
	req := supplierReq(map[string]int{"p1": 10, "p2": 4}, 30, 7)

	batches, err := BuildSchedule(req, StrategySingle, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}

	// earliest need (day 30) - max lead (7) - buffer (3) = day 20
	if !batches[0].OrderDate.Equal(day(20)) {
		t.Errorf("expected order date %s, got %s", FormatDate(day(20)), FormatDate(batches[0].OrderDate))
	}
	total := 0
	for _, l := range batches[0].Lines {
		total += l.Quantity
	}
	if total != 14 {
		t.Errorf("single batch must carry full net quantity, got %d", total)
	}
	if !batches[0].TotalCost.Equal(decimal.NewFromInt(28)) {
		t.Errorf("expected total cost 28, got %s", batches[0].TotalCost)
	}
}

func TestBuildSchedulePeriodic(t *testing.T) {
	req := supplierReq(map[string]int{"p1": 10}, 30, 7)

	batches, err := BuildSchedule(req, StrategyWeekly, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}

	base := day(20)
	for i, b := range batches {
		want := AddDays(base, i*7)
		if !b.OrderDate.Equal(want) {
			t.Errorf("batch %d: expected date %s, got %s", i, FormatDate(want), FormatDate(b.OrderDate))
		}
	}

	// 10/3 = 3 each, remainder to the final batch
	quantities := []int{batches[0].Lines[0].Quantity, batches[1].Lines[0].Quantity, batches[2].Lines[0].Quantity}
	if quantities[0] != 3 || quantities[1] != 3 || quantities[2] != 4 {
		t.Errorf("expected split 3/3/4 with remainder in final batch, got %v", quantities)
	}
}

func TestBuildSchedulePeriodicIntervals(t *testing.T) {
	cases := []struct {
		strategy Strategy
		interval int
	}{
		{StrategyWeekly, 7},
		{StrategyBiweekly, 14},
		{StrategyMonthly, 30},
	}
	req := supplierReq(map[string]int{"p1": 6}, 60, 5)
	for _, tc := range cases {
		batches, err := BuildSchedule(req, tc.strategy, 2)
		if err != nil {
			t.Fatalf("%s: %v", tc.strategy, err)
		}
		gap := DaysBetween(batches[0].OrderDate, batches[1].OrderDate)
		if gap != tc.interval {
			t.Errorf("%s: expected %d-day interval, got %d", tc.strategy, tc.interval, gap)
		}
	}
}

// TestRedistributeInvariant: sum of all batch allocations equals the total,
// remainder fully assigned, none dropped, none duplicated.
func TestRedistributeInvariant(t *testing.T) {
	cases := []struct {
		total, n int
	}{
		{10, 3}, {7, 7}, {5, 8}, {0, 3}, {100, 1}, {17, 4},
	}
	for _, tc := range cases {
		parts := Redistribute(tc.total, tc.n)
		if len(parts) != tc.n {
			t.Fatalf("Redistribute(%d, %d): expected %d parts, got %d", tc.total, tc.n, tc.n, len(parts))
		}
		sum := 0
		for i, p := range parts {
			sum += p
			if i > 0 && p > parts[i-1] {
				t.Errorf("Redistribute(%d, %d): remainder must go to earliest batches, got %v", tc.total, tc.n, parts)
			}
		}
		if sum != tc.total {
			t.Errorf("Redistribute(%d, %d): sum %d != total", tc.total, tc.n, sum)
		}
	}
}

func TestResplitBatches(t *testing.T) {
	req := supplierReq(map[string]int{"p1": 11}, 30, 7)
	batches, _ := BuildSchedule(req, StrategyWeekly, 2)

	// 加一个批次后全量重分
	batches = append(batches, POBatch{SupplierID: "s1", OrderDate: AddDays(day(20), 14)})
	resplit := ResplitBatches(req, batches)

	if len(resplit) != 3 {
		t.Fatalf("expected 3 batches after resplit, got %d", len(resplit))
	}
	sum := 0
	for _, b := range resplit {
		for _, l := range b.Lines {
			sum += l.Quantity
		}
	}
	if sum != 11 {
		t.Errorf("resplit must preserve net requirement, got %d", sum)
	}
	// 4/4/3: 余数给最早的批次
	if resplit[0].Lines[0].Quantity != 4 || resplit[2].Lines[0].Quantity != 3 {
		t.Errorf("expected 4/4/3 split, got %d/%d/%d",
			resplit[0].Lines[0].Quantity, resplit[1].Lines[0].Quantity, resplit[2].Lines[0].Quantity)
	}
}

func TestRecomputeBatchesAllocationStates(t *testing.T) {
	req := supplierReq(map[string]int{"p1": 10, "p2": 6, "p3": 4}, 30, 7)

	batches := []POBatch{
		{SupplierID: "s1", OrderDate: day(20), Lines: []BatchLine{
			{PartID: "p1", Quantity: 4},
			{PartID: "p2", Quantity: 6},
			{PartID: "p3", Quantity: 5},
		}},
		{SupplierID: "s1", OrderDate: day(27), Lines: []BatchLine{
			{PartID: "p1", Quantity: 4},
		}},
	}

	out, summary := RecomputeBatches(req, batches)

	if summary.UnderCount != 1 || summary.OverCount != 1 {
		t.Fatalf("expected 1 under + 1 over, got %+v", summary)
	}
	states := make(map[string]AllocationState)
	for _, pa := range summary.Parts {
		states[pa.PartID] = pa.State
	}
	if states["p1"] != AllocationUnder { // 8 of 10
		t.Errorf("p1 should be under-allocated, got %s", states["p1"])
	}
	if states["p2"] != AllocationExact {
		t.Errorf("p2 should be exact, got %s", states["p2"])
	}
	if states["p3"] != AllocationOver { // 5 of 4
		t.Errorf("p3 should be over-allocated, got %s", states["p3"])
	}
	if summary.Exact() {
		t.Error("summary must not report exact with mismatches present")
	}

	// 成本簿记：单价来自需求，行金额和批次合计重算
	if !out[0].Lines[0].UnitCost.Equal(decimal.NewFromInt(2)) {
		t.Errorf("unit cost should be filled from requirement, got %s", out[0].Lines[0].UnitCost)
	}
	if !out[0].TotalCost.Equal(decimal.NewFromInt(30)) { // (4+6+5)*2
		t.Errorf("expected batch cost 30, got %s", out[0].TotalCost)
	}
}

func TestCheckAllocation(t *testing.T) {
	req := supplierReq(map[string]int{"p1": 10}, 30, 7)

	exact := []POBatch{{SupplierID: "s1", OrderDate: day(20), Lines: []BatchLine{{PartID: "p1", Quantity: 10}}}}
	_, summary := RecomputeBatches(req, exact)
	if err := CheckAllocation(summary); err != nil {
		t.Fatalf("exact allocation must pass, got %v", err)
	}

	under := []POBatch{{SupplierID: "s1", OrderDate: day(20), Lines: []BatchLine{{PartID: "p1", Quantity: 7}}}}
	_, summary = RecomputeBatches(req, under)
	err := CheckAllocation(summary)
	var mismatch *AllocationMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected AllocationMismatchError, got %v", err)
	}
	if len(mismatch.Mismatches) != 1 || mismatch.Mismatches[0].Allocated != 7 {
		t.Errorf("mismatch detail wrong: %+v", mismatch.Mismatches)
	}
}

// TestRecomputeBatchesUnknownPartIsOver: 批次里出现净需求之外的零件时，
// 其分配量按超配上报，校验必须失败。
func TestRecomputeBatchesUnknownPartIsOver(t *testing.T) {
	req := supplierReq(map[string]int{"p1": 10}, 30, 7)

	batches := []POBatch{{SupplierID: "s1", OrderDate: day(20), Lines: []BatchLine{
		{PartID: "p1", Quantity: 10},
		{PartID: "p-extra", Quantity: 99},
	}}}

	_, summary := RecomputeBatches(req, batches)
	if summary.OverCount != 1 {
		t.Fatalf("unknown part must count as over-allocation, got %+v", summary)
	}
	found := false
	for _, pa := range summary.Parts {
		if pa.PartID != "p-extra" {
			continue
		}
		found = true
		if pa.Required != 0 || pa.Allocated != 99 || pa.State != AllocationOver {
			t.Errorf("unexpected allocation for unknown part: %+v", pa)
		}
	}
	if !found {
		t.Fatal("unknown part missing from allocation summary")
	}

	err := CheckAllocation(summary)
	var mismatch *AllocationMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected AllocationMismatchError, got %v", err)
	}
}

func TestBuildScheduleRejectsCustom(t *testing.T) {
	req := supplierReq(map[string]int{"p1": 10}, 30, 7)
	if _, err := BuildSchedule(req, StrategyCustom, 1); err == nil {
		t.Fatal("custom strategy must require caller-provided batches")
	}
	if _, err := BuildSchedule(req, Strategy("quarterly"), 1); err == nil {
		t.Fatal("unknown strategy must be rejected")
	}
}
