package planner

import (
	"errors"
	"testing"
)

// TestCompareEventsTieBreak: the documented total ordering is date ascending,
// then delivery before consumption, then part id, then input order.
func TestCompareEventsTieBreak(t *testing.T) {
	delivery := TimelineEvent{Date: day(5), Kind: KindDelivery, PartID: "p1", seq: 1}
	consumption := TimelineEvent{Date: day(5), Kind: KindConsumption, PartID: "p1", seq: 0}

	if CompareEvents(delivery, consumption) >= 0 {
		t.Fatal("same-day delivery must sort before consumption")
	}
	if CompareEvents(consumption, delivery) <= 0 {
		t.Fatal("comparator must be antisymmetric")
	}

	earlier := TimelineEvent{Date: day(4), Kind: KindConsumption, PartID: "z", seq: 9}
	if CompareEvents(earlier, delivery) >= 0 {
		t.Fatal("earlier date must win regardless of kind")
	}

	a := TimelineEvent{Date: day(5), Kind: KindDelivery, PartID: "a", seq: 5}
	b := TimelineEvent{Date: day(5), Kind: KindDelivery, PartID: "b", seq: 1}
	if CompareEvents(a, b) >= 0 {
		t.Fatal("part id breaks ties within the same kind")
	}
}

// TestSameDayDeliveryCoversConsumption: a delivery arriving the same day the
// parts are consumed must be counted as available.
func TestSameDayDeliveryCoversConsumption(t *testing.T) {
	batches := []POBatch{{
		SupplierID: "s1",
		OrderDate:  day(1),
		Lines:      []BatchLine{{PartID: "p1", Quantity: 10}},
	}}
	// lead 4: delivery lands on day 5, same day as consumption
	consumption := []ConsumptionEvent{{Date: day(5), PartID: "p1", Quantity: 10}}

	report := ValidateTimeline(batches, 4, consumption, map[string]int{"p1": 0})

	if report.HasShortage() {
		t.Fatalf("same-day delivery must resolve before consumption, got %+v", report.Shortages)
	}
}

func TestValidateTimelineDetectsShortage(t *testing.T) {
	batches := []POBatch{{
		SupplierID: "s1",
		OrderDate:  day(10),
		Lines:      []BatchLine{{PartID: "p1", Quantity: 20}},
	}}
	// delivery on day 15, but consumption on day 12 outruns the 5 in stock
	consumption := []ConsumptionEvent{
		{Date: day(12), PartID: "p1", Quantity: 8},
		{Date: day(20), PartID: "p1", Quantity: 10},
	}

	report := ValidateTimeline(batches, 5, consumption, map[string]int{"p1": 5})

	if !report.HasShortage() {
		t.Fatal("expected a projected shortage")
	}
	if report.First == nil || !report.First.Date.Equal(day(12)) {
		t.Fatalf("expected first shortage on day 12, got %+v", report.First)
	}
	if report.First.PartID != "p1" || report.First.ResultingStock != -3 {
		t.Errorf("expected p1 at -3, got %+v", report.First)
	}
}

// TestValidateTimelineCollectsAllShortages: scanning continues past the first
// shortage so the full report is available, while First still gates commits.
func TestValidateTimelineCollectsAllShortages(t *testing.T) {
	consumption := []ConsumptionEvent{
		{Date: day(3), PartID: "p1", Quantity: 4},
		{Date: day(6), PartID: "p2", Quantity: 2},
	}

	report := ValidateTimeline(nil, 0, consumption, map[string]int{"p1": 1, "p2": 0})

	if len(report.Shortages) != 2 {
		t.Fatalf("expected both shortages collected, got %d", len(report.Shortages))
	}
	if !report.First.Date.Equal(day(3)) {
		t.Errorf("first shortage should be the day-3 event, got %+v", report.First)
	}
}

// TestValidateTimelineDeterminism: the same inputs give the same first
// shortage on every run, with no dependency on map iteration order.
func TestValidateTimelineDeterminism(t *testing.T) {
	batches := []POBatch{
		{SupplierID: "s1", OrderDate: day(1), Lines: []BatchLine{
			{PartID: "p3", Quantity: 1}, {PartID: "p1", Quantity: 1}, {PartID: "p2", Quantity: 1},
		}},
	}
	consumption := []ConsumptionEvent{
		{Date: day(10), PartID: "p2", Quantity: 5},
		{Date: day(10), PartID: "p1", Quantity: 5},
		{Date: day(10), PartID: "p3", Quantity: 5},
	}
	stock := map[string]int{"p1": 0, "p2": 0, "p3": 0}

	first := ValidateTimeline(batches, 2, consumption, stock)
	for run := 0; run < 50; run++ {
		report := ValidateTimeline(batches, 2, consumption, stock)
		if report.First.PartID != first.First.PartID || !report.First.Date.Equal(first.First.Date) {
			t.Fatalf("run %d: first shortage changed: %+v vs %+v", run, report.First, first.First)
		}
		if len(report.Shortages) != len(first.Shortages) {
			t.Fatalf("run %d: shortage count changed", run)
		}
	}
}

// TestValidateTimelineStrategyAgnostic: identical allocations produce the
// same verdict whether they came as one batch or several.
func TestValidateTimelineStrategyAgnostic(t *testing.T) {
	consumption := []ConsumptionEvent{{Date: day(30), PartID: "p1", Quantity: 12}}
	stock := map[string]int{"p1": 0}

	single := []POBatch{{SupplierID: "s1", OrderDate: day(10), Lines: []BatchLine{{PartID: "p1", Quantity: 12}}}}
	split := []POBatch{
		{SupplierID: "s1", OrderDate: day(10), Lines: []BatchLine{{PartID: "p1", Quantity: 6}}},
		{SupplierID: "s1", OrderDate: day(17), Lines: []BatchLine{{PartID: "p1", Quantity: 6}}},
	}

	if ValidateTimeline(single, 5, consumption, stock).HasShortage() {
		t.Fatal("single batch schedule should cover demand")
	}
	if ValidateTimeline(split, 5, consumption, stock).HasShortage() {
		t.Fatal("split schedule with same totals should also cover demand")
	}
}

func TestCheckShortages(t *testing.T) {
	clean := ShortageReport{}
	if err := CheckShortages(clean); err != nil {
		t.Fatalf("clean report must pass, got %v", err)
	}

	report := ValidateTimeline(nil, 0,
		[]ConsumptionEvent{{Date: day(3), PartID: "p1", Quantity: 4}},
		map[string]int{"p1": 0})
	err := CheckShortages(report)
	var block *ShortageBlockError
	if !errors.As(err, &block) {
		t.Fatalf("expected ShortageBlockError, got %v", err)
	}
	if block.First.PartID != "p1" || block.Count != 1 {
		t.Errorf("block detail wrong: %+v", block)
	}
}

func TestConsumptionFromRequirement(t *testing.T) {
	req := SupplierRequirement{
		SupplierID: "s1",
		Parts: []SupplierPartPlan{{
			PartRequirement: PartRequirement{
				PartID:       "p1",
				CurrentStock: 7,
				BoatsNeeding: []BoatNeed{
					{BoatID: "a", Quantity: 3, NeedByDate: day(5)},
					{BoatID: "b", Quantity: 2, NeedByDate: day(5)},
					{BoatID: "c", Quantity: 4, NeedByDate: day(9)},
				},
			},
		}},
	}

	events := ConsumptionFromRequirement(req)
	if len(events) != 2 {
		t.Fatalf("expected same-day needs merged, got %d events", len(events))
	}
	if events[0].Quantity != 5 || !events[0].Date.Equal(day(5)) {
		t.Errorf("expected merged day-5 consumption of 5, got %+v", events[0])
	}

	stock := InitialStockFromRequirement(req)
	if stock["p1"] != 7 {
		t.Errorf("expected initial stock snapshot 7, got %d", stock["p1"])
	}
}
