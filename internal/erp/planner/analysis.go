package planner

import "time"

// Calculate 完整的需求计算流水线：需求展开 → 库存净额 → 供应商匹配。
// 纯函数，所有数据由调用方取好传入。并发的计算+提交会重复占用同一份库存，
// 这里不做防护，由持久层的提交串行化兜底。
func Calculate(boats []ProductionBoat, parts map[string]PartInfo, links []SupplierLink,
	safetyPct int, window DateWindow, batchOptimize bool, now time.Time) (*RequirementsAnalysis, error) {

	events, err := ExtractDemand(boats, window)
	if err != nil {
		return nil, err
	}

	requirements, _ := NetRequirements(events, parts, safetyPct)
	suppliers, unmatched := MatchSuppliers(requirements, links, batchOptimize)

	analysis := &RequirementsAnalysis{
		CalculatedAt:   now,
		TotalParts:     len(requirements),
		TotalSuppliers: len(suppliers),
		Parts:          requirements,
		Suppliers:      suppliers,
		UnmatchedParts: unmatched,
	}
	for _, s := range suppliers {
		analysis.TotalCost = analysis.TotalCost.Add(s.TotalCost)
	}

	// 计划范围取窗口内参与计算船只的交期跨度
	seen := make(map[string]bool)
	for _, ev := range events {
		if seen[ev.BoatID] {
			continue
		}
		seen[ev.BoatID] = true
		analysis.TotalBoats++
		if analysis.PlanningHorizonStart.IsZero() || ev.DueDate.Before(analysis.PlanningHorizonStart) {
			analysis.PlanningHorizonStart = ev.DueDate
		}
		if ev.DueDate.After(analysis.PlanningHorizonEnd) {
			analysis.PlanningHorizonEnd = ev.DueDate
		}
	}

	return analysis, nil
}
