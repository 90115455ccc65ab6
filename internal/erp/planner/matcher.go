package planner

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// BufferDays 下单日期在交期之外额外预留的安全天数
const BufferDays = 3

// maxCapacitySplits 月产能拆单的上限。拆单按日历月向前步进，不设上限时
// 下单日期可能比最早需求早出任意多个月。触顶后总量在这些子单之间均分，
// 余数摊给最早的子单，此时单笔可能超出月产能。
const maxCapacitySplits = 12

// MatchSuppliers 为每个净需求零件选择供应商并生成下单计划。
//
// 候选按 is_preferred 降序、价格升序、supplier_id 升序排序，优先供应商
// 无条件胜出，同价时按 supplier_id 保证结果稳定。没有任何
// 候选的零件记入unmatched单独上报，其余零件照常处理。每个净需求事件按
// order_date = need_by - lead_time - BufferDays 倒推下单日，可选批量圆整后
// 再按MOQ托底，超出月产能时拆单。
func MatchSuppliers(parts []PartRequirement, links []SupplierLink, batchOptimize bool) ([]SupplierRequirement, []UnmatchedPart) {
	linksByPart := make(map[string][]SupplierLink)
	for _, l := range links {
		linksByPart[l.PartID] = append(linksByPart[l.PartID], l)
	}

	supplierOrder := make([]string, 0)
	bySupplier := make(map[string]*SupplierRequirement)
	var unmatched []UnmatchedPart

	for _, part := range parts {
		candidates := append([]SupplierLink(nil), linksByPart[part.PartID]...)
		if len(candidates) == 0 {
			unmatched = append(unmatched, UnmatchedPart{
				PartID:      part.PartID,
				PartName:    part.PartName,
				NetQuantity: part.NetQuantityNeeded,
			})
			continue
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].IsPreferred != candidates[j].IsPreferred {
				return candidates[i].IsPreferred
			}
			if !candidates[i].PricePerUnit.Equal(candidates[j].PricePerUnit) {
				return candidates[i].PricePerUnit.LessThan(candidates[j].PricePerUnit)
			}
			return candidates[i].SupplierID < candidates[j].SupplierID
		})
		best := candidates[0]

		plan := SupplierPartPlan{
			PartRequirement:    part,
			LeadTimeDays:       best.LeadTimeDays,
			BatchSize:          best.BatchSize,
			MinimumOrderQty:    best.MinimumOrderQty,
			MaxMonthlyCapacity: best.MaxMonthlyCapacity,
			IsPreferred:        best.IsPreferred,
			UnitPrice:          best.PricePerUnit,
		}

		for _, ev := range part.NetEvents {
			orderDate := AddDays(ev.NeedByDate, -(best.LeadTimeDays + BufferDays))

			qty := ev.NetQuantity
			if batchOptimize {
				qty = RoundToBatch(qty, best.BatchSize)
			}
			qty = ApplyMOQ(qty, best.MinimumOrderQty)

			if best.MaxMonthlyCapacity != nil && qty > *best.MaxMonthlyCapacity {
				plan.CapacitySplit = true
				plan.Orders = append(plan.Orders,
					splitByCapacity(qty, *best.MaxMonthlyCapacity, orderDate, ev, best.PricePerUnit)...)
			} else {
				plan.Orders = append(plan.Orders, PlannedOrder{
					OrderDate:      orderDate,
					Quantity:       qty,
					UnitPrice:      best.PricePerUnit,
					LineTotal:      lineTotal(best.PricePerUnit, qty),
					RequiredByDate: ev.NeedByDate,
					BoatIDs:        ev.BoatIDs,
				})
			}
		}

		// 零件汇总成本按实际下单量计
		plan.TotalCost = decimal.Zero
		for _, o := range plan.Orders {
			plan.TotalCost = plan.TotalCost.Add(o.LineTotal)
		}

		sr, ok := bySupplier[best.SupplierID]
		if !ok {
			sr = &SupplierRequirement{
				SupplierID:   best.SupplierID,
				SupplierName: best.SupplierName,
				ContactName:  best.ContactName,
				Email:        best.Email,
				Phone:        best.Phone,
			}
			bySupplier[best.SupplierID] = sr
			supplierOrder = append(supplierOrder, best.SupplierID)
		}
		sr.Parts = append(sr.Parts, plan)
		sr.TotalParts++
		sr.TotalCost = sr.TotalCost.Add(plan.TotalCost)
	}

	result := make([]SupplierRequirement, 0, len(supplierOrder))
	for _, id := range supplierOrder {
		result = append(result, *bySupplier[id])
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].SupplierName != result[j].SupplierName {
			return result[i].SupplierName < result[j].SupplierName
		}
		return result[i].SupplierID < result[j].SupplierID
	})
	return result, unmatched
}

// RoundToBatch 向上圆整到批量的整数倍。batchSize<=1 时原样返回，幂等。
func RoundToBatch(qty, batchSize int) int {
	if batchSize <= 1 || qty <= 0 {
		return qty
	}
	batches := (qty + batchSize - 1) / batchSize
	return batches * batchSize
}

// ApplyMOQ 最小起订量托底，幂等
func ApplyMOQ(qty, moq int) int {
	if qty < moq {
		return moq
	}
	return qty
}

// splitByCapacity 超出月产能时拆成多单，从倒推出的下单日起按日历月向前步进。
// 均分后余数摊给最早的子单。拆单改变了整体的交期覆盖，是已知的近似处理，
// 结果上以CapacitySplit标记。
func splitByCapacity(qty, capacity int, orderDate time.Time, ev NetRequirement, price decimal.Decimal) []PlannedOrder {
	numOrders := (qty + capacity - 1) / capacity
	if numOrders > maxCapacitySplits {
		numOrders = maxCapacitySplits
	}

	quantities := Redistribute(qty, numOrders)
	orders := make([]PlannedOrder, 0, numOrders)
	for i, q := range quantities {
		orders = append(orders, PlannedOrder{
			OrderDate:      AddMonths(orderDate, -i),
			Quantity:       q,
			UnitPrice:      price,
			LineTotal:      lineTotal(price, q),
			RequiredByDate: ev.NeedByDate,
			BoatIDs:        ev.BoatIDs,
		})
	}
	return orders
}

func lineTotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}
