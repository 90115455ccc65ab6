package planner

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// NetRequirements 按累计消耗模型把毛需求净额化。
//
// 事件先按(零件, need-by日期)合并，再按日期升序消耗起始库存：日期早的需求
// 先用库存，用完之后的事件全额转为净需求。净需求按事件加安全库存并向上取整，
// 所以零件合计可能略高于"合计-库存再加安全库存"的朴素算法，这是既定行为。
// 同日期事件按输入顺序稳定排序。
//
// 不修改传入的parts快照，剩余库存以新map返回，方便调用方复用和测试。
func NetRequirements(events []DemandEvent, parts map[string]PartInfo, safetyPct int) ([]PartRequirement, map[string]int) {
	type dayDemand struct {
		date     time.Time
		quantity int
		boatIDs  []string
	}

	// 按零件分组，保持事件的输入顺序
	partOrder := make([]string, 0)
	rawByPart := make(map[string][]DemandEvent)
	for _, ev := range events {
		if _, ok := rawByPart[ev.PartID]; !ok {
			partOrder = append(partOrder, ev.PartID)
		}
		rawByPart[ev.PartID] = append(rawByPart[ev.PartID], ev)
	}

	remaining := make(map[string]int, len(parts))
	for id, p := range parts {
		remaining[id] = p.CurrentStock
	}

	var requirements []PartRequirement
	for _, partID := range partOrder {
		part, ok := parts[partID]
		if !ok {
			// 零件主数据缺失，与上游口径一致：跳过而不是中断
			continue
		}
		raw := rawByPart[partID]

		// 合并同一天的需求
		dayIndex := make(map[time.Time]int)
		var days []dayDemand
		for _, ev := range raw {
			d := CivilDate(ev.NeedByDate)
			if idx, ok := dayIndex[d]; ok {
				days[idx].quantity += ev.Quantity
				days[idx].boatIDs = append(days[idx].boatIDs, ev.BoatID)
			} else {
				dayIndex[d] = len(days)
				days = append(days, dayDemand{date: d, quantity: ev.Quantity, boatIDs: []string{ev.BoatID}})
			}
		}
		sort.SliceStable(days, func(i, j int) bool {
			return days[i].date.Before(days[j].date)
		})

		// 累计消耗走读
		stock := remaining[partID]
		startingStock := stock
		var netEvents []NetRequirement
		for _, day := range days {
			if day.quantity > stock {
				net := day.quantity - stock
				netEvents = append(netEvents, NetRequirement{
					PartID:      partID,
					PartName:    part.Name,
					NeedByDate:  day.date,
					Quantity:    day.quantity,
					NetQuantity: applySafetyStock(net, safetyPct),
					StockBefore: stock,
					BoatIDs:     day.boatIDs,
				})
				stock = 0
			} else {
				stock -= day.quantity
			}
		}
		remaining[partID] = stock

		if len(netEvents) == 0 {
			continue // 库存完全覆盖，不进入结果
		}

		total := 0
		netTotal := 0
		earliest := CivilDate(raw[0].NeedByDate)
		latest := earliest
		var boats []BoatNeed
		for _, ev := range raw {
			total += ev.Quantity
			d := CivilDate(ev.NeedByDate)
			if d.Before(earliest) {
				earliest = d
			}
			if d.After(latest) {
				latest = d
			}
			boats = append(boats, BoatNeed{
				BoatID:     ev.BoatID,
				BoatName:   ev.BoatName,
				Quantity:   ev.Quantity,
				NeedByDate: d,
				DueDate:    ev.DueDate,
			})
		}
		for _, ne := range netEvents {
			netTotal += ne.NetQuantity
		}

		requirements = append(requirements, PartRequirement{
			PartID:              partID,
			PartName:            part.Name,
			PartNumber:          part.PartNumber,
			TotalQuantityNeeded: total,
			NetQuantityNeeded:   netTotal,
			CurrentStock:        startingStock,
			UnitCost:            part.UnitCost,
			TotalCost:           part.UnitCost.Mul(decimal.NewFromInt(int64(netTotal))),
			EarliestNeedDate:    earliest,
			LatestNeedDate:      latest,
			BoatsNeeding:        boats,
			NetEvents:           netEvents,
		})
	}

	// 结果顺序与map遍历无关
	sort.SliceStable(requirements, func(i, j int) bool {
		if requirements[i].PartNumber != requirements[j].PartNumber {
			return requirements[i].PartNumber < requirements[j].PartNumber
		}
		return requirements[i].PartID < requirements[j].PartID
	})

	return requirements, remaining
}

// applySafetyStock net * (1 + pct/100) 向上取整，纯整数运算
func applySafetyStock(net, pct int) int {
	if pct <= 0 {
		return net
	}
	return (net*(100+pct) + 99) / 100
}
