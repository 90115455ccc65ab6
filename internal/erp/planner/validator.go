package planner

import (
	"sort"
	"time"
)

// EventKind 时间线事件类型。到货排在消耗之前：同一天先收货后领料。
type EventKind int

const (
	KindDelivery EventKind = iota
	KindConsumption
)

// TimelineEvent 库存时间线上的一个事件
type TimelineEvent struct {
	Date     time.Time
	Kind     EventKind
	PartID   string
	Quantity int
	seq      int
}

// CompareEvents 时间线事件的全序：日期升序，同日到货先于消耗，
// 再按零件ID、输入顺序，保证重放结果与map遍历顺序无关。
func CompareEvents(a, b TimelineEvent) int {
	switch {
	case a.Date.Before(b.Date):
		return -1
	case a.Date.After(b.Date):
		return 1
	}
	if a.Kind != b.Kind {
		return int(a.Kind) - int(b.Kind)
	}
	if a.PartID != b.PartID {
		if a.PartID < b.PartID {
			return -1
		}
		return 1
	}
	return a.seq - b.seq
}

// ConsumptionEvent 某零件在某天的合计消耗
type ConsumptionEvent struct {
	Date     time.Time
	PartID   string
	Quantity int
}

// Shortage 预测缺料：某天某零件库存转负
type Shortage struct {
	Date           time.Time
	PartID         string
	ResultingStock int
}

// ShortageReport 时间线重放结果
type ShortageReport struct {
	Shortages []Shortage
	First     *Shortage
}

// HasShortage 是否存在任何缺料
func (r ShortageReport) HasShortage() bool {
	return len(r.Shortages) > 0
}

// ValidateTimeline 重放交付/消耗时间线，检出库存转负的日期。
//
// 到货日期 = 批次下单日 + 最长交期；消耗来自需求计算的(零件, 日期)合计。
// 与批次怎么排出来的无关，只看最终批次列表，三种策略共用。扫描不在第一个
// 缺料处停下，全部收集供展示，提交闸门只看First。
func ValidateTimeline(batches []POBatch, maxLeadTimeDays int, consumption []ConsumptionEvent, initialStock map[string]int) ShortageReport {
	events := make([]TimelineEvent, 0, len(batches)+len(consumption))
	for _, b := range batches {
		delivery := AddDays(b.OrderDate, maxLeadTimeDays)
		for _, line := range b.Lines {
			events = append(events, TimelineEvent{
				Date:     delivery,
				Kind:     KindDelivery,
				PartID:   line.PartID,
				Quantity: line.Quantity,
				seq:      len(events),
			})
		}
	}
	for _, c := range consumption {
		events = append(events, TimelineEvent{
			Date:     CivilDate(c.Date),
			Kind:     KindConsumption,
			PartID:   c.PartID,
			Quantity: c.Quantity,
			seq:      len(events),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return CompareEvents(events[i], events[j]) < 0
	})

	stock := make(map[string]int, len(initialStock))
	for id, qty := range initialStock {
		stock[id] = qty
	}

	var report ShortageReport
	for _, ev := range events {
		switch ev.Kind {
		case KindDelivery:
			stock[ev.PartID] += ev.Quantity
		case KindConsumption:
			stock[ev.PartID] -= ev.Quantity
			if stock[ev.PartID] < 0 {
				report.Shortages = append(report.Shortages, Shortage{
					Date:           ev.Date,
					PartID:         ev.PartID,
					ResultingStock: stock[ev.PartID],
				})
			}
		}
	}
	if len(report.Shortages) > 0 {
		report.First = &report.Shortages[0]
	}
	return report
}

// CheckShortages 提交前的闸门：存在缺料时返回ShortageBlockError
func CheckShortages(report ShortageReport) error {
	if report.First != nil {
		return &ShortageBlockError{First: *report.First, Count: len(report.Shortages)}
	}
	return nil
}

// ConsumptionFromRequirement 从供应商需求还原(零件, 日期)消耗事件，
// 供时间线校验使用。取的是毛需求（当日实际领料量），不是净需求。
func ConsumptionFromRequirement(req SupplierRequirement) []ConsumptionEvent {
	type key struct {
		date   time.Time
		partID string
	}
	totals := make(map[key]int)
	order := make([]key, 0)
	for _, p := range req.Parts {
		for _, boat := range p.BoatsNeeding {
			k := key{date: CivilDate(boat.NeedByDate), partID: p.PartID}
			if _, ok := totals[k]; !ok {
				order = append(order, k)
			}
			totals[k] += boat.Quantity
		}
	}
	out := make([]ConsumptionEvent, 0, len(order))
	for _, k := range order {
		out = append(out, ConsumptionEvent{Date: k.date, PartID: k.partID, Quantity: totals[k]})
	}
	return out
}

// InitialStockFromRequirement 从供应商需求取各零件的起始库存快照
func InitialStockFromRequirement(req SupplierRequirement) map[string]int {
	stock := make(map[string]int, len(req.Parts))
	for _, p := range req.Parts {
		stock[p.PartID] = p.CurrentStock
	}
	return stock
}
