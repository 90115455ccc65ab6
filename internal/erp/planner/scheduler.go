package planner

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Strategy PO批次排程策略
type Strategy string

const (
	StrategySingle   Strategy = "single"
	StrategyWeekly   Strategy = "weekly"
	StrategyBiweekly Strategy = "biweekly"
	StrategyMonthly  Strategy = "monthly"
	StrategyCustom   Strategy = "custom"
)

// Interval 返回周期策略的批次间隔天数
func (s Strategy) Interval() int {
	switch s {
	case StrategyWeekly:
		return 7
	case StrategyBiweekly:
		return 14
	case StrategyMonthly:
		return 30
	}
	return 0
}

// BatchLine PO批次中一个零件的分配
type BatchLine struct {
	PartID     string
	PartNumber string
	PartName   string
	Quantity   int
	UnitCost   decimal.Decimal
	TotalCost  decimal.Decimal
}

// POBatch 一个带日期的采购批次，提交后成为一张采购订单
type POBatch struct {
	SupplierID string
	OrderDate  time.Time
	Lines      []BatchLine
	TotalCost  decimal.Decimal
}

// AllocationState 零件的分配完整性
type AllocationState string

const (
	AllocationExact AllocationState = "exact"
	AllocationUnder AllocationState = "under"
	AllocationOver  AllocationState = "over"
)

// PartAllocation 单个零件在所有批次上的分配与净需求的对比
type PartAllocation struct {
	PartID    string
	Required  int
	Allocated int
	State     AllocationState
}

// AllocationSummary 分配完整性汇总。调用方（交互式调整界面）允许临时的
// 不一致，这里只如实上报，提交时再由CheckAllocation拦截。
type AllocationSummary struct {
	Parts      []PartAllocation
	UnderCount int
	OverCount  int
}

// Exact 所有零件分配都与净需求一致
func (s AllocationSummary) Exact() bool {
	return s.UnderCount == 0 && s.OverCount == 0
}

// BaseOrderDate 单批次下单日：最早need-by减去最长交期再减安全天数
func BaseOrderDate(req SupplierRequirement) time.Time {
	if len(req.Parts) == 0 {
		return time.Time{}
	}
	earliest := req.Parts[0].EarliestNeedDate
	maxLead := 0
	for _, p := range req.Parts {
		if p.EarliestNeedDate.Before(earliest) {
			earliest = p.EarliestNeedDate
		}
		if p.LeadTimeDays > maxLead {
			maxLead = p.LeadTimeDays
		}
	}
	return AddDays(earliest, -(maxLead + BufferDays))
}

// MaxLeadTime 供应商需求中最长的交期
func MaxLeadTime(req SupplierRequirement) int {
	maxLead := 0
	for _, p := range req.Parts {
		if p.LeadTimeDays > maxLead {
			maxLead = p.LeadTimeDays
		}
	}
	return maxLead
}

// BuildSchedule 按策略把供应商的净需求拆成若干个带日期的批次。
// single: 一个批次装全部净需求；周期策略: numBatches个批次按固定间隔排开，
// 每个零件向下均分，余数给最后一个批次。custom由调用方自带分配，走
// RecomputeBatches做簿记。
func BuildSchedule(req SupplierRequirement, strategy Strategy, numBatches int) ([]POBatch, error) {
	if len(req.Parts) == 0 {
		return nil, fmt.Errorf("supplier %s has no part requirements", req.SupplierID)
	}

	base := BaseOrderDate(req)

	switch strategy {
	case StrategySingle:
		batch := POBatch{SupplierID: req.SupplierID, OrderDate: base}
		for _, p := range req.Parts {
			batch.Lines = append(batch.Lines, newBatchLine(p, p.NetQuantityNeeded))
		}
		recomputeTotals(&batch)
		return []POBatch{batch}, nil

	case StrategyWeekly, StrategyBiweekly, StrategyMonthly:
		if numBatches < 1 {
			return nil, fmt.Errorf("periodic strategy requires at least 1 batch, got %d", numBatches)
		}
		interval := strategy.Interval()
		batches := make([]POBatch, numBatches)
		for i := range batches {
			batches[i] = POBatch{
				SupplierID: req.SupplierID,
				OrderDate:  AddDays(base, i*interval),
			}
		}
		for _, p := range req.Parts {
			per := p.NetQuantityNeeded / numBatches
			for i := range batches {
				qty := per
				if i == numBatches-1 {
					qty = p.NetQuantityNeeded - per*(numBatches-1) // 余数给最后一批
				}
				batches[i].Lines = append(batches[i].Lines, newBatchLine(p, qty))
			}
		}
		for i := range batches {
			recomputeTotals(&batches[i])
		}
		return batches, nil

	case StrategyCustom:
		return nil, fmt.Errorf("custom strategy requires caller-provided batches")

	default:
		return nil, fmt.Errorf("unknown scheduling strategy %q", strategy)
	}
}

// RecomputeBatches 自定义排程的簿记：重算每个批次的成本，并汇总每个零件
// 在所有批次上的分配与净需求的差异。不修改传入的分配量。
func RecomputeBatches(req SupplierRequirement, batches []POBatch) ([]POBatch, AllocationSummary) {
	required := make(map[string]int, len(req.Parts))
	order := make([]string, 0, len(req.Parts))
	costs := make(map[string]decimal.Decimal, len(req.Parts))
	for _, p := range req.Parts {
		required[p.PartID] = p.NetQuantityNeeded
		order = append(order, p.PartID)
		costs[p.PartID] = p.UnitPrice
	}

	allocated := make(map[string]int)
	extraSeen := make(map[string]bool)
	var extras []string
	out := make([]POBatch, len(batches))
	for i, b := range batches {
		nb := POBatch{SupplierID: b.SupplierID, OrderDate: CivilDate(b.OrderDate)}
		for _, line := range b.Lines {
			l := line
			if _, ok := required[l.PartID]; !ok && !extraSeen[l.PartID] {
				extraSeen[l.PartID] = true
				extras = append(extras, l.PartID)
			}
			if c, ok := costs[l.PartID]; ok {
				l.UnitCost = c
			}
			l.TotalCost = l.UnitCost.Mul(decimal.NewFromInt(int64(l.Quantity)))
			nb.Lines = append(nb.Lines, l)
			allocated[l.PartID] += l.Quantity
		}
		recomputeTotals(&nb)
		out[i] = nb
	}

	var summary AllocationSummary
	for _, partID := range order {
		pa := PartAllocation{
			PartID:    partID,
			Required:  required[partID],
			Allocated: allocated[partID],
			State:     AllocationExact,
		}
		switch {
		case pa.Allocated < pa.Required:
			pa.State = AllocationUnder
			summary.UnderCount++
		case pa.Allocated > pa.Required:
			pa.State = AllocationOver
			summary.OverCount++
		}
		summary.Parts = append(summary.Parts, pa)
	}
	// 批次里出现但净需求没有的零件，分配量全部算超配
	for _, partID := range extras {
		if allocated[partID] == 0 {
			continue
		}
		summary.Parts = append(summary.Parts, PartAllocation{
			PartID:    partID,
			Required:  0,
			Allocated: allocated[partID],
			State:     AllocationOver,
		})
		summary.OverCount++
	}
	return out, summary
}

// Redistribute 把total均匀拆成n份，余数摊给最前面的份。
// 所有份之和恒等于total。
func Redistribute(total, n int) []int {
	if n <= 0 {
		return nil
	}
	per := total / n
	rem := total % n
	out := make([]int, n)
	for i := range out {
		out[i] = per
		if i < rem {
			out[i]++
		}
	}
	return out
}

// ResplitBatches 批次增删后的整体重分：每个零件的净需求对新的批次数做
// 均匀拆分（余数给最早的批次），完全覆盖原有分配。
func ResplitBatches(req SupplierRequirement, batches []POBatch) []POBatch {
	n := len(batches)
	if n == 0 {
		return nil
	}
	out := make([]POBatch, n)
	for i, b := range batches {
		out[i] = POBatch{SupplierID: b.SupplierID, OrderDate: CivilDate(b.OrderDate)}
	}
	for _, p := range req.Parts {
		split := Redistribute(p.NetQuantityNeeded, n)
		for i, qty := range split {
			out[i].Lines = append(out[i].Lines, newBatchLine(p, qty))
		}
	}
	for i := range out {
		recomputeTotals(&out[i])
	}
	return out
}

// CheckAllocation 提交前的闸门：分配不完整时返回AllocationMismatchError
func CheckAllocation(summary AllocationSummary) error {
	var mismatches []PartAllocation
	for _, pa := range summary.Parts {
		if pa.State != AllocationExact {
			mismatches = append(mismatches, pa)
		}
	}
	if len(mismatches) > 0 {
		return &AllocationMismatchError{Mismatches: mismatches}
	}
	return nil
}

func newBatchLine(p SupplierPartPlan, qty int) BatchLine {
	return BatchLine{
		PartID:     p.PartID,
		PartNumber: p.PartNumber,
		PartName:   p.PartName,
		Quantity:   qty,
		UnitCost:   p.UnitPrice,
		TotalCost:  p.UnitPrice.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func recomputeTotals(b *POBatch) {
	b.TotalCost = decimal.Zero
	for _, l := range b.Lines {
		b.TotalCost = b.TotalCost.Add(l.TotalCost)
	}
}
