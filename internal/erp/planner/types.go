package planner

import (
	"time"

	"github.com/shopspring/decimal"
)

// planner 是需求计算与PO排程的纯计算核心：不做IO，不碰数据库，
// 输入输出都是调用方准备好的平结构。所有数量为整数，金额用decimal。

// BoatStatus 参与需求计算的船只状态
const (
	BoatScheduled  = "SCHEDULED"
	BoatInProgress = "IN_PROGRESS"
	BoatCompleted  = "COMPLETED"
)

// MBOMLine 制造BOM行
type MBOMLine struct {
	PartID           string
	PartName         string
	QuantityRequired int
}

// ProductionBoat 排产船只（已携带船型MBOM和生产周期）
type ProductionBoat struct {
	ID                    string
	Name                  string
	BoatTypeID            string
	DueDate               time.Time
	ManufacturingTimeDays int
	Status                string
	MBOM                  []MBOMLine
}

// DateWindow 交付日期过滤窗口，nil边界表示不限
type DateWindow struct {
	Start *time.Time
	End   *time.Time
}

// Contains 判断日期是否落在窗口内（闭区间）
func (w DateWindow) Contains(d time.Time) bool {
	day := CivilDate(d)
	if w.Start != nil && day.Before(CivilDate(*w.Start)) {
		return false
	}
	if w.End != nil && day.After(CivilDate(*w.End)) {
		return false
	}
	return true
}

// DemandEvent 单条需求事件：一条船的一行MBOM在某个need-by日期产生的毛需求
type DemandEvent struct {
	PartID     string
	PartName   string
	Quantity   int
	NeedByDate time.Time
	BoatID     string
	BoatName   string
	DueDate    time.Time
}

// PartInfo 零件主数据快照（库存、价格、编号）
type PartInfo struct {
	PartNumber   string
	Name         string
	CurrentStock int
	UnitCost     decimal.Decimal
}

// NetRequirement 净需求事件：累计消耗后某个日期仍需采购的数量
type NetRequirement struct {
	PartID      string
	PartName    string
	NeedByDate  time.Time
	Quantity    int // 当日毛需求
	NetQuantity int // 扣减剩余库存并加安全库存后的采购量
	StockBefore int // 该事件之前的剩余库存
	BoatIDs     []string
}

// BoatNeed 零件需求的船只明细
type BoatNeed struct {
	BoatID     string
	BoatName   string
	Quantity   int
	NeedByDate time.Time
	DueDate    time.Time
}

// PartRequirement 零件级需求汇总
type PartRequirement struct {
	PartID              string
	PartName            string
	PartNumber          string
	TotalQuantityNeeded int // 毛需求合计
	NetQuantityNeeded   int // 各事件净需求之和
	CurrentStock        int // 计算起点库存
	UnitCost            decimal.Decimal
	TotalCost           decimal.Decimal
	EarliestNeedDate    time.Time
	LatestNeedDate      time.Time
	BoatsNeeding        []BoatNeed
	NetEvents           []NetRequirement
}

// SupplierLink 供应商-零件供货关系（含供应商联系信息快照）
type SupplierLink struct {
	SupplierID         string
	SupplierName       string
	ContactName        string
	Email              string
	Phone              string
	PartID             string
	LeadTimeDays       int
	MinimumOrderQty    int
	BatchSize          int
	PricePerUnit       decimal.Decimal
	IsPreferred        bool
	MaxMonthlyCapacity *int
}

// PlannedOrder 按交期倒推出的一条下单计划
type PlannedOrder struct {
	OrderDate      time.Time
	Quantity       int
	UnitPrice      decimal.Decimal
	LineTotal      decimal.Decimal
	RequiredByDate time.Time
	BoatIDs        []string
}

// SupplierPartPlan 某零件匹配到供应商后的下单方案
type SupplierPartPlan struct {
	PartRequirement
	LeadTimeDays       int
	BatchSize          int
	MinimumOrderQty    int
	MaxMonthlyCapacity *int
	IsPreferred        bool
	UnitPrice          decimal.Decimal
	Orders             []PlannedOrder
	CapacitySplit      bool // 触发月产能拆单，下单日期覆盖区间为近似值
}

// SupplierRequirement 供应商级需求汇总
type SupplierRequirement struct {
	SupplierID   string
	SupplierName string
	ContactName  string
	Email        string
	Phone        string
	TotalParts   int
	TotalCost    decimal.Decimal
	Parts        []SupplierPartPlan
}

// UnmatchedPart 找不到供应商的零件，计算照常完成，单独上报
type UnmatchedPart struct {
	PartID      string
	PartName    string
	NetQuantity int
}

// RequirementsAnalysis 一次需求计算的完整结果
type RequirementsAnalysis struct {
	CalculatedAt         time.Time
	TotalBoats           int
	TotalParts           int
	TotalSuppliers       int
	TotalCost            decimal.Decimal
	PlanningHorizonStart time.Time
	PlanningHorizonEnd   time.Time
	Parts                []PartRequirement
	Suppliers            []SupplierRequirement
	UnmatchedParts       []UnmatchedPart
}
