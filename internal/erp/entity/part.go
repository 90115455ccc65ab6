package entity

import (
	"time"
)

// PartCategory 零件类别
const (
	PartCategoryHull       = "HULL"       // 船体
	PartCategoryEngine     = "ENGINE"     // 动力
	PartCategoryElectrical = "ELECTRICAL" // 电气
	PartCategoryRigging    = "RIGGING"    // 索具
	PartCategoryInterior   = "INTERIOR"   // 内饰
	PartCategoryOther      = "OTHER"      // 其他
)

// Part 零件实体（库存主数据）
type Part struct {
	ID            string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PartNumber    string     `json:"part_number" gorm:"size:64;not null;uniqueIndex"`
	Name          string     `json:"name" gorm:"size:200;not null"`
	Description   string     `json:"description" gorm:"type:text"`
	Category      string     `json:"category" gorm:"size:20;default:OTHER"`
	CurrentStock  int        `json:"current_stock" gorm:"not null;default:0"`
	UnitOfMeasure string     `json:"unit_of_measure" gorm:"size:20;not null;default:pcs"`
	UnitCost      float64    `json:"unit_cost" gorm:"type:decimal(12,2);default:0"`
	ReorderPoint  int        `json:"reorder_point" gorm:"not null;default:0"`
	CreatedBy     string     `json:"created_by" gorm:"size:64"`
	UpdatedBy     string     `json:"updated_by" gorm:"size:64"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at" gorm:"index"`
}

func (Part) TableName() string {
	return "erp_parts"
}

// InventoryTransactionType 库存交易类型
const (
	TxTypePurchaseIn = "PURCHASE_IN" // 采购入库
	TxTypeProduceOut = "PRODUCE_OUT" // 生产领料
	TxTypeAdjust     = "ADJUST"      // 手工调整
)

// InventoryTransaction 库存交易记录
type InventoryTransaction struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PartID          string    `json:"part_id" gorm:"type:uuid;not null;index"`
	PartNumber      string    `json:"part_number" gorm:"size:64"`
	TransactionType string    `json:"transaction_type" gorm:"size:20;not null"`
	Quantity        int       `json:"quantity" gorm:"not null"` // 正数入库，负数出库
	StockAfter      int       `json:"stock_after" gorm:"not null"`
	ReferenceType   string    `json:"reference_type" gorm:"size:20"` // PO, BOAT, MANUAL
	ReferenceID     string    `json:"reference_id" gorm:"size:64"`
	Notes           string    `json:"notes" gorm:"type:text"`
	CreatedBy       string    `json:"created_by" gorm:"size:64"`
	CreatedAt       time.Time `json:"created_at"`
}

func (InventoryTransaction) TableName() string {
	return "erp_inventory_transactions"
}
