package entity

import (
	"time"
)

// PurchaseOrderStatus 采购订单状态
const (
	POStatusDraft     = "DRAFT"
	POStatusPending   = "PENDING"
	POStatusApproved  = "APPROVED"
	POStatusOrdered   = "ORDERED"
	POStatusReceived  = "RECEIVED"
	POStatusCancelled = "CANCELLED"
)

// PurchaseOrder 采购订单
type PurchaseOrder struct {
	ID                string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PONumber          string     `json:"po_number" gorm:"size:50;not null;uniqueIndex"`
	SupplierID        string     `json:"supplier_id" gorm:"type:uuid;not null;index"`
	OrderDate         time.Time  `json:"order_date" gorm:"not null"`
	RequiredByDate    time.Time  `json:"required_by_date" gorm:"not null"`
	Status            string     `json:"status" gorm:"size:20;not null;default:DRAFT"`
	TotalAmount       float64    `json:"total_amount" gorm:"type:decimal(12,2);default:0"`
	Currency          string     `json:"currency" gorm:"size:10;not null;default:USD"`
	Notes             string     `json:"notes" gorm:"type:text"`
	GeneratedBySystem bool       `json:"generated_by_system" gorm:"not null;default:false"`
	GenerationRunID   *string    `json:"generation_run_id" gorm:"type:uuid;index"`
	CreatedBy         string     `json:"created_by" gorm:"size:64"`
	ApprovedBy        string     `json:"approved_by" gorm:"size:64"`
	ApprovedAt        *time.Time `json:"approved_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	DeletedAt         *time.Time `json:"deleted_at" gorm:"index"`

	Supplier *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Lines    []POLine  `json:"lines,omitempty" gorm:"foreignKey:POID"`
}

func (PurchaseOrder) TableName() string {
	return "erp_purchase_orders"
}

// POLine 采购订单行
type POLine struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	POID          string    `json:"po_id" gorm:"type:uuid;not null;index"`
	PartID        string    `json:"part_id" gorm:"type:uuid;not null;index"`
	PartNumber    string    `json:"part_number" gorm:"size:64"`
	PartName      string    `json:"part_name" gorm:"size:200"`
	Quantity      int       `json:"quantity" gorm:"not null"`
	UnitPrice     float64   `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	LineTotal     float64   `json:"line_total" gorm:"type:decimal(12,2);not null"`
	LinkedBoatIDs string    `json:"linked_boat_ids" gorm:"type:text"` // 逗号分隔的船只ID
	Notes         string    `json:"notes" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at"`
}

func (POLine) TableName() string {
	return "erp_purchase_order_lines"
}

// GenerationRunStatus 需求计算运行状态
const (
	GenRunStatusRunning   = "RUNNING"
	GenRunStatusCompleted = "COMPLETED"
	GenRunStatusFailed    = "FAILED"
)

// GenerationRun 需求计算/PO生成运行记录
type GenerationRun struct {
	ID                string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	RunCode           string     `json:"run_code" gorm:"size:50;not null;uniqueIndex"`
	Status            string     `json:"status" gorm:"size:20;not null;default:RUNNING"`
	SafetyStockPct    int        `json:"safety_stock_percentage" gorm:"not null;default:0"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	BatchOptimization bool       `json:"prefer_batch_optimization" gorm:"not null;default:true"`
	TotalBoats        int        `json:"total_boats" gorm:"default:0"`
	TotalParts        int        `json:"total_parts" gorm:"default:0"`
	TotalSuppliers    int        `json:"total_suppliers" gorm:"default:0"`
	TotalPOsGenerated int        `json:"total_pos_generated" gorm:"default:0"`
	TotalAmount       float64    `json:"total_amount" gorm:"type:decimal(14,2);default:0"`
	ErrorMessage      string     `json:"error_message" gorm:"type:text"`
	ExecutionTimeMs   int64      `json:"execution_time_ms" gorm:"default:0"`
	CreatedBy         string     `json:"created_by" gorm:"size:64"`
	StartedAt         time.Time  `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (GenerationRun) TableName() string {
	return "erp_generation_runs"
}
