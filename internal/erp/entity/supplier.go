package entity

import (
	"time"
)

// SupplierStatus 供应商状态
const (
	SupplierStatusActive   = "ACTIVE"
	SupplierStatusInactive = "INACTIVE"
)

// Supplier 供应商实体
type Supplier struct {
	ID           string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SupplierCode string     `json:"supplier_code" gorm:"size:50;not null;uniqueIndex"`
	Name         string     `json:"name" gorm:"size:200;not null"`
	ContactName  string     `json:"contact_name" gorm:"size:100"`
	Email        string     `json:"email" gorm:"size:100"`
	Phone        string     `json:"phone" gorm:"size:20"`
	Address      string     `json:"address" gorm:"size:500"`
	PaymentTerms string     `json:"payment_terms" gorm:"size:100"`
	Rating       int        `json:"rating" gorm:"default:0"` // 0-5
	Status       string     `json:"status" gorm:"size:20;not null;default:ACTIVE"`
	Notes        string     `json:"notes" gorm:"type:text"`
	CreatedBy    string     `json:"created_by" gorm:"size:64"`
	UpdatedBy    string     `json:"updated_by" gorm:"size:64"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" gorm:"index"`
}

func (Supplier) TableName() string {
	return "erp_suppliers"
}

// SupplierPart 供应商-零件供货关系（含交期、批量、产能约束）
type SupplierPart struct {
	ID                 string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SupplierID         string     `json:"supplier_id" gorm:"type:uuid;not null;index:idx_supplier_part,unique"`
	PartID             string     `json:"part_id" gorm:"type:uuid;not null;index:idx_supplier_part,unique"`
	LeadTimeDays       int        `json:"lead_time_days" gorm:"not null;default:0"`
	MinimumOrderQty    int        `json:"minimum_order_quantity" gorm:"not null;default:1"`
	BatchSize          int        `json:"batch_size" gorm:"not null;default:1"`
	PricePerUnit       float64    `json:"price_per_unit" gorm:"type:decimal(12,2);not null"`
	IsPreferred        bool       `json:"is_preferred" gorm:"not null;default:false"`
	MaxMonthlyCapacity *int       `json:"max_monthly_capacity"` // null = 不限
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	DeletedAt          *time.Time `json:"deleted_at" gorm:"index"`

	Supplier *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Part     *Part     `json:"part,omitempty" gorm:"foreignKey:PartID"`
}

func (SupplierPart) TableName() string {
	return "erp_supplier_parts"
}
