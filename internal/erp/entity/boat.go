package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MBOMLine 制造BOM行（零件 + 单船用量）
type MBOMLine struct {
	PartID           string `json:"part_id"`
	PartName         string `json:"part_name"`
	QuantityRequired int    `json:"quantity_required"`
}

// MBOM 制造BOM，以JSONB列存储在船型上
type MBOM struct {
	Parts []MBOMLine `json:"parts"`
}

func (m MBOM) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *MBOM) Scan(value interface{}) error {
	if value == nil {
		*m = MBOM{}
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("unsupported MBOM column type %T", value)
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, m)
}

// Validate 校验BOM行的完整性，入库前调用
func (m MBOM) Validate() error {
	for i, line := range m.Parts {
		if line.PartID == "" {
			return fmt.Errorf("mbom line %d: part_id is required", i)
		}
		if line.QuantityRequired <= 0 {
			return fmt.Errorf("mbom line %d (%s): quantity_required must be positive, got %d",
				i, line.PartID, line.QuantityRequired)
		}
	}
	return nil
}

// BoatType 船型（携带制造BOM和默认生产周期）
type BoatType struct {
	ID                       string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name                     string     `json:"name" gorm:"size:200;not null"`
	Model                    string     `json:"model" gorm:"size:100;not null"`
	Description              string     `json:"description" gorm:"type:text"`
	DefaultManufacturingDays int        `json:"default_manufacturing_time_days" gorm:"not null;default:30"`
	MBOM                     MBOM       `json:"mbom" gorm:"type:jsonb"`
	IsActive                 bool       `json:"is_active" gorm:"not null;default:true"`
	Notes                    string     `json:"notes" gorm:"type:text"`
	CreatedBy                string     `json:"created_by" gorm:"size:64"`
	UpdatedBy                string     `json:"updated_by" gorm:"size:64"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
	DeletedAt                *time.Time `json:"deleted_at" gorm:"index"`
}

func (BoatType) TableName() string {
	return "erp_boat_types"
}

// BoatStatus 船只生产状态
const (
	BoatStatusScheduled  = "SCHEDULED"
	BoatStatusInProgress = "IN_PROGRESS"
	BoatStatusCompleted  = "COMPLETED"
)

// Boat 排产船只（生产计划中的一条排期）
type Boat struct {
	ID                    string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	BoatTypeID            string     `json:"boat_type_id" gorm:"type:uuid;not null;index"`
	Name                  string     `json:"name" gorm:"size:200;not null"`
	DueDate               time.Time  `json:"due_date" gorm:"not null;index"`
	ManufacturingTimeDays int        `json:"manufacturing_time_days" gorm:"not null;default:0"` // 0 = 用船型默认值
	Status                string     `json:"status" gorm:"size:20;not null;default:SCHEDULED"`
	Notes                 string     `json:"notes" gorm:"type:text"`
	CreatedBy             string     `json:"created_by" gorm:"size:64"`
	UpdatedBy             string     `json:"updated_by" gorm:"size:64"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	DeletedAt             *time.Time `json:"deleted_at" gorm:"index"`

	BoatType *BoatType `json:"boat_type,omitempty" gorm:"foreignKey:BoatTypeID"`
}

func (Boat) TableName() string {
	return "erp_boats"
}
