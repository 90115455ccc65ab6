package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound = errors.New("record not found")
)

// lockForUpdate 行级锁，库存调整等读改写路径使用
func lockForUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// Repositories ERP仓库集合
type Repositories struct {
	Part      *PartRepository
	Supplier  *SupplierRepository
	Boat      *BoatRepository
	PO        *PORepository
	Inventory *InventoryRepository
}

// NewRepositories 创建ERP仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Part:      NewPartRepository(db),
		Supplier:  NewSupplierRepository(db),
		Boat:      NewBoatRepository(db),
		PO:        NewPORepository(db),
		Inventory: NewInventoryRepository(db),
	}
}
