package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移所有ERP表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 基础数据
		&Part{},
		&Supplier{},
		&SupplierPart{},

		// 生产
		&BoatType{},
		&Boat{},

		// 库存
		&InventoryTransaction{},

		// 采购
		&PurchaseOrder{},
		&POLine{},

		// 需求计算
		&GenerationRun{},
	)
}
