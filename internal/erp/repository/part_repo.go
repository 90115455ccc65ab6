package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/boatyard/internal/erp/entity"
	"gorm.io/gorm"
)

// PartRepository 零件仓库
type PartRepository struct {
	db *gorm.DB
}

func NewPartRepository(db *gorm.DB) *PartRepository {
	return &PartRepository{db: db}
}

// FindAll 查询零件列表
func (r *PartRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Part, int64, error) {
	var items []entity.Part
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Part{}).Where("deleted_at IS NULL")

	if search := filters["search"]; search != "" {
		query = query.Where("part_number ILIKE ? OR name ILIKE ?",
			"%"+search+"%", "%"+search+"%")
	}
	if category := filters["category"]; category != "" {
		query = query.Where("category = ?", category)
	}
	if filters["below_reorder"] == "true" {
		query = query.Where("current_stock < reorder_point")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("part_number ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找零件
func (r *PartRepository) FindByID(ctx context.Context, id string) (*entity.Part, error) {
	var part entity.Part
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&part).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &part, nil
}

// FindByIDs 批量查找零件（需求计算用）
func (r *PartRepository) FindByIDs(ctx context.Context, ids []string) ([]entity.Part, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var parts []entity.Part
	err := r.db.WithContext(ctx).
		Where("id IN ? AND deleted_at IS NULL", ids).
		Find(&parts).Error
	return parts, err
}

// FindByPartNumber 根据零件号查找
func (r *PartRepository) FindByPartNumber(ctx context.Context, partNumber string) (*entity.Part, error) {
	var part entity.Part
	err := r.db.WithContext(ctx).
		Where("part_number = ? AND deleted_at IS NULL", partNumber).
		First(&part).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &part, nil
}

// Create 创建零件
func (r *PartRepository) Create(ctx context.Context, part *entity.Part) error {
	return r.db.WithContext(ctx).Create(part).Error
}

// Update 更新零件
func (r *PartRepository) Update(ctx context.Context, part *entity.Part) error {
	return r.db.WithContext(ctx).Save(part).Error
}

// Delete 软删除零件
func (r *PartRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Part{}).
		Where("id = ?", id).
		Update("deleted_at", gorm.Expr("NOW()")).Error
}

// AdjustStock 原子调整库存并写交易流水
func (r *PartRepository) AdjustStock(ctx context.Context, partID string, delta int, tx *entity.InventoryTransaction) (*entity.Part, error) {
	var part entity.Part
	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.
			Clauses(lockForUpdate()).
			Where("id = ? AND deleted_at IS NULL", partID).
			First(&part).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		part.CurrentStock += delta
		if err := db.Save(&part).Error; err != nil {
			return err
		}

		tx.PartID = part.ID
		tx.PartNumber = part.PartNumber
		tx.Quantity = delta
		tx.StockAfter = part.CurrentStock
		return db.Create(tx).Error
	})
	if err != nil {
		return nil, err
	}
	return &part, nil
}

// FindBelowReorderPoint 查询低于补货点的零件
func (r *PartRepository) FindBelowReorderPoint(ctx context.Context) ([]entity.Part, error) {
	var parts []entity.Part
	err := r.db.WithContext(ctx).
		Where("current_stock < reorder_point AND deleted_at IS NULL").
		Order("part_number ASC").
		Find(&parts).Error
	return parts, err
}

// InventoryRepository 库存交易仓库
type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// FindByPart 查询零件的交易流水
func (r *InventoryRepository) FindByPart(ctx context.Context, partID string, page, pageSize int) ([]entity.InventoryTransaction, int64, error) {
	var items []entity.InventoryTransaction
	var total int64

	query := r.db.WithContext(ctx).
		Model(&entity.InventoryTransaction{}).
		Where("part_id = ?", partID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// Create 写入交易流水
func (r *InventoryRepository) Create(ctx context.Context, tx *entity.InventoryTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}
