package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfantasy/boatyard/internal/erp/entity"
	"gorm.io/gorm"
)

// SupplierRepository 供应商仓库
type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// FindAll 查询供应商列表
func (r *SupplierRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Supplier, int64, error) {
	var items []entity.Supplier
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Supplier{}).Where("deleted_at IS NULL")

	if search := filters["search"]; search != "" {
		query = query.Where("name ILIKE ? OR supplier_code ILIKE ?",
			"%"+search+"%", "%"+search+"%")
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("name ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找供应商
func (r *SupplierRepository) FindByID(ctx context.Context, id string) (*entity.Supplier, error) {
	var supplier entity.Supplier
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&supplier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &supplier, nil
}

// Create 创建供应商
func (r *SupplierRepository) Create(ctx context.Context, supplier *entity.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

// Update 更新供应商
func (r *SupplierRepository) Update(ctx context.Context, supplier *entity.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

// Delete 软删除供应商
func (r *SupplierRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Supplier{}).
		Where("id = ?", id).
		Update("deleted_at", gorm.Expr("NOW()")).Error
}

// GenerateCode 生成供应商编码 SUP-{4位}
func (r *SupplierRepository) GenerateCode(ctx context.Context) (string, error) {
	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.Supplier{}).
		Select("COALESCE(MAX(supplier_code), 'SUP-0000')").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	fmt.Sscanf(maxCode, "SUP-%04d", &seq)
	seq++
	return fmt.Sprintf("SUP-%04d", seq), nil
}

// FindSupplierParts 查询供应商的供货关系
func (r *SupplierRepository) FindSupplierParts(ctx context.Context, supplierID string) ([]entity.SupplierPart, error) {
	var links []entity.SupplierPart
	err := r.db.WithContext(ctx).
		Preload("Part").
		Where("supplier_id = ? AND deleted_at IS NULL", supplierID).
		Find(&links).Error
	return links, err
}

// FindLinksByPartIDs 按零件批量查询供货关系（需求计算用）。
// 固定按 supplier_id 排序，保证上游匹配结果可复现
func (r *SupplierRepository) FindLinksByPartIDs(ctx context.Context, partIDs []string) ([]entity.SupplierPart, error) {
	if len(partIDs) == 0 {
		return nil, nil
	}
	var links []entity.SupplierPart
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Where("part_id IN ? AND deleted_at IS NULL", partIDs).
		Order("supplier_id ASC").
		Find(&links).Error
	return links, err
}

// FindLinkByID 查找单条供货关系
func (r *SupplierRepository) FindLinkByID(ctx context.Context, id string) (*entity.SupplierPart, error) {
	var link entity.SupplierPart
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Part").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// CreateLink 创建供货关系
func (r *SupplierRepository) CreateLink(ctx context.Context, link *entity.SupplierPart) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// UpdateLink 更新供货关系
func (r *SupplierRepository) UpdateLink(ctx context.Context, link *entity.SupplierPart) error {
	return r.db.WithContext(ctx).Save(link).Error
}

// DeleteLink 软删除供货关系
func (r *SupplierRepository) DeleteLink(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.SupplierPart{}).
		Where("id = ?", id).
		Update("deleted_at", gorm.Expr("NOW()")).Error
}

// ClearPreferred 清除某零件的其他首选标记（同一零件只能有一个首选供应商）
func (r *SupplierRepository) ClearPreferred(ctx context.Context, partID, exceptLinkID string) error {
	return r.db.WithContext(ctx).
		Model(&entity.SupplierPart{}).
		Where("part_id = ? AND id <> ? AND deleted_at IS NULL", partID, exceptLinkID).
		Update("is_preferred", false).Error
}
