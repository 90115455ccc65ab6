package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bitfantasy/boatyard/internal/erp/entity"
	"gorm.io/gorm"
)

// BoatRepository 船型与排产船只仓库
type BoatRepository struct {
	db *gorm.DB
}

func NewBoatRepository(db *gorm.DB) *BoatRepository {
	return &BoatRepository{db: db}
}

// FindAllTypes 查询船型列表
func (r *BoatRepository) FindAllTypes(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.BoatType, int64, error) {
	var items []entity.BoatType
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.BoatType{}).Where("deleted_at IS NULL")

	if search := filters["search"]; search != "" {
		query = query.Where("name ILIKE ? OR model ILIKE ?",
			"%"+search+"%", "%"+search+"%")
	}
	if filters["is_active"] == "true" {
		query = query.Where("is_active = true")
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

// FindTypeByID 根据ID查找船型
func (r *BoatRepository) FindTypeByID(ctx context.Context, id string) (*entity.BoatType, error) {
	var bt entity.BoatType
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&bt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &bt, nil
}

// CreateType 创建船型
func (r *BoatRepository) CreateType(ctx context.Context, bt *entity.BoatType) error {
	return r.db.WithContext(ctx).Create(bt).Error
}

// UpdateType 更新船型
func (r *BoatRepository) UpdateType(ctx context.Context, bt *entity.BoatType) error {
	return r.db.WithContext(ctx).Save(bt).Error
}

// DeleteType 软删除船型（有在产船只时由服务层拦截）
func (r *BoatRepository) DeleteType(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.BoatType{}).
		Where("id = ?", id).
		Update("deleted_at", gorm.Expr("NOW()")).Error
}

// CountBoatsByType 统计某船型下未删除的船只数
func (r *BoatRepository) CountBoatsByType(ctx context.Context, boatTypeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Boat{}).
		Where("boat_type_id = ? AND deleted_at IS NULL", boatTypeID).
		Count(&count).Error
	return count, err
}

// FindAllBoats 查询排产船只列表
func (r *BoatRepository) FindAllBoats(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Boat, int64, error) {
	var items []entity.Boat
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Boat{}).Where("deleted_at IS NULL")

	if boatTypeID := filters["boat_type_id"]; boatTypeID != "" {
		query = query.Where("boat_type_id = ?", boatTypeID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("BoatType").
		Order("due_date ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindBoatByID 根据ID查找船只
func (r *BoatRepository) FindBoatByID(ctx context.Context, id string) (*entity.Boat, error) {
	var boat entity.Boat
	err := r.db.WithContext(ctx).
		Preload("BoatType").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&boat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &boat, nil
}

// FindBoatsForPlanning 查询参与需求计算的船只（未完成，带船型）
func (r *BoatRepository) FindBoatsForPlanning(ctx context.Context, start, end *time.Time) ([]entity.Boat, error) {
	query := r.db.WithContext(ctx).
		Preload("BoatType").
		Where("status IN ? AND deleted_at IS NULL",
			[]string{entity.BoatStatusScheduled, entity.BoatStatusInProgress})

	if start != nil {
		query = query.Where("due_date >= ?", *start)
	}
	if end != nil {
		query = query.Where("due_date <= ?", *end)
	}

	var boats []entity.Boat
	err := query.Order("due_date ASC").Find(&boats).Error
	return boats, err
}

// CreateBoat 创建船只
func (r *BoatRepository) CreateBoat(ctx context.Context, boat *entity.Boat) error {
	return r.db.WithContext(ctx).Create(boat).Error
}

// UpdateBoat 更新船只
func (r *BoatRepository) UpdateBoat(ctx context.Context, boat *entity.Boat) error {
	return r.db.WithContext(ctx).Save(boat).Error
}

// DeleteBoat 软删除船只
func (r *BoatRepository) DeleteBoat(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Boat{}).
		Where("id = ?", id).
		Update("deleted_at", gorm.Expr("NOW()")).Error
}
