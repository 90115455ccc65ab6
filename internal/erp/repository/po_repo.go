package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/boatyard/internal/erp/entity"
	"gorm.io/gorm"
)

// PORepository 采购订单与需求计算运行仓库
type PORepository struct {
	db *gorm.DB
}

func NewPORepository(db *gorm.DB) *PORepository {
	return &PORepository{db: db}
}

// FindAll 查询采购订单列表
func (r *PORepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	var items []entity.PurchaseOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PurchaseOrder{}).Where("deleted_at IS NULL")

	if supplierID := filters["supplier_id"]; supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if runID := filters["generation_run_id"]; runID != "" {
		query = query.Where("generation_run_id = ?", runID)
	}
	if filters["generated"] == "true" {
		query = query.Where("generated_by_system = true")
	}
	if search := filters["search"]; search != "" {
		query = query.Where("po_number ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Supplier").
		Preload("Lines").
		Order("order_date ASC, po_number ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找采购订单（含行项）
func (r *PORepository) FindByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Lines").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

// Create 创建采购订单（级联写入行项）
func (r *PORepository) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

// CreateBatch 事务内批量创建采购订单
func (r *PORepository) CreateBatch(ctx context.Context, pos []entity.PurchaseOrder) error {
	if len(pos) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range pos {
			if err := tx.Create(&pos[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Update 更新采购订单
func (r *PORepository) Update(ctx context.Context, po *entity.PurchaseOrder) error {
	return r.db.WithContext(ctx).Save(po).Error
}

// Delete 删除采购订单及行项
func (r *PORepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("po_id = ?", id).Delete(&entity.POLine{}).Error; err != nil {
			return err
		}
		return tx.Model(&entity.PurchaseOrder{}).
			Where("id = ?", id).
			Update("deleted_at", gorm.Expr("NOW()")).Error
	})
}

// UpdateStatus 更新订单状态
func (r *PORepository) UpdateStatus(ctx context.Context, id, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.WithContext(ctx).
		Model(&entity.PurchaseOrder{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// GenerateCode 生成单个PO编码 PO-{year}-{4位}
func (r *PORepository) GenerateCode(ctx context.Context) (string, error) {
	codes, err := r.GenerateCodes(ctx, 1)
	if err != nil {
		return "", err
	}
	return codes[0], nil
}

// GenerateCodes 一次预留n个连续PO编码。批量落单在入库前统一取号，
// 同一批次内的编码互不重复
func (r *PORepository) GenerateCodes(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, fmt.Errorf("编码数量必须为正: %d", n)
	}
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("PO-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.PurchaseOrder{}).
		Select("COALESCE(MAX(po_number), '')").
		Where("po_number LIKE ?", prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return nil, err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "PO-"+year+"-%04d", &seq)
	}
	codes := make([]string, n)
	for i := range codes {
		seq++
		codes[i] = fmt.Sprintf("PO-%s-%04d", year, seq)
	}
	return codes, nil
}

// CreateRun 创建需求计算运行记录
func (r *PORepository) CreateRun(ctx context.Context, run *entity.GenerationRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// UpdateRun 更新运行记录
func (r *PORepository) UpdateRun(ctx context.Context, run *entity.GenerationRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// FindRunByID 根据ID查找运行记录
func (r *PORepository) FindRunByID(ctx context.Context, id string) (*entity.GenerationRun, error) {
	var run entity.GenerationRun
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindLatestRun 查找最近一次完成的运行记录
func (r *PORepository) FindLatestRun(ctx context.Context) (*entity.GenerationRun, error) {
	var run entity.GenerationRun
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.GenRunStatusCompleted).
		Order("started_at DESC").
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindRuns 查询运行历史
func (r *PORepository) FindRuns(ctx context.Context, page, pageSize int) ([]entity.GenerationRun, int64, error) {
	var items []entity.GenerationRun
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.GenerationRun{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("started_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// GenerateRunCode 生成运行编码 RUN-{yyyymmdd}-{3位}
func (r *PORepository) GenerateRunCode(ctx context.Context) (string, error) {
	day := time.Now().Format("20060102")
	prefix := fmt.Sprintf("RUN-%s-", day)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.GenerationRun{}).
		Select("COALESCE(MAX(run_code), '')").
		Where("run_code LIKE ?", prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "RUN-"+day+"-%03d", &seq)
	}
	seq++
	return fmt.Sprintf("RUN-%s-%03d", day, seq), nil
}
