package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/boatyard/internal/erp/entity"
	"github.com/bitfantasy/boatyard/internal/erp/repository"
	"github.com/google/uuid"
)

// PartService 零件服务
type PartService struct {
	repo    *repository.PartRepository
	invRepo *repository.InventoryRepository
}

func NewPartService(repo *repository.PartRepository, invRepo *repository.InventoryRepository) *PartService {
	return &PartService{repo: repo, invRepo: invRepo}
}

// CreatePartRequest 创建零件请求
type CreatePartRequest struct {
	PartNumber    string  `json:"part_number" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	CurrentStock  int     `json:"current_stock"`
	UnitOfMeasure string  `json:"unit_of_measure"`
	UnitCost      float64 `json:"unit_cost"`
	ReorderPoint  int     `json:"reorder_point"`
}

// UpdatePartRequest 更新零件请求
type UpdatePartRequest struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category"`
	UnitOfMeasure *string  `json:"unit_of_measure"`
	UnitCost      *float64 `json:"unit_cost"`
	ReorderPoint  *int     `json:"reorder_point"`
}

// List 获取零件列表
func (s *PartService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Part, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

// Get 获取零件详情
func (s *PartService) Get(ctx context.Context, id string) (*entity.Part, error) {
	return s.repo.FindByID(ctx, id)
}

// Create 创建零件
func (s *PartService) Create(ctx context.Context, userID string, req *CreatePartRequest) (*entity.Part, error) {
	if req.CurrentStock < 0 {
		return nil, fmt.Errorf("current_stock must not be negative")
	}
	if _, err := s.repo.FindByPartNumber(ctx, req.PartNumber); err == nil {
		return nil, fmt.Errorf("part number %s already exists", req.PartNumber)
	}

	part := &entity.Part{
		ID:            uuid.New().String(),
		PartNumber:    req.PartNumber,
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		CurrentStock:  req.CurrentStock,
		UnitOfMeasure: req.UnitOfMeasure,
		UnitCost:      req.UnitCost,
		ReorderPoint:  req.ReorderPoint,
		CreatedBy:     userID,
	}
	if part.Category == "" {
		part.Category = entity.PartCategoryOther
	}
	if part.UnitOfMeasure == "" {
		part.UnitOfMeasure = "pcs"
	}

	if err := s.repo.Create(ctx, part); err != nil {
		return nil, err
	}

	// 初始库存作为一笔手工调整入账
	if part.CurrentStock > 0 {
		tx := &entity.InventoryTransaction{
			ID:              uuid.New().String(),
			PartID:          part.ID,
			PartNumber:      part.PartNumber,
			TransactionType: entity.TxTypeAdjust,
			Quantity:        part.CurrentStock,
			StockAfter:      part.CurrentStock,
			ReferenceType:   "MANUAL",
			Notes:           "initial stock",
			CreatedBy:       userID,
		}
		if err := s.invRepo.Create(ctx, tx); err != nil {
			return nil, fmt.Errorf("记录初始库存失败: %w", err)
		}
	}

	return part, nil
}

// Update 更新零件（库存只能走AdjustStock）
func (s *PartService) Update(ctx context.Context, id, userID string, req *UpdatePartRequest) (*entity.Part, error) {
	part, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		part.Name = *req.Name
	}
	if req.Description != nil {
		part.Description = *req.Description
	}
	if req.Category != nil {
		part.Category = *req.Category
	}
	if req.UnitOfMeasure != nil {
		part.UnitOfMeasure = *req.UnitOfMeasure
	}
	if req.UnitCost != nil {
		part.UnitCost = *req.UnitCost
	}
	if req.ReorderPoint != nil {
		part.ReorderPoint = *req.ReorderPoint
	}
	part.UpdatedBy = userID

	if err := s.repo.Update(ctx, part); err != nil {
		return nil, err
	}
	return part, nil
}

// Delete 删除零件
func (s *PartService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// AdjustStockRequest 库存调整请求
type AdjustStockRequest struct {
	Quantity      int    `json:"quantity" binding:"required"` // 正数入库，负数出库
	ReferenceType string `json:"reference_type"`
	ReferenceID   string `json:"reference_id"`
	Notes         string `json:"notes"`
}

// AdjustStock 手工调整库存
func (s *PartService) AdjustStock(ctx context.Context, partID, userID string, req *AdjustStockRequest) (*entity.Part, error) {
	part, err := s.repo.FindByID(ctx, partID)
	if err != nil {
		return nil, err
	}
	if part.CurrentStock+req.Quantity < 0 {
		return nil, fmt.Errorf("adjustment would take stock below zero: %d%+d", part.CurrentStock, req.Quantity)
	}

	refType := req.ReferenceType
	if refType == "" {
		refType = "MANUAL"
	}
	tx := &entity.InventoryTransaction{
		ID:              uuid.New().String(),
		TransactionType: entity.TxTypeAdjust,
		ReferenceType:   refType,
		ReferenceID:     req.ReferenceID,
		Notes:           req.Notes,
		CreatedBy:       userID,
	}
	return s.repo.AdjustStock(ctx, partID, req.Quantity, tx)
}

// ListTransactions 获取零件库存流水
func (s *PartService) ListTransactions(ctx context.Context, partID string, page, pageSize int) ([]entity.InventoryTransaction, int64, error) {
	return s.invRepo.FindByPart(ctx, partID, page, pageSize)
}

// ReorderAlerts 低于补货点的零件清单
func (s *PartService) ReorderAlerts(ctx context.Context) ([]entity.Part, error) {
	return s.repo.FindBelowReorderPoint(ctx)
}
