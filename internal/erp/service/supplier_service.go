package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/boatyard/internal/erp/entity"
	"github.com/bitfantasy/boatyard/internal/erp/repository"
	"github.com/google/uuid"
)

// SupplierService 供应商服务
type SupplierService struct {
	repo     *repository.SupplierRepository
	partRepo *repository.PartRepository
}

func NewSupplierService(repo *repository.SupplierRepository, partRepo *repository.PartRepository) *SupplierService {
	return &SupplierService{repo: repo, partRepo: partRepo}
}

// CreateSupplierRequest 创建供应商请求
type CreateSupplierRequest struct {
	Name         string `json:"name" binding:"required"`
	ContactName  string `json:"contact_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	PaymentTerms string `json:"payment_terms"`
	Rating       int    `json:"rating"`
	Notes        string `json:"notes"`
}

// UpdateSupplierRequest 更新供应商请求
type UpdateSupplierRequest struct {
	Name         *string `json:"name"`
	ContactName  *string `json:"contact_name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	PaymentTerms *string `json:"payment_terms"`
	Rating       *int    `json:"rating"`
	Status       *string `json:"status"`
	Notes        *string `json:"notes"`
}

// List 获取供应商列表
func (s *SupplierService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Supplier, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

// Get 获取供应商详情
func (s *SupplierService) Get(ctx context.Context, id string) (*entity.Supplier, error) {
	return s.repo.FindByID(ctx, id)
}

// Create 创建供应商
func (s *SupplierService) Create(ctx context.Context, userID string, req *CreateSupplierRequest) (*entity.Supplier, error) {
	if req.Rating < 0 || req.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 0 and 5")
	}

	code, err := s.repo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("生成供应商编码失败: %w", err)
	}

	supplier := &entity.Supplier{
		ID:           uuid.New().String(),
		SupplierCode: code,
		Name:         req.Name,
		ContactName:  req.ContactName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		PaymentTerms: req.PaymentTerms,
		Rating:       req.Rating,
		Status:       entity.SupplierStatusActive,
		Notes:        req.Notes,
		CreatedBy:    userID,
	}

	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// Update 更新供应商
func (s *SupplierService) Update(ctx context.Context, id, userID string, req *UpdateSupplierRequest) (*entity.Supplier, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		supplier.Name = *req.Name
	}
	if req.ContactName != nil {
		supplier.ContactName = *req.ContactName
	}
	if req.Email != nil {
		supplier.Email = *req.Email
	}
	if req.Phone != nil {
		supplier.Phone = *req.Phone
	}
	if req.Address != nil {
		supplier.Address = *req.Address
	}
	if req.PaymentTerms != nil {
		supplier.PaymentTerms = *req.PaymentTerms
	}
	if req.Rating != nil {
		if *req.Rating < 0 || *req.Rating > 5 {
			return nil, fmt.Errorf("rating must be between 0 and 5")
		}
		supplier.Rating = *req.Rating
	}
	if req.Status != nil {
		if *req.Status != entity.SupplierStatusActive && *req.Status != entity.SupplierStatusInactive {
			return nil, fmt.Errorf("invalid status %q", *req.Status)
		}
		supplier.Status = *req.Status
	}
	if req.Notes != nil {
		supplier.Notes = *req.Notes
	}
	supplier.UpdatedBy = userID

	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// Delete 删除供应商
func (s *SupplierService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// CreateLinkRequest 创建供货关系请求
type CreateLinkRequest struct {
	PartID             string  `json:"part_id" binding:"required"`
	LeadTimeDays       int     `json:"lead_time_days"`
	MinimumOrderQty    int     `json:"minimum_order_quantity"`
	BatchSize          int     `json:"batch_size"`
	PricePerUnit       float64 `json:"price_per_unit" binding:"required"`
	IsPreferred        bool    `json:"is_preferred"`
	MaxMonthlyCapacity *int    `json:"max_monthly_capacity"`
}

// UpdateLinkRequest 更新供货关系请求
type UpdateLinkRequest struct {
	LeadTimeDays       *int     `json:"lead_time_days"`
	MinimumOrderQty    *int     `json:"minimum_order_quantity"`
	BatchSize          *int     `json:"batch_size"`
	PricePerUnit       *float64 `json:"price_per_unit"`
	IsPreferred        *bool    `json:"is_preferred"`
	MaxMonthlyCapacity *int     `json:"max_monthly_capacity"`
}

// ListLinks 获取供应商的供货关系
func (s *SupplierService) ListLinks(ctx context.Context, supplierID string) ([]entity.SupplierPart, error) {
	return s.repo.FindSupplierParts(ctx, supplierID)
}

// CreateLink 创建供货关系
func (s *SupplierService) CreateLink(ctx context.Context, supplierID string, req *CreateLinkRequest) (*entity.SupplierPart, error) {
	if _, err := s.repo.FindByID(ctx, supplierID); err != nil {
		return nil, err
	}
	if _, err := s.partRepo.FindByID(ctx, req.PartID); err != nil {
		return nil, fmt.Errorf("part %s: %w", req.PartID, err)
	}
	if req.LeadTimeDays < 0 {
		return nil, fmt.Errorf("lead_time_days must not be negative")
	}
	if req.MaxMonthlyCapacity != nil && *req.MaxMonthlyCapacity <= 0 {
		return nil, fmt.Errorf("max_monthly_capacity must be positive when set")
	}

	link := &entity.SupplierPart{
		ID:                 uuid.New().String(),
		SupplierID:         supplierID,
		PartID:             req.PartID,
		LeadTimeDays:       req.LeadTimeDays,
		MinimumOrderQty:    req.MinimumOrderQty,
		BatchSize:          req.BatchSize,
		PricePerUnit:       req.PricePerUnit,
		IsPreferred:        req.IsPreferred,
		MaxMonthlyCapacity: req.MaxMonthlyCapacity,
	}
	if link.MinimumOrderQty < 1 {
		link.MinimumOrderQty = 1
	}
	if link.BatchSize < 1 {
		link.BatchSize = 1
	}

	if err := s.repo.CreateLink(ctx, link); err != nil {
		return nil, err
	}
	if link.IsPreferred {
		if err := s.repo.ClearPreferred(ctx, link.PartID, link.ID); err != nil {
			return nil, err
		}
	}
	return link, nil
}

// UpdateLink 更新供货关系
func (s *SupplierService) UpdateLink(ctx context.Context, linkID string, req *UpdateLinkRequest) (*entity.SupplierPart, error) {
	link, err := s.repo.FindLinkByID(ctx, linkID)
	if err != nil {
		return nil, err
	}

	if req.LeadTimeDays != nil {
		if *req.LeadTimeDays < 0 {
			return nil, fmt.Errorf("lead_time_days must not be negative")
		}
		link.LeadTimeDays = *req.LeadTimeDays
	}
	if req.MinimumOrderQty != nil && *req.MinimumOrderQty >= 1 {
		link.MinimumOrderQty = *req.MinimumOrderQty
	}
	if req.BatchSize != nil && *req.BatchSize >= 1 {
		link.BatchSize = *req.BatchSize
	}
	if req.PricePerUnit != nil {
		link.PricePerUnit = *req.PricePerUnit
	}
	if req.IsPreferred != nil {
		link.IsPreferred = *req.IsPreferred
	}
	if req.MaxMonthlyCapacity != nil {
		if *req.MaxMonthlyCapacity <= 0 {
			return nil, fmt.Errorf("max_monthly_capacity must be positive when set")
		}
		link.MaxMonthlyCapacity = req.MaxMonthlyCapacity
	}

	if err := s.repo.UpdateLink(ctx, link); err != nil {
		return nil, err
	}
	if link.IsPreferred {
		if err := s.repo.ClearPreferred(ctx, link.PartID, link.ID); err != nil {
			return nil, err
		}
	}
	return link, nil
}

// DeleteLink 删除供货关系
func (s *SupplierService) DeleteLink(ctx context.Context, linkID string) error {
	return s.repo.DeleteLink(ctx, linkID)
}
