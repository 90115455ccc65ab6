package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/boatyard/internal/erp/entity"
	"github.com/bitfantasy/boatyard/internal/erp/repository"
	"github.com/google/uuid"
)

// BoatService 船型与排产船只服务
type BoatService struct {
	repo     *repository.BoatRepository
	partRepo *repository.PartRepository
}

func NewBoatService(repo *repository.BoatRepository, partRepo *repository.PartRepository) *BoatService {
	return &BoatService{repo: repo, partRepo: partRepo}
}

// CreateBoatTypeRequest 创建船型请求
type CreateBoatTypeRequest struct {
	Name                     string      `json:"name" binding:"required"`
	Model                    string      `json:"model" binding:"required"`
	Description              string      `json:"description"`
	DefaultManufacturingDays int         `json:"default_manufacturing_time_days"`
	MBOM                     entity.MBOM `json:"mbom"`
	Notes                    string      `json:"notes"`
}

// UpdateBoatTypeRequest 更新船型请求
type UpdateBoatTypeRequest struct {
	Name                     *string      `json:"name"`
	Model                    *string      `json:"model"`
	Description              *string      `json:"description"`
	DefaultManufacturingDays *int         `json:"default_manufacturing_time_days"`
	MBOM                     *entity.MBOM `json:"mbom"`
	IsActive                 *bool        `json:"is_active"`
	Notes                    *string      `json:"notes"`
}

// validateMBOM 校验BOM行并确认引用的零件都存在
func (s *BoatService) validateMBOM(ctx context.Context, mbom entity.MBOM) error {
	if err := mbom.Validate(); err != nil {
		return err
	}
	for _, line := range mbom.Parts {
		if _, err := s.partRepo.FindByID(ctx, line.PartID); err != nil {
			return fmt.Errorf("mbom references unknown part %s: %w", line.PartID, err)
		}
	}
	return nil
}

// ListTypes 获取船型列表
func (s *BoatService) ListTypes(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.BoatType, int64, error) {
	return s.repo.FindAllTypes(ctx, page, pageSize, filters)
}

// GetType 获取船型详情
func (s *BoatService) GetType(ctx context.Context, id string) (*entity.BoatType, error) {
	return s.repo.FindTypeByID(ctx, id)
}

// CreateType 创建船型
func (s *BoatService) CreateType(ctx context.Context, userID string, req *CreateBoatTypeRequest) (*entity.BoatType, error) {
	if req.DefaultManufacturingDays <= 0 {
		return nil, fmt.Errorf("default_manufacturing_time_days must be positive")
	}
	if err := s.validateMBOM(ctx, req.MBOM); err != nil {
		return nil, err
	}

	bt := &entity.BoatType{
		ID:                       uuid.New().String(),
		Name:                     req.Name,
		Model:                    req.Model,
		Description:              req.Description,
		DefaultManufacturingDays: req.DefaultManufacturingDays,
		MBOM:                     req.MBOM,
		IsActive:                 true,
		Notes:                    req.Notes,
		CreatedBy:                userID,
	}
	if err := s.repo.CreateType(ctx, bt); err != nil {
		return nil, err
	}
	return bt, nil
}

// UpdateType 更新船型
func (s *BoatService) UpdateType(ctx context.Context, id, userID string, req *UpdateBoatTypeRequest) (*entity.BoatType, error) {
	bt, err := s.repo.FindTypeByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		bt.Name = *req.Name
	}
	if req.Model != nil {
		bt.Model = *req.Model
	}
	if req.Description != nil {
		bt.Description = *req.Description
	}
	if req.DefaultManufacturingDays != nil {
		if *req.DefaultManufacturingDays <= 0 {
			return nil, fmt.Errorf("default_manufacturing_time_days must be positive")
		}
		bt.DefaultManufacturingDays = *req.DefaultManufacturingDays
	}
	if req.MBOM != nil {
		if err := s.validateMBOM(ctx, *req.MBOM); err != nil {
			return nil, err
		}
		bt.MBOM = *req.MBOM
	}
	if req.IsActive != nil {
		bt.IsActive = *req.IsActive
	}
	if req.Notes != nil {
		bt.Notes = *req.Notes
	}
	bt.UpdatedBy = userID

	if err := s.repo.UpdateType(ctx, bt); err != nil {
		return nil, err
	}
	return bt, nil
}

// DeleteType 删除船型，仍有排产船只时拒绝
func (s *BoatService) DeleteType(ctx context.Context, id string) error {
	count, err := s.repo.CountBoatsByType(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("boat type has %d boats scheduled, remove them first", count)
	}
	return s.repo.DeleteType(ctx, id)
}

// CreateBoatRequest 创建排产船只请求
type CreateBoatRequest struct {
	BoatTypeID            string    `json:"boat_type_id" binding:"required"`
	Name                  string    `json:"name" binding:"required"`
	DueDate               time.Time `json:"due_date" binding:"required"`
	ManufacturingTimeDays int       `json:"manufacturing_time_days"` // 0 = 用船型默认值
	Notes                 string    `json:"notes"`
}

// UpdateBoatRequest 更新排产船只请求
type UpdateBoatRequest struct {
	Name                  *string    `json:"name"`
	DueDate               *time.Time `json:"due_date"`
	ManufacturingTimeDays *int       `json:"manufacturing_time_days"`
	Status                *string    `json:"status"`
	Notes                 *string    `json:"notes"`
}

// ListBoats 获取排产船只列表
func (s *BoatService) ListBoats(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Boat, int64, error) {
	return s.repo.FindAllBoats(ctx, page, pageSize, filters)
}

// GetBoat 获取船只详情
func (s *BoatService) GetBoat(ctx context.Context, id string) (*entity.Boat, error) {
	return s.repo.FindBoatByID(ctx, id)
}

// CreateBoat 创建排产船只
func (s *BoatService) CreateBoat(ctx context.Context, userID string, req *CreateBoatRequest) (*entity.Boat, error) {
	bt, err := s.repo.FindTypeByID(ctx, req.BoatTypeID)
	if err != nil {
		return nil, fmt.Errorf("boat type %s: %w", req.BoatTypeID, err)
	}
	if !bt.IsActive {
		return nil, fmt.Errorf("boat type %s is inactive", bt.Name)
	}
	if req.ManufacturingTimeDays < 0 {
		return nil, fmt.Errorf("manufacturing_time_days must not be negative")
	}

	boat := &entity.Boat{
		ID:                    uuid.New().String(),
		BoatTypeID:            req.BoatTypeID,
		Name:                  req.Name,
		DueDate:               req.DueDate,
		ManufacturingTimeDays: req.ManufacturingTimeDays,
		Status:                entity.BoatStatusScheduled,
		Notes:                 req.Notes,
		CreatedBy:             userID,
	}
	if err := s.repo.CreateBoat(ctx, boat); err != nil {
		return nil, err
	}
	boat.BoatType = bt
	return boat, nil
}

// UpdateBoat 更新排产船只
func (s *BoatService) UpdateBoat(ctx context.Context, id, userID string, req *UpdateBoatRequest) (*entity.Boat, error) {
	boat, err := s.repo.FindBoatByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		boat.Name = *req.Name
	}
	if req.DueDate != nil {
		boat.DueDate = *req.DueDate
	}
	if req.ManufacturingTimeDays != nil {
		if *req.ManufacturingTimeDays < 0 {
			return nil, fmt.Errorf("manufacturing_time_days must not be negative")
		}
		boat.ManufacturingTimeDays = *req.ManufacturingTimeDays
	}
	if req.Status != nil {
		switch *req.Status {
		case entity.BoatStatusScheduled, entity.BoatStatusInProgress, entity.BoatStatusCompleted:
			boat.Status = *req.Status
		default:
			return nil, fmt.Errorf("invalid status %q", *req.Status)
		}
	}
	if req.Notes != nil {
		boat.Notes = *req.Notes
	}
	boat.UpdatedBy = userID

	if err := s.repo.UpdateBoat(ctx, boat); err != nil {
		return nil, err
	}
	return boat, nil
}

// DeleteBoat 删除排产船只
func (s *BoatService) DeleteBoat(ctx context.Context, id string) error {
	return s.repo.DeleteBoat(ctx, id)
}
