package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/boatyard/internal/config"
	"github.com/bitfantasy/boatyard/internal/erp/entity"
	"github.com/bitfantasy/boatyard/internal/erp/planner"
	"github.com/bitfantasy/boatyard/internal/erp/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrNoAnalysis 还没有任何完成的需求计算
var ErrNoAnalysis = errors.New("no requirements analysis available")

const (
	analysisLatestKey = "erp:requirements:latest"
	analysisRunKey    = "erp:requirements:run:"
)

// RequirementsService 需求计算服务：取数、跑计算核心、落运行记录、缓存结果
type RequirementsService struct {
	boatRepo     *repository.BoatRepository
	partRepo     *repository.PartRepository
	supplierRepo *repository.SupplierRepository
	poRepo       *repository.PORepository
	rdb          *redis.Client
	cfg          *config.Config
	logger       *zap.Logger
}

func NewRequirementsService(boatRepo *repository.BoatRepository, partRepo *repository.PartRepository,
	supplierRepo *repository.SupplierRepository, poRepo *repository.PORepository,
	rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *RequirementsService {
	return &RequirementsService{
		boatRepo:     boatRepo,
		partRepo:     partRepo,
		supplierRepo: supplierRepo,
		poRepo:       poRepo,
		rdb:          rdb,
		cfg:          cfg,
		logger:       logger,
	}
}

// CalculateRequest 需求计算请求
type CalculateRequest struct {
	SafetyStockPct    *int   `json:"safety_stock_percentage"`
	StartDate         string `json:"start_date"` // "2006-01-02"，空 = 不限
	EndDate           string `json:"end_date"`
	BatchOptimization *bool  `json:"prefer_batch_optimization"`
}

// AnalysisResult 一次计算的结果和它的运行记录
type AnalysisResult struct {
	RunID    string                        `json:"run_id"`
	RunCode  string                        `json:"run_code"`
	Analysis *planner.RequirementsAnalysis `json:"analysis"`
}

// Calculate 执行一次完整的需求计算并持久化运行记录
func (s *RequirementsService) Calculate(ctx context.Context, userID string, req *CalculateRequest) (*AnalysisResult, error) {
	safetyPct := s.cfg.Planning.DefaultSafetyStockPct
	if req.SafetyStockPct != nil {
		safetyPct = *req.SafetyStockPct
	}
	if safetyPct < 0 {
		return nil, fmt.Errorf("safety_stock_percentage must not be negative")
	}
	batchOptimize := true
	if req.BatchOptimization != nil {
		batchOptimize = *req.BatchOptimization
	}

	window, err := parseWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	runCode, err := s.poRepo.GenerateRunCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("生成运行编码失败: %w", err)
	}
	run := &entity.GenerationRun{
		ID:                uuid.New().String(),
		RunCode:           runCode,
		Status:            entity.GenRunStatusRunning,
		SafetyStockPct:    safetyPct,
		StartDate:         window.Start,
		EndDate:           window.End,
		BatchOptimization: batchOptimize,
		CreatedBy:         userID,
		StartedAt:         time.Now(),
	}
	if err := s.poRepo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("创建运行记录失败: %w", err)
	}

	analysis, err := s.runCalculation(ctx, safetyPct, window, batchOptimize)
	if err != nil {
		now := time.Now()
		run.Status = entity.GenRunStatusFailed
		run.ErrorMessage = err.Error()
		run.ExecutionTimeMs = now.Sub(run.StartedAt).Milliseconds()
		run.CompletedAt = &now
		if uerr := s.poRepo.UpdateRun(ctx, run); uerr != nil {
			s.logger.Error("failed to mark run failed", zap.String("run", run.RunCode), zap.Error(uerr))
		}
		return nil, err
	}

	now := time.Now()
	run.Status = entity.GenRunStatusCompleted
	run.TotalBoats = analysis.TotalBoats
	run.TotalParts = analysis.TotalParts
	run.TotalSuppliers = analysis.TotalSuppliers
	run.TotalAmount = analysis.TotalCost.InexactFloat64()
	run.ExecutionTimeMs = now.Sub(run.StartedAt).Milliseconds()
	run.CompletedAt = &now
	if err := s.poRepo.UpdateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("更新运行记录失败: %w", err)
	}

	result := &AnalysisResult{RunID: run.ID, RunCode: run.RunCode, Analysis: analysis}
	s.cacheAnalysis(ctx, result)

	s.logger.Info("requirements analysis completed",
		zap.String("run", run.RunCode),
		zap.Int("boats", analysis.TotalBoats),
		zap.Int("parts", analysis.TotalParts),
		zap.Int("suppliers", analysis.TotalSuppliers),
		zap.Int64("ms", run.ExecutionTimeMs),
	)
	return result, nil
}

// runCalculation 取计算所需的全部数据并调用计算核心
func (s *RequirementsService) runCalculation(ctx context.Context, safetyPct int,
	window planner.DateWindow, batchOptimize bool) (*planner.RequirementsAnalysis, error) {

	boats, err := s.boatRepo.FindBoatsForPlanning(ctx, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("查询排产船只失败: %w", err)
	}

	input := make([]planner.ProductionBoat, 0, len(boats))
	partIDSet := make(map[string]bool)
	for _, b := range boats {
		if b.BoatType == nil {
			return nil, fmt.Errorf("boat %s has no boat type loaded", b.ID)
		}
		mfgDays := b.ManufacturingTimeDays
		if mfgDays == 0 {
			mfgDays = b.BoatType.DefaultManufacturingDays
		}
		mbom := make([]planner.MBOMLine, 0, len(b.BoatType.MBOM.Parts))
		for _, line := range b.BoatType.MBOM.Parts {
			mbom = append(mbom, planner.MBOMLine{
				PartID:           line.PartID,
				PartName:         line.PartName,
				QuantityRequired: line.QuantityRequired,
			})
			partIDSet[line.PartID] = true
		}
		input = append(input, planner.ProductionBoat{
			ID:                    b.ID,
			Name:                  b.Name,
			BoatTypeID:            b.BoatTypeID,
			DueDate:               b.DueDate,
			ManufacturingTimeDays: mfgDays,
			Status:                b.Status,
			MBOM:                  mbom,
		})
	}

	partIDs := make([]string, 0, len(partIDSet))
	for id := range partIDSet {
		partIDs = append(partIDs, id)
	}
	parts, err := s.partRepo.FindByIDs(ctx, partIDs)
	if err != nil {
		return nil, fmt.Errorf("查询零件失败: %w", err)
	}
	partInfo := make(map[string]planner.PartInfo, len(parts))
	for _, p := range parts {
		partInfo[p.ID] = planner.PartInfo{
			PartNumber:   p.PartNumber,
			Name:         p.Name,
			CurrentStock: p.CurrentStock,
			UnitCost:     decimal.NewFromFloat(p.UnitCost),
		}
	}

	dbLinks, err := s.supplierRepo.FindLinksByPartIDs(ctx, partIDs)
	if err != nil {
		return nil, fmt.Errorf("查询供货关系失败: %w", err)
	}
	links := make([]planner.SupplierLink, 0, len(dbLinks))
	for _, l := range dbLinks {
		link := planner.SupplierLink{
			SupplierID:         l.SupplierID,
			PartID:             l.PartID,
			LeadTimeDays:       l.LeadTimeDays,
			MinimumOrderQty:    l.MinimumOrderQty,
			BatchSize:          l.BatchSize,
			PricePerUnit:       decimal.NewFromFloat(l.PricePerUnit),
			IsPreferred:        l.IsPreferred,
			MaxMonthlyCapacity: l.MaxMonthlyCapacity,
		}
		if l.Supplier != nil {
			if l.Supplier.Status != entity.SupplierStatusActive {
				continue
			}
			link.SupplierName = l.Supplier.Name
			link.ContactName = l.Supplier.ContactName
			link.Email = l.Supplier.Email
			link.Phone = l.Supplier.Phone
		}
		links = append(links, link)
	}

	return planner.Calculate(input, partInfo, links, safetyPct, window, batchOptimize, time.Now())
}

// Latest 最近一次计算结果，优先读缓存，缓存失效时报缺
func (s *RequirementsService) Latest(ctx context.Context) (*AnalysisResult, error) {
	raw, err := s.rdb.Get(ctx, analysisLatestKey).Result()
	if err == nil {
		var result AnalysisResult
		if jerr := json.Unmarshal([]byte(raw), &result); jerr == nil {
			return &result, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("redis read failed", zap.Error(err))
	}
	return nil, ErrNoAnalysis
}

// ByRun 按运行ID取缓存的计算结果
func (s *RequirementsService) ByRun(ctx context.Context, runID string) (*AnalysisResult, error) {
	raw, err := s.rdb.Get(ctx, analysisRunKey+runID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoAnalysis
		}
		return nil, err
	}
	var result AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, ErrNoAnalysis
	}
	return &result, nil
}

// ListRuns 运行历史
func (s *RequirementsService) ListRuns(ctx context.Context, page, pageSize int) ([]entity.GenerationRun, int64, error) {
	return s.poRepo.FindRuns(ctx, page, pageSize)
}

// GetRun 运行记录详情
func (s *RequirementsService) GetRun(ctx context.Context, id string) (*entity.GenerationRun, error) {
	return s.poRepo.FindRunByID(ctx, id)
}

func (s *RequirementsService) cacheAnalysis(ctx context.Context, result *AnalysisResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("marshal analysis for cache failed", zap.Error(err))
		return
	}
	ttl := s.cfg.Planning.AnalysisCacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if err := s.rdb.Set(ctx, analysisLatestKey, payload, ttl).Err(); err != nil {
		s.logger.Warn("cache analysis failed", zap.Error(err))
	}
	if err := s.rdb.Set(ctx, analysisRunKey+result.RunID, payload, ttl).Err(); err != nil {
		s.logger.Warn("cache analysis by run failed", zap.Error(err))
	}
}

func parseWindow(start, end string) (planner.DateWindow, error) {
	var window planner.DateWindow
	if start != "" {
		d, err := planner.ParseDate(start)
		if err != nil {
			return window, fmt.Errorf("invalid start_date %q: %w", start, err)
		}
		window.Start = &d
	}
	if end != "" {
		d, err := planner.ParseDate(end)
		if err != nil {
			return window, fmt.Errorf("invalid end_date %q: %w", end, err)
		}
		window.End = &d
	}
	if window.Start != nil && window.End != nil && window.End.Before(*window.Start) {
		return window, fmt.Errorf("end_date is before start_date")
	}
	return window, nil
}
