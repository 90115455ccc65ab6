package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bitfantasy/boatyard/internal/erp/entity"
	"github.com/bitfantasy/boatyard/internal/erp/planner"
	"github.com/bitfantasy/boatyard/internal/erp/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// POService 采购订单服务：手工单CRUD、批次排程预演、提交与自动生成
type POService struct {
	repo     *repository.PORepository
	partRepo *repository.PartRepository
	reqSvc   *RequirementsService
	logger   *zap.Logger
}

func NewPOService(repo *repository.PORepository, partRepo *repository.PartRepository,
	reqSvc *RequirementsService, logger *zap.Logger) *POService {
	return &POService{repo: repo, partRepo: partRepo, reqSvc: reqSvc, logger: logger}
}

// List 获取采购订单列表
func (s *POService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

// Get 获取采购订单详情
func (s *POService) Get(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return s.repo.FindByID(ctx, id)
}

// CreatePORequest 手工创建采购订单请求
type CreatePORequest struct {
	SupplierID     string         `json:"supplier_id" binding:"required"`
	OrderDate      time.Time      `json:"order_date" binding:"required"`
	RequiredByDate time.Time      `json:"required_by_date" binding:"required"`
	Currency       string         `json:"currency"`
	Notes          string         `json:"notes"`
	Lines          []CreatePOLine `json:"lines" binding:"required,min=1"`
}

// CreatePOLine 采购订单行请求
type CreatePOLine struct {
	PartID    string  `json:"part_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required"`
	UnitPrice float64 `json:"unit_price"`
	Notes     string  `json:"notes"`
}

// Create 手工创建采购订单（DRAFT状态）
func (s *POService) Create(ctx context.Context, userID string, req *CreatePORequest) (*entity.PurchaseOrder, error) {
	code, err := s.repo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("生成PO编码失败: %w", err)
	}

	po := &entity.PurchaseOrder{
		ID:             uuid.New().String(),
		PONumber:       code,
		SupplierID:     req.SupplierID,
		OrderDate:      req.OrderDate,
		RequiredByDate: req.RequiredByDate,
		Status:         entity.POStatusDraft,
		Currency:       req.Currency,
		Notes:          req.Notes,
		CreatedBy:      userID,
	}
	if po.Currency == "" {
		po.Currency = "USD"
	}

	var total float64
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("line quantity must be positive, got %d", line.Quantity)
		}
		part, err := s.partRepo.FindByID(ctx, line.PartID)
		if err != nil {
			return nil, fmt.Errorf("part %s: %w", line.PartID, err)
		}
		unitPrice := line.UnitPrice
		if unitPrice == 0 {
			unitPrice = part.UnitCost
		}
		lineTotal := unitPrice * float64(line.Quantity)
		total += lineTotal
		po.Lines = append(po.Lines, entity.POLine{
			ID:         uuid.New().String(),
			POID:       po.ID,
			PartID:     part.ID,
			PartNumber: part.PartNumber,
			PartName:   part.Name,
			Quantity:   line.Quantity,
			UnitPrice:  unitPrice,
			LineTotal:  lineTotal,
			Notes:      line.Notes,
		})
	}
	po.TotalAmount = total

	if err := s.repo.Create(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

// UpdatePORequest 更新采购订单请求（仅DRAFT/PENDING可改）
type UpdatePORequest struct {
	OrderDate      *time.Time `json:"order_date"`
	RequiredByDate *time.Time `json:"required_by_date"`
	Notes          *string    `json:"notes"`
}

// Update 更新采购订单
func (s *POService) Update(ctx context.Context, id string, req *UpdatePORequest) (*entity.PurchaseOrder, error) {
	po, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po.Status != entity.POStatusDraft && po.Status != entity.POStatusPending {
		return nil, fmt.Errorf("po %s is %s, only DRAFT or PENDING can be edited", po.PONumber, po.Status)
	}

	if req.OrderDate != nil {
		po.OrderDate = *req.OrderDate
	}
	if req.RequiredByDate != nil {
		po.RequiredByDate = *req.RequiredByDate
	}
	if req.Notes != nil {
		po.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

// Delete 删除采购订单（仅DRAFT可删）
func (s *POService) Delete(ctx context.Context, id string) error {
	po, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if po.Status != entity.POStatusDraft {
		return fmt.Errorf("po %s is %s, only DRAFT can be deleted", po.PONumber, po.Status)
	}
	return s.repo.Delete(ctx, id)
}

// poTransitions 状态机：当前状态 → 允许的下一状态
var poTransitions = map[string][]string{
	entity.POStatusDraft:    {entity.POStatusPending, entity.POStatusCancelled},
	entity.POStatusPending:  {entity.POStatusApproved, entity.POStatusCancelled},
	entity.POStatusApproved: {entity.POStatusOrdered, entity.POStatusCancelled},
	entity.POStatusOrdered:  {entity.POStatusReceived, entity.POStatusCancelled},
}

// Transition 推进订单状态。RECEIVED时按行项入库
func (s *POService) Transition(ctx context.Context, id, userID, target string) (*entity.PurchaseOrder, error) {
	po, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range poTransitions[po.Status] {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("po %s: cannot go from %s to %s", po.PONumber, po.Status, target)
	}

	updates := map[string]interface{}{}
	if target == entity.POStatusApproved {
		now := time.Now()
		updates["approved_by"] = userID
		updates["approved_at"] = now
	}
	if err := s.repo.UpdateStatus(ctx, id, target, updates); err != nil {
		return nil, err
	}

	if target == entity.POStatusReceived {
		if err := s.receiveStock(ctx, po, userID); err != nil {
			return nil, err
		}
	}

	po.Status = target
	return po, nil
}

// receiveStock 收货入库：每个行项写一笔PURCHASE_IN流水
func (s *POService) receiveStock(ctx context.Context, po *entity.PurchaseOrder, userID string) error {
	for _, line := range po.Lines {
		tx := &entity.InventoryTransaction{
			ID:              uuid.New().String(),
			TransactionType: entity.TxTypePurchaseIn,
			ReferenceType:   "PO",
			ReferenceID:     po.ID,
			Notes:           fmt.Sprintf("received %s", po.PONumber),
			CreatedBy:       userID,
		}
		if _, err := s.partRepo.AdjustStock(ctx, line.PartID, line.Quantity, tx); err != nil {
			return fmt.Errorf("入库失败 part %s: %w", line.PartNumber, err)
		}
	}
	return nil
}

// ScheduleRequest 批次排程预演请求
type ScheduleRequest struct {
	SupplierID string        `json:"supplier_id" binding:"required"`
	RunID      string        `json:"run_id"` // 空 = 最近一次计算
	Strategy   string        `json:"strategy" binding:"required"`
	NumBatches int           `json:"num_batches"`
	Batches    []CustomBatch `json:"batches"` // custom策略时调用方自带分配
}

// CustomBatch 调用方手工调整后的批次
type CustomBatch struct {
	OrderDate string            `json:"order_date" binding:"required"`
	Lines     []CustomBatchLine `json:"lines"`
}

// CustomBatchLine 手工批次中一个零件的数量
type CustomBatchLine struct {
	PartID   string `json:"part_id" binding:"required"`
	Quantity int    `json:"quantity"`
}

// SchedulePlan 排程预演结果：批次、分配完整性、时间线校验
type SchedulePlan struct {
	SupplierID      string                    `json:"supplier_id"`
	SupplierName    string                    `json:"supplier_name"`
	Strategy        string                    `json:"strategy"`
	MaxLeadTimeDays int                       `json:"max_lead_time_days"`
	Batches         []planner.POBatch         `json:"batches"`
	Allocation      planner.AllocationSummary `json:"allocation"`
	Shortages       planner.ShortageReport    `json:"shortages"`
}

// Schedule 把某供应商的净需求按策略拆批并做时间线校验，不落库
func (s *POService) Schedule(ctx context.Context, req *ScheduleRequest) (*SchedulePlan, error) {
	result, err := s.loadAnalysis(ctx, req.RunID)
	if err != nil {
		return nil, err
	}
	plan, _, err := s.planFromAnalysis(result, req)
	return plan, err
}

// planFromAnalysis 基于一份已加载的计算结果做排程，Schedule和Commit共用，
// 保证同一次请求内只解析一次计算结果
func (s *POService) planFromAnalysis(result *AnalysisResult, req *ScheduleRequest) (*SchedulePlan, *planner.SupplierRequirement, error) {
	supplierReq, err := findSupplierRequirement(result.Analysis, req.SupplierID)
	if err != nil {
		return nil, nil, err
	}

	strategy := planner.Strategy(req.Strategy)
	var batches []planner.POBatch
	var allocation planner.AllocationSummary

	if strategy == planner.StrategyCustom {
		batches, err = s.customBatches(*supplierReq, req.Batches)
		if err != nil {
			return nil, nil, err
		}
		batches, allocation = planner.RecomputeBatches(*supplierReq, batches)
	} else {
		batches, err = planner.BuildSchedule(*supplierReq, strategy, req.NumBatches)
		if err != nil {
			return nil, nil, err
		}
		batches, allocation = planner.RecomputeBatches(*supplierReq, batches)
	}

	maxLead := planner.MaxLeadTime(*supplierReq)
	report := planner.ValidateTimeline(batches, maxLead,
		planner.ConsumptionFromRequirement(*supplierReq),
		planner.InitialStockFromRequirement(*supplierReq))

	return &SchedulePlan{
		SupplierID:      supplierReq.SupplierID,
		SupplierName:    supplierReq.SupplierName,
		Strategy:        string(strategy),
		MaxLeadTimeDays: maxLead,
		Batches:         batches,
		Allocation:      allocation,
		Shortages:       report,
	}, supplierReq, nil
}

// customBatches 把调用方自带的批次转换为计算核心的结构
func (s *POService) customBatches(req planner.SupplierRequirement, in []CustomBatch) ([]planner.POBatch, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("custom strategy requires at least one batch")
	}
	batches := make([]planner.POBatch, 0, len(in))
	for i, cb := range in {
		orderDate, err := planner.ParseDate(cb.OrderDate)
		if err != nil {
			return nil, fmt.Errorf("batch %d: invalid order_date %q: %w", i, cb.OrderDate, err)
		}
		batch := planner.POBatch{SupplierID: req.SupplierID, OrderDate: orderDate}
		for _, line := range cb.Lines {
			if line.Quantity < 0 {
				return nil, fmt.Errorf("batch %d: negative quantity for part %s", i, line.PartID)
			}
			batch.Lines = append(batch.Lines, planner.BatchLine{
				PartID:   line.PartID,
				Quantity: line.Quantity,
			})
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// CommitRequest 提交排程为正式采购订单
type CommitRequest struct {
	ScheduleRequest
}

// Commit 校验通过后把批次落成DRAFT采购订单。分配不齐或出现缺料直接拒绝
func (s *POService) Commit(ctx context.Context, userID string, req *CommitRequest) ([]entity.PurchaseOrder, error) {
	result, err := s.loadAnalysis(ctx, req.RunID)
	if err != nil {
		return nil, err
	}
	plan, supplierReq, err := s.planFromAnalysis(result, &req.ScheduleRequest)
	if err != nil {
		return nil, err
	}
	if err := planner.CheckAllocation(plan.Allocation); err != nil {
		return nil, err
	}
	if err := planner.CheckShortages(plan.Shortages); err != nil {
		return nil, err
	}

	codes, err := s.repo.GenerateCodes(ctx, len(plan.Batches))
	if err != nil {
		return nil, fmt.Errorf("生成PO编码失败: %w", err)
	}

	boatIDs := boatIDsByPart(*supplierReq)
	pos := make([]entity.PurchaseOrder, 0, len(plan.Batches))
	for i, batch := range plan.Batches {
		po := buildPO(userID, codes[i], *supplierReq, batch, plan.MaxLeadTimeDays, result.RunID, boatIDs)
		pos = append(pos, *po)
	}

	if err := s.repo.CreateBatch(ctx, pos); err != nil {
		return nil, fmt.Errorf("创建采购订单失败: %w", err)
	}

	s.logger.Info("schedule committed",
		zap.String("supplier", supplierReq.SupplierName),
		zap.Int("pos", len(pos)),
	)
	return pos, nil
}

// buildPO 把一个批次转成一张DRAFT采购订单
func buildPO(userID, code string, req planner.SupplierRequirement,
	batch planner.POBatch, maxLead int, runID string, boatIDs map[string][]string) *entity.PurchaseOrder {

	po := &entity.PurchaseOrder{
		ID:                uuid.New().String(),
		PONumber:          code,
		SupplierID:        req.SupplierID,
		OrderDate:         batch.OrderDate,
		RequiredByDate:    planner.AddDays(batch.OrderDate, maxLead),
		Status:            entity.POStatusDraft,
		TotalAmount:       batch.TotalCost.InexactFloat64(),
		Currency:          "USD",
		GeneratedBySystem: true,
		CreatedBy:         userID,
	}
	if runID != "" {
		po.GenerationRunID = &runID
	}

	for _, line := range batch.Lines {
		if line.Quantity == 0 {
			continue
		}
		po.Lines = append(po.Lines, entity.POLine{
			ID:            uuid.New().String(),
			POID:          po.ID,
			PartID:        line.PartID,
			PartNumber:    line.PartNumber,
			PartName:      line.PartName,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitCost.InexactFloat64(),
			LineTotal:     line.TotalCost.InexactFloat64(),
			LinkedBoatIDs: strings.Join(boatIDs[line.PartID], ","),
		})
	}
	return po
}

// GenerateRequest 从一次计算结果整体生成采购订单
type GenerateRequest struct {
	RunID string `json:"run_id"` // 空 = 最近一次计算
}

// GenerateAll 按供应商和下单月份分组，把整个计算结果落成DRAFT采购订单
func (s *POService) GenerateAll(ctx context.Context, userID string, req *GenerateRequest) ([]entity.PurchaseOrder, error) {
	result, err := s.loadAnalysis(ctx, req.RunID)
	if err != nil {
		return nil, err
	}

	type pendingPO struct {
		sup   planner.SupplierRequirement
		group orderGroup
	}
	var pending []pendingPO
	for _, sup := range result.Analysis.Suppliers {
		for _, group := range groupOrdersByMonth(sup) {
			pending = append(pending, pendingPO{sup: sup, group: group})
		}
	}

	var codes []string
	if len(pending) > 0 {
		codes, err = s.repo.GenerateCodes(ctx, len(pending))
		if err != nil {
			return nil, fmt.Errorf("生成PO编码失败: %w", err)
		}
	}

	pos := make([]entity.PurchaseOrder, 0, len(pending))
	for i, p := range pending {
		pos = append(pos, *buildGeneratedPO(userID, codes[i], p.sup, p.group, result.RunID))
	}

	if err := s.repo.CreateBatch(ctx, pos); err != nil {
		return nil, fmt.Errorf("创建采购订单失败: %w", err)
	}

	// 更新运行记录的生成数量
	if run, err := s.repo.FindRunByID(ctx, result.RunID); err == nil {
		run.TotalPOsGenerated = len(pos)
		if err := s.repo.UpdateRun(ctx, run); err != nil {
			s.logger.Warn("update run po count failed", zap.Error(err))
		}
	}

	s.logger.Info("purchase orders generated",
		zap.String("run", result.RunID),
		zap.Int("pos", len(pos)),
	)
	return pos, nil
}

// orderGroup 同一供应商同一月份的下单计划
type orderGroup struct {
	month  string // "2006-01"
	orders []plannedPartOrder
}

// plannedPartOrder 携带零件信息的一条下单计划
type plannedPartOrder struct {
	plan  planner.SupplierPartPlan
	order planner.PlannedOrder
}

// groupOrdersByMonth 把供应商所有零件的下单计划按下单月份分组，
// 同月合并为一张PO，组内按最早下单日排序
func groupOrdersByMonth(sup planner.SupplierRequirement) []orderGroup {
	byMonth := make(map[string][]plannedPartOrder)
	for _, plan := range sup.Parts {
		for _, order := range plan.Orders {
			key := order.OrderDate.Format("2006-01")
			byMonth[key] = append(byMonth[key], plannedPartOrder{plan: plan, order: order})
		}
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	groups := make([]orderGroup, 0, len(months))
	for _, m := range months {
		groups = append(groups, orderGroup{month: m, orders: byMonth[m]})
	}
	return groups
}

// buildGeneratedPO 同月下单计划合并为一张PO：下单日取组内最早，
// 交付期限取组内最早的need-by
func buildGeneratedPO(userID, code string,
	sup planner.SupplierRequirement, group orderGroup, runID string) *entity.PurchaseOrder {

	orderDate := group.orders[0].order.OrderDate
	requiredBy := group.orders[0].order.RequiredByDate
	for _, o := range group.orders {
		if o.order.OrderDate.Before(orderDate) {
			orderDate = o.order.OrderDate
		}
		if o.order.RequiredByDate.Before(requiredBy) {
			requiredBy = o.order.RequiredByDate
		}
	}

	po := &entity.PurchaseOrder{
		ID:                uuid.New().String(),
		PONumber:          code,
		SupplierID:        sup.SupplierID,
		OrderDate:         orderDate,
		RequiredByDate:    requiredBy,
		Status:            entity.POStatusDraft,
		Currency:          "USD",
		GeneratedBySystem: true,
		CreatedBy:         userID,
	}
	if runID != "" {
		po.GenerationRunID = &runID
	}

	var total float64
	for _, o := range group.orders {
		lineTotal := o.order.LineTotal.InexactFloat64()
		total += lineTotal
		po.Lines = append(po.Lines, entity.POLine{
			ID:            uuid.New().String(),
			POID:          po.ID,
			PartID:        o.plan.PartID,
			PartNumber:    o.plan.PartNumber,
			PartName:      o.plan.PartName,
			Quantity:      o.order.Quantity,
			UnitPrice:     o.order.UnitPrice.InexactFloat64(),
			LineTotal:     lineTotal,
			LinkedBoatIDs: strings.Join(o.order.BoatIDs, ","),
		})
	}
	po.TotalAmount = total
	return po
}

func (s *POService) loadAnalysis(ctx context.Context, runID string) (*AnalysisResult, error) {
	if runID != "" {
		return s.reqSvc.ByRun(ctx, runID)
	}
	return s.reqSvc.Latest(ctx)
}

func findSupplierRequirement(analysis *planner.RequirementsAnalysis, supplierID string) (*planner.SupplierRequirement, error) {
	for i := range analysis.Suppliers {
		if analysis.Suppliers[i].SupplierID == supplierID {
			return &analysis.Suppliers[i], nil
		}
	}
	return nil, fmt.Errorf("supplier %s not in analysis", supplierID)
}

// boatIDsByPart 零件 → 需要它的船只ID（去重，保持首次出现顺序）
func boatIDsByPart(req planner.SupplierRequirement) map[string][]string {
	out := make(map[string][]string)
	for _, plan := range req.Parts {
		seen := make(map[string]bool)
		for _, need := range plan.BoatsNeeding {
			if seen[need.BoatID] {
				continue
			}
			seen[need.BoatID] = true
			out[plan.PartID] = append(out[plan.PartID], need.BoatID)
		}
	}
	return out
}
