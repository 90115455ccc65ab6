package handler

import (
	"errors"

	"github.com/bitfantasy/boatyard/internal/erp/planner"
	"github.com/bitfantasy/boatyard/internal/erp/repository"
	"github.com/bitfantasy/boatyard/internal/erp/service"
	"github.com/gin-gonic/gin"
)

// POHandler 采购订单处理器
type POHandler struct {
	svc       *service.POService
	exportSvc *service.ExportService
}

func NewPOHandler(svc *service.POService, exportSvc *service.ExportService) *POHandler {
	return &POHandler{svc: svc, exportSvc: exportSvc}
}

// ListPOs 采购订单列表
// GET /api/v1/erp/purchase-orders?supplier_id=xxx&status=xxx&generation_run_id=xxx
func (h *POHandler) ListPOs(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"supplier_id":       c.Query("supplier_id"),
		"status":            c.Query("status"),
		"generation_run_id": c.Query("generation_run_id"),
		"generated":         c.Query("generated"),
		"search":            c.Query("search"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取采购订单列表失败: "+err.Error())
		return
	}
	Success(c, listResult(items, total, page, pageSize))
}

// GetPO 采购订单详情
// GET /api/v1/erp/purchase-orders/:id
func (h *POHandler) GetPO(c *gin.Context) {
	po, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "采购订单不存在")
		return
	}
	Success(c, po)
}

// CreatePO 手工创建采购订单
// POST /api/v1/erp/purchase-orders
func (h *POHandler) CreatePO(c *gin.Context) {
	var req service.CreatePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	po, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		BadRequest(c, "创建采购订单失败: "+err.Error())
		return
	}
	Created(c, po)
}

// UpdatePO 更新采购订单
// PUT /api/v1/erp/purchase-orders/:id
func (h *POHandler) UpdatePO(c *gin.Context) {
	var req service.UpdatePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	po, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "采购订单不存在")
			return
		}
		BadRequest(c, "更新采购订单失败: "+err.Error())
		return
	}
	Success(c, po)
}

// DeletePO 删除采购订单
// DELETE /api/v1/erp/purchase-orders/:id
func (h *POHandler) DeletePO(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "采购订单不存在")
			return
		}
		Conflict(c, "删除采购订单失败: "+err.Error())
		return
	}
	Success(c, nil)
}

// transitionRequest 状态推进请求
type transitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// TransitionPO 推进订单状态
// POST /api/v1/erp/purchase-orders/:id/transition
func (h *POHandler) TransitionPO(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	po, err := h.svc.Transition(c.Request.Context(), c.Param("id"), GetUserID(c), req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "采购订单不存在")
			return
		}
		Conflict(c, "状态推进失败: "+err.Error())
		return
	}
	Success(c, po)
}

// Schedule 批次排程预演
// POST /api/v1/erp/purchase-orders/schedule
func (h *POHandler) Schedule(c *gin.Context) {
	var req service.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	plan, err := h.svc.Schedule(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNoAnalysis) {
			NotFound(c, "还没有可用的计算结果，请先执行需求计算")
			return
		}
		BadRequest(c, "排程失败: "+err.Error())
		return
	}
	Success(c, plan)
}

// Commit 提交排程为正式采购订单
// POST /api/v1/erp/purchase-orders/commit
func (h *POHandler) Commit(c *gin.Context) {
	var req service.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	pos, err := h.svc.Commit(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		var shortErr *planner.ShortageBlockError
		var allocErr *planner.AllocationMismatchError
		switch {
		case errors.Is(err, service.ErrNoAnalysis):
			NotFound(c, "还没有可用的计算结果，请先执行需求计算")
		case errors.As(err, &shortErr):
			Conflict(c, "排程存在缺料，拒绝提交: "+err.Error())
		case errors.As(err, &allocErr):
			Conflict(c, "批次分配与净需求不一致，拒绝提交: "+err.Error())
		default:
			BadRequest(c, "提交失败: "+err.Error())
		}
		return
	}
	Created(c, gin.H{"items": pos})
}

// Generate 从计算结果整体生成采购订单
// POST /api/v1/erp/purchase-orders/generate
func (h *POHandler) Generate(c *gin.Context) {
	var req service.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	pos, err := h.svc.GenerateAll(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrNoAnalysis) {
			NotFound(c, "还没有可用的计算结果，请先执行需求计算")
			return
		}
		InternalError(c, "生成采购订单失败: "+err.Error())
		return
	}
	Created(c, gin.H{"items": pos})
}

// Export 导出采购订单为xlsx
// GET /api/v1/erp/purchase-orders/export?supplier_id=xxx&status=xxx
func (h *POHandler) Export(c *gin.Context) {
	filters := map[string]string{
		"supplier_id":       c.Query("supplier_id"),
		"status":            c.Query("status"),
		"generation_run_id": c.Query("generation_run_id"),
	}

	f, filename, err := h.exportSvc.ExportPOs(c.Request.Context(), filters)
	if err != nil {
		InternalError(c, "导出失败: "+err.Error())
		return
	}
	// 归档失败不影响下载
	h.exportSvc.Archive(c.Request.Context(), f, filename)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "写出文件失败: "+err.Error())
	}
}
