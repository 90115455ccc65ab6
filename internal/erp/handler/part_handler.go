package handler

import (
	"errors"

	"github.com/bitfantasy/boatyard/internal/erp/repository"
	"github.com/bitfantasy/boatyard/internal/erp/service"
	"github.com/gin-gonic/gin"
)

// PartHandler 零件处理器
type PartHandler struct {
	svc *service.PartService
}

func NewPartHandler(svc *service.PartService) *PartHandler {
	return &PartHandler{svc: svc}
}

// ListParts 零件列表
// GET /api/v1/erp/parts?search=xxx&category=xxx&below_reorder=true&page=1&page_size=20
func (h *PartHandler) ListParts(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"search":        c.Query("search"),
		"category":      c.Query("category"),
		"below_reorder": c.Query("below_reorder"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取零件列表失败: "+err.Error())
		return
	}
	Success(c, listResult(items, total, page, pageSize))
}

// GetPart 零件详情
// GET /api/v1/erp/parts/:id
func (h *PartHandler) GetPart(c *gin.Context) {
	part, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "零件不存在")
		return
	}
	Success(c, part)
}

// CreatePart 创建零件
// POST /api/v1/erp/parts
func (h *PartHandler) CreatePart(c *gin.Context) {
	var req service.CreatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	part, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		BadRequest(c, "创建零件失败: "+err.Error())
		return
	}
	Created(c, part)
}

// UpdatePart 更新零件
// PUT /api/v1/erp/parts/:id
func (h *PartHandler) UpdatePart(c *gin.Context) {
	var req service.UpdatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	part, err := h.svc.Update(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "零件不存在")
			return
		}
		InternalError(c, "更新零件失败: "+err.Error())
		return
	}
	Success(c, part)
}

// DeletePart 删除零件
// DELETE /api/v1/erp/parts/:id
func (h *PartHandler) DeletePart(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		InternalError(c, "删除零件失败: "+err.Error())
		return
	}
	Success(c, nil)
}

// AdjustStock 手工调整库存
// POST /api/v1/erp/parts/:id/adjust-stock
func (h *PartHandler) AdjustStock(c *gin.Context) {
	var req service.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	part, err := h.svc.AdjustStock(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "零件不存在")
			return
		}
		BadRequest(c, "库存调整失败: "+err.Error())
		return
	}
	Success(c, part)
}

// ListTransactions 零件库存流水
// GET /api/v1/erp/parts/:id/transactions
func (h *PartHandler) ListTransactions(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListTransactions(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		InternalError(c, "获取库存流水失败: "+err.Error())
		return
	}
	Success(c, listResult(items, total, page, pageSize))
}

// ReorderAlerts 低库存预警
// GET /api/v1/erp/parts/reorder-alerts
func (h *PartHandler) ReorderAlerts(c *gin.Context) {
	parts, err := h.svc.ReorderAlerts(c.Request.Context())
	if err != nil {
		InternalError(c, "获取低库存预警失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": parts})
}
