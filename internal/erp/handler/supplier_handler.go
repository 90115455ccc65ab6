package handler

import (
	"errors"

	"github.com/bitfantasy/boatyard/internal/erp/repository"
	"github.com/bitfantasy/boatyard/internal/erp/service"
	"github.com/gin-gonic/gin"
)

// SupplierHandler 供应商处理器
type SupplierHandler struct {
	svc *service.SupplierService
}

func NewSupplierHandler(svc *service.SupplierService) *SupplierHandler {
	return &SupplierHandler{svc: svc}
}

// ListSuppliers 供应商列表
// GET /api/v1/erp/suppliers?search=xxx&status=xxx&page=1&page_size=20
func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"search": c.Query("search"),
		"status": c.Query("status"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取供应商列表失败: "+err.Error())
		return
	}
	Success(c, listResult(items, total, page, pageSize))
}

// GetSupplier 供应商详情
// GET /api/v1/erp/suppliers/:id
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	supplier, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "供应商不存在")
		return
	}
	Success(c, supplier)
}

// CreateSupplier 创建供应商
// POST /api/v1/erp/suppliers
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req service.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	supplier, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		BadRequest(c, "创建供应商失败: "+err.Error())
		return
	}
	Created(c, supplier)
}

// UpdateSupplier 更新供应商
// PUT /api/v1/erp/suppliers/:id
func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	var req service.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	supplier, err := h.svc.Update(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "供应商不存在")
			return
		}
		BadRequest(c, "更新供应商失败: "+err.Error())
		return
	}
	Success(c, supplier)
}

// DeleteSupplier 删除供应商
// DELETE /api/v1/erp/suppliers/:id
func (h *SupplierHandler) DeleteSupplier(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		InternalError(c, "删除供应商失败: "+err.Error())
		return
	}
	Success(c, nil)
}

// ListLinks 供货关系列表
// GET /api/v1/erp/suppliers/:id/parts
func (h *SupplierHandler) ListLinks(c *gin.Context) {
	links, err := h.svc.ListLinks(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, "获取供货关系失败: "+err.Error())
		return
	}
	Success(c, gin.H{"items": links})
}

// CreateLink 创建供货关系
// POST /api/v1/erp/suppliers/:id/parts
func (h *SupplierHandler) CreateLink(c *gin.Context) {
	var req service.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	link, err := h.svc.CreateLink(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "供应商或零件不存在")
			return
		}
		BadRequest(c, "创建供货关系失败: "+err.Error())
		return
	}
	Created(c, link)
}

// UpdateLink 更新供货关系
// PUT /api/v1/erp/supplier-parts/:linkId
func (h *SupplierHandler) UpdateLink(c *gin.Context) {
	var req service.UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	link, err := h.svc.UpdateLink(c.Request.Context(), c.Param("linkId"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "供货关系不存在")
			return
		}
		BadRequest(c, "更新供货关系失败: "+err.Error())
		return
	}
	Success(c, link)
}

// DeleteLink 删除供货关系
// DELETE /api/v1/erp/supplier-parts/:linkId
func (h *SupplierHandler) DeleteLink(c *gin.Context) {
	if err := h.svc.DeleteLink(c.Request.Context(), c.Param("linkId")); err != nil {
		InternalError(c, "删除供货关系失败: "+err.Error())
		return
	}
	Success(c, nil)
}
