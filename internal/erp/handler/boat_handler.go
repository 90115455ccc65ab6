package handler

import (
	"errors"

	"github.com/bitfantasy/boatyard/internal/erp/repository"
	"github.com/bitfantasy/boatyard/internal/erp/service"
	"github.com/gin-gonic/gin"
)

// BoatHandler 船型与排产船只处理器
type BoatHandler struct {
	svc *service.BoatService
}

func NewBoatHandler(svc *service.BoatService) *BoatHandler {
	return &BoatHandler{svc: svc}
}

// ListBoatTypes 船型列表
// GET /api/v1/erp/boat-types?search=xxx&is_active=true
func (h *BoatHandler) ListBoatTypes(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"search":    c.Query("search"),
		"is_active": c.Query("is_active"),
	}

	items, total, err := h.svc.ListTypes(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取船型列表失败: "+err.Error())
		return
	}
	Success(c, listResult(items, total, page, pageSize))
}

// GetBoatType 船型详情
// GET /api/v1/erp/boat-types/:id
func (h *BoatHandler) GetBoatType(c *gin.Context) {
	bt, err := h.svc.GetType(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "船型不存在")
		return
	}
	Success(c, bt)
}

// CreateBoatType 创建船型
// POST /api/v1/erp/boat-types
func (h *BoatHandler) CreateBoatType(c *gin.Context) {
	var req service.CreateBoatTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	bt, err := h.svc.CreateType(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		BadRequest(c, "创建船型失败: "+err.Error())
		return
	}
	Created(c, bt)
}

// UpdateBoatType 更新船型
// PUT /api/v1/erp/boat-types/:id
func (h *BoatHandler) UpdateBoatType(c *gin.Context) {
	var req service.UpdateBoatTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	bt, err := h.svc.UpdateType(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "船型不存在")
			return
		}
		BadRequest(c, "更新船型失败: "+err.Error())
		return
	}
	Success(c, bt)
}

// DeleteBoatType 删除船型
// DELETE /api/v1/erp/boat-types/:id
func (h *BoatHandler) DeleteBoatType(c *gin.Context) {
	if err := h.svc.DeleteType(c.Request.Context(), c.Param("id")); err != nil {
		Conflict(c, "删除船型失败: "+err.Error())
		return
	}
	Success(c, nil)
}

// ListBoats 排产船只列表
// GET /api/v1/erp/boats?boat_type_id=xxx&status=xxx&search=xxx
func (h *BoatHandler) ListBoats(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"boat_type_id": c.Query("boat_type_id"),
		"status":       c.Query("status"),
		"search":       c.Query("search"),
	}

	items, total, err := h.svc.ListBoats(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取船只列表失败: "+err.Error())
		return
	}
	Success(c, listResult(items, total, page, pageSize))
}

// GetBoat 船只详情
// GET /api/v1/erp/boats/:id
func (h *BoatHandler) GetBoat(c *gin.Context) {
	boat, err := h.svc.GetBoat(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "船只不存在")
		return
	}
	Success(c, boat)
}

// CreateBoat 创建排产船只
// POST /api/v1/erp/boats
func (h *BoatHandler) CreateBoat(c *gin.Context) {
	var req service.CreateBoatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	boat, err := h.svc.CreateBoat(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		BadRequest(c, "创建船只失败: "+err.Error())
		return
	}
	Created(c, boat)
}

// UpdateBoat 更新排产船只
// PUT /api/v1/erp/boats/:id
func (h *BoatHandler) UpdateBoat(c *gin.Context) {
	var req service.UpdateBoatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	boat, err := h.svc.UpdateBoat(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "船只不存在")
			return
		}
		BadRequest(c, "更新船只失败: "+err.Error())
		return
	}
	Success(c, boat)
}

// DeleteBoat 删除排产船只
// DELETE /api/v1/erp/boats/:id
func (h *BoatHandler) DeleteBoat(c *gin.Context) {
	if err := h.svc.DeleteBoat(c.Request.Context(), c.Param("id")); err != nil {
		InternalError(c, "删除船只失败: "+err.Error())
		return
	}
	Success(c, nil)
}
