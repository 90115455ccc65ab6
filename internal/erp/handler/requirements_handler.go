package handler

import (
	"errors"

	"github.com/bitfantasy/boatyard/internal/erp/planner"
	"github.com/bitfantasy/boatyard/internal/erp/repository"
	"github.com/bitfantasy/boatyard/internal/erp/service"
	"github.com/gin-gonic/gin"
)

// RequirementsHandler 需求计算处理器
type RequirementsHandler struct {
	svc       *service.RequirementsService
	exportSvc *service.ExportService
}

func NewRequirementsHandler(svc *service.RequirementsService, exportSvc *service.ExportService) *RequirementsHandler {
	return &RequirementsHandler{svc: svc, exportSvc: exportSvc}
}

// Calculate 执行需求计算
// POST /api/v1/erp/requirements/calculate
func (h *RequirementsHandler) Calculate(c *gin.Context) {
	var req service.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.svc.Calculate(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		var bomErr *planner.MalformedBOMError
		switch {
		case errors.Is(err, planner.ErrNoDemand):
			BadRequest(c, "窗口内没有待生产的船只")
		case errors.As(err, &bomErr):
			BadRequest(c, "BOM数据不合法: "+err.Error())
		default:
			InternalError(c, "需求计算失败: "+err.Error())
		}
		return
	}
	Success(c, result)
}

// Latest 最近一次计算结果
// GET /api/v1/erp/requirements/latest
func (h *RequirementsHandler) Latest(c *gin.Context) {
	result, err := h.svc.Latest(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoAnalysis) {
			NotFound(c, "还没有可用的计算结果，请先执行需求计算")
			return
		}
		InternalError(c, "获取计算结果失败: "+err.Error())
		return
	}
	Success(c, result)
}

// ByRun 按运行ID取计算结果
// GET /api/v1/erp/requirements/runs/:id/analysis
func (h *RequirementsHandler) ByRun(c *gin.Context) {
	result, err := h.svc.ByRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNoAnalysis) {
			NotFound(c, "该运行的计算结果已过期，请重新计算")
			return
		}
		InternalError(c, "获取计算结果失败: "+err.Error())
		return
	}
	Success(c, result)
}

// ListRuns 运行历史
// GET /api/v1/erp/requirements/runs
func (h *RequirementsHandler) ListRuns(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListRuns(c.Request.Context(), page, pageSize)
	if err != nil {
		InternalError(c, "获取运行历史失败: "+err.Error())
		return
	}
	Success(c, listResult(items, total, page, pageSize))
}

// GetRun 运行记录详情
// GET /api/v1/erp/requirements/runs/:id
func (h *RequirementsHandler) GetRun(c *gin.Context) {
	run, err := h.svc.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "运行记录不存在")
			return
		}
		InternalError(c, "获取运行记录失败: "+err.Error())
		return
	}
	Success(c, run)
}

// Export 导出最近一次计算结果为xlsx
// GET /api/v1/erp/requirements/export?run_id=xxx
func (h *RequirementsHandler) Export(c *gin.Context) {
	var result *service.AnalysisResult
	var err error
	if runID := c.Query("run_id"); runID != "" {
		result, err = h.svc.ByRun(c.Request.Context(), runID)
	} else {
		result, err = h.svc.Latest(c.Request.Context())
	}
	if err != nil {
		NotFound(c, "没有可导出的计算结果")
		return
	}

	f, filename, err := h.exportSvc.ExportAnalysis(result)
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
