package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/boatyard/internal/erp/planner"
	"github.com/bitfantasy/boatyard/internal/erp/repository"
	"github.com/minio/minio-go/v7"
	"github.com/xuri/excelize/v2"
)

// ExportService 报表导出：需求计算结果和采购订单导出为xlsx，可选上传MinIO归档
type ExportService struct {
	poRepo      *repository.PORepository
	minioClient *minio.Client
	bucket      string
}

func NewExportService(poRepo *repository.PORepository, minioClient *minio.Client, bucket string) *ExportService {
	return &ExportService{poRepo: poRepo, minioClient: minioClient, bucket: bucket}
}

var requirementsHeaders = []string{
	"零件号", "零件名称", "毛需求", "库存", "净需求",
	"最早需求日", "最晚需求日", "单价", "金额",
}

var supplierPlanHeaders = []string{
	"供应商", "零件号", "零件名称", "下单日", "数量",
	"单价", "金额", "交期(天)", "need-by", "产能拆单",
}

// ExportAnalysis 导出需求计算结果：需求明细 + 供应商下单计划 + 未匹配零件
func (s *ExportService) ExportAnalysis(result *AnalysisResult) (*excelize.File, string, error) {
	analysis := result.Analysis
	f := excelize.NewFile()

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	// 需求明细
	sheet := "需求明细"
	f.SetSheetName("Sheet1", sheet)
	writeHeaders(f, sheet, requirementsHeaders, boldStyle)
	for i, p := range analysis.Parts {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), p.PartNumber)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), p.PartName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), p.TotalQuantityNeeded)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), p.CurrentStock)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), p.NetQuantityNeeded)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), planner.FormatDate(p.EarliestNeedDate))
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), planner.FormatDate(p.LatestNeedDate))
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), p.UnitCost.InexactFloat64())
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), p.TotalCost.InexactFloat64())
	}

	// 供应商下单计划
	planSheet := "供应商计划"
	f.NewSheet(planSheet)
	writeHeaders(f, planSheet, supplierPlanHeaders, boldStyle)
	row := 2
	for _, sup := range analysis.Suppliers {
		for _, plan := range sup.Parts {
			for _, order := range plan.Orders {
				f.SetCellValue(planSheet, fmt.Sprintf("A%d", row), sup.SupplierName)
				f.SetCellValue(planSheet, fmt.Sprintf("B%d", row), plan.PartNumber)
				f.SetCellValue(planSheet, fmt.Sprintf("C%d", row), plan.PartName)
				f.SetCellValue(planSheet, fmt.Sprintf("D%d", row), planner.FormatDate(order.OrderDate))
				f.SetCellValue(planSheet, fmt.Sprintf("E%d", row), order.Quantity)
				f.SetCellValue(planSheet, fmt.Sprintf("F%d", row), order.UnitPrice.InexactFloat64())
				f.SetCellValue(planSheet, fmt.Sprintf("G%d", row), order.LineTotal.InexactFloat64())
				f.SetCellValue(planSheet, fmt.Sprintf("H%d", row), plan.LeadTimeDays)
				f.SetCellValue(planSheet, fmt.Sprintf("I%d", row), planner.FormatDate(order.RequiredByDate))
				split := "否"
				if plan.CapacitySplit {
					split = "是"
				}
				f.SetCellValue(planSheet, fmt.Sprintf("J%d", row), split)
				row++
			}
		}
	}

	// 未匹配零件
	if len(analysis.UnmatchedParts) > 0 {
		unmatchedSheet := "未匹配零件"
		f.NewSheet(unmatchedSheet)
		writeHeaders(f, unmatchedSheet, []string{"零件", "名称", "净需求"}, boldStyle)
		for i, u := range analysis.UnmatchedParts {
			r := i + 2
			f.SetCellValue(unmatchedSheet, fmt.Sprintf("A%d", r), u.PartID)
			f.SetCellValue(unmatchedSheet, fmt.Sprintf("B%d", r), u.PartName)
			f.SetCellValue(unmatchedSheet, fmt.Sprintf("C%d", r), u.NetQuantity)
		}
	}

	filename := fmt.Sprintf("requirements_%s.xlsx", result.RunCode)
	return f, filename, nil
}

var poExportHeaders = []string{
	"PO编号", "供应商", "下单日", "交付期限", "状态",
	"零件号", "零件名称", "数量", "单价", "小计", "关联船只",
}

// ExportPOs 导出采购订单（按过滤条件，逐行项展开）
func (s *ExportService) ExportPOs(ctx context.Context, filters map[string]string) (*excelize.File, string, error) {
	pos, _, err := s.poRepo.FindAll(ctx, 1, 10000, filters)
	if err != nil {
		return nil, "", fmt.Errorf("查询采购订单失败: %w", err)
	}

	f := excelize.NewFile()
	sheet := "采购订单"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	writeHeaders(f, sheet, poExportHeaders, boldStyle)

	row := 2
	var total float64
	for _, po := range pos {
		supplierName := ""
		if po.Supplier != nil {
			supplierName = po.Supplier.Name
		}
		for _, line := range po.Lines {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), po.PONumber)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), supplierName)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), planner.FormatDate(po.OrderDate))
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), planner.FormatDate(po.RequiredByDate))
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), po.Status)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), line.PartNumber)
			f.SetCellValue(sheet, fmt.Sprintf("G%d", row), line.PartName)
			f.SetCellValue(sheet, fmt.Sprintf("H%d", row), line.Quantity)
			f.SetCellValue(sheet, fmt.Sprintf("I%d", row), line.UnitPrice)
			f.SetCellValue(sheet, fmt.Sprintf("J%d", row), line.LineTotal)
			f.SetCellValue(sheet, fmt.Sprintf("K%d", row), line.LinkedBoatIDs)
			total += line.LineTotal
			row++
		}
	}

	summaryStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "汇总")
	f.SetCellValue(sheet, fmt.Sprintf("J%d", row), total)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("K%d", row), summaryStyle)

	filename := fmt.Sprintf("purchase_orders_%s.xlsx", time.Now().Format("20060102"))
	return f, filename, nil
}

// Archive 上传导出文件到MinIO归档，返回对象路径。未配置MinIO时跳过
func (s *ExportService) Archive(ctx context.Context, f *excelize.File, filename string) (string, error) {
	if s.minioClient == nil {
		return "", nil
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return "", fmt.Errorf("序列化xlsx失败: %w", err)
	}

	objectName := fmt.Sprintf("exports/%s/%s", time.Now().Format("2006/01/02"), filename)
	_, err := s.minioClient.PutObject(ctx, s.bucket, objectName, &buf, int64(buf.Len()), minio.PutObjectOptions{
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	})
	if err != nil {
		return "", fmt.Errorf("上传归档失败: %w", err)
	}
	return objectName, nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string, style int) {
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, style)
	}
}
