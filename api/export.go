package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"

	"menunook/database"
	"menunook/middleware"
	"menunook/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 菜单导出
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// fetchMenuForExport 校验归属后组装完整菜单
func (h *ExportHandler) fetchMenuForExport(c *gin.Context) *service.MenuView {
	menuID := c.Param("id")

	acc := database.ForUser(middleware.GetCurrentUserID(c))
	owns, err := acc.OwnsMenu(menuID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询菜单失败"))
		return nil
	}
	if !owns {
		NotFound(c, "菜单不存在")
		return nil
	}

	view, err := service.FetchMenuWithCategories(acc.DB(), menuID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询菜单失败"))
		return nil
	}
	if view == nil {
		NotFound(c, "菜单不存在")
		return nil
	}
	return view
}

// ExportCSV 导出菜单为 CSV
// @Summary 导出菜单为 CSV
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param id path string true "菜单ID"
// @Success 200 {file} file "CSV 文件"
// @Failure 404 {object} Response "菜单不存在"
// @Router /api/v1/menus/{id}/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	view := h.fetchMenuForExport(c)
	if view == nil {
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)

	headers := []string{"分类", "菜品", "描述", "价格"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	for _, category := range view.MenuCategories {
		for _, item := range category.Items {
			row := []string{
				category.Name,
				item.Name,
				item.Description,
				fmt.Sprintf("%.2f", item.Price),
			}
			if err := writer.Write(row); err != nil {
				InternalError(c, "生成 CSV 失败")
				return
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("menu_%s.csv", view.ID)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportExcel 导出菜单为 Excel，每个分类一个工作表
// @Summary 导出菜单为 Excel
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param id path string true "菜单ID"
// @Success 200 {file} file "Excel 文件"
// @Failure 404 {object} Response "菜单不存在"
// @Router /api/v1/menus/{id}/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	view := h.fetchMenuForExport(c)
	if view == nil {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, category := range view.MenuCategories {
		sheet := fmt.Sprintf("%d-%s", i+1, category.Name)
		// 工作表名称最长 31 个字符
		if len([]rune(sheet)) > 31 {
			sheet = string([]rune(sheet)[:31])
		}
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				InternalError(c, "生成 Excel 失败")
				return
			}
		}

		f.SetCellValue(sheet, "A1", "菜品")
		f.SetCellValue(sheet, "B1", "描述")
		f.SetCellValue(sheet, "C1", "价格")
		for row, item := range category.Items {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row+2), item.Name)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row+2), item.Description)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row+2), item.Price)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}

	filename := fmt.Sprintf("menu_%s.xlsx", view.ID)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
