package service

import (
	"errors"
	"fmt"
	"sort"

	"menunook/models"

	"gorm.io/gorm"
)

// ItemView 菜品视图：菜品字段平铺后附带解析出的 order_index
type ItemView struct {
	models.MenuCategoryItem
	OrderIndex int `json:"order_index"`
}

// CategoryView 分类视图：分类字段平铺后附带排序值和排好序的菜品
type CategoryView struct {
	models.MenuCategory
	OrderIndex int        `json:"order_index"`
	Items      []ItemView `json:"items"`
}

// MenuView 完整的菜单视图：菜单 + 商家 + 按序嵌套的分类与菜品
type MenuView struct {
	models.Menu
	Business       models.Business `json:"business"`
	MenuCategories []CategoryView  `json:"menu_categories"`
}

// sortedByOrderIndex 按解析后的排序值升序稳定排序。
// 稳定排序保证排序值相同（或都缺省为 0）时保持原有到达顺序。
// 分类层和菜品层共用同一个实现。
func sortedByOrderIndex[T any](list []T, orderIndex func(T) int) []T {
	sort.SliceStable(list, func(i, j int) bool {
		return orderIndex(list[i]) < orderIndex(list[j])
	})
	return list
}

// FetchMenuWithCategories 组装菜单读取路径。
// 菜单不存在时返回 (nil, nil)，属于正常的空结果而非错误。
// 访问凭证由调用方决定：传入服务级或请求级句柄均可，组装逻辑本身不区分。
func FetchMenuWithCategories(db *gorm.DB, menuID string) (*MenuView, error) {
	// 1. 菜单及其所属商家
	var menu models.Menu
	if err := db.Where("id = ?", menuID).First(&menu).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询菜单失败: %w", err)
	}

	var business models.Business
	if err := db.Where("id = ?", menu.BusinessID).First(&business).Error; err != nil {
		return nil, fmt.Errorf("查询商家失败: %w", err)
	}

	// 2. 菜单范围内的分类排序索引行，按 order_index 升序
	var indexRows []models.MenuCategorySortIndex
	if err := db.Where("menu_id = ?", menuID).
		Order("order_index ASC, id ASC").
		Find(&indexRows).Error; err != nil {
		return nil, fmt.Errorf("查询分类排序索引失败: %w", err)
	}

	view := &MenuView{
		Menu:           menu,
		Business:       business,
		MenuCategories: []CategoryView{},
	}
	if len(indexRows) == 0 {
		return view, nil
	}

	categoryIDs := make([]string, 0, len(indexRows))
	for _, row := range indexRows {
		categoryIDs = append(categoryIDs, row.CategoryID)
	}

	// 3. 分类、菜品、菜品排序索引，逐层取回后在内存中拼装
	var categories []models.MenuCategory
	if err := db.Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("查询分类失败: %w", err)
	}
	categoryByID := make(map[string]models.MenuCategory, len(categories))
	for _, cat := range categories {
		categoryByID[cat.ID] = cat
	}

	var items []models.MenuCategoryItem
	if err := db.Where("category_id IN ?", categoryIDs).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("查询菜品失败: %w", err)
	}
	itemsByCategory := make(map[string][]models.MenuCategoryItem)
	itemIDs := make([]string, 0, len(items))
	for _, item := range items {
		itemsByCategory[item.CategoryID] = append(itemsByCategory[item.CategoryID], item)
		itemIDs = append(itemIDs, item.ID)
	}

	orderIndexByItem := make(map[string]int)
	if len(itemIDs) > 0 {
		var itemIndexRows []models.MenuCategoryItemSortIndex
		if err := db.Where("item_id IN ?", itemIDs).Find(&itemIndexRows).Error; err != nil {
			return nil, fmt.Errorf("查询菜品排序索引失败: %w", err)
		}
		for _, row := range itemIndexRows {
			orderIndexByItem[row.ItemID] = row.OrderIndex
		}
	}

	// 4. 平铺：丢弃索引行包装，把排序值并入实体字段，逐层稳定排序
	for _, row := range indexRows {
		cat, ok := categoryByID[row.CategoryID]
		if !ok {
			// 索引行指向的分类不存在，跳过而不是中断整个读取
			continue
		}

		itemViews := make([]ItemView, 0, len(itemsByCategory[cat.ID]))
		for _, item := range itemsByCategory[cat.ID] {
			// 缺失索引行时排序值回退为 0
			itemViews = append(itemViews, ItemView{
				MenuCategoryItem: item,
				OrderIndex:       orderIndexByItem[item.ID],
			})
		}
		sortedByOrderIndex(itemViews, func(v ItemView) int { return v.OrderIndex })

		view.MenuCategories = append(view.MenuCategories, CategoryView{
			MenuCategory: cat,
			OrderIndex:   row.OrderIndex,
			Items:        itemViews,
		})
	}
	sortedByOrderIndex(view.MenuCategories, func(v CategoryView) int { return v.OrderIndex })

	return view, nil
}
