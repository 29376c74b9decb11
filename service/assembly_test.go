package service

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock, func() { sqlDB.Close() }
}

func TestFetchMenuWithCategories_MissingMenuReturnsNil(t *testing.T) {
	db, mock, cleanup := newMockGorm(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `menus`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	view, err := FetchMenuWithCategories(db, "missing-menu")
	require.NoError(t, err)
	assert.Nil(t, view)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchMenuWithCategories_EmptyMenu(t *testing.T) {
	db, mock, cleanup := newMockGorm(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `menus`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "business_id", "name", "created_at", "updated_at"}).
			AddRow("menu-1", "biz-1", "午市菜单", now, now))
	mock.ExpectQuery("SELECT .* FROM `businesses`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "created_at", "updated_at"}).
			AddRow("biz-1", 1, "小面馆", now, now))
	mock.ExpectQuery("SELECT .* FROM `menu_category_sort_indexes`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	view, err := FetchMenuWithCategories(db, "menu-1")
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "午市菜单", view.Name)
	assert.Equal(t, "小面馆", view.Business.Name)
	// 没有分类时返回空数组而不是 null
	assert.NotNil(t, view.MenuCategories)
	assert.Empty(t, view.MenuCategories)
	require.NoError(t, mock.ExpectationsWereMet())
}

// 分类与菜品都按 order_index 升序，排序值允许不连续；
// 缺失菜品索引行时排序值回退为 0
func TestFetchMenuWithCategories_SortsByOrderIndex(t *testing.T) {
	db, mock, cleanup := newMockGorm(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `menus`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "business_id", "name", "created_at", "updated_at"}).
			AddRow("menu-1", "biz-1", "午市菜单", now, now))
	mock.ExpectQuery("SELECT .* FROM `businesses`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "created_at", "updated_at"}).
			AddRow("biz-1", 1, "小面馆", now, now))
	mock.ExpectQuery("SELECT .* FROM `menu_category_sort_indexes`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "menu_id", "category_id", "order_index"}).
			AddRow("idx-1", "menu-1", "cat-a", 20).
			AddRow("idx-2", "menu-1", "cat-b", 3))
	mock.ExpectQuery("SELECT .* FROM `menu_categories`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}).
			AddRow("cat-a", "主食", "").
			AddRow("cat-b", "饮品", ""))
	mock.ExpectQuery("SELECT .* FROM `menu_category_items`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_id", "name", "price"}).
			AddRow("item-1", "cat-a", "牛肉面", 28.0).
			AddRow("item-2", "cat-a", "阳春面", 15.0).
			AddRow("item-3", "cat-b", "柠檬茶", 12.0))
	mock.ExpectQuery("SELECT .* FROM `menu_category_item_sort_indexes`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_id", "item_id", "order_index"}).
			AddRow("iidx-1", "cat-a", "item-1", 9))

	view, err := FetchMenuWithCategories(db, "menu-1")
	require.NoError(t, err)
	require.NotNil(t, view)
	require.Len(t, view.MenuCategories, 2)

	assert.Equal(t, "饮品", view.MenuCategories[0].Name)
	assert.Equal(t, 3, view.MenuCategories[0].OrderIndex)
	assert.Equal(t, "主食", view.MenuCategories[1].Name)
	assert.Equal(t, 20, view.MenuCategories[1].OrderIndex)

	staples := view.MenuCategories[1].Items
	require.Len(t, staples, 2)
	// item-2 没有索引行，回退为 0，排在 item-1(9) 前
	assert.Equal(t, "阳春面", staples[0].Name)
	assert.Equal(t, 0, staples[0].OrderIndex)
	assert.Equal(t, "牛肉面", staples[1].Name)
	assert.Equal(t, 9, staples[1].OrderIndex)

	require.NoError(t, mock.ExpectationsWereMet())
}

// 索引行指向的分类不存在时跳过该行，不中断整个读取
func TestFetchMenuWithCategories_SkipsDanglingIndexRows(t *testing.T) {
	db, mock, cleanup := newMockGorm(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `menus`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "business_id", "name", "created_at", "updated_at"}).
			AddRow("menu-1", "biz-1", "午市菜单", now, now))
	mock.ExpectQuery("SELECT .* FROM `businesses`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "created_at", "updated_at"}).
			AddRow("biz-1", 1, "小面馆", now, now))
	mock.ExpectQuery("SELECT .* FROM `menu_category_sort_indexes`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "menu_id", "category_id", "order_index"}).
			AddRow("idx-1", "menu-1", "cat-a", 0).
			AddRow("idx-2", "menu-1", "cat-gone", 1))
	mock.ExpectQuery("SELECT .* FROM `menu_categories`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}).
			AddRow("cat-a", "主食", ""))
	mock.ExpectQuery("SELECT .* FROM `menu_category_items`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	view, err := FetchMenuWithCategories(db, "menu-1")
	require.NoError(t, err)
	require.NotNil(t, view)
	require.Len(t, view.MenuCategories, 1)
	assert.Equal(t, "主食", view.MenuCategories[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

// 排序值相同的分类保持原有到达顺序
func TestSortedByOrderIndex_StableOnTies(t *testing.T) {
	type entry struct {
		name  string
		index int
	}
	list := []entry{
		{"甲", 1},
		{"乙", 0},
		{"丙", 1},
		{"丁", 0},
	}
	sortedByOrderIndex(list, func(e entry) int { return e.index })

	names := []string{list[0].name, list[1].name, list[2].name, list[3].name}
	assert.Equal(t, []string{"乙", "丁", "甲", "丙"}, names)
}
