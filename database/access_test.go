package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	oldDB := DB
	DB = gormDB
	return mock, func() {
		DB = oldDB
		sqlDB.Close()
	}
}

// 服务级凭证绕过所有归属校验，不发查询
func TestAccess_Elevated(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	acc := Elevated()
	assert.Equal(t, uint(0), acc.UserID())

	owns, err := acc.OwnsBusiness("biz-1")
	require.NoError(t, err)
	assert.True(t, owns)

	owns, err = acc.OwnsMenu("menu-1")
	require.NoError(t, err)
	assert.True(t, owns)

	_, err = acc.BusinessForUser()
	assert.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccess_OwnsBusiness(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count(.+) FROM `businesses`").
		WithArgs("biz-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT count(.+) FROM `businesses`").
		WithArgs("biz-other", 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	acc := ForUser(1)

	owns, err := acc.OwnsBusiness("biz-1")
	require.NoError(t, err)
	assert.True(t, owns)

	owns, err = acc.OwnsBusiness("biz-other")
	require.NoError(t, err)
	assert.False(t, owns)

	require.NoError(t, mock.ExpectationsWereMet())
}

// 菜单归属沿商家归属链校验
func TestAccess_OwnsMenu(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count(.+) FROM `menus` JOIN businesses").
		WithArgs("menu-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	owns, err := ForUser(1).OwnsMenu("menu-1")
	require.NoError(t, err)
	assert.True(t, owns)
	require.NoError(t, mock.ExpectationsWereMet())
}

// 分类归属：分类 → 排序索引 → 菜单 → 商家
func TestAccess_OwnsCategory(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count(.+) FROM `menu_category_sort_indexes` JOIN menus").
		WithArgs("cat-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	owns, err := ForUser(1).OwnsCategory("cat-1")
	require.NoError(t, err)
	assert.False(t, owns)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccess_BusinessForUser(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `businesses`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "created_at", "updated_at"}).
			AddRow("biz-1", 1, "小面馆", now, now))

	business, err := ForUser(1).BusinessForUser()
	require.NoError(t, err)
	require.NotNil(t, business)
	assert.Equal(t, "biz-1", business.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

// 尚未创建商家返回 (nil, nil) 而不是错误
func TestAccess_BusinessForUser_None(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `businesses`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	business, err := ForUser(1).BusinessForUser()
	require.NoError(t, err)
	assert.Nil(t, business)
	require.NoError(t, mock.ExpectationsWereMet())
}
