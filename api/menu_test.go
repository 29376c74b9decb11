package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStorage 测试用对象存储，可注入上传失败
type fakeStorage struct {
	uploadErr error
	uploaded  []string
}

func (f *fakeStorage) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploaded = append(f.uploaded, path)
	return nil
}

func (f *fakeStorage) PublicURL(path string) string {
	return "https://cdn.example.com/" + path
}

func TestMenuHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 商家归属校验
	mock.ExpectQuery("SELECT count(.+) FROM `businesses`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	// 菜单数量上限校验
	mock.ExpectQuery("SELECT count(.+) FROM `menus`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	// 写入菜单行
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `menus`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	// 写入二维码记录
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `menu_qr_codes`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	storage := &fakeStorage{}
	router := gin.New()
	router.POST("/menus", setUserIDMiddleware(1), NewMenuHandler(testConfig(), storage).Create)

	body := `{"name":"午市菜单","business_id":"11111111-1111-1111-1111-111111111111","base_url":"https://menunook.com"}`
	req := httptest.NewRequest("POST", "/menus", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])
	require.Len(t, storage.uploaded, 1)
	assert.Regexp(t, `^restaurants/11111111-1111-1111-1111-111111111111/qr_.+\.png$`, storage.uploaded[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

// 上传失败时已写入的菜单行必须被补偿删除，不留孤儿菜单
func TestMenuHandler_Create_UploadFailureRollsBack(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count(.+) FROM `businesses`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT count(.+) FROM `menus`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `menus`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	// 补偿删除菜单行
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `menus`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	storage := &fakeStorage{uploadErr: errors.New("对象存储不可用")}
	router := gin.New()
	router.POST("/menus", setUserIDMiddleware(1), NewMenuHandler(testConfig(), storage).Create)

	body := `{"name":"午市菜单","business_id":"11111111-1111-1111-1111-111111111111","base_url":"https://menunook.com"}`
	req := httptest.NewRequest("POST", "/menus", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 500, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuHandler_Create_MenuLimitReached(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count(.+) FROM `businesses`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT count(.+) FROM `menus`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	router := gin.New()
	router.POST("/menus", setUserIDMiddleware(1), NewMenuHandler(testConfig(), &fakeStorage{}).Create)

	body := `{"name":"晚市菜单","business_id":"11111111-1111-1111-1111-111111111111","base_url":"https://menunook.com"}`
	req := httptest.NewRequest("POST", "/menus", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "已达到菜单数量上限", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

// 公开菜单按排序索引组装：分类、菜品均按 order_index 升序，
// 排序值允许不连续，缺失菜品索引行时回退为 0
func TestMenuHandler_GetPublic_AssemblesSortedView(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	menuID := "aaaaaaaa-0000-0000-0000-000000000001"
	businessID := "bbbbbbbb-0000-0000-0000-000000000001"
	now := time.Now()

	mock.ExpectQuery("SELECT .* FROM `menus`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "business_id", "name", "created_at", "updated_at"}).
			AddRow(menuID, businessID, "午市菜单", now, now))
	mock.ExpectQuery("SELECT .* FROM `businesses`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "created_at", "updated_at"}).
			AddRow(businessID, 1, "小面馆", now, now))
	// 故意乱序返回，组装逻辑必须自己按 order_index 排
	mock.ExpectQuery("SELECT .* FROM `menu_category_sort_indexes`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "menu_id", "category_id", "order_index"}).
			AddRow("idx-1", menuID, "cat-a", 10).
			AddRow("idx-2", menuID, "cat-b", 2))
	mock.ExpectQuery("SELECT .* FROM `menu_categories`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}).
			AddRow("cat-a", "主食", "").
			AddRow("cat-b", "饮品", ""))
	mock.ExpectQuery("SELECT .* FROM `menu_category_items`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_id", "name", "price"}).
			AddRow("item-1", "cat-b", "柠檬茶", 12.0).
			AddRow("item-2", "cat-b", "酸梅汤", 8.0).
			AddRow("item-3", "cat-a", "牛肉面", 28.0))
	// item-2 没有索引行，排序值回退 0，排在 item-1(5) 前面
	mock.ExpectQuery("SELECT .* FROM `menu_category_item_sort_indexes`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_id", "item_id", "order_index"}).
			AddRow("iidx-1", "cat-b", "item-1", 5).
			AddRow("iidx-3", "cat-a", "item-3", 7))

	router := gin.New()
	router.GET("/public/menus/:id", NewMenuHandler(testConfig(), &fakeStorage{}).GetPublic)

	req := httptest.NewRequest("GET", "/public/menus/"+menuID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Data struct {
			MenuCategories []struct {
				Name       string `json:"name"`
				OrderIndex int    `json:"order_index"`
				Items      []struct {
					Name       string `json:"name"`
					OrderIndex int    `json:"order_index"`
				} `json:"items"`
			} `json:"menu_categories"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Len(t, resp.Data.MenuCategories, 2)
	assert.Equal(t, "饮品", resp.Data.MenuCategories[0].Name)
	assert.Equal(t, "主食", resp.Data.MenuCategories[1].Name)

	drinks := resp.Data.MenuCategories[0].Items
	require.Len(t, drinks, 2)
	assert.Equal(t, "酸梅汤", drinks[0].Name)
	assert.Equal(t, 0, drinks[0].OrderIndex)
	assert.Equal(t, "柠檬茶", drinks[1].Name)
	assert.Equal(t, 5, drinks[1].OrderIndex)

	require.NoError(t, mock.ExpectationsWereMet())
}

// 菜单不存在属于正常空结果，返回 200 且 data 为 null
func TestMenuHandler_GetPublic_MissingMenuReturnsNull(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `menus`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	router := gin.New()
	router.GET("/public/menus/:id", NewMenuHandler(testConfig(), &fakeStorage{}).GetPublic)

	req := httptest.NewRequest("GET", "/public/menus/aaaaaaaa-0000-0000-0000-000000000404", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	_, hasData := resp["data"]
	assert.True(t, hasData)
	assert.Nil(t, resp["data"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMenuHandler_Delete(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	menuID := "aaaaaaaa-0000-0000-0000-000000000001"
	now := time.Now()

	// 归属校验（菜单 → 商家归属链）
	mock.ExpectQuery("SELECT count(.+) FROM `menus`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT .* FROM `menus`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "business_id", "name", "created_at", "updated_at"}).
			AddRow(menuID, "bbb", "午市菜单", now, now))
	// 同一事务内：取出挂在菜单下的分类并显式删除，再删菜单
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `category_id` FROM `menu_category_sort_indexes`").
		WillReturnRows(sqlmock.NewRows([]string{"category_id"}).AddRow("cat-a").AddRow("cat-b"))
	mock.ExpectExec("DELETE FROM `menu_categories`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `menus`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.DELETE("/menus/:id", setUserIDMiddleware(1), NewMenuHandler(testConfig(), &fakeStorage{}).Delete)

	req := httptest.NewRequest("DELETE", "/menus/"+menuID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "删除成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, menuID, data["id"])
	require.NoError(t, mock.ExpectationsWereMet())
}
