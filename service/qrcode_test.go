package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicMenuURL(t *testing.T) {
	assert.Equal(t, "https://menunook.com/menu/menu-1", PublicMenuURL("https://menunook.com", "menu-1"))
	// 末尾斜杠不产生双斜杠
	assert.Equal(t, "https://menunook.com/menu/menu-1", PublicMenuURL("https://menunook.com/", "menu-1"))
}

func TestGenerateQRFilePath(t *testing.T) {
	path := GenerateQRFilePath("biz-1", "menu-1")
	assert.Regexp(t, `^restaurants/biz-1/qr_menu-1-\d+\.png$`, path)
}

// 路径带毫秒时间戳，重复生成不会覆盖已有对象
func TestGenerateQRFilePath_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		seen[GenerateQRFilePath("biz-1", "menu-1")] = true
		time.Sleep(2 * time.Millisecond)
	}
	assert.Len(t, seen, 3)
}

func TestRenderMenuQRCode(t *testing.T) {
	png, err := RenderMenuQRCode("https://menunook.com", "menu-1")
	require.NoError(t, err)
	// PNG 文件头
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
