package service

import (
	"fmt"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// qrImageSize 二维码图片边长（像素）
const qrImageSize = 400

// GenerateQRFilePath 生成二维码对象存储路径。
// 带毫秒时间戳后缀，同一菜单重复创建也不会覆盖已有对象。
func GenerateQRFilePath(businessID, menuID string) string {
	return fmt.Sprintf("restaurants/%s/qr_%s-%d.png", businessID, menuID, time.Now().UnixMilli())
}

// PublicMenuURL 公开菜单页地址，二维码编码的就是这个链接
func PublicMenuURL(baseURL, menuID string) string {
	return fmt.Sprintf("%s/menu/%s", strings.TrimRight(baseURL, "/"), menuID)
}

// RenderMenuQRCode 渲染指向公开菜单页的二维码 PNG
func RenderMenuQRCode(baseURL, menuID string) ([]byte, error) {
	png, err := qrcode.Encode(PublicMenuURL(baseURL, menuID), qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("渲染二维码失败: %w", err)
	}
	return png, nil
}
