//go:build !mobile

package utils

import "os"

// IsMobile 桌面端编译时返回 false
// 设置 FLIPBOOK_MOBILE_EMULATE=1 可在桌面上预览移动端的 HUD
func IsMobile() bool {
	return os.Getenv("FLIPBOOK_MOBILE_EMULATE") == "1"
}
