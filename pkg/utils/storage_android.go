//go:build android

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// settingsDirName gdata 在应用数据目录下使用的子目录
const settingsDirName = "settings"

// EnsureStorageDir 确保 /data/data/{package}/settings 存在且可写
//
// gdata 在 Android 上不会预先创建子目录，需要在 gdata.Open 之前调用。
func EnsureStorageDir() error {
	base := GetStoragePath()
	if base == "" {
		return fmt.Errorf("cannot detect Android package name")
	}

	dir := filepath.Join(base, settingsDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory %s: %w", dir, err)
	}

	marker := filepath.Join(dir, ".writable")
	if err := os.WriteFile(marker, nil, 0644); err != nil {
		return fmt.Errorf("settings directory %s is not writable: %w", dir, err)
	}
	return os.Remove(marker)
}

// GetStoragePath 返回应用数据目录，包名取自 /proc/self/cmdline
func GetStoragePath() string {
	data, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return ""
	}
	pkg := strings.TrimSpace(strings.ReplaceAll(string(data), "\x00", ""))
	if pkg == "" {
		return ""
	}
	return filepath.Join("/data/data", pkg)
}
