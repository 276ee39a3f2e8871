package game

import (
	"fmt"
	"log"
	"time"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// ViewerSettings 查看器的本地偏好设置
// 注意：当前页码不属于设置，每次启动都从第一页开始
type ViewerSettings struct {
	// DurationMs 覆盖配置文件中的动画时长，0 表示不覆盖
	DurationMs int `yaml:"durationMs"`
	// CornerSize 覆盖配置文件中的角区大小，0 表示不覆盖
	CornerSize float64 `yaml:"cornerSize"`

	ShowDebug  bool `yaml:"showDebug"`  // 是否显示角区与折痕
	Fullscreen bool `yaml:"fullscreen"` // 启动时是否全屏
}

// DefaultSettings 返回默认设置
func DefaultSettings() *ViewerSettings {
	return &ViewerSettings{}
}

// Duration 覆盖的动画时长，未覆盖时返回 0
func (s *ViewerSettings) Duration() time.Duration {
	if s.DurationMs <= 0 {
		return 0
	}
	return time.Duration(s.DurationMs) * time.Millisecond
}

// SettingsManager 设置管理器
// 负责查看器设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // 可为 nil（降级模式，仅内存设置）
	settings     *ViewerSettings
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "viewer"
)

// NewSettingsManager 创建设置管理器
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式）
//
// 加载失败不是致命错误，会回退到默认设置并记录日志。
func NewSettingsManager(gdataManager *gdata.Manager) *SettingsManager {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}
	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}
	return sm
}

// Load 从 gdata 加载设置
// gdataManager 为 nil 或数据不存在时使用默认设置
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil || !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	var loaded ViewerSettings
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	if loaded.DurationMs < 0 {
		loaded.DurationMs = 0
	}
	if !(loaded.CornerSize > 0) {
		loaded.CornerSize = 0
	}

	sm.settings = &loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
// 降级模式下直接返回 nil
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *ViewerSettings {
	return sm.settings
}

// SetShowDebug 设置调试显示（需调用 Save 持久化）
func (sm *SettingsManager) SetShowDebug(enabled bool) {
	sm.settings.ShowDebug = enabled
}

// SetFullscreen 设置全屏（需调用 Save 持久化）
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

// SetDuration 覆盖动画时长，<= 0 表示取消覆盖
func (sm *SettingsManager) SetDuration(d time.Duration) {
	if d <= 0 {
		sm.settings.DurationMs = 0
		return
	}
	sm.settings.DurationMs = int(d / time.Millisecond)
}

// SetCornerSize 覆盖角区大小，<= 0 表示取消覆盖
func (sm *SettingsManager) SetCornerSize(size float64) {
	if !(size > 0) {
		size = 0
	}
	sm.settings.CornerSize = size
}
