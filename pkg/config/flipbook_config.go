package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// 默认值
const (
	DefaultPageWidth       = 400.0
	DefaultPageHeight      = 300.0
	DefaultCornerSize      = 100.0
	DefaultDurationMs      = 600
	DefaultQuickFlipMs     = 200
	DefaultLift            = 0.15
	DefaultMaxShadow       = 0.6
	DefaultPageColor       = "#FFF6A5"
	DefaultBackColor       = "#F2E88E"
	DefaultBackgroundColor = "#2E3440"
)

// DefaultEasing 默认缓动曲线（CSS ease-out）
var DefaultEasing = []float64{0, 0, 0.58, 1}

// FlipbookConfig 翻页组件配置
//
// 配置文件位置: data/flipbook.yaml
type FlipbookConfig struct {
	// Width/Height 页面像素尺寸
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`

	// CornerSize 右下角（以及镜像的左下角）触发区域的边长
	CornerSize float64 `yaml:"cornerSize"`

	// DurationMs 回弹动画时长（毫秒）
	DurationMs int `yaml:"durationMs"`

	// QuickFlipMs 按下时长低于此值视为快速翻页（毫秒）
	QuickFlipMs int `yaml:"quickFlipMs"`

	// Easing CSS cubic-bezier 控制点 [x1, y1, x2, y2]
	Easing []float64 `yaml:"easing"`

	// Lift 完成翻页时轨迹抬起的幅度（相对页面高度），0 为直线轨迹
	Lift float64 `yaml:"lift"`

	// MaxShadow 最大阴影强度 [0, 1]，0 为不画阴影
	MaxShadow float64 `yaml:"maxShadow"`

	// Background 窗口背景色
	Background string `yaml:"background"`

	// BackColor 页面背面颜色
	BackColor string `yaml:"backColor"`

	// DisableBackward 关闭左下角向后翻页
	DisableBackward bool `yaml:"disableBackward"`

	Pages []PageConfig `yaml:"pages"`
}

// PageConfig 单页内容
type PageConfig struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
	// Color 纸张颜色，#RRGGBB
	Color string `yaml:"color"`
	// Image 可选的页面图片（png/jpeg/tga），相对配置文件所在目录
	Image string `yaml:"image"`
}

// LoadFlipbookConfig 从 YAML 文件加载配置
//
// 参数:
//   - path: 配置文件路径（如 "data/flipbook.yaml"）
//
// 返回:
//   - *FlipbookConfig: 填充默认值并通过校验后的配置
//   - error: 读取、解析或校验失败
func LoadFlipbookConfig(path string) (*FlipbookConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flipbook config: %w", err)
	}
	return ParseFlipbookConfig(data)
}

// ParseFlipbookConfig 解析 YAML 数据
//
// lift 和 maxShadow 的零值有意义，所以在解析前预置默认值，
// 只有文件中出现的键才会覆盖它们。
func ParseFlipbookConfig(data []byte) (*FlipbookConfig, error) {
	cfg := FlipbookConfig{
		Lift:      DefaultLift,
		MaxShadow: DefaultMaxShadow,
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse flipbook config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flipbook config: %w", err)
	}
	return &cfg, nil
}

// ApplyDefaults 为未设置（零值）的字段填充默认值
// Lift 和 MaxShadow 不在此列，见 ParseFlipbookConfig
func (c *FlipbookConfig) ApplyDefaults() {
	if c.Width == 0 {
		c.Width = DefaultPageWidth
	}
	if c.Height == 0 {
		c.Height = DefaultPageHeight
	}
	if c.CornerSize == 0 {
		c.CornerSize = DefaultCornerSize
	}
	if c.DurationMs == 0 {
		c.DurationMs = DefaultDurationMs
	}
	if c.QuickFlipMs == 0 {
		c.QuickFlipMs = DefaultQuickFlipMs
	}
	if len(c.Easing) == 0 {
		c.Easing = append([]float64(nil), DefaultEasing...)
	}
	if c.Background == "" {
		c.Background = DefaultBackgroundColor
	}
	if c.BackColor == "" {
		c.BackColor = DefaultBackColor
	}
	for i := range c.Pages {
		if c.Pages[i].Color == "" {
			c.Pages[i].Color = DefaultPageColor
		}
	}
}

// Validate 校验配置
//
// 检查：
//   - 页面尺寸与角区（见 ValidateDimensions）
//   - 动画时长 > 0，快速翻页阈值 > 0
//   - 缓动曲线恰好 4 个控制点，x1/x2 在 [0, 1]
//   - 阴影强度在 [0, 1]，抬起幅度 >= 0
//   - 至少一页，颜色格式正确
func (c *FlipbookConfig) Validate() error {
	if err := ValidateDimensions(c.Width, c.Height, c.CornerSize); err != nil {
		return err
	}
	if c.DurationMs <= 0 {
		return &ValidationError{Field: "durationMs", Value: c.DurationMs, Reason: "must be > 0"}
	}
	if c.QuickFlipMs <= 0 {
		return &ValidationError{Field: "quickFlipMs", Value: c.QuickFlipMs, Reason: "must be > 0"}
	}
	if len(c.Easing) != 4 {
		return &ValidationError{Field: "easing", Value: c.Easing, Reason: "must have exactly 4 control values"}
	}
	if c.Easing[0] < 0 || c.Easing[0] > 1 || c.Easing[2] < 0 || c.Easing[2] > 1 {
		return &ValidationError{Field: "easing", Value: c.Easing, Reason: "x1 and x2 must be within [0, 1]"}
	}
	if c.MaxShadow < 0 || c.MaxShadow > 1 {
		return &ValidationError{Field: "maxShadow", Value: c.MaxShadow, Reason: "must be within [0, 1]"}
	}
	if c.Lift < 0 {
		return &ValidationError{Field: "lift", Value: c.Lift, Reason: "must be >= 0"}
	}
	if len(c.Pages) == 0 {
		return &ValidationError{Field: "pages", Value: 0, Reason: "at least one page is required"}
	}
	for _, field := range []struct {
		name, value string
	}{
		{"background", c.Background},
		{"backColor", c.BackColor},
	} {
		if _, err := ParseHexColor(field.value); err != nil {
			return &ValidationError{Field: field.name, Value: field.value, Reason: err.Error()}
		}
	}
	for i, p := range c.Pages {
		if _, err := ParseHexColor(p.Color); err != nil {
			return &ValidationError{Field: fmt.Sprintf("pages[%d].color", i), Value: p.Color, Reason: err.Error()}
		}
	}
	return nil
}

// Duration 动画时长
func (c *FlipbookConfig) Duration() time.Duration {
	return time.Duration(c.DurationMs) * time.Millisecond
}

// QuickFlipThreshold 快速翻页阈值
func (c *FlipbookConfig) QuickFlipThreshold() time.Duration {
	return time.Duration(c.QuickFlipMs) * time.Millisecond
}

// EasingControlPoints 以数组形式返回缓动控制点
func (c *FlipbookConfig) EasingControlPoints() [4]float64 {
	var out [4]float64
	copy(out[:], c.Easing)
	return out
}
