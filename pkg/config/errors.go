package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig 所有配置校验错误都可以用 errors.Is 匹配它
var ErrInvalidConfig = errors.New("invalid flipbook config")

// ValidationError 描述具体哪个字段不合法
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s=%v %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

// Unwrap 让 errors.Is(err, ErrInvalidConfig) 成立
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// ValidateDimensions 校验页面尺寸与角区大小
//
// 宽、高、角区必须为正，角区不能超过页面较短的一边。
func ValidateDimensions(width, height, cornerSize float64) error {
	if !(width > 0) {
		return &ValidationError{Field: "width", Value: width, Reason: "must be > 0"}
	}
	if !(height > 0) {
		return &ValidationError{Field: "height", Value: height, Reason: "must be > 0"}
	}
	if !(cornerSize > 0) {
		return &ValidationError{Field: "cornerSize", Value: cornerSize, Reason: "must be > 0"}
	}
	if cornerSize > min(width, height) {
		return &ValidationError{Field: "cornerSize", Value: cornerSize, Reason: "must not exceed the shorter page side"}
	}
	return nil
}
