package cmd

import (
	"errors"

	"lbgen/config"
)

// 退出码
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitConfigError = 2
)

// ConfigError 参数或配置错误，退出码为 ExitConfigError
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// WrapConfigErr 标记为配置错误，nil 原样返回
func WrapConfigErr(err error) error {
	if err == nil {
		return nil
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return err
	}
	return &ConfigError{Err: err}
}

// ExitCode 根据错误类型返回进程退出码
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ce *ConfigError
	if errors.As(err, &ce) || errors.Is(err, config.ErrInvalidConfig) {
		return ExitConfigError
	}
	return ExitFailure
}
