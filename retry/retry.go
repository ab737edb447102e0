package retry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lbgen/config"
	"lbgen/logger"
)

// Config 重试配置
type Config struct {
	MaxRetries int           // 最大重试次数，不含首次
	Delay      time.Duration // 重试间隔
}

// DefaultConfig 默认重试配置
var DefaultConfig = Config{
	MaxRetries: 3,
	Delay:      100 * time.Millisecond,
}

// ConfigFromAppConfig 从应用配置创建重试配置
func ConfigFromAppConfig(appConfig *config.Config) Config {
	return Config{
		MaxRetries: appConfig.Retry.MaxRetries,
		Delay:      time.Duration(appConfig.Retry.DelayMs) * time.Millisecond,
	}
}

// RowQuerier 能执行单行查询的连接，*sql.DB 与 *sqlx.DB 均满足
type RowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// QueryRowAndScanWithRetry 带重试的单行查询和扫描。sql.ErrNoRows 与 ctx 取消不重试
func QueryRowAndScanWithRetry(ctx context.Context, db RowQuerier, cfg Config, query string, dest []interface{}, queryArgs ...interface{}) error {
	return Do(ctx, cfg, query, func() error {
		return db.QueryRowContext(ctx, query, queryArgs...).Scan(dest...)
	})
}

// Do 执行 fn，失败时按 cfg 重试。desc 仅用于日志
func Do(ctx context.Context, cfg Config, desc string, fn func() error) error {
	var err error
	for i := 0; i <= cfg.MaxRetries; i++ {
		if i > 0 {
			logger.Warn("重试 (第%d次): %s", i, desc)
			select {
			case <-ctx.Done():
				return fmt.Errorf("重试被取消: %w", ctx.Err())
			case <-time.After(cfg.Delay):
			}
		}

		err = fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		logger.Warn("执行失败 (第%d次): %v", i+1, err)
	}
	return fmt.Errorf("在%d次重试后仍然失败: %w", cfg.MaxRetries, err)
}
