/*
 * @File : database
 * @Date : 2025/3/7
 * @Version: 1.0.0
 * @Description: 在线数据库来源，通过 SHOW CREATE TABLE 获取建表语句
 */

package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/ClickHouse/clickhouse-go"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"lbgen/config"
	"lbgen/logger"
	"lbgen/retry"
)

const (
	DriverMySQL      = "mysql"
	DriverClickHouse = "clickhouse"
)

// ErrUnsupportedDriver 不支持的驱动
var ErrUnsupportedDriver = errors.New("unsupported driver")

// SchemaSource 单个数据库连接上的建表语句来源
type SchemaSource struct {
	db      *sqlx.DB
	driver  string
	retry   retry.Config
	timeout time.Duration
}

// NewSchemaSource 按配置打开连接（惰性连接，不在此处访问数据库）
func NewSchemaSource(cfg *config.Config) (*SchemaSource, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Source.Driver))
	if err := validateDSN(driver, cfg.Source.DSN); err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, cfg.Source.DSN)
	if err != nil {
		return nil, fmt.Errorf("打开%s连接失败: %w", driver, err)
	}
	db.SetMaxOpenConns(1)

	return NewSchemaSourceWithDB(db, driver, retry.ConfigFromAppConfig(cfg),
		time.Duration(cfg.Source.TimeoutSeconds)*time.Second), nil
}

// NewSchemaSourceWithDB 使用已有连接
func NewSchemaSourceWithDB(db *sqlx.DB, driver string, rc retry.Config, timeout time.Duration) *SchemaSource {
	return &SchemaSource{
		db:      db,
		driver:  driver,
		retry:   rc,
		timeout: timeout,
	}
}

func validateDSN(driver, dsn string) error {
	if strings.TrimSpace(dsn) == "" {
		return errors.New("DSN 不能为空")
	}
	switch driver {
	case DriverMySQL:
		if _, err := mysql.ParseDSN(dsn); err != nil {
			return fmt.Errorf("解析MySQL DSN失败: %w", err)
		}
	case DriverClickHouse:
		if !strings.HasPrefix(dsn, "tcp://") {
			return fmt.Errorf("ClickHouse DSN 需以 tcp:// 开头: %s", dsn)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	return nil
}

// Ping 检查连接
func (s *SchemaSource) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// FetchDDL 获取表的建表语句
func (s *SchemaSource) FetchDDL(ctx context.Context, table string) (string, error) {
	quoted, err := QuoteTableName(table)
	if err != nil {
		return "", err
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	query := "SHOW CREATE TABLE " + quoted
	logger.Debug("执行: %s", query)

	var ddl string
	var dest []interface{}
	switch s.driver {
	case DriverMySQL:
		// MySQL 返回 (Table, Create Table) 两列
		var name string
		dest = []interface{}{&name, &ddl}
	default:
		dest = []interface{}{&ddl}
	}

	if err := retry.QueryRowAndScanWithRetry(ctx, s.db, s.retry, query, dest); err != nil {
		return "", fmt.Errorf("获取表 %s 的DDL失败: %w", table, err)
	}
	logger.Info("已获取表 %s 的建表语句 (%d 字节)", table, len(ddl))
	return ddl, nil
}

// Close 关闭连接
func (s *SchemaSource) Close() error {
	return s.db.Close()
}

// QuoteTableName 把 table 或 db.table 转成反引号形式
func QuoteTableName(table string) (string, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return "", errors.New("表名不能为空")
	}
	parts := strings.Split(table, ".")
	if len(parts) > 2 {
		return "", fmt.Errorf("表名格式错误: %s", table)
	}
	quoted := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), "`")
		if p == "" {
			return "", fmt.Errorf("表名格式错误: %s", table)
		}
		quoted = append(quoted, "`"+strings.ReplaceAll(p, "`", "``")+"`")
	}
	return strings.Join(quoted, "."), nil
}
