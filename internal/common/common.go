package common

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"lbgen/logger"
	"lbgen/parser"
)

// StdinPath 作为文件参数时表示从标准输入读取
const StdinPath = "-"

// ParseTableFromString 从DDL字符串解析表结构，tableName 非空时覆盖识别出的表名
func ParseTableFromString(ddl string, tableName string) parser.Table {
	logger.Debug("完整DDL内容:\n%s", ddl)
	logger.Debug("DDL内容结束")

	table := parser.Extract(ddl)
	logger.Debug("DDL解析完成，表名: %q，字段数: %d，跳过子句: %d", table.Name, len(table.Columns), len(table.Skipped))

	if name := strings.ToLower(strings.TrimSpace(tableName)); name != "" {
		logger.Debug("使用指定表名 %s 替换 %q", name, table.Name)
		table.Name = name
	}
	for _, clause := range table.Skipped {
		logger.Warn("无法识别的字段子句已跳过: %s", clause)
	}
	return table
}

// ReadSchema 读取建表语句文件，path 为 "-" 时从 stdin 读取
func ReadSchema(path string, stdin io.Reader) (string, error) {
	if path == StdinPath {
		if stdin == nil {
			return "", errors.New("未提供标准输入")
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("读取标准输入失败: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("读取建表语句文件失败: %w", err)
	}
	return string(data), nil
}
