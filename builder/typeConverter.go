package builder

import (
	"fmt"
	"strconv"
	"strings"

	"lbgen/logger"
	"lbgen/parser"
)

const (
	TypeMappingNone       = "none"
	TypeMappingClickHouse = "clickhouse"
)

var NotSupportTypeErr = fmt.Errorf("not support type")

// 只列出需要改名的 ClickHouse 标量类型，其余原样保留
var clickHouseScalarTypes = map[string]string{
	"int8":     "TINYINT",
	"int16":    "SMALLINT",
	"int32":    "INT",
	"int64":    "BIGINT",
	"uint8":    "TINYINT UNSIGNED",
	"uint16":   "SMALLINT UNSIGNED",
	"uint32":   "INT UNSIGNED",
	"uint64":   "BIGINT UNSIGNED",
	"float32":  "FLOAT",
	"float64":  "DOUBLE",
	"string":   "TEXT",
	"bool":     "BOOLEAN",
	"boolean":  "BOOLEAN",
	"date":     "DATE",
	"date32":   "DATE",
	"datetime": "TIMESTAMP",
	"uuid":     "UUID",
	"ipv4":     "VARCHAR(15)",
	"ipv6":     "VARCHAR(39)",
}

// ConvertColumns 按 mapping 转换字段类型，返回新切片，不修改入参
func ConvertColumns(columns []parser.Column, mapping string) ([]parser.Column, error) {
	switch strings.ToLower(strings.TrimSpace(mapping)) {
	case "", TypeMappingNone:
		return columns, nil
	case TypeMappingClickHouse:
	default:
		return nil, fmt.Errorf("未知的类型映射: %s", mapping)
	}

	res := make([]parser.Column, 0, len(columns))
	for _, c := range columns {
		converted, err := convertClickHouseColumn(c)
		if err != nil {
			return nil, fmt.Errorf("转换字段 %s 失败: %w", c.Name, err)
		}
		res = append(res, converted)
	}
	return res, nil
}

func convertClickHouseColumn(c parser.Column) (parser.Column, error) {
	t := strings.TrimSpace(c.Type)

	// 剥离外层包装，Nullable 同时决定可空性
unwrapLoop:
	for {
		inner, wrapper, ok := unwrap(t)
		if !ok {
			break
		}
		switch strings.ToLower(wrapper) {
		case "nullable":
			nullable := true
			c.Nullable = &nullable
		case "lowcardinality":
		default:
			break unwrapLoop
		}
		t = inner
	}

	sqlType, err := clickHouseTypeToSQL(t)
	if err != nil {
		return c, err
	}
	if sqlType != c.Type {
		logger.Debug("字段 %s 类型映射: %s -> %s", c.Name, c.Type, sqlType)
	}
	c.Type = sqlType
	return c, nil
}

func clickHouseTypeToSQL(t string) (string, error) {
	lower := strings.ToLower(t)
	if mapped, ok := clickHouseScalarTypes[lower]; ok {
		return mapped, nil
	}

	inner, wrapper, ok := unwrap(t)
	if !ok {
		return t, nil
	}
	args := strings.Split(inner, ",")
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}

	switch strings.ToLower(wrapper) {
	case "fixedstring":
		if _, err := strconv.Atoi(inner); err != nil {
			return "", fmt.Errorf("%w %s", NotSupportTypeErr, t)
		}
		return fmt.Sprintf("CHAR(%s)", inner), nil
	case "decimal":
		return fmt.Sprintf("DECIMAL(%s)", strings.Join(args, ",")), nil
	case "decimal32", "decimal64", "decimal128", "decimal256":
		return fmt.Sprintf("DECIMAL(%s)", wrapperPrecision(wrapper, args)), nil
	case "datetime", "datetime64":
		return "TIMESTAMP", nil
	case "array", "map", "tuple", "nested":
		// 无通用 SQL 对应类型
		return "", fmt.Errorf("%w %s", NotSupportTypeErr, t)
	}
	return t, nil
}

// unwrap 拆分 Wrapper(inner)，不是该形式时 ok=false
func unwrap(t string) (inner, wrapper string, ok bool) {
	open := strings.Index(t, "(")
	if open <= 0 || !strings.HasSuffix(t, ")") {
		return "", "", false
	}
	return strings.TrimSpace(t[open+1 : len(t)-1]), strings.TrimSpace(t[:open]), true
}

// Decimal32(S) 等价于 Decimal(9, S)，其余同理
func wrapperPrecision(wrapper string, args []string) string {
	precision := map[string]string{
		"decimal32":  "9",
		"decimal64":  "18",
		"decimal128": "38",
		"decimal256": "76",
	}[strings.ToLower(wrapper)]
	scale := "0"
	if len(args) > 0 && args[0] != "" {
		scale = args[0]
	}
	return precision + "," + scale
}
