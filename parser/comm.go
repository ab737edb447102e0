/*
 * @File : parser
 * @Date : 2025/3/4 10:12
 * @Version: 1.0.0
 * @Description: 建表语句解析结果
 */

package parser

// Column 单个字段定义
type Column struct {
	Name    string  // 已转小写
	Type    string  // 类型及参数，如 VARCHAR(255)、BIGINT UNSIGNED
	Comment *string // 无 COMMENT 时为 nil

	Nullable      *bool // 未出现 NULL / NOT NULL 时为 nil
	PrimaryKey    bool
	AutoIncrement bool
}

// HasComment 是否带注释
func (c Column) HasComment() bool {
	return c.Comment != nil
}

// CommentText 注释内容，无注释返回空串
func (c Column) CommentText() string {
	if c.Comment == nil {
		return ""
	}
	return *c.Comment
}

// Table 解析出的表
type Table struct {
	Name    string   // 已转小写，未识别时为空
	Columns []Column // 按源顺序，重名保留
	Skipped []string // 无法识别的子句原文
}

// ColumnNames 按顺序返回字段名
func (t Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}
