/*
 * @File : changeLogBuilder
 * @Date : 2025/3/5
 * @Version: 1.0.0
 * @Description: 由字段列表生成 Liquibase XML changelog
 */

package builder

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"lbgen/logger"
	"lbgen/parser"
)

const indentUnit = "    "

const changeLogHeader = `<?xml version="1.0" encoding="UTF-8"?>
<databaseChangeLog
        xmlns="http://www.liquibase.org/xml/ns/dbchangelog"
        xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
        xsi:schemaLocation="http://www.liquibase.org/xml/ns/dbchangelog
    http://www.liquibase.org/xml/ns/dbchangelog/dbchangelog-%s.xsd">
`

const changeLogFooter = "</databaseChangeLog>\n"

type ChangeLogBuilder struct {
	tableName string
	columns   []parser.Column
	opts      Options
	excluded  map[string]bool
}

// NewChangeLogBuilder 表名为空时使用 PlaceholderTable
func NewChangeLogBuilder(tableName string, columns []parser.Column, opts Options) ChangeLogBuilder {
	opts = opts.withDefaults()
	tableName = strings.ToLower(strings.TrimSpace(tableName))
	if tableName == "" {
		logger.Warn("未能识别表名，使用占位表名 %s", PlaceholderTable)
		tableName = PlaceholderTable
	}
	return ChangeLogBuilder{
		tableName: tableName,
		columns:   columns,
		opts:      opts,
		excluded:  excludedSet(opts.Excluded),
	}
}

// TableName 实际使用的表名
func (b ChangeLogBuilder) TableName() string {
	return b.tableName
}

// Records 返回变更记录：先是 id=1 的 CreateTable，随后每个未排除字段一条 AddColumn，id 从 2 连续递增
func (b ChangeLogBuilder) Records() []ChangeSet {
	all := make([]parser.Column, 0, len(b.columns))
	for _, c := range b.columns {
		c.Name = strings.ToLower(c.Name)
		all = append(all, c)
	}

	records := []ChangeSet{{
		ID:      createTableSetID,
		Kind:    CreateTable,
		Table:   b.tableName,
		Columns: all,
	}}

	seen := make(map[string]bool, len(all))
	id := firstAddColumnSetID
	for _, c := range all {
		if b.excluded[c.Name] {
			continue
		}
		if seen[c.Name] {
			logger.Warn("字段 %s 重复出现，addColumn 只保留第一次", c.Name)
			continue
		}
		seen[c.Name] = true
		records = append(records, ChangeSet{
			ID:      id,
			Kind:    AddColumn,
			Table:   b.tableName,
			Columns: []parser.Column{c},
		})
		id++
	}
	return records
}

// Build 生成完整 changelog 文本，相同输入输出逐字节一致
func (b ChangeLogBuilder) Build() string {
	records := b.Records()
	logger.Debug("ChangeLogBuilder.Build() 表 %s，changeSet %d 个", b.tableName, len(records))

	var sb strings.Builder
	fmt.Fprintf(&sb, changeLogHeader, b.opts.XSDVersion)
	for _, r := range records {
		sb.WriteString("\n")
		switch r.Kind {
		case CreateTable:
			sb.WriteString(NewCreateTableBuilder(r, b.opts).Build())
		case AddColumn:
			sb.WriteString(NewAddColumnBuilder(r, b.opts).Build())
		}
	}
	sb.WriteString(changeLogFooter)
	return sb.String()
}

// Render 使用默认选项与给定排除集生成 changelog
func Render(tableName string, columns []parser.Column, excludedNames []string) string {
	if excludedNames == nil {
		excludedNames = []string{}
	}
	return NewChangeLogBuilder(tableName, columns, Options{Excluded: excludedNames}).Build()
}

func indent(level int) string {
	return strings.Repeat(indentUnit, level)
}

// escapeAttr 转义为可放入双引号属性值的文本
func escapeAttr(s string) string {
	var buf bytes.Buffer
	// 写入 bytes.Buffer 不会失败
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
