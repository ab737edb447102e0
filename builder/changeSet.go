/*
 * @File : changeSet
 * @Date : 2025/3/5
 * @Version: 1.0.0
 * @Description: changelog 中的变更记录模型与生成选项
 */

package builder

import (
	"strings"

	"lbgen/parser"
)

// ChangeKind 变更记录类型
type ChangeKind int

const (
	CreateTable ChangeKind = iota + 1
	AddColumn
)

func (k ChangeKind) String() string {
	switch k {
	case CreateTable:
		return "createTable"
	case AddColumn:
		return "addColumn"
	default:
		return "unknown"
	}
}

const (
	// PlaceholderTable 无法识别表名时使用
	PlaceholderTable    = "unknown_table"
	DefaultAuthor       = "baseon"
	DefaultXSDVersion   = "3.8"
	createTableSetID    = 1
	firstAddColumnSetID = 2
)

// DefaultExcludedColumns 默认视为已存在的基础字段，不生成 addColumn
var DefaultExcludedColumns = []string{
	"id", "code", "name", "remark",
	"creator_id", "updater_id",
	"deleted_at", "created_at", "updated_at",
}

// ChangeSet 一条变更记录。CreateTable 含全部字段，AddColumn 只含一个字段
type ChangeSet struct {
	ID      int
	Kind    ChangeKind
	Table   string
	Columns []parser.Column
}

// Options 生成选项，零值字段使用默认值
type Options struct {
	Author          string
	XSDVersion      string
	Excluded        []string // nil 表示使用 DefaultExcludedColumns
	WithConstraints bool     // 输出 <constraints/> 与 autoIncrement
	WithRollback    bool     // 每个 changeSet 附带显式 <rollback>
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Author) == "" {
		o.Author = DefaultAuthor
	}
	if strings.TrimSpace(o.XSDVersion) == "" {
		o.XSDVersion = DefaultXSDVersion
	}
	if o.Excluded == nil {
		o.Excluded = DefaultExcludedColumns
	}
	return o
}

func excludedSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			set[n] = true
		}
	}
	return set
}
