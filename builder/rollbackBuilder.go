package builder

import (
	"fmt"

	"lbgen/logger"
)

// RollbackBuilder 生成 changeSet 内的 <rollback> 片段
type RollbackBuilder struct {
	tableName string
	indent    string
}

// NewRollbackBuilder 创建回退构建器，indent 为 <rollback> 所在层级的缩进
func NewRollbackBuilder(tableName, indent string) RollbackBuilder {
	return RollbackBuilder{
		tableName: tableName,
		indent:    indent,
	}
}

// BuildDropTable createTable 的回退：删除整张表
func (r RollbackBuilder) BuildDropTable() string {
	logger.Debug("RollbackBuilder.BuildDropTable() 表: %s", r.tableName)
	return r.wrap(fmt.Sprintf(`<dropTable tableName="%s"/>`, escapeAttr(r.tableName)))
}

// BuildDropColumn addColumn 的回退：删除该列
func (r RollbackBuilder) BuildDropColumn(columnName string) string {
	logger.Debug("RollbackBuilder.BuildDropColumn() 列: %s.%s", r.tableName, columnName)
	return r.wrap(fmt.Sprintf(`<dropColumn tableName="%s" columnName="%s"/>`,
		escapeAttr(r.tableName), escapeAttr(columnName)))
}

func (r RollbackBuilder) wrap(inner string) string {
	return fmt.Sprintf("%s<rollback>\n%s%s%s\n%s</rollback>\n", r.indent, r.indent, indentUnit, inner, r.indent)
}
