package builder

import (
	"fmt"
	"strings"
)

// AddColumnBuilder 生成单个字段的 addColumn changeSet
type AddColumnBuilder struct {
	set  ChangeSet
	opts Options
}

func NewAddColumnBuilder(set ChangeSet, opts Options) AddColumnBuilder {
	return AddColumnBuilder{set: set, opts: opts}
}

func (a AddColumnBuilder) Build() string {
	if len(a.set.Columns) == 0 {
		return ""
	}
	col := a.set.Columns[0]
	table := escapeAttr(a.set.Table)

	var sb strings.Builder
	sb.WriteString(changeSetOpen(a.set.ID, a.opts.Author))
	sb.WriteString(preCondition(fmt.Sprintf(`<columnExists tableName="%s" columnName="%s"/>`, table, escapeAttr(col.Name))))
	fmt.Fprintf(&sb, "%s<addColumn tableName=\"%s\">\n", indent(2), table)
	sb.WriteString(columnXML(col, indent(3), a.opts.WithConstraints))
	fmt.Fprintf(&sb, "%s</addColumn>\n", indent(2))
	if a.opts.WithRollback {
		sb.WriteString(NewRollbackBuilder(a.set.Table, indent(2)).BuildDropColumn(col.Name))
	}
	sb.WriteString(changeSetClose())
	return sb.String()
}
