package builder

import (
	"fmt"
	"strings"

	"lbgen/parser"
)

// CreateTableBuilder 生成 id=1 的建表 changeSet
type CreateTableBuilder struct {
	set  ChangeSet
	opts Options
}

func NewCreateTableBuilder(set ChangeSet, opts Options) CreateTableBuilder {
	return CreateTableBuilder{set: set, opts: opts}
}

func (c CreateTableBuilder) Build() string {
	var sb strings.Builder
	table := escapeAttr(c.set.Table)

	sb.WriteString(changeSetOpen(c.set.ID, c.opts.Author))
	sb.WriteString(preCondition(fmt.Sprintf(`<tableExists tableName="%s"/>`, table)))
	fmt.Fprintf(&sb, "%s<createTable tableName=\"%s\">\n", indent(2), table)
	for _, col := range c.set.Columns {
		sb.WriteString(columnXML(col, indent(3), c.opts.WithConstraints))
	}
	fmt.Fprintf(&sb, "%s</createTable>\n", indent(2))
	if c.opts.WithRollback {
		sb.WriteString(NewRollbackBuilder(c.set.Table, indent(2)).BuildDropTable())
	}
	sb.WriteString(changeSetClose())
	return sb.String()
}

func changeSetOpen(id int, author string) string {
	return fmt.Sprintf("%s<changeSet id=\"%d\" author=\"%s\">\n", indent(1), id, escapeAttr(author))
}

func changeSetClose() string {
	return fmt.Sprintf("%s</changeSet>\n", indent(1))
}

// preCondition 已存在则标记为已执行（MARK_RAN）
func preCondition(check string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s<preConditions onFail=\"MARK_RAN\">\n", indent(2))
	fmt.Fprintf(&sb, "%s<not>\n", indent(3))
	fmt.Fprintf(&sb, "%s%s\n", indent(4), check)
	fmt.Fprintf(&sb, "%s</not>\n", indent(3))
	fmt.Fprintf(&sb, "%s</preConditions>\n", indent(2))
	return sb.String()
}

func columnXML(col parser.Column, prefix string, withConstraints bool) string {
	var attrs strings.Builder
	fmt.Fprintf(&attrs, `name="%s" type="%s"`, escapeAttr(strings.ToLower(col.Name)), escapeAttr(col.Type))
	if withConstraints && col.AutoIncrement {
		attrs.WriteString(` autoIncrement="true"`)
	}
	// 空注释不输出 remarks
	if col.CommentText() != "" {
		fmt.Fprintf(&attrs, ` remarks="%s"`, escapeAttr(col.CommentText()))
	}

	constraints := ""
	if withConstraints {
		constraints = constraintsXML(col)
	}
	if constraints == "" {
		return fmt.Sprintf("%s<column %s/>\n", prefix, attrs.String())
	}
	return fmt.Sprintf("%s<column %s>\n%s%s%s\n%s</column>\n",
		prefix, attrs.String(), prefix, indentUnit, constraints, prefix)
}

func constraintsXML(col parser.Column) string {
	var parts []string
	if col.PrimaryKey {
		parts = append(parts, `primaryKey="true"`)
	}
	if col.Nullable != nil {
		parts = append(parts, fmt.Sprintf(`nullable="%t"`, *col.Nullable))
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("<constraints %s/>", strings.Join(parts, " "))
}
