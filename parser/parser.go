/*
 * @File : parser
 * @Date : 2025/3/4 10:20
 * @Version: 1.0.0
 * @Description: CREATE TABLE 语句解析
 */

package parser

import (
	"regexp"
	"strings"

	"lbgen/logger"
)

var createTableRe = regexp.MustCompile(
	"(?is)\\bCREATE\\s+(?:TEMPORARY\\s+)?TABLE\\s+(?:IF\\s+NOT\\s+EXISTS\\s+)?" +
		"((?:`[^`]+`|\"[^\"]+\"|[\\w$]+)(?:\\s*\\.\\s*(?:`[^`]+`|\"[^\"]+\"|[\\w$]+))?)")

// Extract 从建表语句中提取表名与字段列表。
// 不会返回错误：无法识别的子句记录在 Table.Skipped 中，找不到表名时 Name 为空。
func Extract(s string) Table {
	logger.Debug("Extract开始执行，输入长度 %d", len(s))
	var t = Table{}

	s = stripComments(s)
	if strings.TrimSpace(s) == "" {
		return t
	}

	bodyFrom := 0
	if loc := createTableRe.FindStringSubmatchIndex(s); loc != nil {
		t.Name = tableNameOf(s[loc[2]:loc[3]])
		bodyFrom = loc[1]
		logger.Debug("解析到表名: %s", t.Name)
	} else {
		logger.Debug("未找到 CREATE TABLE 头部")
	}

	body, ok := columnBody(s, bodyFrom)
	if !ok {
		logger.Debug("未找到字段定义部分")
		return t
	}

	clauses := splitTopLevel(body)
	logger.Debug("字段定义拆分为 %d 个子句", len(clauses))

	var pkNames []string
	for _, clause := range clauses {
		if pass(clause) {
			continue
		}
		if names, isConstraint := parseConstraint(clause); isConstraint {
			pkNames = append(pkNames, names...)
			continue
		}
		col, ok := parseColumn(clause)
		if !ok {
			logger.Debug("无法识别的子句: %s", clause)
			t.Skipped = append(t.Skipped, clause)
			continue
		}
		t.Columns = append(t.Columns, col)
		logger.Debug("解析到字段: %s %s (总计 %d 个字段)", col.Name, col.Type, len(t.Columns))
	}

	markPrimaryKeys(t.Columns, pkNames)
	logger.Debug("Extract执行完成，字段 %d 个，跳过 %d 个子句", len(t.Columns), len(t.Skipped))
	return t
}

func pass(s string) bool {
	return strings.TrimSpace(s) == ""
}

// tableNameOf 取 db.table 中的表名部分，去掉引号并转小写
func tableNameOf(raw string) string {
	name := raw
	if i := lastTopLevelDot(raw); i >= 0 {
		name = raw[i+1:]
	}
	return strings.ToLower(unquoteIdent(strings.TrimSpace(name)))
}

func lastTopLevelDot(s string) int {
	var quote byte
	last := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '`' || c == '"':
			quote = c
		case c == '.':
			last = i
		}
	}
	return last
}

func unquoteIdent(s string) string {
	if len(s) >= 2 {
		if (s[0] == '`' && s[len(s)-1] == '`') || (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '[' && s[len(s)-1] == ']') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// columnBody 返回 from 之后第一个 '(' 与其匹配 ')' 之间的内容；缺少右括号时取到结尾
func columnBody(s string, from int) (string, bool) {
	open := indexOutsideQuotes(s, from, '(')
	if open < 0 {
		return "", false
	}
	end := matchingParen(s, open)
	if end < 0 {
		return s[open+1:], true
	}
	return s[open+1 : end], true
}

func indexOutsideQuotes(s string, from int, target byte) int {
	var quote byte
	for i := from; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' && quote != '`' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		if c == '\'' || c == '"' || c == '`' {
			quote = c
			continue
		}
		if c == target {
			return i
		}
	}
	return -1
}

// matchingParen 返回 s[open] 处 '(' 对应的 ')' 下标，找不到返回 -1
func matchingParen(s string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' && quote != '`' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel 按最外层逗号拆分，忽略括号与引号内的逗号
func splitTopLevel(body string) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(body); i++ {
		c := body[i]
		if quote != 0 {
			if c == '\\' && quote != '`' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(body[start:i]))
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(body[start:]); tail != "" {
		parts = append(parts, tail)
	}
	return parts
}

// stripComments 去掉引号外的 -- 、# 行注释和 /* */ 块注释
func stripComments(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			sb.WriteByte(c)
			if c == '\\' && quote != '`' && i+1 < len(s) {
				i++
				sb.WriteByte(s[i])
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch {
		case c == '\'' || c == '"' || c == '`':
			quote = c
			sb.WriteByte(c)
		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			sb.WriteByte('\n')
		case c == '#':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			sb.WriteByte('\n')
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				i = len(s)
			} else {
				i += end + 3
			}
			sb.WriteByte(' ')
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
