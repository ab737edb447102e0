/*
 * @File : table
 * @Date : 2025/3/4 11:02
 * @Version: 1.0.0
 * @Description: 单个字段子句的解析
 */

package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokQuoted
	tokGroup
)

type token struct {
	kind  tokenKind
	text  string // 原文，含引号/括号
	quote byte
}

var (
	identRe    = regexp.MustCompile(`^[\p{L}_$][\p{L}\p{N}_$]*$`)
	typeWordRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
)

// 表级约束子句的起始关键字
var constraintKeywords = map[string]bool{
	"PRIMARY":    true,
	"KEY":        true,
	"INDEX":      true,
	"UNIQUE":     true,
	"CONSTRAINT": true,
	"FOREIGN":    true,
	"CHECK":      true,
	"FULLTEXT":   true,
	"SPATIAL":    true,
	"PROJECTION": true,
}

// 字段子句中类型之后可能出现的修饰关键字，也不能作为类型
var columnKeywords = map[string]bool{
	"NOT": true, "NULL": true, "DEFAULT": true, "PRIMARY": true, "KEY": true, "UNIQUE": true,
	"AUTO_INCREMENT": true, "AUTOINCREMENT": true, "IDENTITY": true, "COMMENT": true,
	"COLLATE": true, "CHARACTER": true, "CHARSET": true, "ON": true, "REFERENCES": true,
	"CHECK": true, "CONSTRAINT": true, "GENERATED": true, "AS": true, "VIRTUAL": true,
	"STORED": true, "VISIBLE": true, "INVISIBLE": true, "COLUMN_FORMAT": true, "STORAGE": true,
	"SRID": true, "BINARY": true, "ASCII": true, "UNICODE": true, "CODEC": true, "TTL": true,
	"MATERIALIZED": true, "ALIAS": true, "EPHEMERAL": true, "SETTINGS": true, "SERIAL": true,
}

var typeNames = map[string]bool{
	"bit": true, "bool": true, "boolean": true, "tinyint": true, "smallint": true, "mediumint": true,
	"int": true, "integer": true, "bigint": true, "decimal": true, "dec": true, "numeric": true,
	"fixed": true, "float": true, "double": true, "real": true, "serial": true,
	"char": true, "character": true, "nchar": true, "national": true, "varchar": true, "nvarchar": true,
	"binary": true, "varbinary": true, "tinytext": true, "text": true, "mediumtext": true,
	"longtext": true, "long": true, "tinyblob": true, "blob": true, "mediumblob": true, "longblob": true,
	"enum": true, "set": true, "json": true, "date": true, "datetime": true, "timestamp": true,
	"time": true, "year": true, "geometry": true, "point": true, "uuid": true,
	"int8": true, "int16": true, "int32": true, "int64": true, "int128": true, "int256": true,
	"uint8": true, "uint16": true, "uint32": true, "uint64": true, "uint128": true, "uint256": true,
	"float32": true, "float64": true, "string": true, "fixedstring": true, "date32": true,
	"datetime64": true, "decimal32": true, "decimal64": true, "decimal128": true, "decimal256": true,
	"enum8": true, "enum16": true, "array": true, "map": true, "tuple": true, "nested": true,
	"nullable": true, "lowcardinality": true, "ipv4": true, "ipv6": true,
}

// fetchToken 从 begin 开始读取一个 token，返回 token 与下一个位置
func fetchToken(s string, begin int) (token, int, bool) {
	for begin < len(s) && isSpace(s[begin]) {
		begin++
	}
	if begin >= len(s) {
		return token{}, begin, false
	}

	switch c := s[begin]; c {
	case '\'', '"', '`':
		end := closingQuote(s, begin)
		return token{kind: tokQuoted, text: s[begin:end], quote: c}, end, true
	case '(':
		end := matchingParen(s, begin)
		if end < 0 {
			return token{kind: tokGroup, text: s[begin:]}, len(s), true
		}
		return token{kind: tokGroup, text: s[begin : end+1]}, end + 1, true
	}

	end := begin
	for end < len(s) && !isSpace(s[end]) && s[end] != '(' && s[end] != '\'' && s[end] != '"' && s[end] != '`' {
		end++
	}
	return token{kind: tokWord, text: s[begin:end]}, end, true
}

// closingQuote 返回引号结束后的位置；'' 与反斜杠转义不视为结束
func closingQuote(s string, open int) int {
	q := s[open]
	for i := open + 1; i < len(s); i++ {
		c := s[i]
		if c == '\\' && q != '`' {
			i++
			continue
		}
		if c == q {
			if i+1 < len(s) && s[i+1] == q {
				i++
				continue
			}
			return i + 1
		}
	}
	return len(s)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func tokenize(s string) []token {
	var tokens []token
	pos := 0
	for {
		tok, next, ok := fetchToken(s, pos)
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
		pos = next
	}
}

// parseConstraint 识别表级约束子句。PRIMARY KEY (...) 额外返回其中的字段名
func parseConstraint(clause string) ([]string, bool) {
	tokens := tokenize(clause)
	if len(tokens) == 0 || tokens[0].kind != tokWord {
		return nil, false
	}
	first := strings.ToUpper(tokens[0].text)
	switch first {
	case "PRIMARY", "FOREIGN":
		if len(tokens) < 2 || !strings.EqualFold(tokens[1].text, "KEY") {
			return nil, false
		}
	case "CHECK":
		if len(tokens) < 2 || tokens[1].kind != tokGroup {
			return nil, false
		}
	default:
		if !constraintKeywords[first] {
			return nil, false
		}
		// ClickHouse 允许 index / key 等未加引号作字段名，后跟类型名时按字段处理
		if len(tokens) > 1 && tokens[1].kind == tokWord && isTypeName(tokens[1].text) {
			return nil, false
		}
	}

	for i := 0; i+1 < len(tokens); i++ {
		if strings.EqualFold(tokens[i].text, "PRIMARY") && strings.EqualFold(tokens[i+1].text, "KEY") {
			for j := i + 2; j < len(tokens); j++ {
				if tokens[j].kind == tokGroup {
					return groupColumnNames(tokens[j].text), true
				}
			}
		}
	}
	return nil, true
}

func groupColumnNames(group string) []string {
	inner := strings.TrimSpace(group)
	inner = strings.TrimPrefix(inner, "(")
	inner = strings.TrimSuffix(inner, ")")
	var names []string
	for _, part := range splitTopLevel(inner) {
		tokens := tokenize(part)
		if len(tokens) == 0 {
			continue
		}
		names = append(names, strings.ToLower(unquoteIdent(tokens[0].text)))
	}
	return names
}

func markPrimaryKeys(cols []Column, names []string) {
	if len(names) == 0 {
		return
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	for i := range cols {
		if set[cols[i].Name] {
			cols[i].PrimaryKey = true
		}
	}
}

// parseColumn 解析 <name> <type>[(<params>)] [UNSIGNED|ZEROFILL] <qualifiers...> [COMMENT '<text>']
func parseColumn(clause string) (Column, bool) {
	tokens := tokenize(clause)
	if len(tokens) < 2 {
		return Column{}, false
	}

	var col Column
	nameTok := tokens[0]
	switch nameTok.kind {
	case tokWord:
		if !identRe.MatchString(nameTok.text) {
			return Column{}, false
		}
		col.Name = nameTok.text
	case tokQuoted:
		if nameTok.quote == '\'' || len(nameTok.text) < 3 {
			return Column{}, false
		}
		col.Name = nameTok.text[1 : len(nameTok.text)-1]
	default:
		return Column{}, false
	}
	col.Name = strings.ToLower(col.Name)

	typeTok := tokens[1]
	if typeTok.kind != tokWord || !typeWordRe.MatchString(typeTok.text) ||
		(columnKeywords[strings.ToUpper(typeTok.text)] && !isTypeName(typeTok.text)) {
		return Column{}, false
	}
	col.Type = typeTok.text

	i := 2
	for ; i < len(tokens) && tokens[i].kind == tokWord && continuesType(col.Type, tokens[i].text); i++ {
		col.Type += " " + tokens[i].text
	}
	if i < len(tokens) && tokens[i].kind == tokGroup {
		col.Type += normalizeGroup(tokens[i].text)
		i++
	}
	for ; i < len(tokens) && tokens[i].kind == tokWord && isTypeSuffix(col.Type, tokens[i].text); i++ {
		col.Type += " " + tokens[i].text
	}

	// 类型之后必须是已知修饰关键字，否则视为无法识别
	if i < len(tokens) && tokens[i].kind == tokWord && !columnKeywords[strings.ToUpper(tokens[i].text)] {
		return Column{}, false
	}

	for ; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.kind != tokWord {
			continue
		}
		switch strings.ToUpper(tok.text) {
		case "NOT":
			if i+1 < len(tokens) && strings.EqualFold(tokens[i+1].text, "NULL") {
				col.Nullable = boolPtr(false)
				i++
			}
		case "NULL":
			col.Nullable = boolPtr(true)
		case "PRIMARY":
			if i+1 < len(tokens) && strings.EqualFold(tokens[i+1].text, "KEY") {
				col.PrimaryKey = true
				i++
			}
		case "AUTO_INCREMENT", "AUTOINCREMENT", "IDENTITY", "SERIAL":
			col.AutoIncrement = true
		case "DEFAULT":
			if i+1 < len(tokens) {
				if strings.EqualFold(tokens[i+1].text, "NULL") && col.Nullable == nil {
					col.Nullable = boolPtr(true)
				}
				i++
			}
		case "COMMENT":
			if i+1 < len(tokens) && tokens[i+1].kind == tokQuoted && tokens[i+1].quote != '`' {
				text := unquoteLiteral(tokens[i+1].text)
				col.Comment = &text
				i++
			}
		}
	}
	return col, true
}

// unquoteLiteral 去掉字符串字面量两侧引号并还原转义，结果做 NFC 规范化
func unquoteLiteral(lit string) string {
	if len(lit) < 2 {
		return lit
	}
	q := lit[0]
	inner := lit[1:]
	if inner[len(inner)-1] == q {
		inner = inner[:len(inner)-1]
	}

	var sb strings.Builder
	sb.Grow(len(inner))
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c == '\\' && i+1 < len(inner) {
			i++
			switch inner[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(inner[i])
			}
			continue
		}
		if c == q && i+1 < len(inner) && inner[i+1] == q {
			i++
		}
		sb.WriteByte(c)
	}
	return norm.NFC.String(sb.String())
}

func isSignQualifier(s string) bool {
	switch strings.ToUpper(s) {
	case "UNSIGNED", "SIGNED", "ZEROFILL":
		return true
	}
	return false
}

// continuesType 多词类型：DOUBLE PRECISION、CHARACTER VARYING、NATIONAL VARCHAR、LONG VARCHAR 等
func continuesType(typ, word string) bool {
	fields := strings.Fields(strings.ToUpper(typ))
	last := fields[len(fields)-1]
	switch strings.ToUpper(word) {
	case "PRECISION":
		return last == "DOUBLE"
	case "VARYING":
		return last == "CHARACTER" || last == "CHAR" || last == "NCHAR"
	case "CHAR", "CHARACTER":
		return last == "NATIONAL"
	case "VARCHAR":
		return last == "NATIONAL" || last == "LONG"
	case "VARBINARY":
		return last == "LONG"
	}
	return false
}

// isTypeSuffix 括号参数之后仍属于类型的部分：符号修饰与 WITH/WITHOUT TIME ZONE
func isTypeSuffix(typ, word string) bool {
	if isSignQualifier(word) {
		return true
	}
	fields := strings.Fields(strings.ToUpper(typ))
	last := fields[len(fields)-1]
	switch strings.ToUpper(word) {
	case "WITH", "WITHOUT":
		return strings.HasPrefix(last, "TIME")
	case "TIME":
		return last == "WITH" || last == "WITHOUT"
	case "ZONE":
		return last == "TIME" && len(fields) > 1
	}
	return false
}

// normalizeGroup 合并括号内空白，去掉紧贴括号内侧的空白，引号内原样保留
func normalizeGroup(group string) string {
	var sb strings.Builder
	sb.Grow(len(group))
	var quote, last byte
	pendingSpace := false
	for i := 0; i < len(group); i++ {
		c := group[i]
		if quote != 0 {
			sb.WriteByte(c)
			if c == '\\' && i+1 < len(group) {
				i++
				sb.WriteByte(group[i])
			} else if c == quote {
				quote = 0
			}
			last = c
			continue
		}
		if isSpace(c) {
			pendingSpace = true
			continue
		}
		if pendingSpace && last != '(' && c != ')' && c != ',' {
			sb.WriteByte(' ')
		}
		pendingSpace = false
		if c == '\'' || c == '"' || c == '`' {
			quote = c
		}
		sb.WriteByte(c)
		last = c
	}
	return sb.String()
}

// isTypeName 常见 MySQL / ClickHouse 类型名
func isTypeName(word string) bool {
	return typeNames[strings.ToLower(word)]
}

func boolPtr(b bool) *bool {
	return &b
}
