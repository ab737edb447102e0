package parser

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAppsDDL(t *testing.T) {
	data, err := os.ReadFile("testdata/apps.sql")
	require.NoError(t, err)

	table := Extract(string(data))

	assert.Equal(t, "apps", table.Name)
	assert.Empty(t, table.Skipped)
	require.Len(t, table.Columns, 35)

	id := table.Columns[0]
	assert.Equal(t, "id", id.Name)
	assert.Equal(t, "BIGINT UNSIGNED", id.Type)
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.AutoIncrement)
	assert.Nil(t, id.Comment)
	assert.Nil(t, id.Nullable)

	name := table.Columns[1]
	assert.Equal(t, "name", name.Name)
	assert.Equal(t, "VARCHAR(255)", name.Type)
	require.NotNil(t, name.Comment)
	assert.Equal(t, "앱이름", *name.Comment)
	require.NotNil(t, name.Nullable)
	assert.True(t, *name.Nullable)

	names := table.ColumnNames()
	assert.Contains(t, names, "productname")
	assert.Contains(t, names, "businessregistrationnumber")
	assert.Equal(t, "smtp_password", names[len(names)-1])

	for _, c := range table.Columns {
		if c.Name == "deleted_at" {
			assert.Equal(t, "TIMESTAMP", c.Type)
			assert.False(t, c.HasComment())
		}
		if c.Name == "remark" {
			assert.Equal(t, "LONGTEXT", c.Type)
			assert.Equal(t, "비고", c.CommentText())
		}
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		ddl       string
		wantTable string
		wantCols  []string
		wantTypes []string
		wantSkip  int
	}{
		{
			name:      "empty input",
			ddl:       "",
			wantTable: "",
		},
		{
			name:      "lower-cases names",
			ddl:       "CREATE TABLE Users (ID INT NULL, ProductName VARCHAR(10) NULL)",
			wantTable: "users",
			wantCols:  []string{"id", "productname"},
			wantTypes: []string{"INT", "VARCHAR(10)"},
		},
		{
			name: "back-quoted and qualified table name",
			ddl: "CREATE TABLE IF NOT EXISTS `shop`.`Orders` (\n" +
				"  `id` bigint unsigned NOT NULL AUTO_INCREMENT,\n" +
				"  `total` decimal(10,2) DEFAULT NULL COMMENT 'sum',\n" +
				"  PRIMARY KEY (`id`),\n" +
				"  KEY `idx_total` (`total`)\n" +
				") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COMMENT='orders'",
			wantTable: "orders",
			wantCols:  []string{"id", "total"},
			wantTypes: []string{"bigint unsigned", "decimal(10,2)"},
		},
		{
			name: "tokens split across lines",
			ddl: "create table t (\n" +
				"  amount\n    DECIMAL(10,\n 2)\n  NULL\n  COMMENT\n  'money',\n" +
				"  note TEXT\n)",
			wantTable: "t",
			wantCols:  []string{"amount", "note"},
			wantTypes: []string{"DECIMAL(10, 2)", "TEXT"},
		},
		{
			name: "clickhouse nested types",
			ddl: "CREATE TABLE logs.events\n(\n" +
				"    `ts` DateTime64(3, 'Asia/Shanghai'),\n" +
				"    `tags` Array(Nullable(String)) COMMENT 'tag list',\n" +
				"    INDEX idx_ts ts TYPE minmax GRANULARITY 1\n" +
				")\nENGINE = MergeTree\nORDER BY ts",
			wantTable: "events",
			wantCols:  []string{"ts", "tags"},
			wantTypes: []string{"DateTime64(3, 'Asia/Shanghai')", "Array(Nullable(String))"},
		},
		{
			name: "sql comments are ignored",
			ddl: "-- leading comment\nCREATE TABLE t ( /* block, with comma */\n" +
				"  a INT, -- trailing, comment\n" +
				"  # hash comment\n" +
				"  b INT\n)",
			wantTable: "t",
			wantCols:  []string{"a", "b"},
			wantTypes: []string{"INT", "INT"},
		},
		{
			name:      "unmatched clauses are skipped",
			ddl:       "CREATE TABLE t (a INT, ???, 42 INT, lonely, b CHAR(1))",
			wantTable: "t",
			wantCols:  []string{"a", "b"},
			wantTypes: []string{"INT", "CHAR(1)"},
			wantSkip:  3,
		},
		{
			name: "multi-word types",
			ddl: "CREATE TABLE t (a CHARACTER VARYING(255), b DOUBLE PRECISION NOT NULL, c NATIONAL VARCHAR(10), " +
				"d LONG VARCHAR, e NATIONAL CHAR VARYING(5), f TIMESTAMP(3) WITH TIME ZONE)",
			wantTable: "t",
			wantCols:  []string{"a", "b", "c", "d", "e", "f"},
			wantTypes: []string{"CHARACTER VARYING(255)", "DOUBLE PRECISION", "NATIONAL VARCHAR(10)",
				"LONG VARCHAR", "NATIONAL CHAR VARYING(5)", "TIMESTAMP(3) WITH TIME ZONE"},
		},
		{
			name:      "missing or unknown type words",
			ddl:       "CREATE TABLE t (col NOT NULL, a INT, b DEFAULT 1, c FOO BAR, d COMMENT 'x')",
			wantTable: "t",
			wantCols:  []string{"a"},
			wantTypes: []string{"INT"},
			wantSkip:  4,
		},
		{
			name: "keywords as column names",
			ddl: "CREATE TABLE t (index INT, key String, unique UInt8,\n" +
				"  INDEX idx_a a TYPE minmax GRANULARITY 1, KEY k (a), UNIQUE KEY u (a))",
			wantTable: "t",
			wantCols:  []string{"index", "key", "unique"},
			wantTypes: []string{"INT", "String", "UInt8"},
		},
		{
			name:      "whitespace inside type parameters",
			ddl:       "CREATE TABLE t (a VARCHAR\n(\n 255\n ), b Nullable( String ), c Enum8( 'a  b' = 1 ))",
			wantTable: "t",
			wantCols:  []string{"a", "b", "c"},
			wantTypes: []string{"VARCHAR(255)", "Nullable(String)", "Enum8('a  b' = 1)"},
		},
		{
			name:      "duplicates preserved",
			ddl:       "CREATE TABLE t (a INT, A VARCHAR(2))",
			wantTable: "t",
			wantCols:  []string{"a", "a"},
			wantTypes: []string{"INT", "VARCHAR(2)"},
		},
		{
			name:      "missing table name",
			ddl:       "(email VARCHAR(255) NULL)",
			wantTable: "",
			wantCols:  []string{"email"},
			wantTypes: []string{"VARCHAR(255)"},
		},
		{
			name:      "missing closing paren",
			ddl:       "CREATE TABLE t (a INT, b INT",
			wantTable: "t",
			wantCols:  []string{"a", "b"},
			wantTypes: []string{"INT", "INT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := Extract(tt.ddl)
			assert.Equal(t, tt.wantTable, table.Name)
			if len(tt.wantCols) == 0 {
				assert.Empty(t, table.Columns)
			} else {
				assert.Equal(t, tt.wantCols, table.ColumnNames())
			}
			var types []string
			for _, c := range table.Columns {
				types = append(types, c.Type)
			}
			assert.Equal(t, tt.wantTypes, types)
			assert.Len(t, table.Skipped, tt.wantSkip)
		})
	}
}

func TestExtractComments(t *testing.T) {
	ddl := `CREATE TABLE t (
		a INT COMMENT 'it''s',
		b INT COMMENT 'say \'hi\'',
		c INT COMMENT "a, b",
		d INT COMMENT '',
		e INT DEFAULT 'x' COMMENT '<&>'
	)`
	table := Extract(ddl)
	require.Len(t, table.Columns, 5)

	want := []string{"it's", "say 'hi'", "a, b", "", "<&>"}
	for i, c := range table.Columns {
		require.NotNil(t, c.Comment, c.Name)
		assert.Equal(t, want[i], *c.Comment, c.Name)
	}
}

func TestExtractCommentNFC(t *testing.T) {
	// 分解形式的 "한" (U+1112 U+1161 U+11AB)
	decomposed := "\u1112\u1161\u11ab"
	table := Extract("CREATE TABLE t (a INT COMMENT '" + decomposed + "')")
	require.Len(t, table.Columns, 1)
	assert.Equal(t, "\ud55c", table.Columns[0].CommentText())
}

func TestExtractConstraints(t *testing.T) {
	ddl := "CREATE TABLE t (\n" +
		"  a INT NOT NULL,\n" +
		"  b INT NOT NULL,\n" +
		"  c INT,\n" +
		"  CONSTRAINT pk_t PRIMARY KEY (a, `B`),\n" +
		"  UNIQUE KEY uq_c (c),\n" +
		"  FOREIGN KEY (c) REFERENCES other(id),\n" +
		"  CHECK (c > 0)\n" +
		")"
	table := Extract(ddl)
	require.Len(t, table.Columns, 3)
	assert.Empty(t, table.Skipped)

	assert.True(t, table.Columns[0].PrimaryKey)
	assert.True(t, table.Columns[1].PrimaryKey)
	assert.False(t, table.Columns[2].PrimaryKey)
	require.NotNil(t, table.Columns[0].Nullable)
	assert.False(t, *table.Columns[0].Nullable)
	assert.Nil(t, table.Columns[2].Nullable)
}

func TestExtractMultiWordTypeQualifiers(t *testing.T) {
	table := Extract("CREATE TABLE t (b DOUBLE PRECISION NOT NULL COMMENT 'ratio')")
	require.Len(t, table.Columns, 1)
	require.NotNil(t, table.Columns[0].Nullable)
	assert.False(t, *table.Columns[0].Nullable)
	assert.Equal(t, "ratio", table.Columns[0].CommentText())
}

func TestExtractIdempotent(t *testing.T) {
	data, err := os.ReadFile("testdata/apps.sql")
	require.NoError(t, err)
	assert.Equal(t, Extract(string(data)), Extract(string(data)))
}
