package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lbgen/config"
	"lbgen/retry"
)

// 测试用内存驱动：按 DSN 取预置结果
const fakeDriverName = "lbgenfake"

type fixture struct {
	mu       sync.Mutex
	columns  []string
	row      []driver.Value
	failures int
	queries  []string
}

var (
	fixturesMu sync.Mutex
	fixtures   = map[string]*fixture{}
)

func init() {
	sql.Register(fakeDriverName, fakeDriver{})
}

type fakeDriver struct{}

func (fakeDriver) Open(name string) (driver.Conn, error) {
	fixturesMu.Lock()
	defer fixturesMu.Unlock()
	f, ok := fixtures[name]
	if !ok {
		return nil, errors.New("unknown fixture " + name)
	}
	return fakeConn{f: f}, nil
}

type fakeConn struct{ f *fixture }

func (c fakeConn) Prepare(query string) (driver.Stmt, error) { return fakeStmt{f: c.f, query: query}, nil }
func (c fakeConn) Close() error                              { return nil }
func (c fakeConn) Begin() (driver.Tx, error)                 { return nil, errors.New("not supported") }

type fakeStmt struct {
	f     *fixture
	query string
}

func (s fakeStmt) Close() error  { return nil }
func (s fakeStmt) NumInput() int { return -1 }
func (s fakeStmt) Exec(args []driver.Value) (driver.Result, error) {
	return nil, errors.New("not supported")
}

func (s fakeStmt) Query(args []driver.Value) (driver.Rows, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	s.f.queries = append(s.f.queries, s.query)
	if s.f.failures > 0 {
		s.f.failures--
		return nil, errors.New("transient failure")
	}
	var rows [][]driver.Value
	if s.f.row != nil {
		rows = append(rows, s.f.row)
	}
	return &fakeRows{columns: s.f.columns, rows: rows}, nil
}

type fakeRows struct {
	columns []string
	rows    [][]driver.Value
	i       int
}

func (r *fakeRows) Columns() []string { return r.columns }
func (r *fakeRows) Close() error      { return nil }
func (r *fakeRows) Next(dest []driver.Value) error {
	if r.i >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.i])
	r.i++
	return nil
}

func newFakeSource(t *testing.T, driverName string, f *fixture) *SchemaSource {
	t.Helper()
	fixturesMu.Lock()
	fixtures[t.Name()] = f
	fixturesMu.Unlock()
	t.Cleanup(func() {
		fixturesMu.Lock()
		delete(fixtures, t.Name())
		fixturesMu.Unlock()
	})

	db, err := sqlx.Open(fakeDriverName, t.Name())
	require.NoError(t, err)
	src := NewSchemaSourceWithDB(db, driverName, retry.Config{MaxRetries: 2, Delay: time.Millisecond}, time.Second)
	t.Cleanup(func() { src.Close() })
	return src
}

func TestFetchDDLMySQL(t *testing.T) {
	f := &fixture{
		columns:  []string{"Table", "Create Table"},
		row:      []driver.Value{"apps", "CREATE TABLE `apps` (`id` int)"},
		failures: 1,
	}
	src := newFakeSource(t, DriverMySQL, f)

	ddl, err := src.FetchDDL(context.Background(), "shop.apps")
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE `apps` (`id` int)", ddl)
	require.Len(t, f.queries, 2)
	assert.Equal(t, "SHOW CREATE TABLE `shop`.`apps`", f.queries[1])
}

func TestFetchDDLClickHouse(t *testing.T) {
	f := &fixture{
		columns: []string{"statement"},
		row:     []driver.Value{"CREATE TABLE logs.events (`ts` DateTime)"},
	}
	src := newFakeSource(t, DriverClickHouse, f)

	ddl, err := src.FetchDDL(context.Background(), "events")
	require.NoError(t, err)
	assert.Contains(t, ddl, "DateTime")
	assert.Equal(t, []string{"SHOW CREATE TABLE `events`"}, f.queries)
}

func TestFetchDDLNoRows(t *testing.T) {
	f := &fixture{columns: []string{"statement"}}
	src := newFakeSource(t, DriverClickHouse, f)

	_, err := src.FetchDDL(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.Len(t, f.queries, 1)
}

func TestFetchDDLBadTable(t *testing.T) {
	src := newFakeSource(t, DriverMySQL, &fixture{})
	_, err := src.FetchDDL(context.Background(), "a.b.c")
	assert.Error(t, err)
}

func TestQuoteTableName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "apps", want: "`apps`"},
		{in: " shop.apps ", want: "`shop`.`apps`"},
		{in: "`shop`.`apps`", want: "`shop`.`apps`"},
		{in: "we`ird", want: "`we``ird`"},
		{in: "", wantErr: true},
		{in: "shop.", wantErr: true},
		{in: "a.b.c", wantErr: true},
	}
	for _, tt := range tests {
		got, err := QuoteTableName(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestNewSchemaSourceValidation(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		dsn    string
	}{
		{name: "unsupported", driver: "oracle", dsn: "x"},
		{name: "empty dsn", driver: "mysql", dsn: ""},
		{name: "bad mysql dsn", driver: "mysql", dsn: "user:pass@tcp(localhost:3306"},
		{name: "bad clickhouse dsn", driver: "clickhouse", dsn: "http://localhost:8123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Source.Driver = tt.driver
			cfg.Source.DSN = tt.dsn
			_, err := NewSchemaSource(cfg)
			assert.Error(t, err)
		})
	}

	cfg := config.Default()
	cfg.Source.Driver = "oracle"
	cfg.Source.DSN = "x"
	_, err := NewSchemaSource(cfg)
	assert.True(t, errors.Is(err, ErrUnsupportedDriver))

	cfg = config.Default()
	cfg.Source.Driver = "MySQL"
	cfg.Source.DSN = "user:pass@tcp(localhost:3306)/shop"
	src, err := NewSchemaSource(cfg)
	require.NoError(t, err)
	assert.NoError(t, src.Close())
}
