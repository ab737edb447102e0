package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lbgen/config"
	"lbgen/internal/generaterun"
)

const usersDDL = "CREATE TABLE `users` (\n  `id` INT,\n  `name` VARCHAR(50) COMMENT 'user name',\n  `email` VARCHAR(255)\n)"

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--log-level", "SILENT"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestGenerateToFile(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(t.TempDir(), "users.sql")
	require.NoError(t, os.WriteFile(schema, []byte(usersDDL), 0644))

	out, err := execute(t, "", "generate", schema, "-o", dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "users.changelog.xml")
	assert.Equal(t, path+"\n", out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<addColumn tableName="users">`)
}

func TestGenerateStdinToStdout(t *testing.T) {
	out, err := execute(t, usersDDL, "generate", "-", "-o", "-", "--author", "dev", "--exclude", "id", "--exclude", "email")
	require.NoError(t, err)
	assert.Contains(t, out, `author="dev"`)
	assert.Contains(t, out, `<column name="name" type="VARCHAR(50)" remarks="user name"/>`)
	assert.Contains(t, out, `<changeSet id="2" author="dev">`)
	assert.NotContains(t, out, `<changeSet id="3"`)
}

func TestGenerateEmptyExclusion(t *testing.T) {
	out, err := execute(t, usersDDL, "generate", "-", "-o", "-", "--exclude", "")
	require.NoError(t, err)
	assert.Contains(t, out, `<changeSet id="4" author="baseon">`)
}

func TestGenerateStrict(t *testing.T) {
	_, err := execute(t, "CREATE TABLE t (a INT, ???)", "generate", "-", "-o", "-", "--strict")
	require.Error(t, err)
	assert.True(t, errors.Is(err, generaterun.ErrUnmatchedClauses))
	assert.Equal(t, ExitFailure, ExitCode(err))
}

func TestGenerateConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown mapping", args: []string{"generate", "-", "--type-mapping", "oracle"}},
		{name: "dsn without table", args: []string{"generate", "--dsn", "u:p@tcp(h:3306)/db", "--driver", "mysql"}},
		{name: "empty output", args: []string{"generate", "-", "-o", ""}},
		{name: "missing config", args: []string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "generate", "-"}},
		{name: "no source", args: []string{"generate", "-o", "-"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, usersDDL, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitConfigError, ExitCode(err), err.Error())
		})
	}
}

func TestGenerateWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "lbgen.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
output:
  dir: `+dir+`
  suffix: .xml
changelog:
  author: from-config
schema:
  inline: "CREATE TABLE orders (id INT, total INT)"
`), 0644))

	out, err := execute(t, "", "--config", cfgPath, "generate")
	require.NoError(t, err)
	path := filepath.Join(dir, "orders.xml")
	assert.Equal(t, path+"\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `author="from-config"`)
}

func TestExtract(t *testing.T) {
	out, err := execute(t, usersDDL, "extract", "-")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "table: users", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "NAME"))
	assert.Contains(t, lines[3], `"user name"`)
	assert.True(t, strings.HasPrefix(lines[4], "email"))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitConfigError, ExitCode(WrapConfigErr(errors.New("bad flag"))))
	assert.Equal(t, ExitConfigError, ExitCode(config.ErrInvalidConfig))
	assert.Nil(t, WrapConfigErr(nil))

	wrapped := WrapConfigErr(errors.New("x"))
	assert.Same(t, wrapped, WrapConfigErr(wrapped))
}
