/*
 * @File : config
 * @Date : 2025/3/6
 * @Version: 1.0.0
 * @Description: 配置结构定义与加载，支持 JSON / YAML 文件与 LBGEN_ 环境变量覆盖
 */

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	env "github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"lbgen/builder"
)

// ErrInvalidConfig 配置校验失败
var ErrInvalidConfig = errors.New("invalid config")

// EnvPrefix 环境变量前缀
const EnvPrefix = "LBGEN_"

// OutputConfig 输出位置
type OutputConfig struct {
	// "-" 表示输出到 stdout
	Dir    string `json:"dir" yaml:"dir" env:"DIR"`
	Suffix string `json:"suffix" yaml:"suffix" env:"SUFFIX"`

	// SaveDDL 在线来源时同时把获取到的建表语句保存为 <table>.sql
	SaveDDL bool `json:"save_ddl" yaml:"save_ddl" env:"SAVE_DDL"`
}

// ChangeLogConfig changelog 生成选项
type ChangeLogConfig struct {
	Author          string   `json:"author" yaml:"author" env:"AUTHOR"`
	XSDVersion      string   `json:"xsd_version" yaml:"xsd_version" env:"XSD_VERSION"`
	ExcludedColumns []string `json:"excluded_columns" yaml:"excluded_columns" env:"EXCLUDED_COLUMNS" envSeparator:","`
	WithConstraints bool     `json:"with_constraints" yaml:"with_constraints" env:"WITH_CONSTRAINTS"`
	WithRollback    bool     `json:"with_rollback" yaml:"with_rollback" env:"WITH_ROLLBACK"`
	TypeMapping     string   `json:"type_mapping" yaml:"type_mapping" env:"TYPE_MAPPING"`

	// Strict 存在无法识别的字段子句时报错而不是跳过
	Strict bool `json:"strict" yaml:"strict" env:"STRICT"`
}

// SchemaConfig 文本形式的建表语句来源
type SchemaConfig struct {
	File   string `json:"file" yaml:"file" env:"FILE"`
	Inline string `json:"inline" yaml:"inline" env:"INLINE"`
}

// SourceConfig 在线数据库来源，执行 SHOW CREATE TABLE
type SourceConfig struct {
	// mysql / clickhouse
	Driver         string `json:"driver" yaml:"driver" env:"DRIVER"`
	DSN            string `json:"dsn" yaml:"dsn" env:"DSN"`
	Table          string `json:"table" yaml:"table" env:"TABLE"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds" env:"TIMEOUT_SECONDS"`
}

// RetryConfig 在线查询的重试配置
type RetryConfig struct {
	MaxRetries int `json:"max_retries" yaml:"max_retries" env:"MAX_RETRIES"`
	DelayMs    int `json:"delay_ms" yaml:"delay_ms" env:"DELAY_MS"`
}

// LogConfig 日志配置
type LogConfig struct {
	LogLevel      string `json:"log_level" yaml:"log_level" env:"LEVEL"`
	EnableFileLog bool   `json:"enable_file_log" yaml:"enable_file_log" env:"ENABLE_FILE"`
	LogFilePath   string `json:"log_file_path" yaml:"log_file_path" env:"FILE_PATH"`
}

// Config 应用配置
type Config struct {
	Output    OutputConfig    `json:"output" yaml:"output" envPrefix:"OUTPUT_"`
	ChangeLog ChangeLogConfig `json:"changelog" yaml:"changelog" envPrefix:"CHANGELOG_"`
	Schema    SchemaConfig    `json:"schema" yaml:"schema" envPrefix:"SCHEMA_"`
	Source    SourceConfig    `json:"source" yaml:"source" envPrefix:"SOURCE_"`
	Retry     RetryConfig     `json:"retry" yaml:"retry" envPrefix:"RETRY_"`
	Log       LogConfig       `json:"log" yaml:"log" envPrefix:"LOG_"`
}

// Default 不使用配置文件时的默认配置
func Default() *Config {
	// 数值项在此设定，文件或环境变量中显式写 0 时保留 0
	cfg := &Config{
		Source: SourceConfig{TimeoutSeconds: 30},
		Retry:  RetryConfig{MaxRetries: 3, DelayMs: 100},
	}
	cfg.applyDefaults()
	return cfg
}

// FromEnv 不使用配置文件时：环境变量覆盖默认配置
func FromEnv() (*Config, error) {
	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig 从配置文件加载配置，按扩展名选择 JSON 或 YAML，之后应用环境变量覆盖
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 在默认配置上解码，文件中未出现的字段保持默认值
	cfg := Default()
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析YAML配置文件失败: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv 用 LBGEN_ 前缀的环境变量覆盖已有配置，未设置的变量保持原值
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("解析环境变量失败: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	if c.Output.Suffix == "" {
		c.Output.Suffix = ".changelog.xml"
	}
	if c.ChangeLog.Author == "" {
		c.ChangeLog.Author = builder.DefaultAuthor
	}
	if c.ChangeLog.XSDVersion == "" {
		c.ChangeLog.XSDVersion = builder.DefaultXSDVersion
	}
	if c.ChangeLog.ExcludedColumns == nil {
		c.ChangeLog.ExcludedColumns = append([]string(nil), builder.DefaultExcludedColumns...)
	}
	if c.ChangeLog.TypeMapping == "" {
		c.ChangeLog.TypeMapping = builder.TypeMappingNone
	}
	if c.Log.LogLevel == "" {
		c.Log.LogLevel = "INFO"
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if strings.ContainsAny(c.Output.Suffix, `/\`) {
		return fmt.Errorf("%w: output.suffix 不能包含路径分隔符: %s", ErrInvalidConfig, c.Output.Suffix)
	}
	switch strings.ToLower(c.ChangeLog.TypeMapping) {
	case builder.TypeMappingNone, builder.TypeMappingClickHouse:
	default:
		return fmt.Errorf("%w: 未知的 changelog.type_mapping: %s", ErrInvalidConfig, c.ChangeLog.TypeMapping)
	}
	if c.Source.DSN != "" {
		switch strings.ToLower(c.Source.Driver) {
		case "mysql", "clickhouse":
		default:
			return fmt.Errorf("%w: source.driver 必须为 mysql 或 clickhouse: %q", ErrInvalidConfig, c.Source.Driver)
		}
		if strings.TrimSpace(c.Source.Table) == "" {
			return fmt.Errorf("%w: 配置了 source.dsn 时必须提供 source.table", ErrInvalidConfig)
		}
	}
	if c.Source.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: source.timeout_seconds 不能为负数", ErrInvalidConfig)
	}
	if c.Retry.MaxRetries < 0 || c.Retry.DelayMs < 0 {
		return fmt.Errorf("%w: retry 配置不能为负数", ErrInvalidConfig)
	}
	return nil
}
