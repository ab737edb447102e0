package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lbgen/config"
	"lbgen/internal/generaterun"
	"lbgen/logger"
)

// generateFlags generate 子命令参数，仅在显式传入时覆盖配置
type generateFlags struct {
	output      string
	suffix      string
	author      string
	excludes    []string
	strict      bool
	constraints bool
	rollback    bool
	typeMapping string
	saveDDL     bool
	dsn         string
	driver      string
	table       string
	tableName   string
}

// NewGenerateCmd 生成单张表的 changelog
func NewGenerateCmd() *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:   "generate [schema.sql|-]",
		Short: "由建表语句生成 Liquibase changelog",
		Long: `读取一条 CREATE TABLE 语句，生成包含 createTable 与逐字段 addColumn 的 Liquibase XML changelog。
建表语句来源优先级: --dsn 在线获取 > 文件参数 (- 表示 stdin) > 配置中的 schema.file / schema.inline。`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigAndInitLogging(cmd)
			if err != nil {
				return err
			}
			defer logger.CloseLogFile()

			if err := f.apply(cmd, cfg); err != nil {
				return WrapConfigErr(err)
			}

			req := generaterun.Request{
				TableName: f.tableName,
				Stdin:     cmd.InOrStdin(),
				Stdout:    cmd.OutOrStdout(),
			}
			if len(args) == 1 {
				req.SchemaPath = args[0]
			}

			res, err := generaterun.Run(cmd.Context(), cfg, req)
			if err != nil {
				return err
			}
			if res.Path != "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "输出目录，- 表示输出到标准输出")
	cmd.Flags().StringVar(&f.suffix, "suffix", "", "输出文件后缀 (默认 .changelog.xml)")
	cmd.Flags().StringVar(&f.author, "author", "", "changeSet 作者")
	cmd.Flags().StringArrayVar(&f.excludes, "exclude", nil, "不生成 addColumn 的字段，可重复传入，替换默认排除集合")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "存在无法识别的字段子句时失败")
	cmd.Flags().BoolVar(&f.constraints, "constraints", false, "输出主键、可空与自增约束")
	cmd.Flags().BoolVar(&f.rollback, "rollback", false, "为每个 changeSet 输出 rollback")
	cmd.Flags().StringVar(&f.typeMapping, "type-mapping", "", "字段类型映射 (none, clickhouse)")
	cmd.Flags().BoolVar(&f.saveDDL, "save-ddl", false, "在线获取时同时保存建表语句到输出目录")
	cmd.Flags().StringVar(&f.dsn, "dsn", "", "在线获取建表语句的数据库 DSN")
	cmd.Flags().StringVar(&f.driver, "driver", "", "数据库驱动 (mysql, clickhouse)")
	cmd.Flags().StringVar(&f.table, "table", "", "在线获取的表名，可为 db.table")
	cmd.Flags().StringVar(&f.tableName, "table-name", "", "覆盖 changelog 中使用的表名")

	return cmd
}

// apply 把显式传入的参数写入配置并重新校验
func (f *generateFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("output") {
		if strings.TrimSpace(f.output) == "" {
			return errors.New("--output 不能为空")
		}
		cfg.Output.Dir = f.output
	}
	if flags.Changed("suffix") {
		cfg.Output.Suffix = f.suffix
	}
	if flags.Changed("author") {
		cfg.ChangeLog.Author = f.author
	}
	if flags.Changed("exclude") {
		excluded := []string{}
		for _, e := range f.excludes {
			for _, name := range strings.Split(e, ",") {
				if name = strings.TrimSpace(name); name != "" {
					excluded = append(excluded, name)
				}
			}
		}
		cfg.ChangeLog.ExcludedColumns = excluded
	}
	if flags.Changed("strict") {
		cfg.ChangeLog.Strict = f.strict
	}
	if flags.Changed("constraints") {
		cfg.ChangeLog.WithConstraints = f.constraints
	}
	if flags.Changed("rollback") {
		cfg.ChangeLog.WithRollback = f.rollback
	}
	if flags.Changed("type-mapping") {
		cfg.ChangeLog.TypeMapping = f.typeMapping
	}
	if flags.Changed("save-ddl") {
		cfg.Output.SaveDDL = f.saveDDL
	}
	if flags.Changed("dsn") {
		cfg.Source.DSN = f.dsn
	}
	if flags.Changed("driver") {
		cfg.Source.Driver = f.driver
	}
	if flags.Changed("table") {
		cfg.Source.Table = f.table
	}
	return cfg.Validate()
}
