package generaterun

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"lbgen/builder"
	"lbgen/config"
	"lbgen/database"
	"lbgen/fileops"
	"lbgen/internal/common"
	"lbgen/logger"
	"lbgen/parser"
)

// ErrUnmatchedClauses 严格模式下存在无法识别的字段子句
var ErrUnmatchedClauses = errors.New("unmatched column clauses")

// Request 单次生成请求，非空字段覆盖配置
type Request struct {
	SchemaPath string // 建表语句文件，"-" 表示 stdin
	TableName  string // 覆盖识别出的表名
	Stdin      io.Reader
	Stdout     io.Writer
}

// Result 生成结果汇总
type Result struct {
	Table      string
	Path       string // 输出到 stdout 时为空
	SchemaPath string // 保存的建表语句快照，未保存时为空
	Columns    int
	AddColumns int
	Skipped    []string
}

// GenerateManager 负责单张表从建表语句到 changelog 的完整流程
type GenerateManager struct {
	cfg         *config.Config
	req         Request
	fileManager *fileops.FileManager
}

// NewGenerateManager 创建生成管理器
func NewGenerateManager(cfg *config.Config, req Request) *GenerateManager {
	if req.Stdin == nil {
		req.Stdin = os.Stdin
	}
	if req.Stdout == nil {
		req.Stdout = os.Stdout
	}
	return &GenerateManager{
		cfg:         cfg,
		req:         req,
		fileManager: fileops.NewFileManager(cfg.Output.Dir, cfg.Output.Suffix),
	}
}

// Run 生成单张表的 changelog
func Run(ctx context.Context, cfg *config.Config, req Request) (Result, error) {
	return NewGenerateManager(cfg, req).ExecuteGenerate(ctx)
}

// LoadTable 读取并解析建表语句，不做严格模式检查
func LoadTable(ctx context.Context, cfg *config.Config, req Request) (parser.Table, error) {
	gm := NewGenerateManager(cfg, req)
	ddl, _, err := gm.loadDDL(ctx)
	if err != nil {
		return parser.Table{}, err
	}
	return common.ParseTableFromString(ddl, req.TableName), nil
}

// ExecuteGenerate 执行完整流程
func (gm *GenerateManager) ExecuteGenerate(ctx context.Context) (Result, error) {
	// 1) 获取建表语句
	ddl, fromDB, err := gm.loadDDL(ctx)
	if err != nil {
		return Result{}, err
	}

	// 2) 解析
	table := common.ParseTableFromString(ddl, gm.req.TableName)
	if len(table.Skipped) > 0 && gm.cfg.ChangeLog.Strict {
		return Result{Skipped: table.Skipped}, fmt.Errorf("%w: %s", ErrUnmatchedClauses, strings.Join(table.Skipped, "; "))
	}
	if len(table.Columns) == 0 {
		logger.Warn("未解析到任何字段，将生成不含字段的 changelog")
	}

	// 3) 类型映射
	columns, err := builder.ConvertColumns(table.Columns, gm.cfg.ChangeLog.TypeMapping)
	if err != nil {
		return Result{}, fmt.Errorf("字段类型映射失败: %w", err)
	}

	// 4) 生成 changelog
	b := builder.NewChangeLogBuilder(table.Name, columns, builder.Options{
		Author:          gm.cfg.ChangeLog.Author,
		XSDVersion:      gm.cfg.ChangeLog.XSDVersion,
		Excluded:        gm.cfg.ChangeLog.ExcludedColumns,
		WithConstraints: gm.cfg.ChangeLog.WithConstraints,
		WithRollback:    gm.cfg.ChangeLog.WithRollback,
	})
	doc := b.Build()

	res := Result{
		Table:      b.TableName(),
		Columns:    len(columns),
		AddColumns: len(b.Records()) - 1,
		Skipped:    table.Skipped,
	}

	// 5) 输出
	if gm.fileManager.IsStdout() {
		if _, err := io.WriteString(gm.req.Stdout, doc); err != nil {
			return res, fmt.Errorf("写出changelog失败: %w", err)
		}
	} else {
		if res.Path, err = gm.fileManager.WriteChangeLog(res.Table, doc); err != nil {
			return res, err
		}
		if fromDB && gm.cfg.Output.SaveDDL {
			if res.SchemaPath, err = gm.fileManager.WriteSchema(res.Table, ddl); err != nil {
				return res, err
			}
		}
	}

	logger.Info("表 %s 生成完成: 字段 %d 个，AddColumn %d 个，跳过子句 %d 个", res.Table, res.Columns, res.AddColumns, len(res.Skipped))
	if res.Path != "" {
		logger.Info("changelog 已写入: %s", res.Path)
	}
	return res, nil
}

// loadDDL 按 DSN > 文件 > 配置内联 的顺序获取建表语句，第二个返回值表示是否来自数据库
func (gm *GenerateManager) loadDDL(ctx context.Context) (string, bool, error) {
	if gm.cfg.Source.DSN != "" {
		logger.Info("从数据库获取表 %s 的建表语句 (driver: %s)", gm.cfg.Source.Table, gm.cfg.Source.Driver)
		src, err := database.NewSchemaSource(gm.cfg)
		if err != nil {
			return "", false, err
		}
		defer src.Close()

		ddl, err := src.FetchDDL(ctx, gm.cfg.Source.Table)
		if err != nil {
			return "", false, err
		}
		return ddl, true, nil
	}

	path := gm.req.SchemaPath
	if path == "" {
		path = gm.cfg.Schema.File
	}
	if path != "" {
		logger.Info("读取建表语句: %s", path)
		ddl, err := common.ReadSchema(path, gm.req.Stdin)
		return ddl, false, err
	}

	if strings.TrimSpace(gm.cfg.Schema.Inline) != "" {
		logger.Debug("使用配置中的内联建表语句")
		return gm.cfg.Schema.Inline, false, nil
	}
	return "", false, fmt.Errorf("%w: 未提供建表语句来源 (文件、schema.inline 或 source.dsn)", config.ErrInvalidConfig)
}
