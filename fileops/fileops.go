/*
 * @File : fileops
 * @Date : 2025/1/27
 * @Version: 1.0.0
 * @Description: 文件操作功能：changelog 路径计算与原子写入
 */

package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StdoutDir 输出目录为该值时不写文件
const StdoutDir = "-"

// FileManager 文件管理器
type FileManager struct {
	outputDir string
	suffix    string
}

// NewFileManager 创建文件管理器
func NewFileManager(outputDir, suffix string) *FileManager {
	return &FileManager{outputDir: outputDir, suffix: suffix}
}

// IsStdout 是否输出到标准输出
func (fm *FileManager) IsStdout() bool {
	return fm.outputDir == StdoutDir
}

// EnsureOutputDir 确保输出目录存在
func (fm *FileManager) EnsureOutputDir() error {
	if fm.IsStdout() {
		return nil
	}
	if err := os.MkdirAll(fm.outputDir, 0755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	return nil
}

// ChangeLogPath 获取表对应的 changelog 文件路径
func (fm *FileManager) ChangeLogPath(tableName string) string {
	return filepath.Join(fm.outputDir, fileBase(tableName)+fm.suffix)
}

// SchemaPath 获取表对应的建表语句快照路径
func (fm *FileManager) SchemaPath(tableName string) string {
	return filepath.Join(fm.outputDir, fileBase(tableName)+".sql")
}

// WriteChangeLog 写入 changelog，返回文件路径
func (fm *FileManager) WriteChangeLog(tableName, content string) (string, error) {
	path := fm.ChangeLogPath(tableName)
	if err := fm.writeAtomic(path, content); err != nil {
		return "", fmt.Errorf("写入changelog失败: %w", err)
	}
	return path, nil
}

// WriteSchema 保存建表语句快照，返回文件路径
func (fm *FileManager) WriteSchema(tableName, ddl string) (string, error) {
	path := fm.SchemaPath(tableName)
	if err := fm.writeAtomic(path, ddl); err != nil {
		return "", fmt.Errorf("保存建表语句失败: %w", err)
	}
	return path, nil
}

// writeAtomic 先写同目录临时文件再 rename，中途失败不会留下半个文件
func (fm *FileManager) writeAtomic(path, content string) error {
	if err := fm.EnsureOutputDir(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".lbgen-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// fileBase 表名中的路径分隔符替换为下划线
func fileBase(tableName string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(tableName)
}
