/*
 * @File : logger
 * @Date : 2025/3/4
 * @Version: 1.0.0
 * @Description: 分级日志输出，默认写 stderr，可选写文件
 */

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel 定义日志级别
type LogLevel int

const (
	// SILENT 静默模式，不输出任何日志
	SILENT LogLevel = iota
	// ERROR 只输出错误信息
	ERROR
	// WARN 输出警告和错误信息
	WARN
	// INFO 输出基本信息、警告和错误信息
	INFO
	// DEBUG 输出所有调试信息
	DEBUG
)

var (
	mu              sync.Mutex
	currentLogLevel = INFO

	// stdout 只留给生成结果（-o -），日志统一走 stderr
	logOutput   io.Writer = os.Stderr
	errorOutput io.Writer = os.Stderr

	logFile *os.File
)

// SetLogLevel 设置日志级别
func SetLogLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLogLevel = level
}

// GetCurrentLevel 获取当前日志级别
func GetCurrentLevel() LogLevel {
	mu.Lock()
	defer mu.Unlock()
	return currentLogLevel
}

// SetOutput 替换日志输出目标，返回恢复函数（测试用）
func SetOutput(w io.Writer) func() {
	mu.Lock()
	defer mu.Unlock()
	prevOut, prevErr := logOutput, errorOutput
	logOutput, errorOutput = w, w
	return func() {
		mu.Lock()
		defer mu.Unlock()
		logOutput, errorOutput = prevOut, prevErr
	}
}

// InitFileLogging 初始化文件日志
func InitFileLogging(enableFileLog bool, logFilePath string, baseDir string) error {
	if !enableFileLog {
		return nil
	}

	if logFilePath == "" {
		logsDir := filepath.Join(baseDir, "logs")
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return fmt.Errorf("创建日志目录失败: %w", err)
		}
		timestamp := time.Now().Format("20060102_150405")
		logFilePath = filepath.Join(logsDir, fmt.Sprintf("lbgen_%s.log", timestamp))
	} else {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
			return fmt.Errorf("创建日志文件目录失败: %w", err)
		}
	}

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("打开日志文件失败: %w", err)
	}

	mu.Lock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = file
	logOutput = file
	errorOutput = file
	mu.Unlock()

	fmt.Fprintf(os.Stderr, "日志将写入文件: %s\n", logFilePath)
	return nil
}

// CloseLogFile 关闭日志文件并恢复 stderr 输出
func CloseLogFile() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
		logOutput = os.Stderr
		errorOutput = os.Stderr
	}
}

// ParseLogLevel 从字符串解析日志级别，无法识别时返回 INFO
func ParseLogLevel(levelStr string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "SILENT":
		return SILENT
	case "ERROR":
		return ERROR
	case "WARN", "WARNING":
		return WARN
	case "INFO":
		return INFO
	case "DEBUG":
		return DEBUG
	default:
		return INFO
	}
}

// LogLevelString 返回日志级别的字符串表示
func LogLevelString(level LogLevel) string {
	switch level {
	case SILENT:
		return "SILENT"
	case ERROR:
		return "ERROR"
	case WARN:
		return "WARN"
	case DEBUG:
		return "DEBUG"
	default:
		return "INFO"
	}
}

func write(level LogLevel, toErr bool, prefix, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if currentLogLevel < level {
		return
	}
	w := logOutput
	if toErr {
		w = errorOutput
	}
	fmt.Fprintf(w, prefix+format+"\n", args...)
}

// Error 输出错误日志
func Error(format string, args ...interface{}) {
	write(ERROR, true, "ERROR: ", format, args...)
}

// Warn 输出警告日志
func Warn(format string, args ...interface{}) {
	write(WARN, false, "警告: ", format, args...)
}

// Info 输出信息日志
func Info(format string, args ...interface{}) {
	write(INFO, false, "", format, args...)
}

// Debug 输出调试日志
func Debug(format string, args ...interface{}) {
	write(DEBUG, false, "DEBUG: ", format, args...)
}
