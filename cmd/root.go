package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"lbgen/config"
	"lbgen/fileops"
	"lbgen/logger"
)

// NewRootCmd 构建根命令，注册持久化参数与子命令
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lbgen",
		Short:         "由 CREATE TABLE 语句生成 Liquibase XML changelog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// 持久化参数（所有子命令可用）
	rootCmd.PersistentFlags().String("config", "", "配置文件路径 (.json / .yaml)，不提供时使用默认配置与 LBGEN_ 环境变量")
	rootCmd.PersistentFlags().String("log-level", "", "日志级别 (SILENT, ERROR, WARN, INFO, DEBUG)")

	// 注册子命令
	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewExtractCmd())

	return rootCmd
}

// loadConfigAndInitLogging 读取配置并初始化日志（不使用全局变量）
func loadConfigAndInitLogging(cmd *cobra.Command) (*config.Config, error) {
	// 读取持久化参数
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")
	logLevel, _ := cmd.Root().PersistentFlags().GetString("log-level")

	// 先用命令行参数设置日志级别，保证加载配置的过程也按该级别输出
	if strings.TrimSpace(logLevel) != "" {
		logger.SetLogLevel(logger.ParseLogLevel(logLevel))
	}

	var cfg *config.Config
	var err error
	if strings.TrimSpace(configPath) == "" {
		logger.Debug("未提供配置文件，使用默认配置")
		cfg, err = config.FromEnv()
	} else {
		logger.Info("使用配置文件: %s", configPath)
		cfg, err = config.LoadConfig(configPath)
	}
	if err != nil {
		return nil, WrapConfigErr(err)
	}

	// 初始化文件日志（如果启用）
	baseDir := cfg.Output.Dir
	if baseDir == fileops.StdoutDir {
		baseDir = "."
	}
	if err := logger.InitFileLogging(cfg.Log.EnableFileLog, cfg.Log.LogFilePath, baseDir); err != nil {
		return nil, err
	}

	// 命令行参数优先于配置文件与环境变量
	if strings.TrimSpace(logLevel) == "" {
		logLevel = cfg.Log.LogLevel
	}
	logger.SetLogLevel(logger.ParseLogLevel(logLevel))
	logger.Debug("日志级别设置为: %s", logger.LogLevelString(logger.GetCurrentLevel()))

	return cfg, nil
}
