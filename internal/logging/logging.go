// Package logging 根据配置初始化 logrus。
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"projanalyzer/internal/config"
)

// Configure 按配置设置指定 logger 的级别、格式和输出位置。
// 返回的 closer 用于在退出前关闭日志文件，输出到终端时为空操作。
// 非法的级别或无法打开的文件不会导致失败，而是回退到默认值并给出警告。
// 输出为 io.Discard 的 logger 在 stderr/stdout 配置下保持静默，只有显式的日志文件会替换它。
func Configure(logger *logrus.Logger, cfg config.LoggingConfig) io.Closer {
	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info' instead. Error: %v", cfg.Level, err)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	// 已被静默的 logger（如测试注入的 null logger）不改写到终端。
	discarded := logger.Out == io.Discard

	var closer io.Closer = nopCloser{}
	switch strings.ToLower(strings.TrimSpace(cfg.Output)) {
	case "", "stderr":
		if !discarded {
			logger.SetOutput(os.Stderr)
		}
	case "stdout":
		if !discarded {
			logger.SetOutput(os.Stdout)
		}
	default:
		file, openErr := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if openErr != nil {
			logger.SetOutput(os.Stderr)
			logger.Warnf("Failed to open log file '%s', using 'stderr' instead. Error: %v", cfg.Output, openErr)
		} else {
			logger.SetOutput(file)
			closer = file
		}
	}

	logger.Debug("Logger initialized")
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
