package logger

import (
	"log/slog"
	"os"
	"strings"
)

// NewDefault 根据级别字符串创建标准输出的 slog Logger。
//
// 参数:
//
//	level: 日志级别 debug / info / warn / error，无法识别时退回 info
//
// 返回值:
//
//	*slog.Logger: 初始化完成的日志记录器
func NewDefault(level string) *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
