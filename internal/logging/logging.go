package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config 控制日志级别与格式。
type Config struct {
	Level  string // debug|info|warn|error
	Format string // text|json
}

// New 构造 *slog.Logger。w 为 nil 时写 stderr（stdout 留给 --file 模式输出路径）。
func New(cfg Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// ParseLevel 解析日志级别；未知值回退到 info。
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Validate 检查级别与格式是否为已知取值。
func Validate(cfg Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Level)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("未知的日志级别：%q", cfg.Level)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("未知的日志格式：%q", cfg.Format)
	}
	return nil
}
