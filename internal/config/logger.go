package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/simp-lee/logger"
)

// BuildLoggerOpts translates cfg into logger options. The console sink is
// always configured; a file sink is added when FilePath is set, with rotation
// options only for the fields that carry a value. It returns nil for a nil cfg.
func BuildLoggerOpts(cfg *LogConfig) []logger.Option {
	if cfg == nil {
		return nil
	}

	format := outputFormat(cfg.Format)

	// Color defaults to on.
	colorEnabled := true
	if cfg.Color != nil {
		colorEnabled = *cfg.Color
	}

	// ContextMiddleware lifts request-scoped attrs such as request_id into every record.
	opts := []logger.Option{
		logger.WithLevel(parseLevel(cfg.Level)),
		logger.WithMiddleware(logger.ContextMiddleware()),
		logger.WithConsoleFormat(format),
		logger.WithConsoleColor(colorEnabled),
	}

	path := strings.TrimSpace(cfg.FilePath)
	if path == "" {
		return opts
	}
	opts = append(opts, logger.WithFilePath(path), logger.WithFileFormat(format))
	if cfg.MaxSizeMB > 0 {
		opts = append(opts, logger.WithMaxSizeMB(cfg.MaxSizeMB))
	}
	if cfg.RetentionDays > 0 {
		opts = append(opts, logger.WithRetentionDays(cfg.RetentionDays))
	}
	if cfg.MaxBackups > 0 {
		opts = append(opts, logger.WithMaxBackups(cfg.MaxBackups))
	}
	if cfg.CompressRotated != nil {
		opts = append(opts, logger.WithCompressRotated(*cfg.CompressRotated))
	}
	return opts
}

// SetupLogger builds the process logger from cfg and installs it as the slog
// default. The caller owns the returned logger and must Close it so the file
// sink is flushed. On error the previous default is left in place.
func SetupLogger(cfg *LogConfig) (*logger.Logger, error) {
	if cfg == nil {
		return nil, errors.New("log config is nil")
	}

	log, err := logger.New(BuildLoggerOpts(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	log.SetDefault()
	return log, nil
}

// outputFormat maps log.format to a logger format. Unchecked values fall back
// to the library's custom format.
func outputFormat(s string) logger.OutputFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return logger.FormatText
	case "json":
		return logger.FormatJSON
	default:
		return logger.FormatCustom
	}
}

// parseLevel converts a level name to a slog.Level, defaulting to info.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
