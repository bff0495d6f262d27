package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Name is the name of the application the logger is created for.
type Name string

// Config is the configuration for a logger.
type Config struct {
	// name is the application name, attached to every record.
	name string

	// level is the minimum level to log.
	level slog.Leveler

	// filename is the rotated log file to tee output into.
	filename string
}

// NewConfig creates a new logging configuration with sensible defaults.
func NewConfig(name Name) *Config {
	return &Config{
		name:     string(name),
		level:    slog.LevelDebug,
		filename: fmt.Sprintf("%s.log", name),
	}
}

// CommonLogger creates the common application logger. Output is written to both
// stdout and a size-rotated log file.
func CommonLogger(c *Config) (*slog.Logger, error) {
	if c == nil {
		return nil, errors.New("nil logging config")
	}

	// Rotate the log file so long-running deployments do not fill the disk.
	rotator := &lumberjack.Logger{
		Filename:   c.filename,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}

	h := slog.NewJSONHandler(io.MultiWriter(os.Stdout, rotator), &slog.HandlerOptions{
		Level: c.level,
	})

	return slog.New(h).With(slog.String("app", c.name)), nil
}
