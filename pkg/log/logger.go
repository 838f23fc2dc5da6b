package log

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
	"io"
	"os"
	"sync"
	"time"
)

var logger zerolog.Logger
var once sync.Once

type LoggerOption func(*LoggerConfig)

type LoggerConfig struct {
	fileName string
	console  bool
	level    zerolog.Level
	output   io.Writer
}

func WithFileLogger(fileName string) LoggerOption {
	return func(l *LoggerConfig) {
		l.fileName = fileName
	}
}

func WithConsoleLogger() LoggerOption {
	return func(l *LoggerConfig) {
		l.console = true
	}
}

// WithLevel sets the minimum level by name ("debug", "info", ...). Unknown
// names keep the info default.
func WithLevel(name string) LoggerOption {
	return func(l *LoggerConfig) {
		if lvl, err := zerolog.ParseLevel(name); err == nil && lvl != zerolog.NoLevel {
			l.level = lvl
		}
	}
}

// WithOutput replaces stdout as the base writer.
func WithOutput(w io.Writer) LoggerOption {
	return func(l *LoggerConfig) {
		l.output = w
	}
}

// Init builds the process wide logger. Only the first call has an effect.
func Init(serviceName string, opts ...LoggerOption) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := &LoggerConfig{level: zerolog.InfoLevel, output: os.Stdout}

		for _, opt := range opts {
			opt(l)
		}

		output := make([]io.Writer, 0, 2)
		if l.console {
			output = append(output, zerolog.ConsoleWriter{
				Out:        l.output,
				TimeFormat: time.RFC3339,
			})
		}
		if l.fileName != "" {
			output = append(output, &lumberjack.Logger{
				Filename:   l.fileName,
				MaxSize:    5,
				MaxBackups: 10,
				MaxAge:     14,
				Compress:   true,
			})
		}
		if len(output) == 0 {
			output = append(output, l.output)
		}

		logger = zerolog.New(zerolog.MultiLevelWriter(output...)).
			Level(l.level).
			With().
			Timestamp().
			Str("service", serviceName).
			Logger()
	})
}

// GetLogger returns the process logger. Before Init it is a disabled logger.
func GetLogger() zerolog.Logger {
	return logger
}

// Component returns the process logger tagged with a component name.
func Component(name string) *zerolog.Logger {
	l := logger.With().Str("component", name).Logger()
	return &l
}
