package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/datazip-inc/dskit/constants"
)

// Config selects the sinks of a Logger. The zero value writes nothing;
// use DefaultConfig for console-only output.
type Config struct {
	// Console enables output to stdout (or Writer when set)
	Console bool `json:"console" mapstructure:"console"`

	// File is an optional log file path
	File string `json:"file" mapstructure:"file"`

	// Append keeps the existing content of File; by default it is truncated
	Append bool `json:"append" mapstructure:"append"`

	// Level is the minimum level written (debug, info, warn, error)
	Level string `json:"level" mapstructure:"level"`

	// Writer replaces stdout as the console sink
	Writer io.Writer `json:"-" mapstructure:"-"`
}

func DefaultConfig() Config {
	return Config{Console: true, Level: zerolog.DebugLevel.String()}
}

// Logger writes "<timestamp> [<LEVEL>] <message>" lines to its sinks.
type Logger struct {
	zl   zerolog.Logger
	file io.Closer
}

// New builds a Logger from cfg. The caller owns the returned Logger and
// should Close it to release the file sink.
func New(cfg Config) (*Logger, error) {
	level := zerolog.DebugLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level[%s]: %s", cfg.Level, err)
		}
		level = parsed
	}

	var writers []io.Writer
	if cfg.Console {
		out := cfg.Writer
		if out == nil {
			out = os.Stdout
		}
		writers = append(writers, lineWriter(out))
	}

	var file *lumberjack.Logger
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %s", err)
		}
		if !cfg.Append {
			if err := os.Truncate(cfg.File, 0); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to truncate log file: %s", err)
			}
		}
		file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
		}
		writers = append(writers, lineWriter(file))
	}

	l := &Logger{zl: zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()}
	if file != nil {
		l.file = file
	}
	return l, nil
}

func lineWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    true,
		TimeFormat: constants.DefaultLogTimeFormat,
		PartsOrder: []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatLevel: func(i interface{}) string {
			return fmt.Sprintf("[%s]", strings.ToUpper(fmt.Sprint(i)))
		},
	}
}

// Close releases the file sink, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) Debug(v ...interface{}) { l.zl.Debug().Msg(fmt.Sprint(v...)) }
func (l *Logger) Info(v ...interface{})  { l.zl.Info().Msg(fmt.Sprint(v...)) }
func (l *Logger) Warn(v ...interface{})  { l.zl.Warn().Msg(fmt.Sprint(v...)) }
func (l *Logger) Error(v ...interface{}) { l.zl.Error().Msg(fmt.Sprint(v...)) }

// Warning is an alias of Warn
func (l *Logger) Warning(v ...interface{}) { l.Warn(v...) }

func (l *Logger) Debugf(format string, v ...interface{}) { l.zl.Debug().Msgf(format, v...) }
func (l *Logger) Infof(format string, v ...interface{})  { l.zl.Info().Msgf(format, v...) }
func (l *Logger) Warnf(format string, v ...interface{})  { l.zl.Warn().Msgf(format, v...) }
func (l *Logger) Errorf(format string, v ...interface{}) { l.zl.Error().Msgf(format, v...) }

// process-wide logger used by the package level helpers. Init is expected to
// be called once at startup before any concurrent use.
var (
	mu  sync.RWMutex
	std = mustNew(DefaultConfig())
)

func mustNew(cfg Config) *Logger {
	l, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return l
}

// Init replaces the process-wide logger and closes the previous one.
func Init(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}

	mu.Lock()
	prev := std
	std = l
	mu.Unlock()

	return prev.Close()
}

// Default returns the process-wide logger
func Default() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return std
}

func Debug(v ...interface{})   { Default().Debug(v...) }
func Info(v ...interface{})    { Default().Info(v...) }
func Warn(v ...interface{})    { Default().Warn(v...) }
func Warning(v ...interface{}) { Default().Warn(v...) }
func Error(v ...interface{})   { Default().Error(v...) }

func Debugf(format string, v ...interface{}) { Default().Debugf(format, v...) }
func Infof(format string, v ...interface{})  { Default().Infof(format, v...) }
func Warnf(format string, v ...interface{})  { Default().Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { Default().Errorf(format, v...) }

// Fatal logs at error level and exits the process
func Fatal(v ...interface{}) {
	Default().Error(v...)
	os.Exit(1)
}
