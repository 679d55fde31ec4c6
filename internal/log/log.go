package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is the string form of a zerolog.Level accepted on the command line.
type LogLevel string

const (
	TRACE    LogLevel = "trace"
	DEBUG    LogLevel = "debug"
	INFO     LogLevel = "info"
	WARN     LogLevel = "warn"
	ERROR    LogLevel = "error"
	DISABLED LogLevel = "disabled"
)

var levels = map[LogLevel]zerolog.Level{
	TRACE:    zerolog.TraceLevel,
	DEBUG:    zerolog.DebugLevel,
	INFO:     zerolog.InfoLevel,
	WARN:     zerolog.WarnLevel,
	ERROR:    zerolog.ErrorLevel,
	DISABLED: zerolog.Disabled,
}

// Levels lists the accepted values in order of verbosity.
var Levels = []LogLevel{TRACE, DEBUG, INFO, WARN, ERROR, DISABLED}

// LogFile is the open log file, if one was requested.
var LogFile *os.File

func (ll LogLevel) String() string {
	return string(ll)
}

func (ll *LogLevel) Set(v string) error {
	v = strings.ToLower(v)
	if _, ok := levels[LogLevel(v)]; !ok {
		return fmt.Errorf("must be one of %v", Levels)
	}
	*ll = LogLevel(v)
	return nil
}

func (ll LogLevel) Type() string {
	return "LogLevel"
}

// Level converts ll to its zerolog equivalent.
func (ll LogLevel) Level() (zerolog.Level, error) {
	level, ok := levels[LogLevel(strings.ToLower(string(ll)))]
	if !ok {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q (options: %v)", ll, Levels)
	}
	return level, nil
}

// InitWithLogLevel configures the global logger to write to stderr and, when
// logPath is set, to append to that file as well.
func InitWithLogLevel(logLevel LogLevel, logPath string) error {
	level, err := logLevel.Level()
	if err != nil {
		return fmt.Errorf("failed to convert log level: %v", err)
	}

	writers := []io.Writer{
		&zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: zerolog.ConsoleWriter{Out: os.Stderr}},
			Level:  level,
		},
	}
	if err := Close(); err != nil {
		return fmt.Errorf("failed to close previous log file: %v", err)
	}
	if logPath != "" {
		LogFile, err = os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
		if err != nil {
			return fmt.Errorf("failed to open log file: %v", err)
		}
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: LogFile},
			Level:  level,
		})
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()
	return nil
}

// Close flushes and closes the log file, if any.
func Close() error {
	if LogFile == nil {
		return nil
	}
	err := LogFile.Close()
	LogFile = nil
	return err
}
