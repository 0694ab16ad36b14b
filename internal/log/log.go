package log

import (
	"io"
	"log"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
	LevelNone
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelError:
		return "ERROR"
	case LevelNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

func LevelFromString(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "ERROR":
		return LevelError
	case "NONE":
		return LevelNone
	default:
		return LevelInfo
	}
}

// Logger is a levelled wrapper around the standard logger. Children created
// with With share the parent's output and level.
type Logger struct {
	logger *log.Logger
	level  *Level
	prefix string
}

func New(out io.Writer, level Level) *Logger {
	lvl := level
	return &Logger{
		logger: log.New(out, "", log.Ltime|log.Lmicroseconds),
		level:  &lvl,
	}
}

// Discard returns a logger that never prints.
func Discard() *Logger {
	return New(io.Discard, LevelNone)
}

// OrDiscard is used by constructors that accept an optional logger.
func OrDiscard(l *Logger) *Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// With returns a child logger tagging every line with [COMPONENT].
func (l *Logger) With(component string) *Logger {
	return &Logger{
		logger: l.logger,
		level:  l.level,
		prefix: l.prefix + "[" + strings.ToUpper(component) + "] ",
	}
}

func (l *Logger) printf(tag, format string, v ...interface{}) {
	l.logger.Printf(tag+": "+l.prefix+format, v...)
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	if *l.level <= LevelDebug {
		l.printf("DEBUG", format, v...)
	}
}

func (l *Logger) Infof(format string, v ...interface{}) {
	if *l.level <= LevelInfo {
		l.printf("INFO", format, v...)
	}
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	if *l.level <= LevelError {
		l.printf("ERROR", format, v...)
	}
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	if *l.level <= LevelInfo { // Warnings are shown at Info level or higher
		l.printf("WARN", format, v...)
	}
}

func (l *Logger) SetLevel(level Level) {
	*l.level = level
}

func (l *Logger) Level() Level {
	return *l.level
}
