// Package logger is a small async logger in the style of the control
// engine's surrounding tooling: entries are handed to a buffered channel
// and drained by one background goroutine so that logging from the
// reader loop or the dispatcher never blocks on I/O.
package logger

import (
	"fmt"
	"log"
	"os"
	"runtime"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

var levelNames = []string{"DEBUG", "INFO", "WARN", "ERROR"}

const (
	callerDepth = 3
	bufferSize  = 1024
)

type entry struct {
	level level
	msg   string
}

// Logger drains entries asynchronously into a standard log.Logger.
type Logger struct {
	out     *log.Logger
	entries chan *entry
}

// New creates a Logger writing to w.
func New(w *os.File) *Logger {
	l := &Logger{
		out:     log.New(w, "", log.LstdFlags),
		entries: make(chan *entry, bufferSize),
	}
	go l.run()
	return l
}

func (l *Logger) run() {
	for e := range l.entries {
		_ = l.out.Output(0, e.msg)
	}
}

func (l *Logger) output(lv level, msg string) {
	formatted := msg
	if _, file, line, ok := runtime.Caller(callerDepth); ok {
		formatted = fmt.Sprintf("[%s][%s:%d] %s", levelNames[lv], file, line, msg)
	} else {
		formatted = fmt.Sprintf("[%s] %s", levelNames[lv], msg)
	}
	select {
	case l.entries <- &entry{level: lv, msg: formatted}:
	default:
		// buffer full: drop rather than block the caller.
	}
}

// Debug logs a debug-level message.
func (l *Logger) Debug(v ...any) { l.output(levelDebug, fmt.Sprintln(v...)) }

// Debugf logs a formatted debug-level message.
func (l *Logger) Debugf(format string, v ...any) { l.output(levelDebug, fmt.Sprintf(format, v...)) }

// Info logs an info-level message.
func (l *Logger) Info(v ...any) { l.output(levelInfo, fmt.Sprintln(v...)) }

// Infof logs a formatted info-level message.
func (l *Logger) Infof(format string, v ...any) { l.output(levelInfo, fmt.Sprintf(format, v...)) }

// Warn logs a warn-level message.
func (l *Logger) Warn(v ...any) { l.output(levelWarn, fmt.Sprintln(v...)) }

// Error logs an error-level message.
func (l *Logger) Error(v ...any) { l.output(levelError, fmt.Sprintln(v...)) }

// Errorf logs a formatted error-level message.
func (l *Logger) Errorf(format string, v ...any) { l.output(levelError, fmt.Sprintf(format, v...)) }

// Default is the package-level logger used when a caller doesn't
// construct its own.
var Default = New(os.Stderr)

// Debug logs through Default.
func Debug(v ...any) { Default.Debug(v...) }

// Info logs through Default.
func Info(v ...any) { Default.Info(v...) }

// Warn logs through Default.
func Warn(v ...any) { Default.Warn(v...) }

// Error logs through Default.
func Error(v ...any) { Default.Error(v...) }

// Errorf logs a formatted message through Default.
func Errorf(format string, v ...any) { Default.Errorf(format, v...) }
