package log

import (
	"fmt"
	"io"
	"time"
)

func registerNewSubLogger(name string) *SubLogger {
	sl := &SubLogger{
		name:   name,
		levels: Levels{Info: true, Warn: true, Error: true},
	}
	mu.Lock()
	subLoggers[name] = sl
	mu.Unlock()
	return sl
}

// SetLevels overrides the levels for a sublogger and returns the previous
// settings
func (sl *SubLogger) SetLevels(l Levels) Levels {
	mu.Lock()
	defer mu.Unlock()
	prev := sl.levels
	sl.levels = l
	return prev
}

// SetGlobalLevels applies level settings to every registered sublogger
func SetGlobalLevels(l Levels) {
	mu.Lock()
	defer mu.Unlock()
	for _, sl := range subLoggers {
		sl.levels = l
	}
}

// SetOutput redirects all log output, primarily for tests
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func (sl *SubLogger) enabled(check func(Levels) bool) bool {
	mu.RLock()
	defer mu.RUnlock()
	return check(sl.levels)
}

func stage(sl *SubLogger, header, msg string) {
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(output, "%s%s%s%s%s%s%s\n",
		time.Now().Format(timestampFormat),
		spacer,
		sl.name,
		spacer,
		header,
		spacer,
		msg)
}

// Debug logs a debug level message for the sublogger
func Debug(sl *SubLogger, msg string) {
	if !sl.enabled(func(l Levels) bool { return l.Debug }) {
		return
	}
	stage(sl, "DEBUG", msg)
}

// Debugf logs a formatted debug level message for the sublogger
func Debugf(sl *SubLogger, format string, v ...interface{}) {
	if !sl.enabled(func(l Levels) bool { return l.Debug }) {
		return
	}
	stage(sl, "DEBUG", fmt.Sprintf(format, v...))
}

// Info logs an info level message for the sublogger
func Info(sl *SubLogger, msg string) {
	if !sl.enabled(func(l Levels) bool { return l.Info }) {
		return
	}
	stage(sl, "INFO", msg)
}

// Infof logs a formatted info level message for the sublogger
func Infof(sl *SubLogger, format string, v ...interface{}) {
	if !sl.enabled(func(l Levels) bool { return l.Info }) {
		return
	}
	stage(sl, "INFO", fmt.Sprintf(format, v...))
}

// Warn logs a warning level message for the sublogger
func Warn(sl *SubLogger, msg string) {
	if !sl.enabled(func(l Levels) bool { return l.Warn }) {
		return
	}
	stage(sl, "WARN", msg)
}

// Warnf logs a formatted warning level message for the sublogger
func Warnf(sl *SubLogger, format string, v ...interface{}) {
	if !sl.enabled(func(l Levels) bool { return l.Warn }) {
		return
	}
	stage(sl, "WARN", fmt.Sprintf(format, v...))
}

// Error logs an error level message for the sublogger
func Error(sl *SubLogger, msg string) {
	if !sl.enabled(func(l Levels) bool { return l.Error }) {
		return
	}
	stage(sl, "ERROR", msg)
}

// Errorf logs a formatted error level message for the sublogger
func Errorf(sl *SubLogger, format string, v ...interface{}) {
	if !sl.enabled(func(l Levels) bool { return l.Error }) {
		return
	}
	stage(sl, "ERROR", fmt.Sprintf(format, v...))
}
