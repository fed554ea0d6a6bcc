// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

const tracePrefix = "TRACE: "

var (
	traceEnabled bool

	mu     sync.Mutex
	output io.Writer = os.Stderr
)

// InitLogger installs the one-letter-level handler and sets the level from
// REDLINE_LOG (trace, debug, info, warn, error or fatal; default error).
func InitLogger() {
	SetLevel(os.Getenv("REDLINE_LOG"))
	log.SetHandler(&CustomHandler{})
}

// SetLevel sets the level by name. Unknown names select error.
func SetLevel(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	traceEnabled = name == "trace"

	var level log.Level
	switch name {
	case "trace", "debug":
		level = log.DebugLevel
	case "info":
		level = log.InfoLevel
	case "warn":
		level = log.WarnLevel
	case "fatal":
		level = log.FatalLevel
	default:
		level = log.ErrorLevel
	}
	log.SetLevel(level)
}

// SetOutput redirects log lines, stderr by default.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// CustomHandler writes "<timestamp> <level letter> <message>[: error]
// [key=value ...]" lines. Trace lines travel at debug level with a TRACE:
// prefix.
type CustomHandler struct{}

var letters = map[log.Level]string{
	log.DebugLevel: "D",
	log.InfoLevel:  "I",
	log.WarnLevel:  "W",
	log.ErrorLevel: "E",
	log.FatalLevel: "F",
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	level, ok := letters[e.Level]
	if !ok {
		level = "?"
	}
	message := e.Message
	if rest, ok := strings.CutPrefix(message, tracePrefix); ok {
		level, message = "T", rest
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString(" " + level + " " + message)
	if err, ok := e.Fields["error"]; ok {
		fmt.Fprintf(&b, ": %v", err)
	}
	for _, name := range e.Fields.Names() {
		if name != "error" {
			fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
		}
	}
	b.WriteByte('\n')

	mu.Lock()
	defer mu.Unlock()
	_, err := io.WriteString(output, b.String())
	return err
}

// Tracef logs at Trace level (below Debug).
func Tracef(format string, args ...interface{}) {
	if traceEnabled {
		log.Debug(tracePrefix + fmt.Sprintf(format, args...))
	}
}

// Debugf logs at Debug level.
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Infof logs at Info level.
func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Warnf logs at Warn level.
func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

// Errorf logs at Error level.
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// WithError returns an entry with error.
func WithError(err error) *log.Entry {
	return log.WithError(err)
}

// WithField returns an entry carrying key=value.
func WithField(key string, value any) *log.Entry {
	return log.WithField(key, value)
}
