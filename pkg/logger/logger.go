package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Minimal leveled logger shared by the pipeline and bootstrap code.
// Init once from LOG_LEVEL; Debugf/Infof/Warnf/Errorf/Fatalf elsewhere.

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	mu     sync.RWMutex
	out    *log.Logger = log.New(os.Stdout, "", 0)
	minLvl Level       = LevelInfo
)

var levelNames = map[Level]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelFatal: "fatal",
}

// Init sets the global log level (case-insensitive: debug, info, warn,
// error, fatal). Unknown or empty input falls back to info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		minLvl = LevelDebug
	case "warn", "warning":
		minLvl = LevelWarn
	case "error":
		minLvl = LevelError
	case "fatal":
		minLvl = LevelFatal
	default:
		minLvl = LevelInfo
	}
}

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	return levelNames[minLvl]
}

func logf(l Level, format string, v ...any) {
	mu.RLock()
	enabled := l >= minLvl
	mu.RUnlock()
	if !enabled {
		return
	}
	header := fmt.Sprintf("%s [%s] ", time.Now().Format(time.RFC3339), strings.ToUpper(levelNames[l]))
	out.Printf(header+format, v...)
}

func Debugf(format string, v ...any) { logf(LevelDebug, format, v...) }
func Infof(format string, v ...any)  { logf(LevelInfo, format, v...) }
func Warnf(format string, v ...any)  { logf(LevelWarn, format, v...) }
func Errorf(format string, v ...any) { logf(LevelError, format, v...) }

func Fatalf(format string, v ...any) {
	logf(LevelFatal, format, v...)
	os.Exit(1)
}
