// Package logger provides centralized logging for the application.
// File: logger/logger.go
package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ------------------- global loggers -------------------

// four logger levels accessible throughout the application
var (
	Info  *log.Logger
	Warn  *log.Logger
	Error *log.Logger
	Debug *log.Logger
)

var (
	mu      sync.Mutex
	logFile *os.File
)

const flags = log.Ldate | log.Ltime | log.Lshortfile

// ------------------- logger initialization -------------------

// configure points every level at the given writer.
func configure(w io.Writer) {
	Info = log.New(w, "INFO: ", flags)
	Warn = log.New(w, "WARN: ", flags)
	Error = log.New(w, "ERROR: ", flags)
	Debug = log.New(w, "DEBUG: ", flags)
}

// InitLogger (re)initialises the logging system so that every level writes to
// stdout and to a timestamped file inside dir. An empty dir keeps stdout only.
func InitLogger(dir string) error {
	mu.Lock()
	defer mu.Unlock()

	if dir == "" {
		configure(os.Stdout)
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	name := filepath.Join(dir, time.Now().Format("2006-01-02_15-04-05")+".log")
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec
	if err != nil {
		return err
	}

	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file

	configure(io.MultiWriter(os.Stdout, file))
	return nil
}

// SetLogLevel discards debug output in production; other environments keep it.
func SetLogLevel(env string) {
	if env == "production" {
		Debug.SetOutput(io.Discard)
	}
}

// Close releases the current log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	configure(os.Stdout)
	return err
}

// init wires the loggers to stdout so that packages can log before main calls
// InitLogger, and so tests never touch the filesystem.
func init() {
	configure(os.Stdout)
}
