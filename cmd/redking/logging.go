package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logDir      = "logs"
	logFileName = "redking.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging builds the process logger
// The console gets info and above unless quiet; with debug a JSON log file in logDir
// receives everything, rotated aside once it grows past maxLogSize
// The returned file is nil unless debug is set and must be closed by the caller
func setupLogging(debug, quiet bool) (*zap.Logger, *os.File, error) {
	var cores []zapcore.Core

	if !quiet {
		enc := zap.NewDevelopmentEncoderConfig()
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(enc),
			zapcore.Lock(os.Stderr),
			zapcore.InfoLevel,
		))
	}

	var logFile *os.File
	if debug {
		f, err := openLogFile()
		if err != nil {
			return nil, nil, err
		}
		logFile = f
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(f),
			zapcore.DebugLevel,
		))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil, nil
	}
	return zap.New(zapcore.NewTee(cores...)), logFile, nil
}

func openLogFile() (*os.File, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	logPath := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		stamp := time.Now().Format("20060102_150405")
		rotated := filepath.Join(logDir, strings.TrimSuffix(logFileName, ".log")+"_"+stamp+".log")
		if err := os.Rename(logPath, rotated); err != nil {
			return nil, fmt.Errorf("rotate log: %w", err)
		}
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return f, nil
}
