// Package logger строит структурированный логгер сервиса.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// New возвращает JSON-логгер slog, пишущий в w, с уровнем level
// (debug, info, warn, error).
func New(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler), nil
}

// Open выбирает, куда писать лог: в файл path (дописывая) или в stdout,
// если path пустой. Возвращённую функцию нужно вызвать при остановке.
func Open(path, level string) (*slog.Logger, func() error, error) {
	if path == "" {
		log, err := New(os.Stdout, level)
		return log, func() error { return nil }, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log, err := New(f, level)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return log, f.Close, nil
}
