// Copyright 2024 The pos-indexer Authors
// This file is part of the pos-indexer library.
//
// The pos-indexer library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The pos-indexer library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the pos-indexer library. If not, see <http://www.gnu.org/licenses/>.

// Package log provides per-component module loggers, mirroring the
// log.NewModuleLogger(log.<Module>) convention used across the indexer's
// component packages.
package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

var (
	baseMu   sync.Mutex
	base     *zap.Logger
	devMode  bool
)

func init() {
	devMode = os.Getenv("INDEXER_LOG_DEV") != ""
	base = newBase()
}

func newBase() *zap.Logger {
	var l *zap.Logger
	var err error
	if devMode {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		l = zap.NewNop()
	}
	return l
}

// SetDevelopment switches every future module logger to the
// human-readable development encoder. Intended for cmd/indexer's -dev flag.
func SetDevelopment(enabled bool) {
	baseMu.Lock()
	defer baseMu.Unlock()
	devMode = enabled
	base = newBase()
}

// Logger is the per-module leveled, key-value logger handed to components.
type Logger struct {
	s *zap.SugaredLogger
}

// New returns a logger scoped to the named component, e.g. "canonicity",
// "coordinator.user_command". The name is attached to every record as the
// "module" field.
func New(module string) *Logger {
	baseMu.Lock()
	b := base
	baseMu.Unlock()
	return &Logger{s: b.Sugar().With("module", module)}
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.s.Infow(msg, kv...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }

// Crit logs at error level and exits the process; reserved for
// unrecoverable startup misconfiguration.
func (l *Logger) Crit(msg string, kv ...interface{}) {
	l.s.Errorw(msg, kv...)
	os.Exit(1)
}

// Sync flushes buffered log entries; call on shutdown.
func (l *Logger) Sync() error {
	return l.s.Sync()
}
