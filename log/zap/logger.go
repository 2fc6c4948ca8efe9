// Copyright (c) 2018 The Jaeger Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package zap adapts a zap.Logger to the senders.Logger interface.
package zap

import (
	"go.uber.org/zap"
)

// Logger is an adapter from zap Logger to senders.Logger.
type Logger struct {
	logger *zap.Logger
}

// NewLogger creates a new Logger backed by the given zap.Logger.
func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger}
}

// Error implements Error() of senders.Logger.
func (l *Logger) Error(msg string) {
	l.logger.Error(msg)
}

// Infof implements Infof() of senders.Logger.
func (l *Logger) Infof(msg string, args ...interface{}) {
	l.logger.Sugar().Infof(msg, args...)
}
