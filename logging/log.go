/*
 * Copyright (c) 2022 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

// Package logging is the diagnostic sink collaborator spec.md §6 asks
// for: something that "accepts a severity and a text line". The core
// tsm package only ever talks to the one-method Sink interface; this
// package is where that contract is actually backed by a library
// (zerolog), so nothing outside of here imports zerolog directly.
package logging

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

type LogLevel int8

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
	NONE // disables all output for this Log
)

var zerologLevels = map[LogLevel]zerolog.Level{
	TRACE: zerolog.TraceLevel,
	DEBUG: zerolog.DebugLevel,
	INFO:  zerolog.InfoLevel,
	WARN:  zerolog.WarnLevel,
	ERROR: zerolog.ErrorLevel,
	NONE:  zerolog.Disabled,
}

// Sink is the minimal contract spec.md §6 requires of a diagnostic
// collaborator: accept a severity and a pre-formatted line.
type Sink interface {
	Emit(level LogLevel, line string)
}

// Loggable is implemented by any type that exposes a mutable log level,
// so that its verbosity can be changed (or silenced entirely during
// tests) after construction.
type Loggable interface {
	SetLogLevel(level LogLevel)
}

// Log is the concrete Sink, adapted from the teacher's bespoke
// stdlib-`log`-backed type of the same name, but rebuilt on zerolog --
// the library the teacher's own cmd/main.go already depends on.
type Log struct {
	logger zerolog.Logger
	Level  LogLevel
	Name   string
}

// NewLog returns a Log writing to stderr at INFO level.
func NewLog(name string) *Log {
	return &Log{
		logger: zerolog.New(os.Stderr).With().Timestamp().Str("logger", name).Logger(),
		Level:  INFO,
		Name:   name,
	}
}

// NewNullLog returns a Log that discards everything -- the idiomatic
// replacement for the teacher's package-level NullLog, usable per-test
// instead of a single shared global.
func NewNullLog(name string) *Log {
	l := NewLog(name)
	l.Level = NONE
	return l
}

func (l *Log) shouldLog(level LogLevel) bool {
	return l.Level <= level && l.Level != NONE
}

func (l *Log) Emit(level LogLevel, line string) {
	if !l.shouldLog(level) {
		return
	}
	l.logger.WithLevel(zerologLevels[level]).Msg(line)
}

func (l *Log) Trace(format string, v ...interface{}) { l.Emit(TRACE, fmt.Sprintf(format, v...)) }
func (l *Log) Debug(format string, v ...interface{}) { l.Emit(DEBUG, fmt.Sprintf(format, v...)) }
func (l *Log) Info(format string, v ...interface{})  { l.Emit(INFO, fmt.Sprintf(format, v...)) }
func (l *Log) Warn(format string, v ...interface{})  { l.Emit(WARN, fmt.Sprintf(format, v...)) }
func (l *Log) Error(format string, v ...interface{}) { l.Emit(ERROR, fmt.Sprintf(format, v...)) }

func (l *Log) Fatal(err error) {
	l.logger.Fatal().Err(err).Msg("fatal error")
}

// SetLogLevel implements Loggable.
func (l *Log) SetLogLevel(level LogLevel) {
	l.Level = level
}

// RootLog is the default, process-wide Log, in the teacher's tradition
// of a package-level logger applications can reach for without
// constructing their own.
var RootLog = NewLog("ROOT")
