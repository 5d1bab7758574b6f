// Copyright 2025 FluxHook Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"
)

// LogLevel is the severity of a log entry.
type LogLevel string

const (
	DEBUG LogLevel = "DEBUG"
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
)

var levelRank = map[LogLevel]int{DEBUG: 0, INFO: 1, WARN: 2, ERROR: 3}

// Logger writes structured entries for one component.
type Logger struct {
	Component  string
	InstanceID string
	Container  string

	minLevel LogLevel
}

// LogEntry is the wire form of one log line.
type LogEntry struct {
	Timestamp  string                 `json:"timestamp"`
	Level      LogLevel               `json:"level"`
	Component  string                 `json:"component"`
	InstanceID string                 `json:"instance_id"`
	Container  string                 `json:"container"`
	ClientID   string                 `json:"client_id,omitempty"`
	RequestID  string                 `json:"request_id,omitempty"`
	Message    string                 `json:"message"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// New creates a Logger for the named component. The minimum level is
// taken from LOG_LEVEL; unset or unknown values mean INFO. Instance
// identity comes from INSTANCE_ID and the hostname.
func New(component string) *Logger {
	instanceID := os.Getenv("INSTANCE_ID")
	if instanceID == "" {
		instanceID = "unknown"
	}
	container, err := os.Hostname()
	if err != nil {
		container = "unknown"
	}
	minLevel := LogLevel(strings.ToUpper(os.Getenv("LOG_LEVEL")))
	if _, ok := levelRank[minLevel]; !ok {
		minLevel = INFO
	}
	return &Logger{
		Component:  component,
		InstanceID: instanceID,
		Container:  container,
		minLevel:   minLevel,
	}
}

// Log writes one entry. clientID and requestID may be empty when the
// message is not tied to a hook call.
func (l *Logger) Log(level LogLevel, clientID, requestID, message string, fields map[string]interface{}) {
	if levelRank[level] < levelRank[l.minLevel] {
		return
	}
	entry := LogEntry{
		Timestamp:  time.Now().UTC().Format(time.RFC3339Nano),
		Level:      level,
		Component:  l.Component,
		InstanceID: l.InstanceID,
		Container:  l.Container,
		ClientID:   clientID,
		RequestID:  requestID,
		Message:    message,
		Fields:     fields,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		// plain-text fallback keeps the message visible
		log.Printf("ERROR: failed to marshal log entry: %v (message: %s)", err, message)
		return
	}
	log.Println(string(data))
}

// Debug logs a debug message.
func (l *Logger) Debug(clientID, requestID, message string, fields map[string]interface{}) {
	l.Log(DEBUG, clientID, requestID, message, fields)
}

// Info logs an informational message.
func (l *Logger) Info(clientID, requestID, message string, fields map[string]interface{}) {
	l.Log(INFO, clientID, requestID, message, fields)
}

// Warn logs a warning message.
func (l *Logger) Warn(clientID, requestID, message string, fields map[string]interface{}) {
	l.Log(WARN, clientID, requestID, message, fields)
}

// Error logs an error message.
func (l *Logger) Error(clientID, requestID, message string, fields map[string]interface{}) {
	l.Log(ERROR, clientID, requestID, message, fields)
}

// InfoWithDuration logs an info message with a duration_ms field.
func (l *Logger) InfoWithDuration(clientID, requestID, message string, durationMS float64, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["duration_ms"] = durationMS
	l.Info(clientID, requestID, message, fields)
}
