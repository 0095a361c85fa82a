/*
Copyright (c) 2023 The Helmsman Authors. All Rights Reserved.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package logger

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// Default format renders [2006-01-02T15:04:05Z07:00][INFO][/file.go:10] message
	defaultLogFormat       = "[%time%][%lvl%][%file%]%fields% %msg%\n"
	defaultTimestampFormat = time.RFC3339Nano
)

// Formatter implements logrus.Formatter with the bracketed field layout
// used across the server logs.
type Formatter struct {
	TimestampFormat string
	LogFormat       string
}

func (f *Formatter) Format(entry *log.Entry) ([]byte, error) {
	output := f.LogFormat
	if output == "" {
		output = defaultLogFormat
	}
	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = defaultTimestampFormat
	}

	output = strings.Replace(output, "%time%", entry.Time.Format(timestampFormat), 1)
	output = strings.Replace(output, "%msg%", entry.Message, 1)
	output = strings.Replace(output, "%lvl%", strings.ToUpper(entry.Level.String()), 1)
	if entry.Caller != nil && entry.Caller.File != "" {
		output = strings.Replace(output, "%file%",
			fmt.Sprintf("%s:%d", entry.Caller.File, entry.Caller.Line), 1)
	} else {
		output = strings.Replace(output, "%file%", "-", 1)
	}

	fields := ""
	for k, val := range entry.Data {
		switch v := val.(type) {
		case string:
			fields += fmt.Sprintf("[%s:%s]", k, v)
		case nil:
			fields += fmt.Sprintf("[%s]", k)
		default:
			fields += fmt.Sprintf("[%s:%v]", k, v)
		}
	}
	output = strings.Replace(output, "%fields%", fields, 1)
	return []byte(output), nil
}
