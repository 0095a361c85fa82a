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
	log "github.com/sirupsen/logrus"
)

// RequestContext carries the identity of one request through the
// controllers; ErrorCode is back-filled by the layer that classifies a
// failure so the router can map it to a status without re-parsing.
type RequestContext struct {
	RequestID    string
	UserName     string
	Workspace    string
	ErrorCode    string
	ErrorMessage string
}

func (ctx *RequestContext) Logging() *log.Entry {
	return log.WithFields(log.Fields{
		"RequestID": ctx.RequestID,
		"UserName":  ctx.UserName,
	})
}

func LoggerForRequest(ctx *RequestContext) *log.Entry {
	return log.WithFields(log.Fields{
		"RequestID": ctx.RequestID,
		"UserName":  ctx.UserName,
	})
}

func LoggerForWorkspace(workspace string) *log.Entry {
	return log.WithFields(log.Fields{
		"Workspace": workspace,
	})
}

func LoggerForJob(jobID string) *log.Entry {
	return log.WithFields(log.Fields{
		"JobID": jobID,
	})
}

func Logger() *log.Entry {
	return log.WithFields(log.Fields{})
}
