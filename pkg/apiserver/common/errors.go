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

package common

import (
	"net/http"

	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
)

// Codes raised by the HTTP layer itself rather than the service.
const (
	PathNotFound     = "PathNotFound"
	MethodNotAllowed = "MethodNotAllowed"
	MalformedJSON    = "MalformedJSON"
	InternalError    = "InternalError"
)

// ErrorResponse is the uniform error body of the API.
type ErrorResponse struct {
	RequestID    string `json:"requestID"`
	ErrorCode    string `json:"code"`
	ErrorMessage string `json:"message"`
}

var boundaryStatus = map[string]int{
	PathNotFound:     http.StatusNotFound,
	MethodNotAllowed: http.StatusMethodNotAllowed,
	MalformedJSON:    http.StatusBadRequest,
	InternalError:    http.StatusInternalServerError,
}

// GetHttpStatusByCode maps an error code onto its HTTP status. Service
// codes map by kind, exhaustively; HTTP-layer codes map directly.
func GetHttpStatusByCode(code string) int {
	if status, ok := boundaryStatus[code]; ok {
		return status
	}
	switch svcerrors.KindOfCode(code) {
	case svcerrors.KindNotFound:
		return http.StatusNotFound
	case svcerrors.KindNotReady:
		return http.StatusConflict
	case svcerrors.KindConflict:
		return http.StatusConflict
	case svcerrors.KindInconsistent:
		return http.StatusUnprocessableEntity
	case svcerrors.KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
