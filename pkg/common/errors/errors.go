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

package errors

import (
	"errors"
	"fmt"
)

// Kind partitions the error codes into the closed set of behaviors callers
// may act on. Every code maps to exactly one kind.
type Kind int

const (
	// KindNotFound - the requested entity is absent; terminal for the request.
	KindNotFound Kind = iota
	// KindNotReady - the entity exists but is in a transient state; the
	// caller may retry later, the subsystem never retries these itself.
	KindNotReady
	// KindConflict - an idempotent-creation precondition failed because the
	// target already exists.
	KindConflict
	// KindInconsistent - data exists but lineage cannot be fully resolved.
	KindInconsistent
	// KindInvalid - malformed caller input rejected at the boundary.
	KindInvalid
	// KindUpstream - the content store or pipeline engine failed in an
	// unrecognized way; carries the raw upstream message.
	KindUpstream
)

const (
	PipelineNotFound      = "PipelineNotFound"
	JobNotFound           = "JobNotFound"
	JobNotRunning         = "JobNotRunning"
	ModelNotFound         = "ModelNotFound"
	CommitNotFound        = "CommitNotFound"
	MetricNotFound        = "MetricNotFound"
	UnfinishedCommit      = "UnfinishedCommit"
	PipelineInStandby     = "PipelineInStandby"
	NotebookAlreadyExists = "NotebookAlreadyExists"
	WorkspaceExists       = "WorkspaceExists"
	StalePipelineSpec     = "StalePipelineSpec"
	IncompleteDatum       = "IncompleteDatum"
	AlienProvenance       = "AlienProvenance"
	InvalidPageID         = "InvalidPageID"
	InvalidBundle         = "InvalidBundle"
	InvalidResourceSpec   = "InvalidResourceSpec"
	StoreUnreachable      = "StoreUnreachable"
	UpstreamFault         = "UpstreamFault"
)

var codeKinds = map[string]Kind{
	PipelineNotFound:      KindNotFound,
	JobNotFound:           KindNotFound,
	JobNotRunning:         KindNotReady,
	ModelNotFound:         KindNotFound,
	CommitNotFound:        KindNotFound,
	MetricNotFound:        KindNotFound,
	UnfinishedCommit:      KindNotReady,
	PipelineInStandby:     KindNotReady,
	NotebookAlreadyExists: KindConflict,
	WorkspaceExists:       KindConflict,
	StalePipelineSpec:     KindConflict,
	IncompleteDatum:       KindInconsistent,
	AlienProvenance:       KindInconsistent,
	InvalidPageID:         KindInvalid,
	InvalidBundle:         KindInvalid,
	InvalidResourceSpec:   KindInvalid,
	StoreUnreachable:      KindUpstream,
	UpstreamFault:         KindUpstream,
}

// ServiceError is the single error type crossing the subsystem boundary.
// The router maps Code 1:1 to a user-facing status without re-interpreting
// the message.
type ServiceError struct {
	Code    string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("code %s, reason %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// Kind returns the behavior class of e's code.
func (e *ServiceError) Kind() Kind {
	return codeKinds[e.Code]
}

// KindOfCode returns the behavior class of a code; unknown codes count as
// upstream faults.
func KindOfCode(code string) Kind {
	if k, ok := codeKinds[code]; ok {
		return k
	}
	return KindUpstream
}

// CodeOf extracts the error code from err, or UpstreamFault when err does
// not carry one.
func CodeOf(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return UpstreamFault
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

func PipelineNotFoundError(pipeline string) error {
	return &ServiceError{
		Code:    PipelineNotFound,
		Message: fmt.Sprintf("pipeline %s not found", pipeline),
	}
}

func JobNotFoundError(jobID string) error {
	return &ServiceError{
		Code:    JobNotFound,
		Message: fmt.Sprintf("there is no job with id: %s", jobID),
	}
}

func JobNotRunningError(jobID string) error {
	return &ServiceError{
		Code:    JobNotRunning,
		Message: fmt.Sprintf("job is not running, id: %s", jobID),
	}
}

func ModelNotFoundError(modelID string) error {
	return &ServiceError{
		Code:    ModelNotFound,
		Message: fmt.Sprintf("there is no model with id: %s", modelID),
	}
}

func CommitNotFoundError(commitID string) error {
	return &ServiceError{
		Code:    CommitNotFound,
		Message: fmt.Sprintf("tried to access commit that does not exist: %s", commitID),
	}
}

func MetricNotFoundError(metric string) error {
	return &ServiceError{
		Code:    MetricNotFound,
		Message: fmt.Sprintf("metric %s not found", metric),
	}
}

func UnfinishedCommitError(commitID string) error {
	return &ServiceError{
		Code:    UnfinishedCommit,
		Message: fmt.Sprintf("tried accessing repo with a pending commit %s", commitID),
	}
}

func PipelineInStandbyError(pipeline string) error {
	return &ServiceError{
		Code:    PipelineInStandby,
		Message: fmt.Sprintf("the pipeline is currently in standby: %s", pipeline),
	}
}

func NotebookAlreadyExistsError(pipeline string) error {
	return &ServiceError{
		Code:    NotebookAlreadyExists,
		Message: fmt.Sprintf("notebook already exists: %s", pipeline),
	}
}

func WorkspaceExistsError(workspace string) error {
	return &ServiceError{
		Code:    WorkspaceExists,
		Message: fmt.Sprintf("workspace already exists: %s", workspace),
	}
}

func StalePipelineSpecError(pipeline string) error {
	return &ServiceError{
		Code:    StalePipelineSpec,
		Message: fmt.Sprintf("pipeline spec changed underneath the update: %s", pipeline),
	}
}

func IncompleteDatumError(jobID string) error {
	return &ServiceError{
		Code:    IncompleteDatum,
		Message: fmt.Sprintf("incomplete datum for job: %s", jobID),
	}
}

func AlienProvenanceError() error {
	return &ServiceError{
		Code:    AlienProvenance,
		Message: "unable to determine provenance of externally injected model",
	}
}

func InvalidPageIDError(pageID int) error {
	return &ServiceError{
		Code:    InvalidPageID,
		Message: fmt.Sprintf("page id must be non-negative, got %d", pageID),
	}
}

func InvalidBundleError(reason string) error {
	return &ServiceError{
		Code:    InvalidBundle,
		Message: fmt.Sprintf("bundle is malformed: %s", reason),
	}
}

func InvalidResourceSpecError(reason string) error {
	return &ServiceError{
		Code:    InvalidResourceSpec,
		Message: reason,
	}
}

func StoreUnreachableError(err error) error {
	return &ServiceError{
		Code:    StoreUnreachable,
		Message: err.Error(),
		Cause:   err,
	}
}

func UpstreamFaultError(err error) error {
	return &ServiceError{
		Code:    UpstreamFault,
		Message: err.Error(),
		Cause:   err,
	}
}
