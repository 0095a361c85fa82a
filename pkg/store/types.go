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

package store

import (
	"fmt"
	"time"
)

type FileType int

const (
	FileTypeFile FileType = iota
	FileTypeDir
)

// FileRef addresses one committed path in the content store.
type FileRef struct {
	Repo     string
	CommitID string
	Path     string
}

type FileInfo struct {
	File      FileRef
	SizeBytes int64
	Type      FileType
}

// CommitRef addresses a commit, by id or by branch name.
type CommitRef struct {
	Repo string
	ID   string
}

func (c CommitRef) String() string {
	return fmt.Sprintf("%s/%s", c.Repo, c.ID)
}

type CommitInfo struct {
	Commit      CommitRef
	Description string
	// Provenance lists the upstream commits this commit was derived from.
	Provenance []CommitRef
	SizeBytes  int64
	Started    time.Time
	Finished   time.Time
}

// File is one path/content pair staged into a single commit.
type File struct {
	Path string
	Data []byte
}

// InputRole declares which cross-input slot a pipeline input fills. Datum
// resolution looks roles up by declared input name instead of re-parsing
// repository names.
type InputRole int

const (
	RoleData InputRole = iota
	RoleImage
	RoleHyper
	RoleCode
)

func (r InputRole) String() string {
	switch r {
	case RoleData:
		return "data"
	case RoleImage:
		return "image"
	case RoleHyper:
		return "hyper"
	case RoleCode:
		return "code"
	}
	return "unknown"
}

// PipelineInput is one leg of a pipeline's cross input.
type PipelineInput struct {
	Role   InputRole
	Name   string
	Repo   string
	Branch string
	Glob   string
}

// ResourceSpec carries per-worker resource requests.
type ResourceSpec struct {
	CPU    float64
	Memory string
	GPU    int
}

// ServiceSpec turns a pipeline into a long-running service.
type ServiceSpec struct {
	InternalPort int32
	ExternalPort int32
	Type         string
	Annotations  map[string]string
}

// PipelineSpec is the declarative pipeline definition handed to the engine.
type PipelineSpec struct {
	Name         string
	Image        string
	Commands     []string
	Description  string
	Inputs       []PipelineInput
	OutputBranch string
	Parallelism  int
	Resources    ResourceSpec
	Env          map[string]string
	Service      *ServiceSpec
	Standby      bool
	DatumTries   int
}

// Input returns the first input with the given role, or nil.
func (s *PipelineSpec) Input(role InputRole) *PipelineInput {
	for i := range s.Inputs {
		if s.Inputs[i].Role == role {
			return &s.Inputs[i]
		}
	}
	return nil
}

type PipelineState int

const (
	PipelineStarting PipelineState = iota
	PipelineRunning
	PipelineRestarting
	PipelineFailure
	PipelinePaused
	PipelineStandby
)

func (s PipelineState) String() string {
	switch s {
	case PipelineStarting:
		return "starting"
	case PipelineRunning:
		return "running"
	case PipelineRestarting:
		return "restarting"
	case PipelineFailure:
		return "failure"
	case PipelinePaused:
		return "paused"
	case PipelineStandby:
		return "standby"
	}
	return "unknown"
}

type PipelineInfo struct {
	Spec  PipelineSpec
	State PipelineState
	// SpecVersion is the optimistic-concurrency token required by
	// PipelineEngine.UpdatePipeline; it advances on every accepted update.
	SpecVersion uint64
	CreatedAt   time.Time
}

type JobState int

const (
	JobStarting JobState = iota
	JobRunning
	JobFailure
	JobSuccess
	JobKilled
)

func (s JobState) String() string {
	switch s {
	case JobStarting:
		return "starting"
	case JobRunning:
		return "running"
	case JobFailure:
		return "failure"
	case JobSuccess:
		return "success"
	case JobKilled:
		return "killed"
	}
	return "unknown"
}

type JobInfo struct {
	ID            string
	Pipeline      string
	State         JobState
	OutputCommit  CommitRef
	DataTotal     int
	DataProcessed int
	DataSkipped   int
	DataFailed    int
	Started       time.Time
	Finished      time.Time
	ProcessTime   time.Duration
}

type DatumState int

const (
	DatumFailed DatumState = iota
	DatumProcessed
	DatumSkipped
	DatumStarting
)

// DatumFile ties one matched file to the pipeline input that selected it.
type DatumFile struct {
	InputName string
	File      FileRef
}

type DatumInfo struct {
	ID    string
	State DatumState
	Files []DatumFile
}

type LogEntry struct {
	Time    time.Time
	Message string
}
