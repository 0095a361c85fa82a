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

// Package store defines the contracts this server consumes from the
// external versioned content store and pipeline engine. The orchestration
// core is protocol agnostic with respect to both: any backend satisfying
// these interfaces can be plugged in, and errors crossing the boundary are
// translated into the service error taxonomy by Translate.
package store

// ContentStore is the minimal contract against the versioned content
// store: repositories of immutable commits with branches and
// cross-repository provenance links. Commits are append-only with one open
// commit at a time per branch; PutFiles stages all files into a single
// commit.
type ContentStore interface {
	CreateRepo(repo, description string) error
	DeleteRepo(repo string) error
	ListRepos() ([]string, error)

	CreateBranch(repo, branch string) error
	ListBranches(repo string) ([]string, error)

	PutFiles(repo, branch string, files []File, description string) (commitID string, err error)
	GetFile(repo, commit, path string) ([]byte, error)
	// ListFiles enumerates committed paths. path may contain glob
	// metacharacters; commit may be a commit id or branch name.
	ListFiles(repo, commit, path string, recursive bool) ([]FileInfo, error)
	InspectFile(repo, commit, path string) (*FileInfo, error)

	InspectCommit(repo, commit string) (*CommitInfo, error)
	// ListCommits walks commit history newest first, bounded by toCommit
	// (a commit id or branch name).
	ListCommits(repo, toCommit string) ([]CommitInfo, error)
}

// PipelineEngine is the minimal contract against the external engine that
// executes declarative, glob-driven pipelines over the content store.
type PipelineEngine interface {
	CreatePipeline(spec *PipelineSpec) error
	// UpdatePipeline replaces the running definition. version must equal the
	// SpecVersion last returned by InspectPipeline; a mismatch fails with a
	// StalePipelineSpec conflict so concurrent reconcilers fail fast instead
	// of silently racing. reprocess=false limits execution to newly matched
	// globs.
	UpdatePipeline(spec *PipelineSpec, version uint64, reprocess bool) error
	InspectPipeline(name string) (*PipelineInfo, error)
	ListPipelines() ([]string, error)
	DeletePipeline(name string) error

	ListJobs(pipeline string) ([]JobInfo, error)
	InspectJob(jobID string) (*JobInfo, error)
	DeleteJob(jobID string) error
	ListDatums(jobID string) ([]DatumInfo, error)

	JobLogs(pipeline, jobID string) ([]LogEntry, error)
	PipelineLogs(pipeline string) ([]LogEntry, error)
}
