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

// Package models holds the denormalized records the API returns. They are
// assembled on read from the content store and never persisted.
package models

// WorkspaceInfo lists everything sharing one workspace suffix.
type WorkspaceInfo struct {
	Name      string   `json:"name"`
	Pipelines []string `json:"pipelines"`
	Repos     []string `json:"repos"`
}

// DataDescriptor locates one resolved lineage input or output in the
// content store.
type DataDescriptor struct {
	Repo   string `json:"repo"`
	Commit string `json:"commit"`
	Path   string `json:"path"`
	Branch string `json:"branch,omitempty"`
	Author string `json:"author,omitempty"`
}

// PartitionInfo is the resolved lineage record for one trained model
// instance within a job. Hyperparams is nil when the job ran without a
// hyperparameter grid; Score is nil when no metrics file was present.
type PartitionInfo struct {
	DatumID     string          `json:"datumID"`
	Code        *DataDescriptor `json:"code"`
	Data        *DataDescriptor `json:"data"`
	Image       *DataDescriptor `json:"image"`
	Output      *DataDescriptor `json:"output"`
	Score       *float64        `json:"score,omitempty"`
	Hyperparams *DataDescriptor `json:"hyperparams,omitempty"`
}

// SubmissionInfo summarizes one queued or finished job for listings.
type SubmissionInfo struct {
	JobID    string `json:"jobID"`
	State    string `json:"state"`
	Started  string `json:"started"`
	Duration string `json:"duration"`
	Progress string `json:"progress"`
	HyperOpt string `json:"hyperopt,omitempty"`
}

// JobInfo is a fully resolved training job with its lineage partitions.
type JobInfo struct {
	JobID            string          `json:"jobID"`
	State            string          `json:"state"`
	AvailableMetrics []string        `json:"availableMetrics"`
	ProcessTime      int64           `json:"processTime"`
	Partitions       []PartitionInfo `json:"partitions"`
}

type ModelInfo struct {
	User      string `json:"user"`
	CommitID  string `json:"commitID"`
	Size      string `json:"size"`
	Path      string `json:"path"`
	BasePath  string `json:"basePath"`
	ModelID   string `json:"modelID"`
	CreatedAt string `json:"createdAt"`
}

// ServeInfo describes a deployed endpoint or notebook, optionally with its
// resolved lineage.
type ServeInfo struct {
	Name      string          `json:"name"`
	URL       string          `json:"url"`
	User      string          `json:"user"`
	State     string          `json:"state"`
	CreatedAt string          `json:"createdAt"`
	Code      *DataDescriptor `json:"code,omitempty"`
	Image     *DataDescriptor `json:"image,omitempty"`
	Model     *ModelInfo      `json:"model,omitempty"`
}

// TrainJobListing groups the job listings shown for one workspace.
type TrainJobListing struct {
	Training  []SubmissionInfo `json:"training"`
	Building  []SubmissionInfo `json:"building"`
	Ingesting []SubmissionInfo `json:"ingesting"`
}
