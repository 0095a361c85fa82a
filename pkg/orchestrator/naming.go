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

package orchestrator

import (
	"fmt"
	"path"
	"strings"
)

// Role prefixes. Every repository and pipeline belonging to a workspace is
// named <prefix>-<workspace>[-<user>]; workspace teardown deletes by
// suffix. A pipeline's output lands in a repository bearing the pipeline
// name, so the build pipelines double as the image repositories and the
// train pipeline doubles as the model repository.
const (
	TrainPipelinePrefix         = "train"
	BuildTrainPipelinePrefix    = "build-train"
	BuildServePipelinePrefix    = "build-serve"
	BuildNotebookPipelinePrefix = "build-notebook"
	IngestionPipelinePrefix     = "ingestion"
	ServePipelinePrefix         = "serve"
	NotebookPipelinePrefix      = "notebook"

	TrainSourceRepoPrefix    = "train-source"
	ManifestRepoPrefix       = "manifest"
	HyperRepoPrefix          = "hyper"
	ServeSourceRepoPrefix    = "serve-source"
	NotebookSourceRepoPrefix = "notebook-source"
	NotebookDataRepoPrefix   = "notebook-data"

	TrainImageRepoPrefix    = BuildTrainPipelinePrefix
	TrainDataRepoPrefix     = IngestionPipelinePrefix
	ServeImageRepoPrefix    = BuildServePipelinePrefix
	NotebookImageRepoPrefix = BuildNotebookPipelinePrefix
	ModelRepoPrefix         = TrainPipelinePrefix
)

// Sentinels for inputs that were never supplied. They all contain the
// token "null" on purpose: an output branch derived from any of them
// collapses to the NullBranch sentinel, marking the pipeline as not yet
// fully configured.
const (
	EmptyRegistryName = "null"
	EmptyImageName    = "null"
	EmptyDataName     = "null"
	// EmptyHyperFile is the fixed, hash-free path for "no hyperparameters",
	// addressable without prior knowledge of any submission hash.
	EmptyHyperFile = "null_hyperparams.json"

	NullBranch = "null"
)

// RepoName builds the workspace-scoped name of a repository or pipeline.
func RepoName(prefix, workspace string) string {
	return fmt.Sprintf("%s-%s", prefix, workspace)
}

// UserPipelineName builds the name of a per-user pipeline (notebooks).
func UserPipelineName(prefix, workspace, user string) string {
	return fmt.Sprintf("%s-%s-%s", prefix, workspace, user)
}

// IsHyperGrid reports whether a hyperparameter glob selects an actual grid
// rather than the empty-grid sentinel.
func IsHyperGrid(hyperGlob string) bool {
	return hyperGlob != "/"+EmptyHyperFile
}

// BuildOutputBranch derives the deterministic output branch for a train
// pipeline from its three input globs: the trailing hash segment of the
// image and data globs joined with "_", plus the hyperparameter hash
// segment when a real grid is configured. Any segment still carrying the
// "null" token collapses the whole name to NullBranch, a distinct
// non-schedulable state rather than an error.
func BuildOutputBranch(imageGlob, dataGlob, hyperGlob string) string {
	segs := strings.Split(imageGlob, ":")
	imageHex := strings.ReplaceAll(segs[len(segs)-1], "/", "")
	segs = strings.Split(dataGlob, ":")
	dataHex := strings.ReplaceAll(segs[len(segs)-1], "/", "")

	branch := fmt.Sprintf("%s_%s", imageHex, dataHex)
	if IsHyperGrid(hyperGlob) {
		hyperHex := path.Base(path.Dir(hyperGlob))
		branch = fmt.Sprintf("%s_%s", branch, hyperHex)
	}
	if strings.Contains(branch, "null") {
		return NullBranch
	}
	return branch
}

// workspaceRepoNames lists every repository a workspace owns.
func workspaceRepoNames(workspace string) []string {
	return []string{
		RepoName(TrainDataRepoPrefix, workspace),
		RepoName(TrainImageRepoPrefix, workspace),
		RepoName(TrainSourceRepoPrefix, workspace),
		RepoName(ModelRepoPrefix, workspace),
		RepoName(ServeSourceRepoPrefix, workspace),
		RepoName(NotebookDataRepoPrefix, workspace),
		RepoName(NotebookImageRepoPrefix, workspace),
		RepoName(NotebookSourceRepoPrefix, workspace),
		RepoName(HyperRepoPrefix, workspace),
		RepoName(ManifestRepoPrefix, workspace),
	}
}

// workspacePipelineNames lists every fixed-name pipeline a workspace owns.
func workspacePipelineNames(workspace string) []string {
	return []string{
		RepoName(BuildTrainPipelinePrefix, workspace),
		RepoName(TrainPipelinePrefix, workspace),
		RepoName(BuildServePipelinePrefix, workspace),
		RepoName(BuildNotebookPipelinePrefix, workspace),
		RepoName(IngestionPipelinePrefix, workspace),
	}
}
