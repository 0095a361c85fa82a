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

	"github.com/helmsman-ml/helmsman/pkg/store"
)

// Cross-input names of the train pipeline. Datum files are resolved back
// to their role through these declared identities.
const (
	trainInputImage = "image"
	trainInputData  = "data"
	trainInputHyper = "hyper"
)

// trainCommands is the fixed entrypoint contract of training images: the
// build pipeline bakes an executable train script into the image root, and
// the engine mounts inputs and the output scratch directory under /pfs.
var trainCommands = []string{
	"cd /pfs/code 2>/dev/null || true",
	"/train /pfs/data /pfs/hyper /pfs/out",
}

// TrainDefinition is the reconciler's view of one workspace's train
// pipeline: exactly the fields a submission may change, plus the output
// branch derived from them.
type TrainDefinition struct {
	Workspace    string
	Image        string
	ImageGlob    string
	DataGlob     string
	HyperGlob    string
	OutputBranch string
	Parallelism  int
	Resources    store.ResourceSpec
}

// newTrainDefinition is the Absent-state definition: every input still at
// its sentinel, output branch collapsed to the non-schedulable null name.
func newTrainDefinition(workspace string) *TrainDefinition {
	def := &TrainDefinition{
		Workspace:   workspace,
		Image:       fmt.Sprintf("%s/%s", EmptyRegistryName, EmptyImageName),
		ImageGlob:   "/" + EmptyImageName,
		DataGlob:    "/" + EmptyDataName,
		HyperGlob:   "/" + EmptyHyperFile,
		Parallelism: 1,
		Resources:   store.ResourceSpec{CPU: 1, Memory: "512Mi"},
	}
	def.OutputBranch = BuildOutputBranch(def.ImageGlob, def.DataGlob, def.HyperGlob)
	return def
}

// trainSpec renders a definition into the engine's declarative form. The
// pipeline crosses its three inputs so every (image, data, hyper)
// combination the globs select becomes one datum.
func trainSpec(def *TrainDefinition) *store.PipelineSpec {
	return &store.PipelineSpec{
		Name:     RepoName(TrainPipelinePrefix, def.Workspace),
		Image:    def.Image,
		Commands: trainCommands,
		Inputs: []store.PipelineInput{
			{
				Role:   store.RoleImage,
				Name:   trainInputImage,
				Repo:   RepoName(TrainImageRepoPrefix, def.Workspace),
				Branch: "master",
				Glob:   def.ImageGlob,
			},
			{
				Role:   store.RoleData,
				Name:   trainInputData,
				Repo:   RepoName(TrainDataRepoPrefix, def.Workspace),
				Branch: "master",
				Glob:   def.DataGlob,
			},
			{
				Role:   store.RoleHyper,
				Name:   trainInputHyper,
				Repo:   RepoName(HyperRepoPrefix, def.Workspace),
				Branch: "master",
				Glob:   def.HyperGlob,
			},
		},
		OutputBranch: def.OutputBranch,
		Parallelism:  def.Parallelism,
		Resources:    def.Resources,
		DatumTries:   1,
	}
}

// trainDefinitionFromSpec recovers the reconciler's view from a running
// spec read back off the engine.
func trainDefinitionFromSpec(workspace string, spec *store.PipelineSpec) *TrainDefinition {
	def := &TrainDefinition{
		Workspace:    workspace,
		Image:        spec.Image,
		OutputBranch: spec.OutputBranch,
		Parallelism:  spec.Parallelism,
		Resources:    spec.Resources,
	}
	if in := spec.Input(store.RoleImage); in != nil {
		def.ImageGlob = in.Glob
	}
	if in := spec.Input(store.RoleData); in != nil {
		def.DataGlob = in.Glob
	}
	if in := spec.Input(store.RoleHyper); in != nil {
		def.HyperGlob = in.Glob
	}
	return def
}

// InspectTrainPipeline returns the current train definition of a workspace
// together with the spec version token needed to update it.
func (s *Service) InspectTrainPipeline(workspace string) (*TrainDefinition, uint64, error) {
	info, err := s.checkPipelineExists(RepoName(TrainPipelinePrefix, workspace))
	if err != nil {
		return nil, 0, err
	}
	return trainDefinitionFromSpec(workspace, &info.Spec), info.SpecVersion, nil
}
