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
	"strings"

	"github.com/google/uuid"

	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
	"github.com/helmsman-ml/helmsman/pkg/common/logger"
	"github.com/helmsman-ml/helmsman/pkg/store"
)

// PredictRoute is the path every deployed endpoint serves predictions on.
const PredictRoute = "invocations"

const (
	servePort    = 8080
	notebookPort = 8888
)

// sourceRepoFor maps a build pipeline prefix to the source repository it
// consumes.
func sourceRepoFor(buildPrefix string) string {
	switch buildPrefix {
	case BuildServePipelinePrefix:
		return ServeSourceRepoPrefix
	case BuildNotebookPipelinePrefix:
		return NotebookSourceRepoPrefix
	default:
		return TrainSourceRepoPrefix
	}
}

// buildSpec renders a build pipeline: a builder image over the matching
// source repository, producing images tagged with the source bundle's
// identity hash. Build pipelines park in standby between submissions.
func (s *Service) buildSpec(workspace, buildPrefix, glob string) *store.PipelineSpec {
	return &store.PipelineSpec{
		Name:     RepoName(buildPrefix, workspace),
		Image:    s.builderImage(),
		Commands: []string{"/build /pfs/code /pfs/out"},
		Inputs: []store.PipelineInput{
			{
				Role:   store.RoleCode,
				Name:   "code",
				Repo:   RepoName(sourceRepoFor(buildPrefix), workspace),
				Branch: "master",
				Glob:   glob,
			},
		},
		OutputBranch: "master",
		Parallelism:  1,
		Resources:    store.ResourceSpec{CPU: 1, Memory: "1Gi"},
		Standby:      true,
		DatumTries:   1,
	}
}

func (s *Service) builderImage() string {
	registry := EmptyRegistryName
	if s.Config != nil && s.Config.DockerRegistry != "" {
		registry = s.Config.DockerRegistry
	}
	return registry + "/helmsman-builder:latest"
}

// DefineBuildPipeline creates one of the workspace's build pipelines with
// a glob that matches nothing yet.
func (s *Service) DefineBuildPipeline(workspace, buildPrefix string) error {
	spec := s.buildSpec(workspace, buildPrefix, "/"+EmptyImageName)
	if err := s.Engine.CreatePipeline(spec); err != nil {
		return store.Translate(err)
	}
	return nil
}

// UpdateBuildPipeline repoints a build pipeline at a newly committed
// source directory. An unchanged glob issues no update.
func (s *Service) UpdateBuildPipeline(workspace, buildPrefix, glob string) error {
	name := RepoName(buildPrefix, workspace)
	return repeatedCall(reconcileAttempts, func() error {
		info, err := s.checkPipelineExists(name)
		if err != nil {
			return err
		}
		if in := info.Spec.Input(store.RoleCode); in != nil && in.Glob == glob {
			return nil
		}
		spec := s.buildSpec(workspace, buildPrefix, glob)
		if err := s.Engine.UpdatePipeline(spec, info.SpecVersion, false); err != nil {
			return store.Translate(err)
		}
		return nil
	})
}

// ingestionSpec renders the ingestion pipeline: it reads data manifests
// and materializes the referenced objects under a directory named after
// the manifest bundle, which the train pipeline then consumes.
func (s *Service) ingestionSpec(workspace, glob string) *store.PipelineSpec {
	return &store.PipelineSpec{
		Name:     RepoName(IngestionPipelinePrefix, workspace),
		Image:    s.builderImage(),
		Commands: []string{"/ingest /pfs/manifest /pfs/out"},
		Inputs: []store.PipelineInput{
			{
				Role:   store.RoleData,
				Name:   "manifest",
				Repo:   RepoName(ManifestRepoPrefix, workspace),
				Branch: "master",
				Glob:   glob,
			},
		},
		OutputBranch: "master",
		Parallelism:  1,
		Resources:    store.ResourceSpec{CPU: 1, Memory: "1Gi"},
		DatumTries:   1,
	}
}

func (s *Service) DefineIngestionPipeline(workspace string) error {
	spec := s.ingestionSpec(workspace, "/"+EmptyDataName)
	if err := s.Engine.CreatePipeline(spec); err != nil {
		return store.Translate(err)
	}
	return nil
}

// UpdateIngestionPipeline repoints ingestion at a new manifest directory.
func (s *Service) UpdateIngestionPipeline(workspace, glob string) error {
	name := RepoName(IngestionPipelinePrefix, workspace)
	return repeatedCall(reconcileAttempts, func() error {
		info, err := s.checkPipelineExists(name)
		if err != nil {
			return err
		}
		if in := info.Spec.Input(store.RoleData); in != nil && in.Glob == glob {
			return nil
		}
		if err := s.Engine.UpdatePipeline(s.ingestionSpec(workspace, glob), info.SpecVersion, false); err != nil {
			return store.Translate(err)
		}
		return nil
	})
}

// DeployInference submits a serving source bundle, schedules its image
// build and creates a long-running serve pipeline around the resulting
// image. The endpoint name carries a random suffix so repeated
// deployments of the same model coexist.
func (s *Service) DeployInference(workspace, user, name, modelID string, b *Bundle, res *store.ResourceSpec) (string, error) {
	log := logger.LoggerForWorkspace(workspace)

	repo := RepoName(ServeSourceRepoPrefix, workspace)
	dir, _, err := s.submitBundle(repo, b, ResourceMeta{User: user, Workspace: workspace, ModelID: modelID})
	if err != nil {
		return "", err
	}
	if err := s.UpdateBuildPipeline(workspace, BuildServePipelinePrefix, dir+"/*"); err != nil {
		return "", err
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:5]
	endpoint := fmt.Sprintf("%s-%s-%s-%s", ServePipelinePrefix, workspace, name, suffix)

	resources := store.ResourceSpec{CPU: 1, Memory: "1Gi"}
	if res != nil {
		resources = *res
	}
	spec := &store.PipelineSpec{
		Name:        endpoint,
		Image:       s.imageRef(RepoName(ServeImageRepoPrefix, workspace), b.Name, bundleHash(dir)),
		Commands:    []string{"/serve /pfs/image"},
		Description: buildResourceMeta(ResourceMeta{User: user, Workspace: workspace, ModelID: modelID}),
		Inputs: []store.PipelineInput{
			{
				Role:   store.RoleImage,
				Name:   trainInputImage,
				Repo:   RepoName(ServeImageRepoPrefix, workspace),
				Branch: "master",
				Glob:   dir,
			},
		},
		OutputBranch: "master",
		Parallelism:  1,
		Resources:    resources,
		Service: &store.ServiceSpec{
			InternalPort: servePort,
			ExternalPort: servePort,
			Type:         "NodePort",
		},
		DatumTries: 1,
	}
	if err := s.Engine.CreatePipeline(spec); err != nil {
		return "", store.Translate(err)
	}
	log.Infof("deployed inference endpoint %s", endpoint)
	return endpoint, nil
}

// EndpointURL builds the externally reachable prediction URL of an
// endpoint.
func (s *Service) EndpointURL(endpoint string) string {
	host := "localhost"
	if s.Config != nil && s.Config.ServiceHost != "" {
		host = s.Config.ServiceHost
	}
	return fmt.Sprintf("http://%s/%s/%s", host, endpoint, PredictRoute)
}

// DeleteEndpoint tears a serve pipeline down.
func (s *Service) DeleteEndpoint(workspace, endpoint string) error {
	prefix := fmt.Sprintf("%s-%s-", ServePipelinePrefix, workspace)
	if !strings.HasPrefix(endpoint, prefix) {
		return svcerrors.PipelineNotFoundError(endpoint)
	}
	if _, err := s.checkPipelineExists(endpoint); err != nil {
		return err
	}
	if err := s.Engine.DeletePipeline(endpoint); err != nil {
		return store.Translate(err)
	}
	return nil
}

// CreateNotebook starts a per-user notebook pipeline. Creation is not
// idempotent: a second notebook for the same user is a conflict.
func (s *Service) CreateNotebook(workspace, user string, b *Bundle, res *store.ResourceSpec) (string, error) {
	name := UserPipelineName(NotebookPipelinePrefix, workspace, user)
	if _, err := s.Engine.InspectPipeline(name); err == nil {
		return "", svcerrors.NotebookAlreadyExistsError(name)
	}

	repo := RepoName(NotebookSourceRepoPrefix, workspace)
	dir, _, err := s.submitBundle(repo, b, ResourceMeta{User: user, Workspace: workspace})
	if err != nil {
		return "", err
	}
	if err := s.UpdateBuildPipeline(workspace, BuildNotebookPipelinePrefix, dir+"/*"); err != nil {
		return "", err
	}

	resources := store.ResourceSpec{CPU: 1, Memory: "2Gi"}
	if res != nil {
		resources = *res
	}
	spec := &store.PipelineSpec{
		Name:        name,
		Image:       s.imageRef(RepoName(NotebookImageRepoPrefix, workspace), b.Name, bundleHash(dir)),
		Commands:    []string{"/notebook /pfs/data"},
		Description: buildResourceMeta(ResourceMeta{User: user, Workspace: workspace}),
		Inputs: []store.PipelineInput{
			{
				Role:   store.RoleData,
				Name:   trainInputData,
				Repo:   RepoName(NotebookDataRepoPrefix, workspace),
				Branch: "master",
				Glob:   "/",
			},
		},
		OutputBranch: "master",
		Parallelism:  1,
		Resources:    resources,
		Service: &store.ServiceSpec{
			InternalPort: notebookPort,
			ExternalPort: notebookPort,
			Type:         "NodePort",
		},
		DatumTries: 1,
	}
	if err := s.Engine.CreatePipeline(spec); err != nil {
		return "", store.Translate(err)
	}
	return name, nil
}

// DeleteNotebook removes a user's notebook pipeline.
func (s *Service) DeleteNotebook(workspace, user string) error {
	name := UserPipelineName(NotebookPipelinePrefix, workspace, user)
	if _, err := s.checkPipelineExists(name); err != nil {
		return err
	}
	if err := s.Engine.DeletePipeline(name); err != nil {
		return store.Translate(err)
	}
	return nil
}
