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
	"sort"
	"strings"

	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
	"github.com/helmsman-ml/helmsman/pkg/common/logger"
	"github.com/helmsman-ml/helmsman/pkg/store"
)

// CreateWorkspace provisions every repository and fixed pipeline a
// workspace consists of. Creation is atomic in intent, not in mechanism:
// the existence check up front is the only guard, and a half-created
// workspace is repaired by deleting and recreating it.
func (s *Service) CreateWorkspace(workspace string) error {
	log := logger.LoggerForWorkspace(workspace)

	exists, err := s.WorkspaceExists(workspace)
	if err != nil {
		return err
	}
	if exists {
		return svcerrors.WorkspaceExistsError(workspace)
	}

	// Source-side repos only. Pipeline output repos (model, images, train
	// data) appear when their pipelines are created.
	for _, repo := range []string{
		RepoName(TrainSourceRepoPrefix, workspace),
		RepoName(ManifestRepoPrefix, workspace),
		RepoName(HyperRepoPrefix, workspace),
		RepoName(ServeSourceRepoPrefix, workspace),
		RepoName(NotebookSourceRepoPrefix, workspace),
		RepoName(NotebookDataRepoPrefix, workspace),
	} {
		if err := s.Store.CreateRepo(repo, "workspace "+workspace); err != nil {
			return store.Translate(err)
		}
	}

	if err := s.DefineBuildPipeline(workspace, BuildTrainPipelinePrefix); err != nil {
		return err
	}
	if err := s.DefineBuildPipeline(workspace, BuildServePipelinePrefix); err != nil {
		return err
	}
	if err := s.DefineBuildPipeline(workspace, BuildNotebookPipelinePrefix); err != nil {
		return err
	}
	if err := s.DefineIngestionPipeline(workspace); err != nil {
		return err
	}
	if err := s.DefineTrainPipeline(workspace); err != nil {
		return err
	}

	log.Infof("workspace %s created", workspace)
	return nil
}

// WorkspaceExists probes for the workspace's source repository.
func (s *Service) WorkspaceExists(workspace string) (bool, error) {
	repos, err := s.Store.ListRepos()
	if err != nil {
		return false, store.Translate(err)
	}
	marker := RepoName(TrainSourceRepoPrefix, workspace)
	for _, repo := range repos {
		if repo == marker {
			return true, nil
		}
	}
	return false, nil
}

// ListWorkspaces derives the workspace inventory from repository names;
// there is no separate registry to drift out of sync.
func (s *Service) ListWorkspaces() ([]string, error) {
	repos, err := s.Store.ListRepos()
	if err != nil {
		return nil, store.Translate(err)
	}
	prefix := TrainSourceRepoPrefix + "-"
	var names []string
	for _, repo := range repos {
		if strings.HasPrefix(repo, prefix) {
			names = append(names, strings.TrimPrefix(repo, prefix))
		}
	}
	sort.Strings(names)
	return names, nil
}

// DeleteWorkspace tears a workspace down by suffix: every pipeline first
// (serve and notebook pipelines included), then every repository,
// including the pipeline output repos.
func (s *Service) DeleteWorkspace(workspace string) error {
	log := logger.LoggerForWorkspace(workspace)

	pipelines, err := s.Engine.ListPipelines()
	if err != nil {
		return store.Translate(err)
	}
	owned := map[string]bool{}
	for _, name := range workspacePipelineNames(workspace) {
		owned[name] = true
	}
	userPrefixes := []string{
		ServePipelinePrefix + "-" + workspace + "-",
		NotebookPipelinePrefix + "-" + workspace + "-",
	}
	for _, name := range pipelines {
		belongs := owned[name]
		for _, p := range userPrefixes {
			belongs = belongs || strings.HasPrefix(name, p)
		}
		if !belongs {
			continue
		}
		if err := s.Engine.DeletePipeline(name); err != nil {
			return store.Translate(err)
		}
	}

	repos, err := s.Store.ListRepos()
	if err != nil {
		return store.Translate(err)
	}
	ownedRepos := map[string]bool{}
	for _, name := range workspaceRepoNames(workspace) {
		ownedRepos[name] = true
	}
	for _, repo := range repos {
		if !ownedRepos[repo] {
			continue
		}
		if err := s.Store.DeleteRepo(repo); err != nil {
			return store.Translate(err)
		}
	}

	log.Infof("workspace %s deleted", workspace)
	return nil
}

// WorkspaceRepos lists the workspace's repositories that exist right
// now. Pipeline output repos only appear once their pipelines ran, so
// this is a subset of the full inventory.
func (s *Service) WorkspaceRepos(workspace string) ([]string, error) {
	repos, err := s.Store.ListRepos()
	if err != nil {
		return nil, store.Translate(err)
	}
	owned := map[string]bool{}
	for _, name := range workspaceRepoNames(workspace) {
		owned[name] = true
	}
	var names []string
	for _, repo := range repos {
		if owned[repo] {
			names = append(names, repo)
		}
	}
	sort.Strings(names)
	return names, nil
}

// WorkspaceHealth reports, per fixed pipeline, whether it is reachable
// and what state it is in.
func (s *Service) WorkspaceHealth(workspace string) (map[string]string, error) {
	if ok, err := s.WorkspaceExists(workspace); err != nil {
		return nil, err
	} else if !ok {
		return nil, svcerrors.PipelineNotFoundError(RepoName(TrainPipelinePrefix, workspace))
	}
	health := map[string]string{}
	for _, name := range workspacePipelineNames(workspace) {
		info, err := s.Engine.InspectPipeline(name)
		if err != nil {
			health[name] = "missing"
			continue
		}
		health[name] = info.State.String()
	}
	return health, nil
}
