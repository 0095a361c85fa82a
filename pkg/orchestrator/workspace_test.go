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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
)

func TestCreateWorkspace(t *testing.T) {
	svc, fs, fe := newTestService()
	require.NoError(t, svc.CreateWorkspace("ws1"))

	repos, err := fs.ListRepos()
	require.NoError(t, err)
	assert.Contains(t, repos, "train-source-ws1")
	assert.Contains(t, repos, "manifest-ws1")
	assert.Contains(t, repos, "hyper-ws1")

	pipelines, err := fe.ListPipelines()
	require.NoError(t, err)
	for _, name := range workspacePipelineNames("ws1") {
		assert.Contains(t, pipelines, name)
	}
}

func TestCreateWorkspaceConflict(t *testing.T) {
	svc, _, _ := newTestService()
	require.NoError(t, svc.CreateWorkspace("ws1"))

	err := svc.CreateWorkspace("ws1")
	require.Error(t, err)
	assert.Equal(t, svcerrors.WorkspaceExists, svcerrors.CodeOf(err))
}

func TestListWorkspaces(t *testing.T) {
	svc, _, _ := newTestService()
	require.NoError(t, svc.CreateWorkspace("beta"))
	require.NoError(t, svc.CreateWorkspace("alpha"))

	names, err := svc.ListWorkspaces()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)
}

func TestWorkspaceRepos(t *testing.T) {
	svc, fs, _ := newTestService()
	require.NoError(t, svc.CreateWorkspace("ws1"))
	require.NoError(t, svc.CreateWorkspace("ws2"))
	// A pipeline output repo appearing later is picked up too.
	fs.ensureRepo("train-ws1")

	repos, err := svc.WorkspaceRepos("ws1")
	require.NoError(t, err)
	assert.Contains(t, repos, "train-source-ws1")
	assert.Contains(t, repos, "hyper-ws1")
	assert.Contains(t, repos, "train-ws1")
	for _, repo := range repos {
		assert.NotContains(t, repo, "ws2")
	}
	assert.IsIncreasing(t, repos)
}

func TestDeleteWorkspaceRemovesEverything(t *testing.T) {
	svc, fs, fe := newTestService()
	require.NoError(t, svc.CreateWorkspace("ws1"))
	require.NoError(t, svc.CreateWorkspace("ws2"))

	require.NoError(t, svc.DeleteWorkspace("ws1"))

	names, err := svc.ListWorkspaces()
	require.NoError(t, err)
	assert.Equal(t, []string{"ws2"}, names)

	pipelines, err := fe.ListPipelines()
	require.NoError(t, err)
	for _, name := range workspacePipelineNames("ws1") {
		assert.NotContains(t, pipelines, name)
	}
	for _, name := range workspacePipelineNames("ws2") {
		assert.Contains(t, pipelines, name)
	}

	repos, err := fs.ListRepos()
	require.NoError(t, err)
	assert.NotContains(t, repos, "train-source-ws1")
	assert.Contains(t, repos, "train-source-ws2")
}

func TestWorkspaceHealth(t *testing.T) {
	svc, _, _ := newTestService()
	require.NoError(t, svc.CreateWorkspace("ws1"))

	health, err := svc.WorkspaceHealth("ws1")
	require.NoError(t, err)
	assert.Equal(t, "running", health["train-ws1"])

	_, err = svc.WorkspaceHealth("ghost")
	require.Error(t, err)
	assert.Equal(t, svcerrors.PipelineNotFound, svcerrors.CodeOf(err))
}
