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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmsman-ml/helmsman/pkg/store"
)

func TestBundleDigestDeterministic(t *testing.T) {
	a := &Bundle{Name: "code", Files: []store.File{
		{Path: "train.py", Data: []byte("x")},
		{Path: "lib.py", Data: []byte("y")},
	}}
	b := &Bundle{Name: "code", Files: []store.File{
		{Path: "lib.py", Data: []byte("y")},
		{Path: "train.py", Data: []byte("x")},
	}}
	assert.Equal(t, a.Digest(), b.Digest(), "file order must not change identity")
	assert.Len(t, a.Digest(), 5)
	assert.Equal(t, "/code:"+a.Digest(), a.Dir(), "tree digest must land in the name unrehashed")

	c := &Bundle{Name: "code", Files: []store.File{
		{Path: "train.py", Data: []byte("changed")},
	}}
	assert.NotEqual(t, a.Digest(), c.Digest())
}

func TestSubmitBundleDedup(t *testing.T) {
	svc, fs, _ := newTestService()
	fs.ensureRepo("train-source-ws1")

	b := &Bundle{Name: "code", Files: []store.File{{Path: "train.py", Data: []byte("x")}}}
	dir, dup, err := svc.submitBundle("train-source-ws1", b, ResourceMeta{User: "alice", Workspace: "ws1"})
	require.NoError(t, err)
	assert.False(t, dup)

	_, dup, err = svc.submitBundle("train-source-ws1", b, ResourceMeta{User: "alice", Workspace: "ws1"})
	require.NoError(t, err)
	assert.True(t, dup, "identical resubmission is path-keyed duplicate")

	infos, err := fs.ListFiles("train-source-ws1", "master", dir, false)
	require.NoError(t, err)
	require.Len(t, infos, 1, "duplicate submission commits nothing new")
}

func TestSubmitTrainingCodeWiresPipelines(t *testing.T) {
	svc, fs, fe := newTestService()
	fs.ensureRepo("train-source-ws1")
	require.NoError(t, svc.DefineBuildPipeline("ws1", BuildTrainPipelinePrefix))
	require.NoError(t, svc.DefineTrainPipeline("ws1"))

	b := &Bundle{Name: "code", Files: []store.File{{Path: "train.py", Data: []byte("x")}}}
	res := &store.ResourceSpec{CPU: 2, Memory: "1Gi"}
	dir, err := svc.SubmitTrainingCode("ws1", "alice", b, res, nil)
	require.NoError(t, err)

	build, err := fe.InspectPipeline("build-train-ws1")
	require.NoError(t, err)
	assert.Equal(t, dir+"/*", build.Spec.Input(store.RoleCode).Glob)

	train, err := fe.InspectPipeline("train-ws1")
	require.NoError(t, err)
	assert.Equal(t, dir, train.Spec.Input(store.RoleImage).Glob)
	assert.Equal(t, *res, train.Spec.Resources)

	// The resource requests travel with the bundle.
	args, err := fs.GetFile("train-source-ws1", "master", dir+"/"+pipelineArgsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "1Gi")
}

func TestSubmitHyperGrid(t *testing.T) {
	svc, fs, fe := newTestService()
	fs.ensureRepo("hyper-ws1")
	require.NoError(t, svc.DefineTrainPipeline("ws1"))

	glob, err := svc.SubmitHyperGrid("ws1", "alice", map[string][]string{"lr": {"0.1", "0.2"}})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(glob, "/*"))

	train, err := fe.InspectPipeline("train-ws1")
	require.NoError(t, err)
	assert.Equal(t, glob, train.Spec.Input(store.RoleHyper).Glob)

	dir := strings.TrimSuffix(glob, "/*")
	infos, err := fs.ListFiles("hyper-ws1", "master", dir, false)
	require.NoError(t, err)
	assert.Len(t, infos, 2)
}

func TestSubmitHyperGridEmpty(t *testing.T) {
	svc, fs, fe := newTestService()
	fs.ensureRepo("hyper-ws1")
	require.NoError(t, svc.DefineTrainPipeline("ws1"))

	glob, err := svc.SubmitHyperGrid("ws1", "alice", nil)
	require.NoError(t, err)
	assert.Equal(t, "/"+EmptyHyperFile, glob)

	train, err := fe.InspectPipeline("train-ws1")
	require.NoError(t, err)
	assert.Equal(t, glob, train.Spec.Input(store.RoleHyper).Glob)

	data, err := fs.GetFile("hyper-ws1", "master", "/"+EmptyHyperFile)
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(data))
}

func TestSubmitHyperGridEmptyAfterGrid(t *testing.T) {
	svc, fs, fe := newTestService()
	fs.ensureRepo("hyper-ws1")
	require.NoError(t, svc.DefineTrainPipeline("ws1"))

	_, err := svc.SubmitHyperGrid("ws1", "alice", map[string][]string{"lr": {"0.1"}})
	require.NoError(t, err)

	// An existing grid directory must not shadow the sentinel: the file
	// the hyper glob now points at has to be committed.
	glob, err := svc.SubmitHyperGrid("ws1", "alice", nil)
	require.NoError(t, err)
	assert.Equal(t, "/"+EmptyHyperFile, glob)

	data, err := fs.GetFile("hyper-ws1", "master", "/"+EmptyHyperFile)
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(data))

	train, err := fe.InspectPipeline("train-ws1")
	require.NoError(t, err)
	assert.Equal(t, glob, train.Spec.Input(store.RoleHyper).Glob)
}
