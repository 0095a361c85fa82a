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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
	"github.com/helmsman-ml/helmsman/pkg/store"
)

// trainFixture wires a finished training job end to end: code submitted
// as hash h2, data as h1, no hyperparameter grid, one processed datum
// producing model m1 on branch h2_h1.
func trainFixture(t *testing.T) (*Service, *fakeStore, *fakeEngine) {
	t.Helper()
	svc, fs, fe := newTestService()

	def := newTrainDefinition("ws1")
	def.ImageGlob = "/src:h2"
	def.DataGlob = "/features:h1"
	def.OutputBranch = BuildOutputBranch(def.ImageGlob, def.DataGlob, def.HyperGlob)
	require.NoError(t, fe.CreatePipeline(trainSpec(def)))

	fs.addCommit("train-source-ws1", "master", "sc1",
		map[string][]byte{"/src:h2/train.py": []byte("print()")},
		buildResourceMeta(ResourceMeta{User: "alice", Workspace: "ws1"}))
	fs.addCommit("manifest-ws1", "master", "mc1",
		map[string][]byte{"/features:h1/manifest.json": []byte("[]")},
		buildResourceMeta(ResourceMeta{User: "bob", Workspace: "ws1"}))
	fs.addCommit("ingestion-ws1", "master", "dc1",
		map[string][]byte{"/features:h1/part-0.csv": []byte("1,2")},
		"", store.CommitRef{Repo: "manifest-ws1", ID: "mc1"})
	fs.addCommit("train-ws1", "h2_h1", "oc1",
		map[string][]byte{"/m1/model.bin": []byte("weights")},
		"")

	fe.jobs["train-ws1"] = []store.JobInfo{{
		ID:            "j1",
		Pipeline:      "train-ws1",
		State:         store.JobSuccess,
		OutputCommit:  store.CommitRef{Repo: "train-ws1", ID: "oc1"},
		DataTotal:     1,
		DataProcessed: 1,
	}}
	fe.datums["j1"] = []store.DatumInfo{{
		ID:    "d1",
		State: store.DatumProcessed,
		Files: []store.DatumFile{
			{InputName: trainInputImage, File: store.FileRef{Repo: "build-train-ws1", CommitID: "ic1", Path: "/src:h2"}},
			{InputName: trainInputData, File: store.FileRef{Repo: "ingestion-ws1", CommitID: "dc1", Path: "/features:h1"}},
			{InputName: trainInputHyper, File: store.FileRef{Repo: "hyper-ws1", CommitID: "hc1", Path: "/" + EmptyHyperFile}},
		},
	}}
	return svc, fs, fe
}

func TestResolveJobInfoEndToEnd(t *testing.T) {
	svc, _, _ := trainFixture(t)

	info, err := svc.ResolveJobInfo("ws1", "j1", "")
	require.NoError(t, err)
	require.Len(t, info.Partitions, 1)

	part := info.Partitions[0]
	assert.Equal(t, "h2_h1:m1", part.Output.Path)
	assert.Equal(t, "h2_h1", part.Output.Branch)
	assert.Nil(t, part.Hyperparams)
	assert.Nil(t, part.Score)

	require.NotNil(t, part.Code)
	assert.Equal(t, "train-source-ws1", part.Code.Repo)
	assert.Equal(t, "/src:h2", part.Code.Path)
	assert.Equal(t, "alice", part.Code.Author)

	require.NotNil(t, part.Data)
	assert.Equal(t, "dc1", part.Data.Commit)
	assert.Equal(t, "bob", part.Data.Author)

	require.NotNil(t, part.Image)
	assert.Equal(t, "build-train-ws1", part.Image.Repo)
}

func TestResolveJobInfoHyperparams(t *testing.T) {
	svc, fs, fe := trainFixture(t)

	// Swap the datum's hyper input for a real grid file.
	fe.datums["j1"][0].Files[2].File.Path = "/abcde/lr=0.1.json"
	fs.addCommit("train-ws1", "h2_h1_abcde", "oc1b",
		map[string][]byte{"/m1/model.bin": []byte("w")}, "")
	fe.jobs["train-ws1"][0].OutputCommit.ID = "oc1b"

	info, err := svc.ResolveJobInfo("ws1", "j1", "")
	require.NoError(t, err)
	require.Len(t, info.Partitions, 1)
	require.NotNil(t, info.Partitions[0].Hyperparams)
	assert.Equal(t, "/abcde/lr=0.1.json", info.Partitions[0].Hyperparams.Path)
	assert.Equal(t, "h2_h1_abcde", info.Partitions[0].Output.Branch)
}

func TestResolveJobInfoMetricGating(t *testing.T) {
	svc, fs, fe := trainFixture(t)
	fs.addCommit("train-ws1", "h2_h1", "oc2",
		map[string][]byte{"/m1/metrics.json": []byte(`{"acc": 0.9, "loss": 0.1}`)}, "")
	fe.jobs["train-ws1"][0].OutputCommit.ID = "oc2"

	info, err := svc.ResolveJobInfo("ws1", "j1", "acc")
	require.NoError(t, err)
	require.Len(t, info.Partitions, 1)
	require.NotNil(t, info.Partitions[0].Score)
	assert.InDelta(t, 0.9, *info.Partitions[0].Score, 1e-9)
	assert.Equal(t, []string{"acc", "loss"}, info.AvailableMetrics)

	_, err = svc.ResolveJobInfo("ws1", "j1", "f1")
	require.Error(t, err)
	assert.Equal(t, svcerrors.MetricNotFound, svcerrors.CodeOf(err))

	// No requested metric never fails on that basis.
	_, err = svc.ResolveJobInfo("ws1", "j1", "")
	assert.NoError(t, err)
}

// A grid job keeps reading per-datum snapshots from the stats branch even
// when all but one of its datums failed.
func TestResolveJobInfoPartialGridReadsDatumSnapshots(t *testing.T) {
	svc, fs, fe := trainFixture(t)

	fe.datums["j1"][0].Files[2].File.Path = "/abcde/lr=0.1.json"
	fe.datums["j1"] = append(fe.datums["j1"], store.DatumInfo{
		ID:    "d2",
		State: store.DatumFailed,
		Files: []store.DatumFile{
			{InputName: trainInputImage, File: store.FileRef{Repo: "build-train-ws1", CommitID: "ic1", Path: "/src:h2"}},
			{InputName: trainInputData, File: store.FileRef{Repo: "ingestion-ws1", CommitID: "dc1", Path: "/features:h1"}},
			{InputName: trainInputHyper, File: store.FileRef{Repo: "hyper-ws1", CommitID: "hc1", Path: "/abcde/lr=0.2.json"}},
		},
	})
	fs.addCommit("train-ws1", "h2_h1_abcde", "oc1b",
		map[string][]byte{"/m1/model.bin": []byte("w")}, "")
	fs.addCommit("train-ws1", "stats", "st1", map[string][]byte{
		"/d1/pfs/out/m1/model.bin":    []byte("w"),
		"/d1/pfs/out/m1/metrics.json": []byte(`{"acc": 0.8}`),
	}, "")
	fe.jobs["train-ws1"][0].OutputCommit.ID = "oc1b"

	info, err := svc.ResolveJobInfo("ws1", "j1", "acc")
	require.NoError(t, err)
	require.Len(t, info.Partitions, 1)
	part := info.Partitions[0]
	assert.Equal(t, "h2_h1_abcde:m1", part.Output.Path)
	require.NotNil(t, part.Score)
	assert.InDelta(t, 0.8, *part.Score, 1e-9)
}

func TestResolveJobInfoMetricsStoreFault(t *testing.T) {
	svc, fs, _ := trainFixture(t)
	fs.failListFiles = func(repo, commit, pattern string) error {
		if strings.Contains(pattern, "metrics") {
			return fmt.Errorf("rpc error: connection refused")
		}
		return nil
	}

	_, err := svc.ResolveJobInfo("ws1", "j1", "")
	require.Error(t, err)
	assert.Equal(t, svcerrors.StoreUnreachable, svcerrors.CodeOf(err))
}

func TestResolveJobInfoMalformedMetrics(t *testing.T) {
	svc, fs, fe := trainFixture(t)
	fs.addCommit("train-ws1", "h2_h1", "oc2",
		map[string][]byte{"/m1/metrics.json": []byte("not json")}, "")
	fe.jobs["train-ws1"][0].OutputCommit.ID = "oc2"

	_, err := svc.ResolveJobInfo("ws1", "j1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics file")
}

func TestResolveJobInfoUnknownJob(t *testing.T) {
	svc, _, _ := trainFixture(t)
	_, err := svc.ResolveJobInfo("ws1", "nope", "")
	require.Error(t, err)
	assert.Equal(t, svcerrors.JobNotFound, svcerrors.CodeOf(err))
}

func TestResolveJobInfoUnknownPipeline(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.ResolveJobInfo("ghost", "j1", "")
	require.Error(t, err)
	assert.Equal(t, svcerrors.PipelineNotFound, svcerrors.CodeOf(err))
}

func TestResolveModelInfo(t *testing.T) {
	svc, fs, _ := trainFixture(t)
	// An empty head commit is skipped when resolving the model's home.
	fs.addCommit("train-ws1", "h2_h1", "oc3", nil, "")

	info, err := svc.ResolveModelInfo("ws1", "h2_h1:m1")
	require.NoError(t, err)
	assert.Equal(t, "h2_h1:m1", info.ModelID)
	assert.Equal(t, "/m1", info.BasePath)
	assert.Equal(t, "oc1", info.CommitID)
}

func TestResolveModelInfoMissing(t *testing.T) {
	svc, _, _ := trainFixture(t)

	_, err := svc.ResolveModelInfo("ws1", "zzzzz:m1")
	require.Error(t, err)
	assert.Equal(t, svcerrors.ModelNotFound, svcerrors.CodeOf(err))

	_, err = svc.ResolveModelInfo("ws1", "h2_h1:ghost")
	require.Error(t, err)
	assert.Equal(t, svcerrors.ModelNotFound, svcerrors.CodeOf(err))

	_, err = svc.ResolveModelInfo("ws1", "malformed")
	require.Error(t, err)
	assert.Equal(t, svcerrors.ModelNotFound, svcerrors.CodeOf(err))
}

func TestResolveModelProvenance(t *testing.T) {
	svc, _, _ := trainFixture(t)

	part, err := svc.ResolveModelProvenance("ws1", "oc1", "h2_h1:m1")
	require.NoError(t, err)
	assert.Equal(t, "h2_h1:m1", part.Output.Path)

	_, err = svc.ResolveModelProvenance("ws1", "oc1", "h2_h1:other")
	require.Error(t, err)
	assert.Equal(t, svcerrors.ModelNotFound, svcerrors.CodeOf(err))
}

func TestResolveEndpointAlienProvenance(t *testing.T) {
	svc, _, fe := trainFixture(t)

	// An endpoint whose serving bundle never referenced a model.
	require.NoError(t, fe.CreatePipeline(&store.PipelineSpec{
		Name:        "serve-ws1-api-ab123",
		Description: buildResourceMeta(ResourceMeta{User: "carol", Workspace: "ws1"}),
		Inputs: []store.PipelineInput{
			{Role: store.RoleImage, Name: trainInputImage, Repo: "build-serve-ws1", Branch: "master", Glob: "/api:s1"},
		},
	}))
	fe.jobs["serve-ws1-api-ab123"] = []store.JobInfo{{ID: "sj1"}}
	fe.datums["sj1"] = []store.DatumInfo{{
		ID:    "sd1",
		State: store.DatumProcessed,
		Files: []store.DatumFile{
			{InputName: trainInputImage, File: store.FileRef{Repo: "build-serve-ws1", CommitID: "sic1", Path: "/api:s1"}},
		},
	}}
	svc.Store.(*fakeStore).addCommit("build-serve-ws1", "master", "sic1",
		map[string][]byte{"/api:s1": []byte("img")}, "")

	_, err := svc.ResolveEndpointInfo("ws1", "serve-ws1-api-ab123", true)
	require.Error(t, err)
	assert.Equal(t, svcerrors.AlienProvenance, svcerrors.CodeOf(err))

	// Without lineage the endpoint still describes itself.
	serve, err := svc.ResolveEndpointInfo("ws1", "serve-ws1-api-ab123", false)
	require.NoError(t, err)
	assert.Equal(t, "carol", serve.User)
}
