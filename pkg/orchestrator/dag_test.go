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

	"github.com/helmsman-ml/helmsman/pkg/apiserver/models"
)

func lineagePartition() *models.PartitionInfo {
	return &models.PartitionInfo{
		DatumID: "d1",
		Code:    &models.DataDescriptor{Repo: "train-source-ws1", Commit: "sc1", Path: "/src:h2"},
		Data:    &models.DataDescriptor{Repo: "ingestion-ws1", Commit: "dc1", Path: "/features:h1"},
		Image:   &models.DataDescriptor{Repo: "build-train-ws1", Commit: "ic1", Path: "/src:h2"},
		Output:  &models.DataDescriptor{Repo: "train-ws1", Commit: "oc1", Branch: "h2_h1", Path: "h2_h1:m1"},
	}
}

func TestBuildModelLineageGraph(t *testing.T) {
	model := &models.ModelInfo{ModelID: "h2_h1:m1", CommitID: "oc1"}
	src := BuildModelLineageGraph("ws1", model, lineagePartition())

	assert.True(t, strings.HasPrefix(src, "digraph lineage {"))
	assert.Contains(t, src, "h2_h1:m1")
	assert.Contains(t, src, "train-ws1")
	assert.Contains(t, src, "n1 -> n2")
	assert.Contains(t, src, "n5 -> n6")
	assert.NotContains(t, src, "n7", "no hyperparams node without a grid")

	// Pure function: same inputs, same text.
	assert.Equal(t, src, BuildModelLineageGraph("ws1", model, lineagePartition()))
}

func TestBuildModelLineageGraphWithHyperparams(t *testing.T) {
	part := lineagePartition()
	part.Hyperparams = &models.DataDescriptor{Repo: "hyper-ws1", Commit: "hc1", Path: "/abcde/lr=0.1.json"}
	src := BuildModelLineageGraph("ws1", nil, part)
	assert.Contains(t, src, "n7 -> n5")
}

func TestBuildEndpointLineageGraph(t *testing.T) {
	serve := &models.ServeInfo{
		Name:  "serve-ws1-api-ab123",
		URL:   "http://host/serve-ws1-api-ab123/invocations",
		Model: &models.ModelInfo{ModelID: "h2_h1:m1", CommitID: "oc1"},
		Code:  &models.DataDescriptor{Repo: "serve-source-ws1", Commit: "cc1", Path: "/api:s1"},
		Image: &models.DataDescriptor{Repo: "build-serve-ws1", Commit: "sic1", Path: "/api:s1"},
	}
	src := BuildEndpointLineageGraph("ws1", serve, lineagePartition())

	// Training and serving halves share the model node.
	assert.Contains(t, src, "n5 -> n6")
	assert.Contains(t, src, "n6 -> n9")
	assert.Contains(t, src, "n10 -> n11")
	assert.Contains(t, src, "serve-ws1-api-ab123")
}
