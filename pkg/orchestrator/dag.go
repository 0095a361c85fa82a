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
	"sort"
	"strings"

	"github.com/helmsman-ml/helmsman/pkg/apiserver/models"
)

// digraph accumulates a DOT-format directed graph. Nodes render in
// insertion order so the output is stable.
type digraph struct {
	label string
	order []string
	nodes map[string]string
	edges [][2]string
}

func newDigraph(label string) *digraph {
	return &digraph{label: label, nodes: map[string]string{}}
}

func (g *digraph) node(id, label string) {
	if _, ok := g.nodes[id]; !ok {
		g.order = append(g.order, id)
	}
	g.nodes[id] = label
}

func (g *digraph) edge(from, to string) {
	g.edges = append(g.edges, [2]string{from, to})
}

func (g *digraph) source() string {
	var b strings.Builder
	b.WriteString("digraph lineage {\n")
	fmt.Fprintf(&b, "\tlabel=%q;\n", g.label)
	b.WriteString("\trankdir=LR;\n\tnode [shape=box];\n")
	for _, id := range g.order {
		fmt.Fprintf(&b, "\t%s [label=%q];\n", id, g.nodes[id])
	}
	edges := make([][2]string, len(g.edges))
	copy(edges, g.edges)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	for _, e := range edges {
		fmt.Fprintf(&b, "\t%s -> %s;\n", e[0], e[1])
	}
	b.WriteString("}\n")
	return b.String()
}

func describe(kind string, d *models.DataDescriptor) string {
	if d == nil {
		return kind + "\nunresolved"
	}
	return fmt.Sprintf("%s\n%s\n%s @ %s", kind, d.Path, d.Repo, d.Commit)
}

// addTrainingLineage lays out the training half of a lineage graph:
// source and data feed the build and train pipelines, which converge on
// the model. All identifiers must already be resolved; the graph performs
// no lookups of its own.
func addTrainingLineage(g *digraph, workspace string, model *models.ModelInfo, part *models.PartitionInfo) {
	g.node("n1", describe("source code", part.Code))
	g.node("n2", "build pipeline\n"+RepoName(BuildTrainPipelinePrefix, workspace))
	g.node("n3", describe("image", part.Image))
	g.node("n4", describe("data", part.Data))
	g.node("n5", "train pipeline\n"+RepoName(TrainPipelinePrefix, workspace))
	modelLabel := "model"
	if model != nil {
		modelLabel = fmt.Sprintf("model\n%s\n%s", model.ModelID, model.CommitID)
	}
	g.node("n6", modelLabel)

	g.edge("n1", "n2")
	g.edge("n2", "n3")
	g.edge("n3", "n5")
	g.edge("n4", "n5")
	g.edge("n5", "n6")

	if part.Hyperparams != nil {
		g.node("n7", describe("hyperparams", part.Hyperparams))
		g.edge("n7", "n5")
	}
}

// addServingLineage extends a graph with the serving half: the model and
// the serving source feed the serve build, whose image backs the endpoint.
func addServingLineage(g *digraph, workspace string, serve *models.ServeInfo) {
	g.node("n8", describe("serving code", serve.Code))
	g.node("n9", "build pipeline\n"+RepoName(BuildServePipelinePrefix, workspace))
	g.node("n10", describe("serving image", serve.Image))
	g.node("n11", fmt.Sprintf("endpoint\n%s\n%s", serve.Name, serve.URL))

	g.edge("n6", "n9")
	g.edge("n8", "n9")
	g.edge("n9", "n10")
	g.edge("n10", "n11")
}

// BuildModelLineageGraph renders the training lineage of one model as DOT
// text.
func BuildModelLineageGraph(workspace string, model *models.ModelInfo, part *models.PartitionInfo) string {
	g := newDigraph(fmt.Sprintf("model lineage, workspace %s", workspace))
	addTrainingLineage(g, workspace, model, part)
	return g.source()
}

// BuildEndpointLineageGraph renders the end-to-end lineage of a deployed
// endpoint, composing the training and serving halves into one graph.
func BuildEndpointLineageGraph(workspace string, serve *models.ServeInfo, part *models.PartitionInfo) string {
	g := newDigraph(fmt.Sprintf("endpoint lineage, workspace %s", workspace))
	addTrainingLineage(g, workspace, serve.Model, part)
	addServingLineage(g, workspace, serve)
	return g.source()
}
