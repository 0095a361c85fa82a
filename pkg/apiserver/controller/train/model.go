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

package train

import (
	"github.com/helmsman-ml/helmsman/pkg/apiserver/models"
	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
	"github.com/helmsman-ml/helmsman/pkg/common/logger"
	"github.com/helmsman-ml/helmsman/pkg/orchestrator"
	"github.com/helmsman-ml/helmsman/pkg/store"
)

func GetModel(ctx *logger.RequestContext, workspace, modelID string) (*models.ModelInfo, error) {
	info, err := svc.ResolveModelInfo(workspace, modelID)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("resolve model[%s] in workspace[%s] failed. error:%v", modelID, workspace, err)
		return nil, err
	}
	return info, nil
}

type DownloadModelResponse struct {
	Files []store.File `json:"files"`
}

func DownloadModel(ctx *logger.RequestContext, workspace, modelID string) (DownloadModelResponse, error) {
	files, err := svc.DownloadModel(workspace, modelID)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("download model[%s] from workspace[%s] failed. error:%v", modelID, workspace, err)
		return DownloadModelResponse{}, err
	}
	return DownloadModelResponse{Files: files}, nil
}

type ModelProvenanceResponse struct {
	Model     *models.ModelInfo     `json:"model"`
	Partition *models.PartitionInfo `json:"partition"`
	Graph     string                `json:"graph"`
}

// GetModelProvenance walks a model back to the job partition that produced
// it and renders the lineage as a DOT graph.
func GetModelProvenance(ctx *logger.RequestContext, workspace, commitID, modelID string) (ModelProvenanceResponse, error) {
	model, err := svc.ResolveModelInfo(workspace, modelID)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("resolve model[%s] in workspace[%s] failed. error:%v", modelID, workspace, err)
		return ModelProvenanceResponse{}, err
	}
	part, err := svc.ResolveModelProvenance(workspace, commitID, modelID)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("resolve provenance of model[%s] failed. error:%v", modelID, err)
		return ModelProvenanceResponse{}, err
	}
	graph := orchestrator.BuildModelLineageGraph(workspace, model, part)
	return ModelProvenanceResponse{Model: model, Partition: part, Graph: graph}, nil
}

func GetBuildLogs(ctx *logger.RequestContext, workspace string) (JobLogsResponse, error) {
	lines, err := svc.BuildLogs(workspace, orchestrator.BuildTrainPipelinePrefix)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("fetch build logs of workspace[%s] failed. error:%v", workspace, err)
		return JobLogsResponse{}, err
	}
	return JobLogsResponse{Lines: lines}, nil
}
