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

// Package inference manages serving endpoints and their lineage back to
// the models they host.
package inference

import (
	"github.com/helmsman-ml/helmsman/pkg/apiserver/common"
	"github.com/helmsman-ml/helmsman/pkg/apiserver/models"
	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
	"github.com/helmsman-ml/helmsman/pkg/common/logger"
	"github.com/helmsman-ml/helmsman/pkg/orchestrator"
	"github.com/helmsman-ml/helmsman/pkg/store"
)

var svc *orchestrator.Service

func Init(s *orchestrator.Service) {
	svc = s
}

type DeployRequest struct {
	Name    string  `json:"name"`
	ModelID string  `json:"modelId"`
	Archive []byte  `json:"archive"`
	CPU     float64 `json:"cpu,omitempty"`
	Memory  string  `json:"memory,omitempty"`
	GPU     int     `json:"gpu,omitempty"`
}

type DeployResponse struct {
	Endpoint string `json:"endpoint"`
	URL      string `json:"url"`
}

func Deploy(ctx *logger.RequestContext, workspace string, request DeployRequest) (DeployResponse, error) {
	bundle, err := common.BundleFromZip(request.Name, request.Archive)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("deploy rejected. error:%v", err)
		return DeployResponse{}, err
	}
	var res *store.ResourceSpec
	if request.CPU != 0 || request.Memory != "" || request.GPU != 0 {
		res = &store.ResourceSpec{CPU: request.CPU, Memory: request.Memory, GPU: request.GPU}
		if err := common.ValidateResources(res); err != nil {
			ctx.ErrorCode = svcerrors.CodeOf(err)
			ctx.Logging().Errorf("deploy rejected. error:%v", err)
			return DeployResponse{}, err
		}
	}
	endpoint, err := svc.DeployInference(workspace, ctx.UserName, request.Name, request.ModelID, bundle, res)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("deploy to workspace[%s] failed. error:%v", workspace, err)
		return DeployResponse{}, err
	}
	return DeployResponse{Endpoint: endpoint, URL: svc.EndpointURL(endpoint)}, nil
}

type GetEndpointResponse struct {
	models.ServeInfo
	Graph string `json:"graph,omitempty"`
}

// GetEndpoint inspects a serving endpoint. With lineage enabled the
// response additionally carries the hosted model's provenance and a DOT
// rendering of the full lineage graph.
func GetEndpoint(ctx *logger.RequestContext, workspace, endpoint string, withLineage bool) (GetEndpointResponse, error) {
	info, err := svc.ResolveEndpointInfo(workspace, endpoint, withLineage)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("resolve endpoint[%s] in workspace[%s] failed. error:%v", endpoint, workspace, err)
		return GetEndpointResponse{}, err
	}
	resp := GetEndpointResponse{ServeInfo: *info}
	if withLineage && info.Model != nil {
		part, err := svc.ResolveModelProvenance(workspace, info.Model.CommitID, info.Model.ModelID)
		if err != nil {
			ctx.ErrorCode = svcerrors.CodeOf(err)
			ctx.Logging().Errorf("resolve provenance of endpoint[%s] failed. error:%v", endpoint, err)
			return GetEndpointResponse{}, err
		}
		resp.Graph = orchestrator.BuildEndpointLineageGraph(workspace, info, part)
	}
	return resp, nil
}

func DeleteEndpoint(ctx *logger.RequestContext, workspace, endpoint string) error {
	if err := svc.DeleteEndpoint(workspace, endpoint); err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("delete endpoint[%s] in workspace[%s] failed. error:%v", endpoint, workspace, err)
		return err
	}
	return nil
}

type BuildLogsResponse struct {
	Lines []string `json:"lines"`
}

func GetBuildLogs(ctx *logger.RequestContext, workspace string) (BuildLogsResponse, error) {
	lines, err := svc.BuildLogs(workspace, orchestrator.BuildServePipelinePrefix)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("fetch serve build logs of workspace[%s] failed. error:%v", workspace, err)
		return BuildLogsResponse{}, err
	}
	return BuildLogsResponse{Lines: lines}, nil
}
