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

// Package notebook manages hosted notebook servers, one per user and
// workspace.
package notebook

import (
	"github.com/helmsman-ml/helmsman/pkg/apiserver/common"
	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
	"github.com/helmsman-ml/helmsman/pkg/common/logger"
	"github.com/helmsman-ml/helmsman/pkg/orchestrator"
	"github.com/helmsman-ml/helmsman/pkg/store"
)

var svc *orchestrator.Service

func Init(s *orchestrator.Service) {
	svc = s
}

type CreateNotebookRequest struct {
	Name    string  `json:"name"`
	Archive []byte  `json:"archive"`
	CPU     float64 `json:"cpu,omitempty"`
	Memory  string  `json:"memory,omitempty"`
	GPU     int     `json:"gpu,omitempty"`
}

type CreateNotebookResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func CreateNotebook(ctx *logger.RequestContext, workspace string, request CreateNotebookRequest) (CreateNotebookResponse, error) {
	bundle, err := common.BundleFromZip(request.Name, request.Archive)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("create notebook rejected. error:%v", err)
		return CreateNotebookResponse{}, err
	}
	var res *store.ResourceSpec
	if request.CPU != 0 || request.Memory != "" || request.GPU != 0 {
		res = &store.ResourceSpec{CPU: request.CPU, Memory: request.Memory, GPU: request.GPU}
		if err := common.ValidateResources(res); err != nil {
			ctx.ErrorCode = svcerrors.CodeOf(err)
			ctx.Logging().Errorf("create notebook rejected. error:%v", err)
			return CreateNotebookResponse{}, err
		}
	}
	name, err := svc.CreateNotebook(workspace, ctx.UserName, bundle, res)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("create notebook in workspace[%s] failed. error:%v", workspace, err)
		return CreateNotebookResponse{}, err
	}
	return CreateNotebookResponse{Name: name, URL: svc.EndpointURL(name)}, nil
}

func DeleteNotebook(ctx *logger.RequestContext, workspace string) error {
	if err := svc.DeleteNotebook(workspace, ctx.UserName); err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("delete notebook in workspace[%s] failed. error:%v", workspace, err)
		return err
	}
	return nil
}

type BuildLogsResponse struct {
	Lines []string `json:"lines"`
}

func GetBuildLogs(ctx *logger.RequestContext, workspace string) (BuildLogsResponse, error) {
	lines, err := svc.BuildLogs(workspace, orchestrator.BuildNotebookPipelinePrefix)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("fetch notebook build logs of workspace[%s] failed. error:%v", workspace, err)
		return BuildLogsResponse{}, err
	}
	return BuildLogsResponse{Lines: lines}, nil
}
