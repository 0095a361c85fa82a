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

package workspace

import (
	"sort"

	"github.com/helmsman-ml/helmsman/pkg/apiserver/common"
	"github.com/helmsman-ml/helmsman/pkg/apiserver/models"
	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
	"github.com/helmsman-ml/helmsman/pkg/common/logger"
	"github.com/helmsman-ml/helmsman/pkg/orchestrator"
)

var svc *orchestrator.Service

// Init wires the controller to the orchestration service at boot.
func Init(s *orchestrator.Service) {
	svc = s
}

type CreateWorkspaceRequest struct {
	Name string `json:"name"`
}

type CreateWorkspaceResponse struct {
	Name string `json:"name"`
}

func CreateWorkspace(ctx *logger.RequestContext, request CreateWorkspaceRequest) (CreateWorkspaceResponse, error) {
	if err := common.ValidateWorkspaceName(request.Name); err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("create workspace rejected. error:%v", err)
		return CreateWorkspaceResponse{}, err
	}
	if err := svc.CreateWorkspace(request.Name); err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("create workspace[%s] failed. error:%v", request.Name, err)
		return CreateWorkspaceResponse{}, err
	}
	return CreateWorkspaceResponse{Name: request.Name}, nil
}

type ListWorkspaceResponse struct {
	Workspaces []string `json:"workspaces"`
}

func ListWorkspaces(ctx *logger.RequestContext) (ListWorkspaceResponse, error) {
	names, err := svc.ListWorkspaces()
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("list workspaces failed. error:%v", err)
		return ListWorkspaceResponse{}, err
	}
	return ListWorkspaceResponse{Workspaces: names}, nil
}

func GetWorkspace(ctx *logger.RequestContext, name string) (models.WorkspaceInfo, error) {
	health, err := svc.WorkspaceHealth(name)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("inspect workspace[%s] failed. error:%v", name, err)
		return models.WorkspaceInfo{}, err
	}
	repos, err := svc.WorkspaceRepos(name)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("list workspace[%s] repos failed. error:%v", name, err)
		return models.WorkspaceInfo{}, err
	}
	info := models.WorkspaceInfo{Name: name, Repos: repos}
	for pipeline := range health {
		info.Pipelines = append(info.Pipelines, pipeline)
	}
	sort.Strings(info.Pipelines)
	return info, nil
}

type WorkspaceHealthResponse struct {
	Pipelines map[string]string `json:"pipelines"`
}

func WorkspaceHealth(ctx *logger.RequestContext, name string) (WorkspaceHealthResponse, error) {
	health, err := svc.WorkspaceHealth(name)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("workspace[%s] health check failed. error:%v", name, err)
		return WorkspaceHealthResponse{}, err
	}
	return WorkspaceHealthResponse{Pipelines: health}, nil
}

func DeleteWorkspace(ctx *logger.RequestContext, name string) error {
	if err := svc.DeleteWorkspace(name); err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("delete workspace[%s] failed. error:%v", name, err)
		return err
	}
	return nil
}
