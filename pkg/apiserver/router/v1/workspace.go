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

package v1

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/helmsman-ml/helmsman/pkg/apiserver/common"
	"github.com/helmsman-ml/helmsman/pkg/apiserver/controller/workspace"
)

type WorkspaceRouter struct{}

func (wr *WorkspaceRouter) Name() string {
	return "WorkspaceRouter"
}

func (wr *WorkspaceRouter) AddRouter(r chi.Router) {
	r.Post("/workspace", wr.createWorkspace)
	r.Get("/workspace", wr.listWorkspaces)
	r.Get("/workspace/{workspace}", wr.getWorkspace)
	r.Get("/workspace/{workspace}/health", wr.workspaceHealth)
	r.Delete("/workspace/{workspace}", wr.deleteWorkspace)
}

func (wr *WorkspaceRouter) createWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	var request workspace.CreateWorkspaceRequest
	if err := common.BindJSON(r, &request); err != nil {
		ctx.Logging().Errorf("create workspace bind body failed. error:%s", err.Error())
		common.RenderErrWithMessage(w, ctx.RequestID, common.MalformedJSON, err.Error())
		return
	}
	response, err := workspace.CreateWorkspace(&ctx, request)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusCreated, response)
}

func (wr *WorkspaceRouter) listWorkspaces(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	response, err := workspace.ListWorkspaces(&ctx)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusOK, response)
}

func (wr *WorkspaceRouter) getWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	name := chi.URLParam(r, common.ParamKeyWorkspace)
	response, err := workspace.GetWorkspace(&ctx, name)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusOK, response)
}

func (wr *WorkspaceRouter) workspaceHealth(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	name := chi.URLParam(r, common.ParamKeyWorkspace)
	response, err := workspace.WorkspaceHealth(&ctx, name)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusOK, response)
}

func (wr *WorkspaceRouter) deleteWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	name := chi.URLParam(r, common.ParamKeyWorkspace)
	if err := workspace.DeleteWorkspace(&ctx, name); err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.RenderStatus(w, http.StatusOK)
}
