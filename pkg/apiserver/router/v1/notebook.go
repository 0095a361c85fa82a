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
	"github.com/helmsman-ml/helmsman/pkg/apiserver/controller/notebook"
)

type NotebookRouter struct{}

func (nr *NotebookRouter) Name() string {
	return "NotebookRouter"
}

func (nr *NotebookRouter) AddRouter(r chi.Router) {
	r.Post("/notebook/{workspace}", nr.createNotebook)
	r.Delete("/notebook/{workspace}", nr.deleteNotebook)
	r.Get("/notebook/{workspace}/logs", nr.getBuildLogs)
}

func (nr *NotebookRouter) createNotebook(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	workspace := chi.URLParam(r, common.ParamKeyWorkspace)
	var request notebook.CreateNotebookRequest
	if err := common.BindJSON(r, &request); err != nil {
		ctx.Logging().Errorf("create notebook bind body failed. error:%s", err.Error())
		common.RenderErrWithMessage(w, ctx.RequestID, common.MalformedJSON, err.Error())
		return
	}
	response, err := notebook.CreateNotebook(&ctx, workspace, request)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusCreated, response)
}

func (nr *NotebookRouter) deleteNotebook(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	workspace := chi.URLParam(r, common.ParamKeyWorkspace)
	if err := notebook.DeleteNotebook(&ctx, workspace); err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.RenderStatus(w, http.StatusOK)
}

func (nr *NotebookRouter) getBuildLogs(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	workspace := chi.URLParam(r, common.ParamKeyWorkspace)
	response, err := notebook.GetBuildLogs(&ctx, workspace)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusOK, response)
}
