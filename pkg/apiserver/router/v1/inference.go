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
	"strconv"

	"github.com/go-chi/chi"

	"github.com/helmsman-ml/helmsman/pkg/apiserver/common"
	"github.com/helmsman-ml/helmsman/pkg/apiserver/controller/inference"
)

type InferenceRouter struct{}

func (ir *InferenceRouter) Name() string {
	return "InferenceRouter"
}

func (ir *InferenceRouter) AddRouter(r chi.Router) {
	r.Post("/inference/{workspace}", ir.deploy)
	r.Get("/inference/{workspace}/endpoint/{endpoint}", ir.getEndpoint)
	r.Delete("/inference/{workspace}/endpoint/{endpoint}", ir.deleteEndpoint)
	r.Get("/inference/{workspace}/logs", ir.getBuildLogs)
}

func (ir *InferenceRouter) deploy(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	workspace := chi.URLParam(r, common.ParamKeyWorkspace)
	var request inference.DeployRequest
	if err := common.BindJSON(r, &request); err != nil {
		ctx.Logging().Errorf("deploy bind body failed. error:%s", err.Error())
		common.RenderErrWithMessage(w, ctx.RequestID, common.MalformedJSON, err.Error())
		return
	}
	response, err := inference.Deploy(&ctx, workspace, request)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusCreated, response)
}

func (ir *InferenceRouter) getEndpoint(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	workspace := chi.URLParam(r, common.ParamKeyWorkspace)
	endpoint := chi.URLParam(r, common.ParamKeyEndpoint)
	withLineage, _ := strconv.ParseBool(r.URL.Query().Get(common.QueryKeyLineage))
	response, err := inference.GetEndpoint(&ctx, workspace, endpoint, withLineage)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusOK, response)
}

func (ir *InferenceRouter) deleteEndpoint(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	workspace := chi.URLParam(r, common.ParamKeyWorkspace)
	endpoint := chi.URLParam(r, common.ParamKeyEndpoint)
	if err := inference.DeleteEndpoint(&ctx, workspace, endpoint); err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.RenderStatus(w, http.StatusOK)
}

func (ir *InferenceRouter) getBuildLogs(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	workspace := chi.URLParam(r, common.ParamKeyWorkspace)
	response, err := inference.GetBuildLogs(&ctx, workspace)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusOK, response)
}
