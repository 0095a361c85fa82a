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
	"github.com/helmsman-ml/helmsman/pkg/apiserver/controller/data"
)

type DataRouter struct{}

func (dr *DataRouter) Name() string {
	return "DataRouter"
}

func (dr *DataRouter) AddRouter(r chi.Router) {
	r.Post("/data/{workspace}", dr.submitData)
	r.Get("/data/{workspace}/logs", dr.getIngestionLogs)
}

func (dr *DataRouter) submitData(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	workspace := chi.URLParam(r, common.ParamKeyWorkspace)
	var request data.SubmitDataRequest
	if err := common.BindJSON(r, &request); err != nil {
		ctx.Logging().Errorf("submit data bind body failed. error:%s", err.Error())
		common.RenderErrWithMessage(w, ctx.RequestID, common.MalformedJSON, err.Error())
		return
	}
	response, err := data.SubmitData(&ctx, workspace, request)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusCreated, response)
}

func (dr *DataRouter) getIngestionLogs(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	workspace := chi.URLParam(r, common.ParamKeyWorkspace)
	response, err := data.GetIngestionLogs(&ctx, workspace)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusOK, response)
}
