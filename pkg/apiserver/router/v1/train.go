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
	"github.com/helmsman-ml/helmsman/pkg/apiserver/controller/train"
	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
)

type TrainRouter struct{}

func (tr *TrainRouter) Name() string {
	return "TrainRouter"
}

func (tr *TrainRouter) AddRouter(r chi.Router) {
	r.Post("/train/{workspace}", tr.submitCode)
	r.Post("/train/{workspace}/hyperparams", tr.submitHyperparams)
	r.Get("/train/{workspace}", tr.listJobs)
	r.Get("/train/{workspace}/job/{jobID}", tr.getJob)
	r.Get("/train/{workspace}/job/{jobID}/logs", tr.getJobLogs)
	r.Delete("/train/{workspace}/job/{jobID}", tr.killJob)
	r.Get("/train/{workspace}/logs", tr.getBuildLogs)
	r.Get("/train/{workspace}/model/{modelID}", tr.getModel)
	r.Get("/train/{workspace}/model/{modelID}/download", tr.downloadModel)
	r.Get("/train/{workspace}/provenance/{commitID}/model/{modelID}", tr.getModelProvenance)
}

func (tr *TrainRouter) submitCode(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	workspace := chi.URLParam(r, common.ParamKeyWorkspace)
	var request train.SubmitCodeRequest
	if err := common.BindJSON(r, &request); err != nil {
		ctx.Logging().Errorf("submit code bind body failed. error:%s", err.Error())
		common.RenderErrWithMessage(w, ctx.RequestID, common.MalformedJSON, err.Error())
		return
	}
	response, err := train.SubmitCode(&ctx, workspace, request)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusCreated, response)
}

func (tr *TrainRouter) submitHyperparams(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	workspace := chi.URLParam(r, common.ParamKeyWorkspace)
	var request train.SubmitHyperRequest
	if err := common.BindJSON(r, &request); err != nil {
		ctx.Logging().Errorf("submit hyperparams bind body failed. error:%s", err.Error())
		common.RenderErrWithMessage(w, ctx.RequestID, common.MalformedJSON, err.Error())
		return
	}
	response, err := train.SubmitHyperparams(&ctx, workspace, request)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusCreated, response)
}

func (tr *TrainRouter) listJobs(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	workspace := chi.URLParam(r, common.ParamKeyWorkspace)
	response, err := train.ListJobs(&ctx, workspace)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusOK, response)
}

func (tr *TrainRouter) getJob(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	workspace := chi.URLParam(r, common.ParamKeyWorkspace)
	jobID := chi.URLParam(r, common.ParamKeyJobID)
	metric := r.URL.Query().Get(common.QueryKeyMetric)
	page := 0
	if raw := r.URL.Query().Get(common.QueryKeyPage); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			common.RenderErrWithMessage(w, ctx.RequestID, svcerrors.InvalidPageID, err.Error())
			return
		}
		page = parsed
	}
	response, err := train.GetJob(&ctx, workspace, jobID, metric, page)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusOK, response)
}

func (tr *TrainRouter) getJobLogs(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	workspace := chi.URLParam(r, common.ParamKeyWorkspace)
	jobID := chi.URLParam(r, common.ParamKeyJobID)
	response, err := train.GetJobLogs(&ctx, workspace, jobID)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusOK, response)
}

func (tr *TrainRouter) killJob(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	workspace := chi.URLParam(r, common.ParamKeyWorkspace)
	jobID := chi.URLParam(r, common.ParamKeyJobID)
	if err := train.KillJob(&ctx, workspace, jobID); err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.RenderStatus(w, http.StatusOK)
}

func (tr *TrainRouter) getBuildLogs(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	workspace := chi.URLParam(r, common.ParamKeyWorkspace)
	response, err := train.GetBuildLogs(&ctx, workspace)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusOK, response)
}

func (tr *TrainRouter) getModel(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	workspace := chi.URLParam(r, common.ParamKeyWorkspace)
	modelID := chi.URLParam(r, common.ParamKeyModelID)
	response, err := train.GetModel(&ctx, workspace, modelID)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusOK, response)
}

func (tr *TrainRouter) downloadModel(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	workspace := chi.URLParam(r, common.ParamKeyWorkspace)
	modelID := chi.URLParam(r, common.ParamKeyModelID)
	response, err := train.DownloadModel(&ctx, workspace, modelID)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusOK, response)
}

func (tr *TrainRouter) getModelProvenance(w http.ResponseWriter, r *http.Request) {
	ctx := common.GetRequestContext(r)
	workspace := chi.URLParam(r, common.ParamKeyWorkspace)
	commitID := chi.URLParam(r, common.ParamKeyCommitID)
	modelID := chi.URLParam(r, common.ParamKeyModelID)
	response, err := train.GetModelProvenance(&ctx, workspace, commitID, modelID)
	if err != nil {
		common.RenderErrWithMessage(w, ctx.RequestID, ctx.ErrorCode, err.Error())
		return
	}
	common.Render(w, http.StatusOK, response)
}
