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

// Package train exposes training submissions, job inspection and model
// lineage over the orchestration service.
package train

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

type SubmitCodeRequest struct {
	Name        string  `json:"name"`
	Archive     []byte  `json:"archive"`
	CPU         float64 `json:"cpu,omitempty"`
	Memory      string  `json:"memory,omitempty"`
	GPU         int     `json:"gpu,omitempty"`
	Parallelism *int    `json:"parallelism,omitempty"`
}

type SubmitResponse struct {
	Path string `json:"path"`
}

func SubmitCode(ctx *logger.RequestContext, workspace string, request SubmitCodeRequest) (SubmitResponse, error) {
	bundle, err := common.BundleFromZip(request.Name, request.Archive)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("submit code rejected. error:%v", err)
		return SubmitResponse{}, err
	}
	var res *store.ResourceSpec
	if request.CPU != 0 || request.Memory != "" || request.GPU != 0 {
		res = &store.ResourceSpec{CPU: request.CPU, Memory: request.Memory, GPU: request.GPU}
		if err := common.ValidateResources(res); err != nil {
			ctx.ErrorCode = svcerrors.CodeOf(err)
			ctx.Logging().Errorf("submit code rejected. error:%v", err)
			return SubmitResponse{}, err
		}
	}
	dir, err := svc.SubmitTrainingCode(workspace, ctx.UserName, bundle, res, request.Parallelism)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("submit code to workspace[%s] failed. error:%v", workspace, err)
		return SubmitResponse{}, err
	}
	return SubmitResponse{Path: dir}, nil
}

type SubmitHyperRequest struct {
	Grid map[string][]string `json:"grid"`
}

func SubmitHyperparams(ctx *logger.RequestContext, workspace string, request SubmitHyperRequest) (SubmitResponse, error) {
	glob, err := svc.SubmitHyperGrid(workspace, ctx.UserName, request.Grid)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("submit hyperparams to workspace[%s] failed. error:%v", workspace, err)
		return SubmitResponse{}, err
	}
	return SubmitResponse{Path: glob}, nil
}

func ListJobs(ctx *logger.RequestContext, workspace string) (*models.TrainJobListing, error) {
	listing, err := svc.ListTrainJobs(workspace)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("list jobs of workspace[%s] failed. error:%v", workspace, err)
		return nil, err
	}
	return listing, nil
}

type GetJobResponse struct {
	models.JobInfo
	Page      int `json:"page"`
	PageCount int `json:"pageCount"`
}

// GetJob resolves a job's lineage and returns one page of its partitions,
// best scores first.
func GetJob(ctx *logger.RequestContext, workspace, jobID, metric string, page int) (GetJobResponse, error) {
	info, err := svc.ResolveJobInfo(workspace, jobID, metric)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("resolve job[%s] in workspace[%s] failed. error:%v", jobID, workspace, err)
		return GetJobResponse{}, err
	}
	partitions, pageCount, err := orchestrator.PagePartitions(info.Partitions, page)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("page job[%s] partitions failed. error:%v", jobID, err)
		return GetJobResponse{}, err
	}
	info.Partitions = partitions
	return GetJobResponse{JobInfo: *info, Page: page, PageCount: pageCount}, nil
}

type JobLogsResponse struct {
	Lines []string `json:"lines"`
}

func GetJobLogs(ctx *logger.RequestContext, workspace, jobID string) (JobLogsResponse, error) {
	lines, err := svc.JobLogs(workspace, jobID)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("fetch logs of job[%s] failed. error:%v", jobID, err)
		return JobLogsResponse{}, err
	}
	return JobLogsResponse{Lines: lines}, nil
}

func KillJob(ctx *logger.RequestContext, workspace, jobID string) error {
	if err := svc.KillJob(workspace, jobID); err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("kill job[%s] failed. error:%v", jobID, err)
		return err
	}
	return nil
}
