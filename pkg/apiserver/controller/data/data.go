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

// Package data handles training data manifest submissions and ingestion
// pipeline monitoring.
package data

import (
	"github.com/helmsman-ml/helmsman/pkg/apiserver/common"
	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
	"github.com/helmsman-ml/helmsman/pkg/common/logger"
	"github.com/helmsman-ml/helmsman/pkg/orchestrator"
)

var svc *orchestrator.Service

func Init(s *orchestrator.Service) {
	svc = s
}

type SubmitDataRequest struct {
	Name    string `json:"name"`
	Archive []byte `json:"archive"`
}

type SubmitDataResponse struct {
	Path string `json:"path"`
}

func SubmitData(ctx *logger.RequestContext, workspace string, request SubmitDataRequest) (SubmitDataResponse, error) {
	bundle, err := common.BundleFromZip(request.Name, request.Archive)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("submit data rejected. error:%v", err)
		return SubmitDataResponse{}, err
	}
	dir, err := svc.SubmitTrainingData(workspace, ctx.UserName, bundle)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("submit data to workspace[%s] failed. error:%v", workspace, err)
		return SubmitDataResponse{}, err
	}
	return SubmitDataResponse{Path: dir}, nil
}

type IngestionLogsResponse struct {
	Lines []string `json:"lines"`
}

func GetIngestionLogs(ctx *logger.RequestContext, workspace string) (IngestionLogsResponse, error) {
	lines, err := svc.BuildLogs(workspace, orchestrator.IngestionPipelinePrefix)
	if err != nil {
		ctx.ErrorCode = svcerrors.CodeOf(err)
		ctx.Logging().Errorf("fetch ingestion logs of workspace[%s] failed. error:%v", workspace, err)
		return IngestionLogsResponse{}, err
	}
	return IngestionLogsResponse{Lines: lines}, nil
}
