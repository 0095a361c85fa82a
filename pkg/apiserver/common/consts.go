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

package common

const (
	HeaderKeyRequestID = "x-hm-request-id"
	HeaderKeyUserName  = "x-hm-user-name"

	ParamKeyWorkspace = "workspace"
	ParamKeyJobID     = "jobID"
	ParamKeyModelID   = "modelID"
	ParamKeyCommitID  = "commitID"
	ParamKeyEndpoint  = "endpoint"

	QueryKeyPage    = "page"
	QueryKeyMetric  = "metric"
	QueryKeyUser    = "user"
	QueryKeyLineage = "lineage"

	RouterPrefix    = "/api/helmsman"
	RouterVersionV1 = "/v1"
)
