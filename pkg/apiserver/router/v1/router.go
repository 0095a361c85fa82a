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
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/helmsman-ml/helmsman/pkg/apiserver/common"
	"github.com/helmsman-ml/helmsman/pkg/apiserver/controller/data"
	"github.com/helmsman-ml/helmsman/pkg/apiserver/controller/inference"
	"github.com/helmsman-ml/helmsman/pkg/apiserver/controller/notebook"
	"github.com/helmsman-ml/helmsman/pkg/apiserver/controller/train"
	"github.com/helmsman-ml/helmsman/pkg/apiserver/controller/workspace"
	pm "github.com/helmsman-ml/helmsman/pkg/apiserver/middleware"
	"github.com/helmsman-ml/helmsman/pkg/orchestrator"
)

type IRouter interface {
	Name() string
	AddRouter(r chi.Router)
}

func RegisterRouters(r *chi.Mux, svc *orchestrator.Service) {
	workspace.Init(svc)
	train.Init(svc)
	data.Init(svc)
	inference.Init(svc)
	notebook.Init(svc)

	r.Use(pm.CheckRequestID)
	r.NotFound(pm.NotFound)
	r.MethodNotAllowed(pm.MethodNotAllowed)
	r.Use(middleware.Recoverer)
	// route group
	pathPrefix := common.RouterPrefix + common.RouterVersionV1
	r.Route(pathPrefix, func(apiV1Router chi.Router) {
		AddRouter(apiV1Router, &WorkspaceRouter{})
		AddRouter(apiV1Router, &TrainRouter{})
		AddRouter(apiV1Router, &DataRouter{})
		AddRouter(apiV1Router, &InferenceRouter{})
		AddRouter(apiV1Router, &NotebookRouter{})
	})
	AddRouter(r, &HealthRouter{})
	AddRouter(r, &VersionRouter{})
}

func AddRouter(r chi.Router, router IRouter) {
	log.Infof("Add router[%s]", router.Name())
	router.AddRouter(r)
}
