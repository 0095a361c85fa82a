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

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi"
	log "github.com/sirupsen/logrus"

	v1 "github.com/helmsman-ml/helmsman/pkg/apiserver/router/v1"
	"github.com/helmsman-ml/helmsman/pkg/common/config"
	"github.com/helmsman-ml/helmsman/pkg/orchestrator"
	"github.com/helmsman-ml/helmsman/pkg/store/rest"
)

type Server struct {
	Router       *chi.Mux
	HttpSvr      *http.Server
	ServerConf   *config.ServerConfig
	ServerCtx    context.Context
	ServerCancel context.CancelFunc
}

// NewServer wires the REST store client, the orchestration service and the
// HTTP routers into one runnable server.
func NewServer(conf *config.ServerConfig) *Server {
	client := rest.NewClient(conf.Store.Address)
	svc := orchestrator.NewService(client, client, &conf.Store)

	router := chi.NewRouter()
	v1.RegisterRouters(router, svc)

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		Router: router,
		HttpSvr: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", conf.ApiServer.Host, conf.ApiServer.Port),
			Handler: router,
		},
		ServerConf:   conf,
		ServerCtx:    ctx,
		ServerCancel: cancel,
	}
}

// Run serves until SIGTERM or SIGINT, then shuts down in-flight requests
// gracefully.
func (s *Server) Run() error {
	defer s.ServerCancel()

	log.Infof("server addr:%s", s.HttpSvr.Addr)
	go func() {
		if err := s.HttpSvr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("listen: %s", err)
			s.ServerCancel()
		}
	}()

	stopSig := make(chan os.Signal, 1)
	signal.Notify(stopSig, syscall.SIGTERM, syscall.SIGINT)
	select {
	case <-stopSig:
	case <-s.ServerCtx.Done():
	}

	if err := s.HttpSvr.Shutdown(context.Background()); err != nil {
		log.Infof("server forced to shutdown:%s", err.Error())
		return err
	}
	log.Info("helmsman server exiting")
	return nil
}
