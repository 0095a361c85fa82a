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

package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"

	"github.com/helmsman-ml/helmsman/cmd/server/app"
	"github.com/helmsman-ml/helmsman/cmd/server/flag"
	"github.com/helmsman-ml/helmsman/pkg/common/config"
	"github.com/helmsman-ml/helmsman/pkg/common/logger"
	"github.com/helmsman-ml/helmsman/pkg/version"
)

var serverConf *config.ServerConfig

func main() {
	if err := Main(os.Args); err != nil {
		fmt.Println(err)
		os.Exit(22)
	}
}

func Main(args []string) error {
	cli.VersionFlag = &cli.BoolFlag{
		Name: "version", Aliases: []string{"V"},
		Usage: "version of Helmsman server",
		Value: false,
	}

	if err := initConfig(); err != nil {
		return err
	}

	compoundFlags := [][]cli.Flag{
		flag.ApiServerFlags(&serverConf.ApiServer),
		flag.StoreFlags(&serverConf.Store),
		flag.LogFlags(&serverConf.Log),
	}

	app := &cli.App{
		Name:                 "Helmsman",
		Usage:                "naming, identity and provenance services for machine learning workflows",
		Version:              version.InfoStr(),
		Copyright:            "Apache License 2.0",
		HideHelpCommand:      true,
		EnableBashCompletion: true,
		Flags:                flag.ExpandFlags(compoundFlags),
		Action:               act,
	}
	return app.Run(args)
}

func act(c *cli.Context) error {
	if err := setup(); err != nil {
		return err
	}
	if serverConf.ApiServer.PrintVersionAndExit {
		fmt.Println(version.InfoStr())
		return nil
	}
	if err := app.NewServer(serverConf).Run(); err != nil {
		log.Errorf("start server failed. error:%s", err.Error())
		return err
	}
	return nil
}

func initConfig() error {
	serverConf = &config.ServerConfig{}
	if err := config.InitConfigFromDefaultYaml(serverConf); err != nil {
		log.Errorf("init server config failed. error:%v", err)
		return err
	}
	config.GlobalServerConfig = serverConf
	return nil
}

func setup() error {
	if err := logger.InitStandardFileLogger(&serverConf.Log); err != nil {
		log.Errorf("init logger failed. error:%v", err)
		return err
	}
	log.Infof("the final server config is: %+v", serverConf)
	return nil
}
