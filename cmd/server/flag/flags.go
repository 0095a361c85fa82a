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

package flag

import (
	"github.com/urfave/cli/v2"

	"github.com/helmsman-ml/helmsman/pkg/common/config"
	"github.com/helmsman-ml/helmsman/pkg/common/logger"
)

func ApiServerFlags(apiConf *config.ApiServerConfig) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "host",
			Value:       apiConf.Host,
			Usage:       "api server host",
			Destination: &apiConf.Host,
		},
		&cli.IntFlag{
			Name:        "port",
			Value:       apiConf.Port,
			Usage:       "api server port",
			Destination: &apiConf.Port,
		},
	}
}

func StoreFlags(storeConf *config.StoreConfig) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store-address",
			Value:       storeConf.Address,
			Usage:       "address of the content store and pipeline engine",
			Destination: &storeConf.Address,
		},
		&cli.StringFlag{
			Name:        "docker-registry",
			Value:       storeConf.DockerRegistry,
			Usage:       "registry built images are pushed to",
			Destination: &storeConf.DockerRegistry,
		},
		&cli.StringFlag{
			Name:        "cloud-provider",
			Value:       storeConf.CloudProvider,
			Usage:       "cloud provider hosting the cluster",
			Destination: &storeConf.CloudProvider,
		},
		&cli.StringFlag{
			Name:        "service-host",
			Value:       storeConf.ServiceHost,
			Usage:       "host endpoints and notebooks are exposed on",
			Destination: &storeConf.ServiceHost,
		},
		&cli.IntFlag{
			Name:        "max-list-workers",
			Value:       storeConf.MaxListWorkers,
			Usage:       "max concurrent workers for listing and downloads",
			Destination: &storeConf.MaxListWorkers,
		},
	}
}

func LogFlags(logConf *logger.LogConfig) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-dir",
			Value:       logConf.Dir,
			Usage:       "directory of log",
			Destination: &logConf.Dir,
		},
		&cli.StringFlag{
			Name:        "log-file-prefix",
			Value:       logConf.FilePrefix,
			Usage:       "prefix of log file",
			Destination: &logConf.FilePrefix,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Value:       logConf.Level,
			Usage:       "log level",
			Destination: &logConf.Level,
		},
		&cli.IntFlag{
			Name:        "log-max-keep-days",
			Value:       logConf.MaxKeepDays,
			Usage:       "log max keep days",
			Destination: &logConf.MaxKeepDays,
		},
		&cli.IntFlag{
			Name:        "log-max-file-num",
			Value:       logConf.MaxFileNum,
			Usage:       "log max file number",
			Destination: &logConf.MaxFileNum,
		},
		&cli.IntFlag{
			Name:        "log-max-file-size-in-mb",
			Value:       logConf.MaxFileSizeInMB,
			Usage:       "log max file size(MB)",
			Destination: &logConf.MaxFileSizeInMB,
		},
		&cli.BoolFlag{
			Name:        "log-is-compress",
			Value:       logConf.IsCompress,
			Usage:       "use log compress",
			Destination: &logConf.IsCompress,
		},
	}
}

func ExpandFlags(compoundFlags [][]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, flag := range compoundFlags {
		flags = append(flags, flag...)
	}
	return flags
}
