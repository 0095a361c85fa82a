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

package config

import (
	"github.com/helmsman-ml/helmsman/pkg/common/logger"
)

var serverDefaultConfPath = "./config/server/default/helmsman.yaml"

type ServerConfig struct {
	Log       logger.LogConfig `yaml:"log"`
	ApiServer ApiServerConfig  `yaml:"apiServer"`
	Store     StoreConfig      `yaml:"store"`
}

type ApiServerConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	PrintVersionAndExit bool   `yaml:"printVersionAndExit"`
}

// StoreConfig locates the external versioned content store / pipeline
// engine and the registry that built images are pushed to.
type StoreConfig struct {
	Address        string `yaml:"address"`
	DockerRegistry string `yaml:"dockerRegistry"`
	CloudProvider  string `yaml:"cloudProvider"`
	ServiceHost    string `yaml:"serviceHost"`
	// MaxListWorkers bounds fan-out when listing or downloading many
	// independent paths.
	MaxListWorkers int `yaml:"maxListWorkers"`
}

var GlobalServerConfig *ServerConfig

func InitConfigFromDefaultYaml(conf interface{}) error {
	return InitConfigFromYaml(conf, serverDefaultConfPath)
}
