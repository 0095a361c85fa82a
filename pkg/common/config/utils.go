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
	"io/ioutil"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

func InitConfigFromYaml(conf interface{}, configPath string) error {
	if configPath == "" {
		log.Infoln("config yaml path not specified. use default config")
		configPath = serverDefaultConfPath
	}
	yamlFile, err := ioutil.ReadFile(configPath)
	if err != nil {
		log.Errorf("read config yaml[%s] failed. err:%v", configPath, err)
		return err
	}
	if err = yaml.Unmarshal(yamlFile, conf); err != nil {
		log.Errorf("unmarshal config yaml[%s] failed. err:%v", configPath, err)
		return err
	}
	return nil
}
