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

package orchestrator

import (
	"encoding/json"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/helmsman-ml/helmsman/pkg/common/config"
	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
	"github.com/helmsman-ml/helmsman/pkg/store"
)

// Service ties the content store and pipeline engine together and owns
// the naming, identity and provenance rules layered on top of them.
type Service struct {
	Store  store.ContentStore
	Engine store.PipelineEngine
	Config *config.StoreConfig
}

func NewService(cs store.ContentStore, pe store.PipelineEngine, conf *config.StoreConfig) *Service {
	return &Service{Store: cs, Engine: pe, Config: conf}
}

// ResourceMeta is serialized as JSON into commit descriptions so every
// submission stays attributable to its author without a separate database.
type ResourceMeta struct {
	User      string `json:"user" mapstructure:"user"`
	Workspace string `json:"workspace" mapstructure:"workspace"`
	CommitID  string `json:"commit_id,omitempty" mapstructure:"commit_id"`
	Path      string `json:"path,omitempty" mapstructure:"path"`
	// ModelID links a serving bundle back to the trained model it wraps;
	// endpoint lineage resolution walks through it.
	ModelID string `json:"model_id,omitempty" mapstructure:"model_id"`
}

func buildResourceMeta(meta ResourceMeta) string {
	raw, err := json.Marshal(meta)
	if err != nil {
		return ""
	}
	return string(raw)
}

// parseResourceMeta decodes a commit description back into a ResourceMeta.
// Descriptions written by other tooling come back zero-valued, not as an
// error, so provenance walks can keep going past foreign commits.
func parseResourceMeta(description string) ResourceMeta {
	var meta ResourceMeta
	raw := map[string]interface{}{}
	if err := json.Unmarshal([]byte(description), &raw); err != nil {
		return meta
	}
	_ = mapstructure.Decode(raw, &meta)
	return meta
}

// checkPipelineExists maps an engine lookup failure onto the closed error
// taxonomy: connectivity faults and typed transient errors propagate,
// anything else means the pipeline is absent.
func (s *Service) checkPipelineExists(name string) (*store.PipelineInfo, error) {
	info, err := s.Engine.InspectPipeline(name)
	if err != nil {
		terr := store.Translate(err)
		if !svcerrors.IsCode(terr, svcerrors.UpstreamFault) {
			return nil, terr
		}
		return nil, svcerrors.PipelineNotFoundError(name)
	}
	return info, nil
}

func (s *Service) checkJobExists(pipeline, jobID string) (*store.JobInfo, error) {
	jobs, err := s.Engine.ListJobs(pipeline)
	if err != nil {
		return nil, store.Translate(err)
	}
	for i := range jobs {
		if jobs[i].ID == jobID {
			return &jobs[i], nil
		}
	}
	return nil, svcerrors.JobNotFoundError(jobID)
}

// splitModelID splits the composite "<branch>:<dir>" model identifier.
func splitModelID(modelID string) (branch, dir string, err error) {
	idx := strings.LastIndex(modelID, ":")
	if idx <= 0 || idx == len(modelID)-1 {
		return "", "", svcerrors.ModelNotFoundError(modelID)
	}
	return modelID[:idx], modelID[idx+1:], nil
}
