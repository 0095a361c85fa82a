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
	"reflect"

	"github.com/jinzhu/copier"

	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
	"github.com/helmsman-ml/helmsman/pkg/common/logger"
	"github.com/helmsman-ml/helmsman/pkg/store"
)

// reconcileAttempts bounds the synchronous retry around a train pipeline
// update. The content store may not reflect a just-created branch to an
// immediate read, so the whole read-merge-update cycle runs twice; the
// second pass is a no-op whenever the first one stuck.
const reconcileAttempts = 2

// TrainUpdate is a partial update to a workspace's train pipeline. Nil
// fields keep their current value.
type TrainUpdate struct {
	Image       *string
	ImageGlob   *string
	DataGlob    *string
	HyperGlob   *string
	Parallelism *int
	Resources   *store.ResourceSpec
}

// repeatedCall invokes fn a fixed number of times regardless of outcome
// and reports the last result. Callers rely on fn being idempotent once
// its effect has been applied.
func repeatedCall(times int, fn func() error) error {
	var err error
	for i := 0; i < times; i++ {
		err = fn()
	}
	return err
}

// DefineTrainPipeline moves a workspace's train pipeline from Absent to
// Present with every input at its sentinel. The pipeline schedules nothing
// until submissions replace the sentinels.
func (s *Service) DefineTrainPipeline(workspace string) error {
	def := newTrainDefinition(workspace)
	if err := s.Engine.CreatePipeline(trainSpec(def)); err != nil {
		return store.Translate(err)
	}
	return nil
}

// UpdateTrainPipeline merges a partial update into the running train
// definition and pushes the result to the engine. A merge that changes
// nothing issues no engine update at all, so resubmitting an
// already-applied configuration never retriggers execution.
func (s *Service) UpdateTrainPipeline(workspace string, upd *TrainUpdate) error {
	log := logger.LoggerForWorkspace(workspace)
	return repeatedCall(reconcileAttempts, func() error {
		cur, version, err := s.InspectTrainPipeline(workspace)
		if err != nil {
			return err
		}

		merged := &TrainDefinition{}
		if err := copier.Copy(merged, cur); err != nil {
			return svcerrors.UpstreamFaultError(err)
		}
		applyTrainUpdate(merged, upd)
		merged.OutputBranch = BuildOutputBranch(merged.ImageGlob, merged.DataGlob, merged.HyperGlob)

		if reflect.DeepEqual(merged, cur) {
			log.Debugf("train pipeline already up to date, branch %s", cur.OutputBranch)
			return nil
		}

		if merged.OutputBranch != NullBranch {
			modelRepo := RepoName(ModelRepoPrefix, workspace)
			if err := s.Store.CreateBranch(modelRepo, merged.OutputBranch); err != nil {
				return store.Translate(err)
			}
		}

		log.Infof("updating train pipeline, branch %s -> %s", cur.OutputBranch, merged.OutputBranch)
		if err := s.Engine.UpdatePipeline(trainSpec(merged), version, false); err != nil {
			return store.Translate(err)
		}
		return nil
	})
}

func applyTrainUpdate(def *TrainDefinition, upd *TrainUpdate) {
	if upd.Image != nil {
		def.Image = *upd.Image
	}
	if upd.ImageGlob != nil {
		def.ImageGlob = *upd.ImageGlob
	}
	if upd.DataGlob != nil {
		def.DataGlob = *upd.DataGlob
	}
	if upd.HyperGlob != nil {
		def.HyperGlob = *upd.HyperGlob
	}
	if upd.Parallelism != nil {
		def.Parallelism = *upd.Parallelism
	}
	if upd.Resources != nil {
		def.Resources = *upd.Resources
	}
}
