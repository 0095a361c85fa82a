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
	"fmt"
	"sort"
	"time"

	"github.com/helmsman-ml/helmsman/pkg/apiserver/models"
	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
	"github.com/helmsman-ml/helmsman/pkg/store"
)

// ListTrainJobs gathers the submission history of a workspace across its
// train, build and ingestion pipelines. Jobs whose datums were all
// skipped are pipeline bookkeeping, not submissions, and are hidden.
func (s *Service) ListTrainJobs(workspace string) (*models.TrainJobListing, error) {
	training, err := s.listJobs(RepoName(TrainPipelinePrefix, workspace), true)
	if err != nil {
		return nil, err
	}
	building, err := s.listJobs(RepoName(BuildTrainPipelinePrefix, workspace), false)
	if err != nil {
		return nil, err
	}
	ingesting, err := s.listJobs(RepoName(IngestionPipelinePrefix, workspace), false)
	if err != nil {
		return nil, err
	}
	return &models.TrainJobListing{
		Training:  training,
		Building:  building,
		Ingesting: ingesting,
	}, nil
}

func (s *Service) listJobs(pipeline string, training bool) ([]models.SubmissionInfo, error) {
	if _, err := s.checkPipelineExists(pipeline); err != nil {
		return nil, err
	}
	jobs, err := s.Engine.ListJobs(pipeline)
	if err != nil {
		return nil, store.Translate(err)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Started.After(jobs[j].Started) })

	var out []models.SubmissionInfo
	for _, job := range jobs {
		if job.DataTotal > 0 && job.DataSkipped == job.DataTotal {
			continue
		}
		info := models.SubmissionInfo{
			JobID:    job.ID,
			State:    job.State.String(),
			Started:  job.Started.Format(time.RFC3339),
			Duration: jobDuration(&job),
			Progress: fmt.Sprintf("%d/%d", job.DataProcessed, job.DataTotal),
		}
		if training && s.jobIsHyperOpt(job.ID) {
			info.HyperOpt = "hyperopt"
		}
		out = append(out, info)
	}
	return out, nil
}

// jobIsHyperOpt counts non-skipped datums; more than one means the job
// fans a hyperparameter grid out. A listing that races a still-open
// output commit simply reports false rather than failing the whole page.
func (s *Service) jobIsHyperOpt(jobID string) bool {
	datums, err := s.Engine.ListDatums(jobID)
	if err != nil {
		return false
	}
	active := 0
	for _, d := range datums {
		if d.State != store.DatumSkipped {
			active++
		}
	}
	return active > 1
}

func jobDuration(job *store.JobInfo) string {
	if job.Finished.IsZero() {
		return ""
	}
	return job.Finished.Sub(job.Started).Round(time.Second).String()
}

// JobLogs returns a job's log lines, each prefixed with its timestamp. A
// pipeline parked in standby has no workers to read logs from.
func (s *Service) JobLogs(workspace, jobID string) ([]string, error) {
	pipeline := RepoName(TrainPipelinePrefix, workspace)
	info, err := s.checkPipelineExists(pipeline)
	if err != nil {
		return nil, err
	}
	if info.State == store.PipelineStandby {
		return nil, svcerrors.PipelineInStandbyError(pipeline)
	}
	if _, err := s.checkJobExists(pipeline, jobID); err != nil {
		return nil, err
	}
	entries, err := s.Engine.JobLogs(pipeline, jobID)
	if err != nil {
		return nil, store.Translate(err)
	}
	return formatLogs(entries), nil
}

// BuildLogs returns the logs of a workspace's build pipeline.
func (s *Service) BuildLogs(workspace, buildPrefix string) ([]string, error) {
	pipeline := RepoName(buildPrefix, workspace)
	info, err := s.checkPipelineExists(pipeline)
	if err != nil {
		return nil, err
	}
	if info.State == store.PipelineStandby {
		return nil, svcerrors.PipelineInStandbyError(pipeline)
	}
	entries, err := s.Engine.PipelineLogs(pipeline)
	if err != nil {
		return nil, store.Translate(err)
	}
	return formatLogs(entries), nil
}

func formatLogs(entries []store.LogEntry) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("[%s] %s", e.Time.Format(time.RFC3339), e.Message))
	}
	return lines
}

// KillJob stops a running training job. Finished jobs stay untouched so
// their lineage remains resolvable.
func (s *Service) KillJob(workspace, jobID string) error {
	pipeline := RepoName(TrainPipelinePrefix, workspace)
	job, err := s.checkJobExists(pipeline, jobID)
	if err != nil {
		return err
	}
	if job.State != store.JobRunning && job.State != store.JobStarting {
		return svcerrors.JobNotRunningError(jobID)
	}
	if err := s.Engine.DeleteJob(jobID); err != nil {
		return store.Translate(err)
	}
	return nil
}
