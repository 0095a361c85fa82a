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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
	"github.com/helmsman-ml/helmsman/pkg/store"
)

func TestListTrainJobsHidesSkipped(t *testing.T) {
	svc, _, fe := newTestService()
	require.NoError(t, svc.CreateWorkspace("ws1"))

	now := time.Now()
	fe.jobs["train-ws1"] = []store.JobInfo{
		{ID: "j1", State: store.JobSuccess, DataTotal: 2, DataProcessed: 2, Started: now.Add(-time.Hour), Finished: now},
		{ID: "j2", State: store.JobSuccess, DataTotal: 3, DataSkipped: 3, Started: now},
	}

	listing, err := svc.ListTrainJobs("ws1")
	require.NoError(t, err)
	require.Len(t, listing.Training, 1)
	assert.Equal(t, "j1", listing.Training[0].JobID)
	assert.Equal(t, "2/2", listing.Training[0].Progress)
	assert.Empty(t, listing.Building)
	assert.Empty(t, listing.Ingesting)
}

func TestListTrainJobsFlagsHyperOpt(t *testing.T) {
	svc, _, fe := newTestService()
	require.NoError(t, svc.CreateWorkspace("ws1"))

	fe.jobs["train-ws1"] = []store.JobInfo{
		{ID: "j1", State: store.JobRunning, DataTotal: 4, DataProcessed: 1},
	}
	fe.datums["j1"] = []store.DatumInfo{
		{ID: "d1", State: store.DatumProcessed},
		{ID: "d2", State: store.DatumStarting},
		{ID: "d3", State: store.DatumSkipped},
	}

	listing, err := svc.ListTrainJobs("ws1")
	require.NoError(t, err)
	require.Len(t, listing.Training, 1)
	assert.Equal(t, "hyperopt", listing.Training[0].HyperOpt)
}

func TestJobLogs(t *testing.T) {
	svc, _, fe := newTestService()
	require.NoError(t, svc.CreateWorkspace("ws1"))

	ts := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	fe.jobs["train-ws1"] = []store.JobInfo{{ID: "j1", State: store.JobRunning}}
	fe.logs["j1"] = []store.LogEntry{{Time: ts, Message: "epoch 1 done"}}

	lines, err := svc.JobLogs("ws1", "j1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "[2023-04-01T12:00:00Z] epoch 1 done", lines[0])
}

func TestJobLogsStandby(t *testing.T) {
	svc, _, fe := newTestService()
	require.NoError(t, svc.CreateWorkspace("ws1"))
	fe.pipelines["train-ws1"].State = store.PipelineStandby

	_, err := svc.JobLogs("ws1", "j1")
	require.Error(t, err)
	assert.Equal(t, svcerrors.PipelineInStandby, svcerrors.CodeOf(err))
}

func TestKillJob(t *testing.T) {
	svc, _, fe := newTestService()
	require.NoError(t, svc.CreateWorkspace("ws1"))
	fe.jobs["train-ws1"] = []store.JobInfo{
		{ID: "j1", State: store.JobRunning},
		{ID: "j2", State: store.JobSuccess},
	}

	require.NoError(t, svc.KillJob("ws1", "j1"))
	jobs, err := fe.ListJobs("train-ws1")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "j2", jobs[0].ID)

	err = svc.KillJob("ws1", "j2")
	require.Error(t, err)
	assert.Equal(t, svcerrors.JobNotRunning, svcerrors.CodeOf(err))
}
