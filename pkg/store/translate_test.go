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

package store

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
)

func TestTranslate(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "unfinished commit",
			err:      fmt.Errorf("rpc error: output commit abc123 not finished"),
			wantCode: svcerrors.UnfinishedCommit,
		},
		{
			name:     "commit not found",
			err:      fmt.Errorf("commit def456 not found in repo model-ws1"),
			wantCode: svcerrors.CommitNotFound,
		},
		{
			name:     "connection failure",
			err:      fmt.Errorf("failed to pick subchannel"),
			wantCode: svcerrors.StoreUnreachable,
		},
		{
			name:     "unrecognized",
			err:      fmt.Errorf("something exploded"),
			wantCode: svcerrors.UpstreamFault,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Translate(tc.err)
			assert.Equal(t, tc.wantCode, svcerrors.CodeOf(got))
		})
	}
}

func TestTranslateNil(t *testing.T) {
	assert.NoError(t, Translate(nil))
}

func TestTranslatePassesThroughServiceErrors(t *testing.T) {
	err := svcerrors.PipelineNotFoundError("train-ws1")
	assert.Equal(t, err, Translate(err))
}

func TestForEachPath(t *testing.T) {
	paths := make([]string, 100)
	for i := range paths {
		paths[i] = fmt.Sprintf("/p/%d", i)
	}
	var count int64
	err := ForEachPath(paths, 20, func(path string) error {
		atomic.AddInt64(&count, 1)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(100), count)
}

func TestForEachPathFirstError(t *testing.T) {
	boom := fmt.Errorf("boom")
	err := ForEachPath([]string{"/a", "/b", "/c"}, 2, func(path string) error {
		if path == "/b" {
			return boom
		}
		return nil
	})
	assert.Equal(t, boom, err)
}
