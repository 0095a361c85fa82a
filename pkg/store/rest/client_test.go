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

package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
	"github.com/helmsman-ml/helmsman/pkg/store"
)

func newServerClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(strings.TrimPrefix(srv.URL, "http://"))
}

func TestPutFilesRoundTrip(t *testing.T) {
	var gotURI string
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.Path
		var body struct {
			Files       []store.File
			Description string
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Files, 1)
		assert.Equal(t, "meta", body.Description)
		json.NewEncoder(w).Encode(map[string]string{"CommitID": "c42"})
	})

	commit, err := client.PutFiles("train-source-iris", "master",
		[]store.File{{Path: "/a/train.py", Data: []byte("x")}}, "meta")
	require.NoError(t, err)
	assert.Equal(t, "c42", commit)
	assert.Equal(t, "/v1/repos/train-source-iris/branches/master/files", gotURI)
}

func TestListFilesSendsGlobAndRecursive(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/abc/*", r.URL.Query().Get("path"))
		assert.Equal(t, "true", r.URL.Query().Get("recursive"))
		json.NewEncoder(w).Encode([]store.FileInfo{{SizeBytes: 3}})
	})

	infos, err := client.ListFiles("hyper-iris", "master", "/abc/*", true)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, int64(3), infos[0].SizeBytes)
}

func TestErrorBodySurvivesTranslation(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"message": "commit deadbeef not found in repo train-iris",
		})
	})

	_, err := client.InspectCommit("train-iris", "deadbeef")
	require.Error(t, err)
	translated := store.Translate(err)
	assert.True(t, svcerrors.IsCode(translated, svcerrors.CommitNotFound))
}

func TestUpdatePipelineCarriesVersionToken(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "7", r.URL.Query().Get("version"))
		assert.Equal(t, "false", r.URL.Query().Get("reprocess"))
	})

	err := client.UpdatePipeline(&store.PipelineSpec{Name: "train-iris"}, 7, false)
	assert.NoError(t, err)
}

func TestConnectionRefusedBecomesStoreUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	client := NewClient(addr)
	_, err := client.ListRepos()
	require.Error(t, err)
	translated := store.Translate(err)
	if !svcerrors.IsCode(translated, svcerrors.StoreUnreachable) {
		// Some platforms phrase the dial failure differently; it must at
		// least classify as an upstream fault.
		assert.True(t, svcerrors.IsCode(translated, svcerrors.UpstreamFault),
			fmt.Sprintf("unexpected classification for %v", translated))
	}
}
