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
	"sync"

	"github.com/helmsman-ml/helmsman/pkg/store"
)

// DownloadDir fetches every file under a committed directory, fanning the
// reads out over the store worker pool. Results arrive in no particular
// order and keep their full committed paths.
func (s *Service) DownloadDir(repo, commit, dir string) ([]store.File, error) {
	infos, err := s.Store.ListFiles(repo, commit, dir, true)
	if err != nil {
		return nil, store.Translate(err)
	}
	paths := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.Type == store.FileTypeDir {
			continue
		}
		paths = append(paths, info.File.Path)
	}

	workers := store.DefaultMaxWorkers
	if s.Config != nil && s.Config.MaxListWorkers > 0 {
		workers = s.Config.MaxListWorkers
	}

	var mu sync.Mutex
	files := make([]store.File, 0, len(paths))
	err = store.ForEachPath(paths, workers, func(p string) error {
		data, err := s.Store.GetFile(repo, commit, p)
		if err != nil {
			return store.Translate(err)
		}
		mu.Lock()
		files = append(files, store.File{Path: p, Data: data})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// DownloadModel fetches a trained model's artifact directory.
func (s *Service) DownloadModel(workspace, modelID string) ([]store.File, error) {
	info, err := s.ResolveModelInfo(workspace, modelID)
	if err != nil {
		return nil, err
	}
	repo := RepoName(ModelRepoPrefix, workspace)
	return s.DownloadDir(repo, info.CommitID, info.BasePath)
}
