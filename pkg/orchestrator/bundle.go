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
	"path"
	"sort"
	"strings"

	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
	"github.com/helmsman-ml/helmsman/pkg/common/hash"
	"github.com/helmsman-ml/helmsman/pkg/common/logger"
	"github.com/helmsman-ml/helmsman/pkg/store"
)

// pipelineArgsFile carries the submission's resource requests alongside
// its code so a build stays reproducible from the bundle alone.
const pipelineArgsFile = "pipeline_args.json"

// Bundle is one uploaded directory tree. Its identity hash is derived
// from the concatenated content of all files in path order, so two
// uploads of the same tree land on the same store directory.
type Bundle struct {
	Name  string
	Files []store.File
}

// Digest computes the bundle's short content hash.
func (b *Bundle) Digest() string {
	sorted := make([]store.File, len(b.Files))
	copy(sorted, b.Files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var raw []byte
	for _, f := range sorted {
		raw = append(raw, f.Path...)
		raw = append(raw, f.Data...)
	}
	return hash.Digest(raw)
}

// Dir is the bundle's on-store directory, "/<name>:<hash>".
func (b *Bundle) Dir() string {
	return "/" + hash.BundleName(b.Name, b.Digest())
}

// BundleExists reports whether a bundle directory is already committed:
// a listing with at least one non-empty file means an identical submission
// landed before. Dedup is path keyed, so a different identity hash is a
// new submission even for identical content.
func (s *Service) BundleExists(repo, dir string) (bool, error) {
	infos, err := s.Store.ListFiles(repo, "master", dir, false)
	if err != nil {
		terr := store.Translate(err)
		if svcerrors.IsCode(terr, svcerrors.StoreUnreachable) || svcerrors.IsCode(terr, svcerrors.UnfinishedCommit) {
			return false, terr
		}
		// A missing path or commit is simply "not there yet".
		return false, nil
	}
	for _, info := range infos {
		if info.SizeBytes > 0 {
			return true, nil
		}
	}
	return false, nil
}

// submitBundle commits a bundle under its identity directory unless an
// identical submission already exists. Either way the directory and glob
// the bundle occupies are returned.
func (s *Service) submitBundle(repo string, b *Bundle, meta ResourceMeta) (dir string, duplicate bool, err error) {
	dir = b.Dir()
	log := logger.LoggerForWorkspace(meta.Workspace)

	duplicate, err = s.BundleExists(repo, dir)
	if err != nil {
		return "", false, err
	}
	if duplicate {
		log.Infof("bundle %s already present in %s, skipping commit", dir, repo)
		return dir, true, nil
	}

	files := make([]store.File, 0, len(b.Files))
	for _, f := range b.Files {
		files = append(files, store.File{Path: path.Join(dir, f.Path), Data: f.Data})
	}
	meta.Path = dir
	if _, err := s.Store.PutFiles(repo, "master", files, buildResourceMeta(meta)); err != nil {
		return "", false, store.Translate(err)
	}
	log.Infof("committed bundle %s to %s", dir, repo)
	return dir, false, nil
}

// SubmitTrainingCode commits a source bundle, records its resource
// requests next to the code, points the build pipeline at the new
// directory and narrows the train pipeline to the image that build will
// produce.
func (s *Service) SubmitTrainingCode(workspace, user string, b *Bundle, res *store.ResourceSpec, parallelism *int) (string, error) {
	withArgs := &Bundle{Name: b.Name, Files: b.Files}
	if res != nil {
		args, err := json.Marshal(res)
		if err == nil {
			withArgs.Files = append(withArgs.Files, store.File{Path: pipelineArgsFile, Data: args})
		}
	}

	repo := RepoName(TrainSourceRepoPrefix, workspace)
	dir, _, err := s.submitBundle(repo, withArgs, ResourceMeta{User: user, Workspace: workspace})
	if err != nil {
		return "", err
	}

	if err := s.UpdateBuildPipeline(workspace, BuildTrainPipelinePrefix, dir+"/*"); err != nil {
		return "", err
	}

	imageGlob := dir
	image := s.imageRef(RepoName(TrainImageRepoPrefix, workspace), b.Name, bundleHash(dir))
	upd := &TrainUpdate{Image: &image, ImageGlob: &imageGlob, Resources: res, Parallelism: parallelism}
	if err := s.UpdateTrainPipeline(workspace, upd); err != nil {
		return "", err
	}
	return dir, nil
}

// SubmitTrainingData commits a data manifest, points the ingestion
// pipeline at it and narrows the train pipeline's data glob to the
// directory ingestion will materialize under the same name.
func (s *Service) SubmitTrainingData(workspace, user string, b *Bundle) (string, error) {
	repo := RepoName(ManifestRepoPrefix, workspace)
	dir, _, err := s.submitBundle(repo, b, ResourceMeta{User: user, Workspace: workspace})
	if err != nil {
		return "", err
	}

	if err := s.UpdateIngestionPipeline(workspace, dir+"/*"); err != nil {
		return "", err
	}

	dataGlob := dir
	if err := s.UpdateTrainPipeline(workspace, &TrainUpdate{DataGlob: &dataGlob}); err != nil {
		return "", err
	}
	return dir, nil
}

// SubmitHyperGrid expands a hyperparameter grid, commits one file per
// combination and points the train pipeline's hyper glob at the result.
// The empty grid commits the fixed sentinel file instead of a hash-keyed
// directory.
func (s *Service) SubmitHyperGrid(workspace, user string, grid map[string][]string) (string, error) {
	repo := RepoName(HyperRepoPrefix, workspace)

	// dupPath is what the dedup probe lists: the grid's hash directory,
	// or the sentinel file itself. Probing the sentinel's parent would
	// match any earlier grid directory in the repo.
	var files []store.File
	var glob, dupPath string
	if len(grid) == 0 {
		files = []store.File{{Path: "/" + EmptyHyperFile, Data: []byte("{}")}}
		glob = "/" + EmptyHyperFile
		dupPath = glob
	} else {
		raw, err := json.Marshal(canonicalGrid(grid))
		if err != nil {
			return "", svcerrors.InvalidBundleError(err.Error())
		}
		dir := "/" + hash.Digest(raw)
		files = HyperFiles(dir, grid)
		glob = dir + "/*"
		dupPath = dir
	}

	duplicate, err := s.BundleExists(repo, dupPath)
	if err != nil {
		return "", err
	}
	if !duplicate {
		meta := ResourceMeta{User: user, Workspace: workspace, Path: dupPath}
		if _, err := s.Store.PutFiles(repo, "master", files, buildResourceMeta(meta)); err != nil {
			return "", store.Translate(err)
		}
	}

	if err := s.UpdateTrainPipeline(workspace, &TrainUpdate{HyperGlob: &glob}); err != nil {
		return "", err
	}
	return glob, nil
}

// canonicalGrid sorts values so the grid hash is independent of the order
// candidates were supplied in.
func canonicalGrid(grid map[string][]string) map[string][]string {
	out := make(map[string][]string, len(grid))
	for k, v := range grid {
		sorted := make([]string, len(v))
		copy(sorted, v)
		sort.Strings(sorted)
		out[k] = sorted
	}
	return out
}

// bundleHash extracts the trailing hash segment of a bundle directory.
func bundleHash(dir string) string {
	base := path.Base(dir)
	if i := strings.LastIndex(base, ":"); i >= 0 {
		return base[i+1:]
	}
	return base
}

// imageRef builds the registry reference of a built image: the build
// pipeline tags images with the source bundle's identity hash.
func (s *Service) imageRef(repo, name, digest string) string {
	registry := EmptyRegistryName
	if s.Config != nil && s.Config.DockerRegistry != "" {
		registry = s.Config.DockerRegistry
	}
	return registry + "/" + repo + "-" + name + ":" + digest
}
