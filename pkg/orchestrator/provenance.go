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
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/helmsman-ml/helmsman/pkg/apiserver/models"
	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
	"github.com/helmsman-ml/helmsman/pkg/store"
)

// statsBranch holds per-datum output snapshots when many hyperparameter
// combinations share one output commit.
const statsBranch = "stats"

// metricFilePattern matches the metrics file a training run may emit next
// to its model.
const metricFilePattern = "metrics*.json"

// ResolveJobInfo reconstructs the full lineage of a training job: one
// partition per (processed datum, model id), each carrying descriptors for
// the code, data, image and optional hyperparameters that produced it.
// metric, when non-empty, selects the score to extract; a partition whose
// metrics file lacks that metric is an error, a partition without any
// metrics file is not.
func (s *Service) ResolveJobInfo(workspace, jobID, metric string) (*models.JobInfo, error) {
	pipeline := RepoName(TrainPipelinePrefix, workspace)
	info, err := s.checkPipelineExists(pipeline)
	if err != nil {
		return nil, err
	}
	job, err := s.checkJobExists(pipeline, jobID)
	if err != nil {
		return nil, err
	}

	datums, err := s.Engine.ListDatums(jobID)
	if err != nil {
		return nil, store.Translate(err)
	}
	// Many combinations of one grid run as separate datums but share the
	// job's single output commit; per-datum results then live under the
	// stats branch instead of the commit's top-level directories. The
	// mode is fixed by the fan-out, so failed datums still count.
	hyperOpt := len(datums) > 1
	processed := datums[:0]
	for _, d := range datums {
		if d.State == store.DatumProcessed {
			processed = append(processed, d)
		}
	}

	roles := inputRoles(&info.Spec)
	metricsSeen := map[string]bool{}
	var partitions []models.PartitionInfo

	for _, datum := range processed {
		imageFile := datumFile(datum, roles, store.RoleImage)
		dataFile := datumFile(datum, roles, store.RoleData)
		hyperFile := datumFile(datum, roles, store.RoleHyper)
		if imageFile == nil || dataFile == nil {
			return nil, svcerrors.IncompleteDatumError(jobID)
		}

		outputBranch := BuildOutputBranch(imageFile.File.Path, dataFile.File.Path, hyperPath(hyperFile))

		code, err := s.resolveCode(workspace, outputBranch)
		if err != nil {
			return nil, err
		}
		data, err := s.resolveData(workspace, dataFile)
		if err != nil {
			return nil, err
		}
		image := &models.DataDescriptor{
			Repo:   imageFile.File.Repo,
			Commit: imageFile.File.CommitID,
			Path:   imageFile.File.Path,
		}
		var hyper *models.DataDescriptor
		if hyperFile != nil && IsHyperGrid(hyperFile.File.Path) {
			hyper = &models.DataDescriptor{
				Repo:   hyperFile.File.Repo,
				Commit: hyperFile.File.CommitID,
				Path:   hyperFile.File.Path,
			}
		}

		modelIDs, modelCommit, err := s.datumModelIDs(job, datum.ID, hyperOpt)
		if err != nil {
			return nil, err
		}

		for _, modelID := range modelIDs {
			score, keys, err := s.extractScore(job.OutputCommit.Repo, modelCommit, datum.ID, modelID, hyperOpt, metric)
			if err != nil {
				return nil, err
			}
			for _, k := range keys {
				metricsSeen[k] = true
			}
			partitions = append(partitions, models.PartitionInfo{
				DatumID:     datum.ID,
				Code:        code,
				Data:        data,
				Image:       image,
				Hyperparams: hyper,
				Score:       score,
				Output: &models.DataDescriptor{
					Repo:   job.OutputCommit.Repo,
					Commit: job.OutputCommit.ID,
					Branch: outputBranch,
					Path:   fmt.Sprintf("%s:%s", outputBranch, modelID),
				},
			})
		}
	}

	available := make([]string, 0, len(metricsSeen))
	for k := range metricsSeen {
		available = append(available, k)
	}
	sort.Strings(available)

	return &models.JobInfo{
		JobID:            job.ID,
		State:            job.State.String(),
		AvailableMetrics: available,
		ProcessTime:      int64(job.ProcessTime / time.Second),
		Partitions:       partitions,
	}, nil
}

// inputRoles indexes a pipeline's declared inputs by name.
func inputRoles(spec *store.PipelineSpec) map[string]store.InputRole {
	roles := make(map[string]store.InputRole, len(spec.Inputs))
	for _, in := range spec.Inputs {
		roles[in.Name] = in.Role
	}
	return roles
}

// datumFile finds the datum file matched by the input declared with the
// given role, or nil.
func datumFile(datum store.DatumInfo, roles map[string]store.InputRole, role store.InputRole) *store.DatumFile {
	for i := range datum.Files {
		if r, ok := roles[datum.Files[i].InputName]; ok && r == role {
			return &datum.Files[i]
		}
	}
	return nil
}

// hyperPath normalizes a possibly-absent hyper input to the empty-grid
// sentinel so branch derivation stays uniform.
func hyperPath(f *store.DatumFile) string {
	if f == nil {
		return "/" + EmptyHyperFile
	}
	return f.File.Path
}

// resolveCode locates the source bundle behind an output branch: the
// branch's leading segment is the image hash, and the bundle directory
// carrying that hash in the source repository is the code that built it.
func (s *Service) resolveCode(workspace, outputBranch string) (*models.DataDescriptor, error) {
	imageHash := strings.SplitN(outputBranch, "_", 2)[0]
	repo := RepoName(TrainSourceRepoPrefix, workspace)
	infos, err := s.Store.ListFiles(repo, "master", "/*"+imageHash, false)
	if err != nil {
		return nil, store.Translate(err)
	}
	if len(infos) == 0 {
		return nil, svcerrors.CommitNotFoundError("/*" + imageHash)
	}
	first := infos[0]
	author := ""
	if ci, err := s.Store.InspectCommit(repo, first.File.CommitID); err == nil {
		author = parseResourceMeta(ci.Description).User
	}
	dir := first.File.Path
	if first.Type == store.FileTypeFile {
		dir = path.Dir(dir)
	}
	return &models.DataDescriptor{
		Repo:   repo,
		Commit: first.File.CommitID,
		Path:   dir,
		Author: author,
	}, nil
}

// resolveData follows a data commit's provenance links back to the
// manifest repository to recover who submitted it. Data injected without
// a manifest keeps an empty author instead of failing the walk.
func (s *Service) resolveData(workspace string, dataFile *store.DatumFile) (*models.DataDescriptor, error) {
	ci, err := s.Store.InspectCommit(dataFile.File.Repo, dataFile.File.CommitID)
	if err != nil {
		return nil, store.Translate(err)
	}
	author := ""
	manifestRepo := RepoName(ManifestRepoPrefix, workspace)
	for _, prov := range ci.Provenance {
		if prov.Repo != manifestRepo {
			continue
		}
		mci, err := s.Store.InspectCommit(manifestRepo, prov.ID)
		if err != nil {
			return nil, store.Translate(err)
		}
		author = parseResourceMeta(mci.Description).User
		break
	}
	return &models.DataDescriptor{
		Repo:   dataFile.File.Repo,
		Commit: dataFile.File.CommitID,
		Path:   dataFile.File.Path,
		Author: author,
	}, nil
}

// datumModelIDs enumerates the model directories a datum produced and the
// commit they must be read from.
func (s *Service) datumModelIDs(job *store.JobInfo, datumID string, hyperOpt bool) ([]string, string, error) {
	repo := job.OutputCommit.Repo
	commit := job.OutputCommit.ID
	prefix := "/"
	if hyperOpt {
		commit = statsBranch
		prefix = fmt.Sprintf("/%s/pfs/out/", datumID)
	}
	infos, err := s.Store.ListFiles(repo, commit, prefix, false)
	if err != nil {
		return nil, "", store.Translate(err)
	}
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, path.Base(info.File.Path))
	}
	sort.Strings(ids)
	return ids, commit, nil
}

// extractScore reads a model's metrics file if one exists. It returns the
// requested metric's value and every metric key present.
func (s *Service) extractScore(repo, commit, datumID, modelID string, hyperOpt bool, metric string) (*float64, []string, error) {
	dir := "/" + modelID
	if hyperOpt {
		dir = fmt.Sprintf("/%s/pfs/out/%s", datumID, modelID)
	}
	infos, err := s.Store.ListFiles(repo, commit, path.Join(dir, metricFilePattern), false)
	if err != nil {
		terr := store.Translate(err)
		if svcerrors.IsCode(terr, svcerrors.StoreUnreachable) || svcerrors.IsCode(terr, svcerrors.UnfinishedCommit) {
			return nil, nil, terr
		}
		// A missing path or commit means the run emitted no metrics.
		return nil, nil, nil
	}
	if len(infos) == 0 {
		return nil, nil, nil
	}

	raw, err := s.Store.GetFile(repo, commit, infos[0].File.Path)
	if err != nil {
		return nil, nil, store.Translate(err)
	}
	var metrics map[string]float64
	if err := json.Unmarshal(raw, &metrics); err != nil {
		return nil, nil, errors.Wrapf(err, "metrics file %s", infos[0].File.Path)
	}
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	if metric == "" {
		return nil, keys, nil
	}
	v, ok := metrics[metric]
	if !ok {
		return nil, nil, svcerrors.MetricNotFoundError(metric)
	}
	return &v, keys, nil
}

// ResolveModelInfo walks forward from a "<branch>:<dir>" composite model
// id: the branch's first non-empty commit is the model's home, and the
// files under the dir prefix are the model artifact.
func (s *Service) ResolveModelInfo(workspace, modelID string) (*models.ModelInfo, error) {
	branch, dir, err := splitModelID(modelID)
	if err != nil {
		return nil, err
	}
	repo := RepoName(ModelRepoPrefix, workspace)

	branches, err := s.Store.ListBranches(repo)
	if err != nil {
		return nil, store.Translate(err)
	}
	found := false
	for _, b := range branches {
		if b == branch {
			found = true
			break
		}
	}
	if !found {
		return nil, svcerrors.ModelNotFoundError(modelID)
	}

	commits, err := s.Store.ListCommits(repo, branch)
	if err != nil {
		return nil, store.Translate(err)
	}
	var head *store.CommitInfo
	for i := range commits {
		if commits[i].SizeBytes > 0 {
			head = &commits[i]
			break
		}
	}
	if head == nil {
		return nil, svcerrors.ModelNotFoundError(modelID)
	}

	infos, err := s.Store.ListFiles(repo, head.Commit.ID, "/"+dir+"/", true)
	if err != nil {
		return nil, store.Translate(err)
	}
	if len(infos) == 0 {
		return nil, svcerrors.ModelNotFoundError(modelID)
	}
	var size int64
	for _, info := range infos {
		size += info.SizeBytes
	}

	user := ""
	srcRepo := RepoName(TrainSourceRepoPrefix, workspace)
	for _, prov := range head.Provenance {
		if prov.Repo != srcRepo {
			continue
		}
		if ci, err := s.Store.InspectCommit(srcRepo, prov.ID); err == nil {
			user = parseResourceMeta(ci.Description).User
		}
		break
	}

	return &models.ModelInfo{
		User:      user,
		CommitID:  head.Commit.ID,
		Size:      fmt.Sprintf("%.2f MiB", float64(size)/(1<<20)),
		Path:      "/" + dir + "/model",
		BasePath:  "/" + dir,
		ModelID:   modelID,
		CreatedAt: head.Finished.Format(time.RFC3339),
	}, nil
}

// ResolveModelProvenance finds the training partition that produced a
// model, given the output commit it was read from.
func (s *Service) ResolveModelProvenance(workspace, commitID, modelID string) (*models.PartitionInfo, error) {
	pipeline := RepoName(TrainPipelinePrefix, workspace)
	jobs, err := s.Engine.ListJobs(pipeline)
	if err != nil {
		return nil, store.Translate(err)
	}
	for _, job := range jobs {
		if job.OutputCommit.ID != commitID {
			continue
		}
		info, err := s.ResolveJobInfo(workspace, job.ID, "")
		if err != nil {
			return nil, err
		}
		for i := range info.Partitions {
			if info.Partitions[i].Output != nil && info.Partitions[i].Output.Path == modelID {
				return &info.Partitions[i], nil
			}
		}
	}
	return nil, svcerrors.ModelNotFoundError(modelID)
}

// ResolveEndpointInfo describes a deployed endpoint and, when requested,
// walks its lineage back through the serving image to the trained model.
// An endpoint whose serving bundle carries no model link is alien: it was
// injected from outside and its training lineage cannot be resolved.
func (s *Service) ResolveEndpointInfo(workspace, endpoint string, withLineage bool) (*models.ServeInfo, error) {
	info, err := s.checkPipelineExists(endpoint)
	if err != nil {
		return nil, err
	}
	meta := parseResourceMeta(info.Spec.Description)
	serve := &models.ServeInfo{
		Name:      endpoint,
		URL:       s.EndpointURL(endpoint),
		User:      meta.User,
		State:     info.State.String(),
		CreatedAt: info.CreatedAt.Format(time.RFC3339),
	}
	if !withLineage {
		return serve, nil
	}

	jobs, err := s.Engine.ListJobs(endpoint)
	if err != nil {
		return nil, store.Translate(err)
	}
	if len(jobs) == 0 {
		return serve, nil
	}
	datums, err := s.Engine.ListDatums(jobs[0].ID)
	if err != nil {
		return nil, store.Translate(err)
	}
	roles := inputRoles(&info.Spec)
	var imageFile *store.DatumFile
	for _, d := range datums {
		if f := datumFile(d, roles, store.RoleImage); f != nil {
			imageFile = f
			break
		}
	}
	if imageFile == nil {
		return nil, svcerrors.AlienProvenanceError()
	}
	serve.Image = &models.DataDescriptor{
		Repo:   imageFile.File.Repo,
		Commit: imageFile.File.CommitID,
		Path:   imageFile.File.Path,
	}

	ci, err := s.Store.InspectCommit(imageFile.File.Repo, imageFile.File.CommitID)
	if err != nil {
		return nil, store.Translate(err)
	}
	srcRepo := RepoName(ServeSourceRepoPrefix, workspace)
	var codeMeta ResourceMeta
	for _, prov := range ci.Provenance {
		if prov.Repo != srcRepo {
			continue
		}
		cci, err := s.Store.InspectCommit(srcRepo, prov.ID)
		if err != nil {
			return nil, store.Translate(err)
		}
		codeMeta = parseResourceMeta(cci.Description)
		serve.Code = &models.DataDescriptor{
			Repo:   srcRepo,
			Commit: prov.ID,
			Path:   codeMeta.Path,
			Author: codeMeta.User,
		}
		break
	}
	if codeMeta.ModelID == "" {
		return nil, svcerrors.AlienProvenanceError()
	}
	model, err := s.ResolveModelInfo(workspace, codeMeta.ModelID)
	if err != nil {
		return nil, err
	}
	serve.Model = model
	return serve, nil
}
