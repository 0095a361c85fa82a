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
	"path"
	"sort"
	"strings"
	"time"

	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
	"github.com/helmsman-ml/helmsman/pkg/store"
)

// fakeCommit is one immutable snapshot in the in-memory content store.
type fakeCommit struct {
	files    map[string][]byte
	added    map[string]string // path -> commit that introduced it
	desc     string
	prov     []store.CommitRef
	finished time.Time
}

func (c *fakeCommit) size() int64 {
	var n int64
	for _, data := range c.files {
		n += int64(len(data))
	}
	return n
}

type fakeStore struct {
	repos    map[string]bool
	branches map[string]map[string]string   // repo -> branch -> head commit
	commits  map[string]map[string]*fakeCommit // repo -> commit id
	history  map[string][]string            // repo/branch -> commit ids, newest first
	nextID   int

	// failListFiles, when set, can fail selected listings to simulate
	// transport faults.
	failListFiles func(repo, commit, pattern string) error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		repos:    map[string]bool{},
		branches: map[string]map[string]string{},
		commits:  map[string]map[string]*fakeCommit{},
		history:  map[string][]string{},
	}
}

func (f *fakeStore) ensureRepo(repo string) {
	f.repos[repo] = true
	if f.branches[repo] == nil {
		f.branches[repo] = map[string]string{}
	}
	if f.commits[repo] == nil {
		f.commits[repo] = map[string]*fakeCommit{}
	}
}

// addCommit seeds a snapshot directly, for tests that need provenance or
// descriptions PutFiles would not produce. A nil files map records a
// truly empty snapshot instead of inheriting the branch head.
func (f *fakeStore) addCommit(repo, branch, id string, files map[string][]byte, desc string, prov ...store.CommitRef) {
	f.ensureRepo(repo)
	var base *fakeCommit
	if head, ok := f.branches[repo][branch]; ok && files != nil {
		base = f.commits[repo][head]
	}
	c := &fakeCommit{
		files:    map[string][]byte{},
		added:    map[string]string{},
		desc:     desc,
		prov:     prov,
		finished: time.Now(),
	}
	if base != nil {
		for p, data := range base.files {
			c.files[p] = data
			c.added[p] = base.added[p]
		}
	}
	for p, data := range files {
		c.files[p] = data
		c.added[p] = id
	}
	f.commits[repo][id] = c
	f.branches[repo][branch] = id
	key := repo + "/" + branch
	f.history[key] = append([]string{id}, f.history[key]...)
}

func (f *fakeStore) CreateRepo(repo, description string) error {
	f.ensureRepo(repo)
	return nil
}

func (f *fakeStore) DeleteRepo(repo string) error {
	delete(f.repos, repo)
	delete(f.branches, repo)
	delete(f.commits, repo)
	return nil
}

func (f *fakeStore) ListRepos() ([]string, error) {
	var names []string
	for repo := range f.repos {
		names = append(names, repo)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeStore) CreateBranch(repo, branch string) error {
	f.ensureRepo(repo)
	if _, ok := f.branches[repo][branch]; !ok {
		f.branches[repo][branch] = ""
	}
	return nil
}

func (f *fakeStore) ListBranches(repo string) ([]string, error) {
	var names []string
	for b := range f.branches[repo] {
		names = append(names, b)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeStore) PutFiles(repo, branch string, files []store.File, description string) (string, error) {
	f.nextID++
	id := fmt.Sprintf("c%d", f.nextID)
	byPath := map[string][]byte{}
	for _, file := range files {
		byPath[file.Path] = file.Data
	}
	f.addCommit(repo, branch, id, byPath, description)
	return id, nil
}

func (f *fakeStore) resolve(repo, commit string) (*fakeCommit, error) {
	if head, ok := f.branches[repo][commit]; ok && head != "" {
		commit = head
	}
	c, ok := f.commits[repo][commit]
	if !ok {
		return nil, fmt.Errorf("commit %s not found in repo %s", commit, repo)
	}
	return c, nil
}

func (f *fakeStore) GetFile(repo, commit, p string) ([]byte, error) {
	c, err := f.resolve(repo, commit)
	if err != nil {
		return nil, err
	}
	data, ok := c.files[p]
	if !ok {
		return nil, fmt.Errorf("file %s not found", p)
	}
	return data, nil
}

// entries returns every file path plus every ancestor directory.
func (c *fakeCommit) entries() map[string]bool {
	out := map[string]bool{}
	for p := range c.files {
		out[p] = false // file
		for d := path.Dir(p); d != "/" && d != "."; d = path.Dir(d) {
			out[d] = true // dir
		}
	}
	return out
}

func (f *fakeStore) entryInfo(repo string, c *fakeCommit, entry string, isDir bool) store.FileInfo {
	if !isDir {
		return store.FileInfo{
			File:      store.FileRef{Repo: repo, CommitID: c.added[entry], Path: entry},
			SizeBytes: int64(len(c.files[entry])),
			Type:      store.FileTypeFile,
		}
	}
	var size int64
	commitID := ""
	for p, data := range c.files {
		if strings.HasPrefix(p, entry+"/") {
			size += int64(len(data))
			if commitID == "" {
				commitID = c.added[p]
			}
		}
	}
	return store.FileInfo{
		File:      store.FileRef{Repo: repo, CommitID: commitID, Path: entry},
		SizeBytes: size,
		Type:      store.FileTypeDir,
	}
}

func depth(p string) int {
	return strings.Count(strings.TrimSuffix(p, "/"), "/")
}

func (f *fakeStore) ListFiles(repo, commit, pattern string, recursive bool) ([]store.FileInfo, error) {
	if f.failListFiles != nil {
		if err := f.failListFiles(repo, commit, pattern); err != nil {
			return nil, err
		}
	}
	c, err := f.resolve(repo, commit)
	if err != nil {
		return nil, err
	}
	entries := c.entries()

	match := func(entry string) bool {
		switch {
		case pattern == "/" || pattern == "":
			if recursive {
				return true
			}
			return depth(entry) == 1
		case strings.HasSuffix(pattern, "/"):
			prefix := strings.TrimSuffix(pattern, "/")
			if recursive {
				return strings.HasPrefix(entry, prefix+"/")
			}
			return path.Dir(entry) == prefix
		case strings.ContainsAny(pattern, "*?["):
			ok, _ := path.Match(pattern, entry)
			return ok
		default:
			if entries[pattern] && !recursive {
				// Exact directory: list its children.
				return path.Dir(entry) == pattern
			}
			return entry == pattern
		}
	}

	var out []store.FileInfo
	var names []string
	for entry := range entries {
		names = append(names, entry)
	}
	sort.Strings(names)
	for _, entry := range names {
		if match(entry) {
			out = append(out, f.entryInfo(repo, c, entry, entries[entry]))
		}
	}
	return out, nil
}

func (f *fakeStore) InspectFile(repo, commit, p string) (*store.FileInfo, error) {
	infos, err := f.ListFiles(repo, commit, p, false)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("file %s not found", p)
	}
	return &infos[0], nil
}

func (f *fakeStore) InspectCommit(repo, commit string) (*store.CommitInfo, error) {
	c, err := f.resolve(repo, commit)
	if err != nil {
		return nil, err
	}
	return &store.CommitInfo{
		Commit:      store.CommitRef{Repo: repo, ID: commit},
		Description: c.desc,
		Provenance:  c.prov,
		SizeBytes:   c.size(),
		Finished:    c.finished,
	}, nil
}

func (f *fakeStore) ListCommits(repo, toCommit string) ([]store.CommitInfo, error) {
	ids := f.history[repo+"/"+toCommit]
	if len(ids) == 0 {
		if _, err := f.resolve(repo, toCommit); err != nil {
			return nil, err
		}
		ids = []string{toCommit}
	}
	var out []store.CommitInfo
	for _, id := range ids {
		ci, err := f.InspectCommit(repo, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *ci)
	}
	return out, nil
}

type fakeEngine struct {
	pipelines   map[string]*store.PipelineInfo
	jobs        map[string][]store.JobInfo
	datums      map[string][]store.DatumInfo
	logs        map[string][]store.LogEntry
	createCalls int
	updateCalls int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		pipelines: map[string]*store.PipelineInfo{},
		jobs:      map[string][]store.JobInfo{},
		datums:    map[string][]store.DatumInfo{},
		logs:      map[string][]store.LogEntry{},
	}
}

func (f *fakeEngine) CreatePipeline(spec *store.PipelineSpec) error {
	f.createCalls++
	f.pipelines[spec.Name] = &store.PipelineInfo{
		Spec:        *spec,
		State:       store.PipelineRunning,
		SpecVersion: 1,
		CreatedAt:   time.Now(),
	}
	return nil
}

func (f *fakeEngine) UpdatePipeline(spec *store.PipelineSpec, version uint64, reprocess bool) error {
	cur, ok := f.pipelines[spec.Name]
	if !ok {
		return fmt.Errorf("pipeline %s not found", spec.Name)
	}
	if version != cur.SpecVersion {
		return svcerrors.StalePipelineSpecError(spec.Name)
	}
	f.updateCalls++
	f.pipelines[spec.Name] = &store.PipelineInfo{
		Spec:        *spec,
		State:       cur.State,
		SpecVersion: version + 1,
		CreatedAt:   cur.CreatedAt,
	}
	return nil
}

func (f *fakeEngine) InspectPipeline(name string) (*store.PipelineInfo, error) {
	info, ok := f.pipelines[name]
	if !ok {
		return nil, fmt.Errorf("pipeline %s not found", name)
	}
	return info, nil
}

func (f *fakeEngine) ListPipelines() ([]string, error) {
	var names []string
	for name := range f.pipelines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeEngine) DeletePipeline(name string) error {
	delete(f.pipelines, name)
	return nil
}

func (f *fakeEngine) ListJobs(pipeline string) ([]store.JobInfo, error) {
	return f.jobs[pipeline], nil
}

func (f *fakeEngine) InspectJob(jobID string) (*store.JobInfo, error) {
	for _, jobs := range f.jobs {
		for i := range jobs {
			if jobs[i].ID == jobID {
				return &jobs[i], nil
			}
		}
	}
	return nil, fmt.Errorf("job %s not found", jobID)
}

func (f *fakeEngine) DeleteJob(jobID string) error {
	for pipeline, jobs := range f.jobs {
		for i := range jobs {
			if jobs[i].ID == jobID {
				f.jobs[pipeline] = append(jobs[:i], jobs[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("job %s not found", jobID)
}

func (f *fakeEngine) ListDatums(jobID string) ([]store.DatumInfo, error) {
	return f.datums[jobID], nil
}

func (f *fakeEngine) JobLogs(pipeline, jobID string) ([]store.LogEntry, error) {
	return f.logs[jobID], nil
}

func (f *fakeEngine) PipelineLogs(pipeline string) ([]store.LogEntry, error) {
	return f.logs[pipeline], nil
}

func newTestService() (*Service, *fakeStore, *fakeEngine) {
	fs := newFakeStore()
	fe := newFakeEngine()
	return NewService(fs, fe, nil), fs, fe
}
