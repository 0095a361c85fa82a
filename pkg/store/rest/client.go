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
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"

	"github.com/helmsman-ml/helmsman/pkg/store"
)

// APIError is a non-2xx answer from the store. Error keeps the server's
// message verbatim so the taxonomy translation can classify it.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// Client talks to the content store and pipeline engine REST API at one
// address. It implements store.ContentStore and store.PipelineEngine.
type Client struct {
	address string
}

var (
	_ store.ContentStore   = (*Client)(nil)
	_ store.PipelineEngine = (*Client)(nil)
)

func NewClient(address string) *Client {
	initClient()
	return &Client{address: address}
}

func (c *Client) do(method, uri string, params url.Values, body, result interface{}) error {
	req := &request{address: c.address, method: method, uri: uri, params: params}
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body failed, error: %v", err)
		}
		req.body = bytes.NewReader(jsonBody)
	}

	resp, err := execute(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		rawBody, _ := ioutil.ReadAll(resp.Body)
		if len(rawBody) != 0 {
			if err := json.Unmarshal(rawBody, apiErr); err != nil {
				apiErr.Message = string(rawBody)
			}
		}
		return apiErr
	}
	if result == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

func (c *Client) CreateRepo(repo, description string) error {
	body := struct {
		Description string
	}{description}
	return c.do(http.MethodPut, pathJoin("v1", "repos", repo), nil, body, nil)
}

func (c *Client) DeleteRepo(repo string) error {
	return c.do(http.MethodDelete, pathJoin("v1", "repos", repo), nil, nil, nil)
}

func (c *Client) ListRepos() ([]string, error) {
	var repos []string
	if err := c.do(http.MethodGet, pathJoin("v1", "repos"), nil, nil, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

func (c *Client) CreateBranch(repo, branch string) error {
	return c.do(http.MethodPut, pathJoin("v1", "repos", repo, "branches", branch), nil, nil, nil)
}

func (c *Client) ListBranches(repo string) ([]string, error) {
	var branches []string
	if err := c.do(http.MethodGet, pathJoin("v1", "repos", repo, "branches"), nil, nil, &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

func (c *Client) PutFiles(repo, branch string, files []store.File, description string) (string, error) {
	body := struct {
		Files       []store.File
		Description string
	}{files, description}
	var result struct {
		CommitID string
	}
	uri := pathJoin("v1", "repos", repo, "branches", branch, "files")
	if err := c.do(http.MethodPost, uri, nil, body, &result); err != nil {
		return "", err
	}
	return result.CommitID, nil
}

func (c *Client) GetFile(repo, commit, path string) ([]byte, error) {
	params := url.Values{"path": []string{path}}
	req := &request{
		address: c.address,
		method:  http.MethodGet,
		uri:     pathJoin("v1", "repos", repo, "commits", commit, "file"),
		params:  params,
	}
	resp, err := execute(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		rawBody, _ := ioutil.ReadAll(resp.Body)
		if len(rawBody) != 0 {
			if err := json.Unmarshal(rawBody, apiErr); err != nil {
				apiErr.Message = string(rawBody)
			}
		}
		return nil, apiErr
	}
	return ioutil.ReadAll(resp.Body)
}

func (c *Client) ListFiles(repo, commit, path string, recursive bool) ([]store.FileInfo, error) {
	params := url.Values{
		"path":      []string{path},
		"recursive": []string{strconv.FormatBool(recursive)},
	}
	var infos []store.FileInfo
	uri := pathJoin("v1", "repos", repo, "commits", commit, "files")
	if err := c.do(http.MethodGet, uri, params, nil, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

func (c *Client) InspectFile(repo, commit, path string) (*store.FileInfo, error) {
	params := url.Values{"path": []string{path}}
	var info store.FileInfo
	uri := pathJoin("v1", "repos", repo, "commits", commit, "fileinfo")
	if err := c.do(http.MethodGet, uri, params, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) InspectCommit(repo, commit string) (*store.CommitInfo, error) {
	var info store.CommitInfo
	uri := pathJoin("v1", "repos", repo, "commits", commit)
	if err := c.do(http.MethodGet, uri, nil, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) ListCommits(repo, toCommit string) ([]store.CommitInfo, error) {
	params := url.Values{"to": []string{toCommit}}
	var infos []store.CommitInfo
	uri := pathJoin("v1", "repos", repo, "commits")
	if err := c.do(http.MethodGet, uri, params, nil, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

func (c *Client) CreatePipeline(spec *store.PipelineSpec) error {
	return c.do(http.MethodPost, pathJoin("v1", "pipelines"), nil, spec, nil)
}

func (c *Client) UpdatePipeline(spec *store.PipelineSpec, version uint64, reprocess bool) error {
	params := url.Values{
		"version":   []string{strconv.FormatUint(version, 10)},
		"reprocess": []string{strconv.FormatBool(reprocess)},
	}
	return c.do(http.MethodPut, pathJoin("v1", "pipelines", spec.Name), params, spec, nil)
}

func (c *Client) InspectPipeline(name string) (*store.PipelineInfo, error) {
	var info store.PipelineInfo
	if err := c.do(http.MethodGet, pathJoin("v1", "pipelines", name), nil, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) ListPipelines() ([]string, error) {
	var names []string
	if err := c.do(http.MethodGet, pathJoin("v1", "pipelines"), nil, nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *Client) DeletePipeline(name string) error {
	return c.do(http.MethodDelete, pathJoin("v1", "pipelines", name), nil, nil, nil)
}

func (c *Client) ListJobs(pipeline string) ([]store.JobInfo, error) {
	var jobs []store.JobInfo
	uri := pathJoin("v1", "pipelines", pipeline, "jobs")
	if err := c.do(http.MethodGet, uri, nil, nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (c *Client) InspectJob(jobID string) (*store.JobInfo, error) {
	var job store.JobInfo
	if err := c.do(http.MethodGet, pathJoin("v1", "jobs", jobID), nil, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) DeleteJob(jobID string) error {
	return c.do(http.MethodDelete, pathJoin("v1", "jobs", jobID), nil, nil, nil)
}

func (c *Client) ListDatums(jobID string) ([]store.DatumInfo, error) {
	var datums []store.DatumInfo
	uri := pathJoin("v1", "jobs", jobID, "datums")
	if err := c.do(http.MethodGet, uri, nil, nil, &datums); err != nil {
		return nil, err
	}
	return datums, nil
}

func (c *Client) JobLogs(pipeline, jobID string) ([]store.LogEntry, error) {
	var entries []store.LogEntry
	uri := pathJoin("v1", "pipelines", pipeline, "jobs", jobID, "logs")
	if err := c.do(http.MethodGet, uri, nil, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) PipelineLogs(pipeline string) ([]store.LogEntry, error) {
	var entries []store.LogEntry
	uri := pathJoin("v1", "pipelines", pipeline, "logs")
	if err := c.do(http.MethodGet, uri, nil, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
