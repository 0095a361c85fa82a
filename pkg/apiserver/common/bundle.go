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

package common

import (
	"archive/zip"
	"bytes"
	"io/ioutil"
	"strings"

	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
	"github.com/helmsman-ml/helmsman/pkg/orchestrator"
	"github.com/helmsman-ml/helmsman/pkg/store"
)

// BundleFromZip unpacks an uploaded zip archive into a named bundle.
// Directory entries and path traversal are rejected at the boundary; an
// archive with no regular files is not a submission.
func BundleFromZip(name string, archive []byte) (*orchestrator.Bundle, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, svcerrors.InvalidBundleError(err.Error())
	}

	var files []store.File
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		clean := strings.TrimPrefix(entry.Name, "./")
		if clean == "" || strings.HasPrefix(clean, "/") || strings.Contains(clean, "..") {
			return nil, svcerrors.InvalidBundleError("archive entry escapes the bundle root: " + entry.Name)
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, svcerrors.InvalidBundleError(err.Error())
		}
		data, err := ioutil.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, svcerrors.InvalidBundleError(err.Error())
		}
		files = append(files, store.File{Path: clean, Data: data})
	}
	if len(files) == 0 {
		return nil, svcerrors.InvalidBundleError("archive contains no files")
	}
	return &orchestrator.Bundle{Name: name, Files: files}, nil
}
