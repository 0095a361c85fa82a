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
	"fmt"
	"regexp"

	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
	"github.com/helmsman-ml/helmsman/pkg/store"
)

var (
	memoryPattern    = regexp.MustCompile(`^[1-9][0-9]*([numkMGTPE]i?)?$`)
	workspacePattern = regexp.MustCompile(`^[a-z][a-z0-9]{1,30}$`)
)

// ValidateResources rejects resource requests the pipeline engine would
// silently misschedule.
func ValidateResources(res *store.ResourceSpec) error {
	if res == nil {
		return nil
	}
	if res.CPU <= 0 {
		return svcerrors.InvalidResourceSpecError(fmt.Sprintf("cpu request must be positive, got %v", res.CPU))
	}
	if res.Memory != "" && !memoryPattern.MatchString(res.Memory) {
		return svcerrors.InvalidResourceSpecError(fmt.Sprintf("invalid memory quantity %q", res.Memory))
	}
	if res.GPU < 0 {
		return svcerrors.InvalidResourceSpecError(fmt.Sprintf("gpu request must not be negative, got %d", res.GPU))
	}
	return nil
}

// ValidateWorkspaceName keeps workspace names usable as name suffixes for
// repositories, pipelines and image tags.
func ValidateWorkspaceName(name string) error {
	if !workspacePattern.MatchString(name) {
		return svcerrors.InvalidBundleError(fmt.Sprintf("workspace name %q must be lowercase alphanumeric, 2-31 chars, starting with a letter", name))
	}
	return nil
}
