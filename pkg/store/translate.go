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
	"errors"
	"regexp"

	pkgerrors "github.com/pkg/errors"

	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
)

var (
	unfinishedCommitRE = regexp.MustCompile(`output commit (\S+) not finished`)
	commitNotFoundRE   = regexp.MustCompile(`commit (\S+) not found in repo`)
	couldNotConnectRE  = regexp.MustCompile(`failed to pick subchannel|connection refused`)
)

// Translate classifies an error returned by the content store or pipeline
// engine into the service taxonomy. Recognized transient and not-found
// patterns become their typed equivalents; anything else is wrapped as an
// upstream fault carrying the raw message. Errors already carrying a
// service code pass through unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var se *svcerrors.ServiceError
	if errors.As(err, &se) {
		return err
	}
	msg := err.Error()
	if m := unfinishedCommitRE.FindStringSubmatch(msg); m != nil {
		return svcerrors.UnfinishedCommitError(m[1])
	}
	if m := commitNotFoundRE.FindStringSubmatch(msg); m != nil {
		return svcerrors.CommitNotFoundError(m[1])
	}
	if couldNotConnectRE.MatchString(msg) {
		return svcerrors.StoreUnreachableError(pkgerrors.Wrap(err, "store unreachable"))
	}
	return svcerrors.UpstreamFaultError(err)
}
