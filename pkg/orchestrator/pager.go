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
	"sort"

	"github.com/helmsman-ml/helmsman/pkg/apiserver/models"
	svcerrors "github.com/helmsman-ml/helmsman/pkg/common/errors"
)

// PageSize is the fixed partition page length.
const PageSize = 10

// SortPartitions orders partitions by score, highest first. Partitions
// without a score always sort after every scored one, wherever they
// started out.
func SortPartitions(parts []models.PartitionInfo) {
	sort.SliceStable(parts, func(i, j int) bool {
		si, sj := parts[i].Score, parts[j].Score
		switch {
		case si == nil:
			return false
		case sj == nil:
			return true
		default:
			return *si > *sj
		}
	})
}

// PagePartitions sorts partitions and cuts the requested zero-based page,
// returning it with the total page count. Pages past the end are empty,
// negative page ids are rejected.
func PagePartitions(parts []models.PartitionInfo, pageID int) ([]models.PartitionInfo, int, error) {
	if pageID < 0 {
		return nil, 0, svcerrors.InvalidPageIDError(pageID)
	}
	SortPartitions(parts)
	pageCount := (len(parts) + PageSize - 1) / PageSize

	start := pageID * PageSize
	if start >= len(parts) {
		return []models.PartitionInfo{}, pageCount, nil
	}
	end := start + PageSize
	if end > len(parts) {
		end = len(parts)
	}
	return parts[start:end], pageCount, nil
}
