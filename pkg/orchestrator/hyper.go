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

	"github.com/helmsman-ml/helmsman/pkg/store"
)

// HyperCombo is one point of a hyperparameter grid.
type HyperCombo map[string]string

// ExpandHyperGrid expands a grid of candidate values into the full
// Cartesian product. Keys are visited in sorted order and the first key
// varies slowest, so the expansion order is reproducible across runs.
// An empty grid yields a single empty combination.
func ExpandHyperGrid(grid map[string][]string) []HyperCombo {
	keys := make([]string, 0, len(grid))
	for k := range grid {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	combos := []HyperCombo{{}}
	for _, k := range keys {
		values := grid[k]
		next := make([]HyperCombo, 0, len(combos)*len(values))
		for _, combo := range combos {
			for _, v := range values {
				merged := make(HyperCombo, len(combo)+1)
				for ck, cv := range combo {
					merged[ck] = cv
				}
				merged[k] = v
				next = append(next, merged)
			}
		}
		combos = next
	}
	return combos
}

// HyperFileName derives the canonical file name of a combination: sorted
// key=value pairs joined with "_", plus a ".json" suffix, under dir. The
// empty combination maps to the fixed EmptyHyperFile sentinel at the root
// so it stays addressable without knowing any submission hash.
func HyperFileName(dir string, combo HyperCombo) string {
	if len(combo) == 0 {
		return "/" + EmptyHyperFile
	}
	pairs := make([]string, 0, len(combo))
	for k, v := range combo {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(pairs)
	return path.Join(dir, strings.Join(pairs, "_")+".json")
}

// HyperFiles renders every combination of a grid into store files rooted
// at dir, one JSON object per combination.
func HyperFiles(dir string, grid map[string][]string) []store.File {
	combos := ExpandHyperGrid(grid)
	files := make([]store.File, 0, len(combos))
	for _, combo := range combos {
		files = append(files, store.File{
			Path: HyperFileName(dir, combo),
			Data: comboJSON(combo),
		})
	}
	return files
}

func comboJSON(combo HyperCombo) []byte {
	raw, err := json.Marshal(combo)
	if err != nil {
		return []byte("{}")
	}
	return raw
}
