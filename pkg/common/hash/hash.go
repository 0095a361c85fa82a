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

package hash

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

// DefaultDigestLength is the fixed length of bundle identity digests.
// Five characters keeps repository paths readable while the sampling in
// FixLength preserves entropy from the whole sha512 digest.
const DefaultDigestLength = 5

// FixLength shortens s to at most n characters by sampling every
// ceil(len(s)/n)-th character instead of truncating, so the result still
// depends on the entire input string. n must be greater than zero.
func FixLength(s string, n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("fix length requires n > 0, got %d", n)
	}
	if s == "" {
		return "", nil
	}
	step := int(math.Ceil(float64(len(s)) / float64(n)))
	var sb strings.Builder
	for i := 0; i < len(s); i += step {
		sb.WriteByte(s[i])
	}
	return sb.String(), nil
}

// Digest returns the fixed-length identity digest of raw bundle bytes.
// It is collision resistant enough for bundle naming, not a security hash.
func Digest(data []byte) string {
	sum := sha512.Sum512(data)
	full := hex.EncodeToString(sum[:])
	short, err := FixLength(full, DefaultDigestLength)
	if err != nil {
		// unreachable with a positive constant length
		return full
	}
	return short
}

// BundleName joins a bundle's original name with its identity digest,
// yielding the on-store directory name <name>:<digest>. The digest is
// taken as given so callers hashing a whole file tree do not re-hash.
func BundleName(name, digest string) string {
	return fmt.Sprintf("%s:%s", name, digest)
}
