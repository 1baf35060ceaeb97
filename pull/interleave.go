// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pull implements attribute-graph traversal: PullLevel
// expands a set of attributes off the entity column of an input
// relation, and Pull concatenates several PullLevels into one stream,
// flattened for hash-map-style nesting on the client.
package pull

import "github.com/dolthub/hector/value"

// interleave alternates values with constants: v0, c0, v1, c1, ...
// When either side is empty, values is returned unchanged. It exists
// so every pulled tuple can carry its path labels (path_attributes)
// tagged onto each positional value, letting a client reconstruct a
// nested map without a schema (spec §4.5).
func interleave(values []value.Value, constants []value.Aid) []value.Value {
	if len(values) == 0 || len(constants) == 0 {
		out := make([]value.Value, len(values))
		copy(out, values)
		return out
	}

	size := len(values) + len(constants)
	result := make([]value.Value, 0, size+2)

	nextValue, nextConst := 0, 0
	for i := 0; i < size; i++ {
		if i%2 == 0 {
			result = append(result, values[nextValue])
			nextValue++
		} else {
			result = append(result, value.NewAid(constants[nextConst]))
			nextConst++
		}
	}
	return result
}
