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

package plan

import "github.com/dolthub/hector/value"

// sharedVars returns the variables appearing in both lists, in the
// order they occur in left.
func sharedVars(left, right value.VarList) value.VarList {
	var out value.VarList
	for _, v := range left {
		if right.Index(v) >= 0 {
			out = append(out, v)
		}
	}
	return out
}

// positionsFor returns, for each variable in vs, its column index
// within vars.
func positionsFor(vars, vs value.VarList) []int {
	out := make([]int, len(vs))
	for i, v := range vs {
		out[i] = vars.Index(v)
	}
	return out
}

// extraPositions returns the column indices of right not present in
// left, in right's original order.
func extraPositions(left, right value.VarList) []int {
	var out []int
	for i, v := range right {
		if left.Index(v) < 0 {
			out = append(out, i)
		}
	}
	return out
}

// pickPositions projects tuple onto positions.
func pickPositions(tuple value.Tuple, positions []int) value.Tuple {
	out := make(value.Tuple, len(positions))
	for i, p := range positions {
		if p >= 0 {
			out[i] = tuple[p]
		}
	}
	return out
}

// matchesShared reports whether leftTuple and rightTuple agree on
// every variable in shared.
func matchesShared(leftTuple, rightTuple value.Tuple, shared, leftVars, rightVars value.VarList) bool {
	for _, v := range shared {
		lp, rp := leftVars.Index(v), rightVars.Index(v)
		if !leftTuple[lp].Equal(rightTuple[rp]) {
			return false
		}
	}
	return true
}
