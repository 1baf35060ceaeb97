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

package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/hector/plan"
	"github.com/dolthub/hector/value"
)

const (
	sampleVarE value.Var = iota
	sampleVarN
	sampleVarA
)

func sampleTree() plan.Plan {
	return plan.Join{
		Left:  plan.MatchA{EVar: sampleVarE, Aid: "name", VVar: sampleVarN},
		Right: plan.MatchA{EVar: sampleVarE, Aid: "age", VVar: sampleVarA},
	}
}

func TestWalkVisitsEveryNodeIncludingNilSentinels(t *testing.T) {
	var seen []plan.Plan
	Inspect(sampleTree(), func(n plan.Plan) bool {
		seen = append(seen, n)
		return true
	})

	// root, left leaf, nil (end of left's children), right leaf, nil
	// (end of right's children), nil (end of root's children).
	require.Len(t, seen, 6)
	require.Equal(t, sampleTree(), seen[0])
	require.Nil(t, seen[1+1])
}

func TestInspectStopsDescendingWhenFalseReturned(t *testing.T) {
	var seen []plan.Plan
	Inspect(sampleTree(), func(n plan.Plan) bool {
		seen = append(seen, n)
		if _, ok := n.(plan.Join); ok {
			return false
		}
		return true
	})
	require.Len(t, seen, 1)
}

func TestWalkOnNilRootVisitsOnlyNil(t *testing.T) {
	var calls int
	Inspect(nil, func(n plan.Plan) bool {
		calls++
		require.Nil(t, n)
		return true
	})
	require.Equal(t, 1, calls)
}
