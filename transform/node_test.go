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

func TestNodeLeavesUntouchedTreeAsSameTree(t *testing.T) {
	tree := sampleTree()
	result, same, err := Node(tree, func(n plan.Plan) (plan.Plan, TreeIdentity, error) {
		return n, SameTree, nil
	})
	require.NoError(t, err)
	require.Equal(t, SameTree, same)
	require.Equal(t, tree, result)
}

func TestNodeRewritesLeafAndPropagatesNewTree(t *testing.T) {
	tree := sampleTree()
	result, same, err := Node(tree, func(n plan.Plan) (plan.Plan, TreeIdentity, error) {
		if m, ok := n.(plan.MatchA); ok && m.Aid == "name" {
			m.Aid = "renamed"
			return m, NewTree, nil
		}
		return n, SameTree, nil
	})
	require.NoError(t, err)
	require.Equal(t, NewTree, same)

	join, ok := result.(plan.Join)
	require.True(t, ok)
	left, ok := join.Left.(plan.MatchA)
	require.True(t, ok)
	require.Equal(t, value.Aid("renamed"), left.Aid)
}

func TestNodePropagatesErrorFromLeaf(t *testing.T) {
	tree := sampleTree()
	_, _, err := Node(tree, func(n plan.Plan) (plan.Plan, TreeIdentity, error) {
		if _, ok := n.(plan.MatchA); ok {
			return nil, SameTree, errBoom
		}
		return n, SameTree, nil
	})
	require.Error(t, err)
}

type nodeTestError string

func (e nodeTestError) Error() string { return string(e) }

var errBoom = nodeTestError("boom")
