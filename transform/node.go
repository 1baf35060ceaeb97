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

import "github.com/dolthub/hector/plan"

// TreeIdentity reports whether a transformation produced the same
// tree (by reference, as a cheap identity shortcut) or a new one.
type TreeIdentity bool

const (
	// SameTree means the visited subtree was returned unchanged.
	SameTree TreeIdentity = false
	// NewTree means at least one node in the subtree was replaced.
	NewTree TreeIdentity = true
)

// NodeFunc is called bottom-up on every node of a tree being
// rewritten by Node. It returns the (possibly replaced) node, whether
// it changed anything, and an error that aborts the whole traversal.
type NodeFunc func(node plan.Plan) (plan.Plan, TreeIdentity, error)

// Node rewrites the tree rooted at n bottom-up: every child is
// transformed first, n's children are replaced only if at least one
// of them actually changed, and then f is applied to n itself. The
// returned TreeIdentity is NewTree iff anything in the subtree
// changed, so callers can skip rebuilding parents unnecessarily.
func Node(n plan.Plan, f NodeFunc) (plan.Plan, TreeIdentity, error) {
	if n == nil {
		return f(n)
	}

	children := n.Children()
	if len(children) == 0 {
		return f(n)
	}

	newChildren := make([]plan.Plan, len(children))
	childrenSame := SameTree
	for i, c := range children {
		newChild, same, err := Node(c, f)
		if err != nil {
			return nil, SameTree, err
		}
		newChildren[i] = newChild
		if same == NewTree {
			childrenSame = NewTree
		}
	}

	current := n
	if childrenSame == NewTree {
		withChildren, err := n.WithChildren(newChildren...)
		if err != nil {
			return nil, SameTree, err
		}
		current = withChildren
	}

	result, same, err := f(current)
	if err != nil {
		return nil, SameTree, err
	}
	if same == NewTree || childrenSame == NewTree {
		return result, NewTree, nil
	}
	return result, SameTree, nil
}
