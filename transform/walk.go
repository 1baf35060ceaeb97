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

// Package transform implements generic top-down (Walk/Inspect) and
// bottom-up (Node) traversals over plan.Plan trees, in the same shape
// this repo's teacher uses for its sql.Node trees.
package transform

import "github.com/dolthub/hector/plan"

// Visitor is implemented by types that want to visit every node of a
// plan tree via Walk. Visit is called on the node; if it returns a
// non-nil Visitor, Walk continues into each child with that visitor,
// then calls Visit(nil) once children are exhausted.
type Visitor interface {
	Visit(node plan.Plan) Visitor
}

// Walk traverses the tree rooted at node in depth-first pre-order,
// calling v.Visit at every node, including the nil sentinels marking
// the end of each child list.
func Walk(v Visitor, node plan.Plan) {
	if v = v.Visit(node); v == nil {
		return
	}
	if node == nil {
		return
	}
	for _, child := range node.Children() {
		Walk(v, child)
	}
	v.Visit(nil)
}

// Inspect is Walk for plain functions: f is called on every node,
// including nil sentinels, and traversal into a node's children stops
// when f returns false for that node.
func Inspect(node plan.Plan, f func(plan.Plan) bool) {
	Walk(inspector(f), node)
}

type inspector func(plan.Plan) bool

func (f inspector) Visit(node plan.Plan) Visitor {
	if f(node) {
		return f
	}
	return nil
}
