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

// Package plan implements the operator algebra that compiles down to
// dataflow fragments: MatchA/MatchEA/MatchAV attribute matches,
// Project/Union/Join/Antijoin/Negate/Filter/Transform/Aggregate
// relational combinators, RuleExpr/NameExpr references, the Hector
// worst-case-optimal join, and the Pull/PullLevel attribute-graph
// traversal.
package plan

import "github.com/dolthub/hector/value"

// Dependencies is what Plan.Dependencies reports: the rule names and
// attribute ids a plan transitively needs before it can be lowered.
type Dependencies struct {
	Rules      []string
	Attributes []value.Aid
}

// Merge folds other into d, without deduplicating; callers needing a
// deduplicated view should run the result through a seen-set, as the
// planner's dependency collector does.
func (d Dependencies) Merge(other Dependencies) Dependencies {
	d.Rules = append(append([]string{}, d.Rules...), other.Rules...)
	d.Attributes = append(append([]value.Aid{}, d.Attributes...), other.Attributes...)
	return d
}

// Plan is one node of the operator tree. Every variant in this
// package implements it. Children/WithChildren give the transform
// package a uniform way to walk and rewrite the tree; Dependencies
// and Variables are used by the planner and by Context.Implement.
type Plan interface {
	// Children returns this node's plan operands, in evaluation order.
	Children() []Plan
	// WithChildren returns a copy of this node with its operands
	// replaced; it must fail if given the wrong number of children.
	WithChildren(children ...Plan) (Plan, error)
	// Dependencies reports the rule names and attribute ids this node
	// (including its children) needs before it can be lowered.
	Dependencies() Dependencies
	// Variables reports the output variable list this node's tuples
	// are positioned against.
	Variables() value.VarList
	// String renders a short human-readable form, for logging.
	String() string
}
