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

import (
	"fmt"

	"github.com/dolthub/hector/value"
)

// MatchA binds eVar to the Eid and vVar to the Value of every live
// (Eid, Value) pair for attribute Aid, using the forward index's
// validate arrangement.
type MatchA struct {
	EVar value.Var
	Aid  value.Aid
	VVar value.Var
}

func (m MatchA) Children() []Plan { return nil }
func (m MatchA) WithChildren(children ...Plan) (Plan, error) {
	return withNoChildren(m, children)
}
func (m MatchA) Dependencies() Dependencies { return Dependencies{Attributes: []value.Aid{m.Aid}} }
func (m MatchA) Variables() value.VarList   { return value.VarList{m.EVar, m.VVar} }
func (m MatchA) String() string             { return fmt.Sprintf("MatchA(%v, %q, %v)", m.EVar, m.Aid, m.VVar) }

// MatchEA binds vVar to the Value found for the fixed eid under
// attribute Aid, using the forward index's propose arrangement
// filtered to one key.
type MatchEA struct {
	Eid  value.Value
	Aid  value.Aid
	VVar value.Var
}

func (m MatchEA) Children() []Plan { return nil }
func (m MatchEA) WithChildren(children ...Plan) (Plan, error) {
	return withNoChildren(m, children)
}
func (m MatchEA) Dependencies() Dependencies { return Dependencies{Attributes: []value.Aid{m.Aid}} }
func (m MatchEA) Variables() value.VarList   { return value.VarList{m.VVar} }
func (m MatchEA) String() string             { return fmt.Sprintf("MatchEA(%v, %q, %v)", m.Eid, m.Aid, m.VVar) }

// MatchAV binds eVar to the Eid found for the fixed value under
// attribute Aid, using the reverse index's propose arrangement
// filtered to one key.
type MatchAV struct {
	EVar  value.Var
	Aid   value.Aid
	Value value.Value
}

func (m MatchAV) Children() []Plan { return nil }
func (m MatchAV) WithChildren(children ...Plan) (Plan, error) {
	return withNoChildren(m, children)
}
func (m MatchAV) Dependencies() Dependencies { return Dependencies{Attributes: []value.Aid{m.Aid}} }
func (m MatchAV) Variables() value.VarList   { return value.VarList{m.EVar} }
func (m MatchAV) String() string             { return fmt.Sprintf("MatchAV(%v, %q, %v)", m.EVar, m.Aid, m.Value) }

// Project reorders/narrows the input's variable list.
type Project struct {
	Input Plan
	Vars  value.VarList
}

func (p Project) Children() []Plan { return []Plan{p.Input} }
func (p Project) WithChildren(children ...Plan) (Plan, error) {
	if len(children) != 1 {
		return nil, wrongChildren("Project", 1, len(children))
	}
	p.Input = children[0]
	return p, nil
}
func (p Project) Dependencies() Dependencies { return p.Input.Dependencies() }
func (p Project) Variables() value.VarList   { return p.Vars }
func (p Project) String() string             { return fmt.Sprintf("Project(%v)", p.Vars) }

// Union concatenates two inputs sharing the same variable list.
type Union struct {
	Left, Right Plan
}

func (u Union) Children() []Plan { return []Plan{u.Left, u.Right} }
func (u Union) WithChildren(children ...Plan) (Plan, error) {
	if len(children) != 2 {
		return nil, wrongChildren("Union", 2, len(children))
	}
	u.Left, u.Right = children[0], children[1]
	return u, nil
}
func (u Union) Dependencies() Dependencies {
	return u.Left.Dependencies().Merge(u.Right.Dependencies())
}
func (u Union) Variables() value.VarList { return u.Left.Variables() }
func (u Union) String() string           { return "Union" }

// Join is an equijoin over the variables the two inputs share; the
// output variable list is the left's variables followed by the
// right's variables not already present on the left.
type Join struct {
	Left, Right Plan
}

func (j Join) Children() []Plan { return []Plan{j.Left, j.Right} }
func (j Join) WithChildren(children ...Plan) (Plan, error) {
	if len(children) != 2 {
		return nil, wrongChildren("Join", 2, len(children))
	}
	j.Left, j.Right = children[0], children[1]
	return j, nil
}
func (j Join) Dependencies() Dependencies {
	return j.Left.Dependencies().Merge(j.Right.Dependencies())
}
func (j Join) Variables() value.VarList {
	out := append(value.VarList{}, j.Left.Variables()...)
	for _, v := range j.Right.Variables() {
		if out.Index(v) < 0 {
			out = append(out, v)
		}
	}
	return out
}
func (j Join) String() string { return "Join" }

// Antijoin keeps left tuples that have NO matching right tuple on
// their shared variables (with multiplicity, not mere presence).
type Antijoin struct {
	Left, Right Plan
}

func (a Antijoin) Children() []Plan { return []Plan{a.Left, a.Right} }
func (a Antijoin) WithChildren(children ...Plan) (Plan, error) {
	if len(children) != 2 {
		return nil, wrongChildren("Antijoin", 2, len(children))
	}
	a.Left, a.Right = children[0], children[1]
	return a, nil
}
func (a Antijoin) Dependencies() Dependencies {
	return a.Left.Dependencies().Merge(a.Right.Dependencies())
}
func (a Antijoin) Variables() value.VarList { return a.Left.Variables() }
func (a Antijoin) String() string           { return "Antijoin" }

// Negate flips the sign of every diff flowing through, for use as the
// right-hand operand of a Union implementing set difference.
type Negate struct {
	Input Plan
}

func (n Negate) Children() []Plan { return []Plan{n.Input} }
func (n Negate) WithChildren(children ...Plan) (Plan, error) {
	if len(children) != 1 {
		return nil, wrongChildren("Negate", 1, len(children))
	}
	n.Input = children[0]
	return n, nil
}
func (n Negate) Dependencies() Dependencies { return n.Input.Dependencies() }
func (n Negate) Variables() value.VarList   { return n.Input.Variables() }
func (n Negate) String() string             { return "Negate" }

// Predicate is a user-supplied tuple test for Filter.
type Predicate func(value.Tuple) bool

// Filter keeps only tuples matching Predicate.
type Filter struct {
	Input     Plan
	Predicate Predicate
	Label     string
}

func (f Filter) Children() []Plan { return []Plan{f.Input} }
func (f Filter) WithChildren(children ...Plan) (Plan, error) {
	if len(children) != 1 {
		return nil, wrongChildren("Filter", 1, len(children))
	}
	f.Input = children[0]
	return f, nil
}
func (f Filter) Dependencies() Dependencies { return f.Input.Dependencies() }
func (f Filter) Variables() value.VarList   { return f.Input.Variables() }
func (f Filter) String() string             { return fmt.Sprintf("Filter(%s)", f.Label) }

// TupleFunc maps one input tuple to one output tuple, for Transform.
type TupleFunc func(value.Tuple) value.Tuple

// Transform applies Func to every tuple, renaming the variable list
// to Vars.
type Transform struct {
	Input Plan
	Func  TupleFunc
	Vars  value.VarList
	Label string
}

func (t Transform) Children() []Plan { return []Plan{t.Input} }
func (t Transform) WithChildren(children ...Plan) (Plan, error) {
	if len(children) != 1 {
		return nil, wrongChildren("Transform", 1, len(children))
	}
	t.Input = children[0]
	return t, nil
}
func (t Transform) Dependencies() Dependencies { return t.Input.Dependencies() }
func (t Transform) Variables() value.VarList   { return t.Vars }
func (t Transform) String() string             { return fmt.Sprintf("Transform(%s)", t.Label) }

// AggregateFunc reduces the values observed for one group (the
// GroupBy prefix) to a single output value.
type AggregateFunc func(group value.Tuple, values []value.Value) value.Value

// Aggregate groups the input by GroupBy and folds the trailing column
// with Func, appending the result to the group's tuple.
type Aggregate struct {
	Input    Plan
	GroupBy  value.VarList
	Func     AggregateFunc
	OutVar   value.Var
	Label    string
}

func (a Aggregate) Children() []Plan { return []Plan{a.Input} }
func (a Aggregate) WithChildren(children ...Plan) (Plan, error) {
	if len(children) != 1 {
		return nil, wrongChildren("Aggregate", 1, len(children))
	}
	a.Input = children[0]
	return a, nil
}
func (a Aggregate) Dependencies() Dependencies { return a.Input.Dependencies() }
func (a Aggregate) Variables() value.VarList   { return append(append(value.VarList{}, a.GroupBy...), a.OutVar) }
func (a Aggregate) String() string             { return fmt.Sprintf("Aggregate(%s)", a.Label) }

// RuleExpr references a named rule, bound against vars. Lowering
// resolves it to the rule's recursive variable.
type RuleExpr struct {
	Vars value.VarList
	Name string
}

func (r RuleExpr) Children() []Plan { return nil }
func (r RuleExpr) WithChildren(children ...Plan) (Plan, error) {
	return withNoChildren(r, children)
}
func (r RuleExpr) Dependencies() Dependencies { return Dependencies{Rules: []string{r.Name}} }
func (r RuleExpr) Variables() value.VarList   { return r.Vars }
func (r RuleExpr) String() string             { return fmt.Sprintf("RuleExpr(%s)", r.Name) }

// NameExpr references an already-published relation by name, bound
// against vars. Unlike RuleExpr it does not participate in rule
// dependency collection; it addresses a relation a prior Interest
// call already compiled.
type NameExpr struct {
	Vars value.VarList
	Name string
}

func (n NameExpr) Children() []Plan           { return nil }
func (n NameExpr) WithChildren(children ...Plan) (Plan, error) {
	return withNoChildren(n, children)
}
func (n NameExpr) Dependencies() Dependencies { return Dependencies{} }
func (n NameExpr) Variables() value.VarList   { return n.Vars }
func (n NameExpr) String() string             { return fmt.Sprintf("NameExpr(%s)", n.Name) }

func withNoChildren(p Plan, children []Plan) (Plan, error) {
	if len(children) != 0 {
		return nil, wrongChildren(fmt.Sprintf("%T", p), 0, len(children))
	}
	return p, nil
}

func wrongChildren(op string, want, got int) error {
	return fmt.Errorf("plan: %s expects %d children, got %d", op, want, got)
}
