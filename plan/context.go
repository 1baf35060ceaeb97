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
	"github.com/dolthub/hector/clock"
	"github.com/dolthub/hector/dferrors"
	"github.com/dolthub/hector/domain"
	"github.com/dolthub/hector/hector"
	"github.com/dolthub/hector/index"
	"github.com/dolthub/hector/internal/similartext"
	"github.com/dolthub/hector/pull"
	"github.com/dolthub/hector/value"
)

// Context is the lowering environment every Plan.Implement step reads
// from: the Domain whose attribute indices back MatchA/MatchEA/MatchAV
// and Hector, and the recursive-variable map rule lowering populates
// (spec §4.3 step 3: "create a recursive variable for each
// underconstrained rule").
type Context struct {
	Domain *domain.Domain

	// Locals holds one CollectionRelation per rule or published
	// relation currently in scope, keyed by name, so RuleExpr/NameExpr
	// can resolve without re-lowering.
	Locals map[string]*CollectionRelation

	// Now is the logical time new entries are stamped with, normally
	// the owning Domain's current now_at.
	Now clock.Time
}

// NewContext returns a Context over d evaluated as of now.
func NewContext(d *domain.Domain, now clock.Time) *Context {
	return &Context{Domain: d, Locals: make(map[string]*CollectionRelation), Now: now}
}

// Implement lowers p into a CollectionRelation and the shutdown handle
// collecting every trace import the lowering touched, per the
// traversal order of §4.3 step 5 ("lower each rule's plan; merge all
// shutdown buttons into a single handle").
func (c *Context) Implement(p Plan) (*CollectionRelation, *index.ShutdownHandle, error) {
	switch n := p.(type) {
	case MatchA:
		return c.implementMatchA(n)
	case MatchEA:
		return c.implementMatchEA(n)
	case MatchAV:
		return c.implementMatchAV(n)
	case Project:
		return c.implementProject(n)
	case Union:
		return c.implementUnion(n)
	case Join:
		return c.implementJoin(n)
	case Antijoin:
		return c.implementAntijoin(n)
	case Negate:
		return c.implementNegate(n)
	case Filter:
		return c.implementFilter(n)
	case Transform:
		return c.implementTransform(n)
	case Aggregate:
		return c.implementAggregate(n)
	case RuleExpr:
		return c.implementNamed(n.Name, n.Vars)
	case NameExpr:
		return c.implementNamed(n.Name, n.Vars)
	case Hector:
		return c.implementHector(n)
	case PullLevel:
		return c.implementPullLevel(n)
	case Pull:
		return c.implementPull(n)
	default:
		return nil, nil, dferrors.ErrMalformedRequest.New("unrecognized plan node")
	}
}

func (c *Context) implementMatchA(m MatchA) (*CollectionRelation, *index.ShutdownHandle, error) {
	fwd, err := c.Domain.Forward(m.Aid)
	if err != nil {
		return nil, nil, err
	}
	button := fwd.Import()
	out := NewCollectionRelation(m.Variables())
	for _, u := range fwd.Entries() {
		out.Insert(value.Tuple{u.Key, u.Val}, u.Time, u.Diff)
	}
	handle := index.NewShutdownHandle()
	handle.Add(button)
	return out, handle, nil
}

func (c *Context) implementMatchEA(m MatchEA) (*CollectionRelation, *index.ShutdownHandle, error) {
	fwd, err := c.Domain.Forward(m.Aid)
	if err != nil {
		return nil, nil, err
	}
	button := fwd.Import()
	out := NewCollectionRelation(m.Variables())
	for _, ext := range fwd.Propose(m.Eid) {
		out.Insert(value.Tuple{ext.Val}, c.Now, ext.Diff)
	}
	handle := index.NewShutdownHandle()
	handle.Add(button)
	return out, handle, nil
}

func (c *Context) implementMatchAV(m MatchAV) (*CollectionRelation, *index.ShutdownHandle, error) {
	rev, err := c.Domain.Reverse(m.Aid)
	if err != nil {
		return nil, nil, err
	}
	button := rev.Import()
	out := NewCollectionRelation(m.Variables())
	for _, ext := range rev.Propose(m.Value) {
		out.Insert(value.Tuple{ext.Val}, c.Now, ext.Diff)
	}
	handle := index.NewShutdownHandle()
	handle.Add(button)
	return out, handle, nil
}

func (c *Context) implementProject(p Project) (*CollectionRelation, *index.ShutdownHandle, error) {
	input, handle, err := c.Implement(p.Input)
	if err != nil {
		return nil, nil, err
	}
	positions := make([]int, len(p.Vars))
	for i, v := range p.Vars {
		positions[i] = input.Variables().Index(v)
	}
	out := NewCollectionRelation(p.Vars)
	for _, e := range input.Entries() {
		tuple := make(value.Tuple, len(positions))
		for i, pos := range positions {
			if pos >= 0 {
				tuple[i] = e.Tuple[pos]
			}
		}
		out.Insert(tuple, e.Time, e.Diff)
	}
	return out, handle, nil
}

func (c *Context) implementUnion(u Union) (*CollectionRelation, *index.ShutdownHandle, error) {
	left, lh, err := c.Implement(u.Left)
	if err != nil {
		return nil, nil, err
	}
	right, rh, err := c.Implement(u.Right)
	if err != nil {
		return nil, nil, err
	}
	out := NewCollectionRelation(u.Variables())
	for _, e := range left.Entries() {
		out.Insert(e.Tuple, e.Time, e.Diff)
	}
	for _, e := range right.Entries() {
		out.Insert(e.Tuple, e.Time, e.Diff)
	}
	lh.Merge(rh)
	return out, lh, nil
}

func (c *Context) implementJoin(j Join) (*CollectionRelation, *index.ShutdownHandle, error) {
	left, lh, err := c.Implement(j.Left)
	if err != nil {
		return nil, nil, err
	}
	right, rh, err := c.Implement(j.Right)
	if err != nil {
		return nil, nil, err
	}
	lh.Merge(rh)

	leftVars, rightVars := left.Variables(), right.Variables()
	shared := sharedVars(leftVars, rightVars)
	rightExtra := extraPositions(leftVars, rightVars)

	out := NewCollectionRelation(j.Variables())
	for _, le := range left.Entries() {
		for _, re := range right.Entries() {
			if !matchesShared(le.Tuple, re.Tuple, shared, leftVars, rightVars) {
				continue
			}
			tuple := append(append(value.Tuple{}, le.Tuple...), pickPositions(re.Tuple, rightExtra)...)
			out.Insert(tuple, le.Time.Join(re.Time), le.Diff*re.Diff)
		}
	}
	return out, lh, nil
}

func (c *Context) implementAntijoin(a Antijoin) (*CollectionRelation, *index.ShutdownHandle, error) {
	left, lh, err := c.Implement(a.Left)
	if err != nil {
		return nil, nil, err
	}
	right, rh, err := c.Implement(a.Right)
	if err != nil {
		return nil, nil, err
	}
	lh.Merge(rh)

	leftVars, rightVars := left.Variables(), right.Variables()
	shared := sharedVars(leftVars, rightVars)
	rightPositions := positionsFor(rightVars, shared)
	leftPositions := positionsFor(leftVars, shared)

	seen := make(map[uint64]clock.Diff)
	for _, re := range right.Entries() {
		key := pickPositions(re.Tuple, rightPositions)
		seen[key.Hash()] += re.Diff
	}

	out := NewCollectionRelation(a.Variables())
	for _, le := range left.Entries() {
		key := pickPositions(le.Tuple, leftPositions)
		if seen[key.Hash()] > 0 {
			continue
		}
		out.Insert(le.Tuple, le.Time, le.Diff)
	}
	return out, lh, nil
}

func (c *Context) implementNegate(n Negate) (*CollectionRelation, *index.ShutdownHandle, error) {
	input, handle, err := c.Implement(n.Input)
	if err != nil {
		return nil, nil, err
	}
	out := NewCollectionRelation(n.Variables())
	for _, e := range input.Entries() {
		out.Insert(e.Tuple, e.Time, -e.Diff)
	}
	return out, handle, nil
}

func (c *Context) implementFilter(f Filter) (*CollectionRelation, *index.ShutdownHandle, error) {
	input, handle, err := c.Implement(f.Input)
	if err != nil {
		return nil, nil, err
	}
	out := NewCollectionRelation(f.Variables())
	for _, e := range input.Entries() {
		if f.Predicate == nil || f.Predicate(e.Tuple) {
			out.Insert(e.Tuple, e.Time, e.Diff)
		}
	}
	return out, handle, nil
}

func (c *Context) implementTransform(t Transform) (*CollectionRelation, *index.ShutdownHandle, error) {
	input, handle, err := c.Implement(t.Input)
	if err != nil {
		return nil, nil, err
	}
	out := NewCollectionRelation(t.Vars)
	for _, e := range input.Entries() {
		out.Insert(t.Func(e.Tuple), e.Time, e.Diff)
	}
	return out, handle, nil
}

func (c *Context) implementAggregate(a Aggregate) (*CollectionRelation, *index.ShutdownHandle, error) {
	input, handle, err := c.Implement(a.Input)
	if err != nil {
		return nil, nil, err
	}
	groupPositions := make([]int, len(a.GroupBy))
	for i, v := range a.GroupBy {
		groupPositions[i] = input.Variables().Index(v)
	}

	type bucket struct {
		group  value.Tuple
		values []value.Value
		time   clock.Time
	}
	buckets := make(map[uint64]*bucket)
	order := make([]uint64, 0)
	for _, e := range input.Entries() {
		group := pickPositions(e.Tuple, groupPositions)
		h := group.Hash()
		b, ok := buckets[h]
		if !ok {
			b = &bucket{group: group}
			buckets[h] = b
			order = append(order, h)
		}
		for i := int64(0); i < int64(e.Diff); i++ {
			b.values = append(b.values, e.Tuple[len(e.Tuple)-1])
		}
		if b.time.Less(e.Time) {
			b.time = e.Time
		}
	}

	out := NewCollectionRelation(a.Variables())
	for _, h := range order {
		b := buckets[h]
		result := a.Func(b.group, b.values)
		tuple := append(append(value.Tuple{}, b.group...), result)
		out.Insert(tuple, b.time, 1)
	}
	return out, handle, nil
}

func (c *Context) implementNamed(name string, vars value.VarList) (*CollectionRelation, *index.ShutdownHandle, error) {
	local, ok := c.Locals[name]
	if !ok {
		known := make([]string, 0, len(c.Locals))
		for n := range c.Locals {
			known = append(known, n)
		}
		return nil, nil, dferrors.ErrRuleNotFound.New(name, similartext.Find(known, name))
	}
	out := NewCollectionRelation(vars)
	for _, e := range local.Entries() {
		out.Insert(e.Tuple, e.Time, e.Diff)
	}
	return out, index.NewShutdownHandle(), nil
}

func (c *Context) implementHector(h Hector) (*CollectionRelation, *index.ShutdownHandle, error) {
	resolver, handle, err := c.resolverFor(h.Bindings)
	if err != nil {
		return nil, nil, err
	}
	weighted, err := hector.Execute(h.Vars, h.Bindings, resolver)
	if err != nil {
		return nil, nil, err
	}
	out := NewCollectionRelation(h.Vars)
	for _, w := range weighted {
		out.Insert(w.Tuple, c.Now, w.Diff)
	}
	return out, handle, nil
}

func (c *Context) implementPullLevel(p PullLevel) (*CollectionRelation, *index.ShutdownHandle, error) {
	input, handle, err := c.Implement(p.Input)
	if err != nil {
		return nil, nil, err
	}

	rows := make([]pull.Row, len(input.Entries()))
	for i, e := range input.Entries() {
		rows[i] = pull.Row{Tuple: e.Tuple, Time: e.Time, Diff: e.Diff}
	}

	lookup := func(aid value.Aid) (pull.ForwardIndex, error) {
		fwd, err := c.Domain.Forward(aid)
		if err != nil {
			return nil, err
		}
		handle.Add(fwd.Import())
		return forwardIndexAdapter{fwd}, nil
	}

	level := pull.Level{PullAttributes: p.PullAttributes, PathAttributes: p.PathAttributes}
	results, err := pull.Execute(rows, level, lookup)
	if err != nil {
		return nil, nil, err
	}

	out := NewCollectionRelation(p.Variables())
	for _, r := range results {
		out.Insert(r.Tuple, r.Time, r.Diff)
	}
	return out, handle, nil
}

func (c *Context) implementPull(p Pull) (*CollectionRelation, *index.ShutdownHandle, error) {
	out := NewCollectionRelation(p.Variables())
	handle := index.NewShutdownHandle()
	for _, level := range p.Paths {
		relation, h, err := c.implementPullLevel(level)
		if err != nil {
			return nil, nil, err
		}
		for _, e := range relation.Entries() {
			out.Insert(e.Tuple, e.Time, e.Diff)
		}
		handle.Merge(h)
	}
	return out, handle, nil
}

type forwardIndexAdapter struct {
	ci *index.CollectionIndex
}

func (a forwardIndexAdapter) Propose(eid value.Value) []pull.Extension {
	exts := a.ci.Propose(eid)
	out := make([]pull.Extension, len(exts))
	for i, e := range exts {
		out[i] = pull.Extension{Val: e.Val, Diff: e.Diff}
	}
	return out
}

func (a forwardIndexAdapter) Frontier() clock.Time { return a.ci.Frontier() }
