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
	"sort"

	"github.com/dolthub/hector/clock"
	"github.com/dolthub/hector/value"
)

// Entry is one (tuple, time, diff) triple, the unit of a
// CollectionRelation's contents and of everything streamed to a
// subscriber (spec §2: "Subscribers receive a stream of (tuple, time,
// diff) updates").
type Entry struct {
	Tuple value.Tuple
	Time  clock.Time
	Diff  clock.Diff
}

// CollectionRelation is the in-memory stand-in for a differential
// dataflow collection: every operator's implement step produces one,
// tagged with the variable list its tuple positions are named
// against. It keeps its full history (so time-ranged queries and the
// "no net change" round-trip property in spec §8 can be checked);
// consolidated views are computed from that history on each request.
type CollectionRelation struct {
	vars    value.VarList
	entries []Entry
}

// NewCollectionRelation returns an empty relation over vars.
func NewCollectionRelation(vars value.VarList) *CollectionRelation {
	return &CollectionRelation{vars: vars}
}

// Variables reports the variable list this relation's tuples are
// positioned against.
func (r *CollectionRelation) Variables() value.VarList { return r.vars }

// Insert appends one entry to the relation's history.
func (r *CollectionRelation) Insert(tuple value.Tuple, t clock.Time, diff clock.Diff) {
	r.entries = append(r.entries, Entry{Tuple: tuple.Clone(), Time: t, Diff: diff})
}

// Entries returns the full, unconsolidated history.
func (r *CollectionRelation) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Consolidated returns one entry per distinct (tuple, time) pair,
// with diffs summed and zero-multiplicity pairs dropped — the
// "consolidated before the frontier passes t" guarantee from spec §5.
func (r *CollectionRelation) Consolidated() []Entry {
	type key struct {
		h uint64
		t clock.Time
	}
	sums := make(map[key]Entry)
	order := make([]key, 0, len(r.entries))
	for _, e := range r.entries {
		k := key{h: e.Tuple.Hash(), t: e.Time}
		cur, ok := sums[k]
		if !ok {
			order = append(order, k)
			sums[k] = Entry{Tuple: e.Tuple, Time: e.Time, Diff: e.Diff}
			continue
		}
		cur.Diff += e.Diff
		sums[k] = cur
	}

	out := make([]Entry, 0, len(order))
	for _, k := range order {
		e := sums[k]
		if e.Diff == 0 {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].Tuple.Compare(out[j].Tuple) < 0
	})
	return out
}

// AsOf returns the consolidated net-positive tuples visible at or
// before t, collapsing time (the "current answer set" view a fresh
// Interest subscriber sees).
func (r *CollectionRelation) AsOf(t clock.Time) []value.Tuple {
	type key struct{ h uint64 }
	net := make(map[uint64]clock.Diff)
	first := make(map[uint64]value.Tuple)
	order := make([]uint64, 0)
	for _, e := range r.entries {
		if t.Less(e.Time) {
			continue
		}
		h := e.Tuple.Hash()
		if _, ok := net[h]; !ok {
			order = append(order, h)
			first[h] = e.Tuple
		}
		net[h] += e.Diff
	}
	var out []value.Tuple
	for _, h := range order {
		if net[h] > 0 {
			out = append(out, first[h])
		}
	}
	return out
}

// Distinct collapses every tuple's history into at most one assertion
// per tuple, dropping the multiplicity entirely (set semantics, per
// the lowering step 6 "distinct (if set-semantics is requested)").
func (r *CollectionRelation) Distinct() *CollectionRelation {
	seen := make(map[uint64]bool)
	out := NewCollectionRelation(r.vars)
	for _, e := range r.Consolidated() {
		h := e.Tuple.Hash()
		if e.Diff <= 0 || seen[h] {
			continue
		}
		seen[h] = true
		out.Insert(e.Tuple, e.Time, 1)
	}
	return out
}
