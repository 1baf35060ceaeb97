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

package index

import (
	"sync"

	"github.com/dolthub/hector/clock"
	"github.com/dolthub/hector/value"
)

// Update is one (diff, Key, Val) change at a logical time, the
// building block every trace in the engine is made of.
type Update struct {
	Key, Val value.Value
	Time     clock.Time
	Diff     clock.Diff
}

type pairKey struct {
	key, val uint64
}

type cell struct {
	key, val value.Value
	diff     clock.Diff
	reverse  bool
}

// Trace is a time-varying multiset of (Key, Val) pairs. It keeps a
// full history of updates for subscriber replay, and a materialized,
// frontier-consolidated view used to answer Count/Propose/Validate
// queries during join evaluation and pull traversal. byKey and byVal
// index the same cells by each column, so a CollectionIndex can answer
// either orientation from whichever physical row was actually written
// (spec §8: forward and reverse indices agree with (e,v) swapped).
//
// distinguish_since(&[]) at creation (spec §3) means a fresh Trace
// never collapses historical distinctions on its own; only AdvanceTo
// consolidates, and only up to the frontier it is given.
type Trace struct {
	mu       sync.Mutex
	frontier clock.Time
	history  []Update
	current  map[pairKey]*cell
	byKey    map[uint64][]*cell
	byVal    map[uint64][]*cell
}

// NewTrace returns an empty trace at time Zero.
func NewTrace() *Trace {
	return &Trace{
		current: make(map[pairKey]*cell),
		byKey:   make(map[uint64][]*cell),
		byVal:   make(map[uint64][]*cell),
	}
}

// Insert applies u to the trace: it is always recorded in history,
// and folded into the consolidated view.
func (tr *Trace) Insert(u Update) {
	tr.insert(u, false)
}

// insertReverse is Insert for a row written by a reverse
// CollectionIndex (Key=Value, Val=Eid). It is tagged so Entries can
// tell a genuinely reverse-oriented row apart from a forward one
// sharing the same trace.
func (tr *Trace) insertReverse(u Update) {
	tr.insert(u, true)
}

func (tr *Trace) insert(u Update, reverse bool) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	tr.history = append(tr.history, u)

	pk := pairKey{key: u.Key.Hash(), val: u.Val.Hash()}
	c, ok := tr.current[pk]
	if !ok {
		c = &cell{key: u.Key, val: u.Val, reverse: reverse}
		tr.current[pk] = c
		tr.byKey[pk.key] = append(tr.byKey[pk.key], c)
		tr.byVal[pk.val] = append(tr.byVal[pk.val], c)
	}
	c.diff += u.Diff
}

// AdvanceTo moves the trace's compaction frontier forward. Entries
// whose net multiplicity has fallen to zero are pruned from the
// materialized view; it is an error (caller's responsibility, not
// this method's) to call AdvanceTo with a time before the current
// frontier.
func (tr *Trace) AdvanceTo(t clock.Time) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.frontier = t

	for pk, c := range tr.current {
		if c.diff == 0 {
			delete(tr.current, pk)
		}
	}
	compact(tr.byKey)
	compact(tr.byVal)
}

func compact(idx map[uint64][]*cell) {
	for k, cells := range idx {
		kept := cells[:0]
		for _, c := range cells {
			if c.diff != 0 {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			delete(idx, k)
		} else {
			idx[k] = kept
		}
	}
}

// Frontier returns the trace's current compaction frontier.
func (tr *Trace) Frontier() clock.Time {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.frontier
}

// Count returns the net multiplicity summed across every Val paired
// with key in the consolidated view — the "count" arrangement.
func (tr *Trace) Count(key value.Value) int64 {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	var total int64
	for _, c := range tr.byKey[key.Hash()] {
		if c.diff > 0 {
			total += int64(c.diff)
		}
	}
	return total
}

// CountByVal is Count indexed by the Val column instead of Key, used
// to answer a reverse index's "count" arrangement from a row that was
// only ever written in forward orientation.
func (tr *Trace) CountByVal(val value.Value) int64 {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	var total int64
	for _, c := range tr.byVal[val.Hash()] {
		if c.diff > 0 {
			total += int64(c.diff)
		}
	}
	return total
}

// Extension is one (Val, multiplicity) pair produced by the
// "propose" arrangement when extending a prefix bound to key.
type Extension struct {
	Val  value.Value
	Diff clock.Diff
}

// Propose returns every Val paired with key that currently has
// positive net multiplicity — the "propose" arrangement.
func (tr *Trace) Propose(key value.Value) []Extension {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	cells := tr.byKey[key.Hash()]
	out := make([]Extension, 0, len(cells))
	for _, c := range cells {
		if c.diff > 0 {
			out = append(out, Extension{Val: c.val, Diff: c.diff})
		}
	}
	return out
}

// ProposeByVal is Propose indexed by the Val column, extending a
// prefix bound to val with the paired Key — a reverse index's
// "propose" arrangement.
func (tr *Trace) ProposeByVal(val value.Value) []Extension {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	cells := tr.byVal[val.Hash()]
	out := make([]Extension, 0, len(cells))
	for _, c := range cells {
		if c.diff > 0 {
			out = append(out, Extension{Val: c.key, Diff: c.diff})
		}
	}
	return out
}

// Validate returns the net multiplicity of the (key, val) pair, or 0
// if it is absent — the "validate" arrangement.
func (tr *Trace) Validate(key, val value.Value) clock.Diff {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	pk := pairKey{key: key.Hash(), val: val.Hash()}
	if c, ok := tr.current[pk]; ok {
		return c.diff
	}
	return 0
}

// Entries returns every (Key, Val) pair with positive net
// multiplicity, used by full scans (MatchA with an unbound entity,
// PullLevel's propose-all-values-for-attribute traversal). Rows
// written through a reverse CollectionIndex are skipped: their Key
// and Val are already swapped relative to the forward orientation
// Entries reports in, and domain.AdvanceTo writes both orientations
// into the same trace, so reporting both would double every datom.
func (tr *Trace) Entries() []Update {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	out := make([]Update, 0, len(tr.current))
	for _, c := range tr.current {
		if c.diff > 0 && !c.reverse {
			out = append(out, Update{Key: c.key, Val: c.val, Time: tr.frontier, Diff: c.diff})
		}
	}
	return out
}

// EntriesReverse is Entries for a reverse CollectionIndex: it reports
// only rows written in reverse orientation, with Key and Val already
// swapped (Key=Value, Val=Eid).
func (tr *Trace) EntriesReverse() []Update {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	out := make([]Update, 0, len(tr.current))
	for _, c := range tr.current {
		if c.diff > 0 && c.reverse {
			out = append(out, Update{Key: c.key, Val: c.val, Time: tr.frontier, Diff: c.diff})
		}
	}
	return out
}

// History returns every update ever inserted, in insertion order, for
// subscriber replay starting from a given time.
func (tr *Trace) History() []Update {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]Update, len(tr.history))
	copy(out, tr.history)
	return out
}
