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
	"sync/atomic"

	"github.com/dolthub/hector/clock"
	"github.com/dolthub/hector/value"
)

// CollectionIndex is the count/propose/validate triplet for one
// direction of an attribute's updates: a forward index has Key=Eid,
// Val=Value; a reverse index has Key=Value, Val=Eid, built from the
// same underlying Trace by swapping columns on write and on read.
type CollectionIndex struct {
	trace       *Trace
	reverse     bool
	liveImports int32
}

// NewForward builds a forward (Key=Eid, Val=Value) index over trace.
func NewForward(trace *Trace) *CollectionIndex {
	return &CollectionIndex{trace: trace}
}

// NewReverse builds a reverse (Key=Value, Val=Eid) index over the
// same trace a forward index was built from.
func NewReverse(trace *Trace) *CollectionIndex {
	return &CollectionIndex{trace: trace, reverse: true}
}

// Insert records one (Eid, Value) update, orienting it for whichever
// direction this index presents.
func (ci *CollectionIndex) Insert(eid, val value.Value, u Update) {
	if ci.reverse {
		ci.trace.insertReverse(Update{Key: val, Val: eid, Time: u.Time, Diff: u.Diff})
	} else {
		ci.trace.Insert(Update{Key: eid, Val: val, Time: u.Time, Diff: u.Diff})
	}
}

// Count answers the "count" arrangement for key. A reverse index
// counts by the Val column of the shared trace, so it works whether
// or not the complementary orientation was separately inserted.
func (ci *CollectionIndex) Count(key value.Value) int64 {
	if ci.reverse {
		return ci.trace.CountByVal(key)
	}
	return ci.trace.Count(key)
}

// Propose answers the "propose" arrangement for key, reading by Val
// for a reverse index for the same reason Count does.
func (ci *CollectionIndex) Propose(key value.Value) []Extension {
	if ci.reverse {
		return ci.trace.ProposeByVal(key)
	}
	return ci.trace.Propose(key)
}

// Validate answers the "validate" arrangement for (key, val). A
// reverse index's (key, val) is (Value, Eid); the trace only ever
// stores the forward (Eid, Value) ordering for a given pair, so the
// lookup swaps back before delegating.
func (ci *CollectionIndex) Validate(key, val value.Value) bool {
	if ci.reverse {
		return ci.trace.Validate(val, key) > 0
	}
	return ci.trace.Validate(key, val) > 0
}

// Entries returns every live (Key, Val) pair in this index's
// orientation.
func (ci *CollectionIndex) Entries() []Update {
	if ci.reverse {
		return ci.trace.EntriesReverse()
	}
	return ci.trace.Entries()
}

// Frontier reports the backing trace's compaction frontier.
func (ci *CollectionIndex) Frontier() clock.Time { return ci.trace.Frontier() }

// AdvanceUnderlyingTrace advances the shared trace's compaction
// frontier to t. Forward and reverse indices built over the same
// trace (NewForward/NewReverse) observe the same advance regardless
// of which one calls this.
func (ci *CollectionIndex) AdvanceUnderlyingTrace(t clock.Time) { ci.trace.AdvanceTo(t) }

// Import registers a new live import of this index (a plan's
// reference to it while lowering) and returns the shutdown button
// that releases it. LiveImports reports how many imports are
// currently outstanding, used by the bounded-teardown test in §8.
func (ci *CollectionIndex) Import() *ShutdownButton {
	atomic.AddInt32(&ci.liveImports, 1)
	return NewShutdownButton(func() {
		atomic.AddInt32(&ci.liveImports, -1)
	})
}

// LiveImports reports the number of outstanding, unpressed imports.
func (ci *CollectionIndex) LiveImports() int32 {
	return atomic.LoadInt32(&ci.liveImports)
}
