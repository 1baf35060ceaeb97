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

package domain

import (
	"sync"

	"github.com/dolthub/hector/clock"
	"github.com/dolthub/hector/index"
	"github.com/dolthub/hector/value"
)

// ingestSession is the single-writer front door for one attribute. It
// buffers raw (diff, Eid, Value) submissions and, on AdvanceTo, folds
// them into index.Update values according to the attribute's
// InputSemantics. Enforcing "one worker owns write capability for
// each attribute" (spec §9) is the caller's job: Domain serializes all
// Transact calls for a given Aid through this session's mutex, which
// makes the ordering observable rather than racy, but callers should
// still partition writes by Eid upstream as the spec instructs.
type ingestSession struct {
	aid       value.Aid
	semantics InputSemantics

	mu sync.Mutex

	// Raw / CardinalityMany: queued updates awaiting the next flush.
	pending []index.Update

	// CardinalityMany: net multiplicity this session has already
	// forwarded for each (Eid,Value) pair, so redundant asserts don't
	// bias prefix counts (spec §4.2).
	forwarded map[uint64]clock.Diff

	// CardinalityOne: committed current value per Eid, and the
	// buffered next value awaiting its flush.
	current map[uint64]value.Value
	next    map[uint64]cardinalityOneNext

	closed bool
}

type cardinalityOneNext struct {
	eid, val value.Value
	time     clock.Time
}

func newIngestSession(aid value.Aid, semantics InputSemantics) *ingestSession {
	return &ingestSession{
		aid:       aid,
		semantics: semantics,
		forwarded: make(map[uint64]clock.Diff),
		current:   make(map[uint64]value.Value),
		next:      make(map[uint64]cardinalityOneNext),
	}
}

func pairHash(a, b value.Value) uint64 {
	return value.Tuple{a, b}.Hash()
}

// submit buffers one raw update for the next flush.
func (s *ingestSession) submit(diff clock.Diff, eid, val value.Value, t clock.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.semantics {
	case Raw:
		s.pending = append(s.pending, index.Update{Key: eid, Val: val, Time: t, Diff: diff})

	case CardinalityMany:
		key := pairHash(eid, val)
		net := s.forwarded[key]
		switch {
		case diff > 0 && net <= 0:
			s.pending = append(s.pending, index.Update{Key: eid, Val: val, Time: t, Diff: 1})
			s.forwarded[key] = 1
		case diff < 0 && net > 0:
			s.pending = append(s.pending, index.Update{Key: eid, Val: val, Time: t, Diff: -1})
			s.forwarded[key] = 0
		}
		// Duplicate asserts/retracts that would not change the net
		// multiplicity are dropped, which is the point of the
		// distinctness pass.

	case CardinalityOne:
		key := eid.Hash()
		existing, ok := s.next[key]
		if !ok || existing.time.LessEqual(t) {
			s.next[key] = cardinalityOneNext{eid: eid, val: val, time: t}
		}
	}
}

// flush folds buffered submissions into index.Updates as of time t,
// clearing the buffer. Raw and CardinalityMany simply drain what was
// queued; CardinalityOne retracts the previous current value and
// asserts the new one for every Eid whose next value is ready.
func (s *ingestSession) flush(t clock.Time) []index.Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.semantics {
	case Raw, CardinalityMany:
		out := s.pending
		s.pending = nil
		return out

	case CardinalityOne:
		var out []index.Update
		for key, n := range s.next {
			if t.Less(n.time) {
				continue
			}
			if cur, ok := s.current[key]; ok {
				out = append(out, index.Update{Key: n.eid, Val: cur, Time: n.time, Diff: -1})
			}
			out = append(out, index.Update{Key: n.eid, Val: n.val, Time: n.time, Diff: 1})
			s.current[key] = n.val
			delete(s.next, key)
		}
		return out

	default:
		return nil
	}
}

func (s *ingestSession) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *ingestSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
