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

// Package clock implements the totally-ordered logical-time lattice T
// that every Domain, trace, and relation in the engine advances over.
package clock

import "fmt"

// Time is a logical timestamp. The lattice is total order, so a Time
// also serves as its own frontier (a single-element antichain).
type Time int64

// Zero is the initial time every Domain starts at.
const Zero Time = 0

// Less reports whether t happens strictly before other.
func (t Time) Less(other Time) bool { return t < other }

// LessEqual reports whether t happens at or before other.
func (t Time) LessEqual(other Time) bool { return t <= other }

// Join returns the least upper bound of t and other; under total
// order this is simply the larger of the two.
func (t Time) Join(other Time) Time {
	if t < other {
		return other
	}
	return t
}

// Sub returns t minus a non-negative slack, floored at Zero so
// compaction frontiers never go negative.
func (t Time) Sub(slack Time) Time {
	if slack < 0 {
		slack = 0
	}
	if t-slack < Zero {
		return Zero
	}
	return t - slack
}

func (t Time) String() string { return fmt.Sprintf("t%d", int64(t)) }

// Diff is a signed multiplicity: +1 asserts, -1 retracts, and larger
// magnitudes represent consolidated bulk changes.
type Diff int64
