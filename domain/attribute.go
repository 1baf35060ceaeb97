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

import "github.com/dolthub/hector/clock"

// InputSemantics controls how an ingest session folds raw datoms
// into the attribute's traces (spec §4.2).
type InputSemantics int

const (
	// Raw passes updates through unchanged; the client is responsible
	// for dedup and cardinality.
	Raw InputSemantics = iota
	// CardinalityMany applies distinctness per (Eid, Value) so
	// redundant asserts cannot bias prefix counts.
	CardinalityMany
	// CardinalityOne enforces at most one value per Eid per logical
	// time, retracting the previous value when a new one arrives.
	CardinalityOne
)

func (s InputSemantics) String() string {
	switch s {
	case Raw:
		return "Raw"
	case CardinalityMany:
		return "CardinalityMany"
	case CardinalityOne:
		return "CardinalityOne"
	default:
		return "Unknown"
	}
}

// Config holds an attribute's ingest and compaction configuration.
type Config struct {
	// InputSemantics selects how raw datoms are folded before indexing.
	InputSemantics InputSemantics
	// TraceSlack, if non-nil, bounds compaction lag: the attribute's
	// traces are advanced to now_at - *TraceSlack at each domain tick,
	// instead of all the way to now_at.
	TraceSlack *clock.Time
}

// compactionFrontier computes the frontier this attribute's traces
// should be advanced to for a domain currently at nowAt.
func (c Config) compactionFrontier(nowAt clock.Time) clock.Time {
	if c.TraceSlack == nil {
		return nowAt
	}
	return nowAt.Sub(*c.TraceSlack)
}
