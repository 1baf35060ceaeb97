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

package pull

import (
	"github.com/dolthub/hector/clock"
	"github.com/dolthub/hector/dferrors"
	"github.com/dolthub/hector/value"
)

// ForwardIndex is the slice of a CollectionIndex that a PullLevel
// actually needs: the propose arrangement of one attribute's forward
// index, plus the frontier it was imported at, so historical values
// are not replayed after compaction (the enter_at pattern, spec
// §4.5).
type ForwardIndex interface {
	Propose(eid value.Value) []Extension
	Frontier() clock.Time
}

// Extension is one (Value, Diff) pair proposed for a given Eid.
type Extension struct {
	Val  value.Value
	Diff clock.Diff
}

// IndexLookup resolves an attribute name to its forward index, or
// reports not-found for an attribute the context doesn't know about.
type IndexLookup func(aid value.Aid) (ForwardIndex, error)

// Level holds everything PullLevel needs to expand one input tuple
// set: the input entity tuples (whose last column must be an Eid),
// the attributes to pull off each entity, and the path labels to
// interleave into the output.
type Level struct {
	PullAttributes []value.Aid
	PathAttributes []value.Aid
}

// Row is one input tuple together with the logical time and diff it
// carries into the pull (so multiplicities survive the expansion).
type Row struct {
	Tuple value.Tuple
	Time  clock.Time
	Diff  clock.Diff
}

// Result is one emitted pulled tuple: interleave(input, path) ++
// [Aid, Value], with the time and diff of whichever input row and
// attribute extension produced it.
type Result struct {
	Tuple value.Tuple
	Time  clock.Time
	Diff  clock.Diff
}

// Execute implements one PullLevel (spec §4.5): for every input row,
// and for every pulled attribute, interleave the row's tuple with the
// path labels and append [Aid, Value] for each live (Eid, Value) the
// attribute's forward propose arrangement returns for that row's
// entity.
//
// When PullAttributes is empty, the level degenerates to interleaving
// the path labels alone (or passing rows through untouched if
// PathAttributes is empty too), matching the "nothing to pull" branch
// of the original implementation.
func Execute(rows []Row, level Level, lookup IndexLookup) ([]Result, error) {
	if len(level.PullAttributes) == 0 {
		out := make([]Result, len(rows))
		for i, r := range rows {
			out[i] = Result{Tuple: interleave(r.Tuple, level.PathAttributes), Time: r.Time, Diff: r.Diff}
		}
		return out, nil
	}

	var out []Result
	for _, aid := range level.PullAttributes {
		idx, err := lookup(aid)
		if err != nil {
			return nil, dferrors.ErrAttributeNotFound.New(aid)
		}
		attrValue := value.NewAid(aid)
		frontier := idx.Frontier()

		for _, r := range rows {
			if len(r.Tuple) == 0 {
				continue
			}
			entity := r.Tuple[len(r.Tuple)-1]
			path := interleave(r.Tuple, level.PathAttributes)
			for _, ext := range idx.Propose(entity) {
				tuple := make(value.Tuple, 0, len(path)+2)
				tuple = append(tuple, path...)
				tuple = append(tuple, attrValue, ext.Val)
				out = append(out, Result{Tuple: tuple, Time: r.Time.Join(frontier), Diff: r.Diff * ext.Diff})
			}
		}
	}
	return out, nil
}
