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

package hector

import (
	"github.com/dolthub/hector/clock"
	"github.com/dolthub/hector/dferrors"
	"github.com/dolthub/hector/index"
	"github.com/dolthub/hector/value"
)

type prefix struct {
	values map[value.Var]value.Value
	diff   clock.Diff
}

func (p prefix) clone() prefix {
	cp := make(map[value.Var]value.Value, len(p.values))
	for k, v := range p.values {
		cp[k] = v
	}
	return prefix{values: cp, diff: p.diff}
}

// Execute runs the generic-join delta pipeline over variables in
// order, using resolver to read each binding's count/propose/validate
// arrangements, and returns every resulting tuple with its net diff.
//
// The first variable of a connected binding graph has no already-
// bound "other" symbol to key off of, so its step is a seed: the
// binding with the smallest total extent is enumerated in full,
// fixing both of its variables' values at once. Every later variable
// is extended against bindings whose other symbol is already bound,
// using the smallest-count binding as the proposer (step 3 of the
// spec's algorithm) and every other such binding to validate (step
// 4). A variable already fixed by an earlier seed step is left alone
// when its own turn arrives.
func Execute(variables value.VarList, bindings []Binding, resolver Resolver) ([]WeightedTuple, error) {
	if len(variables) == 0 {
		return nil, nil
	}

	byVar := make(map[value.Var][]Binding, len(variables))
	for _, v := range variables {
		for _, b := range bindings {
			if _, ok := b.otherOf(v); ok {
				byVar[v] = append(byVar[v], b)
			}
		}
		if len(byVar[v]) == 0 {
			return nil, dferrors.ErrUnboundVariable.New(v)
		}
	}

	prefixes := []prefix{{values: map[value.Var]value.Value{}, diff: 1}}
	bound := make(map[value.Var]bool, len(variables))

	for _, v := range variables {
		if bound[v] {
			continue
		}

		var keyed []Binding
		for _, b := range byVar[v] {
			if other, _ := b.otherOf(v); bound[other] {
				keyed = append(keyed, b)
			}
		}

		var err error
		var seededOther value.Var
		var seeded bool
		if len(keyed) > 0 {
			prefixes, err = extendKeyed(prefixes, v, keyed, resolver)
		} else {
			prefixes, seededOther, err = seedOpen(prefixes, v, byVar[v], resolver)
			seeded = true
		}
		if err != nil {
			return nil, err
		}
		bound[v] = true
		if seeded {
			bound[seededOther] = true
		}
	}

	out := make([]WeightedTuple, 0, len(prefixes))
	for _, p := range prefixes {
		tuple := make(value.Tuple, len(variables))
		for i, v := range variables {
			tuple[i] = p.values[v]
		}
		out = append(out, WeightedTuple{Tuple: tuple, Diff: p.diff})
	}
	return out, nil
}

// extendKeyed picks the smallest-count binding in keyed as the
// proposer for each prefix, extends by its candidates, and filters the
// result through every other keyed binding's validate arrangement.
func extendKeyed(prefixes []prefix, v value.Var, keyed []Binding, resolver Resolver) ([]prefix, error) {
	var out []prefix
	for _, p := range prefixes {
		proposerIdx := -1
		var bestCount int64 = -1
		keys := make([]value.Value, len(keyed))
		for i, b := range keyed {
			other := b.keyVarFor(v)
			key := p.values[other]
			keys[i] = key
			count, err := resolver.Count(b.Source, b.keyIsEidFor(v), key)
			if err != nil {
				return nil, err
			}
			if proposerIdx == -1 || count < bestCount {
				proposerIdx, bestCount = i, count
			}
		}

		proposer := keyed[proposerIdx]
		exts, err := resolver.Propose(proposer.Source, proposer.keyIsEidFor(v), keys[proposerIdx])
		if err != nil {
			return nil, err
		}

		for _, ext := range exts {
			candidate := p.clone()
			candidate.values[v] = ext.Val
			candidate.diff *= ext.Diff

			ok := true
			for i, b := range keyed {
				if i == proposerIdx {
					continue
				}
				valid, err := resolver.Validate(b.Source, b.keyIsEidFor(v), keys[i], ext.Val)
				if err != nil {
					return nil, err
				}
				if !valid {
					ok = false
					break
				}
			}
			if ok {
				out = append(out, candidate)
			}
		}
	}
	return out, nil
}

// seedOpen is used only for a variable whose bindings have no
// already-bound other side: it enumerates every open binding's
// attribute in full, picks whichever has the fewest live entries, and
// fixes both of that binding's variables' values for every resulting
// candidate.
func seedOpen(prefixes []prefix, v value.Var, open []Binding, resolver Resolver) ([]prefix, value.Var, error) {
	bestIdx := -1
	var bestEntries []index.Update
	for i, b := range open {
		entries, err := resolver.Entries(b.Source)
		if err != nil {
			return nil, 0, err
		}
		if bestIdx == -1 || len(entries) < len(bestEntries) {
			bestIdx, bestEntries = i, entries
		}
	}
	seed := open[bestIdx]
	other := seed.keyVarFor(v)

	var out []prefix
	for _, p := range prefixes {
		for _, u := range bestEntries {
			candidate := p.clone()
			if seed.Symbols[0] == v {
				candidate.values[v] = u.Key
				candidate.values[other] = u.Val
			} else {
				candidate.values[v] = u.Val
				candidate.values[other] = u.Key
			}
			candidate.diff *= u.Diff
			out = append(out, candidate)
		}
	}
	return out, other, nil
}
