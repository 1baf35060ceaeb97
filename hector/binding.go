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

// Package hector implements the worst-case-optimal generic-join delta
// pipeline: given a variable order and a set of attribute bindings
// over shared variables, it extends tuple prefixes one variable at a
// time using count/propose/validate arrangements, always materializing
// candidates from the binding with the smallest live count.
package hector

import (
	"fmt"

	"github.com/dolthub/hector/clock"
	"github.com/dolthub/hector/index"
	"github.com/dolthub/hector/value"
)

// Binding is "attribute source yields pairs for these two variables"
// (spec §3). Symbols[0] is the Eid-side variable, Symbols[1] the
// value-side variable; Resolver calls are told which side the key
// they're given plays, so they can pick the forward or reverse
// arrangement accordingly.
type Binding struct {
	Symbols [2]value.Var
	Source  value.Aid
}

func (b Binding) String() string {
	return fmt.Sprintf("%v-%s-%v", b.Symbols[0], b.Source, b.Symbols[1])
}

// otherOf returns the binding's variable that is not v, and whether v
// actually appears in this binding.
func (b Binding) otherOf(v value.Var) (value.Var, bool) {
	switch {
	case b.Symbols[0] == v:
		return b.Symbols[1], true
	case b.Symbols[1] == v:
		return b.Symbols[0], true
	default:
		return 0, false
	}
}

// keyVarFor returns the variable this binding reads its key from when
// extending variable v — the binding's *other* variable, since that
// is the one already present in the prefix.
func (b Binding) keyVarFor(v value.Var) value.Var {
	other, _ := b.otherOf(v)
	return other
}

// keyIsEidFor reports whether the key this binding reads when
// extending v comes from the Eid-side symbol (Symbols[0]), meaning
// Resolver should consult the forward (Eid -> Value) arrangement
// rather than the reverse one.
func (b Binding) keyIsEidFor(v value.Var) bool {
	other, _ := b.otherOf(v)
	return other == b.Symbols[0]
}

// Resolver is the index-access surface Execute needs for one
// attribute binding's arrangements. A plan.Context adapts a Domain's
// forward/reverse CollectionIndex pair, or a rule's in-scope
// recursive variable, to this interface.
type Resolver interface {
	// Count answers the count arrangement's cardinality for key, read
	// from the forward arrangement if keyIsEid, else the reverse one.
	Count(source value.Aid, keyIsEid bool, key value.Value) (int64, error)
	// Propose answers the propose arrangement's extensions for key.
	Propose(source value.Aid, keyIsEid bool, key value.Value) ([]index.Extension, error)
	// Validate answers the validate arrangement's membership test,
	// where val is always the value found on the opposite side of key.
	Validate(source value.Aid, keyIsEid bool, key, val value.Value) (bool, error)
	// Entries enumerates every live (Eid, Value) pair of source,
	// forward-oriented, for use as the seed step of the first variable
	// in a binding graph, which has no already-bound key to extend from.
	Entries(source value.Aid) ([]index.Update, error)
}

// WeightedTuple is one row of a Hector result, still carrying its
// multiplicity so callers can consolidate or filter by sign.
type WeightedTuple struct {
	Tuple value.Tuple
	Diff  clock.Diff
}
