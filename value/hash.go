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

package value

import "github.com/mitchellh/hashstructure"

// hashable is the plain-data projection of a Value used for hashing;
// hashstructure needs exported fields it can walk reflectively.
type hashable struct {
	Kind Kind
	Aid  string
	Str  string
	Bool bool
	I64  int64
	RNum int32
	RDen int32
	EHi  uint64
	ELo  uint64
	Inst int64
	UUID [16]byte
	Addr []uint16
}

func (v Value) toHashable() hashable {
	h := hashable{Kind: v.kind}
	switch v.kind {
	case KindAid:
		h.Aid = string(v.aid)
	case KindString:
		h.Str = v.str
	case KindBool:
		h.Bool = v.b
	case KindInt64:
		h.I64 = v.i64
	case KindRational:
		h.RNum, h.RDen = v.rat.Num, v.rat.Den
	case KindEid:
		h.EHi, h.ELo = v.eid.Hi, v.eid.Lo
	case KindInstant:
		h.Inst = v.inst
	case KindUUID:
		copy(h.UUID[:], v.id.Bytes())
	case KindOperatorAddress:
		h.Addr = v.addr
	}
	return h
}

// Hash returns a 64-bit structural hash of v, stable across processes
// for the lifetime of a single Go release. Used to key arrangement
// buckets and to drive CardinalityMany's distinct-by-(Eid,Value) pass.
func (v Value) Hash() uint64 {
	h, err := hashstructure.Hash(v.toHashable(), nil)
	if err != nil {
		// hashstructure only errors on unsupported types; hashable is a
		// fixed plain struct, so this is unreachable.
		panic(err)
	}
	return h
}

// Hash returns a structural hash of the tuple, combining each
// column's Value.Hash with its position so permutations hash
// differently.
func (t Tuple) Hash() uint64 {
	h, err := hashstructure.Hash(hashableTuple(t), nil)
	if err != nil {
		panic(err)
	}
	return h
}

func hashableTuple(t Tuple) []hashable {
	out := make([]hashable, len(t))
	for i, v := range t {
		out[i] = v.toHashable()
	}
	return out
}
