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

// Package value implements the tagged-sum value type shared by every
// attribute, plan, and wire frame in the engine.
package value

import (
	"fmt"

	uuid "github.com/satori/go.uuid"
	"github.com/spf13/cast"
)

// Kind identifies which variant of the tagged sum a Value holds.
type Kind uint8

const (
	// KindAid holds an attribute identifier.
	KindAid Kind = iota
	// KindString holds a UTF-8 string.
	KindString
	// KindBool holds a boolean.
	KindBool
	// KindInt64 holds a 64-bit signed integer.
	KindInt64
	// KindRational holds a 32-bit rational (numerator/denominator).
	KindRational
	// KindEid holds an entity identifier.
	KindEid
	// KindInstant holds milliseconds since the Unix epoch.
	KindInstant
	// KindUUID holds a 16-byte UUID.
	KindUUID
	// KindOperatorAddress holds a sequence of small naturals naming a
	// sub-plan.
	KindOperatorAddress
)

func (k Kind) String() string {
	switch k {
	case KindAid:
		return "Aid"
	case KindString:
		return "String"
	case KindBool:
		return "Bool"
	case KindInt64:
		return "Int64"
	case KindRational:
		return "Rational"
	case KindEid:
		return "Eid"
	case KindInstant:
		return "Instant"
	case KindUUID:
		return "UUID"
	case KindOperatorAddress:
		return "OperatorAddress"
	default:
		return "Unknown"
	}
}

// Rational is an exact 32-bit rational number. Kept distinct from
// Int64 on purpose: boxing both into a single "number" bucket would
// erase a semantic distinction callers rely on (see spec DESIGN NOTES).
type Rational struct {
	Num, Den int32
}

// Value is a totally ordered, hashable tagged sum. The zero Value is
// not meaningful; always construct with one of the New* functions.
type Value struct {
	kind  Kind
	aid   Aid
	str   string
	b     bool
	i64   int64
	rat   Rational
	eid   Eid
	inst  int64
	id    uuid.UUID
	addr  []uint16
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// NewAid wraps an attribute identifier in a Value.
func NewAid(a Aid) Value { return Value{kind: KindAid, aid: a} }

// NewString wraps a string in a Value.
func NewString(s string) Value { return Value{kind: KindString, str: s} }

// NewBool wraps a bool in a Value.
func NewBool(b bool) Value { return Value{kind: KindBool, b: b} }

// NewInt64 wraps an int64 in a Value.
func NewInt64(i int64) Value { return Value{kind: KindInt64, i64: i} }

// NewRational wraps a rational number in a Value.
func NewRational(num, den int32) Value { return Value{kind: KindRational, rat: Rational{num, den}} }

// NewEid wraps an entity identifier in a Value.
func NewEid(e Eid) Value { return Value{kind: KindEid, eid: e} }

// NewInstant wraps milliseconds-since-epoch in a Value.
func NewInstant(ms int64) Value { return Value{kind: KindInstant, inst: ms} }

// NewUUID wraps a 16-byte UUID in a Value.
func NewUUID(id uuid.UUID) Value { return Value{kind: KindUUID, id: id} }

// NewOperatorAddress wraps a sub-plan address in a Value.
func NewOperatorAddress(addr []uint16) Value {
	cp := make([]uint16, len(addr))
	copy(cp, addr)
	return Value{kind: KindOperatorAddress, addr: cp}
}

// AsAid returns the Aid payload, panicking if v is not a KindAid.
func (v Value) AsAid() Aid {
	v.mustBe(KindAid)
	return v.aid
}

// AsString returns the string payload, panicking if v is not a KindString.
func (v Value) AsString() string {
	v.mustBe(KindString)
	return v.str
}

// AsBool returns the bool payload, panicking if v is not a KindBool.
func (v Value) AsBool() bool {
	v.mustBe(KindBool)
	return v.b
}

// AsInt64 returns the payload coerced to int64 via spf13/cast,
// accepting Int64 and Instant (the two integral kinds) directly.
func (v Value) AsInt64() int64 {
	switch v.kind {
	case KindInt64:
		return v.i64
	case KindInstant:
		return v.inst
	default:
		i, err := cast.ToInt64E(v.str)
		if err != nil {
			panic(fmt.Sprintf("value: cannot coerce %s to int64", v.kind))
		}
		return i
	}
}

// AsRational returns the rational payload, panicking if v is not a KindRational.
func (v Value) AsRational() Rational {
	v.mustBe(KindRational)
	return v.rat
}

// AsEid returns the Eid payload, panicking if v is not a KindEid.
func (v Value) AsEid() Eid {
	v.mustBe(KindEid)
	return v.eid
}

// AsInstant returns milliseconds since epoch, panicking if v is not a KindInstant.
func (v Value) AsInstant() int64 {
	v.mustBe(KindInstant)
	return v.inst
}

// AsUUID returns the UUID payload, panicking if v is not a KindUUID.
func (v Value) AsUUID() uuid.UUID {
	v.mustBe(KindUUID)
	return v.id
}

// AsOperatorAddress returns the operator address payload, panicking if
// v is not a KindOperatorAddress.
func (v Value) AsOperatorAddress() []uint16 {
	v.mustBe(KindOperatorAddress)
	return v.addr
}

func (v Value) mustBe(k Kind) {
	if v.kind != k {
		panic(fmt.Sprintf("value: expected %s, found %s", k, v.kind))
	}
}

// String renders v for logging and tree-printing.
func (v Value) String() string {
	switch v.kind {
	case KindAid:
		return string(v.aid)
	case KindString:
		return fmt.Sprintf("%q", v.str)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt64:
		return fmt.Sprintf("%d", v.i64)
	case KindRational:
		return fmt.Sprintf("%d/%d", v.rat.Num, v.rat.Den)
	case KindEid:
		return v.eid.String()
	case KindInstant:
		return fmt.Sprintf("#instant[%d]", v.inst)
	case KindUUID:
		return v.id.String()
	case KindOperatorAddress:
		return fmt.Sprintf("%v", v.addr)
	default:
		return "<invalid value>"
	}
}

// Equal reports structural equality between v and other.
func (v Value) Equal(other Value) bool {
	return v.Compare(other) == 0
}

// Compare implements the total order over Value required by the
// spec: values are first ordered by Kind, then by payload within a
// kind. This is the ordering used for index keys and for
// deterministic rendering of plan output.
func (v Value) Compare(other Value) int {
	if v.kind != other.kind {
		if v.kind < other.kind {
			return -1
		}
		return 1
	}
	switch v.kind {
	case KindAid:
		return compareString(string(v.aid), string(other.aid))
	case KindString:
		return compareString(v.str, other.str)
	case KindBool:
		return compareBool(v.b, other.b)
	case KindInt64:
		return compareInt64(v.i64, other.i64)
	case KindRational:
		lhs := int64(v.rat.Num) * int64(other.rat.Den)
		rhs := int64(other.rat.Num) * int64(v.rat.Den)
		return compareInt64(lhs, rhs)
	case KindEid:
		return v.eid.Compare(other.eid)
	case KindInstant:
		return compareInt64(v.inst, other.inst)
	case KindUUID:
		return compareBytes(v.id.Bytes(), other.id.Bytes())
	case KindOperatorAddress:
		return compareUint16Slice(v.addr, other.addr)
	default:
		return 0
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return compareInt64(int64(len(a)), int64(len(b)))
}

func compareUint16Slice(a, b []uint16) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return compareInt64(int64(len(a)), int64(len(b)))
}
