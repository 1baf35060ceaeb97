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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/hector/clock"
	"github.com/dolthub/hector/dferrors"
	"github.com/dolthub/hector/value"
)

func eid(i uint64) value.Value { return value.NewEid(value.EidFromUint64(i)) }

// TestCardinalityOneOverwriteWithinSameBatch reproduces scenario 2:
// +[100,"A"]@0, then -[100,"A"]@1 and +[100,"B"]@1 land in the same
// advance. The retraction-then-assert at t1 should leave "B" as the
// sole live value, never surfacing "A" and "B" together.
func TestCardinalityOneOverwriteWithinSameBatch(t *testing.T) {
	d := New(nil)
	require.NoError(t, d.CreateAttribute("person/name", Config{InputSemantics: CardinalityOne}))

	require.NoError(t, d.Transact([]Datom{
		{Diff: 1, Eid: eid(100), Aid: "person/name", Val: value.NewString("A")},
	}))
	require.NoError(t, d.AdvanceTo(1))

	require.NoError(t, d.Transact([]Datom{
		{Diff: -1, Eid: eid(100), Aid: "person/name", Val: value.NewString("A")},
		{Diff: 1, Eid: eid(100), Aid: "person/name", Val: value.NewString("B")},
	}))
	require.NoError(t, d.AdvanceTo(2))

	fwd, err := d.Forward("person/name")
	require.NoError(t, err)

	require.True(t, fwd.Validate(eid(100), value.NewString("B")))
	require.False(t, fwd.Validate(eid(100), value.NewString("A")))
	require.EqualValues(t, 1, fwd.Count(eid(100)))
}

func TestCardinalityOneLastWriteByArrivalOrderWins(t *testing.T) {
	d := New(nil)
	require.NoError(t, d.CreateAttribute("person/name", Config{InputSemantics: CardinalityOne}))

	require.NoError(t, d.Transact([]Datom{
		{Diff: 1, Eid: eid(1), Aid: "person/name", Val: value.NewString("first")},
		{Diff: 1, Eid: eid(1), Aid: "person/name", Val: value.NewString("second")},
	}))
	require.NoError(t, d.AdvanceTo(1))

	fwd, err := d.Forward("person/name")
	require.NoError(t, err)
	require.True(t, fwd.Validate(eid(1), value.NewString("second")))
	require.EqualValues(t, 1, fwd.Count(eid(1)))
}

func TestCreateAttributeRejectsDuplicate(t *testing.T) {
	d := New(nil)
	require.NoError(t, d.CreateAttribute("edge", Config{InputSemantics: Raw}))
	err := d.CreateAttribute("edge", Config{InputSemantics: Raw})
	require.Error(t, err)
	require.Equal(t, dferrors.Conflict, dferrors.CategoryOf(err))
}

func TestAdvanceToRejectsRewind(t *testing.T) {
	d := New(nil)
	require.NoError(t, d.AdvanceTo(5))
	err := d.AdvanceTo(3)
	require.Error(t, err)
	require.Equal(t, dferrors.Conflict, dferrors.CategoryOf(err))
}

func TestTransactUnknownAttributeIsNotFound(t *testing.T) {
	d := New(nil)
	err := d.Transact([]Datom{{Diff: 1, Eid: eid(1), Aid: "missing", Val: value.NewInt64(1)}})
	require.Error(t, err)
	require.Equal(t, dferrors.NotFound, dferrors.CategoryOf(err))
}

func TestCardinalityManySuppressesRedundantAssert(t *testing.T) {
	d := New(nil)
	require.NoError(t, d.CreateAttribute("tag", Config{InputSemantics: CardinalityMany}))

	require.NoError(t, d.Transact([]Datom{
		{Diff: 1, Eid: eid(1), Aid: "tag", Val: value.NewString("x")},
		{Diff: 1, Eid: eid(1), Aid: "tag", Val: value.NewString("x")},
	}))
	require.NoError(t, d.AdvanceTo(1))

	fwd, err := d.Forward("tag")
	require.NoError(t, err)
	require.EqualValues(t, 1, fwd.Count(eid(1)))
}

func TestCloseInputFlushesThenStopsAccepting(t *testing.T) {
	d := New(nil)
	require.NoError(t, d.CreateAttribute("tag", Config{InputSemantics: Raw}))
	require.NoError(t, d.Transact([]Datom{
		{Diff: 1, Eid: eid(1), Aid: "tag", Val: value.NewString("x")},
	}))
	require.NoError(t, d.CloseInput("tag"))

	fwd, err := d.Forward("tag")
	require.NoError(t, err)
	require.EqualValues(t, 1, fwd.Count(eid(1)))

	require.Error(t, d.Transact([]Datom{
		{Diff: 1, Eid: eid(2), Aid: "tag", Val: value.NewString("y")},
	}))
}

func TestAttributeSlackBoundsCompactionBelowNowAt(t *testing.T) {
	slack := clock.Time(2)
	d := New(nil)
	require.NoError(t, d.CreateAttribute("tag", Config{InputSemantics: Raw, TraceSlack: &slack}))
	require.NoError(t, d.AdvanceTo(10))

	fwd, err := d.Forward("tag")
	require.NoError(t, err)
	require.Equal(t, clock.Time(8), fwd.Frontier())
}
