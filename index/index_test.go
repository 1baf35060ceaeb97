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

package index_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/hector/clock"
	"github.com/dolthub/hector/index"
	"github.com/dolthub/hector/value"
)

func eid(i uint64) value.Value { return value.NewEid(value.EidFromUint64(i)) }

func TestForwardReverseAgreeOnSameTrace(t *testing.T) {
	trace := index.NewTrace()
	forward := index.NewForward(trace)
	reverse := index.NewReverse(trace)

	forward.Insert(eid(1), value.NewString("A"), index.Update{Time: clock.Zero, Diff: 1})

	require.True(t, forward.Validate(eid(1), value.NewString("A")))
	require.True(t, reverse.Validate(value.NewString("A"), eid(1)))
	require.Equal(t, int64(1), forward.Count(eid(1)))
	require.Equal(t, int64(1), reverse.Count(value.NewString("A")))
}

func TestRetractionCancelsAssertion(t *testing.T) {
	trace := index.NewTrace()
	forward := index.NewForward(trace)

	forward.Insert(eid(1), value.NewString("A"), index.Update{Time: clock.Zero, Diff: 1})
	forward.Insert(eid(1), value.NewString("A"), index.Update{Time: clock.Time(1), Diff: -1})

	require.False(t, forward.Validate(eid(1), value.NewString("A")))
	require.Equal(t, int64(0), forward.Count(eid(1)))
	require.Empty(t, forward.Propose(eid(1)))
}

func TestShutdownHandlePressIsBoundedAndIdempotent(t *testing.T) {
	trace := index.NewTrace()
	forward := index.NewForward(trace)

	var handle index.ShutdownHandle
	pressed := 0
	for i := 0; i < 3; i++ {
		button := forward.Import()
		handle.Add(button)
		_ = button
	}
	require.EqualValues(t, 3, forward.LiveImports())

	handle.Press()
	handle.Press() // idempotent
	require.EqualValues(t, 0, forward.LiveImports())
	require.Equal(t, 0, handle.Len())
	_ = pressed
}

func TestAdvanceToPrunesZeroMultiplicityCells(t *testing.T) {
	trace := index.NewTrace()
	forward := index.NewForward(trace)
	forward.Insert(eid(1), value.NewString("A"), index.Update{Time: clock.Zero, Diff: 1})
	forward.Insert(eid(1), value.NewString("A"), index.Update{Time: clock.Time(1), Diff: -1})

	trace.AdvanceTo(clock.Time(1))
	require.Equal(t, clock.Time(1), forward.Frontier())
	require.Empty(t, forward.Entries())
}
