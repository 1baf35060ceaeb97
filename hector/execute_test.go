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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/hector/clock"
	"github.com/dolthub/hector/dferrors"
	"github.com/dolthub/hector/index"
	"github.com/dolthub/hector/value"
)

// fakeResolver backs a handful of in-memory forward indices, keyed by
// Aid, so Execute can be tested without a real Domain.
type fakeResolver struct {
	forward map[value.Aid]*index.CollectionIndex
	reverse map[value.Aid]*index.CollectionIndex
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		forward: make(map[value.Aid]*index.CollectionIndex),
		reverse: make(map[value.Aid]*index.CollectionIndex),
	}
}

func (f *fakeResolver) assert(aid value.Aid, eid, val value.Value) {
	fwd, ok := f.forward[aid]
	if !ok {
		trace := index.NewTrace()
		fwd = index.NewForward(trace)
		f.forward[aid] = fwd
		f.reverse[aid] = index.NewReverse(trace)
	}
	fwd.Insert(eid, val, index.Update{Time: clock.Zero, Diff: 1})
}

func (f *fakeResolver) pick(keyIsEid bool, source value.Aid) *index.CollectionIndex {
	if keyIsEid {
		return f.forward[source]
	}
	return f.reverse[source]
}

func (f *fakeResolver) Count(source value.Aid, keyIsEid bool, key value.Value) (int64, error) {
	ci := f.pick(keyIsEid, source)
	if ci == nil {
		return 0, dferrors.ErrAttributeNotFound.New(source)
	}
	return ci.Count(key), nil
}

func (f *fakeResolver) Propose(source value.Aid, keyIsEid bool, key value.Value) ([]index.Extension, error) {
	ci := f.pick(keyIsEid, source)
	if ci == nil {
		return nil, dferrors.ErrAttributeNotFound.New(source)
	}
	return ci.Propose(key), nil
}

func (f *fakeResolver) Validate(source value.Aid, keyIsEid bool, key, val value.Value) (bool, error) {
	ci := f.pick(keyIsEid, source)
	if ci == nil {
		return false, dferrors.ErrAttributeNotFound.New(source)
	}
	return ci.Validate(key, val), nil
}

func (f *fakeResolver) Entries(source value.Aid) ([]index.Update, error) {
	ci, ok := f.forward[source]
	if !ok {
		return nil, dferrors.ErrAttributeNotFound.New(source)
	}
	return ci.Entries(), nil
}

func eid(i uint64) value.Value { return value.NewEid(value.EidFromUint64(i)) }

func TestExecuteFindsTriangle(t *testing.T) {
	r := newFakeResolver()
	r.assert("edge", eid(1), eid(2))
	r.assert("edge", eid(2), eid(3))
	r.assert("edge", eid(1), eid(3))

	const a, b, c value.Var = 0, 1, 2
	bindings := []Binding{
		{Symbols: [2]value.Var{a, b}, Source: "edge"},
		{Symbols: [2]value.Var{b, c}, Source: "edge"},
		{Symbols: [2]value.Var{a, c}, Source: "edge"},
	}

	result, err := Execute(value.VarList{a, b, c}, bindings, r)
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.True(t, result[0].Tuple.Equal(value.Tuple{eid(1), eid(2), eid(3)}))
	require.EqualValues(t, 1, result[0].Diff)
}

func TestExecuteEmptyVariablesYieldsEmptyRelation(t *testing.T) {
	result, err := Execute(nil, nil, newFakeResolver())
	require.NoError(t, err)
	require.Empty(t, result)
}

func TestExecuteZeroBindingsForAVariableIsConflict(t *testing.T) {
	r := newFakeResolver()
	r.assert("edge", eid(1), eid(2))

	const a, b, c value.Var = 0, 1, 2
	bindings := []Binding{{Symbols: [2]value.Var{a, b}, Source: "edge"}}

	_, err := Execute(value.VarList{a, b, c}, bindings, r)
	require.Error(t, err)
	require.Equal(t, dferrors.Conflict, dferrors.CategoryOf(err))
}

func TestExecuteUnknownAttributeIsNotFound(t *testing.T) {
	r := newFakeResolver()
	const a, b value.Var = 0, 1
	bindings := []Binding{{Symbols: [2]value.Var{a, b}, Source: "missing"}}

	_, err := Execute(value.VarList{a, b}, bindings, r)
	require.Error(t, err)
	require.Equal(t, dferrors.NotFound, dferrors.CategoryOf(err))
}
