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

package server

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dolthub/hector/domain"
	"github.com/dolthub/hector/plan"
	"github.com/dolthub/hector/rules"
	"github.com/dolthub/hector/value"
)

const (
	varA value.Var = iota
	varB
)

func eid(i uint64) value.Value { return value.NewEid(value.EidFromUint64(i)) }

func newEdgeServer(t *testing.T) *Server {
	t.Helper()
	d := domain.New(nil)
	require.NoError(t, d.CreateAttribute("edge", domain.Config{InputSemantics: domain.Raw}))
	s := New(d, nil)
	require.NoError(t, s.Transact([]domain.Datom{
		{Diff: 1, Eid: eid(1), Aid: "edge", Val: eid(2)},
		{Diff: 1, Eid: eid(2), Aid: "edge", Val: eid(3)},
	}))
	require.NoError(t, s.Register(rules.Rule{
		Name: "pairs",
		Vars: value.VarList{varA, varB},
		Plan: plan.Project{
			Input: plan.MatchA{EVar: varA, Aid: "edge", VVar: varB},
			Vars:  value.VarList{varA, varB},
		},
	}))
	return s
}

func TestInterestCompilesAndReturnsAnswerSet(t *testing.T) {
	s := newEdgeServer(t)
	tuples, err := s.Interest("client-1", "pairs")
	require.NoError(t, err)
	require.ElementsMatch(t, []value.Tuple{
		{eid(1), eid(2)},
		{eid(2), eid(3)},
	}, tuples)
}

func TestInterestIsIdempotentAcrossTokens(t *testing.T) {
	s := newEdgeServer(t)
	_, err := s.Interest("client-1", "pairs")
	require.NoError(t, err)
	_, err = s.Interest("client-2", "pairs")
	require.NoError(t, err)

	s.mu.Lock()
	n := len(s.relations["pairs"].interest)
	s.mu.Unlock()
	require.Equal(t, 2, n)
}

func TestUninterestOnUnknownRelationFails(t *testing.T) {
	s := newEdgeServer(t)
	err := s.Uninterest("client-1", "missing")
	require.Error(t, err)
}

func TestInterestTeardownReleasesResourcesAndLeaksNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newEdgeServer(t)
	_, err := s.Interest("client-1", "pairs")
	require.NoError(t, err)

	fwd, err := s.domain.Forward("edge")
	require.NoError(t, err)
	require.Greater(t, fwd.LiveImports(), int32(0))

	require.NoError(t, s.Uninterest("client-1", "pairs"))

	s.mu.Lock()
	_, stillPresent := s.relations["pairs"]
	s.mu.Unlock()
	require.False(t, stillPresent)
	require.EqualValues(t, 0, fwd.LiveImports())
}

func TestTransactAutoAdvancesUnlessManual(t *testing.T) {
	d := domain.New(nil)
	require.NoError(t, d.CreateAttribute("name", domain.Config{InputSemantics: domain.Raw}))
	s := New(d, nil)
	require.NoError(t, s.Transact([]domain.Datom{
		{Diff: 1, Eid: eid(1), Aid: "name", Val: value.NewString("Dipper")},
	}))
	require.EqualValues(t, 1, d.NowAt())

	manual := New(d, nil, WithManualAdvance())
	require.NoError(t, manual.Transact([]domain.Datom{
		{Diff: 1, Eid: eid(2), Aid: "name", Val: value.NewString("Mabel")},
	}))
	require.EqualValues(t, 1, d.NowAt())
}

func TestFlowToSinkStreamsCurrentAnswerSet(t *testing.T) {
	s := newEdgeServer(t)
	_, err := s.Interest("client-1", "pairs")
	require.NoError(t, err)

	sink := domain.NewMemorySink()
	require.NoError(t, s.FlowToSink("pairs", sink))
	require.Len(t, sink.Tuples(), 2)
}
