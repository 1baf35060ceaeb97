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

package transport

import (
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	uuid "github.com/satori/go.uuid"

	"github.com/dolthub/hector/domain"
	"github.com/dolthub/hector/plan"
	"github.com/dolthub/hector/rules"
	"github.com/dolthub/hector/server"
	"github.com/dolthub/hector/value"
)

const (
	varE value.Var = iota
	varV
	varA
	varB
)

func eid(i uint64) value.Value { return value.NewEid(value.EidFromUint64(i)) }

func TestWireValueRoundTripsEveryKind(t *testing.T) {
	u := uuid.NewV4()
	require.NotEqual(t, uuid.Nil, u)

	values := []value.Value{
		value.NewAid("person/name"),
		value.NewString("Mabel"),
		value.NewBool(true),
		value.NewInt64(42),
		value.NewRational(1, 2),
		value.NewEid(value.EidFromUint64(7)),
		value.NewEid(value.EidFromUint128(1, 2)),
		value.NewInstant(1000),
		value.NewUUID(u),
		value.NewOperatorAddress([]uint16{1, 2, 3}),
	}

	for _, v := range values {
		data, err := json.Marshal(WireValue{v})
		require.NoError(t, err)

		var out WireValue
		require.NoError(t, json.Unmarshal(data, &out))
		require.True(t, out.Value.Equal(v), "round trip mismatch for %v: got %v", v, out.Value)
	}
}

func TestWireValueRejectsMultiTaggedObject(t *testing.T) {
	var out WireValue
	err := json.Unmarshal([]byte(`{"String":"a","Bool":true}`), &out)
	require.Error(t, err)
}

func TestDecodePlanLowersJoinTree(t *testing.T) {
	wire := &PlanNode{
		Join: &joinWire{
			Left:  &PlanNode{MatchA: &matchAWire{EVar: varE, Aid: "edge", VVar: varV}},
			Right: &PlanNode{MatchA: &matchAWire{EVar: varV, Aid: "name", VVar: varA}},
		},
	}
	p, err := DecodePlan(wire)
	require.NoError(t, err)

	join, ok := p.(plan.Join)
	require.True(t, ok)
	require.Equal(t, plan.MatchA{EVar: varE, Aid: "edge", VVar: varV}, join.Left)
	require.Equal(t, plan.MatchA{EVar: varV, Aid: "name", VVar: varA}, join.Right)
}

func TestDecodePlanRejectsEmptyNode(t *testing.T) {
	_, err := DecodePlan(&PlanNode{})
	require.Error(t, err)
}

func TestUnmarshalPlanFromRegisterRequestBody(t *testing.T) {
	body := []byte(`{"MatchA":{"e_var":0,"aid":"name","v_var":1}}`)
	p, err := UnmarshalPlan(body)
	require.NoError(t, err)
	require.Equal(t, plan.MatchA{EVar: varE, Aid: "name", VVar: varV}, p)
}

func newPairsServer(t *testing.T) *server.Server {
	t.Helper()
	d := domain.New(nil)
	require.NoError(t, d.CreateAttribute("edge", domain.Config{InputSemantics: domain.Raw}))
	require.NoError(t, d.Transact([]domain.Datom{
		{Diff: 1, Eid: eid(1), Aid: "edge", Val: eid(2)},
		{Diff: 1, Eid: eid(2), Aid: "edge", Val: eid(3)},
	}))
	require.NoError(t, d.AdvanceTo(1))

	s := server.New(d, logrus.NewEntry(logrus.New()))
	require.NoError(t, s.Register(rules.Rule{
		Name: "pairs",
		Vars: value.VarList{varE, varV},
		Plan: plan.MatchA{EVar: varE, Aid: "edge", VVar: varV},
	}))
	return s
}

func TestDispatchTransactThenInterestRoundTrip(t *testing.T) {
	s := newPairsServer(t)

	result := Dispatch(s, "client-1", Request{Interest: &InterestRequest{Name: "pairs"}})
	require.Equal(t, "pairs", result.Name)
	require.Nil(t, result.Error)
	require.Len(t, result.Rows, 2)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	require.Contains(t, string(data), `"name":"pairs"`)
}

func TestDispatchUnknownRelationProducesErrorFrame(t *testing.T) {
	s := newPairsServer(t)
	result := Dispatch(s, "client-1", Request{Interest: &InterestRequest{Name: "missing"}})
	require.Equal(t, "df.error", result.Name)
	require.NotNil(t, result.Error)
}

func TestDispatchEmptyRequestIsMalformed(t *testing.T) {
	s := newPairsServer(t)
	result := Dispatch(s, "client-1", Request{})
	require.Equal(t, "df.error", result.Name)
}

func TestCompileGraphQLQuerySingleLevelPull(t *testing.T) {
	compiled, err := compileGraphQLQuery(`{ pairs { name } }`)
	require.NoError(t, err)
	require.Equal(t, "pairs", compiled.Root)
	require.Equal(t, []value.Aid{"name"}, compiled.Attrs)
}

func TestCompileGraphQLQueryRejectsDoubleNesting(t *testing.T) {
	_, err := compileGraphQLQuery(`{ pairs { name { nested } } }`)
	require.Error(t, err)
}

func TestCompileGraphQLQueryRejectsMultipleRoots(t *testing.T) {
	_, err := compileGraphQLQuery(`{ pairs name }`)
	require.Error(t, err)
}

func TestServerPullExpandsAttributeOffEntity(t *testing.T) {
	d := domain.New(nil)
	require.NoError(t, d.CreateAttribute("member", domain.Config{InputSemantics: domain.Raw}))
	require.NoError(t, d.CreateAttribute("person/name", domain.Config{InputSemantics: domain.Raw}))
	require.NoError(t, d.Transact([]domain.Datom{
		{Diff: 1, Eid: eid(100), Aid: "member", Val: eid(1)},
		{Diff: 1, Eid: eid(1), Aid: "person/name", Val: value.NewString("Dipper")},
	}))
	require.NoError(t, d.AdvanceTo(1))

	s := server.New(d, logrus.NewEntry(logrus.New()))
	require.NoError(t, s.Register(rules.Rule{
		Name: "members",
		Vars: value.VarList{varE, varV},
		Plan: plan.Project{
			Input: plan.MatchA{EVar: varE, Aid: "member", VVar: varV},
			Vars:  value.VarList{varV},
		},
	}))

	tuples, err := s.Pull("members", []value.Aid{"person/name"})
	require.NoError(t, err)
	require.Len(t, tuples, 1)
	require.Equal(t, eid(1), tuples[0][0])
	require.Equal(t, value.Aid("person/name"), tuples[0][1].AsAid())
	require.Equal(t, "Dipper", tuples[0][2].AsString())
}
