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

package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/hector/clock"
	"github.com/dolthub/hector/dferrors"
	"github.com/dolthub/hector/domain"
	"github.com/dolthub/hector/hector"
	"github.com/dolthub/hector/value"
)

const (
	varE value.Var = iota
	varV
	varN
	varA
	varS
	varTotal
	varB
	varC
	varOther
)

func eid(i uint64) value.Value { return value.NewEid(value.EidFromUint64(i)) }

func newTestDomain(t *testing.T, attrs ...value.Aid) *domain.Domain {
	t.Helper()
	d := domain.New(nil)
	for _, a := range attrs {
		require.NoError(t, d.CreateAttribute(a, domain.Config{InputSemantics: domain.Raw}))
	}
	return d
}

func assertDatoms(t *testing.T, d *domain.Domain, at clock.Time, datoms ...domain.Datom) {
	t.Helper()
	require.NoError(t, d.Transact(datoms))
	require.NoError(t, d.AdvanceTo(at))
}

func TestImplementMatchA(t *testing.T) {
	d := newTestDomain(t, "name")
	assertDatoms(t, d, 1,
		domain.Datom{Diff: 1, Eid: eid(1), Aid: "name", Val: value.NewString("Dipper")},
		domain.Datom{Diff: 1, Eid: eid(2), Aid: "name", Val: value.NewString("Mabel")},
	)

	ctx := NewContext(d, d.NowAt())
	out, handle, err := ctx.Implement(MatchA{EVar: varE, Aid: "name", VVar: varV})
	require.NoError(t, err)
	defer handle.Press()

	tuples := out.AsOf(d.NowAt())
	require.Len(t, tuples, 2)
	require.Contains(t, tuples, value.Tuple{eid(1), value.NewString("Dipper")})
	require.Contains(t, tuples, value.Tuple{eid(2), value.NewString("Mabel")})
}

func TestImplementMatchEAAndMatchAV(t *testing.T) {
	d := newTestDomain(t, "name")
	assertDatoms(t, d, 1,
		domain.Datom{Diff: 1, Eid: eid(1), Aid: "name", Val: value.NewString("Dipper")},
	)
	ctx := NewContext(d, d.NowAt())

	ea, h1, err := ctx.Implement(MatchEA{Eid: eid(1), Aid: "name", VVar: varV})
	require.NoError(t, err)
	defer h1.Press()
	require.Equal(t, []value.Tuple{{value.NewString("Dipper")}}, ea.AsOf(d.NowAt()))

	av, h2, err := ctx.Implement(MatchAV{EVar: varE, Aid: "name", Value: value.NewString("Dipper")})
	require.NoError(t, err)
	defer h2.Press()
	require.Equal(t, []value.Tuple{{eid(1)}}, av.AsOf(d.NowAt()))
}

func TestImplementProjectNarrowsColumns(t *testing.T) {
	d := newTestDomain(t, "name")
	assertDatoms(t, d, 1,
		domain.Datom{Diff: 1, Eid: eid(1), Aid: "name", Val: value.NewString("Dipper")},
	)
	ctx := NewContext(d, d.NowAt())

	out, h, err := ctx.Implement(Project{
		Input: MatchA{EVar: varE, Aid: "name", VVar: varV},
		Vars:  value.VarList{varV},
	})
	require.NoError(t, err)
	defer h.Press()
	require.Equal(t, []value.Tuple{{value.NewString("Dipper")}}, out.AsOf(d.NowAt()))
}

func TestImplementUnionConcatenates(t *testing.T) {
	d := newTestDomain(t, "name", "nickname")
	assertDatoms(t, d, 1,
		domain.Datom{Diff: 1, Eid: eid(1), Aid: "name", Val: value.NewString("Dipper")},
		domain.Datom{Diff: 1, Eid: eid(2), Aid: "nickname", Val: value.NewString("Bro Bro")},
	)
	ctx := NewContext(d, d.NowAt())

	out, h, err := ctx.Implement(Union{
		Left:  Project{Input: MatchA{EVar: varE, Aid: "name", VVar: varV}, Vars: value.VarList{varV}},
		Right: Project{Input: MatchA{EVar: varE, Aid: "nickname", VVar: varV}, Vars: value.VarList{varV}},
	})
	require.NoError(t, err)
	defer h.Press()
	require.ElementsMatch(t, []value.Tuple{
		{value.NewString("Dipper")},
		{value.NewString("Bro Bro")},
	}, out.AsOf(d.NowAt()))
}

func TestImplementJoinAndAntijoin(t *testing.T) {
	d := newTestDomain(t, "name", "age")
	assertDatoms(t, d, 1,
		domain.Datom{Diff: 1, Eid: eid(1), Aid: "name", Val: value.NewString("Dipper")},
		domain.Datom{Diff: 1, Eid: eid(2), Aid: "name", Val: value.NewString("Mabel")},
		domain.Datom{Diff: 1, Eid: eid(1), Aid: "age", Val: value.NewInt64(12)},
	)
	ctx := NewContext(d, d.NowAt())

	joined, h, err := ctx.Implement(Join{
		Left:  MatchA{EVar: varE, Aid: "name", VVar: varN},
		Right: MatchA{EVar: varE, Aid: "age", VVar: varA},
	})
	require.NoError(t, err)
	defer h.Press()
	require.Equal(t, []value.Tuple{{eid(1), value.NewString("Dipper"), value.NewInt64(12)}}, joined.AsOf(d.NowAt()))

	anti, h2, err := ctx.Implement(Antijoin{
		Left:  MatchA{EVar: varE, Aid: "name", VVar: varN},
		Right: MatchA{EVar: varE, Aid: "age", VVar: varA},
	})
	require.NoError(t, err)
	defer h2.Press()
	require.Equal(t, []value.Tuple{{eid(2), value.NewString("Mabel")}}, anti.AsOf(d.NowAt()))
}

func TestImplementNegateFlipsSign(t *testing.T) {
	d := newTestDomain(t, "name")
	assertDatoms(t, d, 1,
		domain.Datom{Diff: 1, Eid: eid(1), Aid: "name", Val: value.NewString("Dipper")},
	)
	ctx := NewContext(d, d.NowAt())

	out, h, err := ctx.Implement(Negate{Input: MatchA{EVar: varE, Aid: "name", VVar: varV}})
	require.NoError(t, err)
	defer h.Press()
	entries := out.Entries()
	require.Len(t, entries, 1)
	require.EqualValues(t, -1, entries[0].Diff)
}

func TestImplementFilter(t *testing.T) {
	d := newTestDomain(t, "age")
	assertDatoms(t, d, 1,
		domain.Datom{Diff: 1, Eid: eid(1), Aid: "age", Val: value.NewInt64(12)},
		domain.Datom{Diff: 1, Eid: eid(2), Aid: "age", Val: value.NewInt64(65)},
	)
	ctx := NewContext(d, d.NowAt())

	out, h, err := ctx.Implement(Filter{
		Input: MatchA{EVar: varE, Aid: "age", VVar: varA},
		Predicate: func(tup value.Tuple) bool {
			return tup[1].AsInt64() < 18
		},
		Label: "minors",
	})
	require.NoError(t, err)
	defer h.Press()
	require.Equal(t, []value.Tuple{{eid(1), value.NewInt64(12)}}, out.AsOf(d.NowAt()))
}

func TestImplementTransformRenamesAndReshapes(t *testing.T) {
	d := newTestDomain(t, "age")
	assertDatoms(t, d, 1,
		domain.Datom{Diff: 1, Eid: eid(1), Aid: "age", Val: value.NewInt64(12)},
	)
	ctx := NewContext(d, d.NowAt())

	out, h, err := ctx.Implement(Transform{
		Input: MatchA{EVar: varE, Aid: "age", VVar: varA},
		Func: func(tup value.Tuple) value.Tuple {
			return value.Tuple{tup[0]}
		},
		Vars:  value.VarList{varE},
		Label: "drop-age",
	})
	require.NoError(t, err)
	defer h.Press()
	require.Equal(t, []value.Tuple{{eid(1)}}, out.AsOf(d.NowAt()))
}

func TestImplementAggregateSumsPerGroup(t *testing.T) {
	d := newTestDomain(t, "score")
	assertDatoms(t, d, 1,
		domain.Datom{Diff: 1, Eid: eid(1), Aid: "score", Val: value.NewInt64(3)},
		domain.Datom{Diff: 1, Eid: eid(1), Aid: "score", Val: value.NewInt64(4)},
		domain.Datom{Diff: 1, Eid: eid(2), Aid: "score", Val: value.NewInt64(10)},
	)
	ctx := NewContext(d, d.NowAt())

	out, h, err := ctx.Implement(Aggregate{
		Input:   MatchA{EVar: varE, Aid: "score", VVar: varS},
		GroupBy: value.VarList{varE},
		Func: func(group value.Tuple, values []value.Value) value.Value {
			var sum int64
			for _, v := range values {
				sum += v.AsInt64()
			}
			return value.NewInt64(sum)
		},
		OutVar: varTotal,
		Label:  "sum-score",
	})
	require.NoError(t, err)
	defer h.Press()
	require.ElementsMatch(t, []value.Tuple{
		{eid(1), value.NewInt64(7)},
		{eid(2), value.NewInt64(10)},
	}, out.AsOf(d.NowAt()))
}

func TestImplementNameExprResolvesFromLocals(t *testing.T) {
	d := newTestDomain(t)
	ctx := NewContext(d, clock.Zero)

	local := NewCollectionRelation(value.VarList{varV})
	local.Insert(value.Tuple{value.NewString("hi")}, clock.Zero, 1)
	ctx.Locals["greeting"] = local

	out, h, err := ctx.Implement(NameExpr{Vars: value.VarList{varV}, Name: "greeting"})
	require.NoError(t, err)
	defer h.Press()
	require.Equal(t, []value.Tuple{{value.NewString("hi")}}, out.AsOf(clock.Zero))
}

func TestImplementNameExprMissingIsRuleNotFound(t *testing.T) {
	d := newTestDomain(t)
	ctx := NewContext(d, clock.Zero)
	_, _, err := ctx.Implement(NameExpr{Vars: value.VarList{varV}, Name: "missing"})
	require.Error(t, err)
	require.True(t, dferrors.ErrRuleNotFound.Is(err))
}

func TestImplementHectorFindsTriangle(t *testing.T) {
	d := newTestDomain(t, "edge")
	assertDatoms(t, d, 1,
		domain.Datom{Diff: 1, Eid: eid(1), Aid: "edge", Val: eid(2)},
		domain.Datom{Diff: 1, Eid: eid(2), Aid: "edge", Val: eid(3)},
		domain.Datom{Diff: 1, Eid: eid(1), Aid: "edge", Val: eid(3)},
	)
	ctx := NewContext(d, d.NowAt())

	h := Hector{
		Vars: value.VarList{varA, varB, varC},
		Bindings: []hector.Binding{
			{Symbols: [2]value.Var{varA, varB}, Source: "edge"},
			{Symbols: [2]value.Var{varB, varC}, Source: "edge"},
			{Symbols: [2]value.Var{varA, varC}, Source: "edge"},
		},
	}
	out, handle, err := ctx.Implement(h)
	require.NoError(t, err)
	defer handle.Press()
	require.Equal(t, []value.Tuple{{eid(1), eid(2), eid(3)}}, out.AsOf(d.NowAt()))
}

func TestImplementPullLevelExpandsAttributes(t *testing.T) {
	d := newTestDomain(t, "edge", "name")
	assertDatoms(t, d, 1,
		domain.Datom{Diff: 1, Eid: eid(1), Aid: "edge", Val: eid(2)},
		domain.Datom{Diff: 1, Eid: eid(1), Aid: "name", Val: value.NewString("Dipper")},
	)
	ctx := NewContext(d, d.NowAt())

	out, h, err := ctx.Implement(PullLevel{
		Input: Project{
			Input: MatchA{EVar: varE, Aid: "edge", VVar: varOther},
			Vars:  value.VarList{varE},
		},
		PullAttributes: []value.Aid{"name"},
		PathAttributes: []value.Aid{"root"},
	})
	require.NoError(t, err)
	defer h.Press()
	require.Len(t, out.Entries(), 1)
}
