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

package rules

import (
	"fmt"

	"github.com/dolthub/hector/dferrors"
	"github.com/dolthub/hector/index"
	"github.com/dolthub/hector/internal/similartext"
	"github.com/dolthub/hector/plan"
)

// maxFixedPointIterations bounds the naive closure loop below. The
// in-memory CollectionRelation model has no arranged recursive
// variable to converge incrementally against, so Close reimplements
// every participating rule's plan from scratch each round; a
// well-formed stratified rule set over a finite Domain converges in at
// most as many rounds as the longest dependency chain, so this cap
// only trips on a rule set that was never going to settle.
const maxFixedPointIterations = 10000

// Close is the in-memory stand-in for spec §4.3 steps 3-6 and §4.6's
// fixed point: names (already ordered by CollectDependencies) are
// seeded with an empty recursive variable in ctx.Locals, then
// repeatedly re-lowered against the current snapshot of ctx.Locals
// until every rule's consolidated tuple set stops changing. The
// engine supports mutual recursion because every rule shares the same
// ctx.Locals map and is closed in the same round.
func Close(ctx *plan.Context, reg *Registry, names []string) (*index.ShutdownHandle, error) {
	ruleByName := make(map[string]Rule, len(names))
	for _, name := range names {
		rule, ok := reg.Get(name)
		if !ok {
			return nil, dferrors.ErrRuleNotFound.New(name, similartext.Find(reg.Names(), name))
		}
		ruleByName[name] = rule
		if _, ok := ctx.Locals[name]; !ok {
			ctx.Locals[name] = plan.NewCollectionRelation(rule.Vars)
		}
	}

	handle := index.NewShutdownHandle()
	for iter := 0; ; iter++ {
		if iter >= maxFixedPointIterations {
			return nil, dferrors.ErrMalformedRequest.New(
				fmt.Sprintf("rule set did not reach a fixed point after %d iterations", iter))
		}

		changed := false
		for _, name := range names {
			rule := ruleByName[name]
			out, roundHandle, err := ctx.Implement(rule.Plan)
			if err != nil {
				return nil, err
			}
			handle.Merge(roundHandle)

			fresh := out.Consolidated()
			if !consolidatedEqual(fresh, ctx.Locals[name].Consolidated()) {
				changed = true
			}

			next := plan.NewCollectionRelation(rule.Vars)
			for _, e := range fresh {
				next.Insert(e.Tuple, e.Time, e.Diff)
			}
			ctx.Locals[name] = next
		}

		if !changed {
			return handle, nil
		}
	}
}

func consolidatedEqual(a, b []plan.Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Time != b[i].Time || a[i].Diff != b[i].Diff || a[i].Tuple.Compare(b[i].Tuple) != 0 {
			return false
		}
	}
	return true
}
