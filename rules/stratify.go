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

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	"github.com/google/mangle/parse"

	"github.com/dolthub/hector/dferrors"
	"github.com/dolthub/hector/internal/similartext"
	"github.com/dolthub/hector/plan"
	"github.com/dolthub/hector/value"
)

// CheckStratified projects names' rule bodies into a minimal mangle
// Datalog program — one clause per rule, a positive atom per
// RuleExpr reference, a negated atom per RuleExpr reachable through
// a Negate or the right side of an Antijoin — and runs it through
// mangle's stratification analysis.
// Negation inside a recursive cycle is rejected with
// df.error.category/unsupported (spec §4.6). Mangle's evaluator is
// never invoked; only analysis.AnalyzeOneUnit's stratum computation
// is used.
func CheckStratified(names []string, reg *Registry) error {
	var clauses []ast.Clause
	for _, name := range names {
		rule, ok := reg.Get(name)
		if !ok {
			return dferrors.ErrRuleNotFound.New(name, similartext.Find(reg.Names(), name))
		}
		head := ruleAtom(rule.Name, rule.Vars)

		var premises []ast.Term
		collectRuleAtoms(rule.Plan, false, &premises)

		clauses = append(clauses, ast.Clause{Head: head, Premises: premises})
	}

	unit := parse.SourceUnit{Clauses: clauses}
	if _, err := analysis.AnalyzeOneUnit(unit, nil); err != nil {
		return dferrors.ErrUnstratifiable.New(fmt.Sprintf("%v", err))
	}
	return nil
}

func ruleAtom(name string, vars value.VarList) ast.Atom {
	args := make([]ast.BaseTerm, len(vars))
	for i, v := range vars {
		args[i] = ast.Variable{Symbol: fmt.Sprintf("V%d", uint32(v))}
	}
	return ast.NewAtom(mangleSafeName(name), args...)
}

// collectRuleAtoms walks p looking for RuleExpr references, emitting
// a positive or negated atom depending on how many Negate ancestors
// and Antijoin right sides it passed through (double negation
// cancels, matching standard
// stratified-Datalog semantics). NameExpr references address an
// already-compiled published relation rather than a rule and do not
// participate in the dependency graph.
func collectRuleAtoms(p plan.Plan, negated bool, out *[]ast.Term) {
	if p == nil {
		return
	}
	switch n := p.(type) {
	case plan.RuleExpr:
		atom := ruleAtom(n.Name, n.Vars)
		if negated {
			*out = append(*out, ast.NegAtom{Atom: atom})
		} else {
			*out = append(*out, atom)
		}
		return
	case plan.Negate:
		collectRuleAtoms(n.Input, !negated, out)
		return
	case plan.Antijoin:
		collectRuleAtoms(n.Left, negated, out)
		collectRuleAtoms(n.Right, !negated, out)
		return
	}
	for _, child := range p.Children() {
		collectRuleAtoms(child, negated, out)
	}
}

func mangleSafeName(name string) string {
	return "rule_" + name
}
