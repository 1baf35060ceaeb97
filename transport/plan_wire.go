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

	"github.com/dolthub/hector/dferrors"
	"github.com/dolthub/hector/hector"
	"github.com/dolthub/hector/plan"
	"github.com/dolthub/hector/value"
)

// PlanNode is the tagged-union wire form of a plan.Plan: exactly one
// field is populated, naming the operator and its operands. A Register
// request's plan arrives in this shape and is decoded with DecodePlan.
//
// Filter, Transform and Aggregate carry Go closures in the in-process
// plan API, and Pull and PullLevel are reached through the /graphql
// route; none of them has a wire form here. A client that needs one of
// those operators
// must be a Go program composing plan.Plan values directly against
// server.Server, not a wire client. See DESIGN.md.
type PlanNode struct {
	MatchA    *matchAWire    `json:"MatchA,omitempty"`
	MatchEA   *matchEAWire   `json:"MatchEA,omitempty"`
	MatchAV   *matchAVWire   `json:"MatchAV,omitempty"`
	Project   *projectWire   `json:"Project,omitempty"`
	Union     *unionWire     `json:"Union,omitempty"`
	Join      *joinWire      `json:"Join,omitempty"`
	Antijoin  *joinWire      `json:"Antijoin,omitempty"`
	Negate    *negateWire    `json:"Negate,omitempty"`
	RuleExpr  *namedWire     `json:"RuleExpr,omitempty"`
	NameExpr  *namedWire     `json:"NameExpr,omitempty"`
	Hector    *hectorWire    `json:"Hector,omitempty"`
}

type matchAWire struct {
	EVar value.Var  `json:"e_var"`
	Aid  value.Aid  `json:"aid"`
	VVar value.Var  `json:"v_var"`
}

type matchEAWire struct {
	Eid  WireValue `json:"eid"`
	Aid  value.Aid `json:"aid"`
	VVar value.Var `json:"v_var"`
}

type matchAVWire struct {
	EVar  value.Var `json:"e_var"`
	Aid   value.Aid `json:"aid"`
	Value WireValue `json:"value"`
}

type projectWire struct {
	Input *PlanNode      `json:"input"`
	Vars  []value.Var    `json:"vars"`
}

type unionWire struct {
	Left  *PlanNode `json:"left"`
	Right *PlanNode `json:"right"`
}

type joinWire struct {
	Left  *PlanNode `json:"left"`
	Right *PlanNode `json:"right"`
}

type negateWire struct {
	Input *PlanNode `json:"input"`
}

type namedWire struct {
	Vars []value.Var `json:"vars"`
	Name string      `json:"name"`
}

type bindingWire struct {
	Symbols [2]value.Var `json:"symbols"`
	Source  value.Aid    `json:"source"`
}

type hectorWire struct {
	Vars     []value.Var   `json:"vars"`
	Bindings []bindingWire `json:"bindings"`
}

// DecodePlan lowers a wire PlanNode into a plan.Plan, recursing into
// every operand. An empty/all-nil node is a malformed request.
func DecodePlan(n *PlanNode) (plan.Plan, error) {
	if n == nil {
		return nil, dferrors.ErrMalformedRequest.New("missing plan node")
	}
	switch {
	case n.MatchA != nil:
		return plan.MatchA{EVar: n.MatchA.EVar, Aid: n.MatchA.Aid, VVar: n.MatchA.VVar}, nil
	case n.MatchEA != nil:
		return plan.MatchEA{Eid: n.MatchEA.Eid.Value, Aid: n.MatchEA.Aid, VVar: n.MatchEA.VVar}, nil
	case n.MatchAV != nil:
		return plan.MatchAV{EVar: n.MatchAV.EVar, Aid: n.MatchAV.Aid, Value: n.MatchAV.Value.Value}, nil
	case n.Project != nil:
		input, err := DecodePlan(n.Project.Input)
		if err != nil {
			return nil, err
		}
		return plan.Project{Input: input, Vars: value.VarList(n.Project.Vars)}, nil
	case n.Union != nil:
		left, err := DecodePlan(n.Union.Left)
		if err != nil {
			return nil, err
		}
		right, err := DecodePlan(n.Union.Right)
		if err != nil {
			return nil, err
		}
		return plan.Union{Left: left, Right: right}, nil
	case n.Join != nil:
		left, err := DecodePlan(n.Join.Left)
		if err != nil {
			return nil, err
		}
		right, err := DecodePlan(n.Join.Right)
		if err != nil {
			return nil, err
		}
		return plan.Join{Left: left, Right: right}, nil
	case n.Antijoin != nil:
		left, err := DecodePlan(n.Antijoin.Left)
		if err != nil {
			return nil, err
		}
		right, err := DecodePlan(n.Antijoin.Right)
		if err != nil {
			return nil, err
		}
		return plan.Antijoin{Left: left, Right: right}, nil
	case n.Negate != nil:
		input, err := DecodePlan(n.Negate.Input)
		if err != nil {
			return nil, err
		}
		return plan.Negate{Input: input}, nil
	case n.RuleExpr != nil:
		return plan.RuleExpr{Vars: value.VarList(n.RuleExpr.Vars), Name: n.RuleExpr.Name}, nil
	case n.NameExpr != nil:
		return plan.NameExpr{Vars: value.VarList(n.NameExpr.Vars), Name: n.NameExpr.Name}, nil
	case n.Hector != nil:
		bindings := make([]hector.Binding, len(n.Hector.Bindings))
		for i, b := range n.Hector.Bindings {
			bindings[i] = hector.Binding{Symbols: b.Symbols, Source: b.Source}
		}
		return plan.Hector{Vars: value.VarList(n.Hector.Vars), Bindings: bindings}, nil
	default:
		return nil, dferrors.ErrMalformedRequest.New("plan node names no known operator")
	}
}

// UnmarshalPlan is a convenience wrapper around json.Unmarshal +
// DecodePlan for callers holding a raw request body.
func UnmarshalPlan(data []byte) (plan.Plan, error) {
	var n PlanNode
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, dferrors.ErrMalformedRequest.New(err.Error())
	}
	return DecodePlan(&n)
}
