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

// Package rules implements named-rule registration, transitive
// dependency collection, stratified-negation validation, and the
// recursive-variable fixed point that closes a rule set over a
// Domain (spec §4.3 step 3-6, §4.6).
package rules

import (
	"sort"
	"sync"

	"github.com/dolthub/hector/dferrors"
	"github.com/dolthub/hector/plan"
	"github.com/dolthub/hector/value"
)

// Rule is one named, planned query body. A rule with several clauses
// (disjunctive definitions, as in the reachability example's two
// `reach` clauses) is represented with Plan already folded into a
// plan.Union of those clauses by the caller.
type Rule struct {
	Name string
	Vars value.VarList
	Plan plan.Plan
}

// Registry holds every rule `Register`ed against a context, independent
// of whether any of them have been compiled yet (spec §4.7: "Register
// adds a rule to the context; does not compile it").
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

// NewRegistry returns an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register adds rule to the registry. A duplicate name is rejected
// with df.error.category/conflict.
func (r *Registry) Register(rule Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rules[rule.Name]; exists {
		return dferrors.ErrRuleConflict.New(rule.Name)
	}
	r.rules[rule.Name] = rule
	return nil
}

// Get returns the named rule.
func (r *Registry) Get(name string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[name]
	return rule, ok
}

// Names returns every registered rule's name, sorted (spec §4.3 step
// 2: "sort rules by name").
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.rules))
	for name := range r.rules {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
