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
	"github.com/dolthub/hector/dferrors"
	"github.com/dolthub/hector/domain"
	"github.com/dolthub/hector/internal/similartext"
)

// CollectDependencies performs the breadth-first closure of spec
// §4.6: starting from roots, it discovers every rule transitively
// reachable through RuleExpr references, failing fast on a missing
// rule or an attribute no surviving rule's plan can resolve. The
// returned slice is in insertion (discovery) order, which is what
// spec §4.3 step 3 iterates when allocating recursive variables.
func CollectDependencies(roots []string, reg *Registry, d *domain.Domain) ([]string, error) {
	seen := make(map[string]bool, len(roots))
	var order []string
	queue := append([]string(nil), roots...)

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if seen[name] {
			continue
		}
		rule, ok := reg.Get(name)
		if !ok {
			return nil, dferrors.ErrRuleNotFound.New(name, similartext.Find(reg.Names(), name))
		}
		seen[name] = true
		order = append(order, name)

		deps := rule.Plan.Dependencies()
		for _, aid := range deps.Attributes {
			if !d.HasAttribute(aid) {
				return nil, dferrors.ErrAttributeNotFound.New(aid)
			}
		}
		for _, dep := range deps.Rules {
			if !seen[dep] {
				queue = append(queue, dep)
			}
		}
	}
	return order, nil
}
