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

import "github.com/dolthub/hector/value"

// PullLevel takes an input relation whose last column is an Eid and
// expands PullAttributes off each entity, interleaving PathAttributes
// into the output for hash-map-style nesting on the client (spec
// §4.5). Per the spec's own open question, its output variable list
// is deliberately left empty: consumers read the emitted tuples
// positionally.
type PullLevel struct {
	Input          Plan
	PullAttributes []value.Aid
	PathAttributes []value.Aid
}

func (p PullLevel) Children() []Plan { return []Plan{p.Input} }
func (p PullLevel) WithChildren(children ...Plan) (Plan, error) {
	if len(children) != 1 {
		return nil, wrongChildren("PullLevel", 1, len(children))
	}
	p.Input = children[0]
	return p, nil
}
func (p PullLevel) Dependencies() Dependencies {
	deps := p.Input.Dependencies()
	deps.Attributes = append(deps.Attributes, p.PullAttributes...)
	return deps
}
func (p PullLevel) Variables() value.VarList { return nil }
func (p PullLevel) String() string           { return "PullLevel" }

// Pull concatenates several PullLevels into one flattened relation.
type Pull struct {
	Paths []PullLevel
}

func (p Pull) Children() []Plan {
	out := make([]Plan, len(p.Paths))
	for i, level := range p.Paths {
		out[i] = level
	}
	return out
}
func (p Pull) WithChildren(children ...Plan) (Plan, error) {
	if len(children) != len(p.Paths) {
		return nil, wrongChildren("Pull", len(p.Paths), len(children))
	}
	paths := make([]PullLevel, len(children))
	for i, c := range children {
		level, ok := c.(PullLevel)
		if !ok {
			return nil, wrongChildren("Pull", len(p.Paths), len(children))
		}
		paths[i] = level
	}
	p.Paths = paths
	return p, nil
}
func (p Pull) Dependencies() Dependencies {
	var deps Dependencies
	for _, path := range p.Paths {
		deps = deps.Merge(path.Dependencies())
	}
	return deps
}
func (p Pull) Variables() value.VarList { return nil }
func (p Pull) String() string           { return "Pull" }
