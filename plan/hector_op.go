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
	"fmt"

	"github.com/dolthub/hector/hector"
	"github.com/dolthub/hector/value"
)

// Hector is the worst-case-optimal join operator (spec §4.4): given
// Variables in output order and Bindings over those variables, it
// delegates to package hector's generic-join delta pipeline.
type Hector struct {
	Vars     value.VarList
	Bindings []hector.Binding
}

func (h Hector) Children() []Plan { return nil }
func (h Hector) WithChildren(children ...Plan) (Plan, error) {
	return withNoChildren(h, children)
}

func (h Hector) Dependencies() Dependencies {
	aids := make([]value.Aid, len(h.Bindings))
	for i, b := range h.Bindings {
		aids[i] = b.Source
	}
	return Dependencies{Attributes: aids}
}

func (h Hector) Variables() value.VarList { return h.Vars }

func (h Hector) String() string {
	return fmt.Sprintf("Hector(%v, %d bindings)", h.Vars, len(h.Bindings))
}
