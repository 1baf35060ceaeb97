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

package pull

// Path pairs one Level with the rows it should be evaluated over,
// matching one line of a Pull expression's decomposition into
// individual root/nested paths (spec §4.5: "[:parent/name
// {:parent/child [:child/name]}]" becomes one root path plus one
// nested path keyed on :parent/child).
type Path struct {
	Rows  []Row
	Level Level
}

// ExecuteAll runs every path and concatenates their results into one
// flattened stream, as Pull's union of PullLevels does. The output
// variable list is intentionally left undeclared by the caller — per
// the spec's own open question, Pull and PullLevel leave their output
// variable list empty, and downstream consumers rely on positional
// convention. With PullAttributes set, every tuple is
// interleave(input, path) followed by an [Aid, Value] pair:
// len(input)+len(path)+2 columns, or len(input)+2 when there are no
// path labels. With PullAttributes empty, a tuple is
// interleave(input, path) alone.
func ExecuteAll(paths []Path, lookup IndexLookup) ([]Result, error) {
	var out []Result
	for _, p := range paths {
		results, err := Execute(p.Rows, p.Level, lookup)
		if err != nil {
			return nil, err
		}
		out = append(out, results...)
	}
	return out, nil
}
