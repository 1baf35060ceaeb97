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
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/dolthub/hector/dferrors"
	"github.com/dolthub/hector/value"
)

// graphQLRequest is the standard GraphQL-over-HTTP request envelope.
type graphQLRequest struct {
	Query string `json:"query"`
}

// compiledPull is one root relation name together with the flat list
// of attributes its selection set asked to pull.
//
// The engine's Pull only expands one level of attributes off an
// entity (spec §4.5); a selection set nested more than one level deep
// has no PullLevel equivalent here and is rejected rather than
// silently flattened.
type compiledPull struct {
	Root  string
	Attrs []value.Aid
}

// compileGraphQLQuery parses a single-operation, single-root-field
// query of the shape `{ <relation> { <attr> <attr> … } }` into a
// compiledPull, without requiring a schema (ParseQuery validates
// syntax only; there is no fixed schema to validate fields against
// since every registered rule is a potential root field).
func compileGraphQLQuery(query string) (*compiledPull, error) {
	doc, gqlErr := parser.ParseQuery(&ast.Source{Input: query})
	if gqlErr != nil {
		return nil, dferrors.ErrMalformedRequest.New(gqlErr.Message)
	}
	if len(doc.Operations) != 1 {
		return nil, dferrors.ErrMalformedRequest.New("query must name exactly one operation")
	}
	root := doc.Operations[0].SelectionSet
	if len(root) != 1 {
		return nil, dferrors.ErrMalformedRequest.New("query must select exactly one root relation")
	}
	rootField, ok := root[0].(*ast.Field)
	if !ok {
		return nil, dferrors.ErrMalformedRequest.New("root selection must be a field")
	}

	attrs := make([]value.Aid, 0, len(rootField.SelectionSet))
	for _, sel := range rootField.SelectionSet {
		field, ok := sel.(*ast.Field)
		if !ok {
			return nil, dferrors.ErrMalformedRequest.New("nested selection must be a field")
		}
		if len(field.SelectionSet) != 0 {
			return nil, dferrors.ErrMalformedRequest.New("pull nesting deeper than one level is unsupported")
		}
		attrs = append(attrs, value.Aid(field.Name))
	}

	return &compiledPull{Root: rootField.Name, Attrs: attrs}, nil
}
