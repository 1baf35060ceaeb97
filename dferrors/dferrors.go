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

// Package dferrors implements the df.error.category/* taxonomy: a
// small set of string categories that are part of the wire contract
// (§7 of the spec), plus the concrete error Kinds raised throughout
// the engine. The pattern is lifted directly from this repo's
// teacher, which tags its own sentinel errors with
// gopkg.in/src-d/go-errors.v1's errors.NewKind.
package dferrors

import (
	"gopkg.in/src-d/go-errors.v1"
)

// Category is one of the four df.error.category/* wire strings.
type Category string

const (
	// NotFound covers an unknown attribute, rule, or sink.
	NotFound Category = "df.error.category/not-found"
	// Conflict covers a duplicate rule, duplicate attribute, rewind of
	// logical time, or a variable with no bindings.
	Conflict Category = "df.error.category/conflict"
	// Incorrect covers a malformed request: parse failure, bad arity.
	Incorrect Category = "df.error.category/incorrect"
	// Unsupported covers a request understood but disabled in this build.
	Unsupported Category = "df.error.category/unsupported"
)

// Kind pairs a go-errors.v1 Kind with the wire category it reports.
type Kind struct {
	kind     *errors.Kind
	category Category
}

// NewKind registers a new error kind under category, with printf-style
// message formatting exactly like errors.NewKind.
func NewKind(category Category, message string) *Kind {
	return &Kind{kind: errors.NewKind(message), category: category}
}

// New constructs an error of this kind.
func (k *Kind) New(args ...interface{}) *errors.Error {
	return k.kind.New(args...)
}

// Is reports whether err was produced by this kind.
func (k *Kind) Is(err error) bool {
	return k.kind.Is(err)
}

var registry []*Kind

func register(k *Kind) *Kind {
	registry = append(registry, k)
	return k
}

// Kinds used across the engine. Each is tagged with its wire category
// so CategoryOf can recover it for the error result frame.
var (
	ErrAttributeExists    = register(NewKind(Conflict, "an attribute named %q already exists"))
	ErrAttributeNotFound  = register(NewKind(NotFound, "no attribute named %q"))
	// ErrRuleNotFound takes the unknown name and a similartext
	// suggestion clause (possibly empty) as its two format args.
	ErrRuleNotFound = register(NewKind(NotFound, "no rule named %q%s"))
	ErrRuleConflict = register(NewKind(Conflict, "a rule named %q is already registered"))
	// ErrRelationNotFound takes the unknown name and a similartext
	// suggestion clause (possibly empty) as its two format args.
	ErrRelationNotFound = register(NewKind(NotFound, "no published relation named %q%s"))
	ErrSinkNotFound       = register(NewKind(NotFound, "no sink named %q"))
	ErrSourceNotFound     = register(NewKind(NotFound, "no source named %q"))
	ErrTimeRewind         = register(NewKind(Conflict, "cannot advance_to(%v): current time is already %v"))
	ErrUnboundVariable    = register(NewKind(Conflict, "variable %v is bound by zero bindings"))
	ErrUnstratifiable     = register(NewKind(Unsupported, "rule set is not stratifiable: negation depends on itself through %v"))
	ErrMalformedRequest   = register(NewKind(Incorrect, "malformed request: %s"))
	ErrWrongArity         = register(NewKind(Incorrect, "expected %d values, found %d"))
	ErrFeatureDisabled    = register(NewKind(Unsupported, "feature %q is not enabled on this server"))
	ErrCardinalityUnknown = register(NewKind(Incorrect, "unknown input semantics %q"))
)

// CategoryOf recovers the df.error.category/* string for err, falling
// back to Incorrect for errors this package did not mint.
func CategoryOf(err error) Category {
	for _, k := range registry {
		if k.Is(err) {
			return k.category
		}
	}
	return Incorrect
}

// WireFrame is the JSON-shaped error record from spec.md §6:
// [{"df.error/category":…, "df.error/message":…}, time].
type WireFrame struct {
	Category string      `json:"df.error/category"`
	Message  string      `json:"df.error/message"`
}

// ToWireFrame converts err, observed at logical time t, into the wire
// error frame the transport layer serializes.
func ToWireFrame(err error, t int64) (WireFrame, int64) {
	return WireFrame{
		Category: string(CategoryOf(err)),
		Message:  err.Error(),
	}, t
}
