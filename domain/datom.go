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

// Package domain implements the attribute domain: time-stamped
// multi-index storage for (entity, value) relations, the ingest paths
// that enforce per-attribute semantics, and frontier/compaction
// control (spec §3, §4.2).
package domain

import (
	"github.com/dolthub/hector/clock"
	"github.com/dolthub/hector/value"
)

// Datom is a single change record: (diff, Eid, Aid, Value).
type Datom struct {
	Diff clock.Diff
	Eid  value.Value
	Aid  value.Aid
	Val  value.Value
}
