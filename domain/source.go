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

package domain

import (
	"github.com/dolthub/hector/index"
	"github.com/dolthub/hector/value"
)

// Source is the interface an external ingest collaborator (the CSV
// and JSON file sources in package sources, or a client-provided
// equivalent) must satisfy to feed a Domain via RegisterSource and
// Flow (spec §6: "External ingest sources"). It delivers a stream of
// updates already shaped like the attribute it targets.
type Source interface {
	// Aid names the attribute this source feeds.
	Aid() value.Aid
	// Read drains whatever rows this worker's stride of the source has
	// ready, translated into index updates.
	Read() ([]index.Update, error)
	// Close releases any file handles or connections held open.
	Close() error
}
