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
	"sync"

	"github.com/dolthub/hector/value"
)

// Sink is a named output accumulating Vec<Value> tuples flowed into
// it by a Flow administrative operation (spec §4.7). It is the
// extension point RegisterSink wires external collaborators to; see
// server.RedisSink for a concrete one that mirrors a sink to Redis.
type Sink interface {
	// Accept appends one tuple to the sink.
	Accept(tuple value.Tuple)
	// Close releases any resources the sink holds.
	Close() error
}

// MemorySink is the default Sink: an in-memory Vec<Value> buffer,
// matching spec.md §3's "sinks (named Vec<Value> outputs)" literally.
type MemorySink struct {
	mu     sync.Mutex
	tuples []value.Tuple
}

// NewMemorySink returns an empty in-memory sink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

// Accept appends tuple to the sink's buffer.
func (s *MemorySink) Accept(tuple value.Tuple) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tuples = append(s.tuples, tuple.Clone())
}

// Tuples returns a snapshot of everything accepted so far.
func (s *MemorySink) Tuples() []value.Tuple {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]value.Tuple, len(s.tuples))
	copy(out, s.tuples)
	return out
}

// Close is a no-op for an in-memory sink.
func (s *MemorySink) Close() error { return nil }
