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

// Package sources implements the external ingest collaborators spec.md
// §6 calls "file sources": CSV and JSON readers that each worker
// strides across (rowIndex % peerCount == workerIndex), translated
// into index.Update batches a Domain can Flow into an attribute.
package sources

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dolthub/hector/clock"
	"github.com/dolthub/hector/index"
	"github.com/dolthub/hector/value"
)

// openRetryMaxElapsed bounds how long a source waits for its backing
// file to appear before giving up, guarding against the transient
// NFS/network-mount races a worker can hit at startup.
const openRetryMaxElapsed = 10 * time.Second

// CSVSource reads rows of the form "eid,value" from a CSV file,
// one worker's disjoint stride at a time, and feeds a single
// attribute (spec.md §6).
type CSVSource struct {
	aid         value.Aid
	path        string
	workerIndex int
	peerCount   int
	at          clock.Time

	openRetryBudget time.Duration

	file   *os.File
	reader *csv.Reader
	rowNum int
}

// CSVOption configures a CSVSource at construction.
type CSVOption func(*CSVSource)

// WithWorkerStride sets this source's worker index and the total peer
// count, so Read only yields the rows this worker owns.
func WithWorkerStride(workerIndex, peerCount int) CSVOption {
	return func(s *CSVSource) {
		s.workerIndex = workerIndex
		s.peerCount = peerCount
	}
}

// WithStampTime sets the logical time every update from this source
// is stamped with. Defaults to clock.Zero.
func WithStampTime(t clock.Time) CSVOption {
	return func(s *CSVSource) { s.at = t }
}

// WithOpenRetryBudget overrides how long Read waits for the backing
// file to appear before giving up. Defaults to openRetryMaxElapsed.
func WithOpenRetryBudget(d time.Duration) CSVOption {
	return func(s *CSVSource) { s.openRetryBudget = d }
}

// NewCSVSource returns a CSVSource feeding aid from path. The
// underlying file is opened lazily on the first Read, retried with
// exponential backoff to absorb a transient open failure.
func NewCSVSource(aid value.Aid, path string, opts ...CSVOption) *CSVSource {
	s := &CSVSource{aid: aid, path: path, peerCount: 1, openRetryBudget: openRetryMaxElapsed}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Aid implements domain.Source.
func (s *CSVSource) Aid() value.Aid { return s.aid }

func (s *CSVSource) ensureOpen() error {
	if s.reader != nil {
		return nil
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = s.openRetryBudget
	return backoff.Retry(func() error {
		f, err := os.Open(s.path)
		if err != nil {
			return err
		}
		s.file = f
		s.reader = csv.NewReader(f)
		return nil
	}, bo)
}

// Read drains whatever rows remain in the file that belong to this
// worker's stride, translating each "eid,value" row into an
// index.Update.
func (s *CSVSource) Read() ([]index.Update, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	var updates []index.Update
	for {
		row, err := s.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return updates, err
		}
		idx := s.rowNum
		s.rowNum++
		if idx%s.peerCount != s.workerIndex {
			continue
		}
		if len(row) < 2 {
			continue
		}
		eidNum, err := strconv.ParseUint(row[0], 10, 64)
		if err != nil {
			return updates, err
		}
		updates = append(updates, index.Update{
			Key:  value.NewEid(value.EidFromUint64(eidNum)),
			Val:  parseCell(row[1]),
			Time: s.at,
			Diff: 1,
		})
	}
	return updates, nil
}

// Close releases the underlying file handle.
func (s *CSVSource) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

// parseCell turns one CSV field into a Value, preferring Int64 when
// the text parses cleanly and falling back to String otherwise.
func parseCell(raw string) value.Value {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return value.NewInt64(n)
	}
	return value.NewString(raw)
}
