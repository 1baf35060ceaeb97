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

package sources

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cenkalti/backoff/v4"

	"github.com/dolthub/hector/clock"
	"github.com/dolthub/hector/index"
	"github.com/dolthub/hector/value"
)

// jsonRow is one line of a JSON-lines source file: an entity id paired
// with the attribute value it carries.
type jsonRow struct {
	Eid   uint64      `json:"eid"`
	Value interface{} `json:"value"`
}

// JSONSource reads newline-delimited {"eid":…, "value":…} rows from a
// file, one worker's disjoint stride at a time.
type JSONSource struct {
	aid         value.Aid
	path        string
	workerIndex int
	peerCount   int
	at          clock.Time

	file    *os.File
	decoder *json.Decoder
	rowNum  int
}

// JSONOption configures a JSONSource at construction.
type JSONOption func(*JSONSource)

// WithJSONWorkerStride sets this source's worker index and peer count.
func WithJSONWorkerStride(workerIndex, peerCount int) JSONOption {
	return func(s *JSONSource) {
		s.workerIndex = workerIndex
		s.peerCount = peerCount
	}
}

// WithJSONStampTime sets the logical time every update is stamped
// with. Defaults to clock.Zero.
func WithJSONStampTime(t clock.Time) JSONOption {
	return func(s *JSONSource) { s.at = t }
}

// NewJSONSource returns a JSONSource feeding aid from path.
func NewJSONSource(aid value.Aid, path string, opts ...JSONOption) *JSONSource {
	s := &JSONSource{aid: aid, path: path, peerCount: 1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Aid implements domain.Source.
func (s *JSONSource) Aid() value.Aid { return s.aid }

func (s *JSONSource) ensureOpen() error {
	if s.decoder != nil {
		return nil
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = openRetryMaxElapsed
	return backoff.Retry(func() error {
		f, err := os.Open(s.path)
		if err != nil {
			return err
		}
		s.file = f
		s.decoder = json.NewDecoder(f)
		return nil
	}, bo)
}

// Read drains whatever rows remain in the file that belong to this
// worker's stride, translating each row into an index.Update.
func (s *JSONSource) Read() ([]index.Update, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	var updates []index.Update
	for {
		var row jsonRow
		err := s.decoder.Decode(&row)
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
		val, err := decodeValue(row.Value)
		if err != nil {
			return updates, err
		}
		updates = append(updates, index.Update{
			Key:  value.NewEid(value.EidFromUint64(row.Eid)),
			Val:  val,
			Time: s.at,
			Diff: 1,
		})
	}
	return updates, nil
}

// Close releases the underlying file handle.
func (s *JSONSource) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

func decodeValue(raw interface{}) (value.Value, error) {
	switch v := raw.(type) {
	case string:
		return value.NewString(v), nil
	case bool:
		return value.NewBool(v), nil
	case float64:
		return value.NewInt64(int64(v)), nil
	default:
		return value.Value{}, fmt.Errorf("sources: unsupported JSON value type %T", raw)
	}
}
