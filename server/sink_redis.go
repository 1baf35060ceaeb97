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

package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dolthub/hector/value"
)

// RedisSink mirrors a relation's tuple stream to a Redis pub/sub
// channel, exercising the RegisterSink administrative operation
// (spec §4.7) with a concrete external collaborator.
type RedisSink struct {
	client  *redis.Client
	ctx     context.Context
	channel string
}

// RedisSinkOption configures a RedisSink at construction.
type RedisSinkOption func(*RedisSink)

// WithRedisContext overrides the context used for publish calls.
func WithRedisContext(ctx context.Context) RedisSinkOption {
	return func(s *RedisSink) { s.ctx = ctx }
}

// NewRedisSink connects to redisURL (e.g. "redis://localhost:6379/0")
// and returns a Sink that JSON-encodes every accepted tuple and
// publishes it to channel.
func NewRedisSink(redisURL, channel string, opts ...RedisSinkOption) (*RedisSink, error) {
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	s := &RedisSink{
		client:  redis.NewClient(redisOpts),
		ctx:     context.Background(),
		channel: channel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Accept JSON-encodes tuple's values and publishes it. Publish errors
// are swallowed (Sink.Accept has no error return); callers that need
// delivery guarantees should observe the client's own logging.
func (s *RedisSink) Accept(tuple value.Tuple) {
	fields := make([]string, len(tuple))
	for i, v := range tuple {
		fields[i] = v.String()
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return
	}
	s.client.Publish(s.ctx, s.channel, payload)
}

// Close releases the underlying Redis client connection.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
