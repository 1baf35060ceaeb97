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
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// meterName identifies the server package's instruments against the
// global delegating provider, which is a no-op until InitMeterProvider
// runs — instruments registered before that call simply forward once
// it does, matching the beads repo's storage/dolt metrics idiom.
const meterName = "github.com/dolthub/hector/server"

var instruments struct {
	relationsCompiled metric.Int64Counter
	interestTokens    metric.Int64UpDownCounter
	compileLatency    metric.Float64Histogram
}

func init() {
	m := otel.Meter(meterName)
	instruments.relationsCompiled, _ = m.Int64Counter("hector.server.relations_compiled",
		metric.WithDescription("relations compiled from rule sets since startup"),
		metric.WithUnit("{relation}"),
	)
	instruments.interestTokens, _ = m.Int64UpDownCounter("hector.server.interest_tokens",
		metric.WithDescription("live client interest tokens, summed across relations"),
		metric.WithUnit("{token}"),
	)
	instruments.compileLatency, _ = m.Float64Histogram("hector.server.compile_latency_ms",
		metric.WithDescription("time spent compiling a relation's rule set to a fixed point"),
		metric.WithUnit("ms"),
	)
}

// InitMeterProvider installs the stdout metrics exporter as the
// global OTel MeterProvider, exporting every interval. Callers (cmd/hectord)
// should defer the returned shutdown func.
func InitMeterProvider(interval time.Duration) (shutdown func(context.Context) error, err error) {
	exporter, err := stdoutmetric.New()
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(provider)
	return provider.Shutdown, nil
}

// metrics is the Server-local facade over the package's instruments,
// tracking per-relation interest counts so setInterestCount can report
// deltas to the shared UpDownCounter.
type metrics struct {
	interestByRelation map[string]int
}

func newMetrics() *metrics {
	return &metrics{interestByRelation: make(map[string]int)}
}

func (m *metrics) relationCompiled() {
	instruments.relationsCompiled.Add(context.Background(), 1)
}

func (m *metrics) relationDropped() {}

func (m *metrics) setInterestCount(name string, count int) {
	prev := m.interestByRelation[name]
	if count == prev {
		return
	}
	instruments.interestTokens.Add(context.Background(), int64(count-prev),
		metric.WithAttributes(attribute.String("relation", name)))
	if count == 0 {
		delete(m.interestByRelation, name)
		return
	}
	m.interestByRelation[name] = count
}

func (m *metrics) startCompile() func() {
	start := timeNow()
	return func() {
		instruments.compileLatency.Record(context.Background(), float64(timeNow().Sub(start).Microseconds())/1000.0)
	}
}

// timeNow is a var so tests can stub latency measurement if needed.
var timeNow = time.Now
