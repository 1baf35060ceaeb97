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

// Package server implements the session layer: rule registration,
// interest-driven relation compilation, and the administrative
// operations (Transact, CreateAttribute, RegisterSource/Sink,
// AdvanceDomain, CloseInput, Flow) that sit in front of a Domain.
package server

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dolthub/hector/clock"
	"github.com/dolthub/hector/dferrors"
	"github.com/dolthub/hector/domain"
	"github.com/dolthub/hector/index"
	"github.com/dolthub/hector/internal/similartext"
	"github.com/dolthub/hector/plan"
	"github.com/dolthub/hector/rules"
	"github.com/dolthub/hector/value"
)

// relationEntry is one compiled, interested-in relation: the
// consolidated tuple set, the shutdown handle owning every trace
// import the compile touched, and the set of client tokens currently
// interested in it.
type relationEntry struct {
	handle   *index.ShutdownHandle
	relation *plan.CollectionRelation
	interest map[string]bool
}

// Server is one session over a single Domain: it owns the rule
// registry, the map of compiled/published relations and their
// interest sets, and the monotone next_tx counter synthesizing commit
// times for auto-advanced transactions (spec §4.7).
type Server struct {
	mu sync.Mutex

	domain   *domain.Domain
	registry *rules.Registry

	relations map[string]*relationEntry

	manualAdvance bool
	nextTx        clock.Time

	metrics *metrics
	log     *logrus.Entry
}

// Option configures a Server at construction time.
type Option func(*Server)

// WithManualAdvance disables the automatic advance_to(next_tx) that
// Transact otherwise performs after every commit.
func WithManualAdvance() Option {
	return func(s *Server) { s.manualAdvance = true }
}

// New returns a Server fronting d. Its compiled-relation counter,
// interest gauge and compile-latency histogram are always registered.
func New(d *domain.Domain, log *logrus.Entry, opts ...Option) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Server{
		domain:    d,
		registry:  rules.NewRegistry(),
		relations: make(map[string]*relationEntry),
		metrics:   newMetrics(),
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds rule to the context without compiling it (spec §4.7).
func (s *Server) Register(rule rules.Rule) error {
	return s.registry.Register(rule)
}

// Interest ensures name is compiled, adds token to its interest set,
// and returns the relation's current answer set as of the domain's
// present time. Recompilation only happens the first time a name is
// requested; subsequent Interest calls just add the token.
func (s *Server) Interest(token, name string) ([]value.Tuple, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.relations[name]
	if !ok {
		stop := s.metrics.startCompile()
		compiled, handle, err := s.compileLocked(name)
		stop()
		if err != nil {
			return nil, err
		}
		entry = &relationEntry{handle: handle, relation: compiled, interest: make(map[string]bool)}
		s.relations[name] = entry
		s.metrics.relationCompiled()
	}
	entry.interest[token] = true
	s.metrics.setInterestCount(name, len(entry.interest))
	return entry.relation.AsOf(s.domain.NowAt()), nil
}

// compileLocked runs dependency collection, stratification checking,
// and the recursive-variable fixed point for name, per spec §4.3
// steps 1-6 and §4.6. Callers must hold s.mu.
func (s *Server) compileLocked(name string) (*plan.CollectionRelation, *index.ShutdownHandle, error) {
	order, err := rules.CollectDependencies([]string{name}, s.registry, s.domain)
	if err != nil {
		return nil, nil, err
	}
	if err := rules.CheckStratified(order, s.registry); err != nil {
		return nil, nil, err
	}

	ctx := plan.NewContext(s.domain, s.domain.NowAt())
	handle, err := rules.Close(ctx, s.registry, order)
	if err != nil {
		return nil, nil, err
	}
	out, ok := ctx.Locals[name]
	if !ok {
		return nil, nil, dferrors.ErrRuleNotFound.New(name, similartext.Find(s.registry.Names(), name))
	}
	return out, handle, nil
}

// relationNamesLocked lists currently compiled relations for a
// similartext suggestion. Callers must hold s.mu.
func (s *Server) relationNamesLocked() []string {
	names := make([]string, 0, len(s.relations))
	for name := range s.relations {
		names = append(names, name)
	}
	return names
}

// Uninterest removes token from name's interest set; when the set
// becomes empty the relation's shutdown handle is pressed (tearing
// down every owned trace import) and the relation is dropped.
func (s *Server) Uninterest(token, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.relations[name]
	if !ok {
		return dferrors.ErrRelationNotFound.New(name, similartext.Find(s.relationNamesLocked(), name))
	}
	delete(entry.interest, token)
	if len(entry.interest) == 0 {
		entry.handle.Press()
		delete(s.relations, name)
		s.metrics.relationDropped()
		s.metrics.setInterestCount(name, 0)
		return nil
	}
	s.metrics.setInterestCount(name, len(entry.interest))
	return nil
}

// Transact applies datoms to the domain, then auto-advances to
// next_tx unless WithManualAdvance was set (spec §4.7).
func (s *Server) Transact(datoms []domain.Datom) error {
	if err := s.domain.Transact(datoms); err != nil {
		return err
	}
	if s.manualAdvance {
		return nil
	}
	s.mu.Lock()
	s.nextTx++
	next := s.nextTx
	s.mu.Unlock()
	return s.domain.AdvanceTo(next)
}

// CreateAttribute delegates to the underlying Domain.
func (s *Server) CreateAttribute(name value.Aid, cfg domain.Config) error {
	return s.domain.CreateAttribute(name, cfg)
}

// Now reports the underlying Domain's current logical time, for
// stamping error frames and other responses a transport layer builds
// outside of Interest/FlowToSink.
func (s *Server) Now() clock.Time {
	return s.domain.NowAt()
}

// RegisterSource delegates to the underlying Domain.
func (s *Server) RegisterSource(name string, src domain.Source) {
	s.domain.RegisterSource(name, src)
}

// RegisterSink delegates to the underlying Domain.
func (s *Server) RegisterSink(name string, sink domain.Sink) {
	s.domain.RegisterSink(name, sink)
}

// AdvanceDomain advances the domain's logical time to next.
func (s *Server) AdvanceDomain(next clock.Time) error {
	s.mu.Lock()
	if next > s.nextTx {
		s.nextTx = next
	}
	s.mu.Unlock()
	return s.domain.AdvanceTo(next)
}

// CloseInput delegates to the underlying Domain.
func (s *Server) CloseInput(name value.Aid) error {
	return s.domain.CloseInput(name)
}

// Flow makes one Read of srcName and writes its rows directly into
// destAid's forward and reverse indices (see domain.Domain.Flow).
func (s *Server) Flow(srcName string, destAid value.Aid) error {
	return s.domain.Flow(srcName, destAid)
}

// FlowToSink streams name's current answer set into sink, matching
// spec §4.7's administrative Flow[relation, sink] addressed at a
// compiled relation rather than a raw ingest source.
func (s *Server) FlowToSink(name string, sink domain.Sink) error {
	s.mu.Lock()
	entry, ok := s.relations[name]
	known := s.relationNamesLocked()
	s.mu.Unlock()
	if !ok {
		return dferrors.ErrRelationNotFound.New(name, similartext.Find(known, name))
	}
	for _, tuple := range entry.relation.AsOf(s.domain.NowAt()) {
		sink.Accept(tuple)
	}
	return nil
}

// Pull ensures name is compiled, then expands attrs off the last
// (Eid) column of every row in its current answer set, per the
// GraphQL pull surface of spec §4.5. Unlike Interest, it does not
// register a standing interest token; it is a one-shot read.
func (s *Server) Pull(name string, attrs []value.Aid) ([]value.Tuple, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.relations[name]
	if !ok {
		stop := s.metrics.startCompile()
		compiled, handle, err := s.compileLocked(name)
		stop()
		if err != nil {
			return nil, err
		}
		entry = &relationEntry{handle: handle, relation: compiled, interest: make(map[string]bool)}
		s.relations[name] = entry
		s.metrics.relationCompiled()
	}

	ctx := plan.NewContext(s.domain, s.domain.NowAt())
	ctx.Locals[name] = entry.relation
	out, handle, err := ctx.Implement(plan.PullLevel{
		Input:          plan.NameExpr{Name: name},
		PullAttributes: attrs,
	})
	if err != nil {
		return nil, err
	}
	entry.handle.Merge(handle)
	return out.AsOf(s.domain.NowAt()), nil
}

// Close tears down every live relation's shutdown handle, matching
// Engine.Close's "walk every owned resource and release it" pattern.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, entry := range s.relations {
		entry.handle.Press()
		delete(s.relations, name)
	}
	return nil
}
