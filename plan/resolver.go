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

package plan

import (
	"github.com/dolthub/hector/dferrors"
	"github.com/dolthub/hector/hector"
	"github.com/dolthub/hector/index"
	"github.com/dolthub/hector/value"
)

// domainResolver adapts a Domain's forward/reverse CollectionIndex
// pairs to hector.Resolver, importing (and remembering the shutdown
// button for) every attribute a binding touches.
type domainResolver struct {
	ctx    *Context
	handle *index.ShutdownHandle
}

func (c *Context) resolverFor(bindings []hector.Binding) (hector.Resolver, *index.ShutdownHandle, error) {
	handle := index.NewShutdownHandle()
	for _, b := range bindings {
		if !c.Domain.HasAttribute(b.Source) {
			return nil, nil, dferrors.ErrAttributeNotFound.New(b.Source)
		}
	}
	return &domainResolver{ctx: c, handle: handle}, handle, nil
}

func (r *domainResolver) pick(source value.Aid, keyIsEid bool) (*index.CollectionIndex, error) {
	var ci *index.CollectionIndex
	var err error
	if keyIsEid {
		ci, err = r.ctx.Domain.Forward(source)
	} else {
		ci, err = r.ctx.Domain.Reverse(source)
	}
	if err != nil {
		return nil, err
	}
	r.handle.Add(ci.Import())
	return ci, nil
}

func (r *domainResolver) Count(source value.Aid, keyIsEid bool, key value.Value) (int64, error) {
	ci, err := r.pick(source, keyIsEid)
	if err != nil {
		return 0, err
	}
	return ci.Count(key), nil
}

func (r *domainResolver) Propose(source value.Aid, keyIsEid bool, key value.Value) ([]index.Extension, error) {
	ci, err := r.pick(source, keyIsEid)
	if err != nil {
		return nil, err
	}
	return ci.Propose(key), nil
}

func (r *domainResolver) Validate(source value.Aid, keyIsEid bool, key, val value.Value) (bool, error) {
	ci, err := r.pick(source, keyIsEid)
	if err != nil {
		return false, err
	}
	return ci.Validate(key, val), nil
}

func (r *domainResolver) Entries(source value.Aid) ([]index.Update, error) {
	ci, err := r.ctx.Domain.Forward(source)
	if err != nil {
		return nil, err
	}
	r.handle.Add(ci.Import())
	return ci.Entries(), nil
}
