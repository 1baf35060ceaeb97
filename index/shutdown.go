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

package index

import "sync"

// ShutdownButton is a droppable capability collected at every
// trace-import site. Pressing it releases the resources that import
// held; pressing twice is a no-op.
type ShutdownButton struct {
	once sync.Once
	fn   func()
}

// NewShutdownButton wraps fn so it runs at most once.
func NewShutdownButton(fn func()) *ShutdownButton {
	return &ShutdownButton{fn: fn}
}

// Press releases the resource this button guards.
func (b *ShutdownButton) Press() {
	b.once.Do(b.fn)
}

// ShutdownHandle is a bundle of shutdown buttons collected bottom-up
// while lowering a compiled plan. It is the only handle to a compiled
// relation: dropping interest in the relation presses every button it
// holds, bottom-up, releasing every trace import the plan made.
type ShutdownHandle struct {
	mu      sync.Mutex
	buttons []*ShutdownButton
}

// NewShutdownHandle returns an empty bundle.
func NewShutdownHandle() *ShutdownHandle { return &ShutdownHandle{} }

// Add appends a button to the bundle.
func (h *ShutdownHandle) Add(b *ShutdownButton) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buttons = append(h.buttons, b)
}

// Merge absorbs another handle's buttons into h, as lowering merges
// shutdown handles up the plan tree.
func (h *ShutdownHandle) Merge(other *ShutdownHandle) {
	if other == nil {
		return
	}
	other.mu.Lock()
	buttons := append([]*ShutdownButton(nil), other.buttons...)
	other.mu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.buttons = append(h.buttons, buttons...)
}

// Press presses every button in the bundle, bottom-up (in the order
// they were added, which is leaf-first by construction).
func (h *ShutdownHandle) Press() {
	h.mu.Lock()
	buttons := append([]*ShutdownButton(nil), h.buttons...)
	h.buttons = nil
	h.mu.Unlock()

	for _, b := range buttons {
		b.Press()
	}
}

// Len reports how many buttons remain unpressed, used by tests to
// assert teardown reaches zero live buttons within bounded steps.
func (h *ShutdownHandle) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.buttons)
}
