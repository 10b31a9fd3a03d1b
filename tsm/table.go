/*
 * Copyright (c) 2022 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package tsm

import (
	"fmt"

	"github.com/massenz/tsm-go/logging"
)

// stateEventKey is the TransitionTable key: a State's stable integer id
// (never its Name, never its address) paired with the triggering EventID.
type stateEventKey struct {
	stateId int
	event   EventID
}

// TransitionTable is a (from-state-identity, event-id) -> Transition
// mapping, owned by exactly one StateMachine. Insert is only legal
// before the owning machine is Started; lookups thereafter need no
// locking, since the table is immutable from that point on.
type TransitionTable struct {
	entries map[stateEventKey]*Transition
	// order preserves insertion order for deterministic Dump output.
	order []stateEventKey
}

// NewTransitionTable returns an empty table.
func NewTransitionTable() *TransitionTable {
	return &TransitionTable{entries: make(map[stateEventKey]*Transition)}
}

// Insert adds t, keyed by (t.From.Id(), t.Trigger). Returns
// ErrDuplicateTransition if the key is already populated -- spec.md §9
// Open Question 1 resolves this as a rejection, not a silent overwrite.
func (tt *TransitionTable) Insert(t *Transition) error {
	key := stateEventKey{stateId: t.From.Id(), event: t.Trigger}
	if _, exists := tt.entries[key]; exists {
		return ErrDuplicateTransition
	}
	tt.entries[key] = t
	tt.order = append(tt.order, key)
	return nil
}

// Next looks up the Transition for (from, event), returning ok=false
// when no entry matches -- the caller decides whether to bubble up.
func (tt *TransitionTable) Next(from State, event EventID) (*Transition, bool) {
	t, ok := tt.entries[stateEventKey{stateId: from.Id(), event: event}]
	return t, ok
}

// Dump writes one INFO line per table row to sink -- restores the
// original source's StateTransitionTable::print() debug dumper (see
// SPEC_FULL.md §4).
func (tt *TransitionTable) Dump(sink logging.Sink) {
	for _, key := range tt.order {
		t := tt.entries[key]
		sink.Emit(logging.INFO, fmt.Sprintf("%s, event=%d -> %s", t.From.Name(), key.event, t.To.Name()))
	}
}

func (tt *TransitionTable) String() string {
	return fmt.Sprintf("TransitionTable{%d entries}", len(tt.entries))
}
