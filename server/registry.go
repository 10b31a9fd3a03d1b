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

package server

import (
	"fmt"
	"sync"

	"github.com/massenz/tsm-go/tsm"
)

// entry bundles a running machine with the event-name -> EventID mapping
// its table was built with: tsm itself never knows event names, only
// the EventIDs a TransitionTable is keyed on (tsm/table.go), so the
// network-facing string name has to be resolved one layer up, here.
type entry struct {
	machine *tsm.StateMachine
	events  map[string]tsm.EventID
}

// Registry is the machine-name lookup a running tsmsrv process mounts
// its machines into: SPEC_FULL.md §3.1's POST /api/v1/events addresses a
// machine by name, not by Go identifier, so something has to hold the
// name -> *tsm.StateMachine association outside of tsm itself (which has
// no notion of a process-wide namespace, only parent/child hierarchy).
// Grounded on the teacher's http_server.go package-level
// storeManager/configurationsStore pattern, generalized from a single
// global into a lookup table and made safe for concurrent Register/Get.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register mounts m under name, along with the event-name -> EventID
// table the caller used to build m's transitions. Overwrites any prior
// registration under the same name.
func (r *Registry) Register(name string, m *tsm.StateMachine, events map[string]tsm.EventID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = &entry{machine: m, events: events}
}

// ErrMachineNotFound is returned when a request names a machine that was
// never Registered.
var ErrMachineNotFound = fmt.Errorf("no machine registered under that name")

// ErrEventNotRecognized is returned when a request names an event the
// target machine was never given an EventID for.
var ErrEventNotRecognized = fmt.Errorf("event not recognized by this machine")

// Resolve looks up machineName and translates eventName to the EventID
// it was registered with.
func (r *Registry) Resolve(machineName, eventName string) (*tsm.StateMachine, tsm.EventID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[machineName]
	if !ok {
		return nil, 0, ErrMachineNotFound
	}
	id, ok := e.events[eventName]
	if !ok {
		return nil, 0, ErrEventNotRecognized
	}
	return e.machine, id, nil
}

// Get returns the machine registered under name, for introspection.
func (r *Registry) Get(name string) (*tsm.StateMachine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return e.machine, true
}

// Names returns the currently registered machine names, for diagnostics.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	return names
}
