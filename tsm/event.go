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

import "fmt"

// EventID identifies an Event's kind; machines and transitions are keyed
// by EventID alone, never by payload.
type EventID int

// Event is an immutable token carrying an identifier and an optional,
// opaque payload. Two Events with the same ID compare equal regardless
// of payload.
type Event struct {
	ID      EventID
	Name    string
	Payload interface{}

	// CorrelationID is an opaque, caller-assigned external identifier
	// (e.g. an HTTP-facing UUID) threaded through to OutcomeHook.
	// Core dispatch logic never reads or compares it.
	CorrelationID string
}

// NewEvent builds an Event with no payload.
func NewEvent(id EventID, name string) Event {
	return Event{ID: id, Name: name}
}

// NewEventWithPayload builds an Event carrying an opaque payload.
func NewEventWithPayload(id EventID, name string, payload interface{}) Event {
	return Event{ID: id, Name: name, Payload: payload}
}

// NewEventWithCorrelation builds an Event carrying a payload and an
// external correlation id, for callers (e.g. the server package) that
// need to match an OutcomeHook invocation back to the request that
// caused it.
func NewEventWithCorrelation(id EventID, name string, payload interface{}, correlationID string) Event {
	return Event{ID: id, Name: name, Payload: payload, CorrelationID: correlationID}
}

func (e Event) String() string {
	if e.Name != "" {
		return fmt.Sprintf("%s(%d)", e.Name, e.ID)
	}
	return fmt.Sprintf("event(%d)", e.ID)
}

// Equal compares two Events by identifier only, per spec.
func (e Event) Equal(other Event) bool {
	return e.ID == other.ID
}
