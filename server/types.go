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

const (
	ApiPrefix        = "/api/v1"
	EventsEndpoint   = ApiPrefix + "/events"
	MachinesEndpoint = ApiPrefix + "/machines"
	HealthEndpoint   = "/health"

	ContentType     = "Content-Type"
	ApplicationJson = "application/json"
)

// EventRequest is the POST /api/v1/events request body: the target
// machine (by the name it was Registered under) and the event to deliver.
type EventRequest struct {
	Machine string      `json:"machine"`
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventAccepted is returned immediately on a successful POST: dispatch
// is asynchronous (SPEC_FULL.md §3.1), so this is an acknowledgement,
// not an outcome.
type EventAccepted struct {
	EventID string `json:"event_id"`
}

// MessageResponse is returned when a more specific response type isn't
// warranted -- errors, health.
type MessageResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// MachineResponse is the introspection payload for one mounted machine
// (SPEC_FULL.md §4): its name and the transitions its TransitionTable
// recognizes, one line per (state, event) -> target entry, in the same
// format tsm.TransitionTable.Dump emits.
type MachineResponse struct {
	Name        string   `json:"name"`
	Transitions []string `json:"transitions"`
}
