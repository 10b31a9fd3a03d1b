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
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/massenz/tsm-go/logging"
	"github.com/massenz/tsm-go/tsm"
)

// NOTE: handlers are exported (not package-private closures) so they can
// be exercised directly as well as through the router, matching the
// teacher's server/handlers.go convention.

// PostEventHandler implements SPEC_FULL.md §3.1: decode the request,
// resolve (machine, event) through the Registry, push a correlated
// Event onto the machine's queue, and acknowledge with 202 + the
// assigned event id. Dispatch itself happens asynchronously on the
// machine's own dispatch loop -- this handler never calls Execute.
func (s *Server) PostEventHandler(w http.ResponseWriter, r *http.Request) {
	defer s.trace(r.RequestURI)()
	defaultContent(w)

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Machine == "" || req.Event == "" {
		http.Error(w, "both \"machine\" and \"event\" are required", http.StatusBadRequest)
		return
	}

	machine, eventId, err := s.Registry.Resolve(req.Machine, req.Event)
	if err != nil {
		status := http.StatusNotFound
		if errors.Is(err, ErrEventNotRecognized) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	correlationId := uuid.NewString()
	s.sink.Emit(logging.DEBUG, "dispatching "+req.Event+" ("+correlationId+") to "+req.Machine)

	queue := machine.Queue()
	queue.Push(tsm.NewEventWithCorrelation(eventId, req.Event, req.Payload, correlationId))

	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(EventAccepted{EventID: correlationId}); err != nil {
		s.sink.Emit(logging.ERROR, "encoding response: "+err.Error())
	}
}

// GetEventOutcomeHandler implements the polling half of §3.1: {event_id}
// is the correlation id PostEventHandler returned. Since the outcome
// ledger is keyed by (machine, event id) -- see storage/keys.go -- the
// machine name travels as the ?machine= query parameter; the teacher's
// equivalent (GetOutcomeHandler) instead carried it as a path segment
// because its URI scheme nested events under /statemachines/{cfg_name},
// which this port's single flat /events collection does not.
func (s *Server) GetEventOutcomeHandler(w http.ResponseWriter, r *http.Request) {
	defer s.trace(r.RequestURI)()
	defaultContent(w)

	vars := mux.Vars(r)
	eventId := vars["event_id"]
	machineName := r.URL.Query().Get("machine")
	if machineName == "" {
		http.Error(w, "the \"machine\" query parameter is required", http.StatusBadRequest)
		return
	}

	outcome, ok := s.Store.GetOutcome(eventId, machineName)
	if !ok {
		http.Error(w, "outcome not found for event "+eventId, http.StatusNotFound)
		return
	}
	if err := json.NewEncoder(w).Encode(outcome); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
