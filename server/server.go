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
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/massenz/tsm-go/logging"
	"github.com/massenz/tsm-go/storage"
)

// Server bundles everything the HTTP handlers need: the machine
// registry (§3.1), the outcome ledger (§3.3), and a Sink. Unlike the
// teacher's http_server.go -- which kept storeManager/logger as bare
// package vars -- this is an instance so tests can stand up an isolated
// Server per Context instead of racing a shared global.
type Server struct {
	Registry *Registry
	Store    storage.OutcomeStore
	sink     logging.Sink

	shouldTrace bool
}

// NewServer wires a Server around an already-populated Registry and an
// OutcomeStore; sink may be nil (defaults to a discarding Log).
func NewServer(reg *Registry, store storage.OutcomeStore, sink logging.Sink) *Server {
	if sink == nil {
		sink = logging.NewNullLog("server")
	}
	return &Server{Registry: reg, Store: store, sink: sink}
}

// EnableTracing turns on the per-request trace() timing line.
func (s *Server) EnableTracing() { s.shouldTrace = true }

func (s *Server) trace(endpoint string) func() {
	if !s.shouldTrace {
		return func() {}
	}
	start := time.Now()
	s.sink.Emit(logging.TRACE, "handling "+endpoint)
	return func() {
		s.sink.Emit(logging.TRACE, endpoint+" took "+time.Since(start).String())
	}
}

func defaultContent(w http.ResponseWriter) {
	w.Header().Add(ContentType, ApplicationJson)
}

// NewRouter returns a gorilla/mux Router wired to s's handlers; exposed
// so path params are testable the way the teacher's NewRouter is
// (server/http_server.go).
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(HealthEndpoint, s.HealthHandler).Methods("GET")
	r.HandleFunc(EventsEndpoint, s.PostEventHandler).Methods("POST")
	r.HandleFunc(EventsEndpoint+"/{event_id}", s.GetEventOutcomeHandler).Methods("GET")
	r.HandleFunc(MachinesEndpoint, s.ListMachinesHandler).Methods("GET")
	r.HandleFunc(MachinesEndpoint+"/{machine}", s.DumpMachineHandler).Methods("GET")
	return r
}

// NewHTTPServer returns a stdlib http.Server bound to addr and s's
// router, per the teacher's NewHTTPServer shape.
func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: s.NewRouter(),
	}
}
