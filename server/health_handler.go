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
	"net/http"
)

// HealthHandler reports liveness of the outcome store (SPEC_FULL.md
// §3.1) by pinging it via OutcomeStore.Health; it does not probe any
// machine's queue or dispatch loop -- the teacher's HealthHandler left the
// equivalent Redis/SQS check as a TODO; this port actually wires it,
// since OutcomeStore.Health already exists for exactly this purpose
// (storage/interfaces.go).
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	defer s.trace(r.RequestURI)()
	defaultContent(w)

	if err := s.Store.Health(); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(MessageResponse{Error: err.Error()})
		return
	}
	json.NewEncoder(w).Encode(MessageResponse{Message: "UP"})
}
