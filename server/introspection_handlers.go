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

	"github.com/gorilla/mux"

	"github.com/massenz/tsm-go/logging"
)

// lineCollector is a logging.Sink that appends every Emit-ed line
// instead of writing it anywhere -- exactly what TransitionTable.Dump
// needs to hand its rows to an HTTP response instead of a log stream.
type lineCollector struct {
	lines []string
}

func (c *lineCollector) Emit(_ logging.LogLevel, line string) {
	c.lines = append(c.lines, line)
}

// ListMachinesHandler reports the names of every machine mounted in the
// Registry -- the "machine registry metadata" diagnostic surface
// SPEC_FULL.md §3.3 calls for.
func (s *Server) ListMachinesHandler(w http.ResponseWriter, r *http.Request) {
	defer s.trace(r.RequestURI)()
	defaultContent(w)
	json.NewEncoder(w).Encode(s.Registry.Names())
}

// DumpMachineHandler reports the named machine's recognized transitions
// via tsm.TransitionTable.Dump (SPEC_FULL.md §4), the restored
// original_source/tsm.h StateTransitionTable::print() debug dumper.
func (s *Server) DumpMachineHandler(w http.ResponseWriter, r *http.Request) {
	defer s.trace(r.RequestURI)()
	defaultContent(w)

	name := mux.Vars(r)["machine"]
	machine, ok := s.Registry.Get(name)
	if !ok {
		http.Error(w, "no machine registered under "+name, http.StatusNotFound)
		return
	}

	collector := &lineCollector{}
	machine.Table().Dump(collector)
	json.NewEncoder(w).Encode(MachineResponse{Name: name, Transitions: collector.lines})
}
