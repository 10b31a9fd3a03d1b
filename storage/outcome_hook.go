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

package storage

import (
	"time"

	"github.com/massenz/tsm-go/logging"
	"github.com/massenz/tsm-go/tsm"
)

// NewOutcomeHook adapts an OutcomeStore into a tsm.OutcomeHook: every
// Execute call that reaches machineName's table is recorded as an
// EventOutcome, keyed by the dispatched Event's CorrelationID. Grounded
// on the teacher's pkg/storage/redis_store.go PutEvent (persist once an
// Event has been applied to a Configuration), generalized from a
// Configuration-scoped write to this port's flat (eventID, machineName)
// ledger (storage/keys.go).
//
// A CorrelationID-less Event (e.g. one driven directly in Go code,
// never through the server/pubsub ingress) is recorded under its own
// Event.String() instead of silently dropped, so OutcomeHook's
// "notified once per Execute call" guarantee (tsm/machine.go) still
// holds for callers that poll GetOutcome.
func NewOutcomeHook(store OutcomeStore, machineName string, ttl time.Duration, sink logging.Sink) tsm.OutcomeHook {
	if sink == nil {
		sink = logging.NewNullLog(machineName + "-outcomes")
	}
	return func(e tsm.Event, fromState, toState string, matched, guardPassed bool) {
		id := e.CorrelationID
		if id == "" {
			id = e.String()
		}
		err := store.PutOutcome(&EventOutcome{
			EventID:     id,
			MachineName: machineName,
			FromState:   fromState,
			ToState:     toState,
			Matched:     matched,
			GuardPassed: guardPassed,
			Timestamp:   time.Now(),
		}, ttl)
		if err != nil {
			sink.Emit(logging.ERROR, "failed to record outcome for "+id+": "+err.Error())
		}
	}
}
