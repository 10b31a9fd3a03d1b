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
)

// OutcomeStore persists EventOutcomes, keyed by (machineName, eventID).
// It never stores a machine's live state: re-hydrating a StateMachine is
// explicitly out of scope (spec.md Non-goals), this is a diagnostic
// and audit trail only.
type OutcomeStore interface {
	logging.Loggable

	PutOutcome(outcome *EventOutcome, ttl time.Duration) error
	GetOutcome(eventID, machineName string) (*EventOutcome, bool)

	SetTimeout(duration time.Duration)
	GetTimeout() time.Duration
	Health() error
}
