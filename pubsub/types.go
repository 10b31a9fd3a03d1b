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

// Package pubsub bridges an external SQS topic into the tsm event
// pipeline (SPEC_FULL.md §3.2): messages arrive as JSON-encoded
// EventMessage bodies, get resolved against a Registry the same way the
// server package's POST /api/v1/events does, and land on the named
// machine's EventQueue. Adapted from the teacher's pkg/pubsub
// (zerolog-backed, newer layout) with the wire format switched from
// Base64-encoded Protobuf (pkg/pubsub/sqs_pub.go's
// Base64ProtoMarshaler) to plain JSON, for the same reason storage's
// wire format was switched (DESIGN.md "Dropped dependencies").
package pubsub

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventMessage is the IR (Internal Representation) carried over SQS:
// the named machine, the event to deliver, an optional caller-assigned
// id, and an opaque payload -- deliberately the same shape as
// server.EventRequest, since both are just different transports for the
// same request.
type EventMessage struct {
	Machine   string          `json:"machine"`
	Event     string          `json:"event"`
	EventID   string          `json:"event_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func (m EventMessage) String() string {
	return fmt.Sprintf("%s :: %s (id=%s)", m.Machine, m.Event, m.EventID)
}

// FailureNotification is published to the dead-letter topic when an
// EventMessage cannot be resolved or delivered -- the JSON counterpart
// of the teacher's protos.EventResponse carrying a non-Ok
// protos.EventOutcome.
type FailureNotification struct {
	EventID   string    `json:"event_id"`
	Machine   string    `json:"machine"`
	Event     string    `json:"event"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

func (n FailureNotification) String() string {
	s, err := json.Marshal(n)
	if err != nil {
		return err.Error()
	}
	return string(s)
}

// Not really "variables" -- Go constants can't be of type time.Duration
// derived from ParseDuration, so these follow the teacher's own
// work-around (pkg/pubsub/types.go).
var (
	DefaultPollingInterval, _   = time.ParseDuration("5s")
	DefaultVisibilityTimeout, _ = time.ParseDuration("5s")
)

// DefaultRetries bounds how many times ProcessMessage retries deleting
// a successfully-delivered message from SQS before giving up (the
// message will simply become visible again and be redelivered).
const DefaultRetries = 3
