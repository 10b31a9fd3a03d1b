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

package pubsub

import (
	"github.com/google/uuid"

	"github.com/massenz/tsm-go/logging"
	"github.com/massenz/tsm-go/tsm"
)

// Resolver is the one capability EventsListener needs from a machine
// registry: translate a (machine, event) name pair into the machine to
// push onto and the EventID its table is keyed with. server.Registry
// satisfies this without pubsub importing the server package -- the
// dependency direction in this port is ingress-adapters -> tsm, never
// ingress-adapter -> ingress-adapter.
type Resolver interface {
	Resolve(machineName, eventName string) (*tsm.StateMachine, tsm.EventID, error)
}

// EventsListener drains an EventMessage channel (fed by SqsSubscriber,
// or anything else producing the same IR) and, for each message,
// resolves and pushes a correlated tsm.Event onto the target machine's
// queue. A message that cannot be resolved is reported on
// notifications instead of being dropped silently -- grounded on the
// teacher's pkg/pubsub/listener.go EventsListener.ListenForMessages,
// generalized from its Configuration/FiniteStateMachine store lookups
// to a Resolver lookup.
type EventsListener struct {
	logger        logging.Sink
	events        <-chan EventMessage
	resolver      Resolver
	notifications chan<- FailureNotification
}

// ListenerOptions bundles EventsListener's collaborators, mirroring the
// teacher's ListenerOptions struct.
type ListenerOptions struct {
	EventsChannel        <-chan EventMessage
	Resolver             Resolver
	NotificationsChannel chan<- FailureNotification
	Logger               logging.Sink
}

func NewEventsListener(options *ListenerOptions) *EventsListener {
	sink := options.Logger
	if sink == nil {
		sink = logging.NewLog("Listener")
	}
	return &EventsListener{
		logger:        sink,
		events:        options.EventsChannel,
		resolver:      options.Resolver,
		notifications: options.NotificationsChannel,
	}
}

// ListenForMessages runs until events is closed.
func (l *EventsListener) ListenForMessages() {
	l.logger.Emit(logging.INFO, "events message listener started")
	for msg := range l.events {
		l.logger.Emit(logging.DEBUG, "received "+msg.String())

		if msg.Machine == "" || msg.Event == "" {
			l.fail(msg, "both \"machine\" and \"event\" are required")
			continue
		}
		machine, eventId, err := l.resolver.Resolve(msg.Machine, msg.Event)
		if err != nil {
			l.fail(msg, err.Error())
			continue
		}

		correlationId := msg.EventID
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		machine.Queue().Push(tsm.NewEventWithCorrelation(eventId, msg.Event, msg.Payload, correlationId))
		l.logger.Emit(logging.DEBUG, "dispatched "+msg.String()+" as "+correlationId)
	}
}

func (l *EventsListener) fail(msg EventMessage, reason string) {
	l.logger.Emit(logging.ERROR, "["+msg.String()+"]: "+reason)
	if l.notifications == nil {
		return
	}
	l.notifications <- FailureNotification{
		EventID:   msg.EventID,
		Machine:   msg.Machine,
		Event:     msg.Event,
		Reason:    reason,
		Timestamp: msg.Timestamp,
	}
}
