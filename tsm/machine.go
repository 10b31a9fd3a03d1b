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

import (
	"sync"
	"sync/atomic"

	"github.com/massenz/tsm-go/logging"
)

// StateMachine is a State that is also a container of sub-states: it
// owns a TransitionTable, runs the descend/dispatch/bubble-up
// algorithm, and (at the root only) drives an ExecutionPolicy over a
// shared EventQueue. This is the direct, de-templatized translation of
// original_source/tsm.h's StateMachine<DerivedHSM>: guards and actions
// are closures carried by Transition instead of member-pointers bound
// to a derived type (REDESIGN FLAGS, spec.md §9).
type StateMachine struct {
	id   int
	name string

	startState State
	stopState  State
	table      *TransitionTable
	events     map[EventID]bool

	queue  *EventQueue
	policy ExecutionPolicy
	sink   logging.Sink

	parent State

	// currentStateMu guards currentState against the one read path that
	// is not the dispatch goroutine: external diagnostics (server
	// package). Every write, and every read from Execute/dispatch
	// itself, still happens exclusively on the dispatch goroutine: this
	// lock only exists so a concurrent GetCurrentState() call from an
	// HTTP handler goroutine never races with it.
	currentStateMu sync.RWMutex
	currentState   State

	interrupt int32 // atomic bool: 0 = running, 1 = exited
	started   int32 // atomic bool: guards Add-after-Start (§3 invariant 5)

	// dispatching is set by ThreadedPolicy's own goroutine for the
	// duration of each Dispatch call, and read by OnExit to tell a
	// self-triggered shutdown (stopState reached while running on that
	// goroutine) apart from one requested by another goroutine (§5
	// Cancellation & shutdown).
	dispatching int32

	outcome OutcomeHook
}

// OutcomeHook is notified once per Execute call that reaches this
// machine's table, whether or not a transition actually fired --
// matched is false on a table miss (before any bubbling), guardPassed
// is false only when matched is true but the transition's Guard
// rejected it. This is the same decoupling idiom as logging.Sink: the
// domain layer (storage.OutcomeStore) turns these calls into
// SPEC_FULL.md §3.3's durable audit record; tsm itself has no notion of
// persistence.
type OutcomeHook func(e Event, fromState, toState string, matched, guardPassed bool)

// SetOutcomeHook installs h, replacing any previously set hook. nil
// disables outcome reporting (the default).
func (m *StateMachine) SetOutcomeHook(h OutcomeHook) {
	m.outcome = h
}

func (m *StateMachine) reportOutcome(e Event, fromState, toState string, matched, guardPassed bool) {
	if m.outcome != nil {
		m.outcome(e, fromState, toState, matched, guardPassed)
	}
}

// NewStateMachine constructs the root of a hierarchy: it owns queue and
// will run its own ExecutionPolicy once Entered. name is diagnostic
// only. startState is entered on OnEntry; stopState (may be nil, if the
// machine never self-terminates) triggers OnExit once reached.
func NewStateMachine(name string, startState, stopState State, queue *EventQueue, sink logging.Sink) *StateMachine {
	if sink == nil {
		sink = logging.NewLog(name)
	}
	m := &StateMachine{
		id:         allocStateId(),
		name:       name,
		startState: startState,
		stopState:  stopState,
		table:      NewTransitionTable(),
		events:     make(map[EventID]bool),
		queue:      queue,
		policy:     NewThreadedPolicy(),
		sink:       sink,
	}
	// startState/stopState are always direct children of m, whether or
	// not a transition naming them is ever Added: without this, a
	// machine with no transitions of its own (legal -- e.g. an
	// orthogonal region that only cares about entry/exit) would leave
	// its child's Parent() nil and break Dispatch's climb back up to m.
	if startState != nil && startState.Parent() == nil {
		startState.SetParent(m)
	}
	if stopState != nil && stopState.Parent() == nil {
		stopState.SetParent(m)
	}
	return m
}

// NewSubStateMachine constructs a nested machine sharing the parent
// hierarchy's EventQueue; nested machines never own or start a policy
// of their own (§3 invariant 3: only the root owns the event-loop).
// parent must be set before the enclosing composite's own onEntry.
func NewSubStateMachine(name string, startState, stopState State, queue *EventQueue, sink logging.Sink) *StateMachine {
	m := NewStateMachine(name, startState, stopState, queue, sink)
	m.policy = nil
	return m
}

func (m *StateMachine) Id() int      { return m.id }
func (m *StateMachine) Name() string { return m.name }
func (m *StateMachine) Parent() State { return m.parent }
func (m *StateMachine) SetParent(p State) { m.parent = p }

// Queue returns the EventQueue this machine's hierarchy shares -- the
// handle external producers (the server package's HTTP handler and the
// pubsub package's EventsListener) push Events onto.
func (m *StateMachine) Queue() *EventQueue { return m.queue }

// Table returns this machine's own TransitionTable -- used by the
// server package's introspection endpoint (SPEC_FULL.md §4) to Dump a
// mounted machine's recognized transitions. Does not recurse into
// sub-machines: each StateMachine in a hierarchy owns its own table.
func (m *StateMachine) Table() *TransitionTable { return m.table }

func (m *StateMachine) logger() logging.Sink { return m.sink }

func (m *StateMachine) interrupted() bool {
	return atomic.LoadInt32(&m.interrupt) == 1
}

// WithPolicy overrides the default ThreadedPolicy -- e.g. with a
// SteppingPolicy -- before the machine is Entered. No-op on a nested
// machine (nested machines never have a policy).
func (m *StateMachine) WithPolicy(p ExecutionPolicy) *StateMachine {
	if m.policy != nil {
		m.policy = p
	}
	return m
}

// Add inserts a transition and records trigger in the recognized-event
// set. Legal only before Start (OnEntry); returns ErrAlreadyStarted
// otherwise, and ErrDuplicateTransition if the (from, event) key is
// already populated.
func (m *StateMachine) Add(from State, trigger EventID, to State, action ActionFunc, guard GuardFunc) error {
	if atomic.LoadInt32(&m.started) == 1 {
		return ErrAlreadyStarted
	}
	t := &Transition{From: from, Trigger: trigger, To: to, Guard: guard, Action: action}
	if err := m.table.Insert(t); err != nil {
		return err
	}
	m.events[trigger] = true
	// Every from/to State of a transition owned by this machine is a
	// direct child of it: wiring Parent here is what lets Dispatch climb
	// back up from "active" to "activeMachine" (§3 invariant 2).
	if from.Parent() == nil {
		from.SetParent(m)
	}
	if to.Parent() == nil {
		to.SetParent(m)
	}
	return nil
}

// GetEvents returns the set of EventIDs this machine recognizes (i.e.
// has at least one transition keyed on), derived from the table.
func (m *StateMachine) GetEvents() map[EventID]bool {
	return m.events
}

func (m *StateMachine) recognizes(id EventID) bool {
	return m.events[id]
}

// GetCurrentState returns this machine's direct active child (which may
// itself be a nested StateMachine), or nil before entry / after exit.
func (m *StateMachine) GetCurrentState() State {
	m.currentStateMu.RLock()
	defer m.currentStateMu.RUnlock()
	return m.currentState
}

func (m *StateMachine) setCurrentState(s State) {
	m.currentStateMu.Lock()
	m.currentState = s
	m.currentStateMu.Unlock()
}

// CurrentState implements the State interface: returns this machine's
// direct active child (itself, if not yet entered / already exited).
// It does NOT recurse into the child's own CurrentState -- that
// recursive descent is Dispatch's job, performed once per Event, not
// baked into the accessor (mirrors original_source/tsm.h, where
// StateMachine::getCurrentState returns the bare currentState_ field).
func (m *StateMachine) CurrentState() State {
	cur := m.GetCurrentState()
	if cur == nil {
		return m
	}
	return cur
}

// OnEntry enters startState and, for the root only, launches the
// ExecutionPolicy's dispatch loop. Re-entering a composite always
// resets to startState: there is no history pseudo-state (spec.md §9
// Open Question 4).
func (m *StateMachine) OnEntry(e Event) {
	m.sink.Emit(logging.INFO, "entering "+m.name)
	atomic.StoreInt32(&m.started, 1)
	m.setCurrentState(m.startState)
	if m.startState != nil {
		m.startState.OnEntry(e)
	}
	if m.isRoot() && m.policy != nil {
		m.policy.Start(m)
	}
}

// isRoot reports whether this machine owns the event loop: true iff it
// has no parent. Nested machines (including orthogonal children) always
// have parent != nil by the time they are Entered.
func (m *StateMachine) isRoot() bool {
	return m.parent == nil
}

// OnExit clears currentState, sets the interrupt flag, and -- at the
// root -- stops the queue before joining the policy's loop. Idempotent:
// a second call observes interrupt already set and returns immediately
// (§5 Cancellation & shutdown).
func (m *StateMachine) OnExit(e Event) {
	if !atomic.CompareAndSwapInt32(&m.interrupt, 0, 1) {
		return // already exited; idempotent per spec.md §5
	}
	cur := m.GetCurrentState()
	if cur != nil && cur != State(m) {
		cur.OnExit(e)
	}
	m.setCurrentState(nil)
	m.sink.Emit(logging.INFO, "exiting "+m.name)
	if m.isRoot() {
		// Stop the queue BEFORE joining the policy: if the dispatch
		// goroutine is already blocked in NextEvent, only Stop can wake
		// it (§5 Cancellation & shutdown: "onExit at the root must call
		// eventQueue.stop() before policy.stop()").
		m.queue.Stop()
		// A self-triggered shutdown -- Execute reached stopState while
		// running on ThreadedPolicy's own goroutine -- must not join
		// that goroutine from within itself: its wg.Done() cannot fire
		// until this very call returns. The queue is already stopped,
		// so the loop's next NextEvent call observes ErrInterrupted and
		// exits on its own. A shutdown requested from any other
		// goroutine still joins normally.
		if m.policy != nil && atomic.LoadInt32(&m.dispatching) == 0 {
			m.policy.Stop()
		}
	}
}

// Execute is the dispatch entry point for one Event, called by the
// ExecutionPolicy (root) after descending to the innermost active
// machine, or by a parent's bubble-up.
//
// Lookup hit: evaluate the guard (if any). False guard => log and leave
// currentState untouched, no bubbling. True/absent guard => run the
// transition, update currentState, and -- if currentState now equals
// stopState -- call OnExit immediately.
//
// Lookup miss: delegate to parent.Execute; with no parent, log
// ErrNoParent and drop the event (continue-on-error, spec.md §7).
func (m *StateMachine) Execute(e Event) {
	cur := m.GetCurrentState()
	if cur == nil {
		return
	}
	m.sink.Emit(logging.INFO, "current state "+cur.Name()+" event "+e.String())

	t, ok := m.table.Next(cur, e.ID)
	if !ok {
		m.reportOutcome(e, cur.Name(), cur.Name(), false, false)
		if m.parent != nil {
			m.parent.Execute(e)
		} else {
			m.sink.Emit(logging.ERROR, ErrNoParent.Error()+": "+e.String())
		}
		return
	}

	if t.Guard != nil && !t.Guard(e) {
		m.sink.Emit(logging.INFO, "guard prevented transition on "+e.String())
		m.reportOutcome(e, cur.Name(), cur.Name(), true, false)
		return
	}

	t.DoTransition(e)
	m.setCurrentState(t.To)
	m.sink.Emit(logging.INFO, "next state "+t.To.Name())
	m.reportOutcome(e, cur.Name(), t.To.Name(), true, true)

	if m.stopState != nil && t.To.Id() == m.stopState.Id() {
		m.OnExit(e)
	}
}

// descend repeatedly replaces cursor with cursor.CurrentState() while
// that changes the cursor, per spec.md §4.F step 1. The result is
// "active": the innermost State reachable from root with no further
// active child of its own.
func descend(root State) State {
	cursor := root
	for {
		next := cursor.CurrentState()
		if next.Id() == cursor.Id() {
			return cursor
		}
		cursor = next
	}
}

// Dispatch implements spec.md §4.F steps 1-2: it descends from root to
// the innermost active State, then calls Execute on that State's
// enclosing machine ("activeMachine"). Root machines use this as their
// ExecutionPolicy's delivery function; OrthogonalHSM uses it to deliver
// into whichever child recognizes the Event, so that a child's own
// internal nesting is descended into exactly the same way a true root
// would.
func Dispatch(root State, e Event) {
	active := descend(root)
	activeMachine := active.Parent()
	if activeMachine == nil {
		activeMachine = root
	}
	activeMachine.Execute(e)
}
