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

package tsm_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/massenz/tsm-go/logging"
	. "github.com/massenz/tsm-go/tsm"
)

const (
	evGo EventID = iota + 1
	evLand
	evNope
)

var _ = Describe("StateMachine", func() {

	var (
		queue *EventQueue
		a, b, c *BaseState
		m       *StateMachine
		policy  *SteppingPolicy
	)

	// buildSimple wires a -> b -> c (c is the stop state) on a
	// SteppingPolicy, so tests drive the dispatch loop one Event at a
	// time instead of racing a goroutine.
	buildSimple := func() {
		queue = NewEventQueue()
		a = NewState("a")
		b = NewState("b")
		c = NewState("c")
		m = NewStateMachine("simple", a, c, queue, logging.NewNullLog("simple"))
		policy = NewSteppingPolicy()
		m.WithPolicy(policy)
	}

	Context("with a linear a->b->c chain", func() {
		BeforeEach(func() {
			buildSimple()
			Expect(m.Add(a, evGo, b, nil, nil)).ToNot(HaveOccurred())
			Expect(m.Add(b, evLand, c, nil, nil)).ToNot(HaveOccurred())
		})

		It("starts in the configured startState", func() {
			m.OnEntry(NewEvent(0, "start"))
			Expect(m.GetCurrentState().Name()).To(Equal("a"))
		})

		It("transitions on a recognized event", func() {
			m.OnEntry(NewEvent(0, "start"))
			queue.Push(NewEvent(evGo, "go"))
			Expect(policy.Step()).ToNot(HaveOccurred())
			Expect(m.GetCurrentState().Name()).To(Equal("b"))
		})

		It("ignores an unrecognized event and keeps its current state", func() {
			m.OnEntry(NewEvent(0, "start"))
			queue.Push(NewEvent(evNope, "nope"))
			Expect(policy.Step()).ToNot(HaveOccurred())
			Expect(m.GetCurrentState().Name()).To(Equal("a"))
		})

		It("rejects Add once the machine has started", func() {
			m.OnEntry(NewEvent(0, "start"))
			err := m.Add(a, evNope, c, nil, nil)
			Expect(err).To(MatchError(ErrAlreadyStarted))
		})

		It("rejects a duplicate (from, event) transition", func() {
			err := m.Add(a, evGo, c, nil, nil)
			Expect(err).To(MatchError(ErrDuplicateTransition))
		})

		It("reaches the stop state and exits the machine", func() {
			m.OnEntry(NewEvent(0, "start"))
			queue.Push(NewEvent(evGo, "go"))
			Expect(policy.Step()).ToNot(HaveOccurred())
			queue.Push(NewEvent(evLand, "land"))
			Expect(policy.Step()).ToNot(HaveOccurred())

			Expect(m.GetCurrentState()).To(BeNil())
			Expect(queue.Stopped()).To(BeTrue())
		})
	})

	Context("with a guarded transition", func() {
		var allowed bool

		BeforeEach(func() {
			buildSimple()
			allowed = false
			guard := func(Event) bool { return allowed }
			Expect(m.Add(a, evGo, b, nil, guard)).ToNot(HaveOccurred())
			m.OnEntry(NewEvent(0, "start"))
		})

		It("does not transition while the guard is false", func() {
			queue.Push(NewEvent(evGo, "go"))
			Expect(policy.Step()).ToNot(HaveOccurred())
			Expect(m.GetCurrentState().Name()).To(Equal("a"))
		})

		It("transitions once the guard becomes true", func() {
			allowed = true
			queue.Push(NewEvent(evGo, "go"))
			Expect(policy.Step()).ToNot(HaveOccurred())
			Expect(m.GetCurrentState().Name()).To(Equal("b"))
		})
	})

	Context("with an OutcomeHook installed", func() {
		It("reports a matched, guard-passed transition", func() {
			buildSimple()
			Expect(m.Add(a, evGo, b, nil, nil)).ToNot(HaveOccurred())

			var reported []bool
			m.SetOutcomeHook(func(e Event, from, to string, matched, guardPassed bool) {
				reported = append(reported, matched, guardPassed)
				Expect(from).To(Equal("a"))
				Expect(to).To(Equal("b"))
				Expect(e.CorrelationID).To(Equal("req-42"))
			})

			m.OnEntry(NewEvent(0, "start"))
			queue.Push(NewEventWithCorrelation(evGo, "go", nil, "req-42"))
			Expect(policy.Step()).ToNot(HaveOccurred())

			Expect(reported).To(Equal([]bool{true, true}))
		})

		It("reports an unmatched event with matched=false", func() {
			buildSimple()
			Expect(m.Add(a, evGo, b, nil, nil)).ToNot(HaveOccurred())

			var matched, guardPassed bool
			var called bool
			m.SetOutcomeHook(func(e Event, from, to string, matchedArg, guardArg bool) {
				called = true
				matched, guardPassed = matchedArg, guardArg
			})

			m.OnEntry(NewEvent(0, "start"))
			queue.Push(NewEvent(evNope, "nope"))
			Expect(policy.Step()).ToNot(HaveOccurred())

			Expect(called).To(BeTrue())
			Expect(matched).To(BeFalse())
			Expect(guardPassed).To(BeFalse())
		})
	})

	Context("with an action attached to a transition", func() {
		It("runs the action between OnExit and OnEntry", func() {
			buildSimple()
			var order []string
			onExitA := func(Event) { order = append(order, "exit-a") }
			onEntryB := func(Event) { order = append(order, "enter-b") }
			a2 := NewStateWithHooks("a", nil, onExitA)
			b2 := NewStateWithHooks("b", onEntryB, nil)
			m2 := NewStateMachine("withAction", a2, nil, queue, logging.NewNullLog("withAction"))
			sp := NewSteppingPolicy()
			m2.WithPolicy(sp)
			Expect(m2.Add(a2, evGo, b2, func(Event) { order = append(order, "action") }, nil)).ToNot(HaveOccurred())

			m2.OnEntry(NewEvent(0, "start"))
			queue.Push(NewEvent(evGo, "go"))
			Expect(sp.Step()).ToNot(HaveOccurred())

			Expect(order).To(Equal([]string{"exit-a", "action", "enter-b"}))
		})
	})

	Context("with the default ThreadedPolicy", func() {
		It("reaches the stop state and shuts down without deadlocking", func() {
			tq := NewEventQueue()
			ta := NewState("a")
			tb := NewState("b")
			tc := NewState("c")
			tm := NewStateMachine("threaded", ta, tc, tq, logging.NewNullLog("threaded"))
			Expect(tm.Add(ta, evGo, tb, nil, nil)).ToNot(HaveOccurred())
			Expect(tm.Add(tb, evLand, tc, nil, nil)).ToNot(HaveOccurred())

			// OnEntry starts the default ThreadedPolicy's dispatch
			// goroutine; the events below are consumed on that
			// goroutine, including the one that lands on tc and
			// triggers a self-triggered OnExit/Stop from within it.
			tm.OnEntry(NewEvent(0, "start"))
			tq.Push(NewEvent(evGo, "go"))
			tq.Push(NewEvent(evLand, "land"))

			Eventually(func() bool { return tq.Stopped() }, "1s", "5ms").Should(BeTrue())
			Eventually(tm.GetCurrentState, "1s", "5ms").Should(BeNil())
		})
	})
})
