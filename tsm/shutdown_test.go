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
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/massenz/tsm-go/logging"
	. "github.com/massenz/tsm-go/tsm"
)

const evTick EventID = 300

var _ = Describe("shutdown", func() {

	It("can be stopped from a goroutine other than the dispatch loop", func() {
		queue := NewEventQueue()
		idle := NewState("idle")
		m := NewStateMachine("ticker", idle, nil, queue, logging.NewNullLog("ticker"))
		// no stop state, no transitions: this machine only ever runs
		// its ThreadedPolicy loop until OnExit is called from outside.

		m.OnEntry(NewEvent(0, "start"))
		Eventually(func() State { return m.GetCurrentState() }).ShouldNot(BeNil())

		m.OnExit(NewEvent(0, "shutdown"))

		Expect(queue.Stopped()).To(BeTrue())
		Expect(m.GetCurrentState()).To(BeNil())
	})

	It("is idempotent: a second OnExit is a safe no-op", func() {
		queue := NewEventQueue()
		idle := NewState("idle")
		m := NewStateMachine("ticker", idle, nil, queue, logging.NewNullLog("ticker"))

		m.OnEntry(NewEvent(0, "start"))
		m.OnExit(NewEvent(0, "shutdown"))

		done := make(chan struct{})
		go func() {
			defer close(done)
			m.OnExit(NewEvent(0, "shutdown-again"))
		}()

		Eventually(done, 1*time.Second).Should(BeClosed())
	})

	It("discards events pushed after the queue is stopped", func() {
		queue := NewEventQueue()
		idle := NewState("idle")
		m := NewStateMachine("ticker", idle, nil, queue, logging.NewNullLog("ticker"))
		Expect(m.Add(idle, evTick, idle, nil, nil)).ToNot(HaveOccurred())

		m.OnEntry(NewEvent(0, "start"))
		m.OnExit(NewEvent(0, "shutdown"))

		queue.Push(NewEvent(evTick, "tick"))
		_, err := queue.NextEvent()
		Expect(err).To(MatchError(ErrInterrupted))
	})
})
