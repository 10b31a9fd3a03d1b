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
	evInner EventID = iota + 100
	evOuter
)

var _ = Describe("bubble-up to an enclosing machine", func() {

	It("delegates an event unrecognized by the inner machine to the outer one", func() {
		queue := NewEventQueue()

		leaf1 := NewState("leaf1")
		leaf2 := NewState("leaf2")
		compo := NewSubStateMachine("compo", leaf1, nil, queue, logging.NewNullLog("compo"))
		Expect(compo.Add(leaf1, evInner, leaf2, nil, nil)).ToNot(HaveOccurred())

		other := NewState("other")
		root := NewStateMachine("root", compo, nil, queue, logging.NewNullLog("root"))
		sp := NewSteppingPolicy()
		root.WithPolicy(sp)
		Expect(root.Add(compo, evOuter, other, nil, nil)).ToNot(HaveOccurred())

		root.OnEntry(NewEvent(0, "start"))
		Expect(root.GetCurrentState().Name()).To(Equal("compo"))
		Expect(compo.GetCurrentState().Name()).To(Equal("leaf1"))

		// evOuter is not in compo's table: it must bubble up to root,
		// whose table knows (compo, evOuter) -> other.
		queue.Push(NewEvent(evOuter, "outer"))
		Expect(sp.Step()).ToNot(HaveOccurred())

		Expect(root.GetCurrentState().Name()).To(Equal("other"))
	})

	It("still handles an event the inner machine does recognize, without bubbling", func() {
		queue := NewEventQueue()

		leaf1 := NewState("leaf1")
		leaf2 := NewState("leaf2")
		compo := NewSubStateMachine("compo", leaf1, nil, queue, logging.NewNullLog("compo"))
		Expect(compo.Add(leaf1, evInner, leaf2, nil, nil)).ToNot(HaveOccurred())

		other := NewState("other")
		root := NewStateMachine("root", compo, nil, queue, logging.NewNullLog("root"))
		sp := NewSteppingPolicy()
		root.WithPolicy(sp)
		Expect(root.Add(compo, evOuter, other, nil, nil)).ToNot(HaveOccurred())

		root.OnEntry(NewEvent(0, "start"))
		queue.Push(NewEvent(evInner, "inner"))
		Expect(sp.Step()).ToNot(HaveOccurred())

		Expect(compo.GetCurrentState().Name()).To(Equal("leaf2"))
		Expect(root.GetCurrentState().Name()).To(Equal("compo"))
	})
})
