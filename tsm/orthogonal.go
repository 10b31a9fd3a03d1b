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

import "github.com/massenz/tsm-go/logging"

// OrthogonalHSM is a StateMachine whose "sub-state" is the pair
// (hsm1, hsm2): both children see every Event delivered to the
// orthogonal region, each handling only the ones it recognizes.
// Grounded on original_source/tsm.h's OrthogonalHSM<DerivedHSM1,
// DerivedHSM2>, de-templatized to two plain *StateMachine fields.
type OrthogonalHSM struct {
	*StateMachine
	hsm1 *StateMachine
	hsm2 *StateMachine
}

// NewOrthogonalHSM composes hsm1 and hsm2 into a single region: both
// become children of the result, and the region's own CurrentState
// always reports hsm1 (the original source's choice, carried over
// unchanged -- see CurrentState below).
func NewOrthogonalHSM(name string, queue *EventQueue, hsm1, hsm2 *StateMachine, sink logging.Sink) *OrthogonalHSM {
	base := NewStateMachine(name, hsm1, nil, queue, sink)
	o := &OrthogonalHSM{StateMachine: base, hsm1: hsm1, hsm2: hsm2}
	hsm1.SetParent(o)
	hsm2.SetParent(o)
	return o
}

// Hsm1 and Hsm2 expose the two regions for diagnostics/tests.
func (o *OrthogonalHSM) Hsm1() *StateMachine { return o.hsm1 }
func (o *OrthogonalHSM) Hsm2() *StateMachine { return o.hsm2 }

// OnEntry enters hsm1 (via the embedded StateMachine's own OnEntry,
// since startState was set to hsm1 -- this is also what starts the
// ExecutionPolicy, if this OrthogonalHSM is the root), then hsm2.
func (o *OrthogonalHSM) OnEntry(e Event) {
	o.StateMachine.OnEntry(e) // enters hsm1 as this machine's startState
	o.hsm2.OnEntry(e)
}

// OnExit mirrors OnEntry in reverse: hsm2 first, then hsm1 (via the
// embedded StateMachine's OnExit, since hsm1 is this machine's tracked
// currentState) and, at the root, the queue/policy teardown.
func (o *OrthogonalHSM) OnExit(e Event) {
	o.hsm2.OnExit(e)
	o.StateMachine.OnExit(e) // exits hsm1, then (at the root) queue+policy
}

// Execute routes e to whichever child recognizes it: hsm1 first, then
// hsm2. If both recognize it, hsm1 wins -- a deliberate tie-break
// preserved from the original source (DESIGN.md Open Question 2), not
// an oversight. If neither recognizes it, bubble to the parent, or log
// unhandled at the root.
func (o *OrthogonalHSM) Execute(e Event) {
	switch {
	case o.hsm1.recognizes(e.ID):
		Dispatch(o.hsm1, e)
	case o.hsm2.recognizes(e.ID):
		Dispatch(o.hsm2, e)
	case o.Parent() != nil:
		o.Parent().Execute(e)
	default:
		o.StateMachine.logger().Emit(logging.ERROR, ErrNoParent.Error()+": "+e.String())
	}
}

// CurrentState always reports hsm1, regardless of which child last
// transitioned -- matching original_source/tsm.h's
// `OrthogonalHSM::getCurrentState` override verbatim.
func (o *OrthogonalHSM) CurrentState() State {
	return o.hsm1
}
