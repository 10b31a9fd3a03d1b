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

import "fmt"

var (
	// ErrInterrupted is returned by EventQueue.NextEvent when the queue
	// has been stopped while a consumer was waiting (or is already
	// stopped at call time).
	ErrInterrupted = fmt.Errorf("event queue interrupted")

	// ErrDuplicateTransition is returned by TransitionTable.Insert when a
	// (from, event) key is already populated. See DESIGN.md Open Question 1.
	ErrDuplicateTransition = fmt.Errorf("a transition for this (state, event) pair already exists")

	// ErrAlreadyStarted is returned by Add when called after Start.
	ErrAlreadyStarted = fmt.Errorf("cannot add transitions after the machine has started")

	// ErrNotStarted names the never-entered lifecycle misuse; no function
	// in this package returns it.
	ErrNotStarted = fmt.Errorf("machine has not been started")

	// ErrNoParent is logged (not returned -- bubbling failures are not fatal)
	// when an event reaches the top-level machine with no matching transition.
	ErrNoParent = fmt.Errorf("unhandled event at top level")

	// ErrUnexpectedInterrupt is the fatal variant of ErrInterrupted: the
	// queue failed while the machine's interrupt flag was not set, i.e.
	// an unrequested shutdown.
	ErrUnexpectedInterrupt = fmt.Errorf("event queue stopped unexpectedly")
)
