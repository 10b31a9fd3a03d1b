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

// GuardFunc is a side-effect-free predicate evaluated before a
// transition fires. A nil GuardFunc is treated as "always true".
type GuardFunc func(e Event) bool

// ActionFunc is the side-effecting callback run between the source
// state's OnExit and the target state's OnEntry (or, for an internal
// transition, run on its own).
type ActionFunc func(e Event)

// Transition is a (From, Trigger, To, Guard, Action) tuple. The
// REDESIGN FLAGS in spec.md §9 replace the original's member-pointer
// actions/guards, bound to a derived HSM type, with plain closures that
// already close over whatever context they need.
type Transition struct {
	From    State
	Trigger EventID
	To      State
	Guard   GuardFunc
	Action  ActionFunc
}

// IsInternal reports whether this is a self-transition: From == To by
// identity. Internal transitions suppress entry/exit hooks.
func (t *Transition) IsInternal() bool {
	return t.From.Id() == t.To.Id()
}

// DoTransition runs the transition's side effects. The guard is NOT
// evaluated here -- the caller (StateMachine.Execute) must evaluate it
// first, so that a rejected guard can be logged without side effects.
//
// Internal (From == To): only Action runs, if present.
// External: From.OnExit(e), then Action (if present), then To.OnEntry(e).
func (t *Transition) DoTransition(e Event) {
	if t.IsInternal() {
		if t.Action != nil {
			t.Action(e)
		}
		return
	}
	t.From.OnExit(e)
	if t.Action != nil {
		t.Action(e)
	}
	t.To.OnEntry(e)
}
