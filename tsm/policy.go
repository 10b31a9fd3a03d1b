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
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/massenz/tsm-go/logging"
)

// ExecutionPolicy drives a root StateMachine's dispatch loop. Start
// launches it; Stop waits for it to terminate. Only the root machine of
// a hierarchy owns a policy instance -- nested machines and orthogonal
// children are driven transitively through the same loop.
type ExecutionPolicy interface {
	Start(m *StateMachine)
	Stop()
}

// ThreadedPolicy is the library's default: a dedicated goroutine that
// repeatedly calls EventQueue.NextEvent and hands each Event to the
// root machine's Execute. The goroutine exits cleanly when NextEvent
// fails with ErrInterrupted and the machine's interrupt flag is set; if
// the queue reports ErrInterrupted while the flag is still false, that
// is an unexpected shutdown and is logged as a fatal condition for the
// loop (it still exits -- the policy never panics).
type ThreadedPolicy struct {
	wg      sync.WaitGroup
	fatalCh chan error
}

// NewThreadedPolicy returns an idle ThreadedPolicy.
func NewThreadedPolicy() *ThreadedPolicy {
	return &ThreadedPolicy{fatalCh: make(chan error, 1)}
}

func (p *ThreadedPolicy) Start(m *StateMachine) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			e, err := m.queue.NextEvent()
			if err != nil {
				if m.interrupted() {
					m.logger().Emit(logging.WARN, fmt.Sprintf("%s: exiting event loop on interrupt", m.Name()))
					return
				}
				m.logger().Emit(logging.ERROR, fmt.Sprintf("%s: event queue failed unexpectedly: %s", m.Name(), err.Error()))
				select {
				case p.fatalCh <- ErrUnexpectedInterrupt:
				default:
				}
				return
			}
			// Flagged for the duration of the call so that, if Dispatch
			// runs this machine all the way to stopState, OnExit can
			// tell it is being invoked from this very goroutine and
			// skip joining it (see machine.go OnExit).
			atomic.StoreInt32(&m.dispatching, 1)
			Dispatch(m, e)
			atomic.StoreInt32(&m.dispatching, 0)
		}
	}()
}

func (p *ThreadedPolicy) Stop() {
	p.wg.Wait()
}

// FatalErr returns the loop's unexpected-shutdown error, if any, after
// Stop has returned. Returns nil on a graceful shutdown.
func (p *ThreadedPolicy) FatalErr() error {
	select {
	case err := <-p.fatalCh:
		return err
	default:
		return nil
	}
}

// SteppingPolicy is a cooperative, caller-driven policy: instead of
// owning a goroutine, it exposes Step, which processes at most one
// queued Event per call. original_source/tsm.h declares
// StateMachineExecutionPolicy as a bare interface with no comment ruling
// out additional implementations; SteppingPolicy is the natural second
// one (SPEC_FULL.md §4), useful for single-threaded hosts (tests, a
// cooperative scheduler, a UI event loop) that want to pump the machine
// themselves rather than hand it a dedicated thread.
type SteppingPolicy struct {
	machine *StateMachine
	done    bool
}

func NewSteppingPolicy() *SteppingPolicy {
	return &SteppingPolicy{}
}

// Start records the machine to drive; unlike ThreadedPolicy it spawns
// no goroutine -- the caller must invoke Step.
func (p *SteppingPolicy) Start(m *StateMachine) {
	p.machine = m
}

// Stop is a no-op: there is no background goroutine to join.
func (p *SteppingPolicy) Stop() {}

// Step blocks until one Event is available and dispatches it, or
// returns ErrInterrupted once the queue has been stopped and drained;
// callers should stop calling Step at that point. Unlike ThreadedPolicy,
// no goroutine is spawned to do the blocking -- the caller's own
// goroutine blocks inside Step, for hosts that want to own that thread
// themselves.
func (p *SteppingPolicy) Step() error {
	if p.done {
		return ErrInterrupted
	}
	e, err := p.machine.queue.NextEvent()
	if err != nil {
		p.done = true
		return err
	}
	Dispatch(p.machine, e)
	return nil
}
