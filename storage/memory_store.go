/*
 * Copyright (c) 2022 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package storage

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/massenz/tsm-go/logging"
)

// InMemoryStore is an OutcomeStore for tests and single-process demos:
// a plain map guarded by a RWMutex, JSON-encoded the same way RedisStore
// encodes its values, so the two are interchangeable in tests.
type InMemoryStore struct {
	logger       logging.Sink
	mux          sync.RWMutex
	backingStore map[string][]byte
}

func NewInMemoryStore() OutcomeStore {
	return &InMemoryStore{
		backingStore: make(map[string][]byte),
		logger:       logging.NewLog("InMemoryStore"),
	}
}

func (s *InMemoryStore) PutOutcome(outcome *EventOutcome, _ time.Duration) error {
	if outcome == nil {
		return IllegalStoreError("<nil>")
	}
	data, err := json.Marshal(outcome)
	if err != nil {
		return err
	}
	key := NewKeyForOutcome(outcome.EventID, outcome.MachineName)
	s.mux.Lock()
	defer s.mux.Unlock()
	s.backingStore[key] = data
	return nil
}

func (s *InMemoryStore) GetOutcome(eventID, machineName string) (*EventOutcome, bool) {
	key := NewKeyForOutcome(eventID, machineName)
	s.mux.RLock()
	data, ok := s.backingStore[key]
	s.mux.RUnlock()
	if !ok {
		return nil, false
	}
	var outcome EventOutcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		s.logger.Emit(logging.ERROR, "corrupt outcome record for key "+key+": "+err.Error())
		return nil, false
	}
	return &outcome, true
}

// SetTimeout/GetTimeout are no-ops for an in-memory store: there is no
// network round-trip to bound.
func (s *InMemoryStore) SetTimeout(time.Duration) {}
func (s *InMemoryStore) GetTimeout() time.Duration { return NeverExpire }

func (s *InMemoryStore) Health() error { return nil }

func (s *InMemoryStore) SetLogLevel(level logging.LogLevel) {
	if l, ok := s.logger.(logging.Loggable); ok {
		l.SetLogLevel(level)
	}
}
