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

package storage

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/massenz/tsm-go/logging"
)

// RedisStore is the production OutcomeStore: EventOutcomes JSON-encoded
// into Redis string values, keyed by NewKeyForOutcome. Retry-with-jitter
// and the Health check are adapted unchanged from the teacher's
// protobuf-backed RedisStore -- only the wire codec (JSON, not proto)
// and the single (machineName, eventID) keyspace are new.
type RedisStore struct {
	logger     logging.Sink
	client     *redis.Client
	Timeout    time.Duration
	MaxRetries int
}

func NewRedisStoreWithDefaults(address string) OutcomeStore {
	return NewRedisStore(address, DefaultRedisDb, DefaultTimeout, DefaultMaxRetries)
}

func NewRedisStore(address string, db int, timeout time.Duration, maxRetries int) OutcomeStore {
	logger := logging.NewLog(fmt.Sprintf("redis://%s/%d", address, db))
	var tlsConfig *tls.Config
	if os.Getenv("REDIS_TLS") != "" {
		logger.Info("using TLS for Redis connection")
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return &RedisStore{
		logger: logger,
		client: redis.NewClient(&redis.Options{
			TLSConfig: tlsConfig,
			Addr:      address,
			DB:        db,
		}),
		Timeout:    timeout,
		MaxRetries: maxRetries,
	}
}

func (s *RedisStore) PutOutcome(outcome *EventOutcome, ttl time.Duration) error {
	if outcome == nil {
		return IllegalStoreError("<nil>")
	}
	key := NewKeyForOutcome(outcome.EventID, outcome.MachineName)
	return s.put(key, outcome, ttl)
}

func (s *RedisStore) GetOutcome(eventID, machineName string) (*EventOutcome, bool) {
	key := NewKeyForOutcome(eventID, machineName)
	var outcome EventOutcome
	if err := s.get(key, &outcome); err != nil {
		return nil, false
	}
	return &outcome, true
}

func (s *RedisStore) SetTimeout(duration time.Duration) { s.Timeout = duration }
func (s *RedisStore) GetTimeout() time.Duration         { return s.Timeout }

func (s *RedisStore) SetLogLevel(level logging.LogLevel) {
	if l, ok := s.logger.(logging.Loggable); ok {
		l.SetLogLevel(level)
	}
}

// get makes up to MaxRetries attempts at a lookup, retrying on any
// error and waiting a random jitter between attempts; a redis.Nil miss
// is terminal and not retried.
func (s *RedisStore) get(key string, value interface{}) error {
	attemptsLeft := s.MaxRetries
	for {
		ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
		attemptsLeft--
		data, err := s.client.Get(ctx, key).Bytes()
		cancel()
		switch {
		case err == redis.Nil:
			return err
		case err != nil:
			if attemptsLeft <= 0 {
				return err
			}
			s.wait()
		default:
			return json.Unmarshal(data, value)
		}
	}
}

func (s *RedisStore) put(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	attemptsLeft := s.MaxRetries
	for {
		ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
		attemptsLeft--
		_, err := s.client.Set(ctx, key, data, ttl).Result()
		cancel()
		if err == nil {
			return nil
		}
		if attemptsLeft <= 0 {
			return err
		}
		s.wait()
	}
}

func (s *RedisStore) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()
	if _, err := s.client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// wait is a poor man's backoff: sleep a random interval under half a
// second before the next retry.
func (s *RedisStore) wait() {
	time.Sleep(time.Duration(rand.Intn(500)) * time.Millisecond)
}
