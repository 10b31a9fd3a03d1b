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

// Package config declares the tsmsrv binary's flags, grounded on the
// teacher's cmd/main.go flag block -- same flag names and defaults
// where the concern carries over unchanged (Redis address/cluster/
// timeout/retries, SQS endpoint/topic, debug/trace), trimmed of the
// Configuration-serving flags that no longer apply (this service never
// loads a Configuration from JSON/protobuf -- machines are always built
// in Go code, see SPEC_FULL.md §3.3) and extended with the HTTP/gRPC
// listen addresses this port's ingress needs.
package config

import (
	"flag"
	"time"

	"github.com/massenz/tsm-go/storage"
)

type Config struct {
	HttpAddr string
	GrpcPort int
	Debug    bool
	Trace    bool
	Insecure bool
	CertsDir string

	RedisAddr       string
	RedisCluster    bool
	RedisTimeout    time.Duration
	RedisMaxRetries int

	SqsEndpoint        string
	EventsTopic        string
	NotificationsTopic string
}

// Parse builds a Config from the process's command-line flags. Call
// once, from main, before any other package reads its values.
func Parse() *Config {
	c := &Config{}

	flag.StringVar(&c.HttpAddr, "http-addr", ":8080", "Address for the HTTP event-ingress server")
	flag.IntVar(&c.GrpcPort, "grpc-port", 7398, "Port for the gRPC health/reflection server")
	flag.BoolVar(&c.Debug, "debug", false, "Verbose logs; avoid on production services")
	flag.BoolVar(&c.Trace, "trace", false,
		"Extremely verbose logs for every request/event; overrides -debug")
	flag.BoolVar(&c.Insecure, "insecure", false, "If set, TLS is disabled on the gRPC server (not recommended)")
	flag.StringVar(&c.CertsDir, "certs-dir", "", "Directory holding ca.pem/server.pem/server-key.pem; defaults to TLS_CONFIG_DIR or /etc/tsm/certs")

	flag.StringVar(&c.RedisAddr, "redis", "", "host:port for the Redis outcome-ledger instance; empty uses an in-memory store")
	flag.BoolVar(&c.RedisCluster, "cluster", false, "Not used: the Redis outcome store always connects with a single-node client")
	flag.DurationVar(&c.RedisTimeout, "timeout", storage.DefaultTimeout, "Timeout for Redis operations")
	flag.IntVar(&c.RedisMaxRetries, "max-retries", storage.DefaultMaxRetries, "Max retries for a recoverable Redis error")

	flag.StringVar(&c.SqsEndpoint, "endpoint-url", "",
		"HTTP URL for AWS SQS; usually left undefined unless testing against LocalStack")
	flag.StringVar(&c.EventsTopic, "events", "", "SQS topic name to receive Events from; empty disables the subscriber")
	flag.StringVar(&c.NotificationsTopic, "notifications", "",
		"(optional) SQS topic name to publish dispatch-failure notifications to; empty disables the publisher")

	flag.Parse()
	return c
}
