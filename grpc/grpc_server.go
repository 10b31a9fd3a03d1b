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

// Package grpc wires a google.golang.org/grpc.Server exposing the
// standard health and reflection services (SPEC_FULL.md §3.1): the
// teacher's own grpc package instead carried a custom
// api.StatemachineServiceServer generated from an external .proto
// toolchain (github.com/massenz/statemachine-proto) that is not
// available here -- see DESIGN.md "Dropped dependencies" for why that
// service is not reintroduced, and why grpc itself still is.
package grpc

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/massenz/tsm-go/logging"
)

// Config mirrors the shape of the teacher's grpc.Config (a plain struct
// of collaborators passed to NewGrpcServer), trimmed to what a
// health+reflection-only server needs.
type Config struct {
	Logger      logging.Sink
	Credentials credentials.TransportCredentials // nil => insecure
}

// HealthServer wraps grpc_health_v1's reference implementation so
// callers holding it can flip the overall serving status without
// reaching into the grpc.Server internals.
type HealthServer struct {
	*health.Server
}

// NewGrpcServer returns a grpc.Server with the health and reflection
// services registered, marking the whole server SERVING. Grounded on
// the teacher's grpc_server.go NewGrpcServer shape (construct
// *grpc.Server, register one or more services, return it to the caller
// to Serve on a net.Listener) -- generalized from one custom service to
// the standard health/reflection pair this port actually ships.
func NewGrpcServer(config *Config) (*grpc.Server, *HealthServer, error) {
	var opts []grpc.ServerOption
	if config != nil && config.Credentials != nil {
		opts = append(opts, grpc.Creds(config.Credentials))
	}
	gsrv := grpc.NewServer(opts...)

	hsrv := &HealthServer{health.NewServer()}
	healthpb.RegisterHealthServer(gsrv, hsrv)
	hsrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	reflection.Register(gsrv)

	if config != nil && config.Logger != nil {
		config.Logger.Emit(logging.INFO, "grpc server configured: health + reflection")
	}
	return gsrv, hsrv, nil
}
