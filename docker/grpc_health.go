/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

// Most basic binary to run health checks on tsmsrv's gRPC port. Used to
// assert readiness of the container/pod in Docker/Kubernetes. Adapted
// from the teacher's docker/grpc_health.go: the custom
// StatemachineServiceClient.Health RPC (blocked on the unavailable
// generated protobuf package, see DESIGN.md "Dropped dependencies") is
// replaced by the standard grpc_health_v1.HealthClient that
// grpc.NewGrpcServer (grpc/grpc_server.go) registers -- the exact RPC
// Docker/Kubernetes health probes are meant to call.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	var address = flag.String("host", "localhost:7398",
		"The address (host:port) for the gRPC server")
	var timeout = flag.Duration("timeout", 200*time.Millisecond,
		"timeout expressed as a duration string (e.g., 200ms, 1s, etc.)")
	var noTLS = flag.Bool("insecure", false, "disables TLS")
	flag.Parse()

	var creds credentials.TransportCredentials
	if *noTLS {
		creds = insecure.NewCredentials()
	} else {
		creds = credentials.NewTLS(&tls.Config{InsecureSkipVerify: true})
	}

	cc, err := grpc.Dial(*address, grpc.WithTransportCredentials(creds))
	if err != nil {
		log.Fatalf("cannot open connection to %s: %v", *address, err)
	}
	defer cc.Close()

	client := healthpb.NewHealthClient(cc)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		log.Fatal("cannot check server health:", err)
	}
	fmt.Println(resp.Status.String())
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		log.Fatal("server is not serving")
	}
}
