/*
 * Copyright (c) 2022 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package grpc_test

import (
	"context"
	"net"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	g "google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection/grpc_reflection_v1alpha"

	"github.com/massenz/tsm-go/grpc"
	"github.com/massenz/tsm-go/logging"
)

var _ = Describe("GrpcServer", func() {
	var (
		listener net.Listener
		conn     *g.ClientConn
		done     func()
	)

	BeforeEach(func() {
		var err error
		listener, err = net.Listen("tcp", ":0")
		Expect(err).ToNot(HaveOccurred())

		srv, _, err := grpc.NewGrpcServer(&grpc.Config{Logger: logging.NewNullLog("grpc-test")})
		Expect(err).ToNot(HaveOccurred())
		Expect(srv).ToNot(BeNil())

		go func() {
			_ = srv.Serve(listener)
		}()
		done = srv.Stop

		conn, err = g.DialContext(context.Background(), listener.Addr().String(),
			g.WithInsecure(), g.WithBlock(), g.WithTimeout(time.Second))
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		Expect(conn.Close()).ToNot(HaveOccurred())
		done()
	})

	It("reports SERVING on the health service", func() {
		client := healthpb.NewHealthClient(conn)
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.Status).To(Equal(healthpb.HealthCheckResponse_SERVING))
	})

	It("exposes server reflection", func() {
		client := grpc_reflection_v1alpha.NewServerReflectionClient(conn)
		stream, err := client.ServerReflectionInfo(context.Background())
		Expect(err).ToNot(HaveOccurred())

		err = stream.Send(&grpc_reflection_v1alpha.ServerReflectionRequest{
			MessageRequest: &grpc_reflection_v1alpha.ServerReflectionRequest_ListServices{},
		})
		Expect(err).ToNot(HaveOccurred())

		resp, err := stream.Recv()
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.GetListServicesResponse()).ToNot(BeNil())
	})
})
