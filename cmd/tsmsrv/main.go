/*
 * Copyright (c) 2022 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	g "google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/massenz/tsm-go/config"
	"github.com/massenz/tsm-go/examples/trafficlight"
	"github.com/massenz/tsm-go/grpc"
	"github.com/massenz/tsm-go/logging"
	"github.com/massenz/tsm-go/pubsub"
	"github.com/massenz/tsm-go/server"
	"github.com/massenz/tsm-go/storage"
	"github.com/massenz/tsm-go/tsm"
)

// logger is the process-wide Sink, in the teacher's cmd/main.go
// tradition of a package-level logger everything in main reaches for.
var logger = logging.NewLog("tsmsrv")

func main() {
	c := config.Parse()
	setLogLevel(c.Debug, c.Trace)
	logger.Info("starting tsmsrv")

	store := newStore(c)

	reg := server.NewRegistry()
	mountTrafficLight(reg, store)

	var wg sync.WaitGroup
	done := make(chan struct{})

	httpSrv := startHTTPServer(&wg, reg, store, c)
	grpcSrv := startGrpcServer(&wg, c)

	if c.EventsTopic != "" {
		startEventsIngress(&wg, done, reg, c)
	}

	logger.Info("tsmsrv ready for processing events...")
	RunUntilStopped(done, httpSrv, grpcSrv)
	wg.Wait()
	logger.Info("...done. Goodbye.")
}

// newStore picks an OutcomeStore backend: Redis when -redis is set, an
// in-memory store otherwise (unlike the teacher's cmd/main.go, which
// treats the in-memory store as deprecated and refuses to start without
// Redis -- this port keeps it as the zero-config default, since it
// never needs to survive a restart: SPEC_FULL.md §3.3 only ever asks
// for a recent-outcomes ledger, not durable history).
func newStore(c *config.Config) storage.OutcomeStore {
	if c.RedisAddr == "" {
		logger.Info("no -redis configured, using in-memory outcome store")
		return storage.NewInMemoryStore()
	}
	logger.Info("connecting to Redis outcome store at " + c.RedisAddr)
	return storage.NewRedisStore(c.RedisAddr, storage.DefaultRedisDb, c.RedisTimeout, c.RedisMaxRetries)
}

// mountTrafficLight registers the example machine (examples/trafficlight)
// under the name "trafficlight", wires its OutcomeHook to store, and
// enters it -- a concrete demonstration of the wiring an operator
// repeats for every machine a real deployment needs to serve.
func mountTrafficLight(reg *server.Registry, store storage.OutcomeStore) {
	tl := trafficlight.New(logging.NewLog("trafficlight"))
	tl.SetOutcomeHook(storage.NewOutcomeHook(store, "trafficlight", storage.NeverExpire, logger))
	tl.OnEntry(tsm.NewEvent(0, "start"))
	reg.Register("trafficlight", tl.StateMachine, trafficlight.Events())
}

func startHTTPServer(wg *sync.WaitGroup, reg *server.Registry, store storage.OutcomeStore, c *config.Config) *http.Server {
	srv := server.NewServer(reg, store, logging.NewLog("http"))
	if c.Trace {
		srv.EnableTracing()
	}
	httpSrv := srv.NewHTTPServer(c.HttpAddr)
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("HTTP server listening on " + c.HttpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err)
		}
	}()
	return httpSrv
}

func startGrpcServer(wg *sync.WaitGroup, c *config.Config) *g.Server {
	var creds credentials.TransportCredentials
	if !c.Insecure {
		dir := c.CertsDir
		if dir == "" {
			dir = config.CertsDir()
		}
		var err error
		creds, err = config.ServerTLSCredentials(dir)
		if err != nil {
			logger.Fatal(err)
		}
	}
	gsrv, _, err := grpc.NewGrpcServer(&grpc.Config{Logger: logger, Credentials: creds})
	if err != nil {
		logger.Fatal(err)
	}
	l, err := net.Listen("tcp", ":"+strconv.Itoa(c.GrpcPort))
	if err != nil {
		logger.Fatal(err)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("gRPC server listening on :" + strconv.Itoa(c.GrpcPort))
		if err := gsrv.Serve(l); err != nil {
			logger.Fatal(err)
		}
	}()
	return gsrv
}

// startEventsIngress wires the SQS subscriber -> EventsListener chain,
// and (if -notifications is set) the failure-notification publisher,
// mirroring the teacher's cmd/main.go eventsTopic/notificationsTopic
// wiring.
func startEventsIngress(wg *sync.WaitGroup, done chan struct{}, reg *server.Registry, c *config.Config) {
	var endpoint *string
	if c.SqsEndpoint != "" {
		endpoint = &c.SqsEndpoint
	}
	client, err := pubsub.NewSqsClient(endpoint)
	if err != nil {
		logger.Fatal(err)
	}

	var notifications chan pubsub.FailureNotification
	if c.NotificationsTopic != "" {
		notifications = make(chan pubsub.FailureNotification)
		pub := pubsub.NewSqsPublisher(client, notifications, logging.NewLog("SQS-Pub"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := pub.Publish(c.NotificationsTopic); err != nil {
				logger.Error("SQS publisher exited: %v", err)
			}
		}()
	}

	events := make(chan pubsub.EventMessage)
	sub := pubsub.NewSqsSubscriber(client, events, logging.NewLog("SQS-Sub"))
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := sub.Subscribe(c.EventsTopic, done); err != nil {
			logger.Error("SQS subscriber exited: %v", err)
		}
	}()

	listener := pubsub.NewEventsListener(&pubsub.ListenerOptions{
		EventsChannel:        events,
		Resolver:             reg,
		NotificationsChannel: notifications,
		Logger:               logging.NewLog("Listener"),
	})
	wg.Add(1)
	go func() {
		defer wg.Done()
		listener.ListenForMessages()
	}()
}

// RunUntilStopped blocks until Ctrl-C or SIGTERM (Docker/Kubernetes),
// then shuts every service down -- grounded on the teacher's
// cmd/main.go RunUntilStopped.
func RunUntilStopped(done chan struct{}, httpSrv *http.Server, grpcSrv *g.Server) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down services...")
	close(done)
	grpcSrv.GracefulStop()
	if err := httpSrv.Shutdown(context.Background()); err != nil {
		logger.Error("HTTP server shutdown error: %v", err)
	}
}

func setLogLevel(debug, trace bool) {
	level := logging.INFO
	if debug && !trace {
		level = logging.DEBUG
	} else if trace {
		level = logging.TRACE
	}
	logger.SetLogLevel(level)
}
