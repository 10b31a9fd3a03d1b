/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

// Command tsm-cli is a thin HTTP client for tsmsrv's event-ingress API,
// adapted from the teacher's cli/fsm-cli.go + client/client.go
// (flag-based subcommand dispatch, YAML-file request bodies, retry
// loop while polling an outcome) -- with the transport swapped from a
// gRPC StatemachineServiceClient (unavailable generated package, see
// DESIGN.md "Dropped dependencies") to plain HTTP against
// server.EventsEndpoint, and the wire format kept as YAML on the CLI
// side (gopkg.in/yaml.v3, same library the teacher's client used for
// its entity files) even though the request sent over the wire is
// JSON (server.EventRequest's own encoding).
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/massenz/tsm-go/server"
	"github.com/massenz/tsm-go/storage"
)

const (
	CmdSend = "send"
	CmdGet  = "get"

	StdinFlag = "--"

	MaxRetries             = 5
	IntervalBetweenRetries = 200 * time.Millisecond
)

// EventFile is the YAML shape `send` expects: a (machine, event) pair
// plus an optional free-form payload, the CLI-facing equivalent of the
// teacher's EventRequestEntity.
type EventFile struct {
	Machine string      `yaml:"machine"`
	Event   string      `yaml:"event"`
	Payload interface{} `yaml:"payload,omitempty"`
}

func main() {
	var addr = flag.String("addr", "http://localhost:8080", "Base URL for the tsmsrv HTTP server")
	flag.Parse()

	cmd := strings.ToLower(flag.Arg(0))
	if cmd == "" {
		fmt.Println("tsm-cli: no command given (expected 'send' or 'get')")
		os.Exit(1)
	}

	var err error
	switch cmd {
	case CmdSend:
		err = send(*addr, flag.Arg(1))
	case CmdGet:
		err = get(*addr, flag.Arg(1), flag.Arg(2))
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

// send reads an EventFile from path (or stdin, if path is "--"),
// POSTs it to server.EventsEndpoint, then polls GetEventOutcomeHandler
// until an outcome is recorded or MaxRetries is exhausted.
func send(addr, path string) error {
	var f *os.File
	var err error
	if path == StdinFlag {
		f = os.Stdin
	} else {
		f, err = os.Open(path)
		if err != nil {
			return fmt.Errorf("cannot open %s: %w", path, err)
		}
		defer f.Close()
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	var evt EventFile
	if err := yaml.Unmarshal(data, &evt); err != nil {
		return fmt.Errorf("invalid event YAML: %w", err)
	}

	body, err := json.Marshal(server.EventRequest{
		Machine: evt.Machine,
		Event:   evt.Event,
		Payload: evt.Payload,
	})
	if err != nil {
		return err
	}

	resp, err := http.Post(addr+server.EventsEndpoint, server.ApplicationJson, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("server rejected event: %s", resp.Status)
	}
	var accepted server.EventAccepted
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		return err
	}
	fmt.Println("Event ID:", accepted.EventID)

	var outcome *storage.EventOutcome
	for remain := MaxRetries; remain > 0; remain-- {
		outcome, err = fetchOutcome(addr, accepted.EventID, evt.Machine)
		if err == nil {
			break
		}
		time.Sleep(IntervalBetweenRetries)
	}
	if outcome == nil {
		fmt.Println("outcome not yet available; try `tsm-cli get` later")
		return nil
	}
	out, err := yaml.Marshal(outcome)
	if err != nil {
		return err
	}
	fmt.Printf("Outcome:\n%s", out)
	return nil
}

// get fetches and prints the outcome for an already-submitted event.
func get(addr, eventId, machine string) error {
	outcome, err := fetchOutcome(addr, eventId, machine)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(outcome)
	if err != nil {
		return err
	}
	fmt.Printf("%s", out)
	return nil
}

func fetchOutcome(addr, eventId, machine string) (*storage.EventOutcome, error) {
	url := fmt.Sprintf("%s%s/%s?machine=%s", addr, server.EventsEndpoint, eventId, machine)
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("outcome not found: %s", resp.Status)
	}
	var outcome storage.EventOutcome
	if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
		return nil, err
	}
	return &outcome, nil
}
