/*
 * Copyright (c) 2022 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package pubsub_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/massenz/tsm-go/logging"
	"github.com/massenz/tsm-go/pubsub"
)

var _ = Describe("SqsSubscriber", func() {
	var (
		client *fakeSqsClient
		events chan pubsub.EventMessage
		sub    *pubsub.SqsSubscriber
	)

	BeforeEach(func() {
		client = newFakeSqsClient("https://sqs.test/queue")
		events = make(chan pubsub.EventMessage, 5)
		sub = pubsub.NewSqsSubscriber(client, events, logging.NewNullLog("test"))
	})

	It("decodes a well-formed message and forwards it", func() {
		client.enqueue(`{"machine":"door","event":"open","event_id":"evt-1"}`)

		out, err := client.ReceiveMessage(nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(out.Messages).To(HaveLen(1))
		queueUrl := "https://sqs.test/queue"
		sub.ProcessMessage(out.Messages[0], &queueUrl)

		var got pubsub.EventMessage
		Eventually(events).Should(Receive(&got))
		Expect(got.Machine).To(Equal("door"))
		Expect(got.Event).To(Equal("open"))
		Expect(got.EventID).To(Equal("evt-1"))
		Expect(client.deleted).To(HaveLen(1))
	})

	It("drops a message with an invalid body without forwarding it", func() {
		client.enqueue(`not json`)
		out, _ := client.ReceiveMessage(nil)
		queueUrl := "https://sqs.test/queue"
		sub.ProcessMessage(out.Messages[0], &queueUrl)

		Consistently(events, 50*time.Millisecond).ShouldNot(Receive())
		Expect(client.deleted).To(BeEmpty())
	})
})
