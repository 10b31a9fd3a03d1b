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
	"sync"

	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
)

// fakeSqsClient embeds the (huge) sqsiface.SQSAPI interface and
// overrides only the handful of methods SqsSubscriber/SqsPublisher
// actually call -- anything else panics on a nil-interface call, which
// is fine: no test here exercises more of the surface. This is the
// standard way to stub a wide AWS SDK v1 interface without hand-writing
// every method.
type fakeSqsClient struct {
	sqsiface.SQSAPI

	mu       sync.Mutex
	queueUrl string
	messages []*sqs.Message
	deleted  []*string
	sent     []*string
}

func newFakeSqsClient(queueUrl string) *fakeSqsClient {
	return &fakeSqsClient{queueUrl: queueUrl}
}

func (f *fakeSqsClient) GetQueueUrl(in *sqs.GetQueueUrlInput) (*sqs.GetQueueUrlOutput, error) {
	return &sqs.GetQueueUrlOutput{QueueUrl: &f.queueUrl}, nil
}

func (f *fakeSqsClient) ReceiveMessage(in *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages
	f.messages = nil
	return &sqs.ReceiveMessageOutput{Messages: msgs}, nil
}

func (f *fakeSqsClient) DeleteMessage(in *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, in.ReceiptHandle)
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeSqsClient) SendMessage(in *sqs.SendMessageInput) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, in.MessageBody)
	return &sqs.SendMessageOutput{}, nil
}

func (f *fakeSqsClient) enqueue(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	receipt := body
	f.messages = append(f.messages, &sqs.Message{Body: &body, ReceiptHandle: &receipt})
}
