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

package pubsub

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"

	"github.com/massenz/tsm-go/logging"
)

// SqsSubscriber polls an SQS queue and decodes each message body as an
// EventMessage, forwarding well-formed ones onto events. Grounded on
// the teacher's pkg/pubsub/sqs_sub.go SqsSubscriber (poll loop shape,
// VisibilityTimeout/PollingInterval knobs, delete-with-retries cleanup)
// with sqsiface.SQSAPI taking the place of a concrete *sqs.SQS so tests
// can inject a fake client instead of requiring LocalStack.
type SqsSubscriber struct {
	logger logging.Sink
	client sqsiface.SQSAPI

	events chan<- EventMessage

	Timeout              time.Duration
	PollingInterval      time.Duration
	MessageRemoveRetries int
}

// NewSqsSubscriber wires a SqsSubscriber around an already-constructed
// client (see NewSqsClient) -- queue resolution happens once Subscribe
// is called with the topic name.
func NewSqsSubscriber(client sqsiface.SQSAPI, eventsChannel chan<- EventMessage, sink logging.Sink) *SqsSubscriber {
	if sink == nil {
		sink = logging.NewLog("SQS-Sub")
	}
	return &SqsSubscriber{
		logger:               sink,
		client:               client,
		events:               eventsChannel,
		Timeout:              DefaultVisibilityTimeout,
		PollingInterval:      DefaultPollingInterval,
		MessageRemoveRetries: DefaultRetries,
	}
}

// Subscribe polls topic until done is closed.
func (s *SqsSubscriber) Subscribe(topic string, done <-chan struct{}) error {
	queueUrl, err := GetQueueUrl(s.client, topic)
	if err != nil {
		return err
	}
	s.logger.Emit(logging.INFO, "SQS subscriber started for queue: "+queueUrl)

	timeout := int64(s.Timeout.Seconds())
	for {
		select {
		case <-done:
			s.logger.Emit(logging.INFO, "SQS subscriber terminating")
			return nil
		default:
		}
		start := time.Now()
		msgResult, err := s.client.ReceiveMessage(&sqs.ReceiveMessageInput{
			AttributeNames: []*string{
				aws.String(sqs.MessageSystemAttributeNameSentTimestamp),
			},
			QueueUrl:            &queueUrl,
			MaxNumberOfMessages: aws.Int64(10),
			VisibilityTimeout:   &timeout,
		})
		if err != nil {
			s.logger.Emit(logging.ERROR, "error receiving SQS message: "+err.Error())
		} else {
			for _, msg := range msgResult.Messages {
				s.ProcessMessage(msg, &queueUrl)
			}
		}
		if timeLeft := s.PollingInterval - time.Since(start); timeLeft > 0 {
			time.Sleep(timeLeft)
		}
	}
}

// ProcessMessage decodes msg's body as an EventMessage, forwards it on
// s.events, and removes it from the queue. A message whose body does
// not parse is logged and not forwarded; it is not deleted either, so
// SQS makes it visible again after the visibility timeout and a later
// poll receives it again. No failure notification is sent for it: it
// never reaches the EventsListener.
func (s *SqsSubscriber) ProcessMessage(msg *sqs.Message, queueUrl *string) {
	if msg.Body == nil {
		s.logger.Emit(logging.ERROR, "message has no body")
		return
	}
	var m EventMessage
	if err := json.Unmarshal([]byte(*msg.Body), &m); err != nil {
		s.logger.Emit(logging.ERROR, "message has invalid body: "+err.Error())
		return
	}
	if ts := msg.Attributes[sqs.MessageSystemAttributeNameSentTimestamp]; ts != nil {
		if millis, err := strconv.ParseInt(*ts, 10, 64); err == nil {
			m.Timestamp = time.UnixMilli(millis)
		}
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}

	s.events <- m

	for i := 0; i < s.MessageRemoveRetries; i++ {
		_, err := s.client.DeleteMessage(&sqs.DeleteMessageInput{
			QueueUrl:      queueUrl,
			ReceiptHandle: msg.ReceiptHandle,
		})
		if err == nil {
			return
		}
		s.logger.Emit(logging.ERROR, "failed to remove message from SQS (attempt "+strconv.Itoa(i+1)+"): "+err.Error())
	}
}
