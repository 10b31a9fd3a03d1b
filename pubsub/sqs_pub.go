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

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"

	"github.com/massenz/tsm-go/logging"
)

// SqsPublisher drains notifications and forwards each as a JSON message
// to a dead-letter topic -- grounded on the teacher's
// pkg/pubsub/sqs_pub.go SqsPublisher.Publish loop, with the wire format
// switched from Base64ProtoMarshaler to plain JSON (see types.go).
type SqsPublisher struct {
	logger        logging.Sink
	client        sqsiface.SQSAPI
	notifications <-chan FailureNotification
}

// NewSqsPublisher wires a SqsPublisher around an already-constructed
// client and the channel EventsListener publishes failures to.
func NewSqsPublisher(client sqsiface.SQSAPI, notifications <-chan FailureNotification, sink logging.Sink) *SqsPublisher {
	if sink == nil {
		sink = logging.NewLog("SQS-Pub")
	}
	return &SqsPublisher{logger: sink, client: client, notifications: notifications}
}

// Publish drains s.notifications onto topic until the channel is
// closed.
func (s *SqsPublisher) Publish(topic string) error {
	queueUrl, err := GetQueueUrl(s.client, topic)
	if err != nil {
		return err
	}
	s.logger.Emit(logging.INFO, "SQS publisher started for queue: "+queueUrl)

	delay := int64(0)
	for n := range s.notifications {
		body, err := json.Marshal(n)
		if err != nil {
			s.logger.Emit(logging.ERROR, "cannot marshal notification "+n.String()+": "+err.Error())
			continue
		}
		if _, err := s.client.SendMessage(&sqs.SendMessageInput{
			DelaySeconds: &delay,
			MessageBody:  aws.String(string(body)),
			QueueUrl:     &queueUrl,
		}); err != nil {
			s.logger.Emit(logging.ERROR, "cannot publish notification "+n.String()+": "+err.Error())
		}
	}
	s.logger.Emit(logging.INFO, "SQS publisher exiting")
	return nil
}
