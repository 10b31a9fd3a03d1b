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
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
)

// NewSqsClient connects to AWS and returns an SQS client; passing nil
// as endpointUrl connects to AWS proper, a non-nil value targets a
// local/LocalStack endpoint instead (grounded on the teacher's
// getSqsClient, pkg/pubsub/sqs_sub.go).
func NewSqsClient(endpointUrl *string) (sqsiface.SQSAPI, error) {
	if endpointUrl == nil {
		sess, err := session.NewSessionWithOptions(session.Options{
			SharedConfigState: session.SharedConfigEnable,
		})
		if err != nil {
			return nil, err
		}
		return sqs.New(sess), nil
	}
	region, found := os.LookupEnv("AWS_REGION")
	if !found {
		return nil, fmt.Errorf("no AWS_REGION configured, cannot connect to SQS endpoint at %s", *endpointUrl)
	}
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
		Config: aws.Config{
			Endpoint: endpointUrl,
			Region:   &region,
		},
	})
	if err != nil {
		return nil, err
	}
	return sqs.New(sess), nil
}

// GetQueueUrl retrieves the queue URL for the named topic.
func GetQueueUrl(client sqsiface.SQSAPI, topic string) (string, error) {
	out, err := client.GetQueueUrl(&sqs.GetQueueUrlInput{QueueName: &topic})
	if err != nil {
		return "", fmt.Errorf("cannot get SQS queue URL for topic %s: %w", topic, err)
	}
	return *out.QueueUrl, nil
}
