package aws

import (
	"context"
	"frs/src/lib"
	"frs/src/types"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

var receiveBackoff = time.Second

// pumpMessages polls until the process exits. A receive error backs off
// and retries; the worker must survive transient network failures.
func pumpMessages(qname string, receive func() ([]sqstypes.Message, error), chn chan<- *sqstypes.Message) {
	backoff := receiveBackoff
	for {
		msgs, err := receive()
		if err != nil {
			log.Printf("[%s] Error receiving messages, retrying in %s: %s\n", qname, backoff, err.Error())
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = receiveBackoff
		for _, m := range msgs {
			chn <- &m
		}
	}
}

type SQSConsumer struct {
	Name    string
	handler *types.Handler
}

func NewSQSConsumer(queue string, handler types.Handler) *SQSConsumer {
	new := SQSConsumer{
		Name:    queue,
		handler: &handler,
	}
	return &new
}

// Listen polls the queue in the background and hands each message body to
// the handler. A message is deleted only after the handler returns nil, so
// a failed message reappears once its visibility timeout lapses.
func (s *SQSConsumer) Listen() {
	go func() {
		qname := s.Name
		client := lib.AWSGetSQSClient()
		qurl, err := client.GetQueueUrl(context.TODO(), &sqs.GetQueueUrlInput{
			QueueName: aws.String(qname),
		})
		if err != nil {
			log.Printf("Failed to retrieve queue URL for %s: %s\n", qname, err.Error())
			return
		}
		log.Printf("%s: Listening for messages...", qname)
		messagesChan := make(chan *sqstypes.Message, 5)
		go pumpMessages(qname, func() ([]sqstypes.Message, error) {
			output, err := client.ReceiveMessage(context.Background(), &sqs.ReceiveMessageInput{
				QueueUrl:            qurl.QueueUrl,
				WaitTimeSeconds:     20,
				MaxNumberOfMessages: 10,
				VisibilityTimeout:   30,
			})
			if err != nil {
				return nil, err
			}
			return output.Messages, nil
		}, messagesChan)

		for m := range messagesChan {
			body := strings.Clone(*m.Body)
			msg := m
			h := *s.handler
			go func() {
				if err := h(body); err != nil {
					log.Printf("[%s] Handler failed, message stays in queue: %s\n", qname, err.Error())
					return
				}
				lib.SQSDeleteMessage(client, qurl.QueueUrl, msg)
			}()
		}
	}()
}
