package lib

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

func awsGetSdkClient() (*aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("Error loading default config: %s\n", err.Error())
		return nil, err
	}
	iamRole := os.Getenv("AWS_IAM_ROLE_ARN")
	stsClient := sts.NewFromConfig(cfg)
	output, err := stsClient.AssumeRole(context.TODO(), &sts.AssumeRoleInput{
		RoleArn:         aws.String(iamRole),
		RoleSessionName: aws.String("frs-session"),
	})
	if err != nil {
		log.Printf("Error configuring STS client: %s\n", err.Error())
		return nil, err
	}
	creds := output.Credentials
	cfg, err = config.LoadDefaultConfig(context.TODO(), config.WithCredentialsProvider(
		credentials.NewStaticCredentialsProvider(*creds.AccessKeyId, *creds.SecretAccessKey, *creds.SessionToken),
	))
	if err != nil {
		log.Printf("Error configuration: %s\n", err.Error())
		return nil, err
	}

	return &cfg, nil
}

func AWSGetSQSClient() *sqs.Client {
	cfg, err := awsGetSdkClient()
	if err != nil {
		log.Printf("Failed to initialize SQS client: %s\n", err.Error())
		return nil
	}
	client := sqs.NewFromConfig(*cfg)
	return client
}

func AWSGetSNSClient() *sns.Client {
	cfg, err := awsGetSdkClient()
	if err != nil {
		log.Printf("Failed to initialize SNS client: %s\n", err.Error())
		return nil
	}
	client := sns.NewFromConfig(*cfg)
	return client
}

func GetTopicArn(topic string) string {
	region := os.Getenv("AWS_REGION")
	accountId := os.Getenv("AWS_ACCOUNT_ID")
	return fmt.Sprintf("arn:aws:sns:%s:%s:%s", region, accountId, topic)
}

func GetQueueArn(queue string) string {
	region := os.Getenv("AWS_REGION")
	accountId := os.Getenv("AWS_ACCOUNT_ID")
	return fmt.Sprintf("arn:aws:sqs:%s:%s:%s", region, accountId, queue)
}

func SQSProduceMessage(queue string, body string) error {
	client := AWSGetSQSClient()
	qurl, err := client.GetQueueUrl(context.TODO(), &sqs.GetQueueUrlInput{
		QueueName: aws.String(queue),
	})
	if err != nil {
		log.Printf("Failed to retrieve queue URL for %s: %s\n", queue, err.Error())
		return err
	}
	_, err = client.SendMessage(context.TODO(), &sqs.SendMessageInput{
		QueueUrl:    qurl.QueueUrl,
		MessageBody: aws.String(body),
	})
	if err != nil {
		log.Printf("[SQS] Error sending message to %s: %s\n", queue, err.Error())
		return err
	}
	return nil
}

func SQSDeleteMessage(c *sqs.Client, qurl *string, msg *sqsTypes.Message) {
	_, err := c.DeleteMessage(context.TODO(), &sqs.DeleteMessageInput{
		QueueUrl:      qurl,
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		log.Printf("Error deleting message from queue: %s\n", err.Error())
		return
	}
	log.Printf("Deleted message from queue: %s\n", *msg.MessageId)
}

// SNSPublishSMS delivers a direct SMS to an E.164 phone number.
func SNSPublishSMS(phone string, message string) error {
	client := AWSGetSNSClient()
	_, err := client.Publish(context.TODO(), &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(message),
	})
	if err != nil {
		log.Printf("[SNS] Error publishing SMS: %s\n", err.Error())
		return err
	}
	return nil
}
