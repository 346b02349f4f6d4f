package lib

import (
	"context"
	"encoding/json"
	"frs/src/types"
	"log"
	"os"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

func GetKafkaProducerConfig(clientId string) kafka.ConfigMap {
	return kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"client.id":         clientId,
		"acks":              "all",
	}
}

func KafkaProduceMessage(clientId string, topic string, payload map[string]any) error {
	cfg := GetKafkaProducerConfig(clientId)
	p, err := kafka.NewProducer(&cfg)
	if err != nil {
		log.Printf("Error creating producer: %s\n", err.Error())
		return err
	}
	defer p.Close()
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	err = p.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          value,
	}, nil)
	if err != nil {
		log.Printf("Error producing to topic %s: %s\n", topic, err.Error())
		return err
	}
	return nil
}

// KafkaConsumerLoop is the local stand-in for the SQS consumer. Offsets are
// committed manually, and only after the handler returns nil.
func KafkaConsumerLoop(topic string, groupId string, handler types.Handler) {
	master, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  os.Getenv("KAFKA_BROKER"),
		"group.id":           groupId,
		"auto.offset.reset":  "smallest",
		"enable.auto.commit": false,
		"retry.backoff.ms":   100,
	})
	if err != nil {
		log.Printf("Error on consumer: %s\n", err.Error())
		return
	}
	err = master.SubscribeTopics([]string{topic}, nil)
	if err != nil {
		log.Printf("Error subscribing to %s: %s\n", topic, err.Error())
		return
	}
	go func() {
		log.Printf("[%s] waiting for messages...\n", topic)
		run := true
		for run {
			ev := master.Poll(100)
			switch e := ev.(type) {
			case *kafka.Message:
				if err := handler(string(e.Value)); err != nil {
					log.Printf("[%s] Handler failed, offset not committed: %s\n", topic, err.Error())
					continue
				}
				if _, err := master.CommitMessage(e); err != nil {
					log.Printf("[%s] Error committing offset: %s\n", topic, err.Error())
				}
			case kafka.Error:
				log.Printf("[%s] Consumer error: %v\n", topic, e)
				run = false
			default:
			}
		}
		master.Close()
	}()
}

func KafkaCreateTopics(topics ...string) ([]kafka.TopicResult, error) {
	a, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
	})
	if err != nil {
		log.Printf("Error on AdminClient: %s\n", err.Error())
		return nil, err
	}
	topicsDef := []kafka.TopicSpecification{}
	for _, topic := range topics {
		topicsDef = append(topicsDef, kafka.TopicSpecification{
			Topic:         topic,
			NumPartitions: 10,
		})
	}
	result, err := a.CreateTopics(context.Background(), topicsDef)
	if err != nil {
		log.Printf("Error creating topics: %s\n", err.Error())
		return nil, err
	}
	return result, nil
}
