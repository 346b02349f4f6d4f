package boot

import (
	"frs/src/common"
	"frs/src/config"
	"frs/src/db"
	"frs/src/lib"
	awslib "frs/src/lib/aws"
	"frs/src/models"
	"frs/src/utils"
	"log"
	"time"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Flight{},
		&models.Price{},
		&models.Booking{},
		&models.Passenger{},
		&models.Payment{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler starts gocron with the stale-pending sweep registered.
func InitScheduler() {
	if _, err := lib.CreateRecurringJob(5*time.Minute, common.SweepExpiredPendingBookings); err != nil {
		log.Printf("Error registering sweep job: %s\n", err.Error())
		return
	}
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}

// InitWorkers starts the notification consumer, creating the local topic
// first when running against the Kafka broker.
func InitWorkers() {
	if config.IsLocalEnv() {
		go lib.KafkaCreateTopics(config.NOTIFICATIONS_TOPIC)
	} else {
		// Bridge the SNS topic into the worker queue so other services
		// can fan notifications in without talking to SQS directly.
		queue := utils.WithSuffix(config.NOTIFICATIONS_QUEUE)
		sub := awslib.NewSNSSubscriber(queue)
		if sub != nil {
			if _, err := sub.Subscribe("sqs", lib.GetQueueArn(queue)); err != nil {
				log.Printf("Error subscribing queue %s to topic: %s\n", queue, err.Error())
			}
		}
	}
	go common.NotificationsConsumer()
}
