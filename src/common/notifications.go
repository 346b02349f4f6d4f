package common

import (
	"encoding/json"
	"fmt"
	"frs/src/config"
	"frs/src/db"
	"frs/src/lib"
	awslib "frs/src/lib/aws"
	"frs/src/models"
	"frs/src/types"
	"frs/src/utils"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

// ChannelSender delivers one rendered notification over its channel.
type ChannelSender interface {
	Send(n *models.Notification) error
}

type EmailSender struct{}

func (EmailSender) Send(n *models.Notification) error {
	return lib.SendMail(&lib.SendMailInput{
		From:     os.Getenv("MAIL_FROM"),
		FromName: os.Getenv("MAIL_FROM_NAME"),
		To:       []string{n.Recipient},
		Subject:  n.Subject,
		Body:     n.Body,
	})
}

type SMSSender struct{}

func (SMSSender) Send(n *models.Notification) error {
	return lib.SNSPublishSMS(n.Recipient, n.Body)
}

var channelSenders = map[types.ChannelType]ChannelSender{
	types.CHANNEL_EMAIL: EmailSender{},
	types.CHANNEL_SMS:   SMSSender{},
}

func NewChannelSender(channel types.ChannelType, s ChannelSender) {
	channelSenders[channel] = s
}

// EnqueueNotification renders and persists one pending notification per
// contact channel the target has, then drops a lightweight pointer
// message on the queue. Callers treat a returned error as log-only.
func EnqueueNotification(kind types.NotificationKind, userId *uint, data types.JSONB) error {
	gdb := db.GetDb()
	email, phone := resolveRecipients(userId, data)
	if email == "" && phone == "" {
		return fmt.Errorf("no contact channel for notification %s", kind)
	}
	type target struct {
		channel   types.ChannelType
		recipient string
	}
	targets := []target{}
	if email != "" {
		targets = append(targets, target{types.CHANNEL_EMAIL, email})
	}
	if phone != "" {
		targets = append(targets, target{types.CHANNEL_SMS, phone})
	}
	for _, t := range targets {
		subject, body := RenderNotification(kind, t.channel, data)
		notification := models.Notification{
			Channel:     t.channel,
			Recipient:   t.recipient,
			UserID:      userId,
			MessageType: kind,
			Subject:     subject,
			Body:        body,
			Payload:     &data,
			Status:      types.NOTIFICATION_PENDING,
		}
		if err := gdb.Create(&notification).Error; err != nil {
			return err
		}
		message := map[string]any{
			"id":   notification.ID.String(),
			"type": string(kind),
		}
		if config.IsLocalEnv() {
			if err := lib.KafkaProduceMessage("NotificationsProducer", config.NOTIFICATIONS_TOPIC, message); err != nil {
				return err
			}
			continue
		}
		raw, err := json.Marshal(message)
		if err != nil {
			return err
		}
		if err := lib.SQSProduceMessage(utils.WithSuffix(config.NOTIFICATIONS_QUEUE), string(raw)); err != nil {
			return err
		}
	}
	return nil
}

func resolveRecipients(userId *uint, data types.JSONB) (email string, phone string) {
	if userId != nil {
		gdb := db.GetDb()
		var user models.User
		if err := gdb.Where(&models.User{ID: *userId}).First(&user).Error; err != nil {
			log.Printf("[Notifications] could not resolve user %d: %s\n", *userId, err.Error())
			return "", ""
		}
		return user.Email, user.Phone
	}
	if v, ok := data["contact_email"].(string); ok {
		email = v
	}
	if v, ok := data["contact_phone"].(string); ok {
		phone = v
	}
	return email, phone
}

func RenderNotification(kind types.NotificationKind, channel types.ChannelType, data types.JSONB) (subject string, body string) {
	ref, _ := data["booking_ref"].(string)
	switch kind {
	case types.NOTIFY_BOOKING_CONFIRMED:
		subject = fmt.Sprintf("Booking %s confirmed", ref)
		body = fmt.Sprintf("Your booking %s is confirmed. We look forward to welcoming you on board.", ref)
	case types.NOTIFY_BOOKING_CANCELED:
		reason, _ := data["reason"].(string)
		subject = fmt.Sprintf("Booking %s canceled", ref)
		body = fmt.Sprintf("Your booking %s has been canceled. Reason: %s", ref, reason)
	case types.NOTIFY_PAYMENT_RECEIVED:
		subject = fmt.Sprintf("Payment received for booking %s", ref)
		body = fmt.Sprintf("We received your payment for booking %s. Thank you.", ref)
	case types.NOTIFY_USER_REGISTERED:
		subject = "Welcome aboard"
		body = "Your account has been created."
	default:
		subject = string(kind)
		body = string(kind)
	}
	if channel == types.CHANNEL_SMS {
		// SMS carries the body only.
		return "", body
	}
	return subject, body
}

// ProcessNotificationMessage handles one queue message. Returning nil
// acknowledges the message; duplicates and unknown ids are acknowledged
// without side effects since only a pending row gets dispatched.
func ProcessNotificationMessage(payload string) error {
	id := gjson.Get(payload, "id").String()
	nid, err := uuid.Parse(id)
	if err != nil {
		log.Printf("[NotificationsConsumer] dropping message with bad id %q\n", id)
		return nil
	}
	gdb := db.GetDb()
	var notification models.Notification
	if err := gdb.Where(&models.Notification{ID: nid}).First(&notification).Error; err != nil {
		log.Printf("[NotificationsConsumer] notification %s not found, dropping\n", id)
		return nil
	}
	if notification.Status != types.NOTIFICATION_PENDING {
		log.Printf("[NotificationsConsumer] notification %s already %s, dropping\n", id, notification.Status)
		return nil
	}
	if err := gdb.
		Model(&models.Notification{}).
		Where(&models.Notification{ID: nid}).
		Update("status", types.NOTIFICATION_PROCESSING).
		Error; err != nil {
		return err
	}
	sender, ok := channelSenders[notification.Channel]
	if !ok {
		markNotificationFailed(nid)
		return fmt.Errorf("no sender for channel %s", notification.Channel)
	}
	if err := sender.Send(&notification); err != nil {
		log.Printf("[NotificationsConsumer] delivery failed for %s: %s\n", id, err.Error())
		markNotificationFailed(nid)
		return err
	}
	now := time.Now()
	if err := gdb.
		Model(&models.Notification{}).
		Where(&models.Notification{ID: nid}).
		Updates(map[string]any{
			"status":  types.NOTIFICATION_SENT,
			"sent_at": &now,
		}).
		Error; err != nil {
		return err
	}
	return nil
}

func markNotificationFailed(id uuid.UUID) {
	gdb := db.GetDb()
	if err := gdb.
		Model(&models.Notification{}).
		Where(&models.Notification{ID: id}).
		Updates(map[string]any{
			"status":      types.NOTIFICATION_FAILED,
			"retry_count": gorm.Expr("retry_count + 1"),
		}).
		Error; err != nil {
		log.Printf("[NotificationsConsumer] could not mark %s failed: %s\n", id, err.Error())
	}
}

// NotificationsConsumer wires the queue to the message handler. Local
// environments read from the Kafka topic instead of SQS.
func NotificationsConsumer() {
	if config.IsLocalEnv() {
		lib.KafkaConsumerLoop(config.NOTIFICATIONS_TOPIC, "notifications-workers", ProcessNotificationMessage)
		return
	}
	consumer := awslib.NewSQSConsumer(utils.WithSuffix(config.NOTIFICATIONS_QUEUE), ProcessNotificationMessage)
	consumer.Listen()
}
