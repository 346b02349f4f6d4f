package main

import (
	"encoding/json"
	"fmt"
	"frs/src/common"
	"frs/src/config"
	"frs/src/db"
	"frs/src/models"
	"frs/src/types"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"
)

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "payment_intent.succeeded":
			var pi stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				break
			}
			log.Printf("[PaymentIntent] ID: %s %s\n", pi.ID, pi.Status)
			bookingId, ok := bookingIdFromMetadata(&pi)
			if !ok {
				break
			}
			go handlePaymentSucceeded(bookingId, &pi)
		case "payment_intent.canceled", "payment_intent.payment_failed":
			var pi stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				break
			}
			log.Printf("[PaymentIntent] ID: %s %s\n", pi.ID, pi.Status)
			bookingId, ok := bookingIdFromMetadata(&pi)
			if !ok {
				break
			}
			go handlePaymentFailed(bookingId, &pi, string(event.Type))
		}
		ctx.Status(http.StatusNoContent)
	})
	return apiv1
}

func bookingIdFromMetadata(pi *stripe.PaymentIntent) (uint, bool) {
	id := pi.Metadata["booking_id"]
	atoi, err := strconv.Atoi(id)
	if err != nil {
		log.Printf("Could not read booking id for intent %s: %s\n", pi.ID, err.Error())
		return 0, false
	}
	return uint(atoi), true
}

func handlePaymentSucceeded(bookingId uint, pi *stripe.PaymentIntent) {
	gdb := db.GetDb()
	now := time.Now()
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.
			Where(&models.Payment{BookingID: bookingId}).
			First(&payment).
			Error; err != nil {
			return err
		}
		trace := appendTrace(payment.TransactionTrace, fmt.Sprintf("payment_intent.succeeded %s", pi.ID))
		return tx.
			Model(&models.Payment{}).
			Where(&models.Payment{ID: payment.ID, Status: types.PAYMENT_PENDING}).
			Updates(map[string]any{
				"status":            types.PAYMENT_PAID,
				"payment_date":      &now,
				"transaction_trace": trace,
			}).
			Error
	})
	if err != nil {
		log.Printf("Error updating payment for booking %d: %s\n", bookingId, err.Error())
		return
	}
	booking, err := common.ConfirmBooking(bookingId)
	if err != nil {
		log.Printf("Could not confirm booking %d after payment: %s\n", bookingId, err.Error())
		return
	}
	if err := common.EnqueueNotification(types.NOTIFY_PAYMENT_RECEIVED, booking.UserID, common.BookingNotificationData(booking)); err != nil {
		log.Printf("Failed to enqueue payment notification for %d: %s\n", booking.ID, err.Error())
	}
}

func handlePaymentFailed(bookingId uint, pi *stripe.PaymentIntent, source string) {
	gdb := db.GetDb()
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.
			Where(&models.Payment{BookingID: bookingId}).
			First(&payment).
			Error; err != nil {
			return err
		}
		trace := appendTrace(payment.TransactionTrace, fmt.Sprintf("%s %s", source, pi.ID))
		if err := tx.
			Model(&models.Payment{}).
			Where(&models.Payment{ID: payment.ID, Status: types.PAYMENT_PENDING}).
			Updates(map[string]any{
				"status":            types.PAYMENT_FAILED,
				"transaction_trace": trace,
			}).
			Error; err != nil {
			return err
		}
		var booking models.Booking
		if err := tx.
			Where(&models.Booking{ID: bookingId}).
			First(&booking).
			Error; err != nil {
			return err
		}
		if !booking.Status.CanTransitionTo(types.BOOKING_CANCELED) {
			log.Printf("Booking %d is %s, leaving as is\n", bookingId, booking.Status)
			return nil
		}
		return tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: bookingId, Status: booking.Status}).
			Update("status", types.BOOKING_CANCELED).
			Error
	})
	if err != nil {
		log.Printf("Error processing failed payment for booking %d: %s\n", bookingId, err.Error())
	}
}

func appendTrace(trace string, line string) string {
	stamped := fmt.Sprintf("%s at %s", line, time.Now().Format(config.TIME_PARSE_FORMAT))
	if trace == "" {
		return stamped
	}
	return trace + "\n" + stamped
}
