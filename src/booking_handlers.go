package main

import (
	"errors"
	"frs/src/common"
	"frs/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func bookingStatusCode(err error) int {
	switch {
	case errors.Is(err, types.ErrFlightNotFound), errors.Is(err, types.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, types.ErrInvalidStatusTransition):
		return http.StatusConflict
	case errors.Is(err, types.ErrDuplicatePassport):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrInsufficientSeats),
		errors.Is(err, types.ErrSeatUpdateFailed),
		errors.Is(err, types.ErrNoActivePricing),
		errors.Is(err, types.ErrPaymentIntentFailed):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func abortWithBookingError(ctx *gin.Context, err error) {
	status := bookingStatusCode(err)
	if status == http.StatusInternalServerError {
		log.Printf("[Bookings] unexpected error: %s\n", err.Error())
		ctx.Status(status)
		return
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			booking, err := common.CreateNewBooking(&common.CreateBookingInput{
				FlightID:       body.FlightID,
				FareClass:      types.FareClass(body.FareClass),
				Passengers:     body.Passengers,
				PassengerCount: body.PassengerCount,
				UserID:         &userId,
			})
			if err != nil {
				abortWithBookingError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": booking})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			booking, err := common.GetBookingForUser(params.ID, userId)
			if err != nil {
				abortWithBookingError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		PUT("/bookings/:id/confirm", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			if _, err := common.GetBookingForUser(params.ID, userId); err != nil {
				abortWithBookingError(ctx, err)
				return
			}
			booking, err := common.ConfirmBooking(params.ID)
			if err != nil {
				abortWithBookingError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		PUT("/bookings/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CancelBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if _, err := common.GetBookingForUser(params.ID, userId); err != nil {
				abortWithBookingError(ctx, err)
				return
			}
			booking, err := common.CancelBooking(params.ID, body.Reason)
			if err != nil {
				abortWithBookingError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		})
	return g
}

// guestBookingRoutes are unauthenticated; identity is the booking
// reference plus a passenger last name.
func guestBookingRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.
		POST("/bookings/guest", func(ctx *gin.Context) {
			var body types.CreateGuestBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking, err := common.CreateNewBooking(&common.CreateBookingInput{
				FlightID:     body.FlightID,
				FareClass:    types.FareClass(body.FareClass),
				Passengers:   body.Passengers,
				ContactEmail: body.ContactEmail,
				ContactPhone: body.ContactPhone,
			})
			if err != nil {
				abortWithBookingError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": booking})
		}).
		GET("/bookings/guest/lookup", func(ctx *gin.Context) {
			var query types.GuestBookingLookupQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking, err := common.FindGuestBooking(query.BookingRef, query.LastName)
			if err != nil {
				abortWithBookingError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		POST("/bookings/guest/cancel", func(ctx *gin.Context) {
			var body types.CancelGuestBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking, err := common.CancelGuestBooking(body.BookingRef, body.LastName, body.Reason)
			if err != nil {
				abortWithBookingError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		})
	return apiv1
}
