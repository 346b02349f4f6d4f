package main

import (
	"frs/src/common"
	"frs/src/db"
	"frs/src/models"
	"frs/src/types"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func flightRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.
		GET("/flights/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var flight models.Flight
			db := db.GetDb()
			if err := db.
				Where(&models.Flight{ID: params.ID}).
				Preload("Prices", "valid_from <= ? AND valid_to > ?", time.Now(), time.Now()).
				First(&flight).
				Error; err != nil {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": flight})
		}).
		GET("/flights/:id/seats", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			free, total, err := common.GetAvailableSeats(params.ID)
			if err != nil {
				abortWithBookingError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"available": free, "total": total})
		})
	return apiv1
}
