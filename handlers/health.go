package handlers

import (
	"net/http"
	"time"

	"ecofloss-backend/dtos"

	"github.com/gin-gonic/gin"
)

// isoTimestamp is UTC with millisecond precision.
const isoTimestamp = "2006-01-02T15:04:05.000Z07:00"

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, dtos.HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC().Format(isoTimestamp),
	})
}
