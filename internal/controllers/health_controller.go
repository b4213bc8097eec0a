package controllers

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Health godoc
// @Summary Liveness probe
// @Description Reports whether the service and its database are reachable
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} models.APIError
// @Router /api/health [get]
func Health(db *gorm.DB) gin.HandlerFunc {
	started := time.Now()
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			apiErr := models.NewAPIError("UNAVAILABLE", "Database unreachable")
			if exposeErrorDetail {
				apiErr.Error = err.Error()
			}
			c.JSON(http.StatusServiceUnavailable, apiErr)
			return
		}
		respond(c, http.StatusOK, "Server is running", gin.H{
			"uptime": time.Since(started).Round(time.Second).String(),
		})
	}
}
