package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ojttracker.com/ojttracker/ojt/web/common"
	"ojttracker.com/ojttracker/ojt/web/handlers/announcements"
	"ojttracker.com/ojttracker/ojt/web/handlers/attendance"
	"ojttracker.com/ojttracker/ojt/web/handlers/reports"
	"ojttracker.com/ojttracker/ojt/web/handlers/schedule"
	"ojttracker.com/ojttracker/ojt/web/handlers/students"
	"ojttracker.com/ojttracker/web/middlewares"
)

const version = "1.0.0"

func NewRouter(base *common.Handler, jwtSecret []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	r.GET("/api/ojt/manifest", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     version,
			"description": "OJT Attendance API",
		})
	})

	protected := r.Group("/api/ojt/v1")
	protected.Use(middlewares.Authentication(jwtSecret))
	{
		protected.GET("/whoami", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"data": middlewares.GetIdentity(c)})
		})

		attendance.Register(protected, base)
		students.Register(protected, base)
		schedule.Register(protected, base)
		reports.Register(protected, base)
		announcements.Register(protected, base)
	}

	return r
}
