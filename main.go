package main

import (
	"log"
	"time"

	"guildhall/config"
	"guildhall/database"
	routes "guildhall/internal/app/http"
	"guildhall/internal/cache"
	"guildhall/internal/jobs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	database.InitDB()
	cache.Init(config.REDIS_URL, config.REDIS_PASSWORD)

	scheduler := jobs.Init(database.DB, jobs.LogNotifier{})
	if err := scheduler.Start(); err != nil {
		log.Fatal("Failed to start reminder scheduler:", err)
	}
	defer scheduler.Stop()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r)

	r.Run(":" + config.PORT)
}
