package main

import (
	"context"
	"log"
	"os"

	"tooltrack/app"
	"tooltrack/config"
	"tooltrack/routes"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	if err := app.Bootstrap(context.Background(), application.DB, application.Config, application.Log); err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	r := application.Router

	// Health
	r.GET("/api/health", func(c *app.Ctx) { c.JSON(200, app.H{"status": "ok"}) })

	routes.RegisterRoutes(r, application)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}
