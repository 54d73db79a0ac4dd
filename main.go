package main

import (
	"edubot/chatbot"
	"edubot/config"
	"edubot/database"
	authRoutes "edubot/routers/authRoutes"
	chatRoutes "edubot/routers/chatRoutes"
	"edubot/services"
	"edubot/utils"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	gemini := services.NewGeminiService(
		config.AppConfig.GeminiApiKey,
		config.AppConfig.GeminiModel,
		time.Duration(config.AppConfig.GeminiTimeout)*time.Second,
	)

	engine := chatbot.NewEngine(database.Database.Db, chatbot.WithGenerator(gemini))
	if err := engine.LoadIntents(); err != nil {
		log.Printf("Falling back to default intents: %v", err)
	}

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app)
	chatRoutes.SetupChatRoutes(app, engine)

	utils.StartChatbotScheduler(engine)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
