package chatRoutes

import (
	"edubot/chatbot"
	chatControllers "edubot/controllers/chat"
	"edubot/middleware"
	chatValidators "edubot/validators/chat"

	"github.com/gofiber/fiber/v2"
)

// SetupChatRoutes sets up the chat and quick action admin routes
func SetupChatRoutes(app *fiber.App, engine *chatbot.Engine) {
	chatGroup := app.Group("/chat")

	chatGroup.Post("/send", middleware.JWTMiddleware, chatValidators.SendMessage(), chatControllers.SendMessage(engine))
	chatGroup.Get("/history", middleware.JWTMiddleware, chatControllers.ChatHistory)
	chatGroup.Get("/stats", middleware.JWTMiddleware, chatControllers.ChatStats(engine))
	chatGroup.Post("/reload-intents", middleware.JWTMiddleware, middleware.AdminOnly, chatControllers.ReloadIntents(engine))

	adminGroup := app.Group("/admin/quick-actions", middleware.JWTMiddleware, middleware.AdminOnly)
	adminGroup.Post("/", chatValidators.CreateQuickAction(), chatControllers.CreateQuickAction)
	adminGroup.Get("/", chatControllers.ListQuickActions)
	adminGroup.Put("/:id", chatControllers.UpdateQuickAction)
	adminGroup.Delete("/:id", chatControllers.DeleteQuickAction)
}
