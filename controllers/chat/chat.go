package chatController

import (
	"edubot/chatbot"
	"edubot/database"
	"edubot/middleware"
	"edubot/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SendMessage processes one chat message through the chatbot engine
func SendMessage(engine *chatbot.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}

		reqData := new(struct {
			Message   string `json:"message"`
			SessionID string `json:"session_id"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		sessionID := reqData.SessionID
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		meta := chatbot.ClientMeta{
			IpAddress: c.IP(),
			UserAgent: c.Get("User-Agent"),
		}

		result := engine.ProcessMessage(reqData.Message, userID, sessionID, meta)

		if !result.Success {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, result.Response, nil)
		}

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Message processed!", fiber.Map{
			"response":        result.Response,
			"intent":          result.Intent,
			"confidence":      result.Confidence,
			"response_time":   result.ResponseTimeMs,
			"matched_pattern": result.MatchedPattern,
			"session_id":      sessionID,
		})
	}
}

// ChatHistory returns the caller's chat log, newest first
func ChatHistory(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var logs []models.ChatLog
	if err := database.Database.Db.Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&logs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load chat history!", nil)
	}

	var total int64
	database.Database.Db.Model(&models.ChatLog{}).Where("user_id = ?", userID).Count(&total)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Chat history fetched!", fiber.Map{
		"chats": logs,
		"total": total,
	})
}

// ChatStats returns the caller's conversation statistics
func ChatStats(engine *chatbot.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}

		stats, err := engine.GetConversationStats(userID)
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load statistics!", nil)
		}

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Statistics fetched!", stats)
	}
}

// ReloadIntents atomically replaces the in-memory intent set from the
// database (admin only, wired behind middleware.AdminOnly).
func ReloadIntents(engine *chatbot.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := engine.ReloadIntents(); err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reload intents!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Intents reloaded successfully!", fiber.Map{
			"intents": engine.Recognizer().IntentNames(),
		})
	}
}
