package chatValidator

import (
	"edubot/middleware"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SendMessage validator middleware
func SendMessage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Message   string `json:"message"`
			SessionID string `json:"session_id"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Message) == "" {
			errors["message"] = "Message cannot be empty!"
		} else if len(reqData.Message) > 2000 {
			errors["message"] = "Message must be at most 2000 characters long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		return c.Next()
	}
}

// CreateQuickAction validator middleware
func CreateQuickAction() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Question string `json:"question"`
			Response string `json:"response"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Question) == "" {
			errors["question"] = "Question is required!"
		} else if len(strings.TrimSpace(reqData.Question)) < 3 {
			errors["question"] = "Question must be at least 3 characters long!"
		}

		if strings.TrimSpace(reqData.Response) == "" {
			errors["response"] = "Response is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		return c.Next()
	}
}
