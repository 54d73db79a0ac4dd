package chatController

import (
	"edubot/database"
	"edubot/middleware"
	"edubot/models"

	"github.com/gofiber/fiber/v2"
)

// CreateQuickAction adds a curated Q&A entry (admin)
func CreateQuickAction(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := new(struct {
		Question string `json:"question"`
		Response string `json:"response"`
		Category string `json:"category"`
		Keywords string `json:"keywords"`
		Priority *int   `json:"priority"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	quickAction := models.QuickAction{
		Question:  reqData.Question,
		Response:  reqData.Response,
		Category:  reqData.Category,
		Keywords:  reqData.Keywords,
		IsActive:  true,
		CreatedBy: &userID,
	}
	if reqData.Priority != nil {
		quickAction.Priority = *reqData.Priority
	} else {
		quickAction.Priority = 5
	}

	if err := database.Database.Db.Create(&quickAction).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quick action!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quick action created!", quickAction)
}

// ListQuickActions returns all quick actions ordered like the matcher scans
// them (priority desc, usage desc).
func ListQuickActions(c *fiber.Ctx) error {
	var quickActions []models.QuickAction
	if err := database.Database.Db.
		Order("priority desc").
		Order("usage_count desc").
		Find(&quickActions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch quick actions!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quick actions fetched!", quickActions)
}

// UpdateQuickAction edits a curated Q&A entry (admin)
func UpdateQuickAction(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid quick action id!", nil)
	}

	var quickAction models.QuickAction
	if err := database.Database.Db.First(&quickAction, id).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quick action not found!", nil)
	}

	reqData := new(struct {
		Question *string `json:"question"`
		Response *string `json:"response"`
		Category *string `json:"category"`
		Keywords *string `json:"keywords"`
		Priority *int    `json:"priority"`
		IsActive *bool   `json:"is_active"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if reqData.Question != nil {
		quickAction.Question = *reqData.Question
	}
	if reqData.Response != nil {
		quickAction.Response = *reqData.Response
	}
	if reqData.Category != nil {
		quickAction.Category = *reqData.Category
	}
	if reqData.Keywords != nil {
		quickAction.Keywords = *reqData.Keywords
	}
	if reqData.Priority != nil {
		quickAction.Priority = *reqData.Priority
	}
	if reqData.IsActive != nil {
		quickAction.IsActive = *reqData.IsActive
	}

	if err := database.Database.Db.Save(&quickAction).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update quick action!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quick action updated!", quickAction)
}

// DeleteQuickAction removes a curated Q&A entry (admin)
func DeleteQuickAction(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid quick action id!", nil)
	}

	var quickAction models.QuickAction
	if err := database.Database.Db.First(&quickAction, id).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quick action not found!", nil)
	}

	if err := database.Database.Db.Delete(&quickAction).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete quick action!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quick action deleted!", nil)
}
