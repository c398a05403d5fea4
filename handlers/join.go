package handlers

import (
	"questboard/events"
	"questboard/middleware"
	"questboard/services"
	"questboard/utils"

	"github.com/gofiber/fiber/v2"
)

// JoinQuest adds the caller to a quest. Rejections are all 400 with a
// message per reason; only unexpected failures are 500. Quest id 0 is passed
// through and ends up as "Quest not found".
// POST /api/quests/:id/join
func (h *Handler) JoinQuest(c *fiber.Ctx) error {
	questID, err := utils.ParseUint(c, "id")
	if err != nil {
		return err
	}
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	result := h.joins.JoinQuest(c.UserContext(), userID, questID)

	switch result.Outcome {
	case services.JoinSucceeded:
		h.publish(events.ParticipantJoined, questID, userID, result.Participant)
		return utils.Success(c, fiber.Map{
			"message":           "Joined quest successfully",
			"participant":       result.Participant,
			"participant_count": result.Quest.ParticipantCount,
		})
	case services.JoinNotFound:
		return utils.Error(c, fiber.StatusBadRequest, "Quest not found")
	case services.JoinDuplicate:
		return utils.Error(c, fiber.StatusBadRequest, "You have already joined this quest")
	case services.JoinFull:
		return utils.Error(c, fiber.StatusBadRequest, "This quest is full")
	default:
		return utils.Error(c, fiber.StatusInternalServerError, "Failed to join quest")
	}
}
