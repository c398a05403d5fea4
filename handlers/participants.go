// handlers/participants.go - Participation and review endpoints
package handlers

import (
	"questboard/events"
	"questboard/middleware"
	"questboard/utils"

	"github.com/gofiber/fiber/v2"
)

// ListParticipants returns a quest's participants
// GET /api/quests/:id/participants
func (h *Handler) ListParticipants(c *fiber.Ctx) error {
	questID, err := utils.ParseID(c, "id")
	if err != nil {
		return err
	}

	participants, err := h.participants.ListParticipants(c.UserContext(), questID)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.Success(c, fiber.Map{"participants": participants})
}

// CompleteQuest marks the caller's participation as done
// POST /api/quests/:id/complete
func (h *Handler) CompleteQuest(c *fiber.Ctx) error {
	questID, err := utils.ParseID(c, "id")
	if err != nil {
		return err
	}
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	participant, err := h.participants.CompleteQuest(c.UserContext(), userID, questID)
	if err != nil {
		return h.fail(c, err)
	}

	h.publish(events.ParticipantCompleted, questID, userID, participant)
	return utils.Success(c, fiber.Map{"participant": participant})
}

// ClearParticipant confirms a completion and awards the quest's points
// POST /api/quests/:id/participants/:userId/clear
func (h *Handler) ClearParticipant(c *fiber.Ctx) error {
	questID, err := utils.ParseID(c, "id")
	if err != nil {
		return err
	}
	userID, err := utils.ParseID(c, "userId")
	if err != nil {
		return err
	}
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	participant, err := h.participants.ClearParticipant(c.UserContext(), actor, questID, userID)
	if err != nil {
		return h.fail(c, err)
	}

	h.publish(events.ParticipantCleared, questID, userID, participant)
	return utils.Success(c, fiber.Map{"participant": participant})
}

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ListReviews returns a quest's reviews
// GET /api/quests/:id/reviews
func (h *Handler) ListReviews(c *fiber.Ctx) error {
	questID, err := utils.ParseID(c, "id")
	if err != nil {
		return err
	}

	reviews, err := h.reviews.ListReviews(c.UserContext(), questID)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.Success(c, fiber.Map{"reviews": reviews})
}

// CreateReview rates a completed quest
// POST /api/quests/:id/reviews
func (h *Handler) CreateReview(c *fiber.Ctx) error {
	questID, err := utils.ParseID(c, "id")
	if err != nil {
		return err
	}
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req createReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	review, err := h.reviews.CreateReview(c.UserContext(), userID, questID, req.Rating, req.Comment)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.Created(c, fiber.Map{"review": review})
}
