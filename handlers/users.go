package handlers

import (
	"questboard/middleware"
	"questboard/utils"

	"github.com/gofiber/fiber/v2"
)

// GetCurrentUser returns the caller's profile
// GET /api/users/me
func (h *Handler) GetCurrentUser(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetUser(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.Success(c, fiber.Map{"user": user})
}

// GetMyQuests returns the quests the caller joined
// GET /api/users/me/quests
func (h *Handler) GetMyQuests(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	participations, err := h.participants.JoinedQuests(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.Success(c, fiber.Map{"participations": participations})
}

// GetLeaderboard ranks users by points
// GET /api/leaderboard?limit=20
func (h *Handler) GetLeaderboard(c *fiber.Ctx) error {
	users, err := h.users.Leaderboard(c.UserContext(), utils.QueryInt(c, "limit", 20))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.Success(c, fiber.Map{"leaderboard": users})
}

// CloseExpiredQuests runs the deadline sweep now instead of waiting for the
// next tick
// POST /api/admin/quests/close-expired
func (h *Handler) CloseExpiredQuests(c *fiber.Ctx) error {
	closed, err := h.cleanup.CloseExpiredQuests(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.Success(c, fiber.Map{
		"message": "Expired quests closed",
		"closed":  closed,
	})
}
