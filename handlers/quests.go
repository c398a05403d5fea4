// handlers/quests.go - Quest CRUD HTTP Handlers
package handlers

import (
	"time"

	"questboard/events"
	"questboard/middleware"
	"questboard/models"
	"questboard/services"
	"questboard/utils"

	"github.com/gofiber/fiber/v2"
)

type createQuestRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	RewardPoints    int        `json:"reward_points"`
	MaxParticipants *int       `json:"max_participants"`
	Deadline        *time.Time `json:"deadline"`
}

// Omitted fields are left unchanged; "unlimited": true clears the capacity
type updateQuestRequest struct {
	Title           *string             `json:"title"`
	Description     *string             `json:"description"`
	Category        *string             `json:"category"`
	RewardPoints    *int                `json:"reward_points"`
	MaxParticipants *int                `json:"max_participants"`
	Unlimited       bool                `json:"unlimited"`
	Status          *models.QuestStatus `json:"status"`
	Deadline        *time.Time          `json:"deadline"`
}

// ================== QUEST CRUD ENDPOINTS ==================

// ListQuests returns a page of quests
// GET /api/quests?status=open&category=&q=&limit=20&offset=0
func (h *Handler) ListQuests(c *fiber.Ctx) error {
	filter := services.QuestFilter{
		Status:   models.QuestStatus(c.Query("status")),
		Category: c.Query("category"),
		Search:   c.Query("q"),
		Limit:    utils.QueryInt(c, "limit", services.DefaultQuestPageSize),
		Offset:   utils.QueryInt(c, "offset", 0),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid status")
	}

	quests, total, err := h.quests.ListQuests(c.UserContext(), filter)
	if err != nil {
		return h.fail(c, err)
	}

	return utils.Success(c, fiber.Map{
		"quests": quests,
		"total":  total,
	})
}

// GetQuest returns one quest
// GET /api/quests/:id
func (h *Handler) GetQuest(c *fiber.Ctx) error {
	questID, err := utils.ParseID(c, "id")
	if err != nil {
		return err
	}

	quest, err := h.quests.GetQuest(c.UserContext(), questID)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.Success(c, fiber.Map{"quest": quest})
}

// CreateQuest posts a new quest owned by the caller
// POST /api/quests
func (h *Handler) CreateQuest(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req createQuestRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	quest, err := h.quests.CreateQuest(c.UserContext(), userID, services.QuestInput{
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		RewardPoints:    req.RewardPoints,
		MaxParticipants: req.MaxParticipants,
		Deadline:        req.Deadline,
	})
	if err != nil {
		return h.fail(c, err)
	}

	h.publish(events.QuestCreated, quest.ID, userID, quest)
	return utils.Created(c, fiber.Map{
		"message": "Quest created successfully",
		"quest":   quest,
	})
}

// UpdateQuest edits a quest (creator or admin)
// PUT /api/quests/:id
func (h *Handler) UpdateQuest(c *fiber.Ctx) error {
	questID, err := utils.ParseID(c, "id")
	if err != nil {
		return err
	}
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	var req updateQuestRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	quest, err := h.quests.UpdateQuest(c.UserContext(), actor, questID, services.QuestUpdate{
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		RewardPoints:    req.RewardPoints,
		MaxParticipants: req.MaxParticipants,
		Unlimited:       req.Unlimited,
		Status:          req.Status,
		Deadline:        req.Deadline,
	})
	if err != nil {
		return h.fail(c, err)
	}

	h.publish(events.QuestUpdated, questID, actor.UserID, quest)
	return utils.Success(c, fiber.Map{"quest": quest})
}

// DeleteQuest removes a quest (creator or admin)
// DELETE /api/quests/:id
func (h *Handler) DeleteQuest(c *fiber.Ctx) error {
	questID, err := utils.ParseID(c, "id")
	if err != nil {
		return err
	}
	actor, err := middleware.GetActor(c)
	if err != nil {
		return err
	}

	if err := h.quests.DeleteQuest(c.UserContext(), actor, questID); err != nil {
		return h.fail(c, err)
	}

	h.publish(events.QuestDeleted, questID, actor.UserID, nil)
	return utils.Success(c, fiber.Map{"message": "Quest deleted"})
}
