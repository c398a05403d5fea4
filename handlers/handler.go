// handlers/handler.go - Route table and shared handler state
package handlers

import (
	"time"

	"questboard/events"
	"questboard/middleware"
	"questboard/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler serves the REST API and the live event stream
type Handler struct {
	quests       *services.QuestService
	joins        *services.JoinService
	participants *services.ParticipantService
	reviews      *services.ReviewService
	users        *services.UserService
	cleanup      *services.CleanupService
	tokens       *services.TokenIssuer
	hub          *events.Hub
	log          *zap.Logger
}

func New(db *gorm.DB, tokens *services.TokenIssuer, hub *events.Hub, cleanup *services.CleanupService, log *zap.Logger) *Handler {
	return &Handler{
		quests:       services.NewQuestService(db),
		joins:        services.NewJoinService(services.NewGormJoinStore(db), log.Named("join")),
		participants: services.NewParticipantService(db),
		reviews:      services.NewReviewService(db),
		users:        services.NewUserService(db, tokens),
		cleanup:      cleanup,
		tokens:       tokens,
		hub:          hub,
		log:          log,
	}
}

// Mount registers every route. authLimiter may be nil to disable the
// stricter limit on auth endpoints.
func (h *Handler) Mount(app *fiber.App, authLimiter *middleware.RateLimiter) {
	requireAuth := middleware.Auth(h.tokens)

	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	if authLimiter != nil {
		authGroup.Use(middleware.RateLimit(authLimiter, "Too many authentication attempts. Please try again later."))
	}
	authGroup.Post("/register", h.Register)
	authGroup.Post("/login", h.Login)

	// Quest routes
	api.Get("/quests", h.ListQuests)
	api.Get("/quests/:id", h.GetQuest)
	api.Post("/quests", requireAuth, h.CreateQuest)
	api.Put("/quests/:id", requireAuth, h.UpdateQuest)
	api.Delete("/quests/:id", requireAuth, h.DeleteQuest)

	// Participation routes
	api.Post("/quests/:id/join", requireAuth, h.JoinQuest)
	api.Get("/quests/:id/participants", h.ListParticipants)
	api.Post("/quests/:id/complete", requireAuth, h.CompleteQuest)
	api.Post("/quests/:id/participants/:userId/clear", requireAuth, h.ClearParticipant)

	// Review routes
	api.Get("/quests/:id/reviews", h.ListReviews)
	api.Post("/quests/:id/reviews", requireAuth, h.CreateReview)

	// User routes
	userGroup := api.Group("/users", requireAuth)
	userGroup.Get("/me", h.GetCurrentUser)
	userGroup.Get("/me/quests", h.GetMyQuests)

	api.Get("/leaderboard", h.GetLeaderboard)

	// Admin routes
	adminGroup := api.Group("/admin", requireAuth, middleware.RequireAdmin)
	adminGroup.Post("/quests/close-expired", h.CloseExpiredQuests)

	// Live events
	app.Use("/ws", requireUpgrade)
	app.Get("/ws", websocket.New(h.streamEvents))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})
}

// ErrorHandler renders errors that escape a handler as JSON. Details of
// 500s are hidden in production.
func ErrorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		if production && code == fiber.StatusInternalServerError {
			message = "An error occurred. Please try again later."
		}

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   message,
		})
	}
}

func (h *Handler) publish(eventType string, questID, userID uint, payload interface{}) {
	h.hub.Publish(events.Event{
		Type:    eventType,
		QuestID: questID,
		UserID:  userID,
		Payload: payload,
	})
}
