package services

import "errors"

// Service errors. Handlers map these to HTTP responses with errors.Is.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("not allowed")
	ErrQuestNotFound      = errors.New("quest not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotParticipant     = errors.New("not a participant of this quest")
	ErrAlreadyCompleted   = errors.New("quest already completed")
	ErrNotCompleted       = errors.New("quest not completed yet")
	ErrAlreadyCleared     = errors.New("participation already cleared")
	ErrAlreadyReviewed    = errors.New("quest already reviewed")
	ErrCapacityTooLow     = errors.New("capacity below current participant count")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Actor is the authenticated caller of an operation
type Actor struct {
	UserID uint
	Admin  bool
}

// canManage reports whether the actor may edit a quest owned by ownerID
func (a Actor) canManage(ownerID uint) bool {
	return a.Admin || a.UserID == ownerID
}
