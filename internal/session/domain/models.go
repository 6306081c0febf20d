package domain

import (
	"time"

	recognitiondomain "github.com/nutrilog/nutrilog/internal/recognition/domain"
)

// State is the conversational position of one user.
type State string

const (
	// StateIdle means no exchange is pending.
	StateIdle State = "idle"
	// StateAwaitingDescription means a photo arrived and the user has not
	// described it yet.
	StateAwaitingDescription State = "awaiting_description"
	// StateAwaitingQuantity means a food was identified and the user must
	// confirm or correct the portion size.
	StateAwaitingQuantity State = "awaiting_quantity"
)

// Session is the live conversational state for one user between a
// photo/description exchange and its resolution. The zero value is a fresh
// Idle session.
type Session struct {
	State              State
	PendingPhoto       []byte
	PendingEstimate    *recognitiondomain.FoodEstimate
	PendingComposition *recognitiondomain.MacroProfile
	UpdatedAt          time.Time
}

// Reset clears all pending data back to Idle.
func (s *Session) Reset() {
	s.State = StateIdle
	s.PendingPhoto = nil
	s.PendingEstimate = nil
	s.PendingComposition = nil
}

// IdleSince reports whether the session has seen no event for longer than ttl.
// A zero ttl disables expiry.
func (s *Session) IdleSince(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 || s.UpdatedAt.IsZero() {
		return false
	}
	return now.Sub(s.UpdatedAt) > ttl
}
