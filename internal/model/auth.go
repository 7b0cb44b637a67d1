package model

import "github.com/golang-jwt/jwt/v5"

// ActorClaims are JWT claims identifying an actor on the platform
type ActorClaims struct {
	UserID    string    `json:"userId"`
	PersonaID string    `json:"personaId,omitempty"`
	Role      ActorRole `json:"role"`
	CanReview bool      `json:"canReview"`
	jwt.RegisteredClaims
}

// Actor converts token claims into a workflow actor
func (c *ActorClaims) Actor() Actor {
	return Actor{
		UserID:    c.UserID,
		PersonaID: c.PersonaID,
		Role:      c.Role,
		CanReview: c.CanReview || c.Role == RoleAdmin,
		Active:    true,
	}
}

// LoginRequest is the request body for admin login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// IssueParticipantRequest is the request body for minting a participant token
type IssueParticipantRequest struct {
	UserID    string `json:"userId,omitempty"` // generated when empty
	PersonaID string `json:"personaId"`
	CanReview bool   `json:"canReview"`
}
