package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"govready/internal/engine"
	"govready/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// participantTokenTTL bounds how long an issued participant token is accepted
const participantTokenTTL = 30 * 24 * time.Hour

// AuthService handles admin login and participant tokens
type AuthService struct {
	adminUsername string
	adminPassword string
	jwtSecret     []byte
	catalog       *CatalogService // optional; checks participant personas
	now           func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(adminUsername, adminPassword, jwtSecret string) *AuthService {
	return &AuthService{
		adminUsername: adminUsername,
		adminPassword: adminPassword,
		jwtSecret:     []byte(jwtSecret),
		now:           time.Now,
	}
}

// SetCatalog makes participant tokens require a persona from the catalog
func (s *AuthService) SetCatalog(c *CatalogService) {
	s.catalog = c
}

// Login validates admin credentials and returns an admin token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.adminUsername || password != s.adminPassword {
		return nil, ErrInvalidCredentials
	}

	claims := &model.ActorClaims{
		UserID:    "admin_" + username,
		Role:      model.RoleAdmin,
		CanReview: true,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	token, err := s.sign(claims)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: token, UserID: claims.UserID}, nil
}

// IssueParticipantToken mints a token for a participant. A missing user id is generated.
func (s *AuthService) IssueParticipantToken(ctx context.Context, req model.IssueParticipantRequest) (*model.LoginResponse, error) {
	if strings.TrimSpace(req.PersonaID) == "" {
		return nil, &engine.ValidationError{Field: "personaId", Reason: "is required"}
	}
	if s.catalog != nil {
		catalog, err := s.catalog.Catalog(ctx)
		if err != nil {
			return nil, err
		}
		if _, ok := catalog.Persona(req.PersonaID); !ok {
			return nil, &engine.NotFoundError{Entity: "persona", ID: req.PersonaID}
		}
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = "user_" + uuid.New().String()[:8]
	}

	now := s.now()
	claims := &model.ActorClaims{
		UserID:    userID,
		PersonaID: req.PersonaID,
		Role:      model.RoleParticipant,
		CanReview: req.CanReview,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(participantTokenTTL)),
		},
	}
	token, err := s.sign(claims)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: token, UserID: userID}, nil
}

// ValidateToken validates a JWT and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (*model.ActorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.ActorClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.ActorClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) sign(claims *model.ActorClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
