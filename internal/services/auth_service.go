package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/gulfbridge/mortgage-crm-backend/internal/database"
	"github.com/gulfbridge/mortgage-crm-backend/internal/models"
	"github.com/gulfbridge/mortgage-crm-backend/internal/utils"
	"github.com/gulfbridge/mortgage-crm-backend/pkg/jwt"
)

// AuthService handles login, token refresh and broker user management
type AuthService struct {
	users      *database.UserRepository
	jwtService *jwt.Service
	bcryptCost int
	logger     *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users *database.UserRepository, jwtService *jwt.Service, bcryptCost int, logger *logrus.Logger) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		jwtService: jwtService,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// TokenPair holds a freshly issued access/refresh token pair
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(req *models.LoginRequest, ipAddress, userAgent string) (*models.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.WithFields(logrus.Fields{
			"email": req.Email,
			"ip":    ipAddress,
		}).Warn("Login failed: wrong password")
		return nil, nil, ErrInvalidCredentials
	}

	if !user.Active {
		return nil, nil, ErrAccountDisabled
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.users.TouchLastLogin(user.ID, time.Now()); err != nil {
		// Login still succeeds; the timestamp is informational.
		s.logger.WithField("user_id", user.ID).WithError(err).Warn("Failed to record last login")
	}

	device := utils.ParseUserAgent(userAgent)
	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
		"ip":      ipAddress,
		"device":  device.DeviceType,
		"os":      device.OS,
		"browser": device.Browser,
	}).Info("User logged in")

	return user, pair, nil
}

// Refresh validates a refresh token and issues a fresh token pair
func (s *AuthService) Refresh(refreshToken string) (*models.User, *TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.Active {
		return nil, nil, ErrAccountDisabled
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *AuthService) issueTokens(user *models.User) (*TokenPair, error) {
	access, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// GetProfile returns the user identified by id
func (s *AuthService) GetProfile(userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// CreateUser registers a new broker user (admin only)
func (s *AuthService) CreateUser(req *models.CreateUserRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(req.Email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         models.UserRole(req.Role),
		PasswordHash: string(hash),
		Active:       true,
	}
	if req.Phone != nil {
		user.Phone = models.NullString{NullString: sql.NullString{String: *req.Phone, Valid: true}}
	}

	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
	}).Info("Broker user created")

	return user, nil
}

// UpdateUser applies a partial update to a broker user (admin only)
func (s *AuthService) UpdateUser(userID uuid.UUID, req *models.UpdateUserRequest) (*models.User, error) {
	if req.Role != nil {
		role := models.UserRole(*req.Role)
		if role != models.RoleAdmin && role != models.RoleAgent {
			return nil, errors.New("invalid role: must be admin or agent")
		}
	}

	if err := s.users.Update(userID, req); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return s.users.GetByID(userID)
}

// ListUsers returns all broker users (admin only)
func (s *AuthService) ListUsers() ([]models.User, error) {
	return s.users.List()
}
