package services

import (
	"errors"
	"fmt"
	"strings"

	"staff_rota_backend/internal/models"
	"staff_rota_backend/internal/repositories"
	"staff_rota_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors ---
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountSuspended   = errors.New("account is suspended")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrRoleNotFound       = errors.New("specified role not found")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

// --- Data Transfer Objects (DTOs) ---

// LoginRequest DTO
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterUserRequest DTO
type RegisterUserRequest struct {
	Username  string   `json:"username" binding:"required"`
	Email     string   `json:"email" binding:"required,email"`
	Password  string   `json:"password" binding:"required,min=8"`
	FullName  string   `json:"full_name" binding:"required"`
	RoleNames []string `json:"role_names"` // e.g. ["bartender", "waiter"]; defaults to skullers
}

// AuthResponse DTO
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
}

// --- AuthService Interface ---
type AuthService interface {
	RegisterUser(req RegisterUserRequest) (*models.User, error)
	LoginUser(req LoginRequest) (*AuthResponse, error)
	GetUserProfile(userID int64) (*models.User, error)
}

// --- authService Implementation ---
type authService struct {
	userRepo repositories.UserRepository
	db       repositories.Database
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo repositories.UserRepository, db repositories.Database) AuthService {
	return &authService{userRepo: userRepo, db: db}
}

// RegisterUser handles the business logic for user registration. The user row
// and its role links are written in one transaction.
func (s *authService) RegisterUser(req RegisterUserRequest) (*models.User, error) {
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	roleNames := req.RoleNames
	if len(roleNames) == 0 {
		roleNames = []string{"skullers"}
	}

	user := models.User{
		Username: req.Username,
		Email:    &req.Email,
		FullName: &req.FullName,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	userID, err := s.userRepo.CreateUser(tx, &user, string(hashedPasswordBytes), roleNames)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			if strings.Contains(err.Error(), "users_email_key") {
				return nil, ErrEmailExists
			}
			return nil, ErrUsernameExists
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, strings.Join(roleNames, ", "))
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	registeredUser, err := s.userRepo.FindUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("user registered but failed to retrieve details: %w", err)
	}
	registeredUser.PasswordHash = ""
	return registeredUser, nil
}

// LoginUser handles user login and token generation.
func (s *authService) LoginUser(req LoginRequest) (*AuthResponse, error) {
	user, storedHash, err := s.userRepo.FindUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.IsSuspended {
		return nil, ErrAccountSuspended
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Username, user.RoleNames())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	user.PasswordHash = ""
	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GetUserProfile retrieves a user's profile by their ID.
func (s *authService) GetUserProfile(userID int64) (*models.User, error) {
	user, err := s.userRepo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user profile: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}
