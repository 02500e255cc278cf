package service

import (
	"context"
	"errors"
	"fmt"
	"marketplace/internal/common"
	"marketplace/internal/common/security"
	"marketplace/internal/domain/model"
	"marketplace/internal/domain/repository"
	"regexp"

	"github.com/google/uuid"
)

// Registration is restricted to a single allowed address pattern.
var allowedEmailPattern = regexp.MustCompile(`(?i)^[^\s@]+@gmail\.com$`)

// ErrInvalidCredentials carries the one generic message returned for both an
// unknown email and a wrong password, so error text cannot be used to
// enumerate accounts.
var ErrInvalidCredentials error = invalidCredentialsError{}

type invalidCredentialsError struct{}

func (invalidCredentialsError) Error() string { return "invalid email or password" }
func (invalidCredentialsError) Unwrap() error { return common.ErrBadRequest }

type AuthService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type RegisterResponse struct {
	Msg string `json:"msg"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Msg   string `json:"msg"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, common.Errorf("missing fields: %w", common.ErrBadRequest)
	}
	if !allowedEmailPattern.MatchString(req.Email) {
		return nil, common.Errorf("registration requires a @gmail.com email: %w", common.ErrValidation)
	}

	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, common.Errorf("email already registered: %w", common.ErrConflict)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := model.RoleUser
	if req.Role == model.RoleAdmin {
		role = model.RoleAdmin
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo returns common.ErrConflict on the unique email constraint.
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// No credential is issued at registration; the client must log in.
	return &RegisterResponse{Msg: "Registered successfully"}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, common.Errorf("missing fields: %w", common.ErrBadRequest)
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}

	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResponse{
		Token: token,
		Role:  user.Role,
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Msg:   "Login successful",
	}, nil
}
