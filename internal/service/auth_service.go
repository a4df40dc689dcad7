package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/mathgrader-api/internal/auth"
	"github.com/noah-isme/mathgrader-api/internal/dto"
	"github.com/noah-isme/mathgrader-api/internal/models"
	"github.com/noah-isme/mathgrader-api/internal/repository"
)

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(user auth.SessionUser) (string, error)
}

// AuthService registers teachers and exchanges credentials for session tokens.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, string, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.UserResponse, string, error)
	CurrentUser(ctx context.Context, userID uint) (dto.UserResponse, error)
}

type authService struct {
	users      repository.UserRepository
	tokens     TokenIssuer
	validator  *validator.Validate
	bcryptCost int
	dummyHash  []byte
	logger     zerolog.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(users repository.UserRepository, tokens TokenIssuer, validate *validator.Validate, bcryptCost int, logger zerolog.Logger) (AuthService, error) {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	// compared against for unknown emails so both login failures cost one bcrypt run
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("mathgrader-dummy-password"), bcryptCost)
	if err != nil {
		return nil, err
	}

	return &authService{
		users:      users,
		tokens:     tokens,
		validator:  validate,
		bcryptCost: bcryptCost,
		dummyHash:  dummyHash,
		logger:     logger.With().Str("component", "auth_service").Logger(),
	}, nil
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, string, error) {
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Email = normalizeEmail(payload.Email)
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, "", err
	}

	exists, err := s.users.ExistsByEmail(ctx, payload.Email)
	if err != nil {
		return dto.UserResponse{}, "", err
	}
	if exists {
		return dto.UserResponse{}, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), s.bcryptCost)
	if err != nil {
		return dto.UserResponse{}, "", err
	}

	user := models.User{
		Email:        payload.Email,
		Name:         payload.Name,
		PasswordHash: string(hash),
		Role:         models.RoleTeacher,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if isDuplicateKey(err) {
			return dto.UserResponse{}, "", ErrEmailTaken
		}
		return dto.UserResponse{}, "", err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("teacher registered")

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.UserResponse, string, error) {
	payload.Email = normalizeEmail(payload.Email)
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, "", err
	}

	user, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if !isNotFound(err) {
			return dto.UserResponse{}, "", err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(payload.Password))
		return dto.UserResponse{}, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dto.UserResponse{}, "", ErrInvalidCredentials
		}
		return dto.UserResponse{}, "", err
	}

	return s.issue(user)
}

func (s *authService) CurrentUser(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return dto.UserResponse{}, ErrInvalidCredentials
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *authService) issue(user models.User) (dto.UserResponse, string, error) {
	token, err := s.tokens.Issue(auth.SessionUser{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
	if err != nil {
		return dto.UserResponse{}, "", err
	}
	return dto.NewUserResponse(user), token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
