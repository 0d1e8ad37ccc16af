package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"taskverse/internal/models"
	"taskverse/internal/repositories"
)

// UserService is the identity provider: email/password accounts plus
// accounts created from an OAuth sign-in.
type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.Session, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.Session, error)
	LoginWithOAuth(ctx context.Context, provider string, profile *OAuthProfile) (*models.Session, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	LinkTelegram(ctx context.Context, userID string, chatID int64, notify bool) (*models.User, error)
}

// WelcomeSender is the optional welcome mail hook on registration.
type WelcomeSender interface {
	SendWelcomeEmail(email, name string) error
}

type userService struct {
	repo    repositories.UserRepository
	auth    AuthService
	welcome WelcomeSender
}

// NewUserService creates a UserService. welcome may be nil.
func NewUserService(repo repositories.UserRepository, auth AuthService, welcome WelcomeSender) UserService {
	return &userService{repo: repo, auth: auth, welcome: welcome}
}

func (s *userService) session(user *models.User) (*models.Session, error) {
	token, exp, err := s.auth.IssueToken(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &models.Session{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *userService) Register(ctx context.Context, req models.RegisterRequest) (*models.Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("password is required")
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: hash,
		Provider:     models.ProviderPassword,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, storeErr(err)
	}

	if s.welcome != nil {
		if err := s.welcome.SendWelcomeEmail(user.Email, user.DisplayName); err != nil {
			// warn but do not fail registration
			log.Printf("[auth][register][warn] welcome email to %s: %v", user.Email, err)
		}
	}
	return s.session(user)
}

func (s *userService) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil || !s.auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.session(user)
}

// LoginWithOAuth finds the user by provider subject, falls back to a match
// by verified email, and creates the account otherwise.
func (s *userService) LoginWithOAuth(ctx context.Context, provider string, profile *OAuthProfile) (*models.Session, error) {
	if profile == nil || profile.Subject == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.repo.GetBySubject(ctx, provider, profile.Subject)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil && profile.Email != "" && profile.EmailVerified {
		if user, err = s.repo.GetByEmail(ctx, profile.Email); err != nil {
			return nil, storeErr(err)
		}
	}
	if user == nil {
		email := profile.Email
		if email == "" {
			email = profile.Subject + "@" + provider
		}
		user = &models.User{
			Email:       email,
			DisplayName: profile.Name,
			Provider:    provider,
			Subject:     profile.Subject,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			return nil, storeErr(err)
		}
		log.Printf("[auth][oauth] created user id=%s provider=%s", user.ID, provider)
	}
	return s.session(user)
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) LinkTelegram(ctx context.Context, userID string, chatID int64, notify bool) (*models.User, error) {
	if err := s.repo.UpdateTelegramLink(ctx, userID, chatID, notify); err != nil {
		return nil, storeErr(err)
	}
	return s.GetByID(ctx, userID)
}
