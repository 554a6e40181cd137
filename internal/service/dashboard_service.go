package service

import (
	"context"
	"errors"

	"cadetbot/internal/middleware"
	"cadetbot/internal/model"
	"cadetbot/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// DashboardService authenticates dashboard accounts and issues API tokens.
type DashboardService interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	// EnsureAccount creates the account if it does not exist yet. Used to
	// seed the initial admin login from the environment at startup.
	EnsureAccount(ctx context.Context, username, password, role string) error
}

type dashboardService struct {
	accounts repository.DashboardAccountRepository
}

func NewDashboardService(accounts repository.DashboardAccountRepository) DashboardService {
	return &dashboardService{accounts: accounts}
}

func (s *dashboardService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	account, err := s.accounts.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, errors.New("invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid username or password")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  account.ID.String(),
		"name": account.Username,
		"role": account.Role,
	})

	tokenString, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &TokenResponse{Token: tokenString}, nil
}

func (s *dashboardService) EnsureAccount(ctx context.Context, username, password, role string) error {
	if username == "" || password == "" {
		return nil
	}
	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.accounts.Create(ctx, &model.DashboardAccount{
		Username: username,
		Password: string(hashed),
		Role:     role,
	})
}
