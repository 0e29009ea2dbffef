package usecase

import (
	"context"
	"fmt"
	"strings"

	"carwash-web/internal/data/entity"
	"carwash-web/internal/data/repository"
	"carwash-web/internal/dto/request"
	"carwash-web/pkg/utils"

	"go.uber.org/zap"
)

// AuthService exchanges credentials with the backend for a Session. Storing
// the Session is the caller's job.
type AuthService interface {
	AdminLogin(ctx context.Context, req *request.AdminLoginRequest) (*entity.Session, error)
	CustomerLogin(ctx context.Context, req *request.CustomerLoginRequest) (*entity.Session, error)
	CustomerRegister(ctx context.Context, req *request.CustomerRegisterRequest) (*entity.Session, error)
}

type authService struct {
	repo repository.AuthRepository
	log  *zap.Logger
}

func NewAuthService(repo repository.AuthRepository, log *zap.Logger) AuthService {
	return &authService{
		repo: repo,
		log:  log.With(zap.String("service", "auth")),
	}
}

func (s *authService) AdminLogin(ctx context.Context, req *request.AdminLoginRequest) (*entity.Session, error) {
	req.Username = strings.TrimSpace(req.Username)
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	result, err := s.repo.AdminLogin(ctx, repository.AdminCredentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		s.log.Warn("Admin login failed", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	profile := entity.Profile{Username: req.Username}
	if result.Admin != nil {
		profile = *result.Admin
	}
	return s.session(entity.RoleAdmin, result.Token, profile)
}

func (s *authService) CustomerLogin(ctx context.Context, req *request.CustomerLoginRequest) (*entity.Session, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	result, err := s.repo.CustomerLogin(ctx, repository.CustomerCredentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.log.Warn("Customer login failed", zap.Error(err))
		return nil, err
	}

	profile := entity.Profile{Email: req.Email}
	if result.User != nil {
		profile = *result.User
	}
	return s.session(entity.RoleCustomer, result.Token, profile)
}

func (s *authService) CustomerRegister(ctx context.Context, req *request.CustomerRegisterRequest) (*entity.Session, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Contact = strings.TrimSpace(req.Contact)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	result, err := s.repo.CustomerRegister(ctx, repository.CustomerRegistration{
		Name:     req.Name,
		Contact:  req.Contact,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.log.Warn("Customer registration failed", zap.Error(err))
		return nil, err
	}

	profile := entity.Profile{Name: req.Name, Contact: req.Contact, Email: req.Email}
	if result.User != nil {
		profile = *result.User
	}
	return s.session(entity.RoleCustomer, result.Token, profile)
}

func (s *authService) session(role entity.UserRole, token string, profile entity.Profile) (*entity.Session, error) {
	if token == "" {
		s.log.Error("Login answer without token", zap.String("role", string(role)))
		return nil, fmt.Errorf("%s login: %w", role, ErrInvalidAuthResponse)
	}

	s.log.Info("Signed in", zap.String("role", string(role)), zap.String("user_id", profile.ID))
	return &entity.Session{Role: role, Token: token, User: profile}, nil
}
