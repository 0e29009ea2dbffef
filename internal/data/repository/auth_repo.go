package repository

import (
	"context"
	"fmt"

	"carwash-web/internal/data/entity"
	"carwash-web/pkg/apiclient"

	"go.uber.org/zap"
)

type AdminCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CustomerCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CustomerRegistration struct {
	Name     string `json:"name"`
	Contact  string `json:"contact"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the backend's login answer. Admin logins fill Admin,
// customer logins fill User.
type AuthResult struct {
	Token string          `json:"token"`
	Admin *entity.Profile `json:"admin,omitempty"`
	User  *entity.Profile `json:"user,omitempty"`
}

type AuthRepository interface {
	AdminLogin(ctx context.Context, creds AdminCredentials) (*AuthResult, error)
	CustomerLogin(ctx context.Context, creds CustomerCredentials) (*AuthResult, error)
	CustomerRegister(ctx context.Context, reg CustomerRegistration) (*AuthResult, error)
}

type authRepository struct {
	api *apiclient.Client
	log *zap.Logger
}

func NewAuthRepository(api *apiclient.Client, log *zap.Logger) AuthRepository {
	return &authRepository{
		api: api,
		log: log.With(zap.String("repository", "auth")),
	}
}

func (r *authRepository) AdminLogin(ctx context.Context, creds AdminCredentials) (*AuthResult, error) {
	var result AuthResult
	if err := r.api.PostJSON(ctx, "/auth/login", creds, &result); err != nil {
		return nil, fmt.Errorf("admin login: %w", err)
	}
	return &result, nil
}

func (r *authRepository) CustomerLogin(ctx context.Context, creds CustomerCredentials) (*AuthResult, error) {
	var result AuthResult
	if err := r.api.PostJSON(ctx, "/auth/customer/login", creds, &result); err != nil {
		return nil, fmt.Errorf("customer login: %w", err)
	}
	return &result, nil
}

func (r *authRepository) CustomerRegister(ctx context.Context, reg CustomerRegistration) (*AuthResult, error) {
	var result AuthResult
	if err := r.api.PostJSON(ctx, "/auth/customer/register", reg, &result); err != nil {
		return nil, fmt.Errorf("customer register: %w", err)
	}
	return &result, nil
}
