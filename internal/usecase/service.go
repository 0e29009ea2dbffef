package usecase

import (
	"carwash-web/internal/data/repository"
	"carwash-web/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth    AuthService
	Booking BookingService
	Catalog CatalogService
}

func NewService(repo *repository.Repository, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Auth:    NewAuthService(repo.Auth, log),
		Booking: NewBookingService(repo, config.App.Location(), log),
		Catalog: NewCatalogService(repo.Service, log),
	}
}
