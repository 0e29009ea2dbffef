package repository

import (
	"carwash-web/pkg/apiclient"

	"go.uber.org/zap"
)

// Repository groups the backend-facing repositories. The session store is
// chosen at boot and wired separately.
type Repository struct {
	Auth    AuthRepository
	Booking BookingRepository
	Service ServiceRepository
}

func NewRepository(api *apiclient.Client, log *zap.Logger) *Repository {
	return &Repository{
		Auth:    NewAuthRepository(api, log),
		Booking: NewBookingRepository(api, log),
		Service: NewServiceRepository(api, log),
	}
}
